package main

import (
	"os"

	"github.com/jessevdk/go-flags"

	"github.com/gwillem/diffbot/pkg/robot"
)

type Options struct {
	Config string `short:"c" long:"config" description:"Configuration file"`

	Setup SetupCommand `command:"setup" description:"Select the motor port and write the configuration"`
	Run   RunCommand   `command:"run" description:"Run the drive loop without a UI"`
	Drive DriveCommand `command:"drive" description:"Drive the robot from the keyboard"`
	Info  InfoCommand  `command:"info" description:"Configure both motors and print one reading"`
}

var opts Options
var parser = flags.NewParser(&opts, flags.Default)

func main() {
	parser.LongDescription = "diffbot - ZLAC8015 hub motor bridge for differential-drive robots"
	parser.FindOptionByLongName("config").Default = []string{robot.DefaultConfigFile}
	opts.Config = robot.DefaultConfigFile

	_, err := parser.Parse()
	if err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				os.Exit(0)
			}
		}
		os.Exit(1)
	}
}
