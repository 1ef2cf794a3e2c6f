package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/gwillem/diffbot/pkg/diffbot"
	"github.com/gwillem/diffbot/pkg/robot"
	"github.com/gwillem/diffbot/pkg/zlac"
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

const simOption = "sim"

type SetupCommand struct{}

func (c *SetupCommand) Execute(args []string) error {
	fmt.Println(headerStyle.Render("diffbot Setup"))
	fmt.Println(dimStyle.Render("━━━━━━━━━━━━━"))
	fmt.Println()

	cfg := robot.DefaultConfig()
	if configExists() {
		loaded, err := readConfig()
		if err != nil {
			fmt.Println(errorStyle.Render(fmt.Sprintf("Ignoring existing configuration: %v", err)))
			fmt.Println()
		} else {
			cfg = loaded
			fmt.Printf("Updating existing configuration %s\n\n", opts.Config)
		}
	}

	ports, err := zlac.ListPorts()
	if err != nil {
		fmt.Println(errorStyle.Render(err.Error()))
	}

	options := make([]huh.Option[string], 0, len(ports)+1)
	for _, p := range ports {
		options = append(options, huh.NewOption(p, p))
	}
	options = append(options, huh.NewOption("Simulated motors (no hardware)", simOption))

	port := cfg.Hardware.Param("port", "")
	if cfg.Simulated() {
		port = simOption
	}
	left := cfg.Hardware.Param("left_address", "1")
	right := cfg.Hardware.Param("right_address", "2")

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Which port is the RS485 adapter on?").
				Description("Both motor drivers share one bus").
				Options(options...).
				Value(&port),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Left motor address").
				Validate(validateAddress).
				Value(&left),
			huh.NewInput().
				Title("Right motor address").
				Validate(validateAddress).
				Value(&right),
		),
	)
	if err := form.Run(); err != nil {
		fmt.Println()
		os.Exit(0)
	}

	if port == simOption {
		cfg.SetDriver(diffbot.DriverSim, "")
	} else {
		cfg.SetDriver(diffbot.DriverZLAC, port)
	}
	cfg.Hardware.Parameters["left_address"] = left
	cfg.Hardware.Parameters["right_address"] = right

	if _, err := diffbot.ParseParams(cfg.Hardware); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render(err.Error()))
		os.Exit(1)
	}

	if err := writeConfig(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving config: %v\n", err)
		os.Exit(1)
	}

	fmt.Println()
	fmt.Println(successStyle.Render("Setup complete!"))
	fmt.Printf("Configuration saved to %s\n", opts.Config)
	fmt.Println()
	fmt.Println("Check the motors with: " + headerStyle.Render("diffbot info"))
	fmt.Println("Drive with:            " + headerStyle.Render("diffbot drive"))

	return nil
}

func validateAddress(s string) error {
	v, err := strconv.ParseUint(s, 0, 8)
	if err != nil || v < 1 || v > 247 {
		return fmt.Errorf("address must be 1-247")
	}
	return nil
}

func configExists() bool {
	if opts.Config == robot.DefaultConfigFile {
		return robot.ConfigExists()
	}
	_, err := os.Stat(opts.Config)
	return err == nil
}

func readConfig() (*robot.Config, error) {
	if opts.Config == robot.DefaultConfigFile {
		return robot.LoadConfig()
	}
	return robot.LoadConfigFrom(opts.Config)
}

func writeConfig(cfg *robot.Config) error {
	if opts.Config == robot.DefaultConfigFile {
		return cfg.Save()
	}
	return cfg.SaveTo(opts.Config)
}

// loadConfig loads the configuration or exits with a hint to run setup.
func loadConfig() *robot.Config {
	cfg, err := readConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "No configuration found (%v). Run 'diffbot setup' first.\n", err)
		os.Exit(1)
	}
	return cfg
}
