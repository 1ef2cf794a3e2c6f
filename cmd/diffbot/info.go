package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/edaniels/golog"

	"github.com/gwillem/diffbot/pkg/diffbot"
	"github.com/gwillem/diffbot/pkg/hardware"
)

type InfoCommand struct {
	Timeout time.Duration `long:"timeout" default:"5s" description:"Overall time limit for talking to the motors"`
}

func (c *InfoCommand) Execute(args []string) error {
	cfg := loadConfig()
	logger := golog.NewDevelopmentLogger("diffbot")

	sys, err := cfg.NewSystem(logger)
	if err != nil {
		return err
	}
	if err := sys.OnInit(cfg.Hardware); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), c.Timeout)
	defer cancel()

	if err := sys.OnConfigure(ctx); err != nil {
		return err
	}
	defer sys.OnCleanup(context.Background())

	if err := sys.Read(ctx, time.Now(), 0); err != nil {
		return err
	}

	var report diffbot.SetupReport
	var failures [2]int
	if ds, ok := sys.(*diffbot.System); ok {
		report = ds.LastSetup()
		failures[0], failures[1] = ds.ReadFailures()
	}

	fmt.Println()
	fmt.Println(headerStyle.Render(cfg.Hardware.Name) + dimStyle.Render(fmt.Sprintf("  %s on %s",
		cfg.Hardware.Param("driver", diffbot.DriverZLAC), cfg.Hardware.Param("port", ""))))
	fmt.Println(renderInfoTable(cfg.Hardware, sys, report, failures))

	if !report.OK() {
		fmt.Fprintln(os.Stderr, errorStyle.Render(report.Err().Error()))
	}
	return nil
}

func renderInfoTable(info hardware.HardwareInfo, sys hardware.System, report diffbot.SetupReport, failures [2]int) string {
	tableHeaderStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")).Padding(0, 1)
	tableJointStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("14")).Padding(0, 1)
	tableCellStyle := lipgloss.NewStyle().Padding(0, 1)
	tableGoodStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Padding(0, 1)
	tableBadStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Padding(0, 1)

	wheels := []string{"left", "right"}
	states := sys.ExportStateInterfaces()

	rows := make([][]string, 0, len(info.Joints))
	ok := make([]bool, 0, len(info.Joints))
	for i, joint := range info.Joints {
		pos, _ := hardware.FindState(states, joint.Name, hardware.Position)
		vel, _ := hardware.FindState(states, joint.Name, hardware.Velocity)

		var failed []string
		for _, s := range report.Failed() {
			if s.Wheel == wheels[i] {
				failed = append(failed, s.Step)
			}
		}
		setup := "ok"
		if len(failed) > 0 {
			setup = strings.Join(failed, ", ")
		}
		ok = append(ok, len(failed) == 0 && failures[i] == 0)

		rows = append(rows, []string{
			joint.Name,
			fmt.Sprintf("%.4f", pos.Value()),
			fmt.Sprintf("%.4f", vel.Value()),
			setup,
			fmt.Sprintf("%d", failures[i]),
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(dimStyle).
		Headers("Joint", "Position (rad)", "Velocity (rad/s)", "Setup", "Read errors").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return tableHeaderStyle
			}
			switch col {
			case 0:
				return tableJointStyle
			case 3, 4:
				if row >= 0 && row < len(ok) && ok[row] {
					return tableGoodStyle
				}
				return tableBadStyle
			default:
				return tableCellStyle
			}
		})
	return t.Render()
}
