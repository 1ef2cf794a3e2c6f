package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/NimbleMarkets/ntcharts/canvas/runes"
	"github.com/NimbleMarkets/ntcharts/linechart/streamlinechart"

	"github.com/gwillem/diffbot/pkg/control"
	"github.com/gwillem/diffbot/pkg/robot"
)

type DriveCommand struct {
	LinearStep  float64 `long:"linear-step" default:"0.05" description:"Speed change per key press in m/s"`
	AngularStep float64 `long:"angular-step" default:"0.1" description:"Turn rate change per key press in rad/s"`
}

const (
	headerHeight = 3 // title + status + blank line
	legendHeight = 2 // legend row + blank
	footerHeight = 7 // log box height
	maxLogs      = 5 // number of log messages to show
	borderSize   = 2 // chart border
)

// Wheel colors
var wheelColors = map[robot.WheelName]string{
	robot.LeftWheel:  "51",  // cyan
	robot.RightWheel: "208", // orange
}

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	chartStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240"))
	statusStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	enabledStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	disabledStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
)

type driveModel struct {
	ctrl        *control.Controller
	chart       *streamlinechart.Model
	linearStep  float64
	angularStep float64
	linear      float64
	angular     float64
	state       control.State
	width       int      // terminal width
	height      int      // terminal height
	logs        []string // last N log messages
	loop        *loopResult
	err         error // set when the control loop stopped on its own
	quitting    bool
}

func (m *driveModel) addLog(msg string) {
	m.logs = append(m.logs, msg)
	if len(m.logs) > maxLogs {
		m.logs = m.logs[len(m.logs)-maxLogs:]
	}
}

// Messages from the controller
type stateMsg control.State
type logMsg string

func waitForState(ctrl *control.Controller) tea.Cmd {
	return func() tea.Msg {
		return stateMsg(<-ctrl.States())
	}
}

// loopResult holds the outcome of the control loop goroutine.
// err is valid once done is closed.
type loopResult struct {
	done chan struct{}
	err  error
}

type loopDoneMsg struct{ err error }

func startLoop(ctx context.Context, ctrl *control.Controller) *loopResult {
	res := &loopResult{done: make(chan struct{})}
	go func() {
		res.err = ctrl.Start(ctx)
		close(res.done)
	}()
	return res
}

func waitForLoop(res *loopResult) tea.Cmd {
	return func() tea.Msg {
		<-res.done
		return loopDoneMsg{err: res.err}
	}
}

func waitForLog(ctrl *control.Controller) tea.Cmd {
	return func() tea.Msg {
		return logMsg(<-ctrl.Logs())
	}
}

// chartSize calculates the size of the chart based on terminal dimensions
func (m *driveModel) chartSize() (width, height int) {
	if m.width == 0 || m.height == 0 {
		return 80, 20 // default size before we know terminal size
	}
	width = m.width - borderSize - 2
	if width < 40 {
		width = 40
	}
	height = m.height - headerHeight - legendHeight - footerHeight - borderSize
	if height < 10 {
		height = 10
	}
	return width, height
}

func (m *driveModel) resizeChart() {
	w, h := m.chartSize()
	m.chart.Resize(w, h)
}

func initialDriveModel(ctrl *control.Controller, loop *loopResult, cfg *robot.Config, linearStep, angularStep float64) driveModel {
	// Wheel speed at full linear plus full angular command, with headroom.
	c := cfg.Controller
	limit := (c.MaxLinear + c.MaxAngular*c.WheelSeparation/2) / c.WheelRadius * 1.1

	chart := streamlinechart.New(80, 20,
		streamlinechart.WithYRange(-limit, limit),
	)
	for _, name := range robot.AllWheels() {
		style := lipgloss.NewStyle().Foreground(lipgloss.Color(wheelColors[name]))
		chart.SetDataSetStyles(string(name), runes.ThinLineStyle, style)
	}

	return driveModel{
		ctrl:        ctrl,
		loop:        loop,
		chart:       &chart,
		linearStep:  linearStep,
		angularStep: angularStep,
	}
}

func (m driveModel) Init() tea.Cmd {
	return tea.Batch(
		waitForState(m.ctrl),
		waitForLog(m.ctrl),
		waitForLoop(m.loop),
	)
}

func (m driveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resizeChart()
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			m.ctrl.SetTwist(0, 0)
			return m, tea.Quit
		case "up", "w":
			m.linear += m.linearStep
		case "down", "s":
			m.linear -= m.linearStep
		case "left", "a":
			m.angular += m.angularStep
		case "right", "d":
			m.angular -= m.angularStep
		case " ":
			m.linear, m.angular = 0, 0
		default:
			return m, nil
		}
		m.ctrl.SetTwist(m.linear, m.angular)
		// Read back the clamped values so further presses start from the limit.
		m.linear, m.angular = m.ctrl.Twist()
		return m, nil

	case stateMsg:
		m.state = control.State(msg)
		for i, name := range robot.AllWheels() {
			m.chart.PushDataSet(string(name), m.state.Velocities[i])
		}
		m.chart.DrawAll()
		return m, waitForState(m.ctrl)

	case logMsg:
		m.addLog(string(msg))
		return m, waitForLog(m.ctrl)

	case loopDoneMsg:
		// Bring-up failed or the loop exited; no more states will arrive.
		if msg.err != nil && !errors.Is(msg.err, context.Canceled) {
			m.err = msg.err
		}
		m.quitting = true
		return m, tea.Quit
	}

	return m, nil
}

func (m driveModel) View() string {
	if m.quitting {
		if m.err != nil {
			return errorStyle.Render(fmt.Sprintf("Controller error: %v", m.err)) + "\n"
		}
		return "Drive stopped.\n"
	}

	var sb strings.Builder

	// Header
	sb.WriteString(titleStyle.Render("diffbot Drive"))
	sb.WriteString(fmt.Sprintf(" - %d Hz", m.ctrl.Hz()))
	if m.width > 0 {
		sb.WriteString(statusStyle.Render(fmt.Sprintf("  [%dx%d]", m.width, m.height)))
	}
	sb.WriteString("\n")

	// Status
	motors := disabledStyle.Render("DISABLED")
	if m.state.Enabled {
		motors = enabledStyle.Render("ENABLED")
	}
	sb.WriteString(motors)
	sb.WriteString(statusStyle.Render(fmt.Sprintf("  cmd %+.2f m/s %+.2f rad/s  meas %+.2f m/s %+.2f rad/s  pose (%.2f, %.2f) %.0f°",
		m.linear, m.angular, m.state.Linear, m.state.Angular,
		m.state.Pose.X, m.state.Pose.Y, m.state.Pose.Heading*180/math.Pi)))
	sb.WriteString("\n\n")

	// Chart
	sb.WriteString(chartStyle.Render(m.chart.View()))
	sb.WriteString("\n")

	// Legend
	sb.WriteString(renderLegend())
	sb.WriteString("\n")

	// Log box
	logStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Width(m.width - 4)

	var logLines string
	if len(m.logs) == 0 {
		logLines = statusStyle.Render("Arrows/WASD to drive, space to stop, 'q' to quit")
	} else {
		logLines = strings.Join(m.logs, "\n")
	}
	sb.WriteString(logStyle.Render(logLines))
	sb.WriteString("\n")

	return sb.String()
}

func renderLegend() string {
	var items []string
	for _, name := range robot.AllWheels() {
		colorStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(wheelColors[name])).Bold(true)
		item := colorStyle.Render("━━") + " " + string(name) + " rad/s"
		items = append(items, item)
	}
	return strings.Join(items, "  ")
}

func (c *DriveCommand) Execute(args []string) error {
	cfg := loadConfig()
	fmt.Printf("Loaded configuration from %s\n", opts.Config)

	// Log lines only go to the TUI log box.
	ctrl, err := control.NewController(cfg.Hardware, cfg.ControlConfig(), nil)
	if err != nil {
		log.Fatalf("Failed to create controller: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	loop := startLoop(ctx, ctrl)

	p := tea.NewProgram(initialDriveModel(ctrl, loop, cfg, c.LinearStep, c.AngularStep), tea.WithAltScreen())
	_, runErr := p.Run()

	// Stop the loop; it zeroes the commands and disables the motors.
	cancel()
	<-loop.done
	if err := loop.err; err != nil && !errors.Is(err, context.Canceled) {
		log.Printf("Controller error: %v", err)
	}
	if runErr != nil {
		log.Fatalf("Error running program: %v", runErr)
	}
	return nil
}
