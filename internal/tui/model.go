package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/klokku/calinvoice/pkg/daterange"
	"github.com/klokku/calinvoice/pkg/invoice"
	"github.com/klokku/calinvoice/pkg/session"
)

const tickInterval = 100 * time.Millisecond

// Controller is the part of session.Controller the screen drives.
type Controller interface {
	Tick() bool
	State() session.State
	SelectMonth(month daterange.Month)
	SelectYear(year int)
	RequestFetch() error
}

// ExportFunc writes the loaded invoice and returns where it went.
type ExportFunc func() (string, error)

// tickMsg drives the controller; one message from the workers is applied per tick.
type tickMsg struct{}

// Model is the single screen of the application.
type Model struct {
	controller Controller
	export     ExportFunc
	spinner    spinner.Model
	status     string
	statusErr  bool
	width      int
}

func NewModel(controller Controller, export ExportFunc) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = labelStyle
	return Model{
		controller: controller,
		export:     export,
		spinner:    s,
	}
}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(time.Time) tea.Msg {
		return tickMsg{}
	})
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, tick())
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		m.controller.Tick()
		return m, tick()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	state := m.controller.State()
	switch msg.String() {
	case "ctrl+c", "q", "esc":
		return m, tea.Quit
	case "left", "h":
		if state.Authenticated() {
			m.controller.SelectMonth(state.Month.Prev())
		}
	case "right", "l":
		if state.Authenticated() {
			m.controller.SelectMonth(state.Month.Next())
		}
	case "up", "k":
		m.controller.SelectYear(state.Year + 1)
	case "down", "j":
		m.controller.SelectYear(state.Year - 1)
	case "enter":
		if err := m.controller.RequestFetch(); err != nil {
			m.setStatus(err.Error(), true)
		} else {
			m.setStatus("", false)
		}
	case "e":
		path, err := m.export()
		if err != nil {
			m.setStatus("Export failed: "+err.Error(), true)
		} else {
			m.setStatus("Saved "+path, false)
		}
	}
	return m, nil
}

func (m *Model) setStatus(status string, isErr bool) {
	m.status = status
	m.statusErr = isErr
}

func (m Model) View() string {
	state := m.controller.State()
	var b strings.Builder

	b.WriteString(titleStyle.Render("Calendar to CSV"))
	b.WriteString("\n\n")

	switch {
	case state.AuthErr != nil:
		b.WriteString(errorStyle.Render("Authorization failed: " + state.AuthErr.Error()))
		b.WriteString("\n")
	case !state.Authenticated() && state.OauthURL == "":
		b.WriteString(m.spinner.View() + " Waiting for oauth url to be generated...\n")
	case !state.Authenticated():
		b.WriteString(labelStyle.Render("Click here to log in: "))
		b.WriteString(linkStyle.Render(state.OauthURL))
		b.WriteString("\n")
	default:
		b.WriteString(m.viewSession(state))
	}

	if m.status != "" {
		b.WriteString("\n")
		if m.statusErr {
			b.WriteString(errorStyle.Render(m.status))
		} else {
			b.WriteString(okStyle.Render(m.status))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render("←/→ month • ↑/↓ year • enter load • e export csv • q quit"))
	return b.String()
}

func (m Model) viewSession(state session.State) string {
	var b strings.Builder
	month := "(select month)"
	if state.Month.Valid() {
		month = state.Month.String()
	}
	b.WriteString(labelStyle.Render("Month: "))
	b.WriteString(fmt.Sprintf("%s %d\n\n", month, state.Year))

	switch {
	case state.WaitingForEvents:
		b.WriteString(m.spinner.View() + " Loading...\n")
	case state.FetchErr != nil:
		b.WriteString(errorStyle.Render("Loading events failed: " + state.FetchErr.Error()))
		b.WriteString("\n")
	case state.LoadedEvents:
		b.WriteString(renderLines(state.Lines))
	default:
		b.WriteString(labelStyle.Render("Select a month and press enter to get started"))
		b.WriteString("\n")
	}
	return b.String()
}

func renderLines(lines []invoice.InvoiceLine) string {
	if len(lines) == 0 {
		return labelStyle.Render("No billable events this month") + "\n"
	}
	var b strings.Builder
	const row = "%-10s  %-16s  %-16s  %6s  %6s  %8s"
	b.WriteString(headerStyle.Render(fmt.Sprintf(row, "Date", "Client", "Sub Client", "Hours", "Rate", "Total")) + "\n")
	for _, l := range lines {
		b.WriteString(fmt.Sprintf(row,
			l.Date,
			truncate(l.Client, 16),
			truncate(l.SubClient, 16),
			invoice.FormatDecimal(l.Hours),
			invoice.FormatDecimal(l.Rate),
			invoice.FormatDecimal(l.Total),
		) + "\n")
	}
	hours, total := invoice.Totals(lines)
	b.WriteString(headerStyle.Render(fmt.Sprintf(row, "", "", "Total", invoice.FormatDecimal(hours), "", invoice.FormatDecimal(total))) + "\n")
	return b.String()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
