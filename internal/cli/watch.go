package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	bprogress "github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/scgraph/pkg/graph"
	"github.com/matzehuels/scgraph/pkg/ingest"
	"github.com/matzehuels/scgraph/pkg/session"
)

// watchCommand creates the watch command, an interactive view of a running
// simulation.
func (c *CLI) watchCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "watch [events.jsonl]",
		Short: "Run the layout interactively and watch it cool",
		Long: `Run the layout interactively.

The scene is ticked once per frame interval (layout.frame_interval in the
config) and the simulation state is shown live. Pause and restart the layout
from the keyboard. With -o, the final positions are written on exit.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runWatch(cmd.Context(), args[0], output)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "write positions here on exit")
	return cmd
}

func (c *CLI) runWatch(ctx context.Context, input, output string) error {
	data, err := readInput(input)
	if err != nil {
		return fmt.Errorf("read %s: %w", input, err)
	}
	events, err := ingest.Read(strings.NewReader(string(data)))
	if err != nil {
		return err
	}

	// Log output would tear the alternate screen.
	sess := session.New(c.Config, nil)
	defer sess.Close()
	if _, err := sess.Apply(ctx, events); err != nil {
		return err
	}
	if err := sess.StartLayout(ctx); err != nil {
		return err
	}

	final, err := tea.NewProgram(newWatchModel(ctx, sess, c.Config.Layout.FrameInterval, c.Config.Layout.AlphaMin),
		tea.WithContext(ctx), tea.WithAltScreen()).Run()
	if err != nil {
		return err
	}
	if m, ok := final.(watchModel); ok && m.err != nil {
		return m.err
	}

	if output != "" {
		if err := graph.WritePositionsFile(sess.Positions(), output); err != nil {
			return fmt.Errorf("write output %s: %w", output, err)
		}
		printSuccess("Positions written")
		printFile(output)
	}
	return nil
}

// =============================================================================
// watchModel
// =============================================================================

type watchKeyMap struct {
	Toggle  key.Binding
	Restart key.Binding
	Quit    key.Binding
}

func (k watchKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.Restart, k.Quit}
}

func (k watchKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

var watchKeys = watchKeyMap{
	Toggle: key.NewBinding(
		key.WithKeys(" ", "p"),
		key.WithHelp("p", "pause/resume"),
	),
	Restart: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "restart"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "esc", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

// frameMsg drives one simulation tick.
type frameMsg time.Time

type watchModel struct {
	ctx      context.Context
	sess     *session.Session
	interval time.Duration
	alphaMin float64

	status session.Status
	paused bool
	err    error

	keys watchKeyMap
	help help.Model
	bar  bprogress.Model
}

func newWatchModel(ctx context.Context, sess *session.Session, interval time.Duration, alphaMin float64) watchModel {
	return watchModel{
		ctx:      ctx,
		sess:     sess,
		interval: interval,
		alphaMin: alphaMin,
		status:   sess.Status(),
		keys:     watchKeys,
		help:     help.New(),
		bar:      bprogress.New(bprogress.WithDefaultGradient(), bprogress.WithWidth(40)),
	}
}

func (m watchModel) frame() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg { return frameMsg(t) })
}

func (m watchModel) Init() tea.Cmd {
	return m.frame()
}

func (m watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case frameMsg:
		m.sess.Tick(m.ctx)
		m.status = m.sess.Status()
		return m, m.frame()

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Toggle):
			if m.status.Running {
				m.sess.StopLayout(m.ctx)
				m.paused = true
			} else if m.paused {
				m.err = m.sess.StartLayout(m.ctx)
				m.paused = false
			}
		case key.Matches(msg, m.keys.Restart):
			m.err = m.sess.StartLayout(m.ctx)
			m.paused = false
		}
		if m.err != nil {
			return m, tea.Quit
		}
		m.status = m.sess.Status()

	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
		m.bar.Width = max(10, min(msg.Width-4, 60))
	}
	return m, nil
}

// cooled maps alpha onto [0, 1], where 1 means the simulation has settled.
func (m watchModel) cooled() float64 {
	if !m.status.Running && !m.paused {
		return 1
	}
	span := 1 - m.alphaMin
	if span <= 0 {
		return 1
	}
	return max(0, min(1, (1-m.status.Alpha)/span))
}

func (m watchModel) state() string {
	switch {
	case m.paused:
		return StyleWarning.Render("paused")
	case m.status.Running:
		return StyleNumber.Render("running")
	}
	return StyleSuccess.Render("settled")
}

func (m watchModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(appName+" watch") + " " + StyleDim.Render(m.status.ID[:8]))
	b.WriteString("\n\n")

	rows := [][]string{
		{"State", m.state()},
		{"Objects", fmt.Sprintf("%d", m.status.Objects)},
		{"Ticks", fmt.Sprintf("%d", m.status.Ticks)},
		{"Alpha", fmt.Sprintf("%.4f", m.status.Alpha)},
		{"Version", fmt.Sprintf("%d", m.status.Version)},
	}
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if col == 0 {
				return lipgloss.NewStyle().Foreground(colorGray).Padding(0, 1)
			}
			return lipgloss.NewStyle().Foreground(colorWhite).Padding(0, 1)
		})
	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(m.bar.ViewAs(m.cooled()))
	b.WriteString("\n\n")
	b.WriteString(m.help.View(m.keys))
	b.WriteString("\n")
	return b.String()
}
