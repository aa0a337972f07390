package viz

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/qjourney/internal/journey"
)

const (
	defaultWidth = 80
	// maxCatchUp bounds how much virtual time one tick may replay, so a
	// suspended terminal does not fast-forward the journey on wake.
	maxCatchUp     = 250 * time.Millisecond
	defaultAutoGap = 3 * time.Second
)

type TickMsg time.Time

// Options configures the TUI.
type Options struct {
	FrameRate int
	Theme     string
	// AutoHold is the hold applied when autoplay is toggled on. The
	// session's own hold decides whether autoplay starts enabled.
	AutoHold time.Duration
	Logger   *slog.Logger
}

// Model renders a journey.Session and forwards navigation keys to it. The
// session is the only mutable state; everything drawn comes from its Frame.
type Model struct {
	sess     *journey.Session
	interval time.Duration
	autoHold time.Duration
	logger   *slog.Logger

	keys     keyMap
	help     help.Model
	progress progress.Model
	styles   Styles

	width    int
	last     time.Time
	showHelp bool
	quitting bool
}

// NewModel builds the TUI model around sess.
func NewModel(sess *journey.Session, opts Options) Model {
	rate := opts.FrameRate
	if rate <= 0 {
		rate = 30
	}
	hold := opts.AutoHold
	if hold <= 0 {
		hold = sess.Hold()
	}
	if hold <= 0 {
		hold = defaultAutoGap
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	m := Model{
		sess:     sess,
		interval: time.Second / time.Duration(rate),
		autoHold: hold,
		logger:   logger,
		keys:     defaultKeys(),
		help:     help.New(),
		width:    defaultWidth,
	}
	m.applyTheme(GetTheme(opts.Theme))
	return m
}

func (m *Model) applyTheme(t Theme) {
	m.styles = NewStyles(t)
	m.progress = progress.New(
		progress.WithGradient(string(t.Primary), string(t.Secondary)),
		progress.WithoutPercentage(),
		progress.WithWidth(m.barWidth()),
	)
	m.help.Styles.ShortKey = lipgloss.NewStyle().Foreground(t.Accent).Bold(true)
	m.help.Styles.ShortDesc = lipgloss.NewStyle().Foreground(t.Muted)
	m.help.Styles.ShortSeparator = lipgloss.NewStyle().Foreground(t.Muted)
	m.help.Styles.FullKey = m.help.Styles.ShortKey
	m.help.Styles.FullDesc = m.help.Styles.ShortDesc
	m.help.Styles.FullSeparator = m.help.Styles.ShortSeparator
}

func (m Model) barWidth() int {
	return max(m.width-16, 10)
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return m.tick()
}

// Update handles keys and advances the session's virtual clock by the real
// time elapsed between ticks.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		m.progress.Width = m.barWidth()
	case tea.KeyMsg:
		return m.handleKey(msg)
	case TickMsg:
		now := time.Time(msg)
		if !m.last.IsZero() {
			elapsed := min(now.Sub(m.last), maxCatchUp)
			if elapsed > 0 {
				m.sess.Advance(elapsed)
			}
		}
		m.last = now
		return m, m.tick()
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keys.Next):
		m.sess.Next()
	case key.Matches(msg, m.keys.Previous):
		m.sess.Previous()
	case key.Matches(msg, m.keys.Reset):
		m.sess.Reset()
	case key.Matches(msg, m.keys.Jump):
		m.sess.GoTo(int(msg.Runes[0] - '1'))
	case key.Matches(msg, m.keys.Pause):
		m.sess.TogglePause()
	case key.Matches(msg, m.keys.Autoplay):
		if m.sess.Hold() > 0 {
			m.sess.SetHold(0)
		} else {
			m.sess.SetHold(m.autoHold)
		}
		m.logger.Debug("autoplay toggled", "hold", m.sess.Hold())
	case key.Matches(msg, m.keys.Theme):
		m.applyTheme(NextTheme(m.styles.Theme.Name))
	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
		m.help.ShowAll = m.showHelp
	}
	return m, nil
}

// View renders the header, the step dots, the active panel and the footer.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	f := m.sess.Frame()
	st := f.State
	s := m.styles

	var b strings.Builder
	b.WriteString(GradientText("QUANTUM ENCRYPTION JOURNEY", s.Theme.Primary, s.Theme.Secondary))
	b.WriteString("\n\n")
	b.WriteString(m.stepDots())
	b.WriteString("\n")
	b.WriteString(s.Heading.Render(fmt.Sprintf("Step %d: %s", st.Index+1, st.Name)))
	b.WriteString("\n")

	body := RenderView(f.View, m.sess.Artifacts(), s, m.width-8)
	b.WriteString(s.Panel.Width(max(m.width-4, 20)).Render(body))
	b.WriteString("\n")

	b.WriteString(m.progress.ViewAs(st.Fraction))
	b.WriteString(s.Subtle.Render(fmt.Sprintf("  %d/%d", st.Index+1, st.Count)))
	b.WriteString("\n")
	b.WriteString(m.statusLine(f))
	b.WriteString("\n\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m Model) stepDots() string {
	s := m.styles
	idx := m.sess.Wizard().Index()
	steps := m.sess.Wizard().Steps()
	dots := make([]string, len(steps))
	for i := range steps {
		switch {
		case i < idx:
			dots[i] = s.Done.Render("●")
		case i == idx:
			dots[i] = s.Active.Render("◉")
		default:
			dots[i] = s.Pending.Render("○")
		}
	}
	return strings.Join(dots, s.Subtle.Render("─"))
}

func (m Model) statusLine(f journey.Frame) string {
	s := m.styles
	st := f.State

	status := s.Running.Render("RUNNING")
	if st.Paused {
		status = s.Paused.Render("PAUSED")
	}
	parts := []string{status, s.Subtle.Render(fmt.Sprintf("t=%.1fs", f.Time.Seconds()))}
	if st.Stage != nil {
		parts = append(parts, s.Subtle.Render("stage ")+s.Value.Render(st.Stage.Stage))
	}
	if m.sess.Hold() > 0 {
		parts = append(parts, s.Accent.Render("autoplay"))
	}
	switch {
	case st.IsLast && st.PanelDone():
		parts = append(parts, s.Complete.Render("✓ Journey complete"))
	case st.PanelDone():
		parts = append(parts, s.Complete.Render("✓ Step complete"))
	}
	return strings.Join(parts, s.Subtle.Render(" · "))
}

// Run starts the full-screen TUI and blocks until the viewer quits.
func Run(sess *journey.Session, opts Options) error {
	_, err := tea.NewProgram(NewModel(sess, opts), tea.WithAltScreen()).Run()
	return err
}
