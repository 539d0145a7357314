package tui

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"adhdrpg/internal/engine"
	"adhdrpg/internal/ui"
)

// Game is what the board reads and drives. *engine.Service implements it.
type Game interface {
	State() engine.GameState
	Dispatch(ctx context.Context, a engine.Action) (engine.Outcome, error)
	Undo(ctx context.Context) (engine.Outcome, error)
	CheckIn(ctx context.Context) (engine.Outcome, error)
	SkillChart() engine.SkillChart
	SuggestNextQuest() (engine.Quest, bool)
}

type boardModel struct {
	ctx  context.Context
	game Game

	width  int
	height int

	state   engine.GameState
	chart   engine.SkillChart
	next    *engine.Quest
	quests  []engine.Quest
	showAll bool

	selected int

	lastLog string
	loading bool
}

type loadedMsg struct {
	state engine.GameState
	chart engine.SkillChart
	next  *engine.Quest
}

type dispatchedMsg struct {
	verb string
	out  engine.Outcome
	err  error
}

func newBoardModel(ctx context.Context, game Game) boardModel {
	return boardModel{
		ctx:     ctx,
		game:    game,
		loading: true,
		lastLog: "Loaded.",
	}
}

func (m boardModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m boardModel) loadCmd() tea.Cmd {
	return func() tea.Msg {
		msg := loadedMsg{state: m.game.State(), chart: m.game.SkillChart()}
		if q, ok := m.game.SuggestNextQuest(); ok {
			msg.next = &q
		}
		return msg
	}
}

func (m boardModel) dispatchCmd(verb string, a engine.Action) tea.Cmd {
	return func() tea.Msg {
		out, err := m.game.Dispatch(m.ctx, a)
		return dispatchedMsg{verb: verb, out: out, err: err}
	}
}

func (m boardModel) undoCmd() tea.Cmd {
	return func() tea.Msg {
		out, err := m.game.Undo(m.ctx)
		return dispatchedMsg{verb: "Undo", out: out, err: err}
	}
}

func (m boardModel) checkInCmd() tea.Cmd {
	return func() tea.Msg {
		out, err := m.game.CheckIn(m.ctx)
		return dispatchedMsg{verb: "Check-in", out: out, err: err}
	}
}

func (m boardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case loadedMsg:
		m.loading = false
		m.state = msg.state
		m.chart = msg.chart
		m.next = msg.next
		m.quests = visibleQuests(m.state.Quests, m.showAll)
		m.selected = min(m.selected, max(len(m.quests)-1, 0))
		return m, nil
	case dispatchedMsg:
		m.lastLog = outcomeLine(msg.verb, msg.out, msg.err)
		return m, m.loadCmd()
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "r":
			m.loading = true
			m.lastLog = "Refreshing…"
			return m, m.loadCmd()
		case "a":
			m.showAll = !m.showAll
			m.quests = visibleQuests(m.state.Quests, m.showAll)
			m.selected = min(m.selected, max(len(m.quests)-1, 0))
			return m, nil
		case "up", "k":
			if m.selected > 0 {
				m.selected--
			}
			return m, nil
		case "down", "j":
			if m.selected < len(m.quests)-1 {
				m.selected++
			}
			return m, nil
		case "u":
			m.lastLog = "Undoing…"
			return m, m.undoCmd()
		case "s":
			return m, m.checkInCmd()
		case "c", " ", "f", "p":
			q, ok := m.current()
			if !ok {
				m.lastLog = "No quest selected."
				return m, nil
			}
			if !q.Status.Open() {
				m.lastLog = "That quest is already " + string(q.Status) + "."
				return m, nil
			}
			switch msg.String() {
			case "f":
				return m, m.dispatchCmd("Fail", engine.FailQuest{ID: q.ID})
			case "p":
				if q.Status == engine.StatusPaused {
					return m, m.dispatchCmd("Resume", engine.ResumeQuest{ID: q.ID})
				}
				return m, m.dispatchCmd("Pause", engine.PauseQuest{ID: q.ID})
			default:
				m.lastLog = fmt.Sprintf("Completing %s…", q.Title)
				return m, m.dispatchCmd("Complete", engine.CompleteQuest{ID: q.ID})
			}
		}
	}
	return m, nil
}

func (m boardModel) current() (engine.Quest, bool) {
	if m.selected < 0 || m.selected >= len(m.quests) {
		return engine.Quest{}, false
	}
	return m.quests[m.selected], true
}

// visibleQuests lists open quests first, newest first within a status.
func visibleQuests(all []engine.Quest, showAll bool) []engine.Quest {
	var out []engine.Quest
	for _, q := range all {
		if showAll || q.Status.Open() {
			out = append(out, q)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		oi, oj := out[i].Status.Open(), out[j].Status.Open()
		if oi != oj {
			return oi
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func outcomeLine(verb string, out engine.Outcome, err error) string {
	if err != nil {
		return verb + " failed: " + err.Error()
	}
	if !out.Changed {
		return verb + ": " + out.Reason
	}
	parts := []string{verb + " done."}
	for _, n := range out.Notices {
		parts = append(parts, ui.NoticeText(n))
	}
	return strings.Join(parts, "  ")
}

func (m boardModel) View() string {
	header := m.renderHeader()
	sidebar := m.renderSidebar()
	main := m.renderMain()
	footer := m.renderFooter()

	leftW := 30
	if m.width > 0 {
		leftW = max(min(leftW, m.width/2), 18)
	}

	linesLeft := strings.Split(sidebar, "\n")
	linesRight := strings.Split(main, "\n")
	rows := max(len(linesLeft), len(linesRight))

	var body strings.Builder
	for i := 0; i < rows; i++ {
		l, r := "", ""
		if i < len(linesLeft) {
			l = linesLeft[i]
		}
		if i < len(linesRight) {
			r = linesRight[i]
		}
		body.WriteString(padRight(l, leftW))
		body.WriteString("  ")
		body.WriteString(r)
		body.WriteString("\n")
	}

	return header + "\n" + body.String() + footer
}

func (m boardModel) renderHeader() string {
	if m.loading {
		return "ADHD RPG | loading…"
	}
	p := m.state.Player
	title := "ADHD RPG"
	if m.state.SeasonName != "" {
		title += " · " + m.state.SeasonName
	}
	return fmt.Sprintf("%s | %s | Level %d %s %d/%d XP | %s %d | %s %d days",
		ui.Title.Render(title), m.chart.Class, p.Level,
		ui.Meter(p.XP, p.XPToNextLevel, 20), p.XP, p.XPToNextLevel,
		ui.IconCoin, p.Gold, ui.IconFire, p.CurrentStreak)
}

func (m boardModel) renderSidebar() string {
	if m.loading {
		return "Stats\n\nLoading…"
	}
	p := m.state.Player
	lines := []string{ui.PanelTitle.Render("Gauges")}
	lines = append(lines, fmt.Sprintf("%s HP  %s %d", ui.IconHeart, ui.Meter(p.Health, engine.GaugeMax, 12), p.Health))
	lines = append(lines, fmt.Sprintf("%s NRG %s %d", ui.IconBolt, ui.Meter(p.Energy, engine.GaugeMax, 12), p.Energy))
	lines = append(lines, "", ui.PanelTitle.Render("Skills"))
	for _, s := range m.chart.Skills {
		lines = append(lines, renderSkill(s))
	}
	if m.state.CurrentRealm != "" {
		lines = append(lines, "", ui.LabelValue("Realm", m.state.CurrentRealm))
	}
	lines = append(lines, "", ui.PanelTitle.Render("Keys"))
	lines = append(lines,
		"- ↑/↓ or j/k: move",
		"- c/space: complete",
		"- f: fail  p: pause/resume",
		"- u: undo  s: check in",
		"- a: show all  r: refresh",
		"- q: quit",
	)
	return strings.Join(lines, "\n")
}

func renderSkill(s engine.SkillMeter) string {
	name := s.Name
	if len([]rune(name)) > 10 {
		name = string([]rune(name)[:10])
	}
	return fmt.Sprintf("- %-10s L%d %s", name, s.Level, ui.Meter(int(s.Progress*100), 100, 8))
}

func (m boardModel) renderMain() string {
	if m.loading {
		return "Loading…"
	}
	var out []string
	if m.state.MainQuest != "" {
		out = append(out, ui.LabelValue("Main quest", m.state.MainQuest), "")
	}
	out = append(out, ui.PanelTitle.Render("Next up"))
	if m.next == nil {
		out = append(out, "(no open quests)")
	} else {
		out = append(out, fmt.Sprintf("%s %s (%s, %d XP)", ui.IconSparkle, m.next.Title, m.next.Difficulty, m.next.XPReward))
	}
	out = append(out, "", ui.PanelTitle.Render("Quest Log"))

	if len(m.quests) == 0 {
		out = append(out, "(empty)")
		return strings.Join(out, "\n")
	}
	for i, q := range m.quests {
		cursor := "  "
		if i == m.selected {
			cursor = "> "
		}
		line := fmt.Sprintf("%s%s %s [%s] %s", cursor, ui.StatusIcon(q.Status), q.Title, q.Category, ui.DifficultyText(q.Difficulty))
		if q.DueDate != nil {
			line += ui.Muted.Render(" due " + q.DueDate.Format("Jan 2"))
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}

func (m boardModel) renderFooter() string {
	footer := "\n" + m.lastLog + ui.Muted.Render(fmt.Sprintf("  (%s)", time.Now().Format("15:04")))
	if pending := engine.PendingUndo(m.state); len(pending) > 0 {
		footer += "\n" + ui.Muted.Render(fmt.Sprintf("%s press u to undo: %s", ui.IconUndo, pending[0].Description))
	}
	return footer
}

func padRight(s string, width int) string {
	if width <= 0 {
		return s
	}
	w := lipgloss.Width(s)
	if w >= width {
		return s
	}
	return s + strings.Repeat(" ", width-w)
}
