package ui

import (
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"jobtree/pkg/analysis"
	"jobtree/pkg/config"
	"jobtree/pkg/loader"
	"jobtree/pkg/model"
	"jobtree/pkg/tree"
)

// SnapshotMsg delivers a freshly loaded snapshot to the UI. The file
// watcher and the manual reload key both feed through this.
type SnapshotMsg struct {
	Snapshot *loader.Snapshot
}

// ErrMsg reports a background failure (reload, clipboard) to the UI.
type ErrMsg struct {
	Err error
}

type clearStatusMsg struct{}

// Model is the top-level bubbletea model: a group tree on the left and
// a detail pane for the selected group on the right.
type Model struct {
	cfg   config.Config
	theme Theme

	snapshot    *loader.Snapshot
	rows        []Row
	visible     []int // indices into rows, after filtering
	summary     analysis.Summary
	jobsByGroup map[string][]model.Job

	cursor int // position within visible
	offset int // first visible row on screen

	searching bool
	search    textinput.Model

	help      HelpOverlayModel
	showStats bool

	status string
	width  int
	height int
}

// NewModel creates the initial model from a loaded snapshot.
func NewModel(snap *loader.Snapshot, cfg config.Config) Model {
	theme := DefaultTheme(lipgloss.DefaultRenderer())

	search := textinput.New()
	search.Placeholder = "group name or id"
	search.Prompt = "/"
	search.CharLimit = 64

	m := Model{
		cfg:    cfg,
		theme:  theme,
		search: search,
		help:   NewHelpOverlayModel(theme),
	}
	m.setSnapshot(snap)
	return m
}

// setSnapshot recomputes everything derived from the snapshot: the
// flattened tree, rollups, and the job index.
func (m *Model) setSnapshot(snap *loader.Snapshot) {
	m.snapshot = snap

	jobs := snap.Jobs
	if m.cfg.Channel != "" {
		filtered := make([]model.Job, 0, len(jobs))
		for _, j := range jobs {
			if j.Channel == m.cfg.Channel {
				filtered = append(filtered, j)
			}
		}
		jobs = filtered
	}

	healthCfg := analysis.HealthConfig{
		StaleThreshold:   m.cfg.StaleThreshold,
		RunningThreshold: m.cfg.RunningThreshold,
	}
	rollups := analysis.RollupJobs(snap.Groups, jobs, time.Now().UTC(), healthCfg)

	m.rows = buildRows(tree.Flatten(snap.Groups), rollups)
	m.summary = analysis.Summarize(jobs)

	m.jobsByGroup = make(map[string][]model.Job)
	for _, j := range jobs {
		m.jobsByGroup[j.GroupID] = append(m.jobsByGroup[j.GroupID], j)
	}

	m.applyFilter()
}

// applyFilter recomputes the visible rows and clamps the cursor.
func (m *Model) applyFilter() {
	m.visible = filterRows(m.rows, m.search.Value())
	if m.cursor >= len(m.visible) {
		m.cursor = len(m.visible) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	m.clampOffset()
}

// selectedRow returns the row under the cursor, or nil when the view is
// empty.
func (m *Model) selectedRow() *Row {
	if len(m.visible) == 0 {
		return nil
	}
	return &m.rows[m.visible[m.cursor]]
}

func (m *Model) clampOffset() {
	h := m.treeHeight()
	if h <= 0 {
		return
	}
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+h {
		m.offset = m.cursor - h + 1
	}
	if m.offset < 0 {
		m.offset = 0
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.SetSize(msg.Width, msg.Height)
		m.clampOffset()
		return m, nil

	case SnapshotMsg:
		m.setSnapshot(msg.Snapshot)
		return m.flash("reloaded")

	case ErrMsg:
		return m.flash("error: " + msg.Err.Error())

	case clearStatusMsg:
		m.status = ""
		return m, nil

	case tea.KeyMsg:
		if m.help.IsVisible() {
			var cmd tea.Cmd
			m.help, cmd = m.help.Update(msg)
			return m, cmd
		}
		if m.searching {
			return m.updateSearch(msg)
		}
		return m.updateKeys(msg)
	}

	return m, nil
}

func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.searching = false
		m.search.SetValue("")
		m.search.Blur()
		m.applyFilter()
		return m, nil
	case "enter":
		m.searching = false
		m.search.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.applyFilter()
	return m, cmd
}

func (m Model) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "j", "down":
		if m.cursor < len(m.visible)-1 {
			m.cursor++
			m.clampOffset()
		}

	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
			m.clampOffset()
		}

	case "g", "home":
		m.cursor = 0
		m.clampOffset()

	case "G", "end":
		if len(m.visible) > 0 {
			m.cursor = len(m.visible) - 1
			m.clampOffset()
		}

	case "/":
		m.searching = true
		m.search.Focus()
		return m, textinput.Blink

	case "esc":
		if m.search.Value() != "" {
			m.search.SetValue("")
			m.applyFilter()
		}

	case "y":
		if r := m.selectedRow(); r != nil {
			if err := clipboard.WriteAll(r.Node.Group.ID); err != nil {
				return m.flash("yank failed: " + err.Error())
			}
			return m.flash("yanked " + r.Node.Group.ID)
		}

	case "s":
		m.showStats = !m.showStats

	case "?":
		m.help.Toggle()
	}

	return m, nil
}

// flash shows a transient status message in the footer.
func (m Model) flash(text string) (tea.Model, tea.Cmd) {
	m.status = text
	return m, tea.Tick(2*time.Second, func(time.Time) tea.Msg {
		return clearStatusMsg{}
	})
}
