// Package watch is the live list view: items of one list, kept current by
// the change bus, with optimistic toggling and debounced search-as-you-type.
package watch

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/listd/listd/internal/docsync"
	"github.com/listd/listd/internal/models"
	"github.com/listd/listd/internal/optimistic"
	"github.com/listd/listd/internal/output"
	"github.com/listd/listd/internal/projection"
	"github.com/listd/listd/internal/search"
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("45"))
	cursorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("212"))
	doneStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("242")).Strikethrough(true)
	pendingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Italic(true)
	errStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	helpStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// changedMsg signals a change notification for the watched list arrived.
type changedMsg struct{}

// reloadedMsg carries the result of a projection reload.
type reloadedMsg struct{ err error }

// toggledMsg carries the result of an optimistic toggle.
type toggledMsg struct{ err error }

// searchMsg carries debounced search results.
type searchMsg struct {
	q       string
	results []docsync.SearchResult
	err     error
}

// Model is the Bubble Tea model for the live list view.
type Model struct {
	ctx    context.Context
	client *docsync.Client
	store  *projection.Store[models.Item]
	mut    *optimistic.Mutator[models.Item]

	listID    string
	listTitle string

	// change notifications funnel through this channel so the bus handler
	// never touches the model directly
	changes chan struct{}
	results chan searchMsg

	dispatcher *search.Dispatcher[[]docsync.SearchResult]

	cursor    int
	searching bool
	input     textinput.Model
	hits      []docsync.SearchResult
	spin      spinner.Model
	loading   bool
	width     int
	height    int
	err       error
}

// New builds the model. The caller subscribes Notify to the bus and
// unsubscribes on teardown.
func New(ctx context.Context, client *docsync.Client, store *projection.Store[models.Item],
	mut *optimistic.Mutator[models.Item], listID, listTitle string) Model {

	input := textinput.New()
	input.Placeholder = "search"
	input.CharLimit = 100

	spin := spinner.New()
	spin.Spinner = spinner.Dot

	m := Model{
		ctx:       ctx,
		client:    client,
		store:     store,
		mut:       mut,
		listID:    listID,
		listTitle: listTitle,
		changes:   make(chan struct{}, 1),
		results:   make(chan searchMsg, 1),
		input:     input,
		spin:      spin,
		loading:   true,
	}
	m.dispatcher = search.NewDispatcher(
		func(ctx context.Context, q string) ([]docsync.SearchResult, error) {
			return client.Search(ctx, q, listID)
		},
		func(q string, results []docsync.SearchResult, err error) {
			select {
			case m.results <- searchMsg{q: q, results: results, err: err}:
			default:
			}
		})
	return m
}

// Notify is the bus handler: it coalesces change notifications into the
// model's channel without blocking the watcher goroutine.
func (m Model) Notify() {
	select {
	case m.changes <- struct{}{}:
	default:
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.reload(), m.waitForChange(), m.waitForResults(), m.spin.Tick)
}

func (m Model) reload() tea.Cmd {
	return func() tea.Msg {
		return reloadedMsg{err: m.store.Reload(m.ctx)}
	}
}

func (m Model) waitForChange() tea.Cmd {
	return func() tea.Msg {
		<-m.changes
		return changedMsg{}
	}
}

func (m Model) waitForResults() tea.Cmd {
	return func() tea.Msg {
		return tea.Msg(<-m.results)
	}
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case changedMsg:
		return m, tea.Batch(m.reload(), m.waitForChange())

	case reloadedMsg:
		m.loading = false
		m.err = msg.err
		m.clampCursor()
		return m, nil

	case toggledMsg:
		m.err = msg.err
		return m, nil

	case searchMsg:
		m.err = msg.err
		m.hits = msg.results
		return m, m.waitForResults()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.searching {
		switch msg.String() {
		case "esc":
			m.searching = false
			m.hits = nil
			m.input.Reset()
			m.dispatcher.Stop()
			return m, nil
		case "enter":
			m.dispatcher.Flush(m.ctx, m.input.Value())
			return m, nil
		default:
			var cmd tea.Cmd
			m.input, cmd = m.input.Update(msg)
			m.dispatcher.Type(m.ctx, m.input.Value())
			return m, cmd
		}
	}

	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < m.store.Len()-1 {
			m.cursor++
		}
	case "/":
		m.searching = true
		m.input.Focus()
		return m, textinput.Blink
	case " ", "x":
		return m, m.toggle()
	case "r":
		m.loading = true
		return m, m.reload()
	}
	return m, nil
}

// toggle flips the item under the cursor optimistically. The view renders
// the pending value immediately; a failure rolls back and surfaces.
func (m Model) toggle() tea.Cmd {
	items := m.store.Snapshot()
	if m.cursor >= len(items) {
		return nil
	}
	it := items[m.cursor]
	next := !it.Done
	return func() tea.Msg {
		err := optimistic.Update(m.ctx, m.mut, it.ID, "done",
			func(it models.Item) bool { return it.Done },
			func(it models.Item, v bool) models.Item { it.Done = v; return it },
			next,
			func(ctx context.Context) (*models.Item, error) {
				return m.client.UpdateItem(ctx, m.listID, it.ID, docsync.ItemPatch{Done: &next})
			})
		return toggledMsg{err: err}
	}
}

func (m *Model) clampCursor() {
	if n := m.store.Len(); m.cursor >= n && n > 0 {
		m.cursor = n - 1
	}
}

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render(m.listTitle))
	if m.loading {
		b.WriteString(" " + m.spin.View())
	}
	b.WriteString("\n\n")

	if m.searching {
		b.WriteString(m.input.View() + "\n\n")
		for i := range m.hits {
			r := &m.hits[i]
			b.WriteString(fmt.Sprintf("  %s  %s\n", output.FormatItem(&r.Item, false), helpStyle.Render(r.ListTitle)))
		}
		if len(m.hits) == 0 && m.input.Value() != "" {
			b.WriteString(helpStyle.Render("  no matches\n"))
		}
		b.WriteString("\n" + helpStyle.Render("enter: search now  esc: back"))
		return b.String()
	}

	items := m.store.Snapshot()
	if len(items) == 0 && !m.loading {
		b.WriteString(helpStyle.Render("nothing here\n"))
	}
	for i := range items {
		it := &items[i]
		line := it.Title
		if it.Done {
			line = doneStyle.Render("[x] " + line)
		} else {
			line = "[ ] " + line
		}
		if prov, _ := m.store.Provenance(it.ID); prov == models.Pending {
			line = pendingStyle.Render(line + " …")
		}
		prefix := "  "
		if i == m.cursor {
			prefix = cursorStyle.Render("> ")
		}
		b.WriteString(prefix + line + "\n")
	}

	if m.err != nil {
		b.WriteString("\n" + errStyle.Render(m.err.Error()) + "\n")
	}
	b.WriteString("\n" + helpStyle.Render("space: toggle  /: search  r: reload  q: quit"))
	return b.String()
}
