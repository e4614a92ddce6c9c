package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/modelcanvas/pkg/cache"
	"github.com/matzehuels/modelcanvas/pkg/graph"
	"github.com/matzehuels/modelcanvas/pkg/model"
	"github.com/matzehuels/modelcanvas/pkg/model/transform"
	"github.com/matzehuels/modelcanvas/pkg/view"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// viewCommand creates the view command for interactive hierarchy browsing.
func (c *CLI) viewCommand() *cobra.Command {
	var reset bool

	cmd := &cobra.Command{
		Use:   "view [graph.json]",
		Short: "Browse the module hierarchy interactively",
		Long: `Browse the module hierarchy interactively.

Arrow keys move the cursor, enter expands or collapses the selected
module, and q quits. Collapsed modules show their aggregate parameter
count.

The expansion state is saved per graph and restored on the next run.
Use --reset to start fully collapsed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := graph.ReadGraphFile(args[0])
			if err != nil {
				return fmt.Errorf("load graph %s: %w", args[0], err)
			}
			m := newTreeModel(args[0], g)

			states, hash := openStateStore(g)
			if states != nil && !reset {
				if saved, err := states.Load(hash); err == nil && len(saved) > 0 {
					m.builder.SetExpansionState(saved)
					m.rows = m.flatten()
				}
			}

			final, err := tea.NewProgram(m).Run()
			if err != nil {
				return err
			}
			if states != nil {
				fm, ok := final.(treeModel)
				if ok {
					if err := states.Save(hash, fm.builder.ExpansionState()); err != nil {
						c.Logger.Warn("save view state", "err", err)
					}
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&reset, "reset", false, "Ignore any saved expansion state")
	return cmd
}

// openStateStore returns the persistent expansion state store and the
// graph's content hash, or nil when state cannot be persisted. State
// persistence is best effort; browsing works without it.
func openStateStore(g *model.Graph) (*view.StateStore, string) {
	data, err := graph.MarshalGraph(g)
	if err != nil {
		return nil, ""
	}
	states, err := view.NewStateStore("")
	if err != nil {
		return nil, ""
	}
	return states, cache.Hash(data)
}

// =============================================================================
// TreeModel - Interactive hierarchy browser
// =============================================================================

// treeRow is one visible line of the hierarchy tree.
type treeRow struct {
	id         string
	label      string
	indent     int
	params     int
	expandable bool
	expanded   bool
	container  bool
}

// treeModel is the bubbletea model for hierarchy browsing.
type treeModel struct {
	title   string
	graph   *model.Graph
	hier    *transform.Hierarchy
	builder *view.Builder
	rows    []treeRow
	cursor  int
	height  int
	offset  int
}

func newTreeModel(title string, g *model.Graph) treeModel {
	m := treeModel{
		title:   title,
		graph:   g,
		hier:    transform.ResolveHierarchy(g),
		builder: view.NewBuilder(g),
		height:  20,
	}
	m.rows = m.flatten()
	return m
}

// flatten walks the hierarchy top-down, descending only into expanded
// containers, and returns the visible rows in display order.
func (m treeModel) flatten() []treeRow {
	var rows []treeRow

	var walk func(id string, indent int)
	walk = func(id string, indent int) {
		d, ok := m.builder.Details(id)
		if !ok {
			return
		}
		rows = append(rows, treeRow{
			id:         id,
			label:      d.Label,
			indent:     indent,
			params:     d.NumParams,
			expandable: d.HasChildren,
			expanded:   d.Expanded,
			container:  d.Kind == view.KindContainer,
		})
		if !d.Expanded {
			return
		}
		for _, child := range m.hier.Children(id) {
			walk(child, indent+1)
		}
		for _, member := range m.hier.Members(id) {
			walk(member, indent+1)
		}
	}

	// Roots follow the builder's rule: a declared parent that does not
	// exist in the graph makes the element a root, not invisible.
	for _, c := range m.graph.Containers() {
		if m.hier.Parent(c.ID) == "" {
			walk(c.ID, 0)
		}
	}
	for _, n := range m.graph.Nodes() {
		if n.Parent == "" || !m.graph.HasContainer(n.Parent) {
			walk(n.ID, 0)
		}
	}
	return rows
}

func (m treeModel) Init() tea.Cmd {
	return nil
}

func (m treeModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.height = msg.Height - 4
		if m.height < 5 {
			m.height = 5
		}
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.rows)-1 {
				m.cursor++
			}
		case "enter", " ":
			if m.cursor < len(m.rows) && m.rows[m.cursor].expandable {
				m.builder.Toggle(m.rows[m.cursor].id)
				m.rows = m.flatten()
				if m.cursor >= len(m.rows) {
					m.cursor = len(m.rows) - 1
				}
			}
		}
	}

	// Keep the cursor inside the visible window.
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+m.height {
		m.offset = m.cursor - m.height + 1
	}
	return m, nil
}

func (m treeModel) View() string {
	var b strings.Builder
	b.WriteString(StyleTitle.Render(m.title) + "\n\n")

	end := m.offset + m.height
	if end > len(m.rows) {
		end = len(m.rows)
	}
	for i := m.offset; i < end; i++ {
		b.WriteString(m.renderRow(i) + "\n")
	}

	b.WriteString("\n" + listDimStyle.Render("enter: expand/collapse · q: quit"))
	return b.String()
}

func (m treeModel) renderRow(i int) string {
	row := m.rows[i]

	marker := "  "
	if row.expandable {
		if row.expanded {
			marker = "▾ "
		} else {
			marker = "▸ "
		}
	}

	line := strings.Repeat("  ", row.indent) + marker + row.label
	if row.params > 0 && !row.expanded {
		line += listDimStyle.Render(" (" + formatParams(row.params) + " params)")
	}

	switch {
	case i == m.cursor:
		return listSelectedStyle.Render("> " + line)
	case row.container:
		return listNormalStyle.Render("  " + line)
	default:
		return listDimStyle.Render("  " + line)
	}
}
