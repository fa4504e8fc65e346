package cli

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/mindlayout/pkg/editor"
	"github.com/matzehuels/mindlayout/pkg/engine"
	"github.com/matzehuels/mindlayout/pkg/errors"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
	statusErrorStyle  = lipgloss.NewStyle().Foreground(colorRed)
)

// browseCommand opens the outline navigator.
func (c *CLI) browseCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "browse <scene>",
		Short: "Navigate and restructure a scene in the terminal",
		Long: `Navigate and restructure a scene in the terminal.

Keys:
  ↑/k ↓/j   move the cursor
  enter     fold or unfold the branch
  K J       move the node before or after its sibling
  h l       promote or demote the node
  p s b g   pin, swap side, boundary, group
  L         lay out all maps
  q         quit

Use --log-file to keep log output out of the display.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			runner, err := c.newRunner(ctx)
			if err != nil {
				return err
			}
			defer runner.Close()

			m, err := newBrowseModel(ctx, newShell(runner, args[0], nil))
			if err != nil {
				return err
			}
			_, err = tea.NewProgram(m, tea.WithContext(ctx), tea.WithAltScreen()).Run()
			return err
		},
	}
}

// =============================================================================
// browseModel - Outline navigator
// =============================================================================

// browseModel is the bubbletea model of the outline navigator.
type browseModel struct {
	ctx    context.Context
	sh     *shell
	rows   []treeRow
	cursor int
	offset int
	height int
	status string
	failed bool
}

func newBrowseModel(ctx context.Context, sh *shell) (browseModel, error) {
	m := browseModel{ctx: ctx, sh: sh, height: 20}
	if err := m.reload(""); err != nil {
		return m, err
	}
	return m, nil
}

// reload rebuilds the outline and keeps the cursor on keep when it is still visible.
func (m *browseModel) reload(keep string) error {
	objs, err := m.sh.host.Objects(m.ctx)
	if err != nil {
		return err
	}
	m.rows = flattenTree(objs, false)
	if m.cursor >= len(m.rows) {
		m.cursor = max(len(m.rows)-1, 0)
	}
	for i, r := range m.rows {
		if r.ID == keep {
			m.cursor = i
			break
		}
	}
	m.scroll()
	return nil
}

func (m *browseModel) scroll() {
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+m.height {
		m.offset = m.cursor - m.height + 1
	}
}

func (m browseModel) selected() string {
	if m.cursor < len(m.rows) {
		return m.rows[m.cursor].ID
	}
	return ""
}

// edit applies fn to the selected node, saves and refreshes the outline.
func (m browseModel) edit(label string, fn func(e *engine.Engine, id string) error) browseModel {
	id := m.selected()
	if id == "" {
		return m
	}
	err := fn(m.sh.engine, id)
	if err == nil {
		err = m.sh.host.Flush(m.ctx)
	}
	m.failed = err != nil
	switch {
	case err == nil:
		m.status = label
	case errors.Is(err, errors.ErrCodeInvariantViolation):
		m.status = errors.UserMessage(err)
	default:
		m.status = err.Error()
	}
	if err := m.reload(id); err != nil {
		m.status, m.failed = err.Error(), true
	}
	return m
}

func (m browseModel) Init() tea.Cmd {
	return nil
}

func (m browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	ctx := m.ctx
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
				m.scroll()
			}
		case "down", "j":
			if m.cursor < len(m.rows)-1 {
				m.cursor++
				m.scroll()
			}
		case "enter", " ":
			return m.edit("toggled fold", func(e *engine.Engine, id string) error {
				return e.ToggleFold(ctx, id, editor.FoldSelf)
			}), nil
		case "K":
			return m.edit("moved up", func(e *engine.Engine, id string) error {
				return e.ChangeNodeOrder(ctx, id, editor.Up)
			}), nil
		case "J":
			return m.edit("moved down", func(e *engine.Engine, id string) error {
				return e.ChangeNodeOrder(ctx, id, editor.Down)
			}), nil
		case "h":
			return m.edit("promoted", func(e *engine.Engine, id string) error { return e.Promote(ctx, id) }), nil
		case "l":
			return m.edit("demoted", func(e *engine.Engine, id string) error { return e.Demote(ctx, id) }), nil
		case "p":
			return m.edit("toggled pin", func(e *engine.Engine, id string) error { return e.TogglePin(ctx, id) }), nil
		case "s":
			return m.edit("swapped side", func(e *engine.Engine, id string) error { return e.SwapSide(ctx, id) }), nil
		case "b":
			return m.edit("toggled boundary", func(e *engine.Engine, id string) error { return e.ToggleBoundary(ctx, id) }), nil
		case "g":
			return m.edit("toggled group", func(e *engine.Engine, id string) error { return e.ToggleBranchGroup(ctx, id) }), nil
		case "L":
			return m.edit("laid out", func(*engine.Engine, string) error { return m.sh.layout(ctx, false) }), nil
		}
	case tea.WindowSizeMsg:
		m.height = max(msg.Height-6, 5)
		m.scroll()
	}
	return m, nil
}

func (m browseModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(m.sh.name))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ fold  K/J order  h/l promote/demote  p s b g  L layout  q quit"))
	b.WriteString("\n\n")

	end := min(m.offset+m.height, len(m.rows))
	for i := m.offset; i < end; i++ {
		line := formatRow(m.rows[i], false)
		if i == m.cursor {
			line = listSelectedStyle.Render("▸ ") + line
		} else {
			line = "  " + line
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	status := fmt.Sprintf("  [%d/%d]", m.cursor+1, len(m.rows))
	if m.status != "" {
		status += "  " + m.status
	}
	if m.failed {
		b.WriteString(statusErrorStyle.Render(status))
	} else {
		b.WriteString(listDimStyle.Render(status))
	}

	return b.String()
}
