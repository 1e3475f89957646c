package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/atlas/pkg/editstate"
	"github.com/matzehuels/atlas/pkg/errors"
	"github.com/matzehuels/atlas/pkg/session"
)

// browseCommand creates the interactive terminal browser command.
func (c *CLI) browseCommand() *cobra.Command {
	var store string

	cmd := &cobra.Command{
		Use:   "browse [file]",
		Short: "Explore a document interactively in the terminal",
		Long: `Browse a map document in the terminal: move through the hotspots of
the current map, follow map links down the hierarchy, and step back up.

Editing is off by default. Press e to enable it, then d to arm the delete
tool: enter marks the hotspot under the cursor, y confirms, esc cancels.

Keys:
  up/k, down/j   move the cursor
  enter          follow the hotspot under the cursor
  b, backspace   go back to the previous map
  e              toggle edit mode
  d              arm the delete tool
  y              confirm a pending delete
  esc            cancel the pending delete
  q              quit`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runBrowse(cmd.Context(), args, store)
		},
	}

	cmd.Flags().StringVar(&store, "store", "", "Browse a document from the store instead of a file")

	return cmd
}

// runBrowse loads the document and hands the terminal to the browser.
func (c *CLI) runBrowse(ctx context.Context, args []string, storeName string) error {
	g, warns, label, err := c.resolveGraph(ctx, args, storeName)
	if err != nil {
		return err
	}
	for _, w := range warns {
		printWarning("%s", w)
	}

	// Session mutations log at info level, which would tear up the
	// alternate screen; the browser shows outcomes in its status line.
	sess, err := session.New(g, "", log.New(io.Discard))
	if err != nil {
		return err
	}

	model, err := newBrowseModel(sess, label)
	if err != nil {
		return err
	}

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}

// =============================================================================
// browseModel - Interactive hotspot navigation
// =============================================================================

// browseModel is the bubbletea model for the document browser. It keeps a
// cursor over the current map's hotspots and re-snapshots the session
// frame after every mutation.
type browseModel struct {
	sess   *session.Session
	label  string
	frame  session.Frame
	status string
	cursor int
	offset int
	height int
}

// newBrowseModel snapshots the session's first frame.
func newBrowseModel(sess *session.Session, label string) (browseModel, error) {
	frame, err := sess.Frame()
	if err != nil {
		return browseModel{}, err
	}
	return browseModel{
		sess:   sess,
		label:  label,
		frame:  frame,
		height: 15,
	}, nil
}

func (m browseModel) Init() tea.Cmd {
	return nil
}

func (m browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.height = msg.Height - 10
		if m.height < 5 {
			m.height = 5
		}
	}
	return m, nil
}

func (m browseModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.status = ""

	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
			if m.cursor < m.offset {
				m.offset = m.cursor
			}
		}
	case "down", "j":
		if m.cursor < len(m.frame.Hotspots)-1 {
			m.cursor++
			if m.cursor >= m.offset+m.height {
				m.offset = m.cursor - m.height + 1
			}
		}
	case "enter":
		m.activate()
	case "b", "backspace":
		m.goBack()
	case "e":
		m.sess.SetEditEnabled(m.frame.Mode == editstate.ModeOff)
		m.refresh()
	case "d":
		if !m.frame.Mode.Editing() {
			m.status = "press e to enable editing first"
			break
		}
		if err := m.sess.SetEditAction(editstate.ModeSelectDelete); err != nil {
			m.status = errors.UserMessage(err)
		}
		m.refresh()
	case "y":
		m.confirmDelete()
	case "esc":
		m.cancelPending()
	}
	return m, nil
}

// refresh re-snapshots the frame and clamps the cursor to the (possibly
// shorter) hotspot list.
func (m *browseModel) refresh() {
	f, err := m.sess.Frame()
	if err != nil {
		m.status = errors.UserMessage(err)
		return
	}
	m.frame = f
	if m.cursor >= len(f.Hotspots) {
		m.cursor = len(f.Hotspots) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	if m.offset > m.cursor {
		m.offset = m.cursor
	}
}

// activate clicks the hotspot under the cursor. What that does depends on
// the session's edit mode; the result drives the status line.
func (m *browseModel) activate() {
	if len(m.frame.Hotspots) == 0 {
		return
	}
	h := m.frame.Hotspots[m.cursor]
	res, err := m.sess.ClickHotspot(h.ID)
	if err != nil {
		m.status = errors.UserMessage(err)
		return
	}
	switch res.Action {
	case session.ClickNavigated:
		m.cursor = 0
		m.offset = 0
	case session.ClickOpenURL:
		m.status = "open " + res.URL
	case session.ClickMarkedForDelete:
		m.status = "press y to delete, esc to cancel"
	}
	m.refresh()
}

func (m *browseModel) goBack() {
	moved, err := m.sess.NavigateBack()
	if err != nil {
		m.status = errors.UserMessage(err)
	}
	if moved {
		m.cursor = 0
		m.offset = 0
	}
	m.refresh()
}

func (m *browseModel) confirmDelete() {
	if m.frame.PendingDelete == "" {
		return
	}
	res, err := m.sess.ConfirmDeletion(m.frame.PendingDelete)
	if err != nil {
		m.status = errors.UserMessage(err)
		return
	}
	switch {
	case res.Warning != nil:
		m.status = res.Warning.Message
	case res.OrphanRemoved != "":
		m.status = fmt.Sprintf("deleted hotspot and orphaned map %q", res.OrphanRemoved)
	default:
		m.status = "deleted hotspot"
	}
	m.refresh()
}

func (m *browseModel) cancelPending() {
	if !m.frame.Mode.Editing() {
		return
	}
	if err := m.sess.SetEditAction(editstate.ModeIdle); err != nil {
		m.status = errors.UserMessage(err)
	}
	m.refresh()
}

func (m browseModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("atlas browse " + m.label))
	b.WriteString("\n")
	b.WriteString(StyleDim.Render("↑/↓ navigate  ⏎ follow  b back  e edit  d delete tool  q quit"))
	b.WriteString("\n\n")

	b.WriteString(StyleHighlight.Render(strings.Join(m.sess.Path(), " / ")))
	b.WriteString("\n")
	b.WriteString(StyleDim.Render("image: " + m.frame.ImageURL))
	b.WriteString("\n")

	mode := m.frame.ModeName
	if m.frame.Mode == editstate.ModeOff {
		mode = "view"
	}
	b.WriteString(StyleDim.Render("mode: " + mode))
	if m.frame.PendingDelete != "" {
		b.WriteString("  " + StyleWarning.Render("y confirms delete, esc cancels"))
	}
	b.WriteString("\n\n")

	if len(m.frame.Hotspots) == 0 {
		b.WriteString(StyleDim.Render("  no hotspots on this map"))
	} else {
		b.WriteString(m.hotspotTable())
	}
	b.WriteString("\n")

	if m.status != "" {
		b.WriteString("\n")
		b.WriteString(StyleWarning.Render(m.status))
	}
	if n := len(m.frame.Hotspots); n > 0 {
		b.WriteString("\n")
		b.WriteString(StyleDim.Render(fmt.Sprintf("  [%d/%d]", m.cursor+1, n)))
	}

	return b.String()
}

func (m browseModel) hotspotTable() string {
	end := m.offset + m.height
	if end > len(m.frame.Hotspots) {
		end = len(m.frame.Hotspots)
	}

	rows := [][]string{}
	for i := m.offset; i < end; i++ {
		h := m.frame.Hotspots[i]

		cursor := "  "
		if i == m.cursor {
			cursor = "▸ "
		}

		kind := "url"
		if h.IsMapLink() {
			kind = "map"
		}

		area := fmt.Sprintf("%.0f,%.0f %.0fx%.0f", h.X, h.Y, h.Width, h.Height)
		rows = append(rows, []string{cursor, h.DisplayTitle(), kind, truncate(h.Target(), 36), area})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Hotspot", "Type", "Target", "Area %").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}

			actualIdx := m.offset + row
			if actualIdx >= len(m.frame.Hotspots) {
				return lipgloss.NewStyle()
			}
			h := m.frame.Hotspots[actualIdx]

			if h.ID == m.frame.PendingDelete {
				return lipgloss.NewStyle().Foreground(colorRed).Bold(actualIdx == m.cursor)
			}
			if actualIdx == m.cursor {
				return lipgloss.NewStyle().Foreground(colorCyan).Bold(true)
			}
			if h.IsURLLink() {
				return lipgloss.NewStyle().Foreground(colorGray)
			}
			return lipgloss.NewStyle()
		})

	return t.Render()
}
