package render

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/matst80/dematerialized-catalog/pkg/types"
)

// Terminal writes the listing, the pager and the filter panels to a writer.
// It satisfies both the pager view and the facet panel.
type Terminal struct {
	mu      sync.Mutex
	out     io.Writer
	styles  Styles
	visible map[types.Group]bool
}

func NewTerminal(out io.Writer) *Terminal {
	return &Terminal{
		out:     out,
		styles:  DefaultStyles(lipgloss.NewRenderer(out)),
		visible: make(map[types.Group]bool),
	}
}

func (t *Terminal) RenderItems(items []types.Item) {
	t.mu.Lock()
	defer t.mu.Unlock()

	headers := []string{"ID", "NAME", "BRAND", "CATEGORY", "COLOR", "PRICE"}
	rows := make([][]string, 0, len(items))
	for _, item := range items {
		rows = append(rows, []string{
			string(item.Id),
			item.Name,
			item.Brand,
			strings.Trim(item.Category+" / "+item.Subcategory, " /"),
			item.Color,
			formatPrice(item.Price),
		})
	}
	fmt.Fprintln(t.out, t.table(headers, rows))
}

func (t *Terminal) table(headers []string, rows [][]string) string {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], lipgloss.Width(cell))
		}
	}

	var sb strings.Builder
	cells := make([]string, len(headers))
	for i, h := range headers {
		cells[i] = t.styles.Cell.Render(t.styles.Header.Width(widths[i]).Render(h))
	}
	sb.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	for _, row := range rows {
		sb.WriteString("\n")
		for i, cell := range row {
			style := t.styles.Cell
			if i == len(row)-1 {
				style = t.styles.Price
			}
			cells[i] = style.Width(widths[i] + 2).Render(cell)
		}
		sb.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	return sb.String()
}

func formatPrice(price float64) string {
	if price == 0 {
		return ""
	}
	return fmt.Sprintf("%.2f", price)
}

func (t *Terminal) RenderEmpty(message string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintln(t.out, t.styles.Muted.Render(message))
}

func (t *Terminal) UpdatePager(state types.PageState, prevDisabled, nextDisabled bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	prev := t.control("< prev", prevDisabled)
	next := t.control("next >", nextDisabled)
	page := fmt.Sprintf("page %d of %d", state.CurrentPage, state.TotalPages)
	fmt.Fprintln(t.out, prev+"  "+t.styles.Title.Render(page)+"  "+next)
}

func (t *Terminal) control(label string, disabled bool) string {
	if disabled {
		return t.styles.Disabled.Render(label)
	}
	return t.styles.Enabled.Render(label)
}

func (t *Terminal) SetPanelVisible(g types.Group, visible bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.visible[g] = visible
}

// RenderOptions lists the options of a group. Groups whose panel was hidden
// print nothing.
func (t *Terminal) RenderOptions(g types.Group, options []types.FacetOption) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if visible, ok := t.visible[g]; ok && !visible {
		return
	}
	labels := make([]string, 0, len(options))
	for _, o := range options {
		labels = append(labels, o.Label())
	}
	text := strings.Join(labels, ", ")
	if len(labels) == 0 {
		text = t.styles.Muted.Render("(none)")
	}
	fmt.Fprintln(t.out, t.styles.Group.Render(g.String())+text)
}

// RenderKeys prints the detected parameter key of every group.
func (t *Terminal) RenderKeys(keys map[types.Group]string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, g := range types.Groups {
		key, ok := keys[g]
		if !ok {
			key = t.styles.Muted.Render("(not detected)")
		}
		fmt.Fprintln(t.out, t.styles.Group.Render(g.String())+key)
	}
}

func (t *Terminal) RenderError(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintln(t.out, t.styles.Error.Render(err.Error()))
}
