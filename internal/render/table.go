package render

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// columnGap separates table columns.
const columnGap = "  "

// table lays out rows in left-aligned columns sized by display width, so
// wide runes (CJK, emoji) occupy the cells they are drawn in.
type table struct {
	headers []string
	rows    [][]string
}

func (t *table) add(cells ...string) {
	t.rows = append(t.rows, cells)
}

func (t *table) widths() []int {
	w := make([]int, len(t.headers))
	for i, h := range t.headers {
		w[i] = runewidth.StringWidth(h)
	}
	for _, row := range t.rows {
		for i, cell := range row {
			if cw := runewidth.StringWidth(cell); cw > w[i] {
				w[i] = cw
			}
		}
	}
	return w
}

// width returns the display width of a full line, gaps included.
func (t *table) width() int {
	total := 0
	for _, w := range t.widths() {
		total += w
	}
	return total + len(columnGap)*(len(t.headers)-1)
}

// write renders the header, a rule, and the rows. Trailing blanks are
// trimmed from every line.
func (t *table) write(b *strings.Builder) {
	widths := t.widths()
	writeLine(b, t.headers, widths)
	b.WriteString(rule(t.width()))
	b.WriteByte('\n')
	for _, row := range t.rows {
		writeLine(b, row, widths)
	}
}

func writeLine(b *strings.Builder, cells []string, widths []int) {
	var line strings.Builder
	for i, cell := range cells {
		if i > 0 {
			line.WriteString(columnGap)
		}
		line.WriteString(runewidth.FillRight(cell, widths[i]))
	}
	b.WriteString(strings.TrimRight(line.String(), " "))
	b.WriteByte('\n')
}

func rule(n int) string {
	return strings.Repeat("-", n)
}
