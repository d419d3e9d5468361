package renderer

import (
	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"
)

// Column returns the number of terminal cells s occupies. The console
// uses it to turn the text left of the cursor into a cursor column.
func Column(s string) int {
	return uniseg.StringWidth(s)
}

// Cluster is one user-perceived character and the cells it occupies.
type Cluster struct {
	Runes []rune
	Width int
}

// Clusters splits s into grapheme clusters.
func Clusters(s string) []Cluster {
	var out []Cluster
	g := uniseg.NewGraphemes(s)
	for g.Next() {
		out = append(out, Cluster{Runes: g.Runes(), Width: g.Width()})
	}
	return out
}

// Truncate shortens s to at most width cells, ending in an ellipsis when
// anything was cut.
func Truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	return runewidth.Truncate(s, width, "…")
}

// Wrap splits s into rows of at most width cells without splitting a
// cluster. An empty s yields one empty row.
func Wrap(s string, width int) []string {
	if width <= 0 {
		return nil
	}
	var (
		rows []string
		cur  []rune
		w    int
	)
	for _, c := range Clusters(s) {
		if w+c.Width > width && len(cur) > 0 {
			rows = append(rows, string(cur))
			cur, w = cur[:0:0], 0
		}
		cur = append(cur, c.Runes...)
		w += c.Width
	}
	return append(rows, string(cur))
}
