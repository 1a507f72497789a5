package typedesc

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"
)

// Row is one line of a descriptor table.
type Row struct {
	Path  string
	Kind  string
	Type  string
	Size  string
	Align string
}

var header = Row{Path: "PATH", Kind: "KIND", Type: "TYPE", Size: "SIZE", Align: "ALIGN"}

// Rows flattens d depth-first. Paths name the position of each element:
// ".0" for an array element, ".N" for struct field N, ".ret" and ".pN" for
// function parts.
func Rows(d Descriptor) []Row {
	var rows []Row
	var walk func(path string, d Descriptor)
	walk = func(path string, d Descriptor) {
		row := Row{Path: path, Kind: d.Kind, Type: d.Text, Size: "-", Align: "-"}
		if d.Sized {
			row.Size = strconv.FormatUint(d.Size, 10)
			if d.Overflow {
				row.Size = "overflow"
			}
			row.Align = strconv.FormatUint(d.Align, 10)
		}
		if d.Ref {
			row.Type += " (see above)"
		}
		rows = append(rows, row)
		for i, el := range d.Elems {
			walk(path+elemPath(d, i), el)
		}
	}
	walk("$", d)
	return rows
}

func elemPath(parent Descriptor, i int) string {
	if parent.Kind == "function" {
		if i == 0 {
			return ".ret"
		}
		return fmt.Sprintf(".p%d", i-1)
	}
	return "." + strconv.Itoa(i)
}

// WriteTable prints the rows of d as aligned columns. maxType bounds the TYPE
// column; longer renderings are truncated. Zero means unbounded.
func WriteTable(w io.Writer, d Descriptor, maxType int) error {
	rows := append([]Row{header}, Rows(d)...)
	for i := range rows {
		rows[i].Type = truncate(rows[i].Type, maxType)
	}
	widths := [4]int{}
	for _, r := range rows {
		for c, cell := range [4]string{r.Path, r.Kind, r.Type, r.Size} {
			widths[c] = max(widths[c], runewidth.StringWidth(cell))
		}
	}
	var sb strings.Builder
	for _, r := range rows {
		sb.Reset()
		for c, cell := range [4]string{r.Path, r.Kind, r.Type, r.Size} {
			sb.WriteString(runewidth.FillRight(cell, widths[c]))
			sb.WriteString("  ")
		}
		sb.WriteString(r.Align)
		sb.WriteByte('\n')
		if _, err := io.WriteString(w, sb.String()); err != nil {
			return err
		}
	}
	return nil
}

func truncate(value string, width int) string {
	if width <= 0 {
		return value
	}
	if runewidth.StringWidth(value) <= width {
		return value
	}
	if width <= 3 {
		return runewidth.Truncate(value, width, "")
	}
	return runewidth.Truncate(value, width, "...")
}
