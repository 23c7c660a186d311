package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"golang.org/x/term"

	"github.com/wippyai/wasm-vmctx/layout"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	cellStyle = lipgloss.NewStyle().
			Padding(0, 1)

	emptyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666")).
			Padding(0, 1)

	borderStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

// isTerminal reports whether w is a terminal that should get styled output.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func printRegions(w io.Writer, regions []layout.RegionInfo) error {
	headers := []string{"REGION", "RECORD", "COUNT", "START", "SIZE"}
	rows := make([][]string, 0, len(regions))
	for _, ri := range regions {
		rows = append(rows, []string{
			ri.Region.String(),
			ri.Record.String(),
			strconv.FormatUint(ri.Count, 10),
			strconv.FormatInt(ri.Start, 10),
			strconv.FormatInt(ri.Size, 10),
		})
	}
	var total int64
	if len(regions) > 0 {
		total = regions[len(regions)-1].End()
	}
	footer := fmt.Sprintf("total %d", total)

	if isTerminal(w) {
		empty := make(map[int]bool)
		for i, ri := range regions {
			empty[i] = ri.Count == 0
		}
		t := styledTable(headers, rows, func(row int) bool { return empty[row] })
		_, err := fmt.Fprintf(w, "%s\n%s\n", t, titleStyle.Render(footer))
		return err
	}
	if err := writePlain(w, headers, rows); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w, footer)
	return err
}

func printRecords(w io.Writer, records []layout.Record) error {
	headers := []string{"RECORD", "SIZE", "ALIGN", "FIELDS"}
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, []string{
			r.Kind.String(),
			strconv.Itoa(int(r.Size)),
			strconv.Itoa(int(r.Align)),
			formatFields(r.Fields),
		})
	}

	if isTerminal(w) {
		_, err := fmt.Fprintln(w, styledTable(headers, rows, nil))
		return err
	}
	return writePlain(w, headers, rows)
}

// formatFields renders a field list as name@offset/size pairs; pointer
// fields are marked with a star.
func formatFields(fields []layout.FieldInfo) string {
	parts := make([]string, len(fields))
	for i, f := range fields {
		s := fmt.Sprintf("%s@%d/%d", f.Field, f.Offset, f.Size)
		if f.Pointer {
			s += "*"
		}
		parts[i] = s
	}
	return strings.Join(parts, " ")
}

func styledTable(headers []string, rows [][]string, dim func(row int) bool) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case dim != nil && dim(row):
				return emptyStyle
			default:
				return cellStyle
			}
		})
}

func writePlain(w io.Writer, headers []string, rows [][]string) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(headers, "\t"))
	for _, row := range rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	return tw.Flush()
}
