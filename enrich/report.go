package enrich

import (
	"fmt"
	"io"
	"path/filepath"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// Summary holds the per-outcome counts of a run.
type Summary struct {
	Total    int
	Enriched int
	Skipped  int
	NotFound int
	Invalid  int
	Filtered int
	DryRun   bool
}

func (s *Summary) record(o Outcome) {
	switch o {
	case OutcomeEnriched:
		s.Enriched++
	case OutcomeSkipped:
		s.Skipped++
	case OutcomeNotFound:
		s.NotFound++
	case OutcomeInvalid:
		s.Invalid++
	case OutcomeFiltered:
		s.Filtered++
	}
}

// Render writes the end-of-run report for the store at dir.
func (s Summary) Render(w io.Writer, dir string) {
	rows := [][]string{
		{"Enriched", strconv.Itoa(s.Enriched)},
		{"Already enriched", strconv.Itoa(s.Skipped)},
		{"Not found", strconv.Itoa(s.NotFound)},
	}
	if s.Invalid > 0 {
		rows = append(rows, []string{"Invalid", strconv.Itoa(s.Invalid)})
	}
	if s.Filtered > 0 {
		rows = append(rows, []string{"Filtered out", strconv.Itoa(s.Filtered)})
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, RenderTable([]string{"Result", "Count"}, rows, 1))

	if s.DryRun {
		fmt.Fprintln(w, "Dry run: no records were written.")
	}

	if s.NotFound > 0 {
		fmt.Fprintf(w, "\n%d movie(s) could not be matched on TMDB.\n", s.NotFound)
		fmt.Fprintf(w, "Edit %s by hand: add a tmdb_id and run again, or fill in the fields yourself.\n",
			filepath.Join(dir, "<slug>.json"))
	}
}

// RenderTable formats rows as a rounded table. Columns listed in rightAligned
// (zero-based) are right aligned.
func RenderTable(headers []string, rows [][]string, rightAligned ...int) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, columns)
	for i, h := range headers {
		header[i] = h
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := range columns {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	configs := make([]table.ColumnConfig, 0, columns)
	for i := range columns {
		align := text.AlignLeft
		for _, col := range rightAligned {
			if col == i {
				align = text.AlignRight
			}
		}
		configs = append(configs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(configs)

	return tw.Render()
}
