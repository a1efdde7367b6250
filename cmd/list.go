package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/s0up4200/enrichr/enrich"
	"github.com/s0up4200/enrichr/filter"
	"github.com/s0up4200/enrichr/store"
)

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List movie records and their enrichment status",
	Long: `List every movie record in the store with its TMDB id and whether it
still needs enrichment. Honours --filter and --preset.`,
	Args: cobra.NoArgs,
	RunE: runList,
}

// recordRow is one line of the list output
type recordRow struct {
	Slug   string
	Titulo string
	Year   string
	TMDBID string
	Status string
}

func runList(cmd *cobra.Command, args []string) error {
	st, err := newStore()
	if err != nil {
		return err
	}

	recordFilter, err := resolveFilter()
	if err != nil {
		return err
	}

	rows, err := collectRows(st, recordFilter)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(rows) == 0 {
		fmt.Fprintln(out, "No movie records found.")
		return nil
	}

	table := make([][]string, 0, len(rows))
	pending := 0
	for _, row := range rows {
		table = append(table, []string{row.Slug, row.Titulo, row.Year, row.TMDBID, row.Status})
		if row.Status == "pending" {
			pending++
		}
	}

	fmt.Fprintln(out, enrich.RenderTable([]string{"Slug", "Titulo", "Year", "TMDB ID", "Status"}, table, 3))
	fmt.Fprintf(out, "%d record(s), %d pending enrichment\n", len(rows), pending)
	return nil
}

// collectRows loads every record and keeps those accepted by f.
// Unreadable records are always listed so they can be fixed.
func collectRows(st enrich.RecordStore, f filter.Filter) ([]recordRow, error) {
	slugs, err := st.List()
	if err != nil {
		return nil, err
	}

	rows := make([]recordRow, 0, len(slugs))
	for _, slug := range slugs {
		rec, err := st.Load(slug)
		if err != nil {
			logger.Debug().Err(err).Str("slug", slug).Msg("Unreadable record")
			rows = append(rows, recordRow{Slug: slug, Status: "invalid"})
			continue
		}

		if f != nil {
			matched, err := f.Evaluate(rec)
			if err != nil {
				logger.Warn().Err(err).Str("slug", slug).Msg("Filter failed, excluding record")
			}
			if !matched {
				continue
			}
		}

		row := recordRow{
			Slug:   slug,
			Titulo: rec.Titulo,
			Year:   rec.String(store.FieldYear),
			Status: "pending",
		}
		if rec.Enriched() {
			row.Status = "enriched"
			if id, ok := rec.TMDBID(); ok {
				row.TMDBID = strconv.FormatInt(id, 10)
			}
		}
		rows = append(rows, row)
	}

	return rows, nil
}
