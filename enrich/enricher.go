package enrich

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/s0up4200/enrichr/filter"
	"github.com/s0up4200/enrichr/store"
	"github.com/s0up4200/enrichr/tmdb"
)

// Outcome is the terminal state of one record in a run.
type Outcome int

const (
	// OutcomeSkipped means the record already had a tmdb_id
	OutcomeSkipped Outcome = iota
	// OutcomeEnriched means metadata was fetched and merged
	OutcomeEnriched
	// OutcomeNotFound means a lookup or the save failed; the file is untouched
	OutcomeNotFound
	// OutcomeInvalid means the record could not be loaded
	OutcomeInvalid
	// OutcomeFiltered means the configured filter excluded the record
	OutcomeFiltered
)

// String returns the string representation of an Outcome
func (o Outcome) String() string {
	switch o {
	case OutcomeSkipped:
		return "skipped"
	case OutcomeEnriched:
		return "enriched"
	case OutcomeNotFound:
		return "not_found"
	case OutcomeInvalid:
		return "invalid"
	case OutcomeFiltered:
		return "filtered"
	default:
		return "unknown"
	}
}

// Stages at which a lookup can fail.
const (
	StageSearch  = "search"
	StageDetails = "details"
	StageSave    = "save"
)

// Result describes what happened to a single record.
type Result struct {
	Outcome  Outcome
	Stage    string // failing stage for OutcomeNotFound
	Err      error
	Metadata *store.Metadata
}

// Networked reports whether producing the result involved remote calls.
func (r Result) Networked() bool {
	return r.Outcome == OutcomeEnriched || r.Outcome == OutcomeNotFound
}

// Enricher walks a record store and fills in TMDB metadata for unenriched records.
type Enricher struct {
	store        RecordStore
	lookup       MovieLookup
	logger       zerolog.Logger
	out          io.Writer
	imageBaseURL string
	delay        time.Duration
	dryRun       bool
	filter       filter.Filter
	sleep        func(context.Context, time.Duration) error
}

// Option configures an Enricher.
type Option func(*Enricher)

// WithOutput sets where progress lines are written. Defaults to stdout.
func WithOutput(w io.Writer) Option {
	return func(e *Enricher) {
		if w != nil {
			e.out = w
		}
	}
}

// WithDelay sets the pause after each record that made remote calls.
func WithDelay(d time.Duration) Option {
	return func(e *Enricher) {
		if d >= 0 {
			e.delay = d
		}
	}
}

// WithDryRun performs lookups without writing records.
func WithDryRun(dryRun bool) Option {
	return func(e *Enricher) {
		e.dryRun = dryRun
	}
}

// WithFilter restricts the run to records matching f.
func WithFilter(f filter.Filter) Option {
	return func(e *Enricher) {
		e.filter = f
	}
}

// WithImageBaseURL sets the prefix for poster paths.
func WithImageBaseURL(baseURL string) Option {
	return func(e *Enricher) {
		if baseURL != "" {
			e.imageBaseURL = baseURL
		}
	}
}

// WithSleep replaces the delay function.
func WithSleep(sleep func(context.Context, time.Duration) error) Option {
	return func(e *Enricher) {
		if sleep != nil {
			e.sleep = sleep
		}
	}
}

// New creates an Enricher over st using lookup for remote metadata.
func New(st RecordStore, lookup MovieLookup, logger zerolog.Logger, opts ...Option) *Enricher {
	e := &Enricher{
		store:        st,
		lookup:       lookup,
		logger:       logger,
		out:          os.Stdout,
		imageBaseURL: tmdb.DefaultImageBaseURL,
		delay:        DefaultDelay,
		sleep:        SleepWithContext,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run processes every record in the store, one at a time, and returns the counts.
// Per-record failures never abort the run; only an unlistable store or a
// cancelled context does.
func (e *Enricher) Run(ctx context.Context) (Summary, error) {
	slugs, err := e.store.List()
	if err != nil {
		return Summary{}, err
	}

	summary := Summary{Total: len(slugs), DryRun: e.dryRun}

	e.logger.Info().
		Str("dir", e.store.Dir()).
		Int("records", len(slugs)).
		Bool("dry_run", e.dryRun).
		Msg("Starting enrichment")

	for i, slug := range slugs {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		prefix := fmt.Sprintf("[%d/%d]", i+1, len(slugs))

		rec, err := e.store.Load(slug)
		if err != nil {
			summary.record(OutcomeInvalid)
			fmt.Fprintf(e.out, "%s %s... ✗ (invalid record)\n", prefix, slug)
			e.logger.Warn().Err(err).Str("slug", slug).Msg("Skipping unreadable record")
			continue
		}

		if outcome, done := e.precheck(rec); done {
			summary.record(outcome)
			continue
		}

		fmt.Fprintf(e.out, "%s %s... ", prefix, rec.Titulo)
		result := e.enrichRecord(ctx, rec)
		fmt.Fprintln(e.out, e.marker(result))
		summary.record(result.Outcome)

		if err := e.sleep(ctx, e.delay); err != nil {
			return summary, err
		}
	}

	e.logger.Info().
		Int("enriched", summary.Enriched).
		Int("skipped", summary.Skipped).
		Int("not_found", summary.NotFound).
		Int("invalid", summary.Invalid).
		Int("filtered", summary.Filtered).
		Msg("Enrichment complete")

	return summary, nil
}

// ProcessRecord runs a single record through skip, filter, lookup and save.
// It does not print progress or apply the rate-limit delay.
func (e *Enricher) ProcessRecord(ctx context.Context, rec *store.Record) Result {
	if outcome, done := e.precheck(rec); done {
		return Result{Outcome: outcome}
	}
	return e.enrichRecord(ctx, rec)
}

// precheck decides the outcomes that need no network access.
func (e *Enricher) precheck(rec *store.Record) (Outcome, bool) {
	if rec.Enriched() {
		return OutcomeSkipped, true
	}

	if e.filter != nil {
		matched, err := e.filter.Evaluate(rec)
		if err != nil {
			e.logger.Warn().Err(err).Str("slug", rec.Slug).Msg("Filter failed, excluding record")
		}
		if !matched {
			return OutcomeFiltered, true
		}
	}

	return 0, false
}

func (e *Enricher) enrichRecord(ctx context.Context, rec *store.Record) Result {
	log := e.logger.With().Str("slug", rec.Slug).Str("titulo", rec.Titulo).Logger()

	match, err := e.lookup.SearchMovie(ctx, rec.Titulo)
	if err != nil {
		if errors.Is(err, tmdb.ErrNoResults) {
			log.Debug().Msg("No TMDB match")
		} else {
			log.Warn().Err(err).Msg("TMDB search failed")
		}
		return Result{Outcome: OutcomeNotFound, Stage: StageSearch, Err: err}
	}

	details, err := e.lookup.GetMovieDetails(ctx, match.ID)
	if err != nil {
		log.Warn().Err(err).Int64("tmdb_id", match.ID).Msg("TMDB details failed")
		return Result{Outcome: OutcomeNotFound, Stage: StageDetails, Err: err}
	}

	metadata := MapDetails(details, e.imageBaseURL)

	// Work on a copy so a failed save leaves the caller's record untouched.
	updated, err := cloneRecord(rec)
	if err == nil {
		err = updated.Apply(metadata)
	}
	if err == nil && !e.dryRun {
		err = e.store.Save(updated)
	}
	if err != nil {
		log.Error().Err(err).Msg("Failed to save record")
		return Result{Outcome: OutcomeNotFound, Stage: StageSave, Err: err}
	}

	*rec = *updated

	log.Info().
		Int64("tmdb_id", metadata.TMDBID).
		Bool("dry_run", e.dryRun).
		Msg("Enriched record")

	return Result{Outcome: OutcomeEnriched, Metadata: &metadata}
}

// marker renders the tail of a progress line.
func (e *Enricher) marker(result Result) string {
	switch result.Outcome {
	case OutcomeEnriched:
		year := "?"
		if result.Metadata.Year != nil {
			year = *result.Metadata.Year
		}
		original := ""
		if result.Metadata.TituloOriginal != nil {
			original = *result.Metadata.TituloOriginal
		}
		line := fmt.Sprintf("✓ %s (%s)", original, year)
		if e.dryRun {
			line += " [dry run]"
		}
		return line
	case OutcomeNotFound:
		if result.Stage == StageSearch {
			return "✗"
		}
		return fmt.Sprintf("✗ (%s)", result.Stage)
	default:
		return result.Outcome.String()
	}
}

func cloneRecord(rec *store.Record) (*store.Record, error) {
	data, err := rec.MarshalJSON()
	if err != nil {
		return nil, err
	}
	return store.ParseRecord(rec.Slug, data)
}
