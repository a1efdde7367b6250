package enrich

import (
	"context"

	"github.com/s0up4200/enrichr/store"
	"github.com/s0up4200/enrichr/tmdb"
)

// MovieLookup defines the remote lookups the enricher needs
type MovieLookup interface {
	SearchMovie(ctx context.Context, title string) (*tmdb.SearchResult, error)
	GetMovieDetails(ctx context.Context, movieID int64) (*tmdb.MovieDetails, error)
}

// RecordStore defines the record persistence the enricher needs
type RecordStore interface {
	Dir() string
	List() ([]string, error)
	Load(slug string) (*store.Record, error)
	Save(rec *store.Record) error
}
