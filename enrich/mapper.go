package enrich

import (
	"math"
	"strconv"
	"strings"

	"github.com/s0up4200/enrichr/store"
	"github.com/s0up4200/enrichr/tmdb"
)

// MapDetails converts a TMDB detail payload into the enrichment field set.
// It performs no I/O and maps every input, including nil, to a complete result.
func MapDetails(d *tmdb.MovieDetails, imageBaseURL string) store.Metadata {
	if d == nil {
		return store.Metadata{}
	}

	m := store.Metadata{
		TMDBID:         d.ID,
		TituloES:       d.Title,
		TituloOriginal: d.OriginalTitle,
		Year:           releaseYear(d.ReleaseDate),
		Director:       joinNames(d.Directors()),
		Plot:           nonEmpty(d.Overview),
		Genre:          joinNames(d.GenreNames()),
		TMDBRating:     roundRating(d.VoteAverage),
		// TMDB carries no IMDb rating.
		IMDBRating: nil,
	}

	if d.ExternalIDs != nil && d.ExternalIDs.IMDbID != nil {
		m.IMDBID = nonEmpty(*d.ExternalIDs.IMDbID)
	}

	if d.PosterPath != nil && *d.PosterPath != "" {
		poster := imageBaseURL + *d.PosterPath
		m.Poster = &poster
	}

	if d.Runtime != 0 {
		runtime := strconv.Itoa(d.Runtime) + " min"
		m.Runtime = &runtime
	}

	return m
}

func releaseYear(date string) *string {
	if len(date) > 4 {
		date = date[:4]
	}
	return nonEmpty(date)
}

func joinNames(names []string) *string {
	if len(names) == 0 {
		return nil
	}
	joined := strings.Join(names, ", ")
	return &joined
}

// roundRating rounds to one decimal using the exact binary value of vote, so
// 7.25 becomes 7.2 and 6.45 becomes 6.5. A rating that rounds to zero is treated as unrated.
func roundRating(vote float64) *float64 {
	rounded, err := strconv.ParseFloat(strconv.FormatFloat(vote, 'f', 1, 64), 64)
	if err != nil || rounded == 0 || math.IsNaN(rounded) {
		return nil
	}
	return &rounded
}

func nonEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
