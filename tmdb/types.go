package tmdb

// SearchResult represents a single TMDB movie search match.
type SearchResult struct {
	ID            int64   `json:"id"`
	Title         string  `json:"title"`
	OriginalTitle string  `json:"original_title"`
	Overview      string  `json:"overview"`
	ReleaseDate   string  `json:"release_date"`
	Popularity    float64 `json:"popularity"`
	VoteAverage   float64 `json:"vote_average"`
}

// SearchResponse models the TMDB paginated search response.
type SearchResponse struct {
	Page         int            `json:"page"`
	Results      []SearchResult `json:"results"`
	TotalPages   int            `json:"total_pages"`
	TotalResults int            `json:"total_results"`
}

// Genre is a TMDB genre entry.
type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// CrewMember represents a crew member in credits
type CrewMember struct {
	Name       string `json:"name"`
	Department string `json:"department"`
	Job        string `json:"job"`
}

// Credits represents the crew embedded with append_to_response=credits
type Credits struct {
	Crew []CrewMember `json:"crew"`
}

// ExternalIDs represents identifiers embedded with append_to_response=external_ids
type ExternalIDs struct {
	IMDbID *string `json:"imdb_id"`
}

// MovieDetails is the /movie/{id} payload. Fields TMDB may omit or null are pointers.
type MovieDetails struct {
	ID            int64        `json:"id"`
	Title         *string      `json:"title"`
	OriginalTitle *string      `json:"original_title"`
	ReleaseDate   string       `json:"release_date"`
	Overview      string       `json:"overview"`
	PosterPath    *string      `json:"poster_path"`
	VoteAverage   float64      `json:"vote_average"`
	Runtime       int          `json:"runtime"`
	Genres        []Genre      `json:"genres"`
	Credits       *Credits     `json:"credits,omitempty"`
	ExternalIDs   *ExternalIDs `json:"external_ids,omitempty"`
}

// Directors returns the names of crew members credited as Director, in credit order.
func (d *MovieDetails) Directors() []string {
	if d == nil || d.Credits == nil {
		return nil
	}
	var names []string
	for _, member := range d.Credits.Crew {
		if member.Job == "Director" {
			names = append(names, member.Name)
		}
	}
	return names
}

// GenreNames returns the genre names in payload order.
func (d *MovieDetails) GenreNames() []string {
	if d == nil {
		return nil
	}
	names := make([]string, 0, len(d.Genres))
	for _, g := range d.Genres {
		names = append(names, g.Name)
	}
	return names
}

// authResponse is the /authentication payload.
type authResponse struct {
	Success       bool   `json:"success"`
	StatusCode    int    `json:"status_code"`
	StatusMessage string `json:"status_message"`
}
