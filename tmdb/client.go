package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/text/unicode/norm"
	"golang.org/x/time/rate"
)

const (
	// DefaultBaseURL is the TMDB v3 API root.
	DefaultBaseURL = "https://api.themoviedb.org/3"
	// DefaultImageBaseURL prefixes poster paths.
	DefaultImageBaseURL = "https://image.tmdb.org/t/p/w500"
	// DefaultLanguage is the language requested for localized fields.
	DefaultLanguage = "es-ES"
	// DefaultTimeout bounds every request.
	DefaultTimeout = 15 * time.Second

	maxErrorBody = 512
)

// Client represents a TMDB API client
type Client struct {
	baseURL      string
	token        string
	language     string
	includeAdult bool
	httpClient   *http.Client
	limiter      *rate.Limiter // nil means unlimited
	logger       zerolog.Logger
}

// NewClient creates a new TMDB client authenticated with a bearer token.
func NewClient(token string, logger zerolog.Logger, opts ...Option) (*Client, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, fmt.Errorf("%w: bearer token is required", ErrInvalidConfig)
	}

	client := &Client{
		baseURL:      DefaultBaseURL,
		token:        token,
		language:     DefaultLanguage,
		includeAdult: true,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		logger: logger,
	}
	for _, opt := range opts {
		opt(client)
	}

	if _, err := url.Parse(client.baseURL); err != nil {
		return nil, fmt.Errorf("%w: parse base url: %v", ErrInvalidConfig, err)
	}

	return client, nil
}

// doRequest performs an authenticated GET and decodes the JSON body into out.
func (c *Client) doRequest(ctx context.Context, endpoint string, params url.Values, out any) error {
	requestURL := c.baseURL + endpoint
	if len(params) > 0 {
		requestURL += "?" + params.Encode()
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return fmt.Errorf("request failed (latency=%v): %w", latency, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	c.logger.Debug().
		Str("endpoint", endpoint).
		Int("status", resp.StatusCode).
		Dur("latency", latency).
		Msg("TMDB request")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    http.StatusText(resp.StatusCode),
			Body:       truncate(string(body), maxErrorBody),
		}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	return nil
}

// TestConnection verifies the token against the /authentication endpoint.
func (c *Client) TestConnection(ctx context.Context) error {
	var payload authResponse
	if err := c.doRequest(ctx, "/authentication", nil, &payload); err != nil {
		return err
	}
	if !payload.Success {
		return fmt.Errorf("%w: authentication rejected: %s", ErrInvalidResponse, payload.StatusMessage)
	}
	return nil
}

// SearchMovie searches TMDB for title and returns the first match.
// An empty result list yields ErrNoResults.
func (c *Client) SearchMovie(ctx context.Context, title string) (*SearchResult, error) {
	query := norm.NFC.String(strings.TrimSpace(title))
	if query == "" {
		return nil, &LookupError{Op: "search", Query: title, Err: errors.New("query must not be empty")}
	}

	params := url.Values{}
	params.Set("query", query)
	if c.language != "" {
		params.Set("language", c.language)
	}
	params.Set("include_adult", strconv.FormatBool(c.includeAdult))

	var payload SearchResponse
	if err := c.doRequest(ctx, "/search/movie", params, &payload); err != nil {
		return nil, &LookupError{Op: "search", Query: query, Err: err}
	}

	if len(payload.Results) == 0 {
		return nil, ErrNoResults
	}

	first := payload.Results[0]
	if first.ID <= 0 {
		return nil, &LookupError{Op: "search", Query: query, Err: fmt.Errorf("%w: result without id", ErrInvalidResponse)}
	}

	c.logger.Debug().
		Str("query", query).
		Int64("tmdb_id", first.ID).
		Int("results", len(payload.Results)).
		Msg("TMDB search matched")

	return &first, nil
}

// GetMovieDetails fetches a movie with credits and external ids embedded.
func (c *Client) GetMovieDetails(ctx context.Context, movieID int64) (*MovieDetails, error) {
	id := strconv.FormatInt(movieID, 10)
	if movieID <= 0 {
		return nil, &LookupError{Op: "details", Query: id, Err: errors.New("movie id must be positive")}
	}

	params := url.Values{}
	if c.language != "" {
		params.Set("language", c.language)
	}
	params.Set("append_to_response", "credits,external_ids")

	var payload MovieDetails
	if err := c.doRequest(ctx, "/movie/"+id, params, &payload); err != nil {
		return nil, &LookupError{Op: "details", Query: id, Err: err}
	}
	if payload.ID <= 0 {
		return nil, &LookupError{Op: "details", Query: id, Err: fmt.Errorf("%w: details without id", ErrInvalidResponse)}
	}

	return &payload, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
