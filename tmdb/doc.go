// Package tmdb provides a client for The Movie Database (TMDB) v3 API.
//
// Only the calls needed to enrich local movie records are implemented: a
// title search and a movie detail fetch that embeds credits and external ids
// in the same response.
//
// # Usage
//
//	logger := zerolog.New(os.Stderr)
//	client, err := tmdb.NewClient(
//		"your-v4-read-access-token",
//		logger,
//		tmdb.WithLanguage("es-ES"),
//		tmdb.WithTimeout(15*time.Second),
//	)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	ctx := context.Background()
//	result, err := client.SearchMovie(ctx, "Matrix")
//	if err != nil {
//		log.Fatal(err)
//	}
//	details, err := client.GetMovieDetails(ctx, result.ID)
//
// # Rate Limiting
//
// WithRateLimit caps the request rate on the client side. It is disabled by
// default; callers pacing their own loop can leave it off.
//
// # Authentication
//
// Requests authenticate with a bearer token (the "API Read Access Token" from
// the TMDB account settings), sent as an Authorization header on every call.
//
// # Error Handling
//
// Lookup failures are returned, never swallowed. Callers decide whether a
// failure is fatal:
//
//   - ErrNoResults: the search returned an empty result list
//   - ErrInvalidResponse: the payload could not be decoded or lacks an id
//   - APIError: a non-2xx status, with IsUnauthorized/IsNotFound/IsRateLimited helpers
//   - LookupError: wraps any of the above with the operation and query
//
// Status codes are reachable through errors.As:
//
//	var apiErr *tmdb.APIError
//	if errors.As(err, &apiErr) && apiErr.IsUnauthorized() {
//		// bad token
//	}
package tmdb
