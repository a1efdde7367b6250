package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/s0up4200/enrichr/filter"
	"github.com/s0up4200/enrichr/store"
)

const matrixDetailsJSON = `{
  "id": 603,
  "title": "Matrix",
  "original_title": "The Matrix",
  "release_date": "1999-03-30",
  "overview": "Un hacker descubre la verdad.",
  "poster_path": "/matrix.jpg",
  "vote_average": 8.217,
  "runtime": 136,
  "genres": [{"id": 28, "name": "Acción"}],
  "credits": {"crew": [{"name": "Lana Wachowski", "department": "Directing", "job": "Director"}]},
  "external_ids": {"imdb_id": "tt0133093"}
}`

func newTMDBServer(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer secret-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/search/movie":
			if r.URL.Query().Get("query") == "Matrix" {
				fmt.Fprint(w, `{"page": 1, "results": [{"id": 603, "title": "Matrix"}], "total_results": 1}`)
				return
			}
			fmt.Fprint(w, `{"page": 1, "results": [], "total_results": 0}`)
		case "/movie/603":
			fmt.Fprint(w, matrixDetailsJSON)
		case "/authentication":
			fmt.Fprint(w, `{"success": true, "status_code": 1, "status_message": "Success."}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func writeConfig(t *testing.T, serverURL string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := fmt.Sprintf(`
tmdb:
  url: %s
  image_url: https://img.example/w500
logging:
  level: error
  color: false
`, serverURL)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})
	_, err := rootCmd.ExecuteC()
	return out.String(), err
}

func TestRunEnrichAndList(t *testing.T) {
	t.Setenv("ENRICHR_TMDB_TOKEN", "")
	server := newTMDBServer(t)
	configPath := writeConfig(t, server.URL)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "matrix.json"), []byte(`{"titulo": "Matrix"}`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "nope.json"), []byte(`{"titulo": "Nope"}`), 0o644))

	out, err := execute(t, "--config", configPath, "--dir", dir, "--delay", "0s", "secret-token")
	require.NoError(t, err)
	assert.Contains(t, out, "[1/2] Matrix... ✓ The Matrix (1999)")
	assert.Contains(t, out, "[2/2] Nope... ✗")
	assert.Contains(t, out, "could not be matched")

	st, err := store.New(dir)
	require.NoError(t, err)
	rec, err := st.Load("matrix")
	require.NoError(t, err)
	id, ok := rec.TMDBID()
	require.True(t, ok)
	assert.Equal(t, int64(603), id)
	assert.Equal(t, "https://img.example/w500/matrix.jpg", rec.String(store.FieldPoster))

	out, err = execute(t, "list", "--config", configPath, "--dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "matrix")
	assert.Contains(t, out, "603")
	assert.Contains(t, out, "enriched")
	assert.Contains(t, out, "pending")
	assert.Contains(t, out, "2 record(s), 1 pending enrichment")
}

func TestRunEnrichMissingToken(t *testing.T) {
	t.Setenv("ENRICHR_TMDB_TOKEN", "")
	server := newTMDBServer(t)
	configPath := writeConfig(t, server.URL)

	_, err := execute(t, "--config", configPath, "--dir", t.TempDir())
	require.Error(t, err)

	var usageErr *UsageError
	assert.True(t, errors.As(err, &usageErr))
}

func TestTestCommand(t *testing.T) {
	t.Setenv("ENRICHR_TMDB_TOKEN", "")
	server := newTMDBServer(t)
	configPath := writeConfig(t, server.URL)

	out, err := execute(t, "test", "--config", configPath, "secret-token")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Connection successful!")

	_, err = execute(t, "test", "--config", configPath, "wrong-token")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "token rejected")
}

func TestResolveToken(t *testing.T) {
	tests := []struct {
		name       string
		args       []string
		configured string
		want       string
		wantErr    bool
	}{
		{name: "argument", args: []string{"arg-token"}, configured: "cfg-token", want: "arg-token"},
		{name: "argument is trimmed", args: []string{"  arg-token \n"}, want: "arg-token"},
		{name: "config fallback", configured: "cfg-token", want: "cfg-token"},
		{name: "blank argument falls back", args: []string{"  "}, configured: "cfg-token", want: "cfg-token"},
		{name: "missing everywhere", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resolveToken(tt.args, tt.configured)
			if tt.wantErr {
				var usageErr *UsageError
				require.Error(t, err)
				assert.True(t, errors.As(err, &usageErr))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCollectRows(t *testing.T) {
	logger = zerolog.Nop()

	dir := t.TempDir()
	files := map[string]string{
		"alien.json":  `{"titulo": "Alien", "year": "1979"}`,
		"broken.json": `{`,
		"matrix.json": `{"titulo": "Matrix", "tmdb_id": 603, "year": "1999"}`,
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	st, err := store.New(dir)
	require.NoError(t, err)

	rows, err := collectRows(st, nil)
	require.NoError(t, err)
	assert.Equal(t, []recordRow{
		{Slug: "alien", Titulo: "Alien", Year: "1979", Status: "pending"},
		{Slug: "broken", Status: "invalid"},
		{Slug: "matrix", Titulo: "Matrix", Year: "1999", TMDBID: "603", Status: "enriched"},
	}, rows)

	f, err := filter.Compile("enriched")
	require.NoError(t, err)
	rows, err = collectRows(st, f)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "broken", rows[0].Slug)
	assert.Equal(t, "matrix", rows[1].Slug)
}
