package store

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRecord(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantErr  bool
		enriched bool
	}{
		{
			name:     "plain record",
			input:    `{"titulo": "Matrix"}`,
			enriched: false,
		},
		{
			name:     "enriched record",
			input:    `{"titulo": "Matrix", "tmdb_id": 603}`,
			enriched: true,
		},
		{
			name:     "zero tmdb_id counts as present",
			input:    `{"titulo": "Matrix", "tmdb_id": 0}`,
			enriched: true,
		},
		{
			name:     "null tmdb_id counts as absent",
			input:    `{"titulo": "Matrix", "tmdb_id": null}`,
			enriched: false,
		},
		{
			name:     "non-numeric tmdb_id is still a marker",
			input:    `{"titulo": "Matrix", "tmdb_id": "603"}`,
			enriched: true,
		},
		{
			name:    "not an object",
			input:   `"Matrix"`,
			wantErr: true,
		},
		{
			name:    "trailing data",
			input:   `{"titulo": "Matrix"} {}`,
			wantErr: true,
		},
		{
			name:    "empty titulo",
			input:   `{"titulo": "  "}`,
			wantErr: true,
		},
		{
			name:    "numeric titulo",
			input:   `{"titulo": 42}`,
			wantErr: true,
		},
		{
			name:    "empty input",
			input:   ``,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, err := ParseRecord("slug", []byte(tt.input))
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.enriched, rec.Enriched())
		})
	}
}

func TestParseRecordMissingTitle(t *testing.T) {
	_, err := ParseRecord("slug", []byte(`{"year": "1999"}`))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingTitle))
}

func TestTMDBID(t *testing.T) {
	rec, err := ParseRecord("slug", []byte(`{"titulo": "Matrix", "tmdb_id": "603"}`))
	require.NoError(t, err)

	_, ok := rec.TMDBID()
	assert.False(t, ok, "string ids are not integers")

	rec, err = ParseRecord("slug", []byte(`{"titulo": "Matrix", "tmdb_id": 0}`))
	require.NoError(t, err)

	id, ok := rec.TMDBID()
	assert.True(t, ok)
	assert.Equal(t, int64(0), id)
}

func TestApplyKeepsExistingPositions(t *testing.T) {
	rec, err := ParseRecord("matrix", []byte(`{"year": "1998", "titulo": "Matrix", "custom": 1}`))
	require.NoError(t, err)

	year := "1999"
	rating := 8.2
	require.NoError(t, rec.Apply(Metadata{TMDBID: 603, Year: &year, TMDBRating: &rating}))

	keys := rec.Keys()
	assert.Equal(t, []string{"year", "titulo", "custom", "tmdb_id"}, keys[:4])
	assert.Equal(t, "1999", rec.String(FieldYear))
	assert.Equal(t, "Matrix", rec.String(FieldTitulo))

	raw, ok := rec.Raw(FieldTMDBRating)
	require.True(t, ok)
	assert.Equal(t, "8.2", string(raw))

	raw, ok = rec.Raw(FieldIMDBRating)
	require.True(t, ok)
	assert.Equal(t, "null", string(raw))
}

func TestEncode(t *testing.T) {
	rec, err := ParseRecord("x", []byte(`{"titulo":"Fast & Furious","extra":{"a":[1,2]}}`))
	require.NoError(t, err)

	data, err := rec.Encode()
	require.NoError(t, err)

	want := "{\n" +
		"  \"titulo\": \"Fast & Furious\",\n" +
		"  \"extra\": {\n" +
		"    \"a\": [\n" +
		"      1,\n" +
		"      2\n" +
		"    ]\n" +
		"  }\n" +
		"}\n"
	assert.Equal(t, want, string(data))
}

func TestString(t *testing.T) {
	rec, err := ParseRecord("x", []byte(`{"titulo":"Matrix","year":null,"runtime":136}`))
	require.NoError(t, err)

	assert.Equal(t, "", rec.String("year"))
	assert.Equal(t, "", rec.String("runtime"))
	assert.Equal(t, "", rec.String("missing"))
}
