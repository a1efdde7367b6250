package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Record field names.
const (
	FieldTitulo         = "titulo"
	FieldTMDBID         = "tmdb_id"
	FieldIMDBID         = "imdb_id"
	FieldTituloES       = "titulo_es"
	FieldTituloOriginal = "titulo_original"
	FieldYear           = "year"
	FieldDirector       = "director"
	FieldPlot           = "plot"
	FieldPoster         = "poster"
	FieldGenre          = "genre"
	FieldIMDBRating     = "imdb_rating"
	FieldTMDBRating     = "tmdb_rating"
	FieldRuntime        = "runtime"
)

var jsonNull = json.RawMessage("null")

// Metadata is the enrichment field set written onto a record.
// Nil pointers are persisted as JSON null.
type Metadata struct {
	TMDBID         int64
	IMDBID         *string
	TituloES       *string
	TituloOriginal *string
	Year           *string
	Director       *string
	Plot           *string
	Poster         *string
	Genre          *string
	IMDBRating     *float64
	TMDBRating     *float64
	Runtime        *string
}

// fields returns the metadata in persistence order.
func (m Metadata) fields() []struct {
	key   string
	value any
} {
	return []struct {
		key   string
		value any
	}{
		{FieldTMDBID, m.TMDBID},
		{FieldIMDBID, m.IMDBID},
		{FieldTituloES, m.TituloES},
		{FieldTituloOriginal, m.TituloOriginal},
		{FieldYear, m.Year},
		{FieldDirector, m.Director},
		{FieldPlot, m.Plot},
		{FieldPoster, m.Poster},
		{FieldGenre, m.Genre},
		{FieldIMDBRating, m.IMDBRating},
		{FieldTMDBRating, m.TMDBRating},
		{FieldRuntime, m.Runtime},
	}
}

type field struct {
	key   string
	value json.RawMessage
}

// Record is a single movie document. Fields keep their on-disk order, and
// keys this package knows nothing about survive a load/save round trip untouched.
type Record struct {
	Slug   string
	Titulo string

	fields []field
}

// ParseRecord decodes a movie document. The slug is informational only.
func ParseRecord(slug string, data []byte) (*Record, error) {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, errors.New("document is not a JSON object")
	}

	rec := &Record{Slug: slug}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("read key: %w", err)
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected token %v", tok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("read value of %q: %w", key, err)
		}
		rec.setRaw(key, raw)
	}
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("read document end: %w", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("trailing data after document")
	}

	raw, ok := rec.Raw(FieldTitulo)
	if !ok {
		return nil, ErrMissingTitle
	}
	if err := json.Unmarshal(raw, &rec.Titulo); err != nil || strings.TrimSpace(rec.Titulo) == "" {
		return nil, ErrMissingTitle
	}

	return rec, nil
}

// Enriched reports whether the record carries a non-null tmdb_id.
// Presence is what counts: a tmdb_id of 0 is still enriched.
func (r *Record) Enriched() bool {
	raw, ok := r.Raw(FieldTMDBID)
	return ok && !isNull(raw)
}

// TMDBID returns the record's tmdb_id when it holds an integer.
func (r *Record) TMDBID() (int64, bool) {
	raw, ok := r.Raw(FieldTMDBID)
	if !ok || isNull(raw) {
		return 0, false
	}
	var id int64
	if err := json.Unmarshal(raw, &id); err != nil {
		return 0, false
	}
	return id, true
}

// Raw returns the encoded value stored under key.
func (r *Record) Raw(key string) (json.RawMessage, bool) {
	for _, f := range r.fields {
		if f.key == key {
			return f.value, true
		}
	}
	return nil, false
}

// String returns the string stored under key, or "" when absent, null or not a string.
func (r *Record) String(key string) string {
	raw, ok := r.Raw(key)
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

// Keys returns the field names in document order.
func (r *Record) Keys() []string {
	keys := make([]string, 0, len(r.fields))
	for _, f := range r.fields {
		keys = append(keys, f.key)
	}
	return keys
}

// Values decodes every field into plain Go values, keyed by field name.
// Numbers decode as float64.
func (r *Record) Values() map[string]any {
	values := make(map[string]any, len(r.fields))
	for _, f := range r.fields {
		var v any
		if err := json.Unmarshal(f.value, &v); err == nil {
			values[f.key] = v
		}
	}
	return values
}

// Set encodes value and stores it under key, keeping the key's position if it exists.
func (r *Record) Set(key string, value any) error {
	raw, err := encodeValue(value)
	if err != nil {
		return fmt.Errorf("encode %q: %w", key, err)
	}
	r.setRaw(key, raw)
	return nil
}

// Apply writes the enrichment field set onto the record. titulo is never touched.
func (r *Record) Apply(m Metadata) error {
	for _, f := range m.fields() {
		if err := r.Set(f.key, f.value); err != nil {
			return err
		}
	}
	return nil
}

// MarshalJSON encodes the record compactly in field order.
func (r *Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range r.fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := encodeValue(f.key)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(f.value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Encode returns the human-readable form written to disk.
func (r *Record) Encode() ([]byte, error) {
	compact, err := r.MarshalJSON()
	if err != nil {
		return nil, err
	}
	var out bytes.Buffer
	if err := json.Indent(&out, compact, "", "  "); err != nil {
		return nil, fmt.Errorf("indent record: %w", err)
	}
	out.WriteByte('\n')
	return out.Bytes(), nil
}

func (r *Record) setRaw(key string, raw json.RawMessage) {
	for i := range r.fields {
		if r.fields[i].key == key {
			r.fields[i].value = raw
			return
		}
	}
	r.fields = append(r.fields, field{key: key, value: raw})
}

// encodeValue marshals v without HTML escaping so titles like "Fast & Furious" stay readable.
func encodeValue(v any) (json.RawMessage, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return json.RawMessage(bytes.TrimRight(buf.Bytes(), "\n")), nil
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), jsonNull)
}
