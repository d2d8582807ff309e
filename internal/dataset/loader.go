// Package dataset loads labeled impact items from a JSON file, an HTTP(S)
// URL, or a dataset previously ingested into the BoltDB store.
package dataset

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"impact-eval/internal/common"
	"impact-eval/internal/storage"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"
)

// Loader reads a whole dataset into memory.
type Loader struct {
	client *resty.Client
}

// NewLoader creates a loader whose HTTP requests time out after timeout.
func NewLoader(timeout time.Duration) *Loader {
	client := resty.New().
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")
	return &Loader{client: client}
}

// Load reads source in the given format. With common.FormatAuto the format
// is picked from the source: URLs are fetched, a directory is opened as a
// store, anything else is read as a JSON file. For common.FormatBoltDB the
// source is the store directory and name selects the dataset.
func (l *Loader) Load(ctx context.Context, source, format, name string) ([]Item, error) {
	if format == common.FormatAuto {
		format = detectFormat(source)
	}

	switch format {
	case common.FormatJSON:
		return l.LoadFile(source)
	case common.FormatURL:
		return l.LoadURL(ctx, source)
	case common.FormatBoltDB:
		store, err := storage.OpenReadOnly(source)
		if err != nil {
			return nil, fmt.Errorf("failed to open store: %w", err)
		}
		defer store.Close()
		return l.LoadFromStore(store, name)
	default:
		return nil, fmt.Errorf("unknown data format: %s", format)
	}
}

// LoadFile reads a JSON array of objects from path.
func (l *Loader) LoadFile(path string) ([]Item, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open JSON file: %w", err)
	}
	defer file.Close()

	items, err := Decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}

	log.Info().
		Str("file", path).
		Int("items", len(items)).
		Msg("JSON data loaded successfully")

	return items, nil
}

// LoadURL fetches a JSON array of objects over HTTP(S).
func (l *Loader) LoadURL(ctx context.Context, url string) ([]Item, error) {
	resp, err := l.client.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	body := resp.RawBody()
	defer body.Close()

	if resp.IsError() {
		return nil, fmt.Errorf("failed to fetch %s: status %d", url, resp.StatusCode())
	}

	items, err := Decode(body)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", url, err)
	}

	log.Info().
		Str("url", url).
		Int("items", len(items)).
		Msg("Remote data loaded successfully")

	return items, nil
}

// LoadFromStore reads an ingested dataset.
func (l *Loader) LoadFromStore(store *storage.Store, name string) ([]Item, error) {
	raws, err := store.Items(name)
	if err != nil {
		return nil, fmt.Errorf("failed to load dataset: %w", err)
	}

	items := make([]Item, 0, len(raws))
	for i, raw := range raws {
		item, err := decodeItem(raw)
		if err != nil {
			return nil, fmt.Errorf("dataset %s item %d: %w", name, i, err)
		}
		items = append(items, item)
	}

	log.Info().
		Str("dataset", name).
		Int("items", len(items)).
		Msg("Stored data loaded successfully")

	return items, nil
}

// Decode parses a JSON array whose elements are all objects. Anything else
// at the top level is an error.
func Decode(r io.Reader) ([]Item, error) {
	raws, err := DecodeRaw(r)
	if err != nil {
		return nil, err
	}

	items := make([]Item, 0, len(raws))
	for i, raw := range raws {
		item, err := decodeItem(raw)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		items = append(items, item)
	}
	return items, nil
}

// DecodeRaw parses a JSON array of objects but keeps each element as raw
// bytes, which is what the store persists.
func DecodeRaw(r io.Reader) ([]json.RawMessage, error) {
	var raws []json.RawMessage
	dec := json.NewDecoder(r)
	if err := dec.Decode(&raws); err != nil {
		return nil, fmt.Errorf("expected a JSON array of objects: %w", err)
	}
	if raws == nil {
		return nil, fmt.Errorf("expected a JSON array of objects, got null")
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("unexpected data after JSON array")
	}

	for i, raw := range raws {
		if !isObject(raw) {
			return nil, fmt.Errorf("item %d: expected a JSON object", i)
		}
	}
	return raws, nil
}

func decodeItem(raw json.RawMessage) (Item, error) {
	if !isObject(raw) {
		return nil, fmt.Errorf("expected a JSON object")
	}
	var item Item
	if err := json.Unmarshal(raw, &item); err != nil {
		return nil, err
	}
	return item, nil
}

func isObject(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '{'
}

func detectFormat(source string) string {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		return common.FormatURL
	}
	if info, err := os.Stat(source); err == nil && info.IsDir() {
		return common.FormatBoltDB
	}
	return common.FormatJSON
}
