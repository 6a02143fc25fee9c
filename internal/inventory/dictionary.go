package inventory

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
)

// Dictionary maps normalized item keys to item ids, remembering the order
// keys were first seen so fuzzy ties resolve deterministically.
type Dictionary struct {
	ids  map[string]int64
	keys []string
}

// NewDictionary builds a dictionary from raw names; names are normalized
// with ToKey.
func NewDictionary(entries map[string]int64) *Dictionary {
	names := make([]string, 0, len(entries))
	for name := range entries {
		names = append(names, name)
	}
	sort.Strings(names)

	d := &Dictionary{ids: make(map[string]int64, len(entries))}
	for _, name := range names {
		d.add(ToKey(name), entries[name])
	}
	return d
}

func (d *Dictionary) add(key string, id int64) {
	if _, ok := d.ids[key]; !ok {
		d.keys = append(d.keys, key)
	}
	d.ids[key] = id
}

// Lookup returns the id of an exact key.
func (d *Dictionary) Lookup(key string) (int64, bool) {
	id, ok := d.ids[key]
	return id, ok
}

// Len is the number of distinct keys.
func (d *Dictionary) Len() int {
	return len(d.keys)
}

// LoadDictionary reads a CSV with "key" and "id" columns (any case). Rows
// whose id is not all digits are skipped.
func LoadDictionary(r io.Reader) (*Dictionary, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading dictionary header: %w", err)
	}

	keyCol, idCol := -1, -1
	for i, h := range header {
		switch strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))) {
		case "key":
			keyCol = i
		case "id":
			idCol = i
		}
	}
	if keyCol < 0 || idCol < 0 {
		return nil, errors.New("dictionary missing 'key' or 'id' columns")
	}

	d := &Dictionary{ids: make(map[string]int64)}
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading dictionary: %w", err)
		}
		if keyCol >= len(record) || idCol >= len(record) {
			continue
		}

		rawID := record[idCol]
		if !isDigits(rawID) {
			continue
		}
		id, err := strconv.ParseInt(rawID, 10, 64)
		if err != nil {
			continue
		}
		d.add(ToKey(record[keyCol]), id)
	}

	return d, nil
}

// LoadDictionaryFile opens path and calls LoadDictionary.
func LoadDictionaryFile(path string) (*Dictionary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening dictionary: %w", err)
	}
	defer f.Close()
	return LoadDictionary(f)
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
