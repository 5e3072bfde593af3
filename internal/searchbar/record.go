package searchbar

import (
	"bytes"
	"cmp"
	"encoding/json"
	"fmt"
	"slices"
)

// SearchRecord is one searchable entry of the emitted index.
type SearchRecord struct {
	Name        string   `json:"name"`
	Description *string  `json:"description"`
	Location    string   `json:"location"`
	SearchKeys  []string `json:"searchKeys"`
}

// NewSearchRecord builds a record. Without explicit keys the name is the
// only search key.
func NewSearchRecord(name string, description *string, location string, searchKeys ...string) SearchRecord {
	if len(searchKeys) == 0 {
		searchKeys = []string{name}
	}
	return SearchRecord{
		Name:        name,
		Description: description,
		Location:    location,
		SearchKeys:  searchKeys,
	}
}

// AddToSearch is the directive emitted in delayed mode.
type AddToSearch struct {
	ModuleName string         `json:"moduleName"`
	Elements   []SearchRecord `json:"elements"`
}

// SortRecords orders records by name, then description with nil first.
// Comparison is byte-wise, so the result does not depend on locale.
func SortRecords(records []SearchRecord) {
	slices.SortStableFunc(records, compareRecords)
}

func compareRecords(a, b SearchRecord) int {
	if c := cmp.Compare(a.Name, b.Name); c != 0 {
		return c
	}
	switch {
	case a.Description == nil && b.Description == nil:
		return 0
	case a.Description == nil:
		return -1
	case b.Description == nil:
		return 1
	}
	return cmp.Compare(*a.Description, *b.Description)
}

// immediatePrefix starts the script in immediate mode.
const immediatePrefix = "var pages = "

// Render serializes records for the given output mode.
func Render(records []SearchRecord, delayed bool, moduleName string) (string, error) {
	if records == nil {
		records = []SearchRecord{}
	}
	if delayed {
		out, err := marshal(AddToSearch{ModuleName: moduleName, Elements: records})
		if err != nil {
			return "", fmt.Errorf("encode search directive: %w", err)
		}
		return out, nil
	}
	out, err := marshal(records)
	if err != nil {
		return "", fmt.Errorf("encode search records: %w", err)
	}
	return immediatePrefix + out, nil
}

// marshal encodes v as compact JSON without HTML escaping, so signatures
// like "fun <T> f()" keep their angle brackets.
func marshal(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return string(bytes.TrimSuffix(buf.Bytes(), []byte("\n"))), nil
}
