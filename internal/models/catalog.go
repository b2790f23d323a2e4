package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Code is an opaque catalog identifier. The FIPE API sends brand and year
// codes as strings and model codes as numbers, so both are accepted.
type Code string

// UnmarshalJSON accepts either a JSON string or a JSON number
func (c *Code) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*c = Code(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid catalog code %s: %w", string(data), err)
	}
	*c = Code(n.String())
	return nil
}

// CatalogEntry represents one selectable node (brand, model or year)
type CatalogEntry struct {
	Name string `json:"nome"`
	Code Code   `json:"codigo"`
}

// Names returns the user-facing names of the entries in order
func Names(entries []CatalogEntry) []string {
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name)
	}
	return names
}

// FindByName returns the first entry with the given name
func FindByName(entries []CatalogEntry, name string) (CatalogEntry, bool) {
	for _, e := range entries {
		if e.Name == name {
			return e, true
		}
	}
	return CatalogEntry{}, false
}
