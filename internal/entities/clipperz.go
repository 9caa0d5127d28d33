package entities

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// Clipperz field type tags.
const (
	ClipperzTypeURL      = "URL"
	ClipperzTypePassword = "PWD"
	ClipperzTypeText     = "TXT"
)

// ClipperzCard is one entry of a Clipperz JSON export.
type ClipperzCard struct {
	Label          *string          `json:"label"`
	CardNotes      *string          `json:"notes,omitempty"`
	Data           *ClipperzData    `json:"data,omitempty"`
	CurrentVersion *ClipperzVersion `json:"currentVersion,omitempty"`
}

func (c *ClipperzCard) UnmarshalJSON(data []byte) error {
	if isNull(data) {
		return errors.New("card is null")
	}
	type Alias ClipperzCard
	var alias Alias
	if err := json.Unmarshal(data, &alias); err != nil {
		return err
	}
	*c = ClipperzCard(alias)
	return nil
}

// DecodeClipperz decodes a Clipperz export. The document must be an array.
func DecodeClipperz(data []byte) ([]ClipperzCard, error) {
	if isNull(data) {
		return nil, errors.New("export is null, want an array of cards")
	}
	var cards []ClipperzCard
	if err := json.Unmarshal(data, &cards); err != nil {
		return nil, err
	}
	return cards, nil
}

func isNull(data []byte) bool {
	return bytes.Equal(bytes.TrimSpace(data), []byte("null"))
}

type ClipperzData struct {
	Notes *string `json:"notes,omitempty"`
}

type ClipperzVersion struct {
	Fields ClipperzFields `json:"fields,omitempty"`
}

// Notes returns data.notes, falling back to a top level notes attribute.
func (c ClipperzCard) Notes() string {
	if c.Data != nil && c.Data.Notes != nil {
		return *c.Data.Notes
	}
	if c.CardNotes != nil {
		return *c.CardNotes
	}
	return ""
}

// Fields returns the card fields in document order. nil when absent.
func (c ClipperzCard) Fields() ClipperzFields {
	if c.CurrentVersion == nil {
		return nil
	}
	return c.CurrentVersion.Fields
}

// ClipperzField is a labeled value of a card. Every string attribute other
// than label and value is kept in Attrs, so the type tag can be looked up
// under whichever attribute name the export uses.
type ClipperzField struct {
	Label string
	Value string
	Attrs map[string]string
}

// Attr returns the string attribute stored under key.
func (f ClipperzField) Attr(key string) string {
	return f.Attrs[key]
}

func (f *ClipperzField) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("field is not an object: %w", err)
	}
	if raw == nil {
		return errors.New("field is null")
	}
	*f = ClipperzField{Attrs: make(map[string]string, len(raw))}
	for k, v := range raw {
		var s string
		switch k {
		case "label":
			if err := unmarshalString(v, &f.Label); err != nil {
				return fmt.Errorf("field label: %w", err)
			}
		case "value":
			if err := unmarshalString(v, &f.Value); err != nil {
				return fmt.Errorf("field value: %w", err)
			}
		default:
			// hidden flags and the like are not strings
			if json.Unmarshal(v, &s) == nil {
				f.Attrs[k] = s
			}
		}
	}
	return nil
}

func unmarshalString(data json.RawMessage, s *string) error {
	if isNull(data) {
		return nil
	}
	return json.Unmarshal(data, s)
}

type ClipperzFieldEntry struct {
	Key   string
	Field ClipperzField
}

// ClipperzFields keeps the fields object of a card in document order. A
// repeated key keeps its first position and its last value.
type ClipperzFields []ClipperzFieldEntry

func (fs *ClipperzFields) UnmarshalJSON(data []byte) error {
	if isNull(data) {
		*fs = nil
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("fields is not an object: %v", tok)
	}
	entries := make(ClipperzFields, 0)
	seen := make(map[string]int)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("unexpected fields key %v", tok)
		}
		var field ClipperzField
		if err := dec.Decode(&field); err != nil {
			return fmt.Errorf("field %q: %w", key, err)
		}
		if i, ok := seen[key]; ok {
			entries[i].Field = field
			continue
		}
		seen[key] = len(entries)
		entries = append(entries, ClipperzFieldEntry{Key: key, Field: field})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*fs = entries
	return nil
}
