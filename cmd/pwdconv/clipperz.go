package main

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/chirichan/pwdconv/internal/entities"
)

// DefaultTypeKey is the field attribute holding the URL/PWD/TXT tag.
const DefaultTypeKey = "type"

var ErrMalformedInput = errors.New("malformed clipperz json")

// usernameLabels are the TXT field labels promoted to the username column.
var usernameLabels = map[string]struct{}{
	"Username":          {},
	"Username or email": {},
}

// MissingFieldError is returned when a card lacks a required attribute.
type MissingFieldError struct {
	Index int
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("card %d: missing required attribute %q", e.Index, e.Field)
}

type cardMapper struct {
	Logger  *slog.Logger
	TypeKey string
}

func newCardMapper(logger *slog.Logger, typeKey string) *cardMapper {
	if typeKey == "" {
		typeKey = DefaultTypeKey
	}
	return &cardMapper{Logger: logger, TypeKey: typeKey}
}

// mapCards converts every card to one LastPass row, keeping the input order.
// Any error fails the whole batch.
func (m *cardMapper) mapCards(cards []entities.ClipperzCard) ([]entities.LastPassCSV, error) {
	rows := make([]entities.LastPassCSV, len(cards))
	for i, card := range cards {
		row, err := m.mapCard(i, card)
		if err != nil {
			return nil, err
		}
		rows[i] = row
	}
	return rows, nil
}

func (m *cardMapper) mapCard(i int, card entities.ClipperzCard) (entities.LastPassCSV, error) {
	var row entities.LastPassCSV
	if card.Label == nil {
		return row, &MissingFieldError{Index: i, Field: "label"}
	}
	row.Name = *card.Label

	var extra strings.Builder
	extra.WriteString(card.Notes())

	var hasURL, hasUsername, hasPassword bool
	var skipped int
	fields := card.Fields()
	for _, entry := range fields {
		f := entry.Field
		if f.Label == "" && f.Value == "" {
			skipped++
			continue
		}
		switch f.Attr(m.TypeKey) {
		case entities.ClipperzTypeURL:
			if !hasURL {
				row.URL, hasURL = f.Value, true
			}
		case entities.ClipperzTypePassword:
			if !hasPassword {
				row.Password, hasPassword = f.Value, true
			}
		case entities.ClipperzTypeText:
			if _, ok := usernameLabels[f.Label]; ok && !hasUsername {
				row.Username, hasUsername = f.Value, true
			}
		}
		extra.WriteString("\n" + f.Label + ": " + f.Value)
	}
	row.Extra = extra.String()

	m.Logger.Debug("map card", "index", i, "name", row.Name,
		"fields", len(fields), "skipped", skipped,
		"url", hasURL, "username", hasUsername, "password", hasPassword)
	return row, nil
}
