package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// CardList is stored as a JSON array in a text column.
type CardList []CardRef

// Value implements the driver.Valuer interface.
func (l CardList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]CardRef(l))
	if err != nil {
		return nil, fmt.Errorf("failed to encode card list: %w", err)
	}
	return string(b), nil
}

// Scan implements the sql.Scanner interface.
func (l *CardList) Scan(value interface{}) error {
	var cards []CardRef
	if err := scanJSON(value, &cards); err != nil {
		return fmt.Errorf("failed to scan CardList: %w", err)
	}
	if cards == nil {
		cards = []CardRef{}
	}
	*l = cards
	return nil
}

// Clone returns a copy that shares no backing array with l.
func (l CardList) Clone() CardList {
	if l == nil {
		return nil
	}
	return append(CardList{}, l...)
}

// DeckList is stored as a JSON array in a text column.
type DeckList []Deck

// Value implements the driver.Valuer interface.
func (l DeckList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]Deck(l))
	if err != nil {
		return nil, fmt.Errorf("failed to encode deck list: %w", err)
	}
	return string(b), nil
}

// Scan implements the sql.Scanner interface.
func (l *DeckList) Scan(value interface{}) error {
	var decks []Deck
	if err := scanJSON(value, &decks); err != nil {
		return fmt.Errorf("failed to scan DeckList: %w", err)
	}
	if decks == nil {
		decks = []Deck{}
	}
	*l = decks
	return nil
}

// Clone returns a deep copy of the deck list.
func (l DeckList) Clone() DeckList {
	if l == nil {
		return nil
	}
	out := make(DeckList, len(l))
	for i, d := range l {
		d.Cards = append([]CardRef(nil), d.Cards...)
		out[i] = d
	}
	return out
}

func scanJSON(value interface{}, dst interface{}) error {
	var raw []byte
	switch v := value.(type) {
	case nil:
		return nil
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("unsupported column type %T", value)
	}
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, dst)
}
