package content

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Reserved rows.
const (
	ConfigSection     = "config"
	SectionOrderKey   = "section_order"
	SettingsSection   = "settings"
	WhatsAppNumberKey = "whatsapp_number"
)

// DefaultSectionOrder is used when no valid order row exists.
var DefaultSectionOrder = []string{"hero", "categories", "new_arrivals", "featured", "about"}

var ErrInvalidSectionOrder = errors.New("section order must be a non-empty list of unique section ids")

// Block is a single piece of homepage copy.
type Block struct {
	ID        int64     `json:"id"`
	Section   string    `json:"section"`
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	IsActive  bool      `json:"is_active"`
	UpdatedAt time.Time `json:"updated_at"`
}

type UpsertBlockRequest struct {
	Section  string `json:"section" validate:"required,max=64"`
	Key      string `json:"key" validate:"required,max=64"`
	Value    string `json:"value" validate:"max=10000"`
	IsActive *bool  `json:"is_active"`
}

// Home is the storefront view: active blocks keyed by section then key.
type Home struct {
	Order    []string                     `json:"order"`
	Sections map[string]map[string]string `json:"sections"`
}

// BuildHome groups active blocks by section. Reserved sections are left out.
func BuildHome(blocks []Block, order []string) Home {
	h := Home{Order: order, Sections: map[string]map[string]string{}}
	for _, b := range blocks {
		if !b.IsActive || b.Section == ConfigSection || b.Section == SettingsSection {
			continue
		}
		sec, ok := h.Sections[b.Section]
		if !ok {
			sec = map[string]string{}
			h.Sections[b.Section] = sec
		}
		sec[b.Key] = b.Value
	}
	return h
}

// ParseSectionOrder decodes the stored JSON array. Anything unusable yields
// the default order.
func ParseSectionOrder(raw string) []string {
	var order []string
	if err := json.Unmarshal([]byte(raw), &order); err != nil {
		return append([]string(nil), DefaultSectionOrder...)
	}
	clean, err := NormalizeSectionOrder(order)
	if err != nil {
		return append([]string(nil), DefaultSectionOrder...)
	}
	return clean
}

// NormalizeSectionOrder trims the ids and rejects empty or repeated ones.
func NormalizeSectionOrder(order []string) ([]string, error) {
	if len(order) == 0 {
		return nil, ErrInvalidSectionOrder
	}
	seen := make(map[string]bool, len(order))
	out := make([]string, 0, len(order))
	for _, id := range order {
		id = strings.TrimSpace(id)
		if id == "" {
			return nil, fmt.Errorf("%w: empty id", ErrInvalidSectionOrder)
		}
		if seen[id] {
			return nil, fmt.Errorf("%w: %q repeated", ErrInvalidSectionOrder, id)
		}
		seen[id] = true
		out = append(out, id)
	}
	return out, nil
}
