package catalog

import "strings"

// SizeDomain selects the size vocabulary offered for a product.
type SizeDomain string

const (
	ClothingSizes SizeDomain = "clothing"
	ShoeSizes     SizeDomain = "shoes"
)

var (
	clothingSizes = []string{"XS", "S", "M", "L", "XL", "XXL"}
	shoeSizes     = []string{"36", "37", "38", "39", "40", "41", "42", "43", "44", "45", "46"}

	// footwearMarkers are matched against lower-cased category names and slugs.
	footwearMarkers = []string{"shoe", "footwear", "sneaker", "boot", "sandal", "heel", "slipper"}
)

// Sizes returns the selectable sizes of the domain.
func (d SizeDomain) Sizes() []string {
	if d == ShoeSizes {
		return append([]string(nil), shoeSizes...)
	}
	return append([]string(nil), clothingSizes...)
}

// DefaultSize is used when a product is saved without any size selected.
func (d SizeDomain) DefaultSize() string {
	if d == ShoeSizes {
		return "40"
	}
	return "M"
}

// SizeDomainFor infers the size vocabulary from a category chain (the
// category and its ancestors). It is a name match, not a stored attribute.
func SizeDomainFor(chain []*Node) SizeDomain {
	for _, n := range chain {
		if n == nil {
			continue
		}
		if isFootwear(n.Name) || isFootwear(n.Slug) {
			return ShoeSizes
		}
	}
	return ClothingSizes
}

// SizeDomainOf is SizeDomainFor applied to a category id in the hierarchy.
func (h *Hierarchy) SizeDomainOf(categoryID int64) SizeDomain {
	return SizeDomainFor(h.Ancestors(categoryID))
}

func isFootwear(s string) bool {
	s = strings.ToLower(s)
	for _, m := range footwearMarkers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}
