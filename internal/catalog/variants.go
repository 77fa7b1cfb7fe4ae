package catalog

import "strings"

// VariantSpec is one size/colour combination to be stored for a product.
type VariantSpec struct {
	Size  string `json:"size"`
	Color string `json:"color"`
	Stock int    `json:"stock"`
}

// Materialize expands the selected sizes and colours into one variant per
// combination, sizes outermost. Blank and duplicate entries are dropped. An
// empty size selection uses the domain's default size and an empty colour
// selection uses DefaultColor, so the result always has at least one row.
func Materialize(sizes, colors []string, stock int, domain SizeDomain) []VariantSpec {
	if stock < 0 {
		stock = 0
	}
	s := dedupe(sizes, strings.TrimSpace)
	c := dedupe(colors, NormalizeColor)
	if len(s) == 0 {
		s = []string{domain.DefaultSize()}
	}
	if len(c) == 0 {
		c = []string{DefaultColor}
	}

	out := make([]VariantSpec, 0, len(s)*len(c))
	for _, size := range s {
		for _, color := range c {
			out = append(out, VariantSpec{Size: size, Color: color, Stock: stock})
		}
	}
	return out
}

func dedupe(in []string, norm func(string) string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, v := range in {
		v = norm(v)
		if v == "" {
			continue
		}
		key := strings.ToUpper(v)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, v)
	}
	return out
}

// Options lists the distinct sizes and colours present in a set of variants,
// in first-seen order.
func Options(variants []VariantSpec) (sizes, colors []string) {
	sizes = []string{}
	colors = []string{}
	seenSize := map[string]bool{}
	seenColor := map[string]bool{}
	for _, v := range variants {
		if !seenSize[v.Size] {
			seenSize[v.Size] = true
			sizes = append(sizes, v.Size)
		}
		if !seenColor[v.Color] {
			seenColor[v.Color] = true
			colors = append(colors, v.Color)
		}
	}
	return sizes, colors
}
