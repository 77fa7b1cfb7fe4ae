package catalog

import (
	"regexp"
	"strings"
)

// DefaultColor is stored when a product is saved without any colour.
const DefaultColor = "#000000"

var hexColorRE = regexp.MustCompile(`^#?[0-9a-fA-F]{6}$`)

type namedColor struct {
	name string
	hex  string
}

// palette is the colour table shared by the admin pickers and the storefront.
var palette = []namedColor{
	{"Black", "#000000"},
	{"White", "#FFFFFF"},
	{"Grey", "#808080"},
	{"Navy", "#000080"},
	{"Blue", "#0000FF"},
	{"Light Blue", "#ADD8E6"},
	{"Red", "#FF0000"},
	{"Maroon", "#800000"},
	{"Pink", "#FFC0CB"},
	{"Purple", "#800080"},
	{"Green", "#008000"},
	{"Olive", "#808000"},
	{"Yellow", "#FFFF00"},
	{"Orange", "#FFA500"},
	{"Brown", "#8B4513"},
	{"Beige", "#F5F5DC"},
	{"Cream", "#FFFDD0"},
	{"Khaki", "#C3B091"},
}

// Palette returns the known colours as name/hex pairs in display order.
func Palette() []map[string]string {
	out := make([]map[string]string, 0, len(palette))
	for _, c := range palette {
		out = append(out, map[string]string{"name": c.name, "hex": c.hex})
	}
	return out
}

// NormalizeColor upper-cases hex colours and adds the leading '#'. Anything
// that isn't a six digit hex value is returned trimmed; a known colour name
// is mapped to its hex.
func NormalizeColor(c string) string {
	c = strings.TrimSpace(c)
	if hexColorRE.MatchString(c) {
		return "#" + strings.ToUpper(strings.TrimPrefix(c, "#"))
	}
	if hex, ok := ColorHex(c); ok {
		return hex
	}
	return c
}

// ColorName returns the display name for a hex value, or the value itself
// when it isn't in the palette.
func ColorName(hex string) string {
	n := NormalizeColor(hex)
	for _, c := range palette {
		if c.hex == n {
			return c.name
		}
	}
	return strings.TrimSpace(hex)
}

// ColorHex looks a colour up by name, case-insensitively.
func ColorHex(name string) (string, bool) {
	name = strings.TrimSpace(name)
	for _, c := range palette {
		if strings.EqualFold(c.name, name) {
			return c.hex, true
		}
	}
	return "", false
}
