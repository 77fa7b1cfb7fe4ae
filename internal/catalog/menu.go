package catalog

import (
	"net/url"
	"strings"
)

const (
	ViewAllLabel     = "View All"
	NewArrivalsLabel = "New Arrivals"

	// SortNew is the sort marker used by the "new arrivals" entries.
	SortNew = "new"

	shopPath = "/shop"
)

// MenuItem is a single link in the mega menu.
type MenuItem struct {
	Name string `json:"name"`
	Slug string `json:"slug,omitempty"`
	Href string `json:"href"`
}

// MenuGroup is a column of links. An empty Title renders without a heading.
type MenuGroup struct {
	Title     string     `json:"title,omitempty"`
	TitleSlug string     `json:"title_slug,omitempty"`
	TitleHref string     `json:"title_href,omitempty"`
	Items     []MenuItem `json:"items"`
}

// MenuCategory is one top level entry of the mega menu.
type MenuCategory struct {
	ID       int64       `json:"id"`
	Name     string      `json:"name"`
	Slug     string      `json:"slug"`
	Href     string      `json:"href"`
	ImageURL *string     `json:"image_url,omitempty"`
	Groups   []MenuGroup `json:"groups"`
}

// ShopHref builds the storefront link for a category/type/sort triple.
// Empty values are left out.
func ShopHref(category, typ, sort string) string {
	// url.Values.Encode sorts keys; keep category first so links read naturally.
	params := [][2]string{{"category", category}, {"type", typ}, {"sort", sort}}
	var b strings.Builder
	b.WriteString(shopPath)
	sep := "?"
	for _, p := range params {
		if p[1] == "" {
			continue
		}
		b.WriteString(sep)
		b.WriteString(p[0])
		b.WriteString("=")
		b.WriteString(url.QueryEscape(p[1]))
		sep = "&"
	}
	return b.String()
}

// Menu projects every root category into its navigation entry.
func (h *Hierarchy) Menu() []MenuCategory {
	out := make([]MenuCategory, 0, len(h.roots))
	for _, root := range h.roots {
		out = append(out, h.MenuFor(root))
	}
	return out
}

// MenuFor projects a single root. The first group is always untitled and
// starts with the "View All" and "New Arrivals" entries, followed by the
// root's children that have no children of their own. Every child that does
// have children becomes a titled group after it.
func (h *Hierarchy) MenuFor(root *Node) MenuCategory {
	untitled := MenuGroup{
		Items: []MenuItem{
			{Name: ViewAllLabel, Href: ShopHref(root.Slug, "", "")},
			{Name: NewArrivalsLabel, Href: ShopHref(root.Slug, "", SortNew)},
		},
	}
	var titled []MenuGroup

	for _, child := range h.children[root.ID] {
		if !h.IsGroup(child.ID) {
			untitled.Items = append(untitled.Items, leafItem(root, child))
			continue
		}
		g := MenuGroup{
			Title:     child.Name,
			TitleSlug: child.Slug,
			TitleHref: ShopHref(root.Slug, child.Slug, ""),
		}
		for _, leaf := range h.children[child.ID] {
			g.Items = append(g.Items, leafItem(root, leaf))
		}
		titled = append(titled, g)
	}

	return MenuCategory{
		ID:       root.ID,
		Name:     root.Name,
		Slug:     root.Slug,
		Href:     ShopHref(root.Slug, "", ""),
		ImageURL: root.ImageURL,
		Groups:   append([]MenuGroup{untitled}, titled...),
	}
}

func leafItem(root, leaf *Node) MenuItem {
	return MenuItem{
		Name: leaf.Name,
		Slug: leaf.Slug,
		Href: ShopHref(root.Slug, leaf.Slug, ""),
	}
}

// FilterOption is a selectable category in the shop sidebar.
type FilterOption struct {
	Name     string `json:"name"`
	Slug     string `json:"slug"`
	Selected bool   `json:"selected"`
}

// FilterGroup groups type options the same way the menu does.
type FilterGroup struct {
	Title string         `json:"title,omitempty"`
	Slug  string         `json:"slug,omitempty"`
	Types []FilterOption `json:"types"`
}

// ShopFilters is the sidebar of the shop view.
type ShopFilters struct {
	Categories []FilterOption `json:"categories"`
	Groups     []FilterGroup  `json:"groups"`
}

// Filters builds the shop sidebar for the selected root category slug and
// type slug. An unknown or empty category yields only the root list.
func (h *Hierarchy) Filters(categorySlug, typeSlug string) ShopFilters {
	f := ShopFilters{
		Categories: make([]FilterOption, 0, len(h.roots)),
		Groups:     []FilterGroup{},
	}
	for _, r := range h.roots {
		f.Categories = append(f.Categories, FilterOption{Name: r.Name, Slug: r.Slug, Selected: r.Slug == categorySlug})
	}

	root, ok := h.bySlug[categorySlug]
	if !ok {
		return f
	}

	flat := FilterGroup{Types: []FilterOption{}}
	var titled []FilterGroup
	for _, child := range h.children[root.ID] {
		if !h.IsGroup(child.ID) {
			flat.Types = append(flat.Types, FilterOption{Name: child.Name, Slug: child.Slug, Selected: child.Slug == typeSlug})
			continue
		}
		g := FilterGroup{Title: child.Name, Slug: child.Slug, Types: []FilterOption{}}
		for _, leaf := range h.children[child.ID] {
			g.Types = append(g.Types, FilterOption{Name: leaf.Name, Slug: leaf.Slug, Selected: leaf.Slug == typeSlug})
		}
		titled = append(titled, g)
	}
	if len(flat.Types) > 0 {
		f.Groups = append(f.Groups, flat)
	}
	f.Groups = append(f.Groups, titled...)
	return f
}
