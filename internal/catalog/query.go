package catalog

import "strings"

// AllCategories is the category value that disables category filtering.
const AllCategories = "all"

// Scope is the resolved category restriction for a product search.
type Scope struct {
	// CategoryIDs is nil when Restricted is false.
	CategoryIDs []int64 `json:"-"`
	Restricted  bool    `json:"restricted"`

	Category         string `json:"category,omitempty"`
	Type             string `json:"type,omitempty"`
	CategoryResolved bool   `json:"category_resolved"`
	TypeResolved     bool   `json:"type_resolved"`
}

// Resolve expands a category/type slug pair into the category IDs a product
// must belong to.
//
// An empty or "all" category means no restriction. A category alone matches
// its whole subtree. A type narrows to the subtree of the category whose slug
// equals the type. A type that matches nothing falls back to the category
// scope, and an unknown category falls back to no restriction; the Resolved
// flags record both cases.
func (h *Hierarchy) Resolve(category, typ string) Scope {
	category = strings.TrimSpace(category)
	typ = strings.TrimSpace(typ)
	s := Scope{Category: category, Type: typ}

	if category == "" || strings.EqualFold(category, AllCategories) {
		s.CategoryResolved = true
		return s
	}

	root, ok := h.bySlug[category]
	if !ok {
		return s
	}
	s.CategoryResolved = true
	s.Restricted = true
	s.CategoryIDs = h.Subtree(root.ID)

	if typ == "" {
		return s
	}
	if node, ok := h.bySlug[typ]; ok {
		s.TypeResolved = true
		s.CategoryIDs = h.Subtree(node.ID)
	}
	return s
}
