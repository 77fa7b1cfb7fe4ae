package catalog

import (
	"sort"
	"strings"
)

// MaxDepth bounds every walk down the category tree. The storefront uses
// three levels (root, mid, leaf); anything deeper than this is treated as bad data.
const MaxDepth = 8

// DefaultRootOrder is the preferred order of root categories in navigation.
var DefaultRootOrder = []string{"men", "women", "kids", "accessories"}

// Node is the minimal view of a category the resolver needs.
type Node struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name"`
	Slug     string  `json:"slug"`
	ParentID *int64  `json:"parent_id,omitempty"`
	ImageURL *string `json:"image_url,omitempty"`
}

// Hierarchy is an in-memory index over the flat category list.
type Hierarchy struct {
	nodes     map[int64]*Node
	bySlug    map[string]*Node
	children  map[int64][]*Node
	roots     []*Node
	rootOrder map[string]int
}

// NewHierarchy indexes a flat category list. rootOrder lists the preferred
// root slugs; nil means DefaultRootOrder.
func NewHierarchy(list []Node, rootOrder []string) *Hierarchy {
	if rootOrder == nil {
		rootOrder = DefaultRootOrder
	}
	h := &Hierarchy{
		nodes:     make(map[int64]*Node, len(list)),
		bySlug:    make(map[string]*Node, len(list)),
		children:  make(map[int64][]*Node),
		rootOrder: make(map[string]int, len(rootOrder)),
	}
	for i, slug := range rootOrder {
		if _, ok := h.rootOrder[slug]; !ok {
			h.rootOrder[slug] = i
		}
	}

	// First pass: index every node
	for i := range list {
		n := list[i]
		h.nodes[n.ID] = &n
		h.bySlug[n.Slug] = &n
	}

	// Second pass: link children to parents. Children of a missing parent are dropped.
	for _, n := range h.nodes {
		if n.ParentID == nil {
			h.roots = append(h.roots, n)
			continue
		}
		if *n.ParentID == n.ID {
			continue
		}
		if _, ok := h.nodes[*n.ParentID]; ok {
			h.children[*n.ParentID] = append(h.children[*n.ParentID], n)
		}
	}

	for id := range h.children {
		sortByName(h.children[id])
	}
	h.sortRoots()
	return h
}

func (h *Hierarchy) sortRoots() {
	sort.SliceStable(h.roots, func(i, j int) bool {
		a, b := h.roots[i], h.roots[j]
		ai, aPreferred := h.rootOrder[a.Slug]
		bi, bPreferred := h.rootOrder[b.Slug]
		switch {
		case aPreferred && bPreferred:
			return ai < bi
		case aPreferred != bPreferred:
			return aPreferred
		default:
			return nameLess(a, b)
		}
	})
}

func sortByName(list []*Node) {
	sort.SliceStable(list, func(i, j int) bool { return nameLess(list[i], list[j]) })
}

func nameLess(a, b *Node) bool {
	an, bn := strings.ToLower(a.Name), strings.ToLower(b.Name)
	if an != bn {
		return an < bn
	}
	return a.Slug < b.Slug
}

// Len reports how many categories are indexed.
func (h *Hierarchy) Len() int { return len(h.nodes) }

// Roots returns root categories in navigation order.
func (h *Hierarchy) Roots() []*Node { return h.roots }

// ByID returns the category with the given id.
func (h *Hierarchy) ByID(id int64) (*Node, bool) {
	n, ok := h.nodes[id]
	return n, ok
}

// BySlug returns the category with the given slug.
func (h *Hierarchy) BySlug(slug string) (*Node, bool) {
	n, ok := h.bySlug[slug]
	return n, ok
}

// Children returns the direct children of id sorted by name.
func (h *Hierarchy) Children(id int64) []*Node { return h.children[id] }

// IsGroup reports whether the category has children of its own, which makes
// it a titled group in the menu rather than a plain item.
func (h *Hierarchy) IsGroup(id int64) bool { return len(h.children[id]) > 0 }

// Ancestors returns the chain from the root down to id, inclusive.
// An unknown id yields nil.
func (h *Hierarchy) Ancestors(id int64) []*Node {
	n, ok := h.nodes[id]
	if !ok {
		return nil
	}
	chain := []*Node{n}
	seen := map[int64]bool{n.ID: true}
	for depth := 0; n.ParentID != nil && depth < MaxDepth; depth++ {
		parent, ok := h.nodes[*n.ParentID]
		if !ok || seen[parent.ID] {
			break
		}
		seen[parent.ID] = true
		chain = append(chain, parent)
		n = parent
	}
	// reverse to root-first
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain
}

// Subtree returns id followed by all of its descendants in breadth-first
// order. The walk stops at MaxDepth levels below id and never visits a node twice.
func (h *Hierarchy) Subtree(id int64) []int64 {
	if _, ok := h.nodes[id]; !ok {
		return nil
	}
	seen := map[int64]bool{id: true}
	out := []int64{id}
	level := []int64{id}
	for depth := 0; depth < MaxDepth && len(level) > 0; depth++ {
		var next []int64
		for _, parent := range level {
			for _, c := range h.children[parent] {
				if seen[c.ID] {
					continue
				}
				seen[c.ID] = true
				out = append(out, c.ID)
				next = append(next, c.ID)
			}
		}
		level = next
	}
	return out
}

// CascadeLevel is one select box in the admin category picker.
type CascadeLevel struct {
	Options  []*Node `json:"options"`
	Selected *int64  `json:"selected,omitempty"`
}

// Cascade returns the picker levels for a selected category: the roots,
// then the children of every ancestor, and finally the children of the
// selected node when it has any. id 0 returns just the roots.
func (h *Hierarchy) Cascade(id int64) []CascadeLevel {
	levels := []CascadeLevel{{Options: h.roots}}
	chain := h.Ancestors(id)
	for i, n := range chain {
		sel := n.ID
		levels[i].Selected = &sel
		if kids := h.children[n.ID]; len(kids) > 0 {
			levels = append(levels, CascadeLevel{Options: kids})
		}
	}
	return levels
}
