package catalog

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShopHref(t *testing.T) {
	tests := []struct {
		category, typ, sort string
		want                string
	}{
		{"", "", "", "/shop"},
		{"men", "", "", "/shop?category=men"},
		{"men", "", "new", "/shop?category=men&sort=new"},
		{"men", "men-t-shirts", "", "/shop?category=men&type=men-t-shirts"},
		{"", "jeans", "", "/shop?type=jeans"},
		{"a b", "c&d", "", "/shop?category=a+b&type=c%26d"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ShopHref(tt.category, tt.typ, tt.sort))
	}
}

func TestMenuSyntheticEntriesFirst(t *testing.T) {
	h := NewHierarchy(fixtureNodes(), nil)
	menu := h.Menu()
	require.Len(t, menu, 4)

	for _, mc := range menu {
		require.NotEmpty(t, mc.Groups, mc.Slug)
		first := mc.Groups[0]
		assert.Empty(t, first.Title, "first group of %s must be untitled", mc.Slug)
		require.GreaterOrEqual(t, len(first.Items), 2)
		assert.Equal(t, ViewAllLabel, first.Items[0].Name)
		assert.Equal(t, "/shop?category="+mc.Slug, first.Items[0].Href)
		assert.Equal(t, NewArrivalsLabel, first.Items[1].Name)
		assert.Equal(t, "/shop?category="+mc.Slug+"&sort=new", first.Items[1].Href)
	}
}

func TestMenuForMen(t *testing.T) {
	h := NewHierarchy(fixtureNodes(), nil)
	men, _ := h.BySlug("men")
	mc := h.MenuFor(men)

	require.Len(t, mc.Groups, 3)

	untitled := mc.Groups[0]
	require.Len(t, untitled.Items, 3)
	assert.Equal(t, "Jeans", untitled.Items[2].Name)
	assert.Equal(t, "/shop?category=men&type=men-jeans", untitled.Items[2].Href)

	shoes := mc.Groups[1]
	assert.Equal(t, "Shoes", shoes.Title)
	assert.Equal(t, "/shop?category=men&type=men-shoes", shoes.TitleHref)
	assert.Equal(t, []string{"Boots", "Sneakers"}, itemNames(shoes.Items))

	tops := mc.Groups[2]
	assert.Equal(t, "Tops", tops.Title)
	for _, it := range tops.Items {
		assert.Equal(t, "/shop?category=men&type="+it.Slug, it.Href)
	}
}

func TestMenuSynthesizesUntitledGroupWhenAllChildrenAreGroups(t *testing.T) {
	nodes := []Node{
		{ID: 1, Name: "Men", Slug: "men"},
		{ID: 2, Name: "Tops", Slug: "tops", ParentID: ptr(1)},
		{ID: 3, Name: "Polos", Slug: "polos", ParentID: ptr(2)},
	}
	h := NewHierarchy(nodes, nil)
	mc := h.Menu()[0]
	require.Len(t, mc.Groups, 2)
	assert.Empty(t, mc.Groups[0].Title)
	assert.Equal(t, []string{ViewAllLabel, NewArrivalsLabel}, itemNames(mc.Groups[0].Items))
	assert.Equal(t, "Tops", mc.Groups[1].Title)
}

func TestMenuRootWithoutChildren(t *testing.T) {
	h := NewHierarchy([]Node{{ID: 1, Name: "Kids", Slug: "kids"}}, nil)
	mc := h.Menu()[0]
	require.Len(t, mc.Groups, 1)
	assert.Equal(t, []string{ViewAllLabel, NewArrivalsLabel}, itemNames(mc.Groups[0].Items))
}

// Every mid and leaf category of a tree with depth <= 3 shows up exactly once.
func TestMenuEveryNodeExactlyOnce(t *testing.T) {
	trees := map[string][]Node{
		"fixture":   fixtureNodes(),
		"generated": generatedTree(4, 3, 2),
		"flat":      generatedTree(3, 5, 0),
	}
	for name, nodes := range trees {
		t.Run(name, func(t *testing.T) {
			h := NewHierarchy(nodes, nil)
			seen := map[string]int{}
			for _, mc := range h.Menu() {
				for _, g := range mc.Groups {
					if g.TitleSlug != "" {
						seen[g.TitleSlug]++
					}
					for _, it := range g.Items {
						if it.Slug != "" {
							seen[it.Slug]++
						}
					}
				}
			}
			for _, n := range nodes {
				if n.ParentID == nil {
					assert.Zero(t, seen[n.Slug], "root %s in menu body", n.Slug)
					continue
				}
				assert.Equal(t, 1, seen[n.Slug], "node %s", n.Slug)
			}
		})
	}
}

func TestFilters(t *testing.T) {
	h := NewHierarchy(fixtureNodes(), nil)

	f := h.Filters("men", "men-shirts")
	require.Len(t, f.Categories, 4)
	assert.True(t, f.Categories[0].Selected)
	require.Len(t, f.Groups, 3)
	assert.Empty(t, f.Groups[0].Title)
	assert.Equal(t, "men-jeans", f.Groups[0].Types[0].Slug)
	assert.Equal(t, "Tops", f.Groups[2].Title)

	var selected []string
	for _, g := range f.Groups {
		for _, ty := range g.Types {
			if ty.Selected {
				selected = append(selected, ty.Slug)
			}
		}
	}
	assert.Equal(t, []string{"men-shirts"}, selected)

	none := h.Filters("nope", "")
	assert.Len(t, none.Categories, 4)
	assert.Empty(t, none.Groups)
}

func itemNames(items []MenuItem) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.Name)
	}
	return out
}

// generatedTree builds roots, each with mids children, each mid with leaves children.
func generatedTree(roots, mids, leaves int) []Node {
	var nodes []Node
	id := int64(1)
	for r := 0; r < roots; r++ {
		rootID := id
		nodes = append(nodes, Node{ID: rootID, Name: fmt.Sprintf("Root %d", r), Slug: fmt.Sprintf("r%d", r)})
		id++
		for m := 0; m < mids; m++ {
			midID := id
			nodes = append(nodes, Node{ID: midID, Name: fmt.Sprintf("Mid %d", m), Slug: fmt.Sprintf("r%d-m%d", r, m), ParentID: ptr(rootID)})
			id++
			// odd mids stay leaves so both kinds of children are present
			if m%2 == 1 {
				continue
			}
			for l := 0; l < leaves; l++ {
				nodes = append(nodes, Node{ID: id, Name: fmt.Sprintf("Leaf %d", l), Slug: fmt.Sprintf("r%d-m%d-l%d", r, m, l), ParentID: ptr(midID)})
				id++
			}
		}
	}
	return nodes
}
