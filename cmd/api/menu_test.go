package main

import (
	"errors"
	"net/http"
	"testing"

	"atelier/internal/catalog"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMenuHandler(t *testing.T) {
	ta := newTestApplication(t, config{})

	rr := ta.do(t, http.MethodGet, "/v1/menu", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var menu []catalog.MenuCategory
	decodeData(t, rr, &menu)
	require.Len(t, menu, 2)
	assert.Equal(t, "men", menu[0].Slug)
	assert.Equal(t, "women", menu[1].Slug)

	first := menu[0].Groups[0]
	assert.Empty(t, first.Title)
	require.GreaterOrEqual(t, len(first.Items), 3)
	assert.Equal(t, catalog.ViewAllLabel, first.Items[0].Name)
	assert.Equal(t, "/shop?category=men", first.Items[0].Href)
	assert.Equal(t, catalog.NewArrivalsLabel, first.Items[1].Name)
	assert.Equal(t, "/shop?category=men&sort=new", first.Items[1].Href)
	assert.Equal(t, "Jeans", first.Items[2].Name)

	etag := rr.Header().Get("ETag")
	require.NotEmpty(t, etag)

	rr = ta.do(t, http.MethodGet, "/v1/menu", nil, "If-None-Match", etag)
	assert.Equal(t, http.StatusNotModified, rr.Code)
	assert.Empty(t, rr.Body.Bytes())

	rr = ta.do(t, http.MethodGet, "/v1/menu", nil, "If-None-Match", `"stale"`)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestMenuHandlerDegradesToEmpty(t *testing.T) {
	ta := newTestApplication(t, config{})
	ta.products.listErr = errors.New("connection refused")

	rr := ta.do(t, http.MethodGet, "/v1/menu", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"data":[]}`, rr.Body.String())
}

func TestShopFiltersHandler(t *testing.T) {
	ta := newTestApplication(t, config{})

	rr := ta.do(t, http.MethodGet, "/v1/shop/filters?category=MEN&type=men-sneakers", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var f catalog.ShopFilters
	decodeData(t, rr, &f)
	require.Len(t, f.Categories, 2)
	assert.True(t, f.Categories[0].Selected)

	require.Len(t, f.Groups, 3)
	assert.Equal(t, "men-jeans", f.Groups[0].Types[0].Slug)
	assert.Equal(t, "Shoes", f.Groups[1].Title)
	assert.True(t, f.Groups[1].Types[0].Selected)
}

func TestETagMatches(t *testing.T) {
	assert.True(t, etagMatches(`"abc"`, `"abc"`))
	assert.True(t, etagMatches(`W/"abc"`, `"abc"`))
	assert.True(t, etagMatches(`"x", "abc"`, `"abc"`))
	assert.True(t, etagMatches(`*`, `"abc"`))
	assert.False(t, etagMatches(``, `"abc"`))
}
