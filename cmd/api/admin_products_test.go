package main

import (
	"net/http"
	"testing"
	"time"

	"atelier/internal/catalog"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateProductMaterializesVariants(t *testing.T) {
	ta := newTestApplication(t, config{})

	rr := ta.do(t, http.MethodPost, "/v1/admin/products", map[string]any{
		"name":        "Oxford Shirt",
		"price":       "3200",
		"category_id": 111,
		"sizes":       []string{"S", "M"},
		"colors":      []string{"#000000", "white"},
		"stock":       4,
		"image_urls":  []string{"https://res.cloudinary.com/demo/image/upload/v1/products/a.jpg"},
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	assert.NotEmpty(t, rr.Header().Get("Location"))

	in := ta.products.lastSave
	require.NotNil(t, in)
	assert.Equal(t, "oxford-shirt", in.Slug)
	assert.True(t, in.IsActive)
	assert.Equal(t, []catalog.VariantSpec{
		{Size: "S", Color: "#000000", Stock: 4},
		{Size: "S", Color: "#FFFFFF", Stock: 4},
		{Size: "M", Color: "#000000", Stock: 4},
		{Size: "M", Color: "#FFFFFF", Stock: 4},
	}, in.Variants)
}

func TestCreateProductDefaultsFollowSizeDomain(t *testing.T) {
	ta := newTestApplication(t, config{})

	rr := ta.do(t, http.MethodPost, "/v1/admin/products", map[string]any{
		"name":        "Court Sneaker",
		"price":       7500,
		"category_id": 131,
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	assert.Equal(t, []catalog.VariantSpec{{Size: "40", Color: catalog.DefaultColor}}, ta.products.lastSave.Variants)

	rr = ta.do(t, http.MethodPost, "/v1/admin/products", map[string]any{
		"name":        "Plain Tee",
		"price":       900,
		"category_id": 111,
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	assert.Equal(t, []catalog.VariantSpec{{Size: "M", Color: catalog.DefaultColor}}, ta.products.lastSave.Variants)
}

func TestCreateProductValidation(t *testing.T) {
	ta := newTestApplication(t, config{})

	cases := map[string]map[string]any{
		"unknown colour":  {"name": "Shirt", "price": 1, "category_id": 111, "colors": []string{"ultraviolet"}},
		"negative price":  {"name": "Shirt", "price": -1, "category_id": 111},
		"missing name":    {"price": 1, "category_id": 111},
		"bad slug":        {"name": "Shirt", "slug": "Bad Slug", "price": 1, "category_id": 111},
		"negative stock":  {"name": "Shirt", "price": 1, "category_id": 111, "stock": -3},
		"unknown field":   {"name": "Shirt", "price": 1, "category_id": 111, "brand": "x"},
		"bad image url":   {"name": "Shirt", "price": 1, "category_id": 111, "image_urls": []string{"not a url"}},
		"unknown category": {"name": "Shirt", "price": 1, "category_id": 9999},
	}
	for name, body := range cases {
		rr := ta.do(t, http.MethodPost, "/v1/admin/products", body)
		assert.Equal(t, http.StatusBadRequest, rr.Code, name)
	}
}

func TestCreateProductDuplicateSlug(t *testing.T) {
	ta := newTestApplication(t, config{})

	rr := ta.do(t, http.MethodPost, "/v1/admin/products", map[string]any{
		"name": "Linen Shirt", "price": 1, "category_id": 111,
	})
	assert.Equal(t, http.StatusConflict, rr.Code)
}

func TestUpdateProductCleansUpRemovedImages(t *testing.T) {
	ta := newTestApplication(t, config{})

	kept := "https://res.cloudinary.com/demo/image/upload/v1/products/shirt-front.jpg"
	removed := "https://res.cloudinary.com/demo/image/upload/v1/products/shirt-back.jpg"

	rr := ta.do(t, http.MethodPut, "/v1/admin/products/1", map[string]any{
		"name":        "Linen Shirt",
		"slug":        "linen-shirt",
		"price":       "2599",
		"category_id": 111,
		"sizes":       []string{"L"},
		"colors":      []string{"#ffffff"},
		"stock":       2,
		"image_urls":  []string{kept},
	})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, []catalog.VariantSpec{{Size: "L", Color: "#FFFFFF", Stock: 2}}, ta.products.lastSave.Variants)

	assert.Eventually(t, func() bool {
		d := ta.uploader.Deleted()
		return len(d) == 1 && d[0] == removed
	}, time.Second, 10*time.Millisecond)

	rr = ta.do(t, http.MethodPut, "/v1/admin/products/404", map[string]any{
		"name": "Ghost", "price": 1, "category_id": 111,
	})
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestAdminGetProductIncludesInactive(t *testing.T) {
	ta := newTestApplication(t, config{})

	rr := ta.do(t, http.MethodGet, "/v1/admin/products/3", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var res struct {
		Form saveProductPayload `json:"form"`
	}
	decodeData(t, rr, &res)
	assert.Equal(t, "draft-tee", res.Form.Slug)
	require.NotNil(t, res.Form.IsActive)
	assert.False(t, *res.Form.IsActive)
	assert.Equal(t, []string{"M"}, res.Form.Sizes)
	assert.Equal(t, []string{"#000000"}, res.Form.Colors)

	rr = ta.do(t, http.MethodGet, "/v1/admin/products/abc", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestAdminListProducts(t *testing.T) {
	ta := newTestApplication(t, config{})

	rr := ta.do(t, http.MethodGet, "/v1/admin/products?limit=500", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var res struct {
		Products []struct {
			ID            int64 `json:"id"`
			IsActive      bool  `json:"is_active"`
			VariantsCount int   `json:"variants_count"`
		} `json:"products"`
		Pagination struct {
			Limit int `json:"limit"`
			Total int `json:"total"`
		} `json:"pagination"`
	}
	decodeData(t, rr, &res)
	assert.Len(t, res.Products, 3)
	assert.Equal(t, 50, res.Pagination.Limit)
	assert.Equal(t, 3, res.Pagination.Total)
}

func TestSetProductActive(t *testing.T) {
	ta := newTestApplication(t, config{})

	rr := ta.do(t, http.MethodPatch, "/v1/admin/products/3/active", map[string]any{"is_active": true})
	require.Equal(t, http.StatusOK, rr.Code)

	rr = ta.do(t, http.MethodGet, "/v1/products/draft-tee", nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = ta.do(t, http.MethodPatch, "/v1/admin/products/3/active", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = ta.do(t, http.MethodPatch, "/v1/admin/products/99/active", map[string]any{"is_active": false})
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestDeleteProduct(t *testing.T) {
	ta := newTestApplication(t, config{})

	rr := ta.do(t, http.MethodDelete, "/v1/admin/products/1", nil)
	require.Equal(t, http.StatusNoContent, rr.Code)

	assert.Eventually(t, func() bool { return len(ta.uploader.Deleted()) == 2 }, time.Second, 10*time.Millisecond)

	rr = ta.do(t, http.MethodDelete, "/v1/admin/products/1", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestImagesSharedWithAnotherProductSurvive(t *testing.T) {
	ta := newTestApplication(t, config{})

	front := "https://res.cloudinary.com/demo/image/upload/v1/products/shirt-front.jpg"
	back := "https://res.cloudinary.com/demo/image/upload/v1/products/shirt-back.jpg"

	rr := ta.do(t, http.MethodPost, "/v1/admin/products", map[string]any{
		"name": "Linen Shirt Navy", "price": 2499, "category_id": 111,
		"image_urls": []string{back},
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	rr = ta.do(t, http.MethodPut, "/v1/admin/products/1", map[string]any{
		"name": "Linen Shirt", "slug": "linen-shirt", "price": 2499, "category_id": 111,
		"image_urls": []string{front},
	})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = ta.do(t, http.MethodDelete, "/v1/admin/products/1", nil)
	require.Equal(t, http.StatusNoContent, rr.Code)

	assert.Eventually(t, func() bool {
		d := ta.uploader.Deleted()
		return len(d) == 1 && d[0] == front
	}, time.Second, 10*time.Millisecond)
	assert.Never(t, func() bool {
		for _, u := range ta.uploader.Deleted() {
			if u == back {
				return true
			}
		}
		return false
	}, 200*time.Millisecond, 10*time.Millisecond)
}
