package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"atelier/internal/catalog"

	"github.com/cespare/xxhash/v2"
)

// menuHandler godoc
//
//	@Summary		Mega menu
//	@Description	Navigation tree for every root category. Never fails; a store error yields an empty menu.
//	@Tags			storefront
//	@Produce		json
//	@Param			If-None-Match	header		string	false	"ETag from a previous response"
//	@Success		200				{object}	[]catalog.MenuCategory
//	@Success		304
//	@Router			/menu [get]
func (app *application) menuHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	menu := app.catalog.Menu(ctx)

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(struct {
		Data []catalog.MenuCategory `json:"data"`
	}{Data: menu}); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	etag := fmt.Sprintf(`"%x"`, xxhash.Sum64(buf.Bytes()))
	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "public, max-age=60")

	if etagMatches(r.Header.Get("If-None-Match"), etag) {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func etagMatches(header, etag string) bool {
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimSpace(candidate)
		if candidate == "*" || strings.TrimPrefix(candidate, "W/") == etag {
			return true
		}
	}
	return false
}

// shopFiltersHandler godoc
//
//	@Summary		Shop sidebar filters
//	@Description	Root categories plus the type groups of the selected root
//	@Tags			storefront
//	@Produce		json
//	@Param			category	query		string	false	"Root category slug"
//	@Param			type		query		string	false	"Selected type slug"
//	@Success		200			{object}	catalog.ShopFilters
//	@Router			/shop/filters [get]
func (app *application) shopFiltersHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	q := r.URL.Query()
	category := strings.ToLower(strings.TrimSpace(q.Get("category")))
	typ := strings.ToLower(strings.TrimSpace(q.Get("type")))

	filters := app.catalog.Hierarchy(ctx).Filters(category, typ)
	if err := app.jsonResponse(w, http.StatusOK, filters); err != nil {
		app.internalServerError(w, r, err)
	}
}
