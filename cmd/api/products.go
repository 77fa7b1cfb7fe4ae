package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"atelier/internal/catalog"
	"atelier/internal/domain/products"
	"atelier/internal/params"

	"github.com/go-chi/chi/v5"
)

var (
	slugStripRE = regexp.MustCompile(`[^a-z0-9]+`)
	slugValidRE = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
)

func generateSlug(name string) string {
	slug := slugStripRE.ReplaceAllString(strings.ToLower(name), "-")
	return strings.Trim(slug, "-")
}

func isValidSlug(slug string) bool {
	// Alphanumeric and single hyphens only, 2-80 chars
	return len(slug) >= 2 && len(slug) <= 80 && slugValidRE.MatchString(slug)
}

func parseIDParam(r *http.Request, name string) (int64, error) {
	idStr := chi.URLParam(r, name)
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s: %s", name, idStr)
	}
	return id, nil
}

type productListResponse struct {
	Products   []*products.ProductCard `json:"products"`
	Scope      catalog.Scope           `json:"scope"`
	Sort       string                  `json:"sort"`
	Pagination params.Pagination       `json:"pagination"`
}

// listProductsHandler godoc
//
//	@Summary		List products
//	@Description	Active products scoped by category and type slug. An unknown type falls back to the category scope; see scope.type_resolved.
//	@Tags			storefront
//	@Produce		json
//	@Param			category	query		string	false	"Root category slug, or all"
//	@Param			type		query		string	false	"Category slug anywhere in the tree"
//	@Param			sort		query		string	false	"new | price_asc | price_desc"
//	@Param			page		query		int		false	"Page number"
//	@Param			limit		query		int		false	"Page size"
//	@Success		200			{object}	productListResponse
//	@Failure		500			{object}	error
//	@Router			/products [get]
func (app *application) listProductsHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	q := params.ParseShopQuery(r.URL.Query())
	scope := app.catalog.Hierarchy(ctx).Resolve(q.Category, q.Type)

	cards, total, err := app.store.Products.ListProductCards(ctx, products.ProductFilter{
		CategoryIDs: scope.CategoryIDs,
		Restricted:  scope.Restricted,
		ActiveOnly:  true,
		Sort:        q.Sort,
		Limit:       q.Limit,
		Offset:      q.Offset,
	})
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}
	q.Pagination.ComputeMeta(total)

	resp := productListResponse{
		Products:   cards,
		Scope:      scope,
		Sort:       q.Sort,
		Pagination: q.Pagination,
	}
	if err := app.jsonResponse(w, http.StatusOK, resp); err != nil {
		app.internalServerError(w, r, err)
	}
}

type colorOption struct {
	Hex  string `json:"hex"`
	Name string `json:"name"`
}

type productDetailResponse struct {
	*products.ProductDetail
	Breadcrumbs []catalog.MenuItem `json:"breadcrumbs"`
	SizeDomain  catalog.SizeDomain `json:"size_domain"`
	Sizes       []string           `json:"sizes"`
	Colors      []colorOption      `json:"colors"`
}

func (app *application) buildProductDetail(h *catalog.Hierarchy, d *products.ProductDetail) productDetailResponse {
	chain := h.Ancestors(d.Product.CategoryID)

	crumbs := make([]catalog.MenuItem, 0, len(chain))
	var rootSlug string
	for i, n := range chain {
		if i == 0 {
			rootSlug = n.Slug
			crumbs = append(crumbs, catalog.MenuItem{Name: n.Name, Slug: n.Slug, Href: catalog.ShopHref(n.Slug, "", "")})
			continue
		}
		crumbs = append(crumbs, catalog.MenuItem{Name: n.Name, Slug: n.Slug, Href: catalog.ShopHref(rootSlug, n.Slug, "")})
	}

	specs := make([]catalog.VariantSpec, 0, len(d.Variants))
	for _, v := range d.Variants {
		specs = append(specs, v.Spec())
	}
	sizes, hexes := catalog.Options(specs)
	colors := make([]colorOption, 0, len(hexes))
	for _, c := range hexes {
		colors = append(colors, colorOption{Hex: c, Name: catalog.ColorName(c)})
	}

	return productDetailResponse{
		ProductDetail: d,
		Breadcrumbs:   crumbs,
		SizeDomain:    catalog.SizeDomainFor(chain),
		Sizes:         sizes,
		Colors:        colors,
	}
}

// getProductHandler godoc
//
//	@Summary		Product detail
//	@Description	Active product with breadcrumbs, variants, images and the available sizes and colours
//	@Tags			storefront
//	@Produce		json
//	@Param			slug	path		string	true	"Product slug"
//	@Success		200		{object}	productDetailResponse
//	@Failure		404		{object}	error
//	@Failure		500		{object}	error
//	@Router			/products/{slug} [get]
func (app *application) getProductHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	slug := strings.ToLower(strings.TrimSpace(chi.URLParam(r, "slug")))
	d, err := app.store.Products.GetProductDetailBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, products.ErrProductNotFound) {
			app.notFoundResponse(w, r, err)
			return
		}
		app.internalServerError(w, r, err)
		return
	}

	resp := app.buildProductDetail(app.catalog.Hierarchy(ctx), d)
	if err := app.jsonResponse(w, http.StatusOK, resp); err != nil {
		app.internalServerError(w, r, err)
	}
}

// deleteImagesAsync removes replaced or orphaned images from the media host.
// Failures are logged only.
func (app *application) deleteImagesAsync(urls []string) {
	if len(urls) == 0 {
		return
	}
	go func(urls []string) {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		for _, u := range urls {
			if err := app.media.Delete(ctx, u); err != nil {
				app.logger.Errorw("cloudinary cleanup failed", "url", u, "error", err)
			}
		}
	}(append([]string(nil), urls...))
}

// releaseImagesAsync is deleteImagesAsync for urls that other rows may still
// use. Only the ones nothing references any more are removed.
func (app *application) releaseImagesAsync(urls []string) {
	if len(urls) == 0 {
		return
	}
	go func(urls []string) {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		unused, err := app.store.Products.UnreferencedImageURLs(ctx, urls)
		if err != nil {
			app.logger.Errorw("image reference check failed, keeping images", "urls", urls, "error", err)
			return
		}
		for _, u := range unused {
			if err := app.media.Delete(ctx, u); err != nil {
				app.logger.Errorw("cloudinary cleanup failed", "url", u, "error", err)
			}
		}
	}(append([]string(nil), urls...))
}
