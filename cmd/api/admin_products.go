package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"atelier/internal/catalog"
	"atelier/internal/domain/products"
	"atelier/internal/params"

	"github.com/shopspring/decimal"
)

type saveProductPayload struct {
	Name        string          `json:"name" validate:"required,min=2,max=200"`
	Slug        string          `json:"slug" validate:"omitempty,slug"`
	Description *string         `json:"description" validate:"omitempty,max=5000"`
	Price       decimal.Decimal `json:"price"`
	CategoryID  int64           `json:"category_id" validate:"required,gt=0"`
	IsActive    *bool           `json:"is_active"`
	Sizes       []string        `json:"sizes" validate:"max=20,dive,max=10"`
	Colors      []string        `json:"colors" validate:"max=30,dive,hexcolor6"`
	Stock       int             `json:"stock" validate:"gte=0,lte=100000"`
	ImageURLs   []string        `json:"image_urls" validate:"max=12,dive,url"`
}

// normalize trims text and maps colour names and bare hex to #RRGGBB so
// validation sees the stored form.
func (p *saveProductPayload) normalize() {
	p.Name = strings.TrimSpace(p.Name)
	p.Slug = strings.ToLower(strings.TrimSpace(p.Slug))
	if p.Slug == "" {
		p.Slug = generateSlug(p.Name)
	}
	if p.Description != nil {
		d := strings.TrimSpace(*p.Description)
		if d == "" {
			p.Description = nil
		} else {
			p.Description = &d
		}
	}
	colors := p.Colors[:0]
	for _, c := range p.Colors {
		if c = strings.TrimSpace(c); c != "" {
			colors = append(colors, catalog.NormalizeColor(c))
		}
	}
	p.Colors = colors

	urls := p.ImageURLs[:0]
	for _, u := range p.ImageURLs {
		if u = strings.TrimSpace(u); u != "" {
			urls = append(urls, u)
		}
	}
	p.ImageURLs = urls
}

func (app *application) decodeProductPayload(w http.ResponseWriter, r *http.Request) (*saveProductPayload, bool) {
	var payload saveProductPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return nil, false
	}
	payload.normalize()

	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return nil, false
	}
	if payload.Price.IsNegative() {
		app.badRequestResponse(w, r, errors.New("price cannot be negative"))
		return nil, false
	}
	return &payload, true
}

// saveProduct materializes the variants for the category's size vocabulary
// and stores everything in one transaction.
func (app *application) saveProduct(ctx context.Context, id int64, p *saveProductPayload) (*products.SaveResult, error) {
	domain := app.catalog.Hierarchy(ctx).SizeDomainOf(p.CategoryID)

	active := true
	if p.IsActive != nil {
		active = *p.IsActive
	}

	return app.store.Products.SaveProduct(ctx, &products.SaveProductInput{
		ID:          id,
		Name:        p.Name,
		Slug:        p.Slug,
		Description: p.Description,
		Price:       p.Price,
		CategoryID:  p.CategoryID,
		IsActive:    active,
		Variants:    catalog.Materialize(p.Sizes, p.Colors, p.Stock, domain),
		ImageURLs:   p.ImageURLs,
	})
}

func (app *application) saveProductError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, products.ErrProductNotFound):
		app.notFoundResponse(w, r, err)
	case errors.Is(err, products.ErrDuplicateSlug):
		app.conflictResponse(w, r, fmt.Errorf("a product with this slug already exists"))
	case errors.Is(err, products.ErrCategoryNotFound):
		app.badRequestResponse(w, r, fmt.Errorf("category does not exist"))
	default:
		app.internalServerError(w, r, err)
	}
}

// createProductHandler godoc
//
//	@Summary		Create product
//	@Description	Creates a product with sizes x colours variants and ordered images
//	@Tags			admin-products
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		saveProductPayload	true	"Product"
//	@Success		201		{object}	products.SaveResult
//	@Failure		400		{object}	error
//	@Failure		409		{object}	error
//	@Security		BasicAuth
//	@Router			/admin/products [post]
func (app *application) createProductHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	payload, ok := app.decodeProductPayload(w, r)
	if !ok {
		return
	}

	res, err := app.saveProduct(ctx, 0, payload)
	if err != nil {
		app.saveProductError(w, r, err)
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/v1/admin/products/%d", res.Product.ID))
	app.jsonResponse(w, http.StatusCreated, res)
}

// updateProductHandler godoc
//
//	@Summary		Replace product
//	@Description	Overwrites the product and replaces all of its variants and images
//	@Tags			admin-products
//	@Accept			json
//	@Produce		json
//	@Param			productID	path		int					true	"Product ID"
//	@Param			payload		body		saveProductPayload	true	"Product"
//	@Success		200			{object}	products.SaveResult
//	@Failure		400			{object}	error
//	@Failure		404			{object}	error
//	@Failure		409			{object}	error
//	@Security		BasicAuth
//	@Router			/admin/products/{productID} [put]
func (app *application) updateProductHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	id, err := parseIDParam(r, "productID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	payload, ok := app.decodeProductPayload(w, r)
	if !ok {
		return
	}

	res, err := app.saveProduct(ctx, id, payload)
	if err != nil {
		app.saveProductError(w, r, err)
		return
	}

	app.deleteImagesAsync(res.RemovedImageURLs)
	app.jsonResponse(w, http.StatusOK, res)
}

type adminProductListResponse struct {
	Products   []*products.AdminProductCard `json:"products"`
	Pagination params.Pagination            `json:"pagination"`
}

// adminListProductsHandler godoc
//
//	@Summary		List all products
//	@Description	Active and inactive products with variant and image counts
//	@Tags			admin-products
//	@Produce		json
//	@Param			page	query		int	false	"Page number"
//	@Param			limit	query		int	false	"Page size"
//	@Success		200		{object}	adminProductListResponse
//	@Security		BasicAuth
//	@Router			/admin/products [get]
func (app *application) adminListProductsHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	p := params.ParsePaginationWith(r.URL.Query(), 20, 50)
	list, total, err := app.store.Products.ListAdminProductCards(ctx, p.Limit, p.Offset)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}
	p.ComputeMeta(total)

	app.jsonResponse(w, http.StatusOK, adminProductListResponse{Products: list, Pagination: p})
}

type adminProductResponse struct {
	productDetailResponse
	Form saveProductPayload `json:"form"`
}

// adminGetProductHandler godoc
//
//	@Summary		Get product
//	@Description	Product detail for the edit form, including inactive products
//	@Tags			admin-products
//	@Produce		json
//	@Param			productID	path		int	true	"Product ID"
//	@Success		200			{object}	adminProductResponse
//	@Failure		404			{object}	error
//	@Security		BasicAuth
//	@Router			/admin/products/{productID} [get]
func (app *application) adminGetProductHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	id, err := parseIDParam(r, "productID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	d, err := app.store.Products.GetProductDetailByID(ctx, id)
	if err != nil {
		if errors.Is(err, products.ErrProductNotFound) {
			app.notFoundResponse(w, r, err)
			return
		}
		app.internalServerError(w, r, err)
		return
	}

	detail := app.buildProductDetail(app.catalog.Hierarchy(ctx), d)

	// The form is the inverse of the save path: stock is taken from the
	// first variant since the form edits one stock value for all of them.
	stock := 0
	if len(d.Variants) > 0 {
		stock = d.Variants[0].Stock
	}
	urls := make([]string, 0, len(d.Images))
	for _, img := range d.Images {
		urls = append(urls, img.ImageURL)
	}
	active := d.Product.IsActive
	form := saveProductPayload{
		Name:        d.Product.Name,
		Slug:        d.Product.Slug,
		Description: d.Product.Description,
		Price:       d.Product.Price,
		CategoryID:  d.Product.CategoryID,
		IsActive:    &active,
		Sizes:       detail.Sizes,
		Colors:      make([]string, 0, len(detail.Colors)),
		Stock:       stock,
		ImageURLs:   urls,
	}
	for _, c := range detail.Colors {
		form.Colors = append(form.Colors, c.Hex)
	}

	app.jsonResponse(w, http.StatusOK, adminProductResponse{productDetailResponse: detail, Form: form})
}

type setActivePayload struct {
	IsActive *bool `json:"is_active" validate:"required"`
}

// setProductActiveHandler godoc
//
//	@Summary		Publish or hide a product
//	@Tags			admin-products
//	@Accept			json
//	@Produce		json
//	@Param			productID	path		int					true	"Product ID"
//	@Param			payload		body		setActivePayload	true	"Active flag"
//	@Success		200			{object}	map[string]bool
//	@Failure		404			{object}	error
//	@Security		BasicAuth
//	@Router			/admin/products/{productID}/active [patch]
func (app *application) setProductActiveHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	id, err := parseIDParam(r, "productID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	var payload setActivePayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := app.store.Products.SetProductActive(ctx, id, *payload.IsActive); err != nil {
		if errors.Is(err, products.ErrProductNotFound) {
			app.notFoundResponse(w, r, err)
			return
		}
		app.internalServerError(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusOK, map[string]bool{"is_active": *payload.IsActive})
}

// deleteProductHandler godoc
//
//	@Summary		Delete product
//	@Description	Deletes the product with its variants and images, then removes the images from the media host
//	@Tags			admin-products
//	@Param			productID	path	int	true	"Product ID"
//	@Success		204
//	@Failure		404	{object}	error
//	@Security		BasicAuth
//	@Router			/admin/products/{productID} [delete]
func (app *application) deleteProductHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	id, err := parseIDParam(r, "productID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	urls, err := app.store.Products.DeleteProduct(ctx, id)
	if err != nil {
		if errors.Is(err, products.ErrProductNotFound) {
			app.notFoundResponse(w, r, err)
			return
		}
		app.internalServerError(w, r, err)
		return
	}

	app.deleteImagesAsync(urls)
	w.WriteHeader(http.StatusNoContent)
}
