package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"atelier/internal/catalog"
	"atelier/internal/domain/products"
	"atelier/internal/media"

	"github.com/go-chi/chi/v5"
)

const maxUploadBytes = 5 * 1024 * 1024 // 5MB

func (app *application) categoryError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, products.ErrCategoryNotFound):
		app.notFoundResponse(w, r, err)
	case errors.Is(err, products.ErrDuplicateSlug):
		app.conflictResponse(w, r, fmt.Errorf("a category with this slug already exists"))
	case errors.Is(err, products.ErrCategoryInUse):
		app.conflictResponse(w, r, fmt.Errorf("category still has subcategories or products"))
	case errors.Is(err, products.ErrInvalidParent), errors.Is(err, products.ErrCircularDependency):
		app.badRequestResponse(w, r, err)
	default:
		app.internalServerError(w, r, err)
	}
}

// listCategoriesHandler godoc
//
//	@Summary		List categories
//	@Description	Flat category list. A store error yields an empty list.
//	@Tags			admin-categories
//	@Produce		json
//	@Success		200	{object}	[]products.Category
//	@Security		BasicAuth
//	@Router			/admin/categories [get]
func (app *application) listCategoriesHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	list, err := app.store.Products.ListCategories(ctx)
	if err != nil {
		app.logger.Errorw("list categories", "error", err)
		list = []*products.Category{}
	}
	if list == nil {
		list = []*products.Category{}
	}
	app.jsonResponse(w, http.StatusOK, list)
}

type categoryTreeNode struct {
	*catalog.Node
	SizeDomain catalog.SizeDomain `json:"size_domain"`
	Children   []categoryTreeNode `json:"children"`
}

func buildTree(h *catalog.Hierarchy, nodes []*catalog.Node, depth int) []categoryTreeNode {
	out := make([]categoryTreeNode, 0, len(nodes))
	for _, n := range nodes {
		t := categoryTreeNode{Node: n, SizeDomain: h.SizeDomainOf(n.ID), Children: []categoryTreeNode{}}
		if depth < catalog.MaxDepth {
			t.Children = buildTree(h, h.Children(n.ID), depth+1)
		}
		out = append(out, t)
	}
	return out
}

// categoryTreeHandler godoc
//
//	@Summary		Category tree
//	@Description	Nested categories in menu order with the size vocabulary of each node
//	@Tags			admin-categories
//	@Produce		json
//	@Success		200	{object}	[]categoryTreeNode
//	@Security		BasicAuth
//	@Router			/admin/categories/tree [get]
func (app *application) categoryTreeHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	h := app.catalog.Hierarchy(ctx)
	app.jsonResponse(w, http.StatusOK, buildTree(h, h.Roots(), 1))
}

type categoryDetailResponse struct {
	*products.Category
	Path         []*catalog.Node `json:"path"`
	Children     []*catalog.Node `json:"children"`
	ProductCount int             `json:"product_count"`
}

// getCategoryHandler godoc
//
//	@Summary		Get category
//	@Tags			admin-categories
//	@Produce		json
//	@Param			categoryID	path		int	true	"Category ID"
//	@Success		200			{object}	categoryDetailResponse
//	@Failure		404			{object}	error
//	@Security		BasicAuth
//	@Router			/admin/categories/{categoryID} [get]
func (app *application) getCategoryHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	id, err := parseIDParam(r, "categoryID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	c, err := app.store.Products.GetCategoryByID(ctx, id)
	if err != nil {
		app.categoryError(w, r, err)
		return
	}
	count, err := app.store.Products.CountProductsInCategory(ctx, id)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	h := app.catalog.Hierarchy(ctx)
	children := h.Children(id)
	if children == nil {
		children = []*catalog.Node{}
	}
	app.jsonResponse(w, http.StatusOK, categoryDetailResponse{
		Category:     c,
		Path:         h.Ancestors(id),
		Children:     children,
		ProductCount: count,
	})
}

// categoryCascadeHandler godoc
//
//	@Summary		Cascade select levels
//	@Description	Options for each level of the admin category picker with the selected path. ID 0 returns the roots.
//	@Tags			admin-categories
//	@Produce		json
//	@Param			categoryID	path		int	true	"Category ID or 0"
//	@Success		200			{object}	[]catalog.CascadeLevel
//	@Security		BasicAuth
//	@Router			/admin/categories/{categoryID}/cascade [get]
func (app *application) categoryCascadeHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	idStr := chi.URLParam(r, "categoryID")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id < 0 {
		app.badRequestResponse(w, r, fmt.Errorf("invalid categoryID: %s", idStr))
		return
	}

	h := app.catalog.Hierarchy(ctx)
	if _, ok := h.ByID(id); id != 0 && !ok {
		app.notFoundResponse(w, r, products.ErrCategoryNotFound)
		return
	}
	app.jsonResponse(w, http.StatusOK, h.Cascade(id))
}

type sizesResponse struct {
	Domain      catalog.SizeDomain  `json:"domain"`
	Sizes       []string            `json:"sizes"`
	DefaultSize string              `json:"default_size"`
	Colors      []map[string]string `json:"colors"`
}

// categorySizesHandler godoc
//
//	@Summary		Size vocabulary
//	@Description	Sizes offered for products of the category (clothing or shoes) and the colour palette
//	@Tags			admin-categories
//	@Produce		json
//	@Param			categoryID	path		int	true	"Category ID"
//	@Success		200			{object}	sizesResponse
//	@Security		BasicAuth
//	@Router			/admin/categories/{categoryID}/sizes [get]
func (app *application) categorySizesHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	id, err := parseIDParam(r, "categoryID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	d := app.catalog.Hierarchy(ctx).SizeDomainOf(id)
	app.jsonResponse(w, http.StatusOK, sizesResponse{
		Domain:      d,
		Sizes:       d.Sizes(),
		DefaultSize: d.DefaultSize(),
		Colors:      catalog.Palette(),
	})
}

// createCategoryHandler godoc
//
//	@Summary		Create category
//	@Tags			admin-categories
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			name		formData	string	true	"Name"
//	@Param			slug		formData	string	false	"Slug, generated from the name when empty"
//	@Param			parent_id	formData	int		false	"Parent category"
//	@Param			image		formData	file	false	"Image (jpeg, png, webp)"
//	@Success		201			{object}	products.Category
//	@Failure		400			{object}	error
//	@Failure		409			{object}	error
//	@Security		BasicAuth
//	@Router			/admin/categories [post]
func (app *application) createCategoryHandler(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		app.badRequestResponse(w, r, fmt.Errorf("failed to parse form: %w", err))
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	name := strings.TrimSpace(r.FormValue("name"))
	slug := strings.ToLower(strings.TrimSpace(r.FormValue("slug")))
	if name == "" {
		app.badRequestResponse(w, r, fmt.Errorf("category name is required"))
		return
	}
	if slug == "" {
		slug = generateSlug(name)
	}
	if !isValidSlug(slug) {
		app.badRequestResponse(w, r, fmt.Errorf("invalid slug format"))
		return
	}

	var parentID *int64
	if raw := strings.TrimSpace(r.FormValue("parent_id")); raw != "" {
		pid, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || pid <= 0 {
			app.badRequestResponse(w, r, fmt.Errorf("invalid parent_id: %s", raw))
			return
		}
		parentID = &pid
	}

	ctx, cancel := context.WithTimeout(r.Context(), 20*time.Second)
	defer cancel()

	// --- image upload (optional) ---
	var imageURL *string
	if file, _, err := r.FormFile("image"); err == nil {
		defer file.Close()

		if _, err := media.SniffImage(file); err != nil {
			app.badRequestResponse(w, r, err)
			return
		}
		url, err := app.media.Upload(ctx, file, media.FolderCategories)
		if err != nil {
			app.internalServerError(w, r, fmt.Errorf("upload image: %w", err))
			return
		}
		imageURL = &url
	}

	created, err := app.store.Products.CreateCategory(ctx, &products.Category{
		Name:     name,
		Slug:     slug,
		ParentID: parentID,
		ImageURL: imageURL,
	})
	if err != nil {
		if imageURL != nil {
			app.deleteImagesAsync([]string{*imageURL})
		}
		app.categoryError(w, r, err)
		return
	}
	app.catalog.Invalidate(ctx)

	w.Header().Set("Location", fmt.Sprintf("/v1/admin/categories/%d", created.ID))
	app.jsonResponse(w, http.StatusCreated, created)
}

type updateCategoryPayload struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=100"`
	Slug        *string `json:"slug" validate:"omitempty,slug"`
	ParentID    *int64  `json:"parent_id" validate:"omitempty,gt=0"`
	ClearParent bool    `json:"clear_parent"`
	ImageURL    *string `json:"image_url" validate:"omitempty,url"`
	ClearImage  bool    `json:"clear_image"`
}

// updateCategoryHandler godoc
//
//	@Summary		Update category
//	@Description	Partial update. Moving a category under one of its descendants is rejected.
//	@Tags			admin-categories
//	@Accept			json
//	@Produce		json
//	@Param			categoryID	path		int						true	"Category ID"
//	@Param			payload		body		updateCategoryPayload	true	"Changes"
//	@Success		200			{object}	products.Category
//	@Failure		400			{object}	error
//	@Failure		404			{object}	error
//	@Failure		409			{object}	error
//	@Security		BasicAuth
//	@Router			/admin/categories/{categoryID} [patch]
func (app *application) updateCategoryHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	id, err := parseIDParam(r, "categoryID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	var payload updateCategoryPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if payload.Slug != nil {
		s := strings.ToLower(strings.TrimSpace(*payload.Slug))
		payload.Slug = &s
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	existing, err := app.store.Products.GetCategoryByID(ctx, id)
	if err != nil {
		app.categoryError(w, r, err)
		return
	}
	oldImage := existing.ImageURL

	updated := *existing
	if payload.Name != nil {
		updated.Name = strings.TrimSpace(*payload.Name)
	}
	if payload.Slug != nil {
		updated.Slug = *payload.Slug
	}
	switch {
	case payload.ClearParent:
		updated.ParentID = nil
	case payload.ParentID != nil:
		if *payload.ParentID == id {
			app.badRequestResponse(w, r, products.ErrCircularDependency)
			return
		}
		updated.ParentID = payload.ParentID
	}
	switch {
	case payload.ClearImage:
		updated.ImageURL = nil
	case payload.ImageURL != nil:
		updated.ImageURL = payload.ImageURL
	}

	saved, err := app.store.Products.UpdateCategory(ctx, &updated)
	if err != nil {
		app.categoryError(w, r, err)
		return
	}
	app.catalog.Invalidate(ctx)

	if oldImage != nil && (saved.ImageURL == nil || *saved.ImageURL != *oldImage) {
		app.releaseImagesAsync([]string{*oldImage})
	}

	app.jsonResponse(w, http.StatusOK, saved)
}

// deleteCategoryHandler godoc
//
//	@Summary		Delete category
//	@Description	Refused with 409 while subcategories or products reference it
//	@Tags			admin-categories
//	@Param			categoryID	path	int	true	"Category ID"
//	@Success		204
//	@Failure		404	{object}	error
//	@Failure		409	{object}	error
//	@Security		BasicAuth
//	@Router			/admin/categories/{categoryID} [delete]
func (app *application) deleteCategoryHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	id, err := parseIDParam(r, "categoryID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	existing, err := app.store.Products.GetCategoryByID(ctx, id)
	if err != nil {
		app.categoryError(w, r, err)
		return
	}

	if err := app.store.Products.DeleteCategory(ctx, id); err != nil {
		app.categoryError(w, r, err)
		return
	}
	app.catalog.Invalidate(ctx)

	if existing.ImageURL != nil {
		app.releaseImagesAsync([]string{*existing.ImageURL})
	}
	w.WriteHeader(http.StatusNoContent)
}
