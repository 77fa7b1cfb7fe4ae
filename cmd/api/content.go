package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"atelier/internal/domain/content"

	"github.com/go-chi/chi/v5"
)

// homeHandler godoc
//
//	@Summary		Homepage content
//	@Description	Active content blocks grouped by section, plus the section order
//	@Tags			storefront
//	@Produce		json
//	@Success		200	{object}	content.Home
//	@Router			/home [get]
func (app *application) homeHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	blocks, err := app.store.Content.List(ctx, "")
	if err != nil {
		app.logger.Errorw("home: list content", "error", err)
		blocks = nil
	}
	order, err := app.store.Content.SectionOrder(ctx)
	if err != nil {
		app.logger.Errorw("home: section order", "error", err)
		order = append([]string(nil), content.DefaultSectionOrder...)
	}

	app.jsonResponse(w, http.StatusOK, content.BuildHome(blocks, order))
}

// listContentHandler godoc
//
//	@Summary		List content blocks
//	@Tags			admin-content
//	@Produce		json
//	@Param			section	query		string	false	"Only this section"
//	@Success		200		{object}	[]content.Block
//	@Security		BasicAuth
//	@Router			/admin/content [get]
func (app *application) listContentHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	blocks, err := app.store.Content.List(ctx, r.URL.Query().Get("section"))
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}
	app.jsonResponse(w, http.StatusOK, blocks)
}

// upsertContentHandler godoc
//
//	@Summary		Create or update a content block
//	@Tags			admin-content
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		content.UpsertBlockRequest	true	"Block"
//	@Success		200		{object}	content.Block
//	@Failure		400		{object}	error
//	@Security		BasicAuth
//	@Router			/admin/content [put]
func (app *application) upsertContentHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var req content.UpsertBlockRequest
	if err := readJSON(w, r, &req); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	req.Section = strings.ToLower(strings.TrimSpace(req.Section))
	req.Key = strings.TrimSpace(req.Key)
	if err := Validate.Struct(req); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if req.Section == content.ConfigSection && req.Key == content.SectionOrderKey {
		app.badRequestResponse(w, r, fmt.Errorf("use /admin/content/section-order to change the section order"))
		return
	}

	block, err := app.store.Content.Upsert(ctx, req)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}
	app.jsonResponse(w, http.StatusOK, block)
}

// deleteContentHandler godoc
//
//	@Summary		Delete a content block
//	@Tags			admin-content
//	@Param			section	path	string	true	"Section"
//	@Param			key		path	string	true	"Key"
//	@Success		204
//	@Failure		404	{object}	error
//	@Security		BasicAuth
//	@Router			/admin/content/{section}/{key} [delete]
func (app *application) deleteContentHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	section := chi.URLParam(r, "section")
	key := chi.URLParam(r, "key")

	if err := app.store.Content.Delete(ctx, section, key); err != nil {
		if errors.Is(err, content.ErrNotFound) {
			app.notFoundResponse(w, r, err)
			return
		}
		app.internalServerError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type sectionOrderPayload struct {
	Order []string `json:"order" validate:"required,min=1,max=20"`
}

// getSectionOrderHandler godoc
//
//	@Summary		Homepage section order
//	@Tags			admin-content
//	@Produce		json
//	@Success		200	{object}	sectionOrderPayload
//	@Security		BasicAuth
//	@Router			/admin/content/section-order [get]
func (app *application) getSectionOrderHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	order, err := app.store.Content.SectionOrder(ctx)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}
	app.jsonResponse(w, http.StatusOK, sectionOrderPayload{Order: order})
}

// setSectionOrderHandler godoc
//
//	@Summary		Set homepage section order
//	@Tags			admin-content
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		sectionOrderPayload	true	"Ordered section ids"
//	@Success		200		{object}	sectionOrderPayload
//	@Failure		400		{object}	error
//	@Security		BasicAuth
//	@Router			/admin/content/section-order [put]
func (app *application) setSectionOrderHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var payload sectionOrderPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	order, err := app.store.Content.SetSectionOrder(ctx, payload.Order)
	if err != nil {
		if errors.Is(err, content.ErrInvalidSectionOrder) {
			app.badRequestResponse(w, r, err)
			return
		}
		app.internalServerError(w, r, err)
		return
	}
	app.jsonResponse(w, http.StatusOK, sectionOrderPayload{Order: order})
}
