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
	"atelier/internal/inquiry"

	"github.com/go-chi/chi/v5"
)

type inquiryResponse struct {
	URL     string `json:"url"`
	Ref     string `json:"ref"`
	Message string `json:"message"`
}

// inquiryItem loads the product and checks the chosen size and colour
// against its variants. It writes the error response itself.
func (app *application) inquiryItem(ctx context.Context, w http.ResponseWriter, r *http.Request) (inquiry.Item, bool) {
	slug := strings.ToLower(strings.TrimSpace(chi.URLParam(r, "slug")))
	d, err := app.store.Products.GetProductDetailBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, products.ErrProductNotFound) {
			app.notFoundResponse(w, r, err)
			return inquiry.Item{}, false
		}
		app.internalServerError(w, r, err)
		return inquiry.Item{}, false
	}

	q := r.URL.Query()
	size := strings.TrimSpace(q.Get("size"))
	color := strings.TrimSpace(q.Get("color"))
	if color != "" {
		color = catalog.NormalizeColor(color)
	}

	if size != "" || color != "" {
		found := false
		for _, v := range d.Variants {
			if (size == "" || strings.EqualFold(v.Size, size)) && (color == "" || strings.EqualFold(v.Color, color)) {
				found = true
				break
			}
		}
		if !found {
			app.badRequestResponse(w, r, fmt.Errorf("size %q / colour %q is not offered for this product", size, color))
			return inquiry.Item{}, false
		}
	}

	return inquiry.Item{
		ID:    d.Product.ID,
		Name:  d.Product.Name,
		Slug:  d.Product.Slug,
		Price: d.Product.Price,
		Size:  size,
		Color: color,
	}, true
}

func (app *application) inquiryLinkError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, inquiry.ErrNoPhone) {
		app.serviceUnavailableResponse(w, r, err)
		return
	}
	app.internalServerError(w, r, err)
}

// inquiryLinkHandler godoc
//
//	@Summary		WhatsApp inquiry link
//	@Description	Deep link that opens a chat with a prefilled message about the product
//	@Tags			storefront
//	@Produce		json
//	@Param			slug	path		string	true	"Product slug"
//	@Param			size	query		string	false	"Chosen size"
//	@Param			color	query		string	false	"Chosen colour (hex or name)"
//	@Success		200		{object}	inquiryResponse
//	@Failure		400		{object}	error
//	@Failure		404		{object}	error
//	@Failure		429		{object}	error
//	@Failure		503		{object}	error
//	@Router			/products/{slug}/inquiry [get]
func (app *application) inquiryLinkHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	item, ok := app.inquiryItem(ctx, w, r)
	if !ok {
		return
	}

	link, err := app.inquiry.Link(ctx, item)
	if err != nil {
		app.inquiryLinkError(w, r, err)
		return
	}
	msg, err := app.inquiry.Message(item)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}
	ref, err := app.inquiry.Ref(item.ID)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusOK, inquiryResponse{URL: link, Ref: ref, Message: msg})
}

// inquiryQRHandler godoc
//
//	@Summary		WhatsApp inquiry QR code
//	@Description	PNG QR code encoding the inquiry link
//	@Tags			storefront
//	@Produce		png
//	@Param			slug	path	string	true	"Product slug"
//	@Param			size	query	string	false	"Chosen size"
//	@Param			color	query	string	false	"Chosen colour (hex or name)"
//	@Success		200
//	@Failure		404	{object}	error
//	@Failure		503	{object}	error
//	@Router			/products/{slug}/inquiry/qr [get]
func (app *application) inquiryQRHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	item, ok := app.inquiryItem(ctx, w, r)
	if !ok {
		return
	}

	link, err := app.inquiry.Link(ctx, item)
	if err != nil {
		app.inquiryLinkError(w, r, err)
		return
	}
	png, err := app.inquiry.QR(link)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=300")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}
