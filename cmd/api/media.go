package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"atelier/internal/media"
)

// uploadMediaHandler godoc
//
//	@Summary		Upload an image
//	@Description	Stores an image on the media host and returns its URL for use in product or content forms
//	@Tags			admin-media
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			file	formData	file	true	"Image (jpeg, png, webp)"
//	@Param			folder	formData	string	false	"products | categories | content"
//	@Success		201		{object}	map[string]string
//	@Failure		400		{object}	error
//	@Security		BasicAuth
//	@Router			/admin/media [post]
func (app *application) uploadMediaHandler(w http.ResponseWriter, r *http.Request) {
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

	file, _, err := r.FormFile("file")
	if err != nil {
		app.badRequestResponse(w, r, fmt.Errorf("file is required"))
		return
	}
	defer file.Close()

	if _, err := media.SniffImage(file); err != nil {
		if errors.Is(err, media.ErrUnsupportedType) {
			app.badRequestResponse(w, r, err)
			return
		}
		app.internalServerError(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	url, err := app.media.Upload(ctx, file, media.CleanFolder(r.FormValue("folder")))
	if err != nil {
		app.internalServerError(w, r, fmt.Errorf("upload image: %w", err))
		return
	}

	app.jsonResponse(w, http.StatusCreated, map[string]string{"url": url})
}
