package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"regexp"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/google/uuid"
)

// Folders used by the API.
const (
	FolderProducts   = "products"
	FolderCategories = "categories"
	FolderContent    = "content"
)

var (
	ErrUnsupportedType = errors.New("unsupported image type")
	ErrNotHosted       = errors.New("url is not a hosted asset")
)

var allowedTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

var versionSegment = regexp.MustCompile(`^v\d+$`)

// Uploader stores images on the media host.
type Uploader interface {
	Upload(ctx context.Context, file io.Reader, folder string) (string, error)
	Delete(ctx context.Context, assetURL string) error
}

type Cloudinary struct {
	cld *cloudinary.Cloudinary
}

// NewCloudinary builds an uploader from a CLOUDINARY_URL.
func NewCloudinary(cloudinaryURL string) (*Cloudinary, error) {
	cld, err := cloudinary.NewFromURL(cloudinaryURL)
	if err != nil {
		return nil, fmt.Errorf("cloudinary init: %w", err)
	}
	return &Cloudinary{cld: cld}, nil
}

func (c *Cloudinary) Upload(ctx context.Context, file io.Reader, folder string) (string, error) {
	resp, err := c.cld.Upload.Upload(ctx, file, uploader.UploadParams{
		Folder:    CleanFolder(folder),
		PublicID:  NewPublicID(),
		Overwrite: api.Bool(false),
	})
	if err != nil {
		return "", fmt.Errorf("cloudinary upload: %w", err)
	}
	if resp.Error.Message != "" {
		return "", fmt.Errorf("cloudinary upload: %s", resp.Error.Message)
	}
	return resp.SecureURL, nil
}

func (c *Cloudinary) Delete(ctx context.Context, assetURL string) error {
	publicID, err := ExtractPublicID(assetURL)
	if err != nil {
		return err
	}
	if _, err := c.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID}); err != nil {
		return fmt.Errorf("cloudinary destroy %s: %w", publicID, err)
	}
	return nil
}

// NewPublicID returns a random asset name.
func NewPublicID() string {
	return uuid.NewString()
}

// CleanFolder keeps lower-case path segments only; empty input maps to products.
func CleanFolder(folder string) string {
	folder = strings.ToLower(strings.Trim(strings.TrimSpace(folder), "/"))
	if folder == "" {
		return FolderProducts
	}
	cleaned := path.Clean(folder)
	if cleaned == "." || strings.HasPrefix(cleaned, "..") {
		return FolderProducts
	}
	return cleaned
}

// ExtractPublicID turns a delivery URL such as
// https://res.cloudinary.com/demo/image/upload/v1740815725/products/abc.png
// into "products/abc".
func ExtractPublicID(assetURL string) (string, error) {
	u, err := url.Parse(assetURL)
	if err != nil {
		return "", fmt.Errorf("invalid URL format: %w", err)
	}

	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	for i, part := range parts {
		if part != "upload" || i+1 >= len(parts) {
			continue
		}
		rest := parts[i+1:]
		if versionSegment.MatchString(rest[0]) {
			rest = rest[1:]
		}
		if len(rest) == 0 {
			break
		}
		id := strings.Join(rest, "/")
		return strings.TrimSuffix(id, path.Ext(id)), nil
	}
	return "", fmt.Errorf("%w: %s", ErrNotHosted, assetURL)
}

// SniffImage reads the first 512 bytes, checks the type against the allowed
// image types and rewinds the reader.
func SniffImage(r io.ReadSeeker) (string, error) {
	buf := make([]byte, 512)
	n, err := r.Read(buf)
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("read: %w", err)
	}
	mime := http.DetectContentType(buf[:n])

	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("seek reset: %w", err)
	}
	if !allowedTypes[mime] {
		return mime, fmt.Errorf("%w: %s", ErrUnsupportedType, mime)
	}
	return mime, nil
}
