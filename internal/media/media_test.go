package media

import (
	"bytes"
	"image"
	"image/png"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractPublicID(t *testing.T) {
	cases := map[string]string{
		"https://res.cloudinary.com/demo/image/upload/v1740815725/products/ay2av1mwuakrobwzv0vl.png": "products/ay2av1mwuakrobwzv0vl",
		"https://res.cloudinary.com/demo/image/upload/v1/categories/men.webp":                        "categories/men",
		"https://res.cloudinary.com/demo/image/upload/products/no-version.jpg":                       "products/no-version",
		"https://res.cloudinary.com/demo/image/upload/v12/flat":                                      "flat",
	}
	for in, want := range cases {
		got, err := ExtractPublicID(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ExtractPublicID("https://example.com/images/a.png")
	assert.ErrorIs(t, err, ErrNotHosted)
	_, err = ExtractPublicID("https://res.cloudinary.com/demo/image/upload/v12")
	assert.ErrorIs(t, err, ErrNotHosted)
	_, err = ExtractPublicID("://bad")
	assert.Error(t, err)
}

func TestCleanFolder(t *testing.T) {
	assert.Equal(t, FolderProducts, CleanFolder(""))
	assert.Equal(t, "categories", CleanFolder(" /Categories/ "))
	assert.Equal(t, "content/hero", CleanFolder("content//hero"))
	assert.Equal(t, FolderProducts, CleanFolder("../etc"))
}

func TestSniffImage(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 2, 2))))
	r := bytes.NewReader(buf.Bytes())

	mime, err := SniffImage(r)
	require.NoError(t, err)
	assert.Equal(t, "image/png", mime)

	// reader rewound
	rest, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, buf.Len(), len(rest))

	mime, err = SniffImage(bytes.NewReader([]byte("plain text, not an image")))
	assert.ErrorIs(t, err, ErrUnsupportedType)
	assert.Contains(t, mime, "text/plain")
}

func TestNewPublicIDIsUnique(t *testing.T) {
	assert.NotEqual(t, NewPublicID(), NewPublicID())
	assert.Len(t, NewPublicID(), 36)
}
