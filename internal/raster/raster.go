// Package raster converts the first page of a PDF document into a PNG image
// suitable for vision-model extraction.
package raster

import (
	"bytes"
	"errors"
	"fmt"
	"image/png"

	"github.com/gen2brain/go-fitz"
)

// ErrEmptyDocument is returned when the PDF contains no pages.
var ErrEmptyDocument = errors.New("document has no pages")

// ErrRasterization wraps any MuPDF decode or render failure.
var ErrRasterization = errors.New("rasterization failure")

// renderDPI is 4x the native PDF resolution of 72 DPI. Cheques are small
// documents and the extraction model needs the MICR line legible.
const renderDPI = 288

// Render converts the first page of the given PDF bytes into a PNG byte
// string. The output is opaque (no alpha channel). Deterministic for a given
// input; no side effects.
func Render(pdf []byte) ([]byte, error) {
	doc, err := fitz.NewFromMemory(pdf)
	if err != nil {
		return nil, fmt.Errorf("%w: opening document: %v", ErrRasterization, err)
	}
	defer doc.Close()

	if doc.NumPage() == 0 {
		return nil, ErrEmptyDocument
	}

	img, err := doc.ImageDPI(0, renderDPI)
	if err != nil {
		return nil, fmt.Errorf("%w: rendering page 1: %v", ErrRasterization, err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("%w: encoding PNG: %v", ErrRasterization, err)
	}
	return buf.Bytes(), nil
}
