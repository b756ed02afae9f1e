// file: internals/helpers/storage/image.go
package storage

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	stddraw "image/draw"
	_ "image/jpeg"
	"image/png"
	"os"
	"strconv"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	xdraw "golang.org/x/image/draw"
)

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return def
}

func envFloat(key string, def float32) float32 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 32); err == nil && f > 0 {
			return float32(f)
		}
	}
	return def
}

/* =======================================================================
   Visitor photo → WebP (ENV-driven bounds)
======================================================================= */

// EncodePhotoWebP decodes a camera capture (jpeg/png), fits it inside the
// configured bounds and re-encodes as lossy WebP.
func EncodePhotoWebP(data []byte) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode photo: %w", err)
	}

	maxW := envInt("IMAGE_WEBP_MAX_W", 1600)
	maxH := envInt("IMAGE_WEBP_MAX_H", 1600)
	quality := envFloat("IMAGE_WEBP_QUALITY", 80)

	fitted := imaging.Fit(img, maxW, maxH, imaging.Lanczos)

	var buf bytes.Buffer
	if err := webp.Encode(&buf, fitted, &webp.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("encode webp: %w", err)
	}
	return buf.Bytes(), nil
}

/* =======================================================================
   Signature → flattened PNG
======================================================================= */

// EncodeSignaturePNG flattens a signature capture onto a white background
// (the pad exports transparent PNGs) and downscales when wider than maxW.
func EncodeSignaturePNG(data []byte) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode signature: %w", err)
	}

	b := img.Bounds()
	flat := image.NewRGBA(b)
	stddraw.Draw(flat, b, image.NewUniform(color.White), image.Point{}, stddraw.Src)
	stddraw.Draw(flat, b, img, b.Min, stddraw.Over)

	maxW := envInt("IMAGE_SIGNATURE_MAX_W", 800)
	var out image.Image = flat
	if w := b.Dx(); w > maxW {
		h := b.Dy() * maxW / w
		scaled := image.NewRGBA(image.Rect(0, 0, maxW, h))
		xdraw.CatmullRom.Scale(scaled, scaled.Bounds(), flat, b, xdraw.Over, nil)
		out = scaled
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, out); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}
