package downloader

import (
	"fmt"
	"image"
	"strconv"
	"strings"

	"github.com/disintegration/imaging"
)

// Transform rewrites a decoded image before it is stored
type Transform func(image.Image) (image.Image, error)

// Identity returns the image unchanged
func Identity(img image.Image) (image.Image, error) {
	return img, nil
}

// Resize scales and center-crops to exactly width×height
func Resize(width, height int) Transform {
	return func(img image.Image) (image.Image, error) {
		if width <= 0 || height <= 0 {
			return nil, fmt.Errorf("invalid resize dimensions %dx%d", width, height)
		}
		return imaging.Fill(img, width, height, imaging.Center, imaging.Lanczos), nil
	}
}

// Grayscale drops colour information
func Grayscale() Transform {
	return func(img image.Image) (image.Image, error) {
		return imaging.Grayscale(img), nil
	}
}

// Chain applies transforms left to right, skipping nil entries
func Chain(transforms ...Transform) Transform {
	return func(img image.Image) (image.Image, error) {
		var err error
		for _, t := range transforms {
			if t == nil {
				continue
			}
			if img, err = t(img); err != nil {
				return nil, err
			}
		}
		return img, nil
	}
}

// ParseSize parses "WxH", e.g. "224x224"
func ParseSize(s string) (int, int, error) {
	parts := strings.SplitN(strings.ToLower(strings.TrimSpace(s)), "x", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid size %q, expected WxH", s)
	}
	w, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid width in %q: %w", s, err)
	}
	h, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid height in %q: %w", s, err)
	}
	if w <= 0 || h <= 0 {
		return 0, 0, fmt.Errorf("invalid size %q, dimensions must be positive", s)
	}
	return w, h, nil
}
