package viewer

import (
	"fmt"
	"image"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"

	"imgdataset/pkg/dictionary"
	errs "imgdataset/pkg/errors"
	"imgdataset/pkg/logger"
)

// DictionaryLoader reads a dictionary file
type DictionaryLoader interface {
	LoadFile(path string) (*dictionary.Dictionary, error)
}

// ImageLoader locates and decodes stored images
type ImageLoader interface {
	ImagePath(id string) string
	LoadImage(path string) (image.Image, error)
}

// ImageFetcher fetches images over the network
type ImageFetcher interface {
	Fetch(url string) (image.Image, error)
}

// Viewer loads stored or remote images and renders them as a grid
type Viewer struct {
	dicts   DictionaryLoader
	images  ImageLoader
	fetcher ImageFetcher
	cell    int
	logger  logger.Logger
}

// New creates a viewer rendering cell×cell pixel tiles
func New(dicts DictionaryLoader, images ImageLoader, fetcher ImageFetcher, cell int, log logger.Logger) *Viewer {
	if log == nil {
		log = logger.GetLogger()
	}
	if cell <= 0 {
		cell = 200
	}
	return &Viewer{
		dicts:   dicts,
		images:  images,
		fetcher: fetcher,
		cell:    cell,
		logger:  log,
	}
}

// LoadImage opens and decodes path, logging failures
func (v *Viewer) LoadImage(path string) (image.Image, error) {
	img, err := v.images.LoadImage(path)
	if err != nil {
		v.logger.WithError(err).WithField("path", path).Warn("failed to load image")
		return nil, err
	}
	return img, nil
}

// LoadFromDictionaryFile loads <data-dir>/<id>.jpg for every id of the
// dictionary at path, in stored order. Images that fail to load are
// skipped.
func (v *Viewer) LoadFromDictionaryFile(path string) ([]image.Image, error) {
	dict, err := v.dicts.LoadFile(path)
	if err != nil {
		return nil, err
	}
	return v.LoadNames(dict.Keys()), nil
}

// LoadNames loads stored images by id, skipping failures
func (v *Viewer) LoadNames(ids []string) []image.Image {
	paths := make([]string, len(ids))
	for i, id := range ids {
		paths[i] = v.images.ImagePath(id)
	}
	return v.LoadFiles(paths)
}

// LoadFiles loads image files, skipping failures
func (v *Viewer) LoadFiles(paths []string) []image.Image {
	var images []image.Image
	for _, p := range paths {
		if img, err := v.LoadImage(p); err == nil {
			images = append(images, img)
		}
	}
	return images
}

// FetchURLs fetches images, skipping failures
func (v *Viewer) FetchURLs(urls []string) []image.Image {
	var images []image.Image
	for _, u := range urls {
		if img, err := v.fetcher.Fetch(u); err == nil {
			images = append(images, img)
		}
	}
	return images
}

// Render lays images out in a grid. A zero shape uses the default.
func (v *Viewer) Render(images []image.Image, shape Shape) *image.NRGBA {
	return RenderGrid(images, GridShape(len(images), shape), v.cell)
}

// SaveGrid renders images and writes the composite to path. The format
// follows the file extension.
func (v *Viewer) SaveGrid(path string, images []image.Image, shape Shape) error {
	if len(images) == 0 {
		return fmt.Errorf("no images to show")
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return errs.Write(path, err)
		}
	}

	grid := v.Render(images, shape)
	if err := imaging.Save(grid, path, imaging.JPEGQuality(90)); err != nil {
		return errs.Write(path, err)
	}

	v.logger.InfoWithFields("grid saved", map[string]interface{}{
		"path":   path,
		"images": len(images),
		"width":  grid.Bounds().Dx(),
		"height": grid.Bounds().Dy(),
	})
	return nil
}

// ShowURLs fetches urls and saves them as a grid at path
func (v *Viewer) ShowURLs(urls []string, shape Shape, path string) error {
	return v.SaveGrid(path, v.FetchURLs(urls), shape)
}
