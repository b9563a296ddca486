package downloader

import (
	"fmt"
	"image"

	errs "imgdataset/pkg/errors"
	"imgdataset/pkg/logger"
	"imgdataset/pkg/storage"
)

// ImageFetcher fetches and decodes one image
type ImageFetcher interface {
	Fetch(url string) (image.Image, error)
}

// ImageStore writes images under the data directory
type ImageStore interface {
	EnsureDir() error
	SaveImage(img image.Image, id string) (string, error)
}

// Result is the outcome of persisting one URL. Path is non-empty only when
// the file on disk holds Image's bytes. Image may be set even when Err is,
// if the failure happened after decoding.
type Result struct {
	Name  string
	Image image.Image
	Path  string
	Err   error
}

// Persister fetches one image, transforms it and writes it as JPEG
type Persister struct {
	fetcher ImageFetcher
	store   ImageStore
	logger  logger.Logger
}

// NewPersister creates a persister
func NewPersister(fetcher ImageFetcher, store ImageStore, log logger.Logger) *Persister {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Persister{
		fetcher: fetcher,
		store:   store,
		logger:  log,
	}
}

// Persist stores the image at sourceURL as <data-dir>/<name>.jpg where name
// is explicitName or the URL's ixid. A nil transform is the identity.
func (p *Persister) Persist(sourceURL, explicitName string, transform Transform) Result {
	name, err := storage.ResolveName(explicitName, sourceURL)
	if err != nil {
		p.logger.WithError(err).WithField("url", sourceURL).Warn("cannot name image")
		return Result{Err: err}
	}

	result := Result{Name: name}

	if err := p.store.EnsureDir(); err != nil {
		result.Err = err
		return result
	}

	img, err := p.fetcher.Fetch(sourceURL)
	if err != nil {
		result.Err = err
		return result
	}
	result.Image = img

	if transform == nil {
		transform = Identity
	}
	transformed, err := transform(img)
	if err != nil {
		result.Err = fmt.Errorf("transform failed for %s: %w", name, err)
		p.logger.WithError(err).WithField("id", name).Warn("transform failed")
		return result
	}
	result.Image = transformed

	path, err := p.store.SaveImage(transformed, name)
	if err != nil {
		if !errs.Is(err, errs.ErrorTypeWrite) {
			err = errs.Write("", err)
		}
		result.Err = err
		p.logger.WithError(err).WithField("id", name).Error("failed to save image")
		return result
	}
	result.Path = path

	return result
}
