package storage

import (
	"bufio"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/disintegration/imaging"

	errs "imgdataset/pkg/errors"
	"imgdataset/pkg/logger"
)

const (
	imageExt       = ".jpg"
	destinationExt = ".txt"
)

// Manager owns the files under the data directory: stored JPEG images and
// per-label destination logs
type Manager struct {
	dataDir string
	quality int
	logger  logger.Logger
	mu      sync.Mutex
}

// NewManager creates a storage manager rooted at dataDir. The directory is
// created lazily on first write.
func NewManager(dataDir string, quality int, log logger.Logger) *Manager {
	if log == nil {
		log = logger.GetLogger()
	}
	if quality <= 0 || quality > 100 {
		quality = 95
	}
	return &Manager{
		dataDir: dataDir,
		quality: quality,
		logger:  log,
	}
}

// DataDir returns the persistence root
func (m *Manager) DataDir() string {
	return m.dataDir
}

// EnsureDir creates the data directory if it doesn't exist
func (m *Manager) EnsureDir() error {
	if err := os.MkdirAll(m.dataDir, 0755); err != nil {
		return errs.Write(m.dataDir, fmt.Errorf("failed to create data directory: %w", err))
	}
	return nil
}

// ImagePath returns <data-dir>/<id>.jpg
func (m *Manager) ImagePath(id string) string {
	return filepath.Join(m.dataDir, id+imageExt)
}

// DestinationPath returns <data-dir>/<label>.txt
func (m *Manager) DestinationPath(label string) string {
	return filepath.Join(m.dataDir, label+destinationExt)
}

// SaveImage encodes img as JPEG at <data-dir>/<id>.jpg. The image is written
// to a temporary file first and renamed into place, so the destination
// either holds the complete new image or is untouched.
func (m *Manager) SaveImage(img image.Image, id string) (string, error) {
	if err := m.EnsureDir(); err != nil {
		return "", err
	}

	filename := m.ImagePath(id)

	tempFile, err := os.CreateTemp(m.dataDir, "."+id+".*.tmp")
	if err != nil {
		return "", errs.Write(filename, fmt.Errorf("failed to create temporary file: %w", err))
	}
	tempName := tempFile.Name()

	err = imaging.Encode(tempFile, img, imaging.JPEG, imaging.JPEGQuality(m.quality))
	closeErr := tempFile.Close()

	if err != nil {
		os.Remove(tempName)
		return "", errs.Write(filename, fmt.Errorf("failed to encode image: %w", err))
	}

	if closeErr != nil {
		os.Remove(tempName)
		return "", errs.Write(filename, fmt.Errorf("failed to close file: %w", closeErr))
	}

	if err := os.Rename(tempName, filename); err != nil {
		os.Remove(tempName)
		return "", errs.Write(filename, fmt.Errorf("failed to rename temporary file: %w", err))
	}

	m.logger.DebugWithFields("image saved", map[string]interface{}{
		"id":   id,
		"path": filename,
	})

	return filename, nil
}

// LoadImage opens and decodes an image file
func (m *Manager) LoadImage(path string) (image.Image, error) {
	return LoadImage(path)
}

// LoadImage opens and decodes the image at path. A missing file is a
// not_found error; anything that fails to decode is a decode error.
func LoadImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errs.NotFound(path, err)
		}
		return nil, errs.New(errs.ErrorTypeNotFound, path, "failed to open file", err)
	}
	defer f.Close()

	img, err := imaging.Decode(f, imaging.AutoOrientation(true))
	if err != nil {
		return nil, errs.Decode(path, err)
	}
	return img, nil
}

// IsStored checks if an image with the given id exists on disk
func (m *Manager) IsStored(id string) bool {
	info, err := os.Stat(m.ImagePath(id))
	return err == nil && !info.IsDir()
}

// StoredIDs lists the ids of every .jpg under the data directory
func (m *Manager) StoredIDs() ([]string, error) {
	entries, err := os.ReadDir(m.dataDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}

	var ids []string
	for _, entry := range entries {
		if !entry.IsDir() && filepath.Ext(entry.Name()) == imageExt {
			ids = append(ids, strings.TrimSuffix(entry.Name(), imageExt))
		}
	}
	return ids, nil
}

// StoredCount returns the number of images under the data directory
func (m *Manager) StoredCount() int {
	ids, err := m.StoredIDs()
	if err != nil {
		return 0
	}
	return len(ids)
}

// AppendDestinations appends one path per line to <data-dir>/<label>.txt.
// The file is only ever appended to.
func (m *Manager) AppendDestinations(label string, paths []string) (string, error) {
	if err := m.EnsureDir(); err != nil {
		return "", err
	}

	filename := m.DestinationPath(label)

	m.mu.Lock()
	defer m.mu.Unlock()

	f, err := os.OpenFile(filename, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return "", errs.Write(filename, err)
	}

	w := bufio.NewWriter(f)
	for _, p := range paths {
		if _, err := w.WriteString(p + "\n"); err != nil {
			f.Close()
			return "", errs.Write(filename, err)
		}
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return "", errs.Write(filename, err)
	}
	if err := f.Close(); err != nil {
		return "", errs.Write(filename, err)
	}

	return filename, nil
}

// DestinationCount returns the number of lines in <data-dir>/<label>.txt,
// zero when the log doesn't exist yet
func (m *Manager) DestinationCount(label string) (int, error) {
	f, err := os.Open(m.DestinationPath(label))
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}
	defer f.Close()

	count := 0
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if scanner.Text() != "" {
			count++
		}
	}
	return count, scanner.Err()
}
