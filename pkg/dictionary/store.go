package dictionary

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	errs "imgdataset/pkg/errors"
	"imgdataset/pkg/logger"
)

// Store reads and merge-writes <data-dir>/<label>.json files
type Store struct {
	dataDir string
	logger  logger.Logger
}

// NewStore creates a dictionary store rooted at dataDir
func NewStore(dataDir string, log logger.Logger) *Store {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Store{
		dataDir: dataDir,
		logger:  log,
	}
}

// Path returns the dictionary file for label
func (s *Store) Path(label string) string {
	return filepath.Join(s.dataDir, label+".json")
}

// Save merges dict into the dictionary file for label and returns its path.
// Keys already on disk are kept; keys in dict win on conflict. An empty dict
// is a no-op and returns "".
//
// The read-merge-write runs under an exclusive lock on <label>.json.lock and
// the result is committed with a rename, so concurrent savers never lose
// keys and a crash never leaves a half-written file. A malformed existing
// file is reported and left untouched.
func (s *Store) Save(dict *Dictionary, label string) (string, error) {
	if dict.Len() == 0 {
		s.logger.WithField("label", label).Info("nothing to save")
		return "", nil
	}

	if err := os.MkdirAll(s.dataDir, 0755); err != nil {
		return "", errs.Write(s.dataDir, fmt.Errorf("failed to create data directory: %w", err))
	}

	path := s.Path(label)

	fileLock := flock.New(path + ".lock")
	if err := fileLock.Lock(); err != nil {
		return "", errs.Write(path, fmt.Errorf("failed to lock dictionary: %w", err))
	}
	defer fileLock.Unlock()

	merged := New()
	if _, err := os.Stat(path); err == nil {
		existing, err := s.LoadFile(path)
		if err != nil {
			return "", err
		}
		merged = existing
	}
	merged.Merge(dict)

	if err := writeFile(path, merged); err != nil {
		return "", err
	}

	s.logger.InfoWithFields("dictionary saved", map[string]interface{}{
		"label":   label,
		"path":    path,
		"records": merged.Len(),
	})

	return path, nil
}

// Load reads the dictionary file for label
func (s *Store) Load(label string) (*Dictionary, error) {
	return s.LoadFile(s.Path(label))
}

// LoadFile reads a dictionary file. A missing file is a not_found error, a
// file that is not a flat JSON object of strings is a malformed error.
func (s *Store) LoadFile(path string) (*Dictionary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			s.logger.WithField("path", path).Warn("file does not exist")
			return nil, errs.NotFound(path, err)
		}
		return nil, errs.New(errs.ErrorTypeNotFound, path, "failed to read file", err)
	}

	dict := New()
	if err := json.Unmarshal(data, dict); err != nil {
		s.logger.WithError(err).WithField("path", path).Error("failed to parse dictionary")
		return nil, errs.Malformed(path, err)
	}

	s.logger.DebugWithFields("dictionary loaded", map[string]interface{}{
		"path":    path,
		"records": dict.Len(),
	})

	return dict, nil
}

// writeFile writes dict next to path and renames it into place
func writeFile(path string, dict *Dictionary) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(dict); err != nil {
		return errs.Write(path, fmt.Errorf("failed to encode dictionary: %w", err))
	}
	data := buf.Bytes()

	tempPath := path + ".tmp"
	file, err := os.Create(tempPath)
	if err != nil {
		return errs.Write(path, fmt.Errorf("failed to create temporary file: %w", err))
	}

	if _, err := file.Write(data); err != nil {
		file.Close()
		os.Remove(tempPath)
		return errs.Write(path, err)
	}

	if err := file.Sync(); err != nil {
		file.Close()
		os.Remove(tempPath)
		return errs.Write(path, fmt.Errorf("failed to sync file: %w", err))
	}

	if err := file.Close(); err != nil {
		os.Remove(tempPath)
		return errs.Write(path, fmt.Errorf("failed to close file: %w", err))
	}

	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return errs.Write(path, fmt.Errorf("failed to replace dictionary: %w", err))
	}

	return nil
}
