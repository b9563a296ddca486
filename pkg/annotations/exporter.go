package annotations

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"imgdataset/pkg/dictionary"
	errs "imgdataset/pkg/errors"
	"imgdataset/pkg/logger"
)

// LabelMap maps a stringified label index to its label
type LabelMap map[string]string

// Row is one annotation: an image file and the class it belongs to
type Row struct {
	Filename   string `json:"filename" parquet:"filename"`
	LabelIndex int    `json:"label_index" parquet:"label_index"`
	Label      string `json:"label,omitempty" parquet:"label"`
}

// DictionaryLoader reads the dictionary saved for a label
type DictionaryLoader interface {
	Load(label string) (*dictionary.Dictionary, error)
}

// Exporter turns per-label dictionaries into annotation tables
type Exporter struct {
	dicts  DictionaryLoader
	logger logger.Logger
}

// NewExporter creates an annotation exporter
func NewExporter(dicts DictionaryLoader, log logger.Logger) *Exporter {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Exporter{
		dicts:  dicts,
		logger: log,
	}
}

// Rows builds one row per id of every label's dictionary, labels in the
// given order and ids in stored order. Every dictionary must exist and parse.
func (e *Exporter) Rows(labels []string) ([]Row, LabelMap, error) {
	labelMap := make(LabelMap, len(labels))
	var rows []Row

	for index, label := range labels {
		dict, err := e.dicts.Load(label)
		if err != nil {
			return nil, nil, fmt.Errorf("annotation export aborted at label %q: %w", label, err)
		}
		for _, id := range dict.Keys() {
			rows = append(rows, Row{
				Filename:   id + ".jpg",
				LabelIndex: index,
				Label:      label,
			})
		}
		labelMap[strconv.Itoa(index)] = label
	}

	return rows, labelMap, nil
}

// Export writes "<id>.jpg, <index>,\n" for every id of every label into
// csvPath, replacing its content, and returns the label map. An empty label
// list does no I/O. A missing or malformed dictionary fails the whole call
// and returns no label map.
func (e *Exporter) Export(labels []string, csvPath string) (LabelMap, error) {
	if len(labels) == 0 {
		return LabelMap{}, nil
	}

	rows, labelMap, err := e.Rows(labels)
	if err != nil {
		e.logger.WithError(err).Error("annotation export failed")
		return nil, err
	}

	if err := WriteCSV(csvPath, rows); err != nil {
		return nil, err
	}

	e.logger.InfoWithFields("annotations exported", map[string]interface{}{
		"path":   csvPath,
		"rows":   len(rows),
		"labels": len(labels),
	})

	return labelMap, nil
}

// WriteCSV writes rows in the annotation line format, truncating path
func WriteCSV(path string, rows []Row) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
	if err != nil {
		return errs.Write(path, err)
	}

	w := bufio.NewWriter(f)
	for _, row := range rows {
		if _, err := fmt.Fprintf(w, "%s, %d,\n", row.Filename, row.LabelIndex); err != nil {
			f.Close()
			return errs.Write(path, err)
		}
	}

	if err := w.Flush(); err != nil {
		f.Close()
		return errs.Write(path, err)
	}
	if err := f.Close(); err != nil {
		return errs.Write(path, err)
	}
	return nil
}

// SaveLabelMap writes the label map as a JSON object
func SaveLabelMap(path string, labelMap LabelMap) error {
	data, err := json.MarshalIndent(labelMap, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode label map: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return errs.Write(path, err)
	}
	return nil
}
