package annotations

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/parquet-go/parquet-go"

	errs "imgdataset/pkg/errors"
)

// ExportParquet writes the same rows as Export, with label names, as a
// parquet file
func (e *Exporter) ExportParquet(labels []string, path string) (LabelMap, error) {
	if len(labels) == 0 {
		return LabelMap{}, nil
	}

	rows, labelMap, err := e.Rows(labels)
	if err != nil {
		e.logger.WithError(err).Error("annotation export failed")
		return nil, err
	}

	if err := WriteParquet(path, rows); err != nil {
		return nil, err
	}

	e.logger.InfoWithFields("annotations exported", map[string]interface{}{
		"path":   path,
		"rows":   len(rows),
		"labels": len(labels),
		"format": "parquet",
	})

	return labelMap, nil
}

// WriteParquet writes rows to path, truncating it
func WriteParquet(path string, rows []Row) error {
	f, err := os.Create(path)
	if err != nil {
		return errs.Write(path, err)
	}

	writer := parquet.NewGenericWriter[Row](f)
	if _, err := writer.Write(rows); err != nil {
		f.Close()
		return errs.Write(path, fmt.Errorf("failed to write rows: %w", err))
	}
	if err := writer.Close(); err != nil {
		f.Close()
		return errs.Write(path, fmt.Errorf("failed to finish parquet file: %w", err))
	}
	if err := f.Close(); err != nil {
		return errs.Write(path, err)
	}
	return nil
}

// ReadParquet reads back a file written by WriteParquet
func ReadParquet(path string) ([]Row, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errs.NotFound(path, err)
		}
		return nil, fmt.Errorf("failed to open parquet file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	pf, err := parquet.OpenFile(file, info.Size())
	if err != nil {
		return nil, errs.New(errs.ErrorTypeMalformed, path, "failed to open parquet", err)
	}

	reader := parquet.NewGenericReader[Row](pf)
	defer reader.Close()

	var rows []Row
	batch := make([]Row, 128)
	for {
		n, err := reader.Read(batch)
		rows = append(rows, batch[:n]...)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, errs.New(errs.ErrorTypeMalformed, path, "failed to read rows", err)
		}
	}

	return rows, nil
}
