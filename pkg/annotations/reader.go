package annotations

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	errs "imgdataset/pkg/errors"
)

// ReadCSV parses an annotation table. Label is left empty since the table
// only carries indices.
func ReadCSV(path string) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errs.NotFound(path, err)
		}
		return nil, fmt.Errorf("failed to open annotations: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.TrimLeadingSpace = true
	r.FieldsPerRecord = -1

	var rows []Row
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, errs.New(errs.ErrorTypeMalformed, path, "failed to parse annotations", err)
		}
		if len(record) < 2 {
			line, _ := r.FieldPos(0)
			return nil, errs.New(errs.ErrorTypeMalformed, path, fmt.Sprintf("line %d: expected filename and label index", line), nil)
		}

		index, err := strconv.Atoi(strings.TrimSpace(record[1]))
		if err != nil {
			line, _ := r.FieldPos(1)
			return nil, errs.New(errs.ErrorTypeMalformed, path, fmt.Sprintf("line %d: invalid label index", line), err)
		}

		rows = append(rows, Row{
			Filename:   strings.TrimSpace(record[0]),
			LabelIndex: index,
		})
	}

	return rows, nil
}

// ApplyLabels fills Label from a label map
func ApplyLabels(rows []Row, labelMap LabelMap) {
	for i := range rows {
		rows[i].Label = labelMap[strconv.Itoa(rows[i].LabelIndex)]
	}
}
