package catalog

import (
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// readTable reads a CSV or TSV file and returns its header row and data rows.
// The delimiter is chosen by file extension.
func readTable(path string) ([]string, [][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	if strings.EqualFold(filepath.Ext(path), ".tsv") {
		r.Comma = '\t'
	}
	r.FieldsPerRecord = -1 // sources are hand-edited, tolerate ragged rows

	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, err
	}
	if len(records) == 0 {
		return nil, nil, errors.New("empty table")
	}
	return records[0], records[1:], nil
}
