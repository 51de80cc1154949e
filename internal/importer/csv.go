// Package importer reads customer or facility point sets from tabular files.
// A file must carry a header row with X and Y columns; every data row becomes
// one point. Parsing is all-or-nothing so a bad file never partially lands.
package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/banshee-data/facility.report/internal/geom"
)

// ErrMissingColumns is returned when the header row lacks an X or Y column.
var ErrMissingColumns = errors.New("importer: file must contain 'X' and 'Y' columns")

// Points parses a CSV stream into an ordered point sequence. The header is
// matched case-insensitively and extra columns are ignored. Any unreadable
// row fails the whole import.
func Points(r io.Reader) ([]geom.Point, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	// Rows may carry extra columns beyond X and Y.
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, ErrMissingColumns
	}
	if err != nil {
		return nil, fmt.Errorf("importer: failed to read header: %w", err)
	}

	xCol, yCol := -1, -1
	for i, name := range header {
		switch strings.ToUpper(strings.TrimSpace(name)) {
		case "X":
			if xCol == -1 {
				xCol = i
			}
		case "Y":
			if yCol == -1 {
				yCol = i
			}
		}
	}
	if xCol == -1 || yCol == -1 {
		return nil, ErrMissingColumns
	}

	var points []geom.Point
	for line := 2; ; line++ {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("importer: row %d: %w", line, err)
		}
		if len(record) <= xCol || len(record) <= yCol {
			return nil, fmt.Errorf("importer: row %d: missing coordinate fields", line)
		}

		x, err := strconv.ParseFloat(strings.TrimSpace(record[xCol]), 64)
		if err != nil {
			return nil, fmt.Errorf("importer: row %d: invalid X value %q", line, record[xCol])
		}
		y, err := strconv.ParseFloat(strings.TrimSpace(record[yCol]), 64)
		if err != nil {
			return nil, fmt.Errorf("importer: row %d: invalid Y value %q", line, record[yCol])
		}

		p := geom.Point{X: x, Y: y}
		if !p.IsFinite() {
			return nil, fmt.Errorf("importer: row %d: non-finite coordinates", line)
		}
		points = append(points, p)
	}

	if len(points) == 0 {
		return nil, errors.New("importer: file contains no data rows")
	}
	return points, nil
}
