package main

import (
	"bufio"
	"encoding/csv"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/sbinet/npyio"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/xgbpredictor/pkg/errors"
	"github.com/YuminosukeSato/xgbpredictor/xgboost/fvec"
)

const (
	formatLibSVM = "libsvm"
	formatCSV    = "csv"
	formatNPY    = "npy"
	formatText   = "text"
)

// dataset is the parsed input of a scoring command. Dense inputs keep the
// matrix so they can go through the batch path; libsvm rows are sparse.
type dataset struct {
	dense  *mat.Dense
	sparse []fvec.FVec
	// labels holds the libsvm labels, NaN where a line has none.
	labels []float64
}

func (d *dataset) Len() int {
	if d.dense != nil {
		r, _ := d.dense.Dims()
		return r
	}
	return len(d.sparse)
}

// inputFormat returns the explicit format or guesses it from the extension.
func inputFormat(path, format string) (string, error) {
	if format == "" {
		switch strings.ToLower(filepath.Ext(path)) {
		case ".npy":
			return formatNPY, nil
		case ".csv":
			return formatCSV, nil
		default:
			return formatLibSVM, nil
		}
	}
	switch format {
	case formatLibSVM, formatCSV, formatNPY:
		return format, nil
	}
	return "", errors.NewValidationError("input-format", "must be libsvm, csv or npy", format)
}

func readDataset(path, format string) (*dataset, error) {
	format, err := inputFormat(path, format)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open input %s", path)
	}
	defer f.Close()

	switch format {
	case formatNPY:
		m, err := readNPY(f)
		if err != nil {
			return nil, errors.Wrapf(err, "read npy %s", path)
		}
		return &dataset{dense: m}, nil
	case formatCSV:
		m, err := parseCSV(f)
		if err != nil {
			return nil, errors.Wrapf(err, "read csv %s", path)
		}
		return &dataset{dense: m}, nil
	default:
		rows, labels, err := parseLibSVM(f)
		if err != nil {
			return nil, errors.Wrapf(err, "read libsvm %s", path)
		}
		return &dataset{sparse: rows, labels: labels}, nil
	}
}

func readNPY(r io.Reader) (*mat.Dense, error) {
	nr, err := npyio.NewReader(r)
	if err != nil {
		return nil, err
	}
	m := &mat.Dense{}
	if err := nr.Read(m); err != nil {
		return nil, err
	}
	return m, nil
}

// parseLibSVM reads "label idx:val idx:val ..." lines. The label is
// optional; qid tokens and blank or '#' lines are skipped.
func parseLibSVM(r io.Reader) ([]fvec.FVec, []float64, error) {
	var (
		rows   []fvec.FVec
		labels []float64
	)
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		if i := strings.IndexByte(text, '#'); i >= 0 {
			text = text[:i]
		}
		row := fvec.Sparse{}
		label := math.NaN()
		for k, tok := range strings.Fields(text) {
			colon := strings.IndexByte(tok, ':')
			if colon < 0 {
				if k == 0 {
					v, err := strconv.ParseFloat(tok, 64)
					if err != nil {
						return nil, nil, errors.Newf("line %d: bad label %q", line, tok)
					}
					label = v
					continue
				}
				return nil, nil, errors.Newf("line %d: token %q is not idx:value", line, tok)
			}
			if tok[:colon] == "qid" {
				continue
			}
			idx, err := strconv.Atoi(tok[:colon])
			if err != nil || idx < 0 {
				return nil, nil, errors.Newf("line %d: bad feature index %q", line, tok[:colon])
			}
			v, err := strconv.ParseFloat(tok[colon+1:], 32)
			if err != nil {
				return nil, nil, errors.Newf("line %d: bad value %q", line, tok[colon+1:])
			}
			row[idx] = float32(v)
		}
		rows = append(rows, row)
		labels = append(labels, label)
	}
	if err := sc.Err(); err != nil {
		return nil, nil, err
	}
	return rows, labels, nil
}

// parseCSV reads a numeric table. Empty cells, "?" and "NaN" become NaN,
// which predictors treat as missing. A first row that does not parse is a
// header and is skipped.
func parseCSV(r io.Reader) (*mat.Dense, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) > 0 && isHeader(records[0]) {
		records = records[1:]
	}
	if len(records) == 0 {
		return &mat.Dense{}, nil
	}
	cols := len(records[0])
	data := make([]float64, 0, len(records)*cols)
	for i, rec := range records {
		for _, cell := range rec {
			v, err := parseCell(cell)
			if err != nil {
				return nil, errors.Newf("row %d: %v", i+1, err)
			}
			data = append(data, v)
		}
	}
	return mat.NewDense(len(records), cols, data), nil
}

func isHeader(rec []string) bool {
	for _, cell := range rec {
		if _, err := parseCell(cell); err != nil {
			return true
		}
	}
	return false
}

func parseCell(cell string) (float64, error) {
	cell = strings.TrimSpace(cell)
	switch strings.ToLower(cell) {
	case "", "?", "nan", "na":
		return math.NaN(), nil
	}
	return strconv.ParseFloat(cell, 64)
}

// splitLabel removes column col from m and returns it as the labels.
func splitLabel(m *mat.Dense, col int) (*mat.Dense, []float64, error) {
	r, c := m.Dims()
	if col < 0 || col >= c {
		return nil, nil, errors.NewValidationError("label-column", "outside the input columns", col)
	}
	labels := mat.Col(nil, col, m)
	if c == 1 {
		return &mat.Dense{}, labels, nil
	}
	data := make([]float64, 0, r*(c-1))
	for i := 0; i < r; i++ {
		row := m.RawRowView(i)
		data = append(data, row[:col]...)
		data = append(data, row[col+1:]...)
	}
	return mat.NewDense(r, c-1, data), labels, nil
}
