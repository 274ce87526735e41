package main

import (
	"bufio"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/sbinet/npyio"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/xgbpredictor/pkg/errors"
)

func outputFormat(path, format string) (string, error) {
	switch format {
	case "":
		if strings.HasSuffix(path, ".npy") {
			return formatNPY, nil
		}
		return formatText, nil
	case formatText, formatCSV, formatNPY:
		return format, nil
	}
	return "", errors.NewValidationError("output-format", "must be text, csv or npy", format)
}

// writeResult writes m to path, or to stdout when path is empty. npy output
// needs a path.
func writeResult(stdout io.Writer, path, format string, m *mat.Dense) error {
	format, err := outputFormat(path, format)
	if err != nil {
		return err
	}
	if format == formatNPY && path == "" {
		return errors.NewValidationError("output", "npy output needs a file", path)
	}

	w := stdout
	if path != "" {
		f, err := os.Create(path)
		if err != nil {
			return errors.Wrapf(err, "create output %s", path)
		}
		defer f.Close()
		w = f
	}

	switch format {
	case formatNPY:
		return npyio.Write(w, m)
	case formatCSV:
		return writeDelimited(w, m, ',')
	default:
		return writeDelimited(w, m, ' ')
	}
}

func writeDelimited(w io.Writer, m *mat.Dense, sep byte) error {
	bw := bufio.NewWriter(w)
	rows, cols := m.Dims()
	buf := make([]byte, 0, 32)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			if j > 0 {
				bw.WriteByte(sep)
			}
			buf = strconv.AppendFloat(buf[:0], m.At(i, j), 'g', -1, 64)
			bw.Write(buf)
		}
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

func rowsToDense(rows [][]float64) *mat.Dense {
	if len(rows) == 0 {
		return &mat.Dense{}
	}
	width := len(rows[0])
	data := make([]float64, 0, len(rows)*width)
	for _, r := range rows {
		data = append(data, r...)
	}
	return mat.NewDense(len(rows), width, data)
}

func leavesToDense(rows [][]int) *mat.Dense {
	out := make([][]float64, len(rows))
	for i, r := range rows {
		out[i] = make([]float64, len(r))
		for j, leaf := range r {
			out[i][j] = float64(leaf)
		}
	}
	return rowsToDense(out)
}
