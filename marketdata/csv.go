package marketdata

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/golang/glog"
	"github.com/joshi-prasad/quant"
	"github.com/joshi-prasad/quant/curve"
	"github.com/joshi-prasad/quant/volsurface"
)

// readTable reads a CSV with a header row and returns the column index map
// and the remaining rows. Column names are matched case-insensitively.
func readTable(r io.Reader, required []string, missing error) (map[string]int, [][]string, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil, fmt.Errorf("%w: empty table", missing)
	}
	if err != nil {
		return nil, nil, err
	}
	indices := make(map[string]int)
	for i, col := range header {
		indices[strings.ToLower(strings.TrimSpace(col))] = i
	}
	for _, col := range required {
		if _, ok := indices[strings.ToLower(col)]; !ok {
			glog.Errorf("marketdata: column %q missing from header %v", col, header)
			return nil, nil, fmt.Errorf("%w: missing column %q", missing, col)
		}
	}

	var rows [][]string
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, err
		}
		rows = append(rows, row)
	}
	return indices, rows, nil
}

func field(row []string, indices map[string]int, col string) (string, bool) {
	i, ok := indices[strings.ToLower(col)]
	if !ok || i >= len(row) {
		return "", false
	}
	return strings.TrimSpace(row[i]), true
}

func floatField(row []string, indices map[string]int, col string, line int) (float64, error) {
	s, ok := field(row, indices, col)
	if !ok {
		return 0, fmt.Errorf("line %d: column %q missing", line, col)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("line %d: column %q: %w", line, col, err)
	}
	return v, nil
}

// ParseCurveCSV reads a maturity,rate table.
func ParseCurveCSV(r io.Reader) ([]curve.Point, error) {
	indices, rows, err := readTable(r, []string{"maturity", "rate"}, quant.ErrInvalidCurveInput)
	if err != nil {
		return nil, err
	}
	points := make([]curve.Point, 0, len(rows))
	for i, row := range rows {
		m, err := floatField(row, indices, "maturity", i+2)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", quant.ErrInvalidCurveInput, err)
		}
		rate, err := floatField(row, indices, "rate", i+2)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", quant.ErrInvalidCurveInput, err)
		}
		points = append(points, curve.Point{Maturity: m, Rate: rate})
	}
	return points, nil
}

// ParseSurfaceCSV reads a T,K,iv table with optional maturity_str and type
// columns. Rows whose numbers do not parse are skipped, the surface drops
// non-finite quotes anyway.
func ParseSurfaceCSV(r io.Reader) ([]volsurface.VolPoint, error) {
	indices, rows, err := readTable(r, []string{"T", "K", "iv"}, quant.ErrInvalidSurfaceInput)
	if err != nil {
		return nil, err
	}
	points := make([]volsurface.VolPoint, 0, len(rows))
	for i, row := range rows {
		line := i + 2
		t, errT := floatField(row, indices, "T", line)
		k, errK := floatField(row, indices, "K", line)
		iv, errIV := floatField(row, indices, "iv", line)
		if errT != nil || errK != nil || errIV != nil {
			glog.V(1).Infof("marketdata: skipping surface line %d", line)
			continue
		}
		p := volsurface.VolPoint{T: t, K: k, IV: iv}
		p.Label, _ = field(row, indices, "maturity_str")
		if s, ok := field(row, indices, "type"); ok {
			if typ, ok := quant.ParseOptionType(s); ok {
				p.Type = typ
			}
		}
		points = append(points, p)
	}
	return points, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func WriteCurveCSV(w io.Writer, points []curve.Point) error {
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"maturity", "rate"}); err != nil {
		return err
	}
	for _, p := range points {
		if err := writer.Write([]string{formatFloat(p.Maturity), formatFloat(p.Rate)}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func WriteSurfaceCSV(w io.Writer, points []volsurface.VolPoint) error {
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"T", "K", "iv", "maturity_str", "type"}); err != nil {
		return err
	}
	for _, p := range points {
		row := []string{formatFloat(p.T), formatFloat(p.K), formatFloat(p.IV), p.Label, p.Type.String()}
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
