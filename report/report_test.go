package report

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/joshi-prasad/quant"
	"github.com/joshi-prasad/quant/curve"
	"github.com/joshi-prasad/quant/volsurface"
)

func testSmile() volsurface.Smile {
	return volsurface.NewSmile(0.5, []float64{90, 100, 110}, []float64{0.24, 0.2, 0.19})
}

func TestPrintCurve(t *testing.T) {
	c, err := curve.Bootstrap([]curve.Point{{Maturity: 1, Rate: 0.03}, {Maturity: 2, Rate: 0.035}}, true)
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := PrintCurve(&buf, c, []float64{0.5, 1, 2}); err != nil {
		t.Fatalf("PrintCurve: %v", err)
	}
	out := buf.String()
	if lines := strings.Count(out, "\n"); lines != 4 {
		t.Errorf("got %d lines, want header + 3 rows:\n%s", lines, out)
	}
	if !strings.Contains(out, "3.0000") {
		t.Errorf("zero rate 3%% missing from output:\n%s", out)
	}
}

func TestPrintSmileFit(t *testing.T) {
	sm := testSmile()
	flat := FitFunc("flat", sm, func(float64) float64 { return 0.2 })
	var buf bytes.Buffer
	PrintSmileFit(&buf, sm, 101, []Fit{flat, {Name: "short", IVs: []float64{0.2}}})
	out := buf.String()
	if !strings.Contains(out, "* ") {
		t.Errorf("atm row not marked:\n%s", out)
	}
	if !strings.Contains(out, "flat") || !strings.Contains(out, "short") {
		t.Errorf("fit names missing:\n%s", out)
	}
	if !strings.Contains(out, "NaN") {
		t.Errorf("missing model vols should print NaN:\n%s", out)
	}
}

func TestWriteSmilePlot(t *testing.T) {
	sm := testSmile()
	var buf bytes.Buffer
	fits := []Fit{FitFunc("flat", sm, func(float64) float64 { return 0.21 })}
	if err := WriteSmilePlot(&buf, sm, fits); err != nil {
		t.Fatalf("WriteSmilePlot: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG")) {
		t.Errorf("output is not a PNG (%d bytes)", buf.Len())
	}

	if err := WriteSmilePlot(&buf, volsurface.Smile{}, nil); !errors.Is(err, quant.ErrInsufficientData) {
		t.Errorf("empty smile err = %v", err)
	}
}

func TestWriteSurfaceChart(t *testing.T) {
	s, err := volsurface.NewSurface([]volsurface.VolPoint{
		{T: 0.25, K: 90, IV: 0.25}, {T: 0.25, K: 110, IV: 0.2},
		{T: 1, K: 90, IV: 0.23}, {T: 1, K: 110, IV: 0.21},
	})
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := WriteSurfaceChart(&buf, s, []float64{90, 100, 110}); err != nil {
		t.Fatalf("WriteSurfaceChart: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "<html") || !strings.Contains(out, "T=0.250") {
		t.Errorf("unexpected chart html (%d bytes)", len(out))
	}

	if err := WriteSurfaceChart(&buf, s, nil); !errors.Is(err, quant.ErrInsufficientData) {
		t.Errorf("no strikes err = %v", err)
	}
}
