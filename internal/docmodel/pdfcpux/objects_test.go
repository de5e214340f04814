package pdfcpux

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"github.com/jackzampolin/reanchor/internal/docmodel"
)

func TestDecodeTextBytes(t *testing.T) {
	cases := []struct {
		name string
		in   []byte
		want string
	}{
		{"plain ascii", []byte("Note"), "Note"},
		{"utf-8 passthrough", []byte("héllo"), "héllo"},
		{"utf-16be with bom", []byte{0xFE, 0xFF, 0x00, 'H', 0x00, 'i'}, "Hi"},
		{"utf-16be non-ascii", []byte{0xFE, 0xFF, 0x20, 0x14}, "—"},
		{"latin-1 fallback", []byte{'a', 0xE9}, "aé"},
		{"empty", nil, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := decodeTextBytes(tc.in); got != tc.want {
				t.Errorf("decodeTextBytes(% x) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestRectFromCorners(t *testing.T) {
	want := docmodel.Rect{LLx: 10, LLy: 20, URx: 110, URy: 40}

	t.Run("normalized input", func(t *testing.T) {
		got := rectFromCorners([]float64{10, 20, 110, 40})
		if got != want {
			t.Errorf("got %+v", got)
		}
	})

	t.Run("swapped corners", func(t *testing.T) {
		got := rectFromCorners([]float64{110, 40, 10, 20})
		if got != want {
			t.Errorf("got %+v", got)
		}
	})
}

func TestQuadPointsRoundTrip(t *testing.T) {
	// One quad in Acrobat's UL UR LL LR order.
	qp := []float64{
		10, 30, // UL
		90, 30, // UR
		10, 20, // LL
		90, 20, // LR
	}

	quads := quadsFromPoints(qp)
	want := []docmodel.Quad{{
		{X: 10, Y: 20},
		{X: 90, Y: 20},
		{X: 90, Y: 30},
		{X: 10, Y: 30},
	}}
	if diff := cmp.Diff(want, quads); diff != "" {
		t.Fatalf("quadsFromPoints mismatch (-want +got):\n%s", diff)
	}

	arr := quadPointsArray(quads)
	if len(arr) != 8 {
		t.Fatalf("QuadPoints length %d, want 8", len(arr))
	}
	for i, v := range qp {
		f, ok := arr[i].(types.Float)
		if !ok || f.Value() != v {
			t.Errorf("QuadPoints[%d] = %v, want %v", i, arr[i], v)
		}
	}
}

func TestQuadsFromPointsIgnoresTrailingValues(t *testing.T) {
	// A truncated trailing group is dropped rather than misread.
	qp := []float64{0, 0, 1, 0, 0, 1, 1, 1, 99, 99}
	if got := quadsFromPoints(qp); len(got) != 1 {
		t.Errorf("got %d quads, want 1", len(got))
	}
}
