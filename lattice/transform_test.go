package lattice

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

// cosineImage builds an xres x yres field containing the sum of cosines with
// the given integer cycle counts per field width, the kind of pattern a
// perfect periodic lattice produces.
func cosineImage(xres, yres int, xreal, yreal float64, freqs [][2]int) *Field {
	f := NewField(xres, yres, xreal, yreal)
	f.UnitXY = SIUnit{Base: "m", Power: 1}
	for row := 0; row < yres; row++ {
		for col := 0; col < xres; col++ {
			v := 0.0
			for _, k := range freqs {
				phase := 2 * math.Pi * (float64(k[0]*col)/float64(xres) + float64(k[1]*row)/float64(yres))
				v += math.Cos(phase)
			}
			f.SetValue(col, row, v)
		}
	}
	return f
}

func TestTransformKeepsResolution(t *testing.T) {
	for _, size := range [][2]int{{1, 1}, {3, 5}, {16, 16}, {64, 32}} {
		f := NewField(size[0], size[1], 1e-6, 1e-6)
		for i := range f.Samples {
			f.Samples[i] = float64(i % 7)
		}
		s := Transform(f)
		require.Equal(t, size[0], s.XRes)
		require.Equal(t, size[1], s.YRes)
	}
}

func TestTransformMinimumIsExactlyZero(t *testing.T) {
	f := cosineImage(32, 32, 32e-9, 32e-9, [][2]int{{4, 0}})
	s := Transform(f)

	min, max := s.MinMax()
	require.Equal(t, 0.0, min)
	require.Greater(t, max, 0.0)
}

func TestTransformReciprocalGeometry(t *testing.T) {
	f := NewField(64, 32, 128e-9, 64e-9)
	f.UnitXY = SIUnit{Base: "m", Power: 1}
	s := Transform(f)

	// extent' = 1/sampling interval, and the centered bin maps to (0, 0).
	require.InDelta(t, 1.0/f.XMeasure(), s.XReal, 1e-3)
	require.InDelta(t, 1.0/f.YMeasure(), s.YReal, 1e-3)
	require.InDelta(t, 0.0, s.JtoR(float64(s.XRes)/2)+s.XOff, 1e-12)
	require.InDelta(t, 0.0, s.ItoR(float64(s.YRes)/2)+s.YOff, 1e-12)
	require.Equal(t, "1/m", s.UnitXY.String())
}

func TestTransformPeakAtExpectedFrequency(t *testing.T) {
	const n = 64
	const L = 64e-9
	f := cosineImage(n, n, L, L, [][2]int{{5, 2}})
	s := Transform(f)

	// The strongest bins are the cosine's +/- frequency; the positive one
	// sits at pixel (n/2+5, n/2+2), i.e. physical (5/L, 2/L).
	peak, _ := Refine(s, Point{X: s.JtoR(n/2 + 5), Y: s.ItoR(n/2 + 2)}, 2)
	require.InDelta(t, 5.0/L, peak.X, 1e-3)
	require.InDelta(t, 2.0/L, peak.Y, 1e-3)
}

func TestTransformDegenerateOnePixel(t *testing.T) {
	f := NewField(1, 1, 1e-9, 1e-9)
	f.Samples[0] = 42.0

	s := Transform(f)
	require.Equal(t, 1, s.XRes)
	require.Equal(t, 1, s.YRes)
	require.Equal(t, 0.0, s.Samples[0])
}

func TestCenterShiftMovesDCToCenter(t *testing.T) {
	for _, size := range [][2]int{{8, 8}, {9, 7}, {16, 9}} {
		f := NewField(size[0], size[1], 1.0, 1.0)
		f.SetValue(0, 0, 1.0)

		centerShift(f)
		require.Equal(t, 1.0, f.Value(size[0]/2, size[1]/2),
			"DC must land at (xres/2, yres/2) for %dx%d", size[0], size[1])
	}
}

func TestCenterShiftInvolutiveOnEvenAxes(t *testing.T) {
	f := NewField(8, 6, 1.0, 1.0)
	for i := range f.Samples {
		f.Samples[i] = float64(i)
	}
	orig := append([]float64(nil), f.Samples...)

	centerShift(f)
	centerShift(f)
	require.Equal(t, orig, f.Samples)
}
