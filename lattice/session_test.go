package lattice

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func sessionArgs() Args {
	a := DefaultArgs()
	a.Lattice = 0.246e-9
	a.Radius = 2
	return a
}

func graphiteImage() *Field {
	// Synthetic "lattice" with first-ring peaks at 3 and 1 cycles along the
	// two axes, 5 nm field of view.
	return cosineImage(128, 128, 5e-9, 5e-9, [][2]int{{3, 1}, {1, 3}})
}

func TestSessionStartsUndetermined(t *testing.T) {
	s := NewSession(graphiteImage(), sessionArgs())

	require.Empty(t, s.Points())
	require.Equal(t, 0.0, s.Args.XScale)
	require.Equal(t, 0.0, s.Args.YScale)
	require.False(t, s.CanCalibrate())
}

func TestSessionManualOverrideEnablesCalibration(t *testing.T) {
	s := NewSession(graphiteImage(), sessionArgs())

	s.SetXScale(1.2)
	require.False(t, s.CanCalibrate(), "one factor is not enough")
	s.SetYScale(0.8)
	require.True(t, s.CanCalibrate())

	// Non-positive entries are silently ignored, prior values kept.
	s.SetXScale(-5)
	s.SetYScale(0)
	require.Equal(t, 1.2, s.Args.XScale)
	require.Equal(t, 0.8, s.Args.YScale)
}

func TestSessionClampBoundsSilentlyLimited(t *testing.T) {
	s := NewSession(graphiteImage(), sessionArgs())
	min, max := s.DataRange()

	s.SetLower(min - 1e6)
	s.SetUpper(max + 1e6)
	require.Equal(t, min, s.Args.Lower)
	require.Equal(t, max, s.Args.Upper)

	s.SetFullRange()
	require.Equal(t, min, s.Args.Lower)
	require.Equal(t, max, s.Args.Upper)
}

func TestSessionLatticeRejectsNonPositive(t *testing.T) {
	s := NewSession(graphiteImage(), sessionArgs())

	require.False(t, s.SetLattice(0))
	require.False(t, s.SetLattice(-1e-9))
	require.Equal(t, 0.246e-9, s.Args.Lattice)
	require.True(t, s.SetLattice(0.3e-9))
	require.Equal(t, 0.3e-9, s.Args.Lattice)
}

func TestSessionDisplayFieldIsClampedCopy(t *testing.T) {
	s := NewSession(graphiteImage(), sessionArgs())
	_, max := s.DataRange()
	s.SetLower(0)
	s.SetUpper(max / 2)

	d := s.DisplayField()
	_, dmax := d.MinMax()
	require.LessOrEqual(t, dmax, max/2)

	// The clamp must not leak into the session's own display state.
	d2 := s.DisplayField()
	s.SetUpper(max)
	d3 := s.DisplayField()
	_, d2max := d2.MinMax()
	_, d3max := d3.MinMax()
	require.LessOrEqual(t, d2max, max/2)
	require.Greater(t, d3max, d2max)
}

// sessionPickPoints returns display-frame pick points a fraction of a pixel
// away from the two synthetic first-ring peaks.
func sessionPickPoints(s *Session) (Point, Point) {
	sp := s.Spectrum()
	p1 := Point{X: sp.JtoR(64+3) + 0.4*sp.XMeasure(), Y: sp.ItoR(64+1) + 0.4*sp.YMeasure()}
	p2 := Point{X: sp.JtoR(64+1) + 0.4*sp.XMeasure(), Y: sp.ItoR(64+3) + 0.4*sp.YMeasure()}
	return p1, p2
}

func TestSessionEndToEndMatchesClosedForm(t *testing.T) {
	const L = 5e-9
	const a = 0.246e-9
	s := NewSession(graphiteImage(), sessionArgs())

	p1, p2 := sessionPickPoints(s)
	s.AddPoint(p1)
	require.False(t, s.CanCalibrate())
	s.AddPoint(p2)
	require.True(t, s.CanCalibrate())

	require.False(t, s.Args.XWarning)
	require.False(t, s.Args.YWarning)

	// Hand-computed reference from the known peak positions (3/L, 1/L) and
	// (1/L, 3/L).
	x1, y1 := 3.0/L, 1.0/L
	x2, y2 := 1.0/L, 3.0/L
	R := 2.0 / (math.Sqrt(3.0) * a)
	ycorr := R * math.Sqrt((x1*x1-x2*x2)/(x1*x1*y2*y2-x2*x2*y1*y1))
	xcorr := math.Sqrt((R*R - ycorr*ycorr*y1*y1) / (x1 * x1))

	require.InEpsilon(t, 1.0/xcorr, s.Args.XScale, 1e-6)
	require.InEpsilon(t, 1.0/ycorr, s.Args.YScale, 1e-6)

	out, meta := s.Apply(nil, "synthetic graphite")
	require.Equal(t, 128, out.XRes)
	require.InDelta(t, L*s.Args.XScale, out.XReal, L*1e-9)
	require.Equal(t, "synthetic graphite", meta["Source Title"])
}

func TestSessionRefinementIsIdempotent(t *testing.T) {
	s := NewSession(graphiteImage(), sessionArgs())
	p1, p2 := sessionPickPoints(s)
	s.AddPoint(p1)
	s.AddPoint(p2)

	peaks := append([]Peak(nil), s.Peaks()...)
	points := append([]Point(nil), s.Points()...)
	s.RefinePoints()
	require.Equal(t, peaks, s.Peaks())
	require.Equal(t, points, s.Points())
}

func TestSessionThirdPickReplacesNearest(t *testing.T) {
	s := NewSession(graphiteImage(), sessionArgs())
	p1, p2 := sessionPickPoints(s)
	s.AddPoint(p1)
	s.AddPoint(p2)
	first := s.Peaks()[0]

	// Picking again near the second peak must replace slot 1 and leave
	// slot 0 alone.
	s.AddPoint(Point{X: p2.X + s.Spectrum().XMeasure(), Y: p2.Y})
	require.Len(t, s.Points(), 2)
	require.Equal(t, first, s.Peaks()[0])
}

func TestSessionClearPointsResetsScales(t *testing.T) {
	s := NewSession(graphiteImage(), sessionArgs())
	p1, p2 := sessionPickPoints(s)
	s.AddPoint(p1)
	s.AddPoint(p2)
	require.Greater(t, s.Args.XScale, 0.0)

	s.ClearPoints()
	require.Empty(t, s.Points())
	require.Equal(t, 0.0, s.Args.XScale)
	require.Equal(t, 0.0, s.Args.YScale)
	require.False(t, s.Args.XWarning)
	require.False(t, s.Args.YWarning)
}

func TestSessionZoomKeepsSelection(t *testing.T) {
	s := NewSession(graphiteImage(), sessionArgs())
	p1, p2 := sessionPickPoints(s)
	s.AddPoint(p1)
	s.AddPoint(p2)
	before := append([]Peak(nil), s.Peaks()...)

	s.SetZoom(Zoom2)
	require.Len(t, s.Points(), 2)

	// The zoomed display is a bilinear magnification, so re-refined peaks
	// may move by up to about a native pixel, but not more.
	tol := 1.5 * s.Spectrum().XMeasure()
	for i, p := range s.Peaks() {
		require.InDelta(t, before[i].X, p.X, tol)
		require.InDelta(t, before[i].Y, p.Y, tol)
	}

	s.SetZoom(Zoom1)
	for i, p := range s.Peaks() {
		require.InDelta(t, before[i].X, p.X, tol)
		require.InDelta(t, before[i].Y, p.Y, tol)
	}
}
