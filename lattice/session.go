package lattice

// Args is the configuration state of one calibration session. Lower and
// Upper bound the displayed spectrum intensity (in spectrum value units and
// in no particular order; consumers normalize), Lattice is the known
// real-space nearest-neighbor spacing, XScale/YScale are the derived or
// manually entered factors (0 means not yet determined), and Radius is the
// peak-search half-size in pixels.
type Args struct {
	Lower    float64
	Upper    float64
	Lattice  float64
	XScale   float64
	YScale   float64
	XWarning bool
	YWarning bool
	Zoom     int
	Radius   int
}

// Session defaults; the lattice constant default is 1 nm expressed in
// meters.
const (
	DefaultLattice = 1e-9
	DefaultRadius  = 3
	MaxRadius      = 10
	MaxPoints      = 2
)

// DefaultArgs returns the session configuration used when no persisted
// settings exist.
func DefaultArgs() Args {
	return Args{
		Lattice: DefaultLattice,
		XScale:  1.0,
		YScale:  1.0,
		Zoom:    Zoom1,
		Radius:  DefaultRadius,
	}
}

// Session owns all mutable state of one interactive calibration: the
// configuration, the untouched original image, the native spectrum, the
// current display field, and the pick points with their refined peaks. All
// updates go through its methods; there is no shared global state.
type Session struct {
	Args Args

	original *Field
	spectrum *Field
	display  *Field // current zoom of the spectrum, unclamped

	rangeMin float64
	rangeMax float64

	points []Point // offset-relative, in the display frame
	peaks  []Peak  // same indices as points, native frame
}

// NewSession duplicates the input image, computes its spectrum, and prepares
// the display at the configured zoom level.
func NewSession(input *Field, args Args) *Session {
	if args.Zoom < Zoom1 {
		args.Zoom = Zoom1
	}
	s := &Session{
		Args:     args,
		original: input.Duplicate(),
	}
	s.spectrum = Transform(s.original)
	s.rangeMin, s.rangeMax = s.spectrum.MinMax()
	s.display = ZoomField(s.spectrum, s.Args.Zoom)
	s.UpdateScales()
	return s
}

// Original returns the session's private copy of the input image.
func (s *Session) Original() *Field { return s.original }

// Spectrum returns the native (unzoomed) magnitude spectrum.
func (s *Session) Spectrum() *Field { return s.spectrum }

// DataRange returns the full value range of the spectrum, the bounds the
// intensity clamp is limited to.
func (s *Session) DataRange() (min, max float64) { return s.rangeMin, s.rangeMax }

// DisplayField returns the spectrum as currently displayed: zoomed and with
// the intensity clamp applied. The returned field is a copy owned by the
// caller.
func (s *Session) DisplayField() *Field {
	f := s.display.Duplicate()
	f.Clamp(s.Args.Lower, s.Args.Upper)
	return f
}

// SetLower sets the lower intensity clamp bound. Out-of-range values are
// silently clamped to the spectrum's data range.
func (s *Session) SetLower(v float64) {
	s.Args.Lower = s.clampToRange(v)
}

// SetUpper sets the upper intensity clamp bound, silently clamped to the
// spectrum's data range.
func (s *Session) SetUpper(v float64) {
	s.Args.Upper = s.clampToRange(v)
}

// SetFullRange sets the clamp bounds to the spectrum's full data range.
func (s *Session) SetFullRange() {
	s.Args.Lower = s.rangeMin
	s.Args.Upper = s.rangeMax
}

func (s *Session) clampToRange(v float64) float64 {
	if v < s.rangeMin {
		return s.rangeMin
	}
	if v > s.rangeMax {
		return s.rangeMax
	}
	return v
}

// SetLattice updates the lattice constant and re-solves. Non-positive values
// are silently ignored and the prior value kept; the return value reports
// whether the entry was accepted.
func (s *Session) SetLattice(v float64) bool {
	if v <= 0 {
		return false
	}
	s.Args.Lattice = v
	s.UpdateScales()
	return true
}

// SetXScale manually overrides the X scale factor. Only positive values are
// applied; anything else is silently ignored.
func (s *Session) SetXScale(v float64) {
	if v > 0 {
		s.Args.XScale = v
	}
}

// SetYScale manually overrides the Y scale factor. Only positive values are
// applied; anything else is silently ignored.
func (s *Session) SetYScale(v float64) {
	if v > 0 {
		s.Args.YScale = v
	}
}

// SetRadius sets the peak-search radius, clamped to [0, MaxRadius]. Held
// points are re-refined with the new radius.
func (s *Session) SetRadius(r int) {
	s.Args.Radius = clampInt(r, 0, MaxRadius)
	s.RefinePoints()
	s.UpdateScales()
}

// AddPoint records an approximate pick point in the current display frame.
// When both slots are already occupied the pick replaces the nearer existing
// point, keeping slot identity stable. The point is refined immediately and
// the scale factors updated.
func (s *Session) AddPoint(pt Point) {
	if len(s.points) < MaxPoints {
		s.points = append(s.points, pt)
		s.peaks = append(s.peaks, Peak{})
	} else {
		idx := 0
		d0 := sqDist(pt, s.points[0])
		d1 := sqDist(pt, s.points[1])
		if d1 < d0 {
			idx = 1
		}
		s.points[idx] = pt
	}
	s.RefinePoints()
	s.UpdateScales()
}

// ClearPoints discards all pick points, resets both scale factors to
// "undetermined" and clears the warnings.
func (s *Session) ClearPoints() {
	s.points = s.points[:0]
	s.peaks = s.peaks[:0]
	s.Args.XScale = 0
	s.Args.YScale = 0
	s.Args.XWarning = false
	s.Args.YWarning = false
}

// Points returns the held pick points in the display frame.
func (s *Session) Points() []Point { return s.points }

// Peaks returns the refined peaks, in native absolute coordinates, for the
// held points.
func (s *Session) Peaks() []Peak { return s.peaks }

// RefinePoints re-runs peak refinement for every held point against the
// current display and snaps the stored points onto the found maxima, so
// repeated refinement is a no-op once every peak sits on its local maximum.
func (s *Session) RefinePoints() {
	for i, pt := range s.points {
		peak, snapped := Refine(s.display, pt, s.Args.Radius)
		s.peaks[i] = peak
		s.points[i] = snapped
	}
}

// UpdateScales recomputes the scale factors. With both peaks present the
// solver runs; otherwise the factors reset to undetermined and the warnings
// clear.
func (s *Session) UpdateScales() {
	if len(s.points) == MaxPoints {
		r := Solve(s.peaks[0], s.peaks[1], s.Args.Lattice)
		s.Args.XScale = r.XScale
		s.Args.YScale = r.YScale
		s.Args.XWarning = r.XWarning
		s.Args.YWarning = r.YWarning
	} else {
		s.Args.XScale = 0
		s.Args.YScale = 0
		s.Args.XWarning = false
		s.Args.YWarning = false
	}
}

// SetZoom switches the display zoom level. Held points are re-mapped into
// the new display frame rather than discarded, then re-refined there.
func (s *Session) SetZoom(level int) {
	if level < Zoom1 {
		level = Zoom1
	}
	if level == s.Args.Zoom {
		return
	}
	for i := range s.points {
		// Absolute coordinates are zoom-invariant; restate the point
		// relative to the new display offset.
		s.points[i] = Point{
			X: s.peaks[i].X - s.spectrum.XOff/float64(level),
			Y: s.peaks[i].Y - s.spectrum.YOff/float64(level),
		}
	}
	s.Args.Zoom = level
	s.display = ZoomField(s.spectrum, level)
	s.RefinePoints()
	s.UpdateScales()
}

// CanCalibrate reports whether a calibration may run: either both peaks are
// picked or positive scale factors have been supplied manually.
func (s *Session) CanCalibrate() bool {
	if len(s.points) == MaxPoints {
		return true
	}
	return s.Args.XScale > 0 && s.Args.YScale > 0
}

// Apply produces the calibrated image and its provenance metadata from the
// current scale factors. The original image is left untouched; the returned
// field is owned by the caller.
func (s *Session) Apply(sourceMeta Metadata, sourceTitle string) (*Field, Metadata) {
	out := Calibrate(s.original, s.Args.XScale, s.Args.YScale)
	meta := OutputMetadata(sourceMeta, sourceTitle, s.Args.XScale, s.Args.YScale)
	return out, meta
}

func sqDist(a, b Point) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	return dx*dx + dy*dy
}
