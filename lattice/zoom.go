package lattice

// Zoom levels for the displayed spectrum. The zoom only affects what is
// shown to the user; calibration always works on the native spectrum.
const (
	Zoom1 = 1
	Zoom2 = 2
)

// ZoomField returns the display version of the spectrum at the given zoom
// level. Level 1 is a plain copy. For level N > 1 a centered sub-region of
// size (XRes/N | 1, YRes/N | 1) is extracted (the odd size guarantees a true
// center pixel), resampled back up to the native resolution by bilinear
// interpolation, and the displayed extents and offsets are divided by N so
// the magnified view keeps consistent physical coordinates.
func ZoomField(spectrum *Field, level int) *Field {
	if level <= Zoom1 {
		return spectrum.Duplicate()
	}

	width := (spectrum.XRes / level) | 1
	height := (spectrum.YRes / level) | 1
	sub := spectrum.AreaExtract((spectrum.XRes-width)/2, (spectrum.YRes-height)/2, width, height)
	disp := sub.Resample(spectrum.XRes, spectrum.YRes)

	disp.XReal = spectrum.XReal / float64(level)
	disp.YReal = spectrum.YReal / float64(level)
	disp.XOff = spectrum.XOff / float64(level)
	disp.YOff = spectrum.YOff / float64(level)
	disp.UnitXY = spectrum.UnitXY
	disp.UnitZ = spectrum.UnitZ
	return disp
}

// MapPoint translates an offset-relative display point between zoom levels
// of the same spectrum. Absolute physical coordinates coincide across zoom
// levels (extents and offsets scale together), so only the offset-relative
// representation changes; the mapping is the exact inverse affine transform
// of the extent/offset scaling and round-trips within floating-point
// tolerance.
func MapPoint(spectrum *Field, pt Point, fromLevel, toLevel int) Point {
	absX := pt.X + spectrum.XOff/float64(fromLevel)
	absY := pt.Y + spectrum.YOff/float64(fromLevel)
	return Point{
		X: absX - spectrum.XOff/float64(toLevel),
		Y: absY - spectrum.YOff/float64(toLevel),
	}
}
