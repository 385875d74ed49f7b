package lattice

// Point is an offset-relative physical position in some field's frame, the
// coordinate form in which pick points are held.
type Point struct {
	X, Y float64
}

// Peak is a refined diffraction-peak position: absolute physical X and Y
// (field offset included) plus the sample value there.
type Peak struct {
	X, Y, Z float64
}

// Refine locates the local intensity maximum of f within a square
// neighborhood of half-size radius pixels around the approximate pick point
// pt. Ties keep the first sample found in row-major scan order, and radius 0
// considers only the sample containing pt. It returns the peak in absolute
// physical coordinates together with the snapped offset-relative point the
// caller should store in place of pt, so that repeated refinement is
// idempotent.
func Refine(f *Field, pt Point, radius int) (Peak, Point) {
	col0 := clampInt(f.RtoJ(pt.X), 0, f.XRes-1)
	row0 := clampInt(f.RtoI(pt.Y), 0, f.YRes-1)

	bestCol := col0
	bestRow := row0
	bestZ := f.Value(col0, row0)

	if radius > 0 {
		lowCol := clampInt(col0-radius, 0, f.XRes)
		highCol := clampInt(col0+radius, 0, f.XRes)
		lowRow := clampInt(row0-radius, 0, f.YRes)
		highRow := clampInt(row0+radius, 0, f.YRes)

		bestCol = lowCol
		bestRow = lowRow
		bestZ = f.Value(lowCol, lowRow)
		for row := lowRow; row < highRow; row++ {
			for col := lowCol; col < highCol; col++ {
				if v := f.Value(col, row); v > bestZ {
					bestCol = col
					bestRow = row
					bestZ = v
				}
			}
		}
	}

	snapped := Point{X: f.JtoR(float64(bestCol)), Y: f.ItoR(float64(bestRow))}
	peak := Peak{
		X: snapped.X + f.XOff,
		Y: snapped.Y + f.YOff,
		Z: bestZ,
	}
	return peak, snapped
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
