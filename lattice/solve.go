package lattice

import "math"

// ScaleFactors is the result of a calibration solve: the multiplicative
// corrections applied to the X and Y pixel pitch of the original image,
// together with advisory degeneracy warnings. Warnings never block applying
// the factors; that decision belongs to the operator.
type ScaleFactors struct {
	XScale   float64
	YScale   float64
	XWarning bool
	YWarning bool
}

// Solve derives the anisotropic scale factors from two refined first-ring
// peaks (absolute reciprocal-space positions) and the known real-space
// nearest-neighbor spacing a. A first-ring HCP peak of an ideally calibrated
// image lies at radius R = 2/(sqrt(3)*a); the closed form below finds the
// axis corrections that put both measured peaks on that ring.
func Solve(p1, p2 Peak, a float64) ScaleFactors {
	x1sq := p1.X * p1.X
	y1sq := p1.Y * p1.Y
	x2sq := p2.X * p2.X
	y2sq := p2.Y * p2.Y

	R := 2.0 / (math.Sqrt(3.0) * a)

	ycorr := R * math.Sqrt((x1sq-x2sq)/(x1sq*y2sq-x2sq*y1sq))
	xcorr := math.Sqrt((R*R - ycorr*ycorr*y1sq) / x1sq)

	s := ScaleFactors{
		XScale: 1.0 / xcorr,
		YScale: 1.0 / ycorr,
	}

	if x1sq == x2sq {
		s.XWarning = true
	}
	if y1sq == y2sq {
		s.YWarning = true
	}
	if x1sq == 0 {
		s.XWarning = true
	}
	if !isFinite(s.XScale) {
		s.XWarning = true
	}
	if !isFinite(s.YScale) {
		s.YWarning = true
	}
	if x1sq*y2sq == x2sq*y1sq {
		// The two peaks are collinear through the origin; the system is
		// singular and neither factor is trustworthy.
		s.XWarning = true
		s.YWarning = true
	}
	return s
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
