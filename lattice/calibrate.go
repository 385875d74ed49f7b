package lattice

import (
	"fmt"
	"math"
)

// Metadata is the provenance record attached to a calibrated image.
type Metadata map[string]string

// Duplicate returns a copy of m; a nil receiver yields an empty record.
func (m Metadata) Duplicate() Metadata {
	out := make(Metadata, len(m)+3)
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Calibrate resamples the original real-space image with the solved scale
// factors. The X resolution is preserved and the Y resolution is rescaled by
// YScale/XScale, which keeps the pixel aspect ratio consistent once the
// physical extents are stretched independently by the two factors. The
// original field is never modified.
func Calibrate(orig *Field, xscale, yscale float64) *Field {
	newXRes := roundToInt(float64(orig.XRes))
	newYRes := roundToInt(float64(orig.YRes) * yscale / xscale)

	out := orig.Resample(newXRes, newYRes)
	out.XReal = orig.XReal * xscale
	out.YReal = orig.YReal * yscale
	return out
}

// OutputMetadata builds the provenance record for a calibrated image: a
// duplicate of the source image's metadata plus the source title and the two
// scale factors formatted to 5 decimal places.
func OutputMetadata(source Metadata, sourceTitle string, xscale, yscale float64) Metadata {
	meta := source.Duplicate()
	meta["Source Title"] = sourceTitle
	meta["X Scaling Factor"] = fmt.Sprintf("%.5f", xscale)
	meta["Y Scaling Factor"] = fmt.Sprintf("%.5f", yscale)
	return meta
}

func roundToInt(v float64) int {
	return int(math.Floor(v + 0.5))
}
