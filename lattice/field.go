// Package lattice implements calibration of scanning-probe microscope images
// against a known hexagonal close-packed (HCP) lattice. The pipeline: compute
// the magnitude spectrum of the image, refine two user-picked first-ring
// peaks, solve for independent X/Y scale factors, and resample the original
// image so the measured lattice spacing matches the known lattice constant.
package lattice

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// SIUnit is a physical unit tag with an integer power, so that a length unit
// can be inverted into a spatial-frequency unit (e.g. "m" -> "1/m").
type SIUnit struct {
	Base  string // base unit symbol, e.g. "m"
	Power int    // exponent; 1 for length, -1 for inverse length
}

// Invert returns the unit raised to the power -1.
func (u SIUnit) Invert() SIUnit {
	return SIUnit{Base: u.Base, Power: -u.Power}
}

func (u SIUnit) String() string {
	switch {
	case u.Base == "" || u.Power == 0:
		return ""
	case u.Power == 1:
		return u.Base
	case u.Power == -1:
		return "1/" + u.Base
	default:
		return fmt.Sprintf("%s^%d", u.Base, u.Power)
	}
}

// Field is a 2D raster of real-valued samples with physical extents and
// offsets, the image buffer every stage of the pipeline operates on.
// Samples are stored row-major; XRes and YRes are always >= 1.
type Field struct {
	XRes, YRes   int
	XReal, YReal float64 // physical extents
	XOff, YOff   float64 // physical offsets
	UnitXY       SIUnit  // unit of the XY plane
	UnitZ        SIUnit  // unit of the sample values
	Samples      []float64
}

// NewField returns a zero-filled field of the given resolution and extents.
func NewField(xres, yres int, xreal, yreal float64) *Field {
	if xres < 1 || yres < 1 {
		panic(fmt.Sprintf("lattice: invalid field resolution %dx%d", xres, yres))
	}
	return &Field{
		XRes:    xres,
		YRes:    yres,
		XReal:   xreal,
		YReal:   yreal,
		Samples: make([]float64, xres*yres),
	}
}

// NewAlike returns a zero-filled field with the same resolution, extents,
// offsets and units as f.
func (f *Field) NewAlike() *Field {
	g := NewField(f.XRes, f.YRes, f.XReal, f.YReal)
	g.XOff, g.YOff = f.XOff, f.YOff
	g.UnitXY, g.UnitZ = f.UnitXY, f.UnitZ
	return g
}

// Duplicate returns a deep copy of f.
func (f *Field) Duplicate() *Field {
	g := f.NewAlike()
	copy(g.Samples, f.Samples)
	return g
}

// Value returns the sample at pixel column col, row.
func (f *Field) Value(col, row int) float64 { return f.Samples[row*f.XRes+col] }

// SetValue sets the sample at pixel column col, row.
func (f *Field) SetValue(col, row int, v float64) { f.Samples[row*f.XRes+col] = v }

// XMeasure returns the physical sampling interval along X.
func (f *Field) XMeasure() float64 { return f.XReal / float64(f.XRes) }

// YMeasure returns the physical sampling interval along Y.
func (f *Field) YMeasure() float64 { return f.YReal / float64(f.YRes) }

// JtoR converts a (possibly fractional) column index to the offset-relative
// physical X coordinate. There is no half-pixel shift: JtoR(0) is the left
// edge of the field.
func (f *Field) JtoR(j float64) float64 { return j * f.XMeasure() }

// ItoR converts a (possibly fractional) row index to the offset-relative
// physical Y coordinate.
func (f *Field) ItoR(i float64) float64 { return i * f.YMeasure() }

// RtoJ converts an offset-relative physical X coordinate to the column index
// of the sample containing it.
func (f *Field) RtoJ(x float64) int { return int(math.Floor(x / f.XMeasure())) }

// RtoI converts an offset-relative physical Y coordinate to the row index of
// the sample containing it.
func (f *Field) RtoI(y float64) int { return int(math.Floor(y / f.YMeasure())) }

// MinMax returns the smallest and largest sample value.
func (f *Field) MinMax() (min, max float64) {
	return floats.Min(f.Samples), floats.Max(f.Samples)
}

// Clamp limits every sample to [lower, upper]. The bounds may be given in
// either order; they are normalized before use.
func (f *Field) Clamp(lower, upper float64) {
	lo := math.Min(lower, upper)
	hi := math.Max(lower, upper)
	for i, v := range f.Samples {
		if v < lo {
			f.Samples[i] = lo
		} else if v > hi {
			f.Samples[i] = hi
		}
	}
}

// Mean returns the arithmetic mean of all samples.
func (f *Field) Mean() float64 {
	return floats.Sum(f.Samples) / float64(len(f.Samples))
}

// Interpolate samples f at fractional pixel coordinates by bilinear
// interpolation, clamping to the valid range at the edges.
func (f *Field) Interpolate(x, y float64) float64 {
	if x < 0 {
		x = 0
	}
	if y < 0 {
		y = 0
	}
	if x > float64(f.XRes-1) {
		x = float64(f.XRes - 1)
	}
	if y > float64(f.YRes-1) {
		y = float64(f.YRes - 1)
	}

	x0 := int(x)
	y0 := int(y)
	x1 := x0 + 1
	y1 := y0 + 1
	if x1 > f.XRes-1 {
		x1 = f.XRes - 1
	}
	if y1 > f.YRes-1 {
		y1 = f.YRes - 1
	}

	xFrac := x - float64(x0)
	yFrac := y - float64(y0)

	v00 := f.Value(x0, y0)
	v01 := f.Value(x1, y0)
	v10 := f.Value(x0, y1)
	v11 := f.Value(x1, y1)

	v0 := v00*(1-xFrac) + v01*xFrac
	v1 := v10*(1-xFrac) + v11*xFrac
	return v0*(1-yFrac) + v1*yFrac
}

// Resample returns f resampled to a new resolution by bilinear
// interpolation. The physical extent is preserved, so the per-pixel sampling
// interval changes. Resampling to the same resolution reproduces the samples
// exactly.
func (f *Field) Resample(xres, yres int) *Field {
	if xres < 1 {
		xres = 1
	}
	if yres < 1 {
		yres = 1
	}
	g := NewField(xres, yres, f.XReal, f.YReal)
	g.XOff, g.YOff = f.XOff, f.YOff
	g.UnitXY, g.UnitZ = f.UnitXY, f.UnitZ

	xRatio := float64(f.XRes) / float64(xres)
	yRatio := float64(f.YRes) / float64(yres)
	for row := 0; row < yres; row++ {
		// Map destination pixel centers into the source grid.
		ySrc := (float64(row)+0.5)*yRatio - 0.5
		for col := 0; col < xres; col++ {
			xSrc := (float64(col)+0.5)*xRatio - 0.5
			g.SetValue(col, row, f.Interpolate(xSrc, ySrc))
		}
	}
	return g
}

// AreaExtract returns a copy of the w x h sub-area of f whose top-left
// corner is at pixel (col, row). The extracted field's extents cover the
// same physical span as the source pixels; offsets are reset to zero.
func (f *Field) AreaExtract(col, row, w, h int) *Field {
	if col < 0 || row < 0 || w < 1 || h < 1 || col+w > f.XRes || row+h > f.YRes {
		panic(fmt.Sprintf("lattice: area %d,%d %dx%d outside field %dx%d",
			col, row, w, h, f.XRes, f.YRes))
	}
	g := NewField(w, h, f.XMeasure()*float64(w), f.YMeasure()*float64(h))
	g.UnitXY, g.UnitZ = f.UnitXY, f.UnitZ
	for i := 0; i < h; i++ {
		src := (row+i)*f.XRes + col
		copy(g.Samples[i*w:(i+1)*w], f.Samples[src:src+w])
	}
	return g
}
