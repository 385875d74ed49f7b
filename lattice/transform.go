package lattice

import (
	"math"

	"gonum.org/v1/gonum/dsp/fourier"
)

// Transform computes the centered magnitude spectrum of f. The input is mean
// subtracted and Hann windowed, transformed by a forward 2D FFT, and the
// modulus of the coefficients is post-processed so that the zero-frequency
// bin sits at the center pixel with physical coordinate (0, 0), the extents
// are the reciprocal of the original sampling intervals, the XY unit is
// inverted, and the smallest sample is exactly 0. The input field is not
// modified.
func Transform(f *Field) *Field {
	w := f.XRes
	h := f.YRes

	mean := f.Mean()
	a := make([][]complex128, h)
	for row := 0; row < h; row++ {
		a[row] = make([]complex128, w)
		wy := hannWeight(row, h)
		for col := 0; col < w; col++ {
			v := (f.Value(col, row) - mean) * wy * hannWeight(col, w)
			a[row][col] = complex(v, 0)
		}
	}

	fft2InPlace(a)

	spectrum := f.NewAlike()
	for row := 0; row < h; row++ {
		for col := 0; col < w; col++ {
			c := a[row][col]
			spectrum.SetValue(col, row, math.Hypot(real(c), imag(c)))
		}
	}

	centerShift(spectrum)

	// Reciprocal-space extents and offsets: extent' = 1/sampling interval,
	// with the centered bin mapping to physical (0, 0).
	xm := f.XMeasure()
	ym := f.YMeasure()
	spectrum.XReal = 1.0 / xm
	spectrum.YReal = 1.0 / ym
	spectrum.XOff = -spectrum.JtoR(float64(spectrum.XRes) / 2.0)
	spectrum.YOff = -spectrum.ItoR(float64(spectrum.YRes) / 2.0)
	spectrum.UnitXY = f.UnitXY.Invert()

	min, _ := spectrum.MinMax()
	for i := range spectrum.Samples {
		spectrum.Samples[i] -= min
	}
	return spectrum
}

// hannWeight is the Hann window coefficient for sample k of an n-point axis.
func hannWeight(k, n int) float64 {
	if n < 2 {
		return 1.0
	}
	return 0.5 * (1.0 - math.Cos(2.0*math.Pi*float64(k)/float64(n-1)))
}

// fft2InPlace performs a forward 2D FFT: rows, then columns.
func fft2InPlace(a [][]complex128) {
	h := len(a)
	w := len(a[0])

	rowFFT := fourier.NewCmplxFFT(w)
	colFFT := fourier.NewCmplxFFT(h)

	tmp := make([]complex128, w)
	for y := 0; y < h; y++ {
		copy(tmp, a[y])
		rowFFT.Coefficients(tmp, tmp)
		copy(a[y], tmp)
	}

	col := make([]complex128, h)
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			col[y] = a[y][x]
		}
		colFFT.Coefficients(col, col)
		for y := 0; y < h; y++ {
			a[y][x] = col[y]
		}
	}
}

// centerShift circularly shifts the samples of f by half the resolution on
// each axis so the zero-frequency bin moves from pixel (0, 0) to
// (XRes/2, YRes/2). On even-sized axes the shift is involutive.
func centerShift(f *Field) {
	w := f.XRes
	h := f.YRes
	shX := w / 2
	shY := h / 2
	out := make([]float64, len(f.Samples))
	for row := 0; row < h; row++ {
		dstRow := (row + shY) % h
		for col := 0; col < w; col++ {
			out[dstRow*w+(col+shX)%w] = f.Value(col, row)
		}
	}
	f.Samples = out
}
