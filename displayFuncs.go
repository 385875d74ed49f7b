package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"

	"github.com/bob-anderson-ok/HCPcalibration/lattice"
)

// Pixel scaling used for the 16-bit data rasters. Loading divides by this,
// writing multiplies, so a load/store round trip preserves the sample values.
const gray16FullScale = 65535.0

// LoadGray16Field reads a 16-bit grayscale png and returns it as a field
// with the given physical extents. Sample values are normalized to [0, 1].
func LoadGray16Field(path string, widthMeters, heightMeters float64) (*lattice.Field, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	img, err := png.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode of %q failed: %w", path, err)
	}

	// We require GRAY16 input to match the well-defined scaling used when we
	// write data rasters ourselves. 8-bit display pngs are not data.
	gray, ok := img.(*image.Gray16)
	if !ok {
		return nil, fmt.Errorf("the image %q is not type GRAY16 (got %s)",
			path, ColorModelString(img.ColorModel()))
	}

	w := gray.Bounds().Dx()
	h := gray.Bounds().Dy()
	field := lattice.NewField(w, h, widthMeters, heightMeters)
	field.UnitXY = lattice.SIUnit{Base: "m", Power: 1}
	for y := 0; y < h; y++ {
		row := y * gray.Stride
		for x := 0; x < w; x++ {
			i := row + 2*x
			// Gray16 Pix is big-endian per pixel: high then low
			v := uint16(gray.Pix[i])<<8 | uint16(gray.Pix[i+1])
			field.SetValue(x, y, float64(v)/gray16FullScale)
		}
	}
	return field, nil
}

// FieldToGray16Data renders a field as a 16-bit grayscale image with fixed
// physical scaling. Mapping: Y16 = round(v * scale), clamped to [0, 65535].
func FieldToGray16Data(f *lattice.Field, scale float64) (*image.Gray16, error) {
	if scale <= 0 {
		return nil, errors.New("scale must be > 0")
	}

	img := image.NewGray16(image.Rect(0, 0, f.XRes, f.YRes))
	for y := 0; y < f.YRes; y++ {
		row := y * img.Stride
		for x := 0; x < f.XRes; x++ {
			v := f.Value(x, y)
			if math.IsNaN(v) || math.IsInf(v, 0) {
				// write 0
				i := row + 2*x
				img.Pix[i], img.Pix[i+1] = 0, 0
				continue
			}

			u := math.Round(v * scale)
			if u < 0 {
				u = 0
			} else if u > 65535 {
				u = 65535
			}
			y16 := uint16(u)

			// Gray16 Pix is big-endian per pixel: high then low
			i := row + 2*x
			img.Pix[i] = uint8(y16 >> 8)
			img.Pix[i+1] = uint8(y16)
		}
	}
	return img, nil
}

// FieldToGrayView renders a field as an 8-bit grayscale display image,
// mapping [lo, hi] to 0..255 and clamping. The bounds come from the
// session's intensity clamp, not from a percentile scan, so the display
// tracks the user's range entries exactly.
func FieldToGrayView(f *lattice.Field, lo, hi float64) *image.Gray {
	if hi < lo {
		lo, hi = hi, lo
	}
	if hi == lo {
		hi = lo + 1 // avoid divide-by-zero; image becomes mostly constant
	}

	img := image.NewGray(image.Rect(0, 0, f.XRes, f.YRes))
	for y := 0; y < f.YRes; y++ {
		row := y * img.Stride
		for x := 0; x < f.XRes; x++ {
			v := f.Value(x, y)
			if math.IsNaN(v) || math.IsInf(v, 0) {
				img.Pix[row+x] = 0
				continue
			}
			t := (v - lo) / (hi - lo) // normalize
			if t < 0 {
				t = 0
			} else if t > 1 {
				t = 1
			}
			img.Pix[row+x] = uint8(math.Round(t * 255.0))
		}
	}
	return img
}

func SaveGray16PNG(filename string, img *image.Gray16) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	return png.Encode(f, img)
}

// WriteMetadataSidecar writes the output metadata next to the calibrated
// raster as plain json so any downstream tool can read it.
func WriteMetadataSidecar(filename string, meta lattice.Metadata) error {
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filename, append(data, '\n'), 0644)
}

func ColorModelString(cm color.Model) string {
	switch cm {
	case color.GrayModel:
		return "GRAY"
	case color.Gray16Model:
		return "GRAY16"
	case color.RGBAModel:
		return "RGBA"
	case color.RGBA64Model:
		return "RGBA64"
	case color.NRGBAModel:
		return "NRGBA"
	case color.NRGBA64Model:
		return "NRGBA64"
	default:
		return "unrecognized color model"
	}
}
