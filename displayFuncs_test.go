package main

import (
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bob-anderson-ok/HCPcalibration/lattice"
)

func TestGray16RoundTrip(t *testing.T) {
	f := lattice.NewField(4, 3, 4e-9, 3e-9)
	for i := 0; i < 3; i++ {
		for j := 0; j < 4; j++ {
			// Exact multiples of the pixel quantum survive the round trip
			// unchanged.
			f.SetValue(j, i, float64(1000*(i*4+j))/gray16FullScale)
		}
	}

	img, err := FieldToGray16Data(f, gray16FullScale)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "roundtrip.png")
	require.NoError(t, SaveGray16PNG(path, img))

	g, err := LoadGray16Field(path, 4e-9, 3e-9)
	require.NoError(t, err)
	require.Equal(t, f.XRes, g.XRes)
	require.Equal(t, f.YRes, g.YRes)
	require.Equal(t, f.XReal, g.XReal)
	require.Equal(t, f.Samples, g.Samples)
}

func TestLoadGray16FieldRejectsEightBit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gray8.png")
	out, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(out, image.NewGray(image.Rect(0, 0, 2, 2))))
	require.NoError(t, out.Close())

	_, err = LoadGray16Field(path, 1e-9, 1e-9)
	require.ErrorContains(t, err, "not type GRAY16")
}

func TestFieldToGrayViewStretch(t *testing.T) {
	f := lattice.NewField(2, 1, 2e-9, 1e-9)
	f.SetValue(0, 0, 10)
	f.SetValue(1, 0, 20)

	img := FieldToGrayView(f, 10, 20)
	require.Equal(t, uint8(0), img.Pix[0])
	require.Equal(t, uint8(255), img.Pix[1])

	// Swapped bounds behave the same and out-of-range values clamp.
	f.SetValue(0, 0, -5)
	img = FieldToGrayView(f, 20, 10)
	require.Equal(t, uint8(0), img.Pix[0])
	require.Equal(t, uint8(255), img.Pix[1])
}
