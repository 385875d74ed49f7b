package lattice

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCalibrateIdentity(t *testing.T) {
	f := cosineImage(32, 24, 32e-9, 24e-9, [][2]int{{2, 1}})
	out := Calibrate(f, 1.0, 1.0)

	require.Equal(t, f.XRes, out.XRes)
	require.Equal(t, f.YRes, out.YRes)
	require.Equal(t, f.XReal, out.XReal)
	require.Equal(t, f.YReal, out.YReal)
	require.Equal(t, f.Samples, out.Samples)
}

func TestCalibrateRescalesYResolutionAndExtents(t *testing.T) {
	f := NewField(100, 100, 1e-6, 1e-6)
	out := Calibrate(f, 1.0, 1.25)

	require.Equal(t, 100, out.XRes)
	require.Equal(t, 125, out.YRes)
	require.InDelta(t, 1e-6, out.XReal, 1e-18)
	require.InDelta(t, 1.25e-6, out.YReal, 1e-18)
}

func TestCalibrateDoesNotMutateOriginal(t *testing.T) {
	f := cosineImage(16, 16, 16e-9, 16e-9, [][2]int{{3, 0}})
	before := append([]float64(nil), f.Samples...)

	_ = Calibrate(f, 0.9, 1.1)
	require.Equal(t, before, f.Samples)
	require.Equal(t, 16, f.XRes)
	require.InDelta(t, 16e-9, f.XReal, 1e-24)
}

func TestOutputMetadata(t *testing.T) {
	src := Metadata{"Scan Rate": "1.2 Hz"}
	meta := OutputMetadata(src, "graphite 5nm", 1.0317, 0.99456789)

	require.Equal(t, "1.2 Hz", meta["Scan Rate"])
	require.Equal(t, "graphite 5nm", meta["Source Title"])
	require.Equal(t, "1.03170", meta["X Scaling Factor"])
	require.Equal(t, "0.99457", meta["Y Scaling Factor"])

	// The source record itself is duplicated, not shared.
	meta["Scan Rate"] = "changed"
	require.Equal(t, "1.2 Hz", src["Scan Rate"])
}

func TestOutputMetadataNilSource(t *testing.T) {
	meta := OutputMetadata(nil, "untitled", 1.0, 1.0)
	require.Len(t, meta, 3)
	require.Equal(t, "1.00000", meta["X Scaling Factor"])
}
