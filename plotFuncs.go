package main

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"gonum.org/v1/plot"

	// Liberation fonts register automatically on import
	_ "gonum.org/v1/plot/font/liberation"

	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/bob-anderson-ok/HCPcalibration/lattice"
)

const profileSampleCount = 512

// makeProfilePlotImage renders the spectrum intensity along the straight
// line through the two refined peaks, extended a quarter of the peak
// separation past each end. The x axis is the spatial frequency distance
// from the first peak.
func makeProfilePlotImage(spectrum *lattice.Field, p1, p2 lattice.Peak, wPx, hPx float64) (image.Image, error) {

	p := plot.New()

	// Modify the font fields directly on existing styles
	p.Title.TextStyle.Font.Typeface = "Liberation"
	p.Title.TextStyle.Font.Variant = "Sans"
	p.Title.TextStyle.Font.Size = vg.Points(12)

	p.X.Label.TextStyle.Font.Typeface = "Liberation"
	p.X.Label.TextStyle.Font.Variant = "Sans"
	p.X.Label.TextStyle.Font.Size = vg.Points(12)

	p.Y.Label.TextStyle.Font.Typeface = "Liberation"
	p.Y.Label.TextStyle.Font.Variant = "Sans"
	p.Y.Label.TextStyle.Font.Size = vg.Points(12)

	p.X.Tick.Label.Font.Typeface = "Liberation"
	p.X.Tick.Label.Font.Variant = "Sans"
	p.X.Tick.Label.Font.Size = vg.Points(10)

	p.Y.Tick.Label.Font.Typeface = "Liberation"
	p.Y.Tick.Label.Font.Variant = "Sans"
	p.Y.Tick.Label.Font.Size = vg.Points(10)

	dx := p2.X - p1.X
	dy := p2.Y - p1.Y
	separation := math.Hypot(dx, dy)
	if separation == 0 {
		separation = spectrum.XMeasure()
	}

	p.Title.Text = "Spectrum profile through the selected peaks"
	p.X.Label.Text = fmt.Sprintf("spatial frequency from peak 1 (%s)", spectrum.UnitXY)
	p.Y.Label.Text = "magnitude"
	p.X.Tick.Marker = StepTicks{Step: separation / 4, Format: "%.3g"}

	p.Add(plotter.NewGrid()) // grid + ticks

	// Data: sample from a quarter separation before peak 1 to a quarter past
	// peak 2, bilinear at fractional pixel positions.
	pts := make(plotter.XYs, profileSampleCount)
	for i := 0; i < profileSampleCount; i++ {
		t := -0.25 + 1.5*float64(i)/float64(profileSampleCount-1)
		fx := p1.X + t*dx
		fy := p1.Y + t*dy
		px := (fx - spectrum.XOff) / spectrum.XMeasure()
		py := (fy - spectrum.YOff) / spectrum.YMeasure()
		pts[i].X = t * separation
		pts[i].Y = spectrum.Interpolate(px, py)
	}

	line, err := plotter.NewLine(pts)
	if err != nil {
		return nil, err
	}
	line.Color = color.RGBA{R: 0, G: 0, B: 255, A: 255} // blue

	p.Add(line)

	// Dashed vertical markers at the two peak positions.
	_, top := spectrum.MinMax()
	for _, marker := range []float64{0, separation} {
		vpts := plotter.XYs{
			{X: marker, Y: 0},
			{X: marker, Y: top},
		}

		vline, err := plotter.NewLine(vpts)
		if err != nil {
			return nil, err
		}

		p.Add(vline)

		vline.Dashes = []vg.Length{
			vg.Points(6), // dash length
			vg.Points(4), // gap length
		}
		vline.Color = color.RGBA{R: 255, G: 0, B: 0, A: 255} // red
	}

	// Render into an in-memory image
	// Choose a "virtual" size in vg units and map to pixels via DPI.
	const dpi = 96
	width := vg.Length(wPx) * vg.Inch / dpi
	height := vg.Length(hPx) * vg.Inch / dpi

	c := vgimg.New(width, height)
	dc := draw.New(c)
	p.Draw(dc)

	return c.Image(), nil
}

type StepTicks struct {
	Step   float64
	Format string
}

func (t StepTicks) Ticks(min, max float64) []plot.Tick {
	var ticks []plot.Tick
	start := math.Ceil(min/t.Step) * t.Step
	for v := start; v <= max; v += t.Step {
		ticks = append(ticks, plot.Tick{
			Value: v,
			Label: fmt.Sprintf(t.Format, v),
		})
	}
	return ticks
}
