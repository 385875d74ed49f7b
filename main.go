package main

import (
	"fmt"
	"image/color"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"github.com/bob-anderson-ok/HCPcalibration/lattice"
)

// !!!!! This MUST match the app name given in the run configuration !!!!!
const version = "1_0_0"

// !!!!! This MUST match the app name given in the run configuration !!!!!

// Preference keys for the settings that survive between runs.
const (
	prefLower   = "lower"
	prefUpper   = "upper"
	prefLattice = "lattice_constant"
	prefRadius  = "search_radius"
)

// tappableImage wraps a canvas image so that clicks on the spectrum display
// reach the session as fractional (0..1) positions.
type tappableImage struct {
	widget.BaseWidget
	img      *canvas.Image
	onTapped func(fracX, fracY float64)
}

func newTappableImage(img *canvas.Image, onTapped func(fracX, fracY float64)) *tappableImage {
	t := &tappableImage{img: img, onTapped: onTapped}
	t.ExtendBaseWidget(t)
	return t
}

func (t *tappableImage) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(t.img)
}

func (t *tappableImage) Tapped(ev *fyne.PointEvent) {
	size := t.Size()
	if size.Width <= 0 || size.Height <= 0 {
		return
	}
	t.onTapped(float64(ev.Position.X/size.Width), float64(ev.Position.Y/size.Height))
}

func main() {

	// We supply an ID (hopefully unique) because we need the preferences API
	myApp := app.NewWithID("com.gmail.ok.anderson.bob.hcpcal")

	args := os.Args

	if len(args) != 2 {
		fmt.Println("\n\tWrong number of arguments.\n\tUsage: HCPcalibration <parameter-file>")
		os.Exit(1)
	}

	path := args[1]

	// Read the Json5 (or Json) parameter file
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Println(fmt.Errorf("\n\tAttempt to read input file %q failed: %w\n", path, err))
		os.Exit(2)
	}

	job, msg, ok := parseJobFile(data)
	if !ok {
		fmt.Println(msg)
		os.Exit(3)
	}

	// Check for user wanting printout of the complete parameter file
	if job.ShowInput {
		fmt.Printf("%s", "\nPrintout of complete parameter file contents...\n")
		fmt.Println(string(data))
	}

	// The input raster is the one hard precondition. A missing or unreadable
	// image aborts here, before any UI comes up.
	field, err := LoadGray16Field(job.PathToImage, job.ImageWidthMeters, job.ImageHeightMeters)
	if err != nil {
		fmt.Println(fmt.Errorf("\n\tAttempt to read image %q failed: %w\n", job.PathToImage, err))
		os.Exit(4)
	}

	if job.Title == "" {
		job.Title = strings.TrimSuffix(filepath.Base(job.PathToImage), filepath.Ext(job.PathToImage))
	}

	fmt.Printf("\nVersion %s\n\n", version)
	fmt.Printf("Loaded %q: %dx%d pixels, %.4g x %.4g m\n",
		job.PathToImage, field.XRes, field.YRes, field.XReal, field.YReal)

	prefs := myApp.Preferences()
	sessionArgs := lattice.DefaultArgs()
	sessionArgs.Lower = prefs.FloatWithFallback(prefLower, 0.0)
	sessionArgs.Upper = prefs.FloatWithFallback(prefUpper, 0.0)
	sessionArgs.Lattice = prefs.FloatWithFallback(prefLattice, lattice.DefaultLattice)
	sessionArgs.Radius = prefs.IntWithFallback(prefRadius, lattice.DefaultRadius)
	if job.LatticeConstant > 0 { // The parameter file wins over the saved setting
		sessionArgs.Lattice = job.LatticeConstant
	}

	s := lattice.NewSession(field, sessionArgs)
	if s.Args.Lower == s.Args.Upper { // First run, or degenerate saved bounds
		s.SetFullRange()
	}

	saveSettings := func() {
		prefs.SetFloat(prefLower, s.Args.Lower)
		prefs.SetFloat(prefUpper, s.Args.Upper)
		prefs.SetFloat(prefLattice, s.Args.Lattice)
		prefs.SetInt(prefRadius, s.Args.Radius)
	}

	w := myApp.NewWindow(fmt.Sprintf("HCP lattice calibration - %s", job.Title))
	w.Resize(fyne.Size{Height: 800, Width: 1200})
	w.SetOnClosed(saveSettings) // settings persist on accept and on cancel alike

	displaySize := float32(job.WindowSizePixels)
	img := canvas.NewImageFromImage(FieldToGrayView(s.DisplayField(), s.Args.Lower, s.Args.Upper))
	img.FillMode = canvas.ImageFillStretch
	img.SetMinSize(fyne.NewSize(displaySize, displaySize))

	refreshImage := func() {
		img.Image = FieldToGrayView(s.DisplayField(), s.Args.Lower, s.Args.Upper)
		img.Refresh()
	}

	peak1Label := widget.NewLabel("peak 1: not set")
	peak2Label := widget.NewLabel("peak 2: not set")
	refreshPeaks := func() {
		labels := []*widget.Label{peak1Label, peak2Label}
		peaks := s.Peaks()
		for i, label := range labels {
			if i < len(peaks) {
				label.SetText(fmt.Sprintf("peak %d: (%.4g, %.4g) %s, %.4g",
					i+1, peaks[i].X, peaks[i].Y, s.Spectrum().UnitXY, peaks[i].Z))
			} else {
				label.SetText(fmt.Sprintf("peak %d: not set", i+1))
			}
		}
	}

	xScaleEntry := widget.NewEntry()
	yScaleEntry := widget.NewEntry()
	xWarnMark := canvas.NewText("", color.RGBA{R: 255, A: 255})
	yWarnMark := canvas.NewText("", color.RGBA{R: 255, A: 255})
	warningLabel := canvas.NewText("", color.RGBA{R: 255, A: 255})
	statusLabel := widget.NewLabel("")

	refreshScales := func() {
		if s.Args.XScale > 0 {
			xScaleEntry.SetText(fmt.Sprintf("%.5f", s.Args.XScale))
		} else {
			xScaleEntry.SetText("")
		}
		if s.Args.YScale > 0 {
			yScaleEntry.SetText(fmt.Sprintf("%.5f", s.Args.YScale))
		} else {
			yScaleEntry.SetText("")
		}
		xWarnMark.Text = ""
		yWarnMark.Text = ""
		warningLabel.Text = ""
		if s.Args.XWarning {
			xWarnMark.Text = "!"
		}
		if s.Args.YWarning {
			yWarnMark.Text = "!"
		}
		if s.Args.XWarning || s.Args.YWarning {
			warningLabel.Text = "Warning: the selected peaks give a degenerate solution"
		}
		xWarnMark.Refresh()
		yWarnMark.Refresh()
		warningLabel.Refresh()
	}

	refreshAll := func() {
		refreshImage()
		refreshPeaks()
		refreshScales()
	}

	tappable := newTappableImage(img, func(fracX, fracY float64) {
		d := s.DisplayField()
		s.AddPoint(lattice.Point{X: fracX * d.XReal, Y: fracY * d.YReal})
		refreshPeaks()
		refreshScales()
		statusLabel.SetText("")
	})

	lowerEntry := widget.NewEntry()
	lowerEntry.SetText(fmt.Sprintf("%.6g", s.Args.Lower))
	lowerEntry.OnSubmitted = func(text string) {
		v, err := strconv.ParseFloat(text, 64)
		if err == nil {
			s.SetLower(v)
			refreshImage()
		}
		lowerEntry.SetText(fmt.Sprintf("%.6g", s.Args.Lower))
	}

	upperEntry := widget.NewEntry()
	upperEntry.SetText(fmt.Sprintf("%.6g", s.Args.Upper))
	upperEntry.OnSubmitted = func(text string) {
		v, err := strconv.ParseFloat(text, 64)
		if err == nil {
			s.SetUpper(v)
			refreshImage()
		}
		upperEntry.SetText(fmt.Sprintf("%.6g", s.Args.Upper))
	}

	fullRangeButton := widget.NewButton("Set to Full Range", func() {
		s.SetFullRange()
		lowerEntry.SetText(fmt.Sprintf("%.6g", s.Args.Lower))
		upperEntry.SetText(fmt.Sprintf("%.6g", s.Args.Upper))
		refreshImage()
	})

	zoomRadio := widget.NewRadioGroup([]string{"1x", "2x"}, func(selected string) {
		level := lattice.Zoom1
		if selected == "2x" {
			level = lattice.Zoom2
		}
		s.SetZoom(level)
		refreshAll()
	})
	zoomRadio.Horizontal = true
	zoomRadio.Selected = "1x"

	radiusOptions := make([]string, lattice.MaxRadius+1)
	for i := range radiusOptions {
		radiusOptions[i] = strconv.Itoa(i)
	}
	radiusSelect := widget.NewSelect(radiusOptions, func(selected string) {
		n, err := strconv.Atoi(selected)
		if err == nil {
			s.SetRadius(n)
			refreshPeaks()
			refreshScales()
		}
	})
	radiusSelect.Selected = strconv.Itoa(s.Args.Radius)

	latticeEntry := widget.NewEntry()
	latticeEntry.SetText(fmt.Sprintf("%.4g", s.Args.Lattice))
	latticeEntry.OnSubmitted = func(text string) {
		v, err := strconv.ParseFloat(text, 64)
		if err == nil && s.SetLattice(v) {
			refreshScales()
		}
		latticeEntry.SetText(fmt.Sprintf("%.4g", s.Args.Lattice))
	}

	xScaleEntry.OnSubmitted = func(text string) {
		v, err := strconv.ParseFloat(text, 64)
		if err == nil {
			s.SetXScale(v) // only positive entries are applied
		}
		refreshScales()
	}
	yScaleEntry.OnSubmitted = func(text string) {
		v, err := strconv.ParseFloat(text, 64)
		if err == nil {
			s.SetYScale(v)
		}
		refreshScales()
	}

	clearButton := widget.NewButton("Clear Points", func() {
		s.ClearPoints()
		refreshPeaks()
		refreshScales()
	})

	applyButton := widget.NewButton("Apply", func() {
		if !s.CanCalibrate() {
			statusLabel.SetText("Pick both lattice peaks, or enter both scale factors.")
			return
		}

		out, meta := s.Apply(job.Metadata, job.Title)

		outPath := job.PathForOutputImage
		if outPath == "" {
			base := strings.TrimSuffix(job.PathToImage, filepath.Ext(job.PathToImage))
			outPath = base + "_calibrated.png"
		}

		img16, err := FieldToGray16Data(out, gray16FullScale)
		if err != nil {
			statusLabel.SetText(fmt.Sprintf("creation of the output raster failed: %v", err))
			return
		}
		if err := SaveGray16PNG(outPath, img16); err != nil {
			statusLabel.SetText(fmt.Sprintf("writing of %q failed: %v", outPath, err))
			return
		}
		sidecar := outPath + ".json"
		if err := WriteMetadataSidecar(sidecar, meta); err != nil {
			statusLabel.SetText(fmt.Sprintf("writing of %q failed: %v", sidecar, err))
			return
		}

		log.Printf("calibrate: %q -> %q (X %s, Y %s)",
			job.PathToImage, outPath, meta["X Scaling Factor"], meta["Y Scaling Factor"])
		statusLabel.SetText(fmt.Sprintf("Calibrated image written to %q", outPath))
		saveSettings()

		// With both lattice peaks available we can also show the profile
		// through them.
		if peaks := s.Peaks(); len(peaks) == lattice.MaxPoints {
			plotImage, err := makeProfilePlotImage(s.Spectrum(), peaks[0], peaks[1], 1200, 500)
			if err != nil {
				log.Printf("profile plot failed: %v", err)
				return
			}
			plotImg := canvas.NewImageFromImage(plotImage)
			plotImg.FillMode = canvas.ImageFillContain
			plotImg.SetMinSize(fyne.NewSize(1200, 500))

			w2 := myApp.NewWindow("Spectrum profile through the peaks")
			w2.SetContent(container.NewCenter(plotImg))
			w2.Resize(fyne.NewSize(950, 550))
			w2.Show()
		}
	})

	cancelButton := widget.NewButton("Cancel", func() {
		w.Close() // SetOnClosed persists the settings
	})

	controls := container.NewVBox(
		widget.NewLabel("Zoom"),
		zoomRadio,
		widget.NewLabel("Display range"),
		lowerEntry,
		upperEntry,
		fullRangeButton,
		widget.NewLabel("Peak search radius (px)"),
		radiusSelect,
		widget.NewLabel("Lattice constant (m)"),
		latticeEntry,
		peak1Label,
		peak2Label,
		clearButton,
		widget.NewLabel("X scale"),
		container.NewBorder(nil, nil, nil, xWarnMark, xScaleEntry),
		widget.NewLabel("Y scale"),
		container.NewBorder(nil, nil, nil, yWarnMark, yScaleEntry),
		warningLabel,
		applyButton,
		cancelButton,
		statusLabel,
	)

	w.SetContent(container.NewBorder(nil, nil, controls, nil, container.NewCenter(tappable)))
	w.CenterOnScreen()
	w.ShowAndRun()
}
