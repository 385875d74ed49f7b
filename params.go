package main

import json "github.com/KevinWang15/go-json5"

// CalibrationJob holds everything the parameter file says about one input
// raster: where it is, its physical size, and how the output should be
// labeled and written.
type CalibrationJob struct {
	PathToImage        string // 16-bit grayscale png of the scan
	PathForOutputImage string // optional; default derived from PathToImage
	ImageWidthMeters   float64
	ImageHeightMeters  float64
	Title              string
	LatticeConstant    float64 // optional; overrides the persisted setting
	Metadata           map[string]string
	WindowSizePixels   int
	ShowInput          bool
}

func getLeafValue(jsonTable map[string]interface{}, path ...string) (interface{}, bool) {
	var cur interface{} = jsonTable
	for _, p := range path {
		m, ok := cur.(map[string]interface{})
		if !ok {
			return nil, false
		}
		cur, ok = m[p]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

func parseJobFile(data []byte) (*CalibrationJob, string, bool) {
	var jsonTable map[string]interface{}
	if err := json.Unmarshal(data, &jsonTable); err != nil {
		return nil, "parameter file is not valid json5: " + err.Error(), false
	}
	var job CalibrationJob
	msg, ok := validateJsonFileAndFillJob(jsonTable, &job)
	return &job, msg, ok
}

func validateJsonFileAndFillJob(jsonTable map[string]interface{}, job *CalibrationJob) (string, bool) {
	msg := "No problem found in json file" // Initialize msg to presumed success.

	showInput, ok := getLeafValue(jsonTable, "show_input_bool")
	if !ok {
		job.ShowInput = false // default to false if this field is missing
	} else {
		job.ShowInput, ok = showInput.(bool)
		if !ok {
			msg = "show_input_bool: is not a bool"
			return msg, false
		}
	}

	windowSize, ok := getLeafValue(jsonTable, "window_size_pixels")
	if !ok {
		job.WindowSizePixels = 500 // Default to 500 pixels if this field is missing
	} else {
		wSize, ok := windowSize.(float64)
		if !ok {
			msg = "window_size_pixels: is not a float64"
			return msg, false
		}
		job.WindowSizePixels = int(wSize)
	}

	filePath, ok := getLeafValue(jsonTable, "path_to_image")
	if !ok {
		msg = "path_to_image: not found"
		return msg, false
	}
	job.PathToImage, ok = filePath.(string)
	if !ok {
		msg = "path_to_image: is not a string"
		return msg, false
	}
	if job.PathToImage == "" {
		msg = "path_to_image: is empty"
		return msg, false
	}

	filePath, ok = getLeafValue(jsonTable, "path_for_output_image")
	if ok {
		job.PathForOutputImage, ok = filePath.(string)
		if !ok {
			msg = "path_for_output_image: is not a string"
			return msg, false
		}
	}

	title, ok := getLeafValue(jsonTable, "title")
	if ok {
		job.Title, ok = title.(string)
		if !ok {
			msg = "title: is not a string"
			return msg, false
		}
	}

	width, ok := getLeafValue(jsonTable, "image_width_meters")
	if !ok {
		msg = "image_width_meters: not found"
		return msg, false
	}
	job.ImageWidthMeters, ok = width.(float64)
	if !ok {
		msg = "image_width_meters: is not a float64"
		return msg, false
	}
	if job.ImageWidthMeters <= 0 {
		msg = "image_width_meters: must be positive"
		return msg, false
	}

	height, ok := getLeafValue(jsonTable, "image_height_meters")
	if !ok {
		msg = "image_height_meters: not found"
		return msg, false
	}
	job.ImageHeightMeters, ok = height.(float64)
	if !ok {
		msg = "image_height_meters: is not a float64"
		return msg, false
	}
	if job.ImageHeightMeters <= 0 {
		msg = "image_height_meters: must be positive"
		return msg, false
	}

	latticeConst, ok := getLeafValue(jsonTable, "lattice_constant_meters")
	if ok { // We allow this field to be missing - the persisted setting is used instead
		job.LatticeConstant, ok = latticeConst.(float64)
		if !ok {
			msg = "lattice_constant_meters: is not a float64"
			return msg, false
		}
		if job.LatticeConstant <= 0 {
			msg = "lattice_constant_meters: must be positive"
			return msg, false
		}
	}

	// Check to see if a metadata group is present --- it is optional. Every
	// entry must be a string; the pairs are copied onto the output sidecar.
	metaGroup, ok := getLeafValue(jsonTable, "metadata")
	if ok {
		table, ok := metaGroup.(map[string]interface{})
		if !ok {
			msg = "metadata: is not a group of string entries"
			return msg, false
		}
		job.Metadata = make(map[string]string, len(table))
		for k, v := range table {
			s, ok := v.(string)
			if !ok {
				msg = "metadata." + k + ": is not a string"
				return msg, false
			}
			job.Metadata[k] = s
		}
	}

	return msg, true
}
