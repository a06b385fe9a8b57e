package config

// Presets holds ready-made settings per dataset layout. Apply copies the
// non-input fields of a preset over a config.
var Presets = map[string]map[string]*Config{
	"covid": {
		"cases": {
			Reshape: ReshapeConfig{Category: "cases", Form: "wide"},
			Frames:  FramesConfig{Count: "all", Keying: "date"},
			Render:  RenderConfig{Ramp: "OrRd", Norm: "log", Title: "Daily new cases"},
		},
		"cases_smoothed": {
			Reshape: ReshapeConfig{Category: "cases", Form: "wide", Smooth: true},
			Frames:  FramesConfig{Count: "all", Keying: "date"},
			Render:  RenderConfig{Ramp: "OrRd", Norm: "log", Title: "New cases, 7-day average"},
		},
		"deaths": {
			Reshape: ReshapeConfig{Category: "deaths", Form: "wide", Smooth: true},
			Frames:  FramesConfig{Count: "all", Keying: "date"},
			Render:  RenderConfig{Ramp: "Greys", Norm: "log", Title: "Deaths, 7-day average"},
		},
	},
	"long": {
		"weekly": {
			Reshape: ReshapeConfig{Form: "long"},
			Frames:  FramesConfig{Count: "8", Keying: "index"},
			Render:  RenderConfig{Ramp: "Blues", Norm: "linear"},
		},
		"heat": {
			Reshape: ReshapeConfig{Form: "long", Smooth: true},
			Frames:  FramesConfig{Count: "all", Keying: "index"},
			Render:  RenderConfig{Ramp: "heat_r", Norm: "linear"},
		},
	},
}

func GetPreset(dataset, preset string) *Config {
	datasetPresets, ok := Presets[dataset]
	if !ok {
		return nil
	}
	cfg, ok := datasetPresets[preset]
	if !ok {
		return nil
	}
	return cfg
}

func ListPresets(dataset string) []string {
	datasetPresets, ok := Presets[dataset]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(datasetPresets))
	for name := range datasetPresets {
		names = append(names, name)
	}
	return names
}

// Apply overlays the preset's non-empty reshape, frame and render settings.
// A preset can turn smoothing on but never off.
func (c *Config) Apply(p *Config) {
	if p.Reshape.Category != "" {
		c.Reshape.Category = p.Reshape.Category
	}
	if p.Reshape.Form != "" {
		c.Reshape.Form = p.Reshape.Form
	}
	if p.Reshape.Smooth {
		c.Reshape.Smooth = true
	}
	if p.Frames.Count != "" {
		c.Frames.Count = p.Frames.Count
	}
	if p.Frames.Keying != "" {
		c.Frames.Keying = p.Frames.Keying
	}
	if p.Render.Ramp != "" {
		c.Render.Ramp = p.Render.Ramp
	}
	if p.Render.Norm != "" {
		c.Render.Norm = p.Render.Norm
	}
	if p.Render.Title != "" {
		c.Render.Title = p.Render.Title
	}
}
