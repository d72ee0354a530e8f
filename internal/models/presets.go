package models

// QualityPreset bundles the sampler parameters behind the simple form's
// quality selector.
type QualityPreset struct {
	Name        string
	Steps       int
	CfgStrength float64
}

// QualityPresets mirrors the server's presets for simple mode.
var QualityPresets = []QualityPreset{
	{Name: "fast", Steps: 32, CfgStrength: 3.5},
	{Name: "balanced", Steps: 56, CfgStrength: 3.8},
	{Name: "high", Steps: 72, CfgStrength: 4.0},
}

// PresetByName returns the named preset, falling back to balanced.
func PresetByName(name string) QualityPreset {
	for _, p := range QualityPresets {
		if p.Name == name {
			return p
		}
	}
	return QualityPresets[1]
}
