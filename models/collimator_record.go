package models

// SettingsTitle is the first line of a settings file.
const SettingsTitle = "# Collimator Settings"

// CollimatorRecord holds the jaw settings derived for one collimator.
// Gaps are half-gaps in metres.
type CollimatorRecord struct {
	Name     string  `json:"name"`
	Material string  `json:"material"`
	XGap     float64 `json:"xsize"`
	YGap     float64 `json:"ysize"`

	// Provenance, not serialised.
	Class    Classification `json:"-"`
	XSigmas  float64        `json:"-"`
	YSigmas  float64        `json:"-"`
	Upstream string         `json:"-"`
	RowIndex int            `json:"-"`
}

// SettingsHeader returns the column header fields. Only the name column is padded.
func (CollimatorRecord) SettingsHeader() []string {
	return []string{ljust("name", 10), "material", "xsize[m]", "ysize[m]"}
}

// SettingsRow serialises the record into its tab-separated fields.
func (c *CollimatorRecord) SettingsRow() []string {
	return []string{
		ljust(c.Name, 10),
		ljust(c.Material, 15),
		sci(c.XGap, 8),
		sci(c.YGap, 8),
	}
}
