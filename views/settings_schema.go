package views

import (
	"fmt"
	"strings"
)

// OutputFormat identifies a settings file encoding.
type OutputFormat int

const (
	FormatDat OutputFormat = iota
	FormatXLSX
)

var formatNames = map[OutputFormat]string{
	FormatDat:  "dat",
	FormatXLSX: "xlsx",
}

func (f OutputFormat) String() string {
	if n, ok := formatNames[f]; ok {
		return n
	}
	return "unknown"
}

// ParseOutputFormat accepts the names above, case-insensitively.
func ParseOutputFormat(s string) (OutputFormat, error) {
	for f, n := range formatNames {
		if strings.EqualFold(s, n) {
			return f, nil
		}
	}
	return 0, fmt.Errorf("unknown output format %q (want dat or xlsx)", s)
}

// SettingsColumns is the column order shared by every format.
var SettingsColumns = []string{"name", "material", "xsize[m]", "ysize[m]"}

// SettingsSheet is the worksheet name used by the xlsx format.
const SettingsSheet = "Collimator Settings"
