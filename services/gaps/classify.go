package gaps

import (
	"strings"

	"collimator-gaps/models"
)

// Classify derives rank and axis from a collimator name.
//
// The rules are plain substring checks on the lower-cased name:
//   - "tert" anywhere makes it tertiary, which wins over "prim".
//   - "prim" makes it primary; neither makes it secondary.
//   - the letter "x" anywhere makes it horizontal, otherwise vertical.
//
// The "x" test is literal, so a name like "TCSG.AXB" is horizontal even if the
// x is unrelated to the plane. Existing lattices depend on this.
func Classify(name string) models.Classification {
	n := strings.ToLower(name)

	c := models.Classification{Rank: models.Secondary, Axis: models.Vertical}
	switch {
	case strings.Contains(n, "tert"):
		c.Rank = models.Tertiary
	case strings.Contains(n, "prim"):
		c.Rank = models.Primary
	}
	if strings.Contains(n, "x") {
		c.Axis = models.Horizontal
	}
	return c
}
