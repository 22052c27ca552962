// Package gaps turns optics rows into collimator jaw settings.
package gaps

import (
	"collimator-gaps/models"
	"collimator-gaps/utils"
)

// Calculator applies sigma multipliers and materials to collimators found in
// an optics table. It holds no state between calls.
type Calculator struct {
	sigmas    utils.SigmaConfig
	materials utils.MaterialConfig
	log       *utils.Logger
}

// NewCalculator builds a calculator for the given sigma set and materials.
func NewCalculator(sigmas utils.SigmaConfig, materials utils.MaterialConfig, log *utils.Logger) *Calculator {
	if log == nil {
		log = utils.L()
	}
	return &Calculator{sigmas: sigmas, materials: materials, log: log}
}

// Multipliers returns the sigma multipliers for the x and y jaws.
// Tertiary collimators close both jaws; the others open the jaw that is not
// in their plane.
func (c *Calculator) Multipliers(cl models.Classification) (x, y float64) {
	var sig float64
	switch cl.Rank {
	case models.Tertiary:
		return c.sigmas.Tertiary, c.sigmas.Tertiary
	case models.Primary:
		sig = c.sigmas.Primary
	default:
		sig = c.sigmas.Secondary
	}

	x, y = c.sigmas.Open, c.sigmas.Open
	if cl.Axis == models.Horizontal {
		x = sig
	} else {
		y = sig
	}
	return x, y
}

// Material returns the jaw material for a rank.
func (c *Calculator) Material(r models.Rank) string {
	switch r {
	case models.Tertiary:
		return c.materials.Tertiary
	case models.Primary:
		return c.materials.Primary
	}
	return c.materials.Secondary
}

// Compute builds one record per row of type elementType, in table order.
// Any failure aborts the whole computation.
func (c *Calculator) Compute(t *models.OpticsTable, elementType string) ([]models.CollimatorRecord, error) {
	rows := t.ElementsOfType(elementType)
	if len(rows) == 0 {
		c.log.Warn("no elements of type %s in optics table", elementType)
		return nil, nil
	}

	out := make([]models.CollimatorRecord, 0, len(rows))
	for _, row := range rows {
		rec, err := c.ComputeRow(t, row)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

// ComputeRow builds the record for a single collimator row, evaluating the
// beam size at the row immediately upstream of it.
func (c *Calculator) ComputeRow(t *models.OpticsTable, row models.OpticsRow) (models.CollimatorRecord, error) {
	name := row.Name()

	up, err := t.PreviousRow(row.Index)
	if err != nil {
		return models.CollimatorRecord{}, models.Annotate(err, name, "")
	}
	sigx, err := up.Float(models.ColSigmaX)
	if err != nil {
		return models.CollimatorRecord{}, models.Annotate(err, name, models.ColSigmaX)
	}
	sigy, err := up.Float(models.ColSigmaY)
	if err != nil {
		return models.CollimatorRecord{}, models.Annotate(err, name, models.ColSigmaY)
	}

	cl := Classify(name)
	xMult, yMult := c.Multipliers(cl)
	rec := models.CollimatorRecord{
		Name:     name,
		Material: c.Material(cl.Rank),
		XGap:     xMult * sigx,
		YGap:     yMult * sigy,
		Class:    cl,
		XSigmas:  xMult,
		YSigmas:  yMult,
		Upstream: up.Name(),
		RowIndex: row.Index,
	}

	c.log.Debug("%s  class=%s  upstream=%s  sigx=%g  sigy=%g", name, cl, up.Name(), sigx, sigy)
	c.log.Debug("%s  x sigmas=%g  y sigmas=%g  xhgap=%g  yhgap=%g  material=%s",
		name, xMult, yMult, rec.XGap, rec.YGap, rec.Material)
	return rec, nil
}
