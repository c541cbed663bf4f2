package keystone

import (
	"math"

	"github.com/tnicklin/keystonescan/models"
)

const (
	primaryWeight   = 1.5
	secondaryWeight = 0.5
)

// CompositeTotal weights the higher of the two affix scores by 1.5 and the
// lower by 0.5, rounding half to even.
func CompositeTotal(fortified, tyrannical float64) int {
	high := math.Max(fortified, tyrannical)
	low := math.Min(fortified, tyrannical)
	return int(math.RoundToEven(primaryWeight*high + secondaryWeight*low))
}

// WithTotal returns a copy of r with Total recomputed.
func WithTotal(r models.Rating) models.Rating {
	r.Total = CompositeTotal(r.Fortified, r.Tyrannical)
	return r
}

func setAffixScore(r models.Rating, affix models.Affix, score float64) models.Rating {
	switch affix {
	case models.AffixFortified:
		r.Fortified = score
	case models.AffixTyrannical:
		r.Tyrannical = score
	}
	return r
}
