package estimator

import "github.com/fixhub/estimator-cli/internal/model"

// categoryBaseCost maps a material category to its per-unit base cost in
// dollars. Unknown categories use the "other" rate via normalization.
var categoryBaseCost = map[model.MaterialCategory]float64{
	model.CategoryPlumbing:   15,
	model.CategoryElectrical: 25,
	model.CategoryHardware:   5,
	model.CategoryLumber:     8,
	model.CategoryPaint:      12,
	model.CategoryTools:      20,
	model.CategoryOther:      10,
}

// qualityMultiplier returns the cost multiplier for a quality grade:
// premium 1.5, basic 0.7, anything else (including mid-grade) 1.0.
func qualityMultiplier(q model.MaterialQuality) float64 {
	switch q {
	case model.QualityPremium:
		return 1.5
	case model.QualityBasic:
		return 0.7
	default:
		return 1.0
	}
}

// MaterialCost computes the cost contribution of a single material:
// quantity x category base cost x quality multiplier.
func MaterialCost(m model.ExtractedMaterial) float64 {
	base, ok := categoryBaseCost[m.Category]
	if !ok {
		base = categoryBaseCost[model.CategoryOther]
	}
	return float64(m.Quantity) * base * qualityMultiplier(m.Quality)
}

// TotalCost sums the cost contributions of all materials. Always
// non-negative and linear in quantity.
func TotalCost(materials []model.ExtractedMaterial) float64 {
	var total float64
	for _, m := range materials {
		total += MaterialCost(m)
	}
	return total
}
