package estimator

import "github.com/fixhub/estimator-cli/internal/model"

const (
	confidenceBase = 70

	// Count-based thoroughness bonus: two thresholds, +10 each.
	countBonusThresholdLow  = 5
	countBonusThresholdHigh = 10

	// Maximum bonus for full overlap with the template's categories.
	templateOverlapWeight = 20

	// Maximum penalty when every material lacks specifications.
	missingSpecsWeight = 30
)

// Confidence blends material-count thoroughness, template-category overlap,
// and specification completeness into a 0-100 score. The template may be
// nil (absence skips the overlap bonus).
func Confidence(materials []model.ExtractedMaterial, tpl *model.MaterialTemplate) int {
	score := float64(confidenceBase)

	if len(materials) > countBonusThresholdLow {
		score += 10
	}
	if len(materials) > countBonusThresholdHigh {
		score += 10
	}

	if tpl != nil {
		score += templateOverlapWeight * overlapRatio(materials, tpl)
	}

	if len(materials) > 0 {
		incomplete := 0
		for _, m := range materials {
			if len(m.Specifications) == 0 {
				incomplete++
			}
		}
		score -= missingSpecsWeight * float64(incomplete) / float64(len(materials))
	}

	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return int(score)
}

// overlapRatio is the fraction of the template's material categories also
// present in the extracted list. 0 when the template has no categories.
func overlapRatio(materials []model.ExtractedMaterial, tpl *model.MaterialTemplate) float64 {
	tplCategories := tpl.Categories()
	if len(tplCategories) == 0 {
		return 0
	}

	extracted := model.Categories(materials)
	matched := 0
	for cat := range tplCategories {
		if extracted[cat] {
			matched++
		}
	}
	return float64(matched) / float64(len(tplCategories))
}
