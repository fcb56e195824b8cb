package template

import "github.com/fixhub/estimator-cli/internal/model"

// Defaults returns the built-in template seed set. Keywords are used for
// category matching by the wider marketplace; CommonMaterials drive the
// estimator's completeness check.
func Defaults() []model.MaterialTemplate {
	return []model.MaterialTemplate{
		{
			ServiceType: "plumbing",
			Keywords:    []string{"leak", "pipe", "faucet", "drain", "toilet", "sink", "water heater"},
			CommonMaterials: []model.ExtractedMaterial{
				{
					Category:       model.CategoryPlumbing,
					Name:           "copper pipe",
					Quantity:       1,
					Unit:           "ft",
					Specifications: []string{"1/2 inch", "type L"},
					EstimatedSize:  model.SizeMedium,
					Quality:        model.QualityMidGrade,
				},
				{
					Category:       model.CategoryPlumbing,
					Name:           "pipe fittings",
					Quantity:       4,
					Unit:           "each",
					Specifications: []string{"compression"},
					EstimatedSize:  model.SizeSmall,
					Quality:        model.QualityMidGrade,
				},
				{
					Category:       model.CategoryHardware,
					Name:           "plumber's tape",
					Quantity:       1,
					Unit:           "roll",
					Specifications: []string{"PTFE"},
					EstimatedSize:  model.SizeSmall,
					Quality:        model.QualityBasic,
				},
			},
		},
		{
			ServiceType: "electrical",
			Keywords:    []string{"outlet", "switch", "breaker", "wiring", "light", "panel"},
			CommonMaterials: []model.ExtractedMaterial{
				{
					Category:       model.CategoryElectrical,
					Name:           "romex cable",
					Quantity:       25,
					Unit:           "ft",
					Specifications: []string{"12/2 AWG"},
					EstimatedSize:  model.SizeMedium,
					Quality:        model.QualityMidGrade,
				},
				{
					Category:       model.CategoryElectrical,
					Name:           "duplex outlet",
					Quantity:       2,
					Unit:           "each",
					Specifications: []string{"15A", "tamper resistant"},
					EstimatedSize:  model.SizeSmall,
					Quality:        model.QualityMidGrade,
				},
				{
					Category:       model.CategoryHardware,
					Name:           "wire nuts",
					Quantity:       10,
					Unit:           "each",
					Specifications: []string{},
					EstimatedSize:  model.SizeSmall,
					Quality:        model.QualityBasic,
				},
			},
		},
		{
			ServiceType: "painting",
			Keywords:    []string{"paint", "wall", "ceiling", "primer", "trim"},
			CommonMaterials: []model.ExtractedMaterial{
				{
					Category:       model.CategoryPaint,
					Name:           "interior latex paint",
					Quantity:       2,
					Unit:           "gallon",
					Specifications: []string{"eggshell"},
					EstimatedSize:  model.SizeMedium,
					Quality:        model.QualityMidGrade,
				},
				{
					Category:       model.CategoryPaint,
					Name:           "primer",
					Quantity:       1,
					Unit:           "gallon",
					Specifications: []string{"stain blocking"},
					EstimatedSize:  model.SizeMedium,
					Quality:        model.QualityMidGrade,
				},
				{
					Category:       model.CategoryTools,
					Name:           "roller kit",
					Quantity:       1,
					Unit:           "each",
					Specifications: []string{"9 inch"},
					EstimatedSize:  model.SizeSmall,
					Quality:        model.QualityBasic,
				},
			},
		},
	}
}
