// Package model defines the domain types for the material estimation
// pipeline. Construction from loosely-typed input always normalizes rather
// than failing: model output and request bodies enter the system only
// through these constructors, so downstream code can assume the invariants
// hold.
package model

import (
	"math"
	"strconv"
	"strings"
)

// MaterialCategory classifies a material line item.
type MaterialCategory string

const (
	CategoryPlumbing   MaterialCategory = "plumbing"
	CategoryElectrical MaterialCategory = "electrical"
	CategoryHardware   MaterialCategory = "hardware"
	CategoryLumber     MaterialCategory = "lumber"
	CategoryPaint      MaterialCategory = "paint"
	CategoryTools      MaterialCategory = "tools"
	CategoryOther      MaterialCategory = "other"
)

// MaterialSize is a rough size class for a material.
type MaterialSize string

const (
	SizeSmall  MaterialSize = "small"
	SizeMedium MaterialSize = "medium"
	SizeLarge  MaterialSize = "large"
)

// MaterialQuality is the quality grade of a material.
type MaterialQuality string

const (
	QualityBasic    MaterialQuality = "basic"
	QualityMidGrade MaterialQuality = "mid-grade"
	QualityPremium  MaterialQuality = "premium"
)

// ExtractedMaterial is one line item produced by extraction. Invariants:
// Quantity >= 1, Category/EstimatedSize/Quality within their fixed sets,
// Specifications never nil.
type ExtractedMaterial struct {
	Category       MaterialCategory `json:"category"`
	Name           string           `json:"name"`
	Quantity       int              `json:"quantity"`
	Unit           string           `json:"unit"`
	Specifications []string         `json:"specifications"`
	EstimatedSize  MaterialSize     `json:"estimated_size"`
	Quality        MaterialQuality  `json:"quality"`
	Notes          string           `json:"notes"`
}

// NewExtractedMaterial builds an ExtractedMaterial from a loosely-typed map
// (typically one element of a parsed model response). Every field coerces to
// its invariant; bad shapes never produce an error.
func NewExtractedMaterial(raw map[string]any) ExtractedMaterial {
	return ExtractedMaterial{
		Category:       NormalizeCategory(toString(raw["category"])),
		Name:           stringOr(toString(raw["name"]), "unspecified material"),
		Quantity:       normalizeQuantity(raw["quantity"]),
		Unit:           stringOr(toString(raw["unit"]), "each"),
		Specifications: toStringSlice(raw["specifications"]),
		EstimatedSize:  NormalizeSize(toString(raw["estimated_size"])),
		Quality:        NormalizeQuality(toString(raw["quality"])),
		Notes:          toString(raw["notes"]),
	}
}

// NormalizeCategory coerces any string into the fixed category set; unknown
// values map to CategoryOther.
func NormalizeCategory(s string) MaterialCategory {
	switch MaterialCategory(strings.ToLower(strings.TrimSpace(s))) {
	case CategoryPlumbing:
		return CategoryPlumbing
	case CategoryElectrical:
		return CategoryElectrical
	case CategoryHardware:
		return CategoryHardware
	case CategoryLumber:
		return CategoryLumber
	case CategoryPaint:
		return CategoryPaint
	case CategoryTools:
		return CategoryTools
	default:
		return CategoryOther
	}
}

// NormalizeSize coerces any string into the size set; default medium.
func NormalizeSize(s string) MaterialSize {
	switch MaterialSize(strings.ToLower(strings.TrimSpace(s))) {
	case SizeSmall:
		return SizeSmall
	case SizeLarge:
		return SizeLarge
	default:
		return SizeMedium
	}
}

// NormalizeQuality coerces any string into the quality set; default mid-grade.
func NormalizeQuality(s string) MaterialQuality {
	switch MaterialQuality(strings.ToLower(strings.TrimSpace(s))) {
	case QualityBasic:
		return QualityBasic
	case QualityPremium:
		return QualityPremium
	default:
		return QualityMidGrade
	}
}

// normalizeQuantity clamps any numeric-ish value to an integer >= 1.
func normalizeQuantity(v any) int {
	var n int
	switch q := v.(type) {
	case int:
		n = q
	case int64:
		n = int(q)
	case float64:
		if !math.IsNaN(q) && !math.IsInf(q, 0) {
			n = int(q)
		}
	case string:
		parsed, err := strconv.Atoi(strings.TrimSpace(q))
		if err == nil {
			n = parsed
		}
	}
	if n < 1 {
		return 1
	}
	return n
}

func toString(v any) string {
	s, _ := v.(string)
	return strings.TrimSpace(s)
}

func stringOr(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

// toStringSlice normalizes a specifications value: non-list input becomes an
// empty (non-nil) list; list elements survive only if they are non-empty
// strings.
func toStringSlice(v any) []string {
	out := []string{}
	switch list := v.(type) {
	case []string:
		for _, s := range list {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
	case []any:
		for _, item := range list {
			if s := toString(item); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}
