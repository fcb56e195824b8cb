package model

import "time"

// MaterialTemplate holds the reference material list for one service
// category. Seeded at init and upserted by ServiceType; read-only during
// estimation.
type MaterialTemplate struct {
	ID              string              `json:"id"`
	ServiceType     string              `json:"service_type"`
	Keywords        []string            `json:"keywords"`
	CommonMaterials []ExtractedMaterial `json:"common_materials"`
	UsageCount      int                 `json:"usage_count"`
	LastUpdated     time.Time           `json:"last_updated"`
}

// Categories returns the distinct categories of the template's common
// materials.
func (t MaterialTemplate) Categories() map[MaterialCategory]bool {
	return Categories(t.CommonMaterials)
}
