package model

import "time"

// MaterialEstimate is the aggregate estimation result for one job. At most
// one live estimate exists per JobID; re-running the pipeline for the same
// job replaces it wholesale.
type MaterialEstimate struct {
	ID                 string              `json:"id"`
	JobID              string              `json:"job_id"`
	Materials          []ExtractedMaterial `json:"materials"`
	TotalEstimatedCost float64             `json:"total_estimated_cost"`
	Confidence         int                 `json:"confidence"` // 0-100
	Model              string              `json:"model"`
	ProcessingTime     int64               `json:"processing_time_ms"`
	CreatedAt          time.Time           `json:"created_at"`
	LastUpdated        time.Time           `json:"last_updated"`
}

// Categories returns the distinct material categories present in a material
// list.
func Categories(materials []ExtractedMaterial) map[MaterialCategory]bool {
	set := make(map[MaterialCategory]bool, len(materials))
	for _, m := range materials {
		set[m.Category] = true
	}
	return set
}
