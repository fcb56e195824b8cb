package model

import (
	"strings"

	"github.com/rotisserie/eris"
)

// ErrValidation marks a request that is missing required fields. Surfaced to
// the caller before any extraction attempt.
var ErrValidation = eris.New("validation failed")

// ExtractionRequest is the input to the estimation pipeline. Immutable once
// constructed.
type ExtractionRequest struct {
	JobDescription string   `json:"job_description"`
	ServiceType    string   `json:"service_type"`
	Location       string   `json:"location,omitempty"`
	Urgency        string   `json:"urgency,omitempty"`
	Budget         *float64 `json:"budget,omitempty"`
}

// NewExtractionRequest normalizes a raw request: trims whitespace and lowers
// the service type key. Field presence is checked separately via Validate.
func NewExtractionRequest(description, serviceType, location, urgency string, budget *float64) ExtractionRequest {
	return ExtractionRequest{
		JobDescription: strings.TrimSpace(description),
		ServiceType:    strings.ToLower(strings.TrimSpace(serviceType)),
		Location:       strings.TrimSpace(location),
		Urgency:        strings.TrimSpace(urgency),
		Budget:         budget,
	}
}

// Validate reports whether the required fields are present.
func (r ExtractionRequest) Validate() error {
	if r.JobDescription == "" {
		return eris.Wrap(ErrValidation, "job description is required")
	}
	if r.ServiceType == "" {
		return eris.Wrap(ErrValidation, "service type is required")
	}
	return nil
}
