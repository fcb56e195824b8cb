package model

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewExtractionRequestNormalizes(t *testing.T) {
	budget := 500.0
	req := NewExtractionRequest("  Fix the sink  ", " Plumbing ", " Austin, TX ", "urgent", &budget)

	assert.Equal(t, "Fix the sink", req.JobDescription)
	assert.Equal(t, "plumbing", req.ServiceType)
	assert.Equal(t, "Austin, TX", req.Location)
	assert.Equal(t, "urgent", req.Urgency)
	require.NotNil(t, req.Budget)
	assert.Equal(t, 500.0, *req.Budget)
}

func TestValidateRequiresDescriptionAndServiceType(t *testing.T) {
	valid := NewExtractionRequest("fix it", "plumbing", "", "", nil)
	assert.NoError(t, valid.Validate())

	noDesc := NewExtractionRequest("   ", "plumbing", "", "", nil)
	err := noDesc.Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrValidation))

	noService := NewExtractionRequest("fix it", "", "", "", nil)
	err = noService.Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrValidation))
}
