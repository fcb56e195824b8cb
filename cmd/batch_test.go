package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "jobs.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestParseJobsCSV(t *testing.T) {
	path := writeCSV(t, `job_id,description,service_type,location,urgency,budget
J1,Fix a leaking pipe,Plumbing,Austin,high,500
J2,Rewire the panel,electrical,,,
`)

	jobs, err := parseJobsCSV(path)
	require.NoError(t, err)
	require.Len(t, jobs, 2)

	assert.Equal(t, "J1", jobs[0].JobID)
	assert.Equal(t, "Fix a leaking pipe", jobs[0].Request.JobDescription)
	assert.Equal(t, "plumbing", jobs[0].Request.ServiceType)
	assert.Equal(t, "Austin", jobs[0].Request.Location)
	require.NotNil(t, jobs[0].Request.Budget)
	assert.Equal(t, 500.0, *jobs[0].Request.Budget)

	assert.Equal(t, "J2", jobs[1].JobID)
	assert.Nil(t, jobs[1].Request.Budget)
	assert.Empty(t, jobs[1].Request.Location)
}

func TestParseJobsCSVOptionalColumnsOmitted(t *testing.T) {
	path := writeCSV(t, `job_id,description,service_type
J1,Paint the bedroom,painting
`)

	jobs, err := parseJobsCSV(path)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Nil(t, jobs[0].Request.Budget)
}

func TestParseJobsCSVMissingRequiredColumn(t *testing.T) {
	path := writeCSV(t, `job_id,description
J1,no service type here
`)

	_, err := parseJobsCSV(path)
	assert.Error(t, err)
}

func TestParseJobsCSVMissingFile(t *testing.T) {
	_, err := parseJobsCSV(filepath.Join(t.TempDir(), "absent.csv"))
	assert.Error(t, err)
}
