package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fixhub/estimator-cli/internal/model"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	st, err := NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, st.Migrate(context.Background()))
	t.Cleanup(func() { st.Close() })
	return st
}

func sampleEstimate(jobID string) *model.MaterialEstimate {
	return &model.MaterialEstimate{
		JobID: jobID,
		Materials: []model.ExtractedMaterial{
			{
				Category:       model.CategoryPlumbing,
				Name:           "copper pipe",
				Quantity:       2,
				Unit:           "ft",
				Specifications: []string{"1/2 inch"},
				EstimatedSize:  model.SizeMedium,
				Quality:        model.QualityMidGrade,
			},
		},
		TotalEstimatedCost: 30,
		Confidence:         85,
		Model:              "test-model",
		ProcessingTime:     100,
	}
}

func TestSQLiteEstimateRoundTrip(t *testing.T) {
	ctx := context.Background()
	st := newTestSQLiteStore(t)

	saved, err := st.UpsertEstimate(ctx, sampleEstimate("job-1"))
	require.NoError(t, err)
	assert.NotEmpty(t, saved.ID)
	assert.False(t, saved.CreatedAt.IsZero())
	assert.False(t, saved.LastUpdated.IsZero())

	got, err := st.GetEstimate(ctx, "job-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, saved.ID, got.ID)
	assert.Equal(t, "job-1", got.JobID)
	require.Len(t, got.Materials, 1)
	assert.Equal(t, "copper pipe", got.Materials[0].Name)
	assert.Equal(t, []string{"1/2 inch"}, got.Materials[0].Specifications)
	assert.InDelta(t, 30, got.TotalEstimatedCost, 1e-9)
	assert.Equal(t, 85, got.Confidence)
}

func TestSQLiteGetEstimateAbsent(t *testing.T) {
	st := newTestSQLiteStore(t)

	got, err := st.GetEstimate(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSQLiteUpsertEstimateReplaces(t *testing.T) {
	ctx := context.Background()
	st := newTestSQLiteStore(t)

	first, err := st.UpsertEstimate(ctx, sampleEstimate("job-1"))
	require.NoError(t, err)

	updated := sampleEstimate("job-1")
	updated.Confidence = 60
	updated.TotalEstimatedCost = 99
	second, err := st.UpsertEstimate(ctx, updated)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 60, second.Confidence)
	assert.InDelta(t, 99, second.TotalEstimatedCost, 1e-9)

	// Still a single row for the job.
	var count int
	err = st.db.QueryRow(`SELECT COUNT(*) FROM estimates WHERE job_id = ?`, "job-1").Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestSQLiteTemplateRoundTrip(t *testing.T) {
	ctx := context.Background()
	st := newTestSQLiteStore(t)

	tpl := &model.MaterialTemplate{
		ServiceType: "plumbing",
		Keywords:    []string{"leak", "pipe"},
		CommonMaterials: []model.ExtractedMaterial{
			{Category: model.CategoryPlumbing, Name: "copper pipe", Quantity: 1, Unit: "ft", Specifications: []string{}},
		},
	}
	require.NoError(t, st.UpsertTemplate(ctx, tpl))

	got, err := st.GetTemplate(ctx, "plumbing")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.NotEmpty(t, got.ID)
	assert.Equal(t, []string{"leak", "pipe"}, got.Keywords)
	require.Len(t, got.CommonMaterials, 1)
	assert.Equal(t, "copper pipe", got.CommonMaterials[0].Name)
	assert.Zero(t, got.UsageCount)
}

func TestSQLiteGetTemplateAbsent(t *testing.T) {
	st := newTestSQLiteStore(t)

	got, err := st.GetTemplate(context.Background(), "roofing")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSQLiteUpsertTemplateKeepsUsageCount(t *testing.T) {
	ctx := context.Background()
	st := newTestSQLiteStore(t)

	tpl := &model.MaterialTemplate{ServiceType: "plumbing", Keywords: []string{"pipe"}, CommonMaterials: []model.ExtractedMaterial{}}
	require.NoError(t, st.UpsertTemplate(ctx, tpl))
	require.NoError(t, st.IncrementTemplateUsage(ctx, "plumbing"))
	require.NoError(t, st.IncrementTemplateUsage(ctx, "plumbing"))

	// Re-seeding the same template must not reset its usage counter.
	require.NoError(t, st.UpsertTemplate(ctx, tpl))

	got, err := st.GetTemplate(ctx, "plumbing")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 2, got.UsageCount)
}

func TestSQLiteIncrementUsageMissingTemplate(t *testing.T) {
	st := newTestSQLiteStore(t)

	// Best-effort: bumping a nonexistent template is not an error.
	assert.NoError(t, st.IncrementTemplateUsage(context.Background(), "roofing"))
}

func TestSQLiteListTemplatesSorted(t *testing.T) {
	ctx := context.Background()
	st := newTestSQLiteStore(t)

	for _, serviceType := range []string{"painting", "electrical", "plumbing"} {
		tpl := &model.MaterialTemplate{ServiceType: serviceType, Keywords: []string{}, CommonMaterials: []model.ExtractedMaterial{}}
		require.NoError(t, st.UpsertTemplate(ctx, tpl))
	}

	all, err := st.ListTemplates(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "electrical", all[0].ServiceType)
	assert.Equal(t, "painting", all[1].ServiceType)
	assert.Equal(t, "plumbing", all[2].ServiceType)
}
