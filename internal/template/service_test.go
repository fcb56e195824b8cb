package template

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fixhub/estimator-cli/internal/model"
	"github.com/fixhub/estimator-cli/internal/store"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "templates.db"))
	require.NoError(t, err)
	require.NoError(t, st.Migrate(context.Background()))
	t.Cleanup(func() { st.Close() })
	return NewService(st)
}

func TestSeedDefaults(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	count, err := svc.SeedDefaults(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	all, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	// Seeding again must not duplicate.
	_, err = svc.SeedDefaults(ctx)
	require.NoError(t, err)
	all, err = svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestFindByServiceType(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	_, err := svc.SeedDefaults(ctx)
	require.NoError(t, err)

	tpl, err := svc.FindByServiceType(ctx, "  Plumbing ")
	require.NoError(t, err)
	require.NotNil(t, tpl)
	assert.Equal(t, "plumbing", tpl.ServiceType)
	assert.NotEmpty(t, tpl.CommonMaterials)

	// Absence is a soft outcome, not an error.
	missing, err := svc.FindByServiceType(ctx, "roofing")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestUpsertRequiresServiceType(t *testing.T) {
	svc := newTestService(t)

	err := svc.Upsert(context.Background(), &model.MaterialTemplate{ServiceType: "   "})
	assert.Error(t, err)
}

func TestUpsertLowercasesServiceType(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	tpl := &model.MaterialTemplate{
		ServiceType:     "Roofing",
		Keywords:        []string{"shingle"},
		CommonMaterials: []model.ExtractedMaterial{},
	}
	require.NoError(t, svc.Upsert(ctx, tpl))

	got, err := svc.FindByServiceType(ctx, "roofing")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "roofing", got.ServiceType)
}

const templateYAML = `templates:
  - service_type: Roofing
    keywords: [shingle, gutter]
    materials:
      - category: lumber
        name: cedar shake
        quantity: 0
        unit: bundle
        specifications: [18 inch]
        estimated_size: medium
        quality: premium
      - category: masonry
        name: flashing
`

func TestLoadFile(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	path := filepath.Join(t.TempDir(), "templates.yaml")
	require.NoError(t, os.WriteFile(path, []byte(templateYAML), 0o644))

	count, err := svc.LoadFile(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	tpl, err := svc.FindByServiceType(ctx, "roofing")
	require.NoError(t, err)
	require.NotNil(t, tpl)
	assert.Equal(t, []string{"shingle", "gutter"}, tpl.Keywords)
	require.Len(t, tpl.CommonMaterials, 2)

	// File input passes through the same normalization as model output.
	first := tpl.CommonMaterials[0]
	assert.Equal(t, model.CategoryLumber, first.Category)
	assert.Equal(t, 1, first.Quantity)
	assert.Equal(t, model.QualityPremium, first.Quality)

	second := tpl.CommonMaterials[1]
	assert.Equal(t, model.CategoryOther, second.Category)
	assert.Equal(t, "each", second.Unit)
}

func TestLoadFileMissing(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.LoadFile(context.Background(), filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestDefaultsCoverCoreServices(t *testing.T) {
	defaults := Defaults()
	require.Len(t, defaults, 3)

	byType := make(map[string]model.MaterialTemplate, len(defaults))
	for _, tpl := range defaults {
		byType[tpl.ServiceType] = tpl
		assert.NotEmpty(t, tpl.Keywords)
		assert.NotEmpty(t, tpl.CommonMaterials)
	}
	assert.Contains(t, byType, "plumbing")
	assert.Contains(t, byType, "electrical")
	assert.Contains(t, byType, "painting")
}
