// Package template manages per-service-category reference material lists
// used to sanity-check extraction completeness.
package template

import (
	"context"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/fixhub/estimator-cli/internal/model"
	"github.com/fixhub/estimator-cli/internal/store"
)

// Service exposes template lookup and administration over the store.
type Service struct {
	store store.Store
}

// NewService creates a template service backed by the given store.
func NewService(st store.Store) *Service {
	return &Service{store: st}
}

// SeedDefaults idempotently upserts the built-in template set, keyed by
// service type. Safe to call repeatedly.
func (s *Service) SeedDefaults(ctx context.Context) (int, error) {
	defaults := Defaults()
	for i := range defaults {
		if err := s.store.UpsertTemplate(ctx, &defaults[i]); err != nil {
			return i, eris.Wrapf(err, "template: seed %s", defaults[i].ServiceType)
		}
	}
	zap.L().Info("template: defaults seeded", zap.Int("count", len(defaults)))
	return len(defaults), nil
}

// FindByServiceType does an exact-key lookup. Absence returns (nil, nil),
// an expected outcome rather than an error.
func (s *Service) FindByServiceType(ctx context.Context, serviceType string) (*model.MaterialTemplate, error) {
	return s.store.GetTemplate(ctx, strings.ToLower(strings.TrimSpace(serviceType)))
}

// Upsert replaces the template for its service type key.
func (s *Service) Upsert(ctx context.Context, tpl *model.MaterialTemplate) error {
	if strings.TrimSpace(tpl.ServiceType) == "" {
		return eris.New("template: service type is required")
	}
	tpl.ServiceType = strings.ToLower(strings.TrimSpace(tpl.ServiceType))
	return s.store.UpsertTemplate(ctx, tpl)
}

// List returns all templates.
func (s *Service) List(ctx context.Context) ([]model.MaterialTemplate, error) {
	return s.store.ListTemplates(ctx)
}

// templateFile is the YAML shape accepted by LoadFile.
type templateFile struct {
	Templates []struct {
		ServiceType string   `yaml:"service_type"`
		Keywords    []string `yaml:"keywords"`
		Materials   []struct {
			Category       string   `yaml:"category"`
			Name           string   `yaml:"name"`
			Quantity       int      `yaml:"quantity"`
			Unit           string   `yaml:"unit"`
			Specifications []string `yaml:"specifications"`
			EstimatedSize  string   `yaml:"estimated_size"`
			Quality        string   `yaml:"quality"`
			Notes          string   `yaml:"notes"`
		} `yaml:"materials"`
	} `yaml:"templates"`
}

// LoadFile upserts templates from an operator-supplied YAML file. Material
// fields pass through the same normalization as model output.
func (s *Service) LoadFile(ctx context.Context, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, eris.Wrapf(err, "template: read %s", path)
	}

	var file templateFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return 0, eris.Wrapf(err, "template: parse %s", path)
	}

	count := 0
	for _, raw := range file.Templates {
		materials := make([]model.ExtractedMaterial, 0, len(raw.Materials))
		for _, m := range raw.Materials {
			materials = append(materials, model.NewExtractedMaterial(map[string]any{
				"category":       m.Category,
				"name":           m.Name,
				"quantity":       m.Quantity,
				"unit":           m.Unit,
				"specifications": m.Specifications,
				"estimated_size": m.EstimatedSize,
				"quality":        m.Quality,
				"notes":          m.Notes,
			}))
		}
		tpl := &model.MaterialTemplate{
			ServiceType:     raw.ServiceType,
			Keywords:        raw.Keywords,
			CommonMaterials: materials,
		}
		if err := s.Upsert(ctx, tpl); err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}
