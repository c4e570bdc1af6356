package model

import (
	"fmt"
	"path/filepath"

	"github.com/hacks11/inventory-health/backend-go/internal/domain"
	"github.com/rs/zerolog/log"
)

// Predictor variants. The single variant scores the tabular model directly;
// the ensemble variant combines two expert predictors through a meta
// combiner.
const (
	VariantSingle   = "single"
	VariantEnsemble = "ensemble"
)

// Artifact file names inside the model directory. The tabular and sequence
// experts are independently trained exports; the meta combiner was fit on
// their outputs.
const (
	tabularArtifactFile  = "xgboost_simple.model.json"
	sequenceArtifactFile = "lstm_distilled.model.json"
	metaArtifactFile     = "meta_linear.model.json"
)

// Registry holds the process-wide, read-only predictor handles. It is built
// once at startup and never reloaded; a load or validation failure aborts
// startup rather than surfacing mid-request.
type Registry struct {
	variant  string
	single   Predictor
	tabular  Predictor
	sequence Predictor
	meta     Predictor
}

// NewRegistry assembles a registry from already-constructed predictors.
// Exists mainly so tests can substitute stub predictors; production code
// goes through LoadRegistry.
func NewRegistry(variant string, single, tabular, sequence, meta Predictor) *Registry {
	return &Registry{
		variant:  variant,
		single:   single,
		tabular:  tabular,
		sequence: sequence,
		meta:     meta,
	}
}

// LoadRegistry loads the artifacts the configured variant needs from dir and
// validates their feature schemas against the canonical feature list.
func LoadRegistry(dir, variant string) (*Registry, error) {
	switch variant {
	case VariantSingle:
		art, err := loadChecked(filepath.Join(dir, tabularArtifactFile), CapabilityTabular)
		if err != nil {
			return nil, err
		}
		log.Info().Str("model", art.Name).Str("variant", variant).Msg("Loaded predictor")
		return NewRegistry(variant, art.Predictor(), nil, nil, nil), nil

	case VariantEnsemble:
		tabular, err := loadChecked(filepath.Join(dir, tabularArtifactFile), CapabilityTabular)
		if err != nil {
			return nil, err
		}
		sequence, err := loadChecked(filepath.Join(dir, sequenceArtifactFile), CapabilitySequence)
		if err != nil {
			return nil, err
		}
		meta, err := LoadArtifact(filepath.Join(dir, metaArtifactFile))
		if err != nil {
			return nil, err
		}
		if meta.Capability != CapabilityMeta {
			return nil, fmt.Errorf("artifact %q: expected capability %q, got %q", meta.Name, CapabilityMeta, meta.Capability)
		}
		// The meta combiner consumes the two expert outputs, not the raw row.
		if len(meta.FeatureNames) != 2 {
			return nil, fmt.Errorf("meta artifact %q must take exactly 2 expert inputs, declares %d", meta.Name, len(meta.FeatureNames))
		}
		log.Info().
			Str("tabular", tabular.Name).
			Str("sequence", sequence.Name).
			Str("meta", meta.Name).
			Msg("Loaded ensemble predictors")
		return NewRegistry(variant, nil, tabular.Predictor(), sequence.Predictor(), meta.Predictor()), nil

	default:
		return nil, fmt.Errorf("unknown model variant %q", variant)
	}
}

func loadChecked(path, capability string) (*Artifact, error) {
	art, err := LoadArtifact(path)
	if err != nil {
		return nil, err
	}
	if art.Capability != capability {
		return nil, fmt.Errorf("artifact %q: expected capability %q, got %q", art.Name, capability, art.Capability)
	}
	if err := checkFeatureSchema(art); err != nil {
		return nil, err
	}
	return art, nil
}

func checkFeatureSchema(art *Artifact) error {
	if len(art.FeatureNames) != len(domain.FeatureNames) {
		return fmt.Errorf("artifact %q declares %d features, service derives %d", art.Name, len(art.FeatureNames), len(domain.FeatureNames))
	}
	for i, name := range art.FeatureNames {
		if name != domain.FeatureNames[i] {
			return fmt.Errorf("artifact %q: feature %d is %q, service derives %q", art.Name, i, name, domain.FeatureNames[i])
		}
	}
	return nil
}

// Variant reports which rollout variant the registry serves.
func (r *Registry) Variant() string {
	return r.variant
}

// Single returns the single-variant predictor, nil for ensemble registries.
func (r *Registry) Single() Predictor {
	return r.single
}

// Experts returns the ensemble components, nil for single registries.
func (r *Registry) Experts() (tabular, sequence, meta Predictor) {
	return r.tabular, r.sequence, r.meta
}
