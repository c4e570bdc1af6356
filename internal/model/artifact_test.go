package model

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hacks11/inventory-health/backend-go/internal/domain"
)

func writeArtifact(t *testing.T, art Artifact) string {
	t.Helper()
	data, err := json.Marshal(art)
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "artifact.json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func linearArtifact(names []string) Artifact {
	weights := make([]float64, len(names))
	for i := range weights {
		weights[i] = float64(i + 1)
	}
	return Artifact{
		SchemaVersion: 1,
		Name:          "test_linear",
		Kind:          KindLinear,
		Capability:    CapabilityTabular,
		FeatureNames:  names,
		Weights:       weights,
		Bias:          0.5,
	}
}

func TestLoadLinearArtifactAndPredict(t *testing.T) {
	path := writeArtifact(t, linearArtifact([]string{"a", "b"}))

	art, err := LoadArtifact(path)
	if err != nil {
		t.Fatal(err)
	}

	// 0.5 + 1*2 + 2*3
	got, err := art.Predictor().Predict([]float64{2, 3})
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(got-8.5) > 1e-9 {
		t.Errorf("got %v, want 8.5", got)
	}
}

func TestLoadGBTreeArtifactAndPredict(t *testing.T) {
	art := Artifact{
		SchemaVersion: 1,
		Name:          "test_tree",
		Kind:          KindGBTree,
		Capability:    CapabilityTabular,
		FeatureNames:  []string{"a", "b"},
		BaseScore:     1,
		Trees: []Tree{
			{Nodes: []TreeNode{
				{Feature: 0, Threshold: 5, Left: 1, Right: 2},
				{Feature: -1, Value: 10},
				{Feature: -1, Value: 20},
			}},
			{Nodes: []TreeNode{
				{Feature: -1, Value: 3},
			}},
		},
	}
	path := writeArtifact(t, art)

	loaded, err := LoadArtifact(path)
	if err != nil {
		t.Fatal(err)
	}
	p := loaded.Predictor()

	// x[0]=2 < 5 routes left: 1 + 10 + 3
	if got, _ := p.Predict([]float64{2, 0}); math.Abs(got-14) > 1e-9 {
		t.Errorf("left branch: got %v, want 14", got)
	}
	// x[0]=7 >= 5 routes right: 1 + 20 + 3
	if got, _ := p.Predict([]float64{7, 0}); math.Abs(got-24) > 1e-9 {
		t.Errorf("right branch: got %v, want 24", got)
	}
}

func TestPredictFeatureCountMismatch(t *testing.T) {
	path := writeArtifact(t, linearArtifact([]string{"a", "b"}))
	art, err := LoadArtifact(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := art.Predictor().Predict([]float64{1}); err == nil {
		t.Error("expected error for wrong feature count")
	}
}

func TestLoadArtifactValidation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Artifact)
		wantErr string
	}{
		{
			"bad schema version",
			func(a *Artifact) { a.SchemaVersion = 2 },
			"schema_version",
		},
		{
			"no feature names",
			func(a *Artifact) { a.FeatureNames = nil },
			"no feature names",
		},
		{
			"unknown kind",
			func(a *Artifact) { a.Kind = "forest" },
			"unknown artifact kind",
		},
		{
			"unknown capability",
			func(a *Artifact) { a.Capability = "quantum" },
			"unknown capability",
		},
		{
			"weight count mismatch",
			func(a *Artifact) { a.Weights = []float64{1} },
			"weights",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			art := linearArtifact([]string{"a", "b"})
			tc.mutate(&art)
			path := writeArtifact(t, art)
			_, err := LoadArtifact(path)
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("got %v, want error containing %q", err, tc.wantErr)
			}
		})
	}
}

func TestLoadRegistrySingle(t *testing.T) {
	dir := t.TempDir()

	art := linearArtifact(domain.FeatureNames)
	data, _ := json.Marshal(art)
	if err := os.WriteFile(filepath.Join(dir, "xgboost_simple.model.json"), data, 0644); err != nil {
		t.Fatal(err)
	}

	reg, err := LoadRegistry(dir, VariantSingle)
	if err != nil {
		t.Fatal(err)
	}
	if reg.Variant() != VariantSingle {
		t.Errorf("variant: got %s", reg.Variant())
	}
	if reg.Single() == nil {
		t.Error("single predictor missing")
	}
}

func TestLoadRegistryFeatureSchemaMismatch(t *testing.T) {
	dir := t.TempDir()

	names := append([]string(nil), domain.FeatureNames...)
	names[0] = "unexpected_column"
	art := linearArtifact(names)
	data, _ := json.Marshal(art)
	if err := os.WriteFile(filepath.Join(dir, "xgboost_simple.model.json"), data, 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadRegistry(dir, VariantSingle); err == nil {
		t.Error("expected feature schema mismatch error")
	}
}

func TestLoadRegistryMissingArtifact(t *testing.T) {
	if _, err := LoadRegistry(t.TempDir(), VariantSingle); err == nil {
		t.Error("expected error for missing artifact file")
	}
}

func TestLoadRegistryUnknownVariant(t *testing.T) {
	if _, err := LoadRegistry(t.TempDir(), "hybrid"); err == nil {
		t.Error("expected error for unknown variant")
	}
}
