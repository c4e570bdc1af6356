package model

import (
	"encoding/json"
	"fmt"
	"os"
)

// Supported artifact kinds and capability tags. An artifact is an exported,
// versioned model component; the service never inspects model internals
// beyond what is needed to evaluate it.
const (
	KindGBTree = "gbtree"
	KindLinear = "linear"

	CapabilityTabular  = "tabular"
	CapabilitySequence = "sequence"
	CapabilityMeta     = "meta"

	artifactSchemaVersion = 1
)

// TreeNode is one node of a regression tree. A negative Feature index marks
// a leaf carrying Value; interior nodes route to Left when
// x[Feature] < Threshold, otherwise Right.
type TreeNode struct {
	Feature   int     `json:"feature"`
	Threshold float64 `json:"threshold"`
	Left      int     `json:"left"`
	Right     int     `json:"right"`
	Value     float64 `json:"value"`
}

// Tree is a single regression tree stored as a flat node array rooted at 0.
type Tree struct {
	Nodes []TreeNode `json:"nodes"`
}

// Artifact is the on-disk JSON form of one model component.
type Artifact struct {
	SchemaVersion int      `json:"schema_version"`
	Name          string   `json:"name"`
	Kind          string   `json:"kind"`
	Capability    string   `json:"capability"`
	FeatureNames  []string `json:"feature_names"`

	// gbtree
	Trees     []Tree  `json:"trees,omitempty"`
	BaseScore float64 `json:"base_score,omitempty"`

	// linear
	Weights []float64 `json:"weights,omitempty"`
	Bias    float64   `json:"bias,omitempty"`
}

// LoadArtifact reads and validates one model artifact. Validation failures
// are returned eagerly so the process can fail fast at startup instead of
// mid-request.
func LoadArtifact(path string) (*Artifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model artifact %s: %w", path, err)
	}

	var art Artifact
	if err := json.Unmarshal(data, &art); err != nil {
		return nil, fmt.Errorf("decode model artifact %s: %w", path, err)
	}

	if err := art.validate(); err != nil {
		return nil, fmt.Errorf("invalid model artifact %s: %w", path, err)
	}

	return &art, nil
}

func (a *Artifact) validate() error {
	if a.SchemaVersion != artifactSchemaVersion {
		return fmt.Errorf("unsupported schema_version %d", a.SchemaVersion)
	}
	if len(a.FeatureNames) == 0 {
		return fmt.Errorf("artifact %q declares no feature names", a.Name)
	}

	switch a.Kind {
	case KindGBTree:
		if len(a.Trees) == 0 {
			return fmt.Errorf("gbtree artifact %q has no trees", a.Name)
		}
		for ti, tree := range a.Trees {
			if len(tree.Nodes) == 0 {
				return fmt.Errorf("gbtree artifact %q: tree %d is empty", a.Name, ti)
			}
			for ni, node := range tree.Nodes {
				if node.Feature >= len(a.FeatureNames) {
					return fmt.Errorf("gbtree artifact %q: tree %d node %d splits on unknown feature %d", a.Name, ti, ni, node.Feature)
				}
				if node.Feature >= 0 && (node.Left < 0 || node.Left >= len(tree.Nodes) || node.Right < 0 || node.Right >= len(tree.Nodes)) {
					return fmt.Errorf("gbtree artifact %q: tree %d node %d has out-of-range children", a.Name, ti, ni)
				}
			}
		}
	case KindLinear:
		if len(a.Weights) != len(a.FeatureNames) {
			return fmt.Errorf("linear artifact %q: %d weights for %d features", a.Name, len(a.Weights), len(a.FeatureNames))
		}
	default:
		return fmt.Errorf("unknown artifact kind %q", a.Kind)
	}

	switch a.Capability {
	case CapabilityTabular, CapabilitySequence, CapabilityMeta:
	default:
		return fmt.Errorf("unknown capability %q", a.Capability)
	}

	return nil
}

// Predictor wraps the artifact in its scoring function.
func (a *Artifact) Predictor() Predictor {
	return &artifactPredictor{art: a}
}

type artifactPredictor struct {
	art *Artifact
}

func (p *artifactPredictor) Predict(features []float64) (float64, error) {
	a := p.art
	if len(features) != len(a.FeatureNames) {
		return 0, fmt.Errorf("model %q expects %d features, got %d", a.Name, len(a.FeatureNames), len(features))
	}

	switch a.Kind {
	case KindGBTree:
		sum := a.BaseScore
		for i := range a.Trees {
			sum += evalTree(&a.Trees[i], features)
		}
		return sum, nil
	case KindLinear:
		sum := a.Bias
		for i, w := range a.Weights {
			sum += w * features[i]
		}
		return sum, nil
	default:
		// unreachable after validate
		return 0, fmt.Errorf("model %q has unknown kind %q", a.Name, a.Kind)
	}
}

func evalTree(t *Tree, features []float64) float64 {
	idx := 0
	for {
		node := &t.Nodes[idx]
		if node.Feature < 0 {
			return node.Value
		}
		if features[node.Feature] < node.Threshold {
			idx = node.Left
		} else {
			idx = node.Right
		}
	}
}
