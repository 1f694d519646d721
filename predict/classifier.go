// Package predict scores feature vectors with a trained classifier and labels
// URLs as phishing or safe.
package predict

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"

	"phishing-detector/features"
)

// Classifier returns the phishing probability for a feature vector.
type Classifier interface {
	Name() string
	Predict(ctx context.Context, v features.Vector) (float64, error)
}

// LRModel is a logistic regression over the named features:
// P = 1 / (1 + exp(-(bias + Σ w_i x_i))).
type LRModel struct {
	Bias    float64
	Weights map[string]float64
}

// LoadLRModel reads {"bias": b, "weights": {"url_length": w, ...}}.
// Weights for names outside features.FieldNames are rejected so a model
// trained on a different feature set fails at load time.
func LoadLRModel(path string) (*LRModel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model: %w", err)
	}
	var raw struct {
		Bias    float64            `json:"bias"`
		Weights map[string]float64 `json:"weights"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode model %s: %w", path, err)
	}

	known := make(map[string]bool, len(features.FieldNames))
	for _, name := range features.FieldNames {
		known[name] = true
	}
	for name := range raw.Weights {
		if !known[name] {
			return nil, fmt.Errorf("model %s: unknown feature %q", path, name)
		}
	}
	return &LRModel{Bias: raw.Bias, Weights: raw.Weights}, nil
}

func (m *LRModel) Name() string { return "lr" }

func (m *LRModel) Predict(_ context.Context, v features.Vector) (float64, error) {
	score := m.Bias
	for i, x := range v.Values() {
		score += m.Weights[features.FieldNames[i]] * x
	}
	return 1 / (1 + math.Exp(-score)), nil
}
