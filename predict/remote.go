package predict

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"phishing-detector/features"
)

// RemoteModel calls a model server over HTTP.
//
// Request:
//
//	{"feature_names": ["url_length", ...], "instances": [[18, 1, ...]]}
//
// Response:
//
//	{"probabilities": [0.93]}
type RemoteModel struct {
	Endpoint string
	Client   *http.Client
}

func NewRemoteModel(endpoint string, timeout time.Duration) *RemoteModel {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &RemoteModel{
		Endpoint: endpoint,
		Client:   &http.Client{Timeout: timeout},
	}
}

func (m *RemoteModel) Name() string { return "remote" }

func (m *RemoteModel) Predict(ctx context.Context, v features.Vector) (float64, error) {
	body, err := json.Marshal(map[string]any{
		"feature_names": features.FieldNames,
		"instances":     [][]float64{v.Values()},
	})
	if err != nil {
		return 0, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.Endpoint, bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.Client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("model call: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return 0, fmt.Errorf("model error: status=%d, body=%s", resp.StatusCode, bytes.TrimSpace(msg))
	}

	var result struct {
		Probabilities []float64 `json:"probabilities"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return 0, fmt.Errorf("decode response: %w", err)
	}
	if len(result.Probabilities) != 1 {
		return 0, fmt.Errorf("model returned %d probabilities, want 1", len(result.Probabilities))
	}

	p := result.Probabilities[0]
	if p < 0 || p > 1 {
		return 0, fmt.Errorf("model probability %v out of range", p)
	}
	return p, nil
}
