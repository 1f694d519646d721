package predict

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"phishing-detector/features"
)

func writeModel(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "model.json")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write model: %v", err)
	}
	return path
}

func TestLoadLRModel(t *testing.T) {
	m, err := LoadLRModel(writeModel(t, `{"bias": -1, "weights": {"has_suspicious": 2, "url_length": 0.01}}`))
	if err != nil {
		t.Fatalf("LoadLRModel: %v", err)
	}

	v := features.Vector{HasSuspicious: 1, URLLength: 100}
	got, err := m.Predict(context.Background(), v)
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	want := 1 / (1 + math.Exp(-2.0)) // -1 + 2 + 1
	if math.Abs(got-want) > 1e-12 {
		t.Fatalf("Predict = %v, want %v", got, want)
	}
}

func TestLoadLRModelErrors(t *testing.T) {
	cases := map[string]string{
		"unknown feature": `{"bias": 0, "weights": {"page_rank": 1}}`,
		"bad json":        `{"bias": `,
	}
	for name, body := range cases {
		if _, err := LoadLRModel(writeModel(t, body)); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
	if _, err := LoadLRModel(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatalf("missing file: expected error")
	}
}

func TestLRModelZeroWeights(t *testing.T) {
	m := &LRModel{}
	got, _ := m.Predict(context.Background(), features.Vector{URLLength: 50})
	if got != 0.5 {
		t.Fatalf("Predict = %v, want 0.5", got)
	}
}

func TestRemoteModel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			FeatureNames []string    `json:"feature_names"`
			Instances    [][]float64 `json:"instances"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode: %v", err)
		}
		if len(req.FeatureNames) != 14 || req.FeatureNames[0] != "url_length" {
			t.Errorf("feature_names = %v", req.FeatureNames)
		}
		if len(req.Instances) != 1 || len(req.Instances[0]) != 14 || req.Instances[0][0] != 18 {
			t.Errorf("instances = %v", req.Instances)
		}
		_, _ = w.Write([]byte(`{"probabilities": [0.87]}`))
	}))
	defer srv.Close()

	m := NewRemoteModel(srv.URL, time.Second)
	got, err := m.Predict(context.Background(), features.Vector{URLLength: 18})
	if err != nil || got != 0.87 {
		t.Fatalf("Predict = %v, %v", got, err)
	}
}

func TestRemoteModelErrors(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{"status", http.StatusInternalServerError, "boom", "status=500"},
		{"decode", http.StatusOK, "not json", "decode"},
		{"count", http.StatusOK, `{"probabilities": []}`, "0 probabilities"},
		{"range", http.StatusOK, `{"probabilities": [1.5]}`, "out of range"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(c.status)
				_, _ = w.Write([]byte(c.body))
			}))
			defer srv.Close()

			_, err := NewRemoteModel(srv.URL, time.Second).Predict(context.Background(), features.Vector{})
			if err == nil || !strings.Contains(err.Error(), c.want) {
				t.Fatalf("err = %v, want %q", err, c.want)
			}
		})
	}
}

func TestLabel(t *testing.T) {
	cases := []struct {
		p, threshold float64
		want         string
	}{
		{0.5, 0.5, LabelPhishing},
		{0.49, 0.5, LabelSafe},
		{0.9, 0.95, LabelSafe},
		{1, 0.5, LabelPhishing},
	}
	for _, c := range cases {
		if got := Label(c.p, c.threshold); got != c.want {
			t.Fatalf("Label(%v, %v) = %s, want %s", c.p, c.threshold, got, c.want)
		}
	}
}

type fixedModel struct {
	p   float64
	err error
	got features.Vector
}

func (m *fixedModel) Name() string { return "fixed" }

func (m *fixedModel) Predict(_ context.Context, v features.Vector) (float64, error) {
	m.got = v
	return m.p, m.err
}

type memLog struct {
	entries []Entry
	err     error
}

func (l *memLog) Record(_ context.Context, e Entry) error {
	l.entries = append(l.entries, e)
	return l.err
}

func newTestPredictor(model Classifier, opts ...Option) *Predictor {
	ex := features.New(features.DefaultConfig(), features.WithLogger(zerolog.Nop()))
	opts = append([]Option{WithLogger(zerolog.Nop())}, opts...)
	return NewPredictor(ex, model, opts...)
}

func TestPredictorPredict(t *testing.T) {
	model := &fixedModel{p: 0.72}
	hist := &memLog{}
	p := newTestPredictor(model, WithPredictionLog(hist))

	pred, err := p.Predict(context.Background(), "  secure-login.example.com/verify ")
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	if pred.URL != "https://secure-login.example.com/verify" {
		t.Fatalf("URL = %q", pred.URL)
	}
	if pred.Label != LabelPhishing || pred.Confidence != 0.72 {
		t.Fatalf("prediction = %+v", pred)
	}
	if model.got.HasHTTPS != 1 || model.got.HasSuspicious != 1 || model.got.DNSValid != 1 {
		t.Fatalf("model saw %+v", model.got)
	}

	if len(hist.entries) != 1 {
		t.Fatalf("log entries = %d", len(hist.entries))
	}
	e := hist.entries[0]
	if e.ID == "" || e.URL != pred.URL || e.Prediction != LabelPhishing || e.Timestamp.IsZero() {
		t.Fatalf("entry = %+v", e)
	}
}

func TestPredictorKeepsHTTPScheme(t *testing.T) {
	p := newTestPredictor(&fixedModel{p: 0.1})
	pred, err := p.Predict(context.Background(), "http://example.com")
	if err != nil || pred.URL != "http://example.com" || pred.Label != LabelSafe {
		t.Fatalf("Predict = %+v, %v", pred, err)
	}
}

func TestPredictorEmptyURL(t *testing.T) {
	p := newTestPredictor(&fixedModel{})
	for _, in := range []string{"", "   ", "\t\n"} {
		if _, err := p.Predict(context.Background(), in); !errors.Is(err, ErrEmptyURL) {
			t.Fatalf("Predict(%q) err = %v, want ErrEmptyURL", in, err)
		}
	}
}

func TestPredictorModelError(t *testing.T) {
	p := newTestPredictor(&fixedModel{err: errors.New("connection refused")})
	_, err := p.Predict(context.Background(), "example.com")
	if err == nil || errors.Is(err, ErrEmptyURL) || !strings.Contains(err.Error(), "model fixed") {
		t.Fatalf("err = %v", err)
	}
}

func TestPredictorLogFailureIgnored(t *testing.T) {
	p := newTestPredictor(&fixedModel{p: 0.9}, WithPredictionLog(&memLog{err: errors.New("down")}))
	if _, err := p.Predict(context.Background(), "example.com"); err != nil {
		t.Fatalf("log failure leaked: %v", err)
	}
}

func TestPredictorThreshold(t *testing.T) {
	p := newTestPredictor(&fixedModel{p: 0.6}, WithThreshold(0.7))
	pred, _ := p.Predict(context.Background(), "example.com")
	if pred.Label != LabelSafe {
		t.Fatalf("label = %s with threshold 0.7", pred.Label)
	}

	p = newTestPredictor(&fixedModel{p: 0.6}, WithThreshold(7))
	pred, _ = p.Predict(context.Background(), "example.com")
	if pred.Label != LabelPhishing {
		t.Fatalf("invalid threshold not reset to default")
	}
}

func TestRedisLogUnreachable(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 200 * time.Millisecond, MaxRetries: -1})
	defer client.Close()

	l := NewRedisLog(client, "", 0)
	if l.key != "phishing:predictions" || l.maxLen != 100000 {
		t.Fatalf("defaults = %q, %d", l.key, l.maxLen)
	}
	err := l.Record(context.Background(), Entry{ID: "1", URL: "http://x"})
	if err == nil || !strings.Contains(err.Error(), "redis log") {
		t.Fatalf("Record err = %v", err)
	}
	if _, err := l.Recent(context.Background(), 5); err == nil {
		t.Fatalf("Recent succeeded against unreachable redis")
	}
	if got, err := l.Recent(context.Background(), 0); got != nil || err != nil {
		t.Fatalf("Recent(0) = %v, %v", got, err)
	}
}
