package predict

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"phishing-detector/features"
	"phishing-detector/logger"
)

const (
	LabelPhishing = "phishing"
	LabelSafe     = "safe"

	DefaultThreshold = 0.5
)

var ErrEmptyURL = errors.New("empty URL provided")

// Label maps a phishing probability to a label.
func Label(p, threshold float64) string {
	if p >= threshold {
		return LabelPhishing
	}
	return LabelSafe
}

// Prediction is the outcome of scoring one URL.
type Prediction struct {
	URL        string          `json:"url"`
	Label      string          `json:"prediction"`
	Confidence float64         `json:"confidence"`
	Features   features.Vector `json:"-"`
}

// Predictor runs extraction and classification for the serving path.
type Predictor struct {
	extractor *features.Extractor
	model     Classifier
	threshold float64
	history   PredictionLog
	log       zerolog.Logger
	now       func() time.Time
}

type Option func(*Predictor)

func WithThreshold(t float64) Option {
	return func(p *Predictor) { p.threshold = t }
}

func WithPredictionLog(l PredictionLog) Option {
	return func(p *Predictor) { p.history = l }
}

func WithLogger(l zerolog.Logger) Option {
	return func(p *Predictor) { p.log = l }
}

func NewPredictor(ex *features.Extractor, model Classifier, opts ...Option) *Predictor {
	p := &Predictor{
		extractor: ex,
		model:     model,
		threshold: DefaultThreshold,
		history:   NopLog{},
		log:       logger.Named("predict"),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.threshold <= 0 || p.threshold >= 1 {
		p.threshold = DefaultThreshold
	}
	return p
}

// Predict trims rawURL, defaults bare hosts to https, extracts features and
// scores them. ErrEmptyURL is the only input error; anything else comes
// from the model.
func (p *Predictor) Predict(ctx context.Context, rawURL string) (Prediction, error) {
	u := strings.TrimSpace(rawURL)
	if u == "" {
		return Prediction{}, ErrEmptyURL
	}
	if !strings.HasPrefix(u, "http") {
		u = "https://" + u
	}

	v := p.extractor.Extract(ctx, u)
	proba, err := p.model.Predict(ctx, v)
	if err != nil {
		return Prediction{}, fmt.Errorf("model %s: %w", p.model.Name(), err)
	}

	pred := Prediction{
		URL:        u,
		Label:      Label(proba, p.threshold),
		Confidence: proba,
		Features:   v,
	}

	entry := Entry{
		ID:         uuid.NewString(),
		URL:        pred.URL,
		Prediction: pred.Label,
		Confidence: pred.Confidence,
		Timestamp:  p.now().UTC(),
	}
	if err := p.history.Record(ctx, entry); err != nil {
		p.log.Warn().Err(err).Str("url", u).Msg("prediction log write failed")
	}

	p.log.Info().Str("url", u).Str("prediction", pred.Label).Float64("confidence", proba).Msg("predicted")
	return pred, nil
}

// History returns the prediction log.
func (p *Predictor) History() PredictionLog { return p.history }
