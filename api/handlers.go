// Package api exposes the predictor and extractor over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"phishing-detector/features"
	"phishing-detector/logger"
	"phishing-detector/predict"
)

const (
	maxBodyBytes   = 1 << 20
	emptyURLDetail = "Empty URL provided."
)

// URLInput is the body of /predict and /features.
type URLInput struct {
	URL string `json:"url" validate:"max=8192"`
}

type PredictResponse struct {
	URL        string  `json:"url"`
	Prediction string  `json:"prediction"`
	Confidence float64 `json:"confidence"`
}

type errorResponse struct {
	Detail string `json:"detail"`
}

// recentLog is implemented by prediction logs that can be read back.
type recentLog interface {
	Recent(ctx context.Context, n int64) ([]predict.Entry, error)
}

type Server struct {
	predictor *predict.Predictor
	extractor *features.Extractor
	validate  *validator.Validate
	log       zerolog.Logger
}

func NewServer(p *predict.Predictor, ex *features.Extractor) *Server {
	return &Server{
		predictor: p,
		extractor: ex,
		validate:  validator.New(validator.WithRequiredStructEnabled()),
		log:       logger.Named("api"),
	}
}

// Routes builds the router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowOriginFunc:  func(*http.Request, string) bool { return true },
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}))

	r.Get("/", s.Home)
	r.Get("/healthz", s.Health)
	r.Post("/predict", s.Predict)
	r.Post("/features", s.Features)
	r.Get("/predictions", s.Recent)
	return r
}

func (s *Server) Home(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "Phishing Detection API"})
}

func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"fast_mode": s.extractor.Config().FastMode,
	})
}

func (s *Server) Predict(w http.ResponseWriter, r *http.Request) {
	in, err := s.bind(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	pred, err := s.predictor.Predict(r.Context(), in.URL)
	switch {
	case errors.Is(err, predict.ErrEmptyURL):
		writeError(w, http.StatusBadRequest, emptyURLDetail)
		return
	case err != nil:
		s.log.Error().Err(err).Str("req_id", middleware.GetReqID(r.Context())).Msg("prediction failed")
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Model prediction error: %v", err))
		return
	}

	writeJSON(w, http.StatusOK, PredictResponse{
		URL:        pred.URL,
		Prediction: pred.Label,
		Confidence: pred.Confidence,
	})
}

func (s *Server) Features(w http.ResponseWriter, r *http.Request) {
	in, err := s.bind(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(in.URL) == "" {
		writeError(w, http.StatusBadRequest, emptyURLDetail)
		return
	}
	writeJSON(w, http.StatusOK, s.extractor.Inspect(r.Context(), in.URL))
}

func (s *Server) Recent(w http.ResponseWriter, r *http.Request) {
	hist, ok := s.predictor.History().(recentLog)
	if !ok {
		writeError(w, http.StatusNotFound, "prediction log is not readable")
		return
	}

	limit := int64(20)
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n < 1 || n > 1000 {
			writeError(w, http.StatusBadRequest, "limit must be between 1 and 1000")
			return
		}
		limit = n
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()
	entries, err := hist.Recent(ctx, limit)
	if err != nil {
		s.log.Error().Err(err).Msg("read prediction log")
		writeError(w, http.StatusServiceUnavailable, "prediction log unavailable")
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) bind(r *http.Request) (URLInput, error) {
	var in URLInput
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(&in); err != nil {
		return in, fmt.Errorf("invalid JSON: %v", err)
	}
	if err := s.validate.Struct(in); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return in, fmt.Errorf("url: failed %q validation", verrs[0].Tag())
		}
		return in, fmt.Errorf("validation error")
	}
	return in, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, errorResponse{Detail: detail})
}
