package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"phishing-detector/api"
	"phishing-detector/config"
	"phishing-detector/features"
	"phishing-detector/logger"
	"phishing-detector/predict"
)

func main() {
	cfg, err := config.Load()
	log := logger.Init(cfg.Log)
	if err != nil {
		log.Fatal().Err(err).Msg("config")
	}

	ex := features.New(cfg.Features)

	var model predict.Classifier
	switch {
	case cfg.ModelEndpoint != "":
		model = predict.NewRemoteModel(cfg.ModelEndpoint, cfg.ModelTimeout)
	case cfg.ModelPath != "":
		m, err := predict.LoadLRModel(cfg.ModelPath)
		if err != nil {
			log.Fatal().Err(err).Str("path", cfg.ModelPath).Msg("load model")
		}
		model = m
	default:
		log.Fatal().Msg("no model configured: set MODEL_ENDPOINT or MODEL_PATH")
	}

	opts := []predict.Option{predict.WithThreshold(cfg.Threshold)}
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer client.Close()
		history := predict.NewRedisLog(client, cfg.RedisKey, cfg.RedisLogMax)

		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := history.Ping(ctx); err != nil {
			log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis unreachable, predictions will not be logged until it recovers")
		}
		cancel()
		opts = append(opts, predict.WithPredictionLog(history))
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           api.NewServer(predict.NewPredictor(ex, model, opts...), ex).Routes(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Info().
		Str("port", cfg.Port).
		Str("model", model.Name()).
		Bool("fast_mode", cfg.Features.FastMode).
		Msg("phishing detection service listening")
	log.Info().Msg("endpoints: GET / | GET /healthz | POST /predict | POST /features | GET /predictions")

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("listen")
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	shutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdown); err != nil {
		log.Error().Err(err).Msg("shutdown")
	}
	log.Info().Msg("stopped")
}
