package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/recipio/recipio/internal/config"
	"github.com/recipio/recipio/internal/fetch"
	"github.com/recipio/recipio/internal/llm"
	"github.com/recipio/recipio/internal/media"
	"github.com/recipio/recipio/internal/pipeline"
	"github.com/recipio/recipio/internal/recipe"
	"github.com/recipio/recipio/internal/server"
	"github.com/recipio/recipio/internal/store"
	"github.com/recipio/recipio/internal/transcribe"
	"github.com/recipio/recipio/internal/webpage"
)

func main() {
	// Logging setup
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	// Optional .env file, matching local development setups
	_ = godotenv.Load()

	var cfg config.Config
	var configFile string
	flag.StringVar(&configFile, "config", "", "Path to optional YAML config file")
	flag.StringVar(&cfg.ListenAddr, "listen", os.Getenv("LISTEN_ADDR"), "HTTP listen address")
	flag.StringVar(&cfg.LLM.BaseURL, "llm.base", os.Getenv("LLM_BASE_URL"), "OpenAI-compatible base URL")
	flag.StringVar(&cfg.LLM.Model, "llm.model", os.Getenv("LLM_MODEL"), "Chat model for recipe extraction")
	flag.StringVar(&cfg.LLM.APIKey, "llm.key", firstEnv("LLM_API_KEY", "OPENAI_API_KEY"), "API key for the OpenAI-compatible server")
	flag.StringVar(&cfg.LLM.WhisperModel, "llm.whisperModel", os.Getenv("WHISPER_MODEL"), "Speech-to-text model")
	flag.StringVar(&cfg.Lookup.BaseURL, "lookup.base", os.Getenv("RAPIDAPI_BASE_URL"), "Instagram lookup service base URL")
	flag.StringVar(&cfg.Lookup.APIKey, "lookup.key", os.Getenv("RAPIDAPI_KEY"), "Instagram lookup service API key")
	flag.StringVar(&cfg.Lookup.APIHost, "lookup.host", os.Getenv("RAPIDAPI_HOST"), "Instagram lookup service API host")
	flag.StringVar(&cfg.Mongo.URI, "mongo.uri", os.Getenv("MONGODB_URL"), "MongoDB connection URI")
	flag.StringVar(&cfg.Mongo.Database, "mongo.db", os.Getenv("MONGODB_DATABASE"), "MongoDB database name")
	flag.StringVar(&cfg.Media.YtDlpPath, "media.ytdlp", os.Getenv("YTDLP_PATH"), "Path to the yt-dlp binary")
	flag.StringVar(&cfg.Media.FFmpegPath, "media.ffmpeg", os.Getenv("FFMPEG_PATH"), "Path to the ffmpeg binary")
	flag.StringVar(&cfg.AuthToken, "auth.token", os.Getenv("API_AUTH_TOKEN"), "Bearer token for authenticated endpoints")
	flag.DurationVar(&cfg.Timeouts.Download, "timeout.download", 0, "Media download timeout (e.g. 2m)")
	flag.DurationVar(&cfg.Timeouts.Transcribe, "timeout.transcribe", 0, "Transcription timeout")
	flag.DurationVar(&cfg.Timeouts.Extract, "timeout.extract", 0, "Model extraction timeout")
	flag.IntVar(&cfg.MaxPromptChars, "max.promptChars", 0, "Maximum characters submitted to the model")
	flag.BoolVar(&cfg.Verbose, "v", false, "Verbose logging")
	flag.Parse()

	if cfg.Verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	if configFile != "" {
		if err := cfg.MergeFile(configFile); err != nil {
			log.Fatal().Err(err).Msg("config file")
		}
	}
	cfg.Defaults()
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		log.Fatal().Err(err).Msg("recipiod failed")
	}
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return ""
}

func run(ctx context.Context, cfg config.Config) error {
	startupCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	st, err := store.New(startupCtx, cfg.Mongo.URI, cfg.Mongo.Database)
	if err != nil {
		return err
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			log.Warn().Err(err).Msg("store close")
		}
	}()
	st.EnsureIndexes(startupCtx)

	provider := llm.NewOpenAIProvider(cfg.LLM.APIKey, cfg.LLM.BaseURL)

	p := &pipeline.Pipeline{
		Media: &media.Retriever{
			Lookup: &media.LookupClient{
				BaseURL: cfg.Lookup.BaseURL,
				APIKey:  cfg.Lookup.APIKey,
				APIHost: cfg.Lookup.APIHost,
			},
			YtDlpPath:  cfg.Media.YtDlpPath,
			FFmpegPath: cfg.Media.FFmpegPath,
		},
		Web: &webpage.Extractor{
			Client: &fetch.Client{
				UserAgent:         "recipio/1.0 (+https://github.com/recipio/recipio)",
				MaxAttempts:       3,
				PerRequestTimeout: 30 * time.Second,
			},
		},
		Transcriber: &transcribe.Transcriber{Client: provider, Model: cfg.LLM.WhisperModel},
		Recipes:     &recipe.Extractor{Client: provider, Model: cfg.LLM.Model},

		MaxPromptChars:    cfg.MaxPromptChars,
		DownloadTimeout:   cfg.Timeouts.Download,
		TranscribeTimeout: cfg.Timeouts.Transcribe,
		ExtractTimeout:    cfg.Timeouts.Extract,
	}

	srv := &server.Server{Pipeline: p, Store: st, AuthToken: cfg.AuthToken}
	httpServer := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.ListenAddr).Msg("recipiod listening")
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		log.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	}
}
