package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"flightassist/internal/cache"
	"flightassist/internal/config"
	"flightassist/internal/faq"
	"flightassist/internal/handler"
	"flightassist/internal/llm"
	"flightassist/internal/nlu"
	"flightassist/internal/provider"
	"flightassist/internal/repository"
	"flightassist/internal/service"
	"flightassist/pkg/logger"
	"flightassist/pkg/metrics"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewLogger(cfg.Logging.Level)
	log.Info("flight assistant starting",
		"version", Version, "build_time", BuildTime, "git_commit", GitCommit)

	gin.SetMode(cfg.Server.GinMode)

	m := metrics.NewMetrics("flightassist")
	clock := cache.SystemClock{}
	norm := service.NewNormalizer()

	// Postgres is optional: without a DSN the service runs from the
	// live providers and the static fixtures alone
	var repo *repository.PostgresRepository
	if cfg.PostgreSQL.Enabled {
		repo, err = repository.NewPostgresRepository(cfg.PostgreSQL.DSN,
			cfg.PostgreSQL.MaxConnections, cfg.PostgreSQL.MaxIdleConnections)
		if err != nil {
			log.Warn("database unavailable, continuing without persistence", "error", err)
			repo = nil
		} else {
			defer repo.Close()
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			if err := repo.EnsureSchema(ctx); err != nil {
				log.Warn("schema setup failed, continuing without persistence", "error", err)
				repo = nil
			} else {
				log.Info("connected to PostgreSQL")
			}
			cancel()
		}
	}

	openai := llm.NewClient(llm.Options{
		APIKey:      cfg.LLM.APIKey,
		APIBase:     cfg.LLM.APIBase,
		ProjectID:   cfg.LLM.ProjectID,
		ChatModel:   cfg.LLM.ChatModel,
		STTModel:    cfg.LLM.STTModel,
		EmbedModel:  cfg.LLM.EmbedModel,
		EmbedDim:    cfg.LLM.EmbedDim,
		Temperature: cfg.LLM.Temperature,
		MaxTokens:   cfg.LLM.MaxTokens,
		Timeout:     cfg.LLM.Timeout,
		RatePerSec:  cfg.LLM.RatePerSec,
		Burst:       cfg.LLM.Burst,
	})
	if openai.IsEnabled() {
		log.Info("OpenAI client initialized", "chat_model", cfg.LLM.ChatModel)
	} else {
		log.Warn("OpenAI is disabled, answers will use deterministic templates only")
	}

	var remotes []nlu.Extractor
	if cfg.NLU.GroqEnabled && cfg.NLU.GroqAPIKey != "" {
		groq := llm.NewClient(llm.Options{
			APIKey:     cfg.NLU.GroqAPIKey,
			APIBase:    cfg.NLU.GroqAPIBase,
			ChatModel:  cfg.NLU.GroqModel,
			Timeout:    cfg.NLU.Timeout,
			RatePerSec: cfg.NLU.RatePerSec,
			Burst:      cfg.NLU.Burst,
		})
		remotes = append(remotes, nlu.NewChatExtractor(groq, "groq"))
	}
	if cfg.NLU.GeminiAPIKey != "" {
		gemini := llm.NewClient(llm.Options{
			APIKey:     cfg.NLU.GeminiAPIKey,
			APIBase:    cfg.NLU.GeminiBase,
			ChatModel:  cfg.NLU.GeminiModel,
			Timeout:    cfg.NLU.Timeout,
			RatePerSec: cfg.NLU.RatePerSec,
			Burst:      cfg.NLU.Burst,
		})
		remotes = append(remotes, nlu.NewChatExtractor(gemini, "gemini"))
	}
	racer := nlu.NewRacer(remotes, cfg.NLU.Timeout, log)
	log.Info("intent extractors ready", "remotes", len(remotes))

	// Provider chain: live board first, then AviationStack, then the
	// last persisted snapshot, then the built-in fixtures
	board := provider.NewStatusBoardSource(cfg.Flights.StatusBoardURL,
		cfg.Flights.AirportCode, cfg.Flights.PageSize, cfg.Flights.Timeout, log)
	cached := provider.NewCachedSource(board, cfg.Flights.CacheTTL, clock, log, m)

	liveSources := []provider.Source{cached}
	if cfg.Flights.AviationStackKey != "" {
		liveSources = append(liveSources, provider.NewAviationStackSource(
			cfg.Flights.AviationStackURL, cfg.Flights.AviationStackKey,
			cfg.Flights.AirportCode, cfg.Flights.Timeout, log))
	}

	sources := liveSources
	if repo != nil {
		sources = append(sources, provider.NewDatabaseSource(repo,
			cfg.Flights.AirportCode, cfg.Flights.DomesticCities))
	}
	sources = append(sources, provider.NewStaticSource(cfg.Flights.AirportCode, clock))
	flightSource := provider.NewFallbackSource(log, sources...)

	faqStore := faq.NewStore(cfg.FAQ.FilePath, cfg.FAQ.SheetURL,
		cfg.FAQ.RefreshTTL, cfg.FAQ.Timeout, clock, norm.Normalize, log)
	var vectors faq.VectorIndex
	var embedStore faq.EmbeddingStore
	if repo != nil {
		vectors = repo
		embedStore = repo
	}
	faqService := faq.NewService(faqStore,
		faq.NewMatcher(cfg.FAQ.SimilarityThreshold, norm.Normalize),
		openai, openai, vectors, embedStore, norm.Normalize, log)

	// Prime the FAQ set and its embedding index at startup
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.FAQ.Timeout)
		defer cancel()
		if _, err := faqService.Refresh(ctx); err != nil {
			log.Warn("initial faq load failed", "error", err)
		}
	}()

	matcher := service.NewMatcher(cfg.Scoring, cfg.Flights.RecentFallback,
		cfg.Flights.DomesticCities, norm, clock)
	composer := service.NewComposer(openai, log)

	var queryLog service.QueryLogger
	if repo != nil {
		queryLog = repo
	}
	assistant := service.NewAssistant(service.AssistantOptions{
		Normalizer: norm,
		Racer:      racer,
		FAQ:        faqService,
		Flights:    flightSource,
		Matcher:    matcher,
		Composer:   composer,
		QueryLog:   queryLog,
		QuickTTL:   cfg.Scoring.QuickCacheTTL,
		AnswerTTL:  cfg.Scoring.AnswerCacheTTL,
		Clock:      clock,
		Logger:     log,
		Metrics:    m,
	})
	sttService := service.NewSTTService(openai, log)

	// Persist live snapshots so the database source has data to serve
	// when the upstream providers are down
	refreshCtx, stopRefresh := context.WithCancel(context.Background())
	defer stopRefresh()
	if repo != nil {
		live := provider.NewFallbackSource(log, liveSources...)
		refresher := provider.NewRefresher(live, repo, cfg.Flights.AirportCode,
			cfg.Flights.CacheTTL, log, m)
		go refresher.Run(refreshCtx)
	}

	assistantHandler := handler.NewAssistantHandler(assistant)
	flightsHandler := handler.NewFlightsHandler(flightSource, norm, cfg.Flights.LookbackWindow, clock)
	faqHandler := handler.NewFAQHandler(faqService)
	sttHandler := handler.NewSTTHandler(sttService)

	router := gin.New()
	router.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = strings.Split(cfg.Server.AllowedOrigins, ",")
	corsConfig.AllowMethods = strings.Split(cfg.Server.AllowedMethods, ",")
	corsConfig.AllowHeaders = strings.Split(cfg.Server.AllowedHeaders, ",")
	router.Use(cors.New(corsConfig))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "flight-assistant",
			"version": Version,
		})
	})
	router.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"version":    Version,
			"build_time": BuildTime,
			"git_commit": GitCommit,
		})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	apiV1 := router.Group("/api/v1")
	{
		apiV1.POST("/assistant", assistantHandler.Ask)
		apiV1.GET("/flights", flightsHandler.List)
		apiV1.GET("/faq", faqHandler.List)
		apiV1.POST("/faq/refresh", faqHandler.Refresh)
		apiV1.POST("/stt", sttHandler.Transcribe)
	}

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{Addr: addr, Handler: router}

	go func() {
		log.Info("server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	stopRefresh()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown incomplete", "error", err)
	}
	log.Info("server stopped")
}
