package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"ScamSOS/database/postgres"
	callHandler "ScamSOS/internal/api/call/handler"
	callRepository "ScamSOS/internal/api/call/repository"
	callService "ScamSOS/internal/api/call/service"
	complaintHandler "ScamSOS/internal/api/complaint/handler"
	complaintService "ScamSOS/internal/api/complaint/service"
	intakeHandler "ScamSOS/internal/api/intake/handler"
	intakeService "ScamSOS/internal/api/intake/service"
	"ScamSOS/internal/middleware"
	"ScamSOS/internal/session"
	"ScamSOS/pkg/audio"
	"ScamSOS/pkg/backend"
	"ScamSOS/pkg/document"
	"ScamSOS/pkg/gemini"
	"ScamSOS/pkg/google"
	jwtPkg "ScamSOS/pkg/jwt"
	"ScamSOS/pkg/openai"
	"ScamSOS/pkg/redis"
	"ScamSOS/pkg/retell"
	"ScamSOS/pkg/s3"
	"ScamSOS/pkg/utils"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

type ServerOption func(*Server) error

type Server struct {
	engine       *fiber.App
	db           *sqlx.DB
	log          *logrus.Logger
	middleware   middleware.Middleware
	validator    *validator.Validate
	utils        utils.IUtils
	handlers     []handler
	redisServer  redis.IRedis
	sessionStore session.Store
	sessionTTL   time.Duration
	signer       *jwtPkg.Signer
	transcriber  audio.ITranscriber
	textReader   intakeService.TextExtractor
	geminiClient gemini.IGemini
	summarizer   openai.ISummarizer
	retellClient retell.IRetell
	backend      backend.IBackend
	s3Client     s3.ItfS3
	callConfig   callService.Config
	scriptFonts  []document.ScriptFont
}

type handler interface {
	Start(srv fiber.Router)
}

func NewServer(options ...ServerOption) (*Server, error) {
	server := &Server{
		sessionTTL: session.DefaultTTL,
		callConfig: callService.DefaultConfig(),
	}

	for _, option := range options {
		if err := option(server); err != nil {
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}

	if server.engine == nil {
		return nil, fmt.Errorf("fiber app is required")
	}
	if server.log == nil {
		return nil, fmt.Errorf("logger is required")
	}

	return server, nil
}

func WithFiber(fiberApp *fiber.App) ServerOption {
	return func(s *Server) error {
		s.engine = fiberApp
		return nil
	}
}

func WithLogger(logger *logrus.Logger) ServerOption {
	return func(s *Server) error {
		s.log = logger
		return nil
	}
}

func WithValidator(validator *validator.Validate) ServerOption {
	return func(s *Server) error {
		s.validator = validator
		return nil
	}
}

// WithDatabase connects to Postgres for the call journal. Without DB_HOST the
// journal is disabled and the server still starts.
func WithDatabase() ServerOption {
	return func(s *Server) error {
		db, err := postgres.New()
		if errors.Is(err, postgres.ErrNotConfigured) {
			s.log.Warn("DB_HOST not set, call journal disabled")
			return nil
		}
		if err != nil {
			s.log.Errorf("Failed to connect to database: %v", err)
			return fmt.Errorf("failed to create database connection: %w", err)
		}
		s.db = db
		return nil
	}
}

// WithSessionStore keeps sessions in Redis when REDIS_ADDRESS is set and in
// process memory otherwise. SESSION_TTL overrides the default lifetime.
func WithSessionStore() ServerOption {
	return func(s *Server) error {
		if v := os.Getenv("SESSION_TTL"); v != "" {
			ttl, err := time.ParseDuration(v)
			if err != nil || ttl <= 0 {
				return fmt.Errorf("invalid SESSION_TTL %q", v)
			}
			s.sessionTTL = ttl
		}

		if os.Getenv("REDIS_ADDRESS") == "" {
			s.log.Warn("REDIS_ADDRESS not set, sessions are kept in memory")
			s.sessionStore = session.NewMemoryStore(s.sessionTTL)
			return nil
		}

		redisServer, err := redis.New(s.log)
		if err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		s.redisServer = redisServer
		s.sessionStore = session.NewRedisStore(redisServer, s.sessionTTL, s.log)
		return nil
	}
}

func WithSigner() ServerOption {
	return func(s *Server) error {
		signer, err := jwtPkg.NewSignerFromEnv()
		if err != nil {
			return fmt.Errorf("failed to create session signer: %w", err)
		}
		s.signer = signer
		return nil
	}
}

func WithMiddleware() ServerOption {
	return func(s *Server) error {
		if s.log == nil {
			return fmt.Errorf("logger must be initialized before middleware")
		}
		if s.signer == nil || s.sessionStore == nil {
			return fmt.Errorf("signer and session store must be initialized before middleware")
		}
		s.middleware = middleware.New(s.log, s.signer, s.sessionStore)
		return nil
	}
}

// WithS3Client enables complaint archiving when COMPLAINT_ARCHIVE_BUCKET is
// set.
func WithS3Client() ServerOption {
	return func(s *Server) error {
		client, err := s3.New()
		if errors.Is(err, s3.ErrBucketNotSet) {
			s.log.Info("COMPLAINT_ARCHIVE_BUCKET not set, complaint archiving disabled")
			return nil
		}
		if err != nil {
			s.log.Errorf("Failed to initialize S3 client: %v", err)
			return fmt.Errorf("failed to create S3 client: %w", err)
		}
		s.s3Client = client
		return nil
	}
}

// WithTranscriber enables recording transcription. A missing OpenAI key only
// disables it; registrations with a recording then carry a warning.
func WithTranscriber() ServerOption {
	return func(s *Server) error {
		transcriber, err := audio.NewTranscriptionService()
		if err != nil {
			s.log.Warnf("Transcription disabled: %v", err)
			return nil
		}
		s.transcriber = transcriber
		return nil
	}
}

func WithSummarizer() ServerOption {
	return func(s *Server) error {
		summarizer, err := openai.NewSummarizer()
		if err != nil {
			s.log.Warnf("Evidence summarization disabled: %v", err)
			return nil
		}
		s.summarizer = summarizer
		return nil
	}
}

// WithTextExtractor picks the screenshot reader from OCR_PROVIDER: "gemini"
// or Google Vision (the default).
func WithTextExtractor(ctx context.Context) ServerOption {
	return func(s *Server) error {
		provider := strings.ToLower(strings.TrimSpace(os.Getenv("OCR_PROVIDER")))

		switch provider {
		case "gemini":
			client, err := gemini.NewGeminiClient(ctx)
			if err != nil {
				s.log.Warnf("Screenshot text extraction disabled: %v", err)
				return nil
			}
			s.geminiClient = client
			s.textReader = client
		case "", "vision", "google":
			client, err := google.New(ctx)
			if err != nil {
				s.log.Warnf("Screenshot text extraction disabled: %v", err)
				return nil
			}
			s.textReader = client
		default:
			return fmt.Errorf("unknown OCR_PROVIDER %q", provider)
		}
		return nil
	}
}

func WithRetell() ServerOption {
	return func(s *Server) error {
		client, err := retell.New(retell.ConfigFromEnv())
		if err != nil {
			return fmt.Errorf("failed to create voice platform client: %w", err)
		}
		s.retellClient = client
		return nil
	}
}

func WithBackend() ServerOption {
	return func(s *Server) error {
		client, err := backend.NewFromEnv()
		if err != nil {
			return fmt.Errorf("failed to create backend client: %w", err)
		}
		s.backend = client
		return nil
	}
}

func WithCallConfig(cfg callService.Config) ServerOption {
	return func(s *Server) error {
		s.callConfig = cfg
		return nil
	}
}

// WithScriptFonts loads extra PDF fonts from PDF_SCRIPT_FONTS, a list such as
// "Devanagari=/fonts/NotoSansDevanagari-Regular.ttf,Tamil=/fonts/NotoSansTamil-Regular.ttf".
func WithScriptFonts() ServerOption {
	return func(s *Server) error {
		fonts, err := document.ParseScriptFonts(os.Getenv("PDF_SCRIPT_FONTS"))
		if err != nil {
			return fmt.Errorf("failed to load PDF script fonts: %w", err)
		}
		for _, f := range fonts {
			s.log.WithField("script", f.Script).Info("PDF script font loaded")
		}
		s.scriptFonts = fonts
		return nil
	}
}

func WithUtils() ServerOption {
	return func(s *Server) error {
		s.utils = utils.New()
		return nil
	}
}

func (s *Server) RegisterHandler() {
	// Intake Domain
	evidence := intakeService.NewEvidencePipeline(s.log, s.transcriber, s.textReader, s.summarizer)
	intakeServices := intakeService.New(s.log, evidence, s.backend, s.sessionStore, s.signer, s.utils, s.sessionTTL)
	intakeHandlers := intakeHandler.New(s.log, s.validator, s.middleware, intakeServices, s.utils)

	// Call Domain
	callRepo := callRepository.New(s.db, s.log)
	callServices := callService.New(s.log, s.sessionStore, s.retellClient, s.backend, callRepo, s.callConfig)
	callHandlers := callHandler.New(s.log, s.middleware, callServices, s.callConfig)

	// Complaint Domain
	complaintServices := complaintService.New(s.log, s.s3Client, s.utils, s.scriptFonts)
	complaintHandlers := complaintHandler.New(s.log, s.validator, s.middleware, complaintServices)

	s.setupHealthCheck()
	s.handlers = append(s.handlers, intakeHandlers, callHandlers, complaintHandlers)
}

// Migrate creates the call journal table.
func (s *Server) Migrate(ctx context.Context) error {
	if s.db == nil {
		return postgres.ErrNotConfigured
	}
	return callRepository.New(s.db, s.log).Migrate(ctx)
}

func (s *Server) Run() error {
	s.engine.Use(s.middleware.NewRequestIDMiddleware())
	s.engine.Use(s.middleware.NewLoggingMiddleware())
	router := s.engine.Group("/api/v1")

	for _, h := range s.handlers {
		h.Start(router)
	}

	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "3000"
	}

	return s.engine.Listen(fmt.Sprintf(":%s", port))
}

// Shutdown stops accepting requests, waits for in-flight ones until ctx ends,
// then closes the adapters.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.engine.ShutdownWithContext(ctx)

	if s.geminiClient != nil {
		s.geminiClient.Close()
	}
	if s.redisServer != nil {
		if cerr := s.redisServer.Close(); cerr != nil {
			s.log.Warnf("Failed to close redis: %v", cerr)
		}
	}
	if s.db != nil {
		if cerr := s.db.Close(); cerr != nil {
			s.log.Warnf("Failed to close database: %v", cerr)
		}
	}

	return err
}

func (s *Server) setupHealthCheck() {
	s.engine.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.JSON(fiber.Map{
			"message": "Server is Healthy!",
		})
	})
}
