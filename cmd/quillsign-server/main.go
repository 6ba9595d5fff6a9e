package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/quillsign/quillsign/internal/config"
	"github.com/quillsign/quillsign/internal/event"
	"github.com/quillsign/quillsign/internal/logger"
	"github.com/quillsign/quillsign/internal/narration"
	"github.com/quillsign/quillsign/internal/server"
	"github.com/quillsign/quillsign/internal/store"
	"github.com/quillsign/quillsign/internal/version"
	"github.com/quillsign/quillsign/internal/workflow"
	"github.com/spf13/cobra"
)

//	@title			quillsign-server
//	@description	quillsign-server is an electronic document signing service: documents, signature fields, signers and the signing workflow behind them
//	@description
//	@description	## Common Error Responses
//	@description	All endpoints may return:
//	@description	- `413` Request body exceeds size limit
//	@description	- `429` Rate limit exceeded
//	@description	- `500` Internal server error
//	@description
//	@description	Individual endpoints document their specific business logic errors.
//	@description
//	@description	## Request Limits
//	@description	All endpoints are protected by:
//	@description	- **Rate limiting**: Configurable requests per second (see env vars) - default 100 rps (set to 0 to disable)
//	@description	- **Request size limits**: 1MB, except document uploads which are capped by MAX_UPLOAD_BYTES (default 10MB)
//	@description
//	@description	Check the X-Max-Request-Body response header for the configured limit on upload payloads.
//	@description
//	@description	The rate limit is set globally and prevents abuse of the service.
//	@description	In production there may be additional protections in place such as per-IP rate limiting provided by the load balancer/reverse proxy.
//	@description
//	@description	## Authentication & Authorization
//	@description
//	@description	The API does not require credentials to be sent with the request.
//	@description	Signer-level authorization is enforced per operation: a fill or completion request
//	@description	must name an activated signer and may only touch fields assigned to them.
//	@description
//	@description	In a production deployment an authenticating reverse proxy or OAuth 2.0 layer
//	@description	would sit in front of this service and map callers to signer identities.
//	@description
//	@license.name	MIT

//	@servers.url			https://sign.example.com
//	@servers.description	Production server
//	@servers.url			http://localhost:8080
//	@servers.description	Development server

//	@accept		json
//	@produce	json

//	@tag.name			Documents
//	@tag.description	Document lifecycle: create, list, update, duplicate, export/import, render

//	@tag.name			Fields
//	@tag.description	Place, update and remove interactive fields on document pages

//	@tag.name			Signers
//	@tag.description	Manage the participants of a signing workflow

//	@tag.name			Workflow
//	@tag.description	Send, fill, complete, decline, void and track signing progress

//	@tag.name			Common
//	@tag.description	Server API endpoints (health, readiness, version, metrics)

func main() {
	cmd := &cobra.Command{
		Use:   "quillsign-server",
		Short: "Electronic document signing server",
		Long:  `quillsign-server hosts the document store, signing workflow engine and viewer APIs`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run()
		},
	}

	v := version.Get()
	cmd.Version = fmt.Sprintf("%s (built %s, commit %s)", v.Version, v.BuildDate, v.GitCommit)

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.NewServerConfig()
	if err != nil {
		log.Printf("failed to load configuration: %v", err.Error())
		os.Exit(1)
	}

	appLogger := logger.InitLogger(logger.ParseLogLevel(cfg.LogLevel), cfg.Environment)

	appLogger.Info("Configuration loaded",
		slog.String("ENVIRONMENT", cfg.Environment),
		slog.String("HOST", cfg.Host),
		slog.Int("PORT", cfg.Port),
		slog.String("LOG_LEVEL", cfg.LogLevel),
		slog.String("NATS_URL", cfg.NatsURL),
		slog.Bool("NARRATION_ENABLED", cfg.NarrationEnabled),
		slog.Duration("EXPIRY_SWEEP_INTERVAL", cfg.ExpirySweepInterval),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// events fan out to the in-process bus (narration) and, when configured,
	// to NATS for the notification senders
	bus := event.NewBus()
	publisher := event.Fanout(bus, event.NewNATSPublisher(cfg.NatsURL, appLogger))

	if cfg.NarrationEnabled {
		announcer := narration.New(narration.SpeakerFunc(func(_ context.Context, text string) error {
			appLogger.Info("narration", slog.String("text", text))
			return nil
		}), appLogger)
		defer announcer.Close()

		bus.Subscribe(narration.NewNarrator(announcer).Handle)
	}

	documentStore := store.New()
	engine := workflow.New(publisher, appLogger)

	if cfg.ExpirySweepInterval > 0 {
		sweeper := workflow.NewSweeper(documentStore, engine, cfg.ExpirySweepInterval, appLogger)
		go sweeper.Run(ctx)
	}

	appLogger.Info("Starting server", slog.String("version", version.Get().Version))

	server, err := server.NewServer(
		cfg,
		appLogger,
		documentStore,
		engine,
		publisher,
	)
	if err != nil {
		appLogger.Error("Failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := server.Start(ctx); err != nil {
		appLogger.Error("Server error", slog.String("error", err.Error()))
		return err
	}

	appLogger.Info("server shutdown complete")
	return nil
}
