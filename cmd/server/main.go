package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Netflix/go-env"
	"github.com/blugelabs/bluge"
	"github.com/dgraph-io/badger/v4"
	"github.com/fxamacker/cbor/v2"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/database"
	"github.com/mama165/sdk-go/logs"

	"github.com/Mohammad-Harkous/chat-app/auth"
	"github.com/Mohammad-Harkous/chat-app/infrastructure/httpapi"
	"github.com/Mohammad-Harkous/chat-app/internal"
	"github.com/Mohammad-Harkous/chat-app/moderation"
	"github.com/Mohammad-Harkous/chat-app/observability"
	"github.com/Mohammad-Harkous/chat-app/repositories"
	"github.com/Mohammad-Harkous/chat-app/runtime"
	"github.com/Mohammad-Harkous/chat-app/runtime/workers"
	"github.com/Mohammad-Harkous/chat-app/services"
)

// Exit codes to provide meaningful status to the operating system or service manager (e.g., systemd).
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

const shutdownTimeout = 10 * time.Second

func main() {
	// The main function acts as a thin wrapper.
	// Its only responsibility is to call run() and handle the OS exit code.
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Server terminated with error: %v\n", err)
	}
	os.Exit(code)
}

// run initializes all components, manages the server lifecycle, and centralizes
// error reporting, so that 'defer' statements (database cleanup) execute before
// the process exits.
func run() (int, error) {
	// 1. Configuration & Logger
	_ = godotenv.Load()

	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}

	replacement, err := config.ReplacementRune()
	if err != nil {
		return exitConfig, err
	}

	logger := logs.GetLoggerFromString(config.LogLevel)
	ctx := context.Background()

	// 2. Storage (BadgerDB + Bluge)
	db, err := badger.Open(buildBadgerOpts(config, logger, ctx))
	if err != nil {
		return exitRuntime, fmt.Errorf("database opening failed: %w", err)
	}

	if logger.Enabled(ctx, slog.LevelDebug) {
		debugPort := 8081
		endpoint := "/inspect"
		logger.Info("Debug Badger inspector available",
			"url", fmt.Sprintf("http://localhost:%d%s", debugPort, endpoint))
		database.StartDebugServer(db, debugPort, endpoint, recordMapper)
	}

	defer func() {
		logger.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	blugeWriter, err := bluge.OpenWriter(bluge.DefaultConfig(config.BlugeFilepath))
	if err != nil {
		return exitRuntime, fmt.Errorf("failed to open bluge writer: %w", err)
	}
	defer func() {
		logger.Info("Closing Bluge...")
		_ = blugeWriter.Close()
	}()

	// 3. Repositories & Services
	tokens := auth.NewTokenService(config.JWTSecret, config.AuthTokenDuration)

	var moderator *moderation.Moderator
	if words := config.WordList(); len(words) > 0 {
		moderator, err = moderation.NewModerator(words, replacement)
		if err != nil {
			return exitConfig, fmt.Errorf("moderation config error: %w", err)
		}
		logger.Info("Moderation enabled", "words", len(words))
	}

	userRepository := repositories.NewUserRepository(db, blugeWriter, logger)
	conversationRepository := repositories.NewConversationRepository(db, userRepository, logger)
	messageRepository, err := repositories.NewMessageRepository(db, logger)
	if err != nil {
		return exitRuntime, fmt.Errorf("message repository init failed: %w", err)
	}
	defer func() {
		_ = messageRepository.Close()
	}()

	authService := services.NewAuthService(userRepository, tokens)
	directoryService := services.NewDirectoryService(userRepository)
	conversationService := services.NewConversationService(conversationRepository, userRepository)
	messageService := services.NewMessageService(messageRepository, conversationRepository,
		userRepository, moderator, logger)

	// 4. Live delivery & Supervision
	presence := runtime.NewPresence()
	router := runtime.NewRouter(presence, userRepository, conversationService, messageService, logger)

	monitor := observability.NewMonitor()
	sup := workers.NewSupervisor(logger)
	sup.Add(
		workers.NewBadgerGCWorker(db, logger, config.GCInterval),
		workers.NewMonitoringWorker(logger, monitor,
			func() int { return len(presence.Sinks()) }, config.MonitorInterval),
	)

	// 5. Context & Signals
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	go sup.Run(ctx)

	// 6. HTTP Server Setup
	handlers := httpapi.Handlers{
		Auth:          httpapi.NewAuthHandler(authService, logger),
		Users:         httpapi.NewUserHandler(directoryService, logger),
		Conversations: httpapi.NewConversationHandler(conversationService, messageService, logger),
		Messages:      httpapi.NewMessageHandler(messageService, logger),
		WS: httpapi.NewWSHandler(tokens, router, logger,
			config.ConnectionBufferSize, config.DeliveryTimeout),
	}

	address := fmt.Sprintf("%s:%d", config.Host, config.Port)
	srv := &http.Server{
		Addr:              address,
		Handler:           httpapi.NewRouter(tokens, monitor, handlers, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server", "address", address, "at", time.Now().UTC())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("http server error: %w", err)
		}
	}()

	// 7. Wait for Stop or Error
	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	case err := <-errChan:
		return exitRuntime, err
	}

	// 8. Final Cleanup (Graceful Shutdown)
	logger.Info("Shutting down gracefully...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP shutdown error", "error", err)
	}
	sup.Stop()
	logger.Info("Program stopped cleanly")

	return exitOK, nil
}

func buildBadgerOpts(config internal.Config, logger *slog.Logger, ctx context.Context) badger.Options {
	options := badger.DefaultOptions(config.BadgerFilepath)

	if logger.Enabled(ctx, slog.LevelDebug) {
		options = options.WithLoggingLevel(badger.DEBUG).
			WithBypassLockGuard(true)
	} else {
		options = options.WithLoggingLevel(badger.INFO)
	}

	return options
}

// recordMapper renders the CBOR records stored under the user/conv/msg key
// prefixes for the debug inspector.
func recordMapper(key string, val []byte) database.InspectRow {
	row := database.DefaultMapper(key, val)

	var record map[string]any
	if err := cbor.Unmarshal(val, &record); err != nil {
		return row
	}

	switch {
	case len(key) >= 5 && key[:5] == "user:":
		row.Type = "USER"
		row.Detail = fmt.Sprintf("%v <%v>", record["username"], record["email"])
	case len(key) >= 5 && key[:5] == "conv:":
		row.Type = "CONV"
		row.Detail = fmt.Sprintf("%v <-> %v", record["participant1"], record["participant2"])
	case len(key) >= 4 && key[:4] == "msg:":
		row.Type = "MSG"
		row.Detail = fmt.Sprintf("%v", record["content"])
	}

	return row
}
