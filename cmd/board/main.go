package main

import (
	"context"
	"fmt"
	"log/slog"
	"message-board/attachments"
	"message-board/auth"
	"message-board/infrastructure/http/server"
	"message-board/moderation"
	"message-board/repositories"
	"message-board/runtime/workers"
	"message-board/services"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run wires every component and blocks until a signal or a server error.
// Returning instead of exiting lets the deferred cleanups run.
func run() error {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	// 2. Attachment layout
	resolver := attachments.NewResolver(config.UploadRoot)
	if err := resolver.EnsureDirs(); err != nil {
		return fmt.Errorf("upload directories: %w", err)
	}

	// 3. Record store
	repository, closeStore, err := openRepository(config, resolver, log)
	if err != nil {
		return err
	}
	defer closeStore()

	// 4. Services
	moderator, err := newModerator(config, log)
	if err != nil {
		return err
	}

	boardService := services.NewBoardService(repository,
		attachments.NewWriter(resolver, log, config.MinFreeBytes()),
		resolver,
		attachments.NewCollector(resolver, config.GCGrace, log),
		moderator, log)

	passwordHash, err := adminPasswordHash(config)
	if err != nil {
		return err
	}
	tokenizer := auth.NewTokenizer(config.JWTSecret, config.AuthTokenDuration)
	adminService := services.NewAdminService(passwordHash, tokenizer, log)

	// 5. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sup := workers.NewSupervisor(log)
	supDone := make(chan struct{})
	if config.GCInterval > 0 {
		sup.Add(workers.NewCollectorWorker(boardService, config.GCInterval, log))
	}
	go func() {
		sup.Run(ctx)
		close(supDone)
	}()

	// 6. HTTP Server
	address := fmt.Sprintf("%s:%d", config.Host, config.Port)
	boardServer := server.NewBoardServer(log, boardService, adminService, tokenizer, resolver, config.MaxUploadBytes())
	httpServer := &http.Server{
		Addr:              address,
		Handler:           boardServer.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "address", address, "backend", config.StoreBackend, "at", time.Now().UTC())
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	// 7. Wait for Stop or Error
	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
	case err := <-errChan:
		return err
	}

	// 8. Final Cleanup
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	<-supDone
	log.Info("Program stopped cleanly")
	return nil
}

func openRepository(config Config, resolver attachments.Resolver, log *slog.Logger) (repositories.IMessageRepository, func(), error) {
	switch config.StoreBackend {
	case backendJSON:
		repository := repositories.NewJSONMessageRepository(config.DataPath, resolver, log)
		if err := repository.Init(); err != nil {
			return nil, nil, fmt.Errorf("message store init failed: %w", err)
		}
		log.Info("Using JSON message store", "path", config.DataPath)
		return repository, func() {}, nil

	case backendBadger:
		db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).
			WithLoggingLevel(badger.WARNING))
		if err != nil {
			return nil, nil, fmt.Errorf("database opening failed: %w", err)
		}
		repository, err := repositories.NewBadgerMessageRepository(db, resolver, log)
		if err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		log.Info("Using Badger message store", "path", config.BadgerFilepath)
		return repository, func() {
			log.Info("Closing BadgerDB...")
			_ = repository.Close()
			_ = db.Close()
		}, nil

	default:
		return nil, nil, fmt.Errorf("unknown STORE_BACKEND %q (expected %s or %s)", config.StoreBackend, backendJSON, backendBadger)
	}
}

// newModerator merges CENSORED_WORDS with the dictionaries of CENSORED_WORDS_DIR.
// Without any word moderation is disabled and nil is returned.
func newModerator(config Config, log *slog.Logger) (*moderation.Moderator, error) {
	words := config.Words()
	if config.CensoredWordsDir != "" {
		data, err := moderation.LoadWords(os.DirFS(config.CensoredWordsDir), ".")
		if err != nil {
			return nil, fmt.Errorf("loading censored words from %s: %w", config.CensoredWordsDir, err)
		}
		log.Info("Censored words loaded", "count", len(data.Words), "languages", data.Languages)
		words = append(words, data.Words...)
	}
	if len(words) == 0 {
		return nil, nil
	}
	m, err := moderation.NewModerator(words, config.ReplacementRune(), log)
	if err != nil {
		return nil, fmt.Errorf("moderator: %w", err)
	}
	return &m, nil
}

// adminPasswordHash prefers the configured hash and otherwise hashes the plain password once at startup.
func adminPasswordHash(config Config) (string, error) {
	switch {
	case config.AdminPasswordHash != "":
		return config.AdminPasswordHash, nil
	case config.AdminPassword != "":
		hash, err := auth.HashPassword(config.AdminPassword)
		if err != nil {
			return "", fmt.Errorf("hashing admin password: %w", err)
		}
		return hash, nil
	default:
		return "", fmt.Errorf("either ADMIN_PASSWORD or ADMIN_PASSWORD_HASH must be set")
	}
}
