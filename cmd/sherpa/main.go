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

	"github.com/spf13/cobra"
	_ "golang.org/x/crypto/x509roots/fallback" // Embed CA certs for scratch container

	azuredevopsadapter "github.com/sherpadev/sherpa/internal/adapter/driven/azuredevops"
	githubadapter "github.com/sherpadev/sherpa/internal/adapter/driven/github"
	sqliteadapter "github.com/sherpadev/sherpa/internal/adapter/driven/sqlite"
	httphandler "github.com/sherpadev/sherpa/internal/adapter/driving/http"
	"github.com/sherpadev/sherpa/internal/application"
	"github.com/sherpadev/sherpa/internal/config"
	"github.com/sherpadev/sherpa/internal/domain/model"
	"github.com/sherpadev/sherpa/internal/domain/port/driven"
	"github.com/sherpadev/sherpa/internal/generate"
	"github.com/sherpadev/sherpa/internal/secret"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	root := &cobra.Command{
		Use:           "sherpa",
		Short:         "Session, knowledge and source manager for AI-assisted development",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(serveCmd(), generateCmd(), versionCmd())

	if err := root.Execute(); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	}
}

func generateCmd() *cobra.Command {
	var outDir string

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Render enabled knowledge entries into AI-assistant instruction files",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd.Context(), outDir)
		},
	}
	cmd.Flags().StringVarP(&outDir, "out", "o", "", "output directory (default from SHERPA_GENERATE_DIR)")
	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the sherpa version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("sherpa", version)
		},
	}
}

func runServe() error {
	// 1. Load configuration (fail fast on invalid env vars).
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	slog.Info("config loaded",
		"listen_addr", cfg.ListenAddr,
		"db_path", cfg.DBPath,
	)

	// 2. Setup signal-based context (SIGINT, SIGTERM).
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Open database (dual reader/writer with WAL mode).
	db, err := sqliteadapter.NewDB(ctx, cfg.DBPath)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()
	slog.Info("database opened", "path", cfg.DBPath)

	// 4. Run migrations on writer connection.
	if err := sqliteadapter.RunMigrations(db.Writer); err != nil {
		return err
	}
	slog.Info("migrations complete")

	// 5. Derive the encryption key for credentials at rest.
	km, err := secret.KeyMaterialFromEnv()
	if err != nil {
		return err
	}
	secrets, err := secret.NewStore(km)
	if err != nil {
		return err
	}

	// 6. Wire adapters.
	sessionStore := sqliteadapter.NewSessionRepo(db)
	knowledgeStore := sqliteadapter.NewKnowledgeRepo(db)
	sourceStore := sqliteadapter.NewSourceRepo(db, secrets, slog.Default())

	verifiers := map[model.SourceKind]driven.SourceVerifier{
		model.SourceKindAzureDevOps: azuredevopsadapter.NewVerifier(),
		model.SourceKindGitHub:      githubadapter.NewVerifier(),
	}

	// 7. Wire services.
	sessionSvc := application.NewSessionService(sessionStore)
	knowledgeSvc := application.NewKnowledgeService(knowledgeStore)
	sourceSvc := application.NewSourceService(sourceStore, verifiers, slog.Default())
	healthSvc := application.NewHealthService(sessionStore, knowledgeStore, sourceStore)

	// 8. Re-encrypt any credentials stored as pre-encryption plaintext.
	migrated, err := sourceSvc.MigrateLegacyCredentials(ctx)
	if err != nil {
		return err
	}
	if migrated > 0 {
		slog.Info("legacy credentials re-encrypted", "count", migrated)
	}

	// 9. Create HTTP handler and register routes.
	apiHandler := httphandler.NewHandler(sessionSvc, knowledgeSvc, sourceSvc, healthSvc, slog.Default())
	handler := httphandler.NewServeMux(apiHandler, slog.Default())

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		slog.Info("http server starting", "addr", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server error", "error", err)
		}
	}()

	slog.Info("sherpa started", "listen_addr", cfg.ListenAddr, "version", version)

	// 10. Wait for shutdown signal, then drain.
	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("http server shutdown error", "error", err)
	}

	slog.Info("shutdown complete")
	return nil
}

func runGenerate(ctx context.Context, outDir string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if outDir == "" {
		outDir = cfg.GenerateDir
	}

	db, err := sqliteadapter.NewDB(ctx, cfg.DBPath)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()

	if err := sqliteadapter.RunMigrations(db.Writer); err != nil {
		return err
	}

	knowledgeStore := sqliteadapter.NewKnowledgeRepo(db)
	entries, err := knowledgeStore.List(ctx, "", true)
	if err != nil {
		return err
	}

	result, err := generate.New(outDir, slog.Default()).Run(entries)
	if err != nil {
		return err
	}

	slog.Info("generation complete", "files", len(result.Files), "entries", len(entries))
	for _, f := range result.Files {
		fmt.Println(f)
	}
	return nil
}
