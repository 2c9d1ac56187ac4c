package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"autoremedy/config"
	_ "autoremedy/docs" // Swagger docs
	"autoremedy/internal/classifier"
	"autoremedy/internal/httpserver"
	"autoremedy/internal/patcher"
	"autoremedy/internal/planner"
	"autoremedy/internal/publisher"
	"autoremedy/internal/remediation"
	"autoremedy/internal/webhook"
	"autoremedy/pkg/git"
	"autoremedy/pkg/github"
	"autoremedy/pkg/log"
	"autoremedy/pkg/telegram"
)

// @title       autoremedy API
// @description Receives CI/CD failure webhooks, patches the dependency manifest and publishes the fix.
// @version     1
// @host        localhost:8080
// @schemes     http
func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:          "autoremedy",
	Short:        "Build-failure auto-remediation webhook service",
	Long:         `Listens for failed CI runs and deploys, adds missing dependency declarations to the manifest and pushes the fix.`,
	SilenceUsage: true,
	RunE:         runServe,
}

func init() {
	rootCmd.AddCommand(classifyCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	// 1. Configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// 2. Logger
	logger := log.Init(log.ZapConfig{
		Level:        cfg.Logger.Level,
		Mode:         cfg.Logger.Mode,
		Encoding:     cfg.Logger.Encoding,
		ColorEnabled: cfg.Logger.ColorEnabled,
	})

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info(ctx, "Starting autoremedy...")
	logger.Infof(ctx, "Environment: %s", cfg.Environment.Name)
	logger.Infof(ctx, "Repository: %s, manifest: %s", cfg.Remediation.RepoPath, cfg.Remediation.Manifest)

	// 3. Classifier
	table, err := classifier.LoadRules(cfg.Remediation.RulesPath)
	if err != nil {
		return fmt.Errorf("failed to load rules: %w", err)
	}
	ruleClassifier := classifier.New(table)
	logger.Infof(ctx, "Loaded %d rules: %v", table.Len(), table.IDs())

	// 4. Git + publisher
	repo, err := git.Open(logger, git.Config{
		RepoPath:    cfg.Remediation.RepoPath,
		Remote:      cfg.Git.Remote,
		Branch:      cfg.Git.Branch,
		AuthorName:  cfg.Git.AuthorName,
		AuthorEmail: cfg.Git.AuthorEmail,
	}, git.ExecCommandRunner{})
	if err != nil {
		return fmt.Errorf("failed to open repository: %w", err)
	}

	// 5. Collaborators
	deps := remediation.Deps{
		Classifier: ruleClassifier,
		Planner:    planner.New(nil),
		Patcher:    patcher.New(logger),
		Publisher:  publisher.New(logger, repo, publisher.Options{PushAttempts: cfg.Git.PushAttempts}),
	}

	githubClient := github.NewClient(cfg.GitHub.Token)
	githubClient.SetAPIURL(cfg.GitHub.APIURL)
	deps.Logs = githubClient
	if cfg.GitHub.Token == "" {
		logger.Warn(ctx, "github.token not set, workflow logs are fetched anonymously")
	}

	if cfg.Telegram.BotToken != "" {
		deps.Sender = telegram.NewBot(cfg.Telegram.BotToken)
		logger.Info(ctx, "✅ Telegram notifications enabled")
	} else {
		logger.Info(ctx, "Telegram notifications disabled")
	}

	remediationUC := remediation.New(logger, deps, remediation.Options{
		RepoPath: cfg.Remediation.RepoPath,
		Manifest: cfg.Remediation.Manifest,
		Timeout:  cfg.Remediation.Timeout,
		ChatID:   cfg.Telegram.ChatID,
	})

	// 6. HTTP Server
	webhookHandler := webhook.NewHandler(remediationUC, webhook.SecurityConfig{
		Secret:          cfg.Webhook.Secret,
		AllowedIPs:      cfg.Webhook.AllowedIPs,
		RateLimitPerMin: cfg.Webhook.RateLimitPerMin,
		DedupeTTL:       cfg.Webhook.DedupeTTL,
	}, logger)

	repoReady := func() error { return git.Detect(cfg.Remediation.RepoPath) }
	httpServer, err := httpserver.New(logger, httpserver.Config{
		Logger:         logger,
		Port:           cfg.HTTPServer.Port,
		Mode:           cfg.HTTPServer.Mode,
		Environment:    cfg.Environment.Name,
		ReadyCheck:     repoReady,
		WebhookHandler: webhookHandler,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize HTTP server: %w", err)
	}

	// 7. Run
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return httpServer.Run(gctx)
	})

	if cfg.Remediation.WatchRules && cfg.Remediation.RulesPath != "" {
		watcher, err := classifier.NewWatcher(cfg.Remediation.RulesPath, ruleClassifier, logger)
		if err != nil {
			stop()
			_ = g.Wait()
			return fmt.Errorf("failed to watch rules: %w", err)
		}
		g.Go(func() error {
			return watcher.Run(gctx)
		})
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error(ctx, "Server stopped with error: ", err)
		return err
	}

	logger.Info(ctx, "Server stopped gracefully")
	return nil
}
