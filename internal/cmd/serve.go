package cmd

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cobra"

	"github.com/rebasekit/rebasekit/internal/config"
	"github.com/rebasekit/rebasekit/internal/git"
	"github.com/rebasekit/rebasekit/internal/git/executor"
	"github.com/rebasekit/rebasekit/internal/handlers"
	"github.com/rebasekit/rebasekit/internal/logger"
	"github.com/rebasekit/rebasekit/internal/middleware"
	"github.com/rebasekit/rebasekit/internal/services"
)

var (
	serveConfigPath string
	serveListenAddr string
	serveLogLevel   string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the rebase session API server",
	Long: `# rebasekit serve

Runs the HTTP API that manages rebase sessions. Clients create a session
for a repository, edit the plan through the session endpoints, and execute
the rebase when the preview is clean.

Settings come from an optional YAML file (**--config**) with
` + "`REBASEKIT_*`" + ` environment overrides.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServer(serveConfigPath)
	},
}

func init() {
	serveCmd.Flags().StringVarP(&serveConfigPath, "config", "c", "", "path to YAML config file")
	serveCmd.Flags().StringVarP(&serveListenAddr, "listen", "l", "", "listen address (overrides config)")
	serveCmd.Flags().StringVar(&serveLogLevel, "log-level", "", "log level: debug, info, warn, error (overrides config)")
	rootCmd.AddCommand(serveCmd)
}

func runServer(configPath string) error {
	settings, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if serveListenAddr != "" {
		settings.ListenAddr = serveListenAddr
	}
	if serveLogLevel != "" {
		settings.LogLevel = serveLogLevel
	}
	logger.Configure(logger.LogLevel(settings.LogLevel), false)

	ops := buildOperations(settings)
	service := services.NewRebaseService(ops)

	app := fiber.New(fiber.Config{
		AppName:               "rebasekit",
		DisableStartupMessage: true,
	})

	auth := middleware.NewAuthMiddleware(settings.AuthToken)
	app.Use(auth.RequireAuth)

	handlers.Register(app, service, ops)

	errs := make(chan error, 1)
	go func() {
		logger.Infof("listening on %s", settings.ListenAddr)
		errs <- app.Listen(settings.ListenAddr)
	}()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errs:
		return err
	case sig := <-sigs:
		logger.Infof("received %s, shutting down", sig)
		return app.ShutdownWithTimeout(10 * time.Second)
	}
}

// buildOperations picks the git backend: the go-git executor by default, or
// a plain shell executor when a specific git binary is configured.
func buildOperations(settings config.Settings) git.Operations {
	if settings.GitBinary != "" {
		return git.NewOperationsWithExecutor(executor.NewShellExecutorWithBinary(settings.GitBinary, nil))
	}
	return git.NewOperations()
}
