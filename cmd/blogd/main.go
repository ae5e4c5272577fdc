// Command blogd serves the blog post API.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	flag "github.com/spf13/pflag"

	"github.com/R3E-Network/blog_service/internal/app/runtime"
	"github.com/R3E-Network/blog_service/internal/config"
	"github.com/R3E-Network/blog_service/pkg/logger"
)

func main() {
	var (
		configFile = flag.String("config", "", "Path to YAML config file (defaults to $BLOG_CONFIG)")
		envFile    = flag.String("env-file", ".env", "Path to .env file loaded before reading the environment")
		dsn        = flag.String("dsn", "", "Database DSN; overrides config and DATABASE_URL")
		driver     = flag.String("driver", "", "Database driver: sqlite3|postgres|memory")
		port       = flag.Int("port", 0, "Listen port; overrides config and PORT")
	)
	flag.Parse()

	cfg, err := config.Load(config.LoadOptions{ConfigFile: *configFile, EnvFile: *envFile})
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	if *driver != "" {
		cfg.Database.Driver = *driver
	}
	if *dsn != "" {
		cfg.Database.DSN = *dsn
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log := logger.New(cfg.Logging.Logger())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application, err := runtime.NewApplication(ctx, cfg, log)
	if err != nil {
		log.WithError(err).Fatal("failed to initialise application")
	}

	if err := application.Run(ctx); err != nil {
		log.WithError(err).Error("server error")
	}

	log.Info("Shutting down...")
	if err := application.Shutdown(context.Background()); err != nil {
		log.WithError(err).Error("shutdown error")
		os.Exit(1)
	}
	log.Info("Service stopped")
}
