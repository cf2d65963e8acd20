// Package wire provides dependency injection for the dicebot application.
// It creates singleton services with lazy initialization.
package wire

import (
	"database/sql"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	cliadapter "github.com/example/dicebot/internal/adapters/cli"
	"github.com/example/dicebot/internal/adapters/discord"
	"github.com/example/dicebot/internal/adapters/metrics"
	"github.com/example/dicebot/internal/adapters/sqlite"
	"github.com/example/dicebot/internal/app"
	"github.com/example/dicebot/internal/config"
	"github.com/example/dicebot/internal/core/customdice"
	"github.com/example/dicebot/internal/core/customparam"
	"github.com/example/dicebot/internal/core/interaction"
	"github.com/example/dicebot/internal/core/quickroll"
	"github.com/example/dicebot/internal/db"
	"github.com/example/dicebot/internal/dice"
	"github.com/example/dicebot/internal/logging"
	"github.com/example/dicebot/internal/ports/primary"
	"github.com/example/dicebot/internal/ports/secondary"
)

var (
	cfg                *config.Config
	logger             *slog.Logger
	database           *sql.DB
	promRegistry       *prometheus.Registry
	session            *discordgo.Session
	throttleScheduler  *app.ThrottleScheduler
	configService      primary.ConfigurationService
	maintenanceService primary.MaintenanceService
	interactionService primary.InteractionService
	once               sync.Once
)

// Config returns the process configuration.
func Config() *config.Config {
	once.Do(initServices)
	return cfg
}

// Logger returns the process logger.
func Logger() *slog.Logger {
	once.Do(initServices)
	return logger
}

// ConfigurationService returns the singleton ConfigurationService instance.
func ConfigurationService() primary.ConfigurationService {
	once.Do(initServices)
	return configService
}

// MaintenanceService returns the singleton MaintenanceService instance.
func MaintenanceService() primary.MaintenanceService {
	once.Do(initServices)
	return maintenanceService
}

// InteractionService returns the singleton InteractionService instance, or
// nil when no Discord token is configured.
func InteractionService() primary.InteractionService {
	once.Do(initServices)
	return interactionService
}

// initServices initializes all services and their dependencies.
// This is called once via sync.Once.
func initServices() {
	var err error
	cfg, err = config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}
	logger = logging.New(cfg.LogLevel)

	database, err = db.Open(cfg.DBPath)
	if err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}

	// Create repository adapters (secondary ports) - sqlite adapters with injected DB
	configRepo := sqlite.NewConfigRepository(database)
	messageRepo := sqlite.NewMessageRepository(database)

	registry, err := interaction.NewRegistry(
		customparam.New(dice.Check),
		customdice.New(dice.Check),
		quickroll.New(),
	)
	if err != nil {
		log.Fatalf("failed to register command kinds: %v", err)
	}

	promRegistry = prometheus.NewRegistry()
	promRegistry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	recorder := metrics.NewPrometheusMetrics(promRegistry)

	// The chat surface is optional: without a token the CLI still manages
	// configurations, it just cannot post them.
	var (
		chat    secondary.ChatAdapter
		tracker *app.LifecycleTracker
	)
	if cfg.DiscordToken != "" {
		session, err = discord.NewSession(cfg.DiscordToken)
		if err != nil {
			log.Fatalf("failed to initialize discord: %v", err)
		}
		chat = discord.NewChatAdapter(session)
		tracker = app.NewLifecycleTracker(messageRepo, chat, recorder, logger)
	}

	configService = app.NewConfigurationService(registry, configRepo, messageRepo, chat, tracker, logger)
	maintenanceService = app.NewMaintenanceService(messageRepo, recorder, cfg.TombstoneRetention, logger)
	throttleScheduler = app.NewThrottleScheduler(cfg.MinReplacementInterval)

	if chat != nil {
		resolver := app.NewResolver(configRepo, messageRepo, cfg.LegacyMessageLookup, logger)
		executor := app.NewEffectExecutor(chat, messageRepo, dice.NewRoller(time.Now().UnixNano()), tracker, throttleScheduler, recorder, logger)
		interactionService = app.NewInteractionService(registry, resolver, executor, recorder, logger)
	}
}

// Gateway returns a Discord gateway dispatching clicks to the interaction service.
func Gateway() (*discord.Gateway, error) {
	once.Do(initServices)
	if err := cfg.RequireDiscordToken(); err != nil {
		return nil, err
	}
	return discord.NewGateway(session, interactionService, logger), nil
}

// OpsServer returns the metrics, health and throttle server, or nil when disabled.
func OpsServer() *metrics.Server {
	once.Do(initServices)
	if cfg.MetricsAddr == "" {
		return nil
	}
	return metrics.NewServer(cfg.MetricsAddr, promRegistry, throttleScheduler, logger)
}

// Close releases the database.
func Close() error {
	if database == nil {
		return nil
	}
	if err := database.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	return nil
}

// ConfigAdapter returns a new ConfigAdapter writing to stdout.
// Each call creates a new adapter (adapters are stateless translators).
func ConfigAdapter() *cliadapter.ConfigAdapter {
	return ConfigAdapterWithOutput(os.Stdout)
}

// ConfigAdapterWithOutput returns a new ConfigAdapter writing to the given output.
func ConfigAdapterWithOutput(out io.Writer) *cliadapter.ConfigAdapter {
	once.Do(initServices)
	return cliadapter.NewConfigAdapter(configService, out)
}

// MaintenanceAdapter returns a new MaintenanceAdapter writing to stdout.
func MaintenanceAdapter() *cliadapter.MaintenanceAdapter {
	once.Do(initServices)
	return cliadapter.NewMaintenanceAdapter(maintenanceService, os.Stdout)
}
