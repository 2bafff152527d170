package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/overtake-labs/staking-monitor/internal/alert"
	"github.com/overtake-labs/staking-monitor/internal/api"
	"github.com/overtake-labs/staking-monitor/internal/clients/telegram"
	"github.com/overtake-labs/staking-monitor/internal/config"
	"github.com/overtake-labs/staking-monitor/internal/db"
	dbmodel "github.com/overtake-labs/staking-monitor/internal/db/model"
	"github.com/overtake-labs/staking-monitor/internal/monitor"
	"github.com/overtake-labs/staking-monitor/internal/observability/metrics"
	"github.com/overtake-labs/staking-monitor/internal/observability/tracing"
	"github.com/overtake-labs/staking-monitor/internal/queue"
	"github.com/overtake-labs/staking-monitor/internal/services"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func StartServerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start-server",
		Short: "Starts the staking monitor with every active subscription",
		Args:  cobra.ExactArgs(0),
		RunE:  startServer,
	}

	return cmd
}

func startServer(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ctx = tracing.InjectTraceID(ctx)
	log := log.Ctx(ctx)

	cfgPath := GetConfigPath()
	cfg, err := config.New(cfgPath)
	if err != nil {
		log.Fatal().Err(err).Msg(fmt.Sprintf("error while loading config file: %s", cfgPath))
	}

	err = dbmodel.Setup(ctx, &cfg.Db)
	if err != nil {
		log.Fatal().Err(err).Msg("error while setting up subscription db model")
	}

	database, err := db.New(ctx, cfg.Db)
	if err != nil {
		log.Fatal().Err(err).Msg("error while creating db client")
	}
	var dbClient db.DbInterface = db.NewDbWithMetrics(database)

	deps, cleanup, err := newStatsDeps(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("error while creating ledger and price clients")
	}
	defer cleanup()

	notifier, err := telegram.NewClient(&cfg.Telegram)
	if err != nil {
		log.Fatal().Err(err).Msg("error while creating telegram client")
	}
	log.Info().Str("bot", notifier.Username()).Msg("telegram bot authorized")

	var dispatcherOpts []alert.Option
	if cfg.Queue != nil {
		qm, err := queue.NewQueueManager(cfg.Queue)
		if err != nil {
			log.Fatal().Err(err).Msg("error while creating queue manager")
		}
		defer qm.Shutdown()
		dispatcherOpts = append(dispatcherOpts, alert.WithEventPublisher(qm))
	}
	dispatcher := alert.NewDispatcher(notifier, &cfg.Telegram, dispatcherOpts...)

	manager := monitor.NewManager(deps.sui, deps.oracle, dispatcher, &cfg.Sui, &cfg.Monitor)
	service := services.NewService(cfg, dbClient, deps.sui, manager, deps.aggregator)

	// the ops API shares the metrics router
	metrics.Init(cfg.Metrics.GetMetricsPort(), api.NewHandler(service).Routes)

	if err := service.StartMonitoring(ctx); err != nil {
		log.Fatal().Err(err).Msg("error while starting monitoring sessions")
	}

	<-ctx.Done()
	log.Info().Msg("shutting down, waiting for running cycles")
	service.Shutdown()

	if err := database.Disconnect(cmd.Context()); err != nil {
		log.Error().Err(err).Msg("failed to disconnect from db")
	}
	return nil
}
