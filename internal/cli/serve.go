package cli

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/whenToSleep/race-info-bot/internal/i18n"
	"github.com/whenToSleep/race-info-bot/internal/scheduler"
	"github.com/whenToSleep/race-info-bot/internal/server"
	"github.com/whenToSleep/race-info-bot/internal/source"
	"github.com/whenToSleep/race-info-bot/internal/state"
	"github.com/whenToSleep/race-info-bot/internal/tgbot"
)

func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the Telegram bot, the lap scheduler and the status server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, rootOpts)
		},
	}
}

func runServe(ctx context.Context, rootOpts *RootOptions) error {
	cfg, log, err := setup(rootOpts)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()
	if err := cfg.RequireTelegram(); err != nil {
		return err
	}

	race := cfg.Clock()
	if race.Start == nil {
		log.Warn("RACE_START_TIME is not set, the bot runs but no leaderboards will be published")
	} else {
		log.Info("race configured", "start", race.Start.Format(time.RFC3339), "laps", race.TotalLaps, "lap_duration", race.LapDuration.String())
	}

	catalog, err := i18n.Load()
	if err != nil {
		return err
	}
	provider, err := source.NewProvider(ctx, cfg, log)
	if err != nil {
		return err
	}

	store := state.NewStore()
	if cfg.ChatID != 0 {
		store.AddAudience(cfg.ChatID)
	}

	bot, err := tgbot.New(cfg.TelegramToken, store, provider, catalog, race, log.With("component", "telegram"))
	if err != nil {
		return err
	}
	pub := scheduler.NewPublisher(store, provider, bot, catalog, scheduler.PublisherConfig{
		TotalLaps:    cfg.TotalLaps,
		WindowRadius: cfg.WindowRadius,
	}, log.With("component", "publisher"))
	sched := scheduler.New(scheduler.SystemClock{}, race, scheduler.Options{
		Interval:      cfg.TickInterval,
		ReplaySkipped: cfg.ReplaySkippedLaps,
	}, pub, log.With("component", "scheduler"))
	bot.SetNotifier(sched)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return bot.Run(gctx) })
	g.Go(func() error { return sched.Run(gctx) })

	if cfg.HTTPAddr != "" {
		httpSrv := server.New(cfg.HTTPAddr, server.Deps{
			Store:        store,
			Source:       provider,
			Race:         race,
			ExportSecret: cfg.ExportSecret,
		}, log.With("component", "http"))
		g.Go(func() error {
			log.Info("HTTP listening", "addr", cfg.HTTPAddr)
			if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return httpSrv.Shutdown(shutdownCtx)
		})
	}

	err = g.Wait()
	log.Info("bye")
	return err
}
