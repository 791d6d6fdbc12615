package workers

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/tgwatch/channelpulse/collector-service/config"
	"github.com/tgwatch/channelpulse/collector-service/internal/domain"
	"github.com/tgwatch/channelpulse/collector-service/internal/domain/collection/deps"
	"github.com/tgwatch/channelpulse/collector-service/internal/domain/collection/usecase/business"
)

// Scheduler drives periodic collection runs. Overlapping runs are
// skipped, not queued: a run still in flight when the next tick fires
// means the interval is too tight or a channel is slow, and stacking
// runs would only make the rate limit situation worse.
type Scheduler struct {
	cron     *cron.Cron
	uc       *business.UseCase
	source   deps.SourceClient
	interval time.Duration
	timeout  time.Duration
	atStart  bool
	logger   zerolog.Logger
}

// NewScheduler creates the collection scheduler
func NewScheduler(
	uc *business.UseCase,
	source deps.SourceClient,
	cfg *config.CollectorConfig,
	logger zerolog.Logger,
) *Scheduler {
	log := logger.With().Str("component", "collection_scheduler").Logger()

	c := cron.New(cron.WithChain(
		cron.SkipIfStillRunning(cronLogger{log}),
		cron.Recover(cronLogger{log}),
	))

	return &Scheduler{
		cron:     c,
		uc:       uc,
		source:   source,
		interval: cfg.Interval,
		timeout:  cfg.RunTimeout,
		atStart:  cfg.RunAtStartup,
		logger:   log,
	}
}

// Start registers the collection job and starts the cron loop
func (s *Scheduler) Start() error {
	_, err := s.cron.AddFunc("@every "+s.interval.String(), s.runOnce)
	if err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info().
		Dur("interval", s.interval).
		Dur("run_timeout", s.timeout).
		Msg("Collection scheduler started")

	if s.atStart {
		go s.runOnce()
	}

	return nil
}

// Stop stops the cron loop and waits for an in-flight run to finish
func (s *Scheduler) Stop(ctx context.Context) error {
	stopCtx := s.cron.Stop()
	select {
	case <-stopCtx.Done():
		s.logger.Info().Msg("Collection scheduler stopped")
	case <-ctx.Done():
		s.logger.Warn().Msg("Shutdown timeout while waiting for collection run")
	}
	return nil
}

func (s *Scheduler) runOnce() {
	ctx := context.Background()
	cancel := func() {}
	if s.timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
	}
	defer cancel()

	// A lost session is re-established here rather than failing every
	// channel in the run.
	if !s.source.IsConnected() {
		if err := s.source.Connect(ctx); err != nil {
			s.logger.Error().Err(err).Msg("Source reconnect failed, skipping collection run")
			return
		}
	}

	start := time.Now()
	report := s.uc.CollectAllActive(ctx)

	logEvent := s.logger.Info()
	if report.Status == domain.RunStatusError {
		logEvent = s.logger.Error()
	} else if report.Status == domain.RunStatusPartial {
		logEvent = s.logger.Warn()
	}
	logEvent.
		Str("status", string(report.Status)).
		Int("channels_processed", report.ChannelsProcessed).
		Int("posts_collected", report.PostsCollected).
		Int("channels_with_errors", len(report.Errors)).
		Dur("duration", time.Since(start)).
		Msg("Collection run finished")
}

// cronLogger adapts zerolog to the cron logging interface
type cronLogger struct {
	log zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug().Fields(keysAndValues).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
