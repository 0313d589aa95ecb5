package jobs

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"gadamagado/api/internal/repository"
)

// Scheduler runs periodic listing maintenance: expiring ads past their
// paid duration and publishing a maintenance event for downstream
// consumers.
type Scheduler struct {
	cron  *cron.Cron
	ads   *repository.AdRepository
	queue *redis.Client
	log   zerolog.Logger
}

func NewScheduler(ads *repository.AdRepository, queue *redis.Client, log zerolog.Logger) *Scheduler {
	c := cron.New(cron.WithSeconds())
	return &Scheduler{
		cron:  c,
		ads:   ads,
		queue: queue,
		log:   log,
	}
}

func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc("0 0 0 * * *", s.sweepExpired); err != nil {
		return err
	}

	s.cron.Start()
	return nil
}

// Stop waits for in-flight jobs, up to a bound.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	select {
	case <-ctx.Done():
	case <-time.After(5 * time.Second):
		s.log.Warn().Msg("scheduler stop timed out")
	}
}

func (s *Scheduler) sweepExpired() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	expired, err := s.ads.ExpireOutdated(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("expiry sweep failed")
		return
	}
	s.log.Info().Int64("expired", expired).Msg("expiry sweep complete")

	if err := s.publishEvent(ctx, map[string]any{
		"type":    "expiry-sweep",
		"expired": expired,
	}); err != nil {
		s.log.Warn().Err(err).Msg("publish maintenance event failed")
	}
}

func (s *Scheduler) publishEvent(ctx context.Context, payload map[string]any) error {
	if s.queue == nil {
		return nil
	}
	_, err := s.queue.XAdd(ctx, &redis.XAddArgs{
		Stream: "ads:maintenance",
		Values: payload,
	}).Result()
	return err
}
