package scheduler

import (
	"context"
	"errors"
	"time"

	"github.com/gowander/waypost/internal/clock"
	notificationdomain "github.com/gowander/waypost/internal/notification/domain"
	"github.com/gowander/waypost/internal/ratelimit"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var ErrInvalidConfig = errors.New("scheduler dependencies are incomplete")

const retryLockKey = "scheduler:notification-retry"

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	Clock      clock.Clock
	Repo       notificationdomain.Repository
	Dispatcher notificationdomain.Dispatcher
	Locker     *ratelimit.Locker `optional:"true"`
	Config     Config            `optional:"true"`
}

// Scheduler periodically redelivers notifications whose channels failed
// at settlement time. Delivery itself stays idempotent, the scheduler
// only decides when to try again.
type Scheduler struct {
	db         *gorm.DB
	log        *zap.Logger
	cfg        Config
	clock      clock.Clock
	repo       notificationdomain.Repository
	dispatcher notificationdomain.Dispatcher
	locker     *ratelimit.Locker
}

func New(p Params) (*Scheduler, error) {
	if p.DB == nil || p.Log == nil || p.Clock == nil || p.Repo == nil || p.Dispatcher == nil {
		return nil, ErrInvalidConfig
	}
	return &Scheduler{
		db:         p.DB,
		log:        p.Log.Named("scheduler"),
		cfg:        p.Config.withDefaults(),
		clock:      p.Clock,
		repo:       p.Repo,
		dispatcher: p.Dispatcher,
		locker:     p.Locker,
	}, nil
}

// RunOnce performs a single retry sweep. The redis lock keeps multiple
// replicas from hammering the same failed records at the same tick;
// when redis is absent the sweep proceeds unlocked.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.JobTimeout)
	defer cancel()

	token, acquired, err := s.locker.TryLock(ctx, retryLockKey, s.cfg.JobTimeout)
	if err != nil {
		s.log.Warn("retry sweep lock failed", zap.Error(err))
		return err
	}
	if !acquired {
		s.log.Debug("retry sweep already running elsewhere")
		return nil
	}
	defer func() {
		if err := s.locker.Release(ctx, retryLockKey, token); err != nil {
			s.log.Warn("retry sweep unlock failed", zap.Error(err))
		}
	}()

	bookingIDs, err := s.repo.ListFailedBookingIDs(ctx, s.db, s.cfg.MaxAttempts, s.cfg.BatchSize)
	if err != nil {
		return err
	}

	for _, id := range bookingIDs {
		results, err := s.dispatcher.RetryFailed(ctx, id.String())
		if err != nil {
			s.log.Warn("notification retry failed",
				zap.String("booking_id", id.String()),
				zap.Error(err),
			)
			continue
		}
		for _, res := range results {
			if res.Status == notificationdomain.StatusFailed {
				s.log.Warn("notification channel still failing",
					zap.String("booking_id", id.String()),
					zap.String("channel", res.Channel),
					zap.String("error", res.Error),
				)
			}
		}
	}

	return nil
}

func (s *Scheduler) loop(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.RunOnce(ctx); err != nil {
				s.log.Warn("retry sweep failed", zap.Error(err))
			}
		}
	}
}
