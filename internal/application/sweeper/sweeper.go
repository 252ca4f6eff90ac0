// Package sweeper runs the recurring OTP expiry sweep for the lifetime of the process.
package sweeper

import (
	"context"
	"time"

	"github.com/biteguide-api/internal/pkg/logger"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
)

// Target is the store-side sweep, normally the OTP service.
type Target interface {
	Sweep(ctx context.Context, now time.Time, window time.Duration) (int, error)
}

type Deps struct {
	Target   Target
	Clock    clockwork.Clock
	Interval time.Duration
	Window   time.Duration
	Log      *zap.Logger
}

type Sweeper struct {
	target   Target
	clock    clockwork.Clock
	interval time.Duration
	window   time.Duration
	log      *zap.Logger
}

func New(deps Deps) *Sweeper {
	clock := deps.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Sweeper{
		target:   deps.Target,
		clock:    clock,
		interval: deps.Interval,
		window:   deps.Window,
		log:      logger.OrNop(deps.Log),
	}
}

// Run sweeps once per interval until ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := s.clock.NewTicker(s.interval)
	defer ticker.Stop()
	s.log.Info("otp sweeper started", zap.Duration("interval", s.interval), zap.Duration("window", s.window))
	for {
		select {
		case <-ctx.Done():
			s.log.Info("otp sweeper stopped")
			return
		case <-ticker.Chan():
			s.RunOnce(ctx)
		}
	}
}

// RunOnce performs a single sweep. Errors are logged and never stop the schedule.
func (s *Sweeper) RunOnce(ctx context.Context) int {
	n, err := s.target.Sweep(ctx, s.clock.Now(), s.window)
	if err != nil {
		s.log.Error("otp sweep failed", zap.Error(err))
		return 0
	}
	if n > 0 {
		s.log.Info("otp sweep", zap.Int("deleted", n))
	}
	return n
}
