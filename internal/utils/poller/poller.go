package poller

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Poller calls pollMethod repeatedly. The next call is scheduled only after the
// previous one returned, so calls of one poller never overlap.
type Poller struct {
	name       string
	interval   time.Duration
	immediate  bool
	quit       chan struct{}
	stopOnce   sync.Once
	pollMethod func(ctx context.Context) error
}

type Option func(*Poller)

// WithImmediateStart makes the first poll happen as soon as Start is called
// instead of after the first interval.
func WithImmediateStart() Option {
	return func(p *Poller) {
		p.immediate = true
	}
}

func WithName(name string) Option {
	return func(p *Poller) {
		p.name = name
	}
}

func NewPoller(interval time.Duration, pollMethod func(ctx context.Context) error, opts ...Option) *Poller {
	p := &Poller{
		name:       "poller",
		interval:   interval,
		quit:       make(chan struct{}),
		pollMethod: pollMethod,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Start blocks until ctx is done or Stop is called. A poll that is already
// running when Stop is called is allowed to finish.
func (p *Poller) Start(ctx context.Context) {
	log := log.Ctx(ctx).With().Str("poller", p.name).Logger()

	firstDelay := p.interval
	if p.immediate {
		firstDelay = 0
	}
	timer := time.NewTimer(firstDelay)
	defer timer.Stop()

	log.Info().Msgf("Starting poller with interval %s", p.interval)

	for {
		select {
		case <-timer.C:
			// quit may have been closed while the timer fired
			select {
			case <-p.quit:
				log.Info().Msg("Poller stopped")
				return
			default:
			}

			log.Debug().Msg("Executing poll method")
			if err := p.pollMethod(ctx); err != nil {
				log.Error().Err(err).Msg("Error polling")
			} else {
				log.Debug().Msg("Poll method executed successfully")
			}
			timer.Reset(p.interval)
		case <-ctx.Done():
			log.Info().Msg("Poller stopped due to context cancellation")
			return
		case <-p.quit:
			log.Info().Msg("Poller stopped")
			return
		}
	}
}

// Stop is safe to call more than once.
func (p *Poller) Stop() {
	p.stopOnce.Do(func() {
		close(p.quit)
	})
}
