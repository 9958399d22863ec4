package bomb

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

// Func receives the room and round token a timer was armed for
type Func func(roomID string, token uint64)

// Scheduler keeps at most one bomb countdown per room. Callbacks run on the
// timer goroutine and must tolerate stale tokens: a timer that fires while
// being replaced can still be delivered.
type Scheduler struct {
	clock        clockwork.Clock
	onExpire     Func
	onTick       Func
	tickInterval time.Duration

	mu     sync.Mutex
	armed  map[string]*countdown
	closed bool
	wg     sync.WaitGroup
}

type countdown struct {
	token  uint64
	timer  clockwork.Timer
	ticker clockwork.Ticker
	stop   chan struct{}
}

// Option configures a Scheduler
type Option func(*Scheduler)

// WithClock replaces the real clock, mostly for tests
func WithClock(c clockwork.Clock) Option {
	return func(s *Scheduler) { s.clock = c }
}

// WithTicks calls fn every interval while a countdown is running
func WithTicks(interval time.Duration, fn Func) Option {
	return func(s *Scheduler) {
		s.tickInterval = interval
		s.onTick = fn
	}
}

func NewScheduler(onExpire Func, opts ...Option) *Scheduler {
	s := &Scheduler{
		clock:    clockwork.NewRealClock(),
		onExpire: onExpire,
		armed:    make(map[string]*countdown),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Arm starts a countdown for roomID, replacing any countdown already running
func (s *Scheduler) Arm(roomID string, token uint64, d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	if existing, ok := s.armed[roomID]; ok {
		existing.cancel()
		log.Debug().Str("room_id", roomID).Uint64("token", existing.token).Msg("replaced existing bomb")
	}

	c := &countdown{
		token: token,
		timer: s.clock.NewTimer(d),
		stop:  make(chan struct{}),
	}
	if s.onTick != nil && s.tickInterval > 0 {
		c.ticker = s.clock.NewTicker(s.tickInterval)
	}
	s.armed[roomID] = c

	s.wg.Add(1)
	go s.run(roomID, c)

	log.Debug().
		Str("room_id", roomID).
		Uint64("token", token).
		Dur("duration", d).
		Msg("armed bomb")
}

// Cancel stops the countdown of roomID if one is running
func (s *Scheduler) Cancel(roomID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c, ok := s.armed[roomID]; ok {
		c.cancel()
		delete(s.armed, roomID)
		log.Debug().Str("room_id", roomID).Uint64("token", c.token).Msg("cancelled bomb")
	}
}

// Armed reports the token of the countdown running for roomID
func (s *Scheduler) Armed(roomID string) (uint64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.armed[roomID]
	if !ok {
		return 0, false
	}
	return c.token, true
}

// Len is the number of running countdowns
func (s *Scheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.armed)
}

// Stop cancels every countdown and waits for callbacks in flight. Arm is a
// no-op afterwards.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	s.closed = true
	for roomID, c := range s.armed {
		c.cancel()
		log.Debug().Str("room_id", roomID).Msg("cancelled bomb on shutdown")
	}
	s.armed = make(map[string]*countdown)
	s.mu.Unlock()

	s.wg.Wait()
}

func (s *Scheduler) run(roomID string, c *countdown) {
	defer s.wg.Done()

	var ticks <-chan time.Time
	if c.ticker != nil {
		ticks = c.ticker.Chan()
	}

	for {
		select {
		case <-c.stop:
			return
		case <-ticks:
			s.onTick(roomID, c.token)
		case <-c.timer.Chan():
			if c.ticker != nil {
				c.ticker.Stop()
			}
			if !s.release(roomID, c) {
				return
			}
			log.Debug().Str("room_id", roomID).Uint64("token", c.token).Msg("bomb expired")
			s.onExpire(roomID, c.token)
			return
		}
	}
}

// release drops c from the armed set. It reports false when c was replaced
// or cancelled in the meantime.
func (s *Scheduler) release(roomID string, c *countdown) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.armed[roomID] != c {
		return false
	}
	delete(s.armed, roomID)
	return true
}

func (c *countdown) cancel() {
	close(c.stop)
	stopAndDrainTimer(c.timer)
	if c.ticker != nil {
		c.ticker.Stop()
	}
}

// stopAndDrainTimer stops a timer and empties its channel if it already fired
func stopAndDrainTimer(timer clockwork.Timer) {
	if !timer.Stop() {
		select {
		case <-timer.Chan():
		default:
		}
	}
}
