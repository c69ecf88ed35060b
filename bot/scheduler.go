package bot

import (
	"log"
	"sync"
	"time"

	"moderation-bot/model"
	"moderation-bot/utils/database"

	"github.com/jmoiron/sqlx"
	"github.com/robfig/cron/v3"
)

// TimerHandler consumes a fired timer. Delivery is at-least-once: a crash
// between dispatch and row deletion redelivers, so handlers must tolerate
// duplicate firing.
type TimerHandler func(timer model.Timer)

// Scheduler is the durable timer subsystem. Timers are persisted rows; a
// background loop polls for due rows, dispatches each to the handler
// registered for its event tag, and deletes the row afterwards. Timers
// survive restarts because nothing but the row matters.
type Scheduler struct {
	db       *sqlx.DB
	interval time.Duration

	mu       sync.RWMutex
	handlers map[string]TimerHandler

	cron *cron.Cron
	done chan struct{}
	wg   sync.WaitGroup
}

// NewScheduler creates a scheduler polling at the given interval.
func NewScheduler(db *sqlx.DB, cfg model.SchedulerConfig) *Scheduler {
	s := &Scheduler{
		db:       db,
		interval: cfg.PollInterval,
		handlers: make(map[string]TimerHandler),
		cron:     cron.New(),
		done:     make(chan struct{}),
	}

	sweepSpec := cfg.FlagSweepSpec
	if sweepSpec == "" {
		sweepSpec = "0 5 * * *"
	}
	if _, err := s.cron.AddFunc(sweepSpec, s.sweepStaleFlags); err != nil {
		log.Printf("Invalid flag sweep cron spec %q: %v", sweepSpec, err)
	}

	return s
}

// Handle registers the handler for an event tag. Handlers must be
// registered before Start.
func (s *Scheduler) Handle(event string, handler TimerHandler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers[event] = handler
}

// CreateTimer persists a timer due at expiresAt and returns it with its
// assigned id.
func (s *Scheduler) CreateTimer(expiresAt time.Time, event, guildID, userID, notes string) (model.Timer, error) {
	return database.CreateTimer(s.db, model.Timer{
		GuildID:   guildID,
		UserID:    userID,
		Event:     event,
		ExpiresAt: expiresAt.UTC(),
		Notes:     notes,
	})
}

// CancelTimer deletes a pending timer. Cancelling an already-fired or
// unknown timer is not an error. A cancel racing an in-flight firing does
// not undo that firing's side effects; it only prevents future ones.
func (s *Scheduler) CancelTimer(timerID int64, guildID string) error {
	return database.DeleteTimer(s.db, timerID, guildID)
}

// Start begins the polling loop and the cron maintenance jobs.
func (s *Scheduler) Start() {
	s.wg.Add(1)
	go s.run()
	s.cron.Start()
}

// Stop terminates the scheduler gracefully, waiting for an in-flight
// dispatch round to finish.
func (s *Scheduler) Stop() {
	log.Println("Stopping scheduler...")
	close(s.done)
	s.cron.Stop()
	s.wg.Wait()
	log.Println("Scheduler stopped.")
}

func (s *Scheduler) run() {
	defer s.wg.Done()
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	// Catch up immediately on timers that came due while we were down.
	s.dispatchDue()

	for {
		select {
		case <-ticker.C:
			s.dispatchDue()
		case <-s.done:
			return
		}
	}
}

// dispatchDue fires every due timer and deletes it. Deletion happens after
// the handler returns, giving at-least-once delivery.
func (s *Scheduler) dispatchDue() {
	timers, err := database.GetDueTimers(s.db, time.Now().UTC())
	if err != nil {
		log.Printf("Error getting due timers: %v", err)
		return
	}

	for _, timer := range timers {
		s.mu.RLock()
		handler, ok := s.handlers[timer.Event]
		s.mu.RUnlock()

		if !ok {
			log.Printf("No handler registered for timer event %q, dropping timer %d", timer.Event, timer.ID)
		} else {
			handler(timer)
		}

		if err := database.DeleteTimer(s.db, timer.ID, timer.GuildID); err != nil {
			log.Printf("Failed to delete fired timer %d: %v", timer.ID, err)
		}
	}
}

func (s *Scheduler) sweepStaleFlags() {
	cleared, err := database.SweepExpiredTimeoutFlags(s.db, time.Now().UTC())
	if err != nil {
		log.Printf("Stale timeout flag sweep failed: %v", err)
		return
	}
	if cleared > 0 {
		log.Printf("Cleared %d stale timeout flags", cleared)
	}
}
