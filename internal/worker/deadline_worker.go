package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/seulch/campushub/internal/domain"
	"github.com/seulch/campushub/internal/dto"
	"github.com/seulch/campushub/internal/metrics"
	"github.com/seulch/campushub/internal/service"
	"github.com/seulch/campushub/internal/store"
	"github.com/seulch/campushub/internal/validation"
	"github.com/seulch/campushub/pkg/logger"
	"github.com/seulch/campushub/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

// DeadlineWorkerConfig contains configuration for the deadline worker
type DeadlineWorkerConfig struct {
	// SweepInterval is the interval between deadline sweeps
	SweepInterval time.Duration
	// WarningLead is how long before a deadline the warning goes out
	WarningLead time.Duration
}

// DefaultDeadlineWorkerConfig returns default configuration
func DefaultDeadlineWorkerConfig() *DeadlineWorkerConfig {
	return &DeadlineWorkerConfig{
		SweepInterval: 2 * time.Minute,
		WarningLead:   time.Hour,
	}
}

// DeadlineWorker periodically sweeps published and active events and closes
// registration windows whose deadline has elapsed. Closure is idempotent:
// the RegistrationClosed flag guards against duplicate notifications when a
// deadline is observed by more than one sweep.
type DeadlineWorker struct {
	events    *store.EventStore
	notifier  service.Notifier
	publisher service.LifecyclePublisher
	waitlist  service.WaitlistService
	saver     service.EventSaver
	config    *DeadlineWorkerConfig
	log       *logger.Logger
	stopCh    chan struct{}
	wg        sync.WaitGroup
	mu        sync.Mutex
	running   bool

	// Stats
	totalSweeps     int64
	totalClosed     int64
	totalWarnings   int64
	lastSweepAt     time.Time
	lastClosedCount int
}

// NewDeadlineWorker creates a deadline worker
func NewDeadlineWorker(
	events *store.EventStore,
	notifier service.Notifier,
	publisher service.LifecyclePublisher,
	waitlist service.WaitlistService,
	saver service.EventSaver,
	config *DeadlineWorkerConfig,
) *DeadlineWorker {
	if config == nil {
		config = DefaultDeadlineWorkerConfig()
	}
	if notifier == nil {
		notifier = service.NewNoOpNotifier()
	}
	if publisher == nil {
		publisher = service.NewNoOpLifecyclePublisher()
	}

	return &DeadlineWorker{
		events:    events,
		notifier:  notifier,
		publisher: publisher,
		waitlist:  waitlist,
		saver:     saver,
		config:    config,
		log:       logger.Get(),
	}
}

// Start starts the deadline worker. A stopped worker can be started again.
func (w *DeadlineWorker) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return fmt.Errorf("deadline worker already running")
	}
	w.running = true
	// Fresh channel per run so Start after Stop gets a live loop
	w.stopCh = make(chan struct{})
	stopCh := w.stopCh
	w.mu.Unlock()

	w.log.Info("Starting deadline worker",
		zap.Duration("sweep_interval", w.config.SweepInterval),
		zap.Duration("warning_lead", w.config.WarningLead))

	w.wg.Add(1)
	go w.sweepLoop(ctx, stopCh)

	return nil
}

// Stop stops the deadline worker
func (w *DeadlineWorker) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	close(w.stopCh)
	w.mu.Unlock()

	w.log.Info("Stopping deadline worker")
	w.wg.Wait()
	w.log.Info("Deadline worker stopped")
}

// sweepLoop periodically runs the deadline sweep
func (w *DeadlineWorker) sweepLoop(ctx context.Context, stopCh <-chan struct{}) {
	defer w.wg.Done()

	ticker := time.NewTicker(w.config.SweepInterval)
	defer ticker.Stop()

	// Run immediately on start
	w.Sweep(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-stopCh:
			return
		case <-ticker.C:
			w.Sweep(ctx)
		}
	}
}

// Sweep runs one pass over all published and active events with a deadline
func (w *DeadlineWorker) Sweep(ctx context.Context) {
	ctx, span := telemetry.StartSpan(ctx, "worker.deadline.sweep")
	defer span.End()

	started := time.Now()
	now := started
	closedCount := 0
	warnedCount := 0

	for _, e := range w.events.List() {
		if e.Status != domain.EventStatusPublished && e.Status != domain.EventStatusActive {
			continue
		}
		if e.RegistrationDeadline == nil {
			continue
		}
		closed, warned := w.processEvent(ctx, e.ID, now)
		if closed {
			closedCount++
		}
		if warned {
			warnedCount++
		}
	}

	w.mu.Lock()
	w.totalSweeps++
	w.totalClosed += int64(closedCount)
	w.totalWarnings += int64(warnedCount)
	w.lastSweepAt = started
	w.lastClosedCount = closedCount
	w.mu.Unlock()

	elapsed := time.Since(started)
	metrics.RecordSweep(ctx, elapsed.Seconds(), closedCount)
	span.SetAttributes(
		attribute.Int("closed", closedCount),
		attribute.Int("warned", warnedCount),
	)

	if closedCount > 0 || warnedCount > 0 {
		w.log.Info("Deadline sweep finished",
			zap.Int("closed", closedCount),
			zap.Int("warned", warnedCount),
			zap.Duration("elapsed", elapsed))
	}
}

// processEvent closes or warns a single event's registration window. Flags
// are checked and set inside one critical section so a deadline is closed
// exactly once regardless of how many sweeps observe it.
func (w *DeadlineWorker) processEvent(ctx context.Context, eventID string, now time.Time) (closed, warned bool) {
	var (
		notifications []*domain.Notification
		snapshot      *domain.Event
	)

	err := w.events.Mutate(eventID, func(e *domain.Event) error {
		if e.Status != domain.EventStatusPublished && e.Status != domain.EventStatusActive {
			return nil
		}
		if e.RegistrationDeadline == nil {
			return nil
		}
		deadline := *e.RegistrationDeadline

		if !e.RegistrationClosed && !now.Before(deadline) {
			e.RegistrationClosed = true
			e.Touch(now)
			closed = true
			notifications = append(notifications, &domain.Notification{
				Message:    "Registration for " + e.Title + " is now closed.",
				Recipients: e.AttendeeRecipients(),
				Kind:       domain.NotificationDeadlineClosed,
			})
			snapshot = e.Clone()
			return nil
		}

		if !e.RegistrationClosed && !e.DeadlineWarningSent &&
			now.Before(deadline) && deadline.Sub(now) <= w.config.WarningLead {
			e.DeadlineWarningSent = true
			e.Touch(now)
			warned = true
			notifications = append(notifications, &domain.Notification{
				Message:    "Registration for " + e.Title + " closes at " + deadline.Format(time.RFC3339) + ".",
				Recipients: e.AttendeeRecipients(),
				Kind:       domain.NotificationDeadlineWarning,
			})
			snapshot = e.Clone()
		}
		return nil
	})
	if err != nil {
		// Event deleted between List and Mutate
		w.log.Debug("deadline sweep skipped event",
			zap.String("event_id", eventID),
			zap.Error(err))
		return false, false
	}

	w.deliver(ctx, notifications)
	if closed {
		w.publishLifecycle(ctx, domain.LifecycleDeadlineClosed, eventID, map[string]interface{}{
			"event_id":  eventID,
			"closed_at": now,
		})
		metrics.RecordDeadlineClosure(ctx, eventID)
	}
	if warned {
		metrics.RecordDeadlineWarning(ctx, eventID)
	}
	if snapshot != nil && w.saver != nil {
		if err := w.saver.SaveEvent(ctx, snapshot); err != nil {
			w.log.Warn("event snapshot save failed",
				zap.String("event_id", eventID),
				zap.Error(err))
		}
	}
	return closed, warned
}

// ProcessEventImmediately runs the deadline check for one event outside of
// the sweep schedule
func (w *DeadlineWorker) ProcessEventImmediately(ctx context.Context, eventID string) error {
	ctx, span := telemetry.StartSpan(ctx, "worker.deadline.process_event")
	defer span.End()

	if err := validation.ValidateID(eventID, domain.ErrInvalidEventID); err != nil {
		span.SetStatus(codes.Error, "invalid event_id")
		return err
	}
	if _, err := w.events.Get(eventID); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	span.SetAttributes(attribute.String("event_id", eventID))

	closed, warned := w.processEvent(ctx, eventID, time.Now())
	if closed || warned {
		w.mu.Lock()
		if closed {
			w.totalClosed++
		}
		if warned {
			w.totalWarnings++
		}
		w.mu.Unlock()
	}
	return nil
}

// ExtendDeadline pushes an event's registration deadline later and reopens
// a closed window. The new deadline must be strictly later than the current
// one and still before the event start.
func (w *DeadlineWorker) ExtendDeadline(ctx context.Context, eventID string, newDeadline time.Time, reason string) (*dto.EventResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "worker.deadline.extend")
	defer span.End()

	if err := validation.ValidateID(eventID, domain.ErrInvalidEventID); err != nil {
		span.SetStatus(codes.Error, "invalid event_id")
		return nil, err
	}
	span.SetAttributes(
		attribute.String("event_id", eventID),
		attribute.String("new_deadline", newDeadline.Format(time.RFC3339)),
	)

	now := time.Now()
	var (
		notifications []*domain.Notification
		snapshot      *domain.Event
		wasClosed     bool
	)

	err := w.events.Mutate(eventID, func(e *domain.Event) error {
		if e.Status != domain.EventStatusPublished && e.Status != domain.EventStatusActive {
			return domain.ErrEventStateConflict
		}
		if !newDeadline.Before(e.StartTime) {
			return domain.ErrInvalidDeadline
		}
		if e.RegistrationDeadline != nil && !newDeadline.After(*e.RegistrationDeadline) {
			return domain.ErrDeadlineNotLater
		}

		wasClosed = e.RegistrationClosed
		d := newDeadline
		e.RegistrationDeadline = &d
		e.RegistrationClosed = false
		e.DeadlineWarningSent = false
		e.Touch(now)

		msg := "The registration deadline for " + e.Title + " has been extended to " + newDeadline.Format(time.RFC3339) + "."
		if reason != "" {
			msg += " Reason: " + reason
		}
		notifications = append(notifications, &domain.Notification{
			Message:    msg,
			Recipients: e.AttendeeRecipients(),
			Kind:       domain.NotificationDeadlineExtended,
		})
		snapshot = e.Clone()
		return nil
	})
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	w.deliver(ctx, notifications)
	w.publishLifecycle(ctx, domain.LifecycleDeadlineExtended, eventID, map[string]interface{}{
		"event_id":     eventID,
		"new_deadline": newDeadline,
		"was_closed":   wasClosed,
		"reason":       reason,
	})
	if w.saver != nil {
		if err := w.saver.SaveEvent(ctx, snapshot); err != nil {
			w.log.Warn("event snapshot save failed",
				zap.String("event_id", eventID),
				zap.Error(err))
		}
	}

	// Reopening the window may let waitlisted registrations through
	if w.waitlist != nil {
		if _, err := w.waitlist.PromoteEligible(ctx, eventID); err != nil {
			w.log.Warn("promotion pass after deadline extension failed",
				zap.String("event_id", eventID),
				zap.Error(err))
		}
	}

	updated, err := w.events.Get(eventID)
	if err != nil {
		return nil, err
	}
	return dto.FromEvent(updated), nil
}

// Statistics returns deadline window state across events plus sweep totals
func (w *DeadlineWorker) Statistics(ctx context.Context) *dto.DeadlineStatsResponse {
	_, span := telemetry.StartSpan(ctx, "worker.deadline.statistics")
	defer span.End()

	now := time.Now()
	stats := &dto.DeadlineStatsResponse{}
	elapsed := 0

	for _, e := range w.events.List() {
		if e.Status != domain.EventStatusPublished && e.Status != domain.EventStatusActive {
			continue
		}
		stats.PublishedEvents++
		if e.RegistrationDeadline == nil {
			continue
		}
		stats.WithDeadline++
		if e.RegistrationClosed {
			stats.ClosedWindows++
		} else if now.Before(*e.RegistrationDeadline) {
			stats.OpenWindows++
		}
		if !now.Before(*e.RegistrationDeadline) {
			elapsed++
		}
	}

	// Ratio of elapsed deadlines the sweep has already closed
	if elapsed > 0 {
		stats.ClosedOnTimeRatio = float64(stats.ClosedWindows) / float64(elapsed)
	} else {
		stats.ClosedOnTimeRatio = 1.0
	}

	w.mu.Lock()
	stats.TotalSweeps = w.totalSweeps
	stats.TotalClosed = w.totalClosed
	stats.TotalWarnings = w.totalWarnings
	if !w.lastSweepAt.IsZero() {
		t := w.lastSweepAt
		stats.LastSweepAt = &t
	}
	w.mu.Unlock()

	return stats
}

// IsRunning reports whether the sweep loop is active
func (w *DeadlineWorker) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

func (w *DeadlineWorker) deliver(ctx context.Context, notifications []*domain.Notification) {
	for _, n := range notifications {
		if len(n.Recipients) == 0 {
			continue
		}
		if err := w.notifier.Send(ctx, n.Message, n.Recipients, n.Kind); err != nil {
			w.log.Warn("notification delivery failed",
				zap.String("kind", string(n.Kind)),
				zap.Int("recipients", len(n.Recipients)),
				zap.Error(err))
		}
	}
}

func (w *DeadlineWorker) publishLifecycle(ctx context.Context, t domain.LifecycleEventType, eventID string, payload interface{}) {
	if err := w.publisher.Publish(ctx, t, eventID, payload); err != nil {
		w.log.Warn("lifecycle publish failed",
			zap.String("type", string(t)),
			zap.String("event_id", eventID),
			zap.Error(err))
	}
}
