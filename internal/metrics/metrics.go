package metrics

import (
	"context"
	"sync"

	"github.com/seulch/campushub/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

var (
	// Registration counters
	RegistrationsConfirmed  *telemetry.Counter
	RegistrationsWaitlisted *telemetry.Counter
	RegistrationsCancelled  *telemetry.Counter
	WaitlistPromotions      *telemetry.Counter

	// Event lifecycle counters
	EventsCreated   *telemetry.Counter
	EventsCancelled *telemetry.Counter

	// Deadline sweep counters
	DeadlineClosures *telemetry.Counter
	DeadlineWarnings *telemetry.Counter

	// Venue counters
	VenueBookings  *telemetry.Counter
	VenueConflicts *telemetry.Counter

	// Error tracking counters
	ErrorsTotal *telemetry.Counter

	// Histograms
	RequestDuration *telemetry.Histogram
	SweepDuration   *telemetry.Histogram

	// Gauges
	WaitlistDepth *telemetry.UpDownCounter

	initOnce sync.Once
	initErr  error
)

// Init initializes all admission metrics
func Init() error {
	initOnce.Do(func() {
		initErr = initMetrics()
	})
	return initErr
}

func initMetrics() error {
	var err error

	RegistrationsConfirmed, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "campushub_registrations_confirmed_total",
		Description: "Total number of registrations confirmed immediately",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	RegistrationsWaitlisted, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "campushub_registrations_waitlisted_total",
		Description: "Total number of registrations placed on a waitlist",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	RegistrationsCancelled, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "campushub_registrations_cancelled_total",
		Description: "Total number of cancelled registrations",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	WaitlistPromotions, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "campushub_waitlist_promotions_total",
		Description: "Total number of waitlisted registrations promoted to confirmed",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	EventsCreated, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "campushub_events_created_total",
		Description: "Total number of events created",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	EventsCancelled, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "campushub_events_cancelled_total",
		Description: "Total number of events cancelled",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	DeadlineClosures, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "campushub_deadline_closures_total",
		Description: "Total number of registration windows closed by the sweep",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	DeadlineWarnings, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "campushub_deadline_warnings_total",
		Description: "Total number of approaching-deadline warnings sent",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	VenueBookings, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "campushub_venue_bookings_total",
		Description: "Total number of venue bookings placed",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	VenueConflicts, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "campushub_venue_conflicts_total",
		Description: "Total number of venue bookings rejected for overlap",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	ErrorsTotal, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "campushub_errors_total",
		Description: "Total number of errors by type and operation",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	RequestDuration, err = telemetry.NewHistogramWithBuckets(telemetry.MetricOpts{
		Name:        "campushub_request_duration_seconds",
		Description: "HTTP request duration in seconds",
		Unit:        "s",
	}, []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10})
	if err != nil {
		return err
	}

	SweepDuration, err = telemetry.NewHistogramWithBuckets(telemetry.MetricOpts{
		Name:        "campushub_deadline_sweep_duration_seconds",
		Description: "Duration of a full deadline sweep pass",
		Unit:        "s",
	}, []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5})
	if err != nil {
		return err
	}

	WaitlistDepth, err = telemetry.NewUpDownCounter(telemetry.MetricOpts{
		Name:        "campushub_waitlist_depth",
		Description: "Current number of waitlisted registrations across all events",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	return nil
}

// RecordConfirmation records an immediate admission
func RecordConfirmation(ctx context.Context, eventID string) {
	if RegistrationsConfirmed != nil {
		RegistrationsConfirmed.Inc(ctx,
			attribute.String("event_id", eventID),
		)
	}
}

// RecordWaitlisted records a registration deferred to the waitlist
func RecordWaitlisted(ctx context.Context, eventID string, position int) {
	if RegistrationsWaitlisted != nil {
		RegistrationsWaitlisted.Inc(ctx,
			attribute.String("event_id", eventID),
			attribute.Int("position", position),
		)
	}
	if WaitlistDepth != nil {
		WaitlistDepth.Inc(ctx)
	}
}

// RecordCancellation records a cancelled registration. wasWaitlisted drops
// the waitlist depth gauge.
func RecordCancellation(ctx context.Context, eventID string, wasWaitlisted bool) {
	if RegistrationsCancelled != nil {
		RegistrationsCancelled.Inc(ctx,
			attribute.String("event_id", eventID),
		)
	}
	if wasWaitlisted && WaitlistDepth != nil {
		WaitlistDepth.Dec(ctx)
	}
}

// RecordPromotion records a waitlist head promoted into a freed slot
func RecordPromotion(ctx context.Context, eventID string) {
	if WaitlistPromotions != nil {
		WaitlistPromotions.Inc(ctx,
			attribute.String("event_id", eventID),
		)
	}
	if WaitlistDepth != nil {
		WaitlistDepth.Dec(ctx)
	}
}

// RecordEventCreated records a new event
func RecordEventCreated(ctx context.Context, eventType string) {
	if EventsCreated != nil {
		EventsCreated.Inc(ctx,
			attribute.String("event_type", eventType),
		)
	}
}

// RecordEventCancelled records a cancelled event and releases its
// waitlist from the depth gauge
func RecordEventCancelled(ctx context.Context, eventID string, waitlisted int64) {
	if EventsCancelled != nil {
		EventsCancelled.Inc(ctx,
			attribute.String("event_id", eventID),
		)
	}
	if waitlisted > 0 && WaitlistDepth != nil {
		WaitlistDepth.Add(ctx, -waitlisted)
	}
}

// RecordDeadlineClosure records a registration window closed by the sweep
func RecordDeadlineClosure(ctx context.Context, eventID string) {
	if DeadlineClosures != nil {
		DeadlineClosures.Inc(ctx,
			attribute.String("event_id", eventID),
		)
	}
}

// RecordDeadlineWarning records an approaching-deadline warning
func RecordDeadlineWarning(ctx context.Context, eventID string) {
	if DeadlineWarnings != nil {
		DeadlineWarnings.Inc(ctx,
			attribute.String("event_id", eventID),
		)
	}
}

// RecordSweep records the duration of one sweep pass
func RecordSweep(ctx context.Context, durationSeconds float64, closed int) {
	if SweepDuration != nil {
		SweepDuration.Record(ctx, durationSeconds,
			attribute.Int("closed", closed),
		)
	}
}

// RecordVenueBooking records a successful venue booking
func RecordVenueBooking(ctx context.Context, venueID string) {
	if VenueBookings != nil {
		VenueBookings.Inc(ctx,
			attribute.String("venue_id", venueID),
		)
	}
}

// RecordVenueConflict records a booking rejected for overlap
func RecordVenueConflict(ctx context.Context, venueID string) {
	if VenueConflicts != nil {
		VenueConflicts.Inc(ctx,
			attribute.String("venue_id", venueID),
		)
	}
}

// RecordError records an error by type and operation
func RecordError(ctx context.Context, errorType, operation string) {
	if ErrorsTotal != nil {
		ErrorsTotal.Inc(ctx,
			attribute.String("error_type", errorType),
			attribute.String("operation", operation),
		)
	}
}

// RecordRequestDuration records HTTP request duration
func RecordRequestDuration(ctx context.Context, operation string, durationSeconds float64) {
	if RequestDuration != nil {
		RequestDuration.Record(ctx, durationSeconds,
			attribute.String("operation", operation),
		)
	}
}
