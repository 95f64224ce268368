package dto

import "time"

// ExtendDeadlineRequest represents a request to push a registration
// deadline later
type ExtendDeadlineRequest struct {
	NewDeadline time.Time `json:"new_deadline" binding:"required"`
	Reason      string    `json:"reason,omitempty"`
}

// DeadlineStatsResponse summarizes deadline sweep state across events
type DeadlineStatsResponse struct {
	PublishedEvents   int     `json:"published_events"`
	WithDeadline      int     `json:"with_deadline"`
	OpenWindows       int     `json:"open_windows"`
	ClosedWindows     int     `json:"closed_windows"`
	ClosedOnTimeRatio float64 `json:"closed_on_time_ratio"`

	TotalSweeps   int64      `json:"total_sweeps"`
	TotalClosed   int64      `json:"total_closed"`
	TotalWarnings int64      `json:"total_warnings"`
	LastSweepAt   *time.Time `json:"last_sweep_at,omitempty"`
}
