package service

import (
	"fmt"
	"time"
)

// GenerationMetrics tallies one generation pass
type GenerationMetrics struct {
	StartTime time.Time
	Duration  time.Duration
	Requested int
	Generated int
	Skipped   int
	Failed    int
	Stored    int
}

// Merge adds another pass into m
func (m *GenerationMetrics) Merge(other *GenerationMetrics) {
	if other == nil {
		return
	}
	if m.StartTime.IsZero() || (!other.StartTime.IsZero() && other.StartTime.Before(m.StartTime)) {
		m.StartTime = other.StartTime
	}
	m.Duration += other.Duration
	m.Requested += other.Requested
	m.Generated += other.Generated
	m.Skipped += other.Skipped
	m.Failed += other.Failed
	m.Stored += other.Stored
}

// String returns a human-readable summary
func (m *GenerationMetrics) String() string {
	return fmt.Sprintf(
		"Generation: %d requested, %d generated, %d skipped, %d failed, %d stored, duration: %v",
		m.Requested, m.Generated, m.Skipped, m.Failed, m.Stored, m.Duration,
	)
}
