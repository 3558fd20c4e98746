package queue

import (
	"encoding/json"
	"fmt"
	"time"

	"pausetrim/internal/timeline"
)

// Status represents the lifecycle of a queue item.
type Status string

const (
	StatusPending    Status = "pending"
	StatusAnalyzing  Status = "analyzing"
	StatusAnalyzed   Status = "analyzed"
	StatusPlanning   Status = "planning"
	StatusPlanned    Status = "planned"
	StatusRendering  Status = "rendering"
	StatusRendered   Status = "rendered"
	StatusOrganizing Status = "organizing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

var allStatuses = []Status{
	StatusPending,
	StatusAnalyzing,
	StatusAnalyzed,
	StatusPlanning,
	StatusPlanned,
	StatusRendering,
	StatusRendered,
	StatusOrganizing,
	StatusCompleted,
	StatusFailed,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

// IsValidStatus reports whether value names a known status.
func IsValidStatus(value Status) bool {
	_, ok := statusSet[value]
	return ok
}

type statusTransition struct {
	from Status
	to   Status
}

// processingRollbacks map interrupted processing states back to the last
// stable state so a restarted processor picks the item up again.
var processingRollbacks = []statusTransition{
	{from: StatusAnalyzing, to: StatusPending},
	{from: StatusPlanning, to: StatusAnalyzed},
	{from: StatusRendering, to: StatusPlanned},
	{from: StatusOrganizing, to: StatusRendered},
}

// actionableStatuses are the stable states a processor advances from, in
// pipeline order.
var actionableStatuses = []Status{
	StatusPending,
	StatusAnalyzed,
	StatusPlanned,
	StatusRendered,
}

// Item is one queued edit job.
type Item struct {
	ID              int64
	JobID           string
	SourcePath      string
	OutputPath      string
	Status          Status
	ErrorMessage    string
	DurationSeconds float64
	SilencesJSON    string
	KeepRangesJSON  string
	FilterComplex   string
	ProgressStage   string
	ProgressMessage string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// SetSilences stores the detected silence intervals on the item.
func (i *Item) SetSilences(silences []timeline.Interval) error {
	encoded, err := json.Marshal(silences)
	if err != nil {
		return fmt.Errorf("encode silences: %w", err)
	}
	i.SilencesJSON = string(encoded)
	return nil
}

// Silences decodes the stored silence intervals.
func (i *Item) Silences() ([]timeline.Interval, error) {
	if i.SilencesJSON == "" {
		return nil, nil
	}
	var silences []timeline.Interval
	if err := json.Unmarshal([]byte(i.SilencesJSON), &silences); err != nil {
		return nil, fmt.Errorf("decode silences: %w", err)
	}
	return silences, nil
}

// SetKeepRanges stores the planned keep ranges on the item.
func (i *Item) SetKeepRanges(keep []timeline.Interval) error {
	encoded, err := json.Marshal(keep)
	if err != nil {
		return fmt.Errorf("encode keep ranges: %w", err)
	}
	i.KeepRangesJSON = string(encoded)
	return nil
}

// KeepRanges decodes the stored keep ranges.
func (i *Item) KeepRanges() ([]timeline.Interval, error) {
	if i.KeepRangesJSON == "" {
		return nil, nil
	}
	var keep []timeline.Interval
	if err := json.Unmarshal([]byte(i.KeepRangesJSON), &keep); err != nil {
		return nil, fmt.Errorf("decode keep ranges: %w", err)
	}
	return keep, nil
}

// SetProgress updates the user-visible progress fields.
func (i *Item) SetProgress(stage, message string) {
	i.ProgressStage = stage
	i.ProgressMessage = message
}
