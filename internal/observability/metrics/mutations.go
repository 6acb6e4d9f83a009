// Package metrics turns domain events into StatsD measurements.
package metrics

import (
	"maps"
	"time"

	obserrors "github.com/harmonia-academy/harmonia-web/internal/observability/errors"
	"github.com/harmonia-academy/harmonia-web/internal/observability/statsd"
)

// Result constants for metric tagging.
const (
	ResultSuccess = "success"
	ResultError   = "error"
)

// MutationMetric describes one settled write submitted from a result dialog.
type MutationMetric struct {
	Action   string
	Result   string
	Duration time.Duration
	Err      error
}

// EmitMutation counts the outcome and records how long the dialog stayed pending.
func EmitMutation(sink statsd.Sink, in MutationMetric) {
	if sink == nil {
		return
	}

	tags := map[string]string{
		"action": in.Action,
		"result": in.Result,
	}
	if in.Err != nil && in.Result == ResultError {
		if class := obserrors.Classify(in.Err); class != "" {
			tags["error_class"] = class
		}
	}

	sink.Count("mutation.outcome", 1, tags)

	if in.Duration > 0 {
		sink.Timing("mutation.duration", in.Duration, CloneTags(tags))
	}
}

// CloneTags creates a shallow copy of a tag map.
func CloneTags(src map[string]string) map[string]string {
	if len(src) == 0 {
		return nil
	}
	return maps.Clone(src)
}
