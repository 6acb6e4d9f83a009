package metrics

import (
	"errors"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedMetric struct {
	kind  string
	name  string
	value any
	tags  map[string]string
}

type recordingSink struct {
	metrics []recordedMetric
}

func (s *recordingSink) Count(name string, value int64, tags map[string]string) {
	s.metrics = append(s.metrics, recordedMetric{"count", name, value, tags})
}

func (s *recordingSink) Gauge(name string, value float64, tags map[string]string) {
	s.metrics = append(s.metrics, recordedMetric{"gauge", name, value, tags})
}

func (s *recordingSink) Timing(name string, value time.Duration, tags map[string]string) {
	s.metrics = append(s.metrics, recordedMetric{"timing", name, value, tags})
}

func TestEmitMutationSuccess(t *testing.T) {
	sink := &recordingSink{}
	EmitMutation(sink, MutationMetric{Action: "delete_class", Result: ResultSuccess, Duration: 120 * time.Millisecond})

	require.Len(t, sink.metrics, 2)
	assert.Equal(t, "mutation.outcome", sink.metrics[0].name)
	assert.Equal(t, map[string]string{"action": "delete_class", "result": "success"}, sink.metrics[0].tags)
	assert.Equal(t, "mutation.duration", sink.metrics[1].name)
	assert.Equal(t, 120*time.Millisecond, sink.metrics[1].value)
}

func TestEmitMutationTagsErrorClass(t *testing.T) {
	sink := &recordingSink{}
	err := &net.OpError{Op: "dial", Err: errors.New("refused")}
	EmitMutation(sink, MutationMetric{Action: "publish_class", Result: ResultError, Err: err})

	require.Len(t, sink.metrics, 1, "no timing without a duration")
	assert.Equal(t, "errors_errorstring", sink.metrics[0].tags["error_class"])
}

func TestEmitMutationNilSink(t *testing.T) {
	assert.NotPanics(t, func() {
		EmitMutation(nil, MutationMetric{Action: "x", Result: ResultSuccess})
	})
}

func TestCloneTags(t *testing.T) {
	assert.Nil(t, CloneTags(nil))
	src := map[string]string{"a": "1"}
	out := CloneTags(src)
	out["a"] = "2"
	assert.Equal(t, "1", src["a"])
}
