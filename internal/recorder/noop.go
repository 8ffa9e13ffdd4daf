package recorder

import "SignalBench/internal/model"

// NoopRecorder is a no-op implementation used when no output is configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordRun(_ *model.RunResult) error { return nil }
func (n *NoopRecorder) RecordFailure(_, _ string, _ error) error { return nil }
func (n *NoopRecorder) Close() error { return nil }
