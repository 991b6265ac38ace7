package metrics

// Result labels
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)

// Recorder receives placement workflow and HTTP metrics
type Recorder interface {
	RecordDraftGenerated(classCount int)
	RecordPlacements(succeeded, failed int)
	RecordTransfers(succeeded, failed int)
	RecordImport(succeeded, failed int)
	ObserveFinalizeLatency(seconds float64)
	RecordHTTPRequest(method, route string, status int, seconds float64)
}

// NopRecorder discards all metrics. Used in tests and when metrics are disabled.
type NopRecorder struct{}

var _ Recorder = (*NopRecorder)(nil)

// NewNop creates a new no-op recorder
func NewNop() *NopRecorder {
	return &NopRecorder{}
}

func (*NopRecorder) RecordDraftGenerated(int)                       {}
func (*NopRecorder) RecordPlacements(int, int)                      {}
func (*NopRecorder) RecordTransfers(int, int)                       {}
func (*NopRecorder) RecordImport(int, int)                          {}
func (*NopRecorder) ObserveFinalizeLatency(float64)                 {}
func (*NopRecorder) RecordHTTPRequest(string, string, int, float64) {}
