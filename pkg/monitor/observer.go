package monitor

// Observer receives controller events. Calls happen on the control loop
// goroutine and must not block.
type Observer interface {
	// Sensed is called after every sensing step.
	Sensed(s Snapshot)
	// SensorInvalid is called when a cycle's filter update is skipped.
	SensorInvalid()
	// ReportSent is called after a report was delivered and its response applied.
	ReportSent(r Report)
	// ReportFailed is called with the failure kind (see Kind).
	ReportFailed(kind string)
}

// NopObserver ignores all events.
type NopObserver struct{}

func (NopObserver) Sensed(Snapshot)     {}
func (NopObserver) SensorInvalid()      {}
func (NopObserver) ReportSent(Report)   {}
func (NopObserver) ReportFailed(string) {}

var _ Observer = NopObserver{}
