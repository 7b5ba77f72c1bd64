package rpc

import "time"

// Request outcomes reported to observers.
const (
	OutcomeOK        = "ok"
	OutcomeRejected  = "rejected"
	OutcomeTimeout   = "timeout"
	OutcomeTransport = "transport_error"
	OutcomeCanceled  = "canceled"
)

// Served describes one request answered by a registered handler.
type Served struct {
	Command  string
	ID       string
	Status   int
	Duration time.Duration
	Error    string
}

// Observer is told about every served command and every outbound request.
// Implementations must not block.
type Observer interface {
	Served(s Served)
	Requested(topic, outcome string, elapsed time.Duration)
}

// Observers fans out to several observers.
type Observers []Observer

func (o Observers) Served(s Served) {
	for _, obs := range o {
		obs.Served(s)
	}
}

func (o Observers) Requested(topic, outcome string, elapsed time.Duration) {
	for _, obs := range o {
		obs.Requested(topic, outcome, elapsed)
	}
}

type nopObserver struct{}

func (nopObserver) Served(Served)                          {}
func (nopObserver) Requested(string, string, time.Duration) {}
