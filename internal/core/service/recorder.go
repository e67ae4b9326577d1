package service

import "time"

// Removal reasons reported to the Recorder.
const (
	RemovedEvicted = "evicted"
	RemovedRevoked = "revoked"
)

// Remote fetch outcomes reported to the Recorder.
const (
	FetchFound    = "found"
	FetchNotFound = "not_found"
	FetchError    = "error"
)

// Recorder receives store events for metrics.
type Recorder interface {
	ForkCreated()
	ForksRemoved(reason string, n int)
	ActiveForks(n int)
	RemoteFetch(result string, elapsed time.Duration)
	Transaction(success bool)
}

type nopRecorder struct{}

func (nopRecorder) ForkCreated()                      {}
func (nopRecorder) ForksRemoved(string, int)          {}
func (nopRecorder) ActiveForks(int)                   {}
func (nopRecorder) RemoteFetch(string, time.Duration) {}
func (nopRecorder) Transaction(bool)                  {}
