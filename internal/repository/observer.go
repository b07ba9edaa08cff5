package repository

import "time"

// QueryObserver receives query latencies, typically the metrics service.
type QueryObserver interface {
	ObserveDBQuery(query string, duration time.Duration)
}

type instrumented struct {
	observer QueryObserver
}

// observe is deferred at the top of each query method.
func (i instrumented) observe(label string, start time.Time) {
	if i.observer == nil {
		return
	}
	i.observer.ObserveDBQuery(label, time.Since(start))
}
