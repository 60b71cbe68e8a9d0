package storage

import "time"

// Observer is notified after every table operation. Implementations must
// be safe for concurrent use.
type Observer interface {
	ObserveOp(collection, op string, took time.Duration, err error)
}

// NopObserver discards observations.
type NopObserver struct{}

func (NopObserver) ObserveOp(string, string, time.Duration, error) {}

// Operation names reported to an Observer.
const (
	OpGet    = "get"
	OpGetAll = "get_all"
	OpQuery  = "query"
	OpPut    = "put"
	OpDelete = "delete"
	OpCount  = "count"
)
