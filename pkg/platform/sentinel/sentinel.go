package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores and infrastructure layers return
// these (optionally wrapped) so services can translate them into fallback behavior.
//
// These represent factual states about resources, not validation failures:
// - ErrNotFound: key does not exist in store
// - ErrUnavailable: backend or resource temporarily unavailable
// - ErrTimeout: a bounded wait elapsed before a value was produced
// - ErrClosed: the owning component has been shut down
var (
	ErrNotFound    = errors.New("not found")
	ErrUnavailable = errors.New("unavailable")
	ErrTimeout     = errors.New("timeout")
	ErrClosed      = errors.New("closed")
)
