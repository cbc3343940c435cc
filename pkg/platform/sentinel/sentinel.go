package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores, clients, and other
// infrastructure layers return these (optionally wrapped) so callers can
// branch with errors.Is without string matching.
//
// These represent factual states about resources, not validation failures:
// - ErrNotFound: entity does not exist in the store or upstream source
// - ErrExpired: session or token has expired
// - ErrInvalidState: entity in the wrong state for the requested operation
// - ErrUnavailable: backing service temporarily unreachable
//
// Policy evaluation never returns errors at all; any ambiguity there resolves
// to denial. These sentinels exist for the data plumbing around it.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrExpired      = errors.New("expired")
	ErrInvalidState = errors.New("invalid state")
	ErrUnavailable  = errors.New("unavailable")
)
