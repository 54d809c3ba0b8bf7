package domain

import "errors"

var (
	ErrRateLimited       = errors.New("llm provider rate limited")
	ErrUnavailable       = errors.New("llm provider unavailable")
	ErrParseFailure      = errors.New("llm output is not a parseable JSON object")
	ErrUnknownProvider   = errors.New("unknown llm provider")
	ErrInvalidReference  = errors.New("invalid port reference data")
	ErrCheckpointCorrupt = errors.New("checkpoint state is corrupt")
	ErrObjectNotFound    = errors.New("object not found")
	ErrObjectConflict    = errors.New("object changed since it was read")
)
