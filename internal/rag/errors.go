package rag

import "fmt"

// InitializationError means the embedding capability or the index could not be
// set up. Nothing was indexed or queried.
type InitializationError struct {
	Err error
}

func (e *InitializationError) Error() string {
	return fmt.Sprintf("retrieval pipeline initialization failed: %v", e.Err)
}

func (e *InitializationError) Unwrap() error {
	return e.Err
}

// RetrievalError means an upsert or query against the index failed mid-flight.
// It is distinct from an empty result set: callers can always tell "no
// matches" (nil error, empty slice) from "retrieval failed".
type RetrievalError struct {
	Op  string
	Err error
}

func (e *RetrievalError) Error() string {
	return fmt.Sprintf("retrieval %s failed: %v", e.Op, e.Err)
}

func (e *RetrievalError) Unwrap() error {
	return e.Err
}
