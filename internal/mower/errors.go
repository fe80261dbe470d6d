package mower

import "errors"

var (
	// ErrNoData indicates no status payload has ever been ingested.
	ErrNoData = errors.New("mower: no status data received yet")

	// ErrRefreshTimeout indicates a refresh cycle ended without the mower
	// answering the status requests. Retryable, the next scheduled refresh
	// will try again.
	ErrRefreshTimeout = errors.New("mower: refresh timed out waiting for status")

	// ErrRefreshInProgress indicates a refresh was requested while another
	// one was already waiting on the mower.
	ErrRefreshInProgress = errors.New("mower: refresh already in progress")
)
