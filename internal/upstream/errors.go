// SPDX-License-Identifier: MIT

package upstream

import (
	"errors"
	"fmt"
)

var (
	// Sentinel errors for errors.Is checks at the boundary.
	ErrForbidden           = errors.New("upstream: access forbidden")
	ErrUpstreamUnavailable = errors.New("upstream: host unreachable or transport failure")
	ErrUpstreamError       = errors.New("upstream: internal error (5xx)")
	ErrUpstreamBadResponse = errors.New("upstream: invalid response format or malformed data")
	ErrTimeout             = errors.New("upstream: request timed out")
	ErrTileTooLarge        = errors.New("upstream: tile exceeds size limit")
)

// TileError is a rich error type that wraps the sentinel errors with context.
type TileError struct {
	Sentinel error
	Tile     string
	Status   int
	Err      error // Nested lower-level error (e.g. net.Error)
}

func (e *TileError) Error() string {
	msg := fmt.Sprintf("upstream: tile %s: %v", e.Tile, e.Sentinel)
	if e.Status > 0 {
		msg = fmt.Sprintf("%s (HTTP %d)", msg, e.Status)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *TileError) Unwrap() error {
	return e.Sentinel
}
