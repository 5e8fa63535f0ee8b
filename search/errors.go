// Copyright 2025 The VitalFlow Authors
// SPDX-License-Identifier: Apache-2.0

package search

import (
	"errors"
	"fmt"
)

// FailureBanner is shown to the user when the nearby search fails.
const FailureBanner = "Failed to fetch nearby data. Please try again."

var (
	// ErrEmptyInput is returned for blank search terms. No request is made.
	ErrEmptyInput = errors.New("search term is empty")

	// ErrStaleResult is returned when a newer search was submitted while
	// this one was running. Its result was discarded.
	ErrStaleResult = errors.New("search superseded by a newer one")

	// ErrBlankContact marks donors with nothing to geocode.
	ErrBlankContact = errors.New("donor contact is blank")
)

// SearchError reports a failed nearby search request: a network error, a
// non-2xx status, a timeout or an undecodable body.
type SearchError struct {
	Term       string
	StatusCode int
	Err        error
}

func (e *SearchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("nearby search %q: status %d: %v", e.Term, e.StatusCode, e.Err)
	}

	return fmt.Sprintf("nearby search %q: %v", e.Term, e.Err)
}

func (e *SearchError) Unwrap() error {
	return e.Err
}

// IsSearchFailure reports whether err is a failed nearby search request.
func IsSearchFailure(err error) bool {
	var searchErr *SearchError

	return errors.As(err, &searchErr)
}
