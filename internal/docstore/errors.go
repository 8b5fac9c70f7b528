// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package docstore

import (
	"errors"
	"fmt"
)

// ErrPositionDataUnavailable marks a page whose position data is missing or
// malformed, typically a document that never went through OCR word
// positioning. It is the one store error the engine handles specially: the
// document is recorded as failed and the run moves on to the next page.
var ErrPositionDataUnavailable = errors.New("page position data unavailable")

// PositionDataError carries the document and page a position retrieval
// failed for. It unwraps to ErrPositionDataUnavailable.
type PositionDataError struct {
	DocumentID string
	Page       int
	Cause      error
}

func (e *PositionDataError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("position data unavailable for document %s page %d: %v", e.DocumentID, e.Page, e.Cause)
	}
	return fmt.Sprintf("position data unavailable for document %s page %d", e.DocumentID, e.Page)
}

func (e *PositionDataError) Unwrap() error {
	return ErrPositionDataUnavailable
}
