// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package correlate

import (
	"strings"

	"doc-sentry/internal/category"
	"doc-sentry/internal/position"
)

// FieldDetector flags boxes that carry a literal field label such as "SSN:"
// or "DOB", independent of anything the regex extractor produced. Label
// boxes commonly co-occur with a value box the Matcher must still be allowed
// to claim, so detection never consumes.
type FieldDetector struct{}

// NewFieldDetector creates a FieldDetector.
func NewFieldDetector() *FieldDetector {
	return &FieldDetector{}
}

// Detect scans every remaining box for the category's keyword variants and
// emits a lower-confidence "Possible ... found" annotation per hit. Non-
// keyword categories yield nothing.
func (d *FieldDetector) Detect(ix *position.Index, cat category.Category, pageIndex int) []AnnotationRequest {
	keywords := cat.Keywords()
	if len(keywords) == 0 {
		return nil
	}

	boxes := ix.Find(func(text string) bool {
		for _, kw := range keywords {
			if strings.Contains(text, kw) {
				return true
			}
		}
		return false
	})

	var requests []AnnotationRequest
	for _, box := range boxes {
		requests = append(requests, AnnotationRequest{
			Title:     cat.Title(),
			PageIndex: pageIndex,
			Geometry:  boxGeometry(box),
		})
	}
	return requests
}
