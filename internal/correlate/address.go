// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package correlate

import (
	"doc-sentry/internal/category"
	"doc-sentry/internal/extract"
)

// AddressAnnotator handles street addresses and PO boxes. Addresses span
// multiple tokens and rarely fit a single word box, so they are flagged on
// the page with the candidate text as annotation content and no geometry.
// The annotator never reads from the position index.
type AddressAnnotator struct{}

// NewAddressAnnotator creates an AddressAnnotator.
func NewAddressAnnotator() *AddressAnnotator {
	return &AddressAnnotator{}
}

// Annotate emits one content-only annotation per unique candidate.
func (a *AddressAnnotator) Annotate(pageIndex int, candidates []string) []AnnotationRequest {
	var requests []AnnotationRequest
	for _, candidate := range extract.Unique(candidates) {
		requests = append(requests, AnnotationRequest{
			Title:     category.Address.Title(),
			PageIndex: pageIndex,
			Content:   candidate,
		})
	}
	return requests
}
