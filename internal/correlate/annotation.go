// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package correlate decides which word boxes on a page correspond to which
// extracted PII candidates and turns successful matches into annotation
// requests. It is the only place the scanner makes nontrivial decisions;
// everything around it is orchestration.
package correlate

import "doc-sentry/internal/position"

// Box is a normalized bounding rectangle on a page.
type Box struct {
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
	X2 float64 `json:"x2"`
	Y2 float64 `json:"y2"`
}

// AnnotationRequest is one annotation to be created on a page. Exactly one
// of Geometry and Content is populated: positional matches carry the matched
// box's rectangle, address matches carry the candidate text instead.
type AnnotationRequest struct {
	Title     string `json:"title"`
	PageIndex int    `json:"page_index"` // 0-based, one less than the page number
	Geometry  *Box   `json:"geometry,omitempty"`
	Content   string `json:"content,omitempty"`
}

func boxGeometry(wb position.WordBox) *Box {
	return &Box{X1: wb.X1, Y1: wb.Y1, X2: wb.X2, Y2: wb.Y2}
}
