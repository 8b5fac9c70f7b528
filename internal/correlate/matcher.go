// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package correlate

import (
	"strings"

	"doc-sentry/internal/category"
	"doc-sentry/internal/extract"
	"doc-sentry/internal/position"
)

// Matcher correlates extracted candidates with word boxes for the positional
// categories. Each successful match consumes the box it claimed, so the
// number of annotations for a category never exceeds the number of unique
// candidates, and no box is annotated twice on one page.
type Matcher struct{}

// NewMatcher creates a Matcher.
func NewMatcher() *Matcher {
	return &Matcher{}
}

// Match looks up each unique candidate in the index using the category's
// strategy and returns one annotation request per successful match.
// Candidates that match no box are dropped silently; that is a normal
// outcome, not an error.
func (m *Matcher) Match(ix *position.Index, cat category.Category, pageIndex int, candidates []string) []AnnotationRequest {
	var requests []AnnotationRequest

	for _, candidate := range extract.Unique(candidates) {
		var (
			box position.WordBox
			ok  bool
		)
		switch cat.Strategy() {
		case category.StrategyTrailing:
			box, ok = m.matchTrailing(ix, candidate)
		default:
			box, ok = ix.FindAndConsume(containsPred(candidate))
		}
		if !ok {
			continue
		}
		requests = append(requests, AnnotationRequest{
			Title:     cat.Title(),
			PageIndex: pageIndex,
			Geometry:  boxGeometry(box),
		})
	}

	return requests
}

// matchTrailing tries full-candidate containment first, then retries with the
// candidate's trailing four characters. The fallback handles partially
// redacted numbers and numbers split across boxes, at the cost of the odd
// spurious hit on an unrelated box sharing the same four characters.
func (m *Matcher) matchTrailing(ix *position.Index, candidate string) (position.WordBox, bool) {
	if box, ok := ix.FindAndConsume(containsPred(candidate)); ok {
		return box, true
	}
	if len(candidate) < 4 {
		return position.WordBox{}, false
	}
	return ix.FindAndConsume(containsPred(candidate[len(candidate)-4:]))
}

func containsPred(candidate string) func(string) bool {
	return func(text string) bool { return strings.Contains(text, candidate) }
}
