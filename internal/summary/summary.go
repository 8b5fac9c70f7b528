// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package summary accumulates run-scoped detection state. The aggregator is
// a value owned by the run and passed through the orchestrator explicitly;
// nothing in it is process-global, so long-lived deployments cannot leak
// state between runs.
package summary

import "time"

// Aggregator tracks which documents had at least one detection and which
// failed page-position retrieval. Insertion is idempotent per document id:
// repeat detections on the same document are no-ops, and a document that
// fails on several pages is listed once.
type Aggregator struct {
	detected      map[string]bool
	detectedOrder []string
	failed        map[string]bool
	failedOrder   []string
}

// NewAggregator creates an empty aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{
		detected: make(map[string]bool),
		failed:   make(map[string]bool),
	}
}

// RecordDetection marks the document as having at least one detection.
func (a *Aggregator) RecordDetection(documentID string) {
	if a.detected[documentID] {
		return
	}
	a.detected[documentID] = true
	a.detectedOrder = append(a.detectedOrder, documentID)
}

// RecordFailure marks the document as having failed position retrieval.
func (a *Aggregator) RecordFailure(documentID string) {
	if a.failed[documentID] {
		return
	}
	a.failed[documentID] = true
	a.failedOrder = append(a.failedOrder, documentID)
}

// Detected reports whether the document has a recorded detection.
func (a *Aggregator) Detected(documentID string) bool {
	return a.detected[documentID]
}

// RunSummary is the read-once result of a whole batch, in first-recorded
// order.
type RunSummary struct {
	Detected []string `json:"detected"`
	Failed   []string `json:"failed"`
}

// Summarize returns the accumulated document sets.
func (a *Aggregator) Summarize() RunSummary {
	return RunSummary{
		Detected: append([]string(nil), a.detectedOrder...),
		Failed:   append([]string(nil), a.failedOrder...),
	}
}

// DocumentReport describes the outcome for one document in a run.
type DocumentReport struct {
	DocumentID  string         `json:"document_id"`
	Title       string         `json:"title,omitempty"`
	Pages       int            `json:"pages"`
	Annotations int            `json:"annotations"`
	FailedPages []int          `json:"failed_pages,omitempty"`
	ByCategory  map[string]int `json:"by_category,omitempty"`
}

// RunReport is everything a run produced, consumed by the output formatters.
type RunReport struct {
	RunID     string           `json:"run_id"`
	StartedAt time.Time        `json:"started_at"`
	Duration  time.Duration    `json:"duration"`
	Documents []DocumentReport `json:"documents"`
	Summary   RunSummary       `json:"summary"`
}

// TotalAnnotations sums annotation counts across all documents.
func (r *RunReport) TotalAnnotations() int {
	total := 0
	for _, doc := range r.Documents {
		total += doc.Annotations
	}
	return total
}
