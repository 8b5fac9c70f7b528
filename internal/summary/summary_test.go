// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package summary

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAggregator_DetectionIdempotent(t *testing.T) {
	agg := NewAggregator()
	agg.RecordDetection("doc-1")
	agg.RecordDetection("doc-1")
	agg.RecordDetection("doc-2")
	agg.RecordDetection("doc-1")

	s := agg.Summarize()
	assert.Equal(t, []string{"doc-1", "doc-2"}, s.Detected)
	assert.Empty(t, s.Failed)
}

func TestAggregator_FailureListedOnce(t *testing.T) {
	agg := NewAggregator()
	// The same document failing position retrieval on several pages is
	// reported exactly once.
	agg.RecordFailure("doc-7")
	agg.RecordFailure("doc-7")
	agg.RecordFailure("doc-7")

	s := agg.Summarize()
	assert.Equal(t, []string{"doc-7"}, s.Failed)
}

func TestAggregator_EmptyRun(t *testing.T) {
	s := NewAggregator().Summarize()
	assert.Empty(t, s.Detected)
	assert.Empty(t, s.Failed)
}

func TestAggregator_Detected(t *testing.T) {
	agg := NewAggregator()
	assert.False(t, agg.Detected("doc-1"))
	agg.RecordDetection("doc-1")
	assert.True(t, agg.Detected("doc-1"))
}

func TestAggregator_SummarizeReturnsCopies(t *testing.T) {
	agg := NewAggregator()
	agg.RecordDetection("doc-1")

	s := agg.Summarize()
	s.Detected[0] = "mutated"

	assert.Equal(t, []string{"doc-1"}, agg.Summarize().Detected)
}

func TestRunReport_TotalAnnotations(t *testing.T) {
	r := RunReport{Documents: []DocumentReport{
		{DocumentID: "a", Annotations: 3},
		{DocumentID: "b", Annotations: 0},
		{DocumentID: "c", Annotations: 2},
	}}
	assert.Equal(t, 5, r.TotalAnnotations())
}
