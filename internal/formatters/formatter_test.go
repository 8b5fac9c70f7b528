// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package formatters_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"doc-sentry/internal/formatters"
	"doc-sentry/internal/summary"

	_ "doc-sentry/internal/formatters/json"
	_ "doc-sentry/internal/formatters/text"
	_ "doc-sentry/internal/formatters/yaml"
)

func sampleReport() *summary.RunReport {
	return &summary.RunReport{
		RunID:     "run-1",
		StartedAt: time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC),
		Duration:  1500 * time.Millisecond,
		Documents: []summary.DocumentReport{
			{
				DocumentID:  "doc1",
				Title:       "report.pdf",
				Pages:       4,
				Annotations: 3,
				FailedPages: []int{3},
				ByCategory:  map[string]int{"SSN": 2, "EMAIL": 1},
			},
			{DocumentID: "doc2", Pages: 1},
		},
		Summary: summary.RunSummary{Detected: []string{"doc1"}, Failed: []string{"doc1"}},
	}
}

func TestRegistryHasDefaultFormatters(t *testing.T) {
	for _, name := range []string{"text", "json", "yaml"} {
		formatter, ok := formatters.Get(name)
		require.True(t, ok, "formatter %s not registered", name)
		assert.Equal(t, name, formatter.Name())
		assert.NotEmpty(t, formatter.Description())
		assert.NotEmpty(t, formatter.FileExtension())
	}
	assert.Contains(t, formatters.List(), "text")
}

func TestExportUnknownFormat(t *testing.T) {
	_, err := formatters.Export("xml", sampleReport(), formatters.FormatterOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported format")
}

func TestTextFormatter(t *testing.T) {
	out, err := formatters.Export("text", sampleReport(), formatters.FormatterOptions{NoColor: true})
	require.NoError(t, err)

	assert.Contains(t, out, "run-1")
	assert.Contains(t, out, "report.pdf (doc1): 3 annotations")
	assert.Contains(t, out, "SSN: 2")
	assert.Contains(t, out, "EMAIL: 1")
	assert.Contains(t, out, "doc2: clean")
	assert.Contains(t, out, "pages without position data: 3")
	assert.Contains(t, out, "PII found in 1 of 2 documents, 3 annotations created.")
}

func TestTextFormatterCleanRun(t *testing.T) {
	report := &summary.RunReport{
		RunID:     "run-2",
		Documents: []summary.DocumentReport{{DocumentID: "doc1", Pages: 1}},
	}
	out, err := formatters.Export("text", report, formatters.FormatterOptions{NoColor: true})
	require.NoError(t, err)
	assert.Contains(t, out, "No PII found.")
}

func TestJSONFormatterRoundTrips(t *testing.T) {
	out, err := formatters.Export("json", sampleReport(), formatters.FormatterOptions{})
	require.NoError(t, err)

	var decoded summary.RunReport
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, "run-1", decoded.RunID)
	require.Len(t, decoded.Documents, 2)
	assert.Equal(t, 3, decoded.Documents[0].Annotations)
	assert.Equal(t, []string{"doc1"}, decoded.Summary.Detected)
}

func TestYAMLFormatter(t *testing.T) {
	out, err := formatters.Export("yaml", sampleReport(), formatters.FormatterOptions{})
	require.NoError(t, err)
	assert.Contains(t, out, "runid: run-1")
	assert.Contains(t, out, "documentid: doc1")
}
