// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package observability emits structured operation events for the scanner's
// components. Events are JSON lines on the configured writer; at the metrics
// level only failures are recorded, at the debug level every operation is.
package observability

import (
	"encoding/json"
	"io"
	"time"

	"github.com/google/uuid"
)

// StandardObserver implements observability for all components
type StandardObserver struct {
	level  ObservabilityLevel
	writer io.Writer
	runID  string
}

type ObservabilityLevel int

const (
	ObservabilityOff     ObservabilityLevel = 0
	ObservabilityMetrics ObservabilityLevel = 1
	ObservabilityDebug   ObservabilityLevel = 2
)

// NewStandardObserver creates observability component
func NewStandardObserver(level ObservabilityLevel, writer io.Writer) *StandardObserver {
	return &StandardObserver{
		level:  level,
		writer: writer,
		runID:  uuid.NewString(),
	}
}

// RunID returns the identifier tagged onto every event this observer emits.
func (o *StandardObserver) RunID() string {
	return o.runID
}

// StartTiming returns a function to complete timing
func (o *StandardObserver) StartTiming(component, operation, subject string) func(success bool, metadata map[string]interface{}) {
	start := time.Now()

	return func(success bool, metadata map[string]interface{}) {
		duration := time.Since(start)

		o.LogOperation(StandardObservabilityData{
			Component:  component,
			Operation:  operation,
			Subject:    subject,
			DurationMs: duration.Milliseconds(),
			Success:    success,
			Metadata:   metadata,
		})
	}
}

// LogOperation logs operation data
func (o *StandardObserver) LogOperation(data StandardObservabilityData) {
	if o.level == ObservabilityOff {
		return
	}

	data.RunID = o.runID
	data.RequestID = "req-" + uuid.NewString()

	if o.level == ObservabilityDebug || !data.Success {
		json.NewEncoder(o.writer).Encode(data)
	}
}

// LogError records a failed operation with its error message.
func (o *StandardObserver) LogError(component, operation, subject string, err error) {
	o.LogOperation(StandardObservabilityData{
		Component: component,
		Operation: operation,
		Subject:   subject,
		Success:   false,
		Error:     err.Error(),
	})
}

// StandardObservabilityData for all components
type StandardObservabilityData struct {
	Component  string                 `json:"component"`
	Operation  string                 `json:"operation"`
	RunID      string                 `json:"run_id"`
	RequestID  string                 `json:"request_id"`
	Subject    string                 `json:"subject,omitempty"` // document id, page, or endpoint
	DurationMs int64                  `json:"duration_ms,omitempty"`
	Success    bool                   `json:"success"`
	Error      string                 `json:"error,omitempty"`
	MatchCount int                    `json:"match_count,omitempty"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
}
