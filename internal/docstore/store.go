// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package docstore talks to the systems that hold documents and receive the
// scanner's output: the hosted document store API and, for offline work, a
// local PDF-backed source. The core engine only sees the Store interface.
package docstore

import (
	"context"
	"fmt"

	"doc-sentry/internal/correlate"
	"doc-sentry/internal/position"
)

// Visibility controls who can see a created annotation.
type Visibility string

const (
	VisibilityPrivate      Visibility = "private"
	VisibilityOrganization Visibility = "organization"
	VisibilityPublic       Visibility = "public"
)

// ParseVisibility validates a visibility name from configuration.
func ParseVisibility(s string) (Visibility, error) {
	switch Visibility(s) {
	case VisibilityPrivate, VisibilityOrganization, VisibilityPublic:
		return Visibility(s), nil
	case "":
		return VisibilityPrivate, nil
	default:
		return "", fmt.Errorf("invalid visibility %q (want private, organization, or public)", s)
	}
}

// Document describes one document held by a store.
type Document struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	PageCount    int    `json:"page_count"`
	CanonicalURL string `json:"canonical_url"`
}

// Store is the surface the orchestrator needs from any document source.
// Page numbers are 1-based; annotation requests carry 0-based page indexes.
type Store interface {
	// GetDocument retrieves document metadata by id.
	GetDocument(ctx context.Context, id string) (Document, error)

	// GetPageText returns the OCR'd raw text of one page.
	GetPageText(ctx context.Context, doc Document, pageNumber int) (string, error)

	// GetPagePositions returns the word bounding boxes of one page, every
	// coordinate normalized to [0,1]. Documents that never went through
	// word positioning yield ErrPositionDataUnavailable.
	GetPagePositions(ctx context.Context, doc Document, pageNumber int) ([]position.WordBox, error)

	// CreateAnnotation creates one annotation on the document.
	CreateAnnotation(ctx context.Context, doc Document, req correlate.AnnotationRequest, vis Visibility) error

	// SendNotification delivers a run-level notification to the user.
	SendNotification(ctx context.Context, subject, body string) error
}
