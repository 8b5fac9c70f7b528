// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package orchestrator drives a scan run: document by document, page by
// page, category by category, strictly sequential. Matching consumes word
// boxes, so no two categories may run against the same page concurrently;
// the sequential design is deliberate, not a missing optimization.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"doc-sentry/internal/category"
	"doc-sentry/internal/correlate"
	"doc-sentry/internal/docstore"
	"doc-sentry/internal/extract"
	"doc-sentry/internal/observability"
	"doc-sentry/internal/position"
	"doc-sentry/internal/summary"
)

// ConfigurationError marks a run that cannot start: no documents selected or
// no categories enabled. It is the only run-fatal error class.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "configuration error: " + e.Reason
}

// IsConfigurationError reports whether err is run-fatal misconfiguration.
func IsConfigurationError(err error) bool {
	var ce *ConfigurationError
	return errors.As(err, &ce)
}

// RunConfig holds the per-run options resolved from configuration.
type RunConfig struct {
	Categories category.Enabled
	Alert      bool
	Visibility docstore.Visibility
}

// Orchestrator walks documents and pages, extracts candidates, correlates
// them with word boxes, and sends the resulting annotations to the store.
type Orchestrator struct {
	store     docstore.Store
	extractor *extract.Extractor
	matcher   *correlate.Matcher
	fields    *correlate.FieldDetector
	address   *correlate.AddressAnnotator
	observer  *observability.StandardObserver
}

// New creates an orchestrator over the given store. The observer may be nil.
func New(store docstore.Store, observer *observability.StandardObserver) *Orchestrator {
	return &Orchestrator{
		store:     store,
		extractor: extract.NewExtractor(),
		matcher:   correlate.NewMatcher(),
		fields:    correlate.NewFieldDetector(),
		address:   correlate.NewAddressAnnotator(),
		observer:  observer,
	}
}

// pageState tracks where a page is in its processing lifecycle.
type pageState int

const (
	stateFetching pageState = iota
	stateExtracting
	stateMatching
	stateDone
	stateFailed
)

// pageWork carries one page through the state machine.
type pageWork struct {
	state      pageState
	doc        docstore.Document
	pageNumber int // 1-based
	text       string
	boxes      []position.WordBox
	requests   []annotated
}

// annotated pairs an annotation request with the category that produced it,
// for per-category reporting.
type annotated struct {
	cat category.Category
	req correlate.AnnotationRequest
}

// Run scans the given documents and returns the run report. It fails fast
// on misconfiguration; everything else is recovered per page or per call
// and the run carries on.
func (o *Orchestrator) Run(ctx context.Context, documentIDs []string, cfg RunConfig) (*summary.RunReport, error) {
	if len(documentIDs) == 0 {
		return nil, &ConfigurationError{Reason: "no documents selected"}
	}
	if !cfg.Categories.Any() {
		return nil, &ConfigurationError{Reason: "no detection categories enabled"}
	}
	if cfg.Visibility == "" {
		cfg.Visibility = docstore.VisibilityPrivate
	}

	report := &summary.RunReport{
		RunID:     o.runID(),
		StartedAt: time.Now(),
	}
	agg := summary.NewAggregator()
	documents := make(map[string]docstore.Document)

	for _, id := range documentIDs {
		docReport := o.scanDocument(ctx, id, cfg, agg, documents)
		report.Documents = append(report.Documents, docReport)
	}

	report.Summary = agg.Summarize()
	report.Duration = time.Since(report.StartedAt)

	o.notify(ctx, cfg, report.Summary, documents)
	return report, nil
}

func (o *Orchestrator) scanDocument(ctx context.Context, id string, cfg RunConfig, agg *summary.Aggregator, documents map[string]docstore.Document) summary.DocumentReport {
	docReport := summary.DocumentReport{
		DocumentID: id,
		ByCategory: make(map[string]int),
	}

	doc, err := o.store.GetDocument(ctx, id)
	if err != nil {
		o.logError("get_document", id, err)
		return docReport
	}
	documents[doc.ID] = doc
	docReport.Title = doc.Title
	docReport.Pages = doc.PageCount

	for page := 1; page <= doc.PageCount; page++ {
		work := &pageWork{doc: doc, pageNumber: page}
		o.processPage(ctx, work, cfg, agg)
		if work.state == stateFailed {
			docReport.FailedPages = append(docReport.FailedPages, page)
			continue
		}
		for _, a := range work.requests {
			if err := o.store.CreateAnnotation(ctx, doc, a.req, cfg.Visibility); err != nil {
				// Call-scoped: the detection still counts, the send does not
				// retry, and the page is not aborted.
				o.logError("create_annotation", fmt.Sprintf("%s/page/%d", doc.ID, page), err)
				continue
			}
			docReport.Annotations++
			docReport.ByCategory[a.cat.String()]++
		}
	}
	return docReport
}

// processPage drives one page through Fetching, Extracting, and Matching.
// Failed is only reachable from Fetching; once a page has its text and
// boxes, the remaining stages cannot fail.
func (o *Orchestrator) processPage(ctx context.Context, work *pageWork, cfg RunConfig, agg *summary.Aggregator) {
	for work.state != stateDone && work.state != stateFailed {
		switch work.state {
		case stateFetching:
			o.fetch(ctx, work, agg)
		case stateExtracting:
			work.state = stateMatching
		case stateMatching:
			o.match(work, cfg, agg)
		}
	}
}

func (o *Orchestrator) fetch(ctx context.Context, work *pageWork, agg *summary.Aggregator) {
	subject := fmt.Sprintf("%s/page/%d", work.doc.ID, work.pageNumber)

	text, err := o.store.GetPageText(ctx, work.doc, work.pageNumber)
	if err != nil {
		o.logError("get_page_text", subject, err)
		work.state = stateFailed
		return
	}
	work.text = text

	boxes, err := o.store.GetPagePositions(ctx, work.doc, work.pageNumber)
	if err != nil {
		o.logError("get_page_positions", subject, err)
		if errors.Is(err, docstore.ErrPositionDataUnavailable) {
			agg.RecordFailure(work.doc.ID)
		}
		work.state = stateFailed
		return
	}
	work.boxes = boxes
	work.state = stateExtracting
}

func (o *Orchestrator) match(work *pageWork, cfg RunConfig, agg *summary.Aggregator) {
	candidates := o.extractor.Extract(work.text)
	ix := position.NewIndex(work.boxes)
	pageIndex := work.pageNumber - 1

	for _, cat := range category.MatchOrder {
		if !cfg.Categories[cat] {
			continue
		}
		var requests []correlate.AnnotationRequest
		switch cat.Strategy() {
		case category.StrategyKeyword:
			requests = o.fields.Detect(ix, cat, pageIndex)
		case category.StrategyContent:
			requests = o.address.Annotate(pageIndex, candidatesFor(cat, candidates))
		default:
			requests = o.matcher.Match(ix, cat, pageIndex, candidatesFor(cat, candidates))
		}
		if len(requests) > 0 {
			agg.RecordDetection(work.doc.ID)
		}
		for _, req := range requests {
			work.requests = append(work.requests, annotated{cat: cat, req: req})
		}
	}
	work.state = stateDone
}

// candidatesFor maps a category to its extracted candidate strings. Every
// category is enumerated here; keyword categories have no candidates.
func candidatesFor(cat category.Category, c extract.Candidates) []string {
	switch cat {
	case category.CreditCard:
		return c.CreditCards
	case category.Email:
		return c.Emails
	case category.Phone:
		return append(append([]string(nil), c.Phones...), c.PhonesWithExts...)
	case category.SSN:
		return c.SSNNumbers
	case category.ZipCode:
		return c.ZipCodes
	case category.IBAN:
		return c.IBANNumbers
	case category.Address:
		return append(append([]string(nil), c.StreetAddresses...), c.POBoxes...)
	case category.SSNField, category.DOBField:
		return nil
	}
	return nil
}

// notify sends at most two run-level notifications: a detection alert when
// alerting is enabled, and a failure summary when any document lacked
// position data.
func (o *Orchestrator) notify(ctx context.Context, cfg RunConfig, sum summary.RunSummary, documents map[string]docstore.Document) {
	if cfg.Alert && len(sum.Detected) > 0 {
		body := detectionBody(sum.Detected, documents)
		if err := o.store.SendNotification(ctx, "PII Detected", body); err != nil {
			o.logError("send_notification", "PII Detected", err)
		}
	}
	if len(sum.Failed) > 0 {
		body := failureBody(sum.Failed, documents)
		if err := o.store.SendNotification(ctx, "Position data unavailable", body); err != nil {
			o.logError("send_notification", "Position data unavailable", err)
		}
	}
}

func detectionBody(detected []string, documents map[string]docstore.Document) string {
	var sb strings.Builder
	sb.WriteString("Personally identifying information was found in the following documents, please open each document to view more detail:\n")
	for _, id := range detected {
		sb.WriteString(documentRef(id, documents))
		sb.WriteString("\n")
	}
	return sb.String()
}

func failureBody(failed []string, documents map[string]docstore.Document) string {
	var sb strings.Builder
	sb.WriteString("Page position data was unavailable for the following documents. They may need OCR before they can be scanned:\n")
	for _, id := range failed {
		sb.WriteString(documentRef(id, documents))
		sb.WriteString("\n")
	}
	return sb.String()
}

func documentRef(id string, documents map[string]docstore.Document) string {
	if doc, ok := documents[id]; ok && doc.CanonicalURL != "" {
		return doc.CanonicalURL
	}
	return id
}

func (o *Orchestrator) runID() string {
	if o.observer != nil {
		return o.observer.RunID()
	}
	return uuid.NewString()
}

func (o *Orchestrator) logError(operation, subject string, err error) {
	if o.observer == nil {
		return
	}
	o.observer.LogError("orchestrator", operation, subject, err)
}
