// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"doc-sentry/internal/category"
	"doc-sentry/internal/correlate"
	"doc-sentry/internal/docstore"
	"doc-sentry/internal/position"
)

type createdAnnotation struct {
	documentID string
	req        correlate.AnnotationRequest
	visibility docstore.Visibility
}

type sentNotification struct {
	subject string
	body    string
}

// fakeStore is an in-memory Store with scriptable page failures.
type fakeStore struct {
	docs          map[string]docstore.Document
	texts         map[string]map[int]string
	boxes         map[string]map[int][]position.WordBox
	failPositions map[string]map[int]bool

	annotations   []createdAnnotation
	notifications []sentNotification
	annotationErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		docs:          make(map[string]docstore.Document),
		texts:         make(map[string]map[int]string),
		boxes:         make(map[string]map[int][]position.WordBox),
		failPositions: make(map[string]map[int]bool),
	}
}

func (f *fakeStore) addPage(docID string, page int, text string, boxes []position.WordBox) {
	if _, ok := f.docs[docID]; !ok {
		f.docs[docID] = docstore.Document{
			ID:           docID,
			Title:        docID + ".pdf",
			CanonicalURL: "https://store.example.com/documents/" + docID,
		}
		f.texts[docID] = make(map[int]string)
		f.boxes[docID] = make(map[int][]position.WordBox)
		f.failPositions[docID] = make(map[int]bool)
	}
	f.texts[docID][page] = text
	f.boxes[docID][page] = boxes
	if page > f.docs[docID].PageCount {
		doc := f.docs[docID]
		doc.PageCount = page
		f.docs[docID] = doc
	}
}

func (f *fakeStore) failPositionsOn(docID string, pages ...int) {
	for _, page := range pages {
		f.failPositions[docID][page] = true
	}
}

func (f *fakeStore) GetDocument(ctx context.Context, id string) (docstore.Document, error) {
	doc, ok := f.docs[id]
	if !ok {
		return docstore.Document{}, fmt.Errorf("document %s not found", id)
	}
	return doc, nil
}

func (f *fakeStore) GetPageText(ctx context.Context, doc docstore.Document, page int) (string, error) {
	return f.texts[doc.ID][page], nil
}

func (f *fakeStore) GetPagePositions(ctx context.Context, doc docstore.Document, page int) ([]position.WordBox, error) {
	if f.failPositions[doc.ID][page] {
		return nil, &docstore.PositionDataError{DocumentID: doc.ID, Page: page}
	}
	return f.boxes[doc.ID][page], nil
}

func (f *fakeStore) CreateAnnotation(ctx context.Context, doc docstore.Document, req correlate.AnnotationRequest, vis docstore.Visibility) error {
	if f.annotationErr != nil {
		return f.annotationErr
	}
	f.annotations = append(f.annotations, createdAnnotation{documentID: doc.ID, req: req, visibility: vis})
	return nil
}

func (f *fakeStore) SendNotification(ctx context.Context, subject, body string) error {
	f.notifications = append(f.notifications, sentNotification{subject: subject, body: body})
	return nil
}

func allCategories() category.Enabled {
	enabled := make(category.Enabled)
	for _, cat := range category.MatchOrder {
		enabled[cat] = true
	}
	return enabled
}

func ssnPage() []position.WordBox {
	return []position.WordBox{
		{Text: "SSN:", X1: 0.10, Y1: 0.20, X2: 0.15, Y2: 0.22},
		{Text: "123-45-6789", X1: 0.16, Y1: 0.20, X2: 0.28, Y2: 0.22},
	}
}

func TestRunAnnotatesDetectedSSN(t *testing.T) {
	store := newFakeStore()
	store.addPage("doc1", 1, "SSN: 123-45-6789", ssnPage())

	orch := New(store, nil)
	report, err := orch.Run(context.Background(), []string{"doc1"}, RunConfig{
		Categories: allCategories(),
		Alert:      true,
		Visibility: docstore.VisibilityPrivate,
	})
	require.NoError(t, err)

	require.Len(t, report.Documents, 1)
	docReport := report.Documents[0]
	assert.Equal(t, "doc1", docReport.DocumentID)
	assert.Equal(t, 2, docReport.Annotations)
	assert.Equal(t, 1, docReport.ByCategory["SSN"])
	assert.Equal(t, 1, docReport.ByCategory["SSN_FIELD"])
	assert.Equal(t, []string{"doc1"}, report.Summary.Detected)
	assert.Empty(t, report.Summary.Failed)
	assert.Equal(t, 2, report.TotalAnnotations())

	require.Len(t, store.annotations, 2)
	byTitle := make(map[string]correlate.AnnotationRequest)
	for _, a := range store.annotations {
		byTitle[a.req.Title] = a.req
		assert.Equal(t, docstore.VisibilityPrivate, a.visibility)
		assert.Equal(t, 0, a.req.PageIndex)
	}
	value := byTitle["SSN found"]
	require.NotNil(t, value.Geometry)
	assert.InDelta(t, 0.16, value.Geometry.X1, 1e-9)
	label := byTitle["Possible SSN found"]
	require.NotNil(t, label.Geometry)
	assert.InDelta(t, 0.10, label.Geometry.X1, 1e-9)
}

func TestRunSendsAlertWithCanonicalURL(t *testing.T) {
	store := newFakeStore()
	store.addPage("doc1", 1, "SSN: 123-45-6789", ssnPage())

	orch := New(store, nil)
	_, err := orch.Run(context.Background(), []string{"doc1"}, RunConfig{
		Categories: allCategories(),
		Alert:      true,
	})
	require.NoError(t, err)

	require.Len(t, store.notifications, 1)
	assert.Equal(t, "PII Detected", store.notifications[0].subject)
	assert.Contains(t, store.notifications[0].body, "https://store.example.com/documents/doc1")
}

func TestRunNoAlertSuppressesDetectionNotification(t *testing.T) {
	store := newFakeStore()
	store.addPage("doc1", 1, "SSN: 123-45-6789", ssnPage())

	orch := New(store, nil)
	_, err := orch.Run(context.Background(), []string{"doc1"}, RunConfig{
		Categories: allCategories(),
		Alert:      false,
	})
	require.NoError(t, err)
	assert.Empty(t, store.notifications)
}

func TestRunPositionFailureIsPageScoped(t *testing.T) {
	store := newFakeStore()
	store.addPage("doc1", 1, "SSN: 123-45-6789", ssnPage())
	store.addPage("doc1", 2, "nothing here", nil)
	store.addPage("doc1", 3, "SSN: 987-65-4321", nil)
	store.addPage("doc1", 4, "contact a@b.com", []position.WordBox{
		{Text: "a@b.com", X1: 0.4, Y1: 0.5, X2: 0.5, Y2: 0.52},
	})
	store.failPositionsOn("doc1", 2, 3)

	orch := New(store, nil)
	report, err := orch.Run(context.Background(), []string{"doc1"}, RunConfig{
		Categories: allCategories(),
	})
	require.NoError(t, err)

	docReport := report.Documents[0]
	assert.Equal(t, []int{2, 3}, docReport.FailedPages)
	// Pages around the failures are still processed.
	assert.Equal(t, 1, docReport.ByCategory["SSN"])
	assert.Equal(t, 1, docReport.ByCategory["EMAIL"])

	// The document appears once in the failed set despite two failed pages.
	assert.Equal(t, []string{"doc1"}, report.Summary.Failed)

	require.Len(t, store.notifications, 1)
	failure := store.notifications[0]
	assert.Equal(t, "Position data unavailable", failure.subject)
	assert.Equal(t, 1, strings.Count(failure.body, "doc1"))
}

func TestRunFailureNotificationSentWithoutAlert(t *testing.T) {
	store := newFakeStore()
	store.addPage("doc1", 1, "no pii", nil)
	store.failPositionsOn("doc1", 1)

	orch := New(store, nil)
	_, err := orch.Run(context.Background(), []string{"doc1"}, RunConfig{
		Categories: allCategories(),
		Alert:      false,
	})
	require.NoError(t, err)
	require.Len(t, store.notifications, 1)
	assert.Equal(t, "Position data unavailable", store.notifications[0].subject)
}

func TestRunConfigurationErrors(t *testing.T) {
	orch := New(newFakeStore(), nil)

	_, err := orch.Run(context.Background(), nil, RunConfig{Categories: allCategories()})
	require.Error(t, err)
	assert.True(t, IsConfigurationError(err))

	_, err = orch.Run(context.Background(), []string{"doc1"}, RunConfig{Categories: category.Enabled{}})
	require.Error(t, err)
	assert.True(t, IsConfigurationError(err))

	_, err = orch.Run(context.Background(), []string{"doc1"}, RunConfig{
		Categories: category.Enabled{category.SSN: false},
	})
	assert.True(t, IsConfigurationError(err))
}

func TestRunAnnotationFailureLogsAndContinues(t *testing.T) {
	store := newFakeStore()
	store.addPage("doc1", 1, "SSN: 123-45-6789", ssnPage())
	store.annotationErr = errors.New("store returned 503 service unavailable")

	orch := New(store, nil)
	report, err := orch.Run(context.Background(), []string{"doc1"}, RunConfig{
		Categories: allCategories(),
	})
	require.NoError(t, err)

	// The sends failed but the detections still count.
	assert.Equal(t, 0, report.Documents[0].Annotations)
	assert.Equal(t, []string{"doc1"}, report.Summary.Detected)
}

func TestRunDisabledCategoryIsSkipped(t *testing.T) {
	store := newFakeStore()
	store.addPage("doc1", 1, "reach me at a@b.com", []position.WordBox{
		{Text: "a@b.com", X1: 0.1, Y1: 0.1, X2: 0.2, Y2: 0.12},
	})

	orch := New(store, nil)
	report, err := orch.Run(context.Background(), []string{"doc1"}, RunConfig{
		Categories: category.Enabled{category.SSN: true},
	})
	require.NoError(t, err)
	assert.Empty(t, store.annotations)
	assert.Empty(t, report.Summary.Detected)
}

func TestRunMissingDocumentIsSkipped(t *testing.T) {
	store := newFakeStore()
	store.addPage("doc2", 1, "SSN: 123-45-6789", ssnPage())

	orch := New(store, nil)
	report, err := orch.Run(context.Background(), []string{"ghost", "doc2"}, RunConfig{
		Categories: allCategories(),
	})
	require.NoError(t, err)
	require.Len(t, report.Documents, 2)
	assert.Equal(t, 0, report.Documents[0].Pages)
	assert.Equal(t, 2, report.Documents[1].Annotations)
	assert.Equal(t, []string{"doc2"}, report.Summary.Detected)
}

func TestRunAddressIsContentOnly(t *testing.T) {
	store := newFakeStore()
	store.addPage("doc1", 1, "ship to 123 Main Street today", []position.WordBox{
		{Text: "123", X1: 0.1, Y1: 0.1, X2: 0.12, Y2: 0.12},
		{Text: "Main", X1: 0.13, Y1: 0.1, X2: 0.16, Y2: 0.12},
		{Text: "Street", X1: 0.17, Y1: 0.1, X2: 0.21, Y2: 0.12},
	})

	orch := New(store, nil)
	report, err := orch.Run(context.Background(), []string{"doc1"}, RunConfig{
		Categories: category.Enabled{category.Address: true},
	})
	require.NoError(t, err)

	require.Len(t, store.annotations, 1)
	got := store.annotations[0].req
	assert.Equal(t, "Address found on this page", got.Title)
	assert.Nil(t, got.Geometry)
	assert.Contains(t, got.Content, "123 Main Street")
	assert.Equal(t, []string{"doc1"}, report.Summary.Detected)
}
