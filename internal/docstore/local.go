// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package docstore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"

	"doc-sentry/internal/correlate"
	"doc-sentry/internal/position"
)

// LocalStore implements Store over local PDF files, for scanning documents
// that never reached the hosted store. Word boxes come from the PDF's own
// text layer; a page without a text layer (a bare scan) reports
// ErrPositionDataUnavailable exactly like an un-OCR'd hosted document.
// Annotations and notifications are buffered and written to sidecar JSON
// files by Flush.
type LocalStore struct {
	docs          map[string]*localDocument
	annotations   map[string][]correlate.AnnotationRequest
	notifications []Notification
}

// Notification is one buffered run-level notification.
type Notification struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

type localDocument struct {
	meta  Document
	path  string
	texts []string             // per page, index 0 = page 1
	words [][]position.WordBox // per page
}

// NewLocalStore parses the given PDF files. Each file becomes a document
// whose id is its base name without extension.
func NewLocalStore(paths []string) (*LocalStore, error) {
	ls := &LocalStore{
		docs:        make(map[string]*localDocument),
		annotations: make(map[string][]correlate.AnnotationRequest),
	}
	for _, path := range paths {
		doc, err := loadLocalDocument(path)
		if err != nil {
			return nil, fmt.Errorf("loading %s: %w", path, err)
		}
		if _, exists := ls.docs[doc.meta.ID]; exists {
			return nil, fmt.Errorf("duplicate document id %q from %s", doc.meta.ID, path)
		}
		ls.docs[doc.meta.ID] = doc
	}
	return ls, nil
}

// DocumentIDs returns the loaded document ids in path order.
func (ls *LocalStore) DocumentIDs() []string {
	ids := make([]string, 0, len(ls.docs))
	for id := range ls.docs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// GetDocument retrieves a loaded document's metadata.
func (ls *LocalStore) GetDocument(ctx context.Context, id string) (Document, error) {
	doc, ok := ls.docs[id]
	if !ok {
		return Document{}, fmt.Errorf("document %s not found", id)
	}
	return doc.meta, nil
}

// GetPageText returns the text assembled from the page's word layer.
func (ls *LocalStore) GetPageText(ctx context.Context, doc Document, pageNumber int) (string, error) {
	ld, ok := ls.docs[doc.ID]
	if !ok {
		return "", fmt.Errorf("document %s not found", doc.ID)
	}
	if pageNumber < 1 || pageNumber > len(ld.texts) {
		return "", fmt.Errorf("document %s has no page %d", doc.ID, pageNumber)
	}
	return ld.texts[pageNumber-1], nil
}

// GetPagePositions returns the page's word boxes.
func (ls *LocalStore) GetPagePositions(ctx context.Context, doc Document, pageNumber int) ([]position.WordBox, error) {
	ld, ok := ls.docs[doc.ID]
	if !ok {
		return nil, fmt.Errorf("document %s not found", doc.ID)
	}
	if pageNumber < 1 || pageNumber > len(ld.words) {
		return nil, fmt.Errorf("document %s has no page %d", doc.ID, pageNumber)
	}
	boxes := ld.words[pageNumber-1]
	if len(boxes) == 0 {
		return nil, &PositionDataError{DocumentID: doc.ID, Page: pageNumber}
	}
	return boxes, nil
}

// CreateAnnotation buffers the annotation for Flush.
func (ls *LocalStore) CreateAnnotation(ctx context.Context, doc Document, req correlate.AnnotationRequest, vis Visibility) error {
	if _, ok := ls.docs[doc.ID]; !ok {
		return fmt.Errorf("document %s not found", doc.ID)
	}
	ls.annotations[doc.ID] = append(ls.annotations[doc.ID], req)
	return nil
}

// SendNotification buffers the notification; Notifications exposes them for
// the CLI to print.
func (ls *LocalStore) SendNotification(ctx context.Context, subject, body string) error {
	ls.notifications = append(ls.notifications, Notification{Subject: subject, Body: body})
	return nil
}

// Annotations returns the buffered annotations for one document.
func (ls *LocalStore) Annotations(documentID string) []correlate.AnnotationRequest {
	return ls.annotations[documentID]
}

// Notifications returns the buffered run notifications.
func (ls *LocalStore) Notifications() []Notification {
	return ls.notifications
}

// Flush writes one <file>.annotations.json sidecar per document that
// received annotations.
func (ls *LocalStore) Flush() error {
	for id, requests := range ls.annotations {
		if len(requests) == 0 {
			continue
		}
		doc := ls.docs[id]
		data, err := json.MarshalIndent(requests, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding annotations for %s: %w", id, err)
		}
		sidecar := doc.path + ".annotations.json"
		if err := os.WriteFile(sidecar, data, 0o600); err != nil {
			return fmt.Errorf("writing %s: %w", sidecar, err)
		}
	}
	return nil
}

func loadLocalDocument(path string) (*localDocument, error) {
	dims, err := api.PageDimsFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading page dimensions: %w", err)
	}

	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening pdf: %w", err)
	}
	defer f.Close()

	pageCount := reader.NumPage()
	base := filepath.Base(path)
	id := strings.TrimSuffix(base, filepath.Ext(base))

	doc := &localDocument{
		meta: Document{
			ID:           id,
			Title:        base,
			PageCount:    pageCount,
			CanonicalURL: "file://" + path,
		},
		path:  path,
		texts: make([]string, pageCount),
		words: make([][]position.WordBox, pageCount),
	}

	for n := 1; n <= pageCount; n++ {
		p := reader.Page(n)
		if p.V.IsNull() {
			continue
		}
		width, height := 612.0, 792.0
		if n-1 < len(dims) {
			width, height = dims[n-1].Width, dims[n-1].Height
		}
		words := assembleWords(p.Content().Text, width, height)
		doc.words[n-1] = words
		doc.texts[n-1] = pageText(words)
	}

	return doc, nil
}

// assembleWords groups a page's raw text elements into word boxes with
// coordinates normalized to [0,1] and the origin moved to the top-left
// corner (PDF user space puts it at the bottom-left).
func assembleWords(elements []pdf.Text, width, height float64) []position.WordBox {
	if len(elements) == 0 || width <= 0 || height <= 0 {
		return nil
	}

	// Reading order: top row first, left to right within a row.
	sorted := make([]pdf.Text, len(elements))
	copy(sorted, elements)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Y != sorted[j].Y {
			return sorted[i].Y > sorted[j].Y
		}
		return sorted[i].X < sorted[j].X
	})

	var words []position.WordBox
	var run []pdf.Text

	flush := func() {
		if len(run) == 0 {
			return
		}
		var sb strings.Builder
		minX, maxX := run[0].X, run[0].X+run[0].W
		baseline, size := run[0].Y, run[0].FontSize
		for _, el := range run {
			sb.WriteString(el.S)
			if el.X < minX {
				minX = el.X
			}
			if el.X+el.W > maxX {
				maxX = el.X + el.W
			}
			if el.FontSize > size {
				size = el.FontSize
			}
		}
		if text := strings.TrimSpace(sb.String()); text != "" {
			words = append(words, position.WordBox{
				Text: text,
				X1:   clamp01(minX / width),
				Y1:   clamp01(1 - (baseline+size)/height),
				X2:   clamp01(maxX / width),
				Y2:   clamp01(1 - baseline/height),
			})
		}
		run = run[:0]
	}

	for _, el := range sorted {
		if strings.TrimSpace(el.S) == "" {
			flush()
			continue
		}
		if len(run) > 0 {
			prev := run[len(run)-1]
			sameRow := absFloat(el.Y-prev.Y) < 0.5
			gap := el.X - (prev.X + prev.W)
			if !sameRow || gap > maxGap(prev.FontSize) {
				flush()
			}
		}
		run = append(run, el)
	}
	flush()

	return words
}

// pageText joins words into lines, so the extractor sees text in reading
// order with row breaks preserved.
func pageText(words []position.WordBox) string {
	if len(words) == 0 {
		return ""
	}
	var sb strings.Builder
	prevY := words[0].Y1
	for i, w := range words {
		if i > 0 {
			if absFloat(w.Y1-prevY) > 0.001 {
				sb.WriteString("\n")
			} else {
				sb.WriteString(" ")
			}
		}
		sb.WriteString(w.Text)
		prevY = w.Y1
	}
	return sb.String()
}

// maxGap is the largest horizontal distance, in points, treated as
// intra-word spacing for the given font size.
func maxGap(fontSize float64) float64 {
	if fontSize <= 0 {
		return 1.0
	}
	return fontSize * 0.3
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func absFloat(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
