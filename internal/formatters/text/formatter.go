// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package text

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/fatih/color"

	"doc-sentry/internal/formatters"
	"doc-sentry/internal/summary"
)

// Formatter implements text-based output formatting
type Formatter struct {
	colors map[string]*color.Color
}

// NewFormatter creates a new text formatter
func NewFormatter() *Formatter {
	return &Formatter{
		colors: map[string]*color.Color{
			"green":  color.New(color.FgGreen),
			"yellow": color.New(color.FgYellow),
			"red":    color.New(color.FgRed),
			"cyan":   color.New(color.FgCyan),
			"white":  color.New(color.FgWhite, color.Bold),
		},
	}
}

func (f *Formatter) Name() string {
	return "text"
}

func (f *Formatter) Description() string {
	return "Human-readable text output with colors"
}

func (f *Formatter) FileExtension() string {
	return ".txt"
}

func (f *Formatter) Format(report *summary.RunReport, options formatters.FormatterOptions) (string, error) {
	// Disable colors if requested
	if options.NoColor {
		color.NoColor = true
	}

	var sb strings.Builder

	sb.WriteString(f.colors["white"].Sprintf("Scan %s", report.RunID))
	sb.WriteString(fmt.Sprintf("  (%d documents, %s)\n\n", len(report.Documents), report.Duration.Round(time.Millisecond)))

	for _, doc := range report.Documents {
		f.writeDocument(&sb, doc)
	}

	sb.WriteString("\n")
	total := report.TotalAnnotations()
	switch {
	case total > 0:
		sb.WriteString(f.colors["red"].Sprintf("PII found in %d of %d documents, %d annotations created.\n",
			len(report.Summary.Detected), len(report.Documents), total))
	case len(report.Summary.Detected) > 0:
		sb.WriteString(f.colors["yellow"].Sprintf("PII found in %d documents but no annotations could be created.\n",
			len(report.Summary.Detected)))
	default:
		sb.WriteString(f.colors["green"].Sprint("No PII found.\n"))
	}
	if len(report.Summary.Failed) > 0 {
		sb.WriteString(f.colors["yellow"].Sprintf("%d documents had pages without position data: %s\n",
			len(report.Summary.Failed), strings.Join(report.Summary.Failed, ", ")))
	}

	return sb.String(), nil
}

func (f *Formatter) writeDocument(sb *strings.Builder, doc summary.DocumentReport) {
	name := doc.DocumentID
	if doc.Title != "" {
		name = fmt.Sprintf("%s (%s)", doc.Title, doc.DocumentID)
	}

	switch {
	case doc.Annotations > 0:
		sb.WriteString(f.colors["red"].Sprintf("  %s: %d annotations", name, doc.Annotations))
	case len(doc.FailedPages) > 0:
		sb.WriteString(f.colors["yellow"].Sprintf("  %s: clean", name))
	default:
		sb.WriteString(f.colors["green"].Sprintf("  %s: clean", name))
	}
	if len(doc.FailedPages) > 0 {
		sb.WriteString(f.colors["yellow"].Sprintf("  [pages without position data: %s]", joinPages(doc.FailedPages)))
	}
	sb.WriteString("\n")

	if doc.Annotations > 0 {
		for _, cat := range sortedCategories(doc.ByCategory) {
			sb.WriteString(f.colors["cyan"].Sprintf("    %s: %d\n", cat, doc.ByCategory[cat]))
		}
	}
}

func sortedCategories(byCategory map[string]int) []string {
	cats := make([]string, 0, len(byCategory))
	for cat, n := range byCategory {
		if n > 0 {
			cats = append(cats, cat)
		}
	}
	sort.Strings(cats)
	return cats
}

func joinPages(pages []int) string {
	parts := make([]string, len(pages))
	for i, p := range pages {
		parts[i] = fmt.Sprintf("%d", p)
	}
	return strings.Join(parts, ", ")
}

func init() {
	formatters.Register(NewFormatter())
}
