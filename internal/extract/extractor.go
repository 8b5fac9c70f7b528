// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package extract pulls per-category PII candidate strings out of raw page
// text with compiled regular expressions. Extraction is a pure function of
// the text: it knows nothing about pages, positions, or annotations.
package extract

import "regexp"

// Candidates holds the raw strings extracted from one page of text, one
// slice per category. Slices preserve first-occurrence order and contain
// duplicates; callers deduplicate where their matching semantics require it.
type Candidates struct {
	SSNNumbers      []string
	CreditCards     []string
	IBANNumbers     []string
	Emails          []string
	Phones          []string
	PhonesWithExts  []string
	StreetAddresses []string
	POBoxes         []string
	ZipCodes        []string
}

// Extractor is a regex-based candidate classifier. Patterns are compiled
// once at construction.
type Extractor struct {
	ssn           *regexp.Regexp
	creditCard    *regexp.Regexp
	iban          *regexp.Regexp
	email         *regexp.Regexp
	phone         *regexp.Regexp
	phoneWithExt  *regexp.Regexp
	streetAddress *regexp.Regexp
	poBox         *regexp.Regexp
	zipCode       *regexp.Regexp
}

// NewExtractor creates an extractor with the predefined category patterns.
func NewExtractor() *Extractor {
	return &Extractor{
		ssn:          regexp.MustCompile(`\b\d{3}[-\s]\d{2}[-\s]\d{4}\b`),
		creditCard:   regexp.MustCompile(`\b(?:\d[ -]*?){13,16}\b`),
		iban:         regexp.MustCompile(`\b[A-Z]{2}\d{2}[A-Z0-9]{11,30}\b`),
		email:        regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`),
		phone:        regexp.MustCompile(`\(?\d{3}\)?[-.\s]\d{3}[-.\s]?\d{4}\b`),
		phoneWithExt: regexp.MustCompile(`\(?\d{3}\)?[-.\s]\d{3}[-.\s]?\d{4}\s*(?:ext\.?|x|#)\s*\d{2,5}\b`),
		streetAddress: regexp.MustCompile(
			`(?i)\b\d{1,4}\s[\w\s]{1,20}\b(?:street|st|avenue|ave|road|rd|highway|hwy|square|sq|trail|trl|drive|dr|court|ct|parkway|pkwy|circle|cir|boulevard|blvd|lane|ln|way)\.?\b`),
		poBox:   regexp.MustCompile(`(?i)\bP\.?\s?O\.?\s?Box\s\d+\b`),
		zipCode: regexp.MustCompile(`\b\d{5}(?:-\d{4})?\b`),
	}
}

// Extract runs every category pattern over the text.
func (e *Extractor) Extract(text string) Candidates {
	return Candidates{
		SSNNumbers:      e.ssn.FindAllString(text, -1),
		CreditCards:     e.creditCard.FindAllString(text, -1),
		IBANNumbers:     e.iban.FindAllString(text, -1),
		Emails:          e.email.FindAllString(text, -1),
		Phones:          e.phone.FindAllString(text, -1),
		PhonesWithExts:  e.phoneWithExt.FindAllString(text, -1),
		StreetAddresses: e.streetAddress.FindAllString(text, -1),
		POBoxes:         e.poBox.FindAllString(text, -1),
		ZipCodes:        e.zipCode.FindAllString(text, -1),
	}
}

// Unique deduplicates a candidate list preserving first-occurrence order, so
// repeated extractions of the same string cost at most one position lookup.
func Unique(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(values))
	var out []string
	for _, v := range values {
		if seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}
