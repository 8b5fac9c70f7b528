// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package category enumerates the PII categories the scanner knows about and
// the matching strategy each one uses against page position data.
package category

// Category identifies one detectable kind of PII.
type Category int

const (
	CreditCard Category = iota
	Email
	Phone
	SSN
	ZipCode
	IBAN
	SSNField
	DOBField
	Address
)

// Strategy describes how a category's candidates are correlated with word
// boxes on a page.
type Strategy int

const (
	// StrategyExact matches when a box's text contains the full candidate.
	StrategyExact Strategy = iota
	// StrategyTrailing matches the full candidate first, then falls back to
	// the candidate's trailing four characters. Handles partially redacted
	// numbers and tokens split across boxes.
	StrategyTrailing
	// StrategyKeyword scans boxes for literal field labels, independent of
	// any extracted candidate, and never consumes the box it finds.
	StrategyKeyword
	// StrategyContent emits content-only annotations with no geometry.
	StrategyContent
)

// MatchOrder is the fixed order categories are processed in for every page.
// Because matching consumes boxes, the order determines which category claims
// a contested box; keeping it fixed makes runs reproducible.
var MatchOrder = []Category{
	CreditCard,
	Email,
	Phone,
	SSN,
	ZipCode,
	IBAN,
	SSNField,
	DOBField,
	Address,
}

// String returns the canonical configuration name of the category.
func (c Category) String() string {
	switch c {
	case CreditCard:
		return "CREDIT_CARD"
	case Email:
		return "EMAIL"
	case Phone:
		return "PHONE"
	case SSN:
		return "SSN"
	case ZipCode:
		return "ZIP"
	case IBAN:
		return "IBAN"
	case SSNField:
		return "SSN_FIELD"
	case DOBField:
		return "DOB_FIELD"
	case Address:
		return "ADDRESS"
	default:
		return "UNKNOWN"
	}
}

// Title returns the annotation title used when the category is found.
func (c Category) Title() string {
	switch c {
	case CreditCard:
		return "CC Found"
	case Email:
		return "Email found"
	case Phone:
		return "Phone # found"
	case SSN:
		return "SSN found"
	case ZipCode:
		return "Zip Code Found"
	case IBAN:
		return "IBAN found"
	case SSNField:
		return "Possible SSN found"
	case DOBField:
		return "Possible DOB found"
	case Address:
		return "Address found on this page"
	default:
		return "PII found"
	}
}

// Strategy returns the matching strategy for the category.
func (c Category) Strategy() Strategy {
	switch c {
	case CreditCard, Phone:
		return StrategyTrailing
	case SSNField, DOBField:
		return StrategyKeyword
	case Address:
		return StrategyContent
	default:
		return StrategyExact
	}
}

// Keywords returns the literal field-label variants for keyword categories,
// and nil for everything else. Matching is plain substring containment, so
// both bare labels and "label:" forms are listed.
func (c Category) Keywords() []string {
	switch c {
	case SSNField:
		return []string{"ssn", "SSN", "SSN:", "ssn:"}
	case DOBField:
		return []string{"dob", "DOB", "DOB:", "dob:"}
	default:
		return nil
	}
}

// Enabled is the set of categories active for a run. Flags are resolved once
// from configuration before any page is processed and never re-read.
type Enabled map[Category]bool

// Any reports whether at least one category is enabled.
func (e Enabled) Any() bool {
	for _, on := range e {
		if on {
			return true
		}
	}
	return false
}
