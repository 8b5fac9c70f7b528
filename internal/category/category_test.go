// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package category

import "testing"

func TestMatchOrder_CoversEveryCategory(t *testing.T) {
	seen := make(map[Category]bool)
	for _, c := range MatchOrder {
		if seen[c] {
			t.Errorf("category %s appears twice in MatchOrder", c)
		}
		seen[c] = true
	}
	for _, c := range []Category{CreditCard, Email, Phone, SSN, ZipCode, IBAN, SSNField, DOBField, Address} {
		if !seen[c] {
			t.Errorf("category %s missing from MatchOrder", c)
		}
	}
}

func TestMatchOrder_PositionalBeforeKeywordBeforeContent(t *testing.T) {
	rank := make(map[Category]int)
	for i, c := range MatchOrder {
		rank[c] = i
	}
	if rank[SSNField] < rank[ZipCode] {
		t.Error("field-based detection must run after positional categories")
	}
	if rank[Address] != len(MatchOrder)-1 {
		t.Error("address detection must run last")
	}
}

func TestStrategy(t *testing.T) {
	cases := []struct {
		cat  Category
		want Strategy
	}{
		{SSN, StrategyExact},
		{Email, StrategyExact},
		{ZipCode, StrategyExact},
		{IBAN, StrategyExact},
		{CreditCard, StrategyTrailing},
		{Phone, StrategyTrailing},
		{SSNField, StrategyKeyword},
		{DOBField, StrategyKeyword},
		{Address, StrategyContent},
	}
	for _, tc := range cases {
		if got := tc.cat.Strategy(); got != tc.want {
			t.Errorf("%s: strategy = %v, want %v", tc.cat, got, tc.want)
		}
	}
}

func TestKeywords(t *testing.T) {
	if kw := SSNField.Keywords(); len(kw) != 4 {
		t.Errorf("SSN_FIELD keywords = %v", kw)
	}
	if kw := DOBField.Keywords(); len(kw) != 4 {
		t.Errorf("DOB_FIELD keywords = %v", kw)
	}
	if kw := Email.Keywords(); kw != nil {
		t.Errorf("non-keyword category must return nil, got %v", kw)
	}
}

func TestEnabled_Any(t *testing.T) {
	if (Enabled{}).Any() {
		t.Error("empty set should report no enabled categories")
	}
	if (Enabled{SSN: false}).Any() {
		t.Error("all-false set should report no enabled categories")
	}
	if !(Enabled{SSN: true}).Any() {
		t.Error("expected enabled set")
	}
}
