// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package position

import (
	"strings"
	"testing"
)

func contains(sub string) func(string) bool {
	return func(text string) bool { return strings.Contains(text, sub) }
}

func TestFindAndConsume_FirstMatchWins(t *testing.T) {
	ix := NewIndex([]WordBox{
		{Text: "name:", X1: 0.1, Y1: 0.1, X2: 0.2, Y2: 0.12},
		{Text: "123-45-6789", X1: 0.3, Y1: 0.1, X2: 0.4, Y2: 0.12},
		{Text: "123-45-6789", X1: 0.3, Y1: 0.2, X2: 0.4, Y2: 0.22},
	})

	box, ok := ix.FindAndConsume(contains("123-45-6789"))
	if !ok {
		t.Fatal("expected a match")
	}
	if box.Y1 != 0.1 {
		t.Errorf("expected first box in list order, got y1=%v", box.Y1)
	}
	if ix.Remaining() != 2 {
		t.Errorf("expected 2 remaining boxes, got %d", ix.Remaining())
	}

	// The second identical token is still available.
	box, ok = ix.FindAndConsume(contains("123-45-6789"))
	if !ok {
		t.Fatal("expected second box to match")
	}
	if box.Y1 != 0.2 {
		t.Errorf("expected second box, got y1=%v", box.Y1)
	}

	// Both are consumed now.
	if _, ok := ix.FindAndConsume(contains("123-45-6789")); ok {
		t.Error("consumed boxes must not match again")
	}
}

func TestFindAndConsume_NoMatchLeavesIndexUntouched(t *testing.T) {
	ix := NewIndex([]WordBox{{Text: "hello"}, {Text: "world"}})

	if _, ok := ix.FindAndConsume(contains("absent")); ok {
		t.Fatal("unexpected match")
	}
	if ix.Remaining() != 2 {
		t.Errorf("miss must not consume, got %d remaining", ix.Remaining())
	}
}

func TestFindAndConsume_EmptyIndex(t *testing.T) {
	ix := NewIndex(nil)
	if _, ok := ix.FindAndConsume(contains("x")); ok {
		t.Fatal("empty index must not match")
	}
	if ix.Len() != 0 || ix.Remaining() != 0 {
		t.Errorf("empty index should report zero boxes")
	}
}

func TestFind_DoesNotConsume(t *testing.T) {
	ix := NewIndex([]WordBox{
		{Text: "SSN: 123-45-6789"},
		{Text: "ssn"},
		{Text: "other"},
	})

	found := ix.Find(contains("SSN"))
	if len(found) != 1 {
		t.Fatalf("expected 1 box, got %d", len(found))
	}
	if ix.Remaining() != 3 {
		t.Errorf("Find must not consume, got %d remaining", ix.Remaining())
	}

	// The same box is still claimable afterwards.
	if _, ok := ix.FindAndConsume(contains("123-45-6789")); !ok {
		t.Error("box found by Find should still be consumable")
	}
}

func TestFind_SkipsConsumedBoxes(t *testing.T) {
	ix := NewIndex([]WordBox{{Text: "dob: 01/02/1990"}, {Text: "dob"}})

	if _, ok := ix.FindAndConsume(contains("01/02/1990")); !ok {
		t.Fatal("expected match")
	}
	found := ix.Find(contains("dob"))
	if len(found) != 1 {
		t.Errorf("expected only the unconsumed box, got %d", len(found))
	}
}

func TestNewIndex_CopiesInput(t *testing.T) {
	boxes := []WordBox{{Text: "a"}, {Text: "b"}}
	ix := NewIndex(boxes)
	boxes[0].Text = "mutated"

	if _, ok := ix.FindAndConsume(contains("mutated")); ok {
		t.Error("index must operate on a snapshot of the input")
	}
}
