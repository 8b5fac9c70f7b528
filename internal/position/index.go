// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package position

// WordBox represents one OCR'd token on a rendered page. Coordinates are
// normalized to [0,1] against the page width and height, with the origin at
// the top-left corner.
type WordBox struct {
	Text string  `json:"text"`
	X1   float64 `json:"x1"`
	Y1   float64 `json:"y1"`
	X2   float64 `json:"x2"`
	Y2   float64 `json:"y2"`
}

// Index holds the word boxes for a single page and tracks which of them have
// been claimed by a match. Boxes are scanned in the order the position data
// listed them. A consumed box never matches again within the page, which is
// what prevents duplicate annotations on one token.
//
// Consumption is tracked in a separate set over a snapshot of the box list,
// so lookups never mutate the slice they iterate.
type Index struct {
	boxes    []WordBox
	consumed []bool
	left     int
}

// NewIndex creates an index over the given boxes. The slice is copied; the
// caller's data is never mutated.
func NewIndex(boxes []WordBox) *Index {
	snapshot := make([]WordBox, len(boxes))
	copy(snapshot, boxes)
	return &Index{
		boxes:    snapshot,
		consumed: make([]bool, len(snapshot)),
		left:     len(snapshot),
	}
}

// FindAndConsume returns the first unconsumed box whose text satisfies pred
// and marks it consumed. The second return value is false when no box
// matches; in that case the index is left untouched.
func (ix *Index) FindAndConsume(pred func(text string) bool) (WordBox, bool) {
	for i := range ix.boxes {
		if ix.consumed[i] {
			continue
		}
		if pred(ix.boxes[i].Text) {
			ix.consumed[i] = true
			ix.left--
			return ix.boxes[i], true
		}
	}
	return WordBox{}, false
}

// Find returns every unconsumed box whose text satisfies pred without
// consuming any of them. Field-label boxes commonly sit next to the value box
// a later lookup still needs to claim, so keyword detection must not consume.
func (ix *Index) Find(pred func(text string) bool) []WordBox {
	var found []WordBox
	for i := range ix.boxes {
		if ix.consumed[i] {
			continue
		}
		if pred(ix.boxes[i].Text) {
			found = append(found, ix.boxes[i])
		}
	}
	return found
}

// Remaining reports how many boxes are still available for matching.
func (ix *Index) Remaining() int {
	return ix.left
}

// Len reports the total number of boxes the page started with.
func (ix *Index) Len() int {
	return len(ix.boxes)
}
