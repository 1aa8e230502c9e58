// Copyright 2019 Google Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package genomics contains definitions related to genome annotation data
// that are shared by the node, parser and index packages.
package genomics

import (
	"fmt"
	"strconv"
	"strings"
)

// Range defines a closed interval of base pair positions.  Coordinates are
// 1-based and End is the highest position covered, not one past it.  A valid
// Range always has Start <= End.
type Range struct {
	Start, End uint64
}

// Valid reports whether r satisfies Start <= End.
func (r Range) Valid() bool {
	return r.Start <= r.End
}

// Length returns the number of positions covered by r.
func (r Range) Length() uint64 {
	if !r.Valid() {
		return 0
	}
	return r.End - r.Start + 1
}

// Contains reports whether other lies completely inside r.
func (r Range) Contains(other Range) bool {
	return r.Start <= other.Start && other.End <= r.End
}

// Overlaps reports whether r and other share at least one position.
func (r Range) Overlaps(other Range) bool {
	return r.Start <= other.End && other.Start <= r.End
}

// Join returns the smallest range enclosing both r and other.
func (r Range) Join(other Range) Range {
	if other.Start < r.Start {
		r.Start = other.Start
	}
	if other.End > r.End {
		r.End = other.End
	}
	return r
}

func (r Range) String() string {
	return fmt.Sprintf("[%d, %d]", r.Start, r.End)
}

// ParseRange parses input of the form "start-end" or "start..end".
func ParseRange(input string) (Range, error) {
	sep := "-"
	if strings.Contains(input, "..") {
		sep = ".."
	}
	parts := strings.SplitN(input, sep, 2)
	if len(parts) != 2 {
		return Range{}, NewInvalidArgumentError("parsing range", fmt.Errorf("%q is not of the form start-end", input))
	}
	start, err := strconv.ParseUint(strings.TrimSpace(parts[0]), 10, 64)
	if err != nil {
		return Range{}, NewInvalidArgumentError("parsing range start", err)
	}
	end, err := strconv.ParseUint(strings.TrimSpace(parts[1]), 10, 64)
	if err != nil {
		return Range{}, NewInvalidArgumentError("parsing range end", err)
	}
	r := Range{start, end}
	if !r.Valid() {
		return Range{}, NewInvalidArgumentError("parsing range", fmt.Errorf("%s: start > end", r))
	}
	return r, nil
}
