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

package genomics

import "fmt"

// Strand is the orientation of a feature relative to the reference sequence.
type Strand uint8

const (
	// Forward is written as "+".
	Forward Strand = iota
	// Reverse is written as "-".
	Reverse
	// Both marks features for which a strand is not applicable (".").
	Both
	// Unknown marks stranded features with unknown orientation ("?").
	Unknown
)

const strandChars = "+-.?"

// Valid reports whether s is one of the defined strands.
func (s Strand) Valid() bool {
	return int(s) < len(strandChars)
}

func (s Strand) String() string {
	if !s.Valid() {
		return fmt.Sprintf("Strand(%d)", uint8(s))
	}
	return strandChars[s : s+1]
}

// ParseStrand returns the strand denoted by the single character input.
func ParseStrand(input string) (Strand, error) {
	if len(input) == 1 {
		for i := 0; i < len(strandChars); i++ {
			if strandChars[i] == input[0] {
				return Strand(i), nil
			}
		}
	}
	return 0, NewInvalidArgumentError("parsing strand", fmt.Errorf("invalid strand %q -- must be one of %q", input, strandChars))
}

// Phase is the reading frame offset of a coding sequence feature.
type Phase uint8

const (
	PhaseZero Phase = iota
	PhaseOne
	PhaseTwo
	// PhaseUndefined is written as "." and is the phase of non-coding features.
	PhaseUndefined
)

const phaseChars = "012."

// Valid reports whether p is one of the defined phases.
func (p Phase) Valid() bool {
	return int(p) < len(phaseChars)
}

func (p Phase) String() string {
	if !p.Valid() {
		return fmt.Sprintf("Phase(%d)", uint8(p))
	}
	return phaseChars[p : p+1]
}

// ParsePhase returns the phase denoted by the single character input.
func ParsePhase(input string) (Phase, error) {
	if len(input) == 1 {
		for i := 0; i < len(phaseChars); i++ {
			if phaseChars[i] == input[0] {
				return Phase(i), nil
			}
		}
	}
	return 0, NewInvalidArgumentError("parsing phase", fmt.Errorf("invalid phase %q -- must be one of %q", input, phaseChars))
}
