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

package genome

import (
	"errors"
	"strings"

	"github.com/googlegenomics/featureindex/genomics"
)

// SequenceNode holds one FASTA entry embedded in an annotation file.
type SequenceNode struct {
	location
	description string
	sequence    []byte
}

// NewSequenceNode returns a SequenceNode.  The sequence region identifier is
// the first word of description.
func NewSequenceNode(description string, sequence []byte) (*SequenceNode, error) {
	fields := strings.Fields(description)
	if len(fields) == 0 {
		return nil, genomics.NewInvalidArgumentError("creating sequence node", errors.New("empty description"))
	}
	sn := &SequenceNode{
		location:    location{seqID: fields[0]},
		description: description,
		sequence:    sequence,
	}
	if len(sequence) > 0 {
		sn.rng = genomics.Range{Start: 1, End: uint64(len(sequence))}
	}
	return sn, nil
}

// Description returns the FASTA header without the leading ">".
func (sn *SequenceNode) Description() string {
	return sn.description
}

// Sequence returns the sequence data.  Callers must not modify it.
func (sn *SequenceNode) Sequence() []byte {
	return sn.sequence
}

// Accept calls v.VisitSequence.
func (sn *SequenceNode) Accept(v Visitor) error {
	return wrapVisitError("sequence", v.VisitSequence(sn))
}
