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

// Package genome implements the genome annotation node model: feature trees
// anchored on sequence regions, together with sequence, region and comment
// nodes, a visitor dispatcher and the pull based Stream interface that
// produces them.
//
// Nodes are shared by pointer.  A tree can be held by a stream consumer and a
// feature index at the same time and is released once neither refers to it.
// Nodes provide no internal locking; they must not be modified while another
// goroutine reads them.
package genome

import "github.com/googlegenomics/featureindex/genomics"

// Node is implemented by every genome node variant: *FeatureNode,
// *RegionNode, *SequenceNode and *CommentNode.
type Node interface {
	// SeqID returns the identifier of the sequence region the node belongs to.
	// Comment nodes have an empty SeqID.
	SeqID() string
	// Range returns the closed coordinate interval covered by the node.
	Range() genomics.Range
	// Filename returns the name of the file the node was read from, or "" if
	// the node was constructed directly.
	Filename() string
	// LineNumber returns the line the node was read from, or zero.
	LineNumber() int
	// Accept invokes the visit method of v matching the node variant.
	Accept(v Visitor) error
}

type location struct {
	seqID    string
	rng      genomics.Range
	filename string
	line     int
}

func (l *location) SeqID() string         { return l.seqID }
func (l *location) Range() genomics.Range { return l.rng }
func (l *location) Filename() string      { return l.filename }
func (l *location) LineNumber() int       { return l.line }

// SetOrigin records where the node was read from.
func (l *location) SetOrigin(filename string, line int) {
	l.filename, l.line = filename, line
}

// Stream is a pull based source of genome nodes.  Next returns the next
// complete root node; at the end of the stream it returns (nil, nil), and
// keeps doing so on every further call.  Streams are not rewindable.
type Stream interface {
	Next() (Node, error)
}
