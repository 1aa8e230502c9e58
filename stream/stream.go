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

// Package stream contains genome.Stream implementations that transform or
// observe the nodes pulled through them.
package stream

import (
	"github.com/googlegenomics/featureindex/genome"
	"github.com/googlegenomics/featureindex/index"
)

// VisitorStream passes every node of its input to a visitor before
// returning it unchanged.
type VisitorStream struct {
	in  genome.Stream
	v   genome.Visitor
	err error
}

// NewVisitorStream returns a stream applying v to every node pulled from in.
func NewVisitorStream(in genome.Stream, v genome.Visitor) *VisitorStream {
	return &VisitorStream{in: in, v: v}
}

// Next implements genome.Stream.  A failing visitor ends the stream with its
// error.
func (s *VisitorStream) Next() (genome.Node, error) {
	if s.err != nil {
		return nil, s.err
	}
	n, err := s.in.Next()
	if err == nil && n != nil {
		err = n.Accept(s.v)
	}
	if err != nil {
		s.err = err
		return nil, err
	}
	return n, nil
}

// NewFeatureStream returns a stream adding every region and feature tree
// pulled from in to idx.
func NewFeatureStream(in genome.Stream, idx index.FeatureIndex) *VisitorStream {
	return NewVisitorStream(in, index.NewVisitor(idx))
}

// SliceStream returns a fixed sequence of nodes.
type SliceStream struct {
	nodes []genome.Node
}

// NewSliceStream returns a stream producing nodes in order.
func NewSliceStream(nodes ...genome.Node) *SliceStream {
	return &SliceStream{nodes: nodes}
}

// Next implements genome.Stream.
func (s *SliceStream) Next() (genome.Node, error) {
	if len(s.nodes) == 0 {
		return nil, nil
	}
	n := s.nodes[0]
	s.nodes = s.nodes[1:]
	return n, nil
}

// Drain pulls s until it is exhausted and returns the first error.
func Drain(s genome.Stream) error {
	for {
		n, err := s.Next()
		if err != nil || n == nil {
			return err
		}
	}
}
