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

package stream

import (
	"fmt"
	"io"
	"sort"

	"github.com/googlegenomics/featureindex/genome"
)

// Stats summarizes the nodes that passed through a StatStream.
type Stats struct {
	Trees     int
	Features  int
	Regions   int
	Sequences int
	Comments  int
	// Types counts features by type, including features inside trees.
	Types map[string]int
}

// WriteTo writes a human readable report of the statistics to w.
func (st *Stats) WriteTo(w io.Writer) (int64, error) {
	var total int64
	printf := func(format string, args ...interface{}) error {
		n, err := fmt.Fprintf(w, format, args...)
		total += int64(n)
		return err
	}
	lines := []struct {
		label string
		value int
	}{
		{"trees", st.Trees},
		{"features", st.Features},
		{"sequence regions", st.Regions},
		{"sequences", st.Sequences},
		{"comments", st.Comments},
	}
	for _, l := range lines {
		if err := printf("parsed %s: %d\n", l.label, l.value); err != nil {
			return total, err
		}
	}
	types := make([]string, 0, len(st.Types))
	for t := range st.Types {
		types = append(types, t)
	}
	sort.Strings(types)
	for _, t := range types {
		if err := printf("%s features: %d\n", t, st.Types[t]); err != nil {
			return total, err
		}
	}
	return total, nil
}

// StatStream counts the nodes pulled through it.
type StatStream struct {
	*VisitorStream
	stats Stats
}

// NewStatStream returns a pass-through stream gathering statistics about in.
func NewStatStream(in genome.Stream) *StatStream {
	s := &StatStream{stats: Stats{Types: make(map[string]int)}}
	s.VisitorStream = NewVisitorStream(in, genome.VisitorFuncs{
		Feature: func(fn *genome.FeatureNode) error {
			s.stats.Trees++
			for _, n := range genome.NewDepthFirstIterator(fn).Collect() {
				s.stats.Features++
				s.stats.Types[n.Type()]++
			}
			return nil
		},
		Region: func(*genome.RegionNode) error {
			s.stats.Regions++
			return nil
		},
		Sequence: func(*genome.SequenceNode) error {
			s.stats.Sequences++
			return nil
		},
		Comment: func(*genome.CommentNode) error {
			s.stats.Comments++
			return nil
		},
	})
	return s
}

// Stats returns the statistics gathered so far.
func (s *StatStream) Stats() Stats {
	st := s.stats
	st.Types = make(map[string]int, len(s.stats.Types))
	for t, n := range s.stats.Types {
		st.Types[t] = n
	}
	return st
}
