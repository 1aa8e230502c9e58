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

// Package index contains an in-memory index of genome feature trees keyed by
// sequence region.
package index

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/biogo/store/interval"

	"github.com/googlegenomics/featureindex/genome"
	"github.com/googlegenomics/featureindex/genomics"
	"github.com/googlegenomics/featureindex/gff3"
	"github.com/googlegenomics/featureindex/source"
)

// FeatureIndex stores root feature trees and sequence-region declarations
// grouped by sequence region identifier.
type FeatureIndex interface {
	// AddRegion records the declared bounds of a sequence region.
	AddRegion(rn *genome.RegionNode) error
	// AddFeature adds the tree rooted at fn under fn.SeqID().
	AddFeature(fn *genome.FeatureNode) error
	// AddSource pulls s until it is exhausted and adds every region and
	// feature tree it produces.
	AddSource(s genome.Stream) error
	// AddGFF3File parses the GFF3 file at path and adds its contents.
	AddGFF3File(ctx context.Context, path string) error

	// SeqIDs returns the indexed sequence regions in order of first
	// appearance.
	SeqIDs() []string
	// FirstSeqID returns the first indexed sequence region.
	FirstSeqID() (string, error)
	// HasSeqID reports whether seqid has been indexed.
	HasSeqID(seqid string) bool
	// RangeForSeqID returns the smallest range enclosing the features of
	// seqid, or its declared bounds if it has no features.
	RangeForSeqID(seqid string) (genomics.Range, error)
	// FeaturesForSeqID returns the root features of seqid in insertion order.
	FeaturesForSeqID(seqid string) ([]*genome.FeatureNode, error)
	// FeaturesForRange returns the root features of seqid overlapping r,
	// ordered by start position.
	FeaturesForRange(seqid string, r genomics.Range) ([]*genome.FeatureNode, error)
}

// Memory is a FeatureIndex held in memory.  It is safe for concurrent use.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]*entry
	seqIDs  []string
	nextID  uintptr
}

var _ FeatureIndex = (*Memory)(nil)

type entry struct {
	region   *genome.RegionNode
	features []*genome.FeatureNode
	tree     interval.IntTree
	span     genomics.Range
}

// NewMemory returns an empty index.
func NewMemory() *Memory {
	return &Memory{entries: make(map[string]*entry)}
}

// entry returns the entry for seqid, creating it if necessary.  The caller
// must hold the write lock.
func (m *Memory) entry(seqid string) *entry {
	e, ok := m.entries[seqid]
	if !ok {
		e = &entry{}
		m.entries[seqid] = e
		m.seqIDs = append(m.seqIDs, seqid)
	}
	return e
}

func (m *Memory) lookup(seqid string) (*entry, error) {
	e, ok := m.entries[seqid]
	if !ok {
		return nil, genomics.NewNotFoundError("", fmt.Errorf("sequence region %q is not indexed", seqid))
	}
	return e, nil
}

// AddRegion implements FeatureIndex.  A sequence region can only be declared
// once.
func (m *Memory) AddRegion(rn *genome.RegionNode) error {
	if rn == nil {
		return genomics.NewInvalidArgumentError("adding region", errors.New("nil region"))
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if e, ok := m.entries[rn.SeqID()]; ok && e.region != nil {
		return genomics.NewInvalidArgumentError("adding region", fmt.Errorf("sequence region %q already declared", rn.SeqID()))
	}
	m.entry(rn.SeqID()).region = rn
	return nil
}

// AddFeature implements FeatureIndex.
func (m *Memory) AddFeature(fn *genome.FeatureNode) error {
	if fn == nil {
		return genomics.NewInvalidArgumentError("adding feature", errors.New("nil feature"))
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextID++
	if err := m.entry(fn.SeqID()).add(treeFeature{m.nextID, fn}); err != nil {
		return genomics.NewInvalidArgumentError("adding feature", err)
	}
	return nil
}

// AddSource implements FeatureIndex.  Failures are reported as ParseError;
// trees added before the failure stay in the index.
func (m *Memory) AddSource(s genome.Stream) error {
	v := NewVisitor(m)
	for {
		n, err := s.Next()
		if err != nil {
			return asParseError(err)
		}
		if n == nil {
			return nil
		}
		if err := n.Accept(v); err != nil {
			return asParseError(err)
		}
	}
}

func asParseError(err error) error {
	if genomics.IsKind(err, genomics.ParseError) {
		return err
	}
	return genomics.NewParseError("adding source", err)
}

// AddGFF3File implements FeatureIndex.  A file that cannot be opened is
// reported as an IOError.
func (m *Memory) AddGFF3File(ctx context.Context, path string) error {
	return m.addGFF3File(ctx, source.DefaultOpener, path)
}

func (m *Memory) addGFF3File(ctx context.Context, opener *source.Opener, path string) error {
	s, err := gff3.OpenWith(ctx, opener, path)
	if err != nil {
		return err
	}
	defer s.Close()
	return m.AddSource(s)
}

// Load returns an index of the GFF3 files at paths, opened with opener.
// Empty paths are skipped.
func Load(ctx context.Context, opener *source.Opener, paths ...string) (*Memory, error) {
	m := NewMemory()
	for _, path := range paths {
		if path == "" {
			continue
		}
		if err := m.addGFF3File(ctx, opener, path); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// SeqIDs implements FeatureIndex.
func (m *Memory) SeqIDs() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string(nil), m.seqIDs...)
}

// FirstSeqID implements FeatureIndex.  It fails with NotFound if the index is
// empty.
func (m *Memory) FirstSeqID() (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if len(m.seqIDs) == 0 {
		return "", genomics.NewNotFoundError("", errors.New("index is empty"))
	}
	return m.seqIDs[0], nil
}

// HasSeqID implements FeatureIndex.
func (m *Memory) HasSeqID(seqid string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.entries[seqid]
	return ok
}

// RangeForSeqID implements FeatureIndex.
func (m *Memory) RangeForSeqID(seqid string) (genomics.Range, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, err := m.lookup(seqid)
	if err != nil {
		return genomics.Range{}, err
	}
	if len(e.features) == 0 {
		return e.region.Range(), nil
	}
	return e.span, nil
}

// FeaturesForSeqID implements FeatureIndex.  A sequence region that was only
// declared yields an empty slice.
func (m *Memory) FeaturesForSeqID(seqid string) ([]*genome.FeatureNode, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, err := m.lookup(seqid)
	if err != nil {
		return nil, err
	}
	return append([]*genome.FeatureNode{}, e.features...), nil
}

// FeaturesForRange implements FeatureIndex.
func (m *Memory) FeaturesForRange(seqid string, r genomics.Range) ([]*genome.FeatureNode, error) {
	if !r.Valid() {
		return nil, genomics.NewInvalidArgumentError("querying features", fmt.Errorf("invalid range %s", r))
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, err := m.lookup(seqid)
	if err != nil {
		return nil, err
	}

	matches := e.tree.Get(query(r))
	sort.SliceStable(matches, func(i, j int) bool {
		a, b := matches[i].(treeFeature), matches[j].(treeFeature)
		if sa, sb := a.fn.Range().Start, b.fn.Range().Start; sa != sb {
			return sa < sb
		}
		return a.id < b.id
	})
	features := make([]*genome.FeatureNode, 0, len(matches))
	for _, match := range matches {
		features = append(features, match.(treeFeature).fn)
	}
	return features, nil
}

func (e *entry) add(f treeFeature) error {
	if err := e.tree.Insert(f, false); err != nil {
		return err
	}
	if len(e.features) == 0 {
		e.span = f.fn.Range()
	} else {
		e.span = e.span.Join(f.fn.Range())
	}
	e.features = append(e.features, f.fn)
	return nil
}

// treeFeature is a root feature stored in an interval tree.  Ranges are
// closed, so intervals sharing an end point overlap.
type treeFeature struct {
	id uintptr
	fn *genome.FeatureNode
}

func (f treeFeature) Overlap(b interval.IntRange) bool {
	return query(f.fn.Range()).Overlap(b)
}

func (f treeFeature) ID() uintptr { return f.id }

func (f treeFeature) Range() interval.IntRange {
	r := f.fn.Range()
	return interval.IntRange{Start: clamp(r.Start), End: clamp(r.End)}
}

type query genomics.Range

func (q query) Overlap(b interval.IntRange) bool {
	return clamp(q.Start) <= b.End && b.Start <= clamp(q.End)
}

// clamp converts a position to the int coordinates of the interval tree.
func clamp(pos uint64) int {
	if pos > math.MaxInt {
		return math.MaxInt
	}
	return int(pos)
}
