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

package gff3

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/googlegenomics/featureindex/genome"
	"github.com/googlegenomics/featureindex/genomics"
	"github.com/googlegenomics/featureindex/source"
)

const (
	initialLineBuffer = 64 * 1024
	maximumLineSize   = 64 * 1024 * 1024
)

// InStream is a genome.Stream producing the nodes described by GFF3 input.
//
// Nodes are buffered until a point where every open feature tree is known to
// be complete: a "###" line, the start of the FASTA section or the end of the
// input.  Parent references may therefore point forward within a section.
// Nodes are returned in input order; a feature tree is returned at the
// position of its root.
type InStream struct {
	filename string
	scanner  *bufio.Scanner
	closer   io.Closer
	line     int

	started bool
	fasta   bool
	eof     bool
	err     error

	section  []genome.Node
	features map[string][]*genome.FeatureNode
	parents  map[*genome.FeatureNode][]string
	sequence *pendingSequence
	queue    []genome.Node

	regions   map[string]genomics.Range
	usedTypes map[string]bool
}

type pendingSequence struct {
	description string
	line        int
	data        []byte
}

// NewInStream returns a stream parsing r.  The filename is recorded on every
// node and used in error messages.  The caller remains responsible for
// closing r.
func NewInStream(r io.Reader, filename string) *InStream {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, initialLineBuffer), maximumLineSize)
	return &InStream{
		filename:  filename,
		scanner:   scanner,
		features:  make(map[string][]*genome.FeatureNode),
		parents:   make(map[*genome.FeatureNode][]string),
		regions:   make(map[string]genomics.Range),
		usedTypes: make(map[string]bool),
	}
}

// Open opens path with source.Open and returns a stream parsing it.  Sources
// that cannot be opened or read fail here with an IOError.  The returned
// stream must be closed.
func Open(ctx context.Context, path string) (*InStream, error) {
	return OpenWith(ctx, source.DefaultOpener, path)
}

// OpenWith is like Open but opens path with opener.
func OpenWith(ctx context.Context, opener *source.Opener, path string) (*InStream, error) {
	rc, err := opener.Open(ctx, path)
	if err != nil {
		return nil, err
	}
	filename := path
	if path == source.Stdin {
		filename = "stdin"
	}
	s := NewInStream(rc, filename)
	s.closer = rc
	return s, nil
}

// Close releases the source opened by Open.
func (s *InStream) Close() error {
	if s.closer == nil {
		return nil
	}
	err := s.closer.Close()
	s.closer = nil
	return err
}

// UsedTypes returns the sorted feature types parsed so far.
func (s *InStream) UsedTypes() []string {
	types := make([]string, 0, len(s.usedTypes))
	for t := range s.usedTypes {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// Next implements genome.Stream.  Errors are sticky: once Next has failed it
// returns the same error on every further call.
func (s *InStream) Next() (genome.Node, error) {
	for len(s.queue) == 0 {
		if s.err != nil {
			return nil, s.err
		}
		if s.eof {
			return nil, nil
		}
		s.err = s.advance()
	}
	n := s.queue[0]
	s.queue[0] = nil
	s.queue = s.queue[1:]
	return n, nil
}

func (s *InStream) advance() error {
	if !s.scanner.Scan() {
		if err := s.scanner.Err(); err != nil {
			if err == bufio.ErrTooLong {
				return s.errorAt(s.line+1, fmt.Errorf("line longer than %d bytes", maximumLineSize))
			}
			return genomics.NewIOError("reading "+s.filename, err)
		}
		s.eof = true
		if err := s.flush(); err != nil {
			return err
		}
		return s.finishSequence()
	}
	s.line++
	return s.processLine(strings.TrimRight(s.scanner.Text(), "\r"))
}

func (s *InStream) errorAt(line int, err error) error {
	if s.filename == "" {
		return genomics.NewParseError(fmt.Sprintf("line %d", line), err)
	}
	return genomics.NewParseError(fmt.Sprintf("%s:%d", s.filename, line), err)
}

func (s *InStream) errorf(format string, args ...interface{}) error {
	return s.errorAt(s.line, fmt.Errorf(format, args...))
}

func (s *InStream) processLine(line string) error {
	if s.fasta {
		return s.processSequenceLine(line)
	}
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return nil
	}
	if !s.started {
		fields := strings.Fields(line)
		if len(fields) < 2 || fields[0] != versionPragma || !isVersion3(fields[1]) {
			return s.errorf("input must start with %q", versionPragma+" "+Version)
		}
		s.started = true
		return nil
	}

	switch {
	case trimmed == terminator:
		return s.flush()
	case strings.HasPrefix(line, fastaPragma):
		return s.startFASTA()
	case strings.HasPrefix(line, ">"):
		if err := s.startFASTA(); err != nil {
			return err
		}
		return s.processSequenceLine(line)
	case strings.HasPrefix(line, "##"):
		return s.parsePragma(line)
	case strings.HasPrefix(line, "#"):
		cn := genome.NewCommentNode(line[1:])
		cn.SetOrigin(s.filename, s.line)
		s.section = append(s.section, cn)
		return nil
	}
	return s.parseFeature(line)
}

func (s *InStream) parsePragma(line string) error {
	fields := strings.Fields(line)
	switch fields[0] {
	case versionPragma:
		if len(fields) < 2 || !isVersion3(fields[1]) {
			return s.errorf("unsupported version pragma %q", line)
		}
	case regionPragma:
		if len(fields) != 4 {
			return s.errorf("%s pragma must have seqid, start and end", regionPragma)
		}
		start, err := parsePosition(fields[2])
		if err != nil {
			return s.errorAt(s.line, err)
		}
		end, err := parsePosition(fields[3])
		if err != nil {
			return s.errorAt(s.line, err)
		}
		seqid, err := unescape(fields[1])
		if err != nil {
			return s.errorAt(s.line, err)
		}
		if _, ok := s.regions[seqid]; ok {
			return s.errorf("duplicate %s pragma for %q", regionPragma, seqid)
		}
		rn, err := genome.NewRegionNode(seqid, genomics.Range{Start: start, End: end})
		if err != nil {
			return s.errorAt(s.line, err)
		}
		rn.SetOrigin(s.filename, s.line)
		s.regions[seqid] = rn.Range()
		s.section = append(s.section, rn)
	}
	return nil
}

func parsePosition(value string) (uint64, error) {
	pos, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid position %q", value)
	}
	if pos == 0 {
		return 0, errors.New("positions must be greater than zero")
	}
	return pos, nil
}

func (s *InStream) parseFeature(line string) error {
	cols := strings.Split(line, "\t")
	if len(cols) != numColumns {
		return s.errorf("found %d columns, expected %d", len(cols), numColumns)
	}

	seqid, err := unescape(cols[seqidColumn])
	if err != nil {
		return s.errorAt(s.line, err)
	}
	featureType, err := unescape(cols[typeColumn])
	if err != nil {
		return s.errorAt(s.line, err)
	}
	start, err := parsePosition(cols[startColumn])
	if err != nil {
		return s.errorAt(s.line, fmt.Errorf("start: %v", err))
	}
	end, err := parsePosition(cols[endColumn])
	if err != nil {
		return s.errorAt(s.line, fmt.Errorf("end: %v", err))
	}
	strand, err := genomics.ParseStrand(cols[strandColumn])
	if err != nil {
		return s.errorAt(s.line, err)
	}
	fn, err := genome.NewFeatureNode(seqid, featureType, start, end, strand)
	if err != nil {
		return s.errorAt(s.line, err)
	}
	fn.SetOrigin(s.filename, s.line)

	if value := cols[sourceColumn]; value != undefined {
		decoded, err := unescape(value)
		if err == nil {
			err = fn.SetSource(decoded)
		}
		if err != nil {
			return s.errorAt(s.line, err)
		}
	}
	if value := cols[scoreColumn]; value != undefined {
		score, err := strconv.ParseFloat(value, 64)
		if err != nil || math.IsNaN(score) || math.IsInf(score, 0) {
			return s.errorf("invalid score %q", value)
		}
		fn.SetScore(score)
	}
	phase, err := genomics.ParsePhase(cols[phaseColumn])
	if err != nil {
		return s.errorAt(s.line, err)
	}
	if phase == genomics.PhaseUndefined && featureType == codingSequenceType {
		return s.errorf("%s feature has no phase", codingSequenceType)
	}
	if err := fn.SetPhase(phase); err != nil {
		return s.errorAt(s.line, err)
	}

	parents, err := parseAttributes(fn, cols[attributesColumn])
	if err != nil {
		return s.errorAt(s.line, err)
	}

	if r, ok := s.regions[seqid]; ok && !r.Contains(fn.Range()) {
		return s.errorf("feature range %s lies outside sequence region %q %s", fn.Range(), seqid, r)
	}

	if id := fn.ID(); id != "" {
		if previous := s.features[id]; len(previous) > 0 {
			first := previous[0]
			if first.Type() != fn.Type() || first.SeqID() != fn.SeqID() {
				return s.errorf("feature %q continues the feature on line %d with a different type or sequence region", id, first.LineNumber())
			}
		}
		s.features[id] = append(s.features[id], fn)
	}
	if len(parents) > 0 {
		s.parents[fn] = parents
	}
	s.usedTypes[featureType] = true
	s.section = append(s.section, fn)
	return nil
}

// parseAttributes adds the attributes of column to fn and returns the
// distinct IDs listed in its Parent attribute.
func parseAttributes(fn *genome.FeatureNode, column string) ([]string, error) {
	if column == undefined {
		return nil, nil
	}
	var parents []string
	seen := make(map[string]bool)
	for _, pair := range strings.Split(column, ";") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		eq := strings.IndexByte(pair, '=')
		if eq < 0 {
			return nil, fmt.Errorf("attribute %q has no value", pair)
		}
		key, err := unescape(pair[:eq])
		if err != nil {
			return nil, err
		}
		if seen[key] {
			return nil, fmt.Errorf("more than one %s attribute", key)
		}
		seen[key] = true

		var values []string
		for _, value := range strings.Split(pair[eq+1:], ",") {
			decoded, err := unescape(value)
			if err != nil {
				return nil, err
			}
			if decoded == "" {
				return nil, fmt.Errorf("attribute %q has an empty value", key)
			}
			values = append(values, decoded)
		}
		if err := fn.AddAttributeValues(key, values...); err != nil {
			return nil, err
		}
		if key == genome.ParentAttribute {
			listed := make(map[string]bool)
			for _, id := range values {
				if !listed[id] {
					listed[id] = true
					parents = append(parents, id)
				}
			}
		}
	}
	return parents, nil
}

// flush resolves the Parent references of the current section and moves its
// root nodes to the output queue.
func (s *InStream) flush() error {
	for _, n := range s.section {
		child, ok := n.(*genome.FeatureNode)
		if !ok {
			continue
		}
		for _, id := range s.parents[child] {
			candidates := s.features[id]
			if len(candidates) == 0 {
				return s.errorAt(child.LineNumber(), fmt.Errorf("undefined parent ID %q", id))
			}
			if err := candidates[0].AddChild(child); err != nil {
				return s.errorAt(child.LineNumber(), fmt.Errorf("attaching to parent %q: %w", id, err))
			}
		}
	}
	if err := s.checkTrees(); err != nil {
		return err
	}

	for _, n := range s.section {
		if fn, ok := n.(*genome.FeatureNode); ok && len(s.parents[fn]) > 0 {
			continue
		}
		s.queue = append(s.queue, n)
	}
	s.section = nil
	s.features = make(map[string][]*genome.FeatureNode)
	s.parents = make(map[*genome.FeatureNode][]string)
	return nil
}

// checkTrees verifies that all parents of a feature belong to the same tree.
func (s *InStream) checkTrees() error {
	memo := make(map[*genome.FeatureNode]map[*genome.FeatureNode]bool)
	var rootsOf func(fn *genome.FeatureNode) map[*genome.FeatureNode]bool
	rootsOf = func(fn *genome.FeatureNode) map[*genome.FeatureNode]bool {
		if roots, ok := memo[fn]; ok {
			return roots
		}
		roots := make(map[*genome.FeatureNode]bool)
		if len(s.parents[fn]) == 0 {
			roots[fn] = true
		}
		for _, id := range s.parents[fn] {
			for root := range rootsOf(s.features[id][0]) {
				roots[root] = true
			}
		}
		memo[fn] = roots
		return roots
	}

	for _, n := range s.section {
		fn, ok := n.(*genome.FeatureNode)
		if !ok || len(s.parents[fn]) < 2 {
			continue
		}
		if len(rootsOf(fn)) > 1 {
			return s.errorAt(fn.LineNumber(), errors.New("parents of feature belong to different trees"))
		}
	}
	return nil
}

func (s *InStream) startFASTA() error {
	if err := s.flush(); err != nil {
		return err
	}
	s.fasta = true
	return nil
}

func (s *InStream) processSequenceLine(line string) error {
	if strings.HasPrefix(line, ">") {
		if err := s.finishSequence(); err != nil {
			return err
		}
		s.sequence = &pendingSequence{description: strings.TrimSpace(line[1:]), line: s.line}
		return nil
	}
	data := strings.TrimSpace(line)
	if data == "" {
		return nil
	}
	if s.sequence == nil {
		return s.errorf("sequence data without a FASTA header")
	}
	s.sequence.data = append(s.sequence.data, data...)
	return nil
}

func (s *InStream) finishSequence() error {
	if s.sequence == nil {
		return nil
	}
	sn, err := genome.NewSequenceNode(s.sequence.description, s.sequence.data)
	if err != nil {
		return s.errorAt(s.sequence.line, err)
	}
	sn.SetOrigin(s.filename, s.sequence.line)
	s.queue = append(s.queue, sn)
	s.sequence = nil
	return nil
}
