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
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/googlegenomics/featureindex/genome"
	"github.com/googlegenomics/featureindex/genomics"
)

// DefaultFASTAWidth is the default line width of written sequences.
const DefaultFASTAWidth = 60

// Writer is a genome.Visitor that writes the nodes it visits as GFF3.
//
// Feature trees are written depth first.  Features keep their ID attribute;
// features with children but no ID are given one made of their type and a
// counter.  Parent attributes are regenerated from the tree structure.
// Flush must be called once all nodes have been visited.
type Writer struct {
	// FASTAWidth is the maximum length of a sequence line; zero writes each
	// sequence on a single line.
	FASTAWidth int

	w         *bufio.Writer
	started   bool
	fasta     bool
	usedIDs   map[string]bool
	idCounter map[string]int
}

var _ genome.Visitor = (*Writer)(nil)

var errAfterFASTA = errors.New("annotations cannot follow the FASTA section")

// NewWriter returns a Writer writing to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{
		FASTAWidth: DefaultFASTAWidth,
		w:          bufio.NewWriter(w),
		usedIDs:    make(map[string]bool),
		idCounter:  make(map[string]int),
	}
}

// Flush writes any buffered data to the underlying writer.
func (w *Writer) Flush() error {
	if err := w.w.Flush(); err != nil {
		return genomics.NewIOError("writing GFF3", err)
	}
	return nil
}

func (w *Writer) printf(format string, args ...interface{}) error {
	if !w.started {
		w.started = true
		if _, err := fmt.Fprintf(w.w, "%s %s\n", versionPragma, Version); err != nil {
			return genomics.NewIOError("writing GFF3", err)
		}
	}
	if _, err := fmt.Fprintf(w.w, format, args...); err != nil {
		return genomics.NewIOError("writing GFF3", err)
	}
	return nil
}

// VisitComment writes cn as a comment line.
func (w *Writer) VisitComment(cn *genome.CommentNode) error {
	return w.printf("#%s\n", strings.Replace(cn.Comment(), "\n", " ", -1))
}

// VisitRegion writes a sequence-region pragma.
func (w *Writer) VisitRegion(rn *genome.RegionNode) error {
	if w.fasta {
		return genomics.NewInvalidArgumentError("writing region", errAfterFASTA)
	}
	r := rn.Range()
	return w.printf("%s %s %d %d\n", regionPragma, escapeSeqID(rn.SeqID(), " "), r.Start, r.End)
}

// VisitSequence writes a FASTA entry, starting the FASTA section if needed.
func (w *Writer) VisitSequence(sn *genome.SequenceNode) error {
	if !w.fasta {
		w.fasta = true
		if err := w.printf("%s\n", fastaPragma); err != nil {
			return err
		}
	}
	if err := w.printf(">%s\n", sn.Description()); err != nil {
		return err
	}
	seq := sn.Sequence()
	width := w.FASTAWidth
	if width <= 0 {
		width = len(seq)
	}
	for len(seq) > 0 {
		n := width
		if n > len(seq) {
			n = len(seq)
		}
		if err := w.printf("%s\n", seq[:n]); err != nil {
			return err
		}
		seq = seq[n:]
	}
	return nil
}

// VisitFeature writes the feature tree rooted at fn.  Features reachable
// through several parents are written once.
func (w *Writer) VisitFeature(fn *genome.FeatureNode) error {
	if w.fasta {
		return genomics.NewInvalidArgumentError("writing feature", errAfterFASTA)
	}

	var order []*genome.FeatureNode
	seen := make(map[*genome.FeatureNode]bool)
	for it := genome.NewDepthFirstIterator(fn); ; {
		n := it.Next()
		if n == nil {
			break
		}
		if !seen[n] {
			seen[n] = true
			order = append(order, n)
		}
	}

	ids := w.assignIDs(order)
	parents := make(map[*genome.FeatureNode][]string)
	for _, n := range order {
		for _, child := range n.Children() {
			parents[child] = append(parents[child], ids[n])
		}
	}

	for _, n := range order {
		if err := w.printf("%s\n", featureLine(n, ids[n], parents[n])); err != nil {
			return err
		}
	}
	if fn.HasChildren() {
		return w.printf("%s\n", terminator)
	}
	return nil
}

func (w *Writer) assignIDs(order []*genome.FeatureNode) map[*genome.FeatureNode]string {
	ids := make(map[*genome.FeatureNode]string)
	for _, n := range order {
		if id := n.ID(); id != "" {
			ids[n] = id
			w.usedIDs[id] = true
		}
	}
	for _, n := range order {
		if _, ok := ids[n]; ok || !n.HasChildren() {
			continue
		}
		for {
			w.idCounter[n.Type()]++
			id := n.Type() + strconv.Itoa(w.idCounter[n.Type()])
			if !w.usedIDs[id] {
				w.usedIDs[id] = true
				ids[n] = id
				break
			}
		}
	}
	return ids
}

func featureLine(fn *genome.FeatureNode, id string, parents []string) string {
	r := fn.Range()
	score := undefined
	if value, ok := fn.Score(); ok {
		score = strconv.FormatFloat(value, 'g', -1, 64)
	}

	var attributes []string
	if id != "" {
		attributes = append(attributes, attribute(genome.IDAttribute, id))
	}
	if len(parents) > 0 {
		attributes = append(attributes, attribute(genome.ParentAttribute, parents...))
	}
	for _, a := range fn.Attributes() {
		if a.Key == genome.IDAttribute || a.Key == genome.ParentAttribute {
			continue
		}
		attributes = append(attributes, attribute(a.Key, a.Values...))
	}
	column := undefined
	if len(attributes) > 0 {
		column = strings.Join(attributes, ";")
	}

	return strings.Join([]string{
		escapeSeqID(fn.SeqID(), ""),
		escape(fn.Source(), columnSpecial),
		escape(fn.Type(), columnSpecial),
		strconv.FormatUint(r.Start, 10),
		strconv.FormatUint(r.End, 10),
		score,
		fn.Strand().String(),
		fn.Phase().String(),
		column,
	}, "\t")
}

// attribute formats a key=value pair.  Values are separated by commas;
// commas inside a value are escaped.
func attribute(key string, values ...string) string {
	escaped := make([]string, len(values))
	for i, v := range values {
		escaped[i] = escape(v, attributeSpecial)
	}
	return escape(key, attributeSpecial) + "=" + strings.Join(escaped, ",")
}

// escapeSeqID escapes a seqid for the first column of a line.  A leading '>'
// or '#' would start a FASTA entry or a comment when read back.
func escapeSeqID(seqid, special string) string {
	escaped := escape(seqid, columnSpecial+special)
	if strings.HasPrefix(escaped, ">") || strings.HasPrefix(escaped, "#") {
		escaped = fmt.Sprintf("%%%02X", escaped[0]) + escaped[1:]
	}
	return escaped
}
