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
	"fmt"
	"strings"

	"github.com/googlegenomics/featureindex/genomics"
)

const (
	// IDAttribute is the attribute holding a feature's identifier.
	IDAttribute = "ID"
	// ParentAttribute is the attribute listing the identifiers of a feature's
	// parents.
	ParentAttribute = "Parent"
)

// Attribute is a feature attribute.  Most attributes have a single value;
// some, such as Parent or Dbxref, list several.
type Attribute struct {
	Key    string
	Values []string
}

// Value returns the values of a joined with commas.
func (a Attribute) Value() string {
	return strings.Join(a.Values, ",")
}

// FeatureNode is an annotated biological feature.  Feature nodes form trees:
// children are kept in the order they were added and always share the
// parent's sequence region.
type FeatureNode struct {
	location

	featureType  string
	source       string
	strand       genomics.Strand
	phase        genomics.Phase
	score        float64
	scoreDefined bool

	attributes []Attribute
	positions  map[string]int

	children []*FeatureNode
}

// NewFeatureNode returns a feature of the given type covering [start, end] on
// seqid.  The source is "." and the phase is undefined.
func NewFeatureNode(seqid, featureType string, start, end uint64, strand genomics.Strand) (*FeatureNode, error) {
	switch {
	case seqid == "":
		return nil, genomics.NewInvalidArgumentError("creating feature node", errors.New("empty seqid"))
	case featureType == "":
		return nil, genomics.NewInvalidArgumentError("creating feature node", errors.New("empty type"))
	case start > end:
		return nil, genomics.NewInvalidArgumentError("creating feature node", fmt.Errorf("%s: start > end", genomics.Range{Start: start, End: end}))
	case !strand.Valid():
		return nil, genomics.NewInvalidArgumentError("creating feature node", fmt.Errorf("invalid strand %v", strand))
	}
	return &FeatureNode{
		location:    location{seqID: seqid, rng: genomics.Range{Start: start, End: end}},
		featureType: featureType,
		source:      ".",
		strand:      strand,
		phase:       genomics.PhaseUndefined,
	}, nil
}

// Accept calls v.VisitFeature.
func (fn *FeatureNode) Accept(v Visitor) error {
	return wrapVisitError("feature", v.VisitFeature(fn))
}

func (fn *FeatureNode) Type() string { return fn.featureType }

// HasType reports whether fn is of the given type.
func (fn *FeatureNode) HasType(featureType string) bool {
	return fn.featureType == featureType
}

func (fn *FeatureNode) SetType(featureType string) error {
	if featureType == "" {
		return genomics.NewInvalidArgumentError("setting type", errors.New("empty type"))
	}
	fn.featureType = featureType
	return nil
}

func (fn *FeatureNode) Source() string { return fn.source }

func (fn *FeatureNode) SetSource(source string) error {
	if source == "" {
		return genomics.NewInvalidArgumentError("setting source", errors.New("empty source"))
	}
	fn.source = source
	return nil
}

func (fn *FeatureNode) Strand() genomics.Strand { return fn.strand }

// SetStrand fails with InvalidArgument, leaving fn unchanged, if strand is not
// one of the defined strands.
func (fn *FeatureNode) SetStrand(strand genomics.Strand) error {
	if !strand.Valid() {
		return genomics.NewInvalidArgumentError("setting strand", fmt.Errorf("invalid strand %v", strand))
	}
	fn.strand = strand
	return nil
}

func (fn *FeatureNode) Phase() genomics.Phase { return fn.phase }

// SetPhase fails with InvalidArgument, leaving fn unchanged, if phase is not
// one of the defined phases.
func (fn *FeatureNode) SetPhase(phase genomics.Phase) error {
	if !phase.Valid() {
		return genomics.NewInvalidArgumentError("setting phase", fmt.Errorf("invalid phase %v", phase))
	}
	fn.phase = phase
	return nil
}

// Score returns the score of fn and whether it is defined.  An unset score is
// distinct from a score of zero.
func (fn *FeatureNode) Score() (float64, bool) {
	return fn.score, fn.scoreDefined
}

func (fn *FeatureNode) SetScore(score float64) {
	fn.score, fn.scoreDefined = score, true
}

func (fn *FeatureNode) UnsetScore() {
	fn.score, fn.scoreDefined = 0, false
}

// Attribute returns the value stored under key.  Multiple values are joined
// with commas.
func (fn *FeatureNode) Attribute(key string) (string, bool) {
	if i, ok := fn.positions[key]; ok {
		return fn.attributes[i].Value(), true
	}
	return "", false
}

// AttributeValues returns a copy of the values stored under key.
func (fn *FeatureNode) AttributeValues(key string) ([]string, bool) {
	if i, ok := fn.positions[key]; ok {
		return append([]string(nil), fn.attributes[i].Values...), true
	}
	return nil, false
}

// ID returns the value of the ID attribute, or "".
func (fn *FeatureNode) ID() string {
	id, _ := fn.Attribute(IDAttribute)
	return id
}

// AddAttribute stores the single value under key.  A repeated key replaces
// the previous value but keeps its original position.  Empty keys or values
// are rejected with InvalidArgument.
func (fn *FeatureNode) AddAttribute(key, value string) error {
	return fn.AddAttributeValues(key, value)
}

// AddAttributeValues is like AddAttribute but stores a list of values.  The
// values are kept apart, so a value may itself contain a comma.
func (fn *FeatureNode) AddAttributeValues(key string, values ...string) error {
	if key == "" || len(values) == 0 {
		return genomics.NewInvalidArgumentError("adding attribute", errors.New("attribute keys or values must not be empty"))
	}
	for _, value := range values {
		if value == "" {
			return genomics.NewInvalidArgumentError("adding attribute", errors.New("attribute keys or values must not be empty"))
		}
	}
	values = append([]string(nil), values...)
	if i, ok := fn.positions[key]; ok {
		fn.attributes[i].Values = values
		return nil
	}
	if fn.positions == nil {
		fn.positions = make(map[string]int)
	}
	fn.positions[key] = len(fn.attributes)
	fn.attributes = append(fn.attributes, Attribute{key, values})
	return nil
}

// RemoveAttribute deletes key and reports whether it was present.
func (fn *FeatureNode) RemoveAttribute(key string) bool {
	i, ok := fn.positions[key]
	if !ok {
		return false
	}
	fn.attributes = append(fn.attributes[:i], fn.attributes[i+1:]...)
	delete(fn.positions, key)
	for j := i; j < len(fn.attributes); j++ {
		fn.positions[fn.attributes[j].Key] = j
	}
	return true
}

// Attributes returns a copy of the attributes of fn in insertion order.
func (fn *FeatureNode) Attributes() []Attribute {
	attributes := make([]Attribute, len(fn.attributes))
	for i, a := range fn.attributes {
		attributes[i] = Attribute{a.Key, append([]string(nil), a.Values...)}
	}
	return attributes
}

// AddChild appends child as the last child of fn.  It fails with
// RegionMismatch if the two nodes are on different sequence regions and with
// InvalidArgument if child is nil or the edge would create a cycle; neither
// node is modified on failure.
func (fn *FeatureNode) AddChild(child *FeatureNode) error {
	if child == nil {
		return genomics.NewInvalidArgumentError("adding child", errors.New("nil child"))
	}
	if fn.seqID != child.seqID {
		return genomics.NewRegionMismatchError("adding child", fmt.Errorf("cannot add node with sequence region %q to node with sequence region %q", child.seqID, fn.seqID))
	}
	for it := NewDepthFirstIterator(child); ; {
		n := it.Next()
		if n == nil {
			break
		}
		if n == fn {
			return genomics.NewInvalidArgumentError("adding child", errors.New("feature cannot be its own descendant"))
		}
	}
	fn.children = append(fn.children, child)
	return nil
}

// Children returns a copy of the direct children of fn in insertion order.
func (fn *FeatureNode) Children() []*FeatureNode {
	return append([]*FeatureNode(nil), fn.children...)
}

func (fn *FeatureNode) HasChildren() bool {
	return len(fn.children) > 0
}
