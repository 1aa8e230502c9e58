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

package server

import "github.com/googlegenomics/featureindex/genome"

// Feature is the JSON representation of a feature tree.
type Feature struct {
	SeqID      string      `json:"seqid"`
	Source     string      `json:"source"`
	Type       string      `json:"type"`
	Start      uint64      `json:"start"`
	End        uint64      `json:"end"`
	Score      *float64    `json:"score,omitempty"`
	Strand     string      `json:"strand"`
	Phase      string      `json:"phase"`
	Attributes []Attribute `json:"attributes,omitempty"`
	Children   []*Feature  `json:"children,omitempty"`
}

// Attribute is a single key=value feature attribute.
type Attribute struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// SeqIDsResponse lists the indexed sequence regions.
type SeqIDsResponse struct {
	SeqIDs []string `json:"seqids"`
}

// RangeResponse describes the extent of a sequence region.
type RangeResponse struct {
	SeqID string `json:"seqid"`
	Start uint64 `json:"start"`
	End   uint64 `json:"end"`
}

// FeaturesResponse holds the root features returned by a query.
type FeaturesResponse struct {
	SeqID    string     `json:"seqid"`
	Features []*Feature `json:"features"`
}

func newFeature(fn *genome.FeatureNode) *Feature {
	r := fn.Range()
	f := &Feature{
		SeqID:  fn.SeqID(),
		Source: fn.Source(),
		Type:   fn.Type(),
		Start:  r.Start,
		End:    r.End,
		Strand: fn.Strand().String(),
		Phase:  fn.Phase().String(),
	}
	if score, ok := fn.Score(); ok {
		f.Score = &score
	}
	for _, a := range fn.Attributes() {
		f.Attributes = append(f.Attributes, Attribute{a.Key, a.Value()})
	}
	for _, child := range fn.Children() {
		f.Children = append(f.Children, newFeature(child))
	}
	return f
}
