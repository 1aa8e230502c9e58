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

package index

import "github.com/googlegenomics/featureindex/genome"

type indexVisitor struct {
	genome.NopVisitor
	idx FeatureIndex
}

// NewVisitor returns a visitor adding the feature trees and sequence regions
// it visits to idx.  Sequences and comments are ignored.
func NewVisitor(idx FeatureIndex) genome.Visitor {
	return &indexVisitor{idx: idx}
}

func (v *indexVisitor) VisitFeature(fn *genome.FeatureNode) error {
	return v.idx.AddFeature(fn)
}

func (v *indexVisitor) VisitRegion(rn *genome.RegionNode) error {
	return v.idx.AddRegion(rn)
}
