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
	"fmt"

	"github.com/googlegenomics/featureindex/genomics"
)

// Visitor applies an operation to genome nodes without the nodes knowing the
// operation.  Node.Accept selects the method matching the node variant.
//
// Visitors that only care about some variants embed NopVisitor, whose
// methods succeed without doing anything.
type Visitor interface {
	VisitFeature(*FeatureNode) error
	VisitRegion(*RegionNode) error
	VisitSequence(*SequenceNode) error
	VisitComment(*CommentNode) error
}

// NopVisitor implements Visitor with methods that do nothing.
type NopVisitor struct{}

func (NopVisitor) VisitFeature(*FeatureNode) error   { return nil }
func (NopVisitor) VisitRegion(*RegionNode) error     { return nil }
func (NopVisitor) VisitSequence(*SequenceNode) error { return nil }
func (NopVisitor) VisitComment(*CommentNode) error   { return nil }

// VisitorFuncs adapts plain functions to the Visitor interface.  Nil fields
// are treated as no-ops.
type VisitorFuncs struct {
	Feature  func(*FeatureNode) error
	Region   func(*RegionNode) error
	Sequence func(*SequenceNode) error
	Comment  func(*CommentNode) error
}

func (v VisitorFuncs) VisitFeature(fn *FeatureNode) error {
	if v.Feature == nil {
		return nil
	}
	return v.Feature(fn)
}

func (v VisitorFuncs) VisitRegion(rn *RegionNode) error {
	if v.Region == nil {
		return nil
	}
	return v.Region(rn)
}

func (v VisitorFuncs) VisitSequence(sn *SequenceNode) error {
	if v.Sequence == nil {
		return nil
	}
	return v.Sequence(sn)
}

func (v VisitorFuncs) VisitComment(cn *CommentNode) error {
	if v.Comment == nil {
		return nil
	}
	return v.Comment(cn)
}

// wrapVisitError returns structured errors unchanged and annotates any other
// error with the kind of node being visited.
func wrapVisitError(kind string, err error) error {
	if err == nil || genomics.KindOf(err) != 0 {
		return err
	}
	return fmt.Errorf("visiting %s node: %w", kind, err)
}
