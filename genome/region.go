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

	"github.com/googlegenomics/featureindex/genomics"
)

// RegionNode declares the extent of a sequence region, as given by a
// ##sequence-region pragma.
type RegionNode struct {
	location
}

// NewRegionNode returns a RegionNode for seqid covering r.
func NewRegionNode(seqid string, r genomics.Range) (*RegionNode, error) {
	if seqid == "" {
		return nil, genomics.NewInvalidArgumentError("creating region node", errors.New("empty seqid"))
	}
	if !r.Valid() {
		return nil, genomics.NewInvalidArgumentError("creating region node", fmt.Errorf("%s: start > end", r))
	}
	return &RegionNode{location{seqID: seqid, rng: r}}, nil
}

// Accept calls v.VisitRegion.
func (rn *RegionNode) Accept(v Visitor) error {
	return wrapVisitError("region", v.VisitRegion(rn))
}
