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

// FeatureIterator lazily walks feature nodes.  Next returns nil once the walk
// is exhausted, and keeps returning nil afterwards.  Iterators are one-shot.
type FeatureIterator struct {
	stack  []*FeatureNode
	direct bool
}

// NewDepthFirstIterator returns an iterator over the tree rooted at fn in
// pre-order: a parent before its children, children in insertion order.
func NewDepthFirstIterator(fn *FeatureNode) *FeatureIterator {
	it := &FeatureIterator{}
	if fn != nil {
		it.stack = append(it.stack, fn)
	}
	return it
}

// NewDirectIterator returns an iterator over the direct children of fn.
func NewDirectIterator(fn *FeatureNode) *FeatureIterator {
	it := &FeatureIterator{direct: true}
	if fn != nil {
		it.push(fn.children)
	}
	return it
}

// push adds children in reverse so that they are popped in order.
func (it *FeatureIterator) push(children []*FeatureNode) {
	for i := len(children) - 1; i >= 0; i-- {
		it.stack = append(it.stack, children[i])
	}
}

// Next returns the next feature or nil.
func (it *FeatureIterator) Next() *FeatureNode {
	if len(it.stack) == 0 {
		return nil
	}
	fn := it.stack[len(it.stack)-1]
	it.stack = it.stack[:len(it.stack)-1]
	if !it.direct {
		it.push(fn.children)
	}
	return fn
}

// Collect drains the iterator into a slice.
func (it *FeatureIterator) Collect() []*FeatureNode {
	var nodes []*FeatureNode
	for fn := it.Next(); fn != nil; fn = it.Next() {
		nodes = append(nodes, fn)
	}
	return nodes
}
