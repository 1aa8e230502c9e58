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

// CommentNode holds the text of a "#" comment line, without the leading "#".
type CommentNode struct {
	location
	comment string
}

// NewCommentNode returns a CommentNode with the given text.
func NewCommentNode(comment string) *CommentNode {
	return &CommentNode{comment: comment}
}

// Comment returns the comment text.
func (cn *CommentNode) Comment() string {
	return cn.comment
}

// Accept calls v.VisitComment.
func (cn *CommentNode) Accept(v Visitor) error {
	return wrapVisitError("comment", v.VisitComment(cn))
}
