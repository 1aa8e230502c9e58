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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/googlegenomics/featureindex/genomics"
)

func newFeature(t *testing.T, seqid, featureType string, start, end uint64) *FeatureNode {
	fn, err := NewFeatureNode(seqid, featureType, start, end, genomics.Forward)
	require.NoError(t, err)
	return fn
}

func ids(nodes []*FeatureNode) []string {
	var out []string
	for _, fn := range nodes {
		out = append(out, fn.ID())
	}
	return out
}

func TestNewFeatureNode_InvalidInputs(t *testing.T) {
	testCases := []struct {
		name         string
		seqid, ftype string
		start, end   uint64
		strand       genomics.Strand
	}{
		{"empty seqid", "", "gene", 1, 2, genomics.Forward},
		{"empty type", "chr1", "", 1, 2, genomics.Forward},
		{"start after end", "chr1", "gene", 3, 2, genomics.Forward},
		{"invalid strand", "chr1", "gene", 1, 2, genomics.Strand(42)},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewFeatureNode(tc.seqid, tc.ftype, tc.start, tc.end, tc.strand)
			assert.Equal(t, genomics.InvalidArgument, genomics.KindOf(err))
		})
	}
}

func TestFeatureNode_Accessors(t *testing.T) {
	fn := newFeature(t, "chr1", "gene", 100, 200)
	assert.Equal(t, genomics.Range{Start: 100, End: 200}, fn.Range())
	assert.Equal(t, "chr1", fn.SeqID())
	assert.Equal(t, ".", fn.Source())
	assert.Equal(t, genomics.PhaseUndefined, fn.Phase())
	assert.Equal(t, "", fn.Filename())
	assert.True(t, fn.HasType("gene"))

	require.NoError(t, fn.SetSource("havana"))
	require.NoError(t, fn.SetType("pseudogene"))
	assert.Equal(t, "havana", fn.Source())
	assert.False(t, fn.HasType("gene"))

	require.NoError(t, fn.SetStrand(genomics.Reverse))
	err := fn.SetStrand(genomics.Strand(7))
	assert.Equal(t, genomics.InvalidArgument, genomics.KindOf(err))
	assert.Equal(t, genomics.Reverse, fn.Strand())

	require.NoError(t, fn.SetPhase(genomics.PhaseTwo))
	err = fn.SetPhase(genomics.Phase(9))
	assert.Equal(t, genomics.InvalidArgument, genomics.KindOf(err))
	assert.Equal(t, genomics.PhaseTwo, fn.Phase())

	fn.SetOrigin("a.gff3", 12)
	assert.Equal(t, "a.gff3", fn.Filename())
	assert.Equal(t, 12, fn.LineNumber())
}

func TestFeatureNode_Score(t *testing.T) {
	fn := newFeature(t, "chr1", "gene", 1, 10)
	_, ok := fn.Score()
	assert.False(t, ok, "new feature has a score")

	fn.SetScore(7.5)
	score, ok := fn.Score()
	assert.True(t, ok)
	assert.Equal(t, 7.5, score)

	fn.UnsetScore()
	_, ok = fn.Score()
	assert.False(t, ok, "score still defined after UnsetScore")

	fn.SetScore(0)
	score, ok = fn.Score()
	assert.True(t, ok, "zero score must be distinct from unset")
	assert.Equal(t, 0.0, score)
}

func TestFeatureNode_Attributes(t *testing.T) {
	fn := newFeature(t, "chr1", "gene", 1, 10)
	require.NoError(t, fn.AddAttribute("k", "v"))

	for _, tc := range []struct{ key, value string }{{"", "x"}, {"k", ""}} {
		err := fn.AddAttribute(tc.key, tc.value)
		assert.Equal(t, genomics.InvalidArgument, genomics.KindOf(err))
	}
	value, ok := fn.Attribute("k")
	assert.True(t, ok)
	assert.Equal(t, "v", value)

	require.NoError(t, fn.AddAttribute("ID", "g1"))
	require.NoError(t, fn.AddAttribute("Name", "abc"))
	require.NoError(t, fn.AddAttribute("k", "w"))
	assert.Equal(t, []Attribute{{"k", []string{"w"}}, {"ID", []string{"g1"}}, {"Name", []string{"abc"}}}, fn.Attributes())
	assert.Equal(t, "g1", fn.ID())

	assert.True(t, fn.RemoveAttribute("k"))
	assert.False(t, fn.RemoveAttribute("k"))
	assert.Equal(t, []Attribute{{"ID", []string{"g1"}}, {"Name", []string{"abc"}}}, fn.Attributes())
	value, _ = fn.Attribute("Name")
	assert.Equal(t, "abc", value)
	_, ok = fn.Attribute("missing")
	assert.False(t, ok)
}

func TestFeatureNode_AttributeValues(t *testing.T) {
	fn := newFeature(t, "chr1", "gene", 1, 10)
	require.NoError(t, fn.AddAttributeValues("Dbxref", "a:1", "b:2"))
	require.NoError(t, fn.AddAttribute("Note", "x,y"))

	values, ok := fn.AttributeValues("Dbxref")
	assert.True(t, ok)
	assert.Equal(t, []string{"a:1", "b:2"}, values)
	value, _ := fn.Attribute("Dbxref")
	assert.Equal(t, "a:1,b:2", value)
	values, _ = fn.AttributeValues("Note")
	assert.Equal(t, []string{"x,y"}, values)

	for _, values := range [][]string{nil, {"a", ""}} {
		err := fn.AddAttributeValues("Dbxref", values...)
		assert.Equal(t, genomics.InvalidArgument, genomics.KindOf(err))
	}
	values, _ = fn.AttributeValues("Dbxref")
	assert.Equal(t, []string{"a:1", "b:2"}, values)

	fn.Attributes()[0].Values[0] = "changed"
	values, _ = fn.AttributeValues("Dbxref")
	assert.Equal(t, "a:1", values[0])
}

func TestFeatureNode_AddChild(t *testing.T) {
	gene := newFeature(t, "chr1", "gene", 100, 200)
	mrna := newFeature(t, "chr1", "mRNA", 100, 200)
	other := newFeature(t, "chr2", "mRNA", 100, 200)

	require.NoError(t, gene.AddChild(mrna))
	assert.Equal(t, []*FeatureNode{mrna}, gene.Children())

	err := gene.AddChild(other)
	assert.Equal(t, genomics.RegionMismatch, genomics.KindOf(err))
	assert.Len(t, gene.Children(), 1)
	assert.False(t, other.HasChildren())

	err = mrna.AddChild(gene)
	assert.Equal(t, genomics.InvalidArgument, genomics.KindOf(err), "cycle accepted")
	err = gene.AddChild(gene)
	assert.Equal(t, genomics.InvalidArgument, genomics.KindOf(err), "self edge accepted")
	err = gene.AddChild(nil)
	assert.Equal(t, genomics.InvalidArgument, genomics.KindOf(err))
	assert.False(t, mrna.HasChildren())
}

func TestIterators(t *testing.T) {
	a := newFeature(t, "chr1", "gene", 1, 100)
	b := newFeature(t, "chr1", "mRNA", 1, 50)
	c := newFeature(t, "chr1", "mRNA", 51, 100)
	d := newFeature(t, "chr1", "exon", 1, 20)
	for fn, id := range map[*FeatureNode]string{a: "A", b: "B", c: "C", d: "D"} {
		require.NoError(t, fn.AddAttribute("ID", id))
	}
	require.NoError(t, a.AddChild(b))
	require.NoError(t, a.AddChild(c))
	require.NoError(t, b.AddChild(d))

	assert.Equal(t, []string{"A", "B", "D", "C"}, ids(NewDepthFirstIterator(a).Collect()))
	assert.Equal(t, []string{"B", "C"}, ids(NewDirectIterator(a).Collect()))

	it := NewDirectIterator(d)
	assert.Nil(t, it.Next())
	assert.Nil(t, it.Next(), "exhausted iterator must keep returning nil")

	it = NewDepthFirstIterator(b)
	assert.Equal(t, b, it.Next())
	assert.Equal(t, d, it.Next())
	assert.Nil(t, it.Next())
	assert.Nil(t, it.Next())
}
