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

package stream

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/googlegenomics/featureindex/genome"
	"github.com/googlegenomics/featureindex/genomics"
	"github.com/googlegenomics/featureindex/gff3"
	"github.com/googlegenomics/featureindex/index"
)

const testGFF3 = `##gff-version 3
##sequence-region chr1 1 1000
# generated for tests
chr1	.	gene	100	200	.	+	.	ID=gene1
chr1	.	mRNA	100	200	.	+	.	ID=mrna1;Parent=gene1
chr1	.	exon	100	150	.	+	.	Parent=mrna1
chr1	.	exon	160	200	.	+	.	Parent=mrna1
chr2	.	gene	10	20	.	-	.	ID=gene2
##FASTA
>chr1
ACGT
`

func newInStream() *gff3.InStream {
	return gff3.NewInStream(strings.NewReader(testGFF3), "test.gff3")
}

func TestFeatureStream(t *testing.T) {
	idx := index.NewMemory()
	s := NewFeatureStream(newInStream(), idx)

	var pulled int
	for {
		n, err := s.Next()
		require.NoError(t, err)
		if n == nil {
			break
		}
		pulled++
	}
	assert.Equal(t, 5, pulled)
	assert.Equal(t, []string{"chr1", "chr2"}, idx.SeqIDs())

	features, err := idx.FeaturesForSeqID("chr1")
	require.NoError(t, err)
	require.Len(t, features, 1)
	assert.Equal(t, "gene1", features[0].ID())

	n, err := s.Next()
	assert.NoError(t, err)
	assert.Nil(t, n)
}

func TestStatStream(t *testing.T) {
	s := NewStatStream(newInStream())
	require.NoError(t, Drain(s))

	stats := s.Stats()
	assert.Equal(t, 2, stats.Trees)
	assert.Equal(t, 5, stats.Features)
	assert.Equal(t, 1, stats.Regions)
	assert.Equal(t, 1, stats.Sequences)
	assert.Equal(t, 1, stats.Comments)
	assert.Equal(t, map[string]int{"gene": 2, "mRNA": 1, "exon": 2}, stats.Types)

	var buf bytes.Buffer
	_, err := stats.WriteTo(&buf)
	require.NoError(t, err)
	want := `parsed trees: 2
parsed features: 5
parsed sequence regions: 1
parsed sequences: 1
parsed comments: 1
exon features: 2
gene features: 2
mRNA features: 1
`
	assert.Equal(t, want, buf.String())
}

func TestVisitorStream_Errors(t *testing.T) {
	fn, err := genome.NewFeatureNode("chr1", "gene", 1, 10, genomics.Forward)
	require.NoError(t, err)
	cause := errors.New("rejected")
	var visited int
	s := NewVisitorStream(NewSliceStream(fn, fn), genome.VisitorFuncs{
		Feature: func(*genome.FeatureNode) error {
			visited++
			return cause
		},
	})

	n, err := s.Next()
	assert.Nil(t, n)
	assert.True(t, errors.Is(err, cause))

	_, again := s.Next()
	assert.Equal(t, err, again)
	assert.Equal(t, 1, visited)
}

func TestDrain(t *testing.T) {
	assert.NoError(t, Drain(NewSliceStream()))

	err := Drain(gff3.NewInStream(strings.NewReader("chr1\t.\tgene\t1\t2\t.\t+\t.\t.\n"), "bad.gff3"))
	assert.Equal(t, genomics.ParseError, genomics.KindOf(err))
}

func TestSliceStream(t *testing.T) {
	comment := genome.NewCommentNode("c")
	s := NewSliceStream(comment)
	n, err := s.Next()
	require.NoError(t, err)
	assert.True(t, n == comment)
	for i := 0; i < 2; i++ {
		n, err = s.Next()
		assert.NoError(t, err)
		assert.Nil(t, n)
	}
}
