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

package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/googlegenomics/featureindex/gff3"
	"github.com/googlegenomics/featureindex/index"
	"github.com/googlegenomics/featureindex/server"
)

const testGFF3 = `##gff-version 3
##sequence-region chr1 1 1000
chr1	.	gene	100	200	.	+	.	ID=gene1
chr1	.	gene	400	500	.	-	.	ID=gene2
`

func newTestClient(t *testing.T) (*client, func()) {
	gin.SetMode(gin.TestMode)
	idx := index.NewMemory()
	require.NoError(t, idx.AddSource(gff3.NewInStream(strings.NewReader(testGFF3), "test.gff3")))
	ts := httptest.NewServer(server.NewRouter(idx, server.Options{}))
	return &client{ts.URL + "/", http.DefaultClient}, ts.Close
}

func TestSummarize(t *testing.T) {
	c, stop := newTestClient(t)
	defer stop()

	var buf bytes.Buffer
	require.NoError(t, c.summarize(context.Background(), &buf))
	assert.Equal(t, "chr1\t100\t500\n", buf.String())
}

func TestDownload(t *testing.T) {
	c, stop := newTestClient(t)
	defer stop()

	var buf bytes.Buffer
	n, err := c.download(context.Background(), &buf, "chr1", 300, 0)
	require.NoError(t, err)
	want := "##gff-version 3\nchr1\t.\tgene\t400\t500\t.\t-\t.\tID=gene2\n"
	assert.Equal(t, want, buf.String())
	assert.Equal(t, int64(len(want)), n)
}

func TestDownload_Errors(t *testing.T) {
	c, stop := newTestClient(t)
	defer stop()

	_, err := c.download(context.Background(), &bytes.Buffer{}, "chrX", 0, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "NotFound")

	_, err = c.download(context.Background(), &bytes.Buffer{}, "chr1", 10, 5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "InvalidRange")
}

func TestHumanSize(t *testing.T) {
	testCases := []struct {
		n    int64
		want string
	}{
		{10, "10 bytes"},
		{4096, "4 KB"},
		{3 << 20, "3 MB"},
		{5 << 30, "5 GB"},
	}
	for _, tc := range testCases {
		if got := humanSize(tc.n); got != tc.want {
			t.Errorf("humanSize(%d): got %q, want %q", tc.n, got, tc.want)
		}
	}
}
