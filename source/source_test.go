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

package source

import (
	"bytes"
	"compress/gzip"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"

	"github.com/googlegenomics/featureindex/genomics"
	"github.com/googlegenomics/featureindex/internal/bgzf"
)

const testContent = "##gff-version 3\nchr1\t.\tgene\t1\t10\t.\t+\t.\tID=g1\n"

func gzipped(t *testing.T, data string) []byte {
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	_, err := w.Write([]byte(data))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func bgzipped(t *testing.T, data string) []byte {
	var buf bytes.Buffer
	w := bgzf.NewWriter(&buf)
	_, err := w.Write([]byte(data))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func writeTemp(t *testing.T, name string, data []byte) string {
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

func readAll(t *testing.T, opener *Opener, path string) string {
	rc, err := opener.Open(context.Background(), path)
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	return string(data)
}

func TestOpenLocal(t *testing.T) {
	testCases := []struct {
		name string
		data []byte
	}{
		{"plain", []byte(testContent)},
		{"gzip", gzipped(t, testContent)},
		{"bgzf", bgzipped(t, testContent)},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeTemp(t, "input.gff3", tc.data)
			if got, want := readAll(t, &Opener{}, path), testContent; got != want {
				t.Errorf("Wrong content: got %q, want %q", got, want)
			}
		})
	}
}

func TestOpenEmptyFile(t *testing.T) {
	path := writeTemp(t, "empty.gff3", nil)
	assert.Equal(t, "", readAll(t, &Opener{}, path))
}

func TestOpenStdin(t *testing.T) {
	opener := &Opener{Stdin: strings.NewReader(testContent)}
	assert.Equal(t, testContent, readAll(t, opener, Stdin))
}

func TestOpenErrors(t *testing.T) {
	corrupt := append([]byte{0x1f, 0x8b, 0x08, 0, 0, 0, 0, 0, 0, 0xff}, "xxxx"...)
	testCases := []struct {
		name string
		path string
		kind genomics.Kind
	}{
		{"empty path", "", genomics.InvalidArgument},
		{"missing file", filepath.Join(t.TempDir(), "missing.gff3"), genomics.IOError},
		{"directory", t.TempDir(), genomics.IOError},
		{"corrupt gzip", writeTemp(t, "corrupt.gz", corrupt), genomics.IOError},
		{"malformed object path", "gs://bucket", genomics.InvalidArgument},
		{"no storage client", "gs://bucket/object", genomics.IOError},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := (&Opener{}).Open(context.Background(), tc.path)
			if got, want := genomics.KindOf(err), tc.kind; got != want {
				t.Errorf("Wrong error kind: got %v, want %v (%v)", got, want, err)
			}
		})
	}
}

type fixedStatus int

func (code fixedStatus) RoundTrip(*http.Request) (*http.Response, error) {
	return &http.Response{
		Status:     http.StatusText(int(code)),
		StatusCode: int(code),
		Body:       http.NoBody,
	}, nil
}

type fakeGCS map[string][]byte

func (fake fakeGCS) RoundTrip(req *http.Request) (*http.Response, error) {
	content, ok := fake[req.URL.Path]
	if !ok {
		response := httptest.NewRecorder()
		http.Error(response, "no such object", http.StatusNotFound)
		return response.Result(), nil
	}
	w := httptest.NewRecorder()
	http.ServeContent(w, req, req.URL.Path, time.Now(), bytes.NewReader(content))
	return w.Result(), nil
}

func gcsOpener(transport http.RoundTripper) *Opener {
	return &Opener{
		NewClient: func(ctx context.Context) (Client, error) {
			return NewClientWithOptions(ctx, option.WithHTTPClient(&http.Client{Transport: transport}))
		},
	}
}

func TestOpenGCS(t *testing.T) {
	opener := gcsOpener(fakeGCS{
		"/bucket/annotations.gff3":    []byte(testContent),
		"/bucket/dir/annotations.gz":  gzipped(t, testContent),
		"/bucket/dir/annotations.bgz": bgzipped(t, testContent),
	})
	for _, path := range []string{
		"gs://bucket/annotations.gff3",
		"gs://bucket/dir/annotations.gz",
		"gs://bucket/dir/annotations.bgz",
	} {
		t.Run(path, func(t *testing.T) {
			assert.Equal(t, testContent, readAll(t, opener, path))
		})
	}
}

func TestOpenGCSErrors(t *testing.T) {
	testCases := []struct {
		name      string
		transport http.RoundTripper
		message   string
	}{
		{"unauthorized", fixedStatus(http.StatusUnauthorized), "invalid authentication"},
		{"forbidden", fixedStatus(http.StatusForbidden), "permission denied"},
		{"not found", fixedStatus(http.StatusNotFound), "object does not exist"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := gcsOpener(tc.transport).Open(context.Background(), "gs://bucket/object")
			require.Error(t, err)
			assert.Equal(t, genomics.IOError, genomics.KindOf(err))
			assert.Contains(t, err.Error(), tc.message)
		})
	}
}

func TestNewClientFromBearerToken(t *testing.T) {
	for _, header := range []string{"", "Bearer", "Basic abc", "Bearer a b"} {
		if _, err := NewClientFromBearerToken(context.Background(), header); err != errMissingOrInvalidToken {
			t.Errorf("NewClientFromBearerToken(%q): got %v, want %v", header, err, errMissingOrInvalidToken)
		}
	}
	client, err := NewClientFromBearerToken(context.Background(), "Bearer token")
	require.NoError(t, err)
	assert.NotNil(t, client)
}
