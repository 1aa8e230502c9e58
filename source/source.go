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

// Package source opens annotation inputs from local files, standard input or
// Google Cloud Storage, transparently decompressing gzip and BGZF data.
package source

import (
	"bufio"
	"compress/gzip"
	"context"
	"errors"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/googlegenomics/featureindex/genomics"
	"github.com/googlegenomics/featureindex/internal/bgzf"
)

const (
	// Stdin is the path naming the standard input stream.
	Stdin = "-"

	gcsScheme = "gs://"

	sniffSize = 18
)

var errMissingOrInvalidToken = errors.New("missing or invalid bearer token")

// Opener opens annotation sources by path.
type Opener struct {
	// NewClient creates the storage client used for gs:// paths.  It is
	// called at most once, the first time a remote path is opened.
	NewClient func(ctx context.Context) (Client, error)
	// Stdin is read when the path is "-".  Defaults to os.Stdin.
	Stdin io.Reader

	mu     sync.Mutex
	client Client
}

// DefaultOpener opens gs:// paths with the application default credentials.
var DefaultOpener = &Opener{NewClient: NewDefaultClient}

// Open opens path with DefaultOpener.
func Open(ctx context.Context, path string) (io.ReadCloser, error) {
	return DefaultOpener.Open(ctx, path)
}

// Open opens the source named by path and probes it so that unreadable
// inputs fail here with an IOError rather than on the first read.  Gzip and
// BGZF compressed data is decompressed.
func (o *Opener) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	raw, err := o.openRaw(ctx, path)
	if err != nil {
		return nil, err
	}

	rc, err := decompress(raw)
	if err != nil {
		raw.Close()
		return nil, genomics.NewIOError("reading "+path, err)
	}
	return rc, nil
}

func (o *Opener) openRaw(ctx context.Context, path string) (io.ReadCloser, error) {
	switch {
	case path == "":
		return nil, genomics.NewInvalidArgumentError("opening source", errors.New("empty path"))
	case path == Stdin:
		if o.Stdin != nil {
			return io.NopCloser(o.Stdin), nil
		}
		return io.NopCloser(os.Stdin), nil
	case strings.HasPrefix(path, gcsScheme):
		bucket, object, err := parseObjectPath(path)
		if err != nil {
			return nil, err
		}
		client, err := o.storageClient(ctx)
		if err != nil {
			return nil, genomics.NewIOError("opening "+path, err)
		}
		r, err := client.NewObjectHandle(bucket, object).NewRangeReader(ctx, 0, -1)
		if err != nil {
			return nil, newStorageError("opening "+path, err)
		}
		return r, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, genomics.NewIOError("opening source", err)
	}
	if info, err := f.Stat(); err == nil && info.IsDir() {
		f.Close()
		return nil, genomics.NewIOError("opening source", errors.New(path+" is a directory"))
	}
	return f, nil
}

func (o *Opener) storageClient(ctx context.Context) (Client, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.client != nil {
		return o.client, nil
	}
	if o.NewClient == nil {
		return nil, errors.New("no storage client configured")
	}
	client, err := o.NewClient(ctx)
	if err != nil {
		return nil, err
	}
	o.client = client
	return client, nil
}

type readCloser struct {
	io.Reader
	closers []io.Closer
}

func (rc *readCloser) Close() error {
	var first error
	for _, c := range rc.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// decompress wraps raw in a gzip or BGZF decoder when its header says so and
// reads ahead one byte of the decoded data to surface read failures early.
func decompress(raw io.ReadCloser) (io.ReadCloser, error) {
	br := bufio.NewReader(raw)
	header, err := br.Peek(sniffSize)
	if err != nil && err != io.EOF {
		return nil, err
	}

	rc := &readCloser{Reader: br, closers: []io.Closer{raw}}
	switch {
	case bgzf.IsBGZF(header):
		rc.Reader = bgzf.NewReader(br)
	case len(header) >= 2 && header[0] == 0x1f && header[1] == 0x8b:
		gz, err := gzip.NewReader(br)
		if err != nil {
			return nil, err
		}
		rc.Reader = gz
		rc.closers = append([]io.Closer{gz}, rc.closers...)
	}

	probe := bufio.NewReader(rc.Reader)
	if _, err := probe.Peek(1); err != nil && err != io.EOF {
		return nil, err
	}
	rc.Reader = probe
	return rc, nil
}
