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
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"cloud.google.com/go/storage"
	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/googlegenomics/featureindex/genomics"
)

// Client is an interface to the storage engine holding remote sources.
type Client interface {
	// NewObjectHandle returns a handle to a specified object in
	// the storage engine.
	NewObjectHandle(bucket, object string) ObjectHandle
}

// ObjectHandle is an interface to the actual storage engine in use.
type ObjectHandle interface {
	// NewRangeReader returns a reader that reads from a specified
	// range. Length of -1 means to capture everything until the
	// end.
	NewRangeReader(ctx context.Context, offset, length int64) (io.ReadCloser, error)
}

// GCSClient is Client for accessing Google Cloud Storage.
type GCSClient struct {
	*storage.Client
}

// NewObjectHandle returns a handle to a specified object in the
// storage engine.
func (c GCSClient) NewObjectHandle(bucket, object string) ObjectHandle {
	return gcsObjectHandle{c.Bucket(bucket).Object(object)}
}

type gcsObjectHandle struct {
	*storage.ObjectHandle
}

func (h gcsObjectHandle) NewRangeReader(ctx context.Context, offset, length int64) (io.ReadCloser, error) {
	return h.ObjectHandle.NewRangeReader(ctx, offset, length)
}

var (
	defaultStorageClient    *storage.Client
	defaultStorageClientErr error
	initializeDefaultClient sync.Once
)

// NewDefaultClient returns a storage client that uses the application default
// credentials.  It caches the storage client for efficiency.
func NewDefaultClient(ctx context.Context) (Client, error) {
	initializeDefaultClient.Do(func() {
		defaultStorageClient, defaultStorageClientErr = storage.NewClient(context.Background())
	})
	if defaultStorageClientErr != nil {
		return nil, fmt.Errorf("creating default storage client: %v", defaultStorageClientErr)
	}
	return GCSClient{defaultStorageClient}, nil
}

// NewPublicClient returns a storage client that does not use any form of
// client authorization.  It can only be used to read publicly-readable
// objects.
func NewPublicClient(ctx context.Context) (Client, error) {
	return NewClientWithOptions(ctx, option.WithHTTPClient(http.DefaultClient))
}

// NewClientWithOptions returns a storage client configured with opts.
func NewClientWithOptions(ctx context.Context, opts ...option.ClientOption) (Client, error) {
	gcs, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating storage client: %v", err)
	}
	return GCSClient{gcs}, nil
}

// NewClientFromBearerToken constructs a storage client that uses the OAuth2
// bearer token found in authorization (an HTTP Authorization header value)
// to make storage requests.
func NewClientFromBearerToken(ctx context.Context, authorization string) (Client, error) {
	fields := strings.Split(authorization, " ")
	if len(fields) != 2 || fields[0] != "Bearer" {
		return nil, errMissingOrInvalidToken
	}

	token := oauth2.Token{
		TokenType:   fields[0],
		AccessToken: fields[1],
	}
	return NewClientWithOptions(ctx, option.WithTokenSource(oauth2.StaticTokenSource(&token)))
}

// parseObjectPath splits a gs://bucket/object path into bucket and object.
func parseObjectPath(path string) (string, string, error) {
	if parts := strings.SplitN(strings.TrimPrefix(path, gcsScheme), "/", 2); len(parts) == 2 {
		if parts[0] != "" && parts[1] != "" {
			return parts[0], parts[1], nil
		}
	}
	return "", "", genomics.NewInvalidArgumentError("parsing object path", fmt.Errorf("%q is not of the form gs://bucket/object", path))
}

func newStorageError(context string, err error) error {
	if err == errMissingOrInvalidToken {
		return genomics.NewIOError(context+": permission denied", err)
	}
	if err == storage.ErrObjectNotExist || err == storage.ErrBucketNotExist {
		return genomics.NewIOError(context+": object does not exist", err)
	}
	if err, ok := err.(*googleapi.Error); ok {
		switch err.Code {
		case http.StatusUnauthorized:
			return genomics.NewIOError(context+": invalid authentication", err)
		case http.StatusForbidden:
			return genomics.NewIOError(context+": permission denied", err)
		}
	}
	return genomics.NewIOError(context, err)
}
