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

// Package featureindex serves a feature index on App Engine.
//
// The comma-separated GFF3 files listed in FEATURE_INDEX_SOURCES are indexed
// when the first request arrives.  Remote files are read with the bearer
// token of that request if it carries one and with the application default
// credentials otherwise.
package featureindex

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"sync"

	"google.golang.org/appengine"

	"github.com/googlegenomics/featureindex/index"
	"github.com/googlegenomics/featureindex/server"
	"github.com/googlegenomics/featureindex/source"
)

const sourcesVariable = "FEATURE_INDEX_SOURCES"

var (
	loadOnce sync.Once
	handler  http.Handler
	loadErr  error
)

func init() {
	http.HandleFunc("/", serve)
}

func serve(w http.ResponseWriter, req *http.Request) {
	loadOnce.Do(func() {
		handler, loadErr = load(req)
	})
	if loadErr != nil {
		http.Error(w, fmt.Sprintf("%s: %v", http.StatusText(http.StatusInternalServerError), loadErr), http.StatusInternalServerError)
		return
	}
	handler.ServeHTTP(w, req)
}

func load(req *http.Request) (http.Handler, error) {
	ctx := appengine.NewContext(req)
	opener := &source.Opener{NewClient: func(ctx context.Context) (source.Client, error) {
		if authorization := req.Header.Get("Authorization"); authorization != "" {
			return source.NewClientFromBearerToken(ctx, authorization)
		}
		return source.NewDefaultClient(ctx)
	}}

	idx, err := index.Load(ctx, opener, strings.Split(os.Getenv(sourcesVariable), ",")...)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %v", sourcesVariable, err)
	}
	log.Printf("Indexed %d sequence regions", len(idx.SeqIDs()))
	return server.NewRouter(idx, server.Options{}), nil
}
