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

// Binary gff3-server indexes GFF3 files at startup and serves queries against
// the index over HTTP.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/profile"

	"github.com/googlegenomics/featureindex/index"
	"github.com/googlegenomics/featureindex/internal/analytics"
	"github.com/googlegenomics/featureindex/server"
	"github.com/googlegenomics/featureindex/source"
)

var (
	port = flag.Int("port", 8080, "HTTP service port")

	secure    = flag.Bool("secure", false, "serve in HTTPS-only mode")
	httpsCert = flag.String("https_cert", "", "HTTPS certificate file")
	httpsKey  = flag.String("https_key", "", "HTTPS key file")

	sources = flag.String("sources", "", "comma-separated list of GFF3 files to index, local or gs://bucket/object")
	public  = flag.Bool("public", false, "read gs:// sources without credentials")

	profileDir = flag.String("profile", "", "if set, write a CPU profile to this directory on shutdown")

	// Enable or disable anonymous usage tracking.
	//
	// If enabled, anonymous information about requests handled by the server is
	// logged to Google via Google Analytics.
	//
	// This information helps Google determine how well the software is
	// performing and where improvements should be made.  No user identifying
	// information is ever sent to Google.
	trackUsage        = flag.Bool("track_usage", false, "anonymous usage tracking")
	analyticsProperty = flag.String("analytics_property", "", "Google Analytics property ID that receives -track_usage hits")
)

var errNoAnalyticsProperty = errors.New("usage tracking requires -analytics_property")

// newTracker returns a function sending hits to the given analytics property
// under a random client ID.
func newTracker(property string) (func([]analytics.Hit), error) {
	if property == "" {
		return nil, errNoAnalyticsProperty
	}
	client := analytics.NewClient(property, uuid.New().String())
	return func(hits []analytics.Hit) {
		if err := client.Send(context.Background(), hits); err != nil {
			log.Printf("Failed to send %d hits to analytics: %v", len(hits), err)
		}
	}, nil
}

func main() {
	flag.Parse()

	if *secure && (*httpsCert == "" || *httpsKey == "") {
		log.Fatalf("You must specify both -https_cert and -https_key in secure mode.")
	}
	if *sources == "" {
		log.Fatalf("You must specify at least one file with -sources.")
	}

	if *profileDir != "" {
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(*profileDir)).Stop()
	}

	opener := source.DefaultOpener
	if *public {
		opener = &source.Opener{NewClient: source.NewPublicClient}
	}
	log.Printf("Indexing %s", *sources)
	idx, err := index.Load(context.Background(), opener, strings.Split(*sources, ",")...)
	if err != nil {
		log.Fatalf("Failed to load sources: %v", err)
	}
	log.Printf("Indexed %d sequence regions", len(idx.SeqIDs()))

	opts := server.Options{Logging: true}
	if *trackUsage {
		log.Printf("Enabling anonymous usage tracking")

		track, err := newTracker(*analyticsProperty)
		if err != nil {
			log.Fatalf("Failed to enable usage tracking: %v", err)
		}
		opts.Track = track
	}
	router := server.NewRouter(idx, opts)

	address := fmt.Sprintf(":%d", *port)
	if *secure {
		if err := router.RunTLS(address, *httpsCert, *httpsKey); err != nil {
			log.Fatalf("HTTPS server returned an error: %v", err)
		}
	} else {
		if err := router.Run(address); err != nil {
			log.Fatalf("HTTP server returned an error: %v", err)
		}
	}
}
