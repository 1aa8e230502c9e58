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

// Package server exposes a feature index over HTTP.
//
// The following endpoints are registered:
//
//	GET /seqids
//	GET /seqids/:seqid
//	GET /seqids/:seqid/features?start=&end=&format=json|gff3
package server

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/googlegenomics/featureindex/genome"
	"github.com/googlegenomics/featureindex/genomics"
	"github.com/googlegenomics/featureindex/gff3"
	"github.com/googlegenomics/featureindex/index"
	"github.com/googlegenomics/featureindex/internal/analytics"
)

const (
	formatJSON = "json"
	formatGFF3 = "gff3"

	gff3ContentType = "text/x-gff3; charset=utf-8"
)

var errStartAfterEnd = errors.New("start must not be greater than end")

// Options configures the router returned by NewRouter.
type Options struct {
	// Track receives the usage hits recorded while serving each request.
	// Tracking is disabled when Track is nil.
	Track func([]analytics.Hit)
	// Logging enables the gin request logger.
	Logging bool
}

type server struct {
	idx index.FeatureIndex
}

// NewRouter returns a gin engine serving queries against idx.
func NewRouter(idx index.FeatureIndex, opts Options) *gin.Engine {
	router := gin.New()
	if opts.Logging {
		router.Use(gin.Logger())
	}
	router.Use(gin.Recovery(), forwardOrigin)
	if opts.Track != nil {
		router.Use(analytics.Middleware(opts.Track))
	}

	s := &server{idx}
	router.GET("/seqids", s.serveSeqIDs)
	router.GET("/seqids/:seqid", s.serveRange)
	router.GET("/seqids/:seqid/features", s.serveFeatures)
	return router
}

func forwardOrigin(c *gin.Context) {
	if origin := c.GetHeader("Origin"); origin != "" {
		c.Header("Access-Control-Allow-Origin", origin)
	}
	c.Next()
}

func (s *server) serveSeqIDs(c *gin.Context) {
	analytics.Track(c, analytics.Event("SeqIDs", "SeqIDs Request Received", "", nil))

	seqids := s.idx.SeqIDs()
	if seqids == nil {
		seqids = []string{}
	}
	c.JSON(http.StatusOK, SeqIDsResponse{seqids})
}

func (s *server) serveRange(c *gin.Context) {
	seqid := c.Param("seqid")
	analytics.Track(c, analytics.Event("Range", "Range Request Received", "", nil))

	r, err := s.idx.RangeForSeqID(seqid)
	if err != nil {
		writeError(c, fromIndexError("looking up range", err))
		return
	}
	c.JSON(http.StatusOK, RangeResponse{seqid, r.Start, r.End})
}

func (s *server) serveFeatures(c *gin.Context) {
	seqid := c.Param("seqid")
	track := func(action string) {
		analytics.Track(c, analytics.Event("Features", action, "", nil))
	}
	track("Features Request Received")

	format := c.DefaultQuery("format", formatJSON)
	if format != formatJSON && format != formatGFF3 {
		writeError(c, newUnsupportedFormatError(fmt.Errorf("format %q is not supported", format)))
		return
	}

	r, restricted, err := parseRange(c.Query("start"), c.Query("end"))
	if err != nil {
		writeError(c, err)
		return
	}

	var features []*genome.FeatureNode
	if restricted {
		features, err = s.idx.FeaturesForRange(seqid, r)
	} else {
		features, err = s.idx.FeaturesForSeqID(seqid)
	}
	if err != nil {
		writeError(c, fromIndexError("querying features", err))
		return
	}
	track("Features Request Completed")

	if format == formatGFF3 {
		c.Header("Content-Type", gff3ContentType)
		c.Status(http.StatusOK)
		w := gff3.NewWriter(c.Writer)
		for _, fn := range features {
			if err := fn.Accept(w); err != nil {
				c.Error(err)
				return
			}
		}
		if err := w.Flush(); err != nil {
			c.Error(err)
		}
		return
	}

	response := FeaturesResponse{SeqID: seqid, Features: []*Feature{}}
	for _, fn := range features {
		response.Features = append(response.Features, newFeature(fn))
	}
	c.JSON(http.StatusOK, response)
}

// parseRange parses the optional start and end query parameters.  A missing
// start defaults to 1 and a missing end to the largest position.  It reports
// whether either bound was given.
func parseRange(start, end string) (genomics.Range, bool, error) {
	r := genomics.Range{Start: 1, End: math.MaxInt64}
	if start == "" && end == "" {
		return r, false, nil
	}
	if start != "" {
		n, err := strconv.ParseUint(start, 10, 63)
		if err != nil || n == 0 {
			return r, false, newInvalidInputError("parsing start", fmt.Errorf("invalid start %q", start))
		}
		r.Start = n
	}
	if end != "" {
		n, err := strconv.ParseUint(end, 10, 63)
		if err != nil || n == 0 {
			return r, false, newInvalidInputError("parsing end", fmt.Errorf("invalid end %q", end))
		}
		r.End = n
	}
	if !r.Valid() {
		return r, false, newInvalidRangeError(errStartAfterEnd)
	}
	return r, true, nil
}
