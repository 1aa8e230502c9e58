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

// Binary gff3-client queries a gff3-server.
//
// Without -seqid it lists the sequence regions known to the server together
// with their ranges.  With -seqid it downloads the feature trees of that
// region as GFF3.  When -auth is set requests carry Google application
// default credentials.
package main

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/googlegenomics/featureindex/server"
)

const (
	scope = "https://www.googleapis.com/auth/userinfo.email"
)

var (
	seqid  = flag.String("seqid", "", "sequence region to download")
	start  = flag.Uint64("start", 0, "if set, only download trees ending at or after this position")
	end    = flag.Uint64("end", 0, "if set, only download trees starting at or before this position")
	output = flag.String("o", "", "output filename")
	auth   = flag.Bool("auth", false, "authenticate with Google application default credentials")
)

type client struct {
	base string
	http *http.Client
}

func (c *client) get(ctx context.Context, path string, query url.Values) (*http.Response, error) {
	target := strings.TrimSuffix(c.base, "/") + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	req, err := http.NewRequest("GET", target, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %v", err)
	}
	resp, err := c.http.Do(req.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %v", target, err)
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		return nil, errorFromResponse(resp)
	}
	return resp, nil
}

func (c *client) getJSON(ctx context.Context, path string, v interface{}) error {
	resp, err := c.get(ctx, path, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decoding response: %v", err)
	}
	return nil
}

// summarize writes one line per sequence region known to the server.
func (c *client) summarize(ctx context.Context, w io.Writer) error {
	var seqids server.SeqIDsResponse
	if err := c.getJSON(ctx, "/seqids", &seqids); err != nil {
		return err
	}
	for _, id := range seqids.SeqIDs {
		var r server.RangeResponse
		if err := c.getJSON(ctx, "/seqids/"+url.PathEscape(id), &r); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "%s\t%d\t%d\n", r.SeqID, r.Start, r.End); err != nil {
			return err
		}
	}
	return nil
}

// download copies the GFF3 feature trees of id to w.
func (c *client) download(ctx context.Context, w io.Writer, id string, start, end uint64) (int64, error) {
	query := url.Values{"format": []string{"gff3"}}
	if start > 0 {
		query.Set("start", strconv.FormatUint(start, 10))
	}
	if end > 0 {
		query.Set("end", strconv.FormatUint(end, 10))
	}
	resp, err := c.get(ctx, "/seqids/"+url.PathEscape(id)+"/features", query)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	return io.Copy(w, resp.Body)
}

func main() {
	flag.Parse()
	if flag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "usage: %s [-auth] [-seqid id [-start n] [-end n] [-o file]] server_url\n", os.Args[0])
		os.Exit(2)
	}

	w := io.Writer(os.Stdout)
	if *output != "" {
		f, err := os.Create(*output)
		if err != nil {
			log.Fatalf("Failed to open output file: %v", err)
		}
		defer f.Close()

		w = f
	}

	ctx := context.Background()
	httpClient, err := newHTTPClient(ctx, *auth)
	if err != nil {
		log.Fatalf("Failed to create client: %v", err)
	}
	c := &client{flag.Arg(0), httpClient}

	if *seqid == "" {
		if err := c.summarize(ctx, w); err != nil {
			log.Fatalf("Listing sequence regions failed: %v", err)
		}
		return
	}

	log.Printf("Fetching %q", *seqid)
	n, err := c.download(ctx, w, *seqid, *start, *end)
	if err != nil {
		log.Fatalf("Download failed: %v", err)
	}
	log.Printf("Wrote %s", humanSize(n))
}

func newHTTPClient(ctx context.Context, auth bool) (*http.Client, error) {
	// For compatibility with other tools, read the standard cURL certificate
	// authority override from the environment.
	if bundle := os.Getenv("CURL_CA_BUNDLE"); bundle != "" {
		pem, err := os.ReadFile(bundle)
		if err != nil {
			return nil, fmt.Errorf("reading CA override file %q: %v", bundle, err)
		}
		pool, err := x509.SystemCertPool()
		if err != nil {
			return nil, fmt.Errorf("initializing system certificate pool: %v", err)
		}
		if !pool.AppendCertsFromPEM(pem) {
			return nil, fmt.Errorf("adding certificates from bundle %q", bundle)
		}
		ctx = context.WithValue(ctx, oauth2.HTTPClient, &http.Client{
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{
					RootCAs: pool,
				}},
		})
		log.Printf("Using CA override bundle from %q", bundle)
	}

	if auth {
		return google.DefaultClient(ctx, scope)
	}
	if c, ok := ctx.Value(oauth2.HTTPClient).(*http.Client); ok {
		return c, nil
	}
	return http.DefaultClient, nil
}

func humanSize(n int64) string {
	kb := n / 1024
	mb := kb / 1024
	gb := mb / 1024
	if gb > 1 {
		return fmt.Sprintf("%d GB", gb)
	}
	if mb > 1 {
		return fmt.Sprintf("%d MB", mb)
	}
	if kb > 1 {
		return fmt.Sprintf("%d KB", kb)
	}
	return fmt.Sprintf("%d bytes", n)
}

func errorFromResponse(resp *http.Response) error {
	switch resp.StatusCode {
	case http.StatusBadRequest, http.StatusNotFound:
		v := make(map[string]string)
		if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
			return fmt.Errorf("%s: parsing response body: %v", resp.Status, err)
		}
		if message, ok := v["message"]; ok {
			return fmt.Errorf("%s: %v", v["error"], message)
		}
	}
	return fmt.Errorf("unexpected response status: %q", resp.Status)
}
