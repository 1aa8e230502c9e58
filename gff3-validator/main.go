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

// Binary gff3-validator checks that its input is well formed GFF3.
//
// Usage:
//
//	gff3-validator [-stat] [-types] [-profile dir] [GFF3_file]
//
// The input is read from standard input when no file is given.  Files may be
// gzip or BGZF compressed and may be located on Google Cloud Storage.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/pkg/profile"

	"github.com/googlegenomics/featureindex/gff3"
	"github.com/googlegenomics/featureindex/source"
	"github.com/googlegenomics/featureindex/stream"
)

var (
	showStats  = flag.Bool("stat", false, "print statistics about the input")
	showTypes  = flag.Bool("types", false, "print the feature types used in the input")
	profileDir = flag.String("profile", "", "if set, write a CPU profile to this directory")
)

type result struct {
	stats stream.Stats
	types []string
}

func validate(ctx context.Context, filename string) (*result, error) {
	in, err := gff3.Open(ctx, filename)
	if err != nil {
		return nil, err
	}
	defer in.Close()

	s := stream.NewStatStream(in)
	if err := stream.Drain(s); err != nil {
		return nil, err
	}
	return &result{s.Stats(), in.UsedTypes()}, nil
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "%s: error: %s\n", os.Args[0], err)
	os.Exit(1)
}

func usage() {
	fmt.Fprintf(os.Stderr, "usage: %s [-stat] [-types] [-profile dir] [GFF3_file]\n", os.Args[0])
	flag.PrintDefaults()
	os.Exit(2)
}

func main() {
	flag.Usage = usage
	flag.Parse()
	if flag.NArg() > 1 {
		usage()
	}
	filename := source.Stdin
	if flag.NArg() == 1 {
		filename = flag.Arg(0)
	}

	if *profileDir != "" {
		p := profile.Start(profile.CPUProfile, profile.ProfilePath(*profileDir), profile.NoShutdownHook)
		defer p.Stop()
	}

	res, err := validate(context.Background(), filename)
	if err != nil {
		fatal(err)
	}
	fmt.Println("input is valid GFF3")
	if *showStats {
		if _, err := res.stats.WriteTo(os.Stdout); err != nil {
			fatal(err)
		}
	}
	if *showTypes {
		fmt.Printf("used types: %s\n", strings.Join(res.types, ", "))
	}
}
