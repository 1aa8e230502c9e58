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

// Binary gff3-index builds a feature index from GFF3 files and reports its
// contents.
//
// Without -seqid it prints the first sequence region followed by one line per
// indexed region with its range and number of feature trees.  With -seqid it
// writes the feature trees of that region as GFF3, optionally restricted to
// those overlapping -range and compressed with BGZF.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/pkg/profile"

	"github.com/googlegenomics/featureindex/genome"
	"github.com/googlegenomics/featureindex/genomics"
	"github.com/googlegenomics/featureindex/gff3"
	"github.com/googlegenomics/featureindex/index"
	"github.com/googlegenomics/featureindex/internal/bgzf"
	"github.com/googlegenomics/featureindex/source"
)

var (
	seqid      = flag.String("seqid", "", "if set, write the feature trees of this sequence region as GFF3")
	rangeFlag = flag.String("range", "", "restrict -seqid output to trees overlapping start-end")
	output     = flag.String("o", source.Stdin, "output file for -seqid, - for standard output")
	bgzip      = flag.Bool("bgzip", false, "compress -seqid output with BGZF")
	public     = flag.Bool("public", false, "read gs:// inputs without credentials")
	profileDir = flag.String("profile", "", "if set, write a CPU profile to this directory")
)

func summarize(w io.Writer, idx index.FeatureIndex) error {
	first, err := idx.FirstSeqID()
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "first seqid: %s\n", first)
	for _, id := range idx.SeqIDs() {
		r, err := idx.RangeForSeqID(id)
		if err != nil {
			return err
		}
		features, err := idx.FeaturesForSeqID(id)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "%s\t%d\t%d\t%d\n", id, r.Start, r.End, len(features)); err != nil {
			return err
		}
	}
	return nil
}

func selectTrees(idx index.FeatureIndex, id, rangeArg string) ([]*genome.FeatureNode, error) {
	if rangeArg == "" {
		return idx.FeaturesForSeqID(id)
	}
	r, err := genomics.ParseRange(rangeArg)
	if err != nil {
		return nil, err
	}
	return idx.FeaturesForRange(id, r)
}

func writeTrees(w io.Writer, features []*genome.FeatureNode, compress bool) error {
	var bw *bgzf.Writer
	if compress {
		bw = bgzf.NewWriter(w)
		w = bw
	}
	gw := gff3.NewWriter(w)
	for _, fn := range features {
		if err := fn.Accept(gw); err != nil {
			return err
		}
	}
	if err := gw.Flush(); err != nil {
		return err
	}
	if bw != nil {
		return bw.Close()
	}
	return nil
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "%s: error: %s\n", os.Args[0], err)
	os.Exit(1)
}

func usage() {
	fmt.Fprintf(os.Stderr, "usage: %s [-seqid id [-range start-end] [-o file] [-bgzip]] GFF3_file...\n", os.Args[0])
	flag.PrintDefaults()
	os.Exit(2)
}

func main() {
	flag.Usage = usage
	flag.Parse()
	if flag.NArg() == 0 {
		usage()
	}

	if *profileDir != "" {
		p := profile.Start(profile.CPUProfile, profile.ProfilePath(*profileDir), profile.NoShutdownHook)
		defer p.Stop()
	}

	opener := source.DefaultOpener
	if *public {
		opener = &source.Opener{NewClient: source.NewPublicClient}
	}
	idx, err := index.Load(context.Background(), opener, flag.Args()...)
	if err != nil {
		fatal(err)
	}

	if *seqid == "" {
		if err := summarize(os.Stdout, idx); err != nil {
			fatal(err)
		}
		return
	}

	features, err := selectTrees(idx, *seqid, *rangeFlag)
	if err != nil {
		fatal(err)
	}
	w := io.Writer(os.Stdout)
	if *output != source.Stdin {
		f, err := os.Create(*output)
		if err != nil {
			fatal(err)
		}
		defer f.Close()
		w = f
	}
	if err := writeTrees(w, features, *bgzip); err != nil {
		fatal(err)
	}
}
