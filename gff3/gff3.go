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

// Package gff3 reads and writes the Generic Feature Format version 3.
//
// InStream turns GFF3 text into genome nodes: feature trees assembled from
// the ID and Parent attributes, sequence-region pragmas, comments and the
// sequences of a trailing FASTA section.  Writer is the inverse, a
// genome.Visitor that serializes the nodes it visits.
package gff3

import (
	"fmt"
	"net/url"
	"strings"
)

// Version is the only format version understood by this package.
const Version = "3"

const (
	versionPragma = "##gff-version"
	regionPragma  = "##sequence-region"
	fastaPragma   = "##FASTA"
	terminator    = "###"
	undefined     = "."

	// Features of this type must specify a phase.
	codingSequenceType = "CDS"
)

// Column indices of a feature line.
const (
	seqidColumn = iota
	sourceColumn
	typeColumn
	startColumn
	endColumn
	scoreColumn
	strandColumn
	phaseColumn
	attributesColumn
	numColumns
)

const (
	columnSpecial    = "\t"
	attributeSpecial = ";=&,"
)

// escape percent-encodes '%', control characters and any byte in special.
func escape(value, special string) string {
	var b strings.Builder
	for i := 0; i < len(value); i++ {
		c := value[i]
		if c < 0x20 || c == 0x7f || c == '%' || strings.IndexByte(special, c) >= 0 {
			fmt.Fprintf(&b, "%%%02X", c)
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}

func unescape(value string) (string, error) {
	if !strings.Contains(value, "%") {
		return value, nil
	}
	decoded, err := url.PathUnescape(value)
	if err != nil {
		return "", fmt.Errorf("decoding %q: %v", value, err)
	}
	return decoded, nil
}

func isVersion3(version string) bool {
	return version == Version || strings.HasPrefix(version, Version+".")
}
