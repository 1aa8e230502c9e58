// Copyright 2017 Google Inc.
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

package bgzf

import (
	"bytes"
	"compress/gzip"
	"io/ioutil"
	"strings"
	"testing"
)

func TestDecodeBlock(t *testing.T) {
	encoded, err := EncodeBlock([]byte("##gff-version 3\n"))
	if err != nil {
		t.Fatalf("Failed to encode block: %v", err)
	}
	r := bytes.NewReader(append(encoded, eofMarker...))

	blocks := []struct {
		bsize uint16
		isize int
	}{
		{uint16(len(encoded)), 16},
		{28, 0}, /* EOF marker */
	}
	for i, block := range blocks {
		data, length, err := DecodeBlock(r)
		if err != nil {
			t.Fatalf("Failed to read block %d: %v", i, err)
		}
		if got, want := length, block.bsize; got != want {
			t.Errorf("Wrong compressed block length: got %d, want %d", got, want)
		}
		if got, want := len(data), block.isize; got != want {
			t.Errorf("Wrong uncompressed data length: got %d, want %d", got, want)
		}
	}
}

func TestDecodeBlock_PlainGzip(t *testing.T) {
	var buffer bytes.Buffer
	gzw := gzip.NewWriter(&buffer)
	gzw.Write([]byte("not bgzf"))
	gzw.Close()

	if IsBGZF(buffer.Bytes()) {
		t.Error("Plain gzip data detected as BGZF")
	}
	if _, _, err := DecodeBlock(&buffer); err == nil {
		t.Error("DecodeBlock accepted a gzip member without BGZF subfield")
	}
}

func TestEncodeBlock_BlockSizes(t *testing.T) {
	if _, err := EncodeBlock(make([]byte, MaximumBlockSize+1)); err == nil {
		t.Fatal("EncodeBlock() should fail with block over size limit but didn't")
	}
	if _, err := EncodeBlock(make([]byte, MaximumBlockSize)); err != nil {
		t.Fatal("EncodeBlock() should succeed with block at size limit but didn't")
	}
}

func TestWriterReader_RoundTrip(t *testing.T) {
	testCases := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"single line", "chr1\t.\tgene\t1\t10\t.\t+\t.\tID=g1\n"},
		{"several blocks", strings.Repeat("chr1\tsrc\texon\t100\t200\t.\t-\t.\tParent=t1\n", 5000)},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var compressed bytes.Buffer
			w := NewWriter(&compressed)
			if _, err := w.Write([]byte(tc.input)); err != nil {
				t.Fatalf("Write failed: %v", err)
			}
			if err := w.Close(); err != nil {
				t.Fatalf("Close failed: %v", err)
			}
			if !IsBGZF(compressed.Bytes()) {
				t.Errorf("Output does not start with a BGZF header")
			}
			if !bytes.HasSuffix(compressed.Bytes(), eofMarker) {
				t.Errorf("Output is missing the EOF marker")
			}

			got, err := ioutil.ReadAll(NewReader(&compressed))
			if err != nil {
				t.Fatalf("Reading compressed data failed: %v", err)
			}
			if string(got) != tc.input {
				t.Errorf("Round trip mismatch: got %d bytes, want %d bytes", len(got), len(tc.input))
			}
		})
	}
}

func TestReader_CorruptInput(t *testing.T) {
	encoded, err := EncodeBlock([]byte("data"))
	if err != nil {
		t.Fatalf("Failed to encode block: %v", err)
	}
	input := append(encoded, []byte("garbage that is not a block")...)
	if _, err := ioutil.ReadAll(NewReader(bytes.NewReader(input))); err == nil {
		t.Error("Reader accepted trailing garbage")
	}
}

func TestWriter_Closed(t *testing.T) {
	w := NewWriter(ioutil.Discard)
	if err := w.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if _, err := w.Write([]byte("x")); err == nil {
		t.Error("Write after Close succeeded")
	}
}
