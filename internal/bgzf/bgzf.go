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

// Package bgzf provides support for reading and writing BGZF compressed
// annotation files.
package bgzf

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
)

// MaximumBlockSize is the maximum BGZF block size.
const MaximumBlockSize = 65536

// maximumDataSize bounds the uncompressed payload of a written block so that
// the compressed block always fits in MaximumBlockSize.
const maximumDataSize = 0xff00

// eofMarker is the empty block that terminates a BGZF file.
var eofMarker = []byte{
	0x1f, 0x8b, 0x08, 0x04, 0x00, 0x00, 0x00, 0x00,
	0x00, 0xff, 0x06, 0x00, 0x42, 0x43, 0x02, 0x00,
	0x1b, 0x00, 0x03, 0x00, 0x00, 0x00, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x00,
}

// IsBGZF reports whether header starts with a gzip member header carrying the
// BGZF extra subfield.
func IsBGZF(header []byte) bool {
	return len(header) >= 14 &&
		header[0] == 0x1f && header[1] == 0x8b && header[2] == 0x08 &&
		header[3]&0x04 != 0 &&
		header[12] == 0x42 && header[13] == 0x43
}

// DecodeBlock decodes a single BGZF block from r and returns the uncompressed
// data and the original block size (or an error).  Note that DecodeBlock may
// read bytes past the end of the block if r does not implement io.ByteReader.
func DecodeBlock(r io.Reader) ([]byte, uint16, error) {
	gzr, err := gzip.NewReader(r)
	if err != nil {
		return nil, 0, fmt.Errorf("initializing gzip reader: %v", err)
	}
	defer gzr.Close()

	extra := gzr.Header.Extra
	if len(extra) < 6 {
		return nil, 0, fmt.Errorf("missing extra subfield (%d bytes)", len(extra))
	}
	if extra[0] != 0x42 || extra[1] != 0x43 {
		return nil, 0, fmt.Errorf("unexpected extra ID: %x", extra[0:2])
	}
	if extra[2] != 2 || extra[3] != 0 {
		return nil, 0, fmt.Errorf("unexpected extra length: %x", extra[2:4])
	}

	gzr.Multistream(false)
	var buffer bytes.Buffer
	if _, err := io.Copy(&buffer, gzr); err != nil {
		return nil, 0, fmt.Errorf("decompressing data: %v", err)
	}
	return buffer.Bytes(), (uint16(extra[4]) | uint16(extra[5])<<8) + 1, nil
}

// EncodeBlock returns a single BGZF block that encodes the bytes in data.
func EncodeBlock(data []byte) ([]byte, error) {
	if len(data) > MaximumBlockSize {
		return nil, errors.New("data exceeds maximum block size")
	}

	var buffer bytes.Buffer
	gzw := gzip.NewWriter(&buffer)

	gzw.Header.Extra = []byte{
		0x42, 0x43, // Extra ID.
		0x02, 0x00, // Length of extra data (2 bytes).
		0x88, 0x88, // BSIZE (filled in after writing the archive).
	}
	if _, err := gzw.Write(data); err != nil {
		return nil, fmt.Errorf("writing compressed data: %v", err)
	}
	if err := gzw.Close(); err != nil {
		return nil, fmt.Errorf("closing writer: %v", err)
	}
	bsize := buffer.Len() - 1
	encoded := buffer.Bytes()
	encoded[16] = byte(bsize)
	encoded[17] = byte(bsize >> 8)
	return encoded, nil
}

// Reader decompresses a BGZF stream one block at a time.
type Reader struct {
	r      *bufio.Reader
	data   []byte
	offset int
	blocks int
	err    error
}

// NewReader returns a Reader that decodes the blocks read from r.
func NewReader(r io.Reader) *Reader {
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReaderSize(r, MaximumBlockSize)
	}
	return &Reader{r: br}
}

// Read implements io.Reader.
func (r *Reader) Read(p []byte) (int, error) {
	for r.offset >= len(r.data) {
		if r.err != nil {
			return 0, r.err
		}
		if _, err := r.r.Peek(1); err != nil {
			r.err = err
			continue
		}
		data, _, err := DecodeBlock(r.r)
		if err != nil {
			r.err = fmt.Errorf("decoding block %d: %v", r.blocks, err)
			continue
		}
		r.data, r.offset = data, 0
		r.blocks++
	}
	n := copy(p, r.data[r.offset:])
	r.offset += n
	return n, nil
}

// Writer compresses data into BGZF blocks.  Close must be called to flush
// the final block and write the end-of-file marker.
type Writer struct {
	w      io.Writer
	buffer []byte
	err    error
}

// NewWriter returns a Writer that writes BGZF blocks to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w, buffer: make([]byte, 0, maximumDataSize)}
}

// Write implements io.Writer.
func (w *Writer) Write(p []byte) (int, error) {
	if w.err != nil {
		return 0, w.err
	}
	written := 0
	for len(p) > 0 {
		n := copy(w.buffer[len(w.buffer):cap(w.buffer)], p)
		w.buffer = w.buffer[:len(w.buffer)+n]
		p = p[n:]
		written += n
		if len(w.buffer) == cap(w.buffer) {
			if err := w.Flush(); err != nil {
				return written, err
			}
		}
	}
	return written, nil
}

// Flush writes any buffered data as a complete block.
func (w *Writer) Flush() error {
	if w.err != nil || len(w.buffer) == 0 {
		return w.err
	}
	block, err := EncodeBlock(w.buffer)
	if err != nil {
		w.err = fmt.Errorf("encoding block: %v", err)
		return w.err
	}
	if _, err := w.w.Write(block); err != nil {
		w.err = fmt.Errorf("writing block: %v", err)
		return w.err
	}
	w.buffer = w.buffer[:0]
	return nil
}

// Close flushes buffered data and writes the end-of-file marker.  It does not
// close the underlying writer.
func (w *Writer) Close() error {
	if err := w.Flush(); err != nil {
		return err
	}
	if _, err := w.w.Write(eofMarker); err != nil {
		w.err = fmt.Errorf("writing EOF marker: %v", err)
		return w.err
	}
	w.err = errors.New("bgzf: writer closed")
	return nil
}
