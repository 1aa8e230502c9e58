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

package genomics

import (
	"errors"
	"fmt"
)

// Kind classifies the errors reported by this module.
type Kind int

const (
	// InvalidArgument is reported for malformed values supplied by a caller.
	// Nothing is modified when it is returned.
	InvalidArgument Kind = iota + 1
	// RegionMismatch is reported when a child feature is attached to a parent
	// on a different sequence region.
	RegionMismatch
	// ParseError is reported for malformed input.  Streams and indexes may
	// have been partially populated.
	ParseError
	// NotFound is reported for queries against an unknown sequence region.
	NotFound
	// IOError is reported when a source cannot be opened or read.
	IOError
)

var kindNames = map[Kind]string{
	InvalidArgument: "InvalidArgument",
	RegionMismatch:  "RegionMismatch",
	ParseError:      "ParseError",
	NotFound:        "NotFound",
	IOError:         "IOError",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Error is a structured failure carrying a Kind and a human readable cause.
type Error struct {
	Kind  Kind
	cause error
}

func (err *Error) Error() string {
	return fmt.Sprintf("%s: %v", err.Kind, err.cause)
}

// Unwrap returns the underlying cause of err.
func (err *Error) Unwrap() error {
	return err.cause
}

func newError(kind Kind, context string, err error) error {
	if context == "" {
		return &Error{kind, err}
	}
	return &Error{kind, fmt.Errorf("%s: %w", context, err)}
}

// NewInvalidArgumentError returns an InvalidArgument error.
func NewInvalidArgumentError(context string, err error) error {
	return newError(InvalidArgument, context, err)
}

// NewRegionMismatchError returns a RegionMismatch error.
func NewRegionMismatchError(context string, err error) error {
	return newError(RegionMismatch, context, err)
}

// NewParseError returns a ParseError error.
func NewParseError(context string, err error) error {
	return newError(ParseError, context, err)
}

// NewNotFoundError returns a NotFound error.
func NewNotFoundError(context string, err error) error {
	return newError(NotFound, context, err)
}

// NewIOError returns an IOError error.
func NewIOError(context string, err error) error {
	return newError(IOError, context, err)
}

// KindOf returns the kind of the outermost *Error in err's chain, or zero if
// err does not contain one.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
