// Copyright 2023 Google Inc. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS-IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package s2builder

import (
	"errors"
	"fmt"
)

// ErrorCode classifies the failures reported by Builder.Build and by layers.
type ErrorCode int

const (
	// CodeOK is never carried by a returned Error.
	CodeOK ErrorCode = iota
	// CodeBuilderInvalidOptions reports an inconsistent option set, or a
	// Graph method called on a graph built with incompatible GraphOptions.
	CodeBuilderInvalidOptions
	// CodeBuilderInvalidInput reports NaN or infinite input coordinates.
	CodeBuilderInvalidInput
	// CodeBuilderSnapRadiusTooSmall reports a snap function that moved a
	// vertex further than its own snap radius.
	CodeBuilderSnapRadiusTooSmall
	// CodeBuilderSnapIterationLimit reports that extra site selection did
	// not converge within Options.MaxSnapIterations.
	CodeBuilderSnapIterationLimit
	CodeBuilderMissingExpectedSiblingEdges
	CodeBuilderUnexpectedDegenerateEdge
	CodeBuilderEdgesDoNotFormLoops
	CodeBuilderEdgesDoNotFormPolyline
	CodeBuilderIsFullPredicateNotSpecified
)

var errorCodeNames = map[ErrorCode]string{
	CodeOK:                                 "OK",
	CodeBuilderInvalidOptions:              "BUILDER_INVALID_OPTIONS",
	CodeBuilderInvalidInput:                "BUILDER_INVALID_INPUT",
	CodeBuilderSnapRadiusTooSmall:          "BUILDER_SNAP_RADIUS_TOO_SMALL",
	CodeBuilderSnapIterationLimit:          "BUILDER_SNAP_ITERATION_LIMIT",
	CodeBuilderMissingExpectedSiblingEdges: "BUILDER_MISSING_EXPECTED_SIBLING_EDGES",
	CodeBuilderUnexpectedDegenerateEdge:    "BUILDER_UNEXPECTED_DEGENERATE_EDGE",
	CodeBuilderEdgesDoNotFormLoops:         "BUILDER_EDGES_DO_NOT_FORM_LOOPS",
	CodeBuilderEdgesDoNotFormPolyline:      "BUILDER_EDGES_DO_NOT_FORM_POLYLINE",
	CodeBuilderIsFullPredicateNotSpecified: "BUILDER_IS_FULL_PREDICATE_NOT_SPECIFIED",
}

func (c ErrorCode) String() string {
	if s, ok := errorCodeNames[c]; ok {
		return s
	}
	return fmt.Sprintf("ErrorCode(%d)", int(c))
}

// Error is the error type produced by the builder, its graphs and its layers.
type Error struct {
	Code ErrorCode
	Text string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%v: %s", e.Code, e.Text)
}

func errorf(code ErrorCode, format string, args ...interface{}) *Error {
	return &Error{Code: code, Text: fmt.Sprintf(format, args...)}
}

// CodeOf returns the code of the first *Error found in err's chain, CodeOK
// if err is nil, or -1 if err carries no builder error.
func CodeOf(err error) ErrorCode {
	if err == nil {
		return CodeOK
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return -1
}
