// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package engine describes the external search engine sd-rg delegates to and
// provides the ripgrep adapter that reaches it through a subprocess.
package engine

import (
	"context"
	"fmt"
	"io"

	"gitlab.com/tozd/go/errors"
)

// ErrNoMatches is returned when the engine ran fine but matched nothing.
var ErrNoMatches = errors.Base("no matches")

// 🔧 Options is the translated request handed to the engine
type Options struct {
	Pattern      string
	Replacement  string
	FixedStrings bool // treat Pattern as a literal string
	IgnoreCase   bool
}

// 🔌 SearchEngine is everything sd-rg needs from the search engine
type SearchEngine interface {
	// FindFilesWithMatches lists the distinct files under paths that contain a match.
	FindFilesWithMatches(ctx context.Context, opts Options, paths []string) Discovery

	// SubstituteStream copies in to out, replacing matches and passing everything else through.
	SubstituteStream(ctx context.Context, opts Options, in io.Reader, out io.Writer) error

	// SubstituteFile writes the fully substituted content of a single file to out,
	// with no filename or line number annotations.
	SubstituteFile(ctx context.Context, opts Options, path string, out io.Writer) error

	// PreviewMatches renders at most maxLines colorized, annotated matches with the
	// replacement applied. It reports whether output was cut short.
	PreviewMatches(ctx context.Context, opts Options, paths []string, out io.Writer, maxLines int) (bool, error)
}

// DiscoveryOutcome classifies a FindFilesWithMatches call.
type DiscoveryOutcome int

const (
	DiscoveryFound     DiscoveryOutcome = iota // at least one file matched
	DiscoveryNoMatches                         // engine ran and matched nothing
	DiscoveryFailed                            // engine could not be run or reported an error
)

// String returns a string representation of DiscoveryOutcome
func (o DiscoveryOutcome) String() string {
	switch o {
	case DiscoveryFound:
		return "found"
	case DiscoveryNoMatches:
		return "no-matches"
	case DiscoveryFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// 📄 Discovery is the result of looking for files that contain a match
type Discovery struct {
	Outcome DiscoveryOutcome
	Files   []string
	Err     error // set only for DiscoveryFailed
}

// Matched returns the matched files. A failed discovery collapses to no files;
// this is the only place that collapse happens.
func (d Discovery) Matched() []string {
	if d.Outcome != DiscoveryFound {
		return nil
	}
	return d.Files
}

// ExitError is a non-zero exit from the engine that is not a plain "no matches".
// The engine's own stderr has already been forwarded to the user.
type ExitError struct {
	Code int
	Args []string
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("search engine exited with status %d", e.Code)
}
