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

// Package invocation holds the parsed, immutable description of one sd-rg run.
package invocation

import (
	"fmt"
	"strings"

	"gitlab.com/tozd/go/errors"
)

// ErrMissingArguments is returned when PATTERN or REPLACEMENT is absent.
var ErrMissingArguments = errors.Base("PATTERN and REPLACEMENT required")

// DefaultPath is searched when no paths are given outside of stream mode.
const DefaultPath = "."

// 🚩 Flags are the option values collected from the command line
type Flags struct {
	Preview    bool   // -p, --preview
	StringMode bool   // -s, --string-mode, -F, --fixed-strings
	RegexFlags string // -f, --flags
}

// 🎯 Invocation is a single parsed run. It is never mutated after New.
type Invocation struct {
	preview     bool
	stringMode  bool
	flags       string
	pattern     string
	replacement string
	paths       []string
}

// 🏭 New builds an Invocation from positional arguments in order of appearance
func New(positional []string, flags Flags) (Invocation, error) {
	if len(positional) < 2 {
		return Invocation{}, errors.WithStack(ErrMissingArguments)
	}

	paths := make([]string, len(positional)-2)
	copy(paths, positional[2:])

	return Invocation{
		preview:     flags.Preview,
		stringMode:  flags.StringMode,
		flags:       flags.RegexFlags,
		pattern:     positional[0],
		replacement: positional[1],
		paths:       paths,
	}, nil
}

func (i Invocation) Preview() bool       { return i.preview }
func (i Invocation) StringMode() bool    { return i.stringMode }
func (i Invocation) Flags() string       { return i.flags }
func (i Invocation) Pattern() string     { return i.pattern }
func (i Invocation) Replacement() string { return i.replacement }

// IgnoreCase reports whether the regex flags request case-insensitive matching.
// Only the letter i is interpreted; other letters are accepted and ignored.
func (i Invocation) IgnoreCase() bool {
	return strings.ContainsRune(i.flags, 'i')
}

// Paths returns a copy of the explicit paths, possibly empty.
func (i Invocation) Paths() []string {
	out := make([]string, len(i.paths))
	copy(out, i.paths)
	return out
}

// HasPaths reports whether any explicit path was given.
func (i Invocation) HasPaths() bool {
	return len(i.paths) > 0
}

// ResolvedPaths returns the explicit paths, or the current directory when none were given.
func (i Invocation) ResolvedPaths() []string {
	if len(i.paths) == 0 {
		return []string{DefaultPath}
	}
	return i.Paths()
}

// 📝 String returns a short human readable form, used in diagnostics
func (i Invocation) String() string {
	return fmt.Sprintf("%q -> %q in %v (preview=%t string=%t flags=%q)",
		i.pattern, i.replacement, i.paths, i.preview, i.stringMode, i.flags)
}
