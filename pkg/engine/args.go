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

package engine

// Request is the kind of ripgrep invocation being assembled.
type Request int

const (
	RequestStream Request = iota
	RequestFile
	RequestPreview
	RequestDiscovery
)

// stdinPath makes ripgrep read standard input explicitly.
const stdinPath = "-"

// BuildArgs assembles the ripgrep argument list for a request. The order is
// fixed: output formatting, translated match flags, replacement and pattern,
// then "--" and the paths.
func BuildArgs(req Request, opts Options, paths []string) []string {
	// never let RIPGREP_CONFIG_PATH add annotations to rewritten output
	args := []string{"--no-config"}

	switch req {
	case RequestStream, RequestFile:
		// --text keeps NUL bytes from cutting the output short with a binary notice
		args = append(args, "--passthru", "--text", "--no-filename", "--no-line-number", "--color=never")
	case RequestPreview:
		args = append(args, "--no-heading", "--with-filename", "--line-number", "--color=always")
	case RequestDiscovery:
		args = append(args, "--no-heading", "--with-filename", "--files-with-matches", "--null", "--sort=path", "--color=never")
	}

	if opts.FixedStrings {
		args = append(args, "--fixed-strings")
	}
	if opts.IgnoreCase {
		args = append(args, "--ignore-case")
	}

	if req != RequestDiscovery {
		args = append(args, "--replace="+opts.Replacement)
	}
	args = append(args, "--regexp="+opts.Pattern)

	args = append(args, "--")
	if req == RequestStream {
		return append(args, stdinPath)
	}
	return append(args, paths...)
}
