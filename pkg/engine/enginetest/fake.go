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

// Package enginetest provides an in-process SearchEngine for tests that must
// not depend on a ripgrep binary.
package enginetest

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/walteh/sd-rg/pkg/engine"
	"gitlab.com/tozd/go/errors"
)

// Call records one method invocation on the fake.
type Call struct {
	Method string
	Opts   engine.Options
	Paths  []string
}

// 🧪 Fake implements engine.SearchEngine with Go's regexp package, line by line
// like ripgrep does. Replacement references ($1, $name, ${name}) are expanded.
type Fake struct {
	mu    sync.Mutex
	calls []Call

	// FailDiscovery makes FindFilesWithMatches report DiscoveryFailed.
	FailDiscovery bool
	// FailSubstitute makes SubstituteFile fail for the given paths.
	FailSubstitute map[string]error
}

var _ engine.SearchEngine = (*Fake)(nil)

// 🏭 New creates a fake engine
func New() *Fake {
	return &Fake{}
}

// Calls returns every recorded call in order.
func (f *Fake) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Call, len(f.calls))
	copy(out, f.calls)
	return out
}

// CallCount returns how many times method was invoked; an empty method counts all calls.
func (f *Fake) CallCount(method string) int {
	n := 0
	for _, c := range f.Calls() {
		if method == "" || c.Method == method {
			n++
		}
	}
	return n
}

func (f *Fake) record(method string, opts engine.Options, paths []string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, Call{Method: method, Opts: opts, Paths: append([]string(nil), paths...)})
}

// Compile builds the regexp the fake matches with.
func Compile(opts engine.Options) (*regexp.Regexp, error) {
	pattern := opts.Pattern
	if opts.FixedStrings {
		pattern = regexp.QuoteMeta(pattern)
	}
	if opts.IgnoreCase {
		pattern = "(?i)" + pattern
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, errors.WithStack(&engine.ExitError{Code: 2})
	}
	return re, nil
}

// Substitute applies opts to content one line at a time and reports whether anything matched.
func Substitute(opts engine.Options, content string) (string, bool, error) {
	re, err := Compile(opts)
	if err != nil {
		return "", false, err
	}

	var b strings.Builder
	matched := false
	for _, line := range splitLines(content) {
		body, eol := strings.CutSuffix(line, "\n")
		if re.MatchString(body) {
			matched = true
			body = replaceAll(re, body, opts.Replacement)
		}
		b.WriteString(body)
		if eol {
			b.WriteString("\n")
		}
	}
	return b.String(), matched, nil
}

func replaceAll(re *regexp.Regexp, src, template string) string {
	var out []byte
	last := 0
	for _, m := range re.FindAllStringSubmatchIndex(src, -1) {
		out = append(out, src[last:m[0]]...)
		out = re.ExpandString(out, template, src, m)
		last = m[1]
	}
	return string(append(out, src[last:]...))
}

func splitLines(content string) []string {
	lines := strings.SplitAfter(content, "\n")
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}
	return lines
}

func (f *Fake) SubstituteStream(ctx context.Context, opts engine.Options, in io.Reader, out io.Writer) error {
	f.record("SubstituteStream", opts, nil)

	content, err := io.ReadAll(in)
	if err != nil {
		return errors.Errorf("reading input: %w", err)
	}
	result, matched, err := Substitute(opts, string(content))
	if err != nil {
		return err
	}
	if _, err := io.WriteString(out, result); err != nil {
		return errors.Errorf("writing output: %w", err)
	}
	if !matched {
		return errors.WithStack(engine.ErrNoMatches)
	}
	return nil
}

func (f *Fake) SubstituteFile(ctx context.Context, opts engine.Options, path string, out io.Writer) error {
	f.record("SubstituteFile", opts, []string{path})

	if err, ok := f.FailSubstitute[path]; ok {
		return err
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return errors.WithStack(&engine.ExitError{Code: 2, Args: []string{path}})
	}
	result, matched, err := Substitute(opts, string(content))
	if err != nil {
		return err
	}
	if _, err := io.WriteString(out, result); err != nil {
		return errors.Errorf("writing output: %w", err)
	}
	if !matched {
		return errors.WithStack(engine.ErrNoMatches)
	}
	return nil
}

func (f *Fake) FindFilesWithMatches(ctx context.Context, opts engine.Options, paths []string) engine.Discovery {
	f.record("FindFilesWithMatches", opts, paths)

	if f.FailDiscovery {
		return engine.Discovery{Outcome: engine.DiscoveryFailed, Err: errors.New("discovery failed")}
	}

	files, err := f.walk(opts, paths)
	if err != nil {
		return engine.Discovery{Outcome: engine.DiscoveryFailed, Err: err}
	}
	if len(files) == 0 {
		return engine.Discovery{Outcome: engine.DiscoveryNoMatches}
	}
	return engine.Discovery{Outcome: engine.DiscoveryFound, Files: files}
}

func (f *Fake) PreviewMatches(ctx context.Context, opts engine.Options, paths []string, out io.Writer, maxLines int) (bool, error) {
	f.record("PreviewMatches", opts, paths)

	re, err := Compile(opts)
	if err != nil {
		return false, err
	}
	files, err := f.walk(opts, paths)
	if err != nil {
		return false, err
	}
	if len(files) == 0 {
		return false, errors.WithStack(engine.ErrNoMatches)
	}

	written := 0
	for _, file := range files {
		content, err := os.ReadFile(file)
		if err != nil {
			return false, errors.Errorf("reading %s: %w", file, err)
		}
		for n, line := range splitLines(string(content)) {
			body := strings.TrimSuffix(line, "\n")
			if !re.MatchString(body) {
				continue
			}
			if written >= maxLines {
				return true, nil
			}
			fmt.Fprintf(out, "%s:%d:%s\n", file, n+1, replaceAll(re, body, opts.Replacement))
			written++
		}
	}
	return false, nil
}

// walk returns the sorted, distinct regular files under paths with at least one matching line.
func (f *Fake) walk(opts engine.Options, paths []string) ([]string, error) {
	re, err := Compile(opts)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	var files []string
	for _, root := range paths {
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if path != root && strings.HasPrefix(d.Name(), ".") {
					return filepath.SkipDir
				}
				return nil
			}
			if !d.Type().IsRegular() || (path != root && strings.HasPrefix(d.Name(), ".")) {
				return nil
			}
			if _, ok := seen[path]; ok {
				return nil
			}
			content, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			for _, line := range splitLines(string(content)) {
				if re.MatchString(strings.TrimSuffix(line, "\n")) {
					seen[path] = struct{}{}
					files = append(files, path)
					break
				}
			}
			return nil
		})
		if err != nil {
			return nil, errors.Errorf("walking %s: %w", root, err)
		}
	}
	sort.Strings(files)
	return files, nil
}
