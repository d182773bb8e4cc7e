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

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"os/exec"
	"strings"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// DefaultBinary is the ripgrep executable looked up on PATH.
const DefaultBinary = "rg"

// ripgrep exits 1 when nothing matched and 2 on errors.
const exitNoMatch = 1

// 🔍 Ripgrep is the SearchEngine backed by an rg subprocess
type Ripgrep struct {
	binary string
	stderr io.Writer
}

var _ SearchEngine = (*Ripgrep)(nil)

// 🏭 NewRipgrep creates an adapter running binary; the engine's stderr goes to stderr
func NewRipgrep(binary string, stderr io.Writer) *Ripgrep {
	if binary == "" {
		binary = DefaultBinary
	}
	if stderr == nil {
		stderr = io.Discard
	}
	return &Ripgrep{binary: binary, stderr: stderr}
}

func (r *Ripgrep) command(ctx context.Context, args []string) *exec.Cmd {
	zerolog.Ctx(ctx).Debug().Str("engine", r.binary).Strs("args", args).Msg("invoking search engine")

	cmd := exec.CommandContext(ctx, r.binary, args...)
	cmd.Stderr = r.stderr
	return cmd
}

// classify turns a finished command's error into ErrNoMatches, *ExitError or a
// wrapped start failure.
func (r *Ripgrep) classify(args []string, err error) error {
	if err == nil {
		return nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if exitErr.ExitCode() == exitNoMatch {
			return errors.WithStack(ErrNoMatches)
		}
		return errors.WithStack(&ExitError{Code: exitErr.ExitCode(), Args: args})
	}

	return errors.Errorf("running search engine %q: %w", r.binary, err)
}

func (r *Ripgrep) FindFilesWithMatches(ctx context.Context, opts Options, paths []string) Discovery {
	args := BuildArgs(RequestDiscovery, opts, paths)

	var stdout bytes.Buffer
	cmd := r.command(ctx, args)
	cmd.Stdout = &stdout

	if err := r.classify(args, cmd.Run()); err != nil {
		if errors.Is(err, ErrNoMatches) {
			return Discovery{Outcome: DiscoveryNoMatches}
		}
		return Discovery{Outcome: DiscoveryFailed, Err: err}
	}

	files := parseFileList(stdout.Bytes())
	if len(files) == 0 {
		return Discovery{Outcome: DiscoveryNoMatches}
	}
	return Discovery{Outcome: DiscoveryFound, Files: files}
}

// parseFileList splits NUL separated paths, dropping empties and duplicates
// while keeping first-seen order.
func parseFileList(out []byte) []string {
	seen := make(map[string]struct{})
	var files []string
	for _, raw := range bytes.Split(out, []byte{0}) {
		path := strings.TrimRight(string(raw), "\r\n")
		if path == "" {
			continue
		}
		if _, ok := seen[path]; ok {
			continue
		}
		seen[path] = struct{}{}
		files = append(files, path)
	}
	return files
}

func (r *Ripgrep) SubstituteStream(ctx context.Context, opts Options, in io.Reader, out io.Writer) error {
	args := BuildArgs(RequestStream, opts, nil)

	src := &lastByteReader{r: in}
	dst := &finalNewlineWriter{w: out}

	cmd := r.command(ctx, args)
	cmd.Stdin = src
	cmd.Stdout = dst

	runErr := cmd.Run()
	if err := dst.finish(src.endsWithNewline()); err != nil && runErr == nil {
		return errors.Errorf("writing output: %w", err)
	}
	return r.classify(args, runErr)
}

func (r *Ripgrep) SubstituteFile(ctx context.Context, opts Options, path string, out io.Writer) error {
	args := BuildArgs(RequestFile, opts, []string{path})

	dst := &finalNewlineWriter{w: out}

	cmd := r.command(ctx, args)
	cmd.Stdout = dst

	runErr := cmd.Run()
	if err := dst.finish(fileEndsWithNewline(path)); err != nil && runErr == nil {
		return errors.Errorf("writing output: %w", err)
	}
	return r.classify(args, runErr)
}

func (r *Ripgrep) PreviewMatches(ctx context.Context, opts Options, paths []string, out io.Writer, maxLines int) (bool, error) {
	args := BuildArgs(RequestPreview, opts, paths)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	cmd := r.command(runCtx, args)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return false, errors.Errorf("creating stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return false, r.classify(args, err)
	}

	truncated, copyErr := copyLines(stdout, out, maxLines)
	if truncated || copyErr != nil {
		// stop the engine instead of draining the rest of its output
		cancel()
	}

	waitErr := cmd.Wait()
	if copyErr != nil {
		return false, errors.Errorf("writing preview: %w", copyErr)
	}
	if truncated {
		return true, nil
	}
	return false, r.classify(args, waitErr)
}

// copyLines copies whole lines from src to dst until maxLines have been written.
// It reports true when src had more to give.
func copyLines(src io.Reader, dst io.Writer, maxLines int) (bool, error) {
	reader := bufio.NewReader(src)
	written := 0
	for {
		line, readErr := reader.ReadString('\n')
		if line != "" {
			if written >= maxLines {
				return true, nil
			}
			if _, err := io.WriteString(dst, line); err != nil {
				return false, err
			}
			written++
		}
		if readErr == io.EOF {
			return false, nil
		}
		if readErr != nil {
			return false, readErr
		}
	}
}
