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

package operation

import (
	"context"
	"io"

	"github.com/rs/zerolog"
	"github.com/walteh/sd-rg/pkg/config"
	"github.com/walteh/sd-rg/pkg/engine"
	"github.com/walteh/sd-rg/pkg/invocation"
	"github.com/walteh/sd-rg/pkg/log"
	"github.com/walteh/sd-rg/pkg/status"
	"gitlab.com/tozd/go/errors"
)

// NoMatchesMessage is reported when nothing matched; it is not an error.
const NoMatchesMessage = "No matches found"

// 🎯 Mode is one of the mutually exclusive ways sd-rg runs
type Mode int

const (
	ModeStream  Mode = iota // stdin to stdout
	ModePreview             // show would-be changes, write nothing
	ModeModify              // rewrite matched files in place
)

// String returns a string representation of Mode
func (m Mode) String() string {
	switch m {
	case ModeStream:
		return "stream"
	case ModePreview:
		return "preview"
	case ModeModify:
		return "modify"
	default:
		return "unknown"
	}
}

// 🔀 SelectMode picks the mode for inv. Stream wins when no paths were given and
// stdin is piped, then preview when requested, then modify.
func SelectMode(inv invocation.Invocation, stdinIsTerminal bool) Mode {
	switch {
	case !inv.HasPaths() && !stdinIsTerminal:
		return ModeStream
	case inv.Preview():
		return ModePreview
	default:
		return ModeModify
	}
}

// 🎮 Operation is a runnable mode
type Operation interface {
	Mode() Mode
	Execute(ctx context.Context) error
}

// 🔧 Options contains everything an operation may need
type Options struct {
	// Invocation is the parsed command line
	Invocation invocation.Invocation
	// Engine performs all matching and substitution
	Engine engine.SearchEngine
	// Files applies substituted content to disk; only modify uses it
	Files status.FileReplacer
	// Console receives user facing output
	Console *log.Logger
	// Config carries preview limits and protect globs; nil means defaults
	Config *config.Config
	// Stdin and Stdout are the process streams used by stream and preview
	Stdin  io.Reader
	Stdout io.Writer
}

// 🏭 New creates the operation for mode
func New(mode Mode, opts Options) (Operation, error) {
	if opts.Engine == nil {
		return nil, errors.Errorf("search engine is required")
	}
	if opts.Config == nil {
		opts.Config = config.Default()
	}

	switch mode {
	case ModeStream:
		if opts.Stdin == nil || opts.Stdout == nil {
			return nil, errors.Errorf("stdin and stdout are required for stream mode")
		}
		return &streamOperation{opts: opts}, nil
	case ModePreview:
		if opts.Console == nil || opts.Stdout == nil {
			return nil, errors.Errorf("console and stdout are required for preview mode")
		}
		return &previewOperation{opts: opts}, nil
	case ModeModify:
		if opts.Console == nil {
			return nil, errors.Errorf("console is required for modify mode")
		}
		if opts.Files == nil {
			return nil, errors.Errorf("file replacer is required for modify mode")
		}
		return &modifyOperation{opts: opts}, nil
	default:
		return nil, errors.Errorf("unknown mode: %d", mode)
	}
}

// engineOptions translates the invocation into the engine request.
func engineOptions(inv invocation.Invocation) engine.Options {
	return engine.Options{
		Pattern:      inv.Pattern(),
		Replacement:  inv.Replacement(),
		FixedStrings: inv.StringMode(),
		IgnoreCase:   inv.IgnoreCase(),
	}
}

// discover runs file discovery. A failed discovery is logged and treated as no
// matches; callers only ever see the matched files.
func discover(ctx context.Context, eng engine.SearchEngine, opts engine.Options, paths []string) []string {
	logger := zerolog.Ctx(ctx)

	d := eng.FindFilesWithMatches(ctx, opts, paths)
	switch d.Outcome {
	case engine.DiscoveryFailed:
		logger.Debug().Err(d.Err).Strs("paths", paths).Msg("file discovery failed, treating as no matches")
	default:
		logger.Debug().Stringer("outcome", d.Outcome).Int("files", len(d.Files)).Msg("file discovery finished")
	}
	return d.Matched()
}
