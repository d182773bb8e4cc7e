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

package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/walteh/sd-rg/pkg/config"
	"github.com/walteh/sd-rg/pkg/invocation"
	"github.com/walteh/sd-rg/pkg/log"
	"github.com/walteh/sd-rg/pkg/operation"
	"github.com/walteh/sd-rg/pkg/status"
	"gitlab.com/tozd/go/errors"
)

// ❌ UsageError is a command line the program cannot act on
type UsageError struct {
	Msg string
}

func (e *UsageError) Error() string {
	return e.Msg
}

func usageError(format string, args ...any) error {
	return errors.WithStack(&UsageError{Msg: fmt.Sprintf(format, args...)})
}

// newRootCmd creates the single sd-rg command
func newRootCmd(env *environment) *cobra.Command {
	var flags invocation.Flags

	cmd := &cobra.Command{
		Use:   "sd-rg [OPTIONS] PATTERN REPLACEMENT [PATH...]",
		Short: "Find and replace across files, powered by ripgrep",
		Args:  cobra.ArbitraryArgs,

		SilenceErrors: true,
		SilenceUsage:  true,

		CompletionOptions: cobra.CompletionOptions{DisableDefaultCmd: true},

		RunE: func(cmd *cobra.Command, args []string) error {
			inv, err := invocation.New(args, flags)
			if errors.Is(err, invocation.ErrMissingArguments) {
				return usageError("%s", invocation.ErrMissingArguments.Error())
			}
			if err != nil {
				return err
			}
			return dispatch(cmd.Context(), env, inv)
		},
	}

	addFlags(cmd.Flags(), &flags)
	cmd.SetFlagErrorFunc(flagError)
	cmd.SetHelpFunc(func(cmd *cobra.Command, _ []string) {
		fmt.Fprint(cmd.OutOrStdout(), FormatVersion()+"\n"+usageText())
	})

	return cmd
}

// addFlags defines the command line options on fs and binds them to f
func addFlags(fs *pflag.FlagSet, f *invocation.Flags) {
	fs.SetInterspersed(true)
	fs.SortFlags = false

	fs.BoolVarP(&f.Preview, "preview", "p", false, "show what would change without modifying any file")
	fs.BoolVarP(&f.StringMode, "string-mode", "s", false, "treat PATTERN as a literal string, not a regular expression")
	fs.BoolVarP(&f.StringMode, "fixed-strings", "F", false, "alias of --string-mode")
	fs.StringVarP(&f.RegexFlags, "flags", "f", "", "regex flags; i enables case-insensitive matching")
}

// flagError turns pflag's parse failures into usage errors
func flagError(_ *cobra.Command, err error) error {
	msg := err.Error()
	switch {
	case strings.HasPrefix(msg, "unknown flag: "):
		return usageError("unknown option: %s", strings.TrimPrefix(msg, "unknown flag: "))
	case strings.HasPrefix(msg, "unknown shorthand flag: "):
		if i := strings.LastIndex(msg, " in "); i >= 0 {
			return usageError("unknown option: %s", msg[i+len(" in "):])
		}
	}
	return usageError("%s", msg)
}

// dispatch loads the config, picks the mode and runs it
func dispatch(ctx context.Context, env *environment, inv invocation.Invocation) error {
	cfg, err := config.Discover(ctx, env.wd, env.getenv)
	if err != nil {
		return errors.Errorf("loading config: %w", err)
	}

	if cfg.Debug {
		debugLogger := zerolog.Ctx(ctx).Level(zerolog.DebugLevel)
		ctx = debugLogger.WithContext(ctx)
	}
	logger := zerolog.Ctx(ctx)
	logger.Debug().Stringer("config", cfg).Stringer("invocation", inv).Msg("starting")

	ctx = log.NewContext(ctx, log.New(env.stdout, *logger))

	mode := operation.SelectMode(inv, env.stdinIsTerminal)
	op, err := operation.New(mode, operation.Options{
		Invocation: inv,
		Engine:     env.newEngine(cfg, env.stderr),
		Files:      status.New(),
		Console:    log.FromContext(ctx),
		Config:     cfg,
		Stdin:      env.stdin,
		Stdout:     env.stdout,
	})
	if err != nil {
		return errors.Errorf("creating %s operation: %w", mode, err)
	}

	return operation.NewRunner(logger).Run(ctx, op)
}

func usageText() string {
	return `Usage:
  sd-rg [OPTIONS] PATTERN REPLACEMENT [PATH...]
  sd-rg [OPTIONS] PATTERN -- REPLACEMENT [PATH...]
  command | sd-rg [OPTIONS] PATTERN REPLACEMENT

Modes:
  Piped stdin with no PATH rewrites stdin to stdout.
  With --preview, matches are shown and nothing is written.
  Otherwise every matching file under PATH (default ".") is rewritten in place.

Options:
  -p, --preview             show what would change without modifying any file
  -s, --string-mode         treat PATTERN as a literal string
  -F, --fixed-strings       alias of --string-mode
  -f, --flags FLAGS         regex flags; i enables case-insensitive matching
  -h, --help                show this help
      --                    treat everything after it as positional

Replacement:
  $1, $2, ...               numbered capture groups
  $name, ${name}            named capture groups

Configuration is read from .sd-rg.yaml, .sd-rg.yml or .sd-rg.hcl in the
working directory, or from the file named by SD_RG_CONFIG.
`
}
