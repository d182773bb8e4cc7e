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
	"io"
	"os"

	"github.com/pterm/pterm"
	"github.com/rs/zerolog"
	"github.com/walteh/sd-rg/pkg/config"
	"github.com/walteh/sd-rg/pkg/engine"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/term"
)

// 🌍 environment is everything the process touches outside its own memory
type environment struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	getenv config.Env
	wd     string

	stdinIsTerminal  bool
	stderrIsTerminal bool

	// newEngine builds the search engine once the config is known
	newEngine func(cfg *config.Config, stderr io.Writer) engine.SearchEngine
}

func systemEnvironment() *environment {
	wd, err := os.Getwd()
	if err != nil {
		wd = "."
	}
	return &environment{
		stdin:            os.Stdin,
		stdout:           os.Stdout,
		stderr:           os.Stderr,
		getenv:           os.Getenv,
		wd:               wd,
		stdinIsTerminal:  term.IsTerminal(int(os.Stdin.Fd())),
		stderrIsTerminal: term.IsTerminal(int(os.Stderr.Fd())),
		newEngine: func(cfg *config.Config, stderr io.Writer) engine.SearchEngine {
			return engine.NewRipgrep(cfg.Engine, stderr)
		},
	}
}

func main() {
	os.Exit(run(context.Background(), os.Args[1:], systemEnvironment()))
}

// run executes one invocation and returns the process exit code
func run(ctx context.Context, args []string, env *environment) int {
	if !env.stderrIsTerminal {
		pterm.DisableStyling()
	}

	logger := zerolog.New(zerolog.ConsoleWriter{
		Out:     env.stderr,
		NoColor: !env.stderrIsTerminal,
	}).Level(zerolog.WarnLevel).With().Timestamp().Logger()
	ctx = logger.WithContext(ctx)

	// cobra falls back to os.Args when given nil
	if args == nil {
		args = []string{}
	}

	cmd := newRootCmd(env)
	cmd.SetArgs(args)
	cmd.SetIn(env.stdin)
	cmd.SetOut(env.stdout)
	cmd.SetErr(env.stderr)

	return exitCode(ctx, cmd.ExecuteContext(ctx), env.stderr)
}

// exitCode reports err on stderr and maps it to a process exit code
func exitCode(ctx context.Context, err error, stderr io.Writer) int {
	if err == nil {
		return 0
	}

	var usageErr *UsageError
	if errors.As(err, &usageErr) {
		printError(stderr, usageErr.Error())
		fmt.Fprint(stderr, usageText())
		return 1
	}

	printError(stderr, err.Error())

	var exitErr *engine.ExitError
	if errors.As(err, &exitErr) && exitErr.Code > 0 {
		zerolog.Ctx(ctx).Debug().Int("code", exitErr.Code).Strs("args", exitErr.Args).Msg("search engine failed")
		return exitErr.Code
	}
	return 1
}

func printError(w io.Writer, msg string) {
	fmt.Fprint(w, pterm.Error.Sprintln(msg))
}
