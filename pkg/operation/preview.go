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
	"fmt"

	"github.com/walteh/sd-rg/pkg/engine"
	"github.com/walteh/sd-rg/pkg/log"
	"gitlab.com/tozd/go/errors"
)

// 🔍 previewOperation shows what modify would do. It never writes a file.
type previewOperation struct {
	opts Options
}

func (o *previewOperation) Mode() Mode { return ModePreview }

func (o *previewOperation) Execute(ctx context.Context) error {
	inv := o.opts.Invocation
	console := o.opts.Console
	eopts := engineOptions(inv)
	paths := inv.ResolvedPaths()
	limit := o.opts.Config.PreviewLines

	console.Header(fmt.Sprintf("preview %q -> %q, no files will be modified", inv.Pattern(), inv.Replacement()))

	truncated, err := o.opts.Engine.PreviewMatches(ctx, eopts, paths, o.opts.Stdout, limit)
	if err != nil && !errors.Is(err, engine.ErrNoMatches) {
		return errors.Errorf("previewing matches: %w", err)
	}
	if truncated {
		console.Infof("preview limited to the first %d lines", limit)
	}

	files := discover(ctx, o.opts.Engine, eopts, paths)
	if len(files) == 0 {
		console.Info(NoMatchesMessage)
		return nil
	}

	console.Section("Files with matches:")
	wouldModify := 0
	for _, path := range files {
		action := log.ActionMatched
		if o.opts.Config.IsProtected(path) {
			action = log.ActionProtected
		} else {
			wouldModify++
		}
		console.LogFileOperation(ctx, log.FileOperation{Path: path, Action: action})
	}

	console.LogNewline()
	console.Infof("%d of %d matched files would be modified, run again without --preview to apply", wouldModify, len(files))
	return nil
}
