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
	"github.com/walteh/sd-rg/pkg/engine"
	"github.com/walteh/sd-rg/pkg/log"
	"github.com/walteh/sd-rg/pkg/status"
	"gitlab.com/tozd/go/errors"
)

// ✏️ modifyOperation rewrites every matched file in place, one at a time
type modifyOperation struct {
	opts Options
}

func (o *modifyOperation) Mode() Mode { return ModeModify }

// Execute rewrites matched files in discovery order. The first failure stops
// the run; files already rewritten stay rewritten.
func (o *modifyOperation) Execute(ctx context.Context) error {
	logger := zerolog.Ctx(ctx)
	console := o.opts.Console
	files := o.opts.Files
	eopts := engineOptions(o.opts.Invocation)

	matched := discover(ctx, o.opts.Engine, eopts, o.opts.Invocation.ResolvedPaths())
	if len(matched) == 0 {
		console.Info(NoMatchesMessage)
		return nil
	}

	for _, path := range matched {
		if o.opts.Config.IsProtected(path) {
			files.TrackFile(ctx, status.FileRecord{Path: path, Status: status.StatusProtected})
			console.Warningf("skipping protected file %s", path)
			continue
		}

		err := files.ReplaceFile(ctx, path, func(w io.Writer) error {
			return o.opts.Engine.SubstituteFile(ctx, eopts, path, w)
		})
		if errors.Is(err, engine.ErrNoMatches) {
			// changed since discovery; the original is left as it was
			logger.Debug().Str("path", path).Msg("no longer matches, skipping")
			files.TrackFile(ctx, status.FileRecord{Path: path, Status: status.StatusUnchanged})
			continue
		}
		if err != nil {
			return errors.Errorf("replacing %s: %w", path, err)
		}

		files.TrackFile(ctx, status.FileRecord{Path: path, Status: status.StatusModified})
		console.LogFileOperation(ctx, log.FileOperation{Path: path, Action: log.ActionModified})
	}

	console.Summary(files.Count(ctx, status.StatusModified))
	return nil
}
