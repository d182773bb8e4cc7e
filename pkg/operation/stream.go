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

	"github.com/rs/zerolog"
	"github.com/walteh/sd-rg/pkg/engine"
	"gitlab.com/tozd/go/errors"
)

// 🌊 streamOperation pipes stdin through the engine to stdout
type streamOperation struct {
	opts Options
}

func (o *streamOperation) Mode() Mode { return ModeStream }

// Execute invokes the engine exactly once. Input without a match is still
// success: it has already been passed through unchanged.
func (o *streamOperation) Execute(ctx context.Context) error {
	err := o.opts.Engine.SubstituteStream(ctx, engineOptions(o.opts.Invocation), o.opts.Stdin, o.opts.Stdout)
	if errors.Is(err, engine.ErrNoMatches) {
		zerolog.Ctx(ctx).Debug().Msg("no matches on stdin")
		return nil
	}
	if err != nil {
		return errors.Errorf("substituting stdin: %w", err)
	}
	return nil
}
