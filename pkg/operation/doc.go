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

/*
Package operation runs one sd-rg invocation in exactly one of three modes.

	+-------------+      +-------------+      +-------------+
	| Invocation  | ---> |  SelectMode | ---> |  Operation  |
	+-------------+      +-------------+      +------+------+
	                                                 |
	                          +----------------------+---------+
	                          |                      |         |
	                     +----+----+          +------+--+  +---+----+
	                     | stream  |          | preview |  | modify |
	                     +---------+          +---------+  +--------+

🎯 Modes:
  - stream: no paths and piped stdin. One engine call, stdin to stdout.
  - preview: --preview with paths (or a terminal on stdin). Shows matching
    lines and the files that would change. Never writes.
  - modify: the default. Each matched file is rewritten through
    status.FileReplacer, one file at a time, in discovery order.

⚡ Failure handling:
  - no matches anywhere is success, reported as "No matches found"
  - a failed discovery is treated as no matches
  - the first failed rewrite stops the run; earlier files stay rewritten

All matching and substitution is delegated to engine.SearchEngine; this
package never interprets patterns itself.

🔍 Example:

	mode := operation.SelectMode(inv, stdinIsTerminal)
	op, err := operation.New(mode, operation.Options{ ... })
	err = operation.NewRunner(logger).Run(ctx, op)
*/
package operation
