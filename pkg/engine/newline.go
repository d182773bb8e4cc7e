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
	"io"
	"os"
)

// ripgrep terminates the last line of passthru output even when the input had
// no final newline. These helpers put the input's ending back.

// finalNewlineWriter holds back a trailing newline until finish decides
// whether it belongs in the output.
type finalNewlineWriter struct {
	w       io.Writer
	pending bool
}

func (f *finalNewlineWriter) Write(p []byte) (int, error) {
	n := len(p)
	if n == 0 {
		return 0, nil
	}
	if f.pending {
		if _, err := f.w.Write([]byte{'\n'}); err != nil {
			return 0, err
		}
		f.pending = false
	}
	if p[n-1] == '\n' {
		p = p[:n-1]
		f.pending = true
	}
	if len(p) > 0 {
		if _, err := f.w.Write(p); err != nil {
			return 0, err
		}
	}
	return n, nil
}

// finish writes the held back newline when keep is true and drops it otherwise.
func (f *finalNewlineWriter) finish(keep bool) error {
	if !f.pending || !keep {
		return nil
	}
	f.pending = false
	_, err := f.w.Write([]byte{'\n'})
	return err
}

// lastByteReader remembers the final byte read through it.
type lastByteReader struct {
	r    io.Reader
	last byte
	read bool
}

func (l *lastByteReader) Read(p []byte) (int, error) {
	n, err := l.r.Read(p)
	if n > 0 {
		l.last = p[n-1]
		l.read = true
	}
	return n, err
}

// endsWithNewline is true for empty input too; there is nothing to trim then.
func (l *lastByteReader) endsWithNewline() bool {
	return !l.read || l.last == '\n'
}

// fileEndsWithNewline reports whether the file at path is empty or ends in a
// newline. Unreadable files report true and are left for the engine to reject.
func fileEndsWithNewline(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return true
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil || info.Size() == 0 {
		return true
	}

	last := make([]byte, 1)
	if _, err := f.ReadAt(last, info.Size()-1); err != nil {
		return true
	}
	return last[0] == '\n'
}
