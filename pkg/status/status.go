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

package status

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// 📊 FileStatus represents what happened to a file during a run
type FileStatus int

const (
	StatusUnknown   FileStatus = iota
	StatusModified             // content replaced
	StatusUnchanged            // engine produced no substitution
	StatusProtected            // skipped by a protect glob
)

// String returns a string representation of FileStatus
func (s FileStatus) String() string {
	switch s {
	case StatusModified:
		return "modified"
	case StatusUnchanged:
		return "unchanged"
	case StatusProtected:
		return "protected"
	default:
		return "unknown"
	}
}

// 📄 FileRecord is the outcome for a single file
type FileRecord struct {
	Path   string
	Status FileStatus
}

// ContentFunc writes the new content of a file.
type ContentFunc func(w io.Writer) error

// 💾 FileReplacer replaces file contents and tracks outcomes
type FileReplacer interface {
	// ReplaceFile streams new content into a sibling temp file and renames it over path.
	ReplaceFile(ctx context.Context, path string, content ContentFunc) error
	TrackFile(ctx context.Context, record FileRecord)
	ListFiles(ctx context.Context) []FileRecord
	Count(ctx context.Context, status FileStatus) int
}

// 🔧 Manager implements FileReplacer on the local filesystem
type Manager struct {
	mu      sync.Mutex
	records []FileRecord
}

var _ FileReplacer = (*Manager)(nil)

// 🏭 New creates a new status manager
func New() *Manager {
	return &Manager{}
}

func (m *Manager) ReplaceFile(ctx context.Context, path string, content ContentFunc) error {
	logger := zerolog.Ctx(ctx)

	info, err := os.Stat(path)
	if err != nil {
		return errors.Errorf("checking file: %w", err)
	}
	if !info.Mode().IsRegular() {
		return errors.Errorf("not a regular file: %s", path)
	}

	dir, base := filepath.Split(path)
	if dir == "" {
		dir = "."
	}

	tmp, err := os.CreateTemp(dir, tempPattern(base))
	if err != nil {
		return errors.Errorf("creating temp file: %w", err)
	}
	tempPath := tmp.Name()
	logger.Debug().Str("path", path).Str("temp", tempPath).Msg("writing replacement")

	// the temp file must be gone on every failure path
	committed := false
	defer func() {
		if !committed {
			tmp.Close()
			os.Remove(tempPath)
		}
	}()

	if err := content(tmp); err != nil {
		return err
	}
	if err := tmp.Chmod(info.Mode().Perm()); err != nil {
		return errors.Errorf("setting temp file mode: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return errors.Errorf("syncing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return errors.Errorf("closing temp file: %w", err)
	}

	// Rename temp file to target (atomic operation)
	if err := os.Rename(tempPath, path); err != nil {
		return errors.Errorf("renaming temp file: %w", err)
	}
	committed = true

	return nil
}

// tempPattern names the sibling temp file. It is hidden so engines skip it, and
// CreateTemp only randomizes the last '*'.
func tempPattern(base string) string {
	return "." + base + ".sd-rg-*"
}

// Record tracking

func (m *Manager) TrackFile(ctx context.Context, record FileRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.records = append(m.records, record)
	zerolog.Ctx(ctx).Debug().Str("path", record.Path).Stringer("status", record.Status).Msg("tracked file")
}

func (m *Manager) ListFiles(ctx context.Context) []FileRecord {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]FileRecord, len(m.records))
	copy(out, m.records)
	return out
}

func (m *Manager) Count(ctx context.Context, status FileStatus) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for _, r := range m.records {
		if r.Status == status {
			n++
		}
	}
	return n
}
