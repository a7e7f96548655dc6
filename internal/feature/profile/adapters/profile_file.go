// Package adapters はprofileフィーチャーのリポジトリ実装を提供します。
package adapters

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"stock_dashboard/internal/feature/profile/domain/entity"
	"stock_dashboard/internal/feature/profile/usecase"
)

// profileFile はローカルのJSONファイルに1件のプロフィールを保存します。
type profileFile struct {
	path string
}

// Compile-time check to ensure profileFile implements ProfileRepository.
var _ usecase.ProfileRepository = (*profileFile)(nil)

// NewProfileFile は dir/userProfile.json に保存するリポジトリを生成します。
func NewProfileFile(dir string) *profileFile {
	return &profileFile{path: filepath.Join(dir, entity.StorageKey+".json")}
}

// Path は保存先のファイルパスを返します。
func (r *profileFile) Path() string {
	return r.path
}

// Get はファイルからプロフィールを読み込みます。
func (r *profileFile) Get(_ context.Context) (*entity.Profile, error) {
	b, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, usecase.ErrProfileNotFound
		}
		return nil, err
	}
	var p entity.Profile
	if err := json.Unmarshal(b, &p); err != nil {
		return nil, fmt.Errorf("failed to unmarshal profile: %w", err)
	}
	return &p, nil
}

// Save は一時ファイルに書いてからリネームし、途中で失敗しても既存の内容を壊しません。
func (r *profileFile) Save(_ context.Context, p entity.Profile) error {
	b, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to marshal profile: %w", err)
	}
	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, entity.StorageKey+"-*.tmp")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(b); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), r.path)
}
