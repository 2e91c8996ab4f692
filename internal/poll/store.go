package poll

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Store は集計の永続化を抽象化します。
// ファイル実装を後からデータベース実装に差し替えられるよう、
// 呼び出し側はこのインターフェースのみに依存します。
type Store interface {
	Create(draft Draft) (*Poll, error)
	Load(id string) (*Poll, error)
	Save(p *Poll) error
	Delete(id string) error
	SweepExpired(maxAge time.Duration) (int, error)
}

// FileStore は集計を1件1JSONファイルとしてローカルディスクに保存します。
// 書き込みはアトミックではなく、同時投票は後勝ちになります（既知の制限）。
type FileStore struct {
	dataDir string
	now     func() time.Time
}

// NewFileStore は FileStore を作成します。
func NewFileStore(dataDir string) *FileStore {
	return &FileStore{
		dataDir: dataDir,
		now:     time.Now,
	}
}

// idHexLen は uuid v4 からハイフンを除いた長さです。
const idHexLen = 32

// newPollID は新しい集計IDを生成します。
func newPollID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// pathFor はIDから保存先パスを決定的に算出します。
// 1ディレクトリあたりのファイル数を抑えるため、IDの先頭4文字で2段に分割します。
func (s *FileStore) pathFor(id string) (string, error) {
	if !validPollID(id) {
		return "", newError(CodeNotFound, "集計IDの形式が正しくありません。", nil)
	}
	return filepath.Join(s.dataDir, id[0:2], id[2:4], id+".json"), nil
}

// validPollID はIDが小文字16進数のみで構成されているか検証します。
// パストラバーサル対策も兼ねます。
func validPollID(id string) bool {
	if len(id) != idHexLen {
		return false
	}
	for _, r := range id {
		if (r < '0' || r > '9') && (r < 'a' || r > 'f') {
			return false
		}
	}
	return true
}

// Create は入力を正規化・検証し、新しい集計ファイルを書き込みます。
// 正規化後に選択肢が空の場合はファイルを書かずに検証エラーを返します。
func (s *FileStore) Create(draft Draft) (*Poll, error) {
	name := strings.TrimSpace(draft.Name)
	if name == "" {
		return nil, newError(CodeValidation, "集計のタイトルを入力してください。", nil)
	}

	options := NormalizeOptions(draft.Data)
	if len(options) == 0 {
		return nil, newError(CodeValidation, "選択肢を1行以上入力してください。", nil)
	}

	p := &Poll{
		ID:        newPollID(),
		Name:      name,
		Data:      options,
		CreatedAt: s.now().UnixMilli(),
	}

	if err := s.write(p); err != nil {
		return nil, err
	}

	slog.Info("poll created", "poll_id", p.ID, "options", len(p.Data))
	return p, nil
}

// Load はIDに対応する集計ファイルを読み込みます。
func (s *FileStore) Load(id string) (*Poll, error) {
	path, err := s.pathFor(id)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, newError(CodeNotFound, "指定された集計は存在しません。", err)
		}
		return nil, fmt.Errorf("集計ファイルの読み込みに失敗しました: %w", err)
	}

	var p Poll
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, newError(CodeCorruptData, "集計ファイルを解析できませんでした。", err)
	}
	if p.ID == "" {
		p.ID = id
	}
	return &p, nil
}

// Save は集計を上書き保存します。
func (s *FileStore) Save(p *Poll) error {
	if p == nil || p.ID == "" {
		return fmt.Errorf("poll ID is required")
	}
	return s.write(p)
}

// Delete は集計ファイルを削除します。存在しない場合もエラーにしません。
func (s *FileStore) Delete(id string) error {
	path, err := s.pathFor(id)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("集計ファイルの削除に失敗しました: %w", err)
	}
	return nil
}

// SweepExpired は更新時刻が maxAge より古い集計ファイルを削除し、削除件数を返します。
// 個別ファイルのエラーはログに残してスキップします（ベストエフォート）。
func (s *FileStore) SweepExpired(maxAge time.Duration) (int, error) {
	cutoff := s.now().Add(-maxAge)
	removed := 0

	err := filepath.WalkDir(s.dataDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			slog.Warn("sweep: walk error", "path", path, "error", err)
			return nil
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".json") {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			slog.Warn("sweep: stat error", "path", path, "error", err)
			return nil
		}
		if info.ModTime().After(cutoff) {
			return nil
		}

		if err := os.Remove(path); err != nil {
			slog.Warn("sweep: remove error", "path", path, "error", err)
			return nil
		}
		removed++
		return nil
	})
	if err != nil {
		return removed, err
	}
	return removed, nil
}

func (s *FileStore) write(p *Poll) error {
	path, err := s.pathFor(p.ID)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("保存先ディレクトリの作成に失敗しました: %w", err)
	}

	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("集計のシリアライズに失敗しました: %w", err)
	}
	if err := os.WriteFile(path, data, 0o640); err != nil {
		return fmt.Errorf("集計ファイルの書き込みに失敗しました: %w", err)
	}
	return nil
}

// NormalizeOptions は選択肢の前後空白を除去し、空行と重複を取り除きます。
// 元の出現順は保持されます。
func NormalizeOptions(lines []string) []string {
	seen := make(map[string]struct{}, len(lines))
	options := make([]string, 0, len(lines))
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; ok {
			continue
		}
		seen[trimmed] = struct{}{}
		options = append(options, trimmed)
	}
	return options
}
