package poll

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *FileStore {
	t.Helper()
	return NewFileStore(t.TempDir())
}

func countPollFiles(t *testing.T, dataDir string) int {
	t.Helper()
	count := 0
	err := filepath.WalkDir(dataDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			count++
		}
		return nil
	})
	if err != nil && !os.IsNotExist(err) {
		t.Fatalf("failed to walk data dir: %v", err)
	}
	return count
}

func TestCreateNormalizesOptions(t *testing.T) {
	store := newTestStore(t)

	p, err := store.Create(Draft{
		Name: "ランチ",
		Data: []string{"A", "A", "B", ""},
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	want := []string{"A", "B"}
	if len(p.Data) != len(want) {
		t.Fatalf("unexpected options: %#v", p.Data)
	}
	for i, opt := range want {
		if p.Data[i] != opt {
			t.Fatalf("data[%d] = %q, want %q", i, p.Data[i], opt)
		}
	}
	if p.ID == "" {
		t.Fatal("expected generated poll ID")
	}
	if p.CreatedAt == 0 {
		t.Fatal("expected created_at to be set")
	}

	loaded, err := store.Load(p.ID)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if loaded.Name != "ランチ" {
		t.Fatalf("unexpected name: %q", loaded.Name)
	}
}

func TestCreateEmptyOptionsFails(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Create(Draft{
		Name: "タイトルのみ",
		Data: []string{"", "   ", ""},
	})
	if !IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}

	if n := countPollFiles(t, store.dataDir); n != 0 {
		t.Fatalf("expected no files written, found %d", n)
	}
}

func TestCreateEmptyNameFails(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Create(Draft{
		Name: "  ",
		Data: []string{"A", "B"},
	})
	if !IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestLoadMissingPoll(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Load(newPollID())
	if !IsNotFound(err) {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestLoadRejectsInvalidID(t *testing.T) {
	store := newTestStore(t)

	for _, id := range []string{"", "short", "../../etc/passwd", "ZZZZZZZZZZZZZZZZZZZZZZZZZZZZZZZZ"} {
		if _, err := store.Load(id); !IsNotFound(err) {
			t.Fatalf("id %q: expected not found error, got %v", id, err)
		}
	}
}

func TestLoadCorruptFile(t *testing.T) {
	store := newTestStore(t)

	id := newPollID()
	path, err := store.pathFor(id)
	if err != nil {
		t.Fatalf("pathFor returned error: %v", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		t.Fatalf("failed to create dirs: %v", err)
	}
	if err := os.WriteFile(path, []byte("{not json"), 0o640); err != nil {
		t.Fatalf("failed to write corrupt file: %v", err)
	}

	var apiErr *Error
	_, err = store.Load(id)
	if !errors.As(err, &apiErr) || apiErr.Code != CodeCorruptData {
		t.Fatalf("expected corrupt data error, got %v", err)
	}
}

func TestSaveAndReloadVotes(t *testing.T) {
	store := newTestStore(t)

	p, err := store.Create(Draft{Name: "集計", Data: []string{"A", "B"}})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	p.Apply("A")
	p.Apply("A")
	p.Apply("B")
	if err := store.Save(p); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	loaded, err := store.Load(p.ID)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if loaded.Votes["A"] != 2 || loaded.Votes["B"] != 1 {
		t.Fatalf("unexpected votes: %#v", loaded.Votes)
	}
}

func TestSweepExpired(t *testing.T) {
	store := newTestStore(t)

	old, err := store.Create(Draft{Name: "古い集計", Data: []string{"A"}})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	fresh, err := store.Create(Draft{Name: "新しい集計", Data: []string{"A"}})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	oldPath, _ := store.pathFor(old.ID)
	past := time.Now().Add(-48 * time.Hour)
	if err := os.Chtimes(oldPath, past, past); err != nil {
		t.Fatalf("failed to backdate file: %v", err)
	}

	removed, err := store.SweepExpired(24 * time.Hour)
	if err != nil {
		t.Fatalf("SweepExpired returned error: %v", err)
	}
	if removed != 1 {
		t.Fatalf("removed = %d, want 1", removed)
	}

	if _, err := store.Load(old.ID); !IsNotFound(err) {
		t.Fatalf("expected old poll to be removed, got %v", err)
	}
	if _, err := store.Load(fresh.ID); err != nil {
		t.Fatalf("expected fresh poll to survive, got %v", err)
	}
}

func TestSweepExpiredMissingDir(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "does-not-exist"))

	removed, err := store.SweepExpired(time.Hour)
	if err != nil {
		t.Fatalf("SweepExpired returned error: %v", err)
	}
	if removed != 0 {
		t.Fatalf("removed = %d, want 0", removed)
	}
}

func TestDeleteMissingPoll(t *testing.T) {
	store := newTestStore(t)

	if err := store.Delete(newPollID()); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
}
