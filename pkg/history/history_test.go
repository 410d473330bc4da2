package history

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/forest6511/passforge/pkg/generator"
	"github.com/forest6511/passforge/pkg/policy"
	"github.com/forest6511/passforge/pkg/strength"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("failed to open history: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func newResult(value string) *generator.Result {
	p := policy.Default()
	p.Length = len(value)
	pw := generator.Password{Value: value, Mode: policy.ModeFreeForm, Policy: p}
	return &generator.Result{Password: pw, Report: strength.Score(value, pw.Context())}
}

func TestOpen_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "history")

	s, err := Open(dir)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer s.Close()

	info, err := os.Stat(s.Path())
	if err != nil {
		t.Fatalf("database file was not created: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("database permissions = %o, want 600", perm)
	}
}

func TestNewEntry(t *testing.T) {
	r := newResult("aaaa1111AAAA!!!!")
	e := NewEntry(SourceCLI, r)

	if e.ID == uuid.Nil {
		t.Error("ID not set")
	}
	if e.CreatedAt.IsZero() {
		t.Error("CreatedAt not set")
	}
	if e.Source != SourceCLI || e.Mode != policy.ModeFreeForm || e.Length != 16 {
		t.Errorf("entry = %+v", e)
	}
	if e.Score != 80 || e.Label != strength.LabelStrong {
		t.Errorf("Score = %d, Label = %v", e.Score, e.Label)
	}
}

func TestStore_RecordAndList(t *testing.T) {
	ctx := context.Background()
	s := setupTestStore(t)

	first := NewEntry(SourceCLI, newResult("aaaa1111AAAA!!!!"))
	second := NewEntry(SourceMCP, newResult("abcdefgh"))

	for _, e := range []Entry{first, second} {
		if err := s.Record(ctx, e); err != nil {
			t.Fatalf("Record() error = %v", err)
		}
	}

	entries, err := s.List(ctx, 0)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("len(entries) = %d, want 2", len(entries))
	}

	// Newest first.
	got := entries[0]
	if got.ID != second.ID {
		t.Errorf("entries[0].ID = %v, want %v", got.ID, second.ID)
	}
	if got.Source != SourceMCP || got.Score != 35 || got.Label != strength.LabelWeak {
		t.Errorf("entries[0] = %+v", got)
	}
	if !got.CreatedAt.Equal(second.CreatedAt) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, second.CreatedAt)
	}
	if len(got.Deductions) != 3 || got.Deductions[0].Rule != strength.RuleSequential {
		t.Errorf("Deductions = %+v", got.Deductions)
	}

	if entries[1].ID != first.ID || entries[1].EntropyBits != first.EntropyBits {
		t.Errorf("entries[1] = %+v, want %+v", entries[1], first)
	}
}

func TestStore_RecordFillsDefaults(t *testing.T) {
	ctx := context.Background()
	s := setupTestStore(t)

	before := time.Now().UTC().Add(-time.Second)
	if err := s.Record(ctx, Entry{Source: SourceCLI, Mode: policy.ModeSegmented, Length: 20}); err != nil {
		t.Fatal(err)
	}

	entries, err := s.List(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("len(entries) = %d, want 1", len(entries))
	}
	if entries[0].ID == uuid.Nil {
		t.Error("ID not filled in")
	}
	if entries[0].CreatedAt.Before(before) {
		t.Errorf("CreatedAt = %v, want after %v", entries[0].CreatedAt, before)
	}
	if entries[0].Deductions == nil {
		t.Error("Deductions should decode as an empty slice")
	}
}

func TestStore_ListLimit(t *testing.T) {
	ctx := context.Background()
	s := setupTestStore(t)

	for i := 0; i < 5; i++ {
		if err := s.Record(ctx, NewEntry(SourceCLI, newResult("Xk9#mP2$vL7@qR4&"))); err != nil {
			t.Fatal(err)
		}
	}

	tests := []struct {
		limit int
		want  int
	}{
		{0, 5},
		{3, 3},
		{10, 5},
	}

	for _, tt := range tests {
		entries, err := s.List(ctx, tt.limit)
		if err != nil {
			t.Fatalf("List(%d) error = %v", tt.limit, err)
		}
		if len(entries) != tt.want {
			t.Errorf("List(%d) returned %d entries, want %d", tt.limit, len(entries), tt.want)
		}
	}

	if _, err := s.List(ctx, -1); !errors.Is(err, ErrInvalidLimit) {
		t.Errorf("List(-1) error = %v, want %v", err, ErrInvalidLimit)
	}
}

func TestStore_Clear(t *testing.T) {
	ctx := context.Background()
	s := setupTestStore(t)

	for i := 0; i < 3; i++ {
		if err := s.Record(ctx, NewEntry(SourceCLI, newResult("Xk9#mP2$vL7@qR4&"))); err != nil {
			t.Fatal(err)
		}
	}

	removed, err := s.Clear(ctx)
	if err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	if removed != 3 {
		t.Errorf("Clear() removed %d, want 3", removed)
	}

	count, err := s.Count(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if count != 0 {
		t.Errorf("Count() = %d after Clear, want 0", count)
	}
}

func TestStore_NeverStoresPassword(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	s, err := Open(dir)
	if err != nil {
		t.Fatal(err)
	}

	const secret = "Zq8#Lm4$Tv2@Wx6&"
	if err := s.Record(ctx, NewEntry(SourceCLI, newResult(secret))); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	files, err := filepath.Glob(filepath.Join(dir, FileName+"*"))
	if err != nil {
		t.Fatal(err)
	}
	for _, f := range files {
		content, err := os.ReadFile(f)
		if err != nil {
			t.Fatal(err)
		}
		if bytes.Contains(content, []byte(secret)) {
			t.Errorf("%s contains the password", filepath.Base(f))
		}
	}
}
