package storage

import (
	"context"
	"errors"
	"io"
	"os"
	"strings"
	"testing"
)

func TestLocalStorage_SaveOpenDelete(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalStorage failed: %v", err)
	}
	ctx := context.Background()

	name := "resolutions/5f0c7a52-3e0d-4c55-9d4e-2b8f7c1e9a10"

	if err := s.Save(ctx, name, strings.NewReader("заявление")); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	rc, err := s.Open(ctx, name)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	data, _ := io.ReadAll(rc)
	rc.Close()
	if string(data) != "заявление" {
		t.Errorf("unexpected content %q", data)
	}

	if err := s.Delete(ctx, name); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := s.Open(ctx, name); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected not exist after delete, got %v", err)
	}
	if err := s.Delete(ctx, name); err != nil {
		t.Errorf("deleting a missing object must succeed, got %v", err)
	}
}

func TestLocalStorage_RejectsEscapingNames(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	for _, name := range []string{"", "/", "../secret", "resolutions/../../x"} {
		if err := s.Save(context.Background(), name, strings.NewReader("x")); !errors.Is(err, ErrInvalidName) {
			t.Errorf("Save(%q): expected ErrInvalidName, got %v", name, err)
		}
	}
}

func TestLocalStorage_Cancelled(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := s.Save(ctx, "resolutions/a", strings.NewReader("x")); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
