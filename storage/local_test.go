package storage

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
)

func newTestStorage(t *testing.T) *LocalStorage {
	t.Helper()
	s, err := NewLocalStorage(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalStorage: %v", err)
	}
	return s
}

func TestLocalSaveOpenRoundTrip(t *testing.T) {
	s := newTestStorage(t)
	payload := []byte("payload bytes for the round trip")

	n, err := s.Save("1/report.pdf", bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if n != int64(len(payload)) {
		t.Fatalf("saved %d bytes, want %d", n, len(payload))
	}

	rc, err := s.Open("1/report.pdf")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer rc.Close()
	got, err := io.ReadAll(rc)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatal("payload mismatch")
	}

	size, err := s.Size("1/report.pdf")
	if err != nil || size != int64(len(payload)) {
		t.Fatalf("Size = %d, %v", size, err)
	}
	if !s.Exists("1/report.pdf") {
		t.Fatal("Exists = false after Save")
	}
}

func TestLocalOpenMissing(t *testing.T) {
	s := newTestStorage(t)
	if _, err := s.Open("nope/missing.bin"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if _, err := s.Size("nope/missing.bin"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestLocalDelete(t *testing.T) {
	s := newTestStorage(t)
	if _, err := s.Save("x.bin", strings.NewReader("data")); err != nil {
		t.Fatal(err)
	}
	if err := s.Delete("x.bin"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if s.Exists("x.bin") {
		t.Fatal("file still exists after Delete")
	}
	// Deleting a missing key is not an error.
	if err := s.Delete("x.bin"); err != nil {
		t.Fatalf("second Delete: %v", err)
	}
}

func TestLocalRejectsTraversal(t *testing.T) {
	s := newTestStorage(t)
	for _, key := range []string{"../escape", "a/../../b", ""} {
		if _, err := s.Save(key, strings.NewReader("x")); err == nil {
			t.Fatalf("Save(%q) succeeded, want error", key)
		}
	}
}
