package localstore

import (
	"errors"
	"testing"

	"github.com/triplog/tracking-system/internal/core/ports"
)

func TestStore_RoundTrip(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	if _, err := s.Get("missing"); !errors.Is(err, ports.ErrKeyNotFound) {
		t.Errorf("expected ErrKeyNotFound, got %v", err)
	}

	if err := s.Set("device_id", []byte("dev-1700000000-cafe0123")); err != nil {
		t.Fatal(err)
	}
	got, err := s.Get("device_id")
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "dev-1700000000-cafe0123" {
		t.Errorf("unexpected value: %s", got)
	}

	if err := s.Set("device_id", []byte("overwritten")); err != nil {
		t.Fatal(err)
	}
	got, _ = s.Get("device_id")
	if string(got) != "overwritten" {
		t.Errorf("overwrite failed: %s", got)
	}
}

func TestStore_DeleteIsIdempotent(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	if err := s.Set("k", []byte("v")); err != nil {
		t.Fatal(err)
	}
	if err := s.Delete("k"); err != nil {
		t.Fatal(err)
	}
	if err := s.Delete("k"); err != nil {
		t.Errorf("deleting a missing key must be a no-op, got %v", err)
	}
	if _, err := s.Get("k"); !errors.Is(err, ports.ErrKeyNotFound) {
		t.Errorf("expected ErrKeyNotFound after delete, got %v", err)
	}
}

func TestStore_SurvivesReopen(t *testing.T) {
	dir := t.TempDir()

	s, err := New(dir)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Set("k", []byte("persisted")); err != nil {
		t.Fatal(err)
	}

	reopened, err := New(dir)
	if err != nil {
		t.Fatal(err)
	}
	got, err := reopened.Get("k")
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "persisted" {
		t.Errorf("value lost across reopen: %s", got)
	}
}
