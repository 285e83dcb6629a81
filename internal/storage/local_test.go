package storage

import (
	"bytes"
	"context"
	"os"
	"sort"
	"testing"
)

func newLocalStorage(t *testing.T) (*LocalFileStorage, func()) {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "store-storage-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	store, err := NewLocalFileStorage(tmpDir, "http://localhost:8080/files")
	if err != nil {
		os.RemoveAll(tmpDir)
		t.Fatalf("Failed to create storage: %v", err)
	}
	return store, func() { os.RemoveAll(tmpDir) }
}

func TestLocalFileStorage_RoundTrip(t *testing.T) {
	store, cleanup := newLocalStorage(t)
	defer cleanup()
	ctx := context.Background()

	data := []byte("conteúdo da imagem")
	if err := store.Store(ctx, "product-images/foto.jpg", data, nil); err != nil {
		t.Fatalf("Failed to store: %v", err)
	}

	exists, err := store.Exists(ctx, "product-images/foto.jpg")
	if err != nil {
		t.Fatalf("Failed to check: %v", err)
	}
	if !exists {
		t.Fatal("Expected stored file to exist")
	}

	got, err := store.Retrieve(ctx, "product-images/foto.jpg")
	if err != nil {
		t.Fatalf("Failed to retrieve: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Errorf("Retrieved content differs: %q", got)
	}

	if err := store.Delete(ctx, "product-images/foto.jpg"); err != nil {
		t.Fatalf("Failed to delete: %v", err)
	}
	exists, err = store.Exists(ctx, "product-images/foto.jpg")
	if err != nil {
		t.Fatalf("Failed to check: %v", err)
	}
	if exists {
		t.Error("Expected file to be gone after delete")
	}

	// deleting a missing file is not an error
	if err := store.Delete(ctx, "product-images/foto.jpg"); err != nil {
		t.Errorf("Expected idempotent delete, got %v", err)
	}
}

func TestLocalFileStorage_List(t *testing.T) {
	store, cleanup := newLocalStorage(t)
	defer cleanup()
	ctx := context.Background()

	for _, key := range []string{"product-images/a.jpg", "product-images/b.jpg", "exports/produtos.csv"} {
		if err := store.Store(ctx, key, []byte("x"), nil); err != nil {
			t.Fatalf("Failed to store %s: %v", key, err)
		}
	}

	keys, err := store.List(ctx, "product-images/")
	if err != nil {
		t.Fatalf("Failed to list: %v", err)
	}
	sort.Strings(keys)
	if len(keys) != 2 || keys[0] != "product-images/a.jpg" || keys[1] != "product-images/b.jpg" {
		t.Errorf("Unexpected keys: %v", keys)
	}

	all, err := store.List(ctx, "")
	if err != nil {
		t.Fatalf("Failed to list all: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("Expected 3 keys, got %v", all)
	}
}

func TestLocalFileStorage_URL(t *testing.T) {
	store, cleanup := newLocalStorage(t)
	defer cleanup()

	if got := store.URL("product-images/foto.jpg"); got != "http://localhost:8080/files/product-images/foto.jpg" {
		t.Errorf("Unexpected URL: %s", got)
	}
}

func TestLocalFileStorage_RejectsTraversal(t *testing.T) {
	store, cleanup := newLocalStorage(t)
	defer cleanup()
	ctx := context.Background()

	for _, key := range []string{"../fora.txt", "/etc/passwd", "a/../../fora.txt"} {
		if err := store.Store(ctx, key, []byte("x"), nil); err == nil {
			t.Errorf("Expected %q to be rejected", key)
		}
		if _, err := store.Retrieve(ctx, key); err == nil {
			t.Errorf("Expected retrieve of %q to be rejected", key)
		}
	}
}
