package utils_test

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/KaramelBytes/surfloom-cli/internal/utils"
)

func TestSafeWriteFileReplaces(t *testing.T) {
	p := filepath.Join(t.TempDir(), "out.json")
	if err := utils.SafeWriteFile(p, []byte("one")); err != nil {
		t.Fatal(err)
	}
	if err := utils.SafeWriteFile(p, []byte("two")); err != nil {
		t.Fatal(err)
	}
	b, err := os.ReadFile(p)
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != "two" {
		t.Fatalf("got %q", b)
	}
	assertOnlyFile(t, filepath.Dir(p), "out.json")
}

func TestSafeWriteFileConcurrentWriters(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "dashboard.json")
	payloads := make([]string, 16)
	for i := range payloads {
		payloads[i] = strings.Repeat(fmt.Sprintf("writer-%02d;", i), 4096)
	}

	var wg sync.WaitGroup
	errc := make(chan error, len(payloads))
	for _, body := range payloads {
		wg.Add(1)
		go func(body string) {
			defer wg.Done()
			errc <- utils.SafeWriteFile(p, []byte(body))
		}(body)
	}
	wg.Wait()
	close(errc)
	for err := range errc {
		if err != nil {
			t.Fatalf("concurrent write: %v", err)
		}
	}

	b, err := os.ReadFile(p)
	if err != nil {
		t.Fatal(err)
	}
	found := false
	for _, body := range payloads {
		if string(b) == body {
			found = true
			break
		}
	}
	if !found {
		t.Fatalf("final content is not any single writer's payload (len %d)", len(b))
	}
	assertOnlyFile(t, dir, "dashboard.json")
}

func assertOnlyFile(t *testing.T, dir, name string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != name {
		names := make([]string, len(entries))
		for i, e := range entries {
			names[i] = e.Name()
		}
		t.Fatalf("dir holds %v, want only %s", names, name)
	}
}

func TestFindUp(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	if err := utils.EnsureDir(nested); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "dashboard.json"), []byte("{}"), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := utils.FindUp(nested, "dashboard.json")
	if err != nil {
		t.Fatal(err)
	}
	if got != root {
		t.Fatalf("FindUp = %s, want %s", got, root)
	}
	if _, err := utils.FindUp(nested, "missing.json"); err == nil {
		t.Fatal("expected error for missing marker")
	}
}
