package filetools

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestCreateFileWritesContent(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")

	msg := CreateFile(path, "hello world")
	if !strings.HasPrefix(msg, "Successfully created file: ") {
		t.Fatalf("unexpected result: %q", msg)
	}
	if !strings.Contains(msg, path) {
		t.Errorf("result missing absolute path: %q", msg)
	}
	if !strings.Contains(msg, "(11 bytes)") {
		t.Errorf("result missing byte size: %q", msg)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "hello world" {
		t.Errorf("file content = %q", data)
	}
}

func TestCreateFileDefaultContent(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "sample.txt")
	CreateFile(path, "")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != DefaultFileContent {
		t.Errorf("file content = %q, want default sample text", data)
	}
}

func TestCreateFileMakesParentDirs(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "a", "b", "c.txt")
	msg := CreateFile(path, "nested")
	if !strings.HasPrefix(msg, "Successfully created file: ") {
		t.Fatalf("unexpected result: %q", msg)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("file not created: %v", err)
	}
}

func TestCreateFileRequiresPath(t *testing.T) {
	t.Parallel()

	msg := CreateFile("", "content")
	if !strings.HasPrefix(msg, "Error creating file: ") {
		t.Errorf("unexpected result: %q", msg)
	}
}

func TestListFilesOrdering(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	for _, name := range []string{"zebra.txt", "alpha.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	for _, name := range []string{"zdir", "adir"} {
		if err := os.Mkdir(filepath.Join(dir, name), 0o755); err != nil {
			t.Fatal(err)
		}
	}

	out := ListFiles(dir)
	lines := strings.Split(out, "\n")
	if len(lines) != 6 {
		t.Fatalf("got %d lines, want 6:\n%s", len(lines), out)
	}
	if !strings.HasPrefix(lines[0], "Contents of ") {
		t.Errorf("missing header: %q", lines[0])
	}

	want := []string{"adir/", "zdir/", "", "alpha.txt (1 bytes)", "zebra.txt (1 bytes)"}
	for i, w := range want {
		if lines[i+1] != w {
			t.Errorf("line %d = %q, want %q", i+1, lines[i+1], w)
		}
	}
}

func TestListFilesEmptyAndMissing(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	if out := ListFiles(dir); !strings.HasPrefix(out, "Directory ") || !strings.HasSuffix(out, " is empty") {
		t.Errorf("empty dir result = %q", out)
	}

	missing := filepath.Join(dir, "nope")
	if out := ListFiles(missing); !strings.HasPrefix(out, "Directory does not exist: ") {
		t.Errorf("missing dir result = %q", out)
	}
}
