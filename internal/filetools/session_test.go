package filetools

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// startSession wires a Server and Client together over in-process pipes and
// returns the client plus a done channel carrying the server's exit error.
func startSession(t *testing.T) (*Client, chan error) {
	t.Helper()

	clientReader, serverWriter := io.Pipe()
	serverReader, clientWriter := io.Pipe()

	done := make(chan error, 1)
	go func() {
		done <- NewServer().Serve(context.Background(), serverReader, serverWriter)
	}()

	t.Cleanup(func() {
		clientWriter.Close()
		<-done
	})

	return NewClient(clientReader, clientWriter, clientWriter), done
}

func TestSessionHandshake(t *testing.T) {
	t.Parallel()

	client, _ := startSession(t)

	names, err := client.ListTools(context.Background())
	if err != nil {
		t.Fatalf("ListTools: %v", err)
	}
	if len(names) != 2 || names[0] != "create_file" || names[1] != "list_files" {
		t.Errorf("tools = %v", names)
	}
}

func TestSessionCreateAndList(t *testing.T) {
	t.Parallel()

	client, _ := startSession(t)
	ctx := context.Background()
	dir := t.TempDir()

	result, err := client.Call(ctx, "create_file", map[string]string{
		"file_path": filepath.Join(dir, "example.txt"),
		"content":   "Sample content",
	})
	if err != nil {
		t.Fatalf("create_file: %v", err)
	}
	if !strings.HasPrefix(result, "Successfully created file: ") {
		t.Errorf("create_file result = %q", result)
	}

	data, err := os.ReadFile(filepath.Join(dir, "example.txt"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "Sample content" {
		t.Errorf("file content = %q", data)
	}

	listing, err := client.Call(ctx, "list_files", map[string]string{"directory": dir})
	if err != nil {
		t.Fatalf("list_files: %v", err)
	}
	if !strings.Contains(listing, "example.txt (14 bytes)") {
		t.Errorf("listing = %q", listing)
	}
}

func TestSessionErrors(t *testing.T) {
	t.Parallel()

	client, _ := startSession(t)
	ctx := context.Background()

	if _, err := client.Call(ctx, "delete_everything", nil); err == nil {
		t.Error("expected error for unknown tool")
	}
	if _, err := client.Call(ctx, "create_file", map[string]string{"content": "x"}); err == nil {
		t.Error("expected error for missing file_path")
	}

	// Errors do not poison the session; subsequent calls still work.
	if _, err := client.ListTools(ctx); err != nil {
		t.Errorf("session unusable after error: %v", err)
	}
}

func TestSessionCleanShutdownOnEOF(t *testing.T) {
	t.Parallel()

	serverReader, clientWriter := io.Pipe()

	done := make(chan error, 1)
	go func() {
		done <- NewServer().Serve(context.Background(), serverReader, io.Discard)
	}()

	clientWriter.Close()
	if err := <-done; err != nil {
		t.Errorf("EOF shutdown returned %v, want nil", err)
	}
}
