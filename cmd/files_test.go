// ABOUTME: Tests for the upload and files commands
// ABOUTME: Verifies single and batch uploads and downloads to disk

package cmd

import (
	"bytes"
	"context"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestUpload_Single(t *testing.T) {
	api := newFakeAPI()
	api.handle("POST /api/files/upload", http.StatusOK,
		`{"fileName":"notes.txt","fileUrl":"http://cdn.example.com/notes.txt","fileType":"text/plain","size":2048}`)
	dir := setupCmdTest(t, api)
	signInAs(t, dir, "tok-1", aliceJSON)
	path := writeTempFile(t, "notes.txt", "hello")

	var buf bytes.Buffer
	if exitCode := runUpload(context.Background(), &buf, []string{path}); exitCode != 0 {
		t.Fatalf("expected exit code 0, got %d: %s", exitCode, buf.String())
	}
	for _, expected := range []string{"notes.txt", "http://cdn.example.com/notes.txt", "2.0 kB"} {
		if !strings.Contains(buf.String(), expected) {
			t.Errorf("expected output to contain %q, got %q", expected, buf.String())
		}
	}

	body := api.last().body
	if !strings.Contains(body, `name="file"; filename="notes.txt"`) {
		t.Errorf("expected multipart field file, got %s", body)
	}
}

func TestUpload_Multiple(t *testing.T) {
	api := newFakeAPI()
	api.handle("POST /api/files/upload-multiple", http.StatusOK,
		`[{"fileName":"a.txt","fileUrl":"u/a"},{"fileName":"b.txt","fileUrl":"u/b"}]`)
	dir := setupCmdTest(t, api)
	signInAs(t, dir, "tok-1", aliceJSON)
	paths := []string{writeTempFile(t, "a.txt", "a"), writeTempFile(t, "b.txt", "b")}

	var buf bytes.Buffer
	if exitCode := runUpload(context.Background(), &buf, paths); exitCode != 0 {
		t.Fatalf("expected exit code 0, got %d: %s", exitCode, buf.String())
	}
	if api.count() != 1 {
		t.Errorf("expected one batch request, got %d", api.count())
	}
	if got := strings.Count(api.last().body, `name="files"`); got != 2 {
		t.Errorf("expected two files parts, got %d", got)
	}
}

func TestUpload_MissingFile(t *testing.T) {
	api := newFakeAPI()
	setupCmdTest(t, api)

	var buf bytes.Buffer
	if exitCode := runUpload(context.Background(), &buf, []string{filepath.Join(t.TempDir(), "nope.png")}); exitCode != 1 {
		t.Errorf("expected exit code 1, got %d", exitCode)
	}
	if api.count() != 0 {
		t.Error("expected nothing sent")
	}
}

func TestDownload(t *testing.T) {
	api := newFakeAPI()
	api.handle("GET /api/files/download/cover.png", http.StatusOK, "PNGDATA")
	setupCmdTest(t, api)
	target := filepath.Join(t.TempDir(), "out.png")
	downloadOutput = target

	var buf bytes.Buffer
	if exitCode := runDownload(context.Background(), &buf, "cover.png"); exitCode != 0 {
		t.Fatalf("expected exit code 0, got %d: %s", exitCode, buf.String())
	}
	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "PNGDATA" {
		t.Errorf("expected file content, got %q", data)
	}
	if !strings.Contains(buf.String(), "Saved "+target) {
		t.Errorf("expected confirmation, got %q", buf.String())
	}
}

func TestDownload_NotFoundLeavesNoFile(t *testing.T) {
	api := newFakeAPI()
	api.handle("GET /api/files/download/missing.png", http.StatusNotFound, `{"message":"File not found"}`)
	setupCmdTest(t, api)
	target := filepath.Join(t.TempDir(), "out.png")
	downloadOutput = target

	var buf bytes.Buffer
	if exitCode := runDownload(context.Background(), &buf, "missing.png"); exitCode != 2 {
		t.Errorf("expected exit code 2, got %d", exitCode)
	}
	if _, err := os.Stat(target); !os.IsNotExist(err) {
		t.Error("expected partial file removed")
	}
}

func TestDownload_Stdout(t *testing.T) {
	api := newFakeAPI()
	api.handle("GET /api/files/download/a.txt", http.StatusOK, "contents")
	setupCmdTest(t, api)
	downloadOutput = "-"

	var buf bytes.Buffer
	if exitCode := runDownload(context.Background(), &buf, "a.txt"); exitCode != 0 {
		t.Fatalf("expected exit code 0, got %d", exitCode)
	}
	if buf.String() != "contents" {
		t.Errorf("expected raw contents, got %q", buf.String())
	}
}

func TestFileDelete(t *testing.T) {
	api := newFakeAPI()
	api.handle("DELETE /api/files/a.txt", http.StatusOK, "")
	dir := setupCmdTest(t, api)
	signInAs(t, dir, "tok-1", aliceJSON)
	assumeYes = true

	var buf bytes.Buffer
	if exitCode := runFileDelete(context.Background(), &buf, strings.NewReader(""), "a.txt"); exitCode != 0 {
		t.Fatalf("expected exit code 0, got %d: %s", exitCode, buf.String())
	}
	if !strings.Contains(buf.String(), "Deleted a.txt") {
		t.Errorf("expected confirmation, got %q", buf.String())
	}
}
