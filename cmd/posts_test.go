// ABOUTME: Tests for the post commands
// ABOUTME: Verifies filters, output formats, the route guard and draft keeping

package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nilmcc/blogctl/internal/client"
	"github.com/nilmcc/blogctl/internal/drafts"
	"github.com/nilmcc/blogctl/internal/storage"
)

const postsPageJSON = `{"content":[` +
	`{"id":5,"title":"Hello","content":"<p>hi</p>","published":true,"author":{"id":1,"username":"alice"},"category":{"id":3,"name":"Go"}},` +
	`{"id":6,"title":"Pending","content":"x","published":false}` +
	`],"totalElements":12,"totalPages":2,"number":1}`

const postJSON = `{"id":5,"title":"Hello","content":"<p>Hi &amp; welcome</p>","summary":"Intro","published":true,` +
	`"author":{"id":1,"username":"alice"},"category":{"id":3,"name":"Go"},"tags":[{"id":4,"name":"cli"}]}`

func openDrafts(t *testing.T, dir string) *drafts.Store {
	t.Helper()
	return drafts.New(storage.NewFile(dir))
}

func TestPostsList(t *testing.T) {
	tests := []struct {
		name     string
		setup    func()
		pattern  string
		query    string
		expected []string
	}{
		{
			name:     "all posts",
			setup:    func() { postsPage = 2 },
			pattern:  "GET /api/posts",
			query:    "page=1",
			expected: []string{"Hello", "Pending", "alice", "Go", "Page 2 of 2", "12 posts"},
		},
		{
			name:    "by category",
			setup:   func() { postsCategory = 3 },
			pattern: "GET /api/posts/category/3",
			query:   "page=0",
		},
		{
			name:    "by tag",
			setup:   func() { postsTag = 4 },
			pattern: "GET /api/posts/tag/4",
			query:   "size=10",
		},
		{
			name: "by author",
			setup: func() {
				postsUser = 1
				postsSize = 5
			},
			pattern: "GET /api/posts/user/1",
			query:   "size=5",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			api := newFakeAPI()
			api.handle(tc.pattern, http.StatusOK, postsPageJSON)
			setupCmdTest(t, api)
			tc.setup()

			var buf bytes.Buffer
			exitCode := runPostsList(context.Background(), &buf)

			if exitCode != 0 {
				t.Fatalf("expected exit code 0, got %d: %s", exitCode, buf.String())
			}
			if q := api.last().query; !strings.Contains(q, tc.query) {
				t.Errorf("expected query to contain %q, got %q", tc.query, q)
			}
			for _, expected := range tc.expected {
				if !strings.Contains(buf.String(), expected) {
					t.Errorf("expected output to contain %q, got:\n%s", expected, buf.String())
				}
			}
		})
	}
}

func TestPostsList_JSON(t *testing.T) {
	api := newFakeAPI()
	api.handle("GET /api/posts", http.StatusOK, postsPageJSON)
	setupCmdTest(t, api)
	jsonOutput = true

	var buf bytes.Buffer
	if exitCode := runPostsList(context.Background(), &buf); exitCode != 0 {
		t.Fatalf("expected exit code 0, got %d", exitCode)
	}

	var page client.Page[client.Post]
	if err := json.Unmarshal(buf.Bytes(), &page); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if len(page.Content) != 2 || page.TotalElements != 12 {
		t.Errorf("unexpected page: %+v", page)
	}
}

func TestPostsList_Empty(t *testing.T) {
	api := newFakeAPI()
	api.handle("GET /api/posts", http.StatusOK, `{"content":[],"totalElements":0,"totalPages":0}`)
	setupCmdTest(t, api)

	var buf bytes.Buffer
	runPostsList(context.Background(), &buf)
	if !strings.Contains(buf.String(), "No posts found") {
		t.Errorf("expected empty notice, got %q", buf.String())
	}
}

func TestPostsSearch(t *testing.T) {
	api := newFakeAPI()
	api.handle("GET /api/posts/search", http.StatusOK, postsPageJSON)
	setupCmdTest(t, api)

	var buf bytes.Buffer
	if exitCode := runPostsSearch(context.Background(), &buf, "go generics"); exitCode != 0 {
		t.Fatalf("expected exit code 0, got %d", exitCode)
	}
	if q := api.last().query; !strings.Contains(q, "query=go+generics") {
		t.Errorf("expected search query, got %q", q)
	}
}

func TestPostGet_WithComments(t *testing.T) {
	api := newFakeAPI()
	api.handle("GET /api/posts/5", http.StatusOK, postJSON)
	api.handle("GET /api/posts/5/comments", http.StatusOK, `[{"id":1,"content":"first!","postId":5,"author":{"id":2,"username":"bob"}}]`)
	setupCmdTest(t, api)
	postComments = true

	var buf bytes.Buffer
	if exitCode := runPostGet(context.Background(), &buf, "5"); exitCode != 0 {
		t.Fatalf("expected exit code 0, got %d: %s", exitCode, buf.String())
	}
	for _, expected := range []string{"#5 Hello [published]", "by alice", "in Go", "tags: cli", "Hi & welcome", "Comments (1)", "bob: first!"} {
		if !strings.Contains(buf.String(), expected) {
			t.Errorf("expected output to contain %q, got:\n%s", expected, buf.String())
		}
	}
	if strings.Contains(buf.String(), "<p>") {
		t.Error("expected markup stripped from content")
	}
}

func TestPostGet_NotFound(t *testing.T) {
	api := newFakeAPI()
	api.handle("GET /api/posts/99", http.StatusNotFound, `{"message":"Post not found"}`)
	setupCmdTest(t, api)

	var buf bytes.Buffer
	if exitCode := runPostGet(context.Background(), &buf, "99"); exitCode != 2 {
		t.Errorf("expected exit code 2, got %d", exitCode)
	}
	if !strings.Contains(buf.String(), "Post not found") {
		t.Errorf("expected backend message, got %q", buf.String())
	}
}

func TestPostGet_InvalidID(t *testing.T) {
	api := newFakeAPI()
	setupCmdTest(t, api)

	var buf bytes.Buffer
	if exitCode := runPostGet(context.Background(), &buf, "abc"); exitCode != 1 {
		t.Errorf("expected exit code 1, got %d", exitCode)
	}
	if api.count() != 0 {
		t.Error("expected no request")
	}
}

func TestPostCreate_GuestRefused(t *testing.T) {
	api := newFakeAPI()
	setupCmdTest(t, api)
	postOpts.title = "Hello"

	var buf bytes.Buffer
	if exitCode := runPostCreate(context.Background(), &buf, strings.NewReader("")); exitCode != 1 {
		t.Errorf("expected exit code 1, got %d", exitCode)
	}
	if !strings.Contains(buf.String(), "requires signing in") {
		t.Errorf("expected guard message, got %q", buf.String())
	}
	if api.count() != 0 {
		t.Error("expected no request for a refused command")
	}
}

func TestPostCreate_SendsContentAndClearsDraft(t *testing.T) {
	api := newFakeAPI()
	api.handle("POST /api/posts", http.StatusCreated, `{"id":7,"title":"Hello","content":"<p>hi</p>"}`)
	dir := setupCmdTest(t, api)
	signInAs(t, dir, "tok-1", aliceJSON)

	file := filepath.Join(t.TempDir(), "body.html")
	if err := os.WriteFile(file, []byte("<p>hi</p>"), 0600); err != nil {
		t.Fatal(err)
	}
	openDrafts(t, dir).Save("new-1", drafts.Draft{Title: "Old title"})

	postOpts = postOptions{
		title:        "Hello",
		contentFile:  file,
		tagIDs:       []int64{1, 4},
		published:    true,
		publishedSet: true,
		draftKey:     "new-1",
	}

	var buf bytes.Buffer
	if exitCode := runPostCreate(context.Background(), &buf, strings.NewReader("")); exitCode != 0 {
		t.Fatalf("expected exit code 0, got %d: %s", exitCode, buf.String())
	}
	if !strings.Contains(buf.String(), "Created post #7") {
		t.Errorf("expected confirmation, got %q", buf.String())
	}

	req := api.last()
	if req.auth != "Bearer tok-1" {
		t.Errorf("expected bearer token, got %q", req.auth)
	}
	var body map[string]any
	if err := json.Unmarshal([]byte(req.body), &body); err != nil {
		t.Fatal(err)
	}
	if body["title"] != "Hello" || body["content"] != "<p>hi</p>" || body["published"] != true {
		t.Errorf("unexpected body: %s", req.body)
	}

	if _, ok := openDrafts(t, dir).Get("new-1"); ok {
		t.Error("expected draft removed after a successful send")
	}
}

func TestPostCreate_FailureKeepsDraft(t *testing.T) {
	api := newFakeAPI()
	api.handle("POST /api/posts", http.StatusInternalServerError, `{"message":"database unavailable"}`)
	dir := setupCmdTest(t, api)
	signInAs(t, dir, "tok-1", aliceJSON)

	postOpts = postOptions{title: "Hello", contentFile: "-"}

	var buf bytes.Buffer
	exitCode := runPostCreate(context.Background(), &buf, strings.NewReader("plain body"))

	if exitCode != 2 {
		t.Errorf("expected exit code 2, got %d", exitCode)
	}
	if !strings.Contains(buf.String(), "database unavailable") || !strings.Contains(buf.String(), "--draft new-") {
		t.Errorf("expected error and resume hint, got %q", buf.String())
	}

	entries := openDrafts(t, dir).List()
	if len(entries) != 1 {
		t.Fatalf("expected one draft kept, got %d", len(entries))
	}
	if d := entries[0].Draft; d.Title != "Hello" || d.Content != "plain body" {
		t.Errorf("unexpected draft: %+v", d)
	}
}

func TestPostCreate_SaveDraftOnly(t *testing.T) {
	api := newFakeAPI()
	dir := setupCmdTest(t, api)
	signInAs(t, dir, "tok-1", aliceJSON)

	postOpts = postOptions{title: "Later", saveDraft: true}

	var buf bytes.Buffer
	if exitCode := runPostCreate(context.Background(), &buf, strings.NewReader("")); exitCode != 0 {
		t.Fatalf("expected exit code 0, got %d", exitCode)
	}
	if api.count() != 0 {
		t.Error("expected nothing sent")
	}
	if len(openDrafts(t, dir).List()) != 1 {
		t.Error("expected draft saved")
	}
}

func TestPostCreate_UnknownDraft(t *testing.T) {
	dir := setupCmdTest(t, newFakeAPI())
	signInAs(t, dir, "tok-1", aliceJSON)
	postOpts.draftKey = "new-missing"

	var buf bytes.Buffer
	if exitCode := runPostCreate(context.Background(), &buf, strings.NewReader("")); exitCode != 1 {
		t.Errorf("expected exit code 1, got %d", exitCode)
	}
}

func TestPostEdit_OverlaysFlagsOnPost(t *testing.T) {
	api := newFakeAPI()
	api.handle("GET /api/posts/5", http.StatusOK, postJSON)
	api.handle("PUT /api/posts/5", http.StatusOK, `{"id":5,"title":"Renamed"}`)
	dir := setupCmdTest(t, api)
	signInAs(t, dir, "tok-1", aliceJSON)
	postOpts.title = "Renamed"

	var buf bytes.Buffer
	if exitCode := runPostEdit(context.Background(), &buf, strings.NewReader(""), "5"); exitCode != 0 {
		t.Fatalf("expected exit code 0, got %d: %s", exitCode, buf.String())
	}

	var body map[string]any
	if err := json.Unmarshal([]byte(api.last().body), &body); err != nil {
		t.Fatal(err)
	}
	if body["title"] != "Renamed" {
		t.Errorf("expected new title, got %v", body["title"])
	}
	if body["content"] != "<p>Hi &amp; welcome</p>" {
		t.Errorf("expected existing HTML kept, got %v", body["content"])
	}
	if body["categoryId"] != float64(3) {
		t.Errorf("expected category kept, got %v", body["categoryId"])
	}
}

func TestPostEdit_ResumesDraft(t *testing.T) {
	api := newFakeAPI()
	api.handle("PUT /api/posts/5", http.StatusOK, `{"id":5,"title":"From draft"}`)
	dir := setupCmdTest(t, api)
	signInAs(t, dir, "tok-1", aliceJSON)
	openDrafts(t, dir).Save(drafts.EditKey(5), drafts.Draft{Title: "From draft", Content: "saved body"})

	var buf bytes.Buffer
	if exitCode := runPostEdit(context.Background(), &buf, strings.NewReader(""), "5"); exitCode != 0 {
		t.Fatalf("expected exit code 0, got %d: %s", exitCode, buf.String())
	}
	if !strings.Contains(buf.String(), "Resuming draft") {
		t.Errorf("expected resume notice, got %q", buf.String())
	}
	if api.last().method != http.MethodPut {
		t.Errorf("expected the post not to be fetched when a draft exists, last request %s", api.last().method)
	}
	if _, ok := openDrafts(t, dir).Get(drafts.EditKey(5)); ok {
		t.Error("expected draft removed after a successful send")
	}
}

func TestPostDelete(t *testing.T) {
	api := newFakeAPI()
	api.handle("DELETE /api/posts/5", http.StatusNoContent, "")
	dir := setupCmdTest(t, api)
	signInAs(t, dir, "tok-1", aliceJSON)

	var buf bytes.Buffer
	if exitCode := runPostDelete(context.Background(), &buf, strings.NewReader(""), "5"); exitCode != 1 {
		t.Errorf("expected exit code 1 without --yes, got %d", exitCode)
	}
	if api.count() != 0 {
		t.Fatal("expected no request without confirmation")
	}

	assumeYes = true
	buf.Reset()
	if exitCode := runPostDelete(context.Background(), &buf, strings.NewReader(""), "5"); exitCode != 0 {
		t.Fatalf("expected exit code 0, got %d: %s", exitCode, buf.String())
	}
	if !strings.Contains(buf.String(), "Deleted post #5") {
		t.Errorf("expected confirmation, got %q", buf.String())
	}
}

func TestPostInput(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		html     bool
		expected client.RichContent
	}{
		{"plain text", "hello", false, client.RichContent{Text: "hello"}},
		{"markup detected", "  <p>hi</p>", false, client.RichContent{HTML: "  <p>hi</p>"}},
		{"forced html", "hi", true, client.RichContent{HTML: "hi"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			in := postInput(drafts.Draft{Title: " T ", Content: tc.content}, tc.html)
			if in.Title != "T" {
				t.Errorf("expected trimmed title, got %q", in.Title)
			}
			if in.Content != tc.expected {
				t.Errorf("expected %+v, got %+v", tc.expected, in.Content)
			}
		})
	}
}
