package tool

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openagent-dev/openagent/internal/event"
	"github.com/openagent-dev/openagent/internal/permission"
)

func testContext(t *testing.T) *Context {
	t.Helper()
	return &Context{WorkDir: t.TempDir(), CallID: "call_test"}
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestReadTool(t *testing.T) {
	event.Reset()
	tc := testContext(t)
	writeFile(t, tc.WorkDir, "notes.txt", "alpha\nbeta\ngamma\n")

	res, err := NewReadTool().Execute(context.Background(), json.RawMessage(`{"path":"notes.txt"}`), tc)
	require.NoError(t, err)
	assert.Contains(t, res.Output, "alpha")
	assert.Contains(t, res.Output, "gamma")

	res, err = NewReadTool().Execute(context.Background(), json.RawMessage(`{"path":"notes.txt","offset":2,"limit":1}`), tc)
	require.NoError(t, err)
	assert.Contains(t, res.Output, "beta")
	assert.NotContains(t, res.Output, "alpha")
}

func TestReadToolMissingFile(t *testing.T) {
	tc := testContext(t)

	_, err := NewReadTool().Execute(context.Background(), json.RawMessage(`{"path":"missing.txt"}`), tc)
	assert.Error(t, err)
}

func TestCreateTool(t *testing.T) {
	event.Reset()
	tc := testContext(t)

	input := json.RawMessage(`{"path":"sub/dir/new.txt","content":"hello"}`)

	req, err := NewCreateTool().PermissionRequest(input, tc)
	require.NoError(t, err)
	assert.Equal(t, permission.OpCreateFile, req.Operation)
	assert.Equal(t, "hello", req.Details["content"])

	res, err := NewCreateTool().Execute(context.Background(), input, tc)
	require.NoError(t, err)
	assert.Contains(t, res.Output, "5 bytes")

	data, err := os.ReadFile(filepath.Join(tc.WorkDir, "sub/dir/new.txt"))
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
}

func TestCreateToolOverwriteShowsDiff(t *testing.T) {
	event.Reset()
	tc := testContext(t)
	writeFile(t, tc.WorkDir, "a.txt", "old line\n")

	req, err := NewCreateTool().PermissionRequest(json.RawMessage(`{"path":"a.txt","content":"new line\n"}`), tc)
	require.NoError(t, err)

	diff, ok := req.Details["diff"].(string)
	require.True(t, ok)
	assert.Contains(t, diff, "- old line")
	assert.Contains(t, diff, "+ new line")
}

func TestEditTool(t *testing.T) {
	event.Reset()
	tc := testContext(t)
	path := writeFile(t, tc.WorkDir, "main.go", "package main\n\nfunc main() {}\n")

	input := json.RawMessage(`{"path":"main.go","old_string":"func main() {}","new_string":"func main() { run() }"}`)

	req, err := NewEditTool().PermissionRequest(input, tc)
	require.NoError(t, err)
	assert.Equal(t, permission.OpEditFile, req.Operation)
	assert.Contains(t, req.Details["diff"], "+ func main() { run() }")

	res, err := NewEditTool().Execute(context.Background(), input, tc)
	require.NoError(t, err)
	assert.Contains(t, res.Output, "1 occurrence")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "run()")
}

func TestEditToolAmbiguousMatch(t *testing.T) {
	tc := testContext(t)
	writeFile(t, tc.WorkDir, "dup.txt", "x\nx\n")

	_, err := NewEditTool().Execute(context.Background(),
		json.RawMessage(`{"path":"dup.txt","old_string":"x","new_string":"y"}`), tc)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "replace_all")
}

func TestEditToolReplaceAll(t *testing.T) {
	event.Reset()
	tc := testContext(t)
	path := writeFile(t, tc.WorkDir, "dup.txt", "x\nx\n")

	res, err := NewEditTool().Execute(context.Background(),
		json.RawMessage(`{"path":"dup.txt","old_string":"x","new_string":"y","replace_all":true}`), tc)
	require.NoError(t, err)
	assert.Contains(t, res.Output, "2 occurrence")

	data, _ := os.ReadFile(path)
	assert.Equal(t, "y\ny\n", string(data))
}

func TestEditToolNotFound(t *testing.T) {
	tc := testContext(t)
	writeFile(t, tc.WorkDir, "a.txt", "content\n")

	_, err := NewEditTool().Execute(context.Background(),
		json.RawMessage(`{"path":"a.txt","old_string":"absent","new_string":"other"}`), tc)
	assert.Error(t, err)
}

func TestApplyEditFuzzyFallback(t *testing.T) {
	text := "func process(items []string) error {\n\treturn nil\n}\n"
	// Same code with slightly different whitespace.
	params := EditInput{
		OldString: "func process(items []string) error {\n    return nil\n}",
		NewString: "func process(items []string) error {\n\treturn run(items)\n}",
	}

	newText, count, err := applyEdit(text, params)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.Contains(t, newText, "run(items)")
}

func TestDeleteTool(t *testing.T) {
	event.Reset()
	tc := testContext(t)
	path := writeFile(t, tc.WorkDir, "old.txt", "bye")

	req, err := NewDeleteTool().PermissionRequest(json.RawMessage(`{"path":"old.txt"}`), tc)
	require.NoError(t, err)
	assert.Equal(t, permission.OpDeleteFile, req.Operation)

	_, err = NewDeleteTool().Execute(context.Background(), json.RawMessage(`{"path":"old.txt"}`), tc)
	require.NoError(t, err)

	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestDeleteToolRefusesDirectory(t *testing.T) {
	tc := testContext(t)
	require.NoError(t, os.Mkdir(filepath.Join(tc.WorkDir, "d"), 0755))

	_, err := NewDeleteTool().Execute(context.Background(), json.RawMessage(`{"path":"d"}`), tc)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "directory")
}

func TestListTool(t *testing.T) {
	tc := testContext(t)
	writeFile(t, tc.WorkDir, "b.txt", "")
	writeFile(t, tc.WorkDir, "a.txt", "")
	require.NoError(t, os.Mkdir(filepath.Join(tc.WorkDir, "sub"), 0755))

	res, err := NewListTool().Execute(context.Background(), json.RawMessage(`{}`), tc)
	require.NoError(t, err)
	assert.Equal(t, "a.txt\nb.txt\nsub/", res.Output)
}

func TestFileEditedEvents(t *testing.T) {
	event.Reset()
	edited := make(chan event.Event, 4)
	defer event.Subscribe(event.FileEdited, func(e event.Event) { edited <- e })()

	tc := testContext(t)
	_, err := NewCreateTool().Execute(context.Background(),
		json.RawMessage(`{"path":"watched.txt","content":"v1"}`), tc)
	require.NoError(t, err)

	select {
	case e := <-edited:
		data := e.Data.(event.FileEditedData)
		assert.Equal(t, filepath.Join(tc.WorkDir, "watched.txt"), data.File)
	case <-time.After(time.Second):
		t.Fatal("no file.edited event")
	}
}
