package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hitoshi/blogcore/internal/catalog"
	"github.com/hitoshi/blogcore/internal/model"
	"github.com/hitoshi/blogcore/internal/repository/memory"
)

func newMemoryService() *catalog.Service {
	return catalog.NewService(memory.NewNewsPostRepo(), memory.NewVideoRepo())
}

func runCmd(t *testing.T, svc *catalog.Service, argv ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := run(context.Background(), &out, svc, argv)
	return out.String(), err
}

func TestRun_NewsLifecycle(t *testing.T) {
	svc := newMemoryService()

	out, err := runCmd(t, svc, "news", "insert", "--title=Hello", "--text=first post", "--json")
	require.NoError(t, err)
	var inserted []model.NewsPost
	require.NoError(t, json.Unmarshal([]byte(out), &inserted))
	require.Len(t, inserted, 1)
	assert.Equal(t, "Hello", inserted[0].Title)

	out, err = runCmd(t, svc, "news", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "TITLE")
	assert.Contains(t, out, "Hello")

	_, err = runCmd(t, svc, "news", "update", "--id=1", "--title=Renamed")
	require.NoError(t, err)

	out, err = runCmd(t, svc, "news", "get", "--id=1")
	require.NoError(t, err)
	assert.Contains(t, out, "Renamed")

	out, err = runCmd(t, svc, "news", "delete", "--id=1")
	require.NoError(t, err)
	assert.Contains(t, out, "Renamed")

	_, err = runCmd(t, svc, "news", "get", "--id=1")
	assert.True(t, model.IsCode(err, model.ErrCodeNotFound))
}

func TestRun_NewsValidation(t *testing.T) {
	svc := newMemoryService()

	_, err := runCmd(t, svc, "news", "get", "--id=abc")
	assert.True(t, model.IsCode(err, model.ErrCodeInvalidRequest))

	_, err = runCmd(t, svc, "news", "get")
	assert.True(t, model.IsCode(err, model.ErrCodeInvalidRequest))

	_, err = runCmd(t, svc, "news", "insert", "--title=only")
	assert.True(t, model.IsCode(err, model.ErrCodeInvalidRequest))
}

func TestRun_Videos(t *testing.T) {
	svc := newMemoryService()
	for _, argv := range [][]string{
		{"videos", "insert", "--title=Go basics", "--views=300", "--category=tech"},
		{"videos", "insert", "--title=Pasta", "--views=50", "--category=food"},
		{"videos", "insert", "--title=Advanced GO", "--views=900", "--category=tech"},
	} {
		_, err := runCmd(t, svc, argv...)
		require.NoError(t, err)
	}

	out, err := runCmd(t, svc, "videos", "top", "--top=1", "--json")
	require.NoError(t, err)
	var top []model.Video
	require.NoError(t, json.Unmarshal([]byte(out), &top))
	require.Len(t, top, 1)
	assert.Equal(t, "Advanced GO", top[0].Title)

	out, err = runCmd(t, svc, "videos", "find", "--search=go", "--json")
	require.NoError(t, err)
	var found []model.Video
	require.NoError(t, json.Unmarshal([]byte(out), &found))
	assert.Len(t, found, 2)

	out, err = runCmd(t, svc, "videos", "paginate", "--page=2", "--size=2", "--json")
	require.NoError(t, err)
	var page []model.Video
	require.NoError(t, json.Unmarshal([]byte(out), &page))
	require.Len(t, page, 1)
	assert.Equal(t, "Advanced GO", page[0].Title)

	out, err = runCmd(t, svc, "videos", "group")
	require.NoError(t, err)
	assert.Contains(t, out, "CATEGORY")
	assert.Contains(t, out, "1200")

	out, err = runCmd(t, svc, "videos", "update", "--id=2", "--views=75")
	require.NoError(t, err)
	assert.Contains(t, out, "75")

	_, err = runCmd(t, svc, "videos", "update", "--id=2", "--views=many")
	assert.True(t, model.IsCode(err, model.ErrCodeInvalidRequest))

	_, err = runCmd(t, svc, "videos", "insert", "--title=x", "--category=y")
	assert.True(t, model.IsCode(err, model.ErrCodeInvalidRequest))

	_, err = runCmd(t, svc, "videos", "find")
	assert.True(t, model.IsCode(err, model.ErrCodeInvalidRequest))
}

func TestRun_Usage(t *testing.T) {
	svc := newMemoryService()

	_, err := runCmd(t, svc, "news")
	assert.True(t, errors.Is(err, errUsage))

	_, err = runCmd(t, svc, "comments", "list")
	assert.True(t, errors.Is(err, errUsage))

	_, err = runCmd(t, svc, "videos", "explode")
	assert.True(t, errors.Is(err, errUsage))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	long := strings.Repeat("あ", 12)
	assert.Equal(t, strings.Repeat("あ", 7)+"...", truncate(long, 10))
}
