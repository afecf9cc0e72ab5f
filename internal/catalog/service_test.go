package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hitoshi/blogcore/internal/model"
	"github.com/hitoshi/blogcore/internal/repository/memory"
)

func strPtr(s string) *string { return &s }
func int64Ptr(n int64) *int64 { return &n }

func newTestService() *Service {
	svc := NewService(memory.NewNewsPostRepo(), memory.NewVideoRepo())
	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	svc.now = func() time.Time {
		clock = clock.Add(time.Hour)
		return clock
	}
	return svc
}

func seedVideos(t *testing.T, svc *Service) {
	t.Helper()
	for _, v := range []struct {
		title    string
		views    int64
		category string
	}{
		{"Go basics", 300, "tech"},
		{"Pasta", 50, "food"},
		{"Advanced GO", 900, "tech"},
		{"Sushi", 120, "food"},
		{"Rust intro", 10, "tech"},
		{"Travel vlog", 500, "life"},
	} {
		_, err := svc.InsertVideo(context.Background(), strPtr(v.title), v.views, strPtr(v.category))
		require.NoError(t, err)
	}
}

func TestNews_Lifecycle(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	first, err := svc.InsertNews(ctx, strPtr(" First "), strPtr("one"))
	require.NoError(t, err)
	assert.Equal(t, "First", first.Title)
	second, err := svc.InsertNews(ctx, strPtr("Second"), strPtr("two"))
	require.NoError(t, err)

	all, err := svc.ListNews(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, second.ID, all[0].ID, "newest first")

	updated, err := svc.UpdateNews(ctx, first.ID, nil, strPtr("uno"))
	require.NoError(t, err)
	assert.Equal(t, "First", updated.Title)
	assert.Equal(t, "uno", updated.Text)

	deleted, err := svc.DeleteNews(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "uno", deleted.Text)

	_, err = svc.GetNews(ctx, first.ID)
	assert.True(t, model.IsCode(err, model.ErrCodeNotFound))
}

func TestNews_Validation(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	_, err := svc.InsertNews(ctx, strPtr("title"), nil)
	assert.True(t, model.IsCode(err, model.ErrCodeInvalidRequest))

	_, err = svc.UpdateNews(ctx, 1, nil, nil)
	assert.True(t, model.IsCode(err, model.ErrCodeInvalidRequest))

	_, err = svc.UpdateNews(ctx, 99, strPtr("x"), nil)
	assert.True(t, model.IsCode(err, model.ErrCodeNotFound))

	_, err = svc.DeleteNews(ctx, 99)
	assert.True(t, model.IsCode(err, model.ErrCodeNotFound))
}

func TestVideos_TopAndPaginate(t *testing.T) {
	svc := newTestService()
	seedVideos(t, svc)
	ctx := context.Background()

	top, err := svc.TopVideos(ctx, 3)
	require.NoError(t, err)
	require.Len(t, top, 3)
	assert.Equal(t, []int64{900, 500, 300}, []int64{top[0].Views, top[1].Views, top[2].Views})

	page2, err := svc.PaginateVideos(ctx, 2, 4)
	require.NoError(t, err)
	require.Len(t, page2, 2)
	assert.Equal(t, int64(5), page2[0].ID)
	assert.Equal(t, int64(6), page2[1].ID)

	_, err = svc.PaginateVideos(ctx, 0, 4)
	assert.True(t, model.IsCode(err, model.ErrCodeInvalidRequest))
}

func TestVideos_FindAndGroup(t *testing.T) {
	svc := newTestService()
	seedVideos(t, svc)
	ctx := context.Background()

	found, err := svc.FindVideos(ctx, "go")
	require.NoError(t, err)
	assert.Len(t, found, 2)

	groups, err := svc.GroupVideos(ctx)
	require.NoError(t, err)
	assert.Equal(t, []*model.CategoryViews{
		{Category: "food", TotalViews: 170},
		{Category: "life", TotalViews: 500},
		{Category: "tech", TotalViews: 1210},
	}, groups)
}

func TestVideos_Update(t *testing.T) {
	svc := newTestService()
	seedVideos(t, svc)
	ctx := context.Background()

	got, err := svc.UpdateVideo(ctx, 2, nil, int64Ptr(75), nil)
	require.NoError(t, err)
	assert.Equal(t, int64(75), got.Views)
	assert.Equal(t, "Pasta", got.Title)

	_, err = svc.UpdateVideo(ctx, 2, nil, int64Ptr(-1), nil)
	assert.True(t, model.IsCode(err, model.ErrCodeInvalidRequest))

	_, err = svc.UpdateVideo(ctx, 404, strPtr("x"), nil, nil)
	assert.True(t, model.IsCode(err, model.ErrCodeNotFound))
}
