package post

import (
	"context"
	"fmt"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hitoshi/blogcore/internal/model"
	"github.com/hitoshi/blogcore/internal/repository/memory"
	"github.com/hitoshi/blogcore/internal/security"
)

const (
	alice = "alice-id"
	bob   = "bob-id"
)

// fixture はインメモリリポジトリと単調増加する時計を持つテスト用サービス。
type fixture struct {
	svc   *Service
	posts *memory.PostRepo
	clock time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		posts: memory.NewPostRepo(),
		clock: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	desc := "Tech posts"
	categories := memory.NewCategoryRepo(
		&model.Category{ID: 2, Name: "Technology", Description: &desc},
		&model.Category{ID: 1, Name: "Design"},
	)
	f.svc = NewService(f.posts, categories, security.NewContentSanitizer(), nil, ServiceConfig{})
	f.svc.now = func() time.Time {
		f.clock = f.clock.Add(time.Minute)
		return f.clock
	}
	return f
}

func (f *fixture) create(t *testing.T, title, author string, published bool) *model.Post {
	t.Helper()
	p, err := f.svc.Create(context.Background(), model.PostInput{
		Title:       title,
		Content:     "some body text",
		IsPublished: &published,
	}, author)
	require.NoError(t, err)
	return p
}

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

// --- 可視性 ---

func TestVisibilityCond(t *testing.T) {
	row := func(published bool, author string) func(string) any {
		return func(field string) any {
			switch field {
			case "is_published":
				return published
			case "author_id":
				return author
			}
			return nil
		}
	}

	tests := []struct {
		name      string
		caller    string
		published bool
		author    string
		want      bool
	}{
		{"anonymous sees published", "", true, bob, true},
		{"anonymous cannot see draft", "", false, bob, false},
		{"caller sees others' published", alice, true, bob, true},
		{"caller sees own draft", alice, false, alice, true},
		{"caller cannot see others' draft", alice, false, bob, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, VisibilityCond(tt.caller).Match(row(tt.published, tt.author)))
		})
	}
}

func TestList_VisibilityPerCaller(t *testing.T) {
	f := newFixture(t)
	f.create(t, "Alice public", alice, true)
	f.create(t, "Alice draft", alice, false)
	f.create(t, "Bob public", bob, true)
	f.create(t, "Bob draft", bob, false)
	ctx := context.Background()

	anon, err := f.svc.List(ctx, ListParams{})
	require.NoError(t, err)
	assert.Equal(t, 2, anon.Pagination.Total)
	for _, p := range anon.Data {
		assert.True(t, p.IsPublished, "anonymous list must contain only published posts")
	}

	asAlice, err := f.svc.List(ctx, ListParams{CallerID: alice})
	require.NoError(t, err)
	assert.Equal(t, 3, asAlice.Pagination.Total)
	for _, p := range asAlice.Data {
		if !p.IsPublished {
			assert.Equal(t, alice, p.AuthorID, "unpublished post of another author leaked")
		}
	}
}

func TestList_TotalsIndependentOfPage(t *testing.T) {
	f := newFixture(t)
	for i := 0; i < 25; i++ {
		f.create(t, fmt.Sprintf("Post %d", i), alice, true)
	}
	f.create(t, "Hidden draft", bob, false)
	ctx := context.Background()

	tests := []struct {
		page, size int
		wantLen    int
		wantPages  int
	}{
		{0, 10, 10, 3},
		{1, 10, 10, 3},
		{2, 10, 5, 3},
		{5, 10, 0, 3},
		{0, 7, 7, 4},
		{0, 25, 25, 1},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("page=%d,size=%d", tt.page, tt.size), func(t *testing.T) {
			got, err := f.svc.List(ctx, ListParams{Page: tt.page, Size: tt.size})
			require.NoError(t, err)
			assert.Len(t, got.Data, tt.wantLen)
			assert.Equal(t, 25, got.Pagination.Total)
			assert.Equal(t, tt.wantPages, got.Pagination.TotalPages)
			assert.Equal(t, tt.page, got.Pagination.Page)
			assert.Equal(t, tt.size, got.Pagination.Size)
		})
	}
}

func TestList_OrderedByCreatedAtDescending(t *testing.T) {
	f := newFixture(t)
	first := f.create(t, "First", alice, true)
	second := f.create(t, "Second", alice, true)

	got, err := f.svc.List(context.Background(), ListParams{})
	require.NoError(t, err)
	require.Len(t, got.Data, 2)
	assert.Equal(t, second.ID, got.Data[0].ID)
	assert.Equal(t, first.ID, got.Data[1].ID)
}

func TestList_PageSizeNormalization(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	got, err := f.svc.List(ctx, ListParams{Page: -3, Size: 0})
	require.NoError(t, err)
	assert.Equal(t, 0, got.Pagination.Page)
	assert.Equal(t, DefaultPageSize, got.Pagination.Size)

	got, err = f.svc.List(ctx, ListParams{Size: 1000})
	require.NoError(t, err)
	assert.Equal(t, MaxPageSize, got.Pagination.Size)
}

func TestList_HugePageIsClampedAndEmpty(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.create(t, "Only post", alice, true)

	got, err := f.svc.List(ctx, ListParams{Page: math.MaxInt, Size: 10})
	require.NoError(t, err)
	assert.Equal(t, math.MaxInt32/10, got.Pagination.Page)
	assert.Equal(t, 1, got.Pagination.Total)
	assert.NotNil(t, got.Data)
	assert.Empty(t, got.Data)
}

func TestList_EmptyResult(t *testing.T) {
	f := newFixture(t)

	got, err := f.svc.List(context.Background(), ListParams{})
	require.NoError(t, err)
	assert.NotNil(t, got.Data)
	assert.Empty(t, got.Data)
	assert.Equal(t, 0, got.Pagination.Total)
	assert.Equal(t, 0, got.Pagination.TotalPages)
}

func TestList_FiltersByCategory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for i, cat := range []string{"Technology", "Design", "Technology"} {
		_, err := f.svc.Create(ctx, model.PostInput{
			Title: fmt.Sprintf("Post %d", i), Content: "body", Category: strPtr(cat),
		}, alice)
		require.NoError(t, err)
	}
	f.create(t, "No category", alice, true)

	got, err := f.svc.List(ctx, ListParams{Category: "Technology"})
	require.NoError(t, err)
	assert.Equal(t, 2, got.Pagination.Total)
	for _, p := range got.Data {
		require.NotNil(t, p.Category)
		assert.Equal(t, "Technology", *p.Category)
	}
}

func TestList_StorageFailure(t *testing.T) {
	f := newFixture(t)
	f.posts.Fail = model.NewQueryFailedError("posts: connection reset")

	_, err := f.svc.List(context.Background(), ListParams{})
	assert.True(t, model.IsCode(err, model.ErrCodeQueryFailed))
}

// --- 取得と閲覧数 ---

func TestGetByID_PublishedIncrementsViewsOncePerCall(t *testing.T) {
	f := newFixture(t)
	p := f.create(t, "Readable", alice, true)
	ctx := context.Background()

	for want := 1; want <= 3; want++ {
		got, err := f.svc.GetByID(ctx, p.ID, "")
		require.NoError(t, err)
		assert.Equal(t, want, got.ViewsCount)
	}
}

func TestGetByID_UnpublishedOwnerDoesNotIncrement(t *testing.T) {
	f := newFixture(t)
	p := f.create(t, "Draft", alice, false)
	ctx := context.Background()

	got, err := f.svc.GetByID(ctx, p.ID, alice)
	require.NoError(t, err)
	assert.Equal(t, 0, got.ViewsCount)

	again, err := f.svc.GetByID(ctx, p.ID, alice)
	require.NoError(t, err)
	assert.Equal(t, 0, again.ViewsCount)
}

func TestGetByID_HiddenOrMissingIsNotFound(t *testing.T) {
	f := newFixture(t)
	draft := f.create(t, "Draft", alice, false)
	ctx := context.Background()

	_, err := f.svc.GetByID(ctx, draft.ID, bob)
	assert.True(t, model.IsCode(err, model.ErrCodeNotFound), "non-owner: %v", err)

	_, err = f.svc.GetByID(ctx, draft.ID, "")
	assert.True(t, model.IsCode(err, model.ErrCodeNotFound), "anonymous: %v", err)

	_, hiddenErr := f.svc.GetByID(ctx, draft.ID, bob)
	_, missingErr := f.svc.GetByID(ctx, "no-such-id", bob)
	assert.True(t, model.IsCode(missingErr, model.ErrCodeNotFound))
	// 非公開と不存在は同じ種別で区別できない
	assert.Equal(t, model.ErrCodeNotFound, hiddenErr.(*model.APIError).Code)
	assert.Equal(t, model.ErrCodeNotFound, missingErr.(*model.APIError).Code)
}

func TestMalformedID_NotFoundWithoutQuery(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.posts.Fail = model.NewQueryFailedError("posts: invalid input syntax for type uuid")

	for _, id := range []string{"hello-world", "", "123", "../etc"} {
		_, err := f.svc.GetByID(ctx, id, alice)
		assert.True(t, model.IsCode(err, model.ErrCodeNotFound), "get %q: %v", id, err)

		_, err = f.svc.Update(ctx, id, model.PostPatch{Title: strPtr("t")}, alice)
		assert.True(t, model.IsCode(err, model.ErrCodeNotFound), "update %q: %v", id, err)

		err = f.svc.Delete(ctx, id, alice)
		assert.True(t, model.IsCode(err, model.ErrCodeNotFound), "delete %q: %v", id, err)
	}
}

// --- 作成 ---

func TestCreate_DerivesSlugAndReadingTime(t *testing.T) {
	f := newFixture(t)

	got, err := f.svc.Create(context.Background(), model.PostInput{
		Title:   "Hello World!",
		Content: strings.Repeat("word ", 250),
	}, alice)
	require.NoError(t, err)

	assert.Equal(t, "hello-world", got.Slug)
	assert.Equal(t, 2, got.ReadingTime)
	assert.True(t, got.IsPublished)
	assert.False(t, got.IsFeatured)
	assert.Zero(t, got.ViewsCount)
	assert.Zero(t, got.LikesCount)
	assert.Equal(t, alice, got.AuthorID)
	assert.NotEmpty(t, got.ID)
	assert.False(t, got.CreatedAt.IsZero())
	assert.Equal(t, got.CreatedAt, got.UpdatedAt)
	require.NotNil(t, got.PublishedAt)
}

func TestCreate_DraftHasNoPublishedAt(t *testing.T) {
	f := newFixture(t)
	got := f.create(t, "Draft", alice, false)
	assert.Nil(t, got.PublishedAt)
}

func TestCreate_SanitizesContentAndExcerpt(t *testing.T) {
	f := newFixture(t)

	got, err := f.svc.Create(context.Background(), model.PostInput{
		Title:   "Safe",
		Content: `<p>hello</p><script>alert(1)</script>`,
		Excerpt: strPtr(`<em>short</em><iframe src="https://evil.example"></iframe>`),
		Tags:    []string{" go ", "", "sql"},
	}, alice)
	require.NoError(t, err)

	assert.NotContains(t, got.Content, "script")
	assert.Contains(t, got.Content, "<p>hello</p>")
	require.NotNil(t, got.Excerpt)
	assert.NotContains(t, *got.Excerpt, "iframe")
	assert.Equal(t, []string{"go", "sql"}, []string(got.Tags))
}

func TestCreate_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, model.PostInput{Title: " ", Content: "body"}, alice)
	assert.True(t, model.IsCode(err, model.ErrCodeInvalidRequest))

	_, err = f.svc.Create(ctx, model.PostInput{Title: "Title", Content: ""}, alice)
	assert.True(t, model.IsCode(err, model.ErrCodeInvalidRequest))

	_, err = f.svc.Create(ctx, model.PostInput{Title: "!!!", Content: "body"}, alice)
	assert.True(t, model.IsCode(err, model.ErrCodeInvalidRequest))
}

func TestCreate_DuplicateSlugIsConflict(t *testing.T) {
	f := newFixture(t)
	f.create(t, "Hello World", alice, true)

	_, err := f.svc.Create(context.Background(), model.PostInput{Title: "hello   world!", Content: "x"}, bob)
	assert.True(t, model.IsCode(err, model.ErrCodeConflict))
}

// --- 更新 ---

func TestUpdate_OnlyCategoryKeepsDerivedFields(t *testing.T) {
	f := newFixture(t)
	created, err := f.svc.Create(context.Background(), model.PostInput{
		Title: "Hello World!", Content: strings.Repeat("word ", 250),
	}, alice)
	require.NoError(t, err)

	got, err := f.svc.Update(context.Background(), created.ID, model.PostPatch{Category: strPtr("Design")}, alice)
	require.NoError(t, err)

	assert.Equal(t, "hello-world", got.Slug)
	assert.Equal(t, 2, got.ReadingTime)
	require.NotNil(t, got.Category)
	assert.Equal(t, "Design", *got.Category)
	assert.True(t, got.UpdatedAt.After(created.UpdatedAt))
	assert.Equal(t, created.CreatedAt, got.CreatedAt)
}

func TestUpdate_RecomputesOnlyChangedFields(t *testing.T) {
	f := newFixture(t)
	created := f.create(t, "Original Title", alice, true)
	ctx := context.Background()

	sameTitle, err := f.svc.Update(ctx, created.ID, model.PostPatch{Title: strPtr("Original Title")}, alice)
	require.NoError(t, err)
	assert.Equal(t, "original-title", sameTitle.Slug)

	renamed, err := f.svc.Update(ctx, created.ID, model.PostPatch{
		Title:   strPtr("Brand New Title"),
		Content: strPtr(strings.Repeat("w ", 401)),
	}, alice)
	require.NoError(t, err)
	assert.Equal(t, "brand-new-title", renamed.Slug)
	assert.Equal(t, 3, renamed.ReadingTime)
}

func TestUpdate_PublishStampsPublishedAtOnce(t *testing.T) {
	f := newFixture(t)
	draft := f.create(t, "Draft", alice, false)
	ctx := context.Background()

	published, err := f.svc.Update(ctx, draft.ID, model.PostPatch{IsPublished: boolPtr(true)}, alice)
	require.NoError(t, err)
	require.NotNil(t, published.PublishedAt)
	stamp := *published.PublishedAt

	_, err = f.svc.Update(ctx, draft.ID, model.PostPatch{IsPublished: boolPtr(false)}, alice)
	require.NoError(t, err)
	again, err := f.svc.Update(ctx, draft.ID, model.PostPatch{IsPublished: boolPtr(true)}, alice)
	require.NoError(t, err)
	require.NotNil(t, again.PublishedAt)
	assert.Equal(t, stamp, *again.PublishedAt)
}

func TestUpdate_OwnershipAndExistence(t *testing.T) {
	f := newFixture(t)
	p := f.create(t, "Mine", alice, true)
	ctx := context.Background()

	_, err := f.svc.Update(ctx, p.ID, model.PostPatch{Title: strPtr("Stolen")}, bob)
	assert.True(t, model.IsCode(err, model.ErrCodeUnauthorized), "non-owner: %v", err)

	_, err = f.svc.Update(ctx, "missing", model.PostPatch{Title: strPtr("x")}, alice)
	assert.True(t, model.IsCode(err, model.ErrCodeNotFound), "missing: %v", err)

	unchanged, err := f.posts.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Mine", unchanged.Title)
}

func TestUpdate_RejectsEmptyTitle(t *testing.T) {
	f := newFixture(t)
	p := f.create(t, "Mine", alice, true)

	_, err := f.svc.Update(context.Background(), p.ID, model.PostPatch{Title: strPtr("")}, alice)
	assert.True(t, model.IsCode(err, model.ErrCodeInvalidRequest))
}

// --- 削除 ---

func TestDelete_OwnershipAndExistence(t *testing.T) {
	f := newFixture(t)
	p := f.create(t, "Mine", alice, true)
	ctx := context.Background()

	err := f.svc.Delete(ctx, p.ID, bob)
	assert.True(t, model.IsCode(err, model.ErrCodeUnauthorized), "non-owner: %v", err)

	err = f.svc.Delete(ctx, "missing", alice)
	assert.True(t, model.IsCode(err, model.ErrCodeNotFound), "missing: %v", err)

	require.NoError(t, f.svc.Delete(ctx, p.ID, alice))

	_, err = f.svc.GetByID(ctx, p.ID, alice)
	assert.True(t, model.IsCode(err, model.ErrCodeNotFound))
}

// --- カテゴリ ---

func TestListCategories_SortedByName(t *testing.T) {
	f := newFixture(t)

	got, err := f.svc.ListCategories(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Design", got[0].Name)
	assert.Equal(t, "Technology", got[1].Name)
}
