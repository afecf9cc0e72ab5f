// Package memory はリポジトリインターフェースのインメモリ実装を提供する。
// サービス層のテストとローカル検証用で、PostgreSQL実装と同じ条件木（query.Cond）を評価する。
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/hitoshi/blogcore/internal/model"
	"github.com/hitoshi/blogcore/internal/query"
	"github.com/hitoshi/blogcore/internal/repository"
)

// UserRepo はインメモリのユーザーリポジトリ。
type UserRepo struct {
	mu    sync.RWMutex
	users map[string]*model.User
}

// NewUserRepo は空のUserRepoを生成する。
func NewUserRepo() *UserRepo {
	return &UserRepo{users: make(map[string]*model.User)}
}

func (r *UserRepo) FindByID(_ context.Context, id string) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if u, ok := r.users[id]; ok {
		c := *u
		return &c, nil
	}
	return nil, nil
}

func (r *UserRepo) FindByEmail(_ context.Context, email string) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if u.Email == email {
			c := *u
			return &c, nil
		}
	}
	return nil, nil
}

// Create はメールアドレスの一意性を検査して保存する。重複時はCONFLICTを返す。
func (r *UserRepo) Create(_ context.Context, user *model.User) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email {
			return nil, model.NewConflictError("同じ値を持つレコードが既に存在します。")
		}
	}
	stored := *user
	r.users[user.ID] = &stored
	c := stored
	return &c, nil
}

// PostRepo はインメモリの記事リポジトリ。
type PostRepo struct {
	mu    sync.RWMutex
	txMu  sync.Mutex
	posts map[string]*model.Post
	// Fail が設定されている場合、全操作がこのエラーを返す。
	Fail error
}

// NewPostRepo は空のPostRepoを生成する。
func NewPostRepo() *PostRepo {
	return &PostRepo{posts: make(map[string]*model.Post)}
}

func clonePost(p *model.Post) *model.Post {
	c := *p
	if p.Tags != nil {
		c.Tags = append([]string{}, p.Tags...)
	}
	return &c
}

// postField は条件評価用に記事のカラム値を返す。NULLはnilになる。
func postField(p *model.Post) func(string) any {
	return func(field string) any {
		switch field {
		case repository.ColID:
			return p.ID
		case repository.ColAuthorID:
			return p.AuthorID
		case repository.ColIsPublished:
			return p.IsPublished
		case "is_featured":
			return p.IsFeatured
		case repository.ColCategory:
			if p.Category == nil {
				return nil
			}
			return *p.Category
		case "slug":
			return p.Slug
		}
		return nil
	}
}

func lessPost(a, b *model.Post, orders []query.Order) bool {
	for _, o := range orders {
		var cmp int
		switch o.Field {
		case repository.ColCreatedAt:
			cmp = a.CreatedAt.Compare(b.CreatedAt)
		case "title":
			cmp = strings.Compare(a.Title, b.Title)
		case "views_count":
			cmp = a.ViewsCount - b.ViewsCount
		case repository.ColID:
			cmp = strings.Compare(a.ID, b.ID)
		}
		if cmp == 0 {
			continue
		}
		if o.Desc {
			return cmp > 0
		}
		return cmp < 0
	}
	return a.ID < b.ID
}

func (r *PostRepo) match(spec query.Spec) []*model.Post {
	cond := spec.Cond()
	var out []*model.Post
	for _, p := range r.posts {
		if cond.Match(postField(p)) {
			out = append(out, p)
		}
	}
	orders := spec.Orders()
	sort.SliceStable(out, func(i, j int) bool { return lessPost(out[i], out[j], orders) })
	return out
}

func (r *PostRepo) List(_ context.Context, spec query.Spec) ([]*model.Post, error) {
	if r.Fail != nil {
		return nil, r.Fail
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	rows := r.match(spec)
	if off := spec.Offset(); off > 0 {
		if off >= len(rows) {
			rows = nil
		} else {
			rows = rows[off:]
		}
	}
	if lim := spec.Limit(); lim > 0 && lim < len(rows) {
		rows = rows[:lim]
	}

	out := make([]*model.Post, 0, len(rows))
	for _, p := range rows {
		out = append(out, clonePost(p))
	}
	return out, nil
}

func (r *PostRepo) Count(_ context.Context, spec query.Spec) (int, error) {
	if r.Fail != nil {
		return 0, r.Fail
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.match(spec)), nil
}

func (r *PostRepo) FindByID(_ context.Context, id string) (*model.Post, error) {
	if r.Fail != nil {
		return nil, r.Fail
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	if p, ok := r.posts[id]; ok {
		return clonePost(p), nil
	}
	return nil, nil
}

func (r *PostRepo) FindByIDForUpdate(ctx context.Context, id string) (*model.Post, error) {
	return r.FindByID(ctx, id)
}

func (r *PostRepo) IncrementViews(_ context.Context, id string) (*model.Post, error) {
	if r.Fail != nil {
		return nil, r.Fail
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.posts[id]
	if !ok || !p.IsPublished {
		return nil, nil
	}
	p.ViewsCount++
	return clonePost(p), nil
}

func (r *PostRepo) slugTaken(slug, exceptID string) bool {
	for _, p := range r.posts {
		if p.Slug == slug && p.ID != exceptID {
			return true
		}
	}
	return false
}

// Create はslugの一意性を検査して保存する。重複時はCONFLICTを返す。
func (r *PostRepo) Create(_ context.Context, post *model.Post) (*model.Post, error) {
	if r.Fail != nil {
		return nil, r.Fail
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.posts[post.ID]; ok || r.slugTaken(post.Slug, "") {
		return nil, model.NewConflictError("同じ値を持つレコードが既に存在します。")
	}
	r.posts[post.ID] = clonePost(post)
	return clonePost(post), nil
}

func (r *PostRepo) UpdateOwned(_ context.Context, post *model.Post) (*model.Post, error) {
	if r.Fail != nil {
		return nil, r.Fail
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.posts[post.ID]
	if !ok || cur.AuthorID != post.AuthorID {
		return nil, nil
	}
	if r.slugTaken(post.Slug, post.ID) {
		return nil, model.NewConflictError("同じ値を持つレコードが既に存在します。")
	}
	updated := clonePost(post)
	updated.ViewsCount = cur.ViewsCount
	updated.LikesCount = cur.LikesCount
	updated.CreatedAt = cur.CreatedAt
	r.posts[post.ID] = updated
	return clonePost(updated), nil
}

func (r *PostRepo) DeleteOwned(_ context.Context, id, authorID string) (int64, error) {
	if r.Fail != nil {
		return 0, r.Fail
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.posts[id]
	if !ok || p.AuthorID != authorID {
		return 0, nil
	}
	delete(r.posts, id)
	return 1, nil
}

func (r *PostRepo) Exists(_ context.Context, id string) (bool, error) {
	if r.Fail != nil {
		return false, r.Fail
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.posts[id]
	return ok, nil
}

// WithTx はトランザクションを直列化して実行する。ロールバックは行わない。
func (r *PostRepo) WithTx(_ context.Context, fn func(tx repository.PostRepository) error) error {
	r.txMu.Lock()
	defer r.txMu.Unlock()
	return fn(r)
}

// CategoryRepo はインメモリのカテゴリリポジトリ。
type CategoryRepo struct {
	categories []*model.Category
}

// NewCategoryRepo は与えられたカテゴリを保持するCategoryRepoを生成する。
func NewCategoryRepo(categories ...*model.Category) *CategoryRepo {
	return &CategoryRepo{categories: categories}
}

func (r *CategoryRepo) ListByName(_ context.Context) ([]*model.Category, error) {
	out := make([]*model.Category, len(r.categories))
	copy(out, r.categories)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// NewsPostRepo はインメモリのnews_postsリポジトリ。
type NewsPostRepo struct {
	mu     sync.Mutex
	nextID int64
	rows   map[int64]*model.NewsPost
}

// NewNewsPostRepo は空のNewsPostRepoを生成する。
func NewNewsPostRepo() *NewsPostRepo {
	return &NewsPostRepo{rows: make(map[int64]*model.NewsPost)}
}

func (r *NewsPostRepo) List(_ context.Context) ([]*model.NewsPost, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*model.NewsPost, 0, len(r.rows))
	for _, p := range r.rows {
		c := *p
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedDate.Equal(out[j].CreatedDate) {
			return out[i].CreatedDate.After(out[j].CreatedDate)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (r *NewsPostRepo) FindByID(_ context.Context, id int64) (*model.NewsPost, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.rows[id]; ok {
		c := *p
		return &c, nil
	}
	return nil, nil
}

func (r *NewsPostRepo) Create(_ context.Context, post *model.NewsPost) (*model.NewsPost, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	stored := *post
	stored.ID = r.nextID
	if stored.CreatedDate.IsZero() {
		stored.CreatedDate = time.Now()
	}
	r.rows[stored.ID] = &stored
	c := stored
	return &c, nil
}

func (r *NewsPostRepo) Update(_ context.Context, id int64, title, text *string) (*model.NewsPost, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.rows[id]
	if !ok {
		return nil, nil
	}
	if title != nil {
		p.Title = *title
	}
	if text != nil {
		p.Text = *text
	}
	c := *p
	return &c, nil
}

func (r *NewsPostRepo) Delete(_ context.Context, id int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[id]; !ok {
		return 0, nil
	}
	delete(r.rows, id)
	return 1, nil
}

// VideoRepo はインメモリのvideosリポジトリ。
type VideoRepo struct {
	mu     sync.Mutex
	nextID int64
	rows   map[int64]*model.Video
}

// NewVideoRepo は空のVideoRepoを生成する。
func NewVideoRepo() *VideoRepo {
	return &VideoRepo{rows: make(map[int64]*model.Video)}
}

func videoField(v *model.Video) func(string) any {
	return func(field string) any {
		switch field {
		case repository.ColID:
			return v.ID
		case "title":
			return v.Title
		case "category":
			return v.Category
		case "views":
			return v.Views
		}
		return nil
	}
}

func lessVideo(a, b *model.Video, orders []query.Order) bool {
	for _, o := range orders {
		var cmp int
		switch o.Field {
		case "views":
			switch {
			case a.Views < b.Views:
				cmp = -1
			case a.Views > b.Views:
				cmp = 1
			}
		case "title":
			cmp = strings.Compare(a.Title, b.Title)
		case repository.ColID:
			switch {
			case a.ID < b.ID:
				cmp = -1
			case a.ID > b.ID:
				cmp = 1
			}
		}
		if cmp == 0 {
			continue
		}
		if o.Desc {
			return cmp > 0
		}
		return cmp < 0
	}
	return a.ID < b.ID
}

func (r *VideoRepo) List(_ context.Context, spec query.Spec) ([]*model.Video, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cond := spec.Cond()
	var rows []*model.Video
	for _, v := range r.rows {
		if cond.Match(videoField(v)) {
			c := *v
			rows = append(rows, &c)
		}
	}
	orders := spec.Orders()
	sort.SliceStable(rows, func(i, j int) bool { return lessVideo(rows[i], rows[j], orders) })
	if off := spec.Offset(); off > 0 {
		if off >= len(rows) {
			rows = nil
		} else {
			rows = rows[off:]
		}
	}
	if lim := spec.Limit(); lim > 0 && lim < len(rows) {
		rows = rows[:lim]
	}
	if rows == nil {
		rows = []*model.Video{}
	}
	return rows, nil
}

func (r *VideoRepo) SearchTitle(ctx context.Context, term string) ([]*model.Video, error) {
	all, err := r.List(ctx, query.From(repository.TableVideos))
	if err != nil {
		return nil, err
	}
	term = strings.ToLower(term)
	out := []*model.Video{}
	for _, v := range all {
		if strings.Contains(strings.ToLower(v.Title), term) {
			out = append(out, v)
		}
	}
	return out, nil
}

func (r *VideoRepo) SumViewsByCategory(_ context.Context) ([]*model.CategoryViews, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sums := make(map[string]int64)
	for _, v := range r.rows {
		sums[v.Category] += v.Views
	}
	out := make([]*model.CategoryViews, 0, len(sums))
	for cat, total := range sums {
		out = append(out, &model.CategoryViews{Category: cat, TotalViews: total})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Category < out[j].Category })
	return out, nil
}

func (r *VideoRepo) FindByID(_ context.Context, id int64) (*model.Video, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if v, ok := r.rows[id]; ok {
		c := *v
		return &c, nil
	}
	return nil, nil
}

func (r *VideoRepo) Create(_ context.Context, video *model.Video) (*model.Video, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	stored := *video
	stored.ID = r.nextID
	r.rows[stored.ID] = &stored
	c := stored
	return &c, nil
}

func (r *VideoRepo) Update(_ context.Context, id int64, title *string, views *int64, category *string) (*model.Video, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.rows[id]
	if !ok {
		return nil, nil
	}
	if title != nil {
		v.Title = *title
	}
	if views != nil {
		v.Views = *views
	}
	if category != nil {
		v.Category = *category
	}
	c := *v
	return &c, nil
}

var (
	_ repository.UserRepository     = (*UserRepo)(nil)
	_ repository.PostRepository     = (*PostRepo)(nil)
	_ repository.CategoryRepository = (*CategoryRepo)(nil)
	_ repository.NewsPostRepository = (*NewsPostRepo)(nil)
	_ repository.VideoRepository    = (*VideoRepo)(nil)
)
