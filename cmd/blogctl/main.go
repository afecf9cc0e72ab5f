package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/joho/godotenv"

	"github.com/hitoshi/blogcore/internal/catalog"
	"github.com/hitoshi/blogcore/internal/config"
	"github.com/hitoshi/blogcore/internal/database"
	"github.com/hitoshi/blogcore/internal/model"
	"github.com/hitoshi/blogcore/internal/repository"
	"github.com/hitoshi/blogcore/internal/repository/memory"
)

const usage = `blogctl - news_posts / videos table tool

USAGE:
  blogctl <table> <command> [--key=value ...] [--json]

NEWS COMMANDS:
  news list                                 List news posts (newest first)
  news get --id=<n>                         Show one news post
  news insert --title=<s> --text=<s>        Insert a news post
  news update --id=<n> [--title=<s>] [--text=<s>]
  news delete --id=<n>                      Delete a news post and print it

VIDEO COMMANDS:
  videos list                               List videos
  videos find --search=<s>                  Case-insensitive title search
  videos top [--top=5]                      Most viewed videos
  videos paginate [--page=1] [--size=10]    One page of videos ordered by id
  videos group                              Total views per category
  videos insert --title=<s> --views=<n> --category=<s>
  videos update --id=<n> [--title=<s>] [--views=<n>] [--category=<s>]

ENVIRONMENT VARIABLES:
  DATABASE_TYPE     Storage type: postgres or memory (default: postgres)
  DATABASE_URL      PostgreSQL connection string (required for postgres)

  Configuration can be loaded from a .env file in the current directory.
`

var errUsage = errors.New("invalid usage")

func main() {
	// .env があれば読み込む（無ければ無視）
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		fmt.Print(usage)
		os.Exit(1)
	}
	switch os.Args[1] {
	case "help", "--help", "-h":
		fmt.Print(usage)
		os.Exit(0)
	}

	svc, closeFn, err := createService()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create service: %v\n", err)
		os.Exit(1)
	}
	defer closeFn()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := run(ctx, os.Stdout, svc, os.Args[1:]); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprint(os.Stderr, usage)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		closeFn()
		os.Exit(1)
	}
}

// createService は DATABASE_TYPE に応じたリポジトリで catalog.Service を組み立てる。
func createService() (*catalog.Service, func(), error) {
	switch getEnv("DATABASE_TYPE", "postgres") {
	case "memory":
		return catalog.NewService(memory.NewNewsPostRepo(), memory.NewVideoRepo()), func() {}, nil
	case "postgres":
		cfg, err := config.LoadDatabase()
		if err != nil {
			return nil, nil, err
		}
		db, err := database.Open(cfg.URL, database.PoolConfig{
			MaxOpenConns:    cfg.MaxOpenConns,
			MaxIdleConns:    cfg.MaxIdleConns,
			ConnMaxLifetime: cfg.ConnMaxLifetime,
		})
		if err != nil {
			return nil, nil, err
		}
		svc := catalog.NewService(repository.NewPostgresNewsPostRepo(db), repository.NewPostgresVideoRepo(db))
		return svc, func() { _ = db.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unsupported DATABASE_TYPE: %s", os.Getenv("DATABASE_TYPE"))
	}
}

func getEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

// run は "<table> <command> [args]" を実行し、結果を out に書き出す。
func run(ctx context.Context, out io.Writer, svc *catalog.Service, argv []string) error {
	if len(argv) < 2 {
		return errUsage
	}
	table, command := argv[0], argv[1]
	args := catalog.ParseArgs(argv[2:])
	useJSON := hasFlag(argv[2:], "--json")

	switch table {
	case "news":
		return runNews(ctx, out, svc, command, args, useJSON)
	case "videos":
		return runVideos(ctx, out, svc, command, args, useJSON)
	default:
		return fmt.Errorf("unknown table %q: %w", table, errUsage)
	}
}

func hasFlag(argv []string, flag string) bool {
	for _, a := range argv {
		if a == flag {
			return true
		}
	}
	return false
}

func runNews(ctx context.Context, out io.Writer, svc *catalog.Service, command string, args catalog.Args, useJSON bool) error {
	var (
		posts []*model.NewsPost
		err   error
	)
	switch command {
	case "list":
		posts, err = svc.ListNews(ctx)
	case "get", "update", "delete":
		id, idErr := args.ID()
		if idErr != nil {
			return idErr
		}
		var post *model.NewsPost
		switch command {
		case "get":
			post, err = svc.GetNews(ctx, id)
		case "update":
			post, err = svc.UpdateNews(ctx, id, args.String("title"), args.String("text"))
		default:
			post, err = svc.DeleteNews(ctx, id)
		}
		if post != nil {
			posts = []*model.NewsPost{post}
		}
	case "insert":
		var post *model.NewsPost
		post, err = svc.InsertNews(ctx, args.String("title"), args.String("text"))
		if post != nil {
			posts = []*model.NewsPost{post}
		}
	default:
		return fmt.Errorf("unknown news command %q: %w", command, errUsage)
	}
	if err != nil {
		return err
	}

	if useJSON {
		return printJSON(out, posts)
	}
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tTEXT\tCREATED")
	for _, p := range posts {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", p.ID, p.Title, truncate(p.Text, 40), p.CreatedDate.Format(time.RFC3339))
	}
	return w.Flush()
}

func runVideos(ctx context.Context, out io.Writer, svc *catalog.Service, command string, args catalog.Args, useJSON bool) error {
	if command == "group" {
		groups, err := svc.GroupVideos(ctx)
		if err != nil {
			return err
		}
		if useJSON {
			return printJSON(out, groups)
		}
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "CATEGORY\tTOTAL_VIEWS")
		for _, g := range groups {
			fmt.Fprintf(w, "%s\t%d\n", g.Category, g.TotalViews)
		}
		return w.Flush()
	}

	videos, err := selectVideos(ctx, svc, command, args)
	if err != nil {
		return err
	}
	if useJSON {
		return printJSON(out, videos)
	}
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tVIEWS\tCATEGORY")
	for _, v := range videos {
		fmt.Fprintf(w, "%d\t%s\t%d\t%s\n", v.ID, v.Title, v.Views, v.Category)
	}
	return w.Flush()
}

func selectVideos(ctx context.Context, svc *catalog.Service, command string, args catalog.Args) ([]*model.Video, error) {
	switch command {
	case "list":
		return svc.ListVideos(ctx)
	case "find":
		search := args.String("search")
		if search == nil {
			return nil, model.NewInvalidRequestError("--search を指定してください。")
		}
		return svc.FindVideos(ctx, *search)
	case "top":
		n, err := args.Int("top", catalog.DefaultTop)
		if err != nil {
			return nil, err
		}
		return svc.TopVideos(ctx, n)
	case "paginate":
		page, err := args.Int("page", catalog.DefaultPage)
		if err != nil {
			return nil, err
		}
		size, err := args.Int("size", catalog.DefaultPageSize)
		if err != nil {
			return nil, err
		}
		return svc.PaginateVideos(ctx, page, size)
	case "insert":
		if args.String("views") == nil {
			return nil, model.NewInvalidRequestError("--title, --views, --category を指定してください。")
		}
		views, err := args.Int("views", 0)
		if err != nil {
			return nil, err
		}
		v, err := svc.InsertVideo(ctx, args.String("title"), int64(views), args.String("category"))
		if err != nil {
			return nil, err
		}
		return []*model.Video{v}, nil
	case "update":
		id, err := args.ID()
		if err != nil {
			return nil, err
		}
		var views *int64
		if s := args.String("views"); s != nil {
			n, err := strconv.ParseInt(*s, 10, 64)
			if err != nil {
				return nil, model.NewInvalidRequestError("--views は整数で指定してください。")
			}
			views = &n
		}
		v, err := svc.UpdateVideo(ctx, id, args.String("title"), views, args.String("category"))
		if err != nil {
			return nil, err
		}
		return []*model.Video{v}, nil
	default:
		return nil, fmt.Errorf("unknown videos command %q: %w", command, errUsage)
	}
}

func printJSON(out io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	_, err = fmt.Fprintln(out, string(data))
	return err
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
