package main

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/hitoshi/blogcore/internal/app"
)

func main() {
	// .env があれば読み込む（無ければ無視）
	_ = godotenv.Load()

	if err := app.Run(os.Stdout, os.Args[1:]); err != nil {
		slog.Error("application exited with error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
