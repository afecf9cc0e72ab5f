package app

import (
	"fmt"
	"io"
	"strings"

	"github.com/hitoshi/blogcore/internal/config"
)

// Command はアプリケーションの起動モードを表す。
type Command string

const (
	CommandServe   Command = "serve"
	CommandMigrate Command = "migrate"
	// CommandHealthcheck はシェルのないコンテナイメージでのヘルスチェック用。
	// 設定の読み込みを行わず、SERVER_PORTの /health だけを叩く。
	CommandHealthcheck Command = "healthcheck"
	CommandHelp        Command = "help"
)

var commands = []struct {
	cmd     Command
	aliases []string
	summary string
}{
	{CommandServe, nil, "HTTP APIサーバーを起動する（デフォルト）"},
	{CommandMigrate, nil, "埋め込みマイグレーションを最新まで適用する"},
	{CommandHealthcheck, nil, "起動中サーバーの /health を確認する"},
	{CommandHelp, []string{"-h", "--help"}, "このヘルプと環境変数の一覧を表示する"},
}

// ParseCommand はコマンドライン引数の先頭からサブコマンドを解析する。
// 引数が空またはサポート外のコマンドの場合はCommandServeを返す。
func ParseCommand(args []string) Command {
	if len(args) == 0 {
		return CommandServe
	}
	for _, c := range commands {
		if args[0] == string(c.cmd) {
			return c.cmd
		}
		for _, alias := range c.aliases {
			if args[0] == alias {
				return c.cmd
			}
		}
	}
	return CommandServe
}

// WriteUsage はサブコマンドと環境変数の説明を書き出す。
func WriteUsage(w io.Writer) error {
	var b strings.Builder
	b.WriteString("usage: server [command]\n\ncommands:\n")
	for _, c := range commands {
		fmt.Fprintf(&b, "  %-12s %s\n", c.cmd, c.summary)
	}
	b.WriteString("\n")
	b.WriteString(config.Usage())
	b.WriteString("\n")
	_, err := io.WriteString(w, b.String())
	return err
}
