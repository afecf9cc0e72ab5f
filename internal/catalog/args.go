package catalog

import (
	"strconv"
	"strings"

	"github.com/hitoshi/blogcore/internal/model"
)

// Args は --key=value 形式のコマンドライン引数。
type Args map[string]string

// ParseArgs は --key=value 形式の引数を解析する。
// 値の引用符は除去して前後の空白を取り除き、値が空の引数は無視する。
// "--" で始まらない引数も無視する。
func ParseArgs(argv []string) Args {
	args := Args{}
	for _, arg := range argv {
		if !strings.HasPrefix(arg, "--") {
			continue
		}
		key, value, ok := strings.Cut(strings.TrimPrefix(arg, "--"), "=")
		if !ok || key == "" {
			continue
		}
		value = strings.TrimSpace(strings.NewReplacer(`"`, "", "'", "").Replace(value))
		if value == "" {
			continue
		}
		args[key] = value
	}
	return args
}

// String は値を返す。未指定の場合はnilを返す。
func (a Args) String(key string) *string {
	if v, ok := a[key]; ok {
		return &v
	}
	return nil
}

// Int はキーの整数値を返す。未指定ならdefを返し、整数でなければINVALID_REQUESTを返す。
func (a Args) Int(key string, def int) (int, error) {
	v, ok := a[key]
	if !ok {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, model.NewInvalidRequestError("--" + key + " は整数で指定してください。")
	}
	return n, nil
}

// ID は必須の --id を整数として返す。
func (a Args) ID() (int64, error) {
	v, ok := a["id"]
	if !ok {
		return 0, model.NewInvalidRequestError("--id を指定してください。")
	}
	return ValidateID(v)
}

// ValidateID はIDが整数であることを検証する。
func ValidateID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, model.NewInvalidRequestError("ID は整数で指定してください: " + s)
	}
	return id, nil
}
