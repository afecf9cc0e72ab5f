// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// 記事の書き込み操作ラベル
const (
	OpCreate = "create"
	OpUpdate = "update"
	OpDelete = "delete"
)

// MetricsCollector はメトリクス収集のインターフェース。
// サービス層とHTTPミドルウェアから利用する。
type MetricsCollector interface {
	RecordRegistration()
	RecordLogin(success bool)
	RecordPostWrite(op string)
	RecordPostView()
	RecordHTTPStatus(statusCode int)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	registrations prometheus.Counter
	logins        *prometheus.CounterVec
	postWrites    *prometheus.CounterVec
	postViews     prometheus.Counter
	httpStatus    *prometheus.CounterVec
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		registrations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "blog_registrations_total",
			Help: "ユーザー登録の合計数",
		}),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "blog_logins_total",
			Help: "ログイン試行の結果別合計数",
		}, []string{"result"}),
		postWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "blog_post_writes_total",
			Help: "記事の作成・更新・削除の操作別合計数",
		}, []string{"op"}),
		postViews: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "blog_post_views_total",
			Help: "公開記事の閲覧数カウントの合計",
		}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "blog_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
	}

	reg.MustRegister(
		c.registrations,
		c.logins,
		c.postWrites,
		c.postViews,
		c.httpStatus,
	)

	return c
}

// RecordRegistration はユーザー登録を記録する。
func (c *Collector) RecordRegistration() {
	c.registrations.Inc()
}

// RecordLogin はログイン試行の結果を記録する。
func (c *Collector) RecordLogin(success bool) {
	result := "failure"
	if success {
		result = "success"
	}
	c.logins.WithLabelValues(result).Inc()
}

// RecordPostWrite は記事の書き込み操作を記録する。
func (c *Collector) RecordPostWrite(op string) {
	c.postWrites.WithLabelValues(op).Inc()
}

// RecordPostView は閲覧数の加算を記録する。
func (c *Collector) RecordPostView() {
	c.postViews.Inc()
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// Nop は何も記録しないMetricsCollector。
type Nop struct{}

func (Nop) RecordRegistration()    {}
func (Nop) RecordLogin(bool)       {}
func (Nop) RecordPostWrite(string) {}
func (Nop) RecordPostView()        {}
func (Nop) RecordHTTPStatus(int)   {}

var (
	_ MetricsCollector = (*Collector)(nil)
	_ MetricsCollector = Nop{}
)

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
