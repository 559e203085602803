package utils

import (
	"time"

	"github.com/go-resty/resty/v2"
)

// ClientConfig 外部 REST 协作方客户端配置
type ClientConfig struct {
	BaseURL string
	Timeout time.Duration
	Debug   bool
	Token   string // 可选：转发给 Listings API 的 Bearer Token
}

// NewAPIClient 创建统一的 Resty 客户端
// 不重试：网络失败只上报一次，由用户手动重试
func NewAPIClient(cfg ClientConfig) *resty.Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 20 * time.Second
	}

	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetDebug(cfg.Debug).
		SetTimeout(cfg.Timeout).
		SetRetryCount(0).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", "Trailer-Host-Go/1.0")

	if cfg.Token != "" {
		client.SetAuthToken(cfg.Token)
	}

	return client
}
