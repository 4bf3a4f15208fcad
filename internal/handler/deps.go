package handler

import (
	"linechat/internal/app/chat"
	"linechat/internal/configs"
	"linechat/internal/pkg/limiter"
)

// AppDeps carries what the status API handlers need.
type AppDeps struct {
	Hub     *chat.Hub
	Config  *configs.AppConfig
	Limiter *limiter.IPRateLimiter
}
