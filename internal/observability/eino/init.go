package eino

import (
	"strings"
	"sync"

	einocallbacks "github.com/cloudwego/eino/callbacks"
	cbtemplate "github.com/cloudwego/eino/utils/callbacks"

	"docgen-ai-api/internal/config"
)

var (
	initOnce   sync.Once
	registered bool
)

// Init 按观测配置注册模型调用的全局回调，进程内只注册一次，返回是否已注册。
// 指标、追踪都关闭且日志不是 debug 时回调没有输出，不注册。
func Init(cfg config.ObservabilityConfig) bool {
	if !wantsCallbacks(cfg) {
		return registered
	}
	initOnce.Do(func() {
		handler := cbtemplate.NewHandlerHelper().
			ChatModel(newChatModelCallbackHandler()).
			Handler()
		einocallbacks.AppendGlobalHandlers(handler)
		registered = true
	})
	return registered
}

func wantsCallbacks(cfg config.ObservabilityConfig) bool {
	return cfg.Metrics.Enabled ||
		cfg.Tracing.Enabled ||
		strings.EqualFold(strings.TrimSpace(cfg.Logging.Level), "debug")
}
