package port

import (
	"context"

	"github.com/cloudwego/eino/components/model"

	wfmodel "docgen-ai-api/internal/workflow/model"
)

// ChatModelFactory 工作流层对 LLM ChatModel 的最小依赖（port）。
type ChatModelFactory interface {
	Get(ctx context.Context, name string) (model.BaseChatModel, error)
}

// GenerationDefaults 按 provider 名称给出部署级采样参数，空名称表示默认 provider。
type GenerationDefaults interface {
	GenerationConfig(name string) wfmodel.GenerationConfig
}

// LLMProvider 同时提供模型与采样参数
type LLMProvider interface {
	ChatModelFactory
	GenerationDefaults
}
