package llm

import (
	"context"
	"fmt"
	"sync"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"

	"docgen-ai-api/internal/config"
	wfmodel "docgen-ai-api/internal/workflow/model"
)

// EinoFactory 管理多个 Eino ChatModel 客户端实例
type EinoFactory struct {
	config *config.LLMConfig
	models map[string]model.BaseChatModel
	mu     sync.RWMutex
}

// NewEinoFactory 创建 Eino LLM 工厂
func NewEinoFactory(cfg *config.Config) *EinoFactory {
	return &EinoFactory{
		config: &cfg.LLM,
		models: make(map[string]model.BaseChatModel),
	}
}

// Get 获取指定名称的 ChatModel，如果未指定则返回默认客户端
func (f *EinoFactory) Get(ctx context.Context, name string) (model.BaseChatModel, error) {
	name = f.resolve(name)

	f.mu.RLock()
	m, ok := f.models[name]
	f.mu.RUnlock()
	if ok {
		return m, nil
	}

	// 惰性加载
	f.mu.Lock()
	defer f.mu.Unlock()

	// 再次检查防止竞态
	if m, ok = f.models[name]; ok {
		return m, nil
	}

	providerCfg, ok := f.config.Providers[name]
	if !ok {
		return nil, fmt.Errorf("provider %s not found in LLM config", name)
	}

	gen := generationConfigOf(providerCfg)
	maxTokens := gen.MaxTokens()
	temperature := gen.Temperature()
	topP := gen.TopP()

	// Gemini 等模型通过 OpenAI 兼容端点接入
	chatModel, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		APIKey:      providerCfg.APIKey,
		BaseURL:     providerCfg.BaseURL,
		Model:       providerCfg.Model,
		MaxTokens:   &maxTokens,
		Temperature: &temperature,
		TopP:        &topP,
		Timeout:     providerCfg.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create eino chat model for %s: %w", name, err)
	}

	f.models[name] = chatModel
	return chatModel, nil
}

// Default 返回默认 ChatModel
func (f *EinoFactory) Default(ctx context.Context) (model.BaseChatModel, error) {
	return f.Get(ctx, "")
}

// GenerationConfig 返回 provider 的部署级采样参数，未配置的项取默认值
func (f *EinoFactory) GenerationConfig(name string) wfmodel.GenerationConfig {
	providerCfg, ok := f.config.Providers[f.resolve(name)]
	if !ok {
		return wfmodel.DefaultGenerationConfig()
	}
	return generationConfigOf(providerCfg)
}

// ModelName 返回 provider 配置的模型名
func (f *EinoFactory) ModelName(name string) string {
	return f.config.Providers[f.resolve(name)].Model
}

func (f *EinoFactory) resolve(name string) string {
	if name == "" {
		return f.config.DefaultProvider
	}
	return name
}

func generationConfigOf(p config.ProviderConfig) wfmodel.GenerationConfig {
	return wfmodel.NewGenerationConfig(
		float32(p.Temperature),
		float32(p.TopP),
		p.TopK,
		p.MaxTokens,
		p.ResponseMimeType,
	)
}
