package chain

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	openaiopts "github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	einoprompt "github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	llmctx "docgen-ai-api/internal/observability/eino"
	wfmodel "docgen-ai-api/internal/workflow/model"
	wfnode "docgen-ai-api/internal/workflow/node"
	workflowport "docgen-ai-api/internal/workflow/port"
	workflowprompt "docgen-ai-api/internal/workflow/prompt"
	apperrors "docgen-ai-api/pkg/errors"
)

// DefaultAttemptTimeout 单次模型调用默认超时
const DefaultAttemptTimeout = 10 * time.Second

// workflowCombined 单次调用生成全部文档时的工作流标签
const workflowCombined = "combined"

var errEmptyResponse = apperrors.New(apperrors.CodeLLMProviderError, "empty llm response")

// DocumentChain 单篇文档的模型调用。一次 Generate 即一次尝试，重试由调用方负责。
type DocumentChain struct {
	factory        workflowport.ChatModelFactory
	registry       *workflowprompt.Registry
	attemptTimeout time.Duration

	chainOnce sync.Once
	chain     compose.Runnable[*llmRequest, *schema.Message]
	chainErr  error
}

// NewDocumentChain attemptTimeout <= 0 时不设超时
func NewDocumentChain(factory workflowport.ChatModelFactory, registry *workflowprompt.Registry, attemptTimeout time.Duration) *DocumentChain {
	if registry == nil {
		registry = workflowprompt.NewRegistry()
	}
	return &DocumentChain{
		factory:        factory,
		registry:       registry,
		attemptTimeout: attemptTimeout,
	}
}

// llmRequest 链路内部请求，单篇与合并生成共用
type llmRequest struct {
	Workflow string
	Template einoprompt.ChatTemplate
	Context  string
	Provider string
	Model    string
	Config   wfmodel.GenerationConfig
}

type documentChainState struct {
	Req      *llmRequest
	Messages []*schema.Message
	OutMsg   *schema.Message
}

// Generate 生成一篇文档。onChunk 非空时走流式，片段按到达顺序回调，返回完整文本。
func (c *DocumentChain) Generate(ctx context.Context, in *wfmodel.DocumentGenerateInput, onChunk func(string)) (string, error) {
	if c == nil || c.factory == nil {
		return "", fmt.Errorf("llm factory not configured")
	}
	if in == nil {
		return "", fmt.Errorf("input is nil")
	}

	tpl, err := c.registry.ChatTemplate(in.DocumentType)
	if err != nil {
		return "", err
	}
	req := &llmRequest{
		Workflow: string(in.DocumentType),
		Template: tpl,
		Context:  in.Context,
		Provider: strings.TrimSpace(in.Provider),
		Model:    strings.TrimSpace(in.Model),
		Config:   in.Config,
	}
	return c.run(ctx, req, onChunk)
}

// GenerateCombined 一次调用生成全部文档，返回未拆分的原始文本
func (c *DocumentChain) GenerateCombined(ctx context.Context, in *wfmodel.CombinedGenerateInput) (string, error) {
	if c == nil || c.factory == nil {
		return "", fmt.Errorf("llm factory not configured")
	}
	if in == nil {
		return "", fmt.Errorf("input is nil")
	}

	tpl, err := c.registry.CombinedChatTemplate()
	if err != nil {
		return "", err
	}
	req := &llmRequest{
		Workflow: workflowCombined,
		Template: tpl,
		Context:  in.Context,
		Provider: strings.TrimSpace(in.Provider),
		Model:    strings.TrimSpace(in.Model),
		Config:   in.Config,
	}
	return c.run(ctx, req, nil)
}

func (c *DocumentChain) run(ctx context.Context, req *llmRequest, onChunk func(string)) (string, error) {
	if c.attemptTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.attemptTimeout)
		defer cancel()
	}
	ctx = llmctx.WithWorkflowProvider(ctx, req.Workflow, req.Provider)

	var (
		text string
		err  error
	)
	if onChunk != nil {
		text, err = c.stream(ctx, req, onChunk)
	} else {
		text, err = c.invoke(ctx, req)
	}
	if err != nil {
		return "", wfnode.ClassifyLLMError(err)
	}
	if strings.TrimSpace(text) == "" {
		return "", errEmptyResponse
	}
	return text, nil
}

func (c *DocumentChain) invoke(ctx context.Context, req *llmRequest) (string, error) {
	chain, err := c.getChain()
	if err != nil {
		return "", err
	}
	out, err := chain.Invoke(ctx, req)
	if err != nil {
		return "", err
	}
	return out.Content, nil
}

// stream 流式读取；出错时已推送的片段不会撤回
func (c *DocumentChain) stream(ctx context.Context, req *llmRequest, onChunk func(string)) (string, error) {
	chatModel, err := c.factory.Get(ctx, req.Provider)
	if err != nil {
		return "", err
	}
	msgs, err := formatMessages(ctx, req)
	if err != nil {
		return "", err
	}

	reader, err := chatModel.Stream(ctx, msgs, buildModelOptions(req)...)
	if err != nil {
		return "", err
	}
	defer reader.Close()

	var sb strings.Builder
	for {
		chunk, err := reader.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", err
		}
		if chunk == nil || chunk.Content == "" {
			continue
		}
		sb.WriteString(chunk.Content)
		onChunk(chunk.Content)
	}
	return sb.String(), nil
}

func (c *DocumentChain) getChain() (compose.Runnable[*llmRequest, *schema.Message], error) {
	c.chainOnce.Do(func() {
		c.chain, c.chainErr = c.buildChain(context.Background())
	})
	return c.chain, c.chainErr
}

func (c *DocumentChain) buildChain(ctx context.Context) (compose.Runnable[*llmRequest, *schema.Message], error) {
	chain := compose.NewChain[*llmRequest, *schema.Message]()

	chain.AppendLambda(
		compose.InvokableLambda(func(_ context.Context, req *llmRequest) (*documentChainState, error) {
			if req == nil || req.Template == nil {
				return nil, fmt.Errorf("request is nil")
			}
			return &documentChainState{Req: req}, nil
		}),
		compose.WithNodeName("document.init"),
	)

	chain.AppendLambda(
		compose.InvokableLambda(func(ctx context.Context, st *documentChainState) (*documentChainState, error) {
			msgs, err := formatMessages(ctx, st.Req)
			if err != nil {
				return nil, err
			}
			st.Messages = msgs
			return st, nil
		}),
		compose.WithNodeName("document.template"),
	)

	chain.AppendLambda(
		compose.InvokableLambda(func(ctx context.Context, st *documentChainState) (*documentChainState, error) {
			chatModel, err := c.factory.Get(ctx, st.Req.Provider)
			if err != nil {
				return nil, err
			}
			outMsg, err := chatModel.Generate(ctx, st.Messages, buildModelOptions(st.Req)...)
			if err != nil {
				return nil, err
			}
			if outMsg == nil {
				return nil, errEmptyResponse
			}
			st.OutMsg = outMsg
			return st, nil
		}),
		compose.WithNodeName("document.llm"),
	)

	chain.AppendLambda(
		compose.InvokableLambda(func(_ context.Context, st *documentChainState) (*schema.Message, error) {
			if st == nil || st.OutMsg == nil {
				return nil, fmt.Errorf("state is nil")
			}
			return st.OutMsg, nil
		}),
		compose.WithNodeName("document.finalize"),
	)

	return chain.Compile(ctx)
}

func formatMessages(ctx context.Context, req *llmRequest) ([]*schema.Message, error) {
	return req.Template.Format(ctx, map[string]any{
		workflowprompt.ContextVar: req.Context,
	})
}

func buildModelOptions(req *llmRequest) []model.Option {
	cfg := req.Config
	opts := []model.Option{
		model.WithTemperature(cfg.Temperature()),
		model.WithTopP(cfg.TopP()),
		model.WithMaxTokens(cfg.MaxTokens()),
	}
	if req.Model != "" {
		opts = append(opts, model.WithModel(req.Model))
	}

	extra := map[string]any{}
	if cfg.TopK() > 0 {
		extra["top_k"] = cfg.TopK()
	}
	if cfg.ResponseMimeType() == "application/json" {
		extra["response_format"] = map[string]any{"type": "json_object"}
	}
	if len(extra) > 0 {
		opts = append(opts, openaiopts.WithExtraFields(extra))
	}
	return opts
}
