package docgen

import (
	"fmt"
	"time"

	"docgen-ai-api/internal/config"
	"docgen-ai-api/internal/domain/entity"
	wfmodel "docgen-ai-api/internal/workflow/model"
	workflowport "docgen-ai-api/internal/workflow/port"
)

// FailurePolicy 某篇文档重试耗尽后的处理方式
type FailurePolicy string

const (
	// FailureContinue 记录失败、字段留空，继续生成后续文档
	FailureContinue FailurePolicy = "continue"
	// FailureAbort 立即终止本次生成并返回该错误
	FailureAbort FailurePolicy = "abort"
)

// 生成模式
const (
	ModeSequential = config.ModeSequential
	ModeSingleCall = config.ModeSingleCall
)

// Options 生成器的部署级配置，创建后不再修改
type Options struct {
	Mode     string
	Provider string
	Model    string
	Config   wfmodel.GenerationConfig

	MaxRetries     int
	RetryBaseDelay time.Duration
	DocumentDelay  time.Duration
	FailurePolicy  FailurePolicy

	ValidateContent bool
	Persist         bool
	// SlowWarning 单篇文档生成超过该时长时发出提醒，0 表示关闭
	SlowWarning time.Duration
}

// DefaultOptions 默认配置：顺序生成，重试 2 次，间隔 1s 线性递增，文档间隔 2s
func DefaultOptions() Options {
	return Options{
		Mode:            ModeSequential,
		Config:          wfmodel.DefaultGenerationConfig(),
		MaxRetries:      2,
		RetryBaseDelay:  time.Second,
		DocumentDelay:   2 * time.Second,
		FailurePolicy:   FailureContinue,
		ValidateContent: true,
		Persist:         true,
		SlowWarning:     30 * time.Second,
	}
}

// OptionsFromConfig 从配置构造 Options，采样参数取默认 provider 的配置
func OptionsFromConfig(cfg *config.Config, defaults workflowport.GenerationDefaults) Options {
	opts := DefaultOptions()
	gen := cfg.Generation

	opts.Mode = gen.Mode
	opts.Provider = cfg.LLM.DefaultProvider
	if p, ok := cfg.LLM.Providers[cfg.LLM.DefaultProvider]; ok {
		opts.Model = p.Model
	}
	if defaults != nil {
		opts.Config = defaults.GenerationConfig(opts.Provider)
	}
	opts.MaxRetries = gen.MaxRetries
	opts.RetryBaseDelay = gen.RetryBaseDelay
	opts.DocumentDelay = gen.DocumentDelay
	opts.FailurePolicy = FailurePolicy(gen.FailurePolicy)
	opts.ValidateContent = gen.ValidateContent
	opts.Persist = gen.Persist
	opts.SlowWarning = gen.SlowWarning
	return opts
}

func (o Options) validate() error {
	switch o.Mode {
	case "", ModeSequential, ModeSingleCall:
	default:
		return fmt.Errorf("unknown generation mode: %s", o.Mode)
	}
	switch o.FailurePolicy {
	case "", FailureContinue, FailureAbort:
	default:
		return fmt.Errorf("unknown failure policy: %s", o.FailurePolicy)
	}
	if o.MaxRetries < 0 {
		return fmt.Errorf("max retries must be >= 0")
	}
	return nil
}

// RunOption 单次生成的选项
type RunOption func(*runOptions)

type runOptions struct {
	onProgress func(p entity.GenerationProgress)
	onChunk    func(docType entity.DocumentType, chunk string)
	onSlow     func(docType entity.DocumentType, elapsed time.Duration)
	owner      string
	projectID  string
}

// WithProgress 每次进度变化时回调
func WithProgress(fn func(entity.GenerationProgress)) RunOption {
	return func(o *runOptions) { o.onProgress = fn }
}

// WithStream 启用流式，按到达顺序回调每个片段
func WithStream(fn func(docType entity.DocumentType, chunk string)) RunOption {
	return func(o *runOptions) { o.onChunk = fn }
}

// WithSlowNotice 单篇文档超过 SlowWarning 仍未完成时回调，可能在其他 goroutine 中触发
func WithSlowNotice(fn func(docType entity.DocumentType, elapsed time.Duration)) RunOption {
	return func(o *runOptions) { o.onSlow = fn }
}

// WithOwner 持久化时记录的用户
func WithOwner(userID string) RunOption {
	return func(o *runOptions) { o.owner = userID }
}

// WithProjectID 覆盖已有项目，空值表示新建
func WithProjectID(id string) RunOption {
	return func(o *runOptions) { o.projectID = id }
}
