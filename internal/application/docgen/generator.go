// Package docgen 按固定顺序逐篇生成项目文档，并负责持久化与导出。
package docgen

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
	"unicode/utf8"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"docgen-ai-api/internal/domain/entity"
	wfmodel "docgen-ai-api/internal/workflow/model"
	wfnode "docgen-ai-api/internal/workflow/node"
	apperrors "docgen-ai-api/pkg/errors"
	"docgen-ai-api/pkg/logger"
	"docgen-ai-api/pkg/metrics"
	"docgen-ai-api/pkg/tracer"
)

// DocumentGenerator 单次模型调用，由 chain.DocumentChain 实现
type DocumentGenerator interface {
	Generate(ctx context.Context, in *wfmodel.DocumentGenerateInput, onChunk func(string)) (string, error)
	GenerateCombined(ctx context.Context, in *wfmodel.CombinedGenerateInput) (string, error)
}

// DocumentSaver 生成结束后的持久化
type DocumentSaver interface {
	SaveDocuments(ctx context.Context, req SaveRequest) (string, error)
}

// ProjectAccessChecker 覆盖已有项目前的归属校验，由 Storage 实现
type ProjectAccessChecker interface {
	CheckProjectAccess(ctx context.Context, projectID, userID string) error
}

// DocumentFailure 重试耗尽的文档
type DocumentFailure struct {
	DocumentType entity.DocumentType
	Err          error
}

// Result 一次生成的结果
type Result struct {
	// Documents 始终包含七个字段，失败的文档为空串
	Documents entity.GeneratedDocuments
	Failures  []DocumentFailure
	ProjectID string
	// PersistenceError 持久化失败不影响 Documents
	PersistenceError error
}

// FailedTypes 失败文档类型，按生成顺序
func (r *Result) FailedTypes() []entity.DocumentType {
	return failedTypes(r.Failures)
}

// Generator 长期存在的生成器；每次 GenerateAll 创建独立的 run，互不共享状态
type Generator struct {
	llm   DocumentGenerator
	saver DocumentSaver
	opts  Options

	sleep func(ctx context.Context, d time.Duration) error
}

// NewGenerator saver 为 nil 时不持久化
func NewGenerator(llm DocumentGenerator, saver DocumentSaver, opts Options) (*Generator, error) {
	if llm == nil {
		return nil, fmt.Errorf("document generator is nil")
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if opts.Mode == "" {
		opts.Mode = ModeSequential
	}
	if opts.FailurePolicy == "" {
		opts.FailurePolicy = FailureContinue
	}
	return &Generator{
		llm:   llm,
		saver: saver,
		opts:  opts,
		sleep: sleepContext,
	}, nil
}

// Options 返回生成器配置
func (g *Generator) Options() Options {
	return g.opts
}

// CheckProjectAccess 指定 projectID 时校验调用者可以覆盖该项目，不调用模型。
// 不持久化或存储不支持校验时直接通过。
func (g *Generator) CheckProjectAccess(ctx context.Context, projectID, owner string) error {
	if projectID == "" || g.saver == nil || !g.opts.Persist {
		return nil
	}
	checker, ok := g.saver.(ProjectAccessChecker)
	if !ok {
		return nil
	}
	return checker.CheckProjectAccess(ctx, projectID, owner)
}

// GenerateAll 按顺序生成全部文档。
// continue 策略下单篇失败不返回错误，失败记录在 Result.Failures；
// abort 策略下返回该篇的错误，Result 中保留已生成的文档；
// ctx 取消时返回 ctx.Err()。
func (g *Generator) GenerateAll(ctx context.Context, q entity.QuestionnaireResponse, opts ...RunOption) (*Result, error) {
	var ro runOptions
	for _, opt := range opts {
		opt(&ro)
	}

	ctx, span := tracer.Start(ctx, "docgen.GenerateAll",
		trace.WithAttributes(
			attribute.String("docgen.mode", g.opts.Mode),
			attribute.String("docgen.failure_policy", string(g.opts.FailurePolicy)),
		))
	defer span.End()

	if err := g.CheckProjectAccess(ctx, ro.projectID, ro.owner); err != nil {
		tracer.RecordError(span, err)
		return &Result{}, err
	}

	r := &run{g: g, q: q, ro: ro}
	start := time.Now()

	var err error
	if g.opts.Mode == ModeSingleCall {
		err = r.executeCombined(ctx)
	} else {
		err = r.execute(ctx)
	}

	result := &Result{Documents: r.docs, Failures: r.failures}
	metrics.GenerationRunDuration.Observe(time.Since(start).Seconds())

	switch {
	case err != nil && ctx.Err() != nil:
		metrics.GenerationRunsTotal.WithLabelValues("canceled").Inc()
		logger.Warn(ctx, "documentation generation canceled", "completed", entity.TotalDocuments-len(r.docs.Missing()))
		return result, ctx.Err()
	case err != nil:
		tracer.RecordError(span, err)
		metrics.GenerationRunsTotal.WithLabelValues("aborted").Inc()
		logger.Error(ctx, "documentation generation aborted", err)
		return result, err
	case len(r.failures) > 0:
		metrics.GenerationRunsTotal.WithLabelValues("partial").Inc()
	default:
		metrics.GenerationRunsTotal.WithLabelValues("completed").Inc()
	}

	// 全部失败时没有可保存的内容
	if g.saver != nil && g.opts.Persist && len(r.failures) < entity.TotalDocuments {
		projectID, perr := g.saver.SaveDocuments(ctx, SaveRequest{
			ProjectID:     ro.projectID,
			UserID:        ro.owner,
			Questionnaire: q,
			Documents:     r.docs,
		})
		if perr != nil {
			logger.Error(ctx, "failed to persist generated documents", perr)
			result.PersistenceError = perr
		} else {
			result.ProjectID = projectID
		}
	}

	r.emit(entity.GenerationProgress{
		CurrentStep:     entity.TotalDocuments,
		TotalSteps:      entity.TotalDocuments,
		Status:          entity.GenerationCompleted,
		FailedDocuments: result.FailedTypes(),
	})
	logger.Info(ctx, "documentation generation finished",
		"failed", len(r.failures),
		"project_id", result.ProjectID,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return result, nil
}

// run 单次生成的状态，不复用
type run struct {
	g  *Generator
	q  entity.QuestionnaireResponse
	ro runOptions

	docs     entity.GeneratedDocuments
	failures []DocumentFailure

	emitMu sync.Mutex
}

func (r *run) execute(ctx context.Context) error {
	types := entity.DocumentTypes()
	for i, dt := range types {
		step := i + 1
		if err := ctx.Err(); err != nil {
			return err
		}

		r.emit(r.progress(step, dt, entity.GenerationGenerating, ""))

		content, err := r.generateDocument(ctx, step, dt)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			r.failures = append(r.failures, DocumentFailure{DocumentType: dt, Err: err})
			metrics.DocumentsTotal.WithLabelValues(string(dt), "failed").Inc()
			r.emit(r.progress(step, dt, entity.GenerationError, errorMessage(err)))
			if r.g.opts.FailurePolicy == FailureAbort {
				return err
			}
			continue
		}

		r.docs.Set(dt, content)
		metrics.DocumentsTotal.WithLabelValues(string(dt), "success").Inc()
		metrics.DocumentLength.WithLabelValues(string(dt)).Observe(float64(utf8.RuneCountInString(content)))

		if step < len(types) {
			if err := r.g.sleep(ctx, r.g.opts.DocumentDelay); err != nil {
				return err
			}
		}
	}
	return nil
}

// generateDocument 单篇文档，含重试。返回最后一次尝试的错误。
func (r *run) generateDocument(ctx context.Context, step int, dt entity.DocumentType) (string, error) {
	ctx = logger.WithContext(ctx, logger.DocumentTypeKey, string(dt))
	ctx, span := tracer.Start(ctx, "docgen.generateDocument",
		trace.WithAttributes(
			attribute.String("docgen.document_type", string(dt)),
			attribute.Int("docgen.step", step),
		))
	defer span.End()

	stop := r.watchSlow(ctx, dt)
	defer stop()

	in := &wfmodel.DocumentGenerateInput{
		DocumentType: dt,
		Context:      wfnode.BuildUserContext(r.q, r.docs, dt),
		Provider:     r.g.opts.Provider,
		Model:        r.g.opts.Model,
		Config:       r.g.opts.Config,
	}

	var onChunk func(string)
	if r.ro.onChunk != nil {
		onChunk = func(chunk string) { r.ro.onChunk(dt, chunk) }
	}

	content, attempts, err := r.withRetries(ctx, string(dt), func(ctx context.Context) (string, error) {
		content, err := r.g.llm.Generate(ctx, in, onChunk)
		if err != nil {
			return "", err
		}
		if r.g.opts.ValidateContent {
			if err := wfnode.ValidateContent(dt, content); err != nil {
				logger.Debug(ctx, "content rejected", "preview", wfnode.Preview(content, 120))
				return "", err
			}
		}
		return content, nil
	})
	if err != nil {
		tracer.RecordError(span, err)
		if ctx.Err() == nil {
			logger.Error(ctx, "document generation failed", err, "step", step, "attempts", attempts)
		}
		return "", err
	}

	logger.Info(ctx, "document generated",
		"step", step,
		"attempts", attempts,
		"length", utf8.RuneCountInString(content),
	)
	return content, nil
}

// withRetries 首次尝试加至多 MaxRetries 次重试，第 n 次重试前等待 RetryBaseDelay*n
func (r *run) withRetries(ctx context.Context, label string, fn func(ctx context.Context) (string, error)) (string, int, error) {
	var lastErr error
	attempts := 0
	for attempt := 0; attempt <= r.g.opts.MaxRetries; attempt++ {
		if attempt > 0 {
			if err := r.g.sleep(ctx, r.g.opts.RetryBaseDelay*time.Duration(attempt)); err != nil {
				return "", attempts, err
			}
		}
		attempts++

		content, err := fn(ctx)
		if err == nil {
			metrics.DocumentAttemptsTotal.WithLabelValues(label, "ok").Inc()
			return content, attempts, nil
		}
		if ctx.Err() != nil {
			return "", attempts, ctx.Err()
		}
		lastErr = err
		metrics.DocumentAttemptsTotal.WithLabelValues(label, errorKind(err)).Inc()
		logger.Warn(ctx, "generation attempt failed",
			"attempt", attempts,
			"max_attempts", r.g.opts.MaxRetries+1,
			"error", err.Error(),
		)
	}
	return "", attempts, lastErr
}

// watchSlow 超过 SlowWarning 仍未完成时提醒一次，返回的函数用于停止计时
func (r *run) watchSlow(ctx context.Context, dt entity.DocumentType) func() {
	d := r.g.opts.SlowWarning
	if d <= 0 {
		return func() {}
	}
	timer := time.AfterFunc(d, func() {
		logger.Warn(ctx, "still generating document", "elapsed", d.String())
		if r.ro.onSlow != nil {
			r.ro.onSlow(dt, d)
		}
	})
	return func() { timer.Stop() }
}

func (r *run) progress(step int, dt entity.DocumentType, status entity.GenerationStatus, errMsg string) entity.GenerationProgress {
	doc := dt
	return entity.GenerationProgress{
		CurrentStep:     step,
		TotalSteps:      entity.TotalDocuments,
		CurrentDocument: &doc,
		Status:          status,
		Error:           errMsg,
		FailedDocuments: failedTypes(r.failures),
	}
}

func (r *run) emit(p entity.GenerationProgress) {
	if r.ro.onProgress == nil {
		return
	}
	r.emitMu.Lock()
	defer r.emitMu.Unlock()
	r.ro.onProgress(p)
}

func failedTypes(failures []DocumentFailure) []entity.DocumentType {
	if len(failures) == 0 {
		return nil
	}
	out := make([]entity.DocumentType, 0, len(failures))
	for _, f := range failures {
		out = append(out, f.DocumentType)
	}
	return out
}

func errorKind(err error) string {
	if appErr := apperrors.AsAppError(err); appErr != nil {
		return appErr.Kind()
	}
	return "INTERNAL_ERROR"
}

// errorMessage 对外展示的错误信息
func errorMessage(err error) string {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		if appErr.Detail != "" {
			return appErr.Message + ": " + appErr.Detail
		}
		return appErr.Message
	}
	return err.Error()
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
