package docgen

import (
	"context"
	"regexp"
	"strings"
	"unicode/utf8"

	"docgen-ai-api/internal/domain/entity"
	wfmodel "docgen-ai-api/internal/workflow/model"
	wfnode "docgen-ai-api/internal/workflow/node"
	apperrors "docgen-ai-api/pkg/errors"
	"docgen-ai-api/pkg/logger"
	"docgen-ai-api/pkg/metrics"
)

// sectionMarkers 标题行包含任一子串即进入对应章节，按顺序匹配
var sectionMarkers = []struct {
	docType entity.DocumentType
	markers []string
}{
	{entity.DocProjectRequirements, []string{"Project Requirements"}},
	{entity.DocTechStack, []string{"Tech Stack", "Technical Stack"}},
	{entity.DocBackendStructure, []string{"Backend Structure", "Backend Architecture"}},
	{entity.DocFrontendGuidelines, []string{"Frontend Guidelines"}},
	{entity.DocFileStructure, []string{"File Structure"}},
	{entity.DocAppFlow, []string{"App Flow", "Application Flow"}},
	{entity.DocSystemPrompts, []string{"System Prompts"}},
}

var numberedHeading = regexp.MustCompile(`^\d+[.)]\s`)

// SplitSections 按标题拆分合并输出。第一个标题之前的内容丢弃，
// 同一类型多次出现时内容追加。
func SplitSections(text string) map[entity.DocumentType]string {
	builders := make(map[entity.DocumentType]*strings.Builder)
	var current entity.DocumentType

	for _, line := range strings.Split(text, "\n") {
		if dt, ok := matchSectionHeading(line); ok {
			current = dt
			if builders[dt] == nil {
				builders[dt] = &strings.Builder{}
			}
			continue
		}
		if current == "" {
			continue
		}
		builders[current].WriteString(line)
		builders[current].WriteByte('\n')
	}

	out := make(map[entity.DocumentType]string, len(builders))
	for dt, b := range builders {
		if s := strings.TrimSpace(b.String()); s != "" {
			out[dt] = s
		}
	}
	return out
}

func matchSectionHeading(line string) (entity.DocumentType, bool) {
	trimmed := strings.TrimSpace(line)
	if !isHeadingLine(trimmed) {
		return "", false
	}
	for _, s := range sectionMarkers {
		for _, m := range s.markers {
			if strings.Contains(trimmed, m) {
				return s.docType, true
			}
		}
	}
	return "", false
}

func isHeadingLine(line string) bool {
	return strings.HasPrefix(line, "#") ||
		strings.HasPrefix(line, "**") ||
		numberedHeading.MatchString(line)
}

// executeCombined 单次调用生成全部文档后按章节拆分
func (r *run) executeCombined(ctx context.Context) error {
	types := entity.DocumentTypes()
	r.emit(r.progress(1, types[0], entity.GenerationGenerating, ""))

	in := &wfmodel.CombinedGenerateInput{
		Context:  wfnode.BuildProjectInfo(r.q),
		Provider: r.g.opts.Provider,
		Model:    r.g.opts.Model,
		Config:   r.g.opts.Config,
	}

	var sections map[entity.DocumentType]string
	_, attempts, err := r.withRetries(ctx, "combined", func(ctx context.Context) (string, error) {
		raw, err := r.g.llm.GenerateCombined(ctx, in)
		if err != nil {
			return "", err
		}
		sections = SplitSections(raw)
		if len(sections) == 0 {
			return "", apperrors.New(apperrors.CodeContentValidation, "no sections found in combined response")
		}
		return raw, nil
	})
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		r.emit(r.progress(1, types[0], entity.GenerationError, errorMessage(err)))
		return err
	}
	logger.Info(ctx, "combined documentation generated", "attempts", attempts, "sections", len(sections))

	for i, dt := range types {
		content := sections[dt]
		if content == "" {
			err := apperrors.New(apperrors.CodeContentValidation, "section missing from combined response").
				WithDetail(string(dt))
			r.failures = append(r.failures, DocumentFailure{DocumentType: dt, Err: err})
			metrics.DocumentsTotal.WithLabelValues(string(dt), "failed").Inc()
			r.emit(r.progress(i+1, dt, entity.GenerationError, errorMessage(err)))
			if r.g.opts.FailurePolicy == FailureAbort {
				return err
			}
			continue
		}

		r.docs.Set(dt, content)
		metrics.DocumentsTotal.WithLabelValues(string(dt), "success").Inc()
		metrics.DocumentLength.WithLabelValues(string(dt)).Observe(float64(utf8.RuneCountInString(content)))
		if r.ro.onChunk != nil {
			r.ro.onChunk(dt, content)
		}
		if i+1 < len(types) {
			r.emit(r.progress(i+2, types[i+1], entity.GenerationGenerating, ""))
		}
	}
	return nil
}
