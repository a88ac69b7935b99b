package prompt

import (
	"embed"
	"fmt"
	"strings"
	"sync"

	einoprompt "github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"

	"docgen-ai-api/internal/domain/entity"
	apperrors "docgen-ai-api/pkg/errors"
)

//go:embed templates/*.txt
var templatesFS embed.FS

// ContextVar 用户模板中上下文占位符名
const ContextVar = "context"

// combinedID 单次调用生成全部文档使用的模板
const combinedID = "combined"

// Template 某一文档类型的原始模板文本
type Template struct {
	System string
	User   string
}

// Registry 提示词模板注册表，ChatTemplate 结果按 id 缓存
type Registry struct {
	mu    sync.RWMutex
	cache map[string]einoprompt.ChatTemplate
}

func NewRegistry() *Registry {
	return &Registry{
		cache: make(map[string]einoprompt.ChatTemplate),
	}
}

// Template 返回文档类型对应的模板文本，未知类型返回 CodeUnknownDocumentType
func (r *Registry) Template(docType entity.DocumentType) (Template, error) {
	if !docType.Valid() {
		return Template{}, apperrors.ErrUnknownDocumentType.WithDetail(string(docType))
	}
	return loadTemplate(string(docType))
}

// ChatTemplate 返回文档类型对应的 [system, user] 消息模板
func (r *Registry) ChatTemplate(docType entity.DocumentType) (einoprompt.ChatTemplate, error) {
	if !docType.Valid() {
		return nil, apperrors.ErrUnknownDocumentType.WithDetail(string(docType))
	}
	return r.chatTemplate(string(docType))
}

// CombinedChatTemplate 返回单次生成全部文档的消息模板
func (r *Registry) CombinedChatTemplate() (einoprompt.ChatTemplate, error) {
	return r.chatTemplate(combinedID)
}

func (r *Registry) chatTemplate(id string) (einoprompt.ChatTemplate, error) {
	if r == nil {
		return nil, fmt.Errorf("prompt registry is nil")
	}

	r.mu.RLock()
	if tpl, ok := r.cache[id]; ok {
		r.mu.RUnlock()
		return tpl, nil
	}
	r.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()
	if tpl, ok := r.cache[id]; ok {
		return tpl, nil
	}

	t, err := loadTemplate(id)
	if err != nil {
		return nil, err
	}
	tpl := einoprompt.FromMessages(
		schema.FString,
		schema.SystemMessage(t.System),
		schema.UserMessage(t.User),
	)
	r.cache[id] = tpl
	return tpl, nil
}

func loadTemplate(id string) (Template, error) {
	system, err := readEmbeddedText("templates/" + id + ".system.txt")
	if err != nil {
		return Template{}, err
	}
	user, err := readEmbeddedText("templates/" + id + ".user.txt")
	if err != nil {
		return Template{}, err
	}
	return Template{System: system, User: user}, nil
}

func readEmbeddedText(path string) (string, error) {
	b, err := templatesFS.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read prompt template %s: %w", path, err)
	}
	return strings.TrimSpace(string(b)), nil
}
