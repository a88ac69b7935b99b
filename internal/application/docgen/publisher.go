package docgen

import (
	"context"

	apperrors "docgen-ai-api/pkg/errors"
	"docgen-ai-api/pkg/logger"
)

const markdownContentType = "text/markdown; charset=utf-8"

// ObjectStore 对象存储，由 storage.R2Client 实现
type ObjectStore interface {
	Put(ctx context.Context, key, contentType string, body []byte) (string, error)
}

// PublishResult 发布结果
type PublishResult struct {
	URL      string `json:"url"`
	Key      string `json:"key"`
	Filename string `json:"filename"`
}

// Publisher 将项目导出的 markdown 上传到对象存储
type Publisher struct {
	storage *Storage
	store   ObjectStore
}

func NewPublisher(storage *Storage, store ObjectStore) *Publisher {
	return &Publisher{storage: storage, store: store}
}

// Enabled 未配置对象存储时发布不可用
func (p *Publisher) Enabled() bool {
	return p != nil && p.store != nil
}

// Publish 导出并上传，对象键为 <projectID>/<filename>
func (p *Publisher) Publish(ctx context.Context, projectID string) (*PublishResult, error) {
	if !p.Enabled() {
		return nil, apperrors.New(apperrors.CodeServiceUnavailable, "object storage is not configured")
	}

	view, err := p.storage.LoadProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	filename := ExportFilename(view.Project.Name)
	key := projectID + "/" + filename
	url, err := p.store.Put(ctx, key, markdownContentType, []byte(ExportMarkdown(view.Documents)))
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeStorageError, "failed to publish documentation")
	}

	logger.Info(ctx, "documentation published", "project_id", projectID, "url", url)
	return &PublishResult{URL: url, Key: key, Filename: filename}, nil
}
