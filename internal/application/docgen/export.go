package docgen

import (
	"regexp"
	"strings"

	"docgen-ai-api/internal/domain/entity"
)

// 文件名用于本地路径、Content-Disposition 和对象键，只保留 [a-z0-9-]
var unsafeRun = regexp.MustCompile(`[^a-z0-9]+`)

const fallbackSlug = "project"

// ExportMarkdown 按生成顺序拼接为单个 markdown 文件，空文档保留标题
func ExportMarkdown(docs entity.GeneratedDocuments) string {
	sections := make([]string, 0, entity.TotalDocuments)
	for _, dt := range entity.DocumentTypes() {
		sections = append(sections, "# "+dt.Label()+"\n\n"+docs.Get(dt))
	}
	return strings.Join(sections, "\n\n")
}

// ExportFilename 项目名转小写，其余字符连续段替换为 "-" 并去掉首尾 "-"，
// 追加 -documentation.md；结果为空时用 "project"
func ExportFilename(projectName string) string {
	slug := unsafeRun.ReplaceAllString(strings.ToLower(projectName), "-")
	slug = strings.Trim(slug, "-")
	if slug == "" {
		slug = fallbackSlug
	}
	return slug + "-documentation.md"
}
