package docgen

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"docgen-ai-api/internal/domain/entity"
)

func TestExportMarkdown(t *testing.T) {
	docs := entity.GeneratedDocuments{ProjectRequirements: "reqs", SystemPrompts: "prompts"}
	md := ExportMarkdown(docs)

	assert.True(t, strings.HasPrefix(md, "# Project Requirements\n\nreqs\n\n# Backend Structure\n\n"))
	assert.True(t, strings.HasSuffix(md, "# System Prompts\n\nprompts"))
	assert.Equal(t, entity.TotalDocuments, strings.Count(md, "\n# ")+1)

	prev := -1
	for _, dt := range entity.DocumentTypes() {
		idx := strings.Index(md, "# "+dt.Label())
		assert.Greater(t, idx, prev, dt)
		prev = idx
	}
}

func TestExportFilename(t *testing.T) {
	assert.Equal(t, "acme-inventory-documentation.md", ExportFilename("Acme Inventory"))
	assert.Equal(t, "my-cool-app-documentation.md", ExportFilename("My  Cool\tApp"))
	assert.Equal(t, "project-documentation.md", ExportFilename(""))
}

func TestExportFilename_StaysInsideOneSegment(t *testing.T) {
	cases := map[string]string{
		"../a":           "a-documentation.md",
		"../../etc/x":    "etc-x-documentation.md",
		"a/b":            "a-b-documentation.md",
		`a"b`:            "a-b-documentation.md",
		`C:\Users\bob`:   "c-users-bob-documentation.md",
		"  Acme!!  App ": "acme-app-documentation.md",
		"库存":             "project-documentation.md",
		"...":            "project-documentation.md",
	}
	for in, want := range cases {
		got := ExportFilename(in)
		assert.Equal(t, want, got, in)
		assert.Regexp(t, `^[a-z0-9]+(-[a-z0-9]+)*-documentation\.md$`, got, in)
	}
}
