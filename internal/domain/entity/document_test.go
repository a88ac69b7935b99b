package entity

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocumentTypes_FixedOrder(t *testing.T) {
	assert.Equal(t, []DocumentType{
		DocProjectRequirements,
		DocBackendStructure,
		DocTechStack,
		DocFrontendGuidelines,
		DocFileStructure,
		DocAppFlow,
		DocSystemPrompts,
	}, DocumentTypes())

	for i, d := range DocumentTypes() {
		assert.Equal(t, i+1, d.Step())
	}
	assert.Equal(t, 0, DocumentType("pricing").Step())
}

func TestDocumentTypes_ReturnsCopy(t *testing.T) {
	types := DocumentTypes()
	types[0] = DocAppFlow

	assert.Equal(t, DocProjectRequirements, DocumentTypes()[0])
}

func TestParseDocumentType(t *testing.T) {
	d, err := ParseDocumentType("techStack")
	require.NoError(t, err)
	assert.Equal(t, DocTechStack, d)
	assert.Equal(t, "Tech Stack", d.Label())

	_, err = ParseDocumentType("tech_stack")
	assert.Error(t, err)
}

func TestGeneratedDocuments_JSONShape(t *testing.T) {
	var docs GeneratedDocuments
	docs.Set(DocAppFlow, "flow")

	raw, err := json.Marshal(docs)
	require.NoError(t, err)

	var m map[string]string
	require.NoError(t, json.Unmarshal(raw, &m))
	assert.Len(t, m, TotalDocuments)
	for _, d := range DocumentTypes() {
		_, ok := m[string(d)]
		assert.True(t, ok, "missing key %s", d)
	}
	assert.Equal(t, "flow", m["appFlow"])
}

func TestGeneratedDocuments_Missing(t *testing.T) {
	var docs GeneratedDocuments
	assert.Len(t, docs.Missing(), TotalDocuments)
	assert.False(t, docs.Complete())

	for _, d := range DocumentTypes() {
		require.True(t, docs.Set(d, "content of "+string(d)))
	}
	assert.True(t, docs.Complete())

	docs.Set(DocTechStack, "")
	assert.Equal(t, []DocumentType{DocTechStack}, docs.Missing())
	assert.False(t, docs.Set("unknown", "x"))
}

func TestDocumentsFromSet_RoundTrip(t *testing.T) {
	var docs GeneratedDocuments
	docs.Set(DocProjectRequirements, "req")
	docs.Set(DocSystemPrompts, "prompts")

	rows := DocumentsFromSet("p1", docs)
	require.Len(t, rows, TotalDocuments)
	assert.Equal(t, DocProjectRequirements, rows[0].DocumentType)
	assert.Equal(t, "p1", rows[6].ProjectID)

	assert.Equal(t, docs, SetFromDocuments(rows))
}
