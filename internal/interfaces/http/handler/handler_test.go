package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"docgen-ai-api/internal/application/docgen"
	"docgen-ai-api/internal/domain/entity"
	"docgen-ai-api/internal/infrastructure/persistence/memory"
	wfmodel "docgen-ai-api/internal/workflow/model"
	wfnode "docgen-ai-api/internal/workflow/node"
	apperrors "docgen-ai-api/pkg/errors"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// fakeLLM 返回可通过内容校验的文档，failing 中的类型始终失败
type fakeLLM struct {
	mu      sync.Mutex
	failing map[entity.DocumentType]bool
	calls   int
}

func (f *fakeLLM) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeLLM) Generate(_ context.Context, in *wfmodel.DocumentGenerateInput, onChunk func(string)) (string, error) {
	f.mu.Lock()
	f.calls++
	fail := f.failing[in.DocumentType]
	f.mu.Unlock()
	if fail {
		return "", apperrors.New(apperrors.CodeLLMProviderError, "provider unavailable")
	}
	rule, _ := wfnode.RuleFor(in.DocumentType)
	content := "# " + in.DocumentType.Label() + "\n\n" + strings.Join(rule.Keywords, " ") + " " +
		strings.Repeat("detail ", 200)
	if onChunk != nil {
		onChunk(content)
	}
	return content, nil
}

func (f *fakeLLM) GenerateCombined(context.Context, *wfmodel.CombinedGenerateInput) (string, error) {
	return "", apperrors.New(apperrors.CodeLLMProviderError, "not supported")
}

type testEnv struct {
	store   *memory.Store
	storage *docgen.Storage
	gen     *docgen.Generator
	llm     *fakeLLM
}

func newTestEnv(t *testing.T, mutate func(*docgen.Options)) *testEnv {
	t.Helper()
	store := memory.NewStore()
	storage := docgen.NewStorage(store, store.Projects(), store.Documents(), nil, 0)

	opts := docgen.DefaultOptions()
	opts.DocumentDelay = 0
	opts.RetryBaseDelay = 0
	opts.SlowWarning = 0
	opts.MaxRetries = 0
	if mutate != nil {
		mutate(&opts)
	}
	llm := &fakeLLM{failing: map[entity.DocumentType]bool{}}
	gen, err := docgen.NewGenerator(llm, storage, opts)
	require.NoError(t, err)
	return &testEnv{store: store, storage: storage, gen: gen, llm: llm}
}

func validQuestionnaire() entity.QuestionnaireResponse {
	return entity.QuestionnaireResponse{
		ProjectName:        "Acme Inventory",
		ProjectDescription: "Inventory tracking for small shops",
		TargetAudience:     "Shop owners",
		KeyFeatures:        "Barcode scanning, reports",
	}
}

func jsonBody(t *testing.T, v any) *bytes.Reader {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewReader(b)
}

func serve(engine *gin.Engine, method, path string, body *bytes.Reader) *httptest.ResponseRecorder {
	var req *http.Request
	if body == nil {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, body)
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

// withUser 模拟认证中间件
func withUser(userID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if userID != "" {
			c.Set("user_id", userID)
		}
		c.Next()
	}
}
