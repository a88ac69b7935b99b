package model

// 默认采样参数
const (
	DefaultTemperature      float32 = 1
	DefaultTopP             float32 = 0.95
	DefaultTopK                     = 40
	DefaultMaxTokens                = 8192
	DefaultResponseMimeType         = "text/plain"
)

// GenerationConfig 模型采样参数。
// 值不可变，With* 返回修改后的副本，多个调用方可安全共享同一份配置。
type GenerationConfig struct {
	temperature      float32
	topP             float32
	topK             int
	maxTokens        int
	responseMimeType string
}

// DefaultGenerationConfig 返回默认采样参数
func DefaultGenerationConfig() GenerationConfig {
	return GenerationConfig{
		temperature:      DefaultTemperature,
		topP:             DefaultTopP,
		topK:             DefaultTopK,
		maxTokens:        DefaultMaxTokens,
		responseMimeType: DefaultResponseMimeType,
	}
}

// NewGenerationConfig 以默认值为基础，零值字段保留默认
func NewGenerationConfig(temperature, topP float32, topK, maxTokens int, mime string) GenerationConfig {
	c := DefaultGenerationConfig()
	if temperature > 0 {
		c.temperature = temperature
	}
	if topP > 0 {
		c.topP = topP
	}
	if topK > 0 {
		c.topK = topK
	}
	if maxTokens > 0 {
		c.maxTokens = maxTokens
	}
	if mime != "" {
		c.responseMimeType = mime
	}
	return c
}

func (c GenerationConfig) Temperature() float32     { return c.temperature }
func (c GenerationConfig) TopP() float32            { return c.topP }
func (c GenerationConfig) TopK() int                { return c.topK }
func (c GenerationConfig) MaxTokens() int           { return c.maxTokens }
func (c GenerationConfig) ResponseMimeType() string { return c.responseMimeType }

func (c GenerationConfig) WithTemperature(v float32) GenerationConfig {
	c.temperature = v
	return c
}

func (c GenerationConfig) WithTopP(v float32) GenerationConfig {
	c.topP = v
	return c
}

func (c GenerationConfig) WithTopK(v int) GenerationConfig {
	c.topK = v
	return c
}

func (c GenerationConfig) WithMaxTokens(v int) GenerationConfig {
	c.maxTokens = v
	return c
}

func (c GenerationConfig) WithResponseMimeType(v string) GenerationConfig {
	c.responseMimeType = v
	return c
}
