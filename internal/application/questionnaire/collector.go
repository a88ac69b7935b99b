// Package questionnaire 分步收集项目问卷并校验。
package questionnaire

import (
	"errors"
	"fmt"
	"sync"

	"docgen-ai-api/internal/domain/entity"
)

const (
	FirstStep = 1
	LastStep  = 5
)

// steps 步骤到字段的映射，下标 0 对应第 1 步
var steps = [LastStep]entity.QuestionnaireField{
	entity.FieldProjectName,
	entity.FieldProjectDescription,
	entity.FieldTargetAudience,
	entity.FieldKeyFeatures,
	entity.FieldTechnicalConstraints,
}

var (
	ErrFrozen       = errors.New("questionnaire already submitted")
	ErrUnknownField = errors.New("unknown questionnaire field")
)

// Collector 问卷收集状态机，并发安全。Submit 成功后冻结，不再接受修改。
type Collector struct {
	mu       sync.RWMutex
	step     int
	response entity.QuestionnaireResponse
	errors   map[entity.QuestionnaireField]string
	frozen   bool
}

// NewCollector 从第 1 步、空答案开始
func NewCollector() *Collector {
	return &Collector{
		step:   FirstStep,
		errors: make(map[entity.QuestionnaireField]string),
	}
}

// StepField 返回步骤对应的字段
func StepField(step int) (entity.QuestionnaireField, bool) {
	if step < FirstStep || step > LastStep {
		return "", false
	}
	return steps[step-FirstStep], true
}

// UpdateField 写入字段并只重新校验该字段
func (c *Collector) UpdateField(field entity.QuestionnaireField, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.frozen {
		return ErrFrozen
	}
	if !c.response.Set(field, value) {
		return fmt.Errorf("%w: %s", ErrUnknownField, field)
	}
	c.setError(field, ValidateField(field, value))
	return nil
}

// GoToNextStep 当前步骤校验通过则前进一步；最后一步只校验，不再前进，返回 false
func (c *Collector) GoToNextStep() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	field := steps[c.step-FirstStep]
	msg := ValidateField(field, c.response.Get(field))
	c.setError(field, msg)
	if msg != "" || c.step >= LastStep {
		return false
	}
	c.step++
	return true
}

// GoToPreviousStep 后退一步，不校验，最小为第 1 步
func (c *Collector) GoToPreviousStep() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.step > FirstStep {
		c.step--
	}
}

// Submit 校验全部字段；通过则冻结并返回最终答案
func (c *Collector) Submit() (entity.QuestionnaireResponse, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.frozen {
		return c.response, true
	}
	errs := Validate(c.response)
	c.errors = errs
	if len(errs) > 0 {
		return entity.QuestionnaireResponse{}, false
	}
	c.frozen = true
	return c.response, true
}

func (c *Collector) Step() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.step
}

// CurrentField 当前步骤的字段
func (c *Collector) CurrentField() entity.QuestionnaireField {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return steps[c.step-FirstStep]
}

func (c *Collector) Response() entity.QuestionnaireResponse {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.response
}

// Errors 返回错误映射的副本
func (c *Collector) Errors() map[entity.QuestionnaireField]string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[entity.QuestionnaireField]string, len(c.errors))
	for k, v := range c.errors {
		out[k] = v
	}
	return out
}

func (c *Collector) Frozen() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.frozen
}

func (c *Collector) setError(field entity.QuestionnaireField, msg string) {
	if msg == "" {
		delete(c.errors, field)
		return
	}
	c.errors[field] = msg
}
