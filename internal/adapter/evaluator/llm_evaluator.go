package evaluator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"guide-exam/internal/domain"
	"guide-exam/internal/logger"

	"github.com/tmc/langchaingo/llms"
	"go.uber.org/zap"
)

const defaultTimeout = 30 * time.Second

// llmEvaluator implements domain.InterviewEvaluator
type llmEvaluator struct {
	model   llms.Model
	timeout time.Duration
}

// NewLLMEvaluator wraps any langchaingo model, usually *ollama.LLM.
func NewLLMEvaluator(model llms.Model, timeout time.Duration) domain.InterviewEvaluator {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &llmEvaluator{
		model:   model,
		timeout: timeout,
	}
}

const promptTemplate = `你是导游资格考试现场考试（面试）的考官。请根据参考答案评价考生的回答，只输出如下格式的 JSON 对象：
{
    "score": 0.0,
    "feedback": "简短点评",
    "key_points": ["考生答到的要点"],
    "missed_points": ["考生遗漏的要点"]
}

考试类型: %s
题目: %s
参考答案: %s
考生回答: %s

规则:
1. score 介于 0 到 1 之间，1 表示完全符合参考答案
2. feedback 不超过 100 字，指出优点和需要改进的地方
3. key_points 和 missed_points 只能来自参考答案`

// Evaluate implements domain.InterviewEvaluator
func (e *llmEvaluator) Evaluate(ctx context.Context, question *domain.InterviewQuestion, answer string) (*domain.InterviewFeedback, error) {
	l := logger.Get()
	l.Info("Evaluating interview answer with LLM",
		zap.Int64("question_id", question.ID),
		zap.String("practice_type", string(question.PracticeType)))

	prompt := fmt.Sprintf(promptTemplate, question.PracticeType.DisplayName(), question.Content, question.Explanation, answer)

	raw, err := e.callLLM(ctx, prompt)
	if err != nil {
		return nil, domain.NewLLMServiceError(err)
	}
	l.Debug("Raw LLM response received", zap.String("raw_response", raw))

	feedback, err := parseFeedback(raw)
	if err != nil {
		l.Error("Failed to parse LLM response", zap.Error(err), zap.String("raw_response", raw))
		return nil, domain.NewLLMServiceError(err)
	}
	return feedback, nil
}

func (e *llmEvaluator) callLLM(ctx context.Context, prompt string) (string, error) {
	l := logger.Get()

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	response, err := llms.GenerateFromSinglePrompt(ctx, e.model, prompt, llms.WithTemperature(0.1))
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			l.Error("LLM request timed out", zap.Error(err))
			return "", fmt.Errorf("LLM request timed out: %w", err)
		}
		l.Error("Failed to get response from LLM", zap.Error(err))
		return "", fmt.Errorf("LLM call failed: %w", err)
	}
	return response, nil
}

// parseFeedback extracts the JSON object from a model reply, dropping any <think> block.
func parseFeedback(raw string) (*domain.InterviewFeedback, error) {
	cleaned := strings.TrimSpace(raw)
	if thinkStart := strings.Index(cleaned, "<think>"); thinkStart != -1 {
		if thinkEnd := strings.Index(cleaned, "</think>"); thinkEnd > thinkStart {
			cleaned = strings.TrimSpace(cleaned[:thinkStart] + cleaned[thinkEnd+len("</think>"):])
		}
	}

	jsonStart := strings.Index(cleaned, "{")
	jsonEnd := strings.LastIndex(cleaned, "}")
	if jsonStart == -1 || jsonEnd <= jsonStart {
		return nil, fmt.Errorf("no JSON object found in LLM response")
	}

	var resp struct {
		Score        float64  `json:"score"`
		Feedback     string   `json:"feedback"`
		KeyPoints    []string `json:"key_points"`
		MissedPoints []string `json:"missed_points"`
	}
	if err := json.Unmarshal([]byte(cleaned[jsonStart:jsonEnd+1]), &resp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal JSON from LLM: %w", err)
	}

	score := resp.Score
	if score < 0 {
		score = 0
	}
	if score > 1 {
		score = 1
	}
	if resp.KeyPoints == nil {
		resp.KeyPoints = []string{}
	}
	return &domain.InterviewFeedback{
		Score:        score,
		Feedback:     resp.Feedback,
		KeyPoints:    resp.KeyPoints,
		MissedPoints: resp.MissedPoints,
	}, nil
}
