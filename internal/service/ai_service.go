package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/YyItRoad/ai-trade/internal/config"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/shared"
	"go.uber.org/zap"
)

const (
	// maxPromptChars 所有消息内容的字符总数上限，超出后开始裁剪历史
	maxPromptChars = 100000
	// trimMaxLoop 裁剪循环硬上限，防止死循环
	trimMaxLoop = 10000

	maxRetries = 7
	baseDelay  = time.Second
)

var (
	ErrHistoryTooLong  = errors.New("对话历史过长，无法通过删除消息节省足够的令牌")
	ErrNoJSONFound     = errors.New("响应中未找到 JSON 内容")
	ErrEmptyAIResponse = errors.New("AI 响应为空")
)

// ChatMessage 对话历史中的一条消息
type ChatMessage struct {
	Role    string `json:"role"` // user / assistant
	Content string `json:"content"`
}

// AIService 聊天补全客户端，负责令牌预算裁剪、指数退避重试与多模型选择
type AIService struct {
	logger *zap.Logger
	model  string

	// complete 实际的补全调用，测试时可替换
	complete func(ctx context.Context, params openai.ChatCompletionNewParams) (*openai.ChatCompletion, error)
	// rand 模型选择与抖动使用的随机源，测试时注入固定种子
	rand *rand.Rand
	// sleep 重试间隔，测试时替换以避免真实等待
	sleep func(time.Duration)
}

// NewAIService 创建AI响应服务
func NewAIService(logger *zap.Logger, client *openai.Client, conf *config.Config) *AIService {
	return &AIService{
		logger: logger,
		model:  conf.LLM.Model,
		complete: func(ctx context.Context, params openai.ChatCompletionNewParams) (*openai.ChatCompletion, error) {
			return client.Chat.Completions.New(ctx, params)
		},
		rand:  rand.New(rand.NewSource(time.Now().UnixNano())),
		sleep: time.Sleep,
	}
}

// GetResponse 发送系统/用户提示词对，返回模型的最终回答文本。
// 失败通过 error 返回，错误信息中附带底层原因。
func (s *AIService) GetResponse(ctx context.Context, systemPrompt, userPrompt string, history []ChatMessage) (string, error) {
	totalChars := len(systemPrompt) + len(userPrompt)
	for _, m := range history {
		totalChars += len(m.Content)
	}
	s.logger.Debug("sending chat completion", zap.Int("total_chars", totalChars))

	history, totalChars, err := trimHistory(history, totalChars, s.rand)
	if err != nil {
		return "", err
	}

	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(history)+2)
	messages = append(messages, openai.SystemMessage(systemPrompt))
	for _, m := range history {
		if m.Role == "assistant" {
			messages = append(messages, openai.AssistantMessage(m.Content))
		} else {
			messages = append(messages, openai.UserMessage(m.Content))
		}
	}
	messages = append(messages, openai.UserMessage(userPrompt))

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		model := s.pickModel(attempt)

		s.logger.Info("calling chat completion api",
			zap.String("model", model),
			zap.Int("attempt", attempt+1),
			zap.Int("max_retries", maxRetries))

		resp, err := s.complete(ctx, openai.ChatCompletionNewParams{
			Model:    shared.ChatModel(model),
			Messages: messages,
		})
		if err == nil {
			if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
				err = ErrEmptyAIResponse
			} else {
				return stripThinkBlock(resp.Choices[0].Message.Content), nil
			}
		}

		lastErr = err
		s.logger.Error("chat completion attempt failed",
			zap.Int("attempt", attempt+1),
			zap.Int("max_retries", maxRetries),
			zap.Error(err))

		if attempt == maxRetries-1 {
			break
		}

		// 指数退避加随机抖动
		delay := baseDelay*time.Duration(1<<attempt) + time.Duration(s.rand.Float64()*float64(time.Second))
		s.sleep(delay)
	}

	return "", fmt.Errorf("AI服务出现问题，所有重试均失败: %w", lastErr)
}

// pickModel 选择本次尝试使用的模型。配置支持逗号分隔的模型列表：
// 首次尝试固定使用第一个，之后每次重试从全部列表中随机挑选。
func (s *AIService) pickModel(attempt int) string {
	if !strings.Contains(s.model, ",") {
		return s.model
	}

	var options []string
	for _, m := range strings.Split(s.model, ",") {
		if m = strings.TrimSpace(m); m != "" {
			options = append(options, m)
		}
	}
	if len(options) == 0 {
		return s.model
	}
	if attempt == 0 {
		return options[0]
	}
	return options[s.rand.Intn(len(options))]
}

// trimHistory 当消息总字符数超过预算时，随机删除一条历史内部消息，
// 直到满足预算或历史耗尽。系统消息与历史首条消息永远不会被删除。
func trimHistory(history []ChatMessage, totalChars int, rnd *rand.Rand) ([]ChatMessage, int, error) {
	loop := 0
	for totalChars > maxPromptChars && len(history) > 0 {
		if loop >= trimMaxLoop {
			return nil, 0, ErrHistoryTooLong
		}
		// 只剩首条消息时无可删除项，无法再压缩
		if len(history) == 1 {
			return nil, 0, ErrHistoryTooLong
		}

		idx := 1 + rnd.Intn(len(history)-1)
		totalChars -= len(history[idx].Content)
		history = append(history[:idx], history[idx+1:]...)
		loop++
	}
	return history, totalChars, nil
}

// stripThinkBlock 剥离推理模型输出中的 <think>...</think> 片段，
// 只返回最后一个 </think> 之后的最终答案
func stripThinkBlock(text string) string {
	text = strings.TrimSpace(text)
	if strings.Contains(text, "<think>") && strings.Contains(text, "</think>") {
		text = text[strings.LastIndex(text, "</think>")+len("</think>"):]
	}
	return strings.TrimSpace(text)
}

// ExtractJSON 从任意响应文本中提取 JSON 片段：
// 优先取 ```json 围栏内的内容，否则退化为第一个 { 到最后一个 } 之间的子串。
func ExtractJSON(response string) (string, error) {
	if idx := strings.Index(response, "```json"); idx >= 0 {
		start := idx + len("```json")
		if end := strings.Index(response[start:], "```"); end >= 0 {
			return strings.TrimSpace(response[start : start+end]), nil
		}
	}

	start := strings.Index(response, "{")
	end := strings.LastIndex(response, "}")
	if start >= 0 && end > start {
		return strings.TrimSpace(response[start : end+1]), nil
	}
	return "", ErrNoJSONFound
}
