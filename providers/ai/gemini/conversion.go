package gemini

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/leofalp/searchgpt/providers/ai"
)

func requestToGemini(request ai.ChatRequest) (generateContentRequest, error) {
	contents, err := buildContents(request.Messages)
	if err != nil {
		return generateContentRequest{}, err
	}

	req := generateContentRequest{
		Contents:         contents,
		GenerationConfig: buildGenerationConfig(request.GenerationConfig),
	}
	if request.SystemPrompt != "" {
		req.SystemInstruction = &systemInstruction{Parts: []part{{Text: request.SystemPrompt}}}
	}

	if len(request.Tools) > 0 {
		decls := make([]functionDeclaration, 0, len(request.Tools))
		for _, t := range request.Tools {
			decl := functionDeclaration{Name: t.Name, Description: t.Description}
			if t.Parameters != nil {
				params, err := json.Marshal(t.Parameters)
				if err != nil {
					return generateContentRequest{}, fmt.Errorf("%w: encode parameters of %s: %v", ai.ErrAdapter, t.Name, err)
				}
				decl.Parameters = params
			}
			decls = append(decls, decl)
		}
		req.Tools = []tool{{FunctionDeclarations: decls}}
		req.ToolConfig = buildToolConfig(request.ToolChoice)
	}

	return req, nil
}

// buildContents maps the flat history onto Gemini turns. The N tool messages
// following an assistant turn with N calls collapse into one user turn whose
// functionResponse parts keep the call order.
func buildContents(messages []ai.Message) ([]content, error) {
	if err := ai.ValidateToolTurns(messages); err != nil {
		return nil, err
	}

	var contents []content
	for i := 0; i < len(messages); i++ {
		msg := messages[i]
		switch msg.Role {
		case ai.RoleUser:
			contents = append(contents, content{Role: "user", Parts: []part{{Text: msg.Content}}})

		case ai.RoleAssistant:
			turn := content{Role: "model"}
			if msg.Content != "" {
				turn.Parts = append(turn.Parts, part{Text: msg.Content})
			}
			for _, call := range msg.ToolCalls {
				args := strings.TrimSpace(call.Function.Arguments)
				if args == "" || !json.Valid([]byte(args)) {
					args = "{}"
				}
				turn.Parts = append(turn.Parts, part{FunctionCall: &functionCall{
					Name: call.Function.Name,
					Args: json.RawMessage(args),
				}})
			}
			if len(turn.Parts) > 0 {
				contents = append(contents, turn)
			}

			if n := len(msg.ToolCalls); n > 0 {
				responses := content{Role: "user", Parts: make([]part, 0, n)}
				for j, call := range msg.ToolCalls {
					result, _ := messages[i+1+j].ToolResult()
					name := result.Name
					if name == "" {
						name = call.Function.Name
					}
					payload := result.Content
					if result.Failed() {
						payload = result.Error
					}
					responses.Parts = append(responses.Parts, part{FunctionResponse: &functionResponse{
						Name:     name,
						Response: responsePayload{Name: name, Content: payload},
					}})
				}
				contents = append(contents, responses)
				i += n
			}

		default:
			return nil, fmt.Errorf("%w: unsupported role %q at index %d", ai.ErrAdapter, msg.Role, i)
		}
	}
	return contents, nil
}

func buildGenerationConfig(cfg *ai.GenerationConfig) *generationConfig {
	if cfg == nil {
		return nil
	}
	out := &generationConfig{}
	if cfg.Temperature != 0 {
		out.Temperature = &cfg.Temperature
	}
	if cfg.TopP != 0 {
		out.TopP = &cfg.TopP
	}
	if cfg.MaxTokens > 0 {
		out.MaxOutputTokens = &cfg.MaxTokens
	}
	return out
}

func buildToolConfig(choice ai.ToolChoice) *toolConfig {
	mode := ""
	switch choice {
	case ai.ToolChoiceAuto:
		mode = "AUTO"
	case ai.ToolChoiceRequired:
		mode = "ANY"
	case ai.ToolChoiceNone:
		mode = "NONE"
	default:
		return nil
	}
	return &toolConfig{FunctionCallingConfig: &functionCallingConfig{Mode: mode}}
}

// geminiToGeneric maps the first candidate. A reply with no candidates and no
// block reason cannot be interpreted and is an adapter error.
func geminiToGeneric(resp generateContentResponse) (*ai.ChatResponse, error) {
	result := &ai.ChatResponse{
		Id:    resp.ResponseID,
		Model: resp.ModelVersion,
	}
	if result.Id == "" {
		result.Id = "gemini-" + uuid.NewString()
	}

	if resp.UsageMetadata != nil {
		result.Usage = &ai.Usage{
			PromptTokens:     resp.UsageMetadata.PromptTokenCount,
			CompletionTokens: resp.UsageMetadata.CandidatesTokenCount,
			TotalTokens:      resp.UsageMetadata.TotalTokenCount,
		}
	}

	if len(resp.Candidates) == 0 {
		if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
			result.FinishReason = "content_filter"
			result.Refusal = resp.PromptFeedback.BlockReason
			return result, nil
		}
		return nil, fmt.Errorf("%w: gemini response has no candidates", ai.ErrAdapter)
	}

	candidate := resp.Candidates[0]
	result.FinishReason = mapFinishReason(candidate.FinishReason)

	if candidate.Content != nil {
		var text []string
		for _, p := range candidate.Content.Parts {
			if p.Text != "" && !p.Thought {
				text = append(text, p.Text)
			}
			if p.FunctionCall != nil {
				args := string(p.FunctionCall.Args)
				if strings.TrimSpace(args) == "" || args == "null" {
					args = "{}"
				}
				id := p.FunctionCall.ID
				if id == "" {
					id = "call_" + uuid.NewString()
				}
				result.ToolCalls = append(result.ToolCalls, ai.ToolCall{
					ID:   id,
					Type: "function",
					Function: ai.ToolCallFunction{
						Name:      p.FunctionCall.Name,
						Arguments: args,
					},
				})
			}
		}
		result.Content = strings.TrimSpace(strings.Join(text, ""))
	}

	if len(result.ToolCalls) > 0 && result.FinishReason == "stop" {
		result.FinishReason = "tool_calls"
	}
	return result, nil
}

func mapFinishReason(reason string) string {
	switch reason {
	case "MAX_TOKENS":
		return "length"
	case "SAFETY", "RECITATION", "BLOCKLIST", "PROHIBITED_CONTENT":
		return "content_filter"
	default:
		return "stop"
	}
}
