package ai

import "fmt"

// ValidateToolTurns checks that every assistant message requesting N tools is
// immediately followed by N tool messages answering those calls in order, and
// that no tool message appears outside such a group.
func ValidateToolTurns(messages []Message) error {
	for i := 0; i < len(messages); i++ {
		msg := messages[i]
		switch {
		case msg.Role == RoleTool:
			return fmt.Errorf("%w: tool message at index %d does not follow a tool-calling assistant turn", ErrAdapter, i)

		case msg.Role == RoleAssistant && len(msg.ToolCalls) > 0:
			want := len(msg.ToolCalls)
			got := 0
			for got < want && i+1+got < len(messages) && messages[i+1+got].Role == RoleTool {
				result := messages[i+1+got]
				call := msg.ToolCalls[got]
				if call.ID != "" && result.ToolCallID != "" && call.ID != result.ToolCallID {
					return fmt.Errorf("%w: tool result %q at index %d answers call %q out of order", ErrAdapter, result.ToolCallID, i+1+got, call.ID)
				}
				got++
			}
			if got != want {
				return fmt.Errorf("%w: assistant turn at index %d requested %d tool calls but %d results follow", ErrAdapter, i, want, got)
			}
			i += got
		}
	}
	return nil
}

// ValidateHistory checks a history received from outside the process: every
// message has a known role, tool calls and results pair up, and a result
// answering a call with an id carries that id.
func ValidateHistory(messages []Message) error {
	for i, msg := range messages {
		switch msg.Role {
		case RoleUser, RoleAssistant, RoleTool:
		default:
			return fmt.Errorf("%w: unsupported role %q at index %d", ErrAdapter, msg.Role, i)
		}
	}

	if err := ValidateToolTurns(messages); err != nil {
		return err
	}

	for i, msg := range messages {
		if msg.Role != RoleAssistant {
			continue
		}
		for j, call := range msg.ToolCalls {
			result := messages[i+1+j]
			if call.ID != "" && result.ToolCallID == "" {
				return fmt.Errorf("%w: tool message at index %d has no tool_call_id for call %q", ErrAdapter, i+1+j, call.ID)
			}
		}
	}
	return nil
}
