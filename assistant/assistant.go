package assistant

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"reflect"
	"strings"

	"github.com/kamilio/ai-studio/gateway"
	"github.com/kamilio/ai-studio/script"
	"github.com/kamilio/ai-studio/storage"
	"github.com/kamilio/ai-studio/types"
)

const systemPrompt = `You are a video script editor. The user describes changes
to their script in plain language; you translate them into tool calls against
the current script state. Prefer tool calls over prose. Only describe changes
you actually made via tools.`

// Assistant runs the edit loop for video scripts: one user prompt in, a
// model response with tool calls out, every call applied in order against
// the stored script.
type Assistant struct {
	client gateway.Client
	store  *storage.Store
}

func New(client gateway.Client, store *storage.Store) *Assistant {
	return &Assistant{client: client, store: store}
}

// CallReport records what happened to one tool call during an edit turn.
// Applied is false when the dispatch engine absorbed the call as a no-op.
type CallReport struct {
	Call    types.ToolCall `json:"call"`
	Applied bool           `json:"applied"`
}

// EditResult is the outcome of one EditScript turn.
type EditResult struct {
	Script  types.Script `json:"script"`
	Text    string       `json:"text"`
	Reports []CallReport `json:"reports"`
}

// EditScript sends the user prompt plus the current script state to the model
// and applies every returned tool call strictly in emission order. Each call
// sees the script as left by the previous one, and the script is persisted
// after every applied call so a failure mid-sequence loses at most the tail.
func (a *Assistant) EditScript(ctx context.Context, scriptID, prompt string) (*EditResult, error) {
	current, found, err := a.store.GetScript(scriptID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("script %s not found", scriptID)
	}

	history, err := editHistory(current, prompt)
	if err != nil {
		return nil, err
	}

	settings, err := a.store.GetSettings()
	if err != nil {
		return nil, err
	}

	response, err := a.client.ChatWithTools(ctx, history, script.Definitions(), settings.DefaultChatModel)
	if err != nil {
		return nil, fmt.Errorf("edit request failed: %w", err)
	}

	result := &EditResult{Script: current, Text: response.Text}
	for _, call := range response.ToolCalls {
		next := script.ApplyToolCall(result.Script, call.Name, call.Args)
		applied := !reflect.DeepEqual(next, result.Script)
		if !applied {
			log.Printf("Warning: tool call %s on script %s was a no-op", call.Name, scriptID)
		} else {
			if err := a.store.SaveScript(next); err != nil {
				return nil, fmt.Errorf("persist after %s: %w", call.Name, err)
			}
		}
		result.Script = next
		result.Reports = append(result.Reports, CallReport{Call: call, Applied: applied})
	}

	return result, nil
}

// editHistory builds the conversation for one edit turn. The script state is
// embedded as JSON so the model references real shot ids.
func editHistory(current types.Script, prompt string) ([]gateway.ChatMessage, error) {
	state, err := json.Marshal(current)
	if err != nil {
		return nil, fmt.Errorf("encode script state: %w", err)
	}

	var b strings.Builder
	b.WriteString(systemPrompt)
	b.WriteString("\n\nCurrent script:\n")
	b.Write(state)

	return []gateway.ChatMessage{
		{Role: types.RoleUser, Content: b.String()},
		{Role: types.RoleUser, Content: prompt},
	}, nil
}
