package assistant

import (
	"context"
	"encoding/json"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAI implements Client over the OpenAI Assistants API.
type OpenAI struct {
	api         *openai.Client
	assistantID string
}

// NewOpenAI builds an OpenAI client bound to one assistant.
func NewOpenAI(apiKey, assistantID string) *OpenAI {
	return &OpenAI{
		api:         openai.NewClient(apiKey),
		assistantID: assistantID,
	}
}

// CreateThread creates a new conversation thread.
func (c *OpenAI) CreateThread(ctx context.Context) (string, error) {
	thread, err := c.api.CreateThread(ctx, openai.ThreadRequest{})
	if err != nil {
		return "", fmt.Errorf("assistant: create thread: %w", err)
	}
	return thread.ID, nil
}

// AppendMessage appends one message to the thread.
func (c *OpenAI) AppendMessage(ctx context.Context, threadID, role, content string) error {
	_, err := c.api.CreateMessage(ctx, threadID, openai.MessageRequest{
		Role:    role,
		Content: content,
	})
	if err != nil {
		return fmt.Errorf("assistant: append message to %s: %w", threadID, err)
	}
	return nil
}

// CreateRun starts a new run of the bound assistant on the thread.
func (c *OpenAI) CreateRun(ctx context.Context, threadID string) (Run, error) {
	run, err := c.api.CreateRun(ctx, threadID, openai.RunRequest{
		AssistantID: c.assistantID,
	})
	if err != nil {
		return Run{}, fmt.Errorf("assistant: create run on %s: %w", threadID, err)
	}
	return fromAPIRun(run), nil
}

// GetRun retrieves the current run snapshot.
func (c *OpenAI) GetRun(ctx context.Context, threadID, runID string) (Run, error) {
	run, err := c.api.RetrieveRun(ctx, threadID, runID)
	if err != nil {
		return Run{}, fmt.Errorf("assistant: retrieve run %s: %w", runID, err)
	}
	return fromAPIRun(run), nil
}

// SubmitToolOutputs submits the complete output batch for a run.
func (c *OpenAI) SubmitToolOutputs(ctx context.Context, threadID, runID string, outputs []ToolOutput) (Run, error) {
	apiOutputs := make([]openai.ToolOutput, len(outputs))
	for i, out := range outputs {
		apiOutputs[i] = openai.ToolOutput{
			ToolCallID: out.CallID,
			Output:     out.Output,
		}
	}
	run, err := c.api.SubmitToolOutputs(ctx, threadID, runID, openai.SubmitToolOutputsRequest{
		ToolOutputs: apiOutputs,
	})
	if err != nil {
		return Run{}, fmt.Errorf("assistant: submit tool outputs for %s: %w", runID, err)
	}
	return fromAPIRun(run), nil
}

// ListMessages returns up to limit messages of the thread, newest first.
func (c *OpenAI) ListMessages(ctx context.Context, threadID string, limit int) ([]Message, error) {
	order := "desc"
	list, err := c.api.ListMessage(ctx, threadID, &limit, &order, nil, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("assistant: list messages of %s: %w", threadID, err)
	}
	msgs := make([]Message, 0, len(list.Messages))
	for _, m := range list.Messages {
		msgs = append(msgs, fromAPIMessage(m))
	}
	return msgs, nil
}

// UploadFile uploads file content for assistant use.
func (c *OpenAI) UploadFile(ctx context.Context, filename string, data []byte) (File, error) {
	f, err := c.api.CreateFileBytes(ctx, openai.FileBytesRequest{
		Name:    filename,
		Bytes:   data,
		Purpose: openai.PurposeAssistants,
	})
	if err != nil {
		return File{}, fmt.Errorf("assistant: upload file %s: %w", filename, err)
	}
	return File{ID: f.ID, Filename: f.FileName}, nil
}

// DeleteFile removes a remote file.
func (c *OpenAI) DeleteFile(ctx context.Context, fileID string) error {
	if err := c.api.DeleteFile(ctx, fileID); err != nil {
		return fmt.Errorf("assistant: delete file %s: %w", fileID, err)
	}
	return nil
}

// AttachFile attaches an uploaded file to the bound assistant, preserving the
// assistant's existing file set.
func (c *OpenAI) AttachFile(ctx context.Context, fileID string) error {
	current, err := c.api.RetrieveAssistant(ctx, c.assistantID)
	if err != nil {
		return fmt.Errorf("assistant: retrieve %s: %w", c.assistantID, err)
	}
	fileIDs := append(append([]string(nil), current.FileIDs...), fileID)
	_, err = c.api.ModifyAssistant(ctx, c.assistantID, openai.AssistantRequest{
		Model:   current.Model,
		FileIDs: fileIDs,
	})
	if err != nil {
		return fmt.Errorf("assistant: attach file %s: %w", fileID, err)
	}
	return nil
}

// ConfigureTools pushes the assistant profile and replaces its
// function-calling tool set. Used by the setup command.
func (c *OpenAI) ConfigureTools(ctx context.Context, setup Setup, defs []ToolDefinition) error {
	current, err := c.api.RetrieveAssistant(ctx, c.assistantID)
	if err != nil {
		return fmt.Errorf("assistant: retrieve %s: %w", c.assistantID, err)
	}

	tools := make([]openai.AssistantTool, len(defs))
	for i, def := range defs {
		var params any
		if err := json.Unmarshal(def.Parameters, &params); err != nil {
			return fmt.Errorf("assistant: tool %s parameters: %w", def.Name, err)
		}
		tools[i] = openai.AssistantTool{
			Type: openai.AssistantToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        def.Name,
				Description: def.Description,
				Parameters:  params,
			},
		}
	}

	model := setup.Model
	if model == "" {
		model = current.Model
	}
	req := openai.AssistantRequest{
		Model: model,
		Tools: tools,
	}
	if setup.Name != "" {
		req.Name = &setup.Name
	}
	if setup.Instructions != "" {
		req.Instructions = &setup.Instructions
	}
	if _, err := c.api.ModifyAssistant(ctx, c.assistantID, req); err != nil {
		return fmt.Errorf("assistant: configure tools: %w", err)
	}
	return nil
}

// fromAPIRun converts an SDK run to the domain snapshot.
func fromAPIRun(run openai.Run) Run {
	out := Run{
		ID:     run.ID,
		Status: RunStatus(run.Status),
	}
	if run.RequiredAction != nil {
		ra := &RequiredAction{Type: string(run.RequiredAction.Type)}
		if run.RequiredAction.SubmitToolOutputs != nil {
			for _, call := range run.RequiredAction.SubmitToolOutputs.ToolCalls {
				ra.ToolCalls = append(ra.ToolCalls, ToolCall{
					ID:        call.ID,
					Name:      call.Function.Name,
					Arguments: call.Function.Arguments,
				})
			}
		}
		out.RequiredAction = ra
	}
	return out
}

// fromAPIMessage converts an SDK message, keeping text segments in order.
func fromAPIMessage(m openai.Message) Message {
	msg := Message{
		ID:   m.ID,
		Role: m.Role,
	}
	if m.RunID != nil {
		msg.RunID = *m.RunID
	}
	for _, content := range m.Content {
		if content.Type == "text" && content.Text != nil {
			msg.Texts = append(msg.Texts, content.Text.Value)
		}
	}
	return msg
}

var _ Client = (*OpenAI)(nil)
