package assistant

import "context"

// Client is the remote assistant contract the orchestration core depends on.
// Implementations wrap a concrete SDK; tests substitute a fake. Every method
// maps to exactly one remote call.
type Client interface {
	// CreateThread creates a new conversation thread and returns its id.
	CreateThread(ctx context.Context) (string, error)
	// AppendMessage appends one message to the thread.
	AppendMessage(ctx context.Context, threadID, role, content string) error
	// CreateRun starts a new run of the configured assistant on the thread.
	CreateRun(ctx context.Context, threadID string) (Run, error)
	// GetRun retrieves the current run snapshot.
	GetRun(ctx context.Context, threadID, runID string) (Run, error)
	// SubmitToolOutputs submits the complete output batch for a run and
	// returns the run state produced by that submission.
	SubmitToolOutputs(ctx context.Context, threadID, runID string, outputs []ToolOutput) (Run, error)
	// ListMessages returns up to limit messages of the thread, newest first.
	ListMessages(ctx context.Context, threadID string, limit int) ([]Message, error)

	// UploadFile uploads file content to the remote file store.
	UploadFile(ctx context.Context, filename string, data []byte) (File, error)
	// DeleteFile removes a remote file.
	DeleteFile(ctx context.Context, fileID string) error
	// AttachFile attaches an uploaded file to the configured assistant.
	AttachFile(ctx context.Context, fileID string) error
	// ConfigureTools pushes the assistant profile and replaces its
	// function-calling tool set.
	ConfigureTools(ctx context.Context, setup Setup, defs []ToolDefinition) error
}
