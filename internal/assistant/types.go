// Package assistant models the remote LLM assistant as an opaque state
// machine behind a small client interface: threads hold ordered messages,
// runs execute against a thread and may request tool calls before reaching a
// terminal status.
package assistant

import "encoding/json"

// Message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// RunStatus is the remote run state. The remote system owns the state set;
// unknown values must be passed through, not rejected.
type RunStatus string

// Run states observed by the driver.
const (
	StatusQueued         RunStatus = "queued"
	StatusInProgress     RunStatus = "in_progress"
	StatusRequiresAction RunStatus = "requires_action"
	StatusCompleted      RunStatus = "completed"
	StatusFailed         RunStatus = "failed"
	StatusCancelled      RunStatus = "cancelled"
	StatusExpired        RunStatus = "expired"
)

// Terminal reports whether no further host action can advance the run.
func (s RunStatus) Terminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusCancelled, StatusExpired:
		return true
	}
	return false
}

// ActionSubmitToolOutputs is the only required-action type the dispatcher
// understands; anything else passes through untouched.
const ActionSubmitToolOutputs = "submit_tool_outputs"

// ToolCall is a function invocation requested by the remote run.
type ToolCall struct {
	ID        string
	Name      string
	Arguments string // raw JSON object, may be empty
}

// ToolOutput answers one ToolCall. Output is always a JSON-encoded string,
// even for failures.
type ToolOutput struct {
	CallID string
	Output string
}

// RequiredAction carries the tool-call batch of a requires_action run.
type RequiredAction struct {
	Type      string
	ToolCalls []ToolCall
}

// Run is a snapshot of the remote run state machine.
type Run struct {
	ID             string
	Status         RunStatus
	RequiredAction *RequiredAction
}

// Message is one entry of a thread, as listed by the remote system. Texts
// holds the text-typed content segments in order; RunID is the correlation
// key to the run that authored an assistant message (may be empty).
type Message struct {
	ID    string
	Role  string
	RunID string
	Texts []string
}

// File is a remote file handle.
type File struct {
	ID       string
	Filename string
}

// ToolDefinition is the function-calling schema pushed to the assistant
// during setup.
type ToolDefinition struct {
	Name        string
	Description string
	Parameters  json.RawMessage
}

// Setup is the assistant profile pushed during bootstrap. Empty fields keep
// the assistant's current value.
type Setup struct {
	Name         string
	Instructions string
	Model        string
}
