package session

import (
	"context"
	"log"

	"github.com/zulandar/fishbuddy/internal/assistant"
	"github.com/zulandar/fishbuddy/internal/tools"
)

// dispatch answers every tool call of a requires_action run and submits the
// complete batch in one call. The tool registry never fails, so each call
// always yields exactly one output; the run returned by the submission is
// the loop's next state.
func (d *Driver) dispatch(ctx context.Context, threadID string, run assistant.Run) (assistant.Run, error) {
	if run.Status != assistant.StatusRequiresAction || run.RequiredAction == nil ||
		run.RequiredAction.Type != assistant.ActionSubmitToolOutputs {
		return run, nil
	}

	calls := run.RequiredAction.ToolCalls
	outputs := make([]assistant.ToolOutput, 0, len(calls))
	for _, call := range calls {
		payload := d.Tools.Execute(ctx, call.Name, call.Arguments)
		if reason, isErr := tools.DecodeError(payload); isErr {
			log.Printf("session: tool %s failed: %s", call.Name, reason)
		}
		outputs = append(outputs, assistant.ToolOutput{
			CallID: call.ID,
			Output: payload,
		})
	}

	return d.Client.SubmitToolOutputs(ctx, threadID, run.ID, outputs)
}
