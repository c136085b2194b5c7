// Package session implements the conversation core: it owns one remote
// thread, drives runs through the poll/tool-dispatch loop, and extracts the
// assistant's reply text.
package session

import (
	"context"
	"time"

	"github.com/zulandar/fishbuddy/internal/assistant"
	"github.com/zulandar/fishbuddy/internal/tools"
)

// Driver advances one run to a terminal status, dispatching tool calls along
// the way. Both budgets are degradation bounds, not error conditions: when
// either runs out the driver returns the last observed run as-is.
type Driver struct {
	Client assistant.Client
	Tools  *tools.Registry

	// Interval is the fixed wait between status polls.
	Interval time.Duration
	// PollBudget caps the number of GetRun polls for one Drive call.
	PollBudget int
	// RetryMax caps the number of tool-dispatch rounds for one Drive call.
	RetryMax int
}

// Drive loops over the run until it reaches a terminal status or a budget
// runs out. A requires_action run with a submit_tool_outputs action is
// handed to the dispatcher; an unrecognized required action is polled past
// without consuming the retry budget. Remote errors abort the loop and
// return the last known run alongside the error.
func (d *Driver) Drive(ctx context.Context, threadID string, run assistant.Run) (assistant.Run, error) {
	polls := 0
	dispatches := 0

	for {
		if run.Status.Terminal() {
			return run, nil
		}

		if run.Status == assistant.StatusRequiresAction &&
			run.RequiredAction != nil &&
			run.RequiredAction.Type == assistant.ActionSubmitToolOutputs {
			if dispatches >= d.RetryMax {
				return run, nil
			}
			dispatches++
			next, err := d.dispatch(ctx, threadID, run)
			if err != nil {
				return run, err
			}
			run = next
			continue
		}

		if polls >= d.PollBudget {
			return run, nil
		}
		polls++

		select {
		case <-ctx.Done():
			return run, ctx.Err()
		case <-time.After(d.Interval):
		}

		next, err := d.Client.GetRun(ctx, threadID, run.ID)
		if err != nil {
			return run, err
		}
		run = next
	}
}
