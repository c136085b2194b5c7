package session

import (
	"context"
	"fmt"
	"strings"

	"github.com/zulandar/fishbuddy/internal/assistant"
)

// Reply is the extracted assistant answer. Exact is false when the text did
// not come from a message correlated to the driven run: a fallback to the
// most recent assistant message, a missing reply, or a non-completed run.
type Reply struct {
	Text  string
	Exact bool
}

// Reply sentinels for degraded extractions.
const (
	noReplyText = "(no assistant reply)"
	noTextText  = "(no text)"
)

// statusReply renders the sentinel for a run that stopped short of completed.
func statusReply(status assistant.RunStatus) Reply {
	return Reply{Text: fmt.Sprintf("(run status: %s)", status)}
}

// extract pages the newest messages of the thread and picks the reply: the
// assistant message authored by runID if present, otherwise the most recent
// assistant message with Exact left false.
func extract(ctx context.Context, client assistant.Client, threadID, runID string, page int) (Reply, error) {
	msgs, err := client.ListMessages(ctx, threadID, page)
	if err != nil {
		return Reply{}, err
	}

	var fallback *assistant.Message
	for i := range msgs {
		m := msgs[i]
		if m.Role != assistant.RoleAssistant {
			continue
		}
		if m.RunID == runID {
			return Reply{Text: messageText(m), Exact: true}, nil
		}
		if fallback == nil {
			fallback = &msgs[i]
		}
	}
	if fallback != nil {
		return Reply{Text: messageText(*fallback)}, nil
	}
	return Reply{Text: noReplyText}, nil
}

// messageText joins the text segments of a message.
func messageText(m assistant.Message) string {
	if len(m.Texts) == 0 {
		return noTextText
	}
	return strings.Join(m.Texts, "\n")
}
