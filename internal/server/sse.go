package server

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/zulandar/fishbuddy/internal/session"
)

// handleChat runs one question through the session core and streams the
// reply line by line over SSE. The orchestration is identical to the
// blocking surface; only the presentation differs.
func handleChat(opts StartOpts) gin.HandlerFunc {
	return func(c *gin.Context) {
		threadID := c.Query("thread_id")
		message := c.Query("message")
		if threadID == "" || message == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "thread_id and message are required"})
			return
		}
		structured := parseContext(c.Query("context"))

		c.Header("Content-Type", "text/event-stream")
		c.Header("Cache-Control", "no-cache")
		c.Header("Connection", "keep-alive")
		c.Header("X-Accel-Buffering", "no")

		s := session.Resume(opts.Client, opts.Driver, opts.MessagePage, threadID)
		reply, err := s.Ask(c.Request.Context(), message, structured)
		if err != nil {
			log.Printf("server: chat on %s: %v", threadID, err)
			writeFrame(c.Writer, map[string]string{"error": "assistant unavailable"})
			c.Writer.Flush()
			writeDone(c.Writer)
			c.Writer.Flush()
			return
		}

		for _, line := range strings.Split(reply.Text, "\n") {
			if strings.TrimSpace(line) == "" {
				continue
			}
			writeFrame(c.Writer, map[string]string{"text": line})
			c.Writer.Flush()
		}
		writeDone(c.Writer)
		c.Writer.Flush()
	}
}

// parseContext decodes the structured context query parameter. Anything that
// is not a JSON object degrades to an empty context.
func parseContext(raw string) map[string]any {
	out := map[string]any{}
	if raw == "" {
		return out
	}
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return map[string]any{}
	}
	return out
}

// writeFrame writes one SSE data frame.
func writeFrame(w io.Writer, data any) {
	blob, err := json.Marshal(data)
	if err != nil {
		return
	}
	fmt.Fprintf(w, "data: %s\n\n", blob)
}

// writeDone writes the terminating frame of a chat stream.
func writeDone(w io.Writer) {
	fmt.Fprint(w, "data: {\"done\": true}\n\n")
}
