package session

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/zulandar/fishbuddy/internal/assistant"
)

// Session binds one remote thread to a driver. A session is not safe for
// concurrent Ask calls; the remote thread serializes runs anyway.
type Session struct {
	client   assistant.Client
	driver   *Driver
	page     int
	threadID string
}

// New opens a session on a fresh remote thread.
func New(ctx context.Context, client assistant.Client, driver *Driver, messagePage int) (*Session, error) {
	threadID, err := client.CreateThread(ctx)
	if err != nil {
		return nil, fmt.Errorf("session: open: %w", err)
	}
	log.Printf("session: opened thread %s", threadID)
	return Resume(client, driver, messagePage, threadID), nil
}

// Resume binds a session to an existing thread.
func Resume(client assistant.Client, driver *Driver, messagePage int, threadID string) *Session {
	return &Session{
		client:   client,
		driver:   driver,
		page:     messagePage,
		threadID: threadID,
	}
}

// ThreadID returns the bound remote thread id.
func (s *Session) ThreadID() string {
	return s.threadID
}

// Ask submits one question together with its structured context, drives the
// resulting run, and extracts the reply. A run that ends anywhere other than
// completed yields a status sentinel reply, not an error.
func (s *Session) Ask(ctx context.Context, question string, structured any) (Reply, error) {
	content, err := formatQuestion(question, structured)
	if err != nil {
		return Reply{}, err
	}
	if err := s.client.AppendMessage(ctx, s.threadID, assistant.RoleUser, content); err != nil {
		return Reply{}, fmt.Errorf("session: ask: %w", err)
	}

	run, err := s.client.CreateRun(ctx, s.threadID)
	if err != nil {
		return Reply{}, fmt.Errorf("session: ask: %w", err)
	}

	run, err = s.driver.Drive(ctx, s.threadID, run)
	if err != nil {
		return Reply{}, fmt.Errorf("session: drive run %s: %w", run.ID, err)
	}
	if run.Status != assistant.StatusCompleted {
		log.Printf("session: run %s stopped at %s", run.ID, run.Status)
		return statusReply(run.Status), nil
	}

	reply, err := extract(ctx, s.client, s.threadID, run.ID, s.page)
	if err != nil {
		return Reply{}, fmt.Errorf("session: extract reply of run %s: %w", run.ID, err)
	}
	return reply, nil
}

// formatQuestion renders the fixed two-line message format the assistant is
// instructed to parse: the structured context as one JSON object, then the
// free-form question.
func formatQuestion(question string, structured any) (string, error) {
	if structured == nil {
		structured = map[string]any{}
	}
	blob, err := json.Marshal(structured)
	if err != nil {
		return "", fmt.Errorf("session: encode context: %w", err)
	}
	return fmt.Sprintf("StructuredContext: %s\nQuestion: %s", blob, question), nil
}
