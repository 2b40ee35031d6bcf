package orchestratornode

import (
	"strings"
	"time"
)

func ValidateRequest(in GraphInput, nowFn func() time.Time, idFn func() string) (*GraphState, error) {
	text := strings.TrimSpace(in.Text)
	if text == "" {
		return nil, ErrInvalidMessage
	}

	return &GraphState{
		RequestID: idFn(),
		Text:      text,
		Now:       nowFn().UTC(),
	}, nil
}
