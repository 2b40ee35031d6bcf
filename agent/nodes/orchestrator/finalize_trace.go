package orchestratornode

import (
	"fmt"
	"strings"

	contractx "github.com/tanpawarit/shopdesk-agent/agent/contract"
)

func FinalizeTrace(in *GraphState) (GraphOutput, error) {
	if in == nil {
		return GraphOutput{}, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	message := strings.TrimSpace(in.Message)
	if message == "" {
		return GraphOutput{}, fmt.Errorf("%w: rendered reply is empty", contractx.ErrValidation)
	}

	toolsCalled := in.ToolsCalled
	if toolsCalled == nil {
		toolsCalled = []string{}
	}
	evidence := in.Evidence
	if evidence == nil {
		evidence = []any{}
	}

	return GraphOutput{
		RequestID:      in.RequestID,
		EvaluatedAt:    in.Now,
		Intent:         string(in.Route.Intent),
		ToolsCalled:    toolsCalled,
		Evidence:       evidence,
		PolicyDecision: in.Decision,
		FinalMessage:   message,
	}, nil
}
