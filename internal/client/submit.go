package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"pacman/internal/contract"
	"pacman/internal/logging"
	"pacman/internal/rules"
)

// OutcomeKind is the collapsed result of one submission.
type OutcomeKind int

const (
	Success OutcomeKind = iota
	RateLimitExceeded
	LevelClosed
	Unauthorised
	Fail
)

// Outcome is what a submission ended with. Message is only set for Fail.
type Outcome struct {
	Kind    OutcomeKind
	Message string
}

// Failed builds a Fail outcome.
func Failed(message string) Outcome { return Outcome{Kind: Fail, Message: message} }

// String renders the outcome for the status line.
func (o Outcome) String() string {
	switch o.Kind {
	case Success:
		return "Submitted"
	case RateLimitExceeded:
		return "Rate limit exceeded, wait a bit before submitting again"
	case LevelClosed:
		return "The level is closed"
	case Unauthorised:
		return "Not logged in"
	default:
		return o.Message
	}
}

// Phase is where a submission attempt is in its lifecycle.
type Phase int

const (
	NotStarted Phase = iota
	Pending
	Finished
)

// SubmitStatus tracks the latest submission attempt. Result is meaningful
// only once Phase is Finished.
type SubmitStatus struct {
	Phase  Phase
	Result Outcome
}

// Start enters Pending from any phase.
func (s SubmitStatus) Start() SubmitStatus { return SubmitStatus{Phase: Pending} }

// Finish records a result. The last result to arrive wins.
func (s SubmitStatus) Finish(o Outcome) SubmitStatus {
	return SubmitStatus{Phase: Finished, Result: o}
}

// Serialize wraps a program into the submit request body.
func Serialize(p rules.Program) contract.Submit {
	list := make([]rules.Rule, len(p))
	copy(list, p)
	return contract.Submit{Program: contract.Program{Rules: list}}
}

// Submit posts the program once and maps whatever happens to an Outcome.
func (c *Client) Submit(ctx context.Context, p rules.Program) Outcome {
	logging.API("submitting program with %d rules", len(p))
	data, err := c.do(ctx, http.MethodPost, "/api/submit", Serialize(p))
	if err != nil {
		return outcomeFromError(err)
	}
	return outcomeFromBody(data)
}

func outcomeFromError(err error) Outcome {
	var reqErr *RequestError
	if errors.As(err, &reqErr) && reqErr.Kind == KindBadStatus && reqErr.Status == http.StatusUnauthorized {
		return Outcome{Kind: Unauthorised}
	}
	return Failed(ErrorMessage(err))
}

func outcomeFromBody(data []byte) Outcome {
	var tag contract.SubmitResponse
	if err := json.Unmarshal(data, &tag); err != nil {
		return Failed((&RequestError{Kind: KindBadBody, Body: err.Error()}).Message())
	}
	if !tag.Valid() {
		logging.APIWarn("unexpected submit response %q", string(tag))
		detail := fmt.Sprintf("unexpected response %q", string(tag))
		return Failed((&RequestError{Kind: KindBadBody, Body: detail}).Message())
	}
	switch tag {
	case contract.SubmitOK:
		return Outcome{Kind: Success}
	case contract.SubmitRateLimitExceeded:
		return Outcome{Kind: RateLimitExceeded}
	case contract.SubmitLevelClosed:
		return Outcome{Kind: LevelClosed}
	default: // contract.SubmitUnauthorized
		return Outcome{Kind: Unauthorised}
	}
}
