// Package contract holds the JSON shapes exchanged between the pacman client
// and the game API. Keys are camelCase; absent optional values travel as null.
package contract

import (
	"time"

	"pacman/internal/rules"
)

// Program is the wire form of a bot program.
type Program struct {
	Rules []rules.Rule `json:"rules"`
}

// Submit is the body of POST /api/submit. User and Password are only read
// when the request carries no credential cookies.
type Submit struct {
	Program  Program `json:"program"`
	User     *string `json:"user,omitempty"`
	Password *string `json:"password,omitempty"`
}

// SubmitResponse is the tag returned by POST /api/submit.
type SubmitResponse string

const (
	SubmitOK                SubmitResponse = "ok"
	SubmitRateLimitExceeded SubmitResponse = "rateLimitExceeded"
	SubmitLevelClosed       SubmitResponse = "levelClosed"
	SubmitUnauthorized      SubmitResponse = "unauthorized"
)

// Valid reports whether r is a tag the server may send.
func (r SubmitResponse) Valid() bool {
	switch r {
	case SubmitOK, SubmitRateLimitExceeded, SubmitLevelClosed, SubmitUnauthorized:
		return true
	}
	return false
}

// Authenticate is the body of POST /api/authenticate.
type Authenticate struct {
	User     string `json:"user"`
	Password string `json:"password"`
}

// Submissions is the body of GET /api/submissions.
type Submissions struct {
	Submissions []Submission `json:"submissions"`
	LevelClosed bool         `json:"levelClosed"`
}

// Submission is one entry of the submission log.
type Submission struct {
	ID   uint64 `json:"id"`
	User string `json:"user"`
}

// SubmissionDetails is the body of GET /api/submissions/{id}.
type SubmissionDetails struct {
	ID          uint64    `json:"id"`
	Key         string    `json:"key"`
	User        string    `json:"user"`
	Program     Program   `json:"program"`
	SubmittedAt time.Time `json:"submittedAt"`
}

// SetLevelState opens or closes the level for submissions.
type SetLevelState struct {
	AdminToken string `json:"adminToken"`
	IsClosed   bool   `json:"isClosed"`
}

// Reset wipes all game state.
type Reset struct {
	AdminToken string `json:"adminToken"`
}

// RateLimit overrides one user's limiter. Window is in seconds.
type RateLimit struct {
	AdminToken string `json:"adminToken"`
	User       string `json:"user"`
	Count      uint32 `json:"count"`
	Window     uint32 `json:"window"`
}
