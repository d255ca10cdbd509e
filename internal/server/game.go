package server

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap/zapcore"

	"pacman/internal/contract"
	"pacman/internal/logging"
	"pacman/internal/ratelimit"
	"pacman/internal/store"
)

// Game is the shared state behind the API: whether the level accepts
// submissions, one rate limiter per user and the submission log.
type Game struct {
	mu          sync.Mutex
	levelClosed bool
	limit       ratelimit.Limit
	limiters    map[string]*ratelimit.Limiter
	store       *store.SubmissionStore

	now func() time.Time
}

// NewGame creates a game with the level closed. limit is the default
// per-user rate limit.
func NewGame(limit ratelimit.Limit, submissions *store.SubmissionStore) (*Game, error) {
	if _, err := ratelimit.New(limit); err != nil {
		return nil, err
	}
	return &Game{
		levelClosed: true,
		limit:       limit,
		limiters:    make(map[string]*ratelimit.Limiter),
		store:       submissions,
		now:         time.Now,
	}, nil
}

// Submit runs the level and rate limit checks for user and stores the
// program when both pass.
func (g *Game) Submit(ctx context.Context, user string, program contract.Program) (contract.SubmitResponse, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.levelClosed {
		logging.ServerDebug("submission from %s refused: level closed", user)
		return contract.SubmitLevelClosed, nil
	}

	limiter, ok := g.limiters[user]
	if !ok {
		// limit was validated in NewGame or SetRateLimit
		limiter, _ = ratelimit.New(g.limit)
		g.limiters[user] = limiter
	}
	now := g.now()
	slot, err := limiter.Check(now)
	if err != nil {
		if errors.Is(err, ratelimit.ErrExceeded) {
			logging.ServerDebug("submission from %s refused: rate limit", user)
			return contract.SubmitRateLimitExceeded, nil
		}
		return "", err
	}

	// The slot is only used once the submission is stored.
	details, err := g.store.Add(ctx, user, program, now)
	if err != nil {
		return "", fmt.Errorf("failed to record submission: %w", err)
	}
	limiter.Record(slot, now)

	logging.Get(logging.CategoryServer).StructuredLog(zapcore.InfoLevel, "submission accepted", map[string]interface{}{
		"id":    details.ID,
		"key":   details.Key,
		"user":  user,
		"rules": len(program.Rules),
	})
	return contract.SubmitOK, nil
}

// SetLevelClosed opens or closes the level.
func (g *Game) SetLevelClosed(closed bool) {
	g.mu.Lock()
	g.levelClosed = closed
	g.mu.Unlock()
	logging.Server("level closed: %v", closed)
}

// LevelClosed reports whether the level refuses submissions.
func (g *Game) LevelClosed() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.levelClosed
}

// SetRateLimit gives user a fresh limiter with its own limit.
func (g *Game) SetRateLimit(user string, limit ratelimit.Limit) error {
	limiter, err := ratelimit.New(limit)
	if err != nil {
		return err
	}
	g.mu.Lock()
	g.limiters[user] = limiter
	g.mu.Unlock()
	logging.Server("rate limit for %s set to %d per %v", user, limit.Count, limit.Window)
	return nil
}

// Submissions lists the submission log together with the level state.
func (g *Game) Submissions(ctx context.Context) (*contract.Submissions, error) {
	list, err := g.store.List(ctx)
	if err != nil {
		return nil, err
	}
	return &contract.Submissions{Submissions: list, LevelClosed: g.LevelClosed()}, nil
}

// Submission returns one stored submission, or store.ErrNotFound.
func (g *Game) Submission(ctx context.Context, id uint64) (*contract.SubmissionDetails, error) {
	return g.store.Get(ctx, id)
}

// Reset returns the game to its initial state: level closed, no limiters,
// no submissions.
func (g *Game) Reset(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.store.Clear(ctx); err != nil {
		return err
	}
	g.levelClosed = true
	g.limiters = make(map[string]*ratelimit.Limiter)
	logging.Server("game reset")
	return nil
}
