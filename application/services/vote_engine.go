package services

import (
	"ideaboard/domain/core/entities"
	pkgerrors "ideaboard/pkg/errors"

	"go.uber.org/zap"
)

// VoteEngine holds the transition policy for a user's vote on an idea.
//
// States per (idea, user) pair: none, up, down. A vote call with ANY
// existing vote — same direction or opposite — retracts it and stops
// there. Moving from up to down therefore takes two calls: the first
// retracts, the second casts. Only a voter with no current vote has one
// cast in the requested direction.
//
// The engine is pure decision logic over the loaded aggregate; it issues
// no store calls of its own.
type VoteEngine struct {
	logger *zap.Logger
}

// NewVoteEngine creates a vote engine
func NewVoteEngine(logger *zap.Logger) *VoteEngine {
	return &VoteEngine{logger: logger}
}

// Apply transitions the voter's state on the idea and returns the
// resulting state.
func (e *VoteEngine) Apply(idea *entities.Idea, voterID string, direction entities.VoteDirection) (entities.VoteState, error) {
	if direction != entities.VoteUp && direction != entities.VoteDown {
		return entities.VoteStateNone, pkgerrors.NewValidationError("unknown vote direction")
	}

	current := idea.VoteFor(voterID)

	if current != entities.VoteStateNone {
		// Same-direction repeat or opposite-direction call: retract only.
		if err := idea.RetractVote(voterID); err != nil {
			return current, err
		}

		e.logger.Debug("vote retracted",
			zap.String("ideaID", idea.ID()),
			zap.String("voterID", voterID),
			zap.String("previous", string(current)),
		)
		return entities.VoteStateNone, nil
	}

	if err := idea.CastVote(voterID, direction); err != nil {
		return entities.VoteStateNone, err
	}

	e.logger.Debug("vote cast",
		zap.String("ideaID", idea.ID()),
		zap.String("voterID", voterID),
		zap.String("direction", string(direction)),
	)
	return direction.State(), nil
}
