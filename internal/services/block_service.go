package services

import (
	"context"

	"github.com/rs/zerolog"

	"vibechat-service/internal/models"
	"vibechat-service/internal/repositories"
)

// BlockService wraps block relations.
type BlockService struct {
	repo repositories.BlockRepository
	log  zerolog.Logger
}

func NewBlockService(repo repositories.BlockRepository, log zerolog.Logger) *BlockService {
	return &BlockService{repo: repo, log: log}
}

func (s *BlockService) BlockUser(ctx context.Context, blockerID, blockedID string) bool {
	if blockerID == blockedID {
		return false
	}
	if err := s.repo.BlockUser(ctx, blockerID, blockedID); err != nil {
		s.log.Warn().Err(err).Str("blocker_id", blockerID).Str("blocked_id", blockedID).Msg("block failed")
		return false
	}
	return true
}

func (s *BlockService) UnblockUser(ctx context.Context, blockerID, blockedID string) bool {
	if err := s.repo.UnblockUser(ctx, blockerID, blockedID); err != nil {
		s.log.Warn().Err(err).Str("blocker_id", blockerID).Str("blocked_id", blockedID).Msg("unblock failed")
		return false
	}
	return true
}

// IsBlocked reports a block in either direction. Lookup failures count as blocked.
func (s *BlockService) IsBlocked(ctx context.Context, userID, otherID string) bool {
	blocked, err := s.repo.IsBlocked(ctx, userID, otherID)
	if err != nil {
		s.log.Warn().Err(err).Str("user_id", userID).Str("other_id", otherID).Msg("block lookup failed")
		return true
	}
	return blocked
}

func (s *BlockService) GetBlockedUsers(ctx context.Context, userID string) []models.Profile {
	rows, err := s.repo.ListBlocked(ctx, userID)
	if err != nil {
		s.log.Warn().Err(err).Str("user_id", userID).Msg("list blocked failed")
		return []models.Profile{}
	}
	return profilesFromRows(rows)
}
