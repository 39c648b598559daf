package services

import (
	"context"

	"github.com/rs/zerolog"

	"vibechat-service/internal/models"
	"vibechat-service/internal/repositories"
)

// CallService wraps the call log.
type CallService struct {
	repo repositories.CallRepository
	log  zerolog.Logger
}

func NewCallService(repo repositories.CallRepository, log zerolog.Logger) *CallService {
	return &CallService{repo: repo, log: log}
}

// LogCall appends a call record.
func (s *CallService) LogCall(ctx context.Context, call models.Call) (models.Call, bool) {
	row, err := s.repo.CreateCall(ctx, models.CallRow{
		CallerID:   call.CallerID,
		ReceiverID: call.ReceiverID,
		Type:       string(call.Type),
		Status:     string(call.Status),
		Duration:   call.Duration,
	})
	if err != nil {
		s.log.Warn().Err(err).Str("caller_id", call.CallerID).Str("status", string(call.Status)).Msg("log call failed")
		return models.Call{}, false
	}
	return models.CallFromRow(row), true
}

func (s *CallService) GetCallHistory(ctx context.Context, userID string) []models.Call {
	rows, err := s.repo.ListCallsForUser(ctx, userID)
	if err != nil {
		s.log.Warn().Err(err).Str("user_id", userID).Msg("call history failed")
		return []models.Call{}
	}
	out := make([]models.Call, 0, len(rows))
	for _, r := range rows {
		out = append(out, models.CallFromRow(r))
	}
	return out
}
