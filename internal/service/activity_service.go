package service

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/spec-kit/process-raci/internal/domain"
	"github.com/spec-kit/process-raci/internal/events"
	"github.com/spec-kit/process-raci/internal/repository"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 200
)

// ActivityService records published events as an audit trail.
type ActivityService struct {
	dispatcher events.Dispatcher
	activities repository.ActivityRepository
	logger     *zap.Logger
}

// NewActivityService creates the service.
func NewActivityService(dispatcher events.Dispatcher, activities repository.ActivityRepository, logger *zap.Logger) *ActivityService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ActivityService{dispatcher: dispatcher, activities: activities, logger: logger}
}

// RegisterHandlers subscribes to events.
func (s *ActivityService) RegisterHandlers() {
	if s.dispatcher == nil {
		return
	}
	for _, t := range []events.EventType{
		events.EventProcessSaved,
		events.EventProcessDeleted,
		events.EventOrgChanged,
		events.EventRaciChanged,
	} {
		s.dispatcher.Subscribe(t, s.record)
	}
}

func (s *ActivityService) record(ctx context.Context, event events.Event) error {
	if event.SubjectID == "" {
		return nil
	}
	payload, err := json.Marshal(event.Payload)
	if err != nil {
		return err
	}
	return s.activities.Create(ctx, &domain.Activity{
		SubjectID: event.SubjectID,
		EventType: string(event.Type),
		ActorID:   event.ActorID,
		Payload:   payload,
	})
}

// History lists the newest entries of a subject. limit is clamped to [1, 200]
// and defaults to 50.
func (s *ActivityService) History(ctx context.Context, subjectID string, limit int) ([]domain.Activity, error) {
	switch {
	case limit <= 0:
		limit = defaultHistoryLimit
	case limit > maxHistoryLimit:
		limit = maxHistoryLimit
	}
	entries, err := s.activities.ListBySubject(ctx, subjectID, limit)
	if err != nil {
		return nil, mapError(err, "activity")
	}
	return entries, nil
}
