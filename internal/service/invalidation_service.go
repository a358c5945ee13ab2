package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/process-raci/internal/cache"
	"github.com/spec-kit/process-raci/internal/events"
)

// InvalidationService drops cached diagrams and RACI views when the data
// behind them changes.
type InvalidationService struct {
	dispatcher events.Dispatcher
	cache      cache.Store
	logger     *zap.Logger
}

// NewInvalidationService creates the service.
func NewInvalidationService(dispatcher events.Dispatcher, store cache.Store, logger *zap.Logger) *InvalidationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InvalidationService{
		dispatcher: dispatcher,
		cache:      store,
		logger:     logger,
	}
}

// RegisterHandlers subscribes to events.
func (s *InvalidationService) RegisterHandlers() {
	if s.dispatcher == nil || s.cache == nil {
		return
	}
	// Diagram keys carry the process revision, so a saved process needs no
	// diagram purge. Org changes alter lane titles and colors of every diagram.
	s.dispatcher.Subscribe(events.EventProcessSaved, s.purge(cache.RaciPrefix))
	s.dispatcher.Subscribe(events.EventProcessDeleted, s.purge(cache.RaciPrefix, cache.DiagramPrefix))
	s.dispatcher.Subscribe(events.EventOrgChanged, s.purge(cache.RaciPrefix, cache.DiagramPrefix))
	s.dispatcher.Subscribe(events.EventRaciChanged, s.purge(cache.RaciPrefix))
}

func (s *InvalidationService) purge(prefixes ...string) events.EventHandler {
	return func(ctx context.Context, event events.Event) error {
		for _, prefix := range prefixes {
			if err := s.cache.DeletePrefix(ctx, prefix); err != nil {
				return err
			}
		}
		s.logger.Debug("cache invalidated",
			zap.String("event_type", string(event.Type)),
			zap.String("subject_id", event.SubjectID),
			zap.Strings("prefixes", prefixes))
		return nil
	}
}
