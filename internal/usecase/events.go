package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"CountrySwipe/internal/domain/models"
	"CountrySwipe/internal/domain/repository"
	"CountrySwipe/pkg/logger"
)

const publishTimeout = 2 * time.Second

// emitter stamps events with ids and ships them best-effort.
type emitter struct {
	sessionID string
	pub       repository.EventPublisher
	log       *logger.Logger
	now       func() time.Time
}

func (e emitter) emit(ctx context.Context, typ models.EventType, data interface{}) {
	if e.pub == nil {
		return
	}
	ev := &models.Event{
		ID:        uuid.NewString(),
		Type:      typ,
		SessionID: e.sessionID,
		At:        e.now().UTC(),
		Data:      data,
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := e.pub.PublishEvent(ctx, ev); err != nil {
		e.log.Warn("publish event failed", logger.String("type", string(typ)), logger.Error(err))
	}
}
