// Package service holds the admin business rules on top of the repositories.
package service

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/mehrbod2002/ibadmin/internal/events"
	"github.com/mehrbod2002/ibadmin/internal/models"
)

const publishTimeout = 5 * time.Second

// Actor identifies the admin behind a mutating call for the audit log.
type Actor struct {
	AdminID   string
	IPAddress string
}

func parseID(id string) (primitive.ObjectID, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return objID, nil
}

func audit(logService LogService, log *zap.Logger, actor Actor, entry *models.LogEntry) {
	if err := logService.LogAction(actor, entry); err != nil {
		log.Warn("failed to write audit log", zap.String("action", string(entry.Action)), zap.Error(err))
	}
}

// publish never fails the caller; the database write already happened.
func publish(pub events.Publisher, log *zap.Logger, e events.Event) {
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	if err := pub.Publish(ctx, e); err != nil {
		log.Warn("failed to publish event",
			zap.String("topic", e.Topic),
			zap.String("type", e.Type),
			zap.Error(err),
		)
	}
}
