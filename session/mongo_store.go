package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/SaiNageswarS/booking-agent/booking"
	"github.com/SaiNageswarS/go-api-boot/logger"
	"github.com/SaiNageswarS/go-api-boot/odm"
	"github.com/SaiNageswarS/go-collection-boot/async"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.uber.org/zap"
)

// MongoStore keeps sessions in the booking_sessions collection of a tenant.
// The version check runs before the write, so concurrent writers from other
// processes are only caught when they finished first.
type MongoStore struct {
	collection odm.OdmCollectionInterface[SessionModel]
}

func NewMongoStore(client odm.MongoClient, tenant string) *MongoStore {
	return &MongoStore{collection: odm.CollectionOf[SessionModel](client, tenant)}
}

func (s *MongoStore) Load(ctx context.Context, id string) (booking.Session, error) {
	model, err := s.find(ctx, id)
	if err != nil {
		return booking.Session{}, err
	}
	if model == nil {
		return booking.NewSession(id), nil
	}
	return model.Session(), nil
}

func (s *MongoStore) Save(ctx context.Context, sess booking.Session) error {
	current, err := s.find(ctx, sess.ID)
	if err != nil {
		return err
	}
	var stored int64
	if current != nil {
		stored = current.Version
	}
	if stored != sess.Version-1 {
		return ErrVersionConflict
	}

	if _, err := async.Await(s.collection.Save(ctx, NewSessionModel(sess))); err != nil {
		logger.Error("Failed to save session", zap.String("session", sess.ID), zap.Error(err))
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

func (s *MongoStore) find(ctx context.Context, id string) (*SessionModel, error) {
	model, err := async.Await(s.collection.FindOneByID(ctx, id))
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		logger.Error("Failed to find session", zap.String("session", id), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return model, nil
}
