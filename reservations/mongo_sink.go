package reservations

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SaiNageswarS/booking-agent/booking"
	"github.com/SaiNageswarS/go-api-boot/logger"
	"github.com/SaiNageswarS/go-api-boot/odm"
	"github.com/SaiNageswarS/go-collection-boot/async"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.uber.org/zap"
)

// MongoSink stores reservations in the reservations collection of a tenant.
type MongoSink struct {
	collection odm.OdmCollectionInterface[ReservationModel]
}

func NewMongoSink(client odm.MongoClient, tenant string) *MongoSink {
	return &MongoSink{collection: odm.CollectionOf[ReservationModel](client, tenant)}
}

func (s *MongoSink) Commit(ctx context.Context, key string, record booking.Record) (string, error) {
	id, err := odm.HashedKey(key)
	if err != nil {
		return "", fmt.Errorf("%w: %v", booking.ErrCommitFailed, err)
	}

	existing, err := async.Await(s.collection.FindOneByID(ctx, id))
	if err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
		logger.Error("Failed to look up reservation", zap.String("key", key), zap.Error(err))
		return "", fmt.Errorf("%w: %v", booking.ErrCommitFailed, err)
	}
	if err == nil && existing != nil {
		amended, changed := existing.amend(record, time.Now())
		if !changed {
			return existing.BookingID, nil
		}
		if _, err := async.Await(s.collection.Save(ctx, amended)); err != nil {
			logger.Error("Failed to amend reservation", zap.String("key", key), zap.Error(err))
			return "", fmt.Errorf("%w: %v", booking.ErrCommitFailed, err)
		}
		logger.Info("Reservation amended", zap.String("booking", amended.BookingID))
		return amended.BookingID, nil
	}

	r := newReservation(id, key, record, time.Now())
	if _, err := async.Await(s.collection.Save(ctx, r)); err != nil {
		logger.Error("Failed to save reservation", zap.String("key", key), zap.Error(err))
		return "", fmt.Errorf("%w: %v", booking.ErrCommitFailed, err)
	}

	logger.Info("Reservation stored",
		zap.String("booking", r.BookingID), zap.String("service", r.ServiceType()))
	return r.BookingID, nil
}
