// internal/app/system/feed/mongofeed.go
package feed

import (
	"context"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// reconnectDelay is how long a watch loop waits before reopening a failed
// change stream.
const reconnectDelay = 2 * time.Second

// MongoFeed implements Feed over MongoDB change streams.
type MongoFeed struct {
	db  *mongo.Database
	log *zap.Logger
}

// NewMongoFeed creates a Feed backed by the given database.
func NewMongoFeed(db *mongo.Database, logger *zap.Logger) *MongoFeed {
	return &MongoFeed{db: db, log: logger}
}

// Subscribe opens a change stream on the collection and delivers events to
// fn until Stop is called. Stream errors are logged and the stream is
// reopened; events may be redelivered across reopens.
func (f *MongoFeed) Subscribe(collection string, fn Handler) (Subscription, error) {
	ctx, cancel := context.WithCancel(context.Background())
	sub := &mongoSubscription{cancel: cancel}

	sub.wg.Add(1)
	go f.watch(ctx, collection, fn, &sub.wg)

	return sub, nil
}

type mongoSubscription struct {
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	stopOnce sync.Once
}

func (s *mongoSubscription) Stop() {
	s.stopOnce.Do(func() {
		s.cancel()
		s.wg.Wait()
	})
}

// changeDoc is the slice of a change-stream document we decode. Delete
// events have no fullDocument, only the document key.
type changeDoc struct {
	OperationType string `bson:"operationType"`
	DocumentKey   struct {
		ID primitive.ObjectID `bson:"_id"`
	} `bson:"documentKey"`
	FullDocument struct {
		UserID primitive.ObjectID `bson:"user_id"`
	} `bson:"fullDocument"`
}

func (f *MongoFeed) watch(ctx context.Context, collection string, fn Handler, wg *sync.WaitGroup) {
	defer wg.Done()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"operationType": bson.M{"$in": bson.A{"insert", "update", "replace", "delete"}},
		}}},
	}
	opts := options.ChangeStream().SetFullDocument(options.UpdateLookup)

	for {
		if ctx.Err() != nil {
			return
		}

		cs, err := f.db.Collection(collection).Watch(ctx, pipeline, opts)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			f.log.Warn("change stream open failed, retrying",
				zap.String("collection", collection),
				zap.Error(err))
			select {
			case <-ctx.Done():
				return
			case <-time.After(reconnectDelay):
			}
			continue
		}

		for cs.Next(ctx) {
			var doc changeDoc
			if err := cs.Decode(&doc); err != nil {
				f.log.Warn("change event decode failed",
					zap.String("collection", collection),
					zap.Error(err))
				continue
			}
			fn(Event{
				Type:       mapOperation(doc.OperationType),
				Collection: collection,
				DocumentID: doc.DocumentKey.ID,
				UserID:     doc.FullDocument.UserID,
			})
		}

		err = cs.Err()
		_ = cs.Close(context.Background())
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			f.log.Warn("change stream interrupted, reopening",
				zap.String("collection", collection),
				zap.Error(err))
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(reconnectDelay):
		}
	}
}

func mapOperation(op string) EventType {
	switch op {
	case "insert":
		return EventInsert
	case "delete":
		return EventDelete
	default: // update, replace
		return EventUpdate
	}
}
