package mongo

import (
	"context"
	"time"

	mongodriver "go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// CollectionWrapper applies an automatic query timeout to every operation.
type CollectionWrapper struct {
	coll    *mongodriver.Collection
	timeout time.Duration
}

func NewCollectionWrapper(coll *mongodriver.Collection, timeout time.Duration) *CollectionWrapper {
	return &CollectionWrapper{
		coll:    coll,
		timeout: timeout,
	}
}

func (w *CollectionWrapper) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, w.timeout)
}

func (w *CollectionWrapper) FindOne(ctx context.Context, filter interface{}, opts ...options.Lister[options.FindOneOptions]) *mongodriver.SingleResult {
	timeoutCtx, cancel := w.withTimeout(ctx)
	defer cancel()
	return w.coll.FindOne(timeoutCtx, filter, opts...)
}

func (w *CollectionWrapper) Find(ctx context.Context, filter interface{}, opts ...options.Lister[options.FindOptions]) (*mongodriver.Cursor, error) {
	timeoutCtx, cancel := w.withTimeout(ctx)
	defer cancel()
	return w.coll.Find(timeoutCtx, filter, opts...)
}

func (w *CollectionWrapper) InsertOne(ctx context.Context, document interface{}, opts ...options.Lister[options.InsertOneOptions]) (*mongodriver.InsertOneResult, error) {
	timeoutCtx, cancel := w.withTimeout(ctx)
	defer cancel()
	return w.coll.InsertOne(timeoutCtx, document, opts...)
}

func (w *CollectionWrapper) UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...options.Lister[options.UpdateOneOptions]) (*mongodriver.UpdateResult, error) {
	timeoutCtx, cancel := w.withTimeout(ctx)
	defer cancel()
	return w.coll.UpdateOne(timeoutCtx, filter, update, opts...)
}

func (w *CollectionWrapper) UpdateMany(ctx context.Context, filter interface{}, update interface{}, opts ...options.Lister[options.UpdateManyOptions]) (*mongodriver.UpdateResult, error) {
	timeoutCtx, cancel := w.withTimeout(ctx)
	defer cancel()
	return w.coll.UpdateMany(timeoutCtx, filter, update, opts...)
}

func (w *CollectionWrapper) DeleteMany(ctx context.Context, filter interface{}, opts ...options.Lister[options.DeleteManyOptions]) (*mongodriver.DeleteResult, error) {
	timeoutCtx, cancel := w.withTimeout(ctx)
	defer cancel()
	return w.coll.DeleteMany(timeoutCtx, filter, opts...)
}

func (w *CollectionWrapper) CountDocuments(ctx context.Context, filter interface{}, opts ...options.Lister[options.CountOptions]) (int64, error) {
	timeoutCtx, cancel := w.withTimeout(ctx)
	defer cancel()
	return w.coll.CountDocuments(timeoutCtx, filter, opts...)
}

func (w *CollectionWrapper) Indexes() mongodriver.IndexView {
	return w.coll.Indexes()
}

func (w *CollectionWrapper) Name() string {
	return w.coll.Name()
}
