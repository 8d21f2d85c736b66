package docstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dwikikusuma/storefront/pkg/logger"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Mongo struct {
	client *mongo.Client
	db     *mongo.Database
	log    *slog.Logger
}

func OpenMongo(ctx context.Context, uri, database string, log *slog.Logger) (*Mongo, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return newMongo(client, database, log), nil
}

func newMongo(client *mongo.Client, database string, log *slog.Logger) *Mongo {
	return &Mongo{client: client, db: client.Database(database), log: logger.OrDiscard(log)}
}

func (m *Mongo) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

func (m *Mongo) Get(ctx context.Context, collection, id string) (Record, error) {
	var doc bson.M
	err := m.db.Collection(collection).FindOne(ctx, bson.M{IDField: id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get %s/%s: %w", collection, id, err)
	}
	return fromBSON(doc), nil
}

func (m *Mongo) Insert(ctx context.Context, collection string, rec Record) (string, error) {
	id := rec.ID()
	if id == "" {
		id = uuid.NewString()
	}
	doc := rec.Clone()
	if doc == nil {
		doc = Record{}
	}
	doc[IDField] = id

	if _, err := m.db.Collection(collection).InsertOne(ctx, bson.M(doc)); err != nil {
		return "", fmt.Errorf("insert %s: %w", collection, err)
	}
	return id, nil
}

func (m *Mongo) Put(ctx context.Context, collection, id string, rec Record) error {
	doc := rec.Clone()
	if doc == nil {
		doc = Record{}
	}
	doc[IDField] = id

	_, err := m.db.Collection(collection).ReplaceOne(ctx, bson.M{IDField: id}, bson.M(doc), options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("put %s/%s: %w", collection, id, err)
	}
	return nil
}

func (m *Mongo) Update(ctx context.Context, collection, id string, fields Record) error {
	set := fields.Clone()
	delete(set, IDField)

	res, err := m.db.Collection(collection).UpdateOne(ctx, bson.M{IDField: id}, bson.M{"$set": bson.M(set)})
	if err != nil {
		return fmt.Errorf("update %s/%s: %w", collection, id, err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (m *Mongo) Delete(ctx context.Context, collection, id string) error {
	res, err := m.db.Collection(collection).DeleteOne(ctx, bson.M{IDField: id})
	if err != nil {
		return fmt.Errorf("delete %s/%s: %w", collection, id, err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (m *Mongo) Find(ctx context.Context, collection string, q Query) ([]Record, error) {
	filter := bson.M{}
	for k, v := range q.Where {
		filter[k] = v
	}

	opts := options.Find()
	if q.SortBy != "" {
		dir := 1
		if q.Desc {
			dir = -1
		}
		opts.SetSort(bson.D{{Key: q.SortBy, Value: dir}})
	}
	if q.Limit > 0 {
		opts.SetLimit(int64(q.Limit))
	}

	cursor, err := m.db.Collection(collection).Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", collection, err)
	}
	defer cursor.Close(ctx)

	var docs []bson.M
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode %s: %w", collection, err)
	}

	out := make([]Record, 0, len(docs))
	for _, d := range docs {
		out = append(out, fromBSON(d))
	}
	return out, nil
}

type changeEvent struct {
	OperationType string `bson:"operationType"`
	DocumentKey   bson.M `bson:"documentKey"`
	FullDocument  bson.M `bson:"fullDocument"`
}

// Watch opens a change stream. It needs a replica set or sharded cluster.
func (m *Mongo) Watch(ctx context.Context, collection string, fn func(Change)) (func(), error) {
	ctx, cancel := context.WithCancel(ctx)

	opts := options.ChangeStream().SetFullDocument(options.UpdateLookup)
	stream, err := m.db.Collection(collection).Watch(ctx, mongo.Pipeline{}, opts)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("watch %s: %w", collection, err)
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer stream.Close(context.Background())

		for stream.Next(ctx) {
			var ev changeEvent
			if err := stream.Decode(&ev); err != nil {
				m.log.Warn("change stream decode failed", slog.String("collection", collection), slog.Any("err", err))
				continue
			}
			c, ok := toChange(ev)
			if !ok {
				continue
			}
			fn(c)
		}
		if ctx.Err() == nil {
			m.log.Error("change stream stopped", slog.String("collection", collection), slog.Any("err", stream.Err()))
			fn(Change{Kind: ChangeClosed})
		}
	}()

	return func() {
		cancel()
		wg.Wait()
	}, nil
}

func toChange(ev changeEvent) (Change, bool) {
	id := fmt.Sprint(ev.DocumentKey[IDField])
	switch ev.OperationType {
	case "insert":
		return Change{Kind: ChangeInsert, ID: id, Record: fromBSON(ev.FullDocument)}, true
	case "update", "replace":
		return Change{Kind: ChangeUpdate, ID: id, Record: fromBSON(ev.FullDocument)}, true
	case "delete":
		return Change{Kind: ChangeDelete, ID: id}, true
	default:
		return Change{}, false
	}
}

func fromBSON(doc bson.M) Record {
	if doc == nil {
		return nil
	}
	out := make(Record, len(doc))
	for k, v := range doc {
		out[k] = fromBSONValue(v)
	}
	return out
}

func fromBSONValue(v any) any {
	switch t := v.(type) {
	case bson.M:
		return fromBSON(t)
	case primitive.D:
		return fromBSON(t.Map())
	case primitive.A:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = fromBSONValue(e)
		}
		return out
	case primitive.DateTime:
		return t.Time().UTC()
	case primitive.ObjectID:
		return t.Hex()
	case primitive.Decimal128:
		return t.String()
	default:
		return v
	}
}
