package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/datamaps/pkg/errors"
	"github.com/matzehuels/datamaps/pkg/merge"
)

// DefaultCollection is the collection MongoStore writes to.
const DefaultCollection = "maps"

// MongoStore keeps definitions in a MongoDB collection.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// mongoDoc is the stored shape of a definition. The configuration is kept
// as JSON text so nested objects come back as plain maps.
type mongoDoc struct {
	ID        string    `bson:"_id"`
	Name      string    `bson:"name,omitempty"`
	Config    string    `bson:"config"`
	CreatedAt time.Time `bson:"created_at"`
}

// NewMongoStore connects to uri, pings the server and uses the given
// database. The collection defaults to [DefaultCollection].
func NewMongoStore(ctx context.Context, uri, database string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return NewMongoStoreFromClient(client, database, DefaultCollection), nil
}

// NewMongoStoreFromClient wraps an existing client.
func NewMongoStoreFromClient(client *mongo.Client, database, collection string) *MongoStore {
	return &MongoStore{
		client: client,
		coll:   client.Database(database).Collection(collection),
	}
}

func (s *MongoStore) Save(ctx context.Context, def *Definition) error {
	if err := prepare(def); err != nil {
		return err
	}
	doc, err := toDoc(def)
	if err != nil {
		return err
	}
	_, err = s.coll.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("save map %s: %w", def.ID, err)
	}
	return nil
}

func (s *MongoStore) Get(ctx context.Context, id string) (*Definition, error) {
	if err := errors.ValidateMapID(id); err != nil {
		return nil, err
	}
	var doc mongoDoc
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, fmt.Errorf("get map %s: %w", id, err)
	}
	return fromDoc(doc)
}

func (s *MongoStore) List(ctx context.Context, limit int) ([]*Definition, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: 1}}).
		SetLimit(int64(listLimit(limit)))
	cur, err := s.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list maps: %w", err)
	}
	var docs []mongoDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("list maps: %w", err)
	}

	out := make([]*Definition, 0, len(docs))
	for _, doc := range docs {
		def, err := fromDoc(doc)
		if err != nil {
			return nil, err
		}
		out = append(out, def)
	}
	return out, nil
}

func (s *MongoStore) Delete(ctx context.Context, id string) error {
	if _, err := s.coll.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return fmt.Errorf("delete map %s: %w", id, err)
	}
	return nil
}

// Close disconnects the client.
func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

func toDoc(def *Definition) (mongoDoc, error) {
	cfg, err := json.Marshal(def.Config)
	if err != nil {
		return mongoDoc{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "map %s has a configuration that cannot be stored", def.ID)
	}
	return mongoDoc{ID: def.ID, Name: def.Name, Config: string(cfg), CreatedAt: def.CreatedAt}, nil
}

func fromDoc(doc mongoDoc) (*Definition, error) {
	cfg := merge.Map{}
	if err := json.Unmarshal([]byte(doc.Config), &cfg); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "stored map %s is corrupt", doc.ID)
	}
	return &Definition{ID: doc.ID, Name: doc.Name, Config: cfg, CreatedAt: doc.CreatedAt}, nil
}

var _ Store = (*MongoStore)(nil)
