package docstore

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/atlas/pkg/errors"
)

// MongoStore persists documents in a MongoDB collection with a unique
// index on the document name.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

var _ Store = (*MongoStore)(nil)

// mongoDoc is the stored record. Size is materialized at write time so
// List can project the document body away.
type mongoDoc struct {
	Name      string    `bson:"name"`
	Data      []byte    `bson:"data"`
	Size      int64     `bson:"size"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// NewMongoStore connects to MongoDB, verifies the connection and
// ensures the unique name index. An empty url means
// mongodb://localhost:27017; an empty database means atlas. Documents
// live in the "documents" collection.
func NewMongoStore(ctx context.Context, url, database string) (*MongoStore, error) {
	if url == "" {
		url = "mongodb://localhost:27017"
	}
	if database == "" {
		database = "atlas"
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(url))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "connect to mongodb")
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, errors.Wrap(errors.ErrCodeStore, err, "ping mongodb")
	}

	coll := client.Database(database).Collection("documents")
	_, err = coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "name", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		_ = client.Disconnect(ctx)
		return nil, errors.Wrap(errors.ErrCodeStore, err, "create name index")
	}

	return &MongoStore{client: client, coll: coll}, nil
}

// Get retrieves a document by name.
func (s *MongoStore) Get(ctx context.Context, name string) ([]byte, error) {
	if err := errors.ValidateDocumentName(name); err != nil {
		return nil, err
	}

	var doc mongoDoc
	err := s.coll.FindOne(ctx, bson.M{"name": name}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, errNotFound(name)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "mongo get %q", name)
	}
	return doc.Data, nil
}

// Put stores a document under the given name, replacing any previous
// version via upsert.
func (s *MongoStore) Put(ctx context.Context, name string, data []byte) error {
	if err := errors.ValidateDocumentName(name); err != nil {
		return err
	}

	doc := mongoDoc{
		Name:      name,
		Data:      data,
		Size:      int64(len(data)),
		UpdatedAt: time.Now().UTC(),
	}
	_, err := s.coll.ReplaceOne(ctx, bson.M{"name": name}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return errors.Wrap(errors.ErrCodeStore, err, "mongo put %q", name)
	}
	return nil
}

// Delete removes a document.
func (s *MongoStore) Delete(ctx context.Context, name string) error {
	if err := errors.ValidateDocumentName(name); err != nil {
		return err
	}

	res, err := s.coll.DeleteOne(ctx, bson.M{"name": name})
	if err != nil {
		return errors.Wrap(errors.ErrCodeStore, err, "mongo delete %q", name)
	}
	if res.DeletedCount == 0 {
		return errNotFound(name)
	}
	return nil
}

// List returns metadata for all stored documents, sorted by name.
func (s *MongoStore) List(ctx context.Context) ([]Entry, error) {
	opts := options.Find().
		SetProjection(bson.M{"data": 0}).
		SetSort(bson.D{{Key: "name", Value: 1}})

	cur, err := s.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "mongo list")
	}

	var docs []mongoDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "mongo list")
	}

	entries := make([]Entry, 0, len(docs))
	for _, d := range docs {
		entries = append(entries, Entry{Name: d.Name, Size: d.Size, UpdatedAt: d.UpdatedAt})
	}
	return entries, nil
}

// Close disconnects from MongoDB.
func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}
