package store

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/mindlayout/pkg/errors"
	"github.com/matzehuels/mindlayout/pkg/scene"
)

// Mongo defaults.
const (
	DefaultMongoDatabase   = "mindlayout"
	DefaultMongoCollection = "scenes"
)

// mongoScene is the stored document shape.
type mongoScene struct {
	Name      string          `bson:"_id"`
	Version   int             `bson:"version"`
	Objects   []*scene.Object `bson:"objects"`
	UpdatedAt time.Time       `bson:"updatedAt"`
}

// Mongo stores one document per scene.
type Mongo struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewMongo connects to uri and uses the scenes collection of database db.
func NewMongo(ctx context.Context, uri, db string) (*Mongo, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return &Mongo{client: client, coll: client.Database(db).Collection(DefaultMongoCollection)}, nil
}

// Load implements Store.
func (s *Mongo) Load(ctx context.Context, name string) ([]*scene.Object, error) {
	if err := errors.ValidateSceneName(name); err != nil {
		return nil, err
	}
	var doc mongoScene
	err := s.coll.FindOne(ctx, bson.M{"_id": name}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, notFound(name)
	}
	if err != nil {
		return nil, fmt.Errorf("load scene %s: %w", name, err)
	}
	if doc.Version > scene.DocumentVersion {
		return nil, fmt.Errorf("load scene %s: unsupported version %d", name, doc.Version)
	}
	return doc.Objects, nil
}

// Save implements Store.
func (s *Mongo) Save(ctx context.Context, name string, objs []*scene.Object) error {
	if err := errors.ValidateSceneName(name); err != nil {
		return err
	}
	doc := mongoScene{Name: name, Version: scene.DocumentVersion, Objects: objs, UpdatedAt: time.Now().UTC()}
	_, err := s.coll.ReplaceOne(ctx, bson.M{"_id": name}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("save scene %s: %w", name, err)
	}
	return nil
}

// List implements Store.
func (s *Mongo) List(ctx context.Context) ([]string, error) {
	opts := options.Find().SetProjection(bson.M{"_id": 1}).SetSort(bson.M{"_id": 1})
	cur, err := s.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var names []string
	for cur.Next(ctx) {
		var doc struct {
			Name string `bson:"_id"`
		}
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		names = append(names, doc.Name)
	}
	return names, cur.Err()
}

// Delete implements Store.
func (s *Mongo) Delete(ctx context.Context, name string) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": name})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return notFound(name)
	}
	return nil
}

// Close disconnects the client.
func (s *Mongo) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

var _ Store = (*Mongo)(nil)
