package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/recipio/recipio/internal/recipe"
)

// ErrNotFound is returned when a record does not exist. Invalid record IDs
// map here as well rather than erroring separately.
var ErrNotFound = errors.New("recipe not found")

// Store persists recipe records in a MongoDB collection. It is a thin CRUD
// wrapper; records are never mutated here beyond timestamps.
type Store struct {
	client  *mongo.Client
	recipes *mongo.Collection
}

// recipeDoc pairs the record with its Mongo identity.
type recipeDoc struct {
	ID            bson.ObjectID `bson:"_id,omitempty"`
	recipe.Recipe `bson:",inline"`
}

func (d *recipeDoc) toRecipe() *recipe.Recipe {
	r := d.Recipe
	r.ID = d.ID.Hex()
	return &r
}

// New connects to MongoDB and verifies reachability.
func New(ctx context.Context, uri, database string) (*Store, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	return &Store{
		client:  client,
		recipes: client.Database(database).Collection("recipes"),
	}, nil
}

// EnsureIndexes creates the query indexes. Failures are logged, not fatal.
func (s *Store) EnsureIndexes(ctx context.Context) {
	models := []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}}},
		{Keys: bson.D{{Key: "created_at", Value: 1}}},
		{Keys: bson.D{{Key: "title", Value: 1}}},
	}
	if _, err := s.recipes.Indexes().CreateMany(ctx, models); err != nil {
		log.Warn().Err(err).Msg("could not create recipe indexes")
	}
}

// Insert stores a record and returns it with its assigned ID and timestamps.
func (s *Store) Insert(ctx context.Context, r *recipe.Recipe) (*recipe.Recipe, error) {
	now := time.Now().UTC()
	r.CreatedAt = now
	r.UpdatedAt = now
	res, err := s.recipes.InsertOne(ctx, r)
	if err != nil {
		return nil, fmt.Errorf("insert recipe: %w", err)
	}
	oid, ok := res.InsertedID.(bson.ObjectID)
	if !ok {
		return nil, fmt.Errorf("unexpected inserted ID type %T", res.InsertedID)
	}
	saved := *r
	saved.ID = oid.Hex()
	return &saved, nil
}

// FindByID returns the record with the given hex ID, or ErrNotFound.
func (s *Store) FindByID(ctx context.Context, id string) (*recipe.Recipe, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}
	var doc recipeDoc
	if err := s.recipes.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find recipe: %w", err)
	}
	return doc.toRecipe(), nil
}

// FindByUserID returns all records belonging to a user.
func (s *Store) FindByUserID(ctx context.Context, userID string) ([]*recipe.Recipe, error) {
	cur, err := s.recipes.Find(ctx, bson.M{"user_id": userID})
	if err != nil {
		return nil, fmt.Errorf("find user recipes: %w", err)
	}
	defer cur.Close(ctx)
	var docs []recipeDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode user recipes: %w", err)
	}
	out := make([]*recipe.Recipe, 0, len(docs))
	for i := range docs {
		out = append(out, docs[i].toRecipe())
	}
	return out, nil
}

// Update applies a partial update and returns the updated record.
func (s *Store) Update(ctx context.Context, id string, fields map[string]any) (*recipe.Recipe, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}
	delete(fields, "id")
	delete(fields, "_id")
	fields["updated_at"] = time.Now().UTC()
	res, err := s.recipes.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": fields})
	if err != nil {
		return nil, fmt.Errorf("update recipe: %w", err)
	}
	if res.MatchedCount == 0 {
		return nil, ErrNotFound
	}
	return s.FindByID(ctx, id)
}

// Delete removes a record, reporting whether anything was deleted.
func (s *Store) Delete(ctx context.Context, id string) (bool, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return false, nil
	}
	res, err := s.recipes.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return false, fmt.Errorf("delete recipe: %w", err)
	}
	return res.DeletedCount > 0, nil
}

// Close disconnects the client.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
