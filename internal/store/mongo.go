package store

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const mongoDefaultDatabase = "userdir"

// mongoDoc is the stored shape of a user.  The identifier is the document's
// ObjectID, rendered as hex outside this file.
type mongoDoc struct {
	ID      primitive.ObjectID `bson:"_id,omitempty"`
	Name    string             `bson:"name"`
	Email   string             `bson:"email"`
	Phone   string             `bson:"phone"`
	Address string             `bson:"address"`
}

func (d mongoDoc) user() User {
	return User{ID: d.ID.Hex(), Name: d.Name, Email: d.Email, Phone: d.Phone, Address: d.Address}
}

// MongoStore is an implementation of Gateway backed by a MongoDB
// collection.  String comparisons use the server's default binary
// ordering, so range filters are bytewise.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewMongoStore connects to uri, pings the deployment and returns a store
// for database.collection.
func NewMongoStore(ctx context.Context, uri, database, collection string) (*MongoStore, error) {
	if database == "" {
		database = mongoDefaultDatabase
	}
	if collection == "" {
		collection = DefaultCollection
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	coll := client.Database(database).Collection(collection)
	if _, err := coll.Indexes().CreateOne(ctx, mongo.IndexModel{Keys: bson.D{{Key: FieldName, Value: 1}}}); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo create name index: %w", err)
	}
	return &MongoStore{client: client, coll: coll}, nil
}

// Close disconnects the client.
func (s *MongoStore) Close() error {
	return s.client.Disconnect(context.Background())
}

func (s *MongoStore) Add(ctx context.Context, fields Fields) (string, error) {
	res, err := s.coll.InsertOne(ctx, mongoDoc{
		Name: fields.Name, Email: fields.Email, Phone: fields.Phone, Address: fields.Address,
	})
	if err != nil {
		return "", wrap(OpAdd, "", err)
	}
	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", wrap(OpAdd, "", fmt.Errorf("unexpected inserted id %T", res.InsertedID))
	}
	return oid.Hex(), nil
}

func (s *MongoStore) FetchAll(ctx context.Context) ([]User, error) {
	users, err := s.find(ctx, bson.M{})
	return users, wrap(OpFetchAll, "", err)
}

func (s *MongoStore) RangeQuery(ctx context.Context, field, lower, upper string) ([]User, error) {
	if err := checkField(field); err != nil {
		return nil, wrap(OpRangeQuery, "", err)
	}
	users, err := s.find(ctx, bson.M{field: bson.M{"$gte": lower, "$lte": upper}})
	return users, wrap(OpRangeQuery, "", err)
}

func (s *MongoStore) UpdateByID(ctx context.Context, id string, patch Patch) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return wrap(OpUpdate, id, ErrNotFound)
	}
	set := bson.M{}
	for _, fv := range patch.Values() {
		set[fv.Field] = fv.Value
	}
	if len(set) == 0 {
		_, err := s.Get(ctx, id)
		if err != nil {
			return wrap(OpUpdate, id, errors.Unwrap(err))
		}
		return nil
	}
	res, err := s.coll.UpdateByID(ctx, oid, bson.M{"$set": set})
	if err != nil {
		return wrap(OpUpdate, id, err)
	}
	if res.MatchedCount == 0 {
		return wrap(OpUpdate, id, ErrNotFound)
	}
	return nil
}

func (s *MongoStore) DeleteByID(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return wrap(OpDelete, id, ErrNotFound)
	}
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return wrap(OpDelete, id, err)
	}
	if res.DeletedCount == 0 {
		return wrap(OpDelete, id, ErrNotFound)
	}
	return nil
}

func (s *MongoStore) Get(ctx context.Context, id string) (User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return User{}, wrap(OpGet, id, ErrNotFound)
	}
	var doc mongoDoc
	err = s.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return User{}, wrap(OpGet, id, ErrNotFound)
	}
	if err != nil {
		return User{}, wrap(OpGet, id, &DecodeError{ID: id, Err: err})
	}
	return doc.user(), nil
}

func (s *MongoStore) find(ctx context.Context, filter bson.M) ([]User, error) {
	cur, err := s.coll.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("mongo find: %w", err)
	}
	defer func() { _ = cur.Close(ctx) }()
	users := make([]User, 0)
	for cur.Next(ctx) {
		var doc mongoDoc
		if err := cur.Decode(&doc); err != nil {
			id, _ := cur.Current.Lookup("_id").ObjectIDOK()
			return nil, &DecodeError{ID: id.Hex(), Err: err}
		}
		users = append(users, doc.user())
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("mongo cursor: %w", err)
	}
	return users, nil
}
