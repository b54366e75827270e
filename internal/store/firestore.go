package store

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// firestoreDoc is the stored shape of a user; the identifier is the
// document key.
type firestoreDoc struct {
	Name    string `firestore:"name"`
	Email   string `firestore:"email"`
	Phone   string `firestore:"phone"`
	Address string `firestore:"address"`
}

// FirestoreStore is an implementation of Gateway backed by a Cloud
// Firestore collection.  Firestore orders strings by their UTF-8 bytes, so
// the two inequality filters of RangeQuery are bytewise.  Setting
// FIRESTORE_EMULATOR_HOST points the client at a local emulator.
type FirestoreStore struct {
	client *firestore.Client
	coll   *firestore.CollectionRef
}

// NewFirestoreStore creates a client for projectID.  credentialsFile is
// optional; application default credentials are used when empty.
func NewFirestoreStore(ctx context.Context, projectID, credentialsFile, collection string) (*FirestoreStore, error) {
	if projectID == "" {
		return nil, fmt.Errorf("firestore project id required")
	}
	if collection == "" {
		collection = DefaultCollection
	}
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	client, err := firestore.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("firestore client: %w", err)
	}
	return &FirestoreStore{client: client, coll: client.Collection(collection)}, nil
}

// Close releases the client's connections.
func (s *FirestoreStore) Close() error {
	return s.client.Close()
}

func (s *FirestoreStore) Add(ctx context.Context, fields Fields) (string, error) {
	ref, _, err := s.coll.Add(ctx, firestoreDoc{
		Name: fields.Name, Email: fields.Email, Phone: fields.Phone, Address: fields.Address,
	})
	if err != nil {
		return "", wrap(OpAdd, "", err)
	}
	return ref.ID, nil
}

func (s *FirestoreStore) FetchAll(ctx context.Context) ([]User, error) {
	users, err := s.collect(s.coll.Documents(ctx))
	return users, wrap(OpFetchAll, "", err)
}

func (s *FirestoreStore) RangeQuery(ctx context.Context, field, lower, upper string) ([]User, error) {
	if err := checkField(field); err != nil {
		return nil, wrap(OpRangeQuery, "", err)
	}
	q := s.coll.Where(field, ">=", lower).Where(field, "<=", upper)
	users, err := s.collect(q.Documents(ctx))
	return users, wrap(OpRangeQuery, "", err)
}

func (s *FirestoreStore) UpdateByID(ctx context.Context, id string, patch Patch) error {
	values := patch.Values()
	if len(values) == 0 {
		_, err := s.Get(ctx, id)
		return err
	}
	updates := make([]firestore.Update, len(values))
	for i, fv := range values {
		updates[i] = firestore.Update{Path: fv.Field, Value: fv.Value}
	}
	_, err := s.coll.Doc(id).Update(ctx, updates)
	return wrap(OpUpdate, id, firestoreErr(err))
}

func (s *FirestoreStore) DeleteByID(ctx context.Context, id string) error {
	_, err := s.coll.Doc(id).Delete(ctx, firestore.Exists)
	return wrap(OpDelete, id, firestoreErr(err))
}

func (s *FirestoreStore) Get(ctx context.Context, id string) (User, error) {
	snap, err := s.coll.Doc(id).Get(ctx)
	if err != nil {
		return User{}, wrap(OpGet, id, firestoreErr(err))
	}
	u, err := decodeSnapshot(snap)
	if err != nil {
		return User{}, wrap(OpGet, id, err)
	}
	return u, nil
}

func (s *FirestoreStore) collect(it *firestore.DocumentIterator) ([]User, error) {
	snaps, err := it.GetAll()
	if err != nil {
		return nil, fmt.Errorf("firestore query: %w", err)
	}
	users := make([]User, 0, len(snaps))
	for _, snap := range snaps {
		u, err := decodeSnapshot(snap)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, nil
}

func decodeSnapshot(snap *firestore.DocumentSnapshot) (User, error) {
	var doc firestoreDoc
	if err := snap.DataTo(&doc); err != nil {
		return User{}, &DecodeError{ID: snap.Ref.ID, Err: err}
	}
	return User{ID: snap.Ref.ID, Name: doc.Name, Email: doc.Email, Phone: doc.Phone, Address: doc.Address}, nil
}

func firestoreErr(err error) error {
	if err == nil {
		return nil
	}
	if status.Code(err) == codes.NotFound {
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	return err
}
