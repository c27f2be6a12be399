package storage

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const defaultFirestoreCollection = "storefront_slots"

type slotDocument struct {
	Key       string    `firestore:"key"`
	Value     string    `firestore:"value"`
	UpdatedAt time.Time `firestore:"updatedAt"`
}

// Firestore stores each slot as one document; a write replaces the whole document.
type Firestore struct {
	client     *firestore.Client
	collection string
	maxBytes   int
	now        func() time.Time
}

// NewFirestore creates a Firestore client for projectID.
func NewFirestore(ctx context.Context, projectID, collection string, maxBytes int) (*Firestore, error) {
	if strings.TrimSpace(projectID) == "" {
		return nil, errors.New("storage: firestore project id is required")
	}
	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("storage: firestore client: %w", err)
	}
	return NewFirestoreWithClient(client, collection, maxBytes), nil
}

// NewFirestoreWithClient wraps an existing client.
func NewFirestoreWithClient(client *firestore.Client, collection string, maxBytes int) *Firestore {
	if strings.TrimSpace(collection) == "" {
		collection = defaultFirestoreCollection
	}
	return &Firestore{client: client, collection: collection, maxBytes: maxBytes, now: time.Now}
}

// GetItem loads the document for key.
func (f *Firestore) GetItem(ctx context.Context, key string) (string, bool, error) {
	if err := validateKey(key); err != nil {
		return "", false, err
	}
	snap, err := f.doc(key).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("storage: firestore get: %w", err)
	}
	var doc slotDocument
	if err := snap.DataTo(&doc); err != nil {
		return "", false, fmt.Errorf("storage: firestore decode: %w", err)
	}
	return doc.Value, true, nil
}

// SetItem replaces the document for key.
func (f *Firestore) SetItem(ctx context.Context, key, value string) error {
	if err := validateKey(key); err != nil {
		return err
	}
	if err := checkQuota(f.maxBytes, value); err != nil {
		return err
	}
	doc := slotDocument{Key: key, Value: value, UpdatedAt: f.now().UTC()}
	if _, err := f.doc(key).Set(ctx, doc); err != nil {
		return fmt.Errorf("storage: firestore set: %w", err)
	}
	return nil
}

// RemoveItem deletes the document for key.
func (f *Firestore) RemoveItem(ctx context.Context, key string) error {
	if err := validateKey(key); err != nil {
		return err
	}
	if _, err := f.doc(key).Delete(ctx); err != nil && status.Code(err) != codes.NotFound {
		return fmt.Errorf("storage: firestore delete: %w", err)
	}
	return nil
}

// Close releases the Firestore client.
func (f *Firestore) Close() error {
	return f.client.Close()
}

// Document IDs may not contain '/', so keys are encoded.
func (f *Firestore) doc(key string) *firestore.DocumentRef {
	return f.client.Collection(f.collection).Doc(base64.RawURLEncoding.EncodeToString([]byte(key)))
}
