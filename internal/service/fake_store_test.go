package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// fakeStore is an in-memory MediaStore.
type fakeStore struct {
	mu       sync.Mutex
	stored   map[string]MediaObject
	deleted  []string
	failAt   int
	calls    int
	block    bool
	pingErr  error
}

func newFakeStore() *fakeStore {
	return &fakeStore{stored: map[string]MediaObject{}}
}

func (f *fakeStore) Name() string { return "fake" }

func (f *fakeStore) Upload(ctx context.Context, obj MediaObject) (*StoredMedia, error) {
	f.mu.Lock()
	f.calls++
	n := f.calls
	f.mu.Unlock()

	if f.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if f.failAt > 0 && n == f.failAt {
		return nil, errors.New("remote rejected file")
	}

	id := obj.Folder + "/" + obj.Name
	f.mu.Lock()
	f.stored[id] = obj
	f.mu.Unlock()
	return &StoredMedia{URL: fmt.Sprintf("https://media.test/%s%s", id, obj.Extension), ID: id}, nil
}

func (f *fakeStore) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.stored, id)
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeStore) Ping(context.Context) error { return f.pingErr }

func (f *fakeStore) storedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.stored)
}
