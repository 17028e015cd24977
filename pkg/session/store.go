// Copyright 2026 The AlpineAI Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package session

import (
	"context"
	"errors"
	"sync"
)

// Store fronts a durable Repository with an in-process cache of live
// sessions, keyed by agentName + ":" + contextID.
//
// Concurrent Get/Save for the same key are last-write-wins: the expected
// caller discipline is a single active turn per contextId, and the store
// does not provide inter-process locking. A hardened deployment would
// serialize writers per key.
type Store struct {
	repo Repository

	mu    sync.RWMutex
	cache map[string]*Session
}

// NewStore creates a store over the given repository.
func NewStore(repo Repository) *Store {
	return &Store{
		repo:  repo,
		cache: make(map[string]*Session),
	}
}

// Get returns the live session for (agentName, contextID). Resolution order:
// in-process cache, then the durable repository, then a brand-new empty
// session. A key with no prior state is the expected new-conversation path
// and never an error; any repository failure other than not-found is
// returned as a *StoreError.
func (s *Store) Get(ctx context.Context, agentName, contextID string) (*Session, error) {
	key := Key(agentName, contextID)

	s.mu.RLock()
	cached, ok := s.cache[key]
	s.mu.RUnlock()
	if ok {
		return cached, nil
	}

	blob, err := s.repo.Read(ctx, key)
	switch {
	case errors.Is(err, ErrNotFound):
		return New(agentName, contextID), nil
	case err != nil:
		var storeErr *StoreError
		if errors.As(err, &storeErr) {
			return nil, err
		}
		return nil, &StoreError{Op: "read", Key: key, Err: err}
	}

	sess, err := Deserialize(blob)
	if err != nil {
		return nil, &StoreError{Op: "decode", Key: key, Err: err}
	}

	s.mu.Lock()
	s.cache[key] = sess
	s.mu.Unlock()

	return sess, nil
}

// Save serializes the session, writes it to the durable repository, and only
// then caches the live object so subsequent same-process reads skip
// deserialization. A failed write leaves the cache untouched.
func (s *Store) Save(ctx context.Context, agentName, contextID string, sess *Session) error {
	key := Key(agentName, contextID)

	blob, err := sess.Serialize()
	if err != nil {
		return &StoreError{Op: "encode", Key: key, Err: err}
	}

	if err := s.repo.Write(ctx, key, blob); err != nil {
		var storeErr *StoreError
		if errors.As(err, &storeErr) {
			return err
		}
		return &StoreError{Op: "write", Key: key, Err: err}
	}

	s.mu.Lock()
	s.cache[key] = sess
	s.mu.Unlock()

	return nil
}

// Close closes the underlying repository.
func (s *Store) Close() error {
	return s.repo.Close()
}
