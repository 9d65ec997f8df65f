// ReelAtlas - AI-Assisted Movie Discovery
// Copyright 2026 ReelAtlas Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reel-atlas/reelatlas

// Package favorites persists the user's saved movies in an embedded
// BadgerDB. Entries store the full movie snapshot at save time so the list
// renders without a provider round-trip.
package favorites

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/reel-atlas/reelatlas/internal/provider/tmdb"
)

// favoriteKeyPrefix namespaces favorite entries in the shared database.
// The id is zero-padded so lexicographic key order matches numeric order.
const favoriteKeyPrefix = "favorite:"

// ErrNotFound is returned when the requested movie is not a favorite.
var ErrNotFound = errors.New("favorites: not found")

// Store is a BadgerDB-backed favorites collection.
type Store struct {
	db *badger.DB
}

// Open creates or opens the favorites database at path.
func Open(path string) (*Store, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open favorites database: %w", err)
	}
	return &Store{db: db}, nil
}

// NewStore wraps an already-open database; the caller keeps ownership.
func NewStore(db *badger.DB) *Store {
	return &Store{db: db}
}

// Close flushes and closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func favoriteKey(id int) []byte {
	return []byte(fmt.Sprintf("%s%012d", favoriteKeyPrefix, id))
}

// Add saves a movie snapshot. Re-adding overwrites the stored snapshot.
func (s *Store) Add(ctx context.Context, movie *tmdb.Movie) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(movie)
	if err != nil {
		return fmt.Errorf("marshal favorite: %w", err)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(favoriteKey(movie.ID), data)
	})
}

// Remove deletes a favorite. Removing an absent id is not an error.
func (s *Store) Remove(ctx context.Context, id int) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		err := txn.Delete(favoriteKey(id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		return err
	})
}

// Contains reports whether the movie id is saved.
func (s *Store) Contains(ctx context.Context, id int) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	var found bool
	err := s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(favoriteKey(id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		return nil
	})
	return found, err
}

// Toggle adds the movie if absent and removes it if present, returning the
// resulting saved state.
func (s *Store) Toggle(ctx context.Context, movie *tmdb.Movie) (bool, error) {
	saved, err := s.Contains(ctx, movie.ID)
	if err != nil {
		return false, err
	}
	if saved {
		return false, s.Remove(ctx, movie.ID)
	}
	return true, s.Add(ctx, movie)
}

// Get returns the stored snapshot for one favorite.
func (s *Store) Get(ctx context.Context, id int) (*tmdb.Movie, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var movie tmdb.Movie
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(favoriteKey(id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("get favorite: %w", err)
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &movie)
		})
	})
	if err != nil {
		return nil, err
	}
	return &movie, nil
}

// List returns all favorites ordered by movie id ascending.
func (s *Store) List(ctx context.Context) ([]tmdb.Movie, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	movies := []tmdb.Movie{}
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(favoriteKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var movie tmdb.Movie
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &movie)
			})
			if err != nil {
				return fmt.Errorf("unmarshal favorite: %w", err)
			}
			movies = append(movies, movie)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return movies, nil
}

// Count returns the number of saved favorites.
func (s *Store) Count(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	count := 0
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(favoriteKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			count++
		}
		return nil
	})
	return count, err
}
