// Package ledger keeps the transaction list in a kv.Store.
//
// The whole list lives under a single key and is rewritten on every
// mutation. Mutations are serialised with a mutex so concurrent requests
// cannot lose each other's writes.
package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"fintrack/internal/core"
	"fintrack/internal/kv"
	"fintrack/internal/log"
)

const DefaultKey = "fintrack:transactions"

var (
	ErrNotFound    = errors.New("transaction not found")
	ErrDuplicateID = errors.New("transaction id already exists")
)

type Store struct {
	kv     kv.Store
	key    string
	seed   bool
	now    func() time.Time
	logger *log.Logger

	mu sync.Mutex
}

type Option func(*Store)

func WithKey(key string) Option { return func(s *Store) { s.key = key } }

// WithSampleData controls whether an absent key is seeded with demo data.
func WithSampleData(enabled bool) Option { return func(s *Store) { s.seed = enabled } }

func WithClock(now func() time.Time) Option { return func(s *Store) { s.now = now } }

func WithLogger(l *log.Logger) Option { return func(s *Store) { s.logger = l } }

func New(store kv.Store, opts ...Option) *Store {
	s := &Store{
		kv:   store,
		key:  DefaultKey,
		seed: true,
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = log.New(log.DefaultConfig()).WithComponent(log.ComponentLedger)
	}
	return s
}

// All returns every transaction, newest first.
func (s *Store) All(ctx context.Context) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

// Add validates tx, assigns an id when missing and stores it at the head of
// the list.
func (s *Store) Add(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	if tx.ID == "" {
		tx.ID = uuid.NewString()
	}
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	txs, err := s.load(ctx)
	if err != nil {
		return core.Transaction{}, err
	}
	for _, t := range txs {
		if t.ID == tx.ID {
			return core.Transaction{}, fmt.Errorf("%w: %s", ErrDuplicateID, tx.ID)
		}
	}

	txs = append([]core.Transaction{tx}, txs...)
	if err := s.save(ctx, txs); err != nil {
		return core.Transaction{}, err
	}
	return tx, nil
}

// Delete removes the transaction with the given id.
func (s *Store) Delete(ctx context.Context, id string) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	txs, err := s.load(ctx)
	if err != nil {
		return core.Transaction{}, err
	}
	for i, t := range txs {
		if t.ID != id {
			continue
		}
		kept := append(txs[:i:i], txs[i+1:]...)
		if err := s.save(ctx, kept); err != nil {
			return core.Transaction{}, err
		}
		return t, nil
	}
	return core.Transaction{}, fmt.Errorf("%w: %s", ErrNotFound, id)
}

// Clear empties the list. The key is kept so sample data is not re-seeded.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(ctx, []core.Transaction{})
}

// Ping reports whether the backing store is reachable.
func (s *Store) Ping(ctx context.Context) error {
	if p, ok := s.kv.(kv.Pinger); ok {
		return p.Ping(ctx)
	}
	_, _, err := s.kv.Get(ctx, s.key)
	return err
}

// load must be called with mu held.
func (s *Store) load(ctx context.Context) ([]core.Transaction, error) {
	raw, ok, err := s.kv.Get(ctx, s.key)
	if err != nil {
		return nil, fmt.Errorf("read transactions: %w", err)
	}
	if !ok {
		if !s.seed {
			return []core.Transaction{}, nil
		}
		txs := SampleTransactions(s.now())
		if err := s.save(ctx, txs); err != nil {
			return nil, err
		}
		s.logger.InfoContext(ctx, "Seeded sample transactions",
			log.FieldOperation, log.OpSeed, log.FieldCount, len(txs))
		return txs, nil
	}

	var txs []core.Transaction
	if err := json.Unmarshal(raw, &txs); err != nil {
		s.logger.WarnContext(ctx, "Stored transactions are malformed, treating as empty",
			log.FieldOperation, log.OpParse, log.FieldError, err.Error())
		return []core.Transaction{}, nil
	}
	if txs == nil {
		txs = []core.Transaction{}
	}
	return txs, nil
}

func (s *Store) save(ctx context.Context, txs []core.Transaction) error {
	raw, err := json.Marshal(txs)
	if err != nil {
		return fmt.Errorf("encode transactions: %w", err)
	}
	if err := s.kv.Set(ctx, s.key, raw); err != nil {
		return fmt.Errorf("write transactions: %w", err)
	}
	return nil
}
