package session

import (
	"context"
	"io"
	"slices"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/scgraph/pkg/config"
	"github.com/matzehuels/scgraph/pkg/errors"
)

// Store keeps live sessions by id. Each session's host loop runs in its own
// goroutine until the session is deleted or the store is closed.
type Store struct {
	cfg    config.Config
	logger *log.Logger

	mu       sync.RWMutex
	sessions map[string]*entry
	wg       sync.WaitGroup
	closed   bool
}

type entry struct {
	sess   *Session
	cancel context.CancelFunc
}

// NewStore creates an empty store. Sessions are created from cfg.
func NewStore(cfg config.Config, logger *log.Logger) *Store {
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Store{cfg: cfg, logger: logger, sessions: make(map[string]*entry)}
}

// Create starts a new session.
func (st *Store) Create() (*Session, error) {
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.closed {
		return nil, errors.New(errors.ErrCodeUnsupported, "session store is closed")
	}

	sess := New(st.cfg, st.logger)
	ctx, cancel := context.WithCancel(context.Background())
	st.sessions[sess.ID()] = &entry{sess: sess, cancel: cancel}

	st.wg.Add(1)
	go func() {
		defer st.wg.Done()
		_ = sess.Run(ctx)
	}()
	st.logger.Info("session created", "id", sess.ID())
	return sess, nil
}

// Get returns the session with the given id.
func (st *Store) Get(id string) (*Session, error) {
	if err := errors.ValidateSessionID(id); err != nil {
		return nil, err
	}
	st.mu.RLock()
	defer st.mu.RUnlock()
	e, ok := st.sessions[id]
	if !ok {
		return nil, errors.New(errors.ErrCodeSessionNotFound, "session %s not found", id)
	}
	return e.sess, nil
}

// Delete stops and removes a session.
func (st *Store) Delete(id string) error {
	st.mu.Lock()
	e, ok := st.sessions[id]
	delete(st.sessions, id)
	st.mu.Unlock()
	if !ok {
		return errors.New(errors.ErrCodeSessionNotFound, "session %s not found", id)
	}
	e.sess.Close()
	e.cancel()
	st.logger.Info("session deleted", "id", id)
	return nil
}

// List returns the ids of all sessions in sorted order.
func (st *Store) List() []string {
	st.mu.RLock()
	defer st.mu.RUnlock()
	ids := make([]string, 0, len(st.sessions))
	for id := range st.sessions {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Len returns the number of sessions.
func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

// Close stops every session and waits for their loops to return. Later
// calls to Create fail.
func (st *Store) Close() {
	st.mu.Lock()
	st.closed = true
	entries := st.sessions
	st.sessions = make(map[string]*entry)
	st.mu.Unlock()

	for _, e := range entries {
		e.sess.Close()
		e.cancel()
	}
	st.wg.Wait()
}
