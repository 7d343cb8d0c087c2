package claims

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// ErrLoading is returned while the initial load has not finished.
var ErrLoading = errors.New("claims are still loading")

// Source produces the records a Service serves.
type Source func() ([]Claim, error)

// GeneratedSource returns a Source backed by the synthetic generator.
func GeneratedSource(count int, seed uint64) Source {
	return func() ([]Claim, error) {
		return Generate(count, seed), nil
	}
}

type Service struct {
	mu     sync.RWMutex
	store  *Store
	logger zerolog.Logger
}

func NewService(logger zerolog.Logger) *Service {
	return &Service{logger: logger}
}

// NewServiceWithStore returns a Service that is ready immediately.
func NewServiceWithStore(store *Store, logger zerolog.Logger) *Service {
	return &Service{store: store, logger: logger}
}

// Load waits for delay, then builds the store from src. Cancelling ctx
// during the wait abandons the load and leaves the service unready.
func (s *Service) Load(ctx context.Context, delay time.Duration, src Source) error {
	if delay > 0 {
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}

	records, err := src()
	if err != nil {
		return fmt.Errorf("load claims: %w", err)
	}
	store, err := NewStore(records)
	if err != nil {
		return fmt.Errorf("build claim store: %w", err)
	}

	s.mu.Lock()
	s.store = store
	s.mu.Unlock()

	s.logger.Info().Int("records", store.Len()).Msg("claims loaded")
	return nil
}

// Start runs Load in the background. The returned channel receives the
// load result and is then closed.
func (s *Service) Start(ctx context.Context, delay time.Duration, src Source) <-chan error {
	done := make(chan error, 1)
	go func() {
		defer close(done)
		err := s.Load(ctx, delay, src)
		if err != nil && !errors.Is(err, context.Canceled) {
			s.logger.Error().Err(err).Msg("initial claims load failed")
		}
		done <- err
	}()
	return done
}

// Ready reports whether the store has been loaded.
func (s *Service) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.store != nil
}

func (s *Service) current() (*Store, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.store == nil {
		return nil, ErrLoading
	}
	return s.store, nil
}

// List runs the query pipeline against the loaded store.
func (s *Service) List(ctx context.Context, q Query) (Result, error) {
	store, err := s.current()
	if err != nil {
		return Result{}, err
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	return Run(store.records, q), nil
}

func (s *Service) Get(ctx context.Context, id string) (*Claim, error) {
	store, err := s.current()
	if err != nil {
		return nil, err
	}
	c, err := store.Get(id)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
