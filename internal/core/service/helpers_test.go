package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/yndnr/gymdesk-go/internal/core/domain"
	"github.com/yndnr/gymdesk-go/internal/core/service"
	"github.com/yndnr/gymdesk-go/internal/storage"
	"github.com/yndnr/gymdesk-go/internal/storage/kvstore"
	"github.com/yndnr/gymdesk-go/internal/storage/memory"
)

// fakeClock is a manually advanced time source.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// fastHasher keeps Argon2id but with parameters cheap enough for tests.
func fastHasher() *service.Argon2Hasher {
	return &service.Argon2Hasher{Time: 1, Memory: 64, Threads: 1, KeyLen: 16, SaltLen: 8}
}

// harness wires every service over in-memory storage.
type harness struct {
	clock     *fakeClock
	store     *kvstore.Store
	sessions  *service.SessionService
	creds     *service.CredentialService
	auth      *service.AuthService
	trainees  *service.TraineeService
	trainers  *service.TrainerService
	trainings *service.TrainingService
	types     *service.TrainingTypeService
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	kv := storage.NewMemoryEngine()
	t.Cleanup(func() { kv.Close() })

	h := &harness{clock: newFakeClock(), store: kvstore.New(kv)}
	h.sessions = service.NewSessionService(memory.New(), nil, service.WithClock(h.clock.Now))
	h.creds = service.NewCredentialService(h.store, fastHasher())
	h.auth = service.NewAuthService(h.creds, h.store, h.sessions, &service.AuthConfig{
		LoginRate:              1,
		LoginBurst:             3,
		RevokeOnPasswordChange: true,
	})
	h.trainees = service.NewTraineeService(h.store, h.creds, h.sessions)
	h.trainers = service.NewTrainerService(h.store, h.creds, h.sessions)
	h.trainings = service.NewTrainingService(h.store)
	h.types = service.NewTrainingTypeService(h.store)

	if err := h.types.Seed(context.Background()); err != nil {
		t.Fatalf("Seed: %v", err)
	}
	return h
}

func (h *harness) registerTrainee(t *testing.T, first, last string) *service.Credentials {
	t.Helper()
	creds, err := h.trainees.Register(context.Background(), &service.RegisterTraineeRequest{
		FirstName:   first,
		LastName:    last,
		DateOfBirth: domain.MustParseDate("1995-06-15"),
		Address:     "12 Elm Street",
	})
	if err != nil {
		t.Fatalf("Register trainee: %v", err)
	}
	return creds
}

func (h *harness) registerTrainer(t *testing.T, first, last, spec string) *service.Credentials {
	t.Helper()
	creds, err := h.trainers.Register(context.Background(), &service.RegisterTrainerRequest{
		FirstName:      first,
		LastName:       last,
		Specialization: spec,
	})
	if err != nil {
		t.Fatalf("Register trainer: %v", err)
	}
	return creds
}

func (h *harness) login(t *testing.T, c *service.Credentials) string {
	t.Helper()
	resp, err := h.auth.Login(context.Background(), &service.LoginRequest{Username: c.Username, Password: c.Password})
	if err != nil {
		t.Fatalf("Login(%s): %v", c.Username, err)
	}
	return resp.Token
}
