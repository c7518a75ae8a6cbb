package kvstore

import (
	"context"
	"encoding/json"
	"errors"
	"slices"
	"strings"

	"github.com/yndnr/gymdesk-go/internal/core/domain"
	"github.com/yndnr/gymdesk-go/internal/storage"
)

// Store implements the gym repositories over a KV engine.
type Store struct {
	kv storage.KVEngine
}

// New creates a Store. The engine stays owned by the caller.
func New(kv storage.KVEngine) *Store {
	return &Store{kv: kv}
}

type userRecord struct {
	Role domain.Role `json:"role"`
}

func getJSON(txn storage.KVTxn, key []byte, v any) error {
	raw, err := txn.Get(key)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, v)
}

func setJSON(txn storage.KVTxn, key []byte, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return txn.Set(key, raw)
}

func exists(txn storage.KVTxn, key []byte) (bool, error) {
	_, err := txn.Get(key)
	if errors.Is(err, storage.ErrKeyNotFound) {
		return false, nil
	}
	return err == nil, err
}

// wrap converts engine failures to ErrStorageError and passes domain
// errors through.
func wrap(err error) error {
	if err == nil || domain.IsDomainError(err, "") {
		return err
	}
	return domain.ErrStorageError.WithCause(err)
}

// notFound maps ErrKeyNotFound to target.
func notFound(err error, target *domain.DomainError) error {
	if errors.Is(err, storage.ErrKeyNotFound) {
		return target
	}
	return err
}

// ============================================================================
// Users
// ============================================================================

// GetUser returns the account for username.
func (s *Store) GetUser(ctx context.Context, username string) (*domain.User, error) {
	var user *domain.User
	err := s.kv.View(ctx, func(txn storage.KVTxn) error {
		var rec userRecord
		if err := getJSON(txn, userKey(username), &rec); err != nil {
			return notFound(err, domain.ErrUserNotFound)
		}
		switch rec.Role {
		case domain.RoleTrainee:
			var t domain.Trainee
			if err := getJSON(txn, traineeKey(username), &t); err != nil {
				return notFound(err, domain.ErrUserNotFound)
			}
			user = t.User.Clone()
		case domain.RoleTrainer:
			var t domain.Trainer
			if err := getJSON(txn, trainerKey(username), &t); err != nil {
				return notFound(err, domain.ErrUserNotFound)
			}
			user = t.User.Clone()
		default:
			return domain.ErrUserNotFound
		}
		return nil
	})
	return user, wrap(err)
}

// UsernamesWithPrefix lists usernames starting with prefix.
func (s *Store) UsernamesWithPrefix(ctx context.Context, prefix string) ([]string, error) {
	var names []string
	err := s.kv.Scan(ctx, userKey(prefix), func(key, _ []byte) bool {
		names = append(names, strings.TrimPrefix(string(key), prefixUser))
		return true
	})
	return names, wrap(err)
}

// UpdatePassword replaces the stored password hash.
func (s *Store) UpdatePassword(ctx context.Context, username, passwordHash string) error {
	err := s.kv.Update(ctx, func(txn storage.KVTxn) error {
		var rec userRecord
		if err := getJSON(txn, userKey(username), &rec); err != nil {
			return notFound(err, domain.ErrUserNotFound)
		}
		switch rec.Role {
		case domain.RoleTrainee:
			var t domain.Trainee
			if err := getJSON(txn, traineeKey(username), &t); err != nil {
				return notFound(err, domain.ErrUserNotFound)
			}
			t.PasswordHash = passwordHash
			return setJSON(txn, traineeKey(username), &t)
		case domain.RoleTrainer:
			var t domain.Trainer
			if err := getJSON(txn, trainerKey(username), &t); err != nil {
				return notFound(err, domain.ErrUserNotFound)
			}
			t.PasswordHash = passwordHash
			return setJSON(txn, trainerKey(username), &t)
		}
		return domain.ErrUserNotFound
	})
	return wrap(err)
}

func claimUsername(txn storage.KVTxn, username string, role domain.Role) error {
	taken, err := exists(txn, userKey(username))
	if err != nil {
		return err
	}
	if taken {
		return domain.ErrUsernameTaken.WithDetails(username)
	}
	return setJSON(txn, userKey(username), userRecord{Role: role})
}

// ============================================================================
// Trainees
// ============================================================================

// CreateTrainee stores a new trainee.
func (s *Store) CreateTrainee(ctx context.Context, trainee *domain.Trainee) error {
	err := s.kv.Update(ctx, func(txn storage.KVTxn) error {
		if err := claimUsername(txn, trainee.Username, domain.RoleTrainee); err != nil {
			return err
		}
		if err := setJSON(txn, traineeKey(trainee.Username), trainee); err != nil {
			return err
		}
		for _, trainer := range trainee.Trainers {
			if err := txn.Set(trainerTraineeKey(trainer, trainee.Username), nil); err != nil {
				return err
			}
		}
		return nil
	})
	return wrap(err)
}

// GetTrainee returns the trainee for username.
func (s *Store) GetTrainee(ctx context.Context, username string) (*domain.Trainee, error) {
	var t domain.Trainee
	err := s.kv.View(ctx, func(txn storage.KVTxn) error {
		return notFound(getJSON(txn, traineeKey(username), &t), domain.ErrTraineeNotFound)
	})
	if err != nil {
		return nil, wrap(err)
	}
	if t.Trainers == nil {
		t.Trainers = []string{}
	}
	return &t, nil
}

// UpdateTrainee replaces the trainee and its trainer links.
func (s *Store) UpdateTrainee(ctx context.Context, trainee *domain.Trainee) error {
	err := s.kv.Update(ctx, func(txn storage.KVTxn) error {
		var old domain.Trainee
		if err := getJSON(txn, traineeKey(trainee.Username), &old); err != nil {
			return notFound(err, domain.ErrTraineeNotFound)
		}
		for _, trainer := range old.Trainers {
			if !slices.Contains(trainee.Trainers, trainer) {
				if err := txn.Delete(trainerTraineeKey(trainer, trainee.Username)); err != nil {
					return err
				}
			}
		}
		for _, trainer := range trainee.Trainers {
			if !slices.Contains(old.Trainers, trainer) {
				if err := txn.Set(trainerTraineeKey(trainer, trainee.Username), nil); err != nil {
					return err
				}
			}
		}
		return setJSON(txn, traineeKey(trainee.Username), trainee)
	})
	return wrap(err)
}

// DeleteTrainee removes the trainee, its account, its trainer links and
// its trainings.
func (s *Store) DeleteTrainee(ctx context.Context, username string) error {
	err := s.kv.Update(ctx, func(txn storage.KVTxn) error {
		var t domain.Trainee
		if err := getJSON(txn, traineeKey(username), &t); err != nil {
			return notFound(err, domain.ErrTraineeNotFound)
		}

		var ids []string
		err := txn.Scan([]byte(prefixTraineeTraining+username+"/"), func(key, _ []byte) bool {
			ids = append(ids, lastSegment(key))
			return true
		})
		if err != nil {
			return err
		}

		var keys [][]byte
		for _, id := range ids {
			var tr domain.Training
			if err := getJSON(txn, trainingKey(id), &tr); err == nil {
				keys = append(keys, trainerTrainingKey(tr.TrainerUsername, id))
			} else if !errors.Is(err, storage.ErrKeyNotFound) {
				return err
			}
			keys = append(keys, trainingKey(id), traineeTrainingKey(username, id))
		}
		for _, trainer := range t.Trainers {
			keys = append(keys, trainerTraineeKey(trainer, username))
		}
		keys = append(keys, traineeKey(username), userKey(username))

		for _, k := range keys {
			if err := txn.Delete(k); err != nil {
				return err
			}
		}
		return nil
	})
	return wrap(err)
}

// ListTraineesByTrainer returns trainees linked to trainer, ordered by
// username.
func (s *Store) ListTraineesByTrainer(ctx context.Context, trainerUsername string) ([]*domain.Trainee, error) {
	out := []*domain.Trainee{}
	err := s.kv.View(ctx, func(txn storage.KVTxn) error {
		var names []string
		err := txn.Scan([]byte(prefixTrainerTrainee+trainerUsername+"/"), func(key, _ []byte) bool {
			names = append(names, lastSegment(key))
			return true
		})
		if err != nil {
			return err
		}
		for _, name := range names {
			var t domain.Trainee
			if err := getJSON(txn, traineeKey(name), &t); err != nil {
				if errors.Is(err, storage.ErrKeyNotFound) {
					continue
				}
				return err
			}
			out = append(out, &t)
		}
		return nil
	})
	if err != nil {
		return nil, wrap(err)
	}
	return out, nil
}

// ============================================================================
// Trainers
// ============================================================================

// CreateTrainer stores a new trainer.
func (s *Store) CreateTrainer(ctx context.Context, trainer *domain.Trainer) error {
	err := s.kv.Update(ctx, func(txn storage.KVTxn) error {
		if err := claimUsername(txn, trainer.Username, domain.RoleTrainer); err != nil {
			return err
		}
		return setJSON(txn, trainerKey(trainer.Username), trainer)
	})
	return wrap(err)
}

// GetTrainer returns the trainer for username.
func (s *Store) GetTrainer(ctx context.Context, username string) (*domain.Trainer, error) {
	var t domain.Trainer
	err := s.kv.View(ctx, func(txn storage.KVTxn) error {
		return notFound(getJSON(txn, trainerKey(username), &t), domain.ErrTrainerNotFound)
	})
	if err != nil {
		return nil, wrap(err)
	}
	return &t, nil
}

// UpdateTrainer replaces the trainer.
func (s *Store) UpdateTrainer(ctx context.Context, trainer *domain.Trainer) error {
	err := s.kv.Update(ctx, func(txn storage.KVTxn) error {
		ok, err := exists(txn, trainerKey(trainer.Username))
		if err != nil {
			return err
		}
		if !ok {
			return domain.ErrTrainerNotFound
		}
		return setJSON(txn, trainerKey(trainer.Username), trainer)
	})
	return wrap(err)
}

// ListTrainers returns every trainer ordered by username.
func (s *Store) ListTrainers(ctx context.Context) ([]*domain.Trainer, error) {
	out := []*domain.Trainer{}
	var decodeErr error
	err := s.kv.Scan(ctx, []byte(prefixTrainer), func(_, value []byte) bool {
		var t domain.Trainer
		if decodeErr = json.Unmarshal(value, &t); decodeErr != nil {
			return false
		}
		out = append(out, &t)
		return true
	})
	if err == nil {
		err = decodeErr
	}
	if err != nil {
		return nil, wrap(err)
	}
	return out, nil
}

// ============================================================================
// Trainings
// ============================================================================

// CreateTraining stores a training and its participant indexes.
func (s *Store) CreateTraining(ctx context.Context, training *domain.Training) error {
	err := s.kv.Update(ctx, func(txn storage.KVTxn) error {
		if ok, err := exists(txn, traineeKey(training.TraineeUsername)); err != nil {
			return err
		} else if !ok {
			return domain.ErrTraineeNotFound
		}
		if ok, err := exists(txn, trainerKey(training.TrainerUsername)); err != nil {
			return err
		} else if !ok {
			return domain.ErrTrainerNotFound
		}

		if err := setJSON(txn, trainingKey(training.ID), training); err != nil {
			return err
		}
		if err := txn.Set(traineeTrainingKey(training.TraineeUsername, training.ID), nil); err != nil {
			return err
		}
		return txn.Set(trainerTrainingKey(training.TrainerUsername, training.ID), nil)
	})
	return wrap(err)
}

// ListTraineeTrainings returns a trainee's trainings matching filter.
func (s *Store) ListTraineeTrainings(ctx context.Context, username string, filter domain.TrainingFilter) ([]*domain.TrainingDetail, error) {
	return s.listTrainings(ctx, prefixTraineeTraining+username+"/", filter, false)
}

// ListTrainerTrainings returns a trainer's trainings matching filter.
func (s *Store) ListTrainerTrainings(ctx context.Context, username string, filter domain.TrainingFilter) ([]*domain.TrainingDetail, error) {
	return s.listTrainings(ctx, prefixTrainerTraining+username+"/", filter, true)
}

// listTrainings loads the trainings indexed under prefix. The filter's
// partner is the trainee when byTrainer is set, the trainer otherwise.
func (s *Store) listTrainings(ctx context.Context, prefix string, filter domain.TrainingFilter, byTrainer bool) ([]*domain.TrainingDetail, error) {
	out := []*domain.TrainingDetail{}
	err := s.kv.View(ctx, func(txn storage.KVTxn) error {
		var ids []string
		err := txn.Scan([]byte(prefix), func(key, _ []byte) bool {
			ids = append(ids, lastSegment(key))
			return true
		})
		if err != nil {
			return err
		}

		names := make(map[string]string)
		fullName := func(key []byte) (string, error) {
			if n, ok := names[string(key)]; ok {
				return n, nil
			}
			var u domain.User
			if err := getJSON(txn, key, &u); err != nil && !errors.Is(err, storage.ErrKeyNotFound) {
				return "", err
			}
			names[string(key)] = u.FullName()
			return u.FullName(), nil
		}

		for _, id := range ids {
			var tr domain.Training
			if err := getJSON(txn, trainingKey(id), &tr); err != nil {
				if errors.Is(err, storage.ErrKeyNotFound) {
					continue
				}
				return err
			}
			traineeName, err := fullName(traineeKey(tr.TraineeUsername))
			if err != nil {
				return err
			}
			trainerName, err := fullName(trainerKey(tr.TrainerUsername))
			if err != nil {
				return err
			}

			partner := trainerName
			if byTrainer {
				partner = traineeName
			}
			if !filter.Matches(&tr, partner) {
				continue
			}
			out = append(out, &domain.TrainingDetail{
				Training:    tr,
				TraineeName: traineeName,
				TrainerName: trainerName,
			})
		}
		return nil
	})
	if err != nil {
		return nil, wrap(err)
	}
	sortTrainings(out)
	return out, nil
}

// sortTrainings orders by date, then ID.
func sortTrainings(list []*domain.TrainingDetail) {
	slices.SortFunc(list, func(a, b *domain.TrainingDetail) int {
		if c := a.Date.Time().Compare(b.Date.Time()); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
}

// ============================================================================
// Training types
// ============================================================================

// ListTrainingTypes returns the catalogue ordered by ID.
func (s *Store) ListTrainingTypes(ctx context.Context) ([]domain.TrainingType, error) {
	out := []domain.TrainingType{}
	var decodeErr error
	err := s.kv.Scan(ctx, []byte(prefixType), func(_, value []byte) bool {
		var tt domain.TrainingType
		if decodeErr = json.Unmarshal(value, &tt); decodeErr != nil {
			return false
		}
		out = append(out, tt)
		return true
	})
	if err == nil {
		err = decodeErr
	}
	if err != nil {
		return nil, wrap(err)
	}
	slices.SortFunc(out, func(a, b domain.TrainingType) int { return a.ID - b.ID })
	return out, nil
}

// GetTrainingType looks a type up by normalized name.
func (s *Store) GetTrainingType(ctx context.Context, name string) (*domain.TrainingType, error) {
	var tt domain.TrainingType
	err := s.kv.View(ctx, func(txn storage.KVTxn) error {
		return notFound(getJSON(txn, typeKey(domain.NormalizeTrainingType(name)), &tt), domain.ErrTrainingTypeNotFound)
	})
	if err != nil {
		return nil, wrap(err)
	}
	return &tt, nil
}

// SeedTrainingTypes inserts missing catalogue entries.
func (s *Store) SeedTrainingTypes(ctx context.Context, types []domain.TrainingType) error {
	err := s.kv.Update(ctx, func(txn storage.KVTxn) error {
		for _, tt := range types {
			tt.Name = domain.NormalizeTrainingType(tt.Name)
			ok, err := exists(txn, typeKey(tt.Name))
			if err != nil {
				return err
			}
			if ok {
				continue
			}
			if err := setJSON(txn, typeKey(tt.Name), tt); err != nil {
				return err
			}
		}
		return nil
	})
	return wrap(err)
}
