package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/yndnr/gymdesk-go/internal/core/domain"
)

// SQLSTATE codes.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// Store implements the gym repositories on a *sql.DB.
type Store struct {
	db *sql.DB
}

// New creates a Store. The pool stays owned by the caller.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func wrap(err error) error {
	if err == nil || domain.IsDomainError(err, "") {
		return err
	}
	return domain.ErrStorageError.WithCause(err)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

// inTx runs fn in a transaction, committing when fn returns nil.
func (s *Store) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func nullDate(d domain.Date) sql.NullTime {
	if d.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: d.Time(), Valid: true}
}

func fromNullDate(t sql.NullTime) domain.Date {
	if !t.Valid {
		return domain.Date{}
	}
	return domain.NewDate(t.Time)
}

type rowScanner interface {
	Scan(dest ...any) error
}

const userColumns = `u.id, u.username, u.first_name, u.last_name, u.password_hash, u.active, u.role, u.created_at, u.updated_at`

func scanUser(row rowScanner, u *domain.User, extra ...any) error {
	var role string
	dest := append([]any{&u.ID, &u.Username, &u.FirstName, &u.LastName, &u.PasswordHash, &u.Active, &role, &u.CreatedAt, &u.UpdatedAt}, extra...)
	if err := row.Scan(dest...); err != nil {
		return err
	}
	u.Role = domain.Role(role)
	u.CreatedAt = u.CreatedAt.UTC()
	u.UpdatedAt = u.UpdatedAt.UTC()
	return nil
}

func insertUser(ctx context.Context, tx *sql.Tx, u *domain.User) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO users (username, id, first_name, last_name, password_hash, active, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		u.Username, u.ID, u.FirstName, u.LastName, u.PasswordHash, u.Active, string(u.Role), u.CreatedAt, u.UpdatedAt)
	if isUniqueViolation(err) {
		return domain.ErrUsernameTaken.WithDetails(u.Username)
	}
	return err
}

func updateUser(ctx context.Context, tx *sql.Tx, u *domain.User, role domain.Role, notFound *domain.DomainError) error {
	res, err := tx.ExecContext(ctx, `
		UPDATE users SET first_name = $2, last_name = $3, active = $4, updated_at = $5
		WHERE username = $1 AND role = $6`,
		u.Username, u.FirstName, u.LastName, u.Active, u.UpdatedAt, string(role))
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return notFound
	}
	return nil
}

// ============================================================================
// Users
// ============================================================================

// GetUser returns the account for username.
func (s *Store) GetUser(ctx context.Context, username string) (*domain.User, error) {
	var u domain.User
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users u WHERE u.username = $1`, username)
	if err := scanUser(row, &u); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, wrap(err)
	}
	return &u, nil
}

// UsernamesWithPrefix lists usernames starting with prefix.
func (s *Store) UsernamesWithPrefix(ctx context.Context, prefix string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT username FROM users WHERE username LIKE $1 ESCAPE '\'`, escapeLike(prefix)+"%")
	if err != nil {
		return nil, wrap(err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, wrap(err)
		}
		names = append(names, n)
	}
	return names, wrap(rows.Err())
}

// UpdatePassword replaces the stored password hash.
func (s *Store) UpdatePassword(ctx context.Context, username, passwordHash string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE users SET password_hash = $2, updated_at = $3 WHERE username = $1`,
		username, passwordHash, time.Now().UTC())
	if err != nil {
		return wrap(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// ============================================================================
// Trainees
// ============================================================================

// CreateTrainee stores a new trainee.
func (s *Store) CreateTrainee(ctx context.Context, t *domain.Trainee) error {
	return wrap(s.inTx(ctx, func(tx *sql.Tx) error {
		if err := insertUser(ctx, tx, &t.User); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO trainees (username, date_of_birth, address) VALUES ($1, $2, $3)`,
			t.Username, nullDate(t.DateOfBirth), t.Address); err != nil {
			return err
		}
		return replaceTrainers(ctx, tx, t.Username, t.Trainers)
	}))
}

func replaceTrainers(ctx context.Context, tx *sql.Tx, trainee string, trainers []string) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM trainee_trainers WHERE trainee = $1`, trainee); err != nil {
		return err
	}
	for _, trainer := range trainers {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO trainee_trainers (trainee, trainer) VALUES ($1, $2)`, trainee, trainer); err != nil {
			return err
		}
	}
	return nil
}

const traineeQuery = `SELECT ` + userColumns + `, t.date_of_birth, t.address
	FROM trainees t JOIN users u ON u.username = t.username`

func scanTrainee(row rowScanner) (*domain.Trainee, error) {
	var (
		t   domain.Trainee
		dob sql.NullTime
	)
	if err := scanUser(row, &t.User, &dob, &t.Address); err != nil {
		return nil, err
	}
	t.DateOfBirth = fromNullDate(dob)
	return &t, nil
}

func (s *Store) loadTrainers(ctx context.Context, t *domain.Trainee) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT trainer FROM trainee_trainers WHERE trainee = $1 ORDER BY trainer`, t.Username)
	if err != nil {
		return err
	}
	defer rows.Close()

	t.Trainers = []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return err
		}
		t.Trainers = append(t.Trainers, name)
	}
	return rows.Err()
}

// GetTrainee returns the trainee for username.
func (s *Store) GetTrainee(ctx context.Context, username string) (*domain.Trainee, error) {
	t, err := scanTrainee(s.db.QueryRowContext(ctx, traineeQuery+` WHERE t.username = $1`, username))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrTraineeNotFound
		}
		return nil, wrap(err)
	}
	if err := s.loadTrainers(ctx, t); err != nil {
		return nil, wrap(err)
	}
	return t, nil
}

// UpdateTrainee replaces the trainee and its trainer links.
func (s *Store) UpdateTrainee(ctx context.Context, t *domain.Trainee) error {
	return wrap(s.inTx(ctx, func(tx *sql.Tx) error {
		if err := updateUser(ctx, tx, &t.User, domain.RoleTrainee, domain.ErrTraineeNotFound); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE trainees SET date_of_birth = $2, address = $3 WHERE username = $1`,
			t.Username, nullDate(t.DateOfBirth), t.Address); err != nil {
			return err
		}
		return replaceTrainers(ctx, tx, t.Username, t.Trainers)
	}))
}

// DeleteTrainee removes the trainee. Links and trainings cascade.
func (s *Store) DeleteTrainee(ctx context.Context, username string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM users WHERE username = $1 AND role = $2`, username, string(domain.RoleTrainee))
	if err != nil {
		return wrap(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrTraineeNotFound
	}
	return nil
}

// ListTraineesByTrainer returns trainees linked to trainer, ordered by
// username.
func (s *Store) ListTraineesByTrainer(ctx context.Context, trainerUsername string) ([]*domain.Trainee, error) {
	rows, err := s.db.QueryContext(ctx, traineeQuery+`
		JOIN trainee_trainers tt ON tt.trainee = t.username
		WHERE tt.trainer = $1 ORDER BY t.username`, trainerUsername)
	if err != nil {
		return nil, wrap(err)
	}
	defer rows.Close()

	out := []*domain.Trainee{}
	for rows.Next() {
		t, err := scanTrainee(rows)
		if err != nil {
			return nil, wrap(err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap(err)
	}
	return out, nil
}

// ============================================================================
// Trainers
// ============================================================================

// CreateTrainer stores a new trainer.
func (s *Store) CreateTrainer(ctx context.Context, t *domain.Trainer) error {
	return wrap(s.inTx(ctx, func(tx *sql.Tx) error {
		if err := insertUser(ctx, tx, &t.User); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO trainers (username, specialization) VALUES ($1, $2)`, t.Username, t.Specialization)
		return err
	}))
}

const trainerQuery = `SELECT ` + userColumns + `, t.specialization
	FROM trainers t JOIN users u ON u.username = t.username`

// GetTrainer returns the trainer for username.
func (s *Store) GetTrainer(ctx context.Context, username string) (*domain.Trainer, error) {
	var t domain.Trainer
	err := scanUser(s.db.QueryRowContext(ctx, trainerQuery+` WHERE t.username = $1`, username), &t.User, &t.Specialization)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrTrainerNotFound
		}
		return nil, wrap(err)
	}
	return &t, nil
}

// UpdateTrainer replaces the trainer.
func (s *Store) UpdateTrainer(ctx context.Context, t *domain.Trainer) error {
	return wrap(s.inTx(ctx, func(tx *sql.Tx) error {
		if err := updateUser(ctx, tx, &t.User, domain.RoleTrainer, domain.ErrTrainerNotFound); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx,
			`UPDATE trainers SET specialization = $2 WHERE username = $1`, t.Username, t.Specialization)
		return err
	}))
}

// ListTrainers returns every trainer ordered by username.
func (s *Store) ListTrainers(ctx context.Context) ([]*domain.Trainer, error) {
	rows, err := s.db.QueryContext(ctx, trainerQuery+` ORDER BY t.username`)
	if err != nil {
		return nil, wrap(err)
	}
	defer rows.Close()

	out := []*domain.Trainer{}
	for rows.Next() {
		var t domain.Trainer
		if err := scanUser(rows, &t.User, &t.Specialization); err != nil {
			return nil, wrap(err)
		}
		out = append(out, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap(err)
	}
	return out, nil
}

// ============================================================================
// Trainings
// ============================================================================

// CreateTraining stores a training.
func (s *Store) CreateTraining(ctx context.Context, t *domain.Training) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO trainings (id, trainee, trainer, name, type, training_date, duration_minutes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		t.ID, t.TraineeUsername, t.TrainerUsername, t.Name, t.Type, t.Date.Time(), t.DurationMinutes, t.CreatedAt)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
		if strings.HasSuffix(pgErr.ConstraintName, "_trainer_fkey") {
			return domain.ErrTrainerNotFound
		}
		return domain.ErrTraineeNotFound
	}
	return wrap(err)
}

// ListTraineeTrainings returns a trainee's trainings matching filter.
func (s *Store) ListTraineeTrainings(ctx context.Context, username string, filter domain.TrainingFilter) ([]*domain.TrainingDetail, error) {
	return s.listTrainings(ctx, "tr.trainee", "er", username, filter)
}

// ListTrainerTrainings returns a trainer's trainings matching filter.
func (s *Store) ListTrainerTrainings(ctx context.Context, username string, filter domain.TrainingFilter) ([]*domain.TrainingDetail, error) {
	return s.listTrainings(ctx, "tr.trainer", "ee", username, filter)
}

// listTrainings selects trainings where ownerColumn = username. partner
// is the alias of the users row the name filter applies to.
func (s *Store) listTrainings(ctx context.Context, ownerColumn, partner, username string, filter domain.TrainingFilter) ([]*domain.TrainingDetail, error) {
	var sb strings.Builder
	sb.WriteString(`
		SELECT tr.id, tr.trainee, tr.trainer, tr.name, tr.type, tr.training_date, tr.duration_minutes, tr.created_at,
		       ee.first_name || ' ' || ee.last_name, er.first_name || ' ' || er.last_name
		FROM trainings tr
		JOIN users ee ON ee.username = tr.trainee
		JOIN users er ON er.username = tr.trainer
		WHERE `)
	sb.WriteString(ownerColumn)
	sb.WriteString(` = $1`)
	args := []any{username}

	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if !filter.From.IsZero() {
		sb.WriteString(` AND tr.training_date >= ` + arg(filter.From.Time()))
	}
	if !filter.To.IsZero() {
		sb.WriteString(` AND tr.training_date <= ` + arg(filter.To.Time()))
	}
	if filter.Type != "" {
		sb.WriteString(` AND tr.type = ` + arg(domain.NormalizeTrainingType(filter.Type)))
	}
	if name := strings.TrimSpace(filter.PartnerName); name != "" {
		sb.WriteString(fmt.Sprintf(` AND (%[1]s.first_name || ' ' || %[1]s.last_name) ILIKE %[2]s ESCAPE '\'`,
			partner, arg("%"+escapeLike(name)+"%")))
	}
	sb.WriteString(` ORDER BY tr.training_date, tr.id`)

	rows, err := s.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, wrap(err)
	}
	defer rows.Close()

	out := []*domain.TrainingDetail{}
	for rows.Next() {
		var (
			d    domain.TrainingDetail
			date time.Time
		)
		if err := rows.Scan(&d.ID, &d.TraineeUsername, &d.TrainerUsername, &d.Name, &d.Type,
			&date, &d.DurationMinutes, &d.CreatedAt, &d.TraineeName, &d.TrainerName); err != nil {
			return nil, wrap(err)
		}
		d.Date = domain.NewDate(date)
		d.CreatedAt = d.CreatedAt.UTC()
		out = append(out, &d)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap(err)
	}
	return out, nil
}

// ============================================================================
// Training types
// ============================================================================

// ListTrainingTypes returns the catalogue ordered by ID.
func (s *Store) ListTrainingTypes(ctx context.Context) ([]domain.TrainingType, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name FROM training_types ORDER BY id`)
	if err != nil {
		return nil, wrap(err)
	}
	defer rows.Close()

	out := []domain.TrainingType{}
	for rows.Next() {
		var tt domain.TrainingType
		if err := rows.Scan(&tt.ID, &tt.Name); err != nil {
			return nil, wrap(err)
		}
		out = append(out, tt)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap(err)
	}
	return out, nil
}

// GetTrainingType looks a type up by normalized name.
func (s *Store) GetTrainingType(ctx context.Context, name string) (*domain.TrainingType, error) {
	var tt domain.TrainingType
	err := s.db.QueryRowContext(ctx, `SELECT id, name FROM training_types WHERE name = $1`,
		domain.NormalizeTrainingType(name)).Scan(&tt.ID, &tt.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrTrainingTypeNotFound
		}
		return nil, wrap(err)
	}
	return &tt, nil
}

// SeedTrainingTypes inserts missing catalogue entries.
func (s *Store) SeedTrainingTypes(ctx context.Context, types []domain.TrainingType) error {
	return wrap(s.inTx(ctx, func(tx *sql.Tx) error {
		for _, tt := range types {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO training_types (id, name) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
				tt.ID, domain.NormalizeTrainingType(tt.Name)); err != nil {
				return err
			}
		}
		return nil
	}))
}

// escapeLike escapes LIKE wildcards in s.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
