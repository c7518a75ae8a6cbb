package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/yndnr/gymdesk-go/internal/core/domain"
	"github.com/yndnr/gymdesk-go/internal/core/service"
)

func boolPtr(b bool) *bool { return &b }

func TestTrainee_RegisterValidation(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	_, err := h.trainees.Register(ctx, &service.RegisterTraineeRequest{FirstName: "", LastName: "Smith"})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("blank first name err = %v", err)
	}

	_, err = h.trainees.Register(ctx, &service.RegisterTraineeRequest{
		FirstName:   "Future",
		LastName:    "Kid",
		DateOfBirth: domain.Today(),
	})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("birth date today err = %v", err)
	}

	// Date of birth and address are optional.
	if _, err := h.trainees.Register(ctx, &service.RegisterTraineeRequest{FirstName: "No", LastName: "Extras"}); err != nil {
		t.Fatalf("minimal Register: %v", err)
	}
}

func TestTrainee_ProfileLifecycle(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	alice := h.registerTrainee(t, "Alice", "Archer")
	carol := h.registerTrainer(t, "Carol", "Cole", "YOGA")

	if _, err := h.trainees.UpdateTrainers(ctx, alice.Username, []string{carol.Username, carol.Username}); err != nil {
		t.Fatalf("UpdateTrainers: %v", err)
	}

	p, err := h.trainees.Get(ctx, alice.Username)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if p.Trainee.Address != "12 Elm Street" || len(p.Trainers) != 1 || p.Trainers[0].Username != carol.Username {
		t.Fatalf("profile = %+v / %v", p.Trainee, p.Trainers)
	}

	updated, err := h.trainees.Update(ctx, &service.UpdateTraineeRequest{
		Username:  alice.Username,
		FirstName: "Alicia",
		LastName:  "Archer",
		Address:   "99 Oak Road",
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Trainee.FirstName != "Alicia" || updated.Trainee.Username != alice.Username {
		t.Errorf("Update changed identity: %+v", updated.Trainee)
	}
	if !updated.Trainee.DateOfBirth.IsZero() {
		t.Error("Update should replace the birth date with the supplied (empty) value")
	}
	if len(updated.Trainers) != 1 {
		t.Error("Update dropped trainer assignments")
	}

	if _, err := h.trainees.Get(ctx, "ghost"); !errors.Is(err, domain.ErrTraineeNotFound) {
		t.Errorf("Get(ghost) err = %v", err)
	}
}

func TestTrainee_UpdateTrainersRejectsUnknown(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	alice := h.registerTrainee(t, "Alice", "Archer")
	bob := h.registerTrainee(t, "Bob", "Baker")

	if _, err := h.trainees.UpdateTrainers(ctx, alice.Username, nil); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("empty list err = %v", err)
	}
	// A trainee is not a trainer.
	if _, err := h.trainees.UpdateTrainers(ctx, alice.Username, []string{bob.Username}); !errors.Is(err, domain.ErrTrainerNotFound) {
		t.Errorf("trainee as trainer err = %v", err)
	}
}

func TestTrainee_DeactivateRevokesSessions(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	alice := h.registerTrainee(t, "Alice", "Archer")
	tok := h.login(t, alice)

	if err := h.trainees.SetActive(ctx, alice.Username, false); err != nil {
		t.Fatalf("SetActive(false): %v", err)
	}
	if h.sessions.IsValid(ctx, tok) {
		t.Fatal("session survived deactivation")
	}
	if _, err := h.auth.Login(ctx, &service.LoginRequest{Username: alice.Username, Password: alice.Password}); !errors.Is(err, domain.ErrUserInactive) {
		t.Fatalf("Login while inactive err = %v", err)
	}

	if err := h.trainees.SetActive(ctx, alice.Username, true); err != nil {
		t.Fatalf("SetActive(true): %v", err)
	}
	h.login(t, alice)
}

func TestTrainee_DeleteCascades(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	alice := h.registerTrainee(t, "Alice", "Archer")
	carol := h.registerTrainer(t, "Carol", "Cole", "YOGA")
	tok := h.login(t, alice)

	_, err := h.trainings.Create(ctx, &service.CreateTrainingRequest{
		TraineeUsername: alice.Username,
		TrainerUsername: carol.Username,
		Name:            "Sunrise flow",
		Date:            domain.MustParseDate("2024-04-01"),
		DurationMinutes: 60,
	})
	if err != nil {
		t.Fatalf("Create training: %v", err)
	}

	if err := h.trainees.Delete(ctx, alice.Username); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if h.sessions.IsValid(ctx, tok) {
		t.Error("session survived trainee deletion")
	}
	list, err := h.trainers.Trainings(ctx, carol.Username, domain.TrainingFilter{})
	if err != nil || len(list) != 0 {
		t.Errorf("trainer trainings after delete = %d, %v", len(list), err)
	}
	if err := h.trainees.Delete(ctx, alice.Username); !errors.Is(err, domain.ErrTraineeNotFound) {
		t.Errorf("second Delete err = %v", err)
	}
}

func TestTrainer_RegisterAndUpdate(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	if _, err := h.trainers.Register(ctx, &service.RegisterTrainerRequest{FirstName: "X", LastName: "Y", Specialization: "PILATES"}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("unknown specialization err = %v", err)
	}

	carol := h.registerTrainer(t, "Carol", "Cole", "yoga")
	p, err := h.trainers.Get(ctx, carol.Username)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if p.Trainer.Specialization != "YOGA" || len(p.Trainees) != 0 {
		t.Fatalf("profile = %+v", p)
	}

	up, err := h.trainers.Update(ctx, &service.UpdateTrainerRequest{
		Username:       carol.Username,
		FirstName:      "Caroline",
		LastName:       "Cole",
		Specialization: "cardio",
		Active:         boolPtr(true),
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if up.Trainer.FirstName != "Caroline" || up.Trainer.Specialization != "CARDIO" {
		t.Errorf("updated = %+v", up.Trainer)
	}

	tok := h.login(t, carol)
	if _, err := h.trainers.Update(ctx, &service.UpdateTrainerRequest{
		Username: carol.Username, FirstName: "Caroline", LastName: "Cole", Active: boolPtr(false),
	}); err != nil {
		t.Fatalf("Update(deactivate): %v", err)
	}
	if h.sessions.IsValid(ctx, tok) {
		t.Error("deactivating update kept the session")
	}
}

func TestTrainer_AvailableFor(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	alice := h.registerTrainee(t, "Alice", "Archer")
	carol := h.registerTrainer(t, "Carol", "Cole", "YOGA")
	dave := h.registerTrainer(t, "Dave", "Dunn", "CARDIO")
	erin := h.registerTrainer(t, "Erin", "Eve", "STRENGTH")

	_, _ = h.trainees.UpdateTrainers(ctx, alice.Username, []string{carol.Username})
	_ = h.trainers.SetActive(ctx, erin.Username, false)

	list, err := h.trainers.AvailableFor(ctx, alice.Username)
	if err != nil {
		t.Fatalf("AvailableFor: %v", err)
	}
	if len(list) != 1 || list[0].Username != dave.Username {
		names := make([]string, len(list))
		for i, tr := range list {
			names[i] = tr.Username
		}
		t.Fatalf("AvailableFor = %v, want [%s]", names, dave.Username)
	}

	if _, err := h.trainers.AvailableFor(ctx, "ghost"); !errors.Is(err, domain.ErrTraineeNotFound) {
		t.Errorf("AvailableFor(ghost) err = %v", err)
	}
}

func TestTraining_CreateLinksAndFilters(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	alice := h.registerTrainee(t, "Alice", "Archer")
	carol := h.registerTrainer(t, "Carol", "Cole", "YOGA")
	dave := h.registerTrainer(t, "Dave", "Dunn", "CARDIO")

	create := func(trainer, date string) *domain.Training {
		tr, err := h.trainings.Create(ctx, &service.CreateTrainingRequest{
			TraineeUsername: alice.Username,
			TrainerUsername: trainer,
			Name:            "Session",
			Date:            domain.MustParseDate(date),
			DurationMinutes: 45,
		})
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		return tr
	}
	first := create(carol.Username, "2024-01-10")
	create(dave.Username, "2024-02-10")
	create(carol.Username, "2024-03-10")

	if first.Type != "YOGA" {
		t.Errorf("training type = %q, want trainer's specialization", first.Type)
	}

	p, _ := h.trainees.Get(ctx, alice.Username)
	if len(p.Trainers) != 2 {
		t.Errorf("training did not link trainers: %d", len(p.Trainers))
	}
	tp, _ := h.trainers.Get(ctx, carol.Username)
	if len(tp.Trainees) != 1 || tp.Trainees[0].Username != alice.Username {
		t.Errorf("trainer profile trainees = %v", tp.Trainees)
	}

	tests := []struct {
		name   string
		filter domain.TrainingFilter
		want   int
	}{
		{"all", domain.TrainingFilter{}, 3},
		{"from", domain.TrainingFilter{From: domain.MustParseDate("2024-02-01")}, 2},
		{"to inclusive", domain.TrainingFilter{To: domain.MustParseDate("2024-02-10")}, 2},
		{"trainer name", domain.TrainingFilter{PartnerName: "dunn"}, 1},
		{"type", domain.TrainingFilter{Type: "Yoga"}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			list, err := h.trainees.Trainings(ctx, alice.Username, tt.filter)
			if err != nil {
				t.Fatalf("Trainings: %v", err)
			}
			if len(list) != tt.want {
				t.Errorf("Trainings = %d, want %d", len(list), tt.want)
			}
		})
	}

	list, _ := h.trainers.Trainings(ctx, carol.Username, domain.TrainingFilter{PartnerName: "archer", Type: "CARDIO"})
	if len(list) != 2 {
		t.Errorf("trainer trainings ignore type: got %d, want 2", len(list))
	}
}

func TestTraining_CreateValidation(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	alice := h.registerTrainee(t, "Alice", "Archer")

	_, err := h.trainings.Create(ctx, &service.CreateTrainingRequest{
		TraineeUsername: alice.Username,
		TrainerUsername: "ghost",
		Name:            "x",
		Date:            domain.MustParseDate("2024-01-01"),
		DurationMinutes: 30,
	})
	if !errors.Is(err, domain.ErrTrainerNotFound) {
		t.Errorf("unknown trainer err = %v", err)
	}

	_, err = h.trainings.Create(ctx, &service.CreateTrainingRequest{TraineeUsername: alice.Username, TrainerUsername: "ghost"})
	var de *domain.DomainError
	if !errors.As(err, &de) || de.Code != domain.ErrValidation.Code || len(de.Fields) != 3 {
		t.Errorf("incomplete request err = %v", err)
	}
}

func TestTrainingTypes(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	list, err := h.types.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != len(domain.DefaultTrainingTypes) {
		t.Fatalf("List = %d types", len(list))
	}
	tt, err := h.types.Get(ctx, "strength")
	if err != nil || tt.Name != "STRENGTH" {
		t.Errorf("Get(strength) = %v, %v", tt, err)
	}
}
