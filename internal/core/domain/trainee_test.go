package domain

import (
	"slices"
	"testing"
	"time"
)

func TestTrainee_Validate(t *testing.T) {
	valid := func() *Trainee {
		return &Trainee{
			User:        User{FirstName: "John", LastName: "Smith"},
			DateOfBirth: MustParseDate("1990-05-01"),
		}
	}

	if err := valid().Validate(); err != nil {
		t.Fatalf("Validate(valid) error = %v", err)
	}

	noDOB := valid()
	noDOB.DateOfBirth = Date{}
	if err := noDOB.Validate(); err != nil {
		t.Errorf("date of birth is optional, got %v", err)
	}

	future := valid()
	future.DateOfBirth = NewDate(time.Now().AddDate(0, 0, 1))
	if err := future.Validate(); !IsDomainError(err, ErrValidation.Code) {
		t.Errorf("future date of birth error = %v, want validation error", err)
	}

	today := valid()
	today.DateOfBirth = Today()
	if err := today.Validate(); err == nil {
		t.Error("date of birth today should be rejected")
	}
}

func TestTrainee_Trainers(t *testing.T) {
	tr := &Trainee{}
	tr.SetTrainers([]string{"zed.z", "amy.a", "zed.z"})

	if !slices.Equal(tr.Trainers, []string{"amy.a", "zed.z"}) {
		t.Fatalf("SetTrainers() = %v", tr.Trainers)
	}
	if !tr.AddTrainer("max.m") {
		t.Error("AddTrainer(new) should report a change")
	}
	if tr.AddTrainer("max.m") {
		t.Error("AddTrainer(existing) should not report a change")
	}
	if !slices.Equal(tr.Trainers, []string{"amy.a", "max.m", "zed.z"}) {
		t.Errorf("Trainers = %v, want sorted set", tr.Trainers)
	}
	if !tr.HasTrainer("amy.a") || tr.HasTrainer("bob.b") {
		t.Error("HasTrainer() mismatch")
	}

	c := tr.Clone()
	c.Trainers[0] = "changed"
	if tr.Trainers[0] != "amy.a" {
		t.Error("Clone should deep copy trainers")
	}
}
