package domain

import "strings"

// TrainingType is an entry of the fixed specialization catalogue.
type TrainingType struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// DefaultTrainingTypes is the catalogue seeded on startup.
var DefaultTrainingTypes = []TrainingType{
	{ID: 1, Name: "CARDIO"},
	{ID: 2, Name: "STRENGTH"},
	{ID: 3, Name: "FLEXIBILITY"},
	{ID: 4, Name: "YOGA"},
	{ID: 5, Name: "CROSSFIT"},
}

// NormalizeTrainingType canonicalizes a type name for lookup.
func NormalizeTrainingType(name string) string {
	return strings.ToUpper(strings.TrimSpace(name))
}
