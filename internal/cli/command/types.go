package command

// Wire types mirror the server's JSON; table columns follow the json tags.

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type trainerSummary struct {
	Username       string `json:"username"`
	FirstName      string `json:"firstName"`
	LastName       string `json:"lastName"`
	Specialization string `json:"specialization"`
}

type traineeSummary struct {
	Username  string `json:"username"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

type traineeProfile struct {
	Username    string           `json:"username"`
	FirstName   string           `json:"firstName"`
	LastName    string           `json:"lastName"`
	DateOfBirth *string          `json:"dateOfBirth"`
	Address     string           `json:"address"`
	IsActive    bool             `json:"isActive"`
	Trainers    []trainerSummary `json:"trainers" table:"-"`
}

type trainerProfile struct {
	Username       string           `json:"username"`
	FirstName      string           `json:"firstName"`
	LastName       string           `json:"lastName"`
	Specialization string           `json:"specialization"`
	IsActive       bool             `json:"isActive"`
	Trainees       []traineeSummary `json:"trainees" table:"-"`
}

type training struct {
	ID              string `json:"id" table:"wide"`
	Name            string `json:"name"`
	Date            string `json:"date"`
	Type            string `json:"type"`
	Duration        int    `json:"duration"`
	TraineeUsername string `json:"traineeUsername" table:"wide"`
	TrainerUsername string `json:"trainerUsername" table:"wide"`
	TraineeName     string `json:"traineeName,omitempty"`
	TrainerName     string `json:"trainerName,omitempty"`
}

type trainingType struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}
