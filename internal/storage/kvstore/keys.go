package kvstore

import "strings"

const (
	prefixUser            = "user/"
	prefixTrainee         = "trainee/"
	prefixTrainer         = "trainer/"
	prefixTraining        = "training/"
	prefixType            = "type/"
	prefixTraineeTraining = "idx/trainee_training/"
	prefixTrainerTraining = "idx/trainer_training/"
	prefixTrainerTrainee  = "idx/trainer_trainee/"
)

func userKey(username string) []byte    { return []byte(prefixUser + username) }
func traineeKey(username string) []byte { return []byte(prefixTrainee + username) }
func trainerKey(username string) []byte { return []byte(prefixTrainer + username) }
func trainingKey(id string) []byte      { return []byte(prefixTraining + id) }
func typeKey(name string) []byte        { return []byte(prefixType + name) }

func traineeTrainingKey(trainee, id string) []byte {
	return []byte(prefixTraineeTraining + trainee + "/" + id)
}

func trainerTrainingKey(trainer, id string) []byte {
	return []byte(prefixTrainerTraining + trainer + "/" + id)
}

func trainerTraineeKey(trainer, trainee string) []byte {
	return []byte(prefixTrainerTrainee + trainer + "/" + trainee)
}

// lastSegment returns the part of key after its final '/'.
func lastSegment(key []byte) string {
	s := string(key)
	return s[strings.LastIndexByte(s, '/')+1:]
}
