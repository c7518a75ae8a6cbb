// Package kvstore implements the gym repositories on top of a
// storage.KVEngine.
//
// Records are stored as JSON under these keys:
//
//	user/<username>                          role of the account
//	trainee/<username>                       domain.Trainee
//	trainer/<username>                       domain.Trainer
//	training/<id>                            domain.Training
//	type/<NAME>                              domain.TrainingType
//	idx/trainee_training/<trainee>/<id>      empty
//	idx/trainer_training/<trainer>/<id>      empty
//	idx/trainer_trainee/<trainer>/<trainee>  empty
//
// Every multi-key change runs in one KV transaction.
package kvstore
