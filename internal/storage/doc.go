// Package storage provides the key-value engines that back durable gym
// data.
//
// Two engines implement KVEngine:
//
//   - BadgerEngine: embedded, on-disk LSM store with background value log GC
//   - MemoryEngine: ordered in-process map, used for tests and ephemeral
//     deployments
//
// Domain repositories are built on top of KVEngine in package kvstore.
// Sessions never pass through this package; they live in package memory.
package storage
