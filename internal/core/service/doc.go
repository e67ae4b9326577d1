// Package service implements the ForkMesh fork session store.
//
// ForkService owns the lifecycle of forks: creation, lookup, read-through
// hydration from the remote ledger, cheat-code mutation, transaction
// submission with history, token balances, and periodic eviction.
//
// Locking is two-level. The ForkRepository guards the id -> fork mapping;
// each Fork guards its own engine and history with an RWMutex. No lock is
// held while the remote ledger is called, and the repository lock is never
// held while waiting on a fork lock.
package service
