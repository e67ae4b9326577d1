// Package svm is a small in-process ledger engine backing each fork.
//
// It holds an account set and executes legacy transactions that only use
// the System Program Transfer instruction. Signatures, the recent blockhash
// and duplicate submissions are checked; a flat per-signature fee is
// charged to the fee payer. A failed transaction leaves the account set
// untouched. Any other program is rejected as unsupported.
//
// An Engine is not safe for concurrent use. Callers serialize access.
package svm
