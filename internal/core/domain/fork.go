package domain

import (
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

// ForkIDPrefix prefixes every fork id.
const ForkIDPrefix = "fork-"

// FailedSignature is recorded in history in place of a signature when the
// engine rejects a transaction.
const FailedSignature = "failed"

// NewForkID returns a fresh fork id: the prefix followed by a lowercase ULID.
// ULIDs are monotonic within a millisecond and never repeat in a process.
func NewForkID() string {
	return ForkIDPrefix + strings.ToLower(ulid.Make().String())
}

// ValidForkID reports whether id has the shape produced by NewForkID.
func ValidForkID(id string) bool {
	rest, ok := strings.CutPrefix(id, ForkIDPrefix)
	if !ok {
		return false
	}
	_, err := ulid.ParseStrict(strings.ToUpper(rest))
	return err == nil
}

// TransactionRecord is one immutable history entry.
type TransactionRecord struct {
	Signature string `json:"signature"`
	Timestamp string `json:"timestamp"`
	Success   bool   `json:"success"`
}

// NewTransactionRecord stamps a record with t in RFC 3339 (UTC, nanoseconds).
func NewTransactionRecord(signature string, success bool, t time.Time) TransactionRecord {
	return TransactionRecord{
		Signature: signature,
		Timestamp: t.UTC().Format(time.RFC3339Nano),
		Success:   success,
	}
}

// ForkInfo describes a live fork.
type ForkInfo struct {
	ID               string    `json:"fork_id"`
	CreatedAt        time.Time `json:"created_at"`
	ExpiresAt        time.Time `json:"expires_at"`
	TransactionCount int       `json:"transaction_count"`
}
