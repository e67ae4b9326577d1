package domain

import (
	"errors"
	"testing"

	"github.com/yndnr/forkmesh-go/pkg/solana"
)

func TestNewSystemAccount(t *testing.T) {
	a := NewSystemAccount(42)
	if a.Lamports != 42 {
		t.Errorf("Lamports = %d, want 42", a.Lamports)
	}
	if a.Owner != solana.SystemProgramID {
		t.Errorf("Owner = %s, want system program", a.Owner)
	}
	if a.Executable || a.RentEpoch != 0 || len(a.Data) != 0 {
		t.Errorf("NewSystemAccount should be empty and non-executable, got %+v", a)
	}
}

func TestAccount_Clone(t *testing.T) {
	orig := &Account{Lamports: 7, Data: []byte{1, 2, 3}, Owner: solana.TokenProgramID, RentEpoch: 9}
	c := orig.Clone()

	c.Data[0] = 99
	c.Lamports = 8
	if orig.Data[0] != 1 || orig.Lamports != 7 {
		t.Error("Clone should not share state with the original")
	}
	if c.Owner != orig.Owner || c.RentEpoch != orig.RentEpoch {
		t.Error("Clone should copy every field")
	}

	var nilAcct *Account
	if nilAcct.Clone() != nil {
		t.Error("Clone of nil should be nil")
	}
	if (&Account{}).Clone().Data == nil {
		t.Error("Clone should normalise nil data to an empty slice")
	}
}

func TestParseAddress(t *testing.T) {
	pk, err := ParseAddress("11111111111111111111111111111111")
	if err != nil {
		t.Fatalf("ParseAddress() error = %v", err)
	}
	if pk != solana.SystemProgramID {
		t.Errorf("ParseAddress() = %s", pk)
	}

	for _, in := range []string{"", "invalid", "0OIl", "1111"} {
		_, err := ParseAddress(in)
		if !errors.Is(err, ErrInvalidAddress) {
			t.Errorf("ParseAddress(%q) error = %v, want ErrInvalidAddress", in, err)
		}
	}
}
