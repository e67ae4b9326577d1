package solana

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// SystemInstructionTransfer is the system program instruction tag for Transfer.
const SystemInstructionTransfer uint32 = 2

// ErrNotTransfer is returned when an instruction is not a system Transfer.
var ErrNotTransfer = errors.New("solana: not a system transfer instruction")

// TransferInstruction builds a system program Transfer of lamports from -> to.
func TransferInstruction(from, to Pubkey, lamports uint64) Instruction {
	data := make([]byte, 12)
	binary.LittleEndian.PutUint32(data[0:4], SystemInstructionTransfer)
	binary.LittleEndian.PutUint64(data[4:12], lamports)
	return Instruction{
		ProgramID: SystemProgramID,
		Accounts: []AccountMeta{
			{Pubkey: from, IsSigner: true, IsWritable: true},
			{Pubkey: to, IsWritable: true},
		},
		Data: data,
	}
}

// DecodeTransfer parses system Transfer instruction data and returns the amount.
func DecodeTransfer(data []byte) (uint64, error) {
	if len(data) != 12 {
		return 0, fmt.Errorf("%w: data length %d", ErrNotTransfer, len(data))
	}
	if tag := binary.LittleEndian.Uint32(data[0:4]); tag != SystemInstructionTransfer {
		return 0, fmt.Errorf("%w: tag %d", ErrNotTransfer, tag)
	}
	return binary.LittleEndian.Uint64(data[4:12]), nil
}

// NewMessage compiles instructions into a legacy message. The payer is placed
// first; remaining keys are ordered signer-writable, signer-readonly,
// writable, readonly. Program ids are readonly non-signers.
func NewMessage(payer Pubkey, blockhash Hash, instructions ...Instruction) (*Message, error) {
	type keyMeta struct {
		signer   bool
		writable bool
	}
	order := []Pubkey{payer}
	metas := map[Pubkey]*keyMeta{payer: {signer: true, writable: true}}

	add := func(pk Pubkey, signer, writable bool) {
		m, ok := metas[pk]
		if !ok {
			m = &keyMeta{}
			metas[pk] = m
			order = append(order, pk)
		}
		m.signer = m.signer || signer
		m.writable = m.writable || writable
	}
	for _, ix := range instructions {
		for _, a := range ix.Accounts {
			add(a.Pubkey, a.IsSigner, a.IsWritable)
		}
		add(ix.ProgramID, false, false)
	}

	var sw, sr, uw, ur []Pubkey
	for _, pk := range order {
		m := metas[pk]
		switch {
		case m.signer && m.writable:
			sw = append(sw, pk)
		case m.signer:
			sr = append(sr, pk)
		case m.writable:
			uw = append(uw, pk)
		default:
			ur = append(ur, pk)
		}
	}

	keys := make([]Pubkey, 0, len(order))
	keys = append(keys, sw...)
	keys = append(keys, sr...)
	keys = append(keys, uw...)
	keys = append(keys, ur...)
	if len(keys) > 256 {
		return nil, fmt.Errorf("%w: too many account keys (%d)", ErrMalformedTransaction, len(keys))
	}

	index := make(map[Pubkey]uint8, len(keys))
	for i, pk := range keys {
		index[pk] = uint8(i)
	}

	msg := &Message{
		Header: MessageHeader{
			NumRequiredSignatures:       uint8(len(sw) + len(sr)),
			NumReadonlySignedAccounts:   uint8(len(sr)),
			NumReadonlyUnsignedAccounts: uint8(len(ur)),
		},
		AccountKeys:     keys,
		RecentBlockhash: blockhash,
	}
	for _, ix := range instructions {
		ci := CompiledInstruction{
			ProgramIDIndex: index[ix.ProgramID],
			Accounts:       make([]uint8, len(ix.Accounts)),
			Data:           append([]byte(nil), ix.Data...),
		}
		for i, a := range ix.Accounts {
			ci.Accounts[i] = index[a.Pubkey]
		}
		msg.Instructions = append(msg.Instructions, ci)
	}
	return msg, nil
}

// NewTransaction compiles instructions into an unsigned transaction with
// zeroed signature slots for each required signer.
func NewTransaction(payer Pubkey, blockhash Hash, instructions ...Instruction) (*Transaction, error) {
	msg, err := NewMessage(payer, blockhash, instructions...)
	if err != nil {
		return nil, err
	}
	return &Transaction{
		Signatures: make([]Signature, msg.Header.NumRequiredSignatures),
		Message:    *msg,
	}, nil
}

// NewTransferTransaction builds an unsigned single-transfer transaction paid by from.
func NewTransferTransaction(from, to Pubkey, lamports uint64, blockhash Hash) (*Transaction, error) {
	return NewTransaction(from, blockhash, TransferInstruction(from, to, lamports))
}
