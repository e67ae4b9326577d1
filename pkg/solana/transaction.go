package solana

import (
	"crypto/ed25519"
	"errors"
	"fmt"
)

var (
	// ErrMalformedTransaction is returned when wire bytes cannot be decoded.
	ErrMalformedTransaction = errors.New("solana: malformed transaction")

	// ErrVersionedTransaction is returned for v0+ messages, which are not supported.
	ErrVersionedTransaction = errors.New("solana: versioned transactions are not supported")

	// ErrSignerNotFound is returned when a signing key is not a required signer.
	ErrSignerNotFound = errors.New("solana: key is not a required signer of the message")
)

// MessageHeader counts the signer and read-only segments of AccountKeys.
type MessageHeader struct {
	NumRequiredSignatures       uint8
	NumReadonlySignedAccounts   uint8
	NumReadonlyUnsignedAccounts uint8
}

// CompiledInstruction references accounts by index into Message.AccountKeys.
type CompiledInstruction struct {
	ProgramIDIndex uint8
	Accounts       []uint8
	Data           []byte
}

// Message is a legacy transaction message.
type Message struct {
	Header          MessageHeader
	AccountKeys     []Pubkey
	RecentBlockhash Hash
	Instructions    []CompiledInstruction
}

// Transaction is a signed legacy transaction.
type Transaction struct {
	Signatures []Signature
	Message    Message
}

// AccountMeta describes how an instruction uses an account.
type AccountMeta struct {
	Pubkey     Pubkey
	IsSigner   bool
	IsWritable bool
}

// Instruction is an uncompiled instruction.
type Instruction struct {
	ProgramID Pubkey
	Accounts  []AccountMeta
	Data      []byte
}

// IsSigner reports whether account index i must sign.
func (m *Message) IsSigner(i int) bool {
	return i < int(m.Header.NumRequiredSignatures)
}

// IsWritable reports whether account index i may be modified.
func (m *Message) IsWritable(i int) bool {
	numSigned := int(m.Header.NumRequiredSignatures)
	if i < numSigned {
		return i < numSigned-int(m.Header.NumReadonlySignedAccounts)
	}
	unsigned := len(m.AccountKeys) - numSigned
	return i-numSigned < unsigned-int(m.Header.NumReadonlyUnsignedAccounts)
}

// FeePayer returns the first account key.
func (m *Message) FeePayer() (Pubkey, bool) {
	if len(m.AccountKeys) == 0 {
		return Pubkey{}, false
	}
	return m.AccountKeys[0], true
}

// Serialize encodes the message in wire format. The result is the payload
// that signers sign.
func (m *Message) Serialize() []byte {
	buf := make([]byte, 0, 3+len(m.AccountKeys)*PubkeySize+HashSize+64)
	buf = append(buf,
		m.Header.NumRequiredSignatures,
		m.Header.NumReadonlySignedAccounts,
		m.Header.NumReadonlyUnsignedAccounts,
	)
	buf = AppendShortVec(buf, len(m.AccountKeys))
	for _, k := range m.AccountKeys {
		buf = append(buf, k[:]...)
	}
	buf = append(buf, m.RecentBlockhash[:]...)
	buf = AppendShortVec(buf, len(m.Instructions))
	for _, ix := range m.Instructions {
		buf = append(buf, ix.ProgramIDIndex)
		buf = AppendShortVec(buf, len(ix.Accounts))
		buf = append(buf, ix.Accounts...)
		buf = AppendShortVec(buf, len(ix.Data))
		buf = append(buf, ix.Data...)
	}
	return buf
}

// Serialize encodes the transaction in wire format.
func (tx *Transaction) Serialize() []byte {
	msg := tx.Message.Serialize()
	buf := make([]byte, 0, 1+len(tx.Signatures)*SignatureSize+len(msg))
	buf = AppendShortVec(buf, len(tx.Signatures))
	for _, sig := range tx.Signatures {
		buf = append(buf, sig[:]...)
	}
	return append(buf, msg...)
}

// Signature returns the first signature, which identifies the transaction.
func (tx *Transaction) Signature() (Signature, bool) {
	if len(tx.Signatures) == 0 {
		return Signature{}, false
	}
	return tx.Signatures[0], true
}

// Sign signs the message with each key and stores the signature in the slot
// matching the key's position among the required signers.
func (tx *Transaction) Sign(keys ...ed25519.PrivateKey) error {
	numSigners := int(tx.Message.Header.NumRequiredSignatures)
	if len(tx.Signatures) != numSigners {
		tx.Signatures = make([]Signature, numSigners)
	}

	payload := tx.Message.Serialize()
	for _, key := range keys {
		pub, err := PubkeyFromBytes(key.Public().(ed25519.PublicKey))
		if err != nil {
			return err
		}
		idx := -1
		for i := 0; i < numSigners && i < len(tx.Message.AccountKeys); i++ {
			if tx.Message.AccountKeys[i] == pub {
				idx = i
				break
			}
		}
		if idx < 0 {
			return fmt.Errorf("%w: %s", ErrSignerNotFound, pub)
		}
		copy(tx.Signatures[idx][:], ed25519.Sign(key, payload))
	}
	return nil
}

// VerifySignatures checks every required signature against its account key.
func (tx *Transaction) VerifySignatures() error {
	numSigners := int(tx.Message.Header.NumRequiredSignatures)
	if len(tx.Signatures) != numSigners {
		return fmt.Errorf("solana: expected %d signatures, got %d", numSigners, len(tx.Signatures))
	}
	payload := tx.Message.Serialize()
	for i, sig := range tx.Signatures {
		key := tx.Message.AccountKeys[i]
		if !ed25519.Verify(ed25519.PublicKey(key[:]), payload, sig[:]) {
			return fmt.Errorf("solana: signature %d does not verify for %s", i, key)
		}
	}
	return nil
}

// DecodeTransaction parses wire-format bytes into a legacy Transaction.
func DecodeTransaction(b []byte) (*Transaction, error) {
	d := decoder{buf: b}

	numSigs := d.shortVec()
	tx := &Transaction{Signatures: make([]Signature, 0, numSigs)}
	for i := 0; i < numSigs && d.err == nil; i++ {
		var sig Signature
		copy(sig[:], d.take(SignatureSize))
		tx.Signatures = append(tx.Signatures, sig)
	}

	if d.err == nil && d.off < len(d.buf) && d.buf[d.off]&0x80 != 0 {
		return nil, ErrVersionedTransaction
	}

	msg, err := decodeMessage(&d)
	if err != nil {
		return nil, err
	}
	if d.off != len(d.buf) {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrMalformedTransaction, len(d.buf)-d.off)
	}
	tx.Message = *msg
	return tx, nil
}

func decodeMessage(d *decoder) (*Message, error) {
	hdr := d.take(3)
	if d.err != nil {
		return nil, d.err
	}
	m := &Message{Header: MessageHeader{
		NumRequiredSignatures:       hdr[0],
		NumReadonlySignedAccounts:   hdr[1],
		NumReadonlyUnsignedAccounts: hdr[2],
	}}

	numKeys := d.shortVec()
	for i := 0; i < numKeys && d.err == nil; i++ {
		var pk Pubkey
		copy(pk[:], d.take(PubkeySize))
		m.AccountKeys = append(m.AccountKeys, pk)
	}
	copy(m.RecentBlockhash[:], d.take(HashSize))

	numIx := d.shortVec()
	for i := 0; i < numIx && d.err == nil; i++ {
		var ix CompiledInstruction
		if p := d.take(1); p != nil {
			ix.ProgramIDIndex = p[0]
		}
		n := d.shortVec()
		ix.Accounts = append([]uint8(nil), d.take(n)...)
		n = d.shortVec()
		ix.Data = append([]byte(nil), d.take(n)...)
		m.Instructions = append(m.Instructions, ix)
	}
	if d.err != nil {
		return nil, d.err
	}

	return m, m.sanitize()
}

// sanitize checks the structural constraints the runtime relies on.
func (m *Message) sanitize() error {
	numKeys := len(m.AccountKeys)
	signed := int(m.Header.NumRequiredSignatures)
	if signed == 0 || signed > numKeys {
		return fmt.Errorf("%w: %d required signatures for %d accounts", ErrMalformedTransaction, signed, numKeys)
	}
	if int(m.Header.NumReadonlySignedAccounts) >= signed {
		return fmt.Errorf("%w: fee payer must be writable", ErrMalformedTransaction)
	}
	if int(m.Header.NumReadonlyUnsignedAccounts) > numKeys-signed {
		return fmt.Errorf("%w: readonly unsigned count out of range", ErrMalformedTransaction)
	}
	for i, ix := range m.Instructions {
		if int(ix.ProgramIDIndex) >= numKeys || ix.ProgramIDIndex == 0 {
			return fmt.Errorf("%w: instruction %d program index out of range", ErrMalformedTransaction, i)
		}
		for _, a := range ix.Accounts {
			if int(a) >= numKeys {
				return fmt.Errorf("%w: instruction %d account index out of range", ErrMalformedTransaction, i)
			}
		}
	}
	return nil
}

type decoder struct {
	buf []byte
	off int
	err error
}

func (d *decoder) take(n int) []byte {
	if d.err != nil {
		return nil
	}
	if n < 0 || d.off+n > len(d.buf) {
		d.err = fmt.Errorf("%w: unexpected end of input", ErrMalformedTransaction)
		return nil
	}
	b := d.buf[d.off : d.off+n]
	d.off += n
	return b
}

func (d *decoder) shortVec() int {
	if d.err != nil {
		return 0
	}
	n, used, err := DecodeShortVec(d.buf[d.off:])
	if err != nil {
		d.err = fmt.Errorf("%w: %v", ErrMalformedTransaction, err)
		return 0
	}
	d.off += used
	return n
}
