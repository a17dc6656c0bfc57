package domain

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// EntityID is the opaque 256-bit identifier for escrows, payment links and
// receipts. It is derived from creation inputs plus a random nonce, so two
// creations sharing every input in the same time quantum still get distinct
// ids. Collisions on insert surface as ESC_007, never as an overwrite.
type EntityID [32]byte

// String returns the lowercase hex encoding (64 characters).
func (id EntityID) String() string {
	return hex.EncodeToString(id[:])
}

// IsZero reports whether the id is the zero value.
func (id EntityID) IsZero() bool {
	return id == EntityID{}
}

// MarshalText implements encoding.TextMarshaler so EntityID renders as hex
// in JSON payloads.
func (id EntityID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (id *EntityID) UnmarshalText(text []byte) error {
	parsed, err := ParseEntityID(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// ParseEntityID decodes a 64-character hex string into an EntityID.
func ParseEntityID(s string) (EntityID, error) {
	var id EntityID
	raw, err := hex.DecodeString(s)
	if err != nil {
		return id, fmt.Errorf("decoding entity id: %w", err)
	}
	if len(raw) != len(id) {
		return id, fmt.Errorf("entity id must be %d bytes, got %d", len(id), len(raw))
	}
	copy(id[:], raw)
	return id, nil
}

// DeriveEntityID computes SHA-256 over the creation inputs and nonce.
// Deterministic for a fixed nonce, which the tests rely on.
func DeriveEntityID(creator uuid.UUID, amount int64, currency string, at time.Time, metadata string, nonce []byte) EntityID {
	h := sha256.New()
	h.Write(creator[:])

	var amt [8]byte
	binary.BigEndian.PutUint64(amt[:], uint64(amount))
	h.Write(amt[:])

	h.Write([]byte(currency))

	var ts [8]byte
	binary.BigEndian.PutUint64(ts[:], uint64(at.UnixNano()))
	h.Write(ts[:])

	h.Write([]byte(metadata))
	h.Write(nonce)

	var id EntityID
	copy(id[:], h.Sum(nil))
	return id
}

// NewEntityID derives an id with a fresh 16-byte random nonce.
func NewEntityID(creator uuid.UUID, amount int64, currency string, at time.Time, metadata string) (EntityID, error) {
	nonce := make([]byte, 16)
	if _, err := rand.Read(nonce); err != nil {
		return EntityID{}, fmt.Errorf("generating id nonce: %w", err)
	}
	return DeriveEntityID(creator, amount, currency, at, metadata, nonce), nil
}

// DeriveReceiptID computes a receipt id from the settled entity, the
// requester and the issue time. Distinct requesters or issue times yield
// distinct receipts for the same entity.
func DeriveReceiptID(entity EntityID, requester uuid.UUID, at time.Time, nonce []byte) EntityID {
	h := sha256.New()
	h.Write(entity[:])
	h.Write(requester[:])

	var ts [8]byte
	binary.BigEndian.PutUint64(ts[:], uint64(at.UnixNano()))
	h.Write(ts[:])

	h.Write(nonce)

	var id EntityID
	copy(id[:], h.Sum(nil))
	return id
}

// NewReceiptID derives a receipt id with a fresh random nonce.
func NewReceiptID(entity EntityID, requester uuid.UUID, at time.Time) (EntityID, error) {
	nonce := make([]byte, 16)
	if _, err := rand.Read(nonce); err != nil {
		return EntityID{}, fmt.Errorf("generating receipt nonce: %w", err)
	}
	return DeriveReceiptID(entity, requester, at, nonce), nil
}
