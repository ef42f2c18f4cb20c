// Package idx mints the sortable identifiers used for users, drafts and
// request correlation.
package idx

import (
	"crypto/rand"
	"errors"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// ID is a canonical 26 character ULID string.
type ID string

const Zero ID = ""

// ErrInvalid reports a malformed ULID string.
var ErrInvalid = errors.New("idx: invalid ulid")

// minter serialises access to the monotonic entropy source; ulid's
// MonotonicEntropy is not safe for concurrent use.
type minter struct {
	mu      sync.Mutex
	entropy io.Reader
}

var ids = &minter{entropy: ulid.Monotonic(rand.Reader, 0)}

func (m *minter) mint(t time.Time) ID {
	m.mu.Lock()
	u := ulid.MustNew(ulid.Timestamp(t), m.entropy)
	m.mu.Unlock()
	return ID(u.String())
}

// New returns an ID stamped with the current UTC time.
func New() ID { return ids.mint(time.Now().UTC()) }

// NewAt mints an ID for t. IDs minted for the same millisecond still sort
// in creation order.
func NewAt(t time.Time) ID { return ids.mint(t) }

// Parse accepts s only in canonical upper case form, which is what New
// produces and what the store keys on.
func Parse(s string) (ID, error) {
	s = strings.TrimSpace(s)
	u, err := ulid.ParseStrict(s)
	if err != nil || u.String() != s {
		return Zero, ErrInvalid
	}
	return ID(s), nil
}

func (id ID) IsZero() bool   { return id == Zero }
func (id ID) String() string { return string(id) }

// Time is the creation instant embedded in id, or the zero time.
func (id ID) Time() time.Time {
	u, err := ulid.ParseStrict(string(id))
	if err != nil {
		return time.Time{}
	}
	return ulid.Time(u.Time()).UTC()
}
