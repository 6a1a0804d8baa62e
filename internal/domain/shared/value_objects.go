package shared

import (
	"encoding/json"
	"strings"

	"github.com/google/uuid"
)

// ComponentID is a value object that ensures valid component identifiers.
type ComponentID struct {
	value string
}

// NewComponentID creates a new random ComponentID.
func NewComponentID() ComponentID {
	return ComponentID{value: uuid.New().String()}
}

// ParseComponentID creates a ComponentID from a string, validating it is a
// proper UUID.
func ParseComponentID(id string) (ComponentID, error) {
	if _, err := uuid.Parse(id); err != nil {
		return ComponentID{}, ErrInvalidComponentID
	}
	return ComponentID{value: id}, nil
}

func (id ComponentID) String() string                { return id.value }
func (id ComponentID) Equals(other ComponentID) bool { return id.value == other.value }
func (id ComponentID) IsEmpty() bool                 { return id.value == "" }

// MarshalJSON renders the identifier as a plain string.
func (id ComponentID) MarshalJSON() ([]byte, error) { return json.Marshal(id.value) }

func (id *ComponentID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseComponentID(s)
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// BuildID is a value object that ensures valid build identifiers.
type BuildID struct {
	value string
}

// NewBuildID creates a new random BuildID.
func NewBuildID() BuildID {
	return BuildID{value: uuid.New().String()}
}

// ParseBuildID creates a BuildID from a string, validating it is a proper
// UUID.
func ParseBuildID(id string) (BuildID, error) {
	if _, err := uuid.Parse(id); err != nil {
		return BuildID{}, ErrInvalidBuildID
	}
	return BuildID{value: id}, nil
}

func (id BuildID) String() string            { return id.value }
func (id BuildID) Equals(other BuildID) bool { return id.value == other.value }
func (id BuildID) IsEmpty() bool             { return id.value == "" }

func (id BuildID) MarshalJSON() ([]byte, error) { return json.Marshal(id.value) }

func (id *BuildID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseBuildID(s)
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// UserID is a value object that ensures valid user identifiers.
type UserID struct {
	value string
}

// NewUserID creates a UserID from a string with validation.
func NewUserID(id string) (UserID, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return UserID{}, ErrEmptyUserID
	}
	if len(id) > MaxUserIDLength {
		return UserID{}, ErrUserIDTooLong
	}
	return UserID{value: id}, nil
}

// ParseUserID is an alias for NewUserID for consistency with the other
// identifier value objects.
func ParseUserID(id string) (UserID, error) {
	return NewUserID(id)
}

func (id UserID) String() string           { return id.value }
func (id UserID) Equals(other UserID) bool { return id.value == other.value }
func (id UserID) IsEmpty() bool            { return id.value == "" }

func (id UserID) MarshalJSON() ([]byte, error) { return json.Marshal(id.value) }

func (id *UserID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseUserID(s)
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// Money is an amount in minor currency units (cents). Using integer cents
// keeps totals exact; prices never carry fractional cents.
type Money struct {
	cents int64
}

// NewMoney creates a Money value, rejecting negative amounts.
func NewMoney(cents int64) (Money, error) {
	if cents < 0 {
		return Money{}, ErrNegativePrice
	}
	return Money{cents: cents}, nil
}

// MustMoney creates a Money value and panics on a negative amount. Only for
// literals in tests and seed data.
func MustMoney(cents int64) Money {
	m, err := NewMoney(cents)
	if err != nil {
		panic(err)
	}
	return m
}

// Zero returns the zero amount.
func Zero() Money { return Money{} }

func (m Money) Cents() int64            { return m.cents }
func (m Money) IsZero() bool            { return m.cents == 0 }
func (m Money) Equals(other Money) bool { return m.cents == other.cents }

// MarshalJSON renders the amount as integer cents.
func (m Money) MarshalJSON() ([]byte, error) { return json.Marshal(m.cents) }

func (m *Money) UnmarshalJSON(data []byte) error {
	var cents int64
	if err := json.Unmarshal(data, &cents); err != nil {
		return err
	}
	parsed, err := NewMoney(cents)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Add returns the sum of two amounts.
func (m Money) Add(other Money) Money {
	return Money{cents: m.cents + other.cents}
}

// MultiplyBy returns the amount scaled by a non-negative quantity.
func (m Money) MultiplyBy(quantity int) Money {
	if quantity < 0 {
		quantity = 0
	}
	return Money{cents: m.cents * int64(quantity)}
}

// Version supports optimistic locking on aggregates.
type Version struct {
	value int
}

// NewVersion returns the initial version for a new aggregate.
func NewVersion() Version { return Version{value: 0} }

// ParseVersion reconstructs a version from persistence.
func ParseVersion(v int) Version { return Version{value: v} }

// Next returns the incremented version.
func (v Version) Next() Version { return Version{value: v.value + 1} }

func (v Version) Int() int                  { return v.value }
func (v Version) Equals(other Version) bool { return v.value == other.value }

func (v Version) MarshalJSON() ([]byte, error) { return json.Marshal(v.value) }

func (v *Version) UnmarshalJSON(data []byte) error {
	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*v = ParseVersion(n)
	return nil
}
