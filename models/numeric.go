package models

import (
	"database/sql/driver"
	"fmt"
	"math/big"
	"strings"
)

// Numeric is a 1e18-scaled fixed-point integer column. It is stored as a
// decimal string so that values wider than 64 bits survive the round trip
// through any SQL driver, and it marshals to JSON as a quoted decimal string
// for the same reason.
type Numeric struct {
	big.Int
}

// NewNumeric copies v into a Numeric. A nil v yields zero.
func NewNumeric(v *big.Int) Numeric {
	var n Numeric
	if v != nil {
		n.Int.Set(v)
	}
	return n
}

// Big returns a copy of the underlying integer, safe to mutate.
func (n *Numeric) Big() *big.Int {
	return new(big.Int).Set(&n.Int)
}

// GormDataType tells gorm to create a text column.
func (Numeric) GormDataType() string {
	return "text"
}

// Value implements driver.Valuer.
func (n Numeric) Value() (driver.Value, error) {
	return n.Int.String(), nil
}

// Scan implements sql.Scanner.
func (n *Numeric) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		n.Int.SetInt64(0)
		return nil
	case int64:
		n.Int.SetInt64(v)
		return nil
	case string:
		return n.setString(v)
	case []byte:
		return n.setString(string(v))
	default:
		return fmt.Errorf("numeric: cannot scan %T", src)
	}
}

// MarshalJSON implements json.Marshaler.
func (n Numeric) MarshalJSON() ([]byte, error) {
	return []byte(`"` + n.Int.String() + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler, accepting both quoted and bare
// decimal integers.
func (n *Numeric) UnmarshalJSON(b []byte) error {
	return n.setString(strings.Trim(string(b), `"`))
}

func (n *Numeric) setString(s string) error {
	if s == "" {
		n.Int.SetInt64(0)
		return nil
	}
	if _, ok := n.Int.SetString(s, 10); !ok {
		return fmt.Errorf("numeric: invalid decimal %q", s)
	}
	return nil
}
