package market

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Snapshot is one row of exchange data keyed by lowercase raw field name.
// Values are string, decimal.Decimal or nil (an ISS null).
// The market layer only reads snapshots.
type Snapshot map[string]any

// Field returns the raw value stored under name. A field that is present with
// a nil value is not an error.
func (s Snapshot) Field(name string) (any, error) {
	value, ok := s[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingField, name)
	}
	return value, nil
}

// String renders the field as text; nil becomes "".
func (s Snapshot) String(name string) (string, error) {
	value, err := s.Field(name)
	if err != nil {
		return "", err
	}
	switch v := value.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case decimal.Decimal:
		return v.String(), nil
	case fmt.Stringer:
		return v.String(), nil
	default:
		return fmt.Sprint(v), nil
	}
}
