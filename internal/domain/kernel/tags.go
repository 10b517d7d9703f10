package kernel

import (
	"database/sql/driver"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgtype"
)

// Tags maps to a postgres text[] column. Order and duplicates are preserved.
type Tags []string

func (t Tags) Value() (driver.Value, error) {
	if len(t) == 0 {
		return "{}", nil
	}
	// pgtype.Map is not safe for concurrent use.
	m := pgtype.NewMap()
	buf, err := m.Encode(pgtype.TextArrayOID, pgtype.TextFormatCode, []string(t), nil)
	if err != nil {
		return nil, fmt.Errorf("encode tags: %w", err)
	}
	return string(buf), nil
}

func (t *Tags) Scan(src interface{}) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*t = Tags{}
		return nil
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	case []string:
		*t = append(Tags{}, v...)
		return nil
	default:
		return fmt.Errorf("scan tags: unsupported type %T", src)
	}
	var out []string
	if err := pgtype.NewMap().Scan(pgtype.TextArrayOID, pgtype.TextFormatCode, raw, &out); err != nil {
		return fmt.Errorf("scan tags: %w", err)
	}
	if out == nil {
		out = []string{}
	}
	*t = out
	return nil
}

// Visible splits tags into the first n and a count of the rest.
func (t Tags) Visible(n int) (Tags, int) {
	if n < 0 {
		n = 0
	}
	if len(t) <= n {
		return t, 0
	}
	return t[:n], len(t) - n
}

func (t Tags) Join() string {
	return strings.Join(t, ", ")
}
