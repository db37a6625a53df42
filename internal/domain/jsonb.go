package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// BatchDocuments is the ordered list of document references owned by a batch,
// stored as a jsonb column.
type BatchDocuments []BatchDocument

// Value implements driver.Valuer.
func (d BatchDocuments) Value() (driver.Value, error) {
	if d == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(d)
}

// Scan implements sql.Scanner.
func (d *BatchDocuments) Scan(src interface{}) error {
	return scanJSON(src, d)
}

// BatchErrors is the per-document error list of a batch, stored as a jsonb
// column.
type BatchErrors []BatchError

// Value implements driver.Valuer.
func (e BatchErrors) Value() (driver.Value, error) {
	if e == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(e)
}

// Scan implements sql.Scanner.
func (e *BatchErrors) Scan(src interface{}) error {
	return scanJSON(src, e)
}

func scanJSON(src, dst interface{}) error {
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		return json.Unmarshal(v, dst)
	case string:
		return json.Unmarshal([]byte(v), dst)
	default:
		return fmt.Errorf("unsupported jsonb source type %T", src)
	}
}
