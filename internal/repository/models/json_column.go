package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// StringSlice stores a []string as a JSON array in a CLOB column.
type StringSlice []string

// Value implements the driver.Valuer interface
func (s StringSlice) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(s))
	if err != nil {
		return nil, err
	}
	return string(b), nil // go-ora binds string to CLOB, not []byte
}

// Scan implements the sql.Scanner interface
func (s *StringSlice) Scan(value interface{}) error {
	var raw []byte
	switch v := value.(type) {
	case nil:
		*s = StringSlice{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("StringSlice Scan: unsupported type %T", value)
	}
	if len(raw) == 0 || string(raw) == "null" {
		*s = StringSlice{}
		return nil
	}
	return json.Unmarshal(raw, (*[]string)(s))
}

// JSONText is a JSON document kept in a CLOB column. Repositories marshal into
// it before binding so the driver always sees a plain string.
type JSONText string

// MarshalJSONText encodes v into a JSONText.
func MarshalJSONText(v any) (JSONText, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return JSONText(b), nil
}

// Unmarshal decodes the document into v. An empty column leaves v untouched.
func (j JSONText) Unmarshal(v any) error {
	if j == "" || j == "null" {
		return nil
	}
	return json.Unmarshal([]byte(j), v)
}

// Scan implements the sql.Scanner interface
func (j *JSONText) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*j = ""
	case []byte:
		*j = JSONText(v)
	case string:
		*j = JSONText(v)
	default:
		return fmt.Errorf("JSONText Scan: unsupported type %T", value)
	}
	return nil
}
