package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"

	"guide-exam/internal/domain"
)

// StringSlice stores a list of option keys as a JSON array string
type StringSlice []string

// Value implements the driver.Valuer interface
func (s StringSlice) Value() (driver.Value, error) {
	if s == nil {
		// nil is stored as an empty array so the column can stay NOT NULL
		return "[]", nil
	}
	jsonData, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return string(jsonData), nil
}

// Scan implements the sql.Scanner interface
func (s *StringSlice) Scan(value interface{}) error {
	raw, err := scanBytes("StringSlice", value)
	if err != nil {
		return err
	}
	if raw == nil {
		*s = StringSlice{}
		return nil
	}
	return json.Unmarshal(raw, s)
}

// OptionList stores the ordered options of a question as JSON
type OptionList []domain.Option

func (o OptionList) Value() (driver.Value, error) {
	if o == nil {
		return "[]", nil
	}
	jsonData, err := json.Marshal(o)
	if err != nil {
		return nil, err
	}
	return string(jsonData), nil
}

func (o *OptionList) Scan(value interface{}) error {
	raw, err := scanBytes("OptionList", value)
	if err != nil {
		return err
	}
	if raw == nil {
		*o = OptionList{}
		return nil
	}
	return json.Unmarshal(raw, o)
}

// scanBytes returns nil for NULL, empty and "null" column values.
func scanBytes(typeName string, value interface{}) ([]byte, error) {
	var raw []byte
	switch v := value.(type) {
	case nil:
		return nil, nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return nil, errors.New(typeName + " Scan: unsupported type " + fmt.Sprintf("%T", value))
	}
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	return raw, nil
}
