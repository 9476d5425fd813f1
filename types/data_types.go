package types

import (
	"fmt"

	"github.com/goccy/go-json"
)

type DataType string

const (
	Null    DataType = "null"
	Integer DataType = "integer"
	Number  DataType = "number"
	String  DataType = "string"
	Boolean DataType = "boolean"
	Object  DataType = "object"
	Array   DataType = "array"
)

const DateTimeFormat = "date-time"

// Record is a single row of a stream after transformation
type Record map[string]any

func (r Record) GetStringifiedValue(key string) (string, error) {
	value := r[key]
	switch value.(type) {
	case nil:
		return "", nil
	case map[string]any, []any:
		s, err := json.Marshal(value)
		return string(s), err
	default:
		return fmt.Sprintf("%v", value), nil
	}
}

// TypeList accepts both `"type": "string"` and `"type": ["null", "string"]`
type TypeList []DataType

func (t *TypeList) UnmarshalJSON(data []byte) error {
	var single DataType
	if err := json.Unmarshal(data, &single); err == nil {
		*t = TypeList{single}
		return nil
	}

	var list []DataType
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("invalid schema type %s: %s", string(data), err)
	}
	*t = list
	return nil
}

func (t TypeList) Has(dt DataType) bool {
	for _, one := range t {
		if one == dt {
			return true
		}
	}
	return false
}

func (t TypeList) Nullable() bool {
	return t.Has(Null)
}
