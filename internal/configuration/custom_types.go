package configuration

import (
	"encoding/json"
	"reflect"
	"strconv"

	"github.com/mitchellh/mapstructure"
)

// DefaultTrueBool is an instance flag that is true unless the configuration
// explicitly sets it.
type DefaultTrueBool struct {
	Value   bool
	Present bool
}

func NewDefaultTrueBool(value bool) DefaultTrueBool {
	return DefaultTrueBool{Value: value, Present: true}
}

func (b DefaultTrueBool) Get() bool {
	if !b.Present {
		return true
	}
	return b.Value
}

func (b DefaultTrueBool) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.Get())
}

// DefaultTrueBoolHookFunc decodes bool and bool-like string values into a DefaultTrueBool.
// Keys missing from the configuration never reach the hook and keep the zero value.
func DefaultTrueBoolHookFunc() mapstructure.DecodeHookFuncType {
	return func(f reflect.Type, t reflect.Type, data interface{}) (interface{}, error) {
		if t != reflect.TypeOf(DefaultTrueBool{}) {
			return data, nil
		}

		switch v := data.(type) {
		case bool:
			return NewDefaultTrueBool(v), nil
		case string:
			parsed, err := strconv.ParseBool(v)
			if err != nil {
				return data, nil
			}
			return NewDefaultTrueBool(parsed), nil
		default:
			return data, nil
		}
	}
}
