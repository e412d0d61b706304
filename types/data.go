package types

import (
	"encoding/json"

	"github.com/juju/errors"
	"github.com/spf13/cast"
)

// Data is the shared execution context. The executor seeds it with the
// caller's initial values, and after each batch settles it stores every
// node's result under the node ID. Node units read it, never write it.
type Data map[string]any

func (d *Data) Get(key string) (any, bool) {
	v, exists := (*d)[key]
	return v, exists
}

func (d *Data) GetString(key string) (string, bool) {
	v, exists := d.Get(key)
	return cast.ToString(v), exists
}

func (d *Data) GetInt(key string) (int, bool) {
	v, exists := d.Get(key)
	return cast.ToInt(v), exists
}

func (d *Data) GetBool(key string) (bool, bool) {
	v, exists := d.Get(key)
	return cast.ToBool(v), exists
}

func (d *Data) GetFloat64(key string) (float64, bool) {
	v, exists := d.Get(key)
	return cast.ToFloat64(v), exists
}

func (d *Data) GetStringSlice(key string) ([]string, bool) {
	v, exists := d.Get(key)
	return cast.ToStringSlice(v), exists
}

func (d *Data) GetStruct(key string, s any) error {
	v, exists := d.Get(key)
	if !exists {
		return errors.NotFound
	}
	b, err := json.Marshal(v)
	if err != nil {
		return errors.Wrap(err, errors.New("marshal failed"))
	}
	return json.Unmarshal(b, s)
}

// GetError returns the error sentinel stored for a failed upstream node,
// if any. Downstream units use it to notice that a dependency failed.
func (d *Data) GetError(key string) (string, bool) {
	v, exists := d.Get(key)
	if !exists {
		return "", false
	}
	sentinel, ok := v.(Data)
	if !ok {
		return "", false
	}
	msg, failed := sentinel.Get("error")
	if !failed {
		return "", false
	}
	return cast.ToString(msg), true
}

func (d *Data) Set(key string, value any) {
	(*d)[key] = value
}

// ErrorSentinel is the value the executor stores in the context for a
// failed node in place of its result.
func ErrorSentinel(err error) Data {
	return Data{"error": err.Error()}
}
