package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strconv"
)

var errBadDestination = errors.New("session: destination must be a non-nil pointer")

// encode prepares v for SET. Integers go to redis as native numbers so
// INCR and friends keep working; everything else is JSON.
func encode(v any) (any, error) {
	switch v.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return v, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("session: encode %T: %w", v, err)
	}
	return b, nil
}

// decode fills dst from a raw value. Integer destinations are parsed as
// decimal first; *any receives an int64 when the value is a plain integer.
func decode(raw []byte, dst any) error {
	rv := reflect.ValueOf(dst)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return errBadDestination
	}
	elem := rv.Elem()

	switch elem.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(string(raw), 10, 64)
		if err != nil || elem.OverflowInt(n) {
			return fmt.Errorf("session: %q is not a %s", raw, elem.Type())
		}
		elem.SetInt(n)
		return nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(string(raw), 10, 64)
		if err != nil || elem.OverflowUint(n) {
			return fmt.Errorf("session: %q is not a %s", raw, elem.Type())
		}
		elem.SetUint(n)
		return nil
	case reflect.Interface:
		if n, err := strconv.ParseInt(string(raw), 10, 64); err == nil {
			elem.Set(reflect.ValueOf(n))
			return nil
		}
	}

	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("session: decode into %T: %w", dst, err)
	}
	return nil
}
