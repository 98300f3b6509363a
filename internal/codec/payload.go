// Package codec decodes Move JSON payloads into typed values.
package codec

import (
	"encoding/json"
	"reflect"
	"strconv"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/yanun0323/errors"

	"mirage-indexer/pkg/exception"
)

var unmarshalerType = reflect.TypeOf((*json.Unmarshaler)(nil)).Elem()

// Decode unmarshals payload into T and verifies that every json field of T
// is present. Fields tagged omitempty are optional.
func Decode[T any](payload []byte) (T, error) {
	var out T
	if err := sonic.Unmarshal(payload, &out); err != nil {
		return out, errors.Wrap(exception.ErrDecodePayload, err.Error())
	}

	var generic any
	if err := sonic.Unmarshal(payload, &generic); err != nil {
		return out, errors.Wrap(exception.ErrDecodePayload, err.Error())
	}
	if err := checkShape(reflect.TypeOf(out), generic, "$"); err != nil {
		return out, err
	}
	return out, nil
}

func checkShape(t reflect.Type, v any, path string) error {
	if t == nil {
		return nil
	}
	if reflect.PointerTo(t).Implements(unmarshalerType) || t.Implements(unmarshalerType) {
		return nil
	}

	switch t.Kind() {
	case reflect.Pointer:
		if v == nil {
			return nil
		}
		return checkShape(t.Elem(), v, path)
	case reflect.Struct:
		obj, ok := v.(map[string]any)
		if !ok {
			return errors.Wrap(exception.ErrDecodePayload, "expected object").With("path", path)
		}
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			if !f.IsExported() {
				continue
			}
			name, optional := jsonName(f)
			if name == "-" {
				continue
			}
			fv, present := obj[name]
			if !present || (fv == nil && f.Type.Kind() != reflect.Pointer) {
				if optional {
					continue
				}
				return errors.Wrap(exception.ErrDecodeMissingField, path+"."+name)
			}
			if err := checkShape(f.Type, fv, path+"."+name); err != nil {
				return err
			}
		}
		return nil
	case reflect.Slice:
		if t.Elem().Kind() == reflect.Uint8 {
			return nil
		}
		arr, ok := v.([]any)
		if !ok {
			if v == nil {
				return nil
			}
			return errors.Wrap(exception.ErrDecodePayload, "expected array").With("path", path)
		}
		for i, elem := range arr {
			if err := checkShape(t.Elem(), elem, path+"["+strconv.Itoa(i)+"]"); err != nil {
				return err
			}
		}
		return nil
	default:
		return nil
	}
}

func jsonName(f reflect.StructField) (string, bool) {
	tag, ok := f.Tag.Lookup("json")
	if !ok {
		return f.Name, false
	}
	name, opts, _ := strings.Cut(tag, ",")
	if name == "" {
		name = f.Name
	}
	return name, strings.Contains(opts, "omitempty")
}
