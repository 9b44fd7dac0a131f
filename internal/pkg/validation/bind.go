package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/ManuelReschke/EnergyLedger/internal/pkg/apperror"
)

// BindJSON decodes a JSON object into the struct pointed to by out and
// validates it. Fields are decoded one at a time: a field with the wrong
// type is reported and left at its zero value, and the remaining fields
// are still decoded and checked. An empty body decodes as {}.
func BindJSON(body []byte, out any) error {
	var c Collector
	if err := decodeFields(body, out, &c); err != nil {
		return err
	}
	if err := c.Merge(Validate(out)); err != nil {
		return err
	}
	return c.Err()
}

func decodeFields(body []byte, out any, c *Collector) error {
	rv := reflect.ValueOf(out)
	if rv.Kind() != reflect.Pointer || rv.Elem().Kind() != reflect.Struct {
		return apperror.Internal("bind target must be a struct pointer", nil)
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return FromBindError(err)
	}

	v := rv.Elem()
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		key := jsonKey(sf)
		if !sf.IsExported() || key == "" {
			continue
		}
		msg, ok := lookup(raw, key)
		if !ok {
			continue
		}
		target := reflect.New(sf.Type)
		if err := json.Unmarshal(msg, target.Interface()); err != nil {
			c.Add(fieldName(sf), "type", typeMessage(fieldName(sf), sf.Type, err))
			continue
		}
		v.Field(i).Set(target.Elem())
	}
	return nil
}

func typeMessage(name string, want reflect.Type, err error) string {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Type != nil && typeErr.Field != "" {
		return fmt.Sprintf("%s contains a value that is not of type %s", name, jsonType(typeErr.Type))
	}
	return fmt.Sprintf("%s must be of type %s", name, jsonType(want))
}

func jsonKey(f reflect.StructField) string {
	name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
	switch name {
	case "-":
		return ""
	case "":
		return f.Name
	}
	return name
}

// lookup prefers an exact key and falls back to a case-insensitive match
// like encoding/json does.
func lookup(raw map[string]json.RawMessage, key string) (json.RawMessage, bool) {
	if msg, ok := raw[key]; ok {
		return msg, true
	}
	for k, msg := range raw {
		if strings.EqualFold(k, key) {
			return msg, true
		}
	}
	return nil, false
}

func jsonType(t reflect.Type) string {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "integer"
	case reflect.Float32, reflect.Float64:
		return "number"
	case reflect.Bool:
		return "boolean"
	case reflect.String:
		return "string"
	case reflect.Slice, reflect.Array:
		return "array"
	case reflect.Map, reflect.Struct:
		return "object"
	}
	return t.String()
}
