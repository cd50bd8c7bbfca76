// pkg/util/json.go
// Copyright(c) 2024-2025 geoscope contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package util

import (
	"encoding/json"
	"fmt"
	"reflect"
	"slices"
	"strings"
)

///////////////////////////////////////////////////////////////////////////
// JSON

// UnmarshalJSON unmarshals the bytes into the given type but goes through
// some efforts to return useful error messages when the JSON is invalid.
func UnmarshalJSON[T any](b []byte, out *T) error {
	err := json.Unmarshal(b, out)
	if err == nil {
		return nil
	}

	decodeOffset := func(offset int64) (line, char int) {
		line, char = 1, 1
		for i := 0; i < int(offset) && i < len(b); i++ {
			if b[i] == '\n' {
				line++
				char = 1
			} else {
				char++
			}
		}
		return
	}

	switch jerr := err.(type) {
	case *json.SyntaxError:
		line, char := decodeOffset(jerr.Offset)
		return fmt.Errorf("Error at line %d, character %d: %w", line, char, jerr)

	case *json.UnmarshalTypeError:
		line, char := decodeOffset(jerr.Offset)
		return fmt.Errorf("Error at line %d, character %d: %s value for %s.%s invalid for type %s",
			line, char, jerr.Value, jerr.Struct, jerr.Field, jerr.Type.String())

	default:
		return err
	}
}

// CheckJSON checks whether the provided JSON is syntactically valid and
// then typechecks it with respect to the provided type T, reporting
// unknown object keys (usually misspellings) and mismatched value types
// to e.
func CheckJSON[T any](contents []byte, e *ErrorLogger) {
	defer e.CheckDepth(e.CurrentDepth())

	var items any
	if err := UnmarshalJSON(contents, &items); err != nil {
		e.Error(err)
		return
	}

	ty := reflect.TypeOf((*T)(nil)).Elem()
	typeCheckJSON(items, ty, e)
}

func typeCheckJSON(v any, ty reflect.Type, e *ErrorLogger) {
	for ty.Kind() == reflect.Pointer {
		ty = ty.Elem()
	}
	if v == nil {
		return
	}

	mismatch := func() {
		e.ErrorString("%s value provided where %s was expected", reflect.TypeOf(v), ty)
	}

	switch ty.Kind() {
	case reflect.Bool:
		if _, ok := v.(bool); !ok {
			mismatch()
		}

	case reflect.String:
		if _, ok := v.(string); !ok {
			mismatch()
		}

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		if _, ok := v.(float64); !ok {
			mismatch()
		}

	case reflect.Array, reflect.Slice:
		if array, ok := v.([]any); ok {
			for i, item := range array {
				e.Push(fmt.Sprintf("[%d]", i))
				typeCheckJSON(item, ty.Elem(), e)
				e.Pop()
			}
		} else {
			mismatch()
		}

	case reflect.Map:
		if m, ok := v.(map[string]any); ok {
			for _, k := range SortedMapKeys(m) {
				e.Push(k)
				typeCheckJSON(m[k], ty.Elem(), e)
				e.Pop()
			}
		} else {
			mismatch()
		}

	case reflect.Struct:
		items, ok := v.(map[string]any)
		if !ok {
			mismatch()
			return
		}
		for _, item := range SortedMapKeys(items) {
			idx := slices.IndexFunc(reflect.VisibleFields(ty), func(f reflect.StructField) bool {
				j, ok := f.Tag.Lookup("json")
				return ok && strings.Split(j, ",")[0] == item
			})
			if idx == -1 {
				e.ErrorString("The entry %q is not an expected JSON object. Is it misspelled?", item)
				continue
			}
			e.Push(item)
			typeCheckJSON(items[item], reflect.VisibleFields(ty)[idx].Type, e)
			e.Pop()
		}
	}
}
