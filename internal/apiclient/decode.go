package apiclient

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	appErrors "github.com/noah-isme/school-portal/pkg/errors"
)

// DecodeList decodes a collection payload. The backend is inconsistent:
// the array may be the body itself or sit under one of several keys, which
// are tried in order. Anything else is a SHAPE_ERROR, never an empty list.
func DecodeList[T any](raw json.RawMessage, keys ...string) ([]T, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, shapeError("empty body", keys)
	}

	switch raw[0] {
	case '[':
		return decodeItems[T](raw, "")
	case '{':
	default:
		return nil, shapeError("body is neither an object nor an array", keys)
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, shapeError(err.Error(), keys)
	}
	for _, key := range keys {
		value, ok := envelope[key]
		if !ok {
			continue
		}
		value = bytes.TrimSpace(value)
		if len(value) == 0 || value[0] != '[' {
			return nil, appErrors.Clone(appErrors.ErrShape, fmt.Sprintf("field %q is not an array", key))
		}
		return decodeItems[T](value, key)
	}
	return nil, shapeError("no list field present", keys)
}

func decodeItems[T any](raw json.RawMessage, key string) ([]T, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrShape.Code, appErrors.ErrShape.Status, "list is not an array")
	}
	out := make([]T, 0, len(items))
	for i, item := range items {
		var v T
		if err := json.Unmarshal(item, &v); err != nil {
			where := fmt.Sprintf("item %d", i)
			if key != "" {
				where = fmt.Sprintf("%s[%d]", key, i)
			}
			return nil, appErrors.Wrap(err, appErrors.ErrShape.Code, appErrors.ErrShape.Status, "malformed "+where)
		}
		out = append(out, v)
	}
	return out, nil
}

// DecodeRecord extracts the record a mutation echoed under one of keys. A
// missing echo is reported with ok=false and no error; a present but
// malformed echo is a SHAPE_ERROR.
func DecodeRecord[T any](raw json.RawMessage, keys ...string) (T, bool, error) {
	var zero T
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '{' {
		return zero, false, nil
	}
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return zero, false, appErrors.Wrap(err, appErrors.ErrShape.Code, appErrors.ErrShape.Status, "malformed response")
	}
	for _, key := range keys {
		value, ok := envelope[key]
		if !ok {
			continue
		}
		value = bytes.TrimSpace(value)
		if len(value) == 0 || bytes.Equal(value, []byte("null")) {
			return zero, false, nil
		}
		if value[0] != '{' {
			return zero, false, appErrors.Clone(appErrors.ErrShape, fmt.Sprintf("field %q is not an object", key))
		}
		var v T
		if err := json.Unmarshal(value, &v); err != nil {
			return zero, false, appErrors.Wrap(err, appErrors.ErrShape.Code, appErrors.ErrShape.Status, fmt.Sprintf("malformed %s", key))
		}
		return v, true, nil
	}
	return zero, false, nil
}

// DecodeObject decodes a whole-body object such as a login reply.
func DecodeObject[T any](raw json.RawMessage) (T, error) {
	var v T
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '{' {
		return v, appErrors.Clone(appErrors.ErrShape, "expected a JSON object")
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		return v, appErrors.Wrap(err, appErrors.ErrShape.Code, appErrors.ErrShape.Status, "malformed response")
	}
	return v, nil
}

func shapeError(reason string, keys []string) error {
	if len(keys) == 0 {
		return appErrors.Clone(appErrors.ErrShape, "unexpected list payload: "+reason)
	}
	return appErrors.Clone(appErrors.ErrShape, fmt.Sprintf("unexpected list payload (%s); expected an array or one of: %s", reason, strings.Join(keys, ", ")))
}
