/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package json holds helpers for JSON-LD objects decoded into maps.
package json

import (
	"encoding/json"
	"errors"

	"github.com/samber/lo"
)

// ErrNotObject is returned by ToMap when the input is not a JSON object.
var ErrNotObject = errors.New("not a JSON object")

// CopyExcept returns a shallow copy of obj without the given fields.
func CopyExcept(obj map[string]interface{}, flds ...string) map[string]interface{} {
	if obj == nil {
		return nil
	}

	return lo.OmitByKeys(obj, flds)
}

// ToMap converts bytes, a string or any marshallable value to a JSON object.
func ToMap(v interface{}) (map[string]interface{}, error) {
	var (
		b   []byte
		err error
	)

	switch cv := v.(type) {
	case []byte:
		b = cv
	case json.RawMessage:
		b = cv
	case string:
		b = []byte(cv)
	default:
		b, err = json.Marshal(v)
		if err != nil {
			return nil, err
		}
	}

	var m map[string]interface{}

	if err = json.Unmarshal(b, &m); err != nil {
		return nil, err
	}

	if m == nil {
		return nil, ErrNotObject
	}

	return m, nil
}
