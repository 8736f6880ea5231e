package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

var errUnknownShape = errors.New("unrecognised list response")

// Page is a normalized list response. Paged is false when the backend
// returned a bare array.
type Page[T any] struct {
	Items         []T
	Number        int
	TotalPages    int
	TotalElements int
	Size          int
	Paged         bool
}

type springPage[T any] struct {
	Content       []T `json:"content"`
	Number        int `json:"number"`
	TotalPages    int `json:"totalPages"`
	TotalElements int `json:"totalElements"`
	Size          int `json:"size"`
}

// decodeList accepts a Spring page, a bare array, or either of those
// wrapped one level in {"data": ...}.
func decodeList[T any](raw []byte) (Page[T], error) {
	return decodeListDepth[T](raw, 0)
}

func decodeListDepth[T any](raw []byte, depth int) (Page[T], error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return Page[T]{Items: []T{}}, nil
	}

	if raw[0] == '[' {
		var items []T
		if err := json.Unmarshal(raw, &items); err != nil {
			return Page[T]{}, err
		}
		if items == nil {
			items = []T{}
		}
		return Page[T]{Items: items, TotalPages: 1, TotalElements: len(items), Size: len(items)}, nil
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return Page[T]{}, err
	}

	if _, ok := obj["content"]; ok {
		var sp springPage[T]
		if err := json.Unmarshal(raw, &sp); err != nil {
			return Page[T]{}, err
		}
		if sp.Content == nil {
			sp.Content = []T{}
		}
		return Page[T]{
			Items:         sp.Content,
			Number:        sp.Number,
			TotalPages:    sp.TotalPages,
			TotalElements: sp.TotalElements,
			Size:          sp.Size,
			Paged:         true,
		}, nil
	}

	if data, ok := obj["data"]; ok && depth == 0 {
		return decodeListDepth[T](data, depth+1)
	}

	return Page[T]{}, errUnknownShape
}

// decodeObject decodes a single resource, unwrapping a {"data": ...}
// envelope when present.
func decodeObject(raw []byte, out any) error {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err == nil {
		if data, ok := obj["data"]; ok && !bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
			raw = data
		}
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %T: %w", out, err)
	}
	return nil
}
