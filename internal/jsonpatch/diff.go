// Package jsonpatch computes RFC 6902 patches between JSON documents.
package jsonpatch

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/tbcolby/settlement-game/internal/model"
)

// Between normalizes two Go values through their JSON encoding and returns
// the patch that turns before into after.
func Between(before, after any) ([]model.PatchOp, error) {
	a, err := normalize(before)
	if err != nil {
		return nil, fmt.Errorf("normalize before: %w", err)
	}
	b, err := normalize(after)
	if err != nil {
		return nil, fmt.Errorf("normalize after: %w", err)
	}
	return Diff(a, b, ""), nil
}

func normalize(v any) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Diff computes the patch that transforms a into b. Both must be the result
// of decoding JSON into any. Object keys are visited in sorted order so the
// output is stable. Path is "" for the document root.
func Diff(a, b any, path string) []model.PatchOp {
	if a == nil && b == nil {
		return nil
	}
	if a == nil || b == nil {
		return []model.PatchOp{replaceOp(path, b)}
	}

	aMap, aIsMap := a.(map[string]any)
	bMap, bIsMap := b.(map[string]any)
	if aIsMap && bIsMap {
		return diffObjects(aMap, bMap, path)
	}

	aArr, aIsArr := a.([]any)
	bArr, bIsArr := b.([]any)
	if aIsArr && bIsArr {
		return diffArrays(aArr, bArr, path)
	}

	if aIsMap || bIsMap || aIsArr || bIsArr || a != b {
		return []model.PatchOp{replaceOp(path, b)}
	}
	return nil
}

func diffObjects(a, b map[string]any, path string) []model.PatchOp {
	var ops []model.PatchOp

	for _, k := range sortedKeys(a) {
		if _, ok := b[k]; !ok {
			ops = append(ops, removeOp(path+"/"+escapeKey(k)))
		}
	}

	for _, k := range sortedKeys(b) {
		childPath := path + "/" + escapeKey(k)
		av, inA := a[k]
		if !inA {
			ops = append(ops, addOp(childPath, b[k]))
			continue
		}
		ops = append(ops, Diff(av, b[k], childPath)...)
	}
	return ops
}

func diffArrays(a, b []any, path string) []model.PatchOp {
	var ops []model.PatchOp
	common := min(len(a), len(b))

	for i := 0; i < common; i++ {
		ops = append(ops, Diff(a[i], b[i], path+"/"+strconv.Itoa(i))...)
	}
	// Removals run in reverse so earlier indices stay valid.
	for i := len(a) - 1; i >= common; i-- {
		ops = append(ops, removeOp(path+"/"+strconv.Itoa(i)))
	}
	for i := common; i < len(b); i++ {
		ops = append(ops, addOp(path+"/"+strconv.Itoa(i), b[i]))
	}
	return ops
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func replaceOp(path string, value any) model.PatchOp {
	return model.PatchOp{Op: "replace", Path: path, Value: value}
}

func addOp(path string, value any) model.PatchOp {
	return model.PatchOp{Op: "add", Path: path, Value: value}
}

func removeOp(path string) model.PatchOp {
	return model.PatchOp{Op: "remove", Path: path}
}

// escapeKey escapes a JSON Pointer token per RFC 6901.
func escapeKey(s string) string {
	s = strings.ReplaceAll(s, "~", "~0")
	s = strings.ReplaceAll(s, "/", "~1")
	return s
}
