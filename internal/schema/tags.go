package schema

import (
	"encoding/json"
	"fmt"
)

// EncodeTags serializes a tag list to the JSON array text stored in the
// local store's TEXT column. A nil slice encodes as the empty list.
func EncodeTags(tags []string) (string, error) {
	if tags == nil {
		tags = []string{}
	}
	data, err := json.Marshal(tags)
	if err != nil {
		return "", fmt.Errorf("failed to marshal tags: %w", err)
	}
	return string(data), nil
}

// DecodeTags converts a stored tag value back to a tag list.
//
// The two stores encode tags differently: the local store keeps a JSON
// array in a TEXT column, while the remote store returns a native
// structured column. DecodeTags accepts both, plus absence:
//
//   - nil → empty list
//   - []string → returned as-is
//   - []any of strings → converted (generic row scans)
//   - string / []byte → parsed as a JSON array; "" and "null" mean empty
func DecodeTags(v any) ([]string, error) {
	switch t := v.(type) {
	case nil:
		return []string{}, nil
	case []string:
		if t == nil {
			return []string{}, nil
		}
		return t, nil
	case []any:
		tags := make([]string, 0, len(t))
		for _, e := range t {
			s, ok := e.(string)
			if !ok {
				return nil, fmt.Errorf("tag element is %T, want string", e)
			}
			tags = append(tags, s)
		}
		return tags, nil
	case []byte:
		return decodeTagsJSON(string(t))
	case string:
		return decodeTagsJSON(t)
	default:
		return nil, fmt.Errorf("cannot decode tags from %T", v)
	}
}

func decodeTagsJSON(s string) ([]string, error) {
	if s == "" || s == "null" {
		return []string{}, nil
	}
	var tags []string
	if err := json.Unmarshal([]byte(s), &tags); err != nil {
		return nil, fmt.Errorf("failed to unmarshal tags: %w", err)
	}
	if tags == nil {
		tags = []string{}
	}
	return tags, nil
}
