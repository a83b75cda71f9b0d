package qloo

import (
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
)

// HasQueryKey reports whether any parameter key contains ".query". Such
// descriptors are sent as a nested JSON body.
func HasQueryKey(params map[string]any) bool {
	for k := range params {
		if strings.Contains(k, ".query") {
			return true
		}
	}
	return false
}

// NestParams turns dotted keys into nested objects:
// {"a.b.c": 1} -> {"a": {"b": {"c": 1}}}.
//
// Keys are processed in sorted order. When a key would need to descend
// through a path segment that already holds a scalar (or would overwrite an
// object with a scalar), the later key is dropped and logged.
func NestParams(params map[string]any) map[string]any {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make(map[string]any, len(params))
	for _, key := range keys {
		if !setPath(out, strings.Split(key, "."), params[key]) {
			log.Warn().Str("key", key).Msg("Dropping parameter that conflicts with an earlier key")
		}
	}
	return out
}

func setPath(root map[string]any, parts []string, value any) bool {
	cur := root
	for i, part := range parts {
		last := i == len(parts)-1
		existing, ok := cur[part]
		if last {
			if ok {
				if _, isMap := existing.(map[string]any); isMap {
					return false
				}
			}
			cur[part] = value
			return true
		}
		if !ok {
			next := make(map[string]any)
			cur[part] = next
			cur = next
			continue
		}
		next, isMap := existing.(map[string]any)
		if !isMap {
			return false
		}
		cur = next
	}
	return true
}

// FlattenQuery encodes parameters for a GET request. Keys are used verbatim;
// arrays become repeated keys; nil values are skipped; nested objects are
// JSON-encoded.
func FlattenQuery(params map[string]any) url.Values {
	q := url.Values{}
	for key, v := range params {
		switch val := v.(type) {
		case nil:
		case []any:
			for _, item := range val {
				q.Add(key, formatScalar(item))
			}
		case []string:
			for _, item := range val {
				q.Add(key, item)
			}
		default:
			q.Add(key, formatScalar(val))
		}
	}
	return q
}

func formatScalar(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case bool:
		return strconv.FormatBool(val)
	case json.Number:
		return val.String()
	case map[string]any:
		b, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(b)
	default:
		return fmt.Sprint(val)
	}
}
