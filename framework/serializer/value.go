package serializer

import (
	"fmt"
	"strconv"

	"github.com/km-arc/go-annotated-container/framework/apperrors"
	"github.com/km-arc/go-annotated-container/framework/definition"
)

// Value is the wire shape of an inject value. Scalars keep their Go kind
// and exact text, so nothing passes through a JSON number:
//
//	{"kind":"int64","text":"9007199254740993"}
//	{"kind":"list","items":[{"kind":"string","text":"a"}]}
//	{"kind":"map","entries":{"port":{"kind":"int","text":"587"}}}
//
// Nil marks a nil list or map, as opposed to an empty one.
type Value struct {
	Kind    string           `json:"kind"`
	Text    string           `json:"text,omitempty"`
	Items   []Value          `json:"items,omitempty"`
	Entries map[string]Value `json:"entries,omitempty"`
	Nil     bool             `json:"nil,omitempty"`
}

// Inject is the wire shape of an InjectDefinition.
type Inject struct {
	Class    string          `json:"class"`
	Method   string          `json:"method,omitempty"`
	Name     string          `json:"name"`
	Type     definition.Type `json:"type"`
	Value    Value           `json:"value"`
	Profiles []string        `json:"profiles"`
	Store    string          `json:"store,omitempty"`
}

func toInject(i definition.InjectDefinition) (Inject, error) {
	v, err := EncodeValue(i.Value)
	if err != nil {
		return Inject{}, apperrors.New(apperrors.ErrEncode,
			fmt.Sprintf("inject %s::%s($%s)", i.Class, i.Method, i.Name), err)
	}
	return Inject{
		Class:    i.Class,
		Method:   i.Method,
		Name:     i.Name,
		Type:     i.Type,
		Value:    v,
		Profiles: i.Profiles,
		Store:    i.Store,
	}, nil
}

func (in Inject) definition() (definition.InjectDefinition, error) {
	v, err := in.Value.Decode()
	if err != nil {
		return definition.InjectDefinition{}, apperrors.New(apperrors.ErrDecode,
			fmt.Sprintf("inject %s::%s($%s)", in.Class, in.Method, in.Name), err)
	}
	return definition.InjectDefinition{
		Class:    in.Class,
		Method:   in.Method,
		Name:     in.Name,
		Type:     in.Type,
		Value:    v,
		Profiles: in.Profiles,
		Store:    in.Store,
	}, nil
}

// EncodeValue wraps v. Supported: nil, bool, string, every int, uint and
// float kind, []any and map[string]any of supported values.
func EncodeValue(v any) (Value, error) {
	switch x := v.(type) {
	case nil:
		return Value{Kind: "null"}, nil
	case bool:
		return Value{Kind: "bool", Text: strconv.FormatBool(x)}, nil
	case string:
		return Value{Kind: "string", Text: x}, nil
	case int:
		return Value{Kind: "int", Text: strconv.FormatInt(int64(x), 10)}, nil
	case int8:
		return Value{Kind: "int8", Text: strconv.FormatInt(int64(x), 10)}, nil
	case int16:
		return Value{Kind: "int16", Text: strconv.FormatInt(int64(x), 10)}, nil
	case int32:
		return Value{Kind: "int32", Text: strconv.FormatInt(int64(x), 10)}, nil
	case int64:
		return Value{Kind: "int64", Text: strconv.FormatInt(x, 10)}, nil
	case uint:
		return Value{Kind: "uint", Text: strconv.FormatUint(uint64(x), 10)}, nil
	case uint8:
		return Value{Kind: "uint8", Text: strconv.FormatUint(uint64(x), 10)}, nil
	case uint16:
		return Value{Kind: "uint16", Text: strconv.FormatUint(uint64(x), 10)}, nil
	case uint32:
		return Value{Kind: "uint32", Text: strconv.FormatUint(uint64(x), 10)}, nil
	case uint64:
		return Value{Kind: "uint64", Text: strconv.FormatUint(x, 10)}, nil
	case float32:
		return Value{Kind: "float32", Text: strconv.FormatFloat(float64(x), 'g', -1, 32)}, nil
	case float64:
		return Value{Kind: "float64", Text: strconv.FormatFloat(x, 'g', -1, 64)}, nil
	case []any:
		if x == nil {
			return Value{Kind: "list", Nil: true}, nil
		}
		items := make([]Value, len(x))
		for i, item := range x {
			enc, err := EncodeValue(item)
			if err != nil {
				return Value{}, fmt.Errorf("[%d]: %w", i, err)
			}
			items[i] = enc
		}
		return Value{Kind: "list", Items: items}, nil
	case map[string]any:
		if x == nil {
			return Value{Kind: "map", Nil: true}, nil
		}
		entries := make(map[string]Value, len(x))
		for k, item := range x {
			enc, err := EncodeValue(item)
			if err != nil {
				return Value{}, fmt.Errorf("[%q]: %w", k, err)
			}
			entries[k] = enc
		}
		return Value{Kind: "map", Entries: entries}, nil
	default:
		return Value{}, fmt.Errorf("unsupported value type %T", v)
	}
}

// Decode restores the value EncodeValue wrapped, with its original kind.
func (v Value) Decode() (any, error) {
	switch v.Kind {
	case "null":
		return nil, nil
	case "bool":
		return strconv.ParseBool(v.Text)
	case "string":
		return v.Text, nil
	case "int":
		n, err := strconv.ParseInt(v.Text, 10, strconv.IntSize)
		return int(n), err
	case "int8":
		n, err := strconv.ParseInt(v.Text, 10, 8)
		return int8(n), err
	case "int16":
		n, err := strconv.ParseInt(v.Text, 10, 16)
		return int16(n), err
	case "int32":
		n, err := strconv.ParseInt(v.Text, 10, 32)
		return int32(n), err
	case "int64":
		return strconv.ParseInt(v.Text, 10, 64)
	case "uint":
		n, err := strconv.ParseUint(v.Text, 10, strconv.IntSize)
		return uint(n), err
	case "uint8":
		n, err := strconv.ParseUint(v.Text, 10, 8)
		return uint8(n), err
	case "uint16":
		n, err := strconv.ParseUint(v.Text, 10, 16)
		return uint16(n), err
	case "uint32":
		n, err := strconv.ParseUint(v.Text, 10, 32)
		return uint32(n), err
	case "uint64":
		return strconv.ParseUint(v.Text, 10, 64)
	case "float32":
		f, err := strconv.ParseFloat(v.Text, 32)
		return float32(f), err
	case "float64":
		return strconv.ParseFloat(v.Text, 64)
	case "list":
		if v.Nil {
			return []any(nil), nil
		}
		out := make([]any, len(v.Items))
		for i, item := range v.Items {
			dec, err := item.Decode()
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			out[i] = dec
		}
		return out, nil
	case "map":
		if v.Nil {
			return map[string]any(nil), nil
		}
		out := make(map[string]any, len(v.Entries))
		for k, item := range v.Entries {
			dec, err := item.Decode()
			if err != nil {
				return nil, fmt.Errorf("[%q]: %w", k, err)
			}
			out[k] = dec
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unknown value kind %q", v.Kind)
	}
}
