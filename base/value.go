package base

import (
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"
)

// ValueKind identifies the scalar type held by a Value
type ValueKind int

// Supported scalar kinds; there is deliberately no open "any" kind
const (
	ValueKindString ValueKind = iota
	ValueKindInt
	ValueKindFloat
	ValueKindBool
)

func (kind ValueKind) String() string {
	switch kind {
	case ValueKindString:
		return "string"
	case ValueKindInt:
		return "int"
	case ValueKindFloat:
		return "float"
	case ValueKindBool:
		return "bool"
	default:
		return fmt.Sprintf("kind(%d)", int(kind))
	}
}

// Value is a closed scalar union used for record and resource attributes
//
// The zero Value is an empty string.
type Value struct {
	kind ValueKind
	str  string
	num  int64
	fnum float64
	flag bool
}

// StringValue makes a string Value
func StringValue(str string) Value {
	return Value{kind: ValueKindString, str: str}
}

// IntValue makes an integer Value
func IntValue(num int64) Value {
	return Value{kind: ValueKindInt, num: num}
}

// FloatValue makes a floating-point Value
func FloatValue(fnum float64) Value {
	return Value{kind: ValueKindFloat, fnum: fnum}
}

// BoolValue makes a boolean Value
func BoolValue(flag bool) Value {
	return Value{kind: ValueKindBool, flag: flag}
}

// Kind returns the scalar type held by this Value
func (value Value) Kind() ValueKind {
	return value.kind
}

// StringVal returns the held string; zero unless Kind is string
func (value Value) StringVal() string {
	return value.str
}

// IntVal returns the held integer; zero unless Kind is int
func (value Value) IntVal() int64 {
	return value.num
}

// FloatVal returns the held float; zero unless Kind is float
func (value Value) FloatVal() float64 {
	return value.fnum
}

// BoolVal returns the held boolean; zero unless Kind is bool
func (value Value) BoolVal() bool {
	return value.flag
}

// RawLength approximates the wire length of the value for statistics
func (value Value) RawLength() int {
	if value.kind == ValueKindString {
		return len(value.str)
	}
	return 8
}

func (value Value) String() string {
	switch value.kind {
	case ValueKindString:
		return value.str
	case ValueKindInt:
		return strconv.FormatInt(value.num, 10)
	case ValueKindFloat:
		return strconv.FormatFloat(value.fnum, 'g', -1, 64)
	case ValueKindBool:
		return strconv.FormatBool(value.flag)
	default:
		return ""
	}
}

// MarshalYAML provides custom marshalling to export readable document
func (value Value) MarshalYAML() (interface{}, error) {
	switch value.kind {
	case ValueKindString:
		return value.str, nil
	case ValueKindInt:
		return value.num, nil
	case ValueKindFloat:
		return value.fnum, nil
	case ValueKindBool:
		return value.flag, nil
	default:
		return nil, fmt.Errorf("unsupported value kind: %s", value.kind)
	}
}

// UnmarshalYAML provides custom unmarshalling from YAML scalar nodes
func (value *Value) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("yaml line %d:%d: attribute value must be a scalar", node.Line, node.Column)
	}
	switch node.Tag {
	case "!!int":
		num, err := strconv.ParseInt(node.Value, 0, 64)
		if err != nil {
			return fmt.Errorf("yaml line %d:%d: %w", node.Line, node.Column, err)
		}
		*value = IntValue(num)
	case "!!float":
		fnum, err := strconv.ParseFloat(node.Value, 64)
		if err != nil {
			return fmt.Errorf("yaml line %d:%d: %w", node.Line, node.Column, err)
		}
		*value = FloatValue(fnum)
	case "!!bool":
		flag, err := strconv.ParseBool(node.Value)
		if err != nil {
			return fmt.Errorf("yaml line %d:%d: %w", node.Line, node.Column, err)
		}
		*value = BoolValue(flag)
	default:
		*value = StringValue(node.Value)
	}
	return nil
}
