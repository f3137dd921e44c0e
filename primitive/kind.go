package primitive

import (
	"strconv"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// KindEnum is the type of a scalar record value.
type KindEnum int

const (
	_ KindEnum = iota // skip zero value, use it as a default (invalid) value for KindEnum

	KindString
	KindInt32
	KindInt64
	KindFloat32
	KindFloat64
	KindBool
	KindBytes
	KindTime

	// KindTotal is a constant that represents the total number of kinds defined
	KindTotal = int(iota)
)

func (k KindEnum) String() string {
	switch k {
	case KindString:
		return "KindString"
	case KindInt32:
		return "KindInt32"
	case KindInt64:
		return "KindInt64"
	case KindFloat32:
		return "KindFloat32"
	case KindFloat64:
		return "KindFloat64"
	case KindBool:
		return "KindBool"
	case KindBytes:
		return "KindBytes"
	case KindTime:
		return "KindTime"
	default:
		return "KindEnum(" + strconv.Itoa(int(k)) + ")"
	}
}

// TypeName returns the record type name of the kind as written in mapping files.
func (k KindEnum) TypeName() string {
	switch k {
	case KindString:
		return "chararray"
	case KindInt32:
		return "int"
	case KindInt64:
		return "long"
	case KindFloat32:
		return "float"
	case KindFloat64:
		return "double"
	case KindBool:
		return "boolean"
	case KindBytes:
		return "bytearray"
	case KindTime:
		return "datetime"
	default:
		return ""
	}
}

func (k KindEnum) IsValid() bool {
	return k > 0 && int(k) < KindTotal
}

func (k KindEnum) IsNumber() bool {
	switch k {
	default:
		return false
	case KindInt32, KindInt64, KindFloat32, KindFloat64:
		return true
	}
}

func (k KindEnum) IsInteger() bool {
	switch k {
	default:
		return false
	case KindInt32, KindInt64:
		return true
	}
}

func (k KindEnum) IsFloat() bool {
	switch k {
	default:
		return false
	case KindFloat32, KindFloat64:
		return true
	}
}

func (k KindEnum) Bits() int {
	switch k {
	default:
		panic("only number kinds has meaningful bits amount, but requested for: " + k.String())
	case KindInt32, KindFloat32:
		return 32
	case KindInt64, KindFloat64:
		return 64
	}
}

// ParseKind maps a schema type name to a kind. Both the batch engine's names
// (chararray, long, bytearray...) and the store's mapping names (keyword, text,
// integer, date...) are accepted, case-insensitively.
func ParseKind(name string) (KindEnum, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "chararray", "string", "keyword", "text":
		return KindString, true
	case "int", "integer", "int32", "short", "byte":
		return KindInt32, true
	case "long", "int64":
		return KindInt64, true
	case "float", "float32", "half_float":
		return KindFloat32, true
	case "double", "float64", "scaled_float":
		return KindFloat64, true
	case "boolean", "bool":
		return KindBool, true
	case "bytearray", "bytes", "binary":
		return KindBytes, true
	case "datetime", "date", "time", "timestamp":
		return KindTime, true
	default:
		return 0, false
	}
}

// FromValue reports the kind of a decoded Go scalar, as produced by JSON and
// BSON readers. Values of other types report the zero kind.
func FromValue(v any) KindEnum {
	switch v.(type) {
	case string:
		return KindString
	case int32, int16, int8, uint8, uint16:
		return KindInt32
	case int, int64, uint32:
		return KindInt64
	case float32:
		return KindFloat32
	case float64:
		return KindFloat64
	case bool:
		return KindBool
	case []byte, bson.Binary:
		return KindBytes
	case time.Time, bson.DateTime, bson.Timestamp:
		return KindTime
	default:
		return 0
	}
}
