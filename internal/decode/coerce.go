package decode

import (
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/viant/toolbox"
	"go.mongodb.org/mongo-driver/v2/bson"

	"search-mapper/internal/value"
	"search-mapper/primitive"
	"search-mapper/utils"
)

// natural converts a raw scalar into a value of its own type. Types with no
// direct record equivalent (object ids, decimals, regexes...) become text.
func natural(raw any) (value.Value, primitive.KindEnum) {
	switch x := raw.(type) {
	case string:
		return value.String(x), primitive.KindString
	case int64:
		return value.Int64(x), primitive.KindInt64
	case int:
		return value.Int64(int64(x)), primitive.KindInt64
	case int32:
		return value.Int32(x), primitive.KindInt32
	case int16:
		return value.Int32(int32(x)), primitive.KindInt32
	case int8:
		return value.Int32(int32(x)), primitive.KindInt32
	case uint8:
		return value.Int32(int32(x)), primitive.KindInt32
	case uint16:
		return value.Int32(int32(x)), primitive.KindInt32
	case uint32:
		return value.Int64(int64(x)), primitive.KindInt64
	case float64:
		return value.Float64(x), primitive.KindFloat64
	case float32:
		return value.Float32(x), primitive.KindFloat32
	case bool:
		return value.Bool(x), primitive.KindBool
	case []byte:
		return value.Bytes(x), primitive.KindBytes
	case bson.Binary:
		return value.Bytes(x.Data), primitive.KindBytes
	case time.Time:
		return value.Time(x.UTC()), primitive.KindTime
	case bson.DateTime:
		return value.Time(x.Time().UTC()), primitive.KindTime
	case bson.Timestamp:
		return value.Time(time.Unix(int64(x.T), 0).UTC()), primitive.KindTime
	case bson.ObjectID:
		return value.String(x.Hex()), primitive.KindString
	case bson.Decimal128:
		return value.String(x.String()), primitive.KindString
	case bson.Null, bson.Undefined:
		return value.Null(), 0
	default:
		return value.String(toolbox.AsString(x)), primitive.KindString
	}
}

// sourceKind narrows integers to the smallest kind holding them, so a small
// JSON integer counts as a safe widening into any number type.
func sourceKind(v value.Value, kind primitive.KindEnum) primitive.KindEnum {
	if kind == primitive.KindInt64 {
		if i, ok := v.Interface().(int64); ok && utils.FitsInt32(i) {
			return primitive.KindInt32
		}
	}

	return kind
}

// coerce converts raw into the declared kind. On failure it returns the kind
// of anomaly and, for date fallbacks, the string value to keep.
func (d *Decoder) coerce(raw any, to primitive.KindEnum) (value.Value, AnomalyKind, error) {
	v, from := natural(raw)
	if v.IsNull() {
		return v, "", nil
	}

	if from == to {
		return v, "", nil
	}

	if !d.coercions.Allows(sourceKind(v, from), to) {
		if to == primitive.KindTime && from == primitive.KindString {
			return v, AnomalyDateFallback, fmt.Errorf("date coercion disabled for %q", v.Text())
		}

		return value.Null(), AnomalyMismatch, fmt.Errorf("cannot coerce %s to %s", from.TypeName(), to.TypeName())
	}

	switch to {
	case primitive.KindString:
		return toString(v)
	case primitive.KindInt32, primitive.KindInt64:
		return toInteger(v, to)
	case primitive.KindFloat32, primitive.KindFloat64:
		return toFloat(v, to)
	case primitive.KindBool:
		return toBool(v)
	case primitive.KindBytes:
		return toBytes(v)
	case primitive.KindTime:
		return d.toTime(v)
	default:
		return value.Null(), AnomalyMismatch, fmt.Errorf("unsupported target kind %s", to)
	}
}

func toString(v value.Value) (value.Value, AnomalyKind, error) {
	if t, ok := v.Interface().(time.Time); ok {
		return value.String(t.Format(time.RFC3339Nano)), "", nil
	}

	return value.String(v.Text()), "", nil
}

func toInteger(v value.Value, to primitive.KindEnum) (value.Value, AnomalyKind, error) {
	var i int64

	switch x := v.Interface().(type) {
	case int32:
		i = int64(x)
	case int64:
		i = x
	case float32, float64:
		f, _ := toolbox.ToFloat(x)
		if !utils.IsIntegral(f) {
			return value.Null(), AnomalyMismatch, fmt.Errorf("%v is not integral", f)
		}

		i = int64(f)
	case string:
		n, err := toolbox.ToInt(strings.TrimSpace(x))
		if err != nil {
			return value.Null(), AnomalyMismatch, fmt.Errorf("%q is not an integer", x)
		}

		i = int64(n)
	case bool:
		if x {
			i = 1
		}
	case time.Time:
		i = x.UnixMilli()
	default:
		return value.Null(), AnomalyMismatch, fmt.Errorf("cannot read %T as integer", x)
	}

	if to == primitive.KindInt32 {
		if !utils.FitsInt32(i) {
			return value.Null(), AnomalyMismatch, fmt.Errorf("%d overflows int", i)
		}

		return value.Int32(int32(i)), "", nil
	}

	return value.Int64(i), "", nil
}

func toFloat(v value.Value, to primitive.KindEnum) (value.Value, AnomalyKind, error) {
	raw := v.Interface()
	if s, ok := raw.(string); ok {
		raw = strings.TrimSpace(s)
	}

	f, err := toolbox.ToFloat(raw)
	if err != nil {
		return value.Null(), AnomalyMismatch, fmt.Errorf("%q is not a number", v.Text())
	}

	if to == primitive.KindFloat32 {
		if !utils.FitsFloat32(f) {
			return value.Null(), AnomalyMismatch, fmt.Errorf("%v overflows float", f)
		}

		return value.Float32(float32(f)), "", nil
	}

	return value.Float64(f), "", nil
}

func toBool(v value.Value) (value.Value, AnomalyKind, error) {
	switch x := v.Interface().(type) {
	case string:
		switch strings.ToLower(strings.TrimSpace(x)) {
		case "true", "yes", "on", "1":
			return value.Bool(true), "", nil
		case "false", "no", "off", "0":
			return value.Bool(false), "", nil
		}

		return value.Null(), AnomalyMismatch, fmt.Errorf("%q is not a boolean", x)
	case int32, int64:
		n, _ := toolbox.ToInt(x)
		switch n {
		case 0:
			return value.Bool(false), "", nil
		case 1:
			return value.Bool(true), "", nil
		}

		return value.Null(), AnomalyMismatch, fmt.Errorf("%d is not a boolean", n)
	default:
		return value.Null(), AnomalyMismatch, fmt.Errorf("cannot read %T as boolean", x)
	}
}

func toBytes(v value.Value) (value.Value, AnomalyKind, error) {
	s := v.Text()
	if b, err := base64.StdEncoding.DecodeString(s); err == nil {
		return value.Bytes(b), "", nil
	}

	return value.Bytes([]byte(s)), "", nil
}

func (d *Decoder) toTime(v value.Value) (value.Value, AnomalyKind, error) {
	switch x := v.Interface().(type) {
	case string:
		if t, ok := d.formats.Parse(x); ok {
			return value.Time(t.UTC()), "", nil
		}

		return v, AnomalyDateFallback, fmt.Errorf("%q matches no date format", x)
	case int32, int64:
		ms, _ := toolbox.ToInt(x)
		return value.Time(time.UnixMilli(int64(ms)).UTC()), "", nil
	default:
		return value.Null(), AnomalyMismatch, fmt.Errorf("cannot read %T as date", x)
	}
}
