package source

import (
	"database/sql/driver"
	"encoding/hex"
	"fmt"
	"math"
	"reflect"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

// Normalize converts a record (column name to database value) into a row of
// spreadsheet-safe scalars, one per column and in column order.
func Normalize(record map[string]any, columns []string) []any {
	row := make([]any, len(columns))
	for i, c := range columns {
		row[i] = Value(record[c])
	}

	return row
}

// NormalizeValues is the positional equivalent of Normalize for a row read as
// a slice of values. Missing trailing values are treated as NULL.
func NormalizeValues(values []any, columns int) []any {
	row := make([]any, columns)
	for i := range row {
		if i < len(values) {
			row[i] = Value(values[i])
		} else {
			row[i] = ""
		}
	}

	return row
}

// Value converts a single database value into a string, number or bool. NULL
// and NaN become "", exact numerics keep their scale as a decimal string, and
// arrays, maps and JSON objects are rendered as JSON text. Numbers, strings and
// bools are returned unchanged. Anything else (dates, timestamps, UUIDs, bytea,
// intervals) is rendered as a string.
func Value(v any) any {
	switch t := v.(type) {
	case nil:
		return ""

	case pgtype.Numeric:
		return numeric(t)

	case *pgtype.Numeric:
		if t == nil {
			return ""
		}
		return numeric(*t)

	case decimal.Decimal:
		return decimalString(t)

	case *decimal.Decimal:
		if t == nil {
			return ""
		}
		return decimalString(*t)

	case decimal.NullDecimal:
		if !t.Valid {
			return ""
		}
		return decimalString(t.Decimal)

	case string, bool:
		return t

	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return t

	case float32:
		return float(float64(t), t)

	case float64:
		return float(t, t)

	case []byte:
		return bytea(t)

	case pgtype.Date:
		return date(t)

	case time.Time:
		return timestamp(t)

	case [16]byte:
		return uuid.UUID(t).String()

	case uuid.UUID:
		return t.String()
	}

	if isComposite(v) {
		return composite(v)
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer:
		if rv.IsNil() {
			return ""
		}
		return Value(rv.Elem().Interface())

	case reflect.String:
		return rv.String()

	case reflect.Bool:
		return rv.Bool()

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int()

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return rv.Uint()

	case reflect.Float32, reflect.Float64:
		return float(rv.Float(), rv.Float())
	}

	// pgtype values (time, interval, ranges, ...) render their PostgreSQL text form
	if valuer, ok := v.(driver.Valuer); ok {
		if dv, err := valuer.Value(); err == nil {
			return Value(dv)
		}
	}

	if stringer, ok := v.(fmt.Stringer); ok {
		return stringer.String()
	}

	return fmt.Sprintf("%v", v)
}

func numeric(n pgtype.Numeric) any {
	if !n.Valid || n.NaN {
		return ""
	}

	switch n.InfinityModifier {
	case pgtype.Infinity:
		return "Infinity"
	case pgtype.NegativeInfinity:
		return "-Infinity"
	}

	if n.Int == nil {
		return "0"
	}

	return decimalString(decimal.NewFromBigInt(n.Int, n.Exp))
}

// decimalString keeps the scale of d, e.g. 123.450 stays "123.450".
func decimalString(d decimal.Decimal) string {
	if exp := d.Exponent(); exp < 0 {
		return d.StringFixed(-exp)
	}

	return d.String()
}

func float(f float64, v any) any {
	switch {
	case math.IsNaN(f):
		return ""
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}

	return v
}

func bytea(b []byte) string {
	return `\x` + hex.EncodeToString(b)
}

func timestamp(t time.Time) string {
	return t.Format(time.RFC3339Nano)
}

func date(d pgtype.Date) string {
	switch {
	case !d.Valid:
		return ""
	case d.InfinityModifier == pgtype.Infinity:
		return "infinity"
	case d.InfinityModifier == pgtype.NegativeInfinity:
		return "-infinity"
	}

	return d.Time.Format("2006-01-02")
}

func isComposite(v any) bool {
	switch v.(type) {
	case map[string]any, []any:
		return true
	}

	switch reflect.ValueOf(v).Kind() {
	case reflect.Map, reflect.Slice, reflect.Array:
		return true
	}

	return false
}

func composite(v any) string {
	b, err := json.Marshal(jsonSafe(v))
	if err != nil {
		return fmt.Sprintf("%v", v)
	}

	return string(b)
}

// jsonSafe replaces everything that is not a JSON value with its string form.
func jsonSafe(v any) any {
	switch t := v.(type) {
	case nil, string, bool, json.Number:
		return t

	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return t

	case float32:
		if math.IsNaN(float64(t)) || math.IsInf(float64(t), 0) {
			return fmt.Sprintf("%v", t)
		}
		return t

	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return fmt.Sprintf("%v", t)
		}
		return t

	case map[string]any:
		m := make(map[string]any, len(t))
		for k, e := range t {
			m[k] = jsonSafe(e)
		}
		return m

	case []any:
		list := make([]any, len(t))
		for i, e := range t {
			list[i] = jsonSafe(e)
		}
		return list

	case []byte:
		return bytea(t)

	case [16]byte:
		return uuid.UUID(t).String()

	case uuid.UUID:
		return t.String()

	case time.Time:
		return timestamp(t)

	case pgtype.Date:
		return date(t)

	case pgtype.Numeric:
		return numeric(t)

	case decimal.Decimal:
		return decimalString(t)
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return nil
		}
		list := make([]any, rv.Len())
		for i := range list {
			list[i] = jsonSafe(rv.Index(i).Interface())
		}
		return list

	case reflect.Map:
		m := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			m[fmt.Sprintf("%v", iter.Key().Interface())] = jsonSafe(iter.Value().Interface())
		}
		return m

	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return nil
		}
		return jsonSafe(rv.Elem().Interface())

	case reflect.String:
		return rv.String()

	case reflect.Bool:
		return rv.Bool()

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int()

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return rv.Uint()

	case reflect.Float32, reflect.Float64:
		return jsonSafe(rv.Float())
	}

	if valuer, ok := v.(driver.Valuer); ok {
		if dv, err := valuer.Value(); err == nil {
			return jsonSafe(dv)
		}
	}

	if stringer, ok := v.(fmt.Stringer); ok {
		return stringer.String()
	}

	return fmt.Sprintf("%v", v)
}
