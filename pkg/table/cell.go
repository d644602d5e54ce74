package table

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

type Kind uint8

const (
	KindMissing Kind = iota
	KindString
	KindNumber
	KindInt
	KindBool
)

func (k Kind) String() string {
	switch k {
	case KindMissing:
		return "missing"
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindInt:
		return "int"
	case KindBool:
		return "bool"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Cell is a single dynamically typed value. The zero Cell is missing.
type Cell struct {
	kind Kind
	s    string
	f    float64
	i    int64
	b    bool
}

func MissingCell() Cell {
	return Cell{}
}

func StringCell(s string) Cell {
	return Cell{kind: KindString, s: s}
}

// NumberCell returns a missing cell for NaN.
func NumberCell(f float64) Cell {
	if math.IsNaN(f) {
		return Cell{}
	}
	return Cell{kind: KindNumber, f: f}
}

func IntCell(i int64) Cell {
	return Cell{kind: KindInt, i: i}
}

func BoolCell(b bool) Cell {
	return Cell{kind: KindBool, b: b}
}

// Of converts a decoded Go value (JSON, BSON or literal) into a Cell.
// Unsupported types are rendered through fmt and kept as strings.
func Of(v any) Cell {
	switch x := v.(type) {
	case nil:
		return MissingCell()
	case Cell:
		return x
	case string:
		return StringCell(x)
	case float64:
		return NumberCell(x)
	case float32:
		return NumberCell(float64(x))
	case int:
		return IntCell(int64(x))
	case int32:
		return IntCell(int64(x))
	case int64:
		return IntCell(x)
	case bool:
		return BoolCell(x)
	case json.Number:
		if f, err := x.Float64(); err == nil {
			return NumberCell(f)
		}
		return StringCell(x.String())
	default:
		return StringCell(fmt.Sprint(x))
	}
}

func (c Cell) Kind() Kind {
	return c.kind
}

func (c Cell) IsMissing() bool {
	return c.kind == KindMissing
}

func (c Cell) IsNumeric() bool {
	return c.kind == KindNumber || c.kind == KindInt
}

// String returns the textual form used by the string-based normalizers.
// Missing cells render as the empty string.
func (c Cell) String() string {
	switch c.kind {
	case KindString:
		return c.s
	case KindNumber:
		return strconv.FormatFloat(c.f, 'f', -1, 64)
	case KindInt:
		return strconv.FormatInt(c.i, 10)
	case KindBool:
		return strconv.FormatBool(c.b)
	default:
		return ""
	}
}

// Float reports the numeric value of Number and Int cells.
func (c Cell) Float() (float64, bool) {
	switch c.kind {
	case KindNumber:
		return c.f, true
	case KindInt:
		return float64(c.i), true
	default:
		return 0, false
	}
}

func (c Cell) Int() (int64, bool) {
	if c.kind != KindInt {
		return 0, false
	}
	return c.i, true
}

func (c Cell) Bool() (bool, bool) {
	if c.kind != KindBool {
		return false, false
	}
	return c.b, true
}

// Value returns the cell as a plain Go value: nil, string, float64, int64 or bool.
func (c Cell) Value() any {
	switch c.kind {
	case KindString:
		return c.s
	case KindNumber:
		return c.f
	case KindInt:
		return c.i
	case KindBool:
		return c.b
	default:
		return nil
	}
}

// Equal treats two missing cells as equal and compares Number and Int by
// value. Int cells compare exactly, and a Number equals an Int only when it
// holds that same integer.
func (c Cell) Equal(o Cell) bool {
	if c.IsNumeric() && o.IsNumeric() {
		switch {
		case c.kind == KindInt && o.kind == KindInt:
			return c.i == o.i
		case c.kind == KindNumber && o.kind == KindNumber:
			return c.f == o.f
		case c.kind == KindInt:
			n, ok := exactInt(o.f)
			return ok && n == c.i
		default:
			n, ok := exactInt(c.f)
			return ok && n == o.i
		}
	}
	if c.kind != o.kind {
		return false
	}
	switch c.kind {
	case KindString:
		return c.s == o.s
	case KindBool:
		return c.b == o.b
	default:
		return true
	}
}

// exactInt reports the int64 a float holds when it is integral and in range.
// Negative zero maps to 0.
func exactInt(f float64) (int64, bool) {
	if f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, false
	}
	return int64(f), true
}

// key is a collision-free encoding consistent with Equal. Integral values
// share one form whether stored as Int or Number.
func (c Cell) key() string {
	switch c.kind {
	case KindString:
		return "s" + strconv.Itoa(len(c.s)) + ":" + c.s
	case KindInt:
		return "n" + strconv.FormatInt(c.i, 10)
	case KindNumber:
		if n, ok := exactInt(c.f); ok {
			return "n" + strconv.FormatInt(n, 10)
		}
		return "n" + strconv.FormatFloat(c.f, 'g', -1, 64)
	case KindBool:
		return "b" + strconv.FormatBool(c.b)
	default:
		return "m"
	}
}

func (c Cell) MarshalJSON() ([]byte, error) {
	if c.kind == KindNumber && math.IsInf(c.f, 0) {
		return nil, fmt.Errorf("cannot encode %v as JSON", c.f)
	}
	return json.Marshal(c.Value())
}

func (c *Cell) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return err
	}
	switch v.(type) {
	case map[string]any, []any:
		return fmt.Errorf("cell must be a scalar, got %s", data)
	}
	*c = Of(v)
	return nil
}
