package frame

import (
	"fmt"
	"math"
	"strconv"
	"time"
)

// Type is the element type of a column.
type Type uint8

const (
	TypeFloat Type = iota + 1
	TypeInt
	TypeUint
	TypeString
	TypeTime
)

// String returns the lower-case type name used in encoded frames.
func (t Type) String() string {
	switch t {
	case TypeFloat:
		return "float"
	case TypeInt:
		return "int"
	case TypeUint:
		return "uint"
	case TypeString:
		return "string"
	case TypeTime:
		return "time"
	default:
		return fmt.Sprintf("Type(%d)", uint8(t))
	}
}

// ParseType is the inverse of Type.String. It also accepts a few common aliases.
func ParseType(s string) (Type, error) {
	switch s {
	case "float", "float64", "f64", "double":
		return TypeFloat, nil
	case "int", "int64", "i64":
		return TypeInt, nil
	case "uint", "uint64", "u64":
		return TypeUint, nil
	case "string", "str", "utf8":
		return TypeString, nil
	case "time", "timestamp", "datetime":
		return TypeTime, nil
	default:
		return 0, fmt.Errorf("unknown column type %q", s)
	}
}

// Column is a named, homogeneous sequence of values. The zero value is an
// empty float column with no name. Columns are values; the backing slice is
// never handed out, so a Column cannot be mutated after construction.
type Column struct {
	name   string
	typ    Type
	floats []float64
	ints   []int64
	uints  []uint64
	strs   []string
	times  []time.Time
}

func Floats(name string, values ...float64) Column {
	return Column{name: name, typ: TypeFloat, floats: append([]float64(nil), values...)}
}

func Ints(name string, values ...int64) Column {
	return Column{name: name, typ: TypeInt, ints: append([]int64(nil), values...)}
}

func Uints(name string, values ...uint64) Column {
	return Column{name: name, typ: TypeUint, uints: append([]uint64(nil), values...)}
}

func Strings(name string, values ...string) Column {
	return Column{name: name, typ: TypeString, strs: append([]string(nil), values...)}
}

func Times(name string, values ...time.Time) Column {
	return Column{name: name, typ: TypeTime, times: append([]time.Time(nil), values...)}
}

func (c Column) Name() string { return c.name }

func (c Column) Type() Type {
	if c.typ == 0 {
		return TypeFloat
	}
	return c.typ
}

// Len returns the number of values in the column.
func (c Column) Len() int {
	switch c.Type() {
	case TypeInt:
		return len(c.ints)
	case TypeUint:
		return len(c.uints)
	case TypeString:
		return len(c.strs)
	case TypeTime:
		return len(c.times)
	default:
		return len(c.floats)
	}
}

// Float returns row i as a float64. Numeric columns convert; time columns
// return Unix seconds; string columns are parsed and report false on failure.
func (c Column) Float(i int) (float64, bool) {
	if i < 0 || i >= c.Len() {
		return 0, false
	}
	switch c.Type() {
	case TypeInt:
		return float64(c.ints[i]), true
	case TypeUint:
		return float64(c.uints[i]), true
	case TypeString:
		v, err := strconv.ParseFloat(c.strs[i], 64)
		return v, err == nil
	case TypeTime:
		return float64(c.times[i].UnixNano()) / float64(time.Second), true
	default:
		v := c.floats[i]
		return v, !math.IsNaN(v)
	}
}

// Uint returns row i as a uint64 for integer columns.
func (c Column) Uint(i int) (uint64, bool) {
	if i < 0 || i >= c.Len() {
		return 0, false
	}
	switch c.Type() {
	case TypeUint:
		return c.uints[i], true
	case TypeInt:
		if c.ints[i] < 0 {
			return 0, false
		}
		return uint64(c.ints[i]), true
	default:
		return 0, false
	}
}

// Time returns row i for time columns.
func (c Column) Time(i int) (time.Time, bool) {
	if c.Type() != TypeTime || i < 0 || i >= len(c.times) {
		return time.Time{}, false
	}
	return c.times[i], true
}

// Value returns row i boxed in its native Go type.
func (c Column) Value(i int) any {
	if i < 0 || i >= c.Len() {
		return nil
	}
	switch c.Type() {
	case TypeInt:
		return c.ints[i]
	case TypeUint:
		return c.uints[i]
	case TypeString:
		return c.strs[i]
	case TypeTime:
		return c.times[i]
	default:
		return c.floats[i]
	}
}

// Format renders row i. precision applies to float columns only.
func (c Column) Format(i int, precision int) string {
	if i < 0 || i >= c.Len() {
		return ""
	}
	switch c.Type() {
	case TypeInt:
		return strconv.FormatInt(c.ints[i], 10)
	case TypeUint:
		return strconv.FormatUint(c.uints[i], 10)
	case TypeString:
		return c.strs[i]
	case TypeTime:
		return c.times[i].Format(time.RFC3339)
	default:
		if precision < 0 {
			precision = -1
		}
		return strconv.FormatFloat(c.floats[i], 'f', precision, 64)
	}
}

// Slice returns rows [from, to) as a new column.
func (c Column) Slice(from, to int) Column {
	if from < 0 {
		from = 0
	}
	if to > c.Len() {
		to = c.Len()
	}
	if from > to {
		from = to
	}
	switch c.Type() {
	case TypeInt:
		return Ints(c.name, c.ints[from:to]...)
	case TypeUint:
		return Uints(c.name, c.uints[from:to]...)
	case TypeString:
		return Strings(c.name, c.strs[from:to]...)
	case TypeTime:
		return Times(c.name, c.times[from:to]...)
	default:
		return Floats(c.name, c.floats[from:to]...)
	}
}

func (c Column) appendColumn(o Column) (Column, error) {
	if c.Type() != o.Type() {
		return Column{}, fmt.Errorf("column %q: cannot append %s to %s", c.name, o.Type(), c.Type())
	}
	switch c.Type() {
	case TypeInt:
		return Ints(c.name, append(append([]int64(nil), c.ints...), o.ints...)...), nil
	case TypeUint:
		return Uints(c.name, append(append([]uint64(nil), c.uints...), o.uints...)...), nil
	case TypeString:
		return Strings(c.name, append(append([]string(nil), c.strs...), o.strs...)...), nil
	case TypeTime:
		return Times(c.name, append(append([]time.Time(nil), c.times...), o.times...)...), nil
	default:
		return Floats(c.name, append(append([]float64(nil), c.floats...), o.floats...)...), nil
	}
}

func (c Column) equal(o Column) bool {
	if c.name != o.name || c.Type() != o.Type() || c.Len() != o.Len() {
		return false
	}
	for i := 0; i < c.Len(); i++ {
		switch c.Type() {
		case TypeInt:
			if c.ints[i] != o.ints[i] {
				return false
			}
		case TypeUint:
			if c.uints[i] != o.uints[i] {
				return false
			}
		case TypeString:
			if c.strs[i] != o.strs[i] {
				return false
			}
		case TypeTime:
			if !c.times[i].Equal(o.times[i]) {
				return false
			}
		default:
			a, b := c.floats[i], o.floats[i]
			if a != b && !(math.IsNaN(a) && math.IsNaN(b)) {
				return false
			}
		}
	}
	return true
}
