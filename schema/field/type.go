package field

// A Type represents the declared value type of a field. The storage
// representation of each type is derived separately by the mapping
// resolver; the Type only identifies the validation-side shape.
type Type uint8

// List of field types.
const (
	TypeInvalid Type = iota
	TypeBool
	TypeInt
	TypeInt8
	TypeInt16
	TypeInt32
	TypeInt64
	TypeUint
	TypeUint8
	TypeUint16
	TypeUint32
	TypeUint64
	TypeFloat32
	TypeFloat64
	TypeString
	TypeEnum
	TypeTime
	TypeDate
	TypeDuration
	TypeTimeOfDay
	TypeBytes
	TypeDecimal
	TypeIP
	TypeFilePath
	TypeUUID
	TypeJSON
	TypeOther
	endTypes
)

var typeNames = [...]string{
	TypeInvalid:   "invalid",
	TypeBool:      "bool",
	TypeInt:       "int",
	TypeInt8:      "int8",
	TypeInt16:     "int16",
	TypeInt32:     "int32",
	TypeInt64:     "int64",
	TypeUint:      "uint",
	TypeUint8:     "uint8",
	TypeUint16:    "uint16",
	TypeUint32:    "uint32",
	TypeUint64:    "uint64",
	TypeFloat32:   "float32",
	TypeFloat64:   "float64",
	TypeString:    "string",
	TypeEnum:      "enum",
	TypeTime:      "time",
	TypeDate:      "date",
	TypeDuration:  "duration",
	TypeTimeOfDay: "timeofday",
	TypeBytes:     "bytes",
	TypeDecimal:   "decimal",
	TypeIP:        "ip",
	TypeFilePath:  "filepath",
	TypeUUID:      "uuid",
	TypeJSON:      "json",
	TypeOther:     "other",
}

// String returns the name of the type.
func (t Type) String() string {
	if t < endTypes {
		return typeNames[t]
	}
	return typeNames[TypeInvalid]
}

// Valid reports if the given type is a declarable field type.
func (t Type) Valid() bool {
	return t > TypeInvalid && t < endTypes
}

// Integer reports if the type is an integer type.
func (t Type) Integer() bool {
	return t >= TypeInt && t <= TypeUint64
}

// Float reports if the type is a floating-point type.
func (t Type) Float() bool {
	return t == TypeFloat32 || t == TypeFloat64
}

// Numeric reports if the type is a numeric type.
func (t Type) Numeric() bool {
	return t.Integer() || t.Float() || t == TypeDecimal
}

// Temporal reports if the type carries time information.
func (t Type) Temporal() bool {
	switch t {
	case TypeTime, TypeDate, TypeDuration, TypeTimeOfDay:
		return true
	}
	return false
}

// Stringer types are persisted as character data.
func (t Type) Stringer() bool {
	switch t {
	case TypeString, TypeEnum, TypeIP, TypeFilePath:
		return true
	}
	return false
}
