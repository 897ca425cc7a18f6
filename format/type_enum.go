package format

// TypeEnum identifies a known value shape. Only the low 7 bits are usable because
// a TypeEnum must fit into a TEOFS byte.
//
// Code ranges:
//   - 1-63: fixed-size, self-sized scalars
//   - 64-69: variable-length known types
//   - 70-99: tuple, array, map and frame containers
//   - 125-127: sentinels
type TypeEnum uint8

const (
	TypeNone TypeEnum = 0

	TypeInt8      TypeEnum = 1
	TypeInt16     TypeEnum = 2
	TypeInt32     TypeEnum = 3
	TypeInt64     TypeEnum = 4
	TypeInt128    TypeEnum = 5
	TypeUint8     TypeEnum = 6
	TypeUint16    TypeEnum = 7
	TypeUint32    TypeEnum = 8
	TypeUint64    TypeEnum = 9
	TypeUint128   TypeEnum = 10
	TypeFloat16   TypeEnum = 11
	TypeFloat32   TypeEnum = 12
	TypeFloat64   TypeEnum = 13
	TypeDecimal   TypeEnum = 14
	TypeBool      TypeEnum = 15
	TypeUtf16Char TypeEnum = 16
	TypeUUID      TypeEnum = 17
	TypeTimestamp TypeEnum = 18
	TypeDateTime  TypeEnum = 19
	TypeSymbol    TypeEnum = 20
	TypeSymbol32  TypeEnum = 21
	TypeSymbol64  TypeEnum = 22

	TypeBinary      TypeEnum = 64
	TypeUtf8String  TypeEnum = 65
	TypeUtf16String TypeEnum = 66
	TypeJSON        TypeEnum = 67

	TypeTuple2         TypeEnum = 70 // slot1: first member, slot2: second member
	TypeTupleTN        TypeEnum = 71 // slot1: member, slot2: member count
	TypeArray          TypeEnum = 80 // slot1: element
	TypeJaggedArray    TypeEnum = 81 // slot1: leaf element, slot2: depth
	TypeArrayOfTupleTN TypeEnum = 82 // slot1: tuple member, slot2: member count
	TypeMap            TypeEnum = 90 // slot1: key, slot2: value
	TypeSeries         TypeEnum = 91 // slot1: key, slot2: value
	TypeFrame          TypeEnum = 92 // slot1: row key, slot2: column key

	TypeCompositeType TypeEnum = 125
	TypeUserType      TypeEnum = 126
	TypeFixedSize     TypeEnum = 127
)

const (
	// MaxScalarType is the highest code of a self-sized scalar.
	MaxScalarType TypeEnum = 63
	// MaxTypeEnum is the highest code that fits the low 7 bits of a TEOFS.
	MaxTypeEnum TypeEnum = 127
)

// sizeTable holds the byte size of each TypeEnum, -1 for shapes that are not self-sized.
// It is indexed by the full byte so that any stored value can be looked up without a bounds check.
var sizeTable = buildSizeTable()

func buildSizeTable() [256]int16 {
	var t [256]int16
	for i := range t {
		t[i] = -1
	}

	t[TypeInt8] = 1
	t[TypeInt16] = 2
	t[TypeInt32] = 4
	t[TypeInt64] = 8
	t[TypeInt128] = 16
	t[TypeUint8] = 1
	t[TypeUint16] = 2
	t[TypeUint32] = 4
	t[TypeUint64] = 8
	t[TypeUint128] = 16
	t[TypeFloat16] = 2
	t[TypeFloat32] = 4
	t[TypeFloat64] = 8
	t[TypeDecimal] = 16
	t[TypeBool] = 1
	t[TypeUtf16Char] = 2
	t[TypeUUID] = 16
	t[TypeTimestamp] = 8
	t[TypeDateTime] = 8
	t[TypeSymbol] = 16
	t[TypeSymbol32] = 32
	t[TypeSymbol64] = 64

	return t
}

// Size returns the byte size of a self-sized scalar, or -1.
func (t TypeEnum) Size() int {
	return int(sizeTable[t])
}

// IsScalar reports whether t is a self-sized scalar with a known size.
func (t TypeEnum) IsScalar() bool {
	return t != TypeNone && t <= MaxScalarType && sizeTable[t] > 0
}

// IsVariable reports whether t is one of the variable-length known types.
func (t TypeEnum) IsVariable() bool {
	return t >= TypeBinary && t <= 69
}

// IsContainer reports whether t is a tuple, array, map or frame shape.
func (t TypeEnum) IsContainer() bool {
	return t >= TypeTuple2 && t <= 99
}

// IsSentinel reports whether t is CompositeType, UserType or FixedSize.
func (t TypeEnum) IsSentinel() bool {
	return t >= TypeCompositeType && t <= TypeFixedSize
}

var typeNames = map[TypeEnum]string{
	TypeNone:           "None",
	TypeInt8:           "Int8",
	TypeInt16:          "Int16",
	TypeInt32:          "Int32",
	TypeInt64:          "Int64",
	TypeInt128:         "Int128",
	TypeUint8:          "Uint8",
	TypeUint16:         "Uint16",
	TypeUint32:         "Uint32",
	TypeUint64:         "Uint64",
	TypeUint128:        "Uint128",
	TypeFloat16:        "Float16",
	TypeFloat32:        "Float32",
	TypeFloat64:        "Float64",
	TypeDecimal:        "Decimal",
	TypeBool:           "Bool",
	TypeUtf16Char:      "Utf16Char",
	TypeUUID:           "UUID",
	TypeTimestamp:      "Timestamp",
	TypeDateTime:       "DateTime",
	TypeSymbol:         "Symbol",
	TypeSymbol32:       "Symbol32",
	TypeSymbol64:       "Symbol64",
	TypeBinary:         "Binary",
	TypeUtf8String:     "Utf8String",
	TypeUtf16String:    "Utf16String",
	TypeJSON:           "JSON",
	TypeTuple2:         "Tuple2",
	TypeTupleTN:        "TupleTN",
	TypeArray:          "Array",
	TypeJaggedArray:    "JaggedArray",
	TypeArrayOfTupleTN: "ArrayOfTupleTN",
	TypeMap:            "Map",
	TypeSeries:         "Series",
	TypeFrame:          "Frame",
	TypeCompositeType:  "CompositeType",
	TypeUserType:       "UserType",
	TypeFixedSize:      "FixedSize",
}

func (t TypeEnum) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}

	return "Unknown"
}
