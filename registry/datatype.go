package registry

// DataType is the declared target type of a mapping rule. Coercion happens
// after expression evaluation; an unknown name in a rule table is a
// load-time error.
type DataType string

const (
	TypeString         DataType = "String"
	TypeInt            DataType = "Int"
	TypeInt64          DataType = "Int64"
	TypeDouble         DataType = "Double"
	TypeBoolean        DataType = "Boolean"
	TypeDateTime       DataType = "DateTime"
	TypeDateTimeOffset DataType = "DateTimeOffset"
	TypeDict           DataType = "Dict"
	TypeGeography      DataType = "Geography"
)

var dataTypes = map[DataType]struct{}{
	TypeString:         {},
	TypeInt:            {},
	TypeInt64:          {},
	TypeDouble:         {},
	TypeBoolean:        {},
	TypeDateTime:       {},
	TypeDateTimeOffset: {},
	TypeDict:           {},
	TypeGeography:      {},
}

// Valid reports whether t is a known data type.
func (t DataType) Valid() bool {
	_, ok := dataTypes[t]
	return ok
}
