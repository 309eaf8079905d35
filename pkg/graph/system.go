package graph

// Well-known entities of the root space that every edit builds on.
const (
	NameAttribute        ID = "LuBWqZAu6pz54eiJS5mLv8"
	DescriptionAttribute ID = "LA1DqP5v6QAdsgLPXGF3YA"
	TypesAttribute       ID = "Jfmby78N4BCseZinBmdVov"
	PropertiesAttribute  ID = "9zBADaYzyfzyFJn9M5vrwe"
	ValueTypeAttribute   ID = "WQfdWjboZWFuTseDhG5Cw1"

	SchemaType       ID = "VdTsW1mGiy1XSooJaBBLc4"
	AttributeType    ID = "GscJ2GELQjmLoaVrYyR3xm"
	RelationTypeType ID = "Hte8tAdvCFF4iHrKB4nufi"
)

// Value type entities.
const (
	TextValueType     ID = "LckSTmjBrYAJaFcDs89am5"
	NumberValueType   ID = "LBdMpTNyycNffsF51t2eSp"
	CheckboxValueType ID = "G9NpD4c7GB7nH5YU9Tesgf"
	URLValueType      ID = "5xroh3gbWYbWY4oR3nFXzy"
	TimeValueType     ID = "3mswMrL91GuYTfBq29EuNE"
	PointValueType    ID = "UZBZNbA7Uhx1f8ebLi1Qj5"
	RelationValueType ID = "AKDxovGvZaPSWnmKnSoZJY"
)

// DefaultIndex is the fractional position given to relations that do not
// care about ordering.
const DefaultIndex = "a0"

var valueTypeEntities = map[ValueType]ID{
	Text:     TextValueType,
	Number:   NumberValueType,
	Checkbox: CheckboxValueType,
	URL:      URLValueType,
	Time:     TimeValueType,
	Point:    PointValueType,
}
