package graph

// PropertyValue pairs a property entity with the value to set on it.
type PropertyValue struct {
	Property ID
	Value    Value
}

// EntitySpec describes an entity to create. When ID is empty a new one is
// generated; passing an existing ID patches that entity instead.
type EntitySpec struct {
	ID          ID
	Name        string
	Description string
	Types       []ID
	Properties  []PropertyValue
}

// CreateEntity returns the entity's ID and the ops that name it, type it and
// set its property values. Empty property values are skipped.
func CreateEntity(spec EntitySpec) (ID, []Op) {
	id := spec.ID
	if id == "" {
		id = GenerateID()
	}

	ops := make([]Op, 0, 2+len(spec.Types)+len(spec.Properties))
	if spec.Name != "" {
		ops = append(ops, SetName(id, spec.Name))
	}
	if spec.Description != "" {
		ops = append(ops, SetTriple(id, DescriptionAttribute, TextValue(spec.Description)))
	}
	for _, typeID := range spec.Types {
		ops = append(ops, MakeRelation(id, TypesAttribute, typeID))
	}
	for _, pv := range spec.Properties {
		if pv.Value.Value == "" {
			continue
		}
		ops = append(ops, SetTriple(id, pv.Property, pv.Value))
	}
	return id, ops
}

// CreateProperty returns a new property entity holding values of vt.
func CreateProperty(name string, vt ValueType) (ID, []Op) {
	id := GenerateID()
	ops := []Op{
		SetName(id, name),
		MakeRelation(id, TypesAttribute, AttributeType),
	}
	if target, ok := valueTypeEntities[vt]; ok {
		ops = append(ops, MakeRelation(id, ValueTypeAttribute, target))
	}
	return id, ops
}

// CreateType returns a new type entity whose schema lists properties.
func CreateType(name string, properties ...ID) (ID, []Op) {
	id := GenerateID()
	ops := []Op{
		SetName(id, name),
		MakeRelation(id, TypesAttribute, SchemaType),
	}
	for _, p := range properties {
		ops = append(ops, MakeRelation(id, PropertiesAttribute, p))
	}
	return id, ops
}

// CreateRelationType returns a new property whose values are relations.
func CreateRelationType(name string) (ID, []Op) {
	id := GenerateID()
	return id, []Op{
		SetName(id, name),
		MakeRelation(id, TypesAttribute, AttributeType),
		MakeRelation(id, ValueTypeAttribute, RelationValueType),
	}
}
