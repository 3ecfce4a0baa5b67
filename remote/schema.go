package remote

import "strings"

// Endpoint returns the REST path segment serving res.
func Endpoint(res Resource) string {
	return strings.ReplaceAll(string(res), "_", "-")
}

// columnFields lists the columns whose API field names do not follow the
// plain snake_case to camelCase rule.
var columnFields = map[string]string{
	"type_id":  "type",
	"part_ids": "parts",
}

var fieldColumns = func() map[string]string {
	m := make(map[string]string, len(columnFields))
	for col, field := range columnFields {
		m[field] = col
	}
	return m
}()

// FieldName maps a column name to its API field name.
func FieldName(column string) string {
	if f, ok := columnFields[column]; ok {
		return f
	}
	parts := strings.Split(column, "_")
	for i := 1; i < len(parts); i++ {
		if parts[i] == "" {
			continue
		}
		parts[i] = strings.ToUpper(parts[i][:1]) + parts[i][1:]
	}
	return strings.Join(parts, "")
}

// ColumnName maps an API field name to its column name.
func ColumnName(field string) string {
	if c, ok := fieldColumns[field]; ok {
		return c
	}
	var b strings.Builder
	for i, r := range field {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r + ('a' - 'A'))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

type foreignKey struct {
	from   Resource
	to     Resource
	column string
}

var foreignKeys = []foreignKey{
	{Drones, DroneTypes, "type_id"},
	{Parts, Drones, "drone_id"},
	{Parts, Manufacturers, "manufacturer_id"},
	{Repairs, Drones, "drone_id"},
	{Repairs, Parts, "part_id"},
}

// Relation resolves how rows of from relate to rows of to. For a to-one
// relation column is on from; for a to-many relation it is on to.
func Relation(from, to Resource) (column string, many bool, ok bool) {
	for _, fk := range foreignKeys {
		if fk.from == from && fk.to == to {
			return fk.column, false, true
		}
	}
	for _, fk := range foreignKeys {
		if fk.from == to && fk.to == from {
			return fk.column, true, true
		}
	}
	return "", false, false
}

// ToFields renames the top-level keys of row to API field names.
func ToFields(row Row) map[string]any {
	out := make(map[string]any, len(row))
	for k, v := range row {
		out[FieldName(k)] = v
	}
	return out
}

// FromFields renames the top-level keys of an API object to column names.
func FromFields(obj map[string]any) Row {
	row := make(Row, len(obj))
	for k, v := range obj {
		row[ColumnName(k)] = v
	}
	return row
}
