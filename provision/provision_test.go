package provision

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/schema"
)

func parse(t *testing.T, model any) *schema.Schema {
	t.Helper()
	s, err := schema.Parse(model, &sync.Map{}, schema.NamingStrategy{})
	require.NoError(t, err)
	return s
}

func TestModels_TableNames(t *testing.T) {
	var tables []string
	for _, m := range Models() {
		tables = append(tables, parse(t, m).Table)
	}
	assert.Equal(t, []string{"profiles", "drone_types", "manufacturers", "drones", "parts", "repairs", "practice_days"}, tables)
	assert.ElementsMatch(t, ownedTables, tables[1:])
}

func TestModels_Columns(t *testing.T) {
	tests := []struct {
		model   any
		columns []string
	}{
		{&DroneType{}, []string{"id", "user_id", "name", "default_parts", "created_at", "updated_at"}},
		{&Drone{}, []string{"id", "user_id", "name", "type_id", "start_date", "photo", "status"}},
		{&Part{}, []string{"id", "drone_id", "start_date", "manufacturer_id", "replacement_history"}},
		{&Repair{}, []string{"id", "drone_id", "part_id", "date", "description"}},
		{&PracticeDay{}, []string{"id", "user_id", "date", "note"}},
		{&Profile{}, []string{"id", "username", "email"}},
	}

	for _, tt := range tests {
		s := parse(t, tt.model)
		t.Run(s.Table, func(t *testing.T) {
			for _, col := range tt.columns {
				assert.NotNil(t, s.LookUpField(col), "missing column %s", col)
			}
		})
	}
}

func TestModels_EmbeddableRelations(t *testing.T) {
	drone := parse(t, &Drone{})
	rel, ok := drone.Relationships.Relations["Type"]
	require.True(t, ok)
	assert.Equal(t, "drone_types", rel.FieldSchema.Table)
	assert.Equal(t, "RESTRICT", rel.ParseConstraint().OnDelete)

	part := parse(t, &Part{})
	assert.Equal(t, "CASCADE", part.Relationships.Relations["Drone"].ParseConstraint().OnDelete)
	assert.Equal(t, "RESTRICT", part.Relationships.Relations["Manufacturer"].ParseConstraint().OnDelete)
}

func TestStatements(t *testing.T) {
	stmts := Statements()

	names := make(map[string]bool)
	for _, s := range stmts {
		assert.False(t, names[s.Name], "duplicate statement %s", s.Name)
		names[s.Name] = true

		// every statement must be rerunnable
		sql := strings.ToUpper(s.SQL)
		idempotent := strings.Contains(sql, "IF NOT EXISTS") ||
			strings.Contains(sql, "OR REPLACE") ||
			strings.Contains(sql, "DROP POLICY IF EXISTS") ||
			strings.Contains(sql, "DROP TRIGGER IF EXISTS")
		assert.True(t, idempotent, "statement %s is not idempotent", s.Name)
	}

	for _, table := range append([]string{"profiles"}, ownedTables...) {
		assert.True(t, names["row level security "+table], "no policy for %s", table)
	}
	for _, table := range ownedTables {
		assert.True(t, names["foreign key "+table+"_user_id_fkey"])
		assert.True(t, names["updated_at trigger "+table])
	}

	// the set_updated_at function must exist before the triggers that use it
	assert.Equal(t, "set_updated_at function", stmts[0].Name)
}

func TestStatements_OwnerPolicy(t *testing.T) {
	s := ownerPolicy("drones", "user_id")
	assert.Contains(t, s.SQL, "ALTER TABLE public.drones ENABLE ROW LEVEL SECURITY")
	assert.Contains(t, s.SQL, "USING (user_id = auth.uid())")
	assert.Contains(t, s.SQL, "WITH CHECK (user_id = auth.uid())")
}

func TestStatements_UsernameLookup(t *testing.T) {
	var sql string
	for _, s := range Statements() {
		if s.Name == "get_email_by_username function" {
			sql = s.SQL
		}
	}
	require.NotEmpty(t, sql)
	assert.Contains(t, sql, "get_email_by_username(p_username text)")
	assert.Contains(t, sql, "SECURITY DEFINER")
	assert.Contains(t, sql, "TO anon, authenticated")
}
