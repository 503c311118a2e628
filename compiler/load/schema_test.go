package load_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/tabula"
	"github.com/syssam/tabula/compiler/load"
	"github.com/syssam/tabula/schema/field"
	"github.com/syssam/tabula/schema/rel"
)

type Hero struct {
	tabula.Schema
}

func (Hero) Fields() []tabula.Field {
	return []tabula.Field{
		field.Int64("id").PrimaryKey(),
		field.String("name").Index(),
		field.String("secret_name"),
		field.Int("age").Nillable(),
		field.Int64("team_id").ForeignKey("team.id").Optional().Nillable(),
	}
}

func (Hero) Rels() []tabula.Rel {
	return []tabula.Rel{
		rel.To("team", "Team").Optional().BackPopulates("heroes"),
	}
}

func (Hero) Config() tabula.Config {
	return tabula.Config{Table: tabula.Bool(true)}
}

type Team struct {
	tabula.Schema
}

func (Team) Fields() []tabula.Field {
	return []tabula.Field{
		field.Int64("id").PrimaryKey(),
		field.String("name").Unique().Default("unnamed"),
	}
}

func TestLoad(t *testing.T) {
	t.Parallel()
	s, err := load.Load(Hero{})
	require.NoError(t, err)
	assert.Equal(t, "Hero", s.Name)
	assert.True(t, s.Table)
	assert.Equal(t, "hero", s.TableName)
	require.Len(t, s.Fields, 5)
	require.Len(t, s.Rels, 1)

	id := s.Fields[0]
	assert.True(t, id.PrimaryKey)
	assert.Equal(t, field.TypeInt64, id.Type)

	team := s.Rels[0]
	assert.Equal(t, "team", team.Name)
	assert.Equal(t, []string{"Team"}, team.TargetNames)
	assert.True(t, team.Optional)
	assert.Equal(t, "heroes", team.BackPopulates)
}

func TestLoadTableFlagPriority(t *testing.T) {
	t.Parallel()
	// No config, no option: not storage-backed.
	s, err := load.Load(Team{})
	require.NoError(t, err)
	assert.False(t, s.Table)
	assert.Empty(t, s.TableName)

	// Registration option applies when the declaration is silent.
	s, err = load.Load(Team{}, load.WithTable(true))
	require.NoError(t, err)
	assert.True(t, s.Table)
	assert.Equal(t, "team", s.TableName)

	// An explicit declaration value beats the registration option.
	s, err = load.Load(Hero{}, load.WithTable(false))
	require.NoError(t, err)
	assert.True(t, s.Table)
}

func TestLoadTableNames(t *testing.T) {
	t.Parallel()
	type HeroTeamLink struct{ Team }
	s, err := load.Load(HeroTeamLink{}, load.WithTable(true))
	require.NoError(t, err)
	assert.Equal(t, "hero_team_link", s.TableName)

	s, err = load.Load(Team{}, load.WithTable(true), load.WithPluralTableName())
	require.NoError(t, err)
	assert.Equal(t, "teams", s.TableName)
}

type namedTable struct {
	tabula.Schema
}

func (namedTable) Config() tabula.Config {
	return tabula.Config{Table: tabula.Bool(true), TableName: "custom"}
}

func TestLoadExplicitTableName(t *testing.T) {
	t.Parallel()
	s, err := load.Load(namedTable{})
	require.NoError(t, err)
	assert.Equal(t, "custom", s.TableName)
}

func TestSentinelInjection(t *testing.T) {
	t.Parallel()
	s, err := load.Load(Hero{})
	require.NoError(t, err)
	for _, f := range s.Fields {
		assert.True(t, f.Injected, f.Name)
		assert.False(t, f.HasRealDefault(), f.Name)
	}

	// Declared defaults stay real and uninjected.
	s, err = load.Load(Team{}, load.WithTable(true))
	require.NoError(t, err)
	name := s.Fields[1]
	assert.False(t, name.Injected)
	assert.True(t, name.HasRealDefault())
	assert.Equal(t, "unnamed", name.DefaultValue)

	// Non-table schemas are never injected.
	s, err = load.Load(Team{})
	require.NoError(t, err)
	assert.False(t, s.Fields[0].Injected)
}

type badField struct {
	tabula.Schema
}

func (badField) Fields() []tabula.Field {
	return []tabula.Field{
		field.String("data").Column(struct{}{}).Unique(),
	}
}

func TestLoadBuilderErrors(t *testing.T) {
	t.Parallel()
	_, err := load.Load(badField{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `schema "badField"`)
	assert.Contains(t, err.Error(), "mutually exclusive")
}

type panicker struct {
	tabula.Schema
}

func (panicker) Fields() []tabula.Field {
	panic("boom")
}

func TestLoadPanickingDeclaration(t *testing.T) {
	t.Parallel()
	_, err := load.Load(panicker{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Fields panics: boom")
}

type duplicated struct {
	tabula.Schema
}

func (duplicated) Fields() []tabula.Field {
	return []tabula.Field{
		field.String("name"),
		field.Int("name"),
	}
}

func TestLoadDuplicateNames(t *testing.T) {
	t.Parallel()
	_, err := load.Load(duplicated{})
	assert.EqualError(t, err, `schema "duplicated": duplicate field "name"`)

	_, err = load.Load(relShadowsField{})
	assert.EqualError(t, err, `schema "relShadowsField": duplicate field or relationship "team"`)
}

type relShadowsField struct {
	tabula.Schema
}

func (relShadowsField) Fields() []tabula.Field {
	return []tabula.Field{field.String("team")}
}

func (relShadowsField) Rels() []tabula.Rel {
	return []tabula.Rel{rel.To("team", "Team")}
}

func TestLoadNil(t *testing.T) {
	t.Parallel()
	_, err := load.Load(nil)
	assert.EqualError(t, err, "nil declaration")
}

func TestMarshalSchema(t *testing.T) {
	t.Parallel()
	buf, err := load.MarshalSchema(Hero{})
	require.NoError(t, err)

	s, err := load.UnmarshalSchema(buf)
	require.NoError(t, err)
	assert.Equal(t, "Hero", s.Name)
	assert.True(t, s.Table)
	require.Len(t, s.Fields, 5)
	assert.True(t, s.Fields[0].PrimaryKey)
	require.Len(t, s.Rels, 1)
	assert.Equal(t, []string{"Team"}, s.Rels[0].TargetNames)
}

type defaulted struct {
	tabula.Schema
}

func (defaulted) Fields() []tabula.Field {
	return []tabula.Field{
		field.Int("count").Default(7),
		field.Uint8("level").Default(uint8(3)),
		field.Float("score").Default(1.5),
	}
}

func TestNumericDefaultRoundTrip(t *testing.T) {
	t.Parallel()
	buf, err := load.MarshalSchema(defaulted{})
	require.NoError(t, err)
	s, err := load.UnmarshalSchema(buf)
	require.NoError(t, err)
	assert.Equal(t, int64(7), s.Fields[0].DefaultValue)
	assert.Equal(t, uint64(3), s.Fields[1].DefaultValue)
	assert.Equal(t, 1.5, s.Fields[2].DefaultValue)
}

func TestSnapshot(t *testing.T) {
	t.Parallel()
	hero, err := load.Load(Hero{})
	require.NoError(t, err)
	team, err := load.Load(Team{}, load.WithTable(true))
	require.NoError(t, err)

	buf, err := load.EncodeSnapshot(hero, team)
	require.NoError(t, err)

	schemas, err := load.DecodeSnapshot(buf)
	require.NoError(t, err)
	require.Len(t, schemas, 2)
	assert.Equal(t, "Hero", schemas[0].Name)
	assert.Equal(t, "team", schemas[1].TableName)
	assert.Equal(t, "unnamed", schemas[1].Fields[1].DefaultValue)
	require.Len(t, schemas[0].Rels, 1)
	assert.Equal(t, "heroes", schemas[0].Rels[0].BackPopulates)

	_, err = load.DecodeSnapshot([]byte("not msgpack"))
	require.Error(t, err)
}
