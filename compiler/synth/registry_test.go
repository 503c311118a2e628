package synth_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/tabula"
	"github.com/syssam/tabula/compiler/synth"
	sqlschema "github.com/syssam/tabula/dialect/sql/schema"
	"github.com/syssam/tabula/schema/field"
	"github.com/syssam/tabula/schema/rel"
)

type Team struct {
	tabula.Schema
}

func (Team) Fields() []tabula.Field {
	return []tabula.Field{
		field.Int64("id").PrimaryKey(),
		field.String("name").Unique(),
	}
}

func (Team) Rels() []tabula.Rel {
	return []tabula.Rel{
		rel.To("heroes", "Hero").List().BackPopulates("team"),
	}
}

func (Team) Config() tabula.Config {
	return tabula.Config{Table: tabula.Bool(true)}
}

type Hero struct {
	tabula.Schema
}

func (Hero) Fields() []tabula.Field {
	return []tabula.Field{
		field.Int64("id").PrimaryKey(),
		field.String("name").Index(),
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

func TestRegister(t *testing.T) {
	t.Parallel()
	r := synth.NewRegistry()
	m, err := r.Register(Hero{})
	require.NoError(t, err)
	assert.Equal(t, "Hero", m.Name)
	assert.True(t, m.IsTable())
	assert.False(t, m.Abstract)
	assert.False(t, m.ReadOnly())
	assert.Same(t, r.Metadata(), m.Metadata)

	// One column per field, bound into the registry container.
	assert.Len(t, m.Columns, 3)
	tbl, ok := r.Metadata().Table("hero")
	require.True(t, ok)
	assert.Same(t, m.Table, tbl)

	// Fields are validated, relationships are not.
	assert.True(t, m.Program.Has("name"))
	assert.False(t, m.Program.Has("team"))
	assert.True(t, m.Instrumented("team_id"))
	assert.True(t, m.Instrumented("team"))
	assert.False(t, m.Instrumented("sidekick"))
	assert.True(t, m.HasRel("team"))

	// Relationships stay unbound until Resolve.
	_, bound := m.Rel("team")
	assert.False(t, bound)

	got, ok := r.Model("Hero")
	require.True(t, ok)
	assert.Same(t, m, got)
	assert.Len(t, r.Models(), 1)
}

func TestRegisterDuplicate(t *testing.T) {
	t.Parallel()
	r := synth.NewRegistry()
	_, err := r.Register(Hero{})
	require.NoError(t, err)
	_, err = r.Register(Hero{})
	require.Error(t, err)
	assert.True(t, tabula.IsConfiguration(err))
	assert.EqualError(t, err, "tabula: Hero: already registered")
}

func TestRegisterErrors(t *testing.T) {
	t.Parallel()
	r := synth.NewRegistry()

	// Unmappable field type carries the model name.
	_, err := r.Register(opaque{}, synth.WithTable(true))
	require.Error(t, err)
	assert.True(t, tabula.IsUnmappableType(err))
	assert.Contains(t, err.Error(), "opaque.payload")

	// Non-table models skip mapping entirely.
	_, err = r.Register(opaque{})
	require.NoError(t, err)
}

type opaque struct {
	tabula.Schema
}

func (opaque) Fields() []tabula.Field {
	return []tabula.Field{field.Other("payload")}
}

func TestResolveForwardRefsBothOrders(t *testing.T) {
	t.Parallel()
	orders := []struct {
		name string
		regs []tabula.Interface
	}{
		{"team_first", []tabula.Interface{Team{}, Hero{}}},
		{"hero_first", []tabula.Interface{Hero{}, Team{}}},
	}
	for _, tt := range orders {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			r := synth.NewRegistry()
			for _, decl := range tt.regs {
				_, err := r.Register(decl)
				require.NoError(t, err)
			}
			require.NoError(t, r.Resolve())

			hero, _ := r.Model("Hero")
			team, ok := hero.Rel("team")
			require.True(t, ok)
			assert.Equal(t, "Team", team.Target)
			assert.Equal(t, "heroes", team.BackPopulates)
			assert.True(t, team.Optional)
			assert.False(t, team.List)

			tm, _ := r.Model("Team")
			heroes, ok := tm.Rel("heroes")
			require.True(t, ok)
			assert.Equal(t, "Hero", heroes.Target)
			assert.True(t, heroes.List)
		})
	}
}

func TestResolveIdempotent(t *testing.T) {
	t.Parallel()
	r := synth.NewRegistry()
	_, err := r.Register(Hero{})
	require.NoError(t, err)
	_, err = r.Register(Team{})
	require.NoError(t, err)
	require.NoError(t, r.Resolve())
	require.NoError(t, r.Resolve())
}

func TestResolveMissingTarget(t *testing.T) {
	t.Parallel()
	r := synth.NewRegistry()
	_, err := r.Register(Hero{})
	require.NoError(t, err)
	err = r.Resolve()
	require.Error(t, err)
	assert.True(t, tabula.IsUnresolvedTarget(err))
	assert.EqualError(t, err, "tabula: Hero.team: cannot resolve target Team: no model registered under that name")
}

type conflicted struct {
	tabula.Schema
}

func (conflicted) Rels() []tabula.Rel {
	return []tabula.Rel{
		rel.To("owner", "Team", "Hero").Optional(),
	}
}

func TestResolveUnionRejected(t *testing.T) {
	t.Parallel()
	r := synth.NewRegistry()
	for _, decl := range []tabula.Interface{Team{}, Hero{}} {
		_, err := r.Register(decl)
		require.NoError(t, err)
	}
	_, err := r.Register(conflicted{}, synth.WithTable(true))
	require.NoError(t, err)
	err = r.Resolve()
	require.Error(t, err)
	assert.True(t, tabula.IsUnresolvedTarget(err))
	assert.Contains(t, err.Error(), "Team | Hero")
	assert.Contains(t, err.Error(), "union of 2 concrete targets")
}

type HeroTeamLink struct {
	tabula.Schema
}

func (HeroTeamLink) Fields() []tabula.Field {
	return []tabula.Field{
		field.Int64("hero_id").ForeignKey("hero.id").PrimaryKey(),
		field.Int64("team_id").ForeignKey("team.id").PrimaryKey(),
	}
}

type multiTeamHero struct {
	tabula.Schema
}

func (multiTeamHero) Fields() []tabula.Field {
	return []tabula.Field{field.Int64("id").PrimaryKey()}
}

func (multiTeamHero) Rels() []tabula.Rel {
	return []tabula.Rel{
		rel.To("teams", "Team").List().LinkModel("HeroTeamLink"),
	}
}

func TestResolveLinkModel(t *testing.T) {
	t.Parallel()
	r := synth.NewRegistry()
	_, err := r.Register(Team{})
	require.NoError(t, err)
	_, err = r.Register(Hero{})
	require.NoError(t, err)
	_, err = r.Register(HeroTeamLink{}, synth.WithTable(true))
	require.NoError(t, err)
	m, err := r.Register(multiTeamHero{}, synth.WithTable(true))
	require.NoError(t, err)
	require.NoError(t, r.Resolve())

	teams, ok := m.Rel("teams")
	require.True(t, ok)
	assert.Equal(t, "hero_team_link", teams.Secondary)
	assert.True(t, teams.List)
}

func TestResolveLinkModelWithoutTable(t *testing.T) {
	t.Parallel()
	r := synth.NewRegistry()
	_, err := r.Register(Team{})
	require.NoError(t, err)
	_, err = r.Register(Hero{})
	require.NoError(t, err)
	_, err = r.Register(HeroTeamLink{}) // not a table
	require.NoError(t, err)
	_, err = r.Register(multiTeamHero{}, synth.WithTable(true))
	require.NoError(t, err)
	err = r.Resolve()
	require.Error(t, err)
	assert.True(t, tabula.IsUnresolvedTarget(err))
	assert.Contains(t, err.Error(), "link model has no table")
}

func TestResolveExplicitOverride(t *testing.T) {
	t.Parallel()
	r := synth.NewRegistry()
	m, err := r.Register(overridden{}, synth.WithTable(true))
	require.NoError(t, err)
	require.NoError(t, r.Resolve())

	// The override binds verbatim, without registry lookups.
	bound, ok := m.Rel("team")
	require.True(t, ok)
	assert.Same(t, overrideRel, bound)
}

var overrideRel = &sqlschema.Relationship{Name: "team", Target: "Team", BackPopulates: "heroes"}

type overridden struct {
	tabula.Schema
}

func (overridden) Fields() []tabula.Field {
	return []tabula.Field{field.Int64("id").PrimaryKey()}
}

func (overridden) Rels() []tabula.Rel {
	return []tabula.Rel{
		rel.To("team", "Team").Override(overrideRel),
	}
}

func TestResolveKwargsMergeLast(t *testing.T) {
	t.Parallel()
	r := synth.NewRegistry()
	_, err := r.Register(Team{})
	require.NoError(t, err)
	_, err = r.Register(Hero{})
	require.NoError(t, err)
	m, err := r.Register(kwargsRel{}, synth.WithTable(true))
	require.NoError(t, err)
	require.NoError(t, r.Resolve())

	bound, ok := m.Rel("team")
	require.True(t, ok)
	assert.Equal(t, "members", bound.BackPopulates)
	assert.Equal(t, "joined", bound.Attrs["lazy"])
}

type kwargsRel struct {
	tabula.Schema
}

func (kwargsRel) Fields() []tabula.Field {
	return []tabula.Field{field.Int64("id").PrimaryKey()}
}

func (kwargsRel) Rels() []tabula.Rel {
	return []tabula.Rel{
		rel.To("team", "Team").
			BackPopulates("heroes").
			Kwargs(map[string]any{"back_populates": "members", "lazy": "joined"}),
	}
}

func TestProjection(t *testing.T) {
	t.Parallel()
	r := synth.NewRegistry()
	base, err := r.Register(Hero{})
	require.NoError(t, err)

	proj, err := r.Register(heroRead{}, synth.WithBase(base))
	require.NoError(t, err)
	assert.True(t, proj.ReadOnly())
	assert.False(t, proj.IsTable())
	assert.Same(t, base, proj.Base)
	assert.True(t, proj.Instrumented("name"))

	// Projections carry relationship declarations but are never wired.
	_, err = r.Register(Team{})
	require.NoError(t, err)
	require.NoError(t, r.Resolve())
	_, bound := proj.Rel("team")
	assert.False(t, bound)
}

type heroRead struct {
	tabula.Schema
}

func (heroRead) Fields() []tabula.Field {
	return []tabula.Field{
		field.Int64("id"),
		field.String("name"),
	}
}

func (heroRead) Rels() []tabula.Rel {
	return []tabula.Rel{rel.To("team", "Team")}
}

func TestProjectionErrors(t *testing.T) {
	t.Parallel()
	r := synth.NewRegistry()
	nontable, err := r.Register(opaque{})
	require.NoError(t, err)
	_, err = r.Register(heroRead{}, synth.WithBase(nontable))
	require.Error(t, err)
	assert.True(t, tabula.IsConfiguration(err))
	assert.Contains(t, err.Error(), "not storage-backed")

	base, err := r.Register(Hero{})
	require.NoError(t, err)
	_, err = r.Register(Team{}, synth.WithBase(base))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot be a table itself")
}

func TestAbstractMetadataAdoption(t *testing.T) {
	t.Parallel()
	shared := sqlschema.NewMetadata()
	r := synth.NewRegistry()

	abstract, err := r.Register(opaque{}, synth.WithMetadata(shared))
	require.NoError(t, err)
	assert.True(t, abstract.Abstract)
	assert.Same(t, shared, abstract.Metadata)
	assert.False(t, abstract.IsTable())

	// A table model adopting a container is not abstract and binds
	// its table there instead of the registry default.
	m, err := r.Register(Hero{}, synth.WithMetadata(shared))
	require.NoError(t, err)
	assert.False(t, m.Abstract)
	_, ok := shared.Table("hero")
	assert.True(t, ok)
	_, ok = r.Metadata().Table("hero")
	assert.False(t, ok)
}

func TestRegisterTableCollision(t *testing.T) {
	t.Parallel()
	r := synth.NewRegistry()
	_, err := r.Register(Hero{})
	require.NoError(t, err)
	_, err = r.Register(heroAlias{})
	require.Error(t, err)
	assert.True(t, tabula.IsConfiguration(err))
	assert.Contains(t, err.Error(), `duplicate table "hero"`)
}

type heroAlias struct {
	tabula.Schema
}

func (heroAlias) Fields() []tabula.Field {
	return []tabula.Field{field.Int64("id").PrimaryKey()}
}

func (heroAlias) Config() tabula.Config {
	return tabula.Config{Table: tabula.Bool(true), TableName: "hero"}
}

func TestStrictValidationFlag(t *testing.T) {
	t.Parallel()
	r := synth.NewRegistry()
	m, err := r.Register(Hero{}, synth.WithStrictValidation())
	require.NoError(t, err)
	assert.True(t, m.Strict)

	m2, err := r.Register(Team{})
	require.NoError(t, err)
	assert.False(t, m2.Strict)
}
