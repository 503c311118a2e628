// Package mixin provides reusable field sets for model declarations.
//
// A mixin contributes fields and relationships to every declaration
// that composes it, the way a shared base model contributes inherited
// columns. Mixed-in descriptors load before the declaration's own:
//
//	type Hero struct {
//	    tabula.Schema
//	}
//
//	func (Hero) Mixin() []tabula.Mixin {
//	    return []tabula.Mixin{
//	        mixin.Time{},
//	    }
//	}
//
//	func (Hero) Fields() []tabula.Field {
//	    return []tabula.Field{
//	        field.Int64("id").PrimaryKey(),
//	        field.String("name"),
//	    }
//	}
//
// Hero now validates and stores created_at and updated_at alongside
// its own fields.
package mixin
