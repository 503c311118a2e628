package mixin

import (
	"time"

	"github.com/syssam/tabula"
	"github.com/syssam/tabula/schema/field"
)

// Schema is the default implementation of the tabula.Mixin interface.
// Embed it in custom mixin definitions and override the methods the
// mixin contributes:
//
//	type AuditMixin struct {
//	    mixin.Schema
//	}
//
//	func (AuditMixin) Fields() []tabula.Field {
//	    return []tabula.Field{
//	        field.String("created_by").Optional(),
//	    }
//	}
type Schema struct{}

// Fields of the mixin. Override to contribute fields.
func (Schema) Fields() []tabula.Field { return nil }

// Rels of the mixin. Override to contribute relationships.
func (Schema) Rels() []tabula.Rel { return nil }

var _ tabula.Mixin = (*Schema)(nil)

// Time adds created_at and updated_at timestamp fields.
type Time struct {
	Schema
}

// Fields returns the time tracking fields.
func (Time) Fields() []tabula.Field {
	return append(CreateTime{}.Fields(), UpdateTime{}.Fields()...)
}

// CreateTime adds only a created_at timestamp field.
type CreateTime struct {
	Schema
}

// Fields returns the created_at field.
func (CreateTime) Fields() []tabula.Field {
	return []tabula.Field{
		field.Time("created_at").
			DefaultFunc(func() any { return time.Now().UTC() }),
	}
}

// UpdateTime adds only an updated_at timestamp field.
type UpdateTime struct {
	Schema
}

// Fields returns the updated_at field.
func (UpdateTime) Fields() []tabula.Field {
	return []tabula.Field{
		field.Time("updated_at").
			DefaultFunc(func() any { return time.Now().UTC() }),
	}
}

// SoftDelete adds a nillable deleted_at field. A nil value means the
// row is live.
type SoftDelete struct {
	Schema
}

// Fields returns the soft delete field.
func (SoftDelete) Fields() []tabula.Field {
	return []tabula.Field{
		field.Time("deleted_at").Nillable(),
	}
}

// TimeSoftDelete combines Time and SoftDelete.
type TimeSoftDelete struct {
	Schema
}

// Fields returns all timestamp and soft delete fields.
func (TimeSoftDelete) Fields() []tabula.Field {
	return append(Time{}.Fields(), SoftDelete{}.Fields()...)
}
