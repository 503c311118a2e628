// Package rel provides fluent builders for defining model relationships
// in tabula.
//
// A relationship names a target declaration, by value or by name when
// the target is declared later (a forward reference):
//
//	rel.To("team", Team{}).BackPopulates("heroes")
//	rel.To("heroes", "Hero").List().BackPopulates("team")
//
// Relationships never participate in validation. They are wired in a
// separate pass after all declarations are registered, so bidirectional
// pairs may be declared in either order.
//
// Many-to-many relationships route through a link declaration whose
// table acts as the secondary table:
//
//	rel.To("teams", Team{}).List().LinkModel(HeroTeamLink{})
package rel
