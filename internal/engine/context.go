package engine

import (
	"github.com/roach88/tally/internal/components"
	"github.com/roach88/tally/internal/curriculum"
)

// Context bundles the read-only collaborators an enforcement call consults.
type Context struct {
	Curriculum curriculum.Registry
	Components *components.Registry
	Clock      Clock
}

// check validates the context before any input is examined.
func (c Context) check() error {
	if c.Curriculum == nil {
		return &PreconditionError{Code: ErrCodeMissingCollaborator, Message: "curriculum registry is nil"}
	}
	if c.Components == nil {
		return &PreconditionError{Code: ErrCodeMissingCollaborator, Message: "component registry is nil"}
	}
	if c.Clock == nil {
		return &PreconditionError{Code: ErrCodeMissingCollaborator, Message: "clock is nil"}
	}
	if c.Curriculum.Empty() {
		return &PreconditionError{Code: ErrCodeEmptyCurriculum, Message: "curriculum defines no content"}
	}
	for _, id := range c.Curriculum.AllComponentIDs() {
		typ, _ := c.Curriculum.ComponentType(id)
		if c.Components.Initializer(typ) == nil {
			return &PreconditionError{
				Code:          ErrCodeMissingInitializer,
				Message:       "no initializer registered for component type",
				ComponentType: typ,
			}
		}
	}
	return nil
}
