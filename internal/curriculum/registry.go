package curriculum

import (
	"fmt"
	"maps"
	"slices"

	"github.com/roach88/tally/internal/ir"
)

// Registry answers existence questions about curriculum content.
// Implementations must be safe for concurrent reads.
type Registry interface {
	HasLesson(id int64) bool
	HasDomain(id int64) bool
	// HasEntity reports whether id is a lesson or menu.
	HasEntity(id int64) bool
	// PageCount returns the number of pages of an entity, 0 if unknown.
	PageCount(entityID int64) int
	HasComponent(id int64) bool
	// ComponentType returns the type name of a component.
	ComponentType(id int64) (string, bool)
	// AllComponentIDs returns every component id in ascending order.
	AllComponentIDs() []int64
	// Empty reports whether the registry defines nothing at all.
	Empty() bool
}

// EntityKind distinguishes lessons from menus.
type EntityKind string

const (
	KindLesson EntityKind = "lesson"
	KindMenu   EntityKind = "menu"
)

// Entity is a navigable lesson or menu.
type Entity struct {
	ID        int64
	Kind      EntityKind
	Title     string
	DomainID  *int64
	PageCount int
	Source    string
}

// Component is one component instance in the catalog.
type Component struct {
	ID       int64
	Type     string
	EntityID int64
}

// Catalog is the immutable Registry built by a Builder.
type Catalog struct {
	entities     map[int64]Entity
	domains      map[int64]string // id -> title, empty for implied domains
	components   map[int64]Component
	lessonOf     map[int64]int64
	componentIDs []int64
}

var _ Registry = (*Catalog)(nil)

func (c *Catalog) HasLesson(id int64) bool {
	e, ok := c.entities[id]
	return ok && e.Kind == KindLesson
}

func (c *Catalog) HasDomain(id int64) bool {
	_, ok := c.domains[id]
	return ok
}

func (c *Catalog) HasEntity(id int64) bool {
	_, ok := c.entities[id]
	return ok
}

func (c *Catalog) PageCount(entityID int64) int {
	return c.entities[entityID].PageCount
}

func (c *Catalog) HasComponent(id int64) bool {
	_, ok := c.components[id]
	return ok
}

func (c *Catalog) ComponentType(id int64) (string, bool) {
	comp, ok := c.components[id]
	return comp.Type, ok
}

// AllComponentIDs returns a fresh sorted slice; callers may modify it.
func (c *Catalog) AllComponentIDs() []int64 {
	return slices.Clone(c.componentIDs)
}

func (c *Catalog) Empty() bool {
	return len(c.entities) == 0 && len(c.domains) == 0 && len(c.components) == 0
}

// LessonForComponent returns the lesson that shows a component.
// Components that only appear on menus have no lesson.
func (c *Catalog) LessonForComponent(componentID int64) (int64, bool) {
	id, ok := c.lessonOf[componentID]
	return id, ok
}

// Entity returns the entity with the given id.
func (c *Catalog) Entity(id int64) (Entity, bool) {
	e, ok := c.entities[id]
	return e, ok
}

// Entities returns all entities ordered by id.
func (c *Catalog) Entities() []Entity {
	ids := slices.Sorted(maps.Keys(c.entities))
	out := make([]Entity, len(ids))
	for i, id := range ids {
		out[i] = c.entities[id]
	}
	return out
}

// DomainIDs returns all known domain ids in ascending order.
func (c *Catalog) DomainIDs() []int64 {
	return slices.Sorted(maps.Keys(c.domains))
}

// ComponentTypes returns the distinct component type names in use, sorted.
func (c *Catalog) ComponentTypes() []string {
	set := make(map[string]struct{})
	for _, comp := range c.components {
		set[comp.Type] = struct{}{}
	}
	return slices.Sorted(maps.Keys(set))
}

// Fingerprint returns a content address of the catalog's structure.
// Titles and source paths are excluded; only what the engine consults counts.
func (c *Catalog) Fingerprint() (string, error) {
	entities := make([]any, 0, len(c.entities))
	for _, e := range c.Entities() {
		entry := map[string]any{
			"id":    e.ID,
			"kind":  string(e.Kind),
			"pages": e.PageCount,
		}
		if e.DomainID != nil {
			entry["domain_id"] = *e.DomainID
		}
		entities = append(entities, entry)
	}
	comps := make([]any, 0, len(c.componentIDs))
	for _, id := range c.componentIDs {
		comps = append(comps, map[string]any{"id": id, "type": c.components[id].Type})
	}
	domains := make([]any, 0, len(c.domains))
	for _, id := range c.DomainIDs() {
		domains = append(domains, id)
	}
	return ir.Fingerprint(ir.DomainCurriculum, map[string]any{
		"entities":   entities,
		"components": comps,
		"domains":    domains,
	})
}

// Builder accumulates curriculum documents into a Catalog.
// A Builder is not safe for concurrent use.
type Builder struct {
	entities   map[int64]Entity
	domains    map[int64]string
	components map[int64]Component
	lessonOf   map[int64]int64
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{
		entities:   make(map[int64]Entity),
		domains:    make(map[int64]string),
		components: make(map[int64]Component),
		lessonOf:   make(map[int64]int64),
	}
}

// AddDocument adds every lesson, menu and domain in doc. source names the
// file the document came from and is attached to errors.
func (b *Builder) AddDocument(doc Document, source string) error {
	for _, d := range doc.Domains {
		if err := b.AddDomain(d, source); err != nil {
			return err
		}
	}
	for _, l := range doc.Lessons {
		if err := b.AddEntity(KindLesson, l, source); err != nil {
			return err
		}
	}
	for _, m := range doc.Menus {
		if err := b.AddEntity(KindMenu, m, source); err != nil {
			return err
		}
	}
	return nil
}

// AddDomain declares a domain. A domain first implied by a lesson may later
// be declared explicitly; declaring the same domain twice is an error.
func (b *Builder) AddDomain(d DomainDoc, source string) error {
	if title, exists := b.domains[d.ID]; exists && title != "" {
		return &LoadError{
			Code:    ErrCodeDuplicateID,
			Message: fmt.Sprintf("domain %d defined twice", d.ID),
			Path:    source,
		}
	}
	title := d.Title
	if title == "" {
		title = fmt.Sprintf("domain %d", d.ID)
	}
	b.domains[d.ID] = title
	return nil
}

// AddEntity adds a lesson or menu and registers its components.
func (b *Builder) AddEntity(kind EntityKind, doc EntityDoc, source string) error {
	id := doc.Metadata.ID
	if id == 0 {
		return &LoadError{
			Code:    ErrCodeInvalidEntity,
			Message: fmt.Sprintf("%s id 0 is missing or reserved for home", kind),
			Path:    source,
		}
	}
	if prev, exists := b.entities[id]; exists {
		return &LoadError{
			Code:    ErrCodeDuplicateID,
			Message: fmt.Sprintf("entity %d defined twice (first in %s)", id, prev.Source),
			Path:    source,
		}
	}

	// Validate every component before touching builder state so a failed
	// entity leaves nothing behind.
	pending := make(map[int64]string)
	for p, page := range doc.Pages {
		for _, c := range page.Components {
			if c.Type == "" {
				return &LoadError{
					Code:    ErrCodeInvalidEntity,
					Message: fmt.Sprintf("entity %d page %d: component %d has no type", id, p, c.ID),
					Path:    source,
				}
			}
			existing, known := b.components[c.ID]
			if !known {
				if t, seen := pending[c.ID]; seen {
					existing, known = Component{Type: t, EntityID: id}, true
				}
			}
			if known && existing.Type != c.Type {
				return &LoadError{
					Code: ErrCodeTypeConflict,
					Message: fmt.Sprintf("component %d declared as %q in entity %d and as %q in entity %d",
						c.ID, existing.Type, existing.EntityID, c.Type, id),
					Path: source,
				}
			}
			pending[c.ID] = c.Type
		}
	}

	b.entities[id] = Entity{
		ID:        id,
		Kind:      kind,
		Title:     doc.Metadata.Title,
		DomainID:  doc.Metadata.DomainID,
		PageCount: len(doc.Pages),
		Source:    source,
	}
	if kind == KindLesson && doc.Metadata.DomainID != nil {
		if _, exists := b.domains[*doc.Metadata.DomainID]; !exists {
			b.domains[*doc.Metadata.DomainID] = ""
		}
	}
	for cid, typ := range pending {
		if _, known := b.components[cid]; !known {
			b.components[cid] = Component{ID: cid, Type: typ, EntityID: id}
		}
		if kind == KindLesson {
			if _, mapped := b.lessonOf[cid]; !mapped {
				b.lessonOf[cid] = id
			}
		}
	}
	return nil
}

// Build freezes the accumulated content into a Catalog. The Builder may
// continue to be used; later additions do not affect the returned Catalog.
func (b *Builder) Build() *Catalog {
	return &Catalog{
		entities:     maps.Clone(b.entities),
		domains:      maps.Clone(b.domains),
		components:   maps.Clone(b.components),
		lessonOf:     maps.Clone(b.lessonOf),
		componentIDs: slices.Sorted(maps.Keys(b.components)),
	}
}
