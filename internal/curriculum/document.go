package curriculum

// Document is the on-disk shape of curriculum content. A YAML lesson or menu
// file holds one EntityDoc; a CUE file holds a whole Document.
type Document struct {
	Lessons []EntityDoc `yaml:"lessons" json:"lessons"`
	Menus   []EntityDoc `yaml:"menus" json:"menus"`
	Domains []DomainDoc `yaml:"domains" json:"domains"`
}

// EntityDoc is a lesson or menu: a titled sequence of pages.
type EntityDoc struct {
	Metadata EntityMeta `yaml:"metadata" json:"metadata"`
	Pages    []PageDoc  `yaml:"pages" json:"pages"`
}

// EntityMeta identifies an entity. DomainID is only meaningful for lessons.
type EntityMeta struct {
	ID       int64  `yaml:"id" json:"id"`
	Title    string `yaml:"title" json:"title"`
	DomainID *int64 `yaml:"domainId,omitempty" json:"domainId,omitempty"`
}

// PageDoc lists the components shown on one page.
type PageDoc struct {
	Components []ComponentDoc `yaml:"components" json:"components"`
}

// ComponentDoc declares one component instance and its type name.
type ComponentDoc struct {
	ID   int64  `yaml:"id" json:"id"`
	Type string `yaml:"type" json:"type"`
}

// DomainDoc is a top-level grouping of lessons.
type DomainDoc struct {
	ID    int64  `yaml:"id" json:"id"`
	Title string `yaml:"title" json:"title"`
}
