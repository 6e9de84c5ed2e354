// Package metadata loads the project's resolution metadata from YAML
// documents: datasources, datasets, resolvers, calendars, periods and
// project overrides. It compiles rule conditions, applies the resolver
// precedence chain (project override, dataset reference, system default)
// and materializes the period sets the resolver engine consumes.
package metadata

// document is the raw YAML shape of one metadata file. Files in the
// metadata directory are merged; section order across files is not
// significant, but rule order within a resolver is preserved exactly as
// authored.
type document struct {
	Datasources     []datasourceDoc `yaml:"datasources"`
	Datasets        []datasetDoc    `yaml:"datasets"`
	Resolvers       []resolverDoc   `yaml:"resolvers"`
	Calendars       []calendarDoc   `yaml:"calendars"`
	Periods         []periodDoc     `yaml:"periods"`
	Projects        []projectDoc    `yaml:"projects"`
	DefaultResolver string          `yaml:"default_resolver"`
}

type datasourceDoc struct {
	ID          string `yaml:"id"`
	Type        string `yaml:"type"`
	Description string `yaml:"description"`
}

type datasetDoc struct {
	ID          string `yaml:"id"`
	Description string `yaml:"description"`
	// Resolver optionally references a resolver by ID.
	Resolver string `yaml:"resolver"`
	// Calendar names the calendar used for period expansion. May be
	// omitted when the project defines a single calendar.
	Calendar string `yaml:"calendar"`
}

type resolverDoc struct {
	ID    string    `yaml:"id"`
	Rules []ruleDoc `yaml:"rules"`
}

type ruleDoc struct {
	Name      string      `yaml:"name"`
	When      string      `yaml:"when"`
	DataLevel string      `yaml:"data_level"`
	Strategy  strategyDoc `yaml:"strategy"`
}

type strategyDoc struct {
	Type       string `yaml:"type"` // path, table, catalog
	Datasource string `yaml:"datasource"`
	Path       string `yaml:"path"`
	Table      string `yaml:"table"`
	Schema     string `yaml:"schema"`
	Endpoint   string `yaml:"endpoint"`
}

type calendarDoc struct {
	ID     string   `yaml:"id"`
	Levels []string `yaml:"levels"`
}

type periodDoc struct {
	ID       string `yaml:"id"`
	Name     string `yaml:"name"`
	Level    string `yaml:"level"`
	Parent   string `yaml:"parent"`
	Start    string `yaml:"start"` // YYYY-MM-DD
	End      string `yaml:"end"`   // YYYY-MM-DD
	Sequence int    `yaml:"sequence"`
}

type projectDoc struct {
	ID string `yaml:"id"`
	// Resolvers maps dataset ID to the resolver ID that overrides the
	// dataset's own reference for this project.
	Resolvers map[string]string `yaml:"resolvers"`
}

// Datasource describes a physical data source referenced by strategies.
type Datasource struct {
	ID          string
	Type        string
	Description string
}

// Dataset is a logical dataset with its resolver and calendar references.
type Dataset struct {
	ID          string
	Description string
	ResolverID  string
	CalendarID  string
}

// Project holds per-project resolver overrides.
type Project struct {
	ID        string
	Overrides map[string]string // dataset ID -> resolver ID
}
