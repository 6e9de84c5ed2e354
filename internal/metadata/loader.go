package metadata

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/leapstack-labs/ledgerpipe/internal/calendar"
	"github.com/leapstack-labs/ledgerpipe/internal/expr"
	"github.com/leapstack-labs/ledgerpipe/internal/resolver"
)

// dateLayout is the date format for period start/end fields.
const dateLayout = "2006-01-02"

// Store is the loaded, compiled metadata for one project directory. It is
// immutable after Load and safe for concurrent readers.
type Store struct {
	datasources map[string]Datasource
	datasets    map[string]Dataset
	resolvers   map[string]resolver.Resolver
	calendars   map[string]*calendar.Calendar
	projects    map[string]Project
	periods     []calendar.Period
	periodSet   *calendar.PeriodSet

	datasetOrder  []string
	resolverOrder []string

	defaultResolver string
}

// Load reads every .yaml/.yml file in dir, merges the documents and
// compiles the result. Files are read in lexical order so repeated loads
// see identical input ordering.
func Load(dir string) (*Store, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read metadata directory: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := filepath.Ext(e.Name())
		if ext == ".yaml" || ext == ".yml" {
			names = append(names, e.Name())
		}
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("no metadata files (*.yaml) found in %s", dir)
	}
	sort.Strings(names)

	merged := document{}
	for _, name := range names {
		path := filepath.Join(dir, name)
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		var doc document
		if err := yaml.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
		merged.Datasources = append(merged.Datasources, doc.Datasources...)
		merged.Datasets = append(merged.Datasets, doc.Datasets...)
		merged.Resolvers = append(merged.Resolvers, doc.Resolvers...)
		merged.Calendars = append(merged.Calendars, doc.Calendars...)
		merged.Periods = append(merged.Periods, doc.Periods...)
		merged.Projects = append(merged.Projects, doc.Projects...)
		if doc.DefaultResolver != "" {
			if merged.DefaultResolver != "" && merged.DefaultResolver != doc.DefaultResolver {
				return nil, fmt.Errorf("%s: default_resolver %q conflicts with earlier value %q",
					path, doc.DefaultResolver, merged.DefaultResolver)
			}
			merged.DefaultResolver = doc.DefaultResolver
		}
	}

	return build(merged)
}

// build compiles the merged document into a Store.
func build(doc document) (*Store, error) {
	s := &Store{
		datasources:     make(map[string]Datasource),
		datasets:        make(map[string]Dataset),
		resolvers:       make(map[string]resolver.Resolver),
		calendars:       make(map[string]*calendar.Calendar),
		projects:        make(map[string]Project),
		defaultResolver: doc.DefaultResolver,
	}

	for _, d := range doc.Datasources {
		if d.ID == "" {
			return nil, fmt.Errorf("datasource with empty id")
		}
		if _, dup := s.datasources[d.ID]; dup {
			return nil, fmt.Errorf("duplicate datasource %q", d.ID)
		}
		s.datasources[d.ID] = Datasource{ID: d.ID, Type: d.Type, Description: d.Description}
	}

	for _, c := range doc.Calendars {
		cal, err := calendar.New(c.ID, c.Levels)
		if err != nil {
			return nil, fmt.Errorf("invalid calendar: %w", err)
		}
		if _, dup := s.calendars[c.ID]; dup {
			return nil, fmt.Errorf("duplicate calendar %q", c.ID)
		}
		s.calendars[c.ID] = cal
	}

	for _, d := range doc.Datasets {
		if d.ID == "" {
			return nil, fmt.Errorf("dataset with empty id")
		}
		if _, dup := s.datasets[d.ID]; dup {
			return nil, fmt.Errorf("duplicate dataset %q", d.ID)
		}
		s.datasets[d.ID] = Dataset{
			ID:          d.ID,
			Description: d.Description,
			ResolverID:  d.Resolver,
			CalendarID:  d.Calendar,
		}
		s.datasetOrder = append(s.datasetOrder, d.ID)
	}

	for _, r := range doc.Resolvers {
		compiled, err := compileResolver(r)
		if err != nil {
			return nil, err
		}
		if _, dup := s.resolvers[r.ID]; dup {
			return nil, fmt.Errorf("duplicate resolver %q", r.ID)
		}
		s.resolvers[r.ID] = compiled
		s.resolverOrder = append(s.resolverOrder, r.ID)
	}

	for _, p := range doc.Projects {
		if p.ID == "" {
			return nil, fmt.Errorf("project with empty id")
		}
		if _, dup := s.projects[p.ID]; dup {
			return nil, fmt.Errorf("duplicate project %q", p.ID)
		}
		s.projects[p.ID] = Project{ID: p.ID, Overrides: p.Resolvers}
	}

	periods, err := buildPeriods(doc.Periods)
	if err != nil {
		return nil, err
	}
	s.periods = periods
	s.periodSet, err = calendar.NewPeriodSet(periods)
	if err != nil {
		return nil, fmt.Errorf("invalid period set: %w", err)
	}

	return s, nil
}

// compileResolver turns a resolver document into an engine resolver,
// compiling when conditions and strategy variants. Rule order is kept
// exactly as authored.
func compileResolver(doc resolverDoc) (resolver.Resolver, error) {
	if doc.ID == "" {
		return resolver.Resolver{}, fmt.Errorf("resolver with empty id")
	}
	if len(doc.Rules) == 0 {
		return resolver.Resolver{}, fmt.Errorf("resolver %q has no rules", doc.ID)
	}

	res := resolver.Resolver{ID: doc.ID, Rules: make([]resolver.Rule, 0, len(doc.Rules))}
	seen := make(map[string]bool, len(doc.Rules))
	for i, rd := range doc.Rules {
		if rd.Name == "" {
			return resolver.Resolver{}, fmt.Errorf("resolver %q: rule %d has no name", doc.ID, i)
		}
		if seen[rd.Name] {
			return resolver.Resolver{}, fmt.Errorf("resolver %q: duplicate rule name %q", doc.ID, rd.Name)
		}
		seen[rd.Name] = true

		rule := resolver.Rule{Name: rd.Name, DataLevel: rd.DataLevel}
		if rule.DataLevel == "" {
			rule.DataLevel = resolver.DataLevelAny
		}

		if strings.TrimSpace(rd.When) != "" {
			cond, err := expr.Compile(rd.When)
			if err != nil {
				return resolver.Resolver{}, fmt.Errorf("resolver %q: rule %q: invalid when condition: %w",
					doc.ID, rd.Name, err)
			}
			rule.When = cond
		}

		strategy, err := buildStrategy(rd.Strategy)
		if err != nil {
			return resolver.Resolver{}, fmt.Errorf("resolver %q: rule %q: %w", doc.ID, rd.Name, err)
		}
		rule.Strategy = strategy

		res.Rules = append(res.Rules, rule)
	}
	return res, nil
}

func buildStrategy(doc strategyDoc) (resolver.Strategy, error) {
	if doc.Datasource == "" {
		return nil, fmt.Errorf("strategy has no datasource")
	}
	switch doc.Type {
	case "path":
		if doc.Path == "" {
			return nil, fmt.Errorf("path strategy has no path template")
		}
		return resolver.PathStrategy{DatasourceID: doc.Datasource, PathTemplate: doc.Path}, nil
	case "table":
		if doc.Table == "" {
			return nil, fmt.Errorf("table strategy has no table template")
		}
		return resolver.TableStrategy{
			DatasourceID:   doc.Datasource,
			TableTemplate:  doc.Table,
			SchemaTemplate: doc.Schema,
		}, nil
	case "catalog":
		if doc.Endpoint == "" {
			return nil, fmt.Errorf("catalog strategy has no endpoint template")
		}
		return resolver.CatalogStrategy{DatasourceID: doc.Datasource, EndpointTemplate: doc.Endpoint}, nil
	case "":
		return nil, fmt.Errorf("strategy has no type")
	}
	return nil, fmt.Errorf("unknown strategy type %q (expected path, table, or catalog)", doc.Type)
}

func buildPeriods(docs []periodDoc) ([]calendar.Period, error) {
	periods := make([]calendar.Period, 0, len(docs))
	for _, pd := range docs {
		p := calendar.Period{
			ID:       pd.ID,
			Name:     pd.Name,
			Level:    pd.Level,
			ParentID: pd.Parent,
			Sequence: pd.Sequence,
		}
		var err error
		if pd.Start != "" {
			p.Start, err = time.Parse(dateLayout, pd.Start)
			if err != nil {
				return nil, fmt.Errorf("period %q: invalid start date %q", pd.ID, pd.Start)
			}
		}
		if pd.End != "" {
			p.End, err = time.Parse(dateLayout, pd.End)
			if err != nil {
				return nil, fmt.Errorf("period %q: invalid end date %q", pd.ID, pd.End)
			}
		}
		periods = append(periods, p)
	}
	return periods, nil
}
