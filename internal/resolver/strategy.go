package resolver

// Strategy is the closed set of physical addressing schemes a rule can
// produce. The marker method restricts implementations to this package's
// three variants; dispatch handles each with an exhaustive type switch.
type Strategy interface {
	strategy()
}

// PathStrategy addresses data by file path (e.g. object-store keys,
// parquet directories).
type PathStrategy struct {
	DatasourceID string
	PathTemplate string
}

// TableStrategy addresses data by table name, optionally schema-qualified.
type TableStrategy struct {
	DatasourceID   string
	TableTemplate  string
	SchemaTemplate string // optional
}

// CatalogStrategy addresses data through a catalog endpoint.
type CatalogStrategy struct {
	DatasourceID     string
	EndpointTemplate string
}

func (PathStrategy) strategy()    {}
func (TableStrategy) strategy()   {}
func (CatalogStrategy) strategy() {}
