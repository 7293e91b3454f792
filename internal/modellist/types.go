package modellist

import "jmxv-importer/internal/importer"

// Entry is one model parsed from a model list, with paths resolved.
type Entry struct {
	Group string
	Model importer.Model
}
