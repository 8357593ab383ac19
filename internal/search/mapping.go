package search

import (
	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/lang/en"
	"github.com/blevesearch/bleve/v2/mapping"
)

// buildIndexMapping creates the Bleve index mapping for catalog documents.
//
// Text fields get English stemming; filter fields (type, status, category,
// tags, sku) use the keyword analyzer for exact matching; numeric fields
// support range queries and sorting.
func buildIndexMapping() mapping.IndexMapping {
	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultAnalyzer = en.AnalyzerName

	docMapping := bleve.NewDocumentMapping()

	// Name is the primary search target and carries term vectors for
	// highlighting.
	nameField := bleve.NewTextFieldMapping()
	nameField.Analyzer = en.AnalyzerName
	nameField.Store = true
	nameField.IncludeTermVectors = true
	docMapping.AddFieldMappingsAt("name", nameField)

	// Description is searchable but not stored.
	descField := bleve.NewTextFieldMapping()
	descField.Analyzer = en.AnalyzerName
	descField.Store = false
	docMapping.AddFieldMappingsAt("description", descField)

	authorField := bleve.NewTextFieldMapping()
	authorField.Analyzer = en.AnalyzerName
	authorField.Store = true
	authorField.IncludeTermVectors = true
	docMapping.AddFieldMappingsAt("author", authorField)

	// Exact-match fields.
	for _, field := range []string{"id", "type", "status", "category_slug"} {
		fm := bleve.NewTextFieldMapping()
		fm.Analyzer = keyword.Name
		fm.Store = true
		docMapping.AddFieldMappingsAt(field, fm)
	}

	// SKU stays a keyword so "SHIRT-1-M" matches whole.
	skuField := bleve.NewTextFieldMapping()
	skuField.Analyzer = keyword.Name
	skuField.Store = true
	docMapping.AddFieldMappingsAt("sku", skuField)

	// Tag slugs keep compound values intact (e.g. "slow-fashion").
	tagsField := bleve.NewTextFieldMapping()
	tagsField.Analyzer = keyword.Name
	tagsField.Store = true
	tagsField.IncludeTermVectors = true
	docMapping.AddFieldMappingsAt("tags", tagsField)

	// Numeric fields for range filtering and sorting.
	for _, field := range []string{"price", "created_at", "updated_at"} {
		fm := bleve.NewNumericFieldMapping()
		fm.Store = true
		docMapping.AddFieldMappingsAt(field, fm)
	}

	indexMapping.AddDocumentMapping("_default", docMapping)

	return indexMapping
}
