package search

import (
	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/simple"
	"github.com/blevesearch/bleve/v2/analysis/lang/en"
	"github.com/blevesearch/bleve/v2/mapping"
)

// buildIndexMapping creates the Bleve index mapping for book documents.
//
// Titles and authors get full-text search with English stemming; the picker
// is a keyword field so "Thirsa" filters exactly; year, ratings, and the
// meeting date are numeric for range queries and sorting.
func buildIndexMapping() mapping.IndexMapping {
	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultAnalyzer = en.AnalyzerName

	docMapping := bleve.NewDocumentMapping()

	// Title - primary search target
	titleFieldMapping := bleve.NewTextFieldMapping()
	titleFieldMapping.Analyzer = en.AnalyzerName
	titleFieldMapping.Store = true
	titleFieldMapping.IncludeTermVectors = true // For highlighting
	docMapping.AddFieldMappingsAt("title", titleFieldMapping)

	// Author - searchable
	authorFieldMapping := bleve.NewTextFieldMapping()
	authorFieldMapping.Analyzer = en.AnalyzerName
	authorFieldMapping.Store = true
	authorFieldMapping.IncludeTermVectors = true // For highlighting
	docMapping.AddFieldMappingsAt("author", authorFieldMapping)

	// Location - searchable without stemming
	locationFieldMapping := bleve.NewTextFieldMapping()
	locationFieldMapping.Analyzer = simple.Name
	locationFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("location", locationFieldMapping)

	// Picker - exact match, facetable
	pickedByFieldMapping := bleve.NewTextFieldMapping()
	pickedByFieldMapping.Analyzer = keyword.Name
	pickedByFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("picked_by", pickedByFieldMapping)

	// ID - stored but not analyzed
	idFieldMapping := bleve.NewTextFieldMapping()
	idFieldMapping.Analyzer = keyword.Name
	docMapping.AddFieldMappingsAt("id", idFieldMapping)

	// Numeric fields for range filtering and sorting
	yearFieldMapping := bleve.NewNumericFieldMapping()
	yearFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("year", yearFieldMapping)

	clubAvgFieldMapping := bleve.NewNumericFieldMapping()
	clubAvgFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("club_avg", clubAvgFieldMapping)

	goodreadsAvgFieldMapping := bleve.NewNumericFieldMapping()
	goodreadsAvgFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("goodreads_avg", goodreadsAvgFieldMapping)

	meetingDateFieldMapping := bleve.NewNumericFieldMapping()
	meetingDateFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("meeting_date", meetingDateFieldMapping)

	voterCountFieldMapping := bleve.NewNumericFieldMapping()
	voterCountFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("voter_count", voterCountFieldMapping)

	indexMapping.AddDocumentMapping("_default", docMapping)

	return indexMapping
}
