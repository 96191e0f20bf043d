package search_test

import (
	"testing"

	"docflow/client/es"
	"docflow/domain"
	"docflow/domain/state"
	"docflow/indices"
	"docflow/indices/search"
	"docflow/session"
	"docflow/testinfra"

	. "github.com/onsi/gomega"
)

func TestSearchDocuments(t *testing.T) {
	RegisterTestingT(t)

	t.Run("search decodes hits into document details", func(t *testing.T) {
		var capturedIndex string
		var capturedQuery interface{}
		es.SearchFunc = func(index string, query interface{}, s *session.Session) (*es.ESSearchResult, error) {
			capturedIndex = index
			capturedQuery = query
			return &es.ESSearchResult{Hits: es.ESSearchHits{Hits: []es.ESSearchHit{
				{Id: "100", Source: es.Source(`{"id":"100","code":"QA-2022-SOP-0001","title":"quality manual","status":"published"}`)},
			}}}, nil
		}

		details, err := search.SearchDocuments(domain.DocumentQuery{Title: "quality"}, testinfra.BuildSecCtx(10))
		Expect(err).To(BeNil())
		Expect(len(details)).To(Equal(1))
		Expect(details[0].Code).To(Equal("QA-2022-SOP-0001"))
		Expect(details[0].Status).To(Equal(state.Published))

		Expect(capturedIndex).To(Equal(indices.DocumentIndexName))
		root := capturedQuery.(es.H)
		filters := root["query"].(es.H)["bool"].(es.H)["filter"].([]es.H)
		Expect(filters).To(ContainElement(es.H{"match": es.H{"title": es.H{"query": "quality", "operator": "AND"}}}))
		// archived documents excluded unless asked for
		Expect(filters).To(ContainElement(es.H{"bool": es.H{"must_not": es.H{"term": es.H{"status": state.Archived}}}}))
	})

	t.Run("archive state filters map to status terms", func(t *testing.T) {
		var capturedQuery interface{}
		es.SearchFunc = func(index string, query interface{}, s *session.Session) (*es.ESSearchResult, error) {
			capturedQuery = query
			return &es.ESSearchResult{}, nil
		}

		_, err := search.SearchDocuments(domain.DocumentQuery{ArchiveState: domain.ArchiveStateOn}, testinfra.BuildSecCtx(10))
		Expect(err).To(BeNil())
		filters := capturedQuery.(es.H)["query"].(es.H)["bool"].(es.H)["filter"].([]es.H)
		Expect(filters).To(ContainElement(es.H{"term": es.H{"status": state.Archived}}))

		_, err = search.SearchDocuments(domain.DocumentQuery{ArchiveState: domain.ArchiveStateAll}, testinfra.BuildSecCtx(10))
		Expect(err).To(BeNil())
		filters = capturedQuery.(es.H)["query"].(es.H)["bool"].(es.H)["filter"].([]es.H)
		Expect(len(filters)).To(Equal(0))
	})
}
