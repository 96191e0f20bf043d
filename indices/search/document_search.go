package search

import (
	"encoding/json"
	"fmt"
	"strings"

	"docflow/client/es"
	"docflow/domain"
	"docflow/domain/state"
	"docflow/indices"
	"docflow/session"
)

var (
	SearchDocumentsFunc = SearchDocuments
)

func SearchDocuments(q domain.DocumentQuery, s *session.Session) ([]domain.DocumentDetail, error) {
	filters := make([]es.H, 0, 4)

	if q.Title != "" {
		filters = append(filters, es.H{"match": es.H{"title": es.H{"query": q.Title, "operator": "AND"}}})
	}
	if len(q.Statuses) > 0 {
		filters = append(filters, es.H{"terms": es.H{"status": q.Statuses}})
	}

	if q.ArchiveState == domain.ArchiveStateOn {
		filters = append(filters, es.H{"term": es.H{"status": state.Archived}})
	} else if q.ArchiveState == domain.ArchiveStateAll {
		// no status filter
	} else {
		filters = append(filters, es.H{"bool": es.H{"must_not": es.H{"term": es.H{"status": state.Archived}}}})
	}

	sorts := make([]es.H, 0, 1)
	sorts = append(sorts, es.H{"createTime": es.H{"order": "desc"}})

	root := es.H{"bool": es.H{"filter": filters}}
	r, err := es.SearchFunc(indices.DocumentIndexName, es.H{"size": 10000, "query": root, "sort": sorts}, s)
	if err != nil {
		return nil, err
	}

	details := make([]domain.DocumentDetail, 0, len(r.Hits.Hits))
	for _, hit := range r.Hits.Hits {
		detail := domain.DocumentDetail{}
		if err := json.NewDecoder(strings.NewReader(string(hit.Source))).Decode(&detail); err != nil {
			return nil, fmt.Errorf(string(hit.Source))
		}
		details = append(details, detail)
	}
	return details, nil
}
