package es

import (
	"context"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"testing"

	"docflow/session"

	"github.com/elastic/go-elasticsearch/v7"
	. "github.com/onsi/gomega"
)

func startESTestServer(handler http.HandlerFunc) func() {
	ts := httptest.NewServer(handler)
	client, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{ts.URL}})
	if err != nil {
		panic(err)
	}
	ActiveESClient = client
	return ts.Close
}

func esTestSession() *session.Session {
	return &session.Session{Context: context.Background()}
}

func TestIndex(t *testing.T) {
	RegisterTestingT(t)

	t.Run("send the document body to the index endpoint", func(t *testing.T) {
		var method, path, refresh, body string
		defer startESTestServer(func(w http.ResponseWriter, r *http.Request) {
			method, path, refresh = r.Method, r.URL.Path, r.URL.Query().Get("refresh")
			b, _ := ioutil.ReadAll(r.Body)
			body = string(b)
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"result": "created"}`))
		})()

		err := Index("documents", 100, H{"code": "QA-2022-SOP-0001"}, esTestSession())
		Expect(err).To(BeNil())
		Expect(method).To(Equal(http.MethodPut))
		Expect(path).To(Equal("/documents/_doc/100"))
		Expect(refresh).To(Equal("true"))
		Expect(body).To(MatchJSON(`{"code": "QA-2022-SOP-0001"}`))
	})

	t.Run("report error responses", func(t *testing.T) {
		defer startESTestServer(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"error": "boom"}`))
		})()

		err := Index("documents", 100, H{}, esTestSession())
		Expect(err).ToNot(BeNil())
		Expect(err.Error()).To(ContainSubstring("500"))
	})
}

func TestSearch(t *testing.T) {
	RegisterTestingT(t)

	t.Run("decode hits from the search response", func(t *testing.T) {
		var path, body string
		defer startESTestServer(func(w http.ResponseWriter, r *http.Request) {
			path = r.URL.Path
			b, _ := ioutil.ReadAll(r.Body)
			body = string(b)
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"took": 1, "timed_out": false,
				"hits": {"total": {"value": 1, "relation": "eq"}, "max_score": 1.0,
				"hits": [{"_index": "documents", "_id": "100", "_score": 1.0,
				"_source": {"code": "QA-2022-SOP-0001"}}]}}`))
		})()

		result, err := Search("documents", H{"query": H{"match_all": H{}}}, esTestSession())
		Expect(err).To(BeNil())
		Expect(path).To(Equal("/documents/_search"))
		Expect(body).To(MatchJSON(`{"query": {"match_all": {}}}`))
		Expect(result.Hits.Total.Value).To(Equal(1))
		Expect(result.Hits.Hits).To(HaveLen(1))
		Expect(string(result.Hits.Hits[0].Source)).To(MatchJSON(`{"code": "QA-2022-SOP-0001"}`))
	})
}

func TestGetDocument(t *testing.T) {
	RegisterTestingT(t)

	t.Run("return the raw source of a found document", func(t *testing.T) {
		var path string
		defer startESTestServer(func(w http.ResponseWriter, r *http.Request) {
			path = r.URL.Path
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"_index": "documents", "_id": "100", "found": true,
				"_source": {"code": "QA-2022-SOP-0001"}}`))
		})()

		source, err := GetDocument("documents", 100, esTestSession())
		Expect(err).To(BeNil())
		Expect(path).To(Equal("/documents/_doc/100"))
		Expect(string(source)).To(MatchJSON(`{"code": "QA-2022-SOP-0001"}`))
	})
}

func TestDeleteDocumentById(t *testing.T) {
	RegisterTestingT(t)

	t.Run("tolerate documents already absent", func(t *testing.T) {
		for _, result := range []string{`{"result": "deleted"}`, `{"result": "not_found"}`} {
			defer startESTestServer(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(result))
			})()

			Expect(DeleteDocumentById("documents", 100, esTestSession())).To(BeNil())
		}
	})

	t.Run("report unexpected delete results", func(t *testing.T) {
		defer startESTestServer(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"result": "noop"}`))
		})()

		err := DeleteDocumentById("documents", 100, esTestSession())
		Expect(err).ToNot(BeNil())
		Expect(err.Error()).To(ContainSubstring("noop"))
	})
}

func TestDropIndex(t *testing.T) {
	RegisterTestingT(t)

	t.Run("issue a delete against the index", func(t *testing.T) {
		var method, path string
		defer startESTestServer(func(w http.ResponseWriter, r *http.Request) {
			method, path = r.Method, r.URL.Path
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"acknowledged": true}`))
		})()

		Expect(DropIndex("documents", esTestSession())).To(BeNil())
		Expect(method).To(Equal(http.MethodDelete))
		Expect(path).To(Equal("/documents"))
	})
}
