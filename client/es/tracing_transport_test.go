package es

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	. "github.com/onsi/gomega"
	"github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/ext"
	"github.com/opentracing/opentracing-go/mocktracer"
)

type failingTransport struct{}

func (t *failingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	return nil, errors.New("connection refused")
}

func TestTracingTransport(t *testing.T) {
	RegisterTestingT(t)

	tracer := mocktracer.New()
	opentracing.SetGlobalTracer(tracer)

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	t.Run("pass through when no span is active", func(t *testing.T) {
		tracer.Reset()

		client := &http.Client{Transport: &TracingTransport{Transport: http.DefaultTransport}}
		req, _ := http.NewRequest(http.MethodGet, ts.URL, nil)
		res, err := client.Do(req)
		Expect(err).To(BeNil())
		Expect(res.StatusCode).To(Equal(http.StatusOK))
		Expect(tracer.FinishedSpans()).To(BeEmpty())
	})

	t.Run("open a client span under the active span", func(t *testing.T) {
		tracer.Reset()

		client := &http.Client{Transport: &TracingTransport{Transport: http.DefaultTransport}}
		req, _ := http.NewRequest(http.MethodGet, ts.URL, nil)

		parent := tracer.StartSpan("caller")
		req = req.WithContext(opentracing.ContextWithSpan(context.Background(), parent))
		res, err := client.Do(req)
		Expect(err).To(BeNil())
		Expect(res.StatusCode).To(Equal(http.StatusOK))
		parent.Finish()

		spans := tracer.FinishedSpans()
		Expect(spans).To(HaveLen(2))
		child := spans[0]
		Expect(child.OperationName).To(Equal("GET "))
		Expect(child.ParentID).To(Equal(spans[1].SpanContext.SpanID))
		Expect(child.Tags()).To(Equal(map[string]interface{}{
			"span.kind":        ext.SpanKindEnum("client"),
			"http.url":         ts.URL,
			"http.method":      "GET",
			"http.status_code": uint16(200),
			"error":            false,
		}))
	})

	t.Run("mark the span on transport errors", func(t *testing.T) {
		tracer.Reset()

		client := &http.Client{Transport: &TracingTransport{Transport: &failingTransport{}}}
		req, _ := http.NewRequest(http.MethodGet, "http://127.0.0.1:1", nil)

		parent := tracer.StartSpan("caller")
		req = req.WithContext(opentracing.ContextWithSpan(context.Background(), parent))
		_, err := client.Do(req)
		Expect(err).ToNot(BeNil())
		parent.Finish()

		spans := tracer.FinishedSpans()
		Expect(spans).To(HaveLen(2))
		Expect(spans[0].Tags()["error"]).To(Equal(true))
	})
}
