package chroma

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/tdis/disaster-chatbot/internal/core/domain"
)

func newChromaTestServer(t *testing.T, existing map[string]bool) (*httptest.Server, *int32) {
	t.Helper()
	var ensureCalls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/api/v1/collections":
			atomic.AddInt32(&ensureCalls, 1)
			_ = json.NewEncoder(w).Encode(map[string]string{"id": "col-1"})
		case r.URL.Path == "/api/v1/collections/col-1/get":
			var req struct {
				IDs []string `json:"ids"`
			}
			_ = json.NewDecoder(r.Body).Decode(&req)
			found := []string{}
			for _, id := range req.IDs {
				if existing[id] {
					found = append(found, id)
				}
			}
			_ = json.NewEncoder(w).Encode(map[string]any{"ids": found})
		case r.URL.Path == "/api/v1/collections/col-1/add":
			var req struct {
				IDs []string `json:"ids"`
			}
			_ = json.NewDecoder(r.Body).Decode(&req)
			for _, id := range req.IDs {
				existing[id] = true
			}
			w.WriteHeader(http.StatusCreated)
		default:
			http.NotFound(w, r)
		}
	}))
	return server, &ensureCalls
}

func TestUpsertSkipsDuplicateIDs(t *testing.T) {
	existing := map[string]bool{}
	server, ensureCalls := newChromaTestServer(t, existing)
	defer server.Close()

	client := New(server.URL, "tdis_alerts")
	record := domain.Record{ID: "alert-1", Type: domain.RecordTypeAlert, Text: "Flood Warning"}

	inserted, err := client.Upsert(context.Background(), record)
	if err != nil {
		t.Fatalf("first Upsert() error = %v", err)
	}
	if !inserted {
		t.Fatalf("expected first upsert to insert")
	}

	inserted, err = client.Upsert(context.Background(), record)
	if err != nil {
		t.Fatalf("second Upsert() error = %v", err)
	}
	if inserted {
		t.Fatalf("duplicate id must be skipped, not re-inserted")
	}
	if got := atomic.LoadInt32(ensureCalls); got != 1 {
		t.Fatalf("expected collection resolved once, got %d", got)
	}
}

func TestQueryParsesRankedResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/collections":
			_ = json.NewEncoder(w).Encode(map[string]string{"id": "col-1"})
		case "/api/v1/collections/col-1/query":
			var req struct {
				QueryTexts []string `json:"query_texts"`
				NResults   int      `json:"n_results"`
			}
			_ = json.NewDecoder(r.Body).Decode(&req)
			if len(req.QueryTexts) != 1 || req.QueryTexts[0] != "floods?" {
				t.Errorf("unexpected query texts: %v", req.QueryTexts)
			}
			if req.NResults != 3 {
				t.Errorf("expected n_results=3, got %d", req.NResults)
			}
			_ = json.NewEncoder(w).Encode(map[string]any{
				"documents": [][]string{{"Flood Warning", "Heat Advisory"}},
				"metadatas": [][]map[string]string{{{"type": "alert"}, {"type": "alert"}}},
				"distances": [][]float64{{0.1, 0.4}},
			})
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	client := New(server.URL, "tdis_alerts")
	docs, err := client.Query(context.Background(), "floods?", 3)
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("expected 2 documents, got %d", len(docs))
	}
	if docs[0].Text != "Flood Warning" || docs[0].Metadata["type"] != "alert" {
		t.Fatalf("unexpected first document: %+v", docs[0])
	}
	if docs[0].Score <= docs[1].Score {
		t.Fatalf("expected rank order by relevance: %f vs %f", docs[0].Score, docs[1].Score)
	}
}

func TestQueryIncludesResponseBodyInError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/v1/collections" {
			_ = json.NewEncoder(w).Encode(map[string]string{"id": "col-1"})
			return
		}
		http.Error(w, "index corrupted", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := New(server.URL, "tdis_alerts")
	_, err := client.Query(context.Background(), "q", 3)
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(err.Error(), "index corrupted") {
		t.Fatalf("expected response body in error, got %v", err)
	}
}
