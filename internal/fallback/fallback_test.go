package fallback_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/metodolab/metodobot/internal/fallback"
)

func TestAskSuccess(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("expected JSON content type, got %q", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("request body not JSON: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"answer":  "Sí, el laboratorio analiza **diquat** en salmón.",
			"sources": []string{"metodologías internas"},
		})
	}))
	defer srv.Close()

	client := &fallback.Client{Endpoint: srv.URL}
	ans, err := client.Ask(context.Background(), "¿analizan diquat?", "pesticidas en salmón",
		[]string{"Analizamos Diquat en salmón."})
	if err != nil {
		t.Fatalf("Ask failed: %v", err)
	}

	if got["query"] != "¿analizan diquat?" {
		t.Errorf("query not forwarded: %v", got["query"])
	}
	if got["previous_query"] != "pesticidas en salmón" {
		t.Errorf("previous query not forwarded: %v", got["previous_query"])
	}
	if got["include_local"] != true {
		t.Errorf("include_local should be set when local results exist")
	}

	if !strings.Contains(ans.HTML, "<strong>diquat</strong>") {
		t.Errorf("bold emphasis should survive post-processing: %q", ans.HTML)
	}
	if !strings.HasPrefix(ans.HTML, "<p>") {
		t.Errorf("answer should be paragraph markup: %q", ans.HTML)
	}
	if len(ans.Sources) != 1 {
		t.Errorf("sources lost: %v", ans.Sources)
	}
}

func TestAskNotConfigured(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := &fallback.Client{Endpoint: srv.URL}
	_, err := client.Ask(context.Background(), "hola", "", nil)
	if !errors.Is(err, fallback.ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured on 503, got %v", err)
	}

	// empty endpoint behaves the same way
	client = &fallback.Client{}
	if _, err := client.Ask(context.Background(), "hola", "", nil); !errors.Is(err, fallback.ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured with empty endpoint, got %v", err)
	}
}

func TestAskMalformedResponses(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"non-JSON body", http.StatusOK, "<html>gateway error</html>"},
		{"missing answer", http.StatusOK, `{"sources": []}`},
		{"blank answer", http.StatusOK, `{"answer": "   "}`},
		{"error envelope", http.StatusOK, `{"error": "backend exploded"}`},
		{"server error", http.StatusInternalServerError, `{}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			client := &fallback.Client{Endpoint: srv.URL}
			_, err := client.Ask(context.Background(), "hola", "", nil)
			if !errors.Is(err, fallback.ErrUnavailable) {
				t.Fatalf("expected ErrUnavailable, got %v", err)
			}
		})
	}
}

func TestAskTransportFailure(t *testing.T) {
	client := &fallback.Client{Endpoint: "http://127.0.0.1:1"}
	_, err := client.Ask(context.Background(), "hola", "", nil)
	if !errors.Is(err, fallback.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable on refused connection, got %v", err)
	}
}

func TestRenderable(t *testing.T) {
	tests := []struct {
		name     string
		answer   string
		contains []string
		excludes []string
	}{
		{
			name:     "plain text wrapped in paragraph",
			answer:   "El laboratorio analiza diquat.",
			contains: []string{"<p>El laboratorio analiza diquat.</p>"},
		},
		{
			name:     "markdown bold preserved",
			answer:   "Analizamos **diquat** y paraquat.",
			contains: []string{"<strong>diquat</strong>"},
		},
		{
			name:     "paragraph split on blank lines",
			answer:   "Primera parte.\n\nSegunda parte.",
			contains: []string{"<p>Primera parte.</p>", "<p>Segunda parte.</p>"},
		},
		{
			name:     "html snippet reduced and escaped",
			answer:   `<p>Analizamos <script>alert("x")</script>diquat</p>`,
			contains: []string{"diquat"},
			excludes: []string{"<script>"},
		},
		{
			name:     "angle brackets in text escaped",
			answer:   "LOD <10 ng/g",
			contains: []string{"&lt;10 ng/g"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := fallback.Renderable(tt.answer)
			if err != nil {
				t.Fatalf("Renderable failed: %v", err)
			}
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("missing %q in:\n%s", want, got)
				}
			}
			for _, bad := range tt.excludes {
				if strings.Contains(got, bad) {
					t.Errorf("unexpected %q in:\n%s", bad, got)
				}
			}
		})
	}

	if _, err := fallback.Renderable("   "); err == nil {
		t.Error("blank answer should be rejected")
	}
}
