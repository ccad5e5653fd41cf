package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestFiltersHandler_List(t *testing.T) {
	handler := NewFiltersHandler(testCatalog())

	recorder := httptest.NewRecorder()
	handler.List(recorder, httptest.NewRequest("GET", "/api/v1/filters", nil))

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", recorder.Code)
	}

	var filters []FilterResponse
	if err := json.Unmarshal(recorder.Body.Bytes(), &filters); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if len(filters) != 6 {
		t.Fatalf("expected 6 filters, got %d", len(filters))
	}
	if filters[0].Value != "all" || filters[5].Value != "border" {
		t.Errorf("unexpected order: first '%s', last '%s'", filters[0].Value, filters[5].Value)
	}
}

func TestFiltersHandler_Register(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		expectedStatus int
		registered     bool
		count          int
	}{
		{
			name:           "valid filter",
			body:           `{"value":"crown","label":"Crown","image":"/crown.png","category":"head"}`,
			expectedStatus: http.StatusOK,
			registered:     true,
			count:          7,
		},
		{
			name:           "category defaults to eyes",
			body:           `{"value":"monocle","image":"/monocle.png"}`,
			expectedStatus: http.StatusOK,
			registered:     true,
			count:          7,
		},
		{
			name:           "missing image",
			body:           `{"value":"crown","category":"head"}`,
			expectedStatus: http.StatusOK,
			registered:     false,
			count:          6,
		},
		{
			name:           "missing value",
			body:           `{"image":"/crown.png","category":"head"}`,
			expectedStatus: http.StatusOK,
			registered:     false,
			count:          6,
		},
		{
			name:           "unknown category",
			body:           `{"value":"crown","image":"/crown.png","category":"tail"}`,
			expectedStatus: http.StatusOK,
			registered:     false,
			count:          6,
		},
		{
			name:           "malformed body",
			body:           `{"value":`,
			expectedStatus: http.StatusBadRequest,
			count:          6,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cat := testCatalog()
			handler := NewFiltersHandler(cat)

			recorder := httptest.NewRecorder()
			handler.Register(recorder, httptest.NewRequest("POST", "/api/v1/filters", strings.NewReader(tc.body)))

			if recorder.Code != tc.expectedStatus {
				t.Fatalf("expected status %d, got %d", tc.expectedStatus, recorder.Code)
			}
			if cat.Len() != tc.count {
				t.Errorf("expected %d filters in catalog, got %d", tc.count, cat.Len())
			}
			if tc.expectedStatus != http.StatusOK {
				return
			}

			var response RegisterFilterResponse
			if err := json.Unmarshal(recorder.Body.Bytes(), &response); err != nil {
				t.Fatalf("failed to unmarshal response: %v", err)
			}
			if response.Registered != tc.registered {
				t.Errorf("expected registered=%v, got %v", tc.registered, response.Registered)
			}
		})
	}
}

func TestFiltersHandler_ListShowsDisplayLabel(t *testing.T) {
	cat := testCatalog()
	handler := NewFiltersHandler(cat)

	recorder := httptest.NewRecorder()
	handler.Register(recorder, httptest.NewRequest("POST", "/api/v1/filters",
		strings.NewReader(`{"value":"party hat","image":"/party.png","category":"head"}`)))

	recorder = httptest.NewRecorder()
	handler.List(recorder, httptest.NewRequest("GET", "/api/v1/filters", nil))

	var filters []FilterResponse
	if err := json.Unmarshal(recorder.Body.Bytes(), &filters); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	last := filters[len(filters)-1]
	if last.Label != "Party Hat" {
		t.Errorf("expected label 'Party Hat', got '%s'", last.Label)
	}
}
