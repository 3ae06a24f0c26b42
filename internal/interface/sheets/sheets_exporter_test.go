package sheets

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"google.golang.org/api/option"

	"silentskies-service/pkg/logger"
	"silentskies-service/pkg/table"
)

func TestExportWritesHeaderAndRows(t *testing.T) {
	var body struct {
		Values [][]interface{} `json:"values"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			t.Errorf("expected PUT, got %s", r.Method)
		}
		if !strings.Contains(r.URL.Path, "/v4/spreadsheets/sheet-1/values/") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("valueInputOption") != "RAW" {
			t.Errorf("expected RAW input, got %s", r.URL.RawQuery)
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"spreadsheetId":"sheet-1","updatedRange":"Merged!A1:C2","updatedRows":2}`))
	}))
	defer srv.Close()

	exp, err := NewSheetsExporterWithOptions(context.Background(), "sheet-1", logger.NewNopLogger(),
		option.WithEndpoint(srv.URL+"/"),
		option.WithHTTPClient(srv.Client()),
	)
	if err != nil {
		t.Fatalf("new exporter: %v", err)
	}

	tbl := table.MustNew("timestamp", "noise_db", "flight_number")
	ts, _ := table.ParseTimestamp("2025-07-01T10:00:00Z")
	_ = tbl.AppendRow(ts, 65.0, nil)

	rng, err := exp.Export(context.Background(), "Merged", tbl)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if rng != "Merged!A1:C2" {
		t.Fatalf("unexpected range %q", rng)
	}
	if len(body.Values) != 2 {
		t.Fatalf("expected header and one row, got %v", body.Values)
	}
	if body.Values[0][2] != "flight_number" || body.Values[1][0] != "2025-07-01T10:00:00Z" || body.Values[1][2] != "" {
		t.Fatalf("unexpected values %v", body.Values)
	}
}

func TestExportSurfacesAPIErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error":{"code":403,"message":"The caller does not have permission"}}`))
	}))
	defer srv.Close()

	exp, err := NewSheetsExporterWithOptions(context.Background(), "sheet-1", logger.NewNopLogger(),
		option.WithEndpoint(srv.URL+"/"),
		option.WithHTTPClient(srv.Client()),
	)
	if err != nil {
		t.Fatalf("new exporter: %v", err)
	}
	if _, err := exp.Export(context.Background(), "Merged", table.MustNew("a")); err == nil {
		t.Fatalf("expected error")
	}
}
