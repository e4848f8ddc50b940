package command

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/yndnr/snapkeep/internal/core/domain"
)

// mockServer is an admin API stand-in built on a ServeMux.
type mockServer struct {
	*httptest.Server
	mux *http.ServeMux
}

func newMockServer(t *testing.T) *mockServer {
	t.Helper()
	m := &mockServer{mux: http.NewServeMux()}
	m.Server = httptest.NewServer(m.mux)
	t.Cleanup(m.Close)
	return m
}

func (m *mockServer) handle(pattern string, handler http.HandlerFunc) {
	m.mux.HandleFunc(pattern, handler)
}

// okResponse writes a success envelope.
func okResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{
		"code":       "OK",
		"message":    "Success",
		"request_id": "req-test",
		"data":       data,
	})
}

// errorResponse writes an error envelope.
func errorResponse(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{
		"code":       code,
		"message":    message,
		"request_id": "req-test",
	})
}

type runResult struct {
	stdout string
	stderr string
	err    error
}

// runCLI runs the full application against server with the given
// arguments. input feeds confirmation prompts.
func runCLI(t *testing.T, server *mockServer, input string, args ...string) runResult {
	t.Helper()

	var out, errOut bytes.Buffer
	app := App()
	app.Writer = &out
	app.ErrWriter = &errOut
	app.Metadata = map[string]any{"stdin": strings.NewReader(input)}

	full := []string{"snapkeep-cli"}
	if server != nil {
		full = append(full, "--server", server.URL)
	}
	full = append(full, args...)

	err := app.Run(full)
	return runResult{stdout: out.String(), stderr: errOut.String(), err: err}
}

func sampleRecord(id string) *domain.BackupRecord {
	completed := time.Date(2026, 3, 1, 10, 0, 5, 0, time.UTC)
	return &domain.BackupRecord{
		ID:          id,
		OwnerScope:  "acme",
		Type:        domain.BackupTypeManual,
		Status:      domain.BackupStatusCompleted,
		StartedAt:   time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
		CompletedAt: &completed,
		FilePath:    "/var/lib/snapkeep/backups/" + id + ".json",
		FileSize:    1536,
		Checksum:    strings.Repeat("ab", 32),
		Encrypted:   true,
	}
}
