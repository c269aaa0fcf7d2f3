package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"fieldpro-backend/client"
	"fieldpro-backend/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestJobsCommands(t *testing.T) {
	jobID := uuid.New()
	actual := 120.0
	var deletes atomic.Int32

	mux := http.NewServeMux()
	mux.HandleFunc("/api/jobs", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]models.Job{
			{Base: models.Base{ID: jobID}, Title: "Fix boiler", ClientName: "Acme", Status: models.JobCompleted,
				ScheduledDate: time.Now(), EstimatedCost: 100, ActualCost: &actual},
			{Base: models.Base{ID: uuid.New()}, Title: "Paint fence", ClientName: "Globex", Status: models.JobScheduled,
				ScheduledDate: time.Now(), EstimatedCost: 50},
		})
	})
	mux.HandleFunc("/api/jobs/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodDelete {
			deletes.Add(1)
		}
		json.NewEncoder(w).Encode(map[string]string{"message": "ok"})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	sessionFile := filepath.Join(t.TempDir(), "session.yaml")
	require.NoError(t, client.NewSessionStore(sessionFile).Save(&client.Session{Token: "token-123"}))
	base := []string{"--api-url", srv.URL, "--session", sessionFile}

	out, err := run(t, "", append([]string{"jobs", "list", "--status", "completed"}, base...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "Fix boiler")
	assert.NotContains(t, out, "Paint fence")
	assert.Contains(t, out, "1 jobs, 100% completed, $120.00 billable")

	out, err = run(t, "n\n", append([]string{"jobs", "delete", jobID.String()}, base...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "Cancelled")
	assert.Zero(t, deletes.Load())

	out, err = run(t, "y\n", append([]string{"jobs", "delete", jobID.String()}, base...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted")
	assert.EqualValues(t, 1, deletes.Load())

	_, err = run(t, "", append([]string{"jobs", "status", jobID.String(), models.JobScheduled}, base...)...)
	assert.ErrorContains(t, err, "cannot change status")
}

func TestRequiresLogin(t *testing.T) {
	sessionFile := filepath.Join(t.TempDir(), "session.yaml")
	_, err := run(t, "", "clients", "list", "--session", sessionFile, "--api-url", "http://127.0.0.1:1")
	assert.ErrorContains(t, err, "not logged in")
}
