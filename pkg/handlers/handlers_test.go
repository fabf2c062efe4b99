package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/arnavshah/stable-scheduler-go/pkg/auth"
	"github.com/arnavshah/stable-scheduler-go/pkg/config"
	"github.com/arnavshah/stable-scheduler-go/pkg/database"
	"github.com/arnavshah/stable-scheduler-go/pkg/metrics"
	"github.com/arnavshah/stable-scheduler-go/pkg/models"
)

type testServer struct {
	router *gin.Engine
	db     *gorm.DB
	auth   *auth.Authenticator
	apiKey string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	name := strings.ReplaceAll(t.Name(), "/", "_")
	db, err := database.InitDB(config.DatabaseConfig{Path: fmt.Sprintf("file:%s?mode=memory&cache=shared", name)})
	require.NoError(t, err)

	a := auth.New(config.AuthConfig{JWTSecret: "jwt", MasterSecret: "master", TokenTTL: time.Hour, BcryptCost: 4})
	require.NoError(t, a.EnsureAdminExists(db, "admin", "admin123", zerolog.Nop()))

	recorder, err := metrics.NewRecorder(prometheus.NewRegistry())
	require.NoError(t, err)

	h := New(db, a, recorder, models.PlanningOptions{ActiveDays: []string{"Lundi"}}, zerolog.Nop())
	s := &testServer{router: NewRouter(h), db: db, auth: a}
	s.apiKey = s.issueKey(t, "stable-one")
	return s
}

// issueKey signs and registers a key the way POST /admin/keys does
func (s *testServer) issueKey(t *testing.T, name string) string {
	t.Helper()
	key := s.auth.GenerateHMACKey(name)
	_, err := auth.RegisterAPIKey(s.db, key, name, 0)
	require.NoError(t, err)
	return key
}

func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), out), w.Body.String())
}

const weekJSON = `{
  "horses": [{"name": "Alto", "max_hours": 4}, {"name": "Bella", "max_hours": 4}],
  "skills": [{"horse": "Alto", "skill": "jump", "qualification": "Oui"}],
  "friendships": [{"horse": "Alto", "friend": "Bella"}],
  "active_courses": [{"day": "Lundi", "start": "09:00", "end": "10:00", "skill": "jump", "required": 1, "name": "Jumping"}],
  "passive_courses": []
}`

func TestRootAndHealth(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Stable Scheduler API")

	w = s.do(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestScheduleJSON_StoresRun(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/api/schedule", s.apiKey, weekJSON)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp models.ScheduleResponse
	decode(t, w, &resp)
	require.NotEmpty(t, resp.RunID)
	assert.Equal(t, []string{"Lundi"}, resp.Days)
	assert.Empty(t, resp.Conflicts)

	alto := resp.Schedule["Alto"]["Lundi"]
	require.Len(t, alto, 2)
	assert.Equal(t, "Jumping", alto[0].Label)
	assert.Equal(t, models.ActivityTurnout, alto[1].Type)
	assert.Equal(t, "Bella", alto[1].Partner)

	w = s.do(t, http.MethodGet, "/api/runs/"+resp.RunID, s.apiKey, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var stored models.ScheduleResponse
	decode(t, w, &stored)
	assert.Equal(t, resp, stored)

	w = s.do(t, http.MethodGet, "/api/runs/"+resp.RunID+"/export", s.apiKey, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "REPORT 1: DETAILED SCHEDULE PER HORSE")
	assert.Contains(t, w.Header().Get("Content-Disposition"), ".txt")

	w = s.do(t, http.MethodGet, "/api/runs/"+resp.RunID+"/export?format=xlsx", s.apiKey, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, xlsxContentType, w.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("PK")), "xlsx is a zip archive")

	w = s.do(t, http.MethodGet, "/api/runs/"+resp.RunID+"/export?format=pdf", s.apiKey, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodGet, "/api/usage", s.apiKey, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var usage struct {
		Totals struct {
			Requests int `json:"requests"`
			Horses   int `json:"horses"`
			Courses  int `json:"courses"`
		} `json:"totals"`
	}
	decode(t, w, &usage)
	assert.Equal(t, 1, usage.Totals.Requests)
	assert.Equal(t, 2, usage.Totals.Horses)
	assert.Equal(t, 1, usage.Totals.Courses)
}

func TestRuns_ScopedToKey(t *testing.T) {
	s := newTestServer(t)
	w := s.do(t, http.MethodPost, "/api/schedule", s.apiKey, weekJSON)
	require.Equal(t, http.StatusOK, w.Code)
	var resp models.ScheduleResponse
	decode(t, w, &resp)

	other := s.issueKey(t, "stable-two")
	w = s.do(t, http.MethodGet, "/api/runs/"+resp.RunID, other, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, http.MethodGet, "/api/runs/does-not-exist", s.apiKey, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestLegacyScheduleRoute(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/schedule/json", "", weekJSON)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(t, http.MethodPost, "/schedule/json", s.apiKey, weekJSON)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp models.ScheduleResponse
	decode(t, w, &resp)
	assert.NotEmpty(t, resp.RunID)
}

func TestAPIKeyMiddleware_UsageLookupFails(t *testing.T) {
	s := newTestServer(t)
	require.NoError(t, s.db.Migrator().DropTable(&database.APIUsage{}))

	w := s.do(t, http.MethodPost, "/api/schedule", s.apiKey, weekJSON)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "Could not check request limit")
}

func TestScheduleJSON_Errors(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name  string
		token string
		body  string
		code  int
	}{
		{"no key", "", weekJSON, http.StatusUnauthorized},
		{"bad signature", "stable-one.deadbeef", weekJSON, http.StatusUnauthorized},
		{"signed but never issued", s.auth.GenerateHMACKey("stable-three"), weekJSON, http.StatusUnauthorized},
		{"malformed json", s.apiKey, `{"horses": [`, http.StatusBadRequest},
		{"bad clock", s.apiKey, `{"horses": [{"name": "A"}], "active_courses": [{"day": "Lundi", "start": "9h", "end": "10:00"}]}`, http.StatusBadRequest},
		{"missing horse name", s.apiKey, `{"horses": [{"max_hours": 2}]}`, http.StatusBadRequest},
		{"duplicate horse", s.apiKey, `{"horses": [{"name": "A"}, {"name": "A"}]}`, http.StatusBadRequest},
		{"unknown day", s.apiKey, `{"horses": [{"name": "A"}], "options": {"active_days": ["Funday"]}}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(t, http.MethodPost, "/api/schedule", tt.token, tt.body)
			assert.Equal(t, tt.code, w.Code, w.Body.String())
			assert.Contains(t, w.Body.String(), `"error"`)
		})
	}
}

func multipartBody(t *testing.T, files map[string]string, options string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for field, content := range files {
		part, err := mw.CreateFormFile(field, field+".csv")
		require.NoError(t, err)
		_, err = part.Write([]byte(content))
		require.NoError(t, err)
	}
	if options != "" {
		require.NoError(t, mw.WriteField("options", options))
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func csvFiles() map[string]string {
	return map[string]string{
		"horses_file":          "Nom_Cheval;Max_heures_Travail\nAlto;4\nBella;0\n",
		"skills_file":          "Nom_Cheval;Competence;Qualification\nAlto;jump;Oui\nBella;walk;Oui\n",
		"friends_file":         "Nom_Cheval;Amis\n",
		"active_courses_file":  "Jour;Heure_début;Heure_fin;Cours_nom;Exigence_1;Nombre_chevaux\nMardi;09:00;10:00;Jumping;jump;1\n",
		"passive_courses_file": "Jour;Heure_début;Heure_fin;Coursautres_nom;Exigence;Nombre_chevaux\nMardi;16:00;17:00;Hand walk;walk;1\n",
	}
}

func TestScheduleCSV(t *testing.T) {
	s := newTestServer(t)
	body, contentType := multipartBody(t, csvFiles(), `{"active_days": ["Mardi"]}`)

	req := httptest.NewRequest(http.MethodPost, "/api/schedule/csv", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp models.ScheduleResponse
	decode(t, w, &resp)
	assert.Equal(t, []string{"Mardi"}, resp.Days)
	assert.Equal(t, 1, resp.Stats.ActiveCourses)
	assert.Equal(t, 1, resp.Stats.PassiveCourses)
	bella := resp.Schedule["Bella"]["Mardi"]
	require.Len(t, bella, 2)
	assert.Equal(t, models.ActivityTurnout, bella[0].Type)
	assert.Equal(t, "Hand walk", bella[1].Label)
}

func TestScheduleCSV_MissingFile(t *testing.T) {
	s := newTestServer(t)
	files := csvFiles()
	delete(files, "friends_file")
	body, contentType := multipartBody(t, files, "")

	req := httptest.NewRequest(http.MethodPost, "/api/schedule/csv", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "friends_file is required")
}

func TestValidateInput(t *testing.T) {
	s := newTestServer(t)

	var out struct {
		Valid bool   `json:"valid"`
		Error string `json:"error"`
	}
	w := s.do(t, http.MethodPost, "/api/validate", s.apiKey, weekJSON)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &out)
	assert.True(t, out.Valid)

	w = s.do(t, http.MethodPost, "/api/validate", s.apiKey, `{"horses": [{"name": "A"}], "skills": [{"horse": "Ghost", "skill": "jump"}]}`)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &out)
	assert.False(t, out.Valid)
	assert.Contains(t, out.Error, "Ghost")

	w = s.do(t, http.MethodPost, "/api/validate", s.apiKey, `{"horses": []}`)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &out)
	assert.False(t, out.Valid)
}

func login(t *testing.T, s *testServer) string {
	t.Helper()
	w := s.do(t, http.MethodPost, "/admin/login", "", gin.H{"username": "admin", "password": "admin123"})
	require.Equal(t, http.StatusOK, w.Code)
	var out struct {
		AccessToken string `json:"access_token"`
	}
	decode(t, w, &out)
	require.NotEmpty(t, out.AccessToken)
	return out.AccessToken
}

func TestAdminFlow(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/admin/login", "", gin.H{"username": "admin", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w = s.do(t, http.MethodGet, "/admin/keys", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w = s.do(t, http.MethodGet, "/admin/keys", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	token := login(t, s)

	w = s.do(t, http.MethodPost, "/admin/keys", token, gin.H{"name": "limited", "rate_limit": 1})
	require.Equal(t, http.StatusOK, w.Code)
	var created struct {
		ID  uint   `json:"id"`
		Key string `json:"key"`
	}
	decode(t, w, &created)
	assert.Equal(t, s.auth.GenerateHMACKey("limited"), created.Key)

	w = s.do(t, http.MethodGet, "/admin/keys", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"key_preview":"lim...`)
	assert.NotContains(t, w.Body.String(), created.Key)

	// The daily limit of one request is reached after the first schedule.
	w = s.do(t, http.MethodPost, "/api/schedule", created.Key, weekJSON)
	require.Equal(t, http.StatusOK, w.Code)
	w = s.do(t, http.MethodPost, "/api/schedule", created.Key, weekJSON)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)

	path := fmt.Sprintf("/admin/keys/%d", created.ID)
	w = s.do(t, http.MethodPut, path, token, gin.H{"rate_limit": 5})
	require.Equal(t, http.StatusOK, w.Code)
	w = s.do(t, http.MethodPost, "/api/schedule", created.Key, weekJSON)
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodGet, fmt.Sprintf("/admin/usage/%d", created.ID), token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"request_count":2`)

	w = s.do(t, http.MethodGet, "/admin/runs?limit=10", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var runs struct {
		Runs []database.Run `json:"runs"`
	}
	decode(t, w, &runs)
	assert.Len(t, runs.Runs, 2)

	w = s.do(t, http.MethodGet, "/admin/runs?limit=0", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodDelete, path, token, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	// A revoked key stays revoked and is not recreated on use.
	w = s.do(t, http.MethodPost, "/api/schedule", created.Key, weekJSON)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w = s.do(t, http.MethodPost, "/api/schedule", created.Key, weekJSON)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w = s.do(t, http.MethodGet, "/admin/keys", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), `"name":"limited"`)

	w = s.do(t, http.MethodDelete, path, token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = s.do(t, http.MethodPut, path, token, gin.H{"rate_limit": 5})
	assert.Equal(t, http.StatusNotFound, w.Code)
}
