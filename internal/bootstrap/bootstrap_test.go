package bootstrap

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/spmb/internal/app/controllers"
	"github.com/yigit/spmb/internal/app/models"
	"github.com/yigit/spmb/internal/app/models/dto"
	"github.com/yigit/spmb/internal/app/repositories/inmem"
	appServices "github.com/yigit/spmb/internal/app/services"
	"github.com/yigit/spmb/internal/config"
)

type envelope struct {
	Success bool             `json:"success"`
	Data    json.RawMessage  `json:"data"`
	Error   *dto.ErrorDetail `json:"error"`
}

type testApp struct {
	router *gin.Engine
	deps   *Dependencies
	roster *inmem.RosterStore
	token  string
}

func testConfig(t *testing.T) *config.Config {
	cfg := &config.Config{}
	cfg.Server.Mode = "production"
	cfg.Server.StoragePath = t.TempDir()
	cfg.JWT.Secret = "test-secret"
	cfg.JWT.Issuer = "spmb"
	cfg.JWT.RequiredRole = "admin"
	cfg.Metrics.Enabled = true
	cfg.Metrics.Namespace = "spmb"
	cfg.Admission.Institution = "SMP Negeri 1 Sukamaju"
	cfg.Admission.AcademicYear = "2025/2026"
	cfg.Admission.GradeLevel = "7"
	cfg.Admission.GradeMarker = "07"
	cfg.Admission.DefaultClassCount = 2
	cfg.Admission.DraftTTL = "1h"
	return cfg
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	cfg := testConfig(t)

	deps := &Dependencies{Logger: zerolog.Nop(), Settings: appServices.NewAdmissionSettings(cfg)}
	deps.Metrics, deps.MetricsHandler = newMetrics(cfg)
	candidates := inmem.NewCandidateStore()
	roster := inmem.NewRosterStore(candidates)
	require.NoError(t, BuildServices(cfg, deps, candidates, roster))

	token, err := deps.JWTService.GenerateToken("operator-1", string(models.RoleAdmin), time.Hour)
	require.NoError(t, err)

	return &testApp{
		router: SetupRouter(cfg, deps, zerolog.Nop()),
		deps:   deps,
		roster: roster,
		token:  token,
	}
}

func (a *testApp) do(t *testing.T, method, path string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Authorization", "Bearer "+a.token)
	return a.serve(t, req)
}

func (a *testApp) serve(t *testing.T, req *http.Request) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)

	var env envelope
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w, env
}

func (a *testApp) postCSV(t *testing.T, csv string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "pendaftar.csv")
	require.NoError(t, err)
	_, err = part.Write([]byte(csv))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/candidates/import", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+a.token)
	return a.serve(t, req)
}

func (a *testApp) importCSV(t *testing.T, csv string) *models.BatchResult {
	t.Helper()
	w, env := a.postCSV(t, csv)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp dto.ImportCandidatesResponse
	require.NoError(t, json.Unmarshal(env.Data, &resp))
	assert.Contains(t, resp.ArchivePath, "exports/imports/")
	return resp.Result
}

func decodeDraft(t *testing.T, env envelope) dto.DraftResponse {
	t.Helper()
	var draft dto.DraftResponse
	require.NoError(t, json.Unmarshal(env.Data, &draft))
	return draft
}

func TestAuthGuards(t *testing.T) {
	app := newTestApp(t)

	t.Run("missing token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/candidates", nil)
		w, env := app.serve(t, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, dto.ErrorCodeUnauthorized, env.Error.Code)
	})

	t.Run("wrong role", func(t *testing.T) {
		token, err := app.deps.JWTService.GenerateToken("operator-9", string(models.RoleOperator), time.Hour)
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodGet, "/api/v1/candidates", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w, _ := app.serve(t, req)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("public endpoints", func(t *testing.T) {
		for _, path := range []string{"/ping", "/api/v1/health", "/metrics"} {
			w := httptest.NewRecorder()
			app.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
			assert.Equal(t, http.StatusOK, w.Code, path)
		}
	})
}

func TestArchiveRequiresAdmin(t *testing.T) {
	app := newTestApp(t)
	archived, err := app.deps.FileStorage.SaveBytes("imports", "pendaftar.csv", []byte("full_name,gender\nAhmad,L\n"))
	require.NoError(t, err)

	anonymous := httptest.NewRecorder()
	app.router.ServeHTTP(anonymous, httptest.NewRequest(http.MethodGet, "/"+archived, nil))
	assert.Equal(t, http.StatusUnauthorized, anonymous.Code)
	assert.NotContains(t, anonymous.Body.String(), "Ahmad")

	token, err := app.deps.JWTService.GenerateToken("operator-9", string(models.RoleOperator), time.Hour)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/"+archived, nil)
	req.Header.Set("Authorization", "Bearer "+token)
	forbidden := httptest.NewRecorder()
	app.router.ServeHTTP(forbidden, req)
	assert.Equal(t, http.StatusForbidden, forbidden.Code)

	w, _ := app.do(t, http.MethodGet, "/"+archived, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "full_name,gender\nAhmad,L\n", w.Body.String())
}

func TestCandidateEndpoints(t *testing.T) {
	app := newTestApp(t)

	w, env := app.do(t, http.MethodPost, "/api/v1/candidates", dto.CreateCandidateRequest{FullName: "Ahmad Fauzi", Gender: "L", OriginSchool: "SDN 1"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created dto.CandidateResponse
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.Equal(t, "pending", created.Status)

	w, env = app.do(t, http.MethodPost, "/api/v1/candidates", dto.CreateCandidateRequest{FullName: "X", Gender: "M"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, dto.ErrorCodeValidationFailed, env.Error.Code)

	w, env = app.do(t, http.MethodPatch, fmt.Sprintf("/api/v1/candidates/%d/status", created.ID), dto.UpdateCandidateStatusRequest{Status: "accepted"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w, _ = app.do(t, http.MethodGet, "/api/v1/candidates/abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w, env = app.do(t, http.MethodGet, "/api/v1/candidates/99", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, dto.ErrorCodeResourceNotFound, env.Error.Code)

	w, env = app.do(t, http.MethodGet, "/api/v1/candidates?status=accepted&gender=L&page=1&size=10", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list dto.CandidateListResponse
	require.NoError(t, json.Unmarshal(env.Data, &list))
	require.Len(t, list.Candidates, 1)
	assert.Equal(t, created.ID, list.Candidates[0].ID)
	assert.Equal(t, 10, list.Pagination.PageSize)

	t.Run("rejected import is not archived", func(t *testing.T) {
		w, env := app.postCSV(t, "nama,jenis_kelamin\nAhmad,L\n")
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, dto.ErrorCodeBadRequest, env.Error.Code)

		entries, err := os.ReadDir(filepath.Join(app.deps.FileStorage.BasePath(), "imports"))
		if err == nil {
			assert.Empty(t, entries)
		}
	})
}

func TestPlacementFlow(t *testing.T) {
	app := newTestApp(t)

	imported := app.importCSV(t, "full_name,gender,origin_school,status\n"+
		"Ahmad,L,SDN 1,accepted\n"+
		"Budi,L,SDN 2,accepted\n"+
		"Citra,P,SDN 1,accepted\n"+
		"Dewi,P,SDN 2,accepted\n"+
		"Eko,?,SDN 3,accepted\n")
	assert.Len(t, imported.Succeeded, 4)
	assert.Equal(t, []int64{5}, imported.FailedIDs())

	w, env := app.do(t, http.MethodPost, "/api/v1/distributions", nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	draft := decodeDraft(t, env)
	require.Len(t, draft.Classes, 2)
	assert.Equal(t, 4, draft.Total)
	for _, class := range draft.Classes {
		assert.Equal(t, 1, class.Male)
		assert.Equal(t, 1, class.Female)
	}
	base := "/api/v1/distributions/" + draft.ID
	first := draft.Classes[0].Candidates[0]

	t.Run("stale move", func(t *testing.T) {
		w, env := app.do(t, http.MethodPost, base+"/move", dto.MoveCandidateRequest{CandidateID: first.ID, FromClass: "7B", ToClass: "7A"})
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, dto.ErrorCodeConflict, env.Error.Code)
	})

	t.Run("swap within one class", func(t *testing.T) {
		w, env := app.do(t, http.MethodPost, base+"/swap", dto.SwapCandidatesRequest{CandidateA: 1, ClassA: "7A", CandidateB: 2, ClassB: "7A"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "classB", env.Error.Field)
	})

	t.Run("move undo redo", func(t *testing.T) {
		w, env := app.do(t, http.MethodPost, base+"/move", dto.MoveCandidateRequest{CandidateID: first.ID, FromClass: "7A", ToClass: "7B"})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		moved := decodeDraft(t, env)
		assert.Equal(t, 1, moved.Classes[0].Total)
		assert.True(t, moved.CanUndo)

		w, env = app.do(t, http.MethodPost, base+"/undo", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, draft.Classes, decodeDraft(t, env).Classes)

		w, _ = app.do(t, http.MethodPost, base+"/redo", nil)
		require.Equal(t, http.StatusOK, w.Code)
		w, _ = app.do(t, http.MethodPost, base+"/undo", nil)
		require.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("finalize", func(t *testing.T) {
		w, env := app.do(t, http.MethodPost, base+"/finalize", nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		final := decodeDraft(t, env)
		assert.True(t, final.Finalized)
		require.Len(t, final.Placements, 4)
		assert.Equal(t, "25.26.07.001", final.Placements[0].NIS)
		assert.Equal(t, "25.26.07.004", final.Placements[3].NIS)
		assert.Len(t, final.Result.Succeeded, 4)

		w, _ = app.do(t, http.MethodPost, base+"/finalize", nil)
		assert.Equal(t, http.StatusConflict, w.Code)
		w, _ = app.do(t, http.MethodPost, base+"/retry", nil)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

		w, env = app.do(t, http.MethodPost, "/api/v1/distributions", dto.GenerateDistributionRequest{})
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Equal(t, dto.ErrorCodePreconditionFailed, env.Error.Code)
	})

	t.Run("transfer", func(t *testing.T) {
		w, env := app.do(t, http.MethodPost, "/api/v1/roster/transfer", nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var result models.BatchResult
		require.NoError(t, json.Unmarshal(env.Data, &result))
		assert.Len(t, result.Succeeded, 4)
		assert.Len(t, app.roster.Students(), 4)

		w, env = app.do(t, http.MethodGet, "/api/v1/roster?className=7B", nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var roster dto.RosterResponse
		require.NoError(t, json.Unmarshal(env.Data, &roster))
		assert.Equal(t, "2025/2026", roster.AcademicYear)
		assert.Equal(t, 2, roster.Total)
		for _, s := range roster.Students {
			assert.Equal(t, "7B", s.ClassName)
		}

		w, _ = app.do(t, http.MethodGet, "/api/v1/roster?className=kelas-7", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)

		w, env = app.do(t, http.MethodPost, "/api/v1/roster/transfer", dto.TransferRosterRequest{AcademicYear: "2025/2027"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "academicYear", env.Error.Field)
	})

	t.Run("exports", func(t *testing.T) {
		w, _ := app.do(t, http.MethodGet, "/api/v1/exports/placements.xlsx?archive=true", nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", w.Header().Get("Content-Type"))
		assert.Contains(t, w.Header().Get("Content-Disposition"), "penempatan-kelas-2025-2026.xlsx")
		archived := w.Header().Get(controllers.ArchivePathHeader)
		require.NotEmpty(t, archived)

		anonymous := httptest.NewRecorder()
		app.router.ServeHTTP(anonymous, httptest.NewRequest(http.MethodGet, "/"+archived, nil))
		assert.Equal(t, http.StatusUnauthorized, anonymous.Code)

		static, _ := app.do(t, http.MethodGet, "/"+archived, nil)
		assert.Equal(t, http.StatusOK, static.Code)
		assert.Equal(t, w.Body.Bytes(), static.Body.Bytes())

		w, _ = app.do(t, http.MethodGet, "/api/v1/exports/placements.pdf", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF-")))
		assert.Empty(t, w.Header().Get(controllers.ArchivePathHeader))

		w, _ = app.do(t, http.MethodGet, "/api/v1/exports/placements.pdf?academicYear=2024/2025", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("discard", func(t *testing.T) {
		w, _ := app.do(t, http.MethodDelete, base, nil)
		assert.Equal(t, http.StatusOK, w.Code)
		w, _ = app.do(t, http.MethodGet, base, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("metrics", func(t *testing.T) {
		w := httptest.NewRecorder()
		app.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
		assert.Contains(t, w.Body.String(), `spmb_placement_commits_total{result="success"} 4`)
		assert.Contains(t, w.Body.String(), `spmb_roster_transfers_total{result="success"} 4`)
	})
}
