package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/sarahsindone/sbrp-application/internal/repo"
	"github.com/sarahsindone/sbrp-application/internal/repo/memstore"
	"github.com/sarahsindone/sbrp-application/internal/service/report"
	"github.com/sarahsindone/sbrp-application/internal/service/template"
	"github.com/sarahsindone/sbrp-application/pkg/authorize"
	pasetotoken "github.com/sarahsindone/sbrp-application/pkg/paseto"
	"github.com/sarahsindone/sbrp-application/pkg/reqctx"
)

var (
	adminID        = uuid.MustParse("0190f6b4-5a3e-7c1d-9b2a-4f8e6d3c2b1a")
	practitionerID = uuid.MustParse("0190f6b4-5a3e-7c1d-9b2a-4f8e6d3c2b1b")
)

type testServer struct {
	app     *fiber.App
	store   *repo.Store
	reports report.Service
}

// asCaller stands in for AuthRequired. The X-Test-Role header picks the
// principal; practitioner is the default.
func asCaller(c fiber.Ctx) error {
	claims := &pasetotoken.Claims{
		Type:      pasetotoken.TokenTypeAccess,
		UserID:    practitionerID,
		Role:      authorize.AppRolePractitioner,
		ExpiresAt: time.Now().Add(time.Hour),
	}
	if c.Get("X-Test-Role") == authorize.AppRoleAdmin {
		claims.UserID = adminID
		claims.Role = authorize.AppRoleAdmin
	}
	c.Locals(pasetotoken.CtxKeyClaims, claims)
	c.SetContext(reqctx.WithClaims(c.Context(), claims))
	return c.Next()
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ctx := context.Background()

	e, cleanup, err := authorize.NewEnforcer(authorize.Config{PolicyPath: filepath.Join(t.TempDir(), "policy.csv")}, "")
	require.NoError(t, err)
	t.Cleanup(func() { cleanup(context.Background()) })
	e.EnableAutoSave(false)

	authz, err := authorize.NewAuthorization(e, true)
	require.NoError(t, err)
	require.NoError(t, authorize.SeedDefaultPolicies(ctx, authz))
	require.NoError(t, authorize.AssignAppRole(ctx, authz, adminID.String(), authorize.AppRoleAdmin))
	require.NoError(t, authorize.AssignAppRole(ctx, authz, practitionerID.String(), authorize.AppRolePractitioner))

	store := memstore.New()
	ts := &testServer{store: store, reports: report.New(store)}

	app := fiber.New(fiber.Config{
		ErrorHandler:    ErrorHandler,
		StructValidator: NewStructValidator(),
	})
	app.Use(asCaller)

	rh := NewReportHandler(ts.reports, authz)
	app.Post("/reports", rh.Generate)
	app.Get("/reports", rh.List)
	app.Get("/reports/:id", rh.Get)
	app.Put("/reports/:id", rh.Update)
	app.Delete("/reports/:id", rh.Delete)
	app.Patch("/reports/:id/sections/:index", rh.UpdateSection)
	app.Patch("/reports/:id/review", rh.SubmitForReview)
	app.Patch("/reports/:id/finalize", rh.Finalize)
	app.Patch("/reports/:id/publish", rh.Publish)

	th := NewTemplateHandler(template.New(store))
	app.Post("/report-templates", th.Create)
	app.Get("/report-templates/default", th.Default)

	ts.app = app
	return ts
}

// seedCase stores a case with the given data collection status plus a
// default template.
func (ts *testServer) seedCase(t *testing.T, caseID string, dc repo.DataCollectionStatus) {
	t.Helper()
	ctx := context.Background()

	clientID := "client-" + caseID
	require.NoError(t, ts.store.Clients.Create(ctx, &repo.Client{ID: clientID, CompanyName: "Acme Pty Ltd", Status: repo.ClientStatusActive}))
	require.NoError(t, ts.store.Cases.Create(ctx, &repo.Case{ID: caseID, CaseNumber: "SBRP-" + caseID, ClientID: clientID, CaseType: "SBRP"}))
	require.NoError(t, ts.store.DataCollections.Create(ctx, &repo.DataCollection{ID: "dc-" + caseID, CaseID: caseID, ClientID: clientID, Status: dc}))

	if _, err := ts.store.Templates.Get(ctx, "tmpl-default"); repo.IsNotFound(err) {
		require.NoError(t, ts.store.Templates.Create(ctx, &repo.ReportTemplate{
			ID:   "tmpl-default",
			Name: "Standard SBRP",
			Sections: []repo.SectionDefinition{
				{Title: "Executive Summary", Content: "Summary", Order: 1},
				{Title: "Restructuring Plan", Content: "Plan", Order: 2},
			},
		}))
		require.NoError(t, ts.store.Templates.SetDefault(ctx, "tmpl-default"))
	}
}

func (ts *testServer) do(t *testing.T, method, path, body, role string) (int, map[string]json.RawMessage) {
	t.Helper()

	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if role != "" {
		req.Header.Set("X-Test-Role", role)
	}

	resp, err := ts.app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var env map[string]json.RawMessage
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &env), string(raw))
	}
	return resp.StatusCode, env
}

func decodeReport(t *testing.T, env map[string]json.RawMessage) repo.Report {
	t.Helper()
	var r repo.Report
	require.NoError(t, json.Unmarshal(env["data"], &r))
	return r
}

func TestReportHandler_GenerateAndLifecycle(t *testing.T) {
	ts := newTestServer(t)
	ts.seedCase(t, "case-1", repo.DataCollectionStatusComplete)

	status, env := ts.do(t, http.MethodPost, "/reports", `{"case_id":"case-1"}`, "")
	require.Equal(t, http.StatusCreated, status)
	r := decodeReport(t, env)
	require.Equal(t, repo.ReportStatusDraft, r.Status)
	require.Equal(t, practitionerID.String(), r.Metadata.Author)
	require.Len(t, r.Sections, 2)

	status, env = ts.do(t, http.MethodPatch, "/reports/"+r.ID+"/sections/1", `{"content":"Revised plan"}`, "")
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "Revised plan", decodeReport(t, env).Sections[1].Content)

	for _, step := range []struct {
		path string
		want repo.ReportStatus
	}{
		{"/review", repo.ReportStatusReview},
		{"/finalize", repo.ReportStatusFinal},
		{"/publish", repo.ReportStatusPublished},
	} {
		status, env = ts.do(t, http.MethodPatch, "/reports/"+r.ID+step.path, "", "")
		require.Equal(t, http.StatusOK, status, step.path)
		require.Equal(t, step.want, decodeReport(t, env).Status)
	}

	status, env = ts.do(t, http.MethodPatch, "/reports/"+r.ID+"/publish", `{"pdf_url":"https://files.example.com/r.pdf"}`, "")
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "https://files.example.com/r.pdf", decodeReport(t, env).GeneratedPdfURL)

	status, env = ts.do(t, http.MethodGet, "/reports?status=published&case_id=case-1", "", "")
	require.Equal(t, http.StatusOK, status)
	var list []repo.Report
	require.NoError(t, json.Unmarshal(env["data"], &list))
	require.Len(t, list, 1)
}

func TestReportHandler_ListFilterAliases(t *testing.T) {
	ts := newTestServer(t)
	ts.seedCase(t, "case-1", repo.DataCollectionStatusComplete)
	ts.seedCase(t, "case-2", repo.DataCollectionStatusComplete)

	for _, id := range []string{"case-1", "case-2"} {
		status, _ := ts.do(t, http.MethodPost, "/reports", `{"case_id":"`+id+`"}`, "")
		require.Equal(t, http.StatusCreated, status)
	}

	tests := []struct {
		name  string
		query string
		want  int
	}{
		{"no filter", "", 2},
		{"snake case", "?case_id=case-1", 1},
		{"camel case", "?caseId=case-1", 1},
		{"camel case client", "?clientId=client-case-2", 1},
		{"unknown client", "?clientId=nope", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, env := ts.do(t, http.MethodGet, "/reports"+tt.query, "", "")
			require.Equal(t, http.StatusOK, status)
			var list []repo.Report
			require.NoError(t, json.Unmarshal(env["data"], &list))
			require.Len(t, list, tt.want)
		})
	}
}

func TestReportHandler_ErrorStatuses(t *testing.T) {
	ts := newTestServer(t)
	ts.seedCase(t, "done", repo.DataCollectionStatusComplete)
	ts.seedCase(t, "open", repo.DataCollectionStatusDraft)

	_, env := ts.do(t, http.MethodPost, "/reports", `{"case_id":"done"}`, "")
	draft := decodeReport(t, env)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		want   int
	}{
		{"missing case id", http.MethodPost, "/reports", `{}`, http.StatusBadRequest},
		{"malformed body", http.MethodPost, "/reports", `{`, http.StatusBadRequest},
		{"unknown case", http.MethodPost, "/reports", `{"case_id":"nope"}`, http.StatusNotFound},
		{"unknown template", http.MethodPost, "/reports", `{"case_id":"done","template_id":"nope"}`, http.StatusNotFound},
		{"incomplete data collection", http.MethodPost, "/reports", `{"case_id":"open"}`, http.StatusPreconditionFailed},
		{"unknown report", http.MethodGet, "/reports/nope", "", http.StatusNotFound},
		{"bad status filter", http.MethodGet, "/reports?status=archived", "", http.StatusBadRequest},
		{"section index not a number", http.MethodPatch, "/reports/" + draft.ID + "/sections/x", `{"title":"t"}`, http.StatusBadRequest},
		{"section out of range", http.MethodPatch, "/reports/" + draft.ID + "/sections/5", `{"title":"t"}`, http.StatusBadRequest},
		{"skip review", http.MethodPatch, "/reports/" + draft.ID + "/finalize", "", http.StatusConflict},
		{"publish draft", http.MethodPatch, "/reports/" + draft.ID + "/publish", "", http.StatusConflict},
		{"invalid pdf url", http.MethodPatch, "/reports/" + draft.ID + "/publish", `{"pdf_url":"not a url"}`, http.StatusBadRequest},
		{"section count mismatch", http.MethodPut, "/reports/" + draft.ID, `{"sections":[{"title":"only one"}]}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, env := ts.do(t, tt.method, tt.path, tt.body, "")
			require.Equal(t, tt.want, status)
			require.Contains(t, env, "error")
		})
	}
}

func TestReportHandler_DeletePublished(t *testing.T) {
	ts := newTestServer(t)
	ts.seedCase(t, "case-1", repo.DataCollectionStatusComplete)
	ctx := context.Background()

	r, err := ts.reports.Generate(ctx, practitionerID.String(), report.GenerateRequest{CaseID: "case-1"})
	require.NoError(t, err)
	_, err = ts.reports.SubmitForReview(ctx, practitionerID.String(), r.ID)
	require.NoError(t, err)
	_, err = ts.reports.Finalize(ctx, practitionerID.String(), r.ID)
	require.NoError(t, err)
	_, err = ts.reports.Publish(ctx, practitionerID.String(), r.ID, nil)
	require.NoError(t, err)

	status, _ := ts.do(t, http.MethodDelete, "/reports/"+r.ID, "", "")
	require.Equal(t, http.StatusConflict, status)

	status, _ = ts.do(t, http.MethodDelete, "/reports/"+r.ID+"?force=true", "", "")
	require.Equal(t, http.StatusForbidden, status)

	status, _ = ts.do(t, http.MethodDelete, "/reports/"+r.ID+"?force=true", "", authorize.AppRoleAdmin)
	require.Equal(t, http.StatusNoContent, status)

	status, _ = ts.do(t, http.MethodGet, "/reports/"+r.ID, "", "")
	require.Equal(t, http.StatusNotFound, status)
}

func TestTemplateHandler(t *testing.T) {
	ts := newTestServer(t)

	status, _ := ts.do(t, http.MethodGet, "/report-templates/default", "", "")
	require.Equal(t, http.StatusNotFound, status)

	status, _ = ts.do(t, http.MethodPost, "/report-templates", `{"name":"  "}`, "")
	require.Equal(t, http.StatusBadRequest, status)

	status, _ = ts.do(t, http.MethodPost, "/report-templates", `{"name":"Standard","is_default":true,"sections":[{"title":"Summary","order":1}]}`, "")
	require.Equal(t, http.StatusCreated, status)

	status, _ = ts.do(t, http.MethodPost, "/report-templates", `{"name":"Standard"}`, "")
	require.Equal(t, http.StatusConflict, status)

	status, env := ts.do(t, http.MethodGet, "/report-templates/default", "", "")
	require.Equal(t, http.StatusOK, status)
	var tmpl repo.ReportTemplate
	require.NoError(t, json.Unmarshal(env["data"], &tmpl))
	require.Equal(t, "Standard", tmpl.Name)
	require.True(t, tmpl.IsDefault)
}
