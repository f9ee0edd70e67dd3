package jobapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/growindia/jobs/pkg/errx"
	"github.com/growindia/jobs/pkg/iam/auth"
	"github.com/growindia/jobs/pkg/tablex"
	"github.com/growindia/jobs/pkg/tablex/tablexmem"
	"github.com/growindia/jobs/recruitment/company/companyinfra"
	"github.com/growindia/jobs/recruitment/company/companysrv"
	"github.com/growindia/jobs/recruitment/job/jobinfra"
	"github.com/growindia/jobs/recruitment/job/jobsrv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "jobapi-secret"

var baseTime = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

type fixture struct {
	app   *fiber.App
	store *tablexmem.Store
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := tablexmem.New()
	jobsTable, jobCols := jobinfra.Schema()
	store.CreateTable(jobsTable, jobCols...)
	companiesTable, companyCols := companyinfra.Schema()
	store.CreateTable(companiesTable, companyCols...)
	store.CreateTable("admins", "user_id")

	store.Seed(companiesTable,
		tablex.Row{"id": "acme", "name": "Acme", "owner_id": "owner", "created_at": baseTime},
		tablex.Row{"id": "globex", "name": "Globex", "owner_id": "rival", "created_at": baseTime},
	)
	store.Seed(jobsTable,
		jobRow("live", "acme", true, "Mumbai"),
		jobRow("draft", "acme", false, "Delhi"),
		jobRow("rival-job", "globex", true, "Pune"),
	)
	store.Seed("admins", tablex.Row{"user_id": "boss"})

	jobs := jobsrv.NewJobService(jobinfra.NewTableJobRepository(store), nil, jobsrv.Config{})
	companies := companysrv.NewCompanyService(companyinfra.NewTableCompanyRepository(store), time.Second)
	middleware := auth.NewMiddleware(auth.NewVerifier(testSecret, ""), nil)

	app := fiber.New(fiber.Config{
		Immutable: true,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if e, ok := errx.As(err); ok {
				return c.Status(e.HTTPStatus).JSON(e.ToHTTPResponse())
			}
			return c.SendStatus(fiber.StatusInternalServerError)
		},
	})
	RegisterRoutes(app, NewHandlers(jobs, companies, auth.NewAdminChecker(store)), middleware)
	return &fixture{app: app, store: store}
}

func jobRow(id, companyID string, published bool, location string) tablex.Row {
	return tablex.Row{
		"id":              id,
		"title":           "Job " + id,
		"location":        location,
		"employment_type": "full-time",
		"published":       published,
		"created_at":      baseTime,
		"company_id":      companyID,
		"currency":        "INR",
	}
}

func token(t *testing.T, userID string) string {
	t.Helper()
	claims := auth.Claims{
		Email: userID + "@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func (f *fixture) do(t *testing.T, method, path, user, body string) (int, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if user != "" {
		req.Header.Set("Authorization", "Bearer "+token(t, user))
	}

	resp, err := f.app.Test(req)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	out := map[string]any{}
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &out))
	} else if len(raw) > 0 && raw[0] == '[' {
		var items []any
		require.NoError(t, json.Unmarshal(raw, &items))
		out["items"] = items
	}
	return resp.StatusCode, out
}

func itemIDs(body map[string]any) []string {
	items, _ := body["items"].([]any)
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.(map[string]any)["id"].(string))
	}
	return out
}

func TestListJobs_PublicSearch(t *testing.T) {
	f := newFixture(t)

	status, body := f.do(t, "GET", "/api/jobs", "", "")
	assert.Equal(t, 200, status)
	assert.ElementsMatch(t, []string{"live", "rival-job"}, itemIDs(body))

	status, body = f.do(t, "GET", "/api/jobs?location=mumbai&page=0&page_size=500", "", "")
	assert.Equal(t, 200, status)
	assert.Equal(t, []string{"live"}, itemIDs(body))
	page := body["page"].(map[string]any)
	assert.EqualValues(t, 1, page["number"])
	assert.EqualValues(t, 100, page["size"])
	assert.EqualValues(t, 1, page["total"])
}

func TestListJobs_StoreFailureIsAnError(t *testing.T) {
	f := newFixture(t)
	f.store.SetHook(func(_ context.Context, _, _ string) error {
		return tablex.Errorf(tablex.KindTimeout, "statement timeout")
	})

	status, body := f.do(t, "GET", "/api/jobs", "", "")
	assert.Equal(t, 504, status)
	assert.Equal(t, "JOB.QUERY_TIMEOUT", body["code"])
	assert.Nil(t, body["items"])
}

func TestGetFilters(t *testing.T) {
	f := newFixture(t)

	status, body := f.do(t, "GET", "/api/jobs/filters", "", "")
	assert.Equal(t, 200, status)
	assert.Equal(t, []any{"Mumbai", "Pune"}, body["locations"])
	assert.Equal(t, []any{"full-time"}, body["employment_types"])
}

func TestGetJobByID_DraftVisibility(t *testing.T) {
	f := newFixture(t)

	status, _ := f.do(t, "GET", "/api/jobs/live", "", "")
	assert.Equal(t, 200, status)

	status, body := f.do(t, "GET", "/api/jobs/draft", "", "")
	assert.Equal(t, 404, status)
	assert.Equal(t, "JOB.NOT_FOUND", body["code"])

	status, _ = f.do(t, "GET", "/api/jobs/draft", "rival", "")
	assert.Equal(t, 404, status)

	status, body = f.do(t, "GET", "/api/jobs/draft", "owner", "")
	assert.Equal(t, 200, status)
	assert.Equal(t, "draft", body["id"])
}

func TestCreateJob(t *testing.T) {
	f := newFixture(t)
	payload := `{"title":" Go Dev ","company_id":"acme","min_salary":"","max_salary":"90000","published":"on"}`

	status, body := f.do(t, "POST", "/api/jobs", "", payload)
	assert.Equal(t, 401, status)
	assert.Equal(t, "AUTH.REQUIRED", body["code"])

	status, body = f.do(t, "POST", "/api/jobs", "rival", payload)
	assert.Equal(t, 403, status)
	assert.Equal(t, "JOB.INSUFFICIENT_PERMISSIONS", body["code"])

	status, body = f.do(t, "POST", "/api/jobs", "owner", payload)
	require.Equal(t, 201, status)
	id := body["id"].(string)

	status, body = f.do(t, "GET", "/api/jobs/"+id, "", "")
	assert.Equal(t, 200, status)
	assert.Equal(t, "Go Dev", body["title"])
	assert.Nil(t, body["min_salary"])
	assert.EqualValues(t, 90000, body["max_salary"])
	assert.Equal(t, true, body["published"])
	assert.Equal(t, "INR", body["currency"])
}

func TestCreateJob_Validation(t *testing.T) {
	f := newFixture(t)

	status, body := f.do(t, "POST", "/api/jobs", "owner", `{"title":"Go"}`)
	assert.Equal(t, 400, status)
	assert.Equal(t, "JOB.VALIDATION_FAILED", body["code"])

	status, body = f.do(t, "POST", "/api/jobs", "owner", `{"title":"Go","company_id":"acme","min_salary":5,"max_salary":1}`)
	assert.Equal(t, 400, status)
	assert.Equal(t, "JOB.VALIDATION_FAILED", body["code"])
}

func TestUpdateJob(t *testing.T) {
	f := newFixture(t)

	status, body := f.do(t, "PATCH", "/api/jobs/live", "rival", `{"title":"Hijacked"}`)
	assert.Equal(t, 403, status)
	assert.Equal(t, "JOB.UNAUTHORIZED_UPDATE", body["code"])

	status, _ = f.do(t, "PATCH", "/api/jobs/live", "owner", `{"title":"Renamed","description":null}`)
	assert.Equal(t, 200, status)

	_, body = f.do(t, "GET", "/api/jobs/live", "", "")
	assert.Equal(t, "Renamed", body["title"])
	assert.Equal(t, "Mumbai", body["location"])

	status, _ = f.do(t, "PATCH", "/api/jobs/missing", "owner", `{"title":"X"}`)
	assert.Equal(t, 404, status)
}

func TestTogglePublished(t *testing.T) {
	f := newFixture(t)

	for range 2 {
		status, body := f.do(t, "POST", "/api/jobs/draft/publish", "owner", `{"published":true}`)
		assert.Equal(t, 200, status)
		assert.Equal(t, true, body["published"])
	}

	_, body := f.do(t, "GET", "/api/jobs", "", "")
	assert.Contains(t, itemIDs(body), "draft")
}

func TestDeleteJob_AdminMayManageAnyCompany(t *testing.T) {
	f := newFixture(t)

	status, _ := f.do(t, "DELETE", "/api/jobs/rival-job", "owner", "")
	assert.Equal(t, 403, status)

	status, _ = f.do(t, "DELETE", "/api/jobs/rival-job", "boss", "")
	assert.Equal(t, 204, status)

	status, _ = f.do(t, "GET", "/api/jobs/rival-job", "", "")
	assert.Equal(t, 404, status)
}

func TestListMyJobs(t *testing.T) {
	f := newFixture(t)

	status, _ := f.do(t, "GET", "/api/employer/jobs", "", "")
	assert.Equal(t, 401, status)

	status, body := f.do(t, "GET", "/api/employer/jobs", "owner", "")
	assert.Equal(t, 200, status)
	assert.ElementsMatch(t, []string{"live", "draft"}, itemIDs(body))

	status, body = f.do(t, "GET", "/api/employer/jobs", "nobody", "")
	assert.Equal(t, 200, status)
	assert.Empty(t, itemIDs(body))
}

// blockFirstSearch holds the first store call until release is closed
func (f *fixture) blockFirstSearch() (entered, release chan struct{}) {
	entered, release = make(chan struct{}), make(chan struct{})
	var calls atomic.Int32
	f.store.SetHook(func(context.Context, string, string) error {
		if calls.Add(1) == 1 {
			close(entered)
			<-release
		}
		return nil
	})
	return entered, release
}

func (f *fixture) search(bearer, key string) (int, error) {
	req := httptest.NewRequest("GET", "/api/jobs", nil)
	req.Header.Set(HeaderSearchKey, key)
	req.Header.Set("Authorization", "Bearer "+bearer)
	resp, err := f.app.Test(req, 5000)
	if err != nil {
		return 0, err
	}
	return resp.StatusCode, nil
}

func TestListJobs_SearchKeyIsPerCaller(t *testing.T) {
	tests := []struct {
		name       string
		second     string
		wantFirst  int
		wantSecond int
	}{
		{"other caller with the same key", "rival", 200, 200},
		{"same caller supersedes itself", "owner", 499, 200},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			ownerToken, secondToken := token(t, "owner"), token(t, tt.second)
			entered, release := f.blockFirstSearch()

			type outcome struct {
				status int
				err    error
			}
			first := make(chan outcome, 1)
			go func() {
				status, err := f.search(ownerToken, "job-search")
				first <- outcome{status, err}
			}()
			<-entered

			status, err := f.search(secondToken, "job-search")
			require.NoError(t, err)
			assert.Equal(t, tt.wantSecond, status)

			close(release)
			got := <-first
			require.NoError(t, got.err)
			assert.Equal(t, tt.wantFirst, got.status)
		})
	}
}

func TestSearchKey(t *testing.T) {
	app := fiber.New(fiber.Config{Immutable: true})
	middleware := auth.NewMiddleware(auth.NewVerifier(testSecret, ""), nil)
	app.Get("/key", middleware.Authenticate(), func(c *fiber.Ctx) error {
		return c.SendString(searchKey(c))
	})

	get := func(user, key string) string {
		req := httptest.NewRequest("GET", "/key", nil)
		if key != "" {
			req.Header.Set(HeaderSearchKey, key)
		}
		if user != "" {
			req.Header.Set("Authorization", "Bearer "+token(t, user))
		}
		resp, err := app.Test(req)
		require.NoError(t, err)
		raw, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		return string(raw)
	}

	assert.Equal(t, "user:owner|box", get("owner", "box"))
	assert.NotEqual(t, get("owner", "box"), get("rival", "box"))
	assert.True(t, strings.HasPrefix(get("", "box"), "ip:"))
	assert.True(t, strings.HasSuffix(get("", "box"), "|box"))
	assert.Empty(t, get("owner", ""))
}
