package jobinfra

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/growindia/jobs/pkg/errx"
	"github.com/growindia/jobs/pkg/kernel"
	"github.com/growindia/jobs/pkg/tablex"
	"github.com/growindia/jobs/pkg/tablex/tablexmem"
	"github.com/growindia/jobs/recruitment/job"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var baseTime = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

func newStore(t *testing.T) *tablexmem.Store {
	t.Helper()
	s := tablexmem.New()
	s.CreateTable(jobsTable, variantFull.columns()...)
	return s
}

func jobRow(id string, published bool, age time.Duration, extra tablex.Row) tablex.Row {
	r := tablex.Row{
		"id":              id,
		"title":           "Job " + id,
		"location":        "Mumbai",
		"employment_type": "full-time",
		"published":       published,
		"created_at":      baseTime.Add(-age),
		"company_id":      "c1",
		"currency":        "INR",
	}
	for k, v := range extra {
		r[k] = v
	}
	return r
}

func pageOf(n int) kernel.PaginationOptions {
	return kernel.PaginationOptions{Page: 1, PageSize: n}
}

func jobIDs(jobs []job.Job) []string {
	out := make([]string, len(jobs))
	for i, j := range jobs {
		out[i] = j.ID.String()
	}
	return out
}

// ============================================================================
// Query composition
// ============================================================================

func TestComposeSearch_SharedPredicates(t *testing.T) {
	f := job.FilterSet{Query: "golang", Location: "Pune", EmploymentType: "Full Time", Sort: job.SortPayMax}
	count, data := composeSearch(f, kernel.PaginationOptions{Page: 3, PageSize: 10}, variantFull)

	assert.Equal(t, count.Where, data.Where)
	assert.True(t, count.Count)
	assert.True(t, count.Head)
	assert.Equal(t, 20, data.Offset)
	assert.Equal(t, 10, data.Limit)

	require.Len(t, data.Where, 4)
	assert.Equal(t, tablex.Eq("published", true), data.Where[0])
	assert.Equal(t, tablex.ILike("location", "%Pune%"), data.Where[1])
	assert.Equal(t, tablex.ILike("employment_type", "full-time"), data.Where[2])
	require.Len(t, data.Where[3].AnyOf, 3)
	assert.Equal(t, "company_name", data.Where[3].AnyOf[2].Column)

	assert.Equal(t, "max_salary", data.Order[0].Column)
	assert.True(t, data.Order[0].NullsLast)
}

func TestComposeSearch_AllSentinel(t *testing.T) {
	_, data := composeSearch(job.FilterSet{Location: "ALL", EmploymentType: "all"}, pageOf(10), variantFull)
	assert.Len(t, data.Where, 1, "only the visibility predicate remains")
}

func TestComposeSearch_ReducedOmitsOptionalColumns(t *testing.T) {
	count, data := composeSearch(job.FilterSet{Query: "x"}, pageOf(10), variantReduced)
	for _, q := range []tablex.Query{count, data} {
		for _, col := range q.ReferencedColumns() {
			assert.False(t, isOptional(col), "reduced query references %s", col)
		}
	}
}

// ============================================================================
// Repository
// ============================================================================

func TestSearch_VisibilityAndCount(t *testing.T) {
	s := newStore(t)
	s.Seed(jobsTable,
		jobRow("1", true, 0, nil),
		jobRow("2", false, time.Hour, nil),
		jobRow("3", true, 2*time.Hour, nil),
	)
	repo := NewTableJobRepository(s)

	page, err := repo.Search(context.Background(), job.FilterSet{}, pageOf(10))
	require.NoError(t, err)
	assert.Equal(t, 2, page.Page.Total)
	assert.Equal(t, []string{"1", "3"}, jobIDs(page.Items))
	for _, j := range page.Items {
		assert.True(t, j.Published)
	}
}

func TestSearch_FreeTextMatchesCompanyName(t *testing.T) {
	s := newStore(t)
	s.Seed(jobsTable,
		jobRow("1", true, 0, tablex.Row{"company_name": "Acme Corp"}),
		jobRow("2", true, 0, tablex.Row{"description": "We use ACME tools"}),
		jobRow("3", true, 0, nil),
	)
	repo := NewTableJobRepository(s)

	page, err := repo.Search(context.Background(), job.FilterSet{Query: " acme "}, pageOf(10))
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"1", "2"}, jobIDs(page.Items))
}

func TestSearch_FallbackOnMissingColumn(t *testing.T) {
	s := newStore(t)
	s.Seed(jobsTable, jobRow("1", true, 0, tablex.Row{"title": "Acme engineer"}))
	s.DropColumn(jobsTable, "company_name")
	repo := NewTableJobRepository(s)

	page, err := repo.Search(context.Background(), job.FilterSet{Query: "acme"}, pageOf(10))
	require.NoError(t, err)
	assert.Equal(t, []string{"1"}, jobIDs(page.Items))
	assert.Equal(t, 1, page.Page.Total)
	// full count fails, reduced count and data succeed
	assert.Equal(t, 3, s.CallsFor("select"))
}

func TestSearch_FallbackFiresOnce(t *testing.T) {
	s := newStore(t)
	s.DropColumn(jobsTable, "location")
	repo := NewTableJobRepository(s)

	_, err := repo.Search(context.Background(), job.FilterSet{Location: "Pune"}, pageOf(10))
	require.Error(t, err)
	assert.True(t, errx.IsCode(err, job.CodeQueryFailed))
	assert.Equal(t, 2, s.CallsFor("select"))
}

func TestSearch_NonSchemaErrorPropagates(t *testing.T) {
	s := newStore(t)
	s.SetHook(func(context.Context, string, string) error {
		return tablex.Errorf(tablex.KindPermissionDenied, "rls")
	})
	repo := NewTableJobRepository(s)

	_, err := repo.Search(context.Background(), job.FilterSet{}, pageOf(10))
	assert.True(t, errx.IsCode(err, job.CodeQueryForbidden))
	assert.Equal(t, 1, s.CallsFor("select"), "no fallback for non-schema errors")
}

func TestSampleFacets(t *testing.T) {
	s := newStore(t)
	s.Seed(jobsTable,
		jobRow("1", true, 0, tablex.Row{"location": "Pune", "employment_type": "Full Time"}),
		jobRow("2", true, 0, tablex.Row{"location": " Delhi", "employment_type": "contract"}),
		jobRow("3", true, 0, tablex.Row{"location": "Pune", "employment_type": ""}),
		jobRow("4", false, 0, tablex.Row{"location": "Hidden"}),
	)
	repo := NewTableJobRepository(s)

	facets, err := repo.SampleFacets(context.Background(), 500)
	require.NoError(t, err)
	assert.Equal(t, []string{"Delhi", "Pune"}, facets.Locations)
	assert.Equal(t, []string{"contract", "full-time"}, facets.EmploymentTypes)
}

func TestListByCompanyIDs_EmptySkipsStore(t *testing.T) {
	s := newStore(t)
	repo := NewTableJobRepository(s)

	jobs, err := repo.ListByCompanyIDs(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, jobs)
	assert.NotNil(t, jobs)
	assert.Zero(t, s.Calls())
}

func TestCreate_FallbackDropsOptionalColumns(t *testing.T) {
	s := newStore(t)
	s.DropColumn(jobsTable, "currency")
	repo := NewTableJobRepository(s)

	name := "Acme"
	err := repo.Create(context.Background(), &job.Job{
		ID: "j1", Title: "Go", Currency: "INR", CompanyID: "c1", CompanyName: &name, CreatedAt: baseTime,
	})
	require.NoError(t, err)

	rows := s.Rows(jobsTable)
	require.Len(t, rows, 1)
	assert.Nil(t, rows[0]["company_name"], "reduced insert omits every optional column")
}

func TestUpdateAndDelete(t *testing.T) {
	s := newStore(t)
	s.Seed(jobsTable, jobRow("1", false, 0, tablex.Row{"max_salary": 1000.0}))
	repo := NewTableJobRepository(s)
	ctx := context.Background()

	title := kernel.JobTitle("Renamed")
	ok, err := repo.Update(ctx, "1", job.Patch{Title: &title, MaxSalary: kernel.Null[float64]()})
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := repo.GetByID(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, title, got.Title)
	assert.Nil(t, got.MaxSalary)
	assert.Equal(t, kernel.Location("Mumbai"), got.Location)

	ok, err = repo.Update(ctx, "missing", job.Patch{Title: &title})
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = repo.Delete(ctx, "1")
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = repo.GetByID(ctx, "1")
	assert.True(t, errx.IsCode(err, job.CodeJobNotFound))
}

// ============================================================================
// Facet cache
// ============================================================================

func TestRedisFacetCache(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache := NewRedisFacetCache(client, time.Minute)
	ctx := context.Background()

	got, err := cache.Get(ctx)
	require.NoError(t, err)
	assert.Nil(t, got)

	want := job.Facets{Locations: []string{"Pune"}, EmploymentTypes: []string{"contract"}}
	require.NoError(t, cache.Set(ctx, want))

	got, err = cache.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, *got)

	mr.FastForward(2 * time.Minute)
	got, err = cache.Get(ctx)
	require.NoError(t, err)
	assert.Nil(t, got, "entries expire after the ttl")
}
