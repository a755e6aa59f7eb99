package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBleveStore(t *testing.T) *BleveStore {
	t.Helper()
	s, err := NewBleveStore("", DefaultOptions())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestBleveStoreUpsertAndGet(t *testing.T) {
	s := newTestBleveStore(t)
	ctx := context.Background()

	doc := testDoc("core-concepts/dags.rst", "DAGs", "A DAG is a collection of tasks.")
	doc.Description = "Directed acyclic graphs."
	require.NoError(t, s.Upsert(ctx, doc))

	got, err := s.Get(ctx, SourceCore, "core-concepts/dags.rst")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "DAGs", got.Title)
	assert.Equal(t, "Directed acyclic graphs.", got.Description)
	assert.Equal(t, "Core Concepts", got.Section)

	missing, err := s.Get(ctx, SourceCore, "no/such.rst")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestBleveStoreUpsertIdempotent(t *testing.T) {
	s := newTestBleveStore(t)
	ctx := context.Background()

	doc := testDoc("a.rst", "A", "original content")
	require.NoError(t, s.Upsert(ctx, doc))
	doc.Content = "replaced content"
	require.NoError(t, s.Upsert(ctx, doc))

	count, err := s.Count(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	results, err := s.Search(ctx, "replaced", SearchOptions{})
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestBleveStoreSamePathAcrossSources(t *testing.T) {
	s := newTestBleveStore(t)
	ctx := context.Background()

	core := testDoc("index.md", "Core Index", "Airflow core documentation index.")
	require.NoError(t, s.Upsert(ctx, core))

	client := testDoc("index.md", "Client Index", "Python client documentation index.")
	client.Source = SourceClient
	client.Section = "Root"
	require.NoError(t, s.Upsert(ctx, client))

	count, err := s.Count(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	got, err := s.Get(ctx, SourceClient, "index.md")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Client Index", got.Title)

	results, err := s.Search(ctx, "documentation index", SearchOptions{Source: SourceCore})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, SourceCore, results[0].Source)
	assert.Equal(t, "Core Index", results[0].Title)
}

func TestBleveStoreSearchRanking(t *testing.T) {
	s := newTestBleveStore(t)
	ctx := context.Background()

	titleHit := testDoc("concepts/taskflow.rst", "TaskFlow", "Write pipelines with plain Python functions.")
	bodyHit := testDoc("tutorial/intro.rst", "Tutorial", "This page mentions taskflow somewhere in its body text for completeness.")
	require.NoError(t, s.Upsert(ctx, titleHit))
	require.NoError(t, s.Upsert(ctx, bodyHit))

	results, err := s.Search(ctx, "taskflow", SearchOptions{})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "concepts/taskflow.rst", results[0].Path)
	assert.Greater(t, results[0].Score, 0.0)
}

func TestBleveStoreSearchFilters(t *testing.T) {
	s := newTestBleveStore(t)
	ctx := context.Background()

	require.NoError(t, s.Upsert(ctx, testDoc("core-concepts/dags.rst", "DAGs", "DAG fundamentals.")))
	clientDoc := testDoc("dag-api.md", "DAG API", "Client access to DAG endpoints.")
	clientDoc.Source = SourceClient
	clientDoc.Section = "Root"
	require.NoError(t, s.Upsert(ctx, clientDoc))

	results, err := s.Search(ctx, "dag", SearchOptions{Source: SourceClient})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, SourceClient, results[0].Source)

	results, err = s.Search(ctx, "dag", SearchOptions{Section: "Core Concepts"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "core-concepts/dags.rst", results[0].Path)
}

func TestBleveStoreSpecialCharacters(t *testing.T) {
	s := newTestBleveStore(t)
	ctx := context.Background()

	require.NoError(t, s.Upsert(ctx, testDoc("ref/models.rst", "airflow.models.dag", "Reference for airflow.models.dag usage.")))

	for _, q := range []string{"airflow.models.dag", "DAG(schedule)", "dags AND tasks"} {
		_, err := s.Search(ctx, q, SearchOptions{})
		assert.NoError(t, err, "query %q", q)
	}
}

func TestBleveStoreClearAndStats(t *testing.T) {
	s := newTestBleveStore(t)
	ctx := context.Background()

	require.NoError(t, s.Upsert(ctx, testDoc("a.rst", "A", "core docs")))
	clientDoc := testDoc("b.md", "B", "client docs")
	clientDoc.Source = SourceClient
	require.NoError(t, s.Upsert(ctx, clientDoc))

	stats, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, 1, stats.Sources[SourceCore])

	require.NoError(t, s.Clear(ctx, SourceCore))
	stats, err = s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Total)
	assert.Zero(t, stats.Sources[SourceCore])
}

func TestBleveStoreSections(t *testing.T) {
	s := newTestBleveStore(t)
	ctx := context.Background()

	for _, section := range []string{"Core Concepts", "Administration", "Core Concepts"} {
		doc := testDoc("p-"+section+".rst", section, "content")
		doc.Section = section
		require.NoError(t, s.Upsert(ctx, doc))
	}

	sections, err := s.Sections(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"Administration", "Core Concepts"}, sections)
}

func TestOpenFactory(t *testing.T) {
	s, err := Open("", "sqlite", DefaultOptions())
	require.NoError(t, err)
	assert.IsType(t, &SQLiteStore{}, s)
	require.NoError(t, s.Close())

	s, err = Open("", "bleve", DefaultOptions())
	require.NoError(t, err)
	assert.IsType(t, &BleveStore{}, s)
	require.NoError(t, s.Close())

	s, err = Open("", "", DefaultOptions())
	require.NoError(t, err)
	assert.IsType(t, &SQLiteStore{}, s)
	require.NoError(t, s.Close())

	_, err = Open("", "lucene", DefaultOptions())
	assert.Error(t, err)
}
