package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/csrlens/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "nested", "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

var (
	water = model.Report{Security: "Acme", ReportYear: 2023, IndicatorName: "Water Usage", ReportURL: "u1"}
	scope = model.Report{Security: "Acme", ReportYear: 2021, IndicatorName: "Scope 1", ReportURL: "u2"}
)

func TestSelection_AddListRemove(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, st.AddReport(ctx, water))
	require.NoError(t, st.AddReport(ctx, scope))
	require.NoError(t, st.AddReport(ctx, water))

	got, err := st.ListReports(ctx)
	require.NoError(t, err)
	assert.Equal(t, []model.Report{scope, water}, got)

	removed, err := st.RemoveReport(ctx, water)
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = st.RemoveReport(ctx, water)
	require.NoError(t, err)
	assert.False(t, removed)

	got, err = st.ListReports(ctx)
	require.NoError(t, err)
	assert.Equal(t, []model.Report{scope}, got)
}

func TestSelection_AddRefreshesURL(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, st.AddReport(ctx, water))
	updated := water
	updated.ReportURL = "u9"
	require.NoError(t, st.AddReport(ctx, updated))

	got, err := st.ListReports(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "u9", got[0].ReportURL)
}

func TestSelection_Clear(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, st.AddReport(ctx, water))
	require.NoError(t, st.AddReport(ctx, scope))

	n, err := st.ClearReports(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	got, err := st.ListReports(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestLast_SaveLoad(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	company, year, err := st.LoadLast(ctx)
	require.NoError(t, err)
	assert.Empty(t, company)
	assert.Zero(t, year)

	require.NoError(t, st.SaveLast(ctx, "Acme", 2023))
	company, year, err = st.LoadLast(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Acme", company)
	assert.Equal(t, 2023, year)
}

func TestLast_CompanyChangeClearsSelection(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, st.SaveLast(ctx, "Acme", 2023))
	require.NoError(t, st.AddReport(ctx, water))

	require.NoError(t, st.SaveLast(ctx, "Acme", 2023))
	got, err := st.ListReports(ctx)
	require.NoError(t, err)
	assert.Len(t, got, 1, "same company and year keeps the selection")

	require.NoError(t, st.SaveLast(ctx, "3M Company", 2023))
	got, err = st.ListReports(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestLast_YearChangeClearsSelection(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, st.SaveLast(ctx, "Acme", 2021))
	require.NoError(t, st.AddReport(ctx, scope))

	require.NoError(t, st.SaveLast(ctx, "Acme", 2023))
	require.NoError(t, st.AddReport(ctx, water))

	got, err := st.ListReports(ctx)
	require.NoError(t, err)
	assert.Equal(t, []model.Report{water}, got)

	company, year, err := st.LoadLast(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Acme", company)
	assert.Equal(t, 2023, year)
}

func TestOpenMemory(t *testing.T) {
	st, err := Open(":memory:")
	require.NoError(t, err)
	defer st.Close() //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))
	require.NoError(t, st.AddReport(context.Background(), water))
}
