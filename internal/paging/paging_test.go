package paging

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/mise/internal/cursor"
	"github.com/roach88/mise/internal/keyset"
	"github.com/roach88/mise/internal/model"
)

type row struct {
	ID      string
	Title   string
	Created time.Time
}

func rowID(i int) string {
	return fmt.Sprintf("00000000-0000-7000-8000-%012d", i)
}

func rowKey(r row, field model.SortField) (cursor.Value, string) {
	if field == model.SortTitle {
		return cursor.StringValue(r.Title), r.ID
	}
	return cursor.TimeValue(r.Created), r.ID
}

// table is an in-memory stand-in for the recipes table that evaluates a
// Window the way the SQL compiled by keyset does.
type table struct {
	rows    []row
	windows []Window
}

func (tb *table) compare(a row, col string, b any, bid string) int {
	var c int
	switch col {
	case "title":
		c = strings.Compare(a.Title, b.(string))
	default:
		av, bv := a.Created.UnixMicro(), b.(int64)
		switch {
		case av < bv:
			c = -1
		case av > bv:
			c = 1
		}
	}
	if c != 0 {
		return c
	}
	return strings.Compare(a.ID, bid)
}

func (tb *table) value(r row, col string) any {
	if col == "title" {
		return r.Title
	}
	return r.Created.UnixMicro()
}

func (tb *table) fetch(_ context.Context, w Window) ([]row, error) {
	tb.windows = append(tb.windows, w)

	var out []row
	for _, r := range tb.rows {
		if w.Seek != nil {
			c := tb.compare(r, w.Seek.Column, w.Seek.Value, w.Seek.ID)
			if w.Seek.Order == model.Asc && c < 0 || w.Seek.Order == model.Desc && c > 0 {
				continue
			}
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		c := tb.compare(out[i], w.Sort.Column, tb.value(out[j], w.Sort.Column), out[j].ID)
		if w.Sort.Order == model.Desc {
			return c > 0
		}
		return c < 0
	})
	if len(out) > w.Limit {
		out = out[:w.Limit]
	}
	return out, nil
}

func newTable(n int, title func(i int) string) *table {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tb := &table{}
	for i := 0; i < n; i++ {
		tb.rows = append(tb.rows, row{
			ID:      rowID(i),
			Title:   title(i),
			Created: base.Add(time.Duration(i%4) * time.Hour),
		})
	}
	return tb
}

func collect(t *testing.T, tb *table, req Request) ([]row, []int) {
	t.Helper()
	var (
		all   []row
		sizes []int
	)
	for i := 0; i < 1000; i++ {
		page, err := GetPage(context.Background(), req, DefaultLimits(), tb.fetch, rowKey)
		require.NoError(t, err)
		all = append(all, page.Items...)
		sizes = append(sizes, len(page.Items))
		if !page.HasMore() {
			return all, sizes
		}
		req.Cursor = page.NextCursor
	}
	t.Fatal("pagination did not terminate")
	return nil, nil
}

func sorted(rows []row, field model.SortField, order model.SortOrder) []row {
	out := append([]row(nil), rows...)
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		var c int
		if field == model.SortTitle {
			c = strings.Compare(a.Title, b.Title)
		} else {
			c = a.Created.Compare(b.Created)
		}
		if c == 0 {
			c = strings.Compare(a.ID, b.ID)
		}
		if order == model.Desc {
			return c > 0
		}
		return c < 0
	})
	return out
}

func TestGetPage_TwentyThreeByFive(t *testing.T) {
	tb := newTable(23, func(i int) string { return fmt.Sprintf("Recipe %02d", 22-i) })

	got, sizes := collect(t, tb, Request{Limit: 5, SortField: model.SortTitle, SortOrder: model.Asc})

	assert.Equal(t, []int{5, 5, 5, 5, 3}, sizes)
	assert.Equal(t, sorted(tb.rows, model.SortTitle, model.Asc), got)
	for _, w := range tb.windows {
		assert.Equal(t, 6, w.Limit)
	}
}

func TestGetPage_ExhaustiveWithTies(t *testing.T) {
	titles := []string{"Bread", "Apple Pie", "Bread", "Curry", "Apple Pie", "Bread"}
	tb := newTable(17, func(i int) string { return titles[i%len(titles)] })

	for _, field := range []model.SortField{model.SortTitle, model.SortCreatedAt} {
		for _, order := range []model.SortOrder{model.Asc, model.Desc} {
			want := sorted(tb.rows, field, order)
			for limit := 1; limit <= len(tb.rows); limit++ {
				t.Run(fmt.Sprintf("%s/%s/%d", field, order, limit), func(t *testing.T) {
					got, sizes := collect(t, tb, Request{Limit: limit, SortField: field, SortOrder: order})
					assert.Equal(t, want, got)

					wantPages := (len(tb.rows) + limit - 1) / limit
					assert.Len(t, sizes, wantPages)
				})
			}
		}
	}
}

func TestGetPage_EmptyResult(t *testing.T) {
	tb := &table{}
	page, err := GetPage(context.Background(), Request{Limit: 5, SortField: model.SortTitle, SortOrder: model.Asc}, DefaultLimits(), tb.fetch, rowKey)
	require.NoError(t, err)
	assert.NotNil(t, page.Items)
	assert.Empty(t, page.Items)
	assert.False(t, page.HasMore())
}

func TestGetPage_ExactlyLimitRowsIsFinal(t *testing.T) {
	tb := newTable(5, func(i int) string { return fmt.Sprintf("R%d", i) })
	page, err := GetPage(context.Background(), Request{Limit: 5, SortField: model.SortTitle, SortOrder: model.Asc}, DefaultLimits(), tb.fetch, rowKey)
	require.NoError(t, err)
	assert.Len(t, page.Items, 5)
	assert.Empty(t, page.NextCursor)
}

func TestGetPage_CursorFromFirstExcludedRow(t *testing.T) {
	tb := newTable(4, func(i int) string { return fmt.Sprintf("R%d", i) })
	page, err := GetPage(context.Background(), Request{Limit: 2, SortField: model.SortTitle, SortOrder: model.Asc}, DefaultLimits(), tb.fetch, rowKey)
	require.NoError(t, err)

	c, err := cursor.Decode(page.NextCursor)
	require.NoError(t, err)
	assert.Equal(t, "R2", c.LastValue.Str())
	assert.Equal(t, rowID(2), c.LastID)
	assert.Equal(t, model.SortTitle, c.SortField)
	assert.Equal(t, model.Asc, c.SortOrder)
}

func TestGetPage_CursorSortMismatch(t *testing.T) {
	tb := newTable(6, func(i int) string { return fmt.Sprintf("R%d", i) })
	first, err := GetPage(context.Background(), Request{Limit: 2, SortField: model.SortTitle, SortOrder: model.Asc}, DefaultLimits(), tb.fetch, rowKey)
	require.NoError(t, err)

	_, err = GetPage(context.Background(), Request{Limit: 2, SortField: model.SortCreatedAt, SortOrder: model.Asc, Cursor: first.NextCursor}, DefaultLimits(), tb.fetch, rowKey)
	require.Error(t, err)
	assert.True(t, model.IsConsistency(err))

	_, err = GetPage(context.Background(), Request{Limit: 2, SortField: model.SortTitle, SortOrder: model.Desc, Cursor: first.NextCursor}, DefaultLimits(), tb.fetch, rowKey)
	require.Error(t, err)
	assert.True(t, model.IsConsistency(err))
}

func TestGetPage_RejectsBadRequests(t *testing.T) {
	tb := newTable(3, func(i int) string { return "R" })

	tests := []struct {
		name string
		req  Request
	}{
		{"unknown sort field", Request{Limit: 2, SortField: "calories", SortOrder: model.Asc}},
		{"unknown sort order", Request{Limit: 2, SortField: model.SortTitle, SortOrder: "UP"}},
		{"negative limit", Request{Limit: -1, SortField: model.SortTitle, SortOrder: model.Asc}},
		{"garbage cursor", Request{Limit: 2, SortField: model.SortTitle, SortOrder: model.Asc, Cursor: "not*a*cursor"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := GetPage(context.Background(), tt.req, DefaultLimits(), tb.fetch, rowKey)
			require.Error(t, err)
			assert.True(t, model.IsValidation(err), "got %v", err)
		})
	}
	assert.Empty(t, tb.windows, "no fetch for an invalid request")
}

func TestGetPage_MissingBoundaryValueIsInvariant(t *testing.T) {
	tb := &table{rows: []row{
		{ID: rowID(1), Title: "A"},
		{ID: rowID(2), Title: ""},
	}}
	fetch := func(_ context.Context, w Window) ([]row, error) {
		return tb.rows, nil
	}

	_, err := GetPage(context.Background(), Request{Limit: 1, SortField: model.SortTitle, SortOrder: model.Asc}, DefaultLimits(), fetch, rowKey)
	require.Error(t, err)
	assert.True(t, model.IsInvariant(err))

	_, err = GetPage(context.Background(), Request{Limit: 1, SortField: model.SortUpdatedAt, SortOrder: model.Asc}, DefaultLimits(), fetch, rowKey)
	require.Error(t, err)
	assert.True(t, model.IsInvariant(err))
}

func TestGetPage_OverfullWindowIsInvariant(t *testing.T) {
	fetch := func(_ context.Context, w Window) ([]row, error) {
		return make([]row, w.Limit+1), nil
	}
	_, err := GetPage(context.Background(), Request{Limit: 1, SortField: model.SortTitle, SortOrder: model.Asc}, DefaultLimits(), fetch, rowKey)
	require.Error(t, err)
	assert.True(t, model.IsInvariant(err))
}

func TestGetPage_FetchErrorPropagates(t *testing.T) {
	boom := model.WrapStorageError("fetch", errors.New("disk on fire"))
	fetch := func(context.Context, Window) ([]row, error) { return nil, boom }

	_, err := GetPage(context.Background(), Request{Limit: 1, SortField: model.SortTitle, SortOrder: model.Asc}, DefaultLimits(), fetch, rowKey)
	require.Error(t, err)
	assert.True(t, model.IsStorage(err))
	assert.ErrorIs(t, err, boom)
}

func TestGetPage_PassesSeekToFetcher(t *testing.T) {
	tb := newTable(3, func(i int) string { return fmt.Sprintf("R%d", i) })
	first, err := GetPage(context.Background(), Request{Limit: 1, SortField: model.SortTitle, SortOrder: model.Desc}, DefaultLimits(), tb.fetch, rowKey)
	require.NoError(t, err)
	_, err = GetPage(context.Background(), Request{Limit: 1, SortField: model.SortTitle, SortOrder: model.Desc, Cursor: first.NextCursor}, DefaultLimits(), tb.fetch, rowKey)
	require.NoError(t, err)

	require.Len(t, tb.windows, 2)
	assert.Nil(t, tb.windows[0].Seek)
	assert.Equal(t, &keyset.Seek{Column: "title", Order: model.Desc, Value: "R1", ID: rowID(1)}, tb.windows[1].Seek)
	assert.Equal(t, keyset.OrderBy{Column: "title", Order: model.Desc}, tb.windows[1].Sort)
}

func TestLimits_Resolve(t *testing.T) {
	l := Limits{Default: 20, Max: 100}

	tests := []struct {
		in      int
		want    int
		wantErr bool
	}{
		{0, 20, false},
		{1, 1, false},
		{50, 50, false},
		{100, 100, false},
		{101, 100, false},
		{-1, 0, true},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.in), func(t *testing.T) {
			got, err := l.Resolve(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, model.IsValidation(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
