package query_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"vuttr/internal/models"
	"vuttr/internal/query"
)

func TestParse_Filters(t *testing.T) {
	opts := query.Parse(map[string]string{
		"title":      "Notion",
		"price[gte]": "100",
		"price[lt]":  "500",
		"page":       "2",
		"sort":       "title",
		"limit":      "10",
		"fields":     "title",
	})

	assert.ElementsMatch(t, []query.Filter{
		{Field: "title", Op: query.OpEq, Value: "Notion"},
		{Field: "price", Op: query.OpGte, Value: "100"},
		{Field: "price", Op: query.OpLt, Value: "500"},
	}, opts.Filters)
}

func TestParse_UnknownOperatorIgnored(t *testing.T) {
	opts := query.Parse(map[string]string{"price[like]": "100"})
	assert.Empty(t, opts.Filters)
}

func TestParse_UnsafeFieldNamesDropped(t *testing.T) {
	opts := query.Parse(map[string]string{
		"title; DROP TABLE tools": "x",
		"sort":                    "-title, created_at); --",
		"fields":                  "title,cnt(*)",
	})

	assert.Empty(t, opts.Filters)
	assert.Equal(t, []query.SortKey{{Field: "title", Desc: true}}, opts.Sort)
	assert.Equal(t, []string{"title"}, opts.Fields)
}

func TestParse_Sort(t *testing.T) {
	opts := query.Parse(map[string]string{"sort": "-title,created_at"})
	assert.Equal(t, []query.SortKey{
		{Field: "title", Desc: true},
		{Field: "created_at"},
	}, opts.Sort)
}

func TestParse_PaginationDefaults(t *testing.T) {
	tests := []struct {
		name      string
		params    map[string]string
		wantPage  int
		wantLimit int
	}{
		{"absent", map[string]string{}, 1, 100},
		{"valid", map[string]string{"page": "3", "limit": "25"}, 3, 25},
		{"non-numeric fails closed", map[string]string{"page": "abc", "limit": "xyz"}, 1, 100},
		{"zero fails closed", map[string]string{"page": "0", "limit": "0"}, 1, 100},
		{"negative fails closed", map[string]string{"page": "-2", "limit": "-5"}, 1, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := query.Parse(tt.params)
			assert.Equal(t, tt.wantPage, opts.Page)
			assert.Equal(t, tt.wantLimit, opts.Limit)
		})
	}
}

func TestOptions_Offset(t *testing.T) {
	opts := query.Options{Page: 3, Limit: 20}
	assert.Equal(t, 40, opts.Offset())
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Tool{}))
	return db
}

func seedTools(t *testing.T, db *gorm.DB, titles ...string) {
	t.Helper()
	for _, title := range titles {
		tool := models.Tool{
			Title:       title,
			Description: "desc " + title,
			Link:        "https://example.test/" + title,
			Tags:        models.Tags{"tag"},
		}
		require.NoError(t, db.Create(&tool).Error)
	}
}

func TestApply_FilterAndSort(t *testing.T) {
	db := openTestDB(t)
	seedTools(t, db, "alpha", "bravo", "charlie")

	var tools []models.Tool
	opts := query.Parse(map[string]string{"title": "bravo"})
	require.NoError(t, opts.Apply(db.Model(&models.Tool{})).Find(&tools).Error)
	require.Len(t, tools, 1)
	assert.Equal(t, "bravo", tools[0].Title)

	tools = nil
	opts = query.Parse(map[string]string{"sort": "-title"})
	require.NoError(t, opts.Apply(db.Model(&models.Tool{})).Find(&tools).Error)
	require.Len(t, tools, 3)
	for i := 1; i < len(tools); i++ {
		assert.GreaterOrEqual(t, tools[i-1].Title, tools[i].Title)
	}
}

func TestApply_ComparisonOperators(t *testing.T) {
	db := openTestDB(t)
	seedTools(t, db, "alpha", "bravo", "charlie")

	var tools []models.Tool
	opts := query.Parse(map[string]string{"title[gt]": "alpha", "sort": "title"})
	require.NoError(t, opts.Apply(db.Model(&models.Tool{})).Find(&tools).Error)
	require.Len(t, tools, 2)
	assert.Equal(t, "bravo", tools[0].Title)
	assert.Equal(t, "charlie", tools[1].Title)
}

func TestApply_PaginationDisjointPages(t *testing.T) {
	db := openTestDB(t)
	seedTools(t, db, "a", "b", "c", "d", "e")

	fetch := func(page string) []models.Tool {
		var tools []models.Tool
		opts := query.Parse(map[string]string{"limit": "2", "page": page, "sort": "title"})
		require.NoError(t, opts.Apply(db.Model(&models.Tool{})).Find(&tools).Error)
		return tools
	}

	first := fetch("1")
	second := fetch("2")
	require.Len(t, first, 2)
	require.Len(t, second, 2)

	seen := map[string]bool{}
	for _, tool := range append(first, second...) {
		assert.False(t, seen[tool.ID], "pages must be disjoint")
		seen[tool.ID] = true
	}
	assert.Equal(t, "a", first[0].Title)
	assert.Equal(t, "d", second[1].Title)
}

func TestApply_FieldProjection(t *testing.T) {
	db := openTestDB(t)
	seedTools(t, db, "alpha")

	var tools []models.Tool
	opts := query.Parse(map[string]string{"fields": "id,title"})
	require.NoError(t, opts.Apply(db.Model(&models.Tool{})).Find(&tools).Error)
	require.Len(t, tools, 1)
	assert.Equal(t, "alpha", tools[0].Title)
	assert.Empty(t, tools[0].Description)
}
