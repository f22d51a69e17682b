package core_test

import (
	"net/url"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/masomo/core"
)

func TestStringFilter(t *testing.T) {
	tests := []struct {
		name      string
		filter    core.StringFilter
		wantParam string
		wantOK    bool
		matches   []null.String
		rejects   []null.String
	}{
		{
			name:    "absent",
			filter:  core.StringFilter{},
			matches: []null.String{null.String{}, null.StringFrom("u1")},
		},
		{
			name:      "null",
			filter:    core.FilterNull(),
			wantParam: "null",
			wantOK:    true,
			matches:   []null.String{null.String{}},
			rejects:   []null.String{null.StringFrom("u1")},
		},
		{
			name:      "value",
			filter:    core.FilterValue("u1"),
			wantParam: "u1",
			wantOK:    true,
			matches:   []null.String{null.StringFrom("u1")},
			rejects:   []null.String{null.String{}, null.StringFrom("u2")},
		},
		{
			name:    "empty value",
			filter:  core.FilterValue(""),
			matches: []null.String{null.String{}, null.StringFrom("u1")},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			param, ok := tt.filter.Param()
			assert.Equal(t, tt.wantParam, param)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.filter, core.ParseStringFilter(param, ok))

			for _, v := range tt.matches {
				assert.True(t, tt.filter.Match(v), "want match of %v", v)
			}
			for _, v := range tt.rejects {
				assert.False(t, tt.filter.Match(v), "want no match of %v", v)
			}
		})
	}
}

func TestParams_Encode(t *testing.T) {
	due := time.Date(2021, 3, 1, 10, 0, 0, 0, time.FixedZone("WAT", 3600))
	archived := false

	tests := []struct {
		name   string
		params *core.Params
		want   string
	}{
		{name: "nil", want: ""},
		{name: "empty", params: core.NewParams(), want: ""},
		{
			name: "blank values are skipped",
			params: core.NewParams().
				Set("search", "  ").
				SetInt("page", 0).
				SetTime("dueBefore", time.Time{}).
				SetBool("archived", nil).
				SetFilter("assigneeId", core.StringFilter{}).
				SetOrdering(nil),
			want: "",
		},
		{
			name: "null filter",
			params: core.NewParams().
				SetFilter("assigneeId", core.FilterNull()).
				SetFilter("projectAreaId", core.FilterValue("a1")),
			want: "assigneeId=null&projectAreaId=a1",
		},
		{
			name: "sorted keys",
			params: core.NewParams().
				Set("status", "todo").
				SetOrdering([]core.Ordering{core.Desc("dueDate"), core.Asc("title")}).
				SetPage(core.Page{Limit: 20, Cursor: "40"}).
				SetTime("dueBefore", due).
				SetBool("archived", &archived),
			want: "archived=false&cursor=40&dueBefore=2021-03-01T09%3A00%3A00Z&limit=20&ordering=-dueDate%2Ctitle&status=todo",
		},
		{
			name:   "lists",
			params: core.NewParams().SetList("tag", []string{"go", " ", "iot"}),
			want:   "tag=go&tag=iot",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.params.Encode())
		})
	}
}

func TestParseOrderings(t *testing.T) {
	tests := []struct {
		val  string
		want []core.Ordering
	}{
		{val: ""},
		{val: "title", want: []core.Ordering{core.Asc("title")}},
		{val: "-dueDate, title,,-", want: []core.Ordering{core.Desc("dueDate"), core.Asc("title")}},
	}
	for _, tt := range tests {
		t.Run(tt.val, func(t *testing.T) {
			got := core.ParseOrderings(tt.val)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ParseOrderings(%q) mismatch (-want +got):\n%s", tt.val, diff)
			}
			if tt.want != nil {
				assert.Equal(t, core.JoinOrderings(tt.want), core.JoinOrderings(got))
			}
		})
	}
}

func TestParsePage(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  core.Page
	}{
		{name: "defaults", query: "", want: core.Page{Page: 1, Limit: 20}},
		{name: "capped", query: "page=3&limit=500", want: core.Page{Page: 3, Limit: 100}},
		{name: "invalid", query: "page=lol&limit=-2", want: core.Page{Page: 1, Limit: 20}},
		{name: "cursor", query: "cursor=40&limit=10", want: core.Page{Page: 1, Limit: 10, Cursor: "40"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, _ := url.ParseQuery(tt.query)
			assert.Equal(t, tt.want, core.ParsePage(q, 20, 100))
		})
	}
}

func TestParseFilter(t *testing.T) {
	q, _ := url.ParseQuery("assigneeId=null&projectAreaId=a1")
	assert.Equal(t, core.FilterNull(), core.ParseFilter(q, "assigneeId"))
	assert.Equal(t, core.FilterValue("a1"), core.ParseFilter(q, "projectAreaId"))
	assert.Equal(t, core.StringFilter{}, core.ParseFilter(q, "creatorId"))

	// an empty value is absent at both ends
	q, _ = url.ParseQuery("assigneeId=")
	assert.Equal(t, core.StringFilter{}, core.ParseFilter(q, "assigneeId"))
	empty := core.StringFilter{Present: true, Value: null.StringFrom("")}
	assert.True(t, empty.IsAbsent())
	_, ok := empty.Param()
	assert.False(t, ok)
	assert.Equal(t, "", core.NewParams().SetFilter("assigneeId", empty).Encode())
}

func TestNullKeys(t *testing.T) {
	got, err := core.NullKeys([]byte(`{"title": "x", "assigneeId": null, "dueDate":  null , "tags": []}`))
	assert.NoError(t, err)
	assert.Equal(t, map[string]bool{"assigneeId": true, "dueDate": true}, got)

	_, err = core.NullKeys([]byte(`[]`))
	assert.Error(t, err)
}
