//go:build unit

package view

import (
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"
	"time"
)

func testFS() fstest.MapFS {
	return fstest.MapFS{
		"templates/layouts/base.html": {Data: []byte(
			`{{define "base"}}<title>{{block "title" .}}{{.SiteName}}{{end}}</title>{{template "content" .}}<footer>{{.Year}} {{.Path}}</footer>{{end}}`)},
		"templates/pages/home.html": {Data: []byte(
			`{{define "title"}}Home | {{.SiteName}}{{end}}{{define "content"}}<h1>{{.Heading | upper}}</h1><p>{{date .When}}</p>{{end}}`)},
		"templates/pages/tags.html": {Data: []byte(
			`{{define "content"}}{{join .Tags ", "}} {{title .Name}}{{end}}`)},
	}
}

func TestRender(t *testing.T) {
	v, err := New(testFS(), "Garage")
	if err != nil {
		t.Fatal(err)
	}
	v.now = func() time.Time { return time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC) }

	testCases := []struct {
		name string
		page string
		data map[string]interface{}
		want []string
	}{
		{
			name: "layout and overridden block",
			page: "home.html",
			data: map[string]interface{}{"Heading": "brakes", "When": time.Date(2024, 3, 9, 10, 0, 0, 0, time.UTC)},
			want: []string{"<title>Home | Garage</title>", "<h1>BRAKES</h1>", "<p>9 March 2024</p>", "<footer>2024 /x</footer>"},
		},
		{
			name: "default block and helpers",
			page: "tags.html",
			data: map[string]interface{}{"Tags": []string{"oil", "tyres"}, "Name": "service"},
			want: []string{"<title>Garage</title>", "oil, tyres Service"},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var sb strings.Builder
			if err := v.Render(&sb, httptest.NewRequest("GET", "/x", nil), tc.page, tc.data); err != nil {
				t.Fatal(err)
			}
			for _, w := range tc.want {
				if !strings.Contains(sb.String(), w) {
					t.Errorf("expected %q in %q", w, sb.String())
				}
			}
		})
	}

	if !v.Has("home.html") || v.Has("missing.html") {
		t.Error("Has reports the wrong templates")
	}
	if err := v.Render(&strings.Builder{}, nil, "missing.html", nil); err == nil {
		t.Error("expected an error for an unknown template")
	}
}

func TestFormatDate(t *testing.T) {
	when := time.Date(2023, 12, 25, 8, 0, 0, 0, time.UTC)
	var nilTime *time.Time

	testCases := []struct {
		name string
		in   interface{}
		want string
	}{
		{"value", when, "25 December 2023"},
		{"pointer", &when, "25 December 2023"},
		{"nil pointer", nilTime, ""},
		{"zero", time.Time{}, ""},
		{"other type", "2023-12-25", ""},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := formatDate(tc.in); got != tc.want {
				t.Errorf("expected %q, got %q", tc.want, got)
			}
		})
	}
}
