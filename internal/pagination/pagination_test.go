package pagination

import (
	"errors"
	"net/url"
	"testing"
)

var testSortable = map[string]string{
	"createdAt": "created_at",
	"views":     "views",
	"title":     "title",
}

func TestParseDefaults(t *testing.T) {
	p, err := Parse(url.Values{}, testSortable, "createdAt", true)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if p.Page != 1 || p.Limit != 10 {
		t.Fatalf("unexpected defaults: %+v", p)
	}
	if p.SortKey != "createdAt" || !p.Desc {
		t.Fatalf("unexpected default sort: %+v", p)
	}
}

func TestParseRejectsBadInput(t *testing.T) {
	cases := []struct {
		name string
		q    url.Values
		want error
	}{
		{"zeroPage", url.Values{"page": {"0"}}, ErrInvalidPage},
		{"negativePage", url.Values{"page": {"-2"}}, ErrInvalidPage},
		{"nonNumericLimit", url.Values{"limit": {"ten"}}, ErrInvalidPage},
		{"unknownSortKey", url.Values{"sortBy": {"password"}}, ErrInvalidSort},
		{"unknownSortDir", url.Values{"sortDir": {"sideways"}}, ErrInvalidSort},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Parse(tc.q, testSortable, "createdAt", true); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v got %v", tc.want, err)
			}
		})
	}
}

func TestParseClampsLimit(t *testing.T) {
	p, err := Parse(url.Values{"limit": {"5000"}}, testSortable, "createdAt", true)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if p.Limit != maxLimit {
		t.Fatalf("expected limit clamped to %d got %d", maxLimit, p.Limit)
	}
}

func TestOrderBy(t *testing.T) {
	p, err := Parse(url.Values{"sortBy": {"views"}, "sortDir": {"asc"}}, testSortable, "createdAt", true)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got := p.OrderBy(testSortable); got != "views ASC" {
		t.Fatalf("unexpected order by: %q", got)
	}
}

func TestNewPageMetadata(t *testing.T) {
	p := Params{Page: 2, Limit: 10}
	page := NewPage(make([]int, 10), 25, p)

	if page.TotalItems != 25 || page.TotalPages != 3 {
		t.Fatalf("unexpected totals: %+v", page)
	}
	if !page.HasNext || !page.HasPrev {
		t.Fatalf("expected both neighbours for middle page: %+v", page)
	}

	last := NewPage(make([]int, 5), 25, Params{Page: 3, Limit: 10})
	if last.HasNext || !last.HasPrev {
		t.Fatalf("unexpected flags for last page: %+v", last)
	}
}

func TestNewPageEmptyResult(t *testing.T) {
	page := NewPage[string](nil, 0, Params{Page: 1, Limit: 10})
	if page.Items == nil {
		t.Fatal("expected empty slice, not nil")
	}
	if page.HasNext || page.HasPrev || page.TotalPages != 0 {
		t.Fatalf("unexpected metadata for empty page: %+v", page)
	}
}
