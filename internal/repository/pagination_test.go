package repository

import (
	"fmt"
	"testing"
	"time"
)

func TestNormalizePageRequest(t *testing.T) {
	cases := []struct {
		in   PageRequest
		want PageRequest
	}{
		{PageRequest{}, PageRequest{Page: DefaultPage, PageSize: DefaultPageSize}},
		{PageRequest{Page: -3, PageSize: 5}, PageRequest{Page: DefaultPage, PageSize: 5}},
		{PageRequest{Page: 4, PageSize: -1}, PageRequest{Page: 4, PageSize: DefaultPageSize}},
		{PageRequest{Page: 2, PageSize: MaxPageSize + 1}, PageRequest{Page: 2, PageSize: MaxPageSize}},
		{PageRequest{Page: 7, PageSize: MaxPageSize}, PageRequest{Page: 7, PageSize: MaxPageSize}},
	}
	for _, tc := range cases {
		if got := normalizePageRequest(tc.in); got != tc.want {
			t.Fatalf("normalizePageRequest(%+v) = %+v, want %+v", tc.in, got, tc.want)
		}
	}
}

func TestCalcTotalPages(t *testing.T) {
	cases := []struct {
		total    int64
		pageSize int
		want     int
	}{
		{0, 20, 0},
		{5, 0, 0},
		{-1, 20, 0},
		{1, 20, 1},
		{40, 20, 2},
		{41, 20, 3},
	}
	for _, tc := range cases {
		if got := calcTotalPages(tc.total, tc.pageSize); got != tc.want {
			t.Fatalf("calcTotalPages(%d, %d) = %d, want %d", tc.total, tc.pageSize, got, tc.want)
		}
	}
}

// The admin blacklist listing is the paged query in this service; a page
// past the end keeps the totals and returns no items.
func TestBlacklistListingPastLastPage(t *testing.T) {
	repo := NewBlacklistRepository(newTestDB(t, false))
	ctx := t.Context()
	now := time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC)
	for i := range 5 {
		at := now.Add(-time.Duration(i+1) * time.Minute)
		if _, err := repo.Create(ctx, entry(fmt.Sprintf("jti-%d", i), 1, at, now.Add(time.Hour))); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	page, err := repo.ListActive(ctx, now, PageRequest{Page: 9, PageSize: 2})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(page.Items) != 0 || page.Total != 5 || page.TotalPages != 3 || page.Page != 9 {
		t.Fatalf("unexpected page past the end: %+v", page)
	}
}

func FuzzNormalizePageRequest(f *testing.F) {
	f.Add(0, 0)
	f.Add(-1, MaxPageSize*3)
	f.Add(1<<30, 1)
	f.Fuzz(func(t *testing.T, page, pageSize int) {
		got := normalizePageRequest(PageRequest{Page: page, PageSize: pageSize})
		if got.Page < 1 || got.PageSize < 1 || got.PageSize > MaxPageSize {
			t.Fatalf("out of bounds for (%d, %d): %+v", page, pageSize, got)
		}
		if page >= 1 && got.Page != page {
			t.Fatalf("valid page %d rewritten to %d", page, got.Page)
		}
		if normalizePageRequest(got) != got {
			t.Fatalf("normalizePageRequest not idempotent for %+v", got)
		}
	})
}

func FuzzCalcTotalPagesCoversTotal(f *testing.F) {
	f.Add(int64(0), 20)
	f.Add(int64(41), 20)
	f.Add(int64(1<<40), 7)
	f.Fuzz(func(t *testing.T, total int64, pageSize int) {
		got := calcTotalPages(total, pageSize)
		if total <= 0 || pageSize <= 0 {
			if got != 0 {
				t.Fatalf("expected 0 pages, got %d (total=%d size=%d)", got, total, pageSize)
			}
			return
		}
		if int64(got)*int64(pageSize) < total || int64(got-1)*int64(pageSize) >= total {
			t.Fatalf("%d pages of %d do not tightly cover %d", got, pageSize, total)
		}
	})
}
