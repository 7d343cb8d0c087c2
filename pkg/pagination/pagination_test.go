package pagination

import (
	"fmt"
	"math"
	"testing"
)

func TestCompute_Defaults(t *testing.T) {
	w := Compute(250, 0, 0)

	if w.Page != 1 {
		t.Errorf("expected page 1, got %d", w.Page)
	}
	if w.PageSize != DefaultPageSize {
		t.Errorf("expected default page size %d, got %d", DefaultPageSize, w.PageSize)
	}
	if w.TotalPages != 13 {
		t.Errorf("expected 13 pages, got %d", w.TotalPages)
	}
	if w.Start != 0 || w.End != 20 {
		t.Errorf("expected window [0,20), got [%d,%d)", w.Start, w.End)
	}
}

func TestCompute_LastPageClipped(t *testing.T) {
	w := Compute(250, 13, 20)

	if w.Start != 240 || w.End != 250 {
		t.Errorf("expected window [240,250), got [%d,%d)", w.Start, w.End)
	}
	if w.Len() != 10 {
		t.Errorf("expected 10 items, got %d", w.Len())
	}
	if w.HasNext() {
		t.Error("expected no next page on the last page")
	}
	if !w.HasPrevious() {
		t.Error("expected a previous page on the last page")
	}
}

func TestCompute_PastEnd(t *testing.T) {
	w := Compute(30, 5, 20)

	if w.Len() != 0 {
		t.Errorf("expected empty window past the end, got %d items", w.Len())
	}
	if w.TotalPages != 2 {
		t.Errorf("expected 2 pages, got %d", w.TotalPages)
	}
}

func TestCompute_HugePageDoesNotOverflow(t *testing.T) {
	for _, page := range []int{461168601842738792, math.MaxInt} {
		w := Compute(250, page, 50)

		if w.Start != 250 || w.End != 250 {
			t.Errorf("page %d: expected empty window [250,250), got [%d,%d)", page, w.Start, w.End)
		}
		if got := Slice(make([]int, 250), w); len(got) != 0 {
			t.Errorf("page %d: expected no items, got %d", page, len(got))
		}
	}
}

func TestSlice_ClampsNegativeBounds(t *testing.T) {
	items := []int{1, 2, 3}
	if got := Slice(items, Window{Start: -40, End: -20}); len(got) != 0 {
		t.Errorf("expected no items for a negative window, got %v", got)
	}
	if got := Slice(items, Window{Start: -1, End: 2}); len(got) != 2 {
		t.Errorf("expected 2 items, got %v", got)
	}
}

func TestCompute_Empty(t *testing.T) {
	w := Compute(0, 1, 20)

	if w.TotalPages != 0 {
		t.Errorf("expected 0 pages for empty result, got %d", w.TotalPages)
	}
	if w.HasNext() || w.HasPrevious() {
		t.Error("expected no navigation on an empty result")
	}
}

func TestCompute_TotalPagesIsCeiling(t *testing.T) {
	for _, size := range PageSizes {
		w := Compute(250, 1, size)
		want := (250 + size - 1) / size
		if w.TotalPages != want {
			t.Errorf("page size %d: expected %d pages, got %d", size, want, w.TotalPages)
		}
	}
}

func TestSlice(t *testing.T) {
	items := []int{0, 1, 2, 3, 4, 5, 6}

	got := Slice(items, Compute(len(items), 2, 3))
	if len(got) != 3 || got[0] != 3 || got[2] != 5 {
		t.Errorf("expected [3 4 5], got %v", got)
	}

	got = Slice(items, Compute(len(items), 3, 3))
	if len(got) != 1 || got[0] != 6 {
		t.Errorf("expected [6], got %v", got)
	}
}

func TestSlice_ConcatenatedPagesReconstructInput(t *testing.T) {
	items := make([]int, 250)
	for i := range items {
		items[i] = i
	}

	w := Compute(len(items), 1, 20)
	var joined []int
	for p := 1; p <= w.TotalPages; p++ {
		joined = append(joined, Slice(items, Compute(len(items), p, 20))...)
	}

	if len(joined) != len(items) {
		t.Fatalf("expected %d items, got %d", len(items), len(joined))
	}
	for i := range items {
		if joined[i] != items[i] {
			t.Fatalf("item %d: expected %d, got %d", i, items[i], joined[i])
		}
	}
}

func TestValidPageSize(t *testing.T) {
	for _, n := range []int{10, 20, 25, 50} {
		if !ValidPageSize(n) {
			t.Errorf("expected %d to be valid", n)
		}
	}
	for _, n := range []int{0, 15, 100, -10} {
		if ValidPageSize(n) {
			t.Errorf("expected %d to be invalid", n)
		}
	}
}

func TestNewResponse(t *testing.T) {
	resp := NewResponse([]string{"a"}, Compute(45, 2, 20))

	if resp.Total != 45 {
		t.Errorf("expected total 45, got %d", resp.Total)
	}
	if resp.TotalPages != 3 {
		t.Errorf("expected 3 pages, got %d", resp.TotalPages)
	}
	if !resp.HasNext || !resp.HasPrevious {
		t.Error("expected both next and previous on the middle page")
	}
}

func TestLinks(t *testing.T) {
	pageURL := func(p int) string { return fmt.Sprintf("/claims?page=%d", p) }

	links := Links(Compute(45, 2, 20), pageURL)
	rels := map[string]string{}
	for _, l := range links {
		rels[l.Relation] = l.URL
	}

	want := map[string]string{
		"self":     "/claims?page=2",
		"first":    "/claims?page=1",
		"previous": "/claims?page=1",
		"next":     "/claims?page=3",
		"last":     "/claims?page=3",
	}
	for rel, url := range want {
		if rels[rel] != url {
			t.Errorf("expected %s link %q, got %q", rel, url, rels[rel])
		}
	}
}

func TestLinks_FirstPageHasNoPrevious(t *testing.T) {
	links := Links(Compute(45, 1, 20), func(p int) string { return fmt.Sprint(p) })
	for _, l := range links {
		if l.Relation == "previous" {
			t.Error("expected no previous link on the first page")
		}
	}
}

func TestLinks_EmptyResultOnlySelf(t *testing.T) {
	links := Links(Compute(0, 1, 20), func(p int) string { return fmt.Sprint(p) })
	if len(links) != 1 || links[0].Relation != "self" {
		t.Errorf("expected only a self link, got %v", links)
	}
}
