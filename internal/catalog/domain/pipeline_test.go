package domain

import (
	"errors"
	"reflect"
	"testing"

	"github.com/shopspring/decimal"
)

func priceRange(lo, hi int64) *MultiRange {
	return &MultiRange{Min: decimal.NewFromInt(lo), Max: decimal.NewFromInt(hi)}
}

func TestFilterOffers(t *testing.T) {
	t.Parallel()

	offers := []Offer{
		offer(1, 1, 50, true),
		offer(2, 2, 100, false),
		offer(3, 7, 150, true),
		offer(4, 3, 200, true),
	}

	tests := []struct {
		name   string
		filter OfferFilter
		want   []int64
	}{
		{"no predicates", OfferFilter{}, []int64{1, 2, 3, 4}},
		{
			"category own id or candidate",
			OfferFilter{CategoryID: ptr[int64](1), CandidateIDs: map[int64]struct{}{2: {}, 3: {}}},
			[]int64{1, 2, 4},
		},
		{"available only", OfferFilter{Available: ptr(true)}, []int64{1, 3, 4}},
		{"unavailable only", OfferFilter{Available: ptr(false)}, []int64{2}},
		{"inclusive price range", OfferFilter{PriceRange: priceRange(100, 150)}, []int64{2, 3}},
		{
			"all predicates",
			OfferFilter{
				CategoryID:   ptr[int64](1),
				CandidateIDs: map[int64]struct{}{2: {}, 3: {}},
				Available:    ptr(true),
				PriceRange:   priceRange(0, 100),
			},
			[]int64{1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := FilterOffers(offers, tt.filter)
			if g := ids(got); !reflect.DeepEqual(g, tt.want) {
				t.Errorf("got %v, want %v", g, tt.want)
			}
		})
	}
}

func TestFilterOffers_EmptyInputYieldsEmptySlice(t *testing.T) {
	t.Parallel()

	got := FilterOffers(nil, OfferFilter{Available: ptr(true)})
	if got == nil || len(got) != 0 {
		t.Errorf("got %#v, want empty non-nil slice", got)
	}
}

func TestFilterOffers_PriceRangeScenario(t *testing.T) {
	t.Parallel()

	offers := []Offer{offer(1, 1, 50, true), offer(2, 1, 100, true), offer(3, 1, 150, true), offer(4, 1, 200, true)}
	got := FilterOffers(offers, OfferFilter{PriceRange: priceRange(80, 160)})

	want := []int64{100, 150}
	var prices []int64
	for _, o := range got {
		prices = append(prices, o.NewPrice.IntPart())
	}
	if !reflect.DeepEqual(prices, want) {
		t.Errorf("prices = %v, want %v", prices, want)
	}
}

func TestSortByPrice(t *testing.T) {
	t.Parallel()

	offers := []Offer{
		offer(1, 1, 30, true),
		offer(2, 1, 10, true),
		offer(3, 1, 30, true),
		offer(4, 1, 20, true),
		offer(5, 1, 10, true),
	}

	tests := []struct {
		dir  SortDirection
		want []int64
	}{
		{SortNone, []int64{1, 2, 3, 4, 5}},
		{SortAscending, []int64{2, 5, 4, 1, 3}},
		{SortDescending, []int64{1, 3, 4, 2, 5}},
	}

	for _, tt := range tests {
		t.Run(tt.dir.String(), func(t *testing.T) {
			got := SortByPrice(offers, tt.dir)
			if g := ids(got); !reflect.DeepEqual(g, tt.want) {
				t.Errorf("got %v, want %v", g, tt.want)
			}
			if g := ids(offers); !reflect.DeepEqual(g, []int64{1, 2, 3, 4, 5}) {
				t.Errorf("input was reordered: %v", g)
			}
		})
	}
}

func TestParseSortDirection(t *testing.T) {
	t.Parallel()

	cases := map[string]SortDirection{"": SortNone, "true": SortAscending, "false": SortDescending}
	for in, want := range cases {
		got, err := ParseSortDirection(in)
		if err != nil {
			t.Fatalf("ParseSortDirection(%q) error: %v", in, err)
		}
		if got != want {
			t.Errorf("ParseSortDirection(%q) = %v, want %v", in, got, want)
		}
	}
	if _, err := ParseSortDirection("sideways"); err == nil {
		t.Error("expected error for invalid flag")
	}
}

func TestPaginate_Clamping(t *testing.T) {
	t.Parallel()

	offers := make([]Offer, 23)
	for i := range offers {
		offers[i] = offer(int64(i+1), 1, int64(i), true)
	}

	tests := []struct {
		name      string
		requested int
		wantPage  int
		wantFirst int64
		wantLen   int
	}{
		{"first page", 1, 1, 1, 10},
		{"middle page", 2, 2, 11, 10},
		{"last partial page", 3, 3, 21, 3},
		{"beyond last clamps", 99, 3, 21, 3},
		{"negative clamps to first", -5, 1, 1, 10},
		{"zero clamps to first", 0, 1, 1, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			p := Paginate(offers, tt.requested, 10)
			if p.NumberOfPages != 3 {
				t.Errorf("numberOfPages = %d, want 3", p.NumberOfPages)
			}
			if p.Page != tt.wantPage {
				t.Errorf("page = %d, want %d", p.Page, tt.wantPage)
			}
			if len(p.Offers) != tt.wantLen {
				t.Fatalf("len = %d, want %d", len(p.Offers), tt.wantLen)
			}
			if p.Offers[0].ID != tt.wantFirst {
				t.Errorf("first id = %d, want %d", p.Offers[0].ID, tt.wantFirst)
			}
		})
	}
}

func TestPaginate_NoResults(t *testing.T) {
	t.Parallel()

	p := Paginate(nil, 4, 10)
	if p.Page != 0 || p.NumberOfPages != 0 {
		t.Errorf("got page=%d pages=%d, want 0/0", p.Page, p.NumberOfPages)
	}
	if p.Offers == nil || len(p.Offers) != 0 {
		t.Errorf("offers = %#v, want empty non-nil slice", p.Offers)
	}
}

func TestPaginate_Coverage(t *testing.T) {
	t.Parallel()

	offers := make([]Offer, 37)
	for i := range offers {
		offers[i] = offer(int64(i+1), 1, 1, true)
	}

	p := Paginate(offers, 1, 6)
	var all []int64
	for page := 1; page <= p.NumberOfPages; page++ {
		all = append(all, ids(Paginate(offers, page, 6).Offers)...)
	}
	if !reflect.DeepEqual(all, ids(offers)) {
		t.Errorf("concatenated pages = %v, want %v", all, ids(offers))
	}
}

func TestPriceRangeOf(t *testing.T) {
	t.Parallel()

	r, err := PriceRangeOf([]Offer{offer(1, 1, 70, true), offer(2, 1, 15, false), offer(3, 1, 120, true)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !r.Min.Equal(decimal.NewFromInt(15)) || !r.Max.Equal(decimal.NewFromInt(120)) {
		t.Errorf("range = %s..%s, want 15..120", r.Min, r.Max)
	}

	_, err = PriceRangeOf(nil)
	if !errors.Is(err, ErrEmptyCatalog) {
		t.Errorf("err = %v, want ErrEmptyCatalog", err)
	}
	var de *DomainError
	if !errors.As(err, &de) || de.Code != "EMPTY_CATALOG" {
		t.Errorf("err = %v, want DomainError EMPTY_CATALOG", err)
	}
}

func TestBuildCategoryGroups_Bounds(t *testing.T) {
	t.Parallel()

	var categories []Category
	var offers []Offer
	nextID := int64(1)
	for root := int64(1); root <= 5; root++ {
		categories = append(categories, cat(root, "root", nil))
		for i := 0; i < 10; i++ {
			offers = append(offers, offer(nextID, root, 10, true))
			nextID++
		}
	}

	groups := BuildCategoryGroups(NewCategoryTree(categories), offers, 4, 3)
	if len(groups) != 4 {
		t.Fatalf("len(groups) = %d, want 4", len(groups))
	}
	for i, g := range groups {
		if g.Category.ID != int64(i+1) {
			t.Errorf("group %d category = %d, want %d", i, g.Category.ID, i+1)
		}
		if len(g.Offers) != 3 {
			t.Errorf("group %d has %d offers, want 3", i, len(g.Offers))
		}
	}
}

func TestBuildCategoryGroups_MembershipAvailabilityAndEmptyGroups(t *testing.T) {
	t.Parallel()

	tree := NewCategoryTree(sampleCategories())
	offers := []Offer{
		offer(1, 2, 10, true),  // trees/spruce
		offer(2, 5, 10, false), // decor/balls, unavailable
		offer(3, 1, 10, true),  // trees
		offer(4, 6, 10, true),  // orphan
	}

	groups := BuildCategoryGroups(tree, offers, 10, 10)
	if len(groups) != 1 {
		t.Fatalf("len(groups) = %d, want 1 (decor has no available offers)", len(groups))
	}
	if groups[0].Category.ID != 1 {
		t.Errorf("category = %d, want 1", groups[0].Category.ID)
	}
	if g := ids(groups[0].Offers); !reflect.DeepEqual(g, []int64{1, 3}) {
		t.Errorf("offers = %v, want [1 3]", g)
	}

	if got := BuildCategoryGroups(tree, offers, 0, 3); len(got) != 0 {
		t.Errorf("zero category limit returned %d groups", len(got))
	}
}
