package domain

// OfferPredicate 报价过滤条件
type OfferPredicate func(Offer) bool

// OfferFilter 报价过滤参数，字段为 nil 表示不过滤
type OfferFilter struct {
	CategoryID   *int64
	CandidateIDs map[int64]struct{}
	Available    *bool
	PriceRange   *MultiRange
}

// Predicates 按固定顺序生成过滤条件：分类归属、可售状态、价格区间
func (f OfferFilter) Predicates() []OfferPredicate {
	preds := make([]OfferPredicate, 0, 3)

	if f.CategoryID != nil {
		categoryID := *f.CategoryID
		candidates := f.CandidateIDs
		preds = append(preds, func(o Offer) bool {
			if o.CategoryID == categoryID {
				return true
			}
			_, ok := candidates[o.CategoryID]
			return ok
		})
	}

	if f.Available != nil {
		available := *f.Available
		preds = append(preds, func(o Offer) bool { return o.Available == available })
	}

	if f.PriceRange != nil {
		r := *f.PriceRange
		preds = append(preds, func(o Offer) bool { return r.Contains(o.NewPrice) })
	}

	return preds
}

// FilterOffers 依次应用过滤条件，返回保持原有顺序的新切片
func FilterOffers(offers []Offer, f OfferFilter) []Offer {
	preds := f.Predicates()
	out := make([]Offer, 0, len(offers))
next:
	for _, o := range offers {
		for _, p := range preds {
			if !p(o) {
				continue next
			}
		}
		out = append(out, o)
	}
	return out
}
