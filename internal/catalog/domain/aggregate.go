package domain

// CategoryWithOffers 一级分类及其展示用报价
type CategoryWithOffers struct {
	Category Category `json:"category"`
	Offers   []Offer  `json:"offers"`
}

// PriceRangeOf 计算全部报价的最低价与最高价
// 报价为空时返回 ErrEmptyCatalog
func PriceRangeOf(offers []Offer) (MultiRange, error) {
	if len(offers) == 0 {
		return MultiRange{}, ErrEmptyCatalog
	}
	r := MultiRange{Min: offers[0].NewPrice, Max: offers[0].NewPrice}
	for _, o := range offers[1:] {
		if o.NewPrice.LessThan(r.Min) {
			r.Min = o.NewPrice
		}
		if o.NewPrice.GreaterThan(r.Max) {
			r.Max = o.NewPrice
		}
	}
	return r, nil
}

// BuildCategoryGroups 按一级分类分组可售报价
// 每组最多 perCategoryOfferLimit 条，丢弃空分组，最多返回 categoryLimit 组，保持分类原有顺序
func BuildCategoryGroups(tree *CategoryTree, offers []Offer, categoryLimit, perCategoryOfferLimit int) []CategoryWithOffers {
	groups := make([]CategoryWithOffers, 0)
	if categoryLimit <= 0 || perCategoryOfferLimit <= 0 {
		return groups
	}

	for _, root := range tree.Roots() {
		members := tree.MembershipIDs(root.ID)
		picked := make([]Offer, 0, perCategoryOfferLimit)
		for _, o := range offers {
			if !o.Available {
				continue
			}
			if _, ok := members[o.CategoryID]; !ok {
				continue
			}
			picked = append(picked, o)
			if len(picked) == perCategoryOfferLimit {
				break
			}
		}
		if len(picked) == 0 {
			continue
		}
		groups = append(groups, CategoryWithOffers{Category: root, Offers: picked})
		if len(groups) == categoryLimit {
			break
		}
	}
	return groups
}
