package domain

// Page 分页结果
type Page struct {
	// Page 实际页码（从 1 开始；无结果时为 0）
	Page          int
	Offers        []Offer
	NumberOfPages int
}

// Paginate 对已排序的报价分页
// 请求页码小于 1 按 1 处理，超过总页数按最后一页处理；无结果时返回第 0 页和空切片
func Paginate(offers []Offer, page, pageSize int) Page {
	total := len(offers)
	if pageSize <= 0 {
		pageSize = total
	}
	if total == 0 {
		return Page{Page: 0, Offers: []Offer{}, NumberOfPages: 0}
	}

	numberOfPages := (total + pageSize - 1) / pageSize

	if page < 1 {
		page = 1
	}
	if page > numberOfPages {
		page = numberOfPages
	}

	start := (page - 1) * pageSize
	end := min(start+pageSize, total)

	return Page{
		Page:          page,
		Offers:        append([]Offer(nil), offers[start:end]...),
		NumberOfPages: numberOfPages,
	}
}
