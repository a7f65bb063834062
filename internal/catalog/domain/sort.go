package domain

import (
	"slices"
	"strconv"
)

// SortDirection 价格排序方向
type SortDirection int8

const (
	SortNone SortDirection = iota
	SortAscending
	SortDescending
)

// SortDirectionFromFlag 将 sorting 参数（true 升序 / false 降序 / 缺省不排序）转换为排序方向
func SortDirectionFromFlag(sorting *bool) SortDirection {
	switch {
	case sorting == nil:
		return SortNone
	case *sorting:
		return SortAscending
	default:
		return SortDescending
	}
}

// ParseSortDirection 解析 "true" / "false" / ""
func ParseSortDirection(s string) (SortDirection, error) {
	if s == "" {
		return SortNone, nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return SortNone, err
	}
	return SortDirectionFromFlag(&b), nil
}

func (d SortDirection) String() string {
	switch d {
	case SortAscending:
		return "asc"
	case SortDescending:
		return "desc"
	default:
		return "none"
	}
}

// SortByPrice 按 NewPrice 稳定排序，价格相同的报价保持原有相对顺序
// 始终返回新切片，不修改输入
func SortByPrice(offers []Offer, dir SortDirection) []Offer {
	out := slices.Clone(offers)
	if out == nil {
		out = []Offer{}
	}
	switch dir {
	case SortAscending:
		slices.SortStableFunc(out, func(a, b Offer) int { return a.NewPrice.Cmp(b.NewPrice) })
	case SortDescending:
		slices.SortStableFunc(out, func(a, b Offer) int { return b.NewPrice.Cmp(a.NewPrice) })
	}
	return out
}
