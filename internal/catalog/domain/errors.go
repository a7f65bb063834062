package domain

// DomainError 目录领域错误
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Code + ": " + e.Message
}

var (
	// ErrEmptyCatalog 报价集合为空，价格区间无定义
	ErrEmptyCatalog = &DomainError{Code: "EMPTY_CATALOG", Message: "price range is undefined for an empty offer set"}
	// ErrCategoryNotFound 分类不存在
	ErrCategoryNotFound = &DomainError{Code: "CATEGORY_NOT_FOUND", Message: "category not found"}
	// ErrOfferNotFound 报价不存在
	ErrOfferNotFound = &DomainError{Code: "OFFER_NOT_FOUND", Message: "offer not found"}
)
