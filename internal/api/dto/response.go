package dto

// Response 统一响应体
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

// PageResult 页码分页结果
type PageResult[T any] struct {
	List        []T   `json:"list"`
	Total       int64 `json:"total"`
	TotalPages  int   `json:"totalPages"`
	CurrentPage int   `json:"currentPage"`
	Limit       int   `json:"limit"`
}

// NewPageResult 计算总页数
func NewPageResult[T any](list []T, total int64, page, limit int) *PageResult[T] {
	if list == nil {
		list = []T{}
	}
	totalPages := 0
	if limit > 0 {
		totalPages = int((total + int64(limit) - 1) / int64(limit))
	}
	return &PageResult[T]{List: list, Total: total, TotalPages: totalPages, CurrentPage: page, Limit: limit}
}
