package pagination

// Pagination is the page/limit query contract shared by list endpoints.
type Pagination struct {
	Page  int `form:"page,default=1" validate:"gte=1"`
	Limit int `form:"limit,default=10" validate:"gte=1,lte=100"` // Min 1, Max 100
}

type PageInfo struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalCount int64 `json:"total_count"`
	HasMore    bool  `json:"has_more"`
}

func (p Pagination) Normalize() Pagination {
	out := p
	if out.Page < 1 {
		out.Page = 1
	}
	if out.Limit < 1 {
		out.Limit = 10
	}
	if out.Limit > 100 {
		out.Limit = 100
	}
	return out
}

func (p Pagination) Offset() int {
	n := p.Normalize()
	return (n.Page - 1) * n.Limit
}

func BuildPageInfo(p Pagination, totalCount int64) *PageInfo {
	n := p.Normalize()
	return &PageInfo{
		Page:       n.Page,
		Limit:      n.Limit,
		TotalCount: totalCount,
		HasMore:    int64(n.Page*n.Limit) < totalCount,
	}
}
