package response

type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalPages int64 `json:"total_pages"`
	TotalItems int64 `json:"total_items"`
	HasMore    bool  `json:"has_more"`
	From       int   `json:"from"`
	To         int   `json:"to"`
}

// NewPagination describes the 1-based page of pageSize items out of total.
// From and To are 1-based inclusive positions, both 0 for an empty page.
func NewPagination(page, pageSize, total int) *Pagination {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize
	if offset > total {
		offset = total
	}
	end := offset + pageSize
	if end > total {
		end = total
	}
	p := &Pagination{
		Page:       page,
		PageSize:   pageSize,
		TotalItems: int64(total),
		TotalPages: int64((total + pageSize - 1) / pageSize),
		HasMore:    end < total,
	}
	if end > offset {
		p.From = offset + 1
		p.To = end
	}
	return p
}

// Bounds returns the slice bounds of the page.
func (p *Pagination) Bounds() (int, int) {
	if p.To == 0 {
		return 0, 0
	}
	return p.From - 1, p.To
}
