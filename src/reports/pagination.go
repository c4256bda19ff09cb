package reports

import "github.com/LinhLe223/GMV-MAX/src/utils"

const DefaultPerPage = 20

// Page describes one window of a paginated list. StartItem and EndItem are 1-based and inclusive.
type Page struct {
	Page       int `json:"page"`
	PerPage    int `json:"perPage"`
	TotalPages int `json:"totalPages"`
	StartItem  int `json:"startItem"`
	EndItem    int `json:"endItem"`
	Total      int `json:"total"`
}

// Paginate clamps page into range. perPage <= 0 uses the default, and perPage >= total yields a single page.
func Paginate(total, page, perPage int) Page {
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	if total < 0 {
		total = 0
	}
	p := Page{PerPage: perPage, Total: total, TotalPages: 1}
	if total > perPage {
		p.TotalPages = (total + perPage - 1) / perPage
	}
	p.Page = utils.MinInt(utils.MaxInt(page, 1), p.TotalPages)
	if total == 0 {
		return p
	}
	p.StartItem = (p.Page-1)*perPage + 1
	p.EndItem = utils.MinInt(p.Page*perPage, total)
	return p
}

// PageSlice returns the items of list that fall on p.
func PageSlice[T any](list []T, p Page) []T {
	if p.Total == 0 || p.StartItem == 0 || p.StartItem > len(list) {
		return []T{}
	}
	end := utils.MinInt(p.EndItem, len(list))
	return list[p.StartItem-1 : end]
}
