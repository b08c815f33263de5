package invoice

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/niiboye001/genesis-invoice/internal/domain/entity"
)

// SortField selects the key invoices are ordered by.
type SortField string

const (
	SortByDate   SortField = "date"
	SortByAmount SortField = "amount"
)

// SortOrder is ascending or descending.
type SortOrder string

const (
	OrderAsc  SortOrder = "asc"
	OrderDesc SortOrder = "desc"
)

// ListQuery filters, searches and sorts invoice views.
// An empty Status matches every derived status.
type ListQuery struct {
	Status entity.Status
	Search string
	SortBy SortField
	Order  SortOrder
}

// DefaultListQuery lists everything, newest due date first.
func DefaultListQuery() ListQuery {
	return ListQuery{SortBy: SortByDate, Order: OrderDesc}
}

// ParseListQuery builds a query from raw request values. "all" and "" disable the
// status filter; empty sort and order fall back to the defaults.
func ParseListQuery(status, search, sortBy, order string) (ListQuery, error) {
	q := DefaultListQuery()
	q.Search = strings.TrimSpace(search)

	if status != "" && !strings.EqualFold(status, "all") {
		st, ok := entity.ParseStatus(status)
		if !ok {
			return q, fmt.Errorf("%w: unknown status %q", ErrInvalidQuery, status)
		}
		q.Status = st
	}

	switch SortField(strings.ToLower(sortBy)) {
	case "":
	case SortByDate:
		q.SortBy = SortByDate
	case SortByAmount:
		q.SortBy = SortByAmount
	default:
		return q, fmt.Errorf("%w: unknown sort field %q", ErrInvalidQuery, sortBy)
	}

	switch SortOrder(strings.ToLower(order)) {
	case "":
	case OrderAsc:
		q.Order = OrderAsc
	case OrderDesc:
		q.Order = OrderDesc
	default:
		return q, fmt.Errorf("%w: unknown sort order %q", ErrInvalidQuery, order)
	}

	return q, nil
}

// BuildViews derives status and totals for every invoice.
func BuildViews(invoices []*entity.Invoice, today time.Time) []entity.InvoiceView {
	views := make([]entity.InvoiceView, 0, len(invoices))
	for _, inv := range invoices {
		views = append(views, BuildView(inv, today))
	}
	return views
}

// Apply returns the views matching q in q's order. The input slice is not modified.
func (q ListQuery) Apply(views []entity.InvoiceView) []entity.InvoiceView {
	term := strings.ToLower(q.Search)

	out := make([]entity.InvoiceView, 0, len(views))
	for _, v := range views {
		if q.Status != "" && v.DerivedStatus != q.Status {
			continue
		}
		if term != "" && !matchesSearch(v.Invoice, term) {
			continue
		}
		out = append(out, v)
	}

	switch q.SortBy {
	case SortByAmount:
		sort.SliceStable(out, func(i, j int) bool {
			a, b := ParseNumber(out[i].Totals.Total), ParseNumber(out[j].Totals.Total)
			if q.Order == OrderAsc {
				return a < b
			}
			return a > b
		})
	default:
		sort.SliceStable(out, func(i, j int) bool {
			return dueLess(out[i].Invoice, out[j].Invoice, q.Order == OrderAsc)
		})
	}
	return out
}

func matchesSearch(inv *entity.Invoice, term string) bool {
	return strings.Contains(strings.ToLower(inv.InvoiceNumber), term) ||
		strings.Contains(strings.ToLower(inv.ClientName), term) ||
		strings.Contains(strings.ToLower(inv.ClientEmail), term)
}

// dueLess orders by due date; invoices without a parseable due date sort last in
// either direction.
func dueLess(a, b *entity.Invoice, asc bool) bool {
	da, okA := ParseDate(a.DueDate)
	db, okB := ParseDate(b.DueDate)
	switch {
	case !okA && !okB:
		return false
	case !okA:
		return false
	case !okB:
		return true
	}
	if asc {
		return da.Before(db)
	}
	return db.Before(da)
}
