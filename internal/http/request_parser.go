package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"tally/internal/core"
)

// filter parses the request filter and applies the server's configured
// default page size when the request names none.
func (s *Server) filter(r *http.Request) core.Filter {
	f := parseFilter(r)
	if f.Size == 0 {
		f.Size = s.defaultPageSize
	}
	return f
}

// parseFilter builds the one filter value shared by every handler from
// the request's query string. Unknown or malformed values are ignored;
// the zero value of each dimension means "not filtered".
func parseFilter(r *http.Request) core.Filter {
	q := r.URL.Query()
	f := core.Filter{
		FinancialYear:   strings.TrimSpace(q.Get("financial_year")),
		TransactionType: core.TransactionType(strings.TrimSpace(q.Get("transaction_type"))),
		Category:        strings.TrimSpace(q.Get("category")),
		AccountType:     core.AccountType(strings.TrimSpace(q.Get("account_type"))),
		DeductionType:   core.DeductionType(strings.TrimSpace(q.Get("deduction_type"))),
		CategoryKind:    core.CategoryType(strings.TrimSpace(q.Get("category_type"))),
		Status:          core.ProjectStatus(strings.TrimSpace(q.Get("status"))),
		ClientName:      strings.TrimSpace(q.Get("client_name")),
		Department:      strings.TrimSpace(q.Get("department")),
		Position:        strings.TrimSpace(q.Get("position")),
		Search:          strings.TrimSpace(q.Get("search")),
	}

	f.StartDate = queryDate(q, "start_date")
	f.EndDate = queryDate(q, "end_date")
	f.AccountID = queryID(q, "account_id")
	f.ProjectID = queryID(q, "project_id")
	f.EmployeeID = queryID(q, "employee_id")
	f.IsRecurring = queryBool(q, "is_recurring")
	f.IsActive = queryBool(q, "is_active")

	if v, err := strconv.Atoi(q.Get("page")); err == nil {
		f.Page = v
	}
	if v, err := strconv.Atoi(q.Get("size")); err == nil {
		f.Size = v
	}
	return f
}

func queryDate(q url.Values, name string) *core.Date {
	v := strings.TrimSpace(q.Get(name))
	if v == "" {
		return nil
	}
	d, err := core.ParseDate(v)
	if err != nil {
		return nil
	}
	return &d
}

func queryID(q url.Values, name string) *int64 {
	v := strings.TrimSpace(q.Get(name))
	if v == "" {
		return nil
	}
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil || id <= 0 {
		return nil
	}
	return &id
}

func queryBool(q url.Values, name string) *bool {
	v := strings.TrimSpace(q.Get(name))
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return nil
	}
	return &b
}

// pathID reads the {id} path segment.
func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", r.PathValue("id"))
	}
	return id, nil
}

const maxBodyBytes = 1 << 20

// decodeJSON reads a size-capped request body into dst.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("decode request body: %w", err)
	}
	return nil
}
