// Package query translates HTTP query parameters into a parametrized
// GORM find request: filtering, sorting, field projection and
// pagination. Parse only builds an Options value; no database work
// happens until the caller applies it and executes the query.
package query

import (
	"fmt"
	"strconv"
	"strings"

	"gorm.io/gorm"
)

const (
	DefaultPage  = 1
	DefaultLimit = 100
)

// Reserved parameter names that never become filters.
var reserved = map[string]bool{
	"page":   true,
	"sort":   true,
	"limit":  true,
	"fields": true,
}

// Op is a comparison operator in a filter clause.
type Op string

const (
	OpEq  Op = "eq"
	OpGt  Op = "gt"
	OpGte Op = "gte"
	OpLt  Op = "lt"
	OpLte Op = "lte"
)

var sqlOps = map[Op]string{
	OpEq:  "=",
	OpGt:  ">",
	OpGte: ">=",
	OpLt:  "<",
	OpLte: "<=",
}

// Filter is one parsed constraint: field, operator and raw value.
type Filter struct {
	Field string
	Op    Op
	Value string
}

// SortKey is one parsed sort criterion.
type SortKey struct {
	Field string
	Desc  bool
}

// Options is a fully parsed query, ready to be applied to a *gorm.DB.
type Options struct {
	Filters []Filter
	Sort    []SortKey
	Fields  []string
	Page    int
	Limit   int
}

// Parse converts raw query parameters into Options. Unknown operators
// inside brackets are ignored rather than failing the request, and
// non-numeric or non-positive page/limit values fall back to the
// defaults.
func Parse(params map[string]string) Options {
	opts := Options{Page: DefaultPage, Limit: DefaultLimit}

	for key, value := range params {
		field, op := parseKey(key)
		if reserved[field] || !isIdent(field) {
			continue
		}
		if _, ok := sqlOps[op]; !ok {
			continue
		}
		opts.Filters = append(opts.Filters, Filter{Field: field, Op: op, Value: value})
	}

	if sort, ok := params["sort"]; ok && sort != "" {
		for _, key := range strings.Split(sort, ",") {
			key = strings.TrimSpace(key)
			if key == "" {
				continue
			}
			desc := strings.HasPrefix(key, "-")
			field := strings.TrimPrefix(key, "-")
			if !isIdent(field) {
				continue
			}
			opts.Sort = append(opts.Sort, SortKey{Field: field, Desc: desc})
		}
	}

	if fields, ok := params["fields"]; ok && fields != "" {
		for _, f := range strings.Split(fields, ",") {
			if f = strings.TrimSpace(f); isIdent(f) {
				opts.Fields = append(opts.Fields, f)
			}
		}
	}

	if page, err := strconv.Atoi(params["page"]); err == nil && page > 0 {
		opts.Page = page
	}
	if limit, err := strconv.Atoi(params["limit"]); err == nil && limit > 0 {
		opts.Limit = limit
	}

	return opts
}

// isIdent reports whether s is a plain column identifier. Anything else
// is dropped instead of being interpolated into a SQL clause.
func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
		default:
			return false
		}
	}
	return true
}

// parseKey splits "price[gte]" into ("price", OpGte). A bare key is an
// equality constraint.
func parseKey(key string) (string, Op) {
	open := strings.IndexByte(key, '[')
	if open < 0 || !strings.HasSuffix(key, "]") {
		return key, OpEq
	}
	return key[:open], Op(key[open+1 : len(key)-1])
}

// Offset returns the number of records to skip for the requested page.
func (o Options) Offset() int {
	return (o.Page - 1) * o.Limit
}

// Apply composes the parsed options onto a GORM statement. Execution
// stays with the caller.
func (o Options) Apply(tx *gorm.DB) *gorm.DB {
	for _, f := range o.Filters {
		tx = tx.Where(fmt.Sprintf("%s %s ?", f.Field, sqlOps[f.Op]), f.Value)
	}

	if len(o.Sort) == 0 {
		tx = tx.Order("created_at ASC")
	}
	for _, s := range o.Sort {
		dir := "ASC"
		if s.Desc {
			dir = "DESC"
		}
		tx = tx.Order(fmt.Sprintf("%s %s", s.Field, dir))
	}

	if len(o.Fields) > 0 {
		tx = tx.Select(o.Fields)
	}

	return tx.Offset(o.Offset()).Limit(o.Limit)
}
