// Package pagination models page requests and results for collection
// endpoints, and renders the X-Total-Count / Link response headers.
//
// Requests use zero-based pages: ?page=0&size=20&sort=title,desc&sort=id
package pagination

import (
	"errors"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
)

type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// ErrInvalidSort is returned when a sort parameter names a property that
// cannot be sorted on.
var ErrInvalidSort = errors.New("invalid sort property")

// Order is one sort key. Property is the public name, Column the store column.
type Order struct {
	Property  string
	Column    string
	Direction Direction
}

// Pageable is a validated page request.
type Pageable struct {
	Page int
	Size int
	Sort []Order
}

// Offset is the number of rows skipped before this page.
func (p Pageable) Offset() int {
	return p.Page * p.Size
}

// Page is one slice of an ordered result set.
type Page[T any] struct {
	Content       []T
	Number        int
	Size          int
	TotalElements int64
}

// TotalPages is zero for an empty result set.
func (p Page[T]) TotalPages() int {
	if p.Size <= 0 {
		return 0
	}
	return int((p.TotalElements + int64(p.Size) - 1) / int64(p.Size))
}

func (p Page[T]) HasNext() bool {
	return p.Number < p.TotalPages()-1
}

func (p Page[T]) HasPrevious() bool {
	return p.Number > 0
}

// Parser turns query parameters into a Pageable.
type Parser struct {
	DefaultSize int
	MaxSize     int
	// Sortable maps public property names to store columns.
	Sortable map[string]string
	// DefaultSort is applied when the request carries no sort parameter.
	DefaultSort []Order
}

// Parse reads page, size and sort from values.
//
// Unparseable or negative page numbers select the first page; missing or
// non-positive sizes select DefaultSize and sizes above MaxSize are capped.
// Pages whose offset would overflow an int are clamped to the largest safe page.
// Each sort value is "property[,property...][,asc|desc]". Unknown properties
// yield ErrInvalidSort.
func (p Parser) Parse(values url.Values) (Pageable, error) {
	pageable := Pageable{Size: p.DefaultSize}

	if page, err := strconv.Atoi(values.Get("page")); err == nil && page > 0 {
		pageable.Page = page
	}
	if size, err := strconv.Atoi(values.Get("size")); err == nil && size > 0 {
		pageable.Size = size
	}
	if p.MaxSize > 0 && pageable.Size > p.MaxSize {
		pageable.Size = p.MaxSize
	}
	if pageable.Size > 0 && pageable.Page > math.MaxInt/pageable.Size {
		pageable.Page = math.MaxInt / pageable.Size
	}

	for _, raw := range values["sort"] {
		orders, err := p.parseSort(raw)
		if err != nil {
			return Pageable{}, err
		}
		pageable.Sort = append(pageable.Sort, orders...)
	}
	if len(pageable.Sort) == 0 {
		pageable.Sort = append(pageable.Sort, p.DefaultSort...)
	}
	return pageable, nil
}

func (p Parser) parseSort(raw string) ([]Order, error) {
	var parts []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			parts = append(parts, part)
		}
	}
	if len(parts) == 0 {
		return nil, nil
	}

	direction := Asc
	switch strings.ToLower(parts[len(parts)-1]) {
	case string(Asc):
		parts = parts[:len(parts)-1]
	case string(Desc):
		direction = Desc
		parts = parts[:len(parts)-1]
	}

	orders := make([]Order, 0, len(parts))
	for _, property := range parts {
		column, ok := p.Sortable[property]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrInvalidSort, property)
		}
		orders = append(orders, Order{Property: property, Column: column, Direction: direction})
	}
	return orders, nil
}

// LinkHeader renders the RFC 5988 Link header for page, relative to base.
// Other query parameters of base are preserved; page and size are replaced.
// Relations are emitted in the order next, prev, last, first.
func LinkHeader[T any](base *url.URL, page Page[T]) string {
	lastPage := page.TotalPages() - 1
	if lastPage < 0 {
		lastPage = 0
	}

	var links []string
	if page.HasNext() {
		links = append(links, prepareLink(base, page.Number+1, page.Size, "next"))
	}
	if page.HasPrevious() {
		links = append(links, prepareLink(base, page.Number-1, page.Size, "prev"))
	}
	links = append(links,
		prepareLink(base, lastPage, page.Size, "last"),
		prepareLink(base, 0, page.Size, "first"),
	)
	return strings.Join(links, ",")
}

func prepareLink(base *url.URL, number, size int, rel string) string {
	u := *base
	q := u.Query()
	q.Set("page", strconv.Itoa(number))
	q.Set("size", strconv.Itoa(size))
	u.RawQuery = q.Encode()
	return fmt.Sprintf("<%s>; rel=\"%s\"", u.String(), rel)
}
