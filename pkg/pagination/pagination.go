package pagination

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

const (
	DefaultSize = 10
	MaxSize     = 100
)

// Params holds pagination parameters extracted from a request. Pages are
// 1-based; Size is clamped to [1, MaxSize].
type Params struct {
	Page int
	Size int
}

// FromContext extracts page/size parameters from the echo context, applying
// defaults for absent values. It returns an error for values that are present
// but not parseable or out of range, so handlers can reject bad input before
// touching the store.
func FromContext(c echo.Context) (Params, error) {
	p := Params{Page: 1, Size: DefaultSize}

	if raw := c.QueryParam("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 1 {
			return Params{}, echo.NewHTTPError(400, "page must be a positive integer")
		}
		p.Page = page
	}

	if raw := c.QueryParam("size"); raw != "" {
		size, err := strconv.Atoi(raw)
		if err != nil || size < 1 || size > MaxSize {
			return Params{}, echo.NewHTTPError(400, "size must be between 1 and 100")
		}
		p.Size = size
	}

	return p, nil
}

// Offset returns the store offset for the current page.
func (p Params) Offset() int {
	return (p.Page - 1) * p.Size
}

// Pages returns the number of pages needed for total records.
func (p Params) Pages(total int) int {
	return (total + p.Size - 1) / p.Size
}

// Response wraps a paginated API response.
type Response struct {
	Items interface{} `json:"items"`
	Total int         `json:"total"`
	Page  int         `json:"page"`
	Size  int         `json:"size"`
	Pages int         `json:"pages"`
}

func NewResponse(items interface{}, total int, p Params) *Response {
	return &Response{
		Items: items,
		Total: total,
		Page:  p.Page,
		Size:  p.Size,
		Pages: p.Pages(total),
	}
}
