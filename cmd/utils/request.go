package utils

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Decode reads a JSON body into v and runs its `validate` tags.
// Both failures are reported as ErrValidation.
func Decode(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: invalid JSON body", ErrValidation)
	}
	return Validate(v)
}

func Validate(v interface{}) error {
	if err := validate.Struct(v); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
			return fmt.Errorf("%w: %s", ErrValidation, describe(verrs[0]))
		}
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return nil
}

func describe(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

// Page holds parsed pagination query parameters.
type Page struct {
	Number int
	Size   int
}

func (p Page) Offset() int {
	return (p.Number - 1) * p.Size
}

// Meta builds the pagination block returned next to list results.
func (p Page) Meta(total int64) map[string]interface{} {
	return map[string]interface{}{
		"total":     total,
		"page":      p.Number,
		"page_size": p.Size,
		"pages":     (total + int64(p.Size) - 1) / int64(p.Size),
	}
}

// ParsePage reads page and page_size, defaulting to 1 and 20 and capping the size at 100.
func ParsePage(r *http.Request) Page {
	q := r.URL.Query()
	page := Page{Number: 1, Size: 20}
	if v, err := strconv.Atoi(q.Get("page")); err == nil && v > 0 {
		page.Number = v
	}
	if v, err := strconv.Atoi(q.Get("page_size")); err == nil && v > 0 && v <= 100 {
		page.Size = v
	}
	return page
}
