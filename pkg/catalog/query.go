package catalog

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrInvalidDescriptor is returned when a QueryDescriptor fails validation.
var ErrInvalidDescriptor = errors.New("invalid query descriptor")

// SortKey selects the ordering of a result page.
type SortKey string

const (
	// SortByID keeps upstream order.
	SortByID SortKey = "id"

	// SortByNameKey orders by case-insensitive name.
	SortByNameKey SortKey = "name"
)

// TypeAll is the type filter value that means "no type filter".
const TypeAll = "all"

var validate = validator.New()

// QueryDescriptor describes one view of the catalog.
// It is a value: a new descriptor supersedes the previous one.
type QueryDescriptor struct {
	Text string  `json:"q,omitempty" yaml:"q,omitempty"`
	Type string  `json:"type,omitempty" yaml:"type,omitempty"`
	Sort SortKey `json:"sort" yaml:"sort" validate:"oneof=id name"`
	Page int     `json:"page" yaml:"page" validate:"min=1"`
}

// Normalize returns a copy with defaults applied: trimmed text, lower-cased
// type with "all" mapped to empty, sort defaulting to id and page to 1.
func (q QueryDescriptor) Normalize() QueryDescriptor {
	q.Text = strings.TrimSpace(q.Text)
	q.Type = strings.ToLower(strings.TrimSpace(q.Type))
	if q.Type == TypeAll {
		q.Type = ""
	}
	if q.Sort == "" {
		q.Sort = SortByID
	}
	if q.Page == 0 {
		q.Page = 1
	}
	return q
}

// Validate checks the sort key and page number.
func (q QueryDescriptor) Validate() error {
	if err := validate.Struct(q); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("%w: %s=%v fails %q", ErrInvalidDescriptor, strings.ToLower(fe.Field()), fe.Value(), fe.Tag())
		}
		return fmt.Errorf("%w: %v", ErrInvalidDescriptor, err)
	}
	return nil
}

// Filtered reports whether a text or type filter is active.
func (q QueryDescriptor) Filtered() bool {
	return q.Text != "" || (q.Type != "" && q.Type != TypeAll)
}

// String renders the descriptor for logs.
func (q QueryDescriptor) String() string {
	return fmt.Sprintf("q=%q type=%q sort=%s page=%d", q.Text, q.Type, q.Sort, q.Page)
}
