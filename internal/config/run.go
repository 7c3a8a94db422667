package config

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
)

// RunParams are the validated inputs of one crawl.
type RunParams struct {
	Company  string   `validate:"required"`
	Keywords []string `validate:"min=1,dive,required"`
	Pages    int      `validate:"min=1,max=10"`
}

// NewRunParams trims company and keywords, clamps pages to [MinPages,
// MaxPages] (zero means DefaultPages) and validates the result.
func NewRunParams(company string, keywords []string, pages int) (RunParams, error) {
	p := RunParams{
		Company:  strings.TrimSpace(company),
		Keywords: make([]string, 0, len(keywords)),
		Pages:    ClampPages(pages),
	}
	for _, kw := range keywords {
		p.Keywords = append(p.Keywords, strings.TrimSpace(kw))
	}

	if err := validator.New().Struct(p); err != nil {
		return RunParams{}, toConfigurationError(err)
	}
	return p, nil
}

// ClampPages bounds n to the supported page range.
func ClampPages(n int) int {
	if n == 0 {
		return DefaultPages
	}
	return max(MinPages, min(n, MaxPages))
}

func toConfigurationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return &ConfigurationError{Field: "run", Message: err.Error()}
	}

	fe := verrs[0]
	if strings.HasPrefix(fe.StructField(), "Keywords[") {
		return &ConfigurationError{Field: "keywords", Message: "must not contain blank entries"}
	}
	field := strings.ToLower(fe.StructField())
	switch fe.Tag() {
	case "required":
		return &ConfigurationError{Field: field, Message: "is required"}
	case "min":
		return &ConfigurationError{Field: field, Message: "must not be empty"}
	default:
		return &ConfigurationError{Field: field, Message: fe.Error()}
	}
}
