package config

import (
	"errors"
	"fmt"
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/alnah/go-mdconvert/internal/dateutil"
)

// Field limits.
const (
	MaxSlugWords     = 20
	MaxFamilyLength  = 100 // "Times New Roman"
	MaxPaperLength   = 20  // "letter", "a4"
	MaxClassLength   = 50  // "article", "scrartcl"
	MaxStyleLength   = 50  // chroma style name
	MaxOutputRootLen = 4096
)

var (
	fontSizePattern = regexp.MustCompile(`^\d+(\.\d+)?pt$`)
	marginPattern   = regexp.MustCompile(`^\d+(\.\d+)?(in|cm|mm|pt)$`)
	identPattern    = regexp.MustCompile(`^[A-Za-z0-9-]+$`)
)

func init() {
	// Report errors with the same keys users write in their files.
	validation.ErrorTag = "yaml"
}

// Validate checks every section. The error wraps ErrConfigInvalid.
func (c *Config) Validate() error {
	if err := c.validateSections(); err != nil {
		return fmt.Errorf("%w: %v", ErrConfigInvalid, err)
	}
	return nil
}

func (c *Config) validateSections() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Global),
		validation.Field(&c.PDF),
		validation.Field(&c.DOCX),
		validation.Field(&c.LaTeX),
		validation.Field(&c.HTML),
	)
}

// InvalidFields maps the dotted key of every leaf that fails validation
// ("pdf.font.size") to its error. The error return is reserved for
// validator failures that cannot be attributed to a key.
func (c *Config) InvalidFields() (map[string]error, error) {
	err := c.validateSections()
	if err == nil {
		return nil, nil
	}
	var errs validation.Errors
	if !errors.As(err, &errs) {
		return nil, err
	}
	out := make(map[string]error)
	flattenErrors(errs, "", out)
	return out, nil
}

func flattenErrors(errs validation.Errors, prefix string, out map[string]error) {
	for key, err := range errs {
		var nested validation.Errors
		if errors.As(err, &nested) {
			flattenErrors(nested, prefix+key+".", out)
			continue
		}
		out[prefix+key] = err
	}
}

// Validate implements validation.Validatable.
func (g GlobalConfig) Validate() error {
	return validation.ValidateStruct(&g,
		validation.Field(&g.OutputNaming, validation.Required, validation.In(NamingDate, NamingPrompt)),
		validation.Field(&g.DateFormat, validation.By(validateStampFormat)),
		validation.Field(&g.SlugWords, validation.Min(0), validation.Max(MaxSlugWords)),
		validation.Field(&g.OutputRoot, validation.Length(0, MaxOutputRootLen)),
	)
}

// Validate implements validation.Validatable.
func (f FormatConfig) Validate() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.Geometry),
		validation.Field(&f.Font),
		validation.Field(&f.DocumentClass, validation.Length(0, MaxClassLength), validation.Match(identPattern)),
	)
}

// Validate implements validation.Validatable.
func (g GeometryConfig) Validate() error {
	return validation.ValidateStruct(&g,
		validation.Field(&g.Margin, validation.Match(marginPattern)),
		validation.Field(&g.Paper, validation.Length(0, MaxPaperLength), validation.Match(identPattern)),
	)
}

// Validate implements validation.Validatable.
func (f FontConfig) Validate() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.Family, validation.Length(0, MaxFamilyLength)),
		validation.Field(&f.Size, validation.Match(fontSizePattern)),
	)
}

// Validate implements validation.Validatable.
func (h HTMLConfig) Validate() error {
	return validation.ValidateStruct(&h,
		validation.Field(&h.HighlightStyle, validation.Length(0, MaxStyleLength), validation.Match(identPattern)),
	)
}

func validateStampFormat(value any) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	return dateutil.ValidateStampFormat(s)
}
