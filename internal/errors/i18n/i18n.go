// Package i18n provides localized user-facing messages for error codes.
package i18n

import (
	"strings"
	"text/template"
)

// Code mirrors the error code string from internal/errors.
// It is duplicated as a string type to avoid an import cycle.
type Code = string

// Catalog maps error codes to localized message templates.
type Catalog struct {
	locale   string
	messages map[Code]string
}

// Locale returns the catalog's locale tag.
func (c *Catalog) Locale() string {
	return c.locale
}

// Format renders the message for a code, interpolating metadata values.
// Unknown codes fall back to the raw code string so callers always get
// something presentable.
func (c *Catalog) Format(code Code, metadata map[string]string) string {
	msg, ok := c.messages[code]
	if !ok {
		return code
	}
	if !strings.Contains(msg, "{{") {
		return msg
	}

	tmpl, err := template.New(code).Parse(msg)
	if err != nil {
		return msg
	}
	var sb strings.Builder
	if err := tmpl.Execute(&sb, metadata); err != nil {
		return msg
	}
	return sb.String()
}

// GetCatalog returns the catalog for a locale, falling back to en-US.
func GetCatalog(locale string) *Catalog {
	switch strings.ToLower(locale) {
	case "en-us", "en":
		return enUSCatalog
	default:
		return enUSCatalog
	}
}
