// Package util holds small helpers shared across packages. It lives in
// internal to avoid committing to public API stability prematurely.
package util

import (
	"bytes"
	"strings"
	"text/template"
)

// RenderTemplate expands {{...}} markers in text against the given data
// using text/template. Text without markers is returned unchanged (fast
// path, no parse).
func RenderTemplate(text string, data any) (string, error) {
	if !strings.Contains(text, "{{") {
		return text, nil
	}

	tmpl, err := template.New("prompt").Funcs(template.FuncMap{
		"upper": strings.ToUpper,
		"lower": strings.ToLower,
		"join":  strings.Join,
	}).Parse(text)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
