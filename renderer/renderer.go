// Package renderer renders savings reports as markdown.
//
// Each report is a view struct built from the analytics results (NewSummary,
// NewAnnual, NewNetWorth) and a set of embedded text/template files.
package renderer

import (
	"embed"
	"fmt"
	"io/fs"
	"strings"
	"text/template"
)

//go:embed *.md
var templates embed.FS

// RenderSummary renders an account summary with its positions.
func RenderSummary(s *Summary) string {
	partials := map[string]string{
		"summary_title":     "summary_title.md",
		"summary_positions": "summary_positions.md",
	}
	if len(s.Positions) == 0 {
		partials["summary_positions"] = ""
	}
	return renderTemplate("summary", "summary.md", partials, s)
}

// RenderAnnual renders the yearly returns of an account.
func RenderAnnual(a *Annual) string {
	return renderTemplate("annual", "annual.md", nil, a)
}

// RenderNetWorth renders the net worth with its data quality warnings.
func RenderNetWorth(n *NetWorth) string {
	partials := map[string]string{
		"net_worth_warnings": "net_worth_warnings.md",
	}
	if len(n.Warnings) == 0 {
		partials["net_worth_warnings"] = ""
	}
	return renderTemplate("netWorth", "net_worth.md", partials, n)
}

// renderTemplate is a generic utility to render a main template that depends on several partials.
func renderTemplate(templateName, mainFile string, partials map[string]string, data any) string {
	mainContent, err := fs.ReadFile(templates, mainFile)
	if err != nil {
		return fmt.Sprintf("error reading main template %q: %v", mainFile, err)
	}

	tmpl, err := template.New(templateName).Funcs(funcs).Parse(string(mainContent))
	if err != nil {
		return fmt.Sprintf("error parsing main template %q: %v", mainFile, err)
	}

	for name, file := range partials {
		var content []byte
		// An empty file name is a valid case, resulting in an empty template.
		if file != "" {
			content, err = fs.ReadFile(templates, file)
			if err != nil {
				return fmt.Sprintf("error reading partial template %q: %v", file, err)
			}
		}
		if _, err := tmpl.New(name).Parse(string(content)); err != nil {
			return fmt.Sprintf("error parsing partial template %q for %q: %v", file, name, err)
		}
	}

	var b strings.Builder
	if err := tmpl.ExecuteTemplate(&b, templateName, data); err != nil {
		return fmt.Sprintf("error executing template %q: %v", templateName, err)
	}
	return b.String()
}

var funcs = template.FuncMap{
	// check renders a boolean as a table mark.
	"check": func(b bool) string {
		if b {
			return "✓"
		}
		return ""
	},
	"join": strings.Join,
}
