package render

import (
	"fmt"
	"strings"

	"github.com/ohler55/ojg"
	"github.com/ohler55/ojg/oj"

	"github.com/pixie-sh/modgen-cli/internal/cli/modgen/catalog"
	"github.com/pixie-sh/modgen-cli/internal/cli/modgen/fieldspec"
	"github.com/pixie-sh/modgen-cli/internal/cli/modgen/shared"
)

var jsonOptions = &ojg.Options{Indent: 2, Sort: true}

type request struct {
	title  string
	method string
	item   bool
	body   map[string]any
}

// APIExamples renders the .http artifact with list, create, retrieve,
// update, partial-update and delete requests for the module. p is the
// artifact path written into the header.
func APIExamples(desc shared.ModuleDescriptor, fields []fieldspec.FieldSpec, baseURL, p string) string {
	full := SampleBody(fields)
	partial := map[string]any{}
	if len(fields) > 0 {
		partial[fields[0].Name] = full[fields[0].Name]
	}

	requests := []request{
		{title: "List " + desc.ModuleName, method: "GET"},
		{title: "Create " + desc.ModuleName, method: "POST", body: full},
		{title: "Retrieve " + desc.ModuleName, method: "GET", item: true},
		{title: "Update " + desc.ModuleName, method: "PUT", item: true, body: full},
		{title: "Partially update " + desc.ModuleName, method: "PATCH", item: true, body: partial},
		{title: "Delete " + desc.ModuleName, method: "DELETE", item: true},
	}

	var b strings.Builder
	fmt.Fprintf(&b, "@baseUrl = %s\n", baseURL)

	for _, req := range requests {
		url := fmt.Sprintf("{{baseUrl}}/%s/", desc.ModuleName)
		if req.item {
			url += "1/"
		}

		fmt.Fprintf(&b, "\n### %s\n", req.title)
		fmt.Fprintf(&b, "%s %s\n", req.method, url)
		if req.body == nil {
			b.WriteString("Accept: application/json\n")
			continue
		}
		b.WriteString("Content-Type: application/json\n\n")
		b.WriteString(oj.JSON(req.body, jsonOptions))
		b.WriteString("\n")
	}

	return WithHeader(p, b.String())
}

// SampleBody builds a request payload with a placeholder value per field.
// Declared defaults win over the per-kind placeholder.
func SampleBody(fields []fieldspec.FieldSpec) map[string]any {
	body := make(map[string]any, len(fields))
	for _, f := range fields {
		body[f.Name] = sampleValue(f)
	}
	return body
}

func sampleValue(f fieldspec.FieldSpec) any {
	def, hasDefault := f.Param("default")

	switch catalog.KindOf(f.Type) {
	case catalog.KindBoolean:
		if hasDefault && def.Kind == fieldspec.KindBool {
			return def.Bool
		}
		return true
	case catalog.KindInteger:
		if hasDefault && def.Kind == fieldspec.KindInt {
			return def.Int
		}
		return int64(1)
	case catalog.KindDecimal:
		places := int64(2)
		if v, ok := f.Param("decimal_places"); ok && v.Kind == fieldspec.KindInt && v.Int >= 0 && v.Int <= 10 {
			places = v.Int
		}
		if places == 0 {
			return "10"
		}
		return "10." + strings.Repeat("0", int(places))
	default:
		if hasDefault && def.Kind == fieldspec.KindString {
			return def.Str
		}
		return "example " + f.Name
	}
}
