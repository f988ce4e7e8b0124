// Package fieldspec parses the compact field mini-language accepted by
// `modgen create --fields`:
//
//	name=CharField:max_length=120,null=true;active=BooleanField
//
// Fields are separated by ';'. A field is name=Type with an optional
// ':'-separated block of comma-separated key=value parameters.
package fieldspec

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/pixie-sh/modgen-cli/internal/cli/modgen/shared"
)

var (
	namePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
	typePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_.]*$`)
)

// ValueKind is the coerced type of a parameter value.
type ValueKind int

const (
	KindString ValueKind = iota
	KindInt
	KindBool
)

// Value is a typed parameter value.
type Value struct {
	Kind ValueKind
	Str  string
	Int  int64
	Bool bool
}

// String returns the value the way it was understood, without quoting.
func (v Value) String() string {
	switch v.Kind {
	case KindInt:
		return strconv.FormatInt(v.Int, 10)
	case KindBool:
		return strconv.FormatBool(v.Bool)
	default:
		return v.Str
	}
}

// PyLiteral renders the value as a Python literal: True/False, an integer or
// a quoted string following repr() quoting rules.
func (v Value) PyLiteral() string {
	switch v.Kind {
	case KindInt:
		return strconv.FormatInt(v.Int, 10)
	case KindBool:
		if v.Bool {
			return "True"
		}
		return "False"
	default:
		return pyQuote(v.Str)
	}
}

// FieldSpec is one declared entity attribute.
type FieldSpec struct {
	Name   string
	Type   string
	Params map[string]Value
}

// Param returns the value for key and whether it was declared.
func (f FieldSpec) Param(key string) (Value, bool) {
	v, ok := f.Params[key]
	return v, ok
}

// Parse splits input into field specs. It never fails: empty input yields no
// fields, and tokens that do not match the grammar are skipped and reported
// as diagnostics.
func Parse(input string) ([]FieldSpec, []shared.Diagnostic) {
	var (
		fields []FieldSpec
		diags  []shared.Diagnostic
	)

	for _, token := range strings.Split(input, ";") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}

		field, fieldDiags, ok := parseField(token)
		diags = append(diags, fieldDiags...)
		if ok {
			fields = append(fields, field)
		}
	}

	return fields, diags
}

func parseField(token string) (FieldSpec, []shared.Diagnostic, bool) {
	name, rest, ok := strings.Cut(token, "=")
	if !ok {
		return FieldSpec{}, []shared.Diagnostic{malformed(token, "expected name=Type")}, false
	}

	typ, paramBlock, hasParams := strings.Cut(rest, ":")
	name = strings.TrimSpace(name)
	typ = strings.TrimSpace(typ)

	if !namePattern.MatchString(name) {
		return FieldSpec{}, []shared.Diagnostic{malformed(token, fmt.Sprintf("invalid field name %q", name))}, false
	}
	if !typePattern.MatchString(typ) {
		return FieldSpec{}, []shared.Diagnostic{malformed(token, fmt.Sprintf("invalid field type %q", typ))}, false
	}

	field := FieldSpec{Name: name, Type: typ, Params: map[string]Value{}}
	if !hasParams {
		return field, nil, true
	}

	var diags []shared.Diagnostic
	for _, pair := range strings.Split(paramBlock, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		key, raw, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			diags = append(diags, shared.Diagnostic{
				Kind:   shared.DiagMalformedParam,
				Field:  name,
				Detail: fmt.Sprintf("expected key=value, got %q", pair),
			})
			continue
		}
		field.Params[key] = Coerce(key, strings.TrimSpace(raw))
	}

	return field, diags, true
}

// Coerce applies the parameter coercion rules in priority order: a null key
// is always boolean, literal true/false become booleans, all-digit values
// become integers, anything else stays a string.
func Coerce(key, raw string) Value {
	if strings.EqualFold(key, "null") {
		return Value{Kind: KindBool, Bool: strings.EqualFold(raw, "true")}
	}
	if strings.EqualFold(raw, "true") {
		return Value{Kind: KindBool, Bool: true}
	}
	if strings.EqualFold(raw, "false") {
		return Value{Kind: KindBool, Bool: false}
	}
	if isDigits(raw) {
		// Values past int64 stay strings.
		if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
			return Value{Kind: KindInt, Int: n}
		}
	}
	return Value{Kind: KindString, Str: raw}
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func malformed(token, detail string) shared.Diagnostic {
	return shared.Diagnostic{Kind: shared.DiagMalformedField, Field: token, Detail: detail}
}

func pyQuote(s string) string {
	quote := byte('\'')
	if strings.ContainsRune(s, '\'') && !strings.ContainsRune(s, '"') {
		quote = '"'
	}

	var b strings.Builder
	b.WriteByte(quote)
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '\\':
			b.WriteString(`\\`)
		case c == quote:
			b.WriteByte('\\')
			b.WriteByte(c)
		case c == '\n':
			b.WriteString(`\n`)
		case c == '\t':
			b.WriteString(`\t`)
		default:
			b.WriteByte(c)
		}
	}
	b.WriteByte(quote)
	return b.String()
}

// DefaultFields is used when a module is created without any field: a single
// name = CharField(max_length=255).
func DefaultFields() []FieldSpec {
	return []FieldSpec{{
		Name:   "name",
		Type:   "CharField",
		Params: map[string]Value{"max_length": {Kind: KindInt, Int: 255}},
	}}
}
