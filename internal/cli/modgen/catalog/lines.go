package catalog

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pixie-sh/modgen-cli/internal/cli/modgen/fieldspec"
	"github.com/pixie-sh/modgen-cli/internal/cli/modgen/shared"
)

const indent = "    "

// Model field parameters, in the order they are rendered.
var modelParamOrder = []string{"max_length", "max_digits", "decimal_places", "default", "null"}

var modelParams = map[string]bool{
	"max_length":     true,
	"max_digits":     true,
	"decimal_places": true,
	"default":        true,
	"null":           true,
}

// FieldKind groups model field types by the serializer field they map to.
type FieldKind int

const (
	KindUnknown FieldKind = iota
	KindText
	KindBoolean
	KindInteger
	KindDecimal
)

var fieldKinds = map[string]FieldKind{
	"CharField":            KindText,
	"TextField":            KindText,
	"EmailField":           KindText,
	"SlugField":            KindText,
	"URLField":             KindText,
	"BooleanField":         KindBoolean,
	"IntegerField":         KindInteger,
	"BigIntegerField":      KindInteger,
	"SmallIntegerField":    KindInteger,
	"PositiveIntegerField": KindInteger,
	"DecimalField":         KindDecimal,
}

// KindOf classifies a model field type.
func KindOf(fieldType string) FieldKind {
	return fieldKinds[fieldType]
}

// DefaultMaxLength is used for text serializer fields without max_length.
const DefaultMaxLength = 255

// ModelFieldLine renders `name = models.Type(params)`. Only max_length,
// max_digits, decimal_places, default and null=True are carried over; every
// other key is dropped and reported.
func ModelFieldLine(f fieldspec.FieldSpec) (string, []shared.Diagnostic) {
	var (
		args  []string
		diags []shared.Diagnostic
	)

	for _, key := range modelParamOrder {
		v, ok := f.Param(key)
		if !ok {
			continue
		}
		switch key {
		case "default":
			args = append(args, "default="+v.PyLiteral())
		case "null":
			if v.Kind == fieldspec.KindBool && v.Bool {
				args = append(args, "null=True")
			}
		default:
			args = append(args, key+"="+v.String())
		}
	}

	var dropped []string
	for key := range f.Params {
		if !modelParams[key] {
			dropped = append(dropped, key)
		}
	}
	sort.Strings(dropped)
	for _, key := range dropped {
		diags = append(diags, shared.Diagnostic{
			Kind:   shared.DiagUnrecognizedParam,
			Field:  f.Name,
			Detail: fmt.Sprintf("parameter %q is not rendered on the model field", key),
		})
	}

	return fmt.Sprintf("%s%s = models.%s(%s)", indent, f.Name, f.Type, strings.Join(args, ", ")), diags
}

// SerializerFieldLine renders the input serializer field for f.
func SerializerFieldLine(f fieldspec.FieldSpec) (string, []shared.Diagnostic) {
	prefix := fmt.Sprintf("%s%s = serializers.", indent, f.Name)

	switch KindOf(f.Type) {
	case KindText:
		maxLength := fmt.Sprint(DefaultMaxLength)
		if v, ok := f.Param("max_length"); ok {
			maxLength = v.String()
		}
		return prefix + "CharField(max_length=" + maxLength + ")", nil
	case KindBoolean:
		return prefix + "BooleanField()", nil
	case KindInteger:
		return prefix + "IntegerField()", nil
	case KindDecimal:
		var diags []shared.Diagnostic
		required := func(key string) string {
			if v, ok := f.Param(key); ok {
				return v.String()
			}
			diags = append(diags, shared.Diagnostic{
				Kind:   shared.DiagMissingParam,
				Field:  f.Name,
				Detail: fmt.Sprintf("%s requires %s", f.Type, key),
			})
			return "None"
		}
		maxDigits := required("max_digits")
		decimalPlaces := required("decimal_places")
		return fmt.Sprintf("%sDecimalField(max_digits=%s, decimal_places=%s)", prefix, maxDigits, decimalPlaces), diags
	default:
		return fmt.Sprintf("%sCharField()  # type %s not recognized", prefix, f.Type), []shared.Diagnostic{{
			Kind:   shared.DiagUnrecognizedFieldKind,
			Field:  f.Name,
			Detail: fmt.Sprintf("type %s not recognized, rendered as CharField", f.Type),
		}}
	}
}

// ModelFieldsBlock renders one model line per field, newline-joined.
func ModelFieldsBlock(fields []fieldspec.FieldSpec) (string, []shared.Diagnostic) {
	var (
		lines []string
		diags []shared.Diagnostic
	)
	for _, f := range fields {
		line, d := ModelFieldLine(f)
		lines = append(lines, line)
		diags = append(diags, d...)
	}
	return strings.Join(lines, "\n"), diags
}

// SerializerFieldsBlock renders one serializer line per field. An empty field
// list renders `pass` so the class body stays valid.
func SerializerFieldsBlock(fields []fieldspec.FieldSpec) (string, []shared.Diagnostic) {
	if len(fields) == 0 {
		return indent + "pass", nil
	}

	var (
		lines []string
		diags []shared.Diagnostic
	)
	for _, f := range fields {
		line, d := SerializerFieldLine(f)
		lines = append(lines, line)
		diags = append(diags, d...)
	}
	return strings.Join(lines, "\n"), diags
}

func quoteNames(names []string) string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = "'" + n + "'"
	}
	return strings.Join(quoted, ", ")
}

// AdminListDisplay is the admin list_display tuple body: the built-in
// columns around every declared field.
func AdminListDisplay(fields []fieldspec.FieldSpec) string {
	names := []string{"id", "uuid"}
	for _, f := range fields {
		names = append(names, f.Name)
	}
	return quoteNames(append(names, "created_at", "updated_at"))
}

// AdminSearchFields is the admin search_fields tuple body. Only text fields
// are searchable.
func AdminSearchFields(fields []fieldspec.FieldSpec) string {
	names := []string{"id", "uuid"}
	for _, f := range fields {
		if KindOf(f.Type) == KindText {
			names = append(names, f.Name)
		}
	}
	return quoteNames(names)
}

// SeedArguments renders the keyword arguments the seed command passes to
// objects.create, one Faker call per field. Fields with a default and fields
// whose kind has no generator are left to the model.
func SeedArguments(fields []fieldspec.FieldSpec) string {
	var args []string
	for _, f := range fields {
		if _, ok := f.Param("default"); ok {
			continue
		}
		if expr := seedValue(f); expr != "" {
			args = append(args, fmt.Sprintf("%s%s=%s,", strings.Repeat(indent, 4), f.Name, expr))
		}
	}
	if len(args) == 0 {
		return ""
	}
	return "\n" + strings.Join(args, "\n") + "\n" + strings.Repeat(indent, 3)
}

func seedValue(f fieldspec.FieldSpec) string {
	switch KindOf(f.Type) {
	case KindText:
		maxLength := int64(DefaultMaxLength)
		if v, ok := f.Param("max_length"); ok && v.Kind == fieldspec.KindInt {
			maxLength = v.Int
		}
		return fmt.Sprintf("fake.pystr(max_chars=%d)", maxLength)
	case KindBoolean:
		return "fake.pybool()"
	case KindInteger:
		return "fake.pyint()"
	case KindDecimal:
		digits, okDigits := f.Param("max_digits")
		places, okPlaces := f.Param("decimal_places")
		if !okDigits || !okPlaces || digits.Kind != fieldspec.KindInt || places.Kind != fieldspec.KindInt || digits.Int < places.Int {
			return ""
		}
		return fmt.Sprintf("fake.pydecimal(left_digits=%d, right_digits=%d, positive=True)", digits.Int-places.Int, places.Int)
	default:
		return ""
	}
}
