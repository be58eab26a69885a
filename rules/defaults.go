package rules

import (
	"polyc/common"
	"polyc/ir"
)

// free and method are shorthand constructors for the default table below.
func free(callee string) Form {
	return Form{Callee: callee}
}

func method(callee string) Form {
	return Form{Callee: callee, Method: true}
}

// Defaults returns the built-in rule set.  Overlay files extend it through
// Load.
func Defaults() *Set {
	return NewSet(defaultIdioms(), defaultTypes())
}

func defaultIdioms() []*Idiom {
	// mathFns all share the shape `f(x)` in C/C++ with a `Math.f(x)`
	// counterpart in Java.
	mathFns := []struct {
		construct, c, java string
	}{
		{"math-sqrt", "sqrt", "Math.sqrt"},
		{"math-pow", "pow", "Math.pow"},
		{"math-abs", "abs", "Math.abs"},
		{"math-fabs", "fabs", "Math.abs"},
		{"math-ceil", "ceil", "Math.ceil"},
		{"math-floor", "floor", "Math.floor"},
		{"math-round", "round", "Math.round"},
		{"math-log", "log", "Math.log"},
		{"math-log10", "log10", "Math.log10"},
		{"math-exp", "exp", "Math.exp"},
		{"math-sin", "sin", "Math.sin"},
		{"math-cos", "cos", "Math.cos"},
		{"math-tan", "tan", "Math.tan"},
	}

	charFns := []struct {
		construct, c, java string
	}{
		{"char-upper", "toupper", "Character.toUpperCase"},
		{"char-lower", "tolower", "Character.toLowerCase"},
		{"char-is-alpha", "isalpha", "Character.isLetter"},
		{"char-is-digit", "isdigit", "Character.isDigit"},
		{"char-is-space", "isspace", "Character.isWhitespace"},
	}

	idioms := []*Idiom{
		// Formatted output keeps its printf spelling in all three
		// languages; the Java and C++ emitters expand it into
		// System.out.printf and stream inserts respectively.
		{
			Construct: "print-fmt",
			Forms: map[common.Lang]Form{
				common.LangC:    free("printf"),
				common.LangJava: free("System.out.printf"),
				common.LangCpp:  free("printf"),
			},
		},
		// Line printing likewise stays callee-shaped until emission; the
		// translator synthesizes a format string when lowering println
		// into printf.
		{
			Construct: "print-line",
			Forms: map[common.Lang]Form{
				common.LangC:    free("printf"),
				common.LangJava: free("System.out.println"),
				common.LangCpp:  free("printf"),
			},
		},
		// Unterminated printing; the translator synthesizes the format
		// string without the trailing newline.
		{
			Construct: "print-raw",
			Forms: map[common.Lang]Form{
				common.LangC:    free("printf"),
				common.LangJava: free("System.out.print"),
				common.LangCpp:  free("printf"),
			},
		},
		{
			Construct: "scan-fmt",
			Forms: map[common.Lang]Form{
				common.LangC:    free("scanf"),
				common.LangJava: free("scanf"),
				common.LangCpp:  free("scanf"),
			},
		},

		// String queries.
		{
			Construct: "str-len",
			Forms: map[common.Lang]Form{
				common.LangC:    free("strlen"),
				common.LangJava: method("length"),
				common.LangCpp:  method("length"),
			},
		},
		{
			Construct: "str-cmp",
			Forms: map[common.Lang]Form{
				common.LangC:    free("strcmp"),
				common.LangJava: method("compareTo"),
				common.LangCpp:  method("compare"),
			},
		},
		{
			Construct: "str-eq",
			Forms: map[common.Lang]Form{
				common.LangC:    Form{Callee: "strcmp", NeedsZero: true},
				common.LangJava: method("equals"),
				common.LangCpp:  Form{Callee: "==", Operator: true},
			},
		},
		{
			Construct: "str-append",
			Forms: map[common.Lang]Form{
				common.LangC:    free("strcat"),
				common.LangJava: method("concat"),
				common.LangCpp:  method("append"),
			},
		},
		{
			Construct: "str-find",
			Forms: map[common.Lang]Form{
				common.LangC:    free("strstr"),
				common.LangJava: method("contains"),
				common.LangCpp:  method("find"),
			},
		},
		{
			Construct: "str-char-at",
			Forms: map[common.Lang]Form{
				common.LangJava: method("charAt"),
				common.LangCpp:  method("at"),
			},
		},

		// Numeric parsing.
		{
			Construct: "parse-int",
			Forms: map[common.Lang]Form{
				common.LangC:    free("atoi"),
				common.LangJava: free("Integer.parseInt"),
				common.LangCpp:  free("stoi"),
			},
		},
		{
			Construct: "parse-long",
			Forms: map[common.Lang]Form{
				common.LangC:    free("atol"),
				common.LangJava: free("Long.parseLong"),
				common.LangCpp:  free("stol"),
			},
		},
		{
			Construct: "parse-float",
			Forms: map[common.Lang]Form{
				common.LangC:    free("atof"),
				common.LangJava: free("Double.parseDouble"),
				common.LangCpp:  free("stod"),
			},
		},
	}

	for _, f := range mathFns {
		idioms = append(idioms, &Idiom{
			Construct: f.construct,
			Forms: map[common.Lang]Form{
				common.LangC:    free(f.c),
				common.LangJava: free(f.java),
				common.LangCpp:  free(f.c),
			},
		})
	}

	for _, f := range charFns {
		idioms = append(idioms, &Idiom{
			Construct: f.construct,
			Forms: map[common.Lang]Form{
				common.LangC:    free(f.c),
				common.LangJava: free(f.java),
				common.LangCpp:  free(f.c),
			},
		})
	}

	return idioms
}

func defaultTypes() []*TypeRule {
	return []*TypeRule{
		{
			Construct: "bool",
			Forms: map[common.Lang]ir.Type{
				common.LangC:    ir.Named("int"),
				common.LangJava: ir.Named("boolean"),
				common.LangCpp:  ir.Named("bool"),
			},
		},
		{
			Construct: "string",
			Forms: map[common.Lang]ir.Type{
				common.LangC:    ir.PtrTo("char"),
				common.LangJava: ir.Named("String"),
				common.LangCpp:  ir.Named("string"),
			},
		},
		// No C form: the container emulation pass owns the procedural
		// spelling.
		{
			Construct: "map",
			Forms: map[common.Lang]ir.Type{
				common.LangJava: ir.Named("HashMap"),
				common.LangCpp:  ir.Named("map"),
			},
		},
	}
}
