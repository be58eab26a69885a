// Package rules holds the declarative idiom table driving the
// statement/expression translator.  A rule maps a construct identifier to its
// spelling in each language; the translator looks idioms up by (construct,
// source language, target language).  Rule sets are immutable configuration
// values: they are constructed once per run and passed explicitly into the
// translator.
package rules

import (
	"polyc/common"
	"polyc/ir"
)

// Form is how one construct is spelled in one language.
type Form struct {
	// The callee name, possibly dotted (eg. `Math.sqrt`).
	Callee string

	// Method marks a subject-first spelling: the construct's first argument
	// becomes the receiver of a method call.
	Method bool

	// Operator marks a binary-operator spelling; Callee holds the operator.
	// Only meaningful as a target form of a two-argument construct.
	Operator bool

	// NeedsZero marks a spelling whose result must be compared against zero
	// to yield the construct's boolean meaning (eg. `strcmp(a, b) == 0` for
	// a string-equality check).
	NeedsZero bool
}

// Idiom is one construct with its per-language forms.  A language with no
// form for a construct cannot express it through the rule table.
type Idiom struct {
	Construct string
	Forms     map[common.Lang]Form
}

// TypeRule maps one neutral type construct to its per-language spellings.
type TypeRule struct {
	Construct string
	Forms     map[common.Lang]ir.Type
}

// -----------------------------------------------------------------------------

// Set is an immutable rule table.
type Set struct {
	idioms []*Idiom
	types  []*TypeRule

	// byCallee indexes idioms by (language, callee) for recognition.
	byCallee map[common.Lang]map[string]*Idiom

	// byZero indexes idioms whose source form is recognized only as a
	// compare-against-zero (eg. `strcmp(a, b) == 0` is string equality; a
	// bare `strcmp(a, b)` is a three-way comparison).
	byZero map[common.Lang]map[string]*Idiom

	// byOp indexes idioms spelled as a binary operator (eg. `==` on C++
	// strings).
	byOp map[common.Lang]map[string]*Idiom
}

// NewSet builds a rule set from idiom and type rules.  Later entries shadow
// earlier ones with the same construct, which is how overlay files override
// defaults.
func NewSet(idioms []*Idiom, types []*TypeRule) *Set {
	byConstruct := make(map[string]int)
	var kept []*Idiom
	for _, id := range idioms {
		if i, ok := byConstruct[id.Construct]; ok {
			kept[i] = id
			continue
		}

		byConstruct[id.Construct] = len(kept)
		kept = append(kept, id)
	}

	typeByConstruct := make(map[string]int)
	var keptTypes []*TypeRule
	for _, tr := range types {
		if i, ok := typeByConstruct[tr.Construct]; ok {
			keptTypes[i] = tr
			continue
		}

		typeByConstruct[tr.Construct] = len(keptTypes)
		keptTypes = append(keptTypes, tr)
	}

	s := &Set{
		idioms:   kept,
		types:    keptTypes,
		byCallee: make(map[common.Lang]map[string]*Idiom),
		byZero:   make(map[common.Lang]map[string]*Idiom),
		byOp:     make(map[common.Lang]map[string]*Idiom),
	}

	for _, id := range s.idioms {
		for lang, form := range id.Forms {
			// a NeedsZero form matches only inside a zero comparison, and an
			// operator form only at its operator, so neither may shadow
			// idioms sharing its callee (strcmp serves both str-cmp and
			// str-eq)
			index := s.byCallee
			switch {
			case form.Operator:
				index = s.byOp
			case form.NeedsZero:
				index = s.byZero
			}

			if index[lang] == nil {
				index[lang] = make(map[string]*Idiom)
			}

			// first listed wins when constructs share a callee in one
			// language (the three print idioms all spell `printf` in C)
			if _, taken := index[lang][form.Callee]; !taken {
				index[lang][form.Callee] = id
			}
		}
	}

	return s
}

// Extend returns a new set with the given rules layered over this one.  The
// receiver is not modified.
func (s *Set) Extend(idioms []*Idiom, types []*TypeRule) *Set {
	merged := append(append([]*Idiom{}, s.idioms...), idioms...)
	mergedTypes := append(append([]*TypeRule{}, s.types...), types...)
	return NewSet(merged, mergedTypes)
}

// -----------------------------------------------------------------------------

// LookupCall recognizes a call idiom by its source-language callee and
// returns the source and target forms.  The second result is false on a rule
// miss, in which case the translator passes the call through with a
// diagnostic.
func (s *Set) LookupCall(src, tgt common.Lang, callee string) (*Idiom, Form, bool) {
	id, ok := s.byCallee[src][callee]
	if !ok {
		return nil, Form{}, false
	}

	to, ok := id.Forms[tgt]
	if !ok {
		return nil, Form{}, false
	}

	return id, to, true
}

// LookupZeroCall recognizes a callee that carries an idiom's boolean meaning
// only when its result is compared against zero.
func (s *Set) LookupZeroCall(src, tgt common.Lang, callee string) (*Idiom, Form, bool) {
	id, ok := s.byZero[src][callee]
	if !ok {
		return nil, Form{}, false
	}

	to, ok := id.Forms[tgt]
	if !ok {
		return nil, Form{}, false
	}

	return id, to, true
}

// LookupOperator recognizes an idiom spelled as a binary operator in the
// source language.
func (s *Set) LookupOperator(src, tgt common.Lang, op string) (*Idiom, Form, bool) {
	id, ok := s.byOp[src][op]
	if !ok {
		return nil, Form{}, false
	}

	to, ok := id.Forms[tgt]
	if !ok {
		return nil, Form{}, false
	}

	return id, to, true
}

// MapType rewrites a type between languages.  Pointer-ness participates in
// matching (`char*` is the C spelling of a string, plain `char` is not);
// array dimensions carry over unchanged.  Unmapped types pass through.
func (s *Set) MapType(src, tgt common.Lang, t ir.Type) ir.Type {
	for _, tr := range s.types {
		from, ok := tr.Forms[src]
		if !ok || from.Name != t.Name || from.Ptr != t.Ptr {
			continue
		}

		to, ok := tr.Forms[tgt]
		if !ok {
			continue
		}

		mapped := to
		mapped.Dims = t.Dims
		return mapped
	}

	return t
}
