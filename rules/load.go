package rules

import (
	"fmt"
	"io/ioutil"
	"os"

	"polyc/common"
	"polyc/ir"

	"github.com/pelletier/go-toml"
)

// tomlRules is a rule overlay file as it is encoded in TOML.
type tomlRules struct {
	Idioms []tomlIdiom    `toml:"idiom"`
	Types  []tomlTypeRule `toml:"type"`
}

type tomlIdiom struct {
	Construct string              `toml:"construct"`
	Forms     map[string]tomlForm `toml:"form"`
}

type tomlForm struct {
	Callee    string `toml:"callee"`
	Method    bool   `toml:"method"`
	Operator  bool   `toml:"operator"`
	NeedsZero bool   `toml:"needs-zero"`
}

type tomlTypeRule struct {
	Construct string                  `toml:"construct"`
	Forms     map[string]tomlTypeForm `toml:"form"`
}

type tomlTypeForm struct {
	Name string `toml:"name"`
	Ptr  bool   `toml:"ptr"`
}

// Load reads a rule overlay file and layers it over the given set.  Overlay
// entries shadow built-in rules with the same construct.
func Load(base *Set, path string) (*Set, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("unable to open rules file at `%s`: %w", path, err)
	}
	defer f.Close()

	buff, err := ioutil.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("error reading rules file at `%s`: %w", path, err)
	}

	tomlSet := &tomlRules{}
	if err := toml.Unmarshal(buff, tomlSet); err != nil {
		return nil, fmt.Errorf("error parsing rules file at `%s`: %w", path, err)
	}

	return extend(base, tomlSet, path)
}

// extend validates the deserialized overlay and merges it onto the base set.
func extend(base *Set, tomlSet *tomlRules, path string) (*Set, error) {
	var idioms []*Idiom
	for _, ti := range tomlSet.Idioms {
		if ti.Construct == "" {
			return nil, fmt.Errorf("idiom missing construct name in rules file at `%s`", path)
		}

		forms := make(map[common.Lang]Form)
		for langName, tf := range ti.Forms {
			lang := common.ParseLang(langName)
			if lang == common.LangUnknown {
				return nil, fmt.Errorf("unknown language `%s` in idiom `%s`", langName, ti.Construct)
			}

			if tf.Callee == "" {
				return nil, fmt.Errorf("idiom `%s` has an empty callee for `%s`", ti.Construct, langName)
			}

			forms[lang] = Form{Callee: tf.Callee, Method: tf.Method, Operator: tf.Operator, NeedsZero: tf.NeedsZero}
		}

		idioms = append(idioms, &Idiom{Construct: ti.Construct, Forms: forms})
	}

	var types []*TypeRule
	for _, tt := range tomlSet.Types {
		if tt.Construct == "" {
			return nil, fmt.Errorf("type rule missing construct name in rules file at `%s`", path)
		}

		forms := make(map[common.Lang]ir.Type)
		for langName, tf := range tt.Forms {
			lang := common.ParseLang(langName)
			if lang == common.LangUnknown {
				return nil, fmt.Errorf("unknown language `%s` in type rule `%s`", langName, tt.Construct)
			}

			forms[lang] = ir.Type{Name: tf.Name, Ptr: tf.Ptr}
		}

		types = append(types, &TypeRule{Construct: tt.Construct, Forms: forms})
	}

	return base.Extend(idioms, types), nil
}
