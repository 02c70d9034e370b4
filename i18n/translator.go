package i18n

import "strings"

// Translator retrieves localized messages for Issue codes.
// data provides optional values to embed in the message (for example,
// "expected" or "bound"); templates reference them as {name}.
type Translator interface {
	Message(code string, data map[string]string) string
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

var dictionaries = map[string]map[string]string{
	"en": {
		"required":             "required property missing",
		"invalid_type":         "cannot convert {value} to {expected}",
		"out_of_range:minimum": "{value} is below the minimum {bound}",
		"out_of_range:maximum": "{value} is above the maximum {bound}",
		"invalid_enum":         "{value} is not one of the {allowed} allowed values",
	},
	"ja": {
		"required":             "必須プロパティが不足しています",
		"invalid_type":         "{value} を {expected} に変換できません",
		"out_of_range:minimum": "{value} は最小値 {bound} を下回っています",
		"out_of_range:maximum": "{value} は最大値 {bound} を超えています",
		"invalid_enum":         "{value} は許可された {allowed} 個の値のいずれでもありません",
	},
}

func (t dictTranslator) Message(code string, data map[string]string) string {
	dict := dictionaries[t.lang]
	tmpl, ok := dict[code+":"+data["limit"]]
	if !ok {
		tmpl, ok = dict[code]
	}
	if !ok {
		return code
	}
	return fill(tmpl, data)
}

func fill(tmpl string, data map[string]string) string {
	if len(data) == 0 {
		return tmpl
	}
	pairs := make([]string, 0, 2*len(data))
	for k, v := range data {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(tmpl)
}

var currentTranslator Translator = dictTranslator{lang: "en"}

// SetLanguage switches the built-in Translator language ("en"/"ja").
func SetLanguage(lang string) {
	if lang != "ja" {
		lang = "en"
	}
	currentTranslator = dictTranslator{lang: lang}
}

// SetTranslator replaces the Translator implementation (not limited to the
// dictionary version).
func SetTranslator(tr Translator) {
	if tr == nil {
		currentTranslator = dictTranslator{lang: "en"}
		return
	}
	currentTranslator = tr
}

// T fetches a message for the given code using the current Translator.
func T(code string, data map[string]string) string { return currentTranslator.Message(code, data) }
