package i18n

// Translator retrieves localized messages for field error codes.
// data provides optional metadata to embed in the message (for example,
// "type" or "field").
type Translator interface {
	Message(code string, data map[string]string) string
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

func (t dictTranslator) Message(code string, data map[string]string) string {
	switch t.lang {
	case "ja":
		switch code {
		case "required":
			return "必須フィールドです"
		case "nil_disallowed":
			return "このフィールドにnullは設定できません"
		case "invalid_type":
			if tp, ok := data["type"]; ok {
				return tp + "型である必要があります"
			}
			return "型が不正です"
		case "nonconvertible":
			if tp, ok := data["type"]; ok {
				return tp + "型に変換できる値である必要があります"
			}
			return "変換できない値です"
		case "validation_failed":
			if f, ok := data["field"]; ok {
				return "フィールド '" + f + "' の検証に失敗しました"
			}
			return "検証に失敗しました"
		case "unknown_field":
			return "不明なフィールドです"
		case "disallowed_field":
			return "この部分スキーマでは設定できないフィールドです"
		}
	default: // "en"
		switch code {
		case "required":
			return "This field is required."
		case "nil_disallowed":
			return "Value for this field cannot be null."
		case "invalid_type":
			if tp, ok := data["type"]; ok {
				return "Value for this field must be of " + tp + " data type."
			}
			return "Value for this field has an invalid data type."
		case "nonconvertible":
			if tp, ok := data["type"]; ok {
				return "Value for this field must be a " + tp + "-convertible value."
			}
			return "Value for this field is not convertible to the declared type."
		case "validation_failed":
			if f, ok := data["field"]; ok {
				return "Validation failed for field '" + f + "'."
			}
			return "Validation failed for this field."
		case "unknown_field":
			return "Invalid or unknown field."
		case "disallowed_field":
			return "This field cannot be set on this partial object."
		}
	}
	return code
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
