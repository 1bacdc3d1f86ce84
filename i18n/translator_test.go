package i18n

import "testing"

func TestTranslator_DefaultAndJapanese(t *testing.T) {
	// default is en
	if msg := T("required", nil); msg != "This field is required." {
		t.Fatalf("expected english message, got %q", msg)
	}

	SetLanguage("ja")
	if msg := T("required", nil); msg != "必須フィールドです" {
		t.Fatalf("expected japanese message, got %q", msg)
	}

	// reset to en
	SetLanguage("en")
}

func TestTranslator_ParamsAndFallback(t *testing.T) {
	if msg := T("invalid_type", map[string]string{"type": "integer"}); msg != "Value for this field must be of integer data type." {
		t.Fatalf("unexpected message: %q", msg)
	}
	// unknown codes fall back to the code itself
	if msg := T("no_such_code", nil); msg != "no_such_code" {
		t.Fatalf("expected fallback to code, got %q", msg)
	}
}

type staticTranslator struct{}

func (staticTranslator) Message(code string, _ map[string]string) string { return "static:" + code }

func TestTranslator_Replace(t *testing.T) {
	SetTranslator(staticTranslator{})
	defer SetTranslator(nil)

	if msg := T("required", nil); msg != "static:required" {
		t.Fatalf("expected replaced translator, got %q", msg)
	}
}
