package language

import "testing"

func Test_Detect_GoFile(t *testing.T) {
	lang := Detect("main.go")
	if lang != "go" {
		t.Errorf("expected go, got %s", lang)
	}
}

func Test_Detect_TypeScriptFile(t *testing.T) {
	lang := Detect("src/components/App.tsx")
	if lang != "typescript" {
		t.Errorf("expected typescript, got %s", lang)
	}
}

func Test_Detect_ExtensionlessFile(t *testing.T) {
	lang := Detect("Makefile")
	if lang != "makefile" {
		t.Errorf("expected makefile, got %s", lang)
	}
}

func Test_Detect_UnknownExtension(t *testing.T) {
	lang := Detect("data.xyz")
	if lang != Plaintext {
		t.Errorf("expected %s, got %s", Plaintext, lang)
	}
}

func Test_Detect_CaseInsensitive(t *testing.T) {
	lang := Detect("README.MD")
	if lang != "markdown" {
		t.Errorf("expected markdown, got %s", lang)
	}
}

func Test_IsSymbolLanguage(t *testing.T) {
	tests := []struct {
		lang string
		want bool
	}{
		{"go", true},
		{"typescript", true},
		{"python", true},
		{"markdown", false},
		{"json", false},
		{Plaintext, false},
	}

	for _, tt := range tests {
		if got := IsSymbolLanguage(tt.lang); got != tt.want {
			t.Errorf("IsSymbolLanguage(%s) = %v, want %v", tt.lang, got, tt.want)
		}
	}
}
