package i18n

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestNormalizeLocale(t *testing.T) {
	cases := map[string]string{
		"":      DefaultLocale,
		"en_us": "en-US",
		"zh-CN": "zh-CN",
		"es":    "es-AR",
		"en-GB": "en-US",
		"fr-FR": DefaultLocale,
	}
	for input, want := range cases {
		if got := NormalizeLocale(input); got != want {
			t.Fatalf("NormalizeLocale(%q) want %s got %s", input, want, got)
		}
	}
}

func TestTFallsBackToKey(t *testing.T) {
	if got := T("en-US", "error.not_a_real_key"); got != "error.not_a_real_key" {
		t.Fatalf("missing key should return the key itself, got %s", got)
	}
	if got := T("en-US", "error.bad_request"); got == "" || got == "error.bad_request" {
		t.Fatalf("known key should be translated, got %s", got)
	}
}

func TestEveryLocaleHasSameKeys(t *testing.T) {
	base := messages[DefaultLocale]
	for locale, table := range messages {
		for key := range base {
			if _, ok := table[key]; !ok {
				t.Fatalf("locale %s missing key %s", locale, key)
			}
		}
		for key := range table {
			if _, ok := base[key]; !ok {
				t.Fatalf("locale %s has extra key %s", locale, key)
			}
		}
	}
}

func TestResolveLocalePriority(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req := httptest.NewRequest(http.MethodGet, "/?lang=zh-CN", nil)
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	c.Request = req
	if got := ResolveLocale(c); got != "zh-CN" {
		t.Fatalf("query lang should win, got %s", got)
	}

	c, _ = gin.CreateTestContext(httptest.NewRecorder())
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	c.Request = req
	if got := ResolveLocale(c); got != "en-US" {
		t.Fatalf("accept-language should be used, got %s", got)
	}
}
