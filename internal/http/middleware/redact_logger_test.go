package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestRedact(t *testing.T) {
	cases := map[string]string{
		"":                                       "",
		"ahmet@acente.com.tr":                    "[REDACTED:email]",
		"tel 0532 111 22 33":                     "tel [REDACTED:phone]",
		"+90 (532) 111-2233":                     "[REDACTED:phone]",
		"id=3f2b8c1e-9a4d-4c3b-8e2f-1a2b3c4d5e6f": "id=[REDACTED:id]",
		"page=2":                                 "page=2",
	}
	for in, want := range cases {
		if got := redact(in); got != want {
			t.Errorf("redact(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestRedactQuery(t *testing.T) {
	masked := lowerSet(nil, []string{"q"})
	got := redactQuery("q=Ahmet+Y%C4%B1lmaz&page=2", masked)
	if strings.Contains(got, "Ahmet") || !strings.Contains(got, "q=[REDACTED]") || !strings.Contains(got, "page=2") {
		t.Fatalf("got %q", got)
	}
	got = redactQuery("email=ali@x.com", masked)
	if got != "email=[REDACTED:email]" {
		t.Fatalf("got %q", got)
	}
	if got := redactQuery("%zz=1 0532 111 22 33", masked); strings.Contains(got, "0532") {
		t.Fatalf("unparseable query leaked phone: %q", got)
	}
}

func TestRedactingLogger_ScrubsAndLevels(t *testing.T) {
	buf := captureLogs(t)

	r := gin.New()
	r.Use(RequestID(), RedactingLogger(RedactOptions{MaskHeaders: []string{"X-Api-Key"}, MaskQuery: []string{"q"}}))
	r.Use(setUser("u1"))
	r.GET("/policies/search", func(c *gin.Context) {
		LoggerFrom(c).Info().Msg("inside")
		c.Status(http.StatusTeapot)
	})

	req := httptest.NewRequest(http.MethodGet, "/policies/search?q=Ahmet&contact=ali@x.com", nil)
	req.Header.Set("Authorization", "Bearer secret-token")
	req.Header.Set("X-Api-Key", "k-123")
	req.Header.Set("X-Note", "call 0532 111 22 33")
	serve(r, req)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("want handler line + access line, got %d: %s", len(lines), buf.String())
	}
	var inner map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &inner); err != nil {
		t.Fatal(err)
	}
	if inner["request_id"] == "" || inner["path"] != "/policies/search" {
		t.Fatalf("request-scoped logger lacks fields: %v", inner)
	}

	var access map[string]any
	if err := json.Unmarshal([]byte(lines[1]), &access); err != nil {
		t.Fatal(err)
	}
	if access["level"] != "warn" || access["status"] != float64(http.StatusTeapot) || access["user_id"] != "u1" {
		t.Fatalf("access line=%v", access)
	}
	for _, leak := range []string{"secret-token", "k-123", "Ahmet", "ali@x.com", "0532"} {
		if strings.Contains(lines[1], leak) {
			t.Fatalf("access log leaked %q: %s", leak, lines[1])
		}
	}
}

func TestRedactingLogger_ErrorLevelOn5xx(t *testing.T) {
	buf := captureLogs(t)
	r := engine(RedactingLogger(RedactOptions{}))
	r.GET("/down", func(c *gin.Context) { c.Status(http.StatusServiceUnavailable) })
	serve(r, httptest.NewRequest(http.MethodGet, "/down", nil))
	if !strings.Contains(buf.String(), `"level":"error"`) {
		t.Fatalf("want error level: %s", buf.String())
	}

	buf.Reset()
	serve(r, httptest.NewRequest(http.MethodGet, "/x", nil))
	if !strings.Contains(buf.String(), `"level":"info"`) {
		t.Fatalf("want info level: %s", buf.String())
	}
}
