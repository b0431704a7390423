package cookie

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToken(t *testing.T) {
	tbl := []struct {
		name   string
		header string
		want   string
	}{
		{"missing", "", ""},
		{"other cookies only", "theme=dark; lang=en", ""},
		{"plain", "session_token=abc123", "abc123"},
		{"url encoded", "theme=dark; session_token=eyJh%2Bb%2Fc%3D%3D", "eyJh+b/c=="},
		{"empty value", "session_token=", ""},
		{"bad escape kept raw", "session_token=abc%zz", "abc%zz"},
		{"raw plus kept", "session_token=abc+def", "abc+def"},
		{"encoded space", "session_token=abc%20def", "abc def"},
	}
	for _, tt := range tbl {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
			if tt.header != "" {
				req.Header.Set("Cookie", tt.header)
			}
			assert.Equal(t, tt.want, Token(req))
			assert.Equal(t, tt.want != "", Present(req))
		})
	}
}

func TestSettings_SetAndClear(t *testing.T) {
	s := Settings{Secure: true, TTL: time.Hour}

	rec := httptest.NewRecorder()
	s.Set(rec, "a+b/c", 0)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	c := cookies[0]
	assert.Equal(t, Name, c.Name)
	assert.Equal(t, "a+b%2Fc", c.Value)
	assert.Equal(t, "/", c.Path)
	assert.Equal(t, 3600, c.MaxAge)
	assert.True(t, c.HttpOnly)
	assert.True(t, c.Secure)
	assert.Equal(t, http.SameSiteLaxMode, c.SameSite)

	// round trip through a request decodes the value
	req := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
	req.AddCookie(&http.Cookie{Name: Name, Value: c.Value})
	assert.Equal(t, "a+b/c", Token(req))

	rec = httptest.NewRecorder()
	s.Set(rec, "tok", 10*time.Minute)
	assert.Equal(t, 600, rec.Result().Cookies()[0].MaxAge)

	rec = httptest.NewRecorder()
	s.Clear(rec)
	cookies = rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, Name, cookies[0].Name)
	assert.Empty(t, cookies[0].Value)
	assert.Equal(t, -1, cookies[0].MaxAge)
}

func TestMask(t *testing.T) {
	assert.Equal(t, "****", Mask("abc"))
	assert.Equal(t, "eyJh****", Mask("eyJhbGciOi"))
}
