package backend

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, s string) any {
	t.Helper()
	var v any
	require.NoError(t, json.Unmarshal([]byte(s), &v))
	return v
}

func TestSessionToken(t *testing.T) {
	tbl := []struct {
		name  string
		body  string
		token string
		ttl   time.Duration
	}{
		{"top level token", `{"token":"abc"}`, "abc", 0},
		{"access token in data", `{"status":"success","data":{"access_token":"xyz","expires_in":60}}`, "xyz", time.Minute},
		{"expires at top level", `{"data":{"token":"t1"},"expires_in":"120"}`, "t1", 2 * time.Minute},
		{"empty token", `{"token":""}`, "", 0},
		{"no token", `{"status":true,"data":{"user":{"id":1}}}`, "", 0},
		{"not an object", `["token"]`, "", 0},
	}
	for _, tt := range tbl {
		t.Run(tt.name, func(t *testing.T) {
			token, ttl := SessionToken(decode(t, tt.body))
			assert.Equal(t, tt.token, token)
			assert.Equal(t, tt.ttl, ttl)
		})
	}
}

func TestUserFromBody(t *testing.T) {
	u, ok := UserFromBody(decode(t, `{"user":{"id":"u1","email":"a@b.c","full_name":"Alan Turing","company_name":"Bletchley"}}`))
	require.True(t, ok)
	assert.Equal(t, User{ID: "u1", Email: "a@b.c", Name: "Alan Turing", Company: "Bletchley"}, u)
	assert.Equal(t, "Alan Turing", u.DisplayName())

	u, ok = UserFromBody(decode(t, `{"email":"only@mail.com"}`))
	require.True(t, ok)
	assert.Equal(t, "only@mail.com", u.DisplayName())

	_, ok = UserFromBody(decode(t, `{"status":true}`))
	assert.False(t, ok)
	_, ok = UserFromBody("text")
	assert.False(t, ok)
}

func TestErrorMessage(t *testing.T) {
	tbl := []struct {
		body string
		want string
	}{
		{`{"message":"Company not found"}`, "Company not found"},
		{`{"detail":"Not authenticated"}`, "Not authenticated"},
		{`{"error":"bad input"}`, "bad input"},
		{`{"detail":[{"loc":["body","email"],"msg":"field required"}]}`, "email: field required"},
		{`{"errors":["name is required"]}`, "name is required"},
		{`"plain"`, "plain"},
		{`{"status":false}`, ""},
	}
	for _, tt := range tbl {
		assert.Equal(t, tt.want, ErrorMessage(decode(t, tt.body)), tt.body)
	}
}

func TestStatusFlag(t *testing.T) {
	tbl := []struct {
		v     any
		ok    bool
		known bool
	}{
		{true, true, true},
		{false, false, true},
		{"success", true, true},
		{"OK", true, true},
		{"error", false, true},
		{"failed", false, true},
		{"pending", false, false},
		{float64(1), false, false},
		{nil, false, false},
	}
	for _, tt := range tbl {
		ok, known := StatusFlag(tt.v)
		assert.Equal(t, tt.ok, ok, "%v", tt.v)
		assert.Equal(t, tt.known, known, "%v", tt.v)
	}
}
