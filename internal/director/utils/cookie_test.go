package utils

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDraftClientIDCookie(t *testing.T) {
	header := CreateDraftClientIDCookieHeader("draft_7", "pwr9_draft", time.Minute)
	resp := http.Response{Header: header}
	cookies := resp.Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "draft_7", cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)

	r := httptest.NewRequest(http.MethodGet, "/ws", nil)
	ok, id := HasDraftClientIDCookie(r, "pwr9_draft")
	assert.False(t, ok)
	assert.Empty(t, id)

	r.AddCookie(cookies[0])
	ok, id = HasDraftClientIDCookie(r, "pwr9_draft")
	assert.True(t, ok)
	assert.Equal(t, "draft_7", id)
}
