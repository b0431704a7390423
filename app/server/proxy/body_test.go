package proxy

import (
	"bytes"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kycdash/screengate/app/enum"
)

func TestPrepareBody(t *testing.T) {
	t.Run("json body kept and typed", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/products", strings.NewReader(`{"name":"kyc"}`))
		req.Header.Set("Content-Type", "application/json; charset=utf-8")
		out, err := prepareBody(req, enum.BodyKindAuto, 1<<20)
		require.NoError(t, err)
		assert.Equal(t, "application/json", out.contentType)
		data, err := io.ReadAll(out.body)
		require.NoError(t, err)
		assert.JSONEq(t, `{"name":"kyc"}`, string(data))
	})

	t.Run("invalid json rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/products", strings.NewReader(`{"name":`))
		req.Header.Set("Content-Type", "application/json")
		_, err := prepareBody(req, enum.BodyKindJSON, 1<<20)
		var reqErr *requestError
		require.ErrorAs(t, err, &reqErr)
		assert.Equal(t, http.StatusBadRequest, reqErr.status)
	})

	t.Run("empty json body sends nothing", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodDelete, "/api/products/1", http.NoBody)
		out, err := prepareBody(req, enum.BodyKindAuto, 1<<20)
		require.NoError(t, err)
		assert.Nil(t, out.body)
		assert.Empty(t, out.contentType)
	})

	t.Run("get sends no body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/products", strings.NewReader("ignored"))
		out, err := prepareBody(req, enum.BodyKindAuto, 1<<20)
		require.NoError(t, err)
		assert.Nil(t, out.body)
	})

	t.Run("form body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/contact", strings.NewReader("name=bob&msg=hi"))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		out, err := prepareBody(req, enum.BodyKindAuto, 1<<20)
		require.NoError(t, err)
		assert.Equal(t, "application/x-www-form-urlencoded", out.contentType)
		data, err := io.ReadAll(out.body)
		require.NoError(t, err)
		assert.Equal(t, "name=bob&msg=hi", string(data))
	})

	t.Run("multipart expected but json sent", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/screening/batch", strings.NewReader(`{}`))
		req.Header.Set("Content-Type", "application/json")
		_, err := prepareBody(req, enum.BodyKindMultipart, 1<<20)
		var reqErr *requestError
		require.ErrorAs(t, err, &reqErr)
		assert.Equal(t, http.StatusUnsupportedMediaType, reqErr.status)
		assert.Equal(t, enum.ErrorKindUnsupportedMedia, reqErr.kind)
	})

	t.Run("json expected but xml sent", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/products", strings.NewReader(`<a/>`))
		req.Header.Set("Content-Type", "application/xml")
		_, err := prepareBody(req, enum.BodyKindJSON, 1<<20)
		var reqErr *requestError
		require.ErrorAs(t, err, &reqErr)
		assert.Equal(t, http.StatusUnsupportedMediaType, reqErr.status)
	})

	t.Run("malformed content type", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/products", strings.NewReader(`{}`))
		req.Header.Set("Content-Type", "application/json; =bad")
		_, err := prepareBody(req, enum.BodyKindAuto, 1<<20)
		var reqErr *requestError
		require.ErrorAs(t, err, &reqErr)
		assert.Equal(t, http.StatusBadRequest, reqErr.status)
	})
}

func TestPrepareBody_Multipart(t *testing.T) {
	body, inboundCT := multipartFixture(t)
	req := httptest.NewRequest(http.MethodPost, "/api/screening/batch", body)
	req.Header.Set("Content-Type", inboundCT)

	out, err := prepareBody(req, enum.BodyKindAuto, 1<<20)
	require.NoError(t, err)

	_, inParams, err := mime.ParseMediaType(inboundCT)
	require.NoError(t, err)
	mt, outParams, err := mime.ParseMediaType(out.contentType)
	require.NoError(t, err)
	assert.Equal(t, "multipart/form-data", mt)
	assert.NotEmpty(t, outParams["boundary"])
	assert.NotEqual(t, inParams["boundary"], outParams["boundary"], "boundary must be regenerated")

	mr := multipart.NewReader(out.body, outParams["boundary"])
	var names []string
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		data, err := io.ReadAll(part)
		require.NoError(t, err)
		names = append(names, part.FormName())
		switch part.FormName() {
		case "batch_name":
			assert.Equal(t, "october", string(data))
		case "file":
			assert.Equal(t, "names.csv", part.FileName())
			assert.Equal(t, "text/csv", part.Header.Get("Content-Type"))
			assert.Equal(t, "name\nJohn Doe\n", string(data))
		}
	}
	assert.Equal(t, []string{"threshold", "batch_name", "file"}, names, "inbound part order kept")
}

func TestPrepareBody_MultipartErrors(t *testing.T) {
	t.Run("file before fields keeps order", func(t *testing.T) {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		fw, err := mw.CreateFormFile("document", "passport.png")
		require.NoError(t, err)
		_, err = fw.Write([]byte("png-bytes"))
		require.NoError(t, err)
		require.NoError(t, mw.WriteField("customer_id", "42"))
		require.NoError(t, mw.WriteField("customer_id", "43"))
		require.NoError(t, mw.Close())

		req := httptest.NewRequest(http.MethodPost, "/api/customers/42/documents", &buf)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		out, err := prepareBody(req, enum.BodyKindMultipart, 1<<20)
		require.NoError(t, err)

		_, params, err := mime.ParseMediaType(out.contentType)
		require.NoError(t, err)
		mr := multipart.NewReader(out.body, params["boundary"])
		var got []string
		for {
			part, err := mr.NextPart()
			if err == io.EOF {
				break
			}
			require.NoError(t, err)
			data, err := io.ReadAll(part)
			require.NoError(t, err)
			got = append(got, part.FormName()+"="+string(data))
		}
		assert.Equal(t, []string{"document=png-bytes", "customer_id=42", "customer_id=43"}, got)
	})

	t.Run("too large", func(t *testing.T) {
		body, ct := multipartFixture(t)
		req := httptest.NewRequest(http.MethodPost, "/api/screening/batch", body)
		req.Header.Set("Content-Type", ct)
		_, err := prepareBody(req, enum.BodyKindMultipart, 16)
		var reqErr *requestError
		require.ErrorAs(t, err, &reqErr)
		assert.Equal(t, http.StatusRequestEntityTooLarge, reqErr.status)
	})

	t.Run("truncated body", func(t *testing.T) {
		body, ct := multipartFixture(t)
		truncated := body.Bytes()[:body.Len()/2]
		req := httptest.NewRequest(http.MethodPost, "/api/screening/batch", bytes.NewReader(truncated))
		req.Header.Set("Content-Type", ct)
		_, err := prepareBody(req, enum.BodyKindMultipart, 1<<20)
		var reqErr *requestError
		require.ErrorAs(t, err, &reqErr)
		assert.Equal(t, http.StatusBadRequest, reqErr.status)
	})
}

// multipartFixture makes a multipart body with two fields and a csv file.
func multipartFixture(t *testing.T) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("threshold", "85"))
	require.NoError(t, mw.WriteField("batch_name", "october"))
	h := make(textproto.MIMEHeader)
	h["Content-Disposition"] = []string{`form-data; name="file"; filename="names.csv"`}
	h["Content-Type"] = []string{"text/csv"}
	part, err := mw.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write([]byte("name\nJohn Doe\n"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}
