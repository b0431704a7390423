package proxy

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"

	"github.com/kycdash/screengate/app/enum"
)

const (
	mediaJSON      = "application/json"
	mediaForm      = "application/x-www-form-urlencoded"
	mediaMultipart = "multipart/form-data"
)

// outbound is a request body prepared for the backend.
type outbound struct {
	body        io.Reader // nil for no body
	contentType string
}

// requestError is a problem with the inbound request, answered without calling the backend.
type requestError struct {
	status  int
	kind    enum.ErrorKind
	message string
}

func (e *requestError) Error() string { return e.message }

func (e *requestError) result() Result {
	return failure(e.status, e.kind, e.message)
}

// prepareBody reads the inbound body according to the route body kind and re-encodes it.
// The inbound Content-Type is never forwarded as is; multipart bodies get a new boundary.
func prepareBody(r *http.Request, kind enum.BodyKind, maxMemory int64) (outbound, error) {
	mediaType := ""
	if ct := r.Header.Get("Content-Type"); ct != "" {
		mt, _, err := mime.ParseMediaType(ct)
		if err != nil {
			return outbound{}, &requestError{status: http.StatusBadRequest, kind: enum.ErrorKindBadRequest,
				message: fmt.Sprintf("Invalid Content-Type %q", ct)}
		}
		mediaType = mt
	}

	if kind == enum.BodyKindAuto {
		kind = detectBodyKind(r.Method, mediaType)
	}

	switch kind {
	case enum.BodyKindNone:
		return outbound{}, nil
	case enum.BodyKindMultipart:
		if mediaType != mediaMultipart {
			return outbound{}, unsupportedMedia(mediaType, mediaMultipart)
		}
		return multipartBody(r, maxMemory)
	case enum.BodyKindForm:
		if mediaType != mediaForm {
			return outbound{}, unsupportedMedia(mediaType, mediaForm)
		}
		data, err := readBody(r)
		if err != nil {
			return outbound{}, err
		}
		return outbound{body: bytes.NewReader(data), contentType: mediaForm}, nil
	default:
		if mediaType != "" && !isJSONMedia(mediaType) {
			return outbound{}, unsupportedMedia(mediaType, mediaJSON)
		}
		return jsonBody(r)
	}
}

// detectBodyKind picks the body kind for auto routes from method and media type.
func detectBodyKind(method, mediaType string) enum.BodyKind {
	switch {
	case mediaType == mediaMultipart:
		return enum.BodyKindMultipart
	case mediaType == mediaForm:
		return enum.BodyKindForm
	case method == http.MethodGet || method == http.MethodHead:
		return enum.BodyKindNone
	}
	return enum.BodyKindJSON
}

// isJSONMedia accepts json media types and text/plain, which some clients send for fetch bodies.
func isJSONMedia(mediaType string) bool {
	return mediaType == mediaJSON || strings.HasSuffix(mediaType, "+json") || mediaType == "text/plain"
}

// jsonBody validates the inbound body as JSON. An empty body sends no body.
func jsonBody(r *http.Request) (outbound, error) {
	data, err := readBody(r)
	if err != nil {
		return outbound{}, err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return outbound{}, nil
	}
	if !json.Valid(data) {
		return outbound{}, &requestError{status: http.StatusBadRequest, kind: enum.ErrorKindBadRequest,
			message: "Invalid JSON body"}
	}
	return outbound{body: bytes.NewReader(data), contentType: mediaJSON}, nil
}

// multipartBody streams the inbound parts into a new body with a fresh boundary, keeping
// part order. File parts keep filename and content type. Bodies over maxSize are rejected.
func multipartBody(r *http.Request, maxSize int64) (outbound, error) {
	limited := &io.LimitedReader{R: r.Body, N: maxSize + 1}
	r.Body = io.NopCloser(limited)
	mr, err := r.MultipartReader()
	if err != nil {
		return outbound{}, invalidMultipart(err, limited)
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return outbound{}, invalidMultipart(err, limited)
		}
		err = copyPart(mw, part)
		_ = part.Close()
		if err != nil {
			return outbound{}, invalidMultipart(err, limited)
		}
	}
	if err := mw.Close(); err != nil {
		return outbound{}, fmt.Errorf("failed to close multipart writer: %w", err)
	}
	return outbound{body: &buf, contentType: mw.FormDataContentType()}, nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// copyPart writes a single form part, rebuilding its headers from name, filename and content type.
func copyPart(mw *multipart.Writer, src *multipart.Part) error {
	name := src.FormName()
	if name == "" {
		return errors.New("part without form name")
	}
	disposition := fmt.Sprintf(`form-data; name="%s"`, quoteEscaper.Replace(name))
	h := make(textproto.MIMEHeader)
	if filename := src.FileName(); filename != "" {
		disposition += fmt.Sprintf(`; filename="%s"`, quoteEscaper.Replace(filename))
		ct := src.Header.Get("Content-Type")
		if ct == "" {
			ct = "application/octet-stream"
		}
		h.Set("Content-Type", ct)
	}
	h.Set("Content-Disposition", disposition)

	dst, err := mw.CreatePart(h)
	if err != nil {
		return fmt.Errorf("create part %q: %w", name, err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		return fmt.Errorf("copy part %q: %w", name, err)
	}
	return nil
}

// invalidMultipart maps a multipart read failure to 413 when the size limit was hit, 400 otherwise.
func invalidMultipart(err error, limited *io.LimitedReader) *requestError {
	if limited.N <= 0 {
		return &requestError{status: http.StatusRequestEntityTooLarge, kind: enum.ErrorKindBadRequest,
			message: "Multipart body too large"}
	}
	return &requestError{status: http.StatusBadRequest, kind: enum.ErrorKindBadRequest,
		message: fmt.Sprintf("Invalid multipart body: %v", err)}
}

func readBody(r *http.Request) ([]byte, error) {
	if r.Body == nil {
		return nil, nil
	}
	data, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, &requestError{status: http.StatusBadRequest, kind: enum.ErrorKindBadRequest,
			message: fmt.Sprintf("Failed to read request body: %v", err)}
	}
	return data, nil
}

func unsupportedMedia(got, want string) *requestError {
	if got == "" {
		got = "none"
	}
	return &requestError{status: http.StatusUnsupportedMediaType, kind: enum.ErrorKindUnsupportedMedia,
		message: fmt.Sprintf("Unsupported content type %s, expected %s", got, want)}
}
