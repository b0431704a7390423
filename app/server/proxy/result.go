package proxy

import (
	"encoding/json"
	"fmt"
	"mime"
	"net/http"
	"slices"
	"strconv"
	"strings"

	log "github.com/go-pkgz/lgr"
	"github.com/go-pkgz/rest"

	"github.com/kycdash/screengate/app/backend"
	"github.com/kycdash/screengate/app/enum"
)

// Envelope is the uniform JSON body returned to the browser.
type Envelope struct {
	Status  bool           `json:"status"`
	Message string         `json:"message,omitempty"`
	Data    any            `json:"data,omitempty"`
	Error   string         `json:"error,omitempty"`
	Meta    map[string]any `json:"meta,omitempty"`
}

// Result is a backend response normalized for rendering.
type Result struct {
	OK      bool
	Status  int // HTTP status sent to the browser
	Kind    enum.ErrorKind
	Message string
	Data    any
	Meta    map[string]any // extra top-level fields of envelope-shaped bodies
	Err     string         // backend error code, kind name if empty
}

// Envelope renders the result as the uniform JSON body.
func (r Result) Envelope() Envelope {
	env := Envelope{Status: r.OK, Message: r.Message, Data: r.Data, Meta: r.Meta}
	if !r.OK {
		env.Error = r.Err
		if env.Error == "" {
			env.Error = r.Kind.String()
		}
	}
	return env
}

func failure(status int, kind enum.ErrorKind, message string) Result {
	return Result{Status: status, Kind: kind, Message: message}
}

// backendResponse is a fully read backend response.
type backendResponse struct {
	Status int
	Header http.Header
	Body   []byte
}

// envelopeKeys are the top-level fields consumed by the envelope, everything else goes to meta.
var envelopeKeys = []string{"status", "success", "message", "data", "error", "detail", "errors"}

// binaryTypes are passed through unchanged instead of being wrapped into an envelope.
var binaryTypes = []string{
	"application/pdf",
	"application/octet-stream",
	"application/zip",
	"application/vnd.ms-excel",
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	"text/csv",
}

func (b backendResponse) binary() bool {
	mt, _, err := mime.ParseMediaType(b.Header.Get("Content-Type"))
	return err == nil && slices.Contains(binaryTypes, mt)
}

// interpret normalizes a non-binary backend response. Returns the result and the decoded body,
// nil if the body was empty or not JSON.
func interpret(resp backendResponse) (Result, any) {
	res := Result{OK: resp.Status < http.StatusBadRequest, Status: resp.Status, Kind: enum.KindForStatus(resp.Status)}
	text := strings.TrimSpace(string(resp.Body))
	if text == "" {
		if !res.OK {
			res.Message = http.StatusText(resp.Status)
		}
		return res, nil
	}

	var body any
	if err := json.Unmarshal(resp.Body, &body); err != nil {
		// not json, raw text goes to message
		res.Message = text
		return res, nil
	}

	obj, isObj := body.(map[string]any)
	if !isObj {
		if res.OK {
			res.Data = body
		} else {
			res.Message = backend.ErrorMessage(body)
		}
		return finish(res), body
	}

	flag, shaped := backend.StatusFlag(obj["status"])
	if !shaped {
		flag, shaped = backend.StatusFlag(obj["success"])
	}
	switch {
	case shaped:
		res.OK = res.OK && flag
		res.Data = obj["data"]
		res.Meta = extraFields(obj)
	case res.OK:
		res.Data = obj
	}

	if msg, ok := obj["message"].(string); ok {
		res.Message = msg
	}
	if !res.OK {
		res.Message = backend.ErrorMessage(obj)
		if res.Data == nil {
			// validation details, e.g. {"detail": [{"loc": [...], "msg": "..."}]}
			if details, ok := obj["detail"].([]any); ok {
				res.Data = details
			} else if errs, ok := obj["errors"]; ok {
				res.Data = errs
			}
		}
		if code, ok := obj["error"].(string); ok && code != res.Message {
			res.Err = code
		}
	}
	return finish(res), body
}

// finish fills the kind and message of failed results.
func finish(res Result) Result {
	if res.OK {
		return res
	}
	if res.Kind == enum.ErrorKindNone {
		res.Kind = enum.ErrorKindBackendError
	}
	if res.Message == "" {
		res.Message = http.StatusText(res.Status)
	}
	return res
}

func extraFields(obj map[string]any) map[string]any {
	var meta map[string]any
	for k, v := range obj {
		if slices.Contains(envelopeKeys, k) {
			continue
		}
		if meta == nil {
			meta = make(map[string]any)
		}
		meta[k] = v
	}
	return meta
}

// writeResult renders the result as JSON envelope and returns the status written.
// 204 and 304 are sent without body.
func writeResult(w http.ResponseWriter, res Result) int {
	if res.Status == 0 {
		res.Status = http.StatusOK
	}
	if res.Status == http.StatusNoContent || res.Status == http.StatusNotModified {
		w.WriteHeader(res.Status)
		return res.Status
	}
	if err := rest.EncodeJSON(w, res.Status, res.Envelope()); err != nil {
		log.Printf("[WARN] failed to write response: %v", err)
	}
	return res.Status
}

// writeBinary passes a binary backend response through, keeping the backend Content-Disposition
// or synthesizing an attachment one with the given filename.
func writeBinary(w http.ResponseWriter, resp backendResponse, filename string) int {
	w.Header().Set("Content-Type", resp.Header.Get("Content-Type"))
	disposition := resp.Header.Get("Content-Disposition")
	if disposition == "" {
		disposition = fmt.Sprintf(`attachment; filename=%q`, filename)
	}
	w.Header().Set("Content-Disposition", disposition)
	w.Header().Set("Content-Length", strconv.Itoa(len(resp.Body)))
	w.WriteHeader(resp.Status)
	if _, err := w.Write(resp.Body); err != nil {
		log.Printf("[WARN] failed to write binary response: %v", err)
	}
	return resp.Status
}

// defaultFilename returns a fallback attachment name for a binary content type.
func defaultFilename(contentType string) string {
	mt, _, _ := mime.ParseMediaType(contentType)
	switch mt {
	case "application/pdf":
		return "report.pdf"
	case "text/csv":
		return "export.csv"
	case "application/zip":
		return "download.zip"
	case "application/vnd.ms-excel":
		return "export.xls"
	case "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":
		return "export.xlsx"
	}
	return "download"
}
