package middleware

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// envelopeExemptPrefixes lists paths served without the response envelope
var envelopeExemptPrefixes = []string{"/api/docs", "/api/redoc", "/api/openapi.json"}

// Envelope is the uniform wrapper applied to every API response
type Envelope struct {
	Success  bool   `json:"success"`
	Message  string `json:"message"`
	Response any    `json:"response"`
	Errors   any    `json:"errors"`
}

// bodyCaptureWriter buffers the handler's body instead of sending it, so the
// envelope middleware can rewrap it. Status and headers pass through.
type bodyCaptureWriter struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func (w *bodyCaptureWriter) Write(b []byte) (int, error) {
	return w.body.Write(b)
}

func (w *bodyCaptureWriter) WriteString(s string) (int, error) {
	return w.body.WriteString(s)
}

// ResponseEnvelope rewraps every response into the uniform envelope shape and
// converts panics into the 500 envelope. Documentation paths are exempt.
func ResponseEnvelope() gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, prefix := range envelopeExemptPrefixes {
			if strings.HasPrefix(c.Request.URL.Path, prefix) {
				c.Next()
				return
			}
		}

		capture := &bodyCaptureWriter{ResponseWriter: c.Writer}
		c.Writer = capture

		defer func() {
			if rec := recover(); rec != nil {
				log.Printf("panic recovered: %v", rec)
				writeEnvelope(capture.ResponseWriter, http.StatusInternalServerError, Envelope{
					Success:  false,
					Message:  "An unexpected server error occurred.",
					Response: nil,
					Errors:   gin.H{"type": fmt.Sprintf("%T", rec), "detail": fmt.Sprint(rec)},
				})
				c.Abort()
			}
		}()

		c.Next()

		status := capture.Status()
		isSuccess := status >= 200 && status < 400

		var data any
		if capture.body.Len() > 0 {
			if err := json.Unmarshal(capture.body.Bytes(), &data); err != nil {
				data = capture.body.String()
			}
		}

		env := Envelope{Success: isSuccess}
		if isSuccess {
			env.Message = "Request successful."
			env.Response = data
		} else {
			env.Message = failureMessage(status, data)
			env.Errors = failureErrors(status, data)
		}

		writeEnvelope(capture.ResponseWriter, status, env)
	}
}

// failureMessage picks the envelope message for a failed response: the
// handler's detail string when present, a fixed message for validation
// failures, a generic one otherwise.
func failureMessage(status int, data any) string {
	if detail, ok := detailOf(data); ok {
		return detail
	}
	if status == http.StatusUnprocessableEntity {
		return "Validation error."
	}
	return "Request failed."
}

// failureErrors shapes the envelope errors field. Responses carrying a detail
// string are classified as HTTPException; validation bodies pass through as
// structured field errors.
func failureErrors(status int, data any) any {
	if detail, ok := detailOf(data); ok {
		return gin.H{"type": "HTTPException", "detail": detail}
	}
	return data
}

func detailOf(data any) (string, bool) {
	obj, ok := data.(map[string]any)
	if !ok {
		return "", false
	}
	detail, ok := obj["detail"].(string)
	return detail, ok
}

func writeEnvelope(w gin.ResponseWriter, status int, env Envelope) {
	body, err := json.Marshal(env)
	if err != nil {
		log.Printf("failed to marshal response envelope: %v", err)
		body = []byte(`{"success":false,"message":"An unexpected server error occurred.","response":null,"errors":null}`)
		status = http.StatusInternalServerError
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if !w.Written() {
		w.WriteHeader(status)
	}
	if _, err := w.Write(body); err != nil {
		log.Printf("failed to write response envelope: %v", err)
	}
}
