package v1

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"

	"go-ats-backend/internal/domain"
	"go-ats-backend/pkg/apperror"

	"github.com/gin-gonic/gin"
)

// maxJSONBody caps JSON and urlencoded candidate bodies.
const maxJSONBody = 1 << 20

// readPayload decodes a JSON, multipart or urlencoded body into a raw payload.
// Form fields with a single value become strings, repeated fields become
// arrays of strings.
func readPayload(c *gin.Context) (domain.Payload, error) {
	switch c.ContentType() {
	case "multipart/form-data":
		form, err := c.MultipartForm()
		if err != nil {
			return nil, apperror.BadRequest("Malformed multipart body")
		}
		return formPayload(form.Value), nil

	case "application/x-www-form-urlencoded":
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxJSONBody)
		if err := c.Request.ParseForm(); err != nil {
			return nil, bodyError(err, "Malformed form body")
		}
		return formPayload(c.Request.PostForm), nil

	case "application/json", "":
		if c.Request.Body == nil || c.Request.Body == http.NoBody {
			return domain.Payload{}, nil
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxJSONBody)
		dec := json.NewDecoder(c.Request.Body)
		dec.UseNumber()
		var payload map[string]any
		if err := dec.Decode(&payload); err != nil {
			if errors.Is(err, io.EOF) {
				return domain.Payload{}, nil
			}
			return nil, bodyError(err, "Request body must be a JSON object")
		}
		if payload == nil {
			payload = map[string]any{}
		}
		return domain.Payload(payload), nil

	default:
		return nil, apperror.BadRequest("Unsupported content type " + c.ContentType())
	}
}

func formPayload(values url.Values) domain.Payload {
	payload := make(domain.Payload, len(values))
	for key, vals := range values {
		switch len(vals) {
		case 0:
		case 1:
			payload[key] = vals[0]
		default:
			items := make([]any, len(vals))
			for i, v := range vals {
				items[i] = v
			}
			payload[key] = items
		}
	}
	return payload
}

func bodyError(err error, message string) error {
	var maxBytes *http.MaxBytesError
	if errors.As(err, &maxBytes) {
		return apperror.PayloadTooLarge("Request body is too large")
	}
	return apperror.BadRequest(message)
}
