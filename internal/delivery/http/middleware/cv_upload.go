package middleware

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go-ats-backend/pkg/apperror"
	"go-ats-backend/pkg/logger"
	"go-ats-backend/pkg/security"
	"go-ats-backend/pkg/security/antivirus"
	"go-ats-backend/pkg/storage"

	"github.com/gin-gonic/gin"
)

const (
	// CVFormField is the only multipart field allowed to carry a file.
	CVFormField = "cv"

	cvPathKey = "CVFilePath"
	// formOverhead is the body allowance for text fields on top of the file.
	formOverhead = 1 << 20
)

// CVUploadMiddleware accepts at most one CV file under the "cv" field,
// validates and stores it, and exposes the stored path through CVFilePath.
// When scanner is non-nil every file is scanned before it is stored.
// When the rest of the chain fails the stored file is removed again.
// Requests that are not multipart pass through untouched.
func CVUploadMiddleware(store storage.Store, scanner antivirus.Scanner, maxBytes int64) gin.HandlerFunc {
	limitMsg := fmt.Sprintf("CV file exceeds the %s limit", humanBytes(maxBytes))

	return func(c *gin.Context) {
		if c.ContentType() != "multipart/form-data" {
			c.Next()
			return
		}

		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes+formOverhead)
		form, err := c.MultipartForm()
		if err != nil {
			if isBodyTooLarge(err) {
				abortWith(c, apperror.PayloadTooLarge(limitMsg))
				return
			}
			abortWith(c, apperror.BadRequest("Malformed multipart body"))
			return
		}

		for field, headers := range form.File {
			if field != CVFormField {
				abortWith(c, fileError(fmt.Sprintf("Unexpected file field %q; only %q is accepted", field, CVFormField)))
				return
			}
			if len(headers) > 1 {
				abortWith(c, fileError("Only one CV file may be uploaded"))
				return
			}
		}

		headers := form.File[CVFormField]
		if len(headers) == 0 {
			c.Next()
			return
		}
		fh := headers[0]

		if fh.Size > maxBytes {
			abortWith(c, apperror.PayloadTooLarge(limitMsg))
			return
		}

		src, err := fh.Open()
		if err != nil {
			abortWith(c, apperror.Internal(fmt.Errorf("open uploaded CV: %w", err)))
			return
		}
		data, err := io.ReadAll(io.LimitReader(src, maxBytes+1))
		src.Close()
		if err != nil {
			abortWith(c, apperror.Internal(fmt.Errorf("read uploaded CV: %w", err)))
			return
		}
		if int64(len(data)) > maxBytes {
			abortWith(c, apperror.PayloadTooLarge(limitMsg))
			return
		}

		result := security.ValidateCV(fh.Filename, fh.Header.Get("Content-Type"), data)
		if !result.Valid {
			logger.Log.Info("CV upload rejected",
				"filename", fh.Filename, "reason", result.Error, "request_id", requestID(c))
			abortWith(c, fileError("Invalid CV file: "+result.Error))
			return
		}

		if scanner != nil {
			verdict, err := scanner.Scan(c.Request.Context(), fh.Filename, data)
			if err != nil {
				logger.Log.Error("CV scan failed",
					"scanner", scanner.Name(), "error", err, "request_id", requestID(c))
				abortWith(c, apperror.New(http.StatusServiceUnavailable, "CV scanning is unavailable. Please try again later.", err))
				return
			}
			if verdict.Infected {
				logger.Log.Warn("CV upload rejected by malware scan",
					"filename", fh.Filename, "threat", verdict.Threat, "request_id", requestID(c))
				abortWith(c, fileError("Invalid CV file: malware detected"))
				return
			}
		}

		contentType := security.MIMEPDF
		if result.Extension == ".docx" {
			contentType = security.MIMEDOCX
		}

		path, err := store.Save(c.Request.Context(), storage.GenerateName(result.Extension), contentType, bytes.NewReader(data))
		if err != nil {
			abortWith(c, apperror.Internal(fmt.Errorf("store CV: %w", err)))
			return
		}
		c.Set(cvPathKey, path)

		c.Next()

		if len(c.Errors) > 0 || c.Writer.Status() >= http.StatusBadRequest {
			if err := store.Delete(context.WithoutCancel(c.Request.Context()), path); err != nil {
				logger.Log.Warn("failed to remove CV after failed request",
					"path", path, "error", err, "request_id", requestID(c))
			}
		}
	}
}

// CVFilePath returns the stored CV path for this request, or nil when no file
// was uploaded.
func CVFilePath(c *gin.Context) *string {
	v, ok := c.Get(cvPathKey)
	if !ok {
		return nil
	}
	path, ok := v.(string)
	if !ok || path == "" {
		return nil
	}
	return &path
}

func fileError(message string) *apperror.AppError {
	e := apperror.BadRequest(message)
	e.Errors = []apperror.FieldError{{Field: CVFormField, Message: message}}
	return e
}

func abortWith(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

func isBodyTooLarge(err error) bool {
	var maxBytes *http.MaxBytesError
	if errors.As(err, &maxBytes) {
		return true
	}
	return strings.Contains(err.Error(), "request body too large")
}

func humanBytes(n int64) string {
	const mb = 1 << 20
	if n%mb == 0 {
		return fmt.Sprintf("%d MB", n/mb)
	}
	return fmt.Sprintf("%d bytes", n)
}
