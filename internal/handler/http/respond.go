package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/utafrali/storefront/internal/notice"
	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/httputil"
	"github.com/utafrali/storefront/pkg/validator"
)

// Notices gives every request a notice collector so the response can carry
// the notifications raised while serving it.
func Notices(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, _ := notice.WithCollector(r.Context())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func collected(r *http.Request) []notice.Notice {
	if c := notice.CollectorFrom(r.Context()); c != nil {
		if n := c.Notices(); len(n) > 0 {
			return n
		}
	}
	return nil
}

func writeData(w http.ResponseWriter, r *http.Request, status int, data any) {
	resp := httputil.Response{Data: data}
	if n := collected(r); n != nil {
		resp.Notices = n
	}
	httputil.WriteJSON(w, status, resp)
}

func writeError(w http.ResponseWriter, r *http.Request, err error, logger *slog.Logger) {
	status, body := httputil.ErrorBody(r, err, logger)
	resp := httputil.Response{Error: body}
	if n := collected(r); n != nil {
		resp.Notices = n
	}
	httputil.WriteJSON(w, status, resp)
}

// decode reads and validates a JSON body. Malformed JSON is a validation
// failure rather than an internal error.
func decode(r *http.Request, dst any) error {
	err := validator.DecodeAndValidate(r, dst)
	if err == nil {
		return nil
	}
	var valErr *validator.ValidationError
	if errors.As(err, &valErr) {
		return err
	}
	return apperrors.ValidationFailed("invalid request body")
}
