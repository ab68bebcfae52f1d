package httpclient

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	apperrors "github.com/utafrali/storefront/pkg/errors"
)

// DownstreamErrorResponse matches the {"error":{"code","message"}} envelope
// used by our own services and the coupon rules engine.
type DownstreamErrorResponse struct {
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// ParseResponseError consumes and closes a non-2xx response body and
// translates it into an AppError. Structured bodies keep their message.
func ParseResponseError(resp *http.Response, serviceName string) error {
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return apperrors.RemoteCallFailed(
			fmt.Sprintf("%s returned status %d", serviceName, resp.StatusCode), err)
	}

	message := string(body)
	var downstream DownstreamErrorResponse
	if json.Unmarshal(body, &downstream) == nil && downstream.Error != nil {
		message = downstream.Error.Message
	}
	return mapStatus(resp.StatusCode, serviceName, message)
}

func mapStatus(status int, serviceName, message string) error {
	qualified := fmt.Sprintf("%s: %s", serviceName, message)

	switch status {
	case http.StatusNotFound:
		return apperrors.NotFound(serviceName, message)
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return apperrors.ValidationFailed(qualified)
	case http.StatusUnauthorized:
		return apperrors.Unauthenticated(qualified)
	case http.StatusForbidden:
		return apperrors.Forbidden(qualified)
	case http.StatusConflict:
		return apperrors.Conflict(qualified)
	default:
		return apperrors.RemoteCallFailed(qualified,
			fmt.Errorf("%s returned status %d", serviceName, status))
	}
}
