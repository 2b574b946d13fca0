package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/Dharsan2024/AudioCryptor/models"
)

var ErrUploadTooLarge = errors.New("upload too large")

// StatusFor maps a failure from the audio or stego layers onto an HTTP status.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrCapacity), errors.Is(err, ErrUploadTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, models.ErrAuthentication):
		return http.StatusUnauthorized
	case errors.Is(err, models.ErrFormat), errors.Is(err, models.ErrTruncatedInput), errors.Is(err, models.ErrEncoding):
		return http.StatusUnprocessableEntity
	case errors.Is(err, models.ErrInvalidArgument):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// publicMessage hides internal failure details from clients.
func publicMessage(err error, status int) string {
	if status >= http.StatusInternalServerError {
		return "internal server error"
	}
	var capErr *models.CapacityError
	if errors.As(err, &capErr) {
		return fmt.Sprintf("message too large: need %d bytes, only %d available",
			(capErr.Required+7)/8, capErr.Available/8)
	}
	return err.Error()
}
