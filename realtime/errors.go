package realtime

import (
	"errors"
	"net"
	"strconv"
	"strings"

	"github.com/viant/firebridge/sdk"
)

// the admin client reports HTTP failures as "http error status: <code>; reason: <text>"
const httpStatusPrefix = "http error status: "

// databaseError converts admin client errors into typed database errors
func databaseError(err error) error {
	if err == nil {
		return nil
	}
	var dbErr *sdk.DatabaseError
	if errors.As(err, &dbErr) {
		return err
	}
	switch status := httpStatus(err); {
	case status == 401 || status == 403:
		return &sdk.DatabaseError{Code: sdk.DatabasePermissionDenied, Message: "Client doesn't have permission to access the desired data.", Details: err.Error()}
	case status == 503:
		return &sdk.DatabaseError{Code: sdk.DatabaseUnavailable, Message: "The service is unavailable.", Details: err.Error()}
	case status >= 400:
		return &sdk.DatabaseError{Code: sdk.DatabaseUnknown, Message: "The server responded with an error.", Details: err.Error()}
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return &sdk.DatabaseError{Code: sdk.DatabaseNetworkError, Message: "The operation could not be performed due to a network error.", Details: err.Error()}
	}
	return err
}

// httpStatus returns status code carried by err, or 0
func httpStatus(err error) int {
	message := err.Error()
	index := strings.Index(message, httpStatusPrefix)
	if index == -1 {
		return 0
	}
	digits := message[index+len(httpStatusPrefix):]
	end := 0
	for end < len(digits) && digits[end] >= '0' && digits[end] <= '9' {
		end++
	}
	status, err := strconv.Atoi(digits[:end])
	if err != nil {
		return 0
	}
	return status
}
