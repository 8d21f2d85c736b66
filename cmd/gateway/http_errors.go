package main

import (
	"encoding/json"
	"errors"
	"net/http"

	checkoutgrpc "github.com/dwikikusuma/storefront/internal/checkout/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Reason  string            `json:"reason,omitempty"`
	Details map[string]string `json:"details,omitempty"`
}

// httpStatusFromGRPC maps a gRPC error to an HTTP status, a stable error
// code and a client-safe message.
func httpStatusFromGRPC(err error) (int, string, string) {
	st, ok := status.FromError(err)
	if !ok {
		return http.StatusInternalServerError, "INTERNAL", "internal error"
	}

	switch st.Code() {
	case codes.InvalidArgument, codes.OutOfRange:
		return http.StatusBadRequest, "INVALID_ARGUMENT", st.Message()
	case codes.NotFound:
		return http.StatusNotFound, "NOT_FOUND", st.Message()
	case codes.Unauthenticated:
		return http.StatusUnauthorized, "UNAUTHENTICATED", st.Message()
	case codes.PermissionDenied:
		return http.StatusForbidden, "PERMISSION_DENIED", st.Message()
	case codes.FailedPrecondition:
		return http.StatusUnprocessableEntity, "FAILED_PRECONDITION", st.Message()
	case codes.AlreadyExists, codes.Aborted:
		return http.StatusConflict, "CONFLICT", st.Message()
	case codes.ResourceExhausted:
		return http.StatusTooManyRequests, "RESOURCE_EXHAUSTED", st.Message()
	case codes.Unavailable, codes.DeadlineExceeded:
		return http.StatusServiceUnavailable, "UNAVAILABLE", "service temporarily unavailable"
	case codes.Canceled:
		return 499, "CANCELED", st.Message()
	default:
		return http.StatusInternalServerError, "INTERNAL", "internal error"
	}
}

func writeError(w http.ResponseWriter, err error) {
	httpStatus, code, msg := httpStatusFromGRPC(err)
	body := errorBody{Error: errorDetail{Code: code, Message: msg}}
	if info, ok := checkoutgrpc.RejectionInfo(err); ok {
		body.Error.Reason = info.GetReason()
		body.Error.Details = info.GetMetadata()
	}
	writeJSON(w, httpStatus, body)
}

// errBadRequest is used for payloads rejected before any RPC is made.
func errBadRequest(msg string) error {
	return status.Error(codes.InvalidArgument, msg)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return errBadRequest("request body too large")
		}
		return errBadRequest("malformed JSON body")
	}
	return nil
}
