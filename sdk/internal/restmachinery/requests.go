package restmachinery

import "io"

// OutboundRequest models a request to the CPPE API.
type OutboundRequest struct {
	Method      string
	Path        string
	QueryParams map[string]string
	Headers     map[string]string
	// ReqBodyObj may be nil, a []byte, an io.Reader, or any object that can be
	// marshaled to JSON.
	ReqBodyObj interface{}
	// ContentType overrides the default JSON content type. It is used, for
	// instance, by multipart upload endpoints.
	ContentType string
	// SuccessCode, when non-zero, is the only status code considered a
	// success. When zero, any 2xx status is a success.
	SuccessCode int
	// RespObj, when non-nil, receives the JSON-decoded response body.
	RespObj interface{}
	// RespWriter, when non-nil, receives the raw response body instead of
	// RespObj. It is used for binary downloads.
	RespWriter io.Writer
}
