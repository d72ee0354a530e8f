// Package api implements the HTTP client for the panel server contract.
//
// All endpoints are JSON request/response except POST /api/generate, which is
// a multipart form, and the /play and /download byte streams. Every non-2xx
// response is decoded into the server's {ok:false, error} envelope and the
// message is surfaced verbatim, wrapped in [shared.ErrAPIRequest]; a non-JSON
// body becomes the message as-is.
//
// The [Client] is safe for concurrent use. Generation and download calls use
// a transport without the configured per-request timeout since inference runs
// for minutes; cancellation is the caller's context.
package api
