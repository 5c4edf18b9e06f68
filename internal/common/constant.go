package common

// MaxUploadSize is the largest report file the client will send, in bytes.
// Larger files fail locally with ErrFileTooLarge.
const MaxUploadSize = 10 << 20 // 10 MiB

// RequestIDHeader carries a client-generated id for request correlation.
const RequestIDHeader = "X-Request-Id"
