package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
)

// MIMEFromImageFormat maps a format name registered with package image to its MIME type.
// Unknown formats return "".
func MIMEFromImageFormat(format string) string {
	switch format {
	case "jpeg":
		return "image/jpeg"
	case "png":
		return "image/png"
	case "gif":
		return "image/gif"
	case "webp":
		return "image/webp"
	case "bmp":
		return "image/bmp"
	case "tiff":
		return "image/tiff"
	default:
		return ""
	}
}

// TransportErrorDetail describes a failed outbound HTTP call without resolver or socket
// addresses, so the text can be shown to callers. The raw error belongs in the logs.
func TransportErrorDetail(err error) string {
	var (
		dnsErr *net.DNSError
		opErr  *net.OpError
		netErr net.Error
	)

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "timed out"
	case errors.Is(err, context.Canceled):
		return "request canceled"
	case errors.As(err, &dnsErr):
		return fmt.Sprintf("cannot resolve host %q", dnsErr.Name)
	case errors.As(err, &netErr) && netErr.Timeout():
		return "timed out"
	case errors.As(err, &opErr):
		return "connection failed"
	case errors.Is(err, io.ErrUnexpectedEOF), errors.Is(err, io.EOF):
		return "connection closed before the response was complete"
	default:
		return "request failed"
	}
}
