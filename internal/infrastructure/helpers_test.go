package infrastructure

import (
	"context"
	"errors"
	"io"
	"net"
	"net/url"
	"os"
	"strings"
	"syscall"
	"testing"
)

func TestMIMEFromImageFormat(t *testing.T) {
	tests := map[string]string{
		"jpeg": "image/jpeg",
		"png":  "image/png",
		"webp": "image/webp",
		"tiff": "image/tiff",
		"heic": "",
	}

	for format, want := range tests {
		if got := MIMEFromImageFormat(format); got != want {
			t.Errorf("MIMEFromImageFormat(%q) = %q, want %q", format, got, want)
		}
	}
}

func TestTransportErrorDetail(t *testing.T) {
	dnsErr := &url.Error{Op: "Get", URL: "http://bad.invalid/rx.jpg", Err: &net.OpError{
		Op:  "dial",
		Net: "tcp",
		Err: &net.DNSError{Err: "no such host", Name: "bad.invalid", Server: "10.255.255.53:53", IsNotFound: true},
	}}
	refused := &url.Error{Op: "Get", URL: "http://127.0.0.1:9/rx.jpg", Err: &net.OpError{
		Op:   "dial",
		Net:  "tcp",
		Addr: &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 9},
		Err:  os.NewSyscallError("connect", syscall.ECONNREFUSED),
	}}

	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "dns", err: dnsErr, want: `cannot resolve host "bad.invalid"`},
		{name: "refused", err: refused, want: "connection failed"},
		{name: "deadline", err: &url.Error{Op: "Get", URL: "http://x", Err: context.DeadlineExceeded}, want: "timed out"},
		{name: "canceled", err: context.Canceled, want: "request canceled"},
		{name: "truncated body", err: io.ErrUnexpectedEOF, want: "connection closed before the response was complete"},
		{name: "other", err: errors.New("tls: bad certificate from 10.0.0.7"), want: "request failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TransportErrorDetail(tt.err)
			if got != tt.want {
				t.Errorf("TransportErrorDetail() = %q, want %q", got, tt.want)
			}
			for _, leak := range []string{"10.255.255.53", "127.0.0.1", "10.0.0.7"} {
				if strings.Contains(got, leak) {
					t.Errorf("TransportErrorDetail() = %q leaks %s", got, leak)
				}
			}
		})
	}
}
