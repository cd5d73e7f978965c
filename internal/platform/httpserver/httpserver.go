// Package httpserver builds the shared http.Server for the quoting API.
package httpserver

import (
	"net/http"
	"time"
)

// Rating a quote is CPU-bound and fast; the slow paths are quote creation,
// which fans out to the vehicle data provider (5s client timeout), and
// binding, which waits on the payment processor. The write timeout leaves
// headroom over both so a slow upstream surfaces as a domain error, not a
// severed connection.
const (
	readHeaderTimeout = 5 * time.Second
	readTimeout       = 10 * time.Second
	writeTimeout      = 20 * time.Second
	idleTimeout       = 2 * time.Minute
)

// New returns an http.Server wired with the timeouts above. Shutdown is the
// caller's responsibility.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
	}
}
