package httpx

import (
	"net"
	"net/http"
	"time"
)

// streamClient relays book files from object storage. Bodies can be large, so
// only the wait for response headers is bounded; the caller's context bounds
// the rest.
var streamClient = &http.Client{
	Transport: &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   5 * time.Second,
		ResponseHeaderTimeout: 15 * time.Second,
		MaxIdleConns:          100,
		MaxConnsPerHost:       100,
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       90 * time.Second,
	},
}

func Streaming() *http.Client { return streamClient }
