package footprints

import (
	"errors"
	"net/http"
	"strings"
	"time"
)

var (
	ErrDuplicate    = errors.New("footprint already exists")
	ErrInvalidInput = errors.New("invalid footprint input")
)

const unknown = "unknown"

// Headers are the request headers kept for audit.
type Headers struct {
	Referer        string `json:"referer,omitempty"`
	Origin         string `json:"origin,omitempty"`
	AcceptLanguage string `json:"acceptLanguage,omitempty"`
	AcceptEncoding string `json:"acceptEncoding,omitempty"`
	Accept         string `json:"accept,omitempty"`
	Host           string `json:"host,omitempty"`
	Connection     string `json:"connection,omitempty"`
	CacheControl   string `json:"cacheControl,omitempty"`
}

// RequestInfo describes the request line of a signing call.
type RequestInfo struct {
	Method   string `json:"method"`
	URL      string `json:"url"`
	Protocol string `json:"protocol"`
	Secure   bool   `json:"secure"`
}

// Provenance is the network and client metadata of a signing request.
type Provenance struct {
	IPAddress      string      `json:"ipAddress"`
	ForwardedIP    string      `json:"forwardedIp,omitempty"`
	RealIP         string      `json:"realIp,omitempty"`
	UserAgent      string      `json:"userAgent"`
	RequestHeaders Headers     `json:"requestHeaders"`
	RequestInfo    RequestInfo `json:"requestInfo"`
}

// Footprint is the immutable audit record of one signer completing a document.
type Footprint struct {
	ID         string `json:"id"`
	DocumentID string `json:"documentId"`
	ContactID  string `json:"contactId"`
	Provenance
	CreatedAt time.Time `json:"createdAt"`
}

// FromRequest captures provenance from r. clientIP is the address resolved by
// the router's trusted-proxy rules.
func FromRequest(r *http.Request, clientIP string) Provenance {
	if r == nil {
		return Provenance{IPAddress: unknown, UserAgent: unknown}
	}
	ip := strings.TrimSpace(clientIP)
	if ip == "" {
		ip = unknown
	}
	ua := strings.TrimSpace(r.UserAgent())
	if ua == "" {
		ua = unknown
	}
	h := r.Header
	scheme := "http"
	if r.TLS != nil || strings.EqualFold(h.Get("X-Forwarded-Proto"), "https") {
		scheme = "https"
	}
	return Provenance{
		IPAddress:   ip,
		ForwardedIP: h.Get("X-Forwarded-For"),
		RealIP:      h.Get("X-Real-IP"),
		UserAgent:   ua,
		RequestHeaders: Headers{
			Referer:        h.Get("Referer"),
			Origin:         h.Get("Origin"),
			AcceptLanguage: h.Get("Accept-Language"),
			AcceptEncoding: h.Get("Accept-Encoding"),
			Accept:         h.Get("Accept"),
			Host:           r.Host,
			Connection:     h.Get("Connection"),
			CacheControl:   h.Get("Cache-Control"),
		},
		RequestInfo: RequestInfo{
			Method:   r.Method,
			URL:      r.URL.RequestURI(),
			Protocol: scheme,
			Secure:   scheme == "https",
		},
	}
}
