package html2pdf

import (
	"encoding/base64"
	"fmt"
	"net/url"
	"strings"
)

const dataScheme = "data:"

// isBase64DataURL reports whether rawURL is a data URL with a ;base64 parameter.
func isBase64DataURL(rawURL string) bool {
	if !hasPrefixFold(rawURL, dataScheme) {
		return false
	}
	header, _, ok := strings.Cut(rawURL[len(dataScheme):], ",")
	if !ok {
		return false
	}
	_, isBase64 := splitDataHeader(header)
	return isBase64
}

// decodeDataURL decodes an RFC 2397 data URL into its media type and payload.
func decodeDataURL(rawURL string) (string, []byte, error) {
	if !hasPrefixFold(rawURL, dataScheme) {
		return "", nil, fmt.Errorf("%w: not a data URL: %q", ErrInvalidURL, rawURL)
	}
	header, payload, ok := strings.Cut(rawURL[len(dataScheme):], ",")
	if !ok {
		return "", nil, fmt.Errorf("%w: data URL without payload separator", ErrInvalidURL)
	}

	mediaType, isBase64 := splitDataHeader(header)

	if !isBase64 {
		text, err := url.PathUnescape(payload)
		if err != nil {
			return "", nil, fmt.Errorf("%w: data URL payload: %v", ErrInvalidURL, err)
		}
		return mediaType, []byte(text), nil
	}

	// Base64 payloads may still be percent-encoded or lack padding.
	if unescaped, err := url.PathUnescape(payload); err == nil {
		payload = unescaped
	}
	payload = strings.Map(func(r rune) rune {
		if r == ' ' || r == '\n' || r == '\r' || r == '\t' {
			return -1
		}
		return r
	}, payload)

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		data, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "="))
		if err != nil {
			return "", nil, fmt.Errorf("%w: data URL base64 payload: %v", ErrInvalidURL, err)
		}
	}
	return mediaType, data, nil
}

// splitDataHeader returns the media type (with parameters other than base64)
// and whether the base64 flag is present. An empty media type defaults to
// text/plain;charset=US-ASCII.
func splitDataHeader(header string) (string, bool) {
	parts := strings.Split(header, ";")
	mediaType := strings.TrimSpace(parts[0])

	var params []string
	isBase64 := false
	for _, p := range parts[1:] {
		p = strings.TrimSpace(p)
		if strings.EqualFold(p, "base64") {
			isBase64 = true
			continue
		}
		if p != "" {
			params = append(params, p)
		}
	}

	if mediaType == "" {
		mediaType = "text/plain"
		if len(params) == 0 {
			params = []string{"charset=US-ASCII"}
		}
	}
	if len(params) > 0 {
		mediaType += ";" + strings.Join(params, ";")
	}
	return mediaType, isBase64
}

// hasPrefixFold is strings.HasPrefix ignoring ASCII case.
func hasPrefixFold(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}
