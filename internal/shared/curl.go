// Utilities for importing request headers from saved cURL commands.
//
// When the panel server sits behind an authenticating reverse proxy, users
// can copy a working request from their browser ("Copy as cURL") into a .sh
// file and point server.headers_file at it.
package shared

import (
	"fmt"
	"net/http"
	"os"
	"regexp"
	"strings"
)

// ProxyHeaders holds headers and a cookie extracted from a cURL command.
type ProxyHeaders struct {
	Headers map[string]string
	Cookie  string
}

var (
	curlHeaderRe = regexp.MustCompile(`-H\s+'([^']+)'|-H\s+"([^"]+)"`)
	curlCookieRe = regexp.MustCompile(`-b\s+'([^']+)'|-b\s+"([^"]+)"`)
)

// ParseCurlFile reads a file containing a cURL command and extracts its headers.
func ParseCurlFile(path string) (*ProxyHeaders, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read curl file: %w", err)
	}
	return ParseCurlCommand(content)
}

// ParseCurlCommand parses a cURL command string and extracts headers and the cookie.
func ParseCurlCommand(data []byte) (*ProxyHeaders, error) {
	cmd := string(data)
	cmd = strings.ReplaceAll(cmd, "\\\n", " ")
	cmd = strings.ReplaceAll(cmd, "\\", "")

	headers := make(map[string]string)
	var cookie string

	for _, match := range curlHeaderRe.FindAllStringSubmatch(cmd, -1) {
		line := match[1]
		if line == "" {
			line = match[2]
		}

		parts := strings.SplitN(line, ":", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		if strings.EqualFold(key, "cookie") {
			cookie = value
		} else {
			headers[key] = value
		}
	}

	if m := curlCookieRe.FindStringSubmatch(cmd); len(m) > 1 {
		if m[1] != "" {
			cookie = m[1]
		} else if m[2] != "" {
			cookie = m[2]
		}
	}

	if len(headers) == 0 && cookie == "" {
		return nil, fmt.Errorf("no headers found in curl command")
	}

	return &ProxyHeaders{Headers: headers, Cookie: cookie}, nil
}

// Apply sets the extracted headers (and cookie, if any) on an outgoing request.
//
// Host and content negotiation headers are skipped so they never override
// what the transport computes.
func (p *ProxyHeaders) Apply(req *http.Request) {
	for key, value := range p.Headers {
		switch strings.ToLower(key) {
		case "host", "content-length", "content-type", "accept-encoding":
			continue
		}
		req.Header.Set(key, value)
	}
	if p.Cookie != "" {
		req.Header.Set("Cookie", p.Cookie)
	}
}
