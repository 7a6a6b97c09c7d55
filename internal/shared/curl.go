// Utilities for reusing browser request headers captured as a cURL command.
package shared

import (
	"fmt"
	"net/http"
	"os"
	"regexp"
	"sort"
	"strings"
)

var (
	curlHeaderRe = regexp.MustCompile(`-H\s+'([^']+)'|-H\s+"([^"]+)"`)
	curlCookieRe = regexp.MustCompile(`(?:-b|--cookie)\s+'([^']+)'|(?:-b|--cookie)\s+"([^"]+)"`)
)

// CurlHeaders holds the headers and cookie of a "Copy as cURL" dump.
type CurlHeaders struct {
	Headers map[string]string
	Cookie  string
}

// ParseCurlFile reads a file containing a cURL command and extracts its headers.
func ParseCurlFile(path string) (*CurlHeaders, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read curl file: %w", err)
	}
	return ParseCurlCommand(content)
}

// ParseCurlCommand extracts -H headers and the cookie from a cURL command.
//
// A cookie passed with -b wins over a Cookie header.
func ParseCurlCommand(data []byte) (*CurlHeaders, error) {
	cmd := strings.ReplaceAll(string(data), "\\\n", " ")
	cmd = strings.ReplaceAll(cmd, "\\", "")

	result := &CurlHeaders{Headers: make(map[string]string)}
	var headerCookie string

	for _, match := range curlHeaderRe.FindAllStringSubmatch(cmd, -1) {
		key, value, ok := strings.Cut(firstGroup(match), ":")
		if !ok {
			continue
		}
		key, value = strings.TrimSpace(key), strings.TrimSpace(value)

		if strings.EqualFold(key, "cookie") {
			if headerCookie == "" {
				headerCookie = value
			}
			continue
		}
		result.Headers[key] = value
	}

	if m := curlCookieRe.FindStringSubmatch(cmd); m != nil {
		result.Cookie = firstGroup(m)
	}
	if result.Cookie == "" {
		result.Cookie = headerCookie
	}

	if len(result.Headers) == 0 && result.Cookie == "" {
		return nil, fmt.Errorf("no headers found in curl command")
	}
	return result, nil
}

// Apply sets the captured headers and cookie on req.
//
// User-Agent is left alone when req already carries one so configuration keeps precedence.
func (c *CurlHeaders) Apply(req *http.Request) {
	if c == nil {
		return
	}

	keys := make([]string, 0, len(c.Headers))
	for k := range c.Headers {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if strings.EqualFold(k, "user-agent") && req.Header.Get("User-Agent") != "" {
			continue
		}
		// Transport negotiates compression itself; a copied value would disable decoding.
		if strings.EqualFold(k, "accept-encoding") {
			continue
		}
		req.Header.Set(k, c.Headers[k])
	}

	if c.Cookie != "" {
		req.Header.Set("Cookie", c.Cookie)
	}
}

func firstGroup(match []string) string {
	if match[1] != "" {
		return match[1]
	}
	return match[2]
}
