package attachments

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/tokamak-network/pages-deployer/pkg/domain/entities"
)

var ErrInvalidAttachment = errors.New("invalid attachment")

const dataScheme = "data:"

// Decode turns request attachments into raw payloads keyed by name. Inline
// data URIs are decoded; anything else is kept verbatim as the URL text.
func Decode(items []entities.Attachment) (map[string][]byte, error) {
	decoded := make(map[string][]byte, len(items))
	for i, item := range items {
		name := strings.TrimSpace(item.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: attachment %d has no name", ErrInvalidAttachment, i)
		}
		if _, exists := decoded[name]; exists {
			return nil, fmt.Errorf("%w: duplicate attachment name %q", ErrInvalidAttachment, name)
		}

		if !IsDataURI(item.URL) {
			decoded[name] = []byte(item.URL)
			continue
		}

		payload, err := DecodeDataURI(item.URL)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidAttachment, name, err)
		}
		decoded[name] = payload
	}
	return decoded, nil
}

func IsDataURI(raw string) bool {
	return len(raw) >= len(dataScheme) && strings.EqualFold(raw[:len(dataScheme)], dataScheme)
}

// DecodeDataURI decodes data:[<mediatype>][;base64],<payload>.
func DecodeDataURI(raw string) ([]byte, error) {
	if !IsDataURI(raw) {
		return nil, errors.New("not a data URI")
	}
	header, payload, found := strings.Cut(raw[len(dataScheme):], ",")
	if !found {
		return nil, errors.New("data URI has no payload separator")
	}

	isBase64 := false
	for _, param := range strings.Split(header, ";") {
		if strings.EqualFold(strings.TrimSpace(param), "base64") {
			isBase64 = true
		}
	}

	if !isBase64 {
		text, err := url.PathUnescape(payload)
		if err != nil {
			return nil, fmt.Errorf("invalid percent-encoding: %w", err)
		}
		return []byte(text), nil
	}

	// Some clients strip padding or wrap lines.
	payload = strings.Map(func(r rune) rune {
		switch r {
		case '\n', '\r', ' ', '\t':
			return -1
		}
		return r
	}, payload)
	payload = strings.TrimRight(payload, "=")

	data, err := base64.RawStdEncoding.DecodeString(payload)
	if err != nil {
		// URL-safe alphabet is seen in the wild too.
		if alt, altErr := base64.RawURLEncoding.DecodeString(payload); altErr == nil {
			return alt, nil
		}
		return nil, fmt.Errorf("invalid base64 payload: %w", err)
	}
	return data, nil
}
