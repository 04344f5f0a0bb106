package codec

import (
	"fmt"
	"net/url"
)

// QueryParam is the query parameter a share link carries its token in.
const QueryParam = "fable"

// ShareLink embeds token in base as the fable query parameter, keeping any
// other parameters base already has. The token is URL-safe, so it appears in
// the link verbatim.
func ShareLink(base, token string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid base URL: %w", err)
	}

	q := u.Query()
	q.Set(QueryParam, token)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// TokenFromLink extracts the token from a share link.
func TokenFromLink(link string) (string, error) {
	u, err := url.Parse(link)
	if err != nil {
		return "", fmt.Errorf("invalid link: %w", err)
	}

	token := u.Query().Get(QueryParam)
	if token == "" {
		return "", ErrNoToken
	}
	return token, nil
}
