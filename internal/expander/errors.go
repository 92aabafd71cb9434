package expander

import (
	"errors"
	"fmt"
	"net/url"
)

// TooManyRedirectsError is returned when the redirect budget runs out.
// URI is the address that was about to be requested.
type TooManyRedirectsError struct {
	URI *url.URL
}

func (e *TooManyRedirectsError) Error() string {
	return fmt.Sprintf("%s redirected too many times", e.URI)
}

// BadShortenedURIError is returned when a URI on the shortener list answers without a redirect.
type BadShortenedURIError struct {
	URI *url.URL
}

func (e *BadShortenedURIError) Error() string {
	return fmt.Sprintf("following %s did not redirect", e.URI)
}

type Kind int

const (
	KindResolved Kind = iota
	KindTooManyRedirects
	KindBadShortenedURI
	KindTransport
)

func (k Kind) String() string {
	switch k {
	case KindResolved:
		return "resolved"
	case KindTooManyRedirects:
		return "too_many_redirects"
	case KindBadShortenedURI:
		return "bad_shortened_uri"
	default:
		return "transport_error"
	}
}

// KindOf classifies the error returned by ExpandStrict.
func KindOf(err error) Kind {
	if err == nil {
		return KindResolved
	}
	var tmr *TooManyRedirectsError
	if errors.As(err, &tmr) {
		return KindTooManyRedirects
	}
	var bad *BadShortenedURIError
	if errors.As(err, &bad) {
		return KindBadShortenedURI
	}
	return KindTransport
}

// Fold turns a strict outcome into the lenient one: the final URI on success,
// the last reached URI when the budget ran out and the original input otherwise.
func Fold(original *url.URL, expanded *url.URL, err error) *url.URL {
	if err == nil {
		if expanded == nil {
			return original
		}
		return expanded
	}
	var tmr *TooManyRedirectsError
	if errors.As(err, &tmr) && tmr.URI != nil {
		return tmr.URI
	}
	return original
}
