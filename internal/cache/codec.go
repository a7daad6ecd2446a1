package cache

import (
	"bytes"
	"encoding/json"
	"errors"

	"github.com/preston-bernstein/ntrp-rating-service/internal/domain"
)

// Codec converts store values to and from the bytes a Backend keeps.
type Codec[V any] struct {
	Encode func(V) ([]byte, error)
	Decode func([]byte) (V, error)
}

// JSONCodec encodes values as JSON. Invalid UTF-8 in strings does not survive it,
// so page bodies use PageCodec instead.
func JSONCodec[V any]() Codec[V] {
	return Codec[V]{
		Encode: func(v V) ([]byte, error) { return json.Marshal(v) },
		Decode: func(b []byte) (V, error) {
			var v V
			err := json.Unmarshal(b, &v)
			return v, err
		},
	}
}

// PageCodec stores a page body byte for byte.
func PageCodec() Codec[string] {
	return Codec[string]{
		Encode: func(body string) ([]byte, error) { return []byte(body), nil },
		Decode: func(b []byte) (string, error) { return string(b), nil },
	}
}

var errMalformedCandidatePage = errors.New("malformed candidate page entry")

// CandidatePageCodec stores the page URL, a newline, then the raw body.
func CandidatePageCodec() Codec[domain.CandidatePage] {
	return Codec[domain.CandidatePage]{
		Encode: func(p domain.CandidatePage) ([]byte, error) {
			if bytes.ContainsAny([]byte(p.URL), "\r\n") {
				return nil, errMalformedCandidatePage
			}
			return append([]byte(p.URL+"\n"), p.Body...), nil
		},
		Decode: func(b []byte) (domain.CandidatePage, error) {
			url, body, ok := bytes.Cut(b, []byte("\n"))
			if !ok {
				return domain.CandidatePage{}, errMalformedCandidatePage
			}
			return domain.CandidatePage{URL: string(url), Body: string(body)}, nil
		},
	}
}
