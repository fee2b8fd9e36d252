package editable

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
)

// Transport submits exported data for network-backed targets.
type Transport interface {
	// Post sends data to url and returns the response body. Non-2xx
	// responses are reported as *HTTPError.
	Post(ctx context.Context, url string, data Data) ([]byte, error)
}

// Codec selects the request body encoding of HTTPTransport.
type Codec int

const (
	CodecForm Codec = iota
	CodecMsgpack
)

// HTTPTransport posts data with net/http.
type HTTPTransport struct {
	Client *http.Client
	Codec  Codec
	Header http.Header
}

// Post implements Transport.
func (t *HTTPTransport) Post(ctx context.Context, target string, data Data) ([]byte, error) {
	body, contentType, err := t.encode(data)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", contentType)
	for k, vs := range t.Header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	client := t.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	out, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return out, &HTTPError{
			Status:     resp.StatusCode,
			StatusText: http.StatusText(resp.StatusCode),
			Payload:    data,
		}
	}
	return out, nil
}

func (t *HTTPTransport) encode(data Data) ([]byte, string, error) {
	if t.Codec == CodecMsgpack {
		b, err := msgpack.Marshal(map[string]any(data))
		return b, "application/msgpack", err
	}
	return []byte(formEncode(data)), "application/x-www-form-urlencoded", nil
}

// formEncode flattens data into url-encoded form values. Nested maps use
// bracket keys.
func formEncode(data Data) string {
	vals := url.Values{}
	var add func(prefix string, v any)
	add = func(prefix string, v any) {
		switch t := v.(type) {
		case map[string]string:
			for k, s := range t {
				vals.Add(prefix+"["+k+"]", s)
			}
		case map[string]any:
			for k, s := range t {
				add(prefix+"["+k+"]", s)
			}
		case Data:
			add(prefix, map[string]any(t))
		case []string:
			for _, s := range t {
				vals.Add(prefix+"[]", s)
			}
		default:
			vals.Add(prefix, toString(v))
		}
	}
	for k, v := range data {
		add(k, v)
	}
	return vals.Encode()
}

// transportFailure converts a transport error into the HTTPError reported by
// targets. Errors without a response use status 0 and the error text.
func transportFailure(err error, data Data) *HTTPError {
	var he *HTTPError
	if !errors.As(err, &he) {
		he = &HTTPError{StatusText: strings.TrimSpace(fmt.Sprint(err))}
	}
	if he.Payload == nil {
		he.Payload = data
	}
	return he
}
