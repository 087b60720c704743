package cloudpay

import (
	"net/http"
)

// Response is a decoded gateway response.
type Response struct {
	StatusCode int
	Header     http.Header

	// Body is the decoded payload for JSON content types and the raw text
	// otherwise.
	Body any

	raw []byte
}

func newResponse(status int, header http.Header, raw []byte) (*Response, error) {
	body, err := DecodeBody(header.Get("Content-Type"), raw)
	if err != nil {
		return nil, err
	}
	return &Response{StatusCode: status, Header: header, Body: body, raw: raw}, nil
}

// OriginBody returns the undecoded body bytes as text.
func (r *Response) OriginBody() string {
	return string(r.raw)
}

// Result wraps the decoded body. Non-object bodies yield an empty, failed
// result.
func (r *Response) Result() *Result {
	data, _ := r.Body.(map[string]any)
	return NewResult(data)
}
