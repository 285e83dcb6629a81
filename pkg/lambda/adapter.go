package lambda

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"

	"github.com/gin-gonic/gin"
)

// GinAdapter drives a gin engine with API Gateway events, so the Lambda
// binaries serve the same routes as the local dev server.
type GinAdapter struct {
	engine *gin.Engine
}

// NewGinAdapter wraps a gin engine for Lambda use
func NewGinAdapter(engine *gin.Engine) *GinAdapter {
	return &GinAdapter{engine: engine}
}

// Handle converts the event into an http.Request, runs it through the
// engine and converts the recorded result back.
func (a *GinAdapter) Handle(ctx context.Context, req *Request) (*Response, error) {
	httpReq, err := a.toHTTPRequest(ctx, req)
	if err != nil {
		return nil, err
	}

	recorder := httptest.NewRecorder()
	a.engine.ServeHTTP(recorder, httpReq)

	headers := make(map[string]string, len(recorder.Header()))
	for key, values := range recorder.Header() {
		if len(values) > 0 {
			headers[key] = values[0]
		}
	}

	return &Response{
		StatusCode: recorder.Code,
		Headers:    headers,
		Body:       recorder.Body.Bytes(),
	}, nil
}

func (a *GinAdapter) toHTTPRequest(ctx context.Context, req *Request) (*http.Request, error) {
	target := url.URL{Path: req.Path}
	if len(req.QueryParams) > 0 {
		query := url.Values{}
		for key, value := range req.QueryParams {
			query.Set(key, value)
		}
		target.RawQuery = query.Encode()
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target.String(), bytes.NewReader(req.Body))
	if err != nil {
		return nil, err
	}

	for key, value := range req.Headers {
		httpReq.Header.Set(key, value)
	}
	if httpReq.Header.Get("Content-Type") == "" && len(req.Body) > 0 {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	return httpReq, nil
}
