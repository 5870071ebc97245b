// Package api contains the HTTP transport used to talk to the game services backend
package api

import (
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"

	"github.com/glasslab/go-glsdk/glsdk/conf"
	"github.com/glasslab/go-glsdk/glsdk/dtos"
	"github.com/glasslab/go-glsdk/glsdk/service"
	"github.com/splitio/go-toolkit/v5/logging"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const defaultHTTPTimeout = 30

const tracerName = "github.com/glasslab/go-glsdk/glsdk/service/api"

// HTTPTransport structure to wrap up the net/http.Client
type HTTPTransport struct {
	options    *conf.Store
	httpClient *http.Client
	logger     logging.LoggerInterface
	metadata   dtos.Metadata
	tracer     trace.Tracer
}

// NewHTTPTransport instance of HTTPTransport. The base URI and game secret are read from
// the options store on every request so runtime option changes apply to the next call.
func NewHTTPTransport(
	cfg *conf.SdkConfig,
	options *conf.Store,
	metadata dtos.Metadata,
	logger logging.LoggerInterface,
) *HTTPTransport {
	var timeout int
	if cfg.Advanced.HTTPTimeout != 0 {
		timeout = cfg.Advanced.HTTPTimeout
	} else {
		timeout = defaultHTTPTimeout
	}

	// The session cookie set by login must travel with every following call
	jar, _ := cookiejar.New(nil)
	client := &http.Client{Timeout: time.Duration(timeout) * time.Second, Jar: jar}
	return &HTTPTransport{
		options:    options,
		httpClient: client,
		logger:     logger,
		metadata:   metadata,
		tracer:     otel.Tracer(tracerName),
	}
}

// Send performs the HTTP request described by req
func (c *HTTPTransport) Send(ctx context.Context, req *service.Request) (*service.Response, error) {
	opts := c.options.Get()
	serviceURL := strings.TrimRight(opts.URI, "/") + req.Path

	ctx, span := c.tracer.Start(ctx, "glsdk."+req.APIKey,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("glsdk.api_key", req.APIKey),
			attribute.String("http.request.method", req.Method),
			attribute.String("url.full", serviceURL),
		),
	)
	defer span.End()

	body, query, err := encodeBody(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if query != "" {
		if strings.Contains(serviceURL, "?") {
			serviceURL += "&" + query
		} else {
			serviceURL += "?" + query
		}
	}

	c.logger.Debug(fmt.Sprintf("[%s] %s", req.Method, serviceURL))
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, serviceURL, bodyReader(body))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	httpReq.Header.Add("Accept-Encoding", "gzip")
	if req.ContentType != "" {
		httpReq.Header.Add("Content-Type", req.ContentType)
	}
	httpReq.Header.Add("GLSDK-Version", c.metadata.SDKVersion)
	if c.metadata.MachineIP != "" {
		httpReq.Header.Add("GLSDK-Machine-IP", c.metadata.MachineIP)
	}
	if c.metadata.MachineName != "" {
		httpReq.Header.Add("GLSDK-Machine-Name", c.metadata.MachineName)
	}
	c.logger.Debug(fmt.Sprintf("Headers: %v", httpReq.Header))

	if opts.GameSecret != "" {
		httpReq.Header.Add("Game-Secret", opts.GameSecret)
	}

	if body != nil {
		c.logger.Verbose("[REQUEST_BODY]", string(body), "[END_REQUEST_BODY]")
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.logger.Error("Error requesting data to API: ", httpReq.URL.String(), err.Error())
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	defer resp.Body.Close()

	// Check that the server actually sent compressed data
	var reader io.ReadCloser
	switch resp.Header.Get("Content-Encoding") {
	case "gzip":
		reader, err = gzip.NewReader(resp.Body)
		if err != nil {
			c.logger.Error("Error decompressing response: ", err.Error())
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
		defer reader.Close()
	default:
		reader = resp.Body
	}

	respBody, err := io.ReadAll(reader)
	if err != nil {
		c.logger.Error(err.Error())
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	c.logger.Verbose("[RESPONSE_BODY]", string(respBody), "[END_RESPONSE_BODY]")

	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))
	if !service.IsSuccess(resp.StatusCode) {
		span.SetStatus(codes.Error, resp.Status)
	}

	return &service.Response{StatusCode: resp.StatusCode, Body: respBody}, nil
}
