package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/url"

	"github.com/glasslab/go-glsdk/glsdk/constants"
	"github.com/glasslab/go-glsdk/glsdk/service"
)

// encodeBody serializes the request body according to its content type.
// Form bodies of GET requests are returned as a query string instead.
func encodeBody(req *service.Request) (body []byte, query string, err error) {
	if req.Body == nil {
		return nil, "", nil
	}

	switch req.ContentType {
	case constants.ContentTypeForm:
		values, err := formValues(req.Body)
		if err != nil {
			return nil, "", err
		}
		if req.Method == "GET" {
			return nil, values.Encode(), nil
		}
		return []byte(values.Encode()), "", nil
	default:
		data, err := json.Marshal(req.Body)
		if err != nil {
			return nil, "", fmt.Errorf("marshaling %s body: %w", req.APIKey, err)
		}
		return data, "", nil
	}
}

func formValues(body interface{}) (url.Values, error) {
	switch v := body.(type) {
	case url.Values:
		return v, nil
	case map[string]string:
		values := url.Values{}
		for key, value := range v {
			values.Set(key, value)
		}
		return values, nil
	}
	return nil, fmt.Errorf("form body must be url.Values or map[string]string, got %T", body)
}

func bodyReader(body []byte) io.Reader {
	if body == nil {
		return nil
	}
	return bytes.NewReader(body)
}
