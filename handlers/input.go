package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"strings"

	"github.com/labstack/echo/v4"
)

const maxBodySize = 1 << 20 // 1MB

// bindInput reads the submitted form as a flat map. JSON bodies keep their
// numbers as json.Number so the validators see the exact text; form bodies
// use the first value of every key.
func bindInput(c echo.Context) (map[string]interface{}, error) {
	req := c.Request()
	ct := req.Header.Get(echo.HeaderContentType)

	if strings.HasPrefix(ct, echo.MIMEApplicationJSON) {
		body, err := io.ReadAll(io.LimitReader(req.Body, maxBodySize))
		if err != nil {
			return nil, err
		}
		input := map[string]interface{}{}
		if len(bytes.TrimSpace(body)) == 0 {
			return input, nil
		}
		dec := json.NewDecoder(bytes.NewReader(body))
		dec.UseNumber()
		if err := dec.Decode(&input); err != nil {
			return nil, err
		}
		return input, nil
	}

	params, err := c.FormParams()
	if err != nil {
		return nil, err
	}
	input := make(map[string]interface{}, len(params))
	for k, values := range params {
		if len(values) > 0 {
			input[k] = values[0]
		}
	}
	return input, nil
}
