package test_utils

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type TestResponse struct {
	StatusCode int
	Body       []byte
	Headers    http.Header
}

func MakeGetRequest(
	t *testing.T,
	router *gin.Engine,
	url string,
	expectedStatus int,
) *TestResponse {
	t.Helper()

	return makeRequest(t, router, http.MethodGet, url, nil, expectedStatus)
}

func MakeGetRequestAndUnmarshal(
	t *testing.T,
	router *gin.Engine,
	url string,
	expectedStatus int,
	responseStruct any,
) {
	t.Helper()

	response := MakeGetRequest(t, router, url, expectedStatus)
	require.NoError(t, json.Unmarshal(response.Body, responseStruct), "body: %s", response.Body)
}

func MakePostRequest(
	t *testing.T,
	router *gin.Engine,
	url string,
	body any,
	expectedStatus int,
) *TestResponse {
	t.Helper()

	return makeRequest(t, router, http.MethodPost, url, body, expectedStatus)
}

func MakePostRequestAndUnmarshal(
	t *testing.T,
	router *gin.Engine,
	url string,
	body any,
	expectedStatus int,
	responseStruct any,
) {
	t.Helper()

	response := MakePostRequest(t, router, url, body, expectedStatus)
	require.NoError(t, json.Unmarshal(response.Body, responseStruct), "body: %s", response.Body)
}

func makeRequest(
	t *testing.T,
	router *gin.Engine,
	method string,
	url string,
	body any,
	expectedStatus int,
) *TestResponse {
	t.Helper()

	var requestBody *bytes.Reader
	switch typedBody := body.(type) {
	case nil:
		requestBody = bytes.NewReader(nil)
	case []byte:
		requestBody = bytes.NewReader(typedBody)
	case string:
		requestBody = bytes.NewReader([]byte(typedBody))
	default:
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		requestBody = bytes.NewReader(encoded)
	}

	request := httptest.NewRequest(method, url, requestBody)
	if body != nil {
		request.Header.Set("Content-Type", "application/json")
	}

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, request)

	assert.Equal(t, expectedStatus, recorder.Code, "body: %s", recorder.Body.String())

	return &TestResponse{
		StatusCode: recorder.Code,
		Body:       recorder.Body.Bytes(),
		Headers:    recorder.Header(),
	}
}
