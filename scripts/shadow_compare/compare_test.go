package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/canvas-gateway-api/pkg/jobs"
)

func TestFieldsEqualUnwrapsEnvelope(t *testing.T) {
	goBody := []byte(`{"data":{"course_ids":[1,2,3]},"meta":{"processing_time_ms":4}}`)
	legacyBody := []byte(`{"status":"success","course_ids":[1.0,2,3]}`)

	match, err := fieldsEqual(goBody, "data.course_ids", legacyBody, "course_ids")
	require.NoError(t, err)
	assert.True(t, match)

	match, err = fieldsEqual(goBody, "data.missing", legacyBody, "course_ids")
	require.NoError(t, err)
	assert.False(t, match)
}

func TestFieldsEqualRejectsInvalidJSON(t *testing.T) {
	_, err := fieldsEqual([]byte(`<html>`), "data", []byte(`{}`), "")
	assert.Error(t, err)
}

func TestSelectField(t *testing.T) {
	doc := map[string]interface{}{"a": map[string]interface{}{"b": "c"}}

	v, ok := selectField(doc, "a.b")
	assert.True(t, ok)
	assert.Equal(t, "c", v)

	v, ok = selectField(doc, "")
	assert.True(t, ok)
	assert.Equal(t, doc, v)

	_, ok = selectField(doc, "a.b.c")
	assert.False(t, ok)
}

func TestBuildURLAddsUserIDToReads(t *testing.T) {
	u, err := buildURL("http://gw/api/canvas/", "all-classes", "u1", http.MethodGet)
	require.NoError(t, err)
	assert.Equal(t, "http://gw/api/canvas/all-classes?user_id=u1", u)

	u, err = buildURL("http://gw/api/canvas", "/init", "u1", http.MethodPost)
	require.NoError(t, err)
	assert.Equal(t, "http://gw/api/canvas/init", u)
}

func TestRequestBodyInjectsUserID(t *testing.T) {
	body := requestBody([]byte(`{"nickname":"Bio"}`), "u1")
	assert.JSONEq(t, `{"nickname":"Bio","user_id":"u1"}`, string(body))
}

func TestRunComparesBothBackends(t *testing.T) {
	gateway := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "u1", r.URL.Query().Get("user_id"))
		switch r.URL.Path {
		case "/all-courses-id":
			_, _ = w.Write([]byte(`{"data":{"course_ids":[7,8]}}`))
		case "/all-classes":
			_, _ = w.Write([]byte(`{"data":[{"id":7}]}`))
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":{"code":"NOT_FOUND"}}`))
		}
	}))
	defer gateway.Close()

	legacy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/all-courses-id":
			_, _ = w.Write([]byte(`{"status":"success","course_ids":[7,8]}`))
		case "/all-classes":
			_, _ = w.Write([]byte(`{"data":[{"id":9}],"error":null}`))
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":"No courses found"}`))
		}
	}))
	defer legacy.Close()

	cmp := &comparer{client: gateway.Client(), goBase: gateway.URL, legacyBase: legacy.URL, userID: "u1"}
	targets := []target{
		{Method: http.MethodGet, Path: "/all-courses-id", GoField: "data.course_ids", LegacyField: "course_ids", Critical: true},
		{Method: http.MethodGet, Path: "/all-classes", GoField: "data", LegacyField: "data"},
		{Method: http.MethodGet, Path: "/announcements", Critical: true},
	}

	pool := jobs.NewPool[comparison]("shadow_compare_test", jobs.PoolConfig{MaxWorkers: 2})
	results := cmp.run(context.Background(), pool, targets)
	require.Len(t, results, 3)

	assert.Equal(t, "OK", results[0].verdict())
	assert.Equal(t, "DIFF", results[1].verdict())
	assert.Equal(t, "OK", results[2].verdict())
	assert.Equal(t, http.StatusNotFound, results[2].GoStatus)

	breaking, optional := tally(results)
	assert.Equal(t, 0, breaking)
	assert.Equal(t, 1, optional)
}
