package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/noah-isme/canvas-gateway-api/pkg/jobs"
)

// target is one endpoint exercised on both backends. GoField and LegacyField are
// dot paths selecting the part of each body that must agree; the gateway wraps
// payloads in an envelope while the legacy service returns them at top level.
type target struct {
	Method      string          `json:"method"`
	Path        string          `json:"path"`
	Body        json.RawMessage `json:"body,omitempty"`
	GoField     string          `json:"go_field"`
	LegacyField string          `json:"legacy_field"`
	Critical    bool            `json:"critical"`
}

type targetsFile struct {
	Targets []target `json:"targets"`
}

type comparison struct {
	Target         target
	LegacyStatus   int
	GoStatus       int
	StatusMatch    bool
	BodyMatch      bool
	Error          error
	DurationGo     time.Duration
	DurationLegacy time.Duration
}

func (c comparison) verdict() string {
	switch {
	case c.Error != nil:
		return "ERROR"
	case !c.StatusMatch || !c.BodyMatch:
		return "DIFF"
	default:
		return "OK"
	}
}

type comparer struct {
	client     *http.Client
	goBase     string
	legacyBase string
	userID     string
}

func loadTargets(path string) ([]target, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg targetsFile
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	if len(cfg.Targets) == 0 {
		return nil, fmt.Errorf("no targets defined in %s", path)
	}
	return cfg.Targets, nil
}

// run compares every target, keeping the input order in the result.
func (c *comparer) run(ctx context.Context, pool *jobs.Pool[comparison], targets []target) []comparison {
	tasks := make([]jobs.Task[comparison], len(targets))
	index := make(map[string]int, len(targets))
	for i, tgt := range targets {
		tgt := tgt
		id := fmt.Sprintf("%d", i)
		index[id] = i
		tasks[i] = jobs.Task[comparison]{
			ID: id,
			Run: func(ctx context.Context) (comparison, error) {
				return c.compare(ctx, tgt), nil
			},
		}
	}

	results := make([]comparison, len(targets))
	pool.Run(ctx, tasks, func(out jobs.Outcome[comparison]) {
		i := index[out.TaskID]
		if out.Err != nil {
			results[i] = comparison{Target: targets[i], Error: out.Err}
			return
		}
		results[i] = out.Value
	})
	return results
}

func (c *comparer) compare(ctx context.Context, tgt target) comparison {
	comp := comparison{Target: tgt}

	goStatus, goBody, goDur, goErr := c.perform(ctx, c.goBase, tgt)
	legacyStatus, legacyBody, legacyDur, legacyErr := c.perform(ctx, c.legacyBase, tgt)
	comp.DurationGo = goDur
	comp.DurationLegacy = legacyDur

	if goErr != nil {
		comp.Error = fmt.Errorf("go request failed: %w", goErr)
		return comp
	}
	if legacyErr != nil {
		comp.Error = fmt.Errorf("legacy request failed: %w", legacyErr)
		return comp
	}

	comp.GoStatus = goStatus
	comp.LegacyStatus = legacyStatus
	comp.StatusMatch = goStatus == legacyStatus

	// Error bodies use different shapes on each side; only successful
	// payloads are compared.
	if goStatus >= http.StatusBadRequest {
		comp.BodyMatch = comp.StatusMatch
		return comp
	}

	match, err := fieldsEqual(goBody, tgt.GoField, legacyBody, tgt.LegacyField)
	if err != nil {
		comp.Error = err
		return comp
	}
	comp.BodyMatch = match
	return comp
}

func (c *comparer) perform(ctx context.Context, base string, tgt target) (int, []byte, time.Duration, error) {
	if c.client == nil {
		return 0, nil, 0, errors.New("nil client")
	}
	method := strings.ToUpper(strings.TrimSpace(tgt.Method))
	if method == "" {
		method = http.MethodGet
	}

	endpoint, err := buildURL(base, tgt.Path, c.userID, method)
	if err != nil {
		return 0, nil, 0, err
	}

	var body io.Reader
	if method != http.MethodGet {
		body = bytes.NewReader(requestBody(tgt.Body, c.userID))
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return 0, nil, 0, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return 0, nil, 0, err
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, 0, fmt.Errorf("read body: %w", err)
	}
	return resp.StatusCode, payload, time.Since(start), nil
}

func buildURL(base, path, userID, method string) (string, error) {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	parsed, err := url.Parse(strings.TrimRight(base, "/") + path)
	if err != nil {
		return "", err
	}
	if method == http.MethodGet {
		query := parsed.Query()
		query.Set("user_id", userID)
		parsed.RawQuery = query.Encode()
	}
	return parsed.String(), nil
}

// requestBody injects user_id into the JSON object sent with write requests.
func requestBody(raw json.RawMessage, userID string) []byte {
	fields := map[string]interface{}{}
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &fields)
	}
	fields["user_id"] = userID
	encoded, _ := json.Marshal(fields)
	return encoded
}

func fieldsEqual(goBody []byte, goField string, legacyBody []byte, legacyField string) (bool, error) {
	var goDoc, legacyDoc interface{}
	if err := json.Unmarshal(goBody, &goDoc); err != nil {
		return false, fmt.Errorf("decode go body: %w", err)
	}
	if err := json.Unmarshal(legacyBody, &legacyDoc); err != nil {
		return false, fmt.Errorf("decode legacy body: %w", err)
	}

	goValue, ok := selectField(goDoc, goField)
	if !ok {
		return false, nil
	}
	legacyValue, ok := selectField(legacyDoc, legacyField)
	if !ok {
		return false, nil
	}

	normalize(&goValue)
	normalize(&legacyValue)
	return reflect.DeepEqual(goValue, legacyValue), nil
}

// selectField walks a dot path through nested objects. An empty path selects the document.
func selectField(doc interface{}, path string) (interface{}, bool) {
	if path == "" {
		return doc, true
	}
	current := doc
	for _, key := range strings.Split(path, ".") {
		obj, ok := current.(map[string]interface{})
		if !ok {
			return nil, false
		}
		current, ok = obj[key]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

func normalize(v *interface{}) {
	switch val := (*v).(type) {
	case map[string]interface{}:
		for k, v2 := range val {
			normalize(&v2)
			val[k] = v2
		}
	case []interface{}:
		for i, v2 := range val {
			normalize(&v2)
			val[i] = v2
		}
	case float64:
		if val == float64(int64(val)) {
			*v = int64(val)
		}
	}
}

func tally(results []comparison) (breaking, optional int) {
	for _, res := range results {
		if res.verdict() == "OK" {
			continue
		}
		if res.Target.Critical {
			breaking++
		} else {
			optional++
		}
	}
	return breaking, optional
}
