// Package tablexrest implements tablex.Client against a PostgREST endpoint,
// the table API of hosted backend-as-a-service stores. Requests carry the
// project API key and, when the caller attached one, the end user's access
// token so row-level security policies apply to that user.
package tablexrest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/growindia/jobs/pkg/tablex"
	"github.com/valyala/fasthttp"
)

// Config holds connection settings for a PostgREST endpoint
type Config struct {
	BaseURL string // project URL, without the /rest/v1 suffix
	AnonKey string
	Timeout time.Duration // used when the context carries no deadline
}

// Client implements tablex.Client over HTTP
type Client struct {
	http    *fasthttp.Client
	base    string
	anonKey string
	timeout time.Duration
}

var _ tablex.Client = (*Client)(nil)

// New creates a PostgREST table client
func New(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		http: &fasthttp.Client{
			Name:                "growindia-jobs",
			ReadTimeout:         timeout,
			WriteTimeout:        timeout,
			MaxIdleConnDuration: time.Minute,
		},
		base:    strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/") + "/rest/v1/",
		anonKey: strings.TrimSpace(cfg.AnonKey),
		timeout: timeout,
	}
}

type accessTokenKey struct{}

// WithAccessToken attaches the end user's bearer token to ctx
func WithAccessToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, accessTokenKey{}, token)
}

func accessToken(ctx context.Context) string {
	token, _ := ctx.Value(accessTokenKey{}).(string)
	return token
}

// ============================================================================
// Client Implementation
// ============================================================================

// Select implements tablex.Client
func (c *Client) Select(ctx context.Context, q tablex.Query) (*tablex.Result, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	method := fasthttp.MethodGet
	if q.Count && q.Head {
		method = fasthttp.MethodHead
	}

	var prefer string
	if q.Count {
		prefer = "count=exact"
	}

	resp, err := c.do(ctx, method, q.Table, selectParams(q), prefer, nil)
	if err != nil {
		return nil, err
	}
	defer fasthttp.ReleaseResponse(resp)

	result := &tablex.Result{}
	if q.Count {
		total, ok := parseContentRange(string(resp.Header.Peek("Content-Range")))
		if !ok {
			return nil, tablex.Errorf(tablex.KindInternal, "select %s: missing exact count in response", q.Table)
		}
		result.Count = total
	}
	if q.Head {
		return result, nil
	}

	rows, err := decodeRows(resp.Body())
	if err != nil {
		return nil, &tablex.Error{Kind: tablex.KindInternal, Message: "decode " + q.Table, Err: err}
	}
	result.Rows = rows
	return result, nil
}

// Insert implements tablex.Client
func (c *Client) Insert(ctx context.Context, table string, row tablex.Row) (tablex.Row, error) {
	if !tablex.ValidIdent(table) {
		return nil, tablex.Errorf(tablex.KindInvalid, "invalid table name %q", table)
	}

	body, err := json.Marshal(row)
	if err != nil {
		return nil, &tablex.Error{Kind: tablex.KindInvalid, Message: "encode " + table, Err: err}
	}

	// anonymous writers may insert without being allowed to read the row back
	resp, err := c.do(ctx, fasthttp.MethodPost, table, nil, "return=minimal", body)
	if err != nil {
		return nil, err
	}
	fasthttp.ReleaseResponse(resp)

	return row, nil
}

// Update implements tablex.Client
func (c *Client) Update(ctx context.Context, table string, values tablex.Row, where []tablex.Condition) (int64, error) {
	if err := checkMutation(table, where); err != nil {
		return 0, err
	}

	body, err := json.Marshal(values)
	if err != nil {
		return 0, &tablex.Error{Kind: tablex.KindInvalid, Message: "encode " + table, Err: err}
	}

	return c.mutate(ctx, fasthttp.MethodPatch, table, where, body)
}

// Delete implements tablex.Client
func (c *Client) Delete(ctx context.Context, table string, where []tablex.Condition) (int64, error) {
	if err := checkMutation(table, where); err != nil {
		return 0, err
	}
	return c.mutate(ctx, fasthttp.MethodDelete, table, where, nil)
}

func checkMutation(table string, where []tablex.Condition) error {
	if !tablex.ValidIdent(table) {
		return tablex.Errorf(tablex.KindInvalid, "invalid table name %q", table)
	}
	if len(where) == 0 {
		return tablex.Errorf(tablex.KindInvalid, "mutation of %s without a filter", table)
	}
	return tablex.ValidateConditions(where)
}

func (c *Client) mutate(ctx context.Context, method, table string, where []tablex.Condition, body []byte) (int64, error) {
	params := url.Values{}
	addConditions(params, where)

	resp, err := c.do(ctx, method, table, params, "return=representation", body)
	if err != nil {
		return 0, err
	}
	defer fasthttp.ReleaseResponse(resp)

	rows, err := decodeRows(resp.Body())
	if err != nil {
		return 0, &tablex.Error{Kind: tablex.KindInternal, Message: "decode " + table, Err: err}
	}
	return int64(len(rows)), nil
}

// do sends one request. The caller releases the returned response.
// fasthttp has no context support, so cancellation is observed before the
// call and the context deadline bounds the call itself.
func (c *Client) do(ctx context.Context, method, table string, params url.Values, prefer string, body []byte) (*fasthttp.Response, error) {
	if err := tablex.FromContext(ctx); err != nil {
		return nil, err
	}

	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)

	req.SetRequestURI(c.tableURL(table, params))
	req.Header.SetMethod(method)
	req.Header.Set("apikey", c.anonKey)
	req.Header.Set("Accept", "application/json")

	bearer := accessToken(ctx)
	if bearer == "" {
		bearer = c.anonKey
	}
	req.Header.Set("Authorization", "Bearer "+bearer)

	if prefer != "" {
		req.Header.Set("Prefer", prefer)
	}
	if body != nil {
		req.Header.SetContentType("application/json")
		req.SetBody(body)
	}

	deadline := time.Now().Add(c.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	resp := fasthttp.AcquireResponse()
	if err := c.http.DoDeadline(req, resp, deadline); err != nil {
		fasthttp.ReleaseResponse(resp)
		return nil, transportError(ctx, err, method+" "+table)
	}

	if status := resp.StatusCode(); status >= 400 {
		err := responseError(status, resp.Body(), method+" "+table)
		fasthttp.ReleaseResponse(resp)
		return nil, err
	}

	if err := tablex.FromContext(ctx); err != nil {
		fasthttp.ReleaseResponse(resp)
		return nil, err
	}
	return resp, nil
}

func (c *Client) tableURL(table string, params url.Values) string {
	u := c.base + table
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	return u
}

// ============================================================================
// Query String Building
// ============================================================================

func selectParams(q tablex.Query) url.Values {
	params := url.Values{}

	if len(q.Columns) > 0 {
		params.Set("select", strings.Join(q.Columns, ","))
	} else {
		params.Set("select", "*")
	}

	addConditions(params, q.Where)

	if len(q.Order) > 0 {
		keys := make([]string, 0, len(q.Order))
		for _, o := range q.Order {
			key := o.Column + ".asc"
			if o.Desc {
				key = o.Column + ".desc"
			}
			if o.NullsLast {
				key += ".nullslast"
			}
			keys = append(keys, key)
		}
		params.Set("order", strings.Join(keys, ","))
	}

	if q.Offset > 0 {
		params.Set("offset", strconv.Itoa(q.Offset))
	}
	if q.Limit > 0 {
		params.Set("limit", strconv.Itoa(q.Limit))
	}
	return params
}

// addConditions renders plain predicates as column=op.value and OR groups
// in the logic-tree syntax. Several groups are joined under one and=().
func addConditions(params url.Values, conds []tablex.Condition) {
	var groups []string
	for _, c := range conds {
		if c.IsGroup() {
			groups = append(groups, "or"+renderGroup(c.AnyOf))
			continue
		}
		params.Add(c.Column, renderOperator(c, false))
	}

	switch len(groups) {
	case 0:
	case 1:
		params.Set("or", strings.TrimPrefix(groups[0], "or"))
	default:
		params.Set("and", "("+strings.Join(groups, ",")+")")
	}
}

func renderGroup(conds []tablex.Condition) string {
	parts := make([]string, 0, len(conds))
	for _, c := range conds {
		if c.IsGroup() {
			parts = append(parts, "or"+renderGroup(c.AnyOf))
			continue
		}
		parts = append(parts, c.Column+"."+renderOperator(c, true))
	}
	return "(" + strings.Join(parts, ",") + ")"
}

func renderOperator(c tablex.Condition, nested bool) string {
	switch c.Op {
	case tablex.OpIsNull:
		if isNull, _ := c.Value.(bool); isNull {
			return "is.null"
		}
		return "not.is.null"
	case tablex.OpIn:
		values := c.Value.([]string)
		quoted := make([]string, len(values))
		for i, v := range values {
			quoted[i] = quote(v)
		}
		return "in.(" + strings.Join(quoted, ",") + ")"
	}

	v := formatValue(c.Value)
	if nested {
		v = quote(v)
	}
	return string(c.Op) + "." + v
}

func quote(s string) string {
	return `"` + strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(s) + `"`
}

func formatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "null"
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case time.Time:
		return val.UTC().Format(time.RFC3339Nano)
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprint(val)
	}
}

// ============================================================================
// Response Handling
// ============================================================================

// parseContentRange reads the total from "0-9/42" or "*/42"
func parseContentRange(header string) (int, bool) {
	_, total, found := strings.Cut(header, "/")
	if !found || total == "*" {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimSpace(total))
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

func decodeRows(body []byte) ([]tablex.Row, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil, nil
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	if body[0] == '{' {
		var row tablex.Row
		if err := dec.Decode(&row); err != nil {
			return nil, err
		}
		return []tablex.Row{row}, nil
	}

	var rows []tablex.Row
	if err := dec.Decode(&rows); err != nil {
		return nil, err
	}
	return rows, nil
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details"`
	Hint    string `json:"hint"`
}

var (
	pgUndefinedColumn   = regexp.MustCompile(`column "?(?:[A-Za-z0-9_]+\.)?([A-Za-z0-9_]+)"? does not exist`)
	restUndefinedColumn = regexp.MustCompile(`find the '([A-Za-z0-9_]+)' column`)
)

func responseError(status int, body []byte, op string) error {
	var ae apiError
	_ = json.Unmarshal(body, &ae)

	e := &tablex.Error{
		Kind:    kindFor(status, ae.Code),
		Code:    ae.Code,
		Message: op + ": " + strings.TrimSpace(ae.Message),
	}
	if ae.Message == "" {
		e.Message = fmt.Sprintf("%s: HTTP %d", op, status)
	}

	if e.Kind == tablex.KindUnknownColumn {
		for _, re := range []*regexp.Regexp{pgUndefinedColumn, restUndefinedColumn} {
			if m := re.FindStringSubmatch(ae.Message); m != nil {
				e.Column = m[1]
				break
			}
		}
	}
	return e
}

func kindFor(status int, code string) tablex.Kind {
	switch code {
	case "42703", "PGRST204", "PGRST118":
		return tablex.KindUnknownColumn
	case "42501":
		return tablex.KindPermissionDenied
	case "42P01", "PGRST205", "PGRST116":
		return tablex.KindNotFound
	case "23505":
		return tablex.KindConflict
	case "23503", "23502", "23514", "22P02", "PGRST100":
		return tablex.KindInvalid
	case "57014":
		return tablex.KindTimeout
	}

	switch {
	case status == fasthttp.StatusUnauthorized || status == fasthttp.StatusForbidden:
		return tablex.KindPermissionDenied
	case status == fasthttp.StatusNotFound:
		return tablex.KindNotFound
	case status == fasthttp.StatusConflict:
		return tablex.KindConflict
	case status == fasthttp.StatusRequestTimeout || status == fasthttp.StatusGatewayTimeout:
		return tablex.KindTimeout
	case status >= 500:
		return tablex.KindUnavailable
	case status >= 400:
		return tablex.KindInvalid
	}
	return tablex.KindInternal
}

func transportError(ctx context.Context, err error, op string) error {
	if ctxErr := tablex.FromContext(ctx); ctxErr != nil {
		return ctxErr
	}
	if errors.Is(err, fasthttp.ErrTimeout) || errors.Is(err, fasthttp.ErrDialTimeout) {
		return &tablex.Error{Kind: tablex.KindTimeout, Message: op, Err: err}
	}
	return &tablex.Error{Kind: tablex.KindUnavailable, Message: op, Err: err}
}
