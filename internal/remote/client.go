// Package remote 封装托管后端的通用数据接口 (PostgREST 风格的 REST 查询)
// 和会话认证接口 (GoTrue 风格的 token 端点)。鉴权的最终裁决在远端，
// 客户端只负责带上 apikey 和当前会话的 access token。
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client

	mu      sync.RWMutex
	session *Session
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// Query 描述一次表查询: 列投影、等值过滤和排序
type Query struct {
	Select string            // 为空时取 *
	Eq     map[string]string // 列 -> 值，渲染为 col=eq.value
	Order  string            // 例如 "created_at.desc"
}

func (q Query) encode() string {
	v := url.Values{}
	sel := q.Select
	if sel == "" {
		sel = "*"
	}
	v.Set("select", sel)
	for col, val := range q.Eq {
		v.Set(col, "eq."+val)
	}
	if q.Order != "" {
		v.Set("order", q.Order)
	}
	return v.Encode()
}

// Select 查询多行，返回 JSON 数组
func (c *Client) Select(ctx context.Context, table string, q Query) ([]byte, error) {
	return c.rest(ctx, http.MethodGet, table, q, nil, false)
}

// SelectSingle 查询单行，返回 JSON 对象；没有命中时返回 ErrNoRows
func (c *Client) SelectSingle(ctx context.Context, table string, q Query) ([]byte, error) {
	return c.rest(ctx, http.MethodGet, table, q, nil, true)
}

// Insert 插入一行并返回插入后的完整记录
func (c *Client) Insert(ctx context.Context, table string, payload any) ([]byte, error) {
	return c.rest(ctx, http.MethodPost, table, Query{}, payload, true)
}

// Update 按过滤条件更新并返回更新后的单行记录
func (c *Client) Update(ctx context.Context, table string, q Query, payload any) ([]byte, error) {
	return c.rest(ctx, http.MethodPatch, table, q, payload, true)
}

// Delete 按过滤条件删除
func (c *Client) Delete(ctx context.Context, table string, q Query) error {
	_, err := c.rest(ctx, http.MethodDelete, table, q, nil, false)
	return err
}

func (c *Client) rest(ctx context.Context, method, table string, q Query, payload any, single bool) ([]byte, error) {
	endpoint := fmt.Sprintf("%s/rest/v1/%s?%s", c.baseURL, table, q.encode())

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode payload: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	c.setHeaders(req)
	if single {
		req.Header.Set("Accept", "application/vnd.pgrst.object+json")
	}
	if method == http.MethodPost || method == http.MethodPatch {
		req.Header.Set("Prefer", "return=representation")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("remote request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		// PostgREST 对单行请求落空返回 406
		if single && resp.StatusCode == http.StatusNotAcceptable {
			return nil, ErrNoRows
		}
		return nil, newError(resp.StatusCode, data)
	}
	return data, nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	// 已登录时带用户的 access token，否则退回匿名 key
	token := c.apiKey
	if s := c.Session(); s != nil {
		token = s.AccessToken
	}
	req.Header.Set("Authorization", "Bearer "+token)
}
