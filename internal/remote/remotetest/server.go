// Package remotetest 提供一个内存版的托管后端（PostgREST + GoTrue 的最小子集），
// 测试用 httptest 把它挂起来替代真实部署。支持 eq 过滤、列投影、
// created_at 排序、单行 Accept，以及可选的属主写入检查，
// 用来模拟远端行级安全对客户端前置检查的最终裁决。
package remotetest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const jwtSecret = "remotetest-secret"

type account struct {
	ID   string
	Hash []byte
}

type Server struct {
	srv *httptest.Server

	mu       sync.Mutex
	tables   map[string][]map[string]any // 按插入顺序保存行
	accounts map[string]account          // email -> 认证账号
	writes   map[string]int              // "PATCH listings" 之类的写调用计数
	seq      int64

	// FailInsert 指定某张表的插入直接报错（约束冲突等场景）
	FailInsert map[string]string
	// EnforceOwnership 模拟行级安全：listings 的改删要求请求者是属主或管理员
	EnforceOwnership bool
}

func New() *Server {
	s := &Server{
		tables:     map[string][]map[string]any{"profiles": {}, "listings": {}},
		accounts:   map[string]account{},
		writes:     map[string]int{},
		FailInsert: map[string]string{},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/auth/v1/signup", s.handleSignUp)
	mux.HandleFunc("/auth/v1/token", s.handleToken)
	mux.HandleFunc("/auth/v1/logout", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("/rest/v1/", s.handleRest)

	s.srv = httptest.NewServer(mux)
	return s
}

func (s *Server) URL() string { return s.srv.URL }
func (s *Server) Close()      { s.srv.Close() }

// WriteCount 某张表收到的写请求次数，用来断言前置检查拦下了写入
func (s *Server) WriteCount(method, table string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes[method+" "+table]
}

// Rows 返回某张表当前行的副本
func (s *Server) Rows(table string) []map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]map[string]any, 0, len(s.tables[table]))
	for _, row := range s.tables[table] {
		cp := make(map[string]any, len(row))
		for k, v := range row {
			cp[k] = v
		}
		out = append(out, cp)
	}
	return out
}

// Seed 直接插入一行，跳过 HTTP 层。缺 id 或 created_at 时自动补
func (s *Server) Seed(table string, row map[string]any) map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := row["id"]; !ok {
		row["id"] = uuid.NewString()
	}
	if _, ok := row["created_at"]; !ok {
		row["created_at"] = s.nextTimestamp()
	}
	s.tables[table] = append(s.tables[table], row)
	return row
}

// SeedAccount 预置一个认证账号并返回它的 id
func (s *Server) SeedAccount(email, password string) string {
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	s.mu.Lock()
	defer s.mu.Unlock()
	id := uuid.NewString()
	s.accounts[email] = account{ID: id, Hash: hash}
	return id
}

// TokenFor 给指定用户签发一个 access token（恢复会话的测试用）
func (s *Server) TokenFor(userID string, ttl time.Duration) string {
	return s.mintToken(userID, ttl)
}

// ---- auth 端点 ----

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) handleSignUp(w http.ResponseWriter, r *http.Request) {
	var creds credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"msg": "invalid request body"})
		return
	}

	s.mu.Lock()
	if _, exists := s.accounts[creds.Email]; exists {
		s.mu.Unlock()
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"msg": "User already registered"})
		return
	}
	hash, _ := bcrypt.GenerateFromPassword([]byte(creds.Password), bcrypt.DefaultCost)
	id := uuid.NewString()
	s.accounts[creds.Email] = account{ID: id, Hash: hash}
	s.mu.Unlock()

	s.writeSession(w, id, creds.Email)
}

func (s *Server) handleToken(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("grant_type") != "password" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error_description": "unsupported grant type"})
		return
	}

	var creds credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error_description": "invalid request body"})
		return
	}

	s.mu.Lock()
	acct, ok := s.accounts[creds.Email]
	s.mu.Unlock()
	if !ok || bcrypt.CompareHashAndPassword(acct.Hash, []byte(creds.Password)) != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error_description": "Invalid login credentials"})
		return
	}

	s.writeSession(w, acct.ID, creds.Email)
}

func (s *Server) writeSession(w http.ResponseWriter, userID, email string) {
	writeJSON(w, http.StatusOK, map[string]any{
		"access_token":  s.mintToken(userID, time.Hour),
		"refresh_token": uuid.NewString(),
		"expires_in":    3600,
		"user":          map[string]string{"id": userID, "email": email},
	})
}

func (s *Server) mintToken(userID string, ttl time.Duration) string {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": userID,
		"exp": time.Now().Add(ttl).Unix(),
	})
	signed, _ := token.SignedString([]byte(jwtSecret))
	return signed
}

// ---- rest 端点 ----

func (s *Server) handleRest(w http.ResponseWriter, r *http.Request) {
	table := strings.TrimPrefix(r.URL.Path, "/rest/v1/")
	single := strings.Contains(r.Header.Get("Accept"), "vnd.pgrst.object")

	switch r.Method {
	case http.MethodGet:
		s.handleSelect(w, r, table, single)
	case http.MethodPost:
		s.countWrite(r.Method, table)
		s.handleInsert(w, r, table)
	case http.MethodPatch:
		s.countWrite(r.Method, table)
		s.handleUpdate(w, r, table, single)
	case http.MethodDelete:
		s.countWrite(r.Method, table)
		s.handleDelete(w, r, table)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request, table string, single bool) {
	s.mu.Lock()
	rows := s.match(table, r.URL.Query())
	s.mu.Unlock()

	rows = orderRows(rows, r.URL.Query().Get("order"))
	rows = projectRows(rows, r.URL.Query().Get("select"))

	if single {
		writeSingle(w, rows)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

func (s *Server) handleInsert(w http.ResponseWriter, r *http.Request, table string) {
	s.mu.Lock()
	failMsg := s.FailInsert[table]
	s.mu.Unlock()
	if failMsg != "" {
		writeJSON(w, http.StatusConflict, map[string]string{"message": failMsg})
		return
	}

	var row map[string]any
	if err := json.NewDecoder(r.Body).Decode(&row); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid request body"})
		return
	}

	s.mu.Lock()
	if id, ok := row["id"].(string); !ok || id == "" {
		row["id"] = uuid.NewString()
	}
	now := s.nextTimestamp()
	if _, ok := row["created_at"]; !ok {
		row["created_at"] = now
	}
	if _, ok := row["updated_at"]; !ok {
		row["updated_at"] = now
	}
	s.tables[table] = append(s.tables[table], row)
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, row)
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request, table string, single bool) {
	var updates map[string]any
	if err := json.NewDecoder(r.Body).Decode(&updates); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid request body"})
		return
	}

	s.mu.Lock()
	rows := s.match(table, r.URL.Query())
	if table == "listings" && s.EnforceOwnership {
		for _, row := range rows {
			if !s.permitted(row, r) {
				s.mu.Unlock()
				writeJSON(w, http.StatusForbidden, map[string]string{"message": "permission denied for table listings"})
				return
			}
		}
	}
	for _, row := range rows {
		for k, v := range updates {
			row[k] = v
		}
	}
	s.mu.Unlock()

	rows = projectRows(rows, "")
	if single {
		writeSingle(w, rows)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request, table string) {
	s.mu.Lock()
	matched := s.match(table, r.URL.Query())
	if table == "listings" && s.EnforceOwnership {
		for _, row := range matched {
			if !s.permitted(row, r) {
				s.mu.Unlock()
				writeJSON(w, http.StatusForbidden, map[string]string{"message": "permission denied for table listings"})
				return
			}
		}
	}
	kept := s.tables[table][:0]
	for _, row := range s.tables[table] {
		drop := false
		for _, m := range matched {
			if row["id"] == m["id"] {
				drop = true
			}
		}
		if !drop {
			kept = append(kept, row)
		}
	}
	s.tables[table] = kept
	s.mu.Unlock()

	w.WriteHeader(http.StatusNoContent)
}

// permitted 行级检查：属主本人或 profiles 里的管理员可以写
func (s *Server) permitted(row map[string]any, r *http.Request) bool {
	callerID := s.callerID(r)
	if callerID == "" {
		return false
	}
	if owner, _ := row["owner_id"].(string); owner == callerID {
		return true
	}
	for _, p := range s.tables["profiles"] {
		if p["id"] == callerID && p["role"] == "admin" {
			return true
		}
	}
	return false
}

func (s *Server) callerID(r *http.Request) string {
	raw := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	claims := jwt.MapClaims{}
	_, err := jwt.NewParser().ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return []byte(jwtSecret), nil
	})
	if err != nil {
		return ""
	}
	sub, _ := claims.GetSubject()
	return sub
}

// match 按 col=eq.val 过滤，调用方持锁
func (s *Server) match(table string, q url.Values) []map[string]any {
	var out []map[string]any
	for _, row := range s.tables[table] {
		ok := true
		for col, vals := range q {
			if col == "select" || col == "order" {
				continue
			}
			want, found := strings.CutPrefix(vals[0], "eq.")
			if !found {
				continue
			}
			if fmt.Sprintf("%v", row[col]) != want {
				ok = false
				break
			}
		}
		if ok {
			out = append(out, row)
		}
	}
	return out
}

func orderRows(rows []map[string]any, order string) []map[string]any {
	if order == "" {
		return rows
	}
	col, dir, _ := strings.Cut(order, ".")
	sorted := append([]map[string]any(nil), rows...)
	sort.SliceStable(sorted, func(i, j int) bool {
		a := fmt.Sprintf("%v", sorted[i][col])
		b := fmt.Sprintf("%v", sorted[j][col])
		if dir == "desc" {
			return a > b
		}
		return a < b
	})
	return sorted
}

func projectRows(rows []map[string]any, sel string) []map[string]any {
	out := make([]map[string]any, 0, len(rows))
	cols := []string{}
	if sel != "" && sel != "*" {
		cols = strings.Split(sel, ",")
	}
	for _, row := range rows {
		cp := make(map[string]any, len(row))
		if len(cols) == 0 {
			for k, v := range row {
				cp[k] = v
			}
		} else {
			for _, c := range cols {
				cp[c] = row[c]
			}
		}
		out = append(out, cp)
	}
	return out
}

func (s *Server) countWrite(method, table string) {
	s.mu.Lock()
	s.writes[method+" "+table]++
	s.mu.Unlock()
}

// nextTimestamp 定宽、单调递增的时间串，保证 created_at 排序稳定。调用方持锁
func (s *Server) nextTimestamp() string {
	s.seq++
	return time.Unix(1700000000, 0).UTC().Add(time.Duration(s.seq) * time.Second).Format("2006-01-02T15:04:05Z")
}

func writeSingle(w http.ResponseWriter, rows []map[string]any) {
	if len(rows) != 1 {
		writeJSON(w, http.StatusNotAcceptable, map[string]string{
			"message": "JSON object requested, multiple (or no) rows returned",
		})
		return
	}
	writeJSON(w, http.StatusOK, rows[0])
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
