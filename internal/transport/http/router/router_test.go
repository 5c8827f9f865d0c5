package router

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"go-gin-gorm-auth/internal/core/auth"
	"go-gin-gorm-auth/internal/core/database/dbtest"
	"go-gin-gorm-auth/internal/core/server"
	"go-gin-gorm-auth/internal/domain"
	"go-gin-gorm-auth/internal/repo"
	"go-gin-gorm-auth/internal/service"
	"go-gin-gorm-auth/internal/transport/http/ez"
	"go-gin-gorm-auth/internal/transport/http/handler"
	"go-gin-gorm-auth/internal/transport/http/response"
	"go-gin-gorm-auth/pkg/utils"
)

const (
	adminRoleID   = "5c1e2b7a-3d4f-4a8b-9c0d-1e2f3a4b0001"
	defaultRoleID = "5c1e2b7a-3d4f-4a8b-9c0d-1e2f3a4b0002"
	adminUserID   = "5c1e2b7a-3d4f-4a8b-9c0d-1e2f3a4b00aa"
)

var testLimits = Limits{RPS: 10000, Burst: 10000, PerIPRPS: 10000, PerIPBurst: 10000}

type harness struct {
	t *testing.T
	r *gin.Engine
}

func newAPI(t *testing.T) *harness {
	t.Helper()
	utils.BcryptCost = bcrypt.MinCost
	l := zap.NewNop()
	db := dbtest.Open(t, domain.AuthModels()...)

	users, tokens := repo.NewUserRepo(db), repo.NewTokenRepo(db)
	roles, perms := repo.NewRoleRepo(db), repo.NewPermissionRepo(db)
	j := &auth.JWTer{Secret: []byte("router-secret"), Algorithm: "HS256", AccessTTL: 15 * time.Minute, RefreshTTL: time.Hour}

	protectedRoles := service.NewProtectedSet(adminRoleID, defaultRoleID)
	protectedUsers := service.NewProtectedSet(adminUserID)
	issuer := service.NewTokenIssuer(j, tokens, l)
	session := service.NewSessionValidator(j, tokens, l)
	userSvc := service.NewUserService(users, roles, tokens, protectedUsers, defaultRoleID, l)
	authn := service.NewAuthnService(users, tokens, issuer, session, userSvc, l)
	authz := service.NewAuthzService(perms, roles, users, authn, l)
	roleSvc := service.NewRoleService(roles, perms, users, protectedRoles, protectedUsers, adminRoleID, l)

	seeder := service.NewSeeder(users, roles, perms, service.SeedConfig{
		AdminRoleID:   adminRoleID,
		DefaultRoleID: defaultRoleID,
		Admin: &service.BootstrapAdmin{
			ID: adminUserID, Username: "admin", Password: "Adm1nPass",
			Email: "admin@example.com", Firstname: "Ada", Lastname: "Admin",
		},
	}, l)
	require.NoError(t, seeder.Seed(context.Background()))

	r := NewAPIEngine(APIDeps{
		Log:        l,
		Server:     server.Options{Mode: gin.TestMode},
		Limits:     testLimits,
		Cookies:    handler.CookieConfig{Path: "/"},
		AccessTTL:  j.AccessTTL,
		RefreshTTL: j.RefreshTTL,
		Authn:      authn,
		Authz:      authz,
		Roles:      roleSvc,
		Users:      userSvc,
	})
	return &harness{t: t, r: r}
}

type envelope struct {
	Data  json.RawMessage   `json:"data"`
	Error *response.ErrBody `json:"error"`
}

type call struct {
	method, path, token string
	body                interface{}
	header              map[string]string
}

func (h *harness) do(c call) (*httptest.ResponseRecorder, envelope) {
	h.t.Helper()
	var rd *bytes.Reader
	if c.body != nil {
		b, err := json.Marshal(c.body)
		require.NoError(h.t, err)
		rd = bytes.NewReader(b)
	} else {
		rd = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(c.method, c.path, rd)
	if c.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	for k, v := range c.header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	h.r.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 && w.Header().Get("Content-Type") != "" {
		_ = json.Unmarshal(w.Body.Bytes(), &env)
	}
	return w, env
}

func (h *harness) errCode(c call) (int, string) {
	h.t.Helper()
	w, env := h.do(c)
	require.NotNil(h.t, env.Error, "%s %s -> %d %s", c.method, c.path, w.Code, w.Body.String())
	return w.Code, env.Error.ErrorCode
}

func (h *harness) ok(c call, out interface{}) {
	h.t.Helper()
	w, env := h.do(c)
	require.Equal(h.t, http.StatusOK, w.Code, "%s %s -> %s", c.method, c.path, w.Body.String())
	require.Nil(h.t, env.Error)
	if out != nil {
		require.NoError(h.t, json.Unmarshal(env.Data, out))
	}
}

func (h *harness) register(username, email string) {
	h.t.Helper()
	h.ok(call{method: http.MethodPost, path: "/authn/register", body: map[string]string{
		"username": username, "password": "Passw0rd1", "firstname": "Alice", "lastname": "Doe", "email": email,
	}}, nil)
}

func (h *harness) login(username, password string) service.TokenPair {
	h.t.Helper()
	var pair service.TokenPair
	h.ok(call{
		method: http.MethodPost, path: "/authn/login",
		body:   map[string]string{"username": username, "password": password},
		header: map[string]string{"auth-type": "password"},
	}, &pair)
	return pair
}

func (h *harness) session(token string) (int, string) {
	h.t.Helper()
	w, env := h.do(call{method: http.MethodPost, path: "/authn/check-session", token: token})
	var out struct {
		Status string `json:"status"`
	}
	require.NoError(h.t, json.Unmarshal(env.Data, &out))
	return w.Code, out.Status
}

func TestFullAuthScenario(t *testing.T) {
	h := newAPI(t)
	h.register("alice", "alice@example.com")

	pair := h.login("alice", "Passw0rd1")
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)

	code, status := h.session(pair.AccessToken)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "valid", status)

	var fresh struct {
		AccessToken string `json:"access_token"`
	}
	h.ok(call{method: http.MethodPost, path: "/authn/get-access-token",
		body: map[string]string{"refresh_token": pair.RefreshToken}}, &fresh)
	assert.NotEqual(t, pair.AccessToken, fresh.AccessToken)

	code, status = h.session(pair.AccessToken)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "invalid", status)
	_, status = h.session(fresh.AccessToken)
	assert.Equal(t, "valid", status)

	// 退出后所有 token 失效
	h.ok(call{method: http.MethodPost, path: "/authn/logout", token: fresh.AccessToken}, nil)
	_, status = h.session(fresh.AccessToken)
	assert.Equal(t, "invalid", status)
	st, ec := h.errCode(call{method: http.MethodPost, path: "/authn/get-access-token",
		body: map[string]string{"refresh_token": pair.RefreshToken}})
	assert.Equal(t, http.StatusUnauthorized, st)
	assert.Equal(t, "REFRESH_TOKEN_NOT_FOUND", ec)
}

func TestLoginSetsCookiesAndLogoutClears(t *testing.T) {
	h := newAPI(t)
	h.register("bobby", "bob@example.com")

	w, _ := h.do(call{
		method: http.MethodPost, path: "/authn/login",
		body:   map[string]string{"username": "bobby", "password": "Passw0rd1"},
		header: map[string]string{"auth-type": "password"},
	})
	require.Equal(t, http.StatusOK, w.Code)
	cookies := map[string]*http.Cookie{}
	for _, c := range w.Result().Cookies() {
		cookies[c.Name] = c
	}
	require.Contains(t, cookies, "access_token")
	require.Contains(t, cookies, "refresh_token")
	assert.True(t, cookies["access_token"].HttpOnly)

	// cookie 也能当 bearer 用
	req := httptest.NewRequest(http.MethodGet, "/user-service/", nil)
	req.AddCookie(cookies["access_token"])
	w2 := httptest.NewRecorder()
	h.r.ServeHTTP(w2, req)
	assert.Equal(t, http.StatusOK, w2.Code, w2.Body.String())

	// refresh 也可以只走 cookie
	req = httptest.NewRequest(http.MethodPost, "/authn/get-access-token", nil)
	req.AddCookie(cookies["refresh_token"])
	w3 := httptest.NewRecorder()
	h.r.ServeHTTP(w3, req)
	assert.Equal(t, http.StatusOK, w3.Code, w3.Body.String())

	var env envelope
	require.NoError(t, json.Unmarshal(w3.Body.Bytes(), &env))
	var fresh struct {
		AccessToken string `json:"access_token"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &fresh))

	w4, _ := h.do(call{method: http.MethodPost, path: "/authn/logout", token: fresh.AccessToken})
	require.Equal(t, http.StatusOK, w4.Code)
	for _, c := range w4.Result().Cookies() {
		assert.Equal(t, "", c.Value, c.Name)
		assert.True(t, c.MaxAge < 0, c.Name)
	}
}

func TestAuthnErrors(t *testing.T) {
	h := newAPI(t)
	h.register("carol", "carol@example.com")

	cases := []struct {
		name   string
		call   call
		status int
		code   string
	}{
		{"missing username", call{method: http.MethodPost, path: "/authn/register",
			body: map[string]string{"password": "x"}}, http.StatusBadRequest, "USERNAME_REQUIRED"},
		{"bad json", call{method: http.MethodPost, path: "/authn/register", body: "nope"},
			http.StatusBadRequest, "BAD_JSON"},
		{"duplicate username", call{method: http.MethodPost, path: "/authn/register", body: map[string]string{
			"username": "carol", "password": "p", "firstname": "C", "lastname": "D", "email": "c2@example.com",
		}}, http.StatusBadRequest, "USERNAME_ALREADY_EXIST"},
		{"no auth type", call{method: http.MethodPost, path: "/authn/login",
			body: map[string]string{"username": "carol", "password": "Passw0rd1"}},
			http.StatusBadRequest, "AUTH_TYPE_NOT_SUPPORTED"},
		{"wrong password", call{method: http.MethodPost, path: "/authn/login",
			body:   map[string]string{"username": "carol", "password": "nope"},
			header: map[string]string{"auth-type": "password"}}, http.StatusUnauthorized, "WRONG_CREDENTIALS"},
		{"malformed refresh", call{method: http.MethodPost, path: "/authn/get-access-token",
			body: map[string]string{"refresh_token": "garbage"}}, http.StatusBadRequest, "BAD_JSON"},
		{"logout without token", call{method: http.MethodPost, path: "/authn/logout"},
			http.StatusUnauthorized, "ACCESS_TOKEN_NOT_FOUND"},
		{"unknown route", call{method: http.MethodGet, path: "/nope"}, http.StatusNotFound, "ROUTE_NOT_FOUND"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			st, code := h.errCode(tc.call)
			assert.Equal(t, tc.status, st)
			assert.Equal(t, tc.code, code)
		})
	}

	// access token 不能拿来换 token
	pair := h.login("carol", "Passw0rd1")
	_, code := h.errCode(call{method: http.MethodPost, path: "/authn/get-access-token",
		body: map[string]string{"refresh_token": pair.AccessToken}})
	assert.Equal(t, "WRONG_TOKEN_TYPE", code)
}

func TestCheckPermission(t *testing.T) {
	h := newAPI(t)
	h.register("dave1", "dave@example.com")
	pair := h.login("dave1", "Passw0rd1")

	var one struct {
		UserID string `json:"user_id"`
		Access string `json:"access"`
	}
	h.ok(call{method: http.MethodPost, path: "/authz/check-permission", token: pair.AccessToken,
		body: map[string]interface{}{"operation_code": domain.PermUserRead}}, &one)
	assert.Equal(t, "granted", one.Access)
	assert.NotEmpty(t, one.UserID)

	var many struct {
		Access []string `json:"access"`
	}
	h.ok(call{method: http.MethodPost, path: "/authz/check-permission", token: pair.AccessToken,
		body: map[string]interface{}{"operation_code": []string{domain.PermUserRead, domain.PermRoleCreate, "no:such"}}}, &many)
	assert.Equal(t, []string{"granted", "denied", "denied"}, many.Access)

	// 服务间调用：只给 user_id
	h.ok(call{method: http.MethodPost, path: "/authz/check-permission",
		body: map[string]interface{}{"user_id": adminUserID, "operation_code": domain.PermRoleCreate}}, &one)
	assert.Equal(t, "granted", one.Access)
	assert.Equal(t, adminUserID, one.UserID)

	_, code := h.errCode(call{method: http.MethodPost, path: "/authz/check-permission", token: pair.AccessToken,
		body: map[string]interface{}{"operation_code": ""}})
	assert.Equal(t, "OPERATION_CODE_NOT_FOUND", code)

	_, code = h.errCode(call{method: http.MethodPost, path: "/authz/check-permission",
		body: map[string]interface{}{"operation_code": "user:read"}})
	assert.Equal(t, "USER_NOT_LOGGED_IN", code)

	st, code := h.errCode(call{method: http.MethodPost, path: "/authz/check-permission", token: pair.RefreshToken,
		body: map[string]interface{}{"operation_code": "user:read"}})
	assert.Equal(t, http.StatusUnauthorized, st)
	assert.Equal(t, "WRONG_TOKEN_TYPE", code)
}

func TestRoleServiceRoutes(t *testing.T) {
	h := newAPI(t)
	h.register("erin1", "erin@example.com")
	user := h.login("erin1", "Passw0rd1")
	admin := h.login("admin", "Adm1nPass")

	st, code := h.errCode(call{method: http.MethodGet, path: "/role-service/roles", token: user.AccessToken})
	assert.Equal(t, http.StatusForbidden, st)
	assert.Equal(t, "PERMISSION_DENIED", code)

	var page domain.Paged[domain.Role]
	h.ok(call{method: http.MethodGet, path: "/role-service/roles?page=1&limit=10", token: admin.AccessToken}, &page)
	assert.EqualValues(t, 2, page.Total)

	var role domain.Role
	h.ok(call{method: http.MethodPost, path: "/role-service/", token: admin.AccessToken,
		body: map[string]string{"name": "editor"}}, &role)
	require.NotEmpty(t, role.ID)

	_, code = h.errCode(call{method: http.MethodPost, path: "/role-service/", token: admin.AccessToken,
		body: map[string]string{"name": "editor"}})
	assert.Equal(t, "ROLE_NAME_MUST_BE_UNIQE", code)

	var perms domain.Paged[domain.Permission]
	h.ok(call{method: http.MethodGet, path: "/role-service/permissions?limit=100", token: admin.AccessToken}, &perms)
	var roleCreateID string
	for _, p := range perms.Rows {
		if p.Code == domain.PermRoleCreate {
			roleCreateID = p.ID
		}
	}
	require.NotEmpty(t, roleCreateID)

	// editor 拿到 role:create，分配给 erin1 后 erin1 可以建角色
	h.ok(call{method: http.MethodPost, path: "/role-service/" + role.ID + "/permission/" + roleCreateID, token: admin.AccessToken}, nil)
	var me domain.UserDetail
	h.ok(call{method: http.MethodGet, path: "/user-service/", token: user.AccessToken}, &me)
	h.ok(call{method: http.MethodPost, path: "/role-service/" + role.ID + "/user/" + me.ID, token: admin.AccessToken}, nil)
	h.ok(call{method: http.MethodPost, path: "/role-service/", token: user.AccessToken,
		body: map[string]string{"name": "auditor"}}, nil)

	var rp []domain.Permission
	h.ok(call{method: http.MethodGet, path: "/role-service/" + role.ID + "/permissions", token: admin.AccessToken}, &rp)
	require.Len(t, rp, 1)

	h.ok(call{method: http.MethodDelete, path: "/role-service/" + role.ID + "/user/" + me.ID, token: admin.AccessToken}, nil)
	st, _ = h.errCode(call{method: http.MethodPost, path: "/role-service/", token: user.AccessToken,
		body: map[string]string{"name": "auditor2"}})
	assert.Equal(t, http.StatusForbidden, st)

	// 受保护角色
	_, code = h.errCode(call{method: http.MethodDelete, path: "/role-service/" + adminRoleID, token: admin.AccessToken})
	assert.Equal(t, "ROLE_DELETE_RESTRICTION", code)
	_, code = h.errCode(call{method: http.MethodDelete, path: "/role-service/" + adminRoleID + "/user/" + adminUserID, token: admin.AccessToken})
	assert.Equal(t, "ROLE_OF_ADMIN_NOT_CHANGEABLE", code)
	_, code = h.errCode(call{method: http.MethodDelete, path: "/role-service/" + defaultRoleID + "/user/" + me.ID, token: admin.AccessToken})
	assert.Equal(t, "ROLE_DELETE_RESTRICTION", code)

	// 批量删除：有一个不存在则全部不删
	missing := utils.NewID()
	st, code = h.errCode(call{method: http.MethodDelete, path: "/role-service/" + role.ID + "," + missing, token: admin.AccessToken})
	assert.Equal(t, http.StatusNotFound, st)
	assert.Equal(t, "ROLE_NOT_FOUND", code)
	h.ok(call{method: http.MethodGet, path: "/role-service/" + role.ID, token: admin.AccessToken}, nil)

	_, code = h.errCode(call{method: http.MethodGet, path: "/role-service/not-a-uuid", token: admin.AccessToken})
	assert.Equal(t, "UUID_SYNTAX_ERROR", code)

	var renamed domain.Role
	h.ok(call{method: http.MethodPatch, path: "/role-service/" + role.ID, token: admin.AccessToken,
		body: map[string]string{"name": "writer"}}, &renamed)
	assert.Equal(t, "writer", renamed.Name)

	h.ok(call{method: http.MethodDelete, path: "/role-service/" + role.ID, token: admin.AccessToken}, nil)
	_, code = h.errCode(call{method: http.MethodGet, path: "/role-service/" + role.ID, token: admin.AccessToken})
	assert.Equal(t, "ROLE_NOT_FOUND", code)
}

func TestUserServiceRoutes(t *testing.T) {
	h := newAPI(t)
	h.register("frank", "frank@example.com")
	user := h.login("frank", "Passw0rd1")
	admin := h.login("admin", "Adm1nPass")

	var me domain.UserDetail
	h.ok(call{method: http.MethodGet, path: "/user-service/", token: user.AccessToken}, &me)
	assert.Equal(t, "frank", me.Username)
	require.Len(t, me.Roles, 1)
	assert.Equal(t, defaultRoleID, me.Roles[0].ID)

	h.ok(call{method: http.MethodPatch, path: "/user-service/", token: user.AccessToken,
		body: map[string]string{"firstname": "Franky"}}, &me)
	assert.Equal(t, "Franky", me.Firstname)

	// 普通用户不能看别人
	st, _ := h.errCode(call{method: http.MethodGet, path: "/user-service/" + adminUserID, token: user.AccessToken})
	assert.Equal(t, http.StatusForbidden, st)

	var list domain.Paged[domain.User]
	h.ok(call{method: http.MethodGet, path: "/user-service/users?limit=1", token: admin.AccessToken}, &list)
	assert.EqualValues(t, 2, list.Total)
	assert.Len(t, list.Rows, 1)
	assert.EqualValues(t, 2, list.TotalPages)

	var created domain.UserDetail
	h.ok(call{method: http.MethodPost, path: "/user-service/", token: admin.AccessToken, body: map[string]string{
		"username": "grace", "password": "Passw0rd1", "firstname": "Grace", "lastname": "H", "email": "grace@example.com",
	}}, &created)
	h.ok(call{method: http.MethodPatch, path: "/user-service/" + created.ID + "/password-based-auth", token: admin.AccessToken,
		body: map[string]string{"password": "N3wPass"}}, nil)
	h.login("grace", "N3wPass")

	_, code := h.errCode(call{method: http.MethodDelete, path: "/user-service/" + adminUserID, token: admin.AccessToken})
	assert.Equal(t, "CANNOT_DELETE_ADMIN_USER", code)

	// 自己改密码后旧 token 作废
	h.ok(call{method: http.MethodPatch, path: "/user-service/password-based-auth", token: user.AccessToken,
		body: map[string]string{"password": "An0ther1"}}, nil)
	_, status := h.session(user.AccessToken)
	assert.Equal(t, "invalid", status)

	user = h.login("frank", "An0ther1")
	h.ok(call{method: http.MethodDelete, path: "/user-service/", token: user.AccessToken}, nil)
	_, code = h.errCode(call{method: http.MethodGet, path: "/user-service/" + me.ID, token: admin.AccessToken})
	assert.Equal(t, "USER_NOT_FOUND", code)
}

func TestHealthAndMetrics(t *testing.T) {
	h := newAPI(t)
	w, _ := h.do(call{method: http.MethodGet, path: "/health"})
	assert.Equal(t, http.StatusOK, w.Code)
	w, _ = h.do(call{method: http.MethodGet, path: "/metrics"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "http_requests_total")
}

type orderMod struct {
	name string
	prio int
	log  *[]string
}

func (m orderMod) Mount(ez.EZ) { *m.log = append(*m.log, m.name) }
func (m orderMod) Priority() int { return m.prio }

type plainMod struct{ log *[]string }

func (m plainMod) Mount(ez.EZ) { *m.log = append(*m.log, "plain") }

func TestRegistryPriority(t *testing.T) {
	var got []string
	reg := &Registry{}
	reg.Register(plainMod{&got}, orderMod{"late", 200, &got}, orderMod{"early", 10, &got})
	reg.MountAll(ez.New(&gin.New().RouterGroup, nil))
	assert.Equal(t, []string{"early", "plain", "late"}, got)
}
