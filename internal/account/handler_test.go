package account

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/wichananm65/misdis-backend/internal/apperror"
	"github.com/wichananm65/misdis-backend/internal/auth"
	"github.com/wichananm65/misdis-backend/internal/validation"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const createBody = `{
	"first_name": "Sita",
	"last_name": "Sharma",
	"dob": "1999-04-13",
	"email": "sita@example.com",
	"password": "s3cretpass",
	"role": "Student",
	"gender": "Female",
	"contact": "+9779812345678",
	"city": "Kathmandu"
}`

func makeAccountApp(t *testing.T) *fiber.App {
	t.Helper()
	v, err := validation.New(Rules()...)
	if err != nil {
		t.Fatalf("validator: %v", err)
	}
	tokens := auth.NewTokens("test-secret", 0)
	guard := auth.Guard(tokens)
	handler := NewHandler(NewService(NewInMemoryRepository(nil), tokens, bcrypt.MinCost), v)

	app := fiber.New(fiber.Config{ErrorHandler: apperror.FiberHandler(zap.NewNop())})
	grp := app.Group("/account")
	handler.RegisterMeRoute(grp, guard)
	handler.RegisterPublicRoutes(grp)
	handler.RegisterProtectedRoutes(grp, guard)
	return app
}

func send(t *testing.T, app *fiber.App, method, path, contentType, body, token string) (int, []byte) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	res, err := app.Test(req)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, path, err)
	}
	raw, _ := io.ReadAll(res.Body)
	return res.StatusCode, raw
}

func login(t *testing.T, app *fiber.App) string {
	t.Helper()
	status, raw := send(t, app, "POST", "/account/login/", fiber.MIMEApplicationForm,
		"username=sita%40example.com&password=s3cretpass", "")
	if status != fiber.StatusOK {
		t.Fatalf("expected 200 from login, got %d: %s", status, raw)
	}
	var tok Token
	if err := json.Unmarshal(raw, &tok); err != nil {
		t.Fatalf("decode token: %v", err)
	}
	if tok.TokenType != "bearer" || tok.AccessToken == "" {
		t.Fatalf("unexpected token %+v", tok)
	}
	return tok.AccessToken
}

func TestAccountRoutes_CreateLoginMe(t *testing.T) {
	app := makeAccountApp(t)

	status, raw := send(t, app, "POST", "/account/", fiber.MIMEApplicationJSON, createBody, "")
	if status != fiber.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", status, raw)
	}
	var created map[string]any
	if err := json.Unmarshal(raw, &created); err != nil {
		t.Fatalf("decode user: %v", err)
	}
	if _, leaked := created["password"]; leaked {
		t.Fatalf("password must not be serialized: %s", raw)
	}
	if created["is_active"] != false || created["middle_name"] != nil || created["city"] != "Kathmandu" {
		t.Fatalf("unexpected user %s", raw)
	}

	status, _ = send(t, app, "POST", "/account/", fiber.MIMEApplicationJSON, createBody, "")
	if status != fiber.StatusConflict {
		t.Fatalf("expected 409 for duplicate email, got %d", status)
	}

	token := login(t, app)

	status, raw = send(t, app, "GET", "/account/me/", "", "", token)
	if status != fiber.StatusOK || !strings.Contains(string(raw), `"email":"sita@example.com"`) {
		t.Fatalf("unexpected /me response %d: %s", status, raw)
	}

	status, raw = send(t, app, "GET", "/account/", "", "", token)
	if status != fiber.StatusOK {
		t.Fatalf("expected 200 listing users, got %d", status)
	}
	var users []User
	if err := json.Unmarshal(raw, &users); err != nil || len(users) != 1 {
		t.Fatalf("expected one user, got %s (%v)", raw, err)
	}

	if status, _ := send(t, app, "GET", "/account/1/", "", "", token); status != fiber.StatusOK {
		t.Fatalf("expected 200 for user 1, got %d", status)
	}
	if status, _ := send(t, app, "GET", "/account/2/", "", "", token); status != fiber.StatusNotFound {
		t.Fatalf("expected 404 for user 2, got %d", status)
	}
	for _, id := range []string{"3000000000", "99999999999999999999"} {
		status, raw := send(t, app, "GET", "/account/"+id+"/", "", "", token)
		if status != fiber.StatusNotFound || !strings.Contains(string(raw), "User with the id "+id+" is not found") {
			t.Fatalf("expected 404 for user %s, got %d: %s", id, status, raw)
		}
	}
}

func TestAccountRoutes_RequireToken(t *testing.T) {
	app := makeAccountApp(t)

	for _, path := range []string{"/account/", "/account/1/", "/account/me/"} {
		status, _ := send(t, app, "GET", path, "", "", "")
		if status != fiber.StatusUnauthorized {
			t.Fatalf("expected 401 for %s without token, got %d", path, status)
		}
	}
	if status, _ := send(t, app, "GET", "/account/me/", "", "", "not-a-token"); status != fiber.StatusUnauthorized {
		t.Fatalf("expected 401 for garbage token, got %d", status)
	}
}

func TestAccountRoutes_LoginFailures(t *testing.T) {
	app := makeAccountApp(t)
	send(t, app, "POST", "/account/", fiber.MIMEApplicationJSON, createBody, "")

	_, unknown := send(t, app, "POST", "/account/login/", fiber.MIMEApplicationJSON,
		`{"username":"nobody@example.com","password":"s3cretpass"}`, "")
	status, wrong := send(t, app, "POST", "/account/login/", fiber.MIMEApplicationJSON,
		`{"username":"sita@example.com","password":"nope-nope"}`, "")
	if status != fiber.StatusUnauthorized {
		t.Fatalf("expected 401 for wrong password, got %d", status)
	}
	if string(unknown) != string(wrong) {
		t.Fatalf("login failures must be indistinguishable: %s vs %s", unknown, wrong)
	}

	status, _ = send(t, app, "POST", "/account/login/", fiber.MIMEApplicationForm, "username=sita%40example.com", "")
	if status != fiber.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for missing password, got %d", status)
	}
}

func TestAccountRoutes_CreateValidation(t *testing.T) {
	app := makeAccountApp(t)

	body := strings.NewReplacer(
		`"Student"`, `"Teacher"`,
		`"+9779812345678"`, `"0123"`,
		`"1999-04-13"`, `"13/04/1999"`,
		`"s3cretpass"`, `"short"`,
	).Replace(createBody)

	status, raw := send(t, app, "POST", "/account/", fiber.MIMEApplicationJSON, body, "")
	if status != fiber.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", status, raw)
	}
	var appErr apperror.AppError
	if err := json.Unmarshal(raw, &appErr); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	for _, field := range []string{"role", "contact", "dob", "password"} {
		if _, ok := appErr.Details[field]; !ok {
			t.Fatalf("expected %q in details %v", field, appErr.Details)
		}
	}
}
