package echoServer_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/kp7829294-create/libzone/app/echoServer"
	"github.com/kp7829294-create/libzone/app/echoServer/controller"
	"github.com/kp7829294-create/libzone/app/echoServer/controller/auth"
	"github.com/kp7829294-create/libzone/app/echoServer/controller/book"
	"github.com/kp7829294-create/libzone/app/echoServer/controller/loan"
	"github.com/kp7829294-create/libzone/app/echoServer/controller/stats"
	"github.com/kp7829294-create/libzone/app/echoServer/controller/upload"
	"github.com/kp7829294-create/libzone/model"
	"github.com/kp7829294-create/libzone/repository/memstore"
	authsvc "github.com/kp7829294-create/libzone/service/auth"
	booksvc "github.com/kp7829294-create/libzone/service/book"
	loansvc "github.com/kp7829294-create/libzone/service/loan"
	statssvc "github.com/kp7829294-create/libzone/service/stats"
	uploadsvc "github.com/kp7829294-create/libzone/service/upload"
	"github.com/kp7829294-create/libzone/util/clock"
	"github.com/kp7829294-create/libzone/util/hash"
	jwtutil "github.com/kp7829294-create/libzone/util/jwt"
	"github.com/kp7829294-create/libzone/util/notify"
)

const secret = "server-test-secret"

type mailbox struct{ sent []notify.Message }

func (m *mailbox) Send(_ context.Context, msg notify.Message) error {
	m.sent = append(m.sent, msg)
	return nil
}

// presigner points private keys at the fake file server.
type presigner struct{ base string }

func (p presigner) PresignGet(_ context.Context, key string, _ time.Duration) (string, error) {
	return p.base + "/" + key + "?sig=1", nil
}

type env struct {
	e       *echo.Echo
	store   *memstore.Store
	files   *httptest.Server
	student string
	admin   string
}

func newEnv(t *testing.T) *env {
	t.Helper()

	files := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/ok.pdf" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/octet-stream")
		io.WriteString(w, "%PDF-1.4 body")
	}))
	t.Cleanup(files.Close)

	st := memstore.New()
	clk := clock.NewFake(time.Now().UTC())
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	as := authsvc.New(authsvc.Deps{
		Users:  st,
		OTPs:   st,
		Mail:   &mailbox{},
		Clock:  clk,
		Secret: secret,
		Log:    log,
		Codes:  func() (string, error) { return "123456", nil },
	})

	e := echoServer.New(log)
	echoServer.Register(e, echoServer.C{
		Auth:      &auth.Controller{Svc: as, Log: log, Cookie: echoServer.CookieName},
		User:      controller.NewUserController(as, log),
		Book:      &book.Controller{Svc: booksvc.New(st, clk), Log: log},
		Loan:      &loan.Controller{Svc: loansvc.New(st, presigner{files.URL}, files.Client(), clk), Log: log},
		Stats:     &stats.Controller{Svc: statssvc.New(st, clk)},
		Upload:    &upload.Controller{Svc: uploadsvc.New(nil), Log: log},
		JWTSecret: secret,
	})

	v := &env{e: e, store: st, files: files}
	v.student = v.account(t, "stu", "stu@campus.edu", model.RoleStudent)
	v.admin = v.account(t, "adm", "adm@campus.edu", model.RoleAdmin)
	return v
}

func (v *env) account(t *testing.T, id, email string, role model.Role) string {
	t.Helper()
	h, err := hash.HashPassword("password1")
	require.NoError(t, err)
	require.NoError(t, v.store.CreateUser(context.Background(), &model.User{ID: id, Name: id, Email: email, PasswordHash: h, Role: role}))
	tok, err := jwtutil.Issue(secret, id, string(role), time.Now())
	require.NoError(t, err)
	return tok
}

func (v *env) do(method, path, body, token string) *httptest.ResponseRecorder {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	v.e.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func errorOf(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	return decode[map[string]string](t, rec)["error"]
}

func (v *env) createBook(t *testing.T, body string) model.Book {
	t.Helper()
	rec := v.do(http.MethodPost, "/api/books", body, v.admin)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[model.Book](t, rec)
}

const bookJSON = `{"title":"Dune","author":"Herbert","category":"SciFi","total":2,"image":"/c.png","filePublicId":"ok.pdf"}`

func TestBorrowLifecycle(t *testing.T) {
	v := newEnv(t)
	b := v.createBook(t, bookJSON)
	require.Equal(t, 2, b.Available)

	rec := v.do(http.MethodPost, "/api/borrows", `{"bookId":"`+b.ID+`"}`, v.student)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	l := decode[model.Loan](t, rec)
	require.Equal(t, model.LoanActive, l.Status)
	require.Equal(t, 1, l.Book.Available)
	require.Equal(t, l.BorrowedAt.Add(model.LoanPeriod), l.DueDate)

	rec = v.do(http.MethodPost, "/api/borrows", `{"bookId":"`+b.ID+`"}`, v.student)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "You already borrowed this book", errorOf(t, rec))

	rec = v.do(http.MethodGet, "/api/borrows", "", v.student)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, decode[[]model.Loan](t, rec), 1)

	rec = v.do(http.MethodPost, "/api/borrows/return", `{"borrowId":"`+l.ID+`"}`, v.student)
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"ok":true}`, rec.Body.String())

	rec = v.do(http.MethodPost, "/api/borrows/return", `{"borrowId":"`+l.ID+`"}`, v.student)
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = v.do(http.MethodGet, "/api/books/"+b.ID, "", "")
	require.Equal(t, 2, decode[model.Book](t, rec).Available)

	rec = v.do(http.MethodGet, "/api/borrows", "", v.student)
	require.JSONEq(t, `[]`, rec.Body.String())
}

func TestOutOfStock(t *testing.T) {
	v := newEnv(t)
	b := v.createBook(t, `{"title":"T","author":"A","category":"C","total":1,"available":0,"image":"/c.png","filePublicId":"ok.pdf"}`)

	rec := v.do(http.MethodPost, "/api/borrows", `{"bookId":"`+b.ID+`"}`, v.student)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "Book out of stock", errorOf(t, rec))

	rec = v.do(http.MethodPost, "/api/borrows", `{"bookId":"missing"}`, v.student)
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = v.do(http.MethodPost, "/api/borrows", `{}`, v.student)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "Missing bookId", errorOf(t, rec))
}

func TestAccessControl(t *testing.T) {
	v := newEnv(t)
	b := v.createBook(t, bookJSON)

	cases := []struct {
		name, method, path, body, token string
	}{
		{"issue anonymous", http.MethodPost, "/api/borrows", `{"bookId":"` + b.ID + `"}`, ""},
		{"issue as admin", http.MethodPost, "/api/borrows", `{"bookId":"` + b.ID + `"}`, v.admin},
		{"create as student", http.MethodPost, "/api/books", bookJSON, v.student},
		{"delete as student", http.MethodDelete, "/api/books/" + b.ID, "", v.student},
		{"stats as student", http.MethodGet, "/api/stats", "", v.student},
		{"list anonymous", http.MethodGet, "/api/borrows", "", ""},
		{"bad token", http.MethodGet, "/api/borrows", "", "not-a-jwt"},
		{"upload as student", http.MethodPost, "/api/upload", "", v.student},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := v.do(tc.method, tc.path, tc.body, tc.token)
			require.Equal(t, http.StatusUnauthorized, rec.Code)
			require.Equal(t, "Unauthorized", errorOf(t, rec))
		})
	}

	rec := v.do(http.MethodGet, "/api/books", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestAdminEditAndDelete(t *testing.T) {
	v := newEnv(t)
	b := v.createBook(t, `{"title":"T","author":"A","category":"C","total":10,"available":7,"image":"/c.png","filePublicId":"ok.pdf"}`)

	rec := v.do(http.MethodPut, "/api/books/"+b.ID, `{"total":3}`, v.admin)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	got := decode[model.Book](t, rec)
	require.Equal(t, 3, got.Total)
	require.Equal(t, 3, got.Available)

	rec = v.do(http.MethodPut, "/api/books/missing", `{"total":3}`, v.admin)
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = v.do(http.MethodPost, "/api/borrows", `{"bookId":"`+b.ID+`"}`, v.student)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = v.do(http.MethodDelete, "/api/books/"+b.ID, "", v.admin)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "Book has active loans", errorOf(t, rec))

	rec = v.do(http.MethodGet, "/api/stats", "", v.admin)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, model.Stats{TotalBooks: 1, ActiveUsers: 1, IssuedBooks: 1}, decode[model.Stats](t, rec))

	other := v.createBook(t, bookJSON)
	rec = v.do(http.MethodDelete, "/api/books/"+other.ID, "", v.admin)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = v.do(http.MethodGet, "/api/books/"+other.ID, "", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "Book not found", errorOf(t, rec))
}

func TestSearch(t *testing.T) {
	v := newEnv(t)
	v.createBook(t, bookJSON)
	v.createBook(t, `{"title":"Emma","author":"Austen","category":"Classic","image":"/c.png","filePublicId":"ok.pdf"}`)

	rec := v.do(http.MethodGet, "/api/books?q=aus", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	rows := decode[[]model.Book](t, rec)
	require.Len(t, rows, 1)
	require.Equal(t, "Emma", rows[0].Title)

	rec = v.do(http.MethodGet, "/api/books?category=Nope", "", "")
	require.JSONEq(t, `[]`, rec.Body.String())
}

func TestReadModes(t *testing.T) {
	v := newEnv(t)
	b := v.createBook(t, bookJSON)
	rec := v.do(http.MethodPost, "/api/borrows", `{"bookId":"`+b.ID+`"}`, v.student)
	l := decode[model.Loan](t, rec)
	path := "/api/borrows/read/" + l.ID

	rec = v.do(http.MethodGet, path, "", v.student)
	require.Equal(t, http.StatusTemporaryRedirect, rec.Code)
	require.Equal(t, v.files.URL+"/ok.pdf?sig=1", rec.Header().Get(echo.HeaderLocation))

	rec = v.do(http.MethodGet, path+"?json=1", "", v.student)
	require.Equal(t, http.StatusOK, rec.Code)
	c := decode[loansvc.Content](t, rec)
	require.Equal(t, v.files.URL+"/ok.pdf?sig=1", c.URL)
	require.NotNil(t, c.ExpiresAt)

	rec = v.do(http.MethodGet, path+"?stream=1", "", v.student)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "application/pdf", rec.Header().Get(echo.HeaderContentType))
	require.Equal(t, `inline; filename="book.pdf"`, rec.Header().Get(echo.HeaderContentDisposition))
	require.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	require.Equal(t, "%PDF-1.4 body", rec.Body.String())

	rec = v.do(http.MethodGet, "/api/borrows/read/unknown", "", v.student)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestReadStreamUpstreamFailure(t *testing.T) {
	v := newEnv(t)
	b := v.createBook(t, `{"title":"T","author":"A","category":"C","image":"/c.png","filePublicId":"gone.pdf"}`)
	rec := v.do(http.MethodPost, "/api/borrows", `{"bookId":"`+b.ID+`"}`, v.student)
	l := decode[model.Loan](t, rec)

	rec = v.do(http.MethodGet, "/api/borrows/read/"+l.ID+"?stream=1", "", v.student)
	require.Equal(t, http.StatusBadGateway, rec.Code)
	require.Equal(t, "Failed to fetch book file", errorOf(t, rec))
}

func TestSignupSessionFlow(t *testing.T) {
	v := newEnv(t)

	rec := v.do(http.MethodPost, "/api/auth/send-otp", `{"email":"new@campus.edu","name":"New"}`, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = v.do(http.MethodPost, "/api/auth/signup", `{"name":"New","email":"new@campus.edu","password":"secret1","otp":"123456"}`, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	out := decode[struct {
		User  model.User `json:"user"`
		Token string     `json:"token"`
	}](t, rec)
	require.Equal(t, model.RoleStudent, out.User.Role)
	require.NotContains(t, rec.Body.String(), "password")

	var session *http.Cookie
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == echoServer.CookieName {
			session = ck
		}
	}
	require.NotNil(t, session)
	require.True(t, session.HttpOnly)
	require.Equal(t, out.Token, session.Value)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.AddCookie(&http.Cookie{Name: echoServer.CookieName, Value: session.Value})
	me := httptest.NewRecorder()
	v.e.ServeHTTP(me, req)
	require.Equal(t, http.StatusOK, me.Code)
	require.Equal(t, "new@campus.edu", decode[map[string]model.User](t, me)["user"].Email)

	rec = v.do(http.MethodGet, "/api/auth/me", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"user":null}`, rec.Body.String())

	rec = v.do(http.MethodGet, "/api/auth/me", "", "garbage")
	require.JSONEq(t, `{"user":null}`, rec.Body.String())

	rec = v.do(http.MethodPost, "/api/auth/logout", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	cleared := rec.Result().Cookies()
	require.Len(t, cleared, 1)
	require.Equal(t, echoServer.CookieName, cleared[0].Name)
	require.Negative(t, cleared[0].MaxAge)
}

func TestLoginAndProfile(t *testing.T) {
	v := newEnv(t)

	rec := v.do(http.MethodPost, "/api/auth/login", `{"email":"stu@campus.edu","password":"password1"}`, "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = v.do(http.MethodPost, "/api/auth/login", `{"email":"stu@campus.edu","password":"wrong"}`, "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, "Invalid credentials", errorOf(t, rec))

	rec = v.do(http.MethodPost, "/api/auth/login", `{"email":"nope","password":"x"}`, "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "Invalid email", errorOf(t, rec))

	rec = v.do(http.MethodPost, "/api/auth/login", `{"email":`, "")
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = v.do(http.MethodPatch, "/api/users/me", `{"name":"Stu B"}`, v.student)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "Stu B", decode[map[string]model.User](t, rec)["user"].Name)

	rec = v.do(http.MethodPatch, "/api/users/me", `{"currentPassword":"bad","newPassword":"secret2"}`, v.student)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "Current password is incorrect", errorOf(t, rec))
}

func TestUploadWithoutStorage(t *testing.T) {
	v := newEnv(t)
	rec := v.do(http.MethodPost, "/api/upload", "", v.admin)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}
