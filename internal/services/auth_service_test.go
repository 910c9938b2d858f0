package services

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-redis/redismock/v8"
	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func newAuthFixture(t *testing.T) (*AuthService, sqlmock.Sqlmock, *MockMailer) {
	t.Helper()

	db, dbmock, err := sqlmock.New()
	assert.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	viper.Set("jwt.secret_key", "test-secret")
	viper.Set("jwt.access_ttl", 30*time.Minute)
	viper.Set("jwt.refresh_ttl", 7*24*time.Hour)

	mailer := new(MockMailer)
	otp := NewOTPService(db, nil, mailer)
	return NewAuthService(db, nil, otp), dbmock, mailer
}

func postJSON(t *testing.T, handler http.HandlerFunc, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	assert.NoError(t, err)
	r := httptest.NewRequest("POST", path, bytes.NewBuffer(body))
	w := httptest.NewRecorder()
	handler(w, r)
	return w
}

func TestAuthService_Register(t *testing.T) {
	service, dbmock, mailer := newAuthFixture(t)

	t.Run("successful registration sends OTP", func(t *testing.T) {
		delivered := make(chan struct{})
		mailer.On("Send", mock.Anything, "a@x.com", mock.Anything, mock.Anything).
			Return(nil).
			Run(func(mock.Arguments) { close(delivered) }).
			Once()

		dbmock.ExpectQuery("SELECT EXISTS").
			WithArgs("a@x.com").
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
		dbmock.ExpectQuery("INSERT INTO usuarios").
			WithArgs("A", "a@x.com").
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
		dbmock.ExpectBegin()
		dbmock.ExpectExec("UPDATE otp_codes SET used = TRUE WHERE user_id").
			WithArgs(1).
			WillReturnResult(sqlmock.NewResult(0, 0))
		dbmock.ExpectExec("INSERT INTO otp_codes").
			WithArgs(1, sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(1, 1))
		dbmock.ExpectCommit()

		w := postJSON(t, service.Register, "/register", RegisterRequest{Correo: "a@x.com", Nombre: "A"})

		assert.Equal(t, http.StatusOK, w.Code)
		var resp MessageResponse
		json.Unmarshal(w.Body.Bytes(), &resp)
		assert.Equal(t, "OTP enviado al correo", resp.Message)

		select {
		case <-delivered:
		case <-time.After(2 * time.Second):
			t.Fatal("mail was never dispatched")
		}
		assert.NoError(t, dbmock.ExpectationsWereMet())
	})

	t.Run("existing email", func(t *testing.T) {
		dbmock.ExpectQuery("SELECT EXISTS").
			WithArgs("a@x.com").
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

		w := postJSON(t, service.Register, "/register", RegisterRequest{Correo: "a@x.com", Nombre: "A"})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		var resp ErrorResponse
		json.Unmarshal(w.Body.Bytes(), &resp)
		assert.Equal(t, "Usuario ya existe", resp.Error)
	})

	t.Run("invalid request body", func(t *testing.T) {
		r := httptest.NewRequest("POST", "/register", bytes.NewBufferString("invalid"))
		w := httptest.NewRecorder()

		service.Register(w, r)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("missing nombre", func(t *testing.T) {
		w := postJSON(t, service.Register, "/register", RegisterRequest{Correo: "a@x.com"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestAuthService_Login(t *testing.T) {
	service, dbmock, mailer := newAuthFixture(t)

	t.Run("unknown email", func(t *testing.T) {
		dbmock.ExpectQuery("SELECT id FROM usuarios").
			WithArgs("nadie@x.com").
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		w := postJSON(t, service.Login, "/login", LoginRequest{Correo: "nadie@x.com"})

		assert.Equal(t, http.StatusNotFound, w.Code)
		var resp ErrorResponse
		json.Unmarshal(w.Body.Bytes(), &resp)
		assert.Equal(t, "Usuario no existe", resp.Error)
	})

	t.Run("known email sends OTP", func(t *testing.T) {
		delivered := make(chan struct{})
		mailer.On("Send", mock.Anything, "a@x.com", mock.Anything, mock.Anything).
			Return(nil).
			Run(func(mock.Arguments) { close(delivered) }).
			Once()

		dbmock.ExpectQuery("SELECT id FROM usuarios").
			WithArgs("a@x.com").
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
		dbmock.ExpectBegin()
		dbmock.ExpectExec("UPDATE otp_codes SET used = TRUE WHERE user_id").
			WithArgs(1).
			WillReturnResult(sqlmock.NewResult(0, 1))
		dbmock.ExpectExec("INSERT INTO otp_codes").
			WithArgs(1, sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(2, 1))
		dbmock.ExpectCommit()

		w := postJSON(t, service.Login, "/login", LoginRequest{Correo: "a@x.com"})

		assert.Equal(t, http.StatusOK, w.Code)
		<-delivered
	})
}

func TestAuthService_VerifyRegister(t *testing.T) {
	service, dbmock, _ := newAuthFixture(t)

	t.Run("wrong code", func(t *testing.T) {
		dbmock.ExpectBegin()
		dbmock.ExpectQuery("SELECT o.id, o.expires_at").
			WithArgs("a@x.com", "000000").
			WillReturnRows(sqlmock.NewRows([]string{"id", "expires_at"}))
		dbmock.ExpectRollback()

		w := postJSON(t, service.VerifyRegister, "/verify-register", VerifyRequest{Correo: "a@x.com", OTP: "000000"})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		var resp ErrorResponse
		json.Unmarshal(w.Body.Bytes(), &resp)
		assert.Equal(t, "OTP inválido", resp.Error)
	})

	t.Run("correct code returns message, no tokens", func(t *testing.T) {
		dbmock.ExpectBegin()
		dbmock.ExpectQuery("SELECT o.id, o.expires_at").
			WithArgs("a@x.com", "123456").
			WillReturnRows(sqlmock.NewRows([]string{"id", "expires_at"}).
				AddRow(1, time.Now().Add(time.Minute)))
		dbmock.ExpectExec("UPDATE otp_codes SET used = TRUE WHERE id").
			WithArgs(1).
			WillReturnResult(sqlmock.NewResult(0, 1))
		dbmock.ExpectCommit()

		w := postJSON(t, service.VerifyRegister, "/verify-register", VerifyRequest{Correo: "a@x.com", OTP: "123456"})

		assert.Equal(t, http.StatusOK, w.Code)
		var raw map[string]any
		json.Unmarshal(w.Body.Bytes(), &raw)
		assert.Equal(t, "Usuario verificado con éxito", raw["message"])
		assert.NotContains(t, raw, "access")
		assert.NotContains(t, raw, "refresh")
	})

	t.Run("expired code", func(t *testing.T) {
		dbmock.ExpectBegin()
		dbmock.ExpectQuery("SELECT o.id, o.expires_at").
			WithArgs("a@x.com", "123456").
			WillReturnRows(sqlmock.NewRows([]string{"id", "expires_at"}).
				AddRow(2, time.Now().Add(-6*time.Minute)))
		dbmock.ExpectRollback()

		w := postJSON(t, service.VerifyRegister, "/verify-register", VerifyRequest{Correo: "a@x.com", OTP: "123456"})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		var resp ErrorResponse
		json.Unmarshal(w.Body.Bytes(), &resp)
		assert.Equal(t, "OTP expirado", resp.Error)
	})
}

func TestAuthService_VerifyLogin(t *testing.T) {
	service, dbmock, _ := newAuthFixture(t)

	t.Run("correct code mints token pair", func(t *testing.T) {
		dbmock.ExpectBegin()
		dbmock.ExpectQuery("SELECT o.id, o.expires_at").
			WithArgs("a@x.com", "123456").
			WillReturnRows(sqlmock.NewRows([]string{"id", "expires_at"}).
				AddRow(3, time.Now().Add(time.Minute)))
		dbmock.ExpectExec("UPDATE otp_codes SET used = TRUE WHERE id").
			WithArgs(3).
			WillReturnResult(sqlmock.NewResult(0, 1))
		dbmock.ExpectCommit()
		dbmock.ExpectQuery("SELECT id FROM usuarios").
			WithArgs("a@x.com").
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))

		w := postJSON(t, service.VerifyLogin, "/verify-login", VerifyRequest{Correo: "a@x.com", OTP: "123456"})

		assert.Equal(t, http.StatusOK, w.Code)
		var resp TokenPairResponse
		json.Unmarshal(w.Body.Bytes(), &resp)
		assert.NotEmpty(t, resp.Access)
		assert.NotEmpty(t, resp.Refresh)

		token, err := jwt.Parse(resp.Access, func(*jwt.Token) (any, error) {
			return []byte("test-secret"), nil
		})
		assert.NoError(t, err)
		claims := token.Claims.(jwt.MapClaims)
		assert.Equal(t, "a@x.com", claims["sub"])
		assert.Equal(t, "access", claims["token_type"])
	})

	t.Run("wrong code returns no tokens", func(t *testing.T) {
		dbmock.ExpectBegin()
		dbmock.ExpectQuery("SELECT o.id, o.expires_at").
			WithArgs("a@x.com", "999999").
			WillReturnRows(sqlmock.NewRows([]string{"id", "expires_at"}))
		dbmock.ExpectRollback()

		w := postJSON(t, service.VerifyLogin, "/verify-login", VerifyRequest{Correo: "a@x.com", OTP: "999999"})

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestAuthService_Logout(t *testing.T) {
	db, _, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	viper.Set("jwt.access_ttl", 30*time.Minute)

	redisClient, redisMock := redismock.NewClientMock()
	service := NewAuthService(db, redisClient, NewOTPService(db, nil, new(MockMailer)))

	t.Run("blacklists the presented bearer token", func(t *testing.T) {
		redisMock.ExpectSet("blacklist:sometoken", "1", 30*time.Minute).SetVal("OK")

		r := httptest.NewRequest("POST", "/logout", nil)
		r.Header.Set("Authorization", "Bearer sometoken")
		w := httptest.NewRecorder()
		service.Logout(w, r)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.NoError(t, redisMock.ExpectationsWereMet())
	})

	t.Run("malformed header blacklists nothing", func(t *testing.T) {
		// This expectation must stay unmet: a header without a proper
		// "Bearer " prefix never yields a blacklist entry.
		redisMock.ExpectSet("blacklist:xgarbagegarbage", "1", 30*time.Minute).SetVal("OK")

		r := httptest.NewRequest("POST", "/logout", nil)
		r.Header.Set("Authorization", "Bearerxxgarbagegarbage")
		w := httptest.NewRecorder()
		service.Logout(w, r)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Error(t, redisMock.ExpectationsWereMet())
	})

	t.Run("no header still succeeds", func(t *testing.T) {
		redisMock.ClearExpect()

		r := httptest.NewRequest("POST", "/logout", nil)
		w := httptest.NewRecorder()
		service.Logout(w, r)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.NoError(t, redisMock.ExpectationsWereMet())
	})
}

func TestGenerateTokenPair(t *testing.T) {
	viper.Set("jwt.secret_key", "test-secret")
	viper.Set("jwt.access_ttl", 30*time.Minute)
	viper.Set("jwt.refresh_ttl", 7*24*time.Hour)

	access, refresh, err := generateTokenPair(1, "a@x.com")
	assert.NoError(t, err)
	assert.NotEmpty(t, access)
	assert.NotEmpty(t, refresh)
	assert.NotEqual(t, access, refresh)

	token, err := jwt.Parse(refresh, func(*jwt.Token) (any, error) {
		return []byte("test-secret"), nil
	})
	assert.NoError(t, err)
	claims := token.Claims.(jwt.MapClaims)
	assert.Equal(t, "refresh", claims["token_type"])
	assert.Equal(t, float64(1), claims["user_id"])
}
