package services

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/viper"
)

// AuthService orchestrates the passwordless register/login flows. Both flows
// end in the shared OTP verify step; only the login side mints tokens.
type AuthService struct {
	db        *sql.DB
	redis     *redis.Client
	otp       *OTPService
	validator *ValidationHelper
}

// RegisterRequest represents the registration request payload
// @Description Registration request structure
type RegisterRequest struct {
	Correo string `json:"correo" validate:"required,email" example:"ana@example.com"` // User email address
	Nombre string `json:"nombre" validate:"required,min=1,max=15" example:"Ana"`      // Display name
}

// LoginRequest represents the login request payload
// @Description Login request structure
type LoginRequest struct {
	Correo string `json:"correo" validate:"required,email" example:"ana@example.com"` // User email address
}

// VerifyRequest represents the OTP verification payload
// @Description OTP verification request structure
type VerifyRequest struct {
	Correo string `json:"correo" validate:"required,email" example:"ana@example.com"` // User email address
	OTP    string `json:"otp" validate:"required,len=6,numeric" example:"123456"`     // 6-digit code
}

// TokenPairResponse carries the session credentials minted on login verify
// @Description Access and refresh token pair
type TokenPairResponse struct {
	Access  string `json:"access"`  // Short-lived bearer token
	Refresh string `json:"refresh"` // Long-lived refresh token
}

// MessageResponse is a plain confirmation message
// @Description Confirmation message structure
type MessageResponse struct {
	Message string `json:"message" example:"OTP enviado al correo"`
}

func NewAuthService(db *sql.DB, redisClient *redis.Client, otp *OTPService) *AuthService {
	return &AuthService{
		db:        db,
		redis:     redisClient,
		otp:       otp,
		validator: NewValidationHelper(),
	}
}

// Register starts the registration flow
// @Summary Register a new user
// @Description Create an unverified user and send an OTP to the given email
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "Registration request"
// @Success 200 {object} MessageResponse "OTP sent"
// @Failure 400 {object} ErrorResponse "Invalid request or user already exists"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /register [post]
func (s *AuthService) Register(w http.ResponseWriter, r *http.Request) {
	log.Printf("[AUTH] Registration attempt from IP: %s", r.RemoteAddr)

	maxBytes := 1_048_576 // 1 MB
	r.Body = http.MaxBytesReader(w, r.Body, int64(maxBytes))

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	var req RegisterRequest
	if err := dec.Decode(&req); err != nil {
		log.Printf("[AUTH] Registration failed - invalid request: %v", err)
		SendErrorResponse(w, "Invalid request", http.StatusBadRequest, nil)
		return
	}

	if err := dec.Decode(&struct{}{}); err != io.EOF {
		log.Printf("[AUTH] Multiple JSON objects detected")
		SendErrorResponse(w, "Request body must only contain a single JSON object", http.StatusBadRequest, nil)
		return
	}

	if err := s.validator.ValidateStruct(&req); err != nil {
		log.Printf("[AUTH] Registration validation failed: %v", err)
		SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	correo := strings.ToLower(strings.TrimSpace(req.Correo))
	log.Printf("[AUTH] Registration request for email: %s", correo)

	var exists bool
	if err := s.db.QueryRowContext(r.Context(),
		`SELECT EXISTS (SELECT 1 FROM usuarios WHERE correo = $1)`, correo).Scan(&exists); err != nil {
		log.Printf("[AUTH] Registration lookup failed for %s: %v", correo, err)
		SendErrorResponse(w, "Failed to create user", http.StatusInternalServerError, nil)
		return
	}
	if exists {
		SendErrorResponse(w, "Usuario ya existe", http.StatusBadRequest, nil)
		return
	}

	var userID int
	err := s.db.QueryRowContext(r.Context(),
		`INSERT INTO usuarios (nombre, correo, presupuesto) VALUES ($1, $2, 0) RETURNING id`,
		req.Nombre, correo).Scan(&userID)
	if err != nil {
		// Unique violation on a concurrent register lands here too.
		log.Printf("[AUTH] User creation failed for %s: %v", correo, err)
		SendErrorResponse(w, "Usuario ya existe", http.StatusBadRequest, nil)
		return
	}

	log.Printf("[AUTH] User created - ID: %d, Email: %s (pending OTP verification)", userID, correo)

	if err := s.otp.Issue(r.Context(), userID, correo); err != nil {
		log.Printf("[AUTH] OTP issue failed for %s: %v", correo, err)
		SendErrorResponse(w, "Failed to generate OTP", http.StatusInternalServerError, nil)
		return
	}

	SendJSON(w, http.StatusOK, MessageResponse{Message: "OTP enviado al correo"})
}

// VerifyRegister completes the registration flow
// @Summary Verify a registration OTP
// @Description Confirm the emailed code; no tokens are issued, log in next
// @Tags auth
// @Accept json
// @Produce json
// @Param request body VerifyRequest true "Verification request"
// @Success 200 {object} MessageResponse "User verified"
// @Failure 400 {object} ErrorResponse "Invalid or expired OTP"
// @Failure 429 {object} ErrorResponse "Too many attempts"
// @Router /verify-register [post]
func (s *AuthService) VerifyRegister(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeVerify(w, r)
	if !ok {
		return
	}

	if err := s.otp.Verify(r.Context(), req.Correo, req.OTP); err != nil {
		s.sendVerifyError(w, req.Correo, err)
		return
	}

	log.Printf("[AUTH] Registration verified for %s", req.Correo)
	SendJSON(w, http.StatusOK, MessageResponse{Message: "Usuario verificado con éxito"})
}

// Login starts the login flow
// @Summary Log in an existing user
// @Description Send an OTP to a known email address
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login request"
// @Success 200 {object} MessageResponse "OTP sent"
// @Failure 404 {object} ErrorResponse "User not found"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /login [post]
func (s *AuthService) Login(w http.ResponseWriter, r *http.Request) {
	log.Printf("[AUTH] Login attempt from IP: %s", r.RemoteAddr)

	maxBytes := 1_048_576 // 1 MB
	r.Body = http.MaxBytesReader(w, r.Body, int64(maxBytes))

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	var req LoginRequest
	if err := dec.Decode(&req); err != nil {
		log.Printf("[AUTH] Login failed - invalid request: %v", err)
		SendErrorResponse(w, "Invalid request", http.StatusBadRequest, nil)
		return
	}

	if err := s.validator.ValidateStruct(&req); err != nil {
		log.Printf("[AUTH] Login validation failed: %v", err)
		SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	correo := strings.ToLower(strings.TrimSpace(req.Correo))

	var userID int
	err := s.db.QueryRowContext(r.Context(),
		`SELECT id FROM usuarios WHERE correo = $1`, correo).Scan(&userID)
	if err == sql.ErrNoRows {
		log.Printf("[AUTH] Login for unknown email: %s", correo)
		SendErrorResponse(w, "Usuario no existe", http.StatusNotFound, nil)
		return
	}
	if err != nil {
		log.Printf("[AUTH] Login lookup failed for %s: %v", correo, err)
		SendErrorResponse(w, "Failed to look up user", http.StatusInternalServerError, nil)
		return
	}

	if err := s.otp.Issue(r.Context(), userID, correo); err != nil {
		log.Printf("[AUTH] OTP issue failed for %s: %v", correo, err)
		SendErrorResponse(w, "Failed to generate OTP", http.StatusInternalServerError, nil)
		return
	}

	SendJSON(w, http.StatusOK, MessageResponse{Message: "OTP enviado al correo"})
}

// VerifyLogin completes the login flow
// @Summary Verify a login OTP
// @Description Confirm the emailed code and mint the access/refresh pair
// @Tags auth
// @Accept json
// @Produce json
// @Param request body VerifyRequest true "Verification request"
// @Success 200 {object} TokenPairResponse "Session credentials"
// @Failure 400 {object} ErrorResponse "Invalid or expired OTP"
// @Failure 429 {object} ErrorResponse "Too many attempts"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /verify-login [post]
func (s *AuthService) VerifyLogin(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeVerify(w, r)
	if !ok {
		return
	}

	if err := s.otp.Verify(r.Context(), req.Correo, req.OTP); err != nil {
		s.sendVerifyError(w, req.Correo, err)
		return
	}

	var userID int
	if err := s.db.QueryRowContext(r.Context(),
		`SELECT id FROM usuarios WHERE correo = $1`, req.Correo).Scan(&userID); err != nil {
		log.Printf("[AUTH] Verified login but user lookup failed for %s: %v", req.Correo, err)
		SendErrorResponse(w, "Failed to look up user", http.StatusInternalServerError, nil)
		return
	}

	access, refresh, err := generateTokenPair(userID, req.Correo)
	if err != nil {
		log.Printf("[AUTH] Token generation failed for %s: %v", req.Correo, err)
		SendErrorResponse(w, "Failed to generate token", http.StatusInternalServerError, nil)
		return
	}

	log.Printf("[AUTH] Login successful for user %d", userID)
	SendJSON(w, http.StatusOK, TokenPairResponse{Access: access, Refresh: refresh})
}

// Logout blacklists the presented access token
// @Summary Logout user
// @Description Blacklist the bearer token until its natural expiry
// @Tags auth
// @Produce json
// @Success 200 {object} MessageResponse "Logout successful"
// @Router /logout [post]
func (s *AuthService) Logout(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(r.Header.Get("Authorization"), " ")
	if len(parts) == 2 && parts[0] == "Bearer" && s.redis != nil {
		key := fmt.Sprintf("blacklist:%s", parts[1])
		if err := s.redis.Set(r.Context(), key, "1", accessTokenTTL()).Err(); err != nil {
			log.Printf("[AUTH] Failed to blacklist token: %v", err)
		}
	}

	SendJSON(w, http.StatusOK, MessageResponse{Message: "Logout successful"})
}

func (s *AuthService) decodeVerify(w http.ResponseWriter, r *http.Request) (VerifyRequest, bool) {
	var req VerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		SendErrorResponse(w, "Invalid request", http.StatusBadRequest, nil)
		return req, false
	}
	if err := s.validator.ValidateStruct(&req); err != nil {
		SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return req, false
	}
	req.Correo = strings.ToLower(strings.TrimSpace(req.Correo))
	return req, true
}

func (s *AuthService) sendVerifyError(w http.ResponseWriter, correo string, err error) {
	switch {
	case errors.Is(err, ErrInvalidCode):
		SendErrorResponse(w, "OTP inválido", http.StatusBadRequest, nil)
	case errors.Is(err, ErrExpiredCode):
		SendErrorResponse(w, "OTP expirado", http.StatusBadRequest, nil)
	case errors.Is(err, ErrTooManyAttempts):
		SendErrorResponse(w, "Demasiados intentos, intenta más tarde", http.StatusTooManyRequests, nil)
	default:
		log.Printf("[AUTH] OTP verify failed for %s: %v", correo, err)
		SendErrorResponse(w, "Failed to verify OTP", http.StatusInternalServerError, nil)
	}
}

func accessTokenTTL() time.Duration {
	viper.SetDefault("jwt.access_ttl", 30*time.Minute)
	return viper.GetDuration("jwt.access_ttl")
}

func refreshTokenTTL() time.Duration {
	viper.SetDefault("jwt.refresh_ttl", 7*24*time.Hour)
	return viper.GetDuration("jwt.refresh_ttl")
}

func generateTokenPair(userID int, correo string) (access, refresh string, err error) {
	access, err = signToken(userID, correo, "access", accessTokenTTL())
	if err != nil {
		return "", "", err
	}
	refresh, err = signToken(userID, correo, "refresh", refreshTokenTTL())
	if err != nil {
		return "", "", err
	}
	return access, refresh, nil
}

func signToken(userID int, correo, tokenType string, ttl time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":        correo,
		"user_id":    userID,
		"token_type": tokenType,
		"exp":        now.Add(ttl).Unix(),
		"iat":        now.Unix(),
	})
	return token.SignedString([]byte(viper.GetString("jwt.secret_key")))
}
