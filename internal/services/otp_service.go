package services

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"math/big"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/cashtrack/backend/internal/mailer"
	"github.com/cashtrack/backend/internal/models"
)

var (
	// ErrInvalidCode covers wrong, consumed, and superseded codes alike, and
	// is also returned when the correo has no codes at all.
	ErrInvalidCode = errors.New("otp: invalid code")
	// ErrExpiredCode means the code matched but its 5-minute window passed.
	ErrExpiredCode = errors.New("otp: expired code")
	// ErrTooManyAttempts means the correo exceeded the failed-verify budget.
	ErrTooManyAttempts = errors.New("otp: too many attempts")
)

const (
	otpMailSubject = "Tu código de uso temporal - CashTrack"

	// 6-digit codes are a small space, so failed verifies are rate limited.
	maxVerifyAttempts = 5
	attemptWindow     = 5 * time.Minute
)

// OTPService issues and verifies one-time passcodes. Codes live in postgres
// (never deleted, only flagged used); Redis, when present, tracks failed
// verify attempts per correo.
type OTPService struct {
	db     *sql.DB
	redis  *redis.Client
	mailer mailer.Mailer
}

func NewOTPService(db *sql.DB, redisClient *redis.Client, m mailer.Mailer) *OTPService {
	return &OTPService{
		db:     db,
		redis:  redisClient,
		mailer: m,
	}
}

// Issue generates a fresh 6-digit code for the user, valid for 5 minutes,
// and dispatches it by mail. Any still-outstanding codes for the same user
// are invalidated in the same transaction, so only the newest code verifies.
// Mail delivery is fire-and-forget: failures are logged, never returned.
func (s *OTPService) Issue(ctx context.Context, userID int, correo string) error {
	code, err := generateCode()
	if err != nil {
		return fmt.Errorf("generate otp code: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin otp issue: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`UPDATE otp_codes SET used = TRUE WHERE user_id = $1 AND used = FALSE`,
		userID); err != nil {
		return fmt.Errorf("supersede otp codes: %w", err)
	}

	now := time.Now()
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO otp_codes (user_id, code, created_at, expires_at, used) VALUES ($1, $2, $3, $4, FALSE)`,
		userID, code, now, now.Add(models.OTPTTL)); err != nil {
		return fmt.Errorf("insert otp code: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit otp issue: %w", err)
	}

	go s.deliver(correo, code)
	return nil
}

// Verify consumes the newest unused code for correo if it matches. The
// lookup and the used-flag write happen in one transaction with a row lock,
// so a code can never be consumed twice under concurrent verifies.
func (s *OTPService) Verify(ctx context.Context, correo, code string) error {
	if err := s.checkAttempts(ctx, correo); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin otp verify: %w", err)
	}
	defer tx.Rollback()

	var match models.OTPCode
	err = tx.QueryRowContext(ctx, `
		SELECT o.id, o.expires_at
		FROM otp_codes o
		JOIN usuarios u ON u.id = o.user_id
		WHERE u.correo = $1 AND o.code = $2 AND o.used = FALSE
		ORDER BY o.id DESC
		LIMIT 1
		FOR UPDATE OF o`, correo, code).Scan(&match.ID, &match.ExpiresAt)
	if err == sql.ErrNoRows {
		s.recordFailure(ctx, correo)
		return ErrInvalidCode
	}
	if err != nil {
		return fmt.Errorf("lookup otp code: %w", err)
	}

	if match.Expired(time.Now()) {
		s.recordFailure(ctx, correo)
		return ErrExpiredCode
	}

	if _, err := tx.ExecContext(ctx, `UPDATE otp_codes SET used = TRUE WHERE id = $1`, match.ID); err != nil {
		return fmt.Errorf("consume otp code: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit otp verify: %w", err)
	}

	s.clearAttempts(ctx, correo)
	return nil
}

func (s *OTPService) deliver(correo, code string) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	body := fmt.Sprintf("Tu código de verificación es: %s\n\nExpira en 5 minutos.", code)
	if err := s.mailer.Send(ctx, correo, otpMailSubject, body); err != nil {
		log.Printf("[OTP] mail delivery failed for %s: %v", correo, err)
	}
}

func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

func attemptsKey(correo string) string {
	return "otp_attempts:" + correo
}

func (s *OTPService) checkAttempts(ctx context.Context, correo string) error {
	if s.redis == nil {
		return nil
	}
	n, err := s.redis.Get(ctx, attemptsKey(correo)).Int()
	if err != nil {
		// Missing key or Redis trouble: never block verification on it.
		return nil
	}
	if n >= maxVerifyAttempts {
		return ErrTooManyAttempts
	}
	return nil
}

func (s *OTPService) recordFailure(ctx context.Context, correo string) {
	if s.redis == nil {
		return
	}
	key := attemptsKey(correo)
	if err := s.redis.Incr(ctx, key).Err(); err != nil {
		log.Printf("[OTP] failed to record verify attempt for %s: %v", correo, err)
		return
	}
	s.redis.Expire(ctx, key, attemptWindow)
}

func (s *OTPService) clearAttempts(ctx context.Context, correo string) {
	if s.redis == nil {
		return
	}
	s.redis.Del(ctx, attemptsKey(correo))
}
