// Package auth backs the status front end's login with bcrypt-hashed
// users and a securecookie session. This guards the dashboard only; the
// booking site has its own SSO handled in internal/libcal.
package auth

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/securecookie"
	"golang.org/x/crypto/bcrypt"

	"github.com/example/roombooker/internal/db"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS users (
	id BIGSERIAL PRIMARY KEY,
	username TEXT UNIQUE NOT NULL,
	password_bcrypt TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

type Store struct {
	sc *securecookie.SecureCookie
	db *db.DB
}

type ctxKey string

const userIDKey ctxKey = "userID"

const cookieName = "roombooker_session"

func NewStore(d *db.DB, hashKey, blockKey []byte) *Store {
	sc := securecookie.New(hashKey, blockKey)
	sc.MaxAge(int((14 * 24 * time.Hour).Seconds()))
	return &Store{sc: sc, db: d}
}

func (s *Store) Migrate(ctx context.Context) error {
	return s.db.Exec(ctx, schemaSQL)
}

func HashPassword(pw string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
	return string(b), err
}

func CheckPassword(hash, pw string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw)) == nil
}

func (s *Store) CreateUser(ctx context.Context, username, password string) error {
	hash, err := HashPassword(password)
	if err != nil {
		return err
	}
	return s.db.Exec(ctx, `INSERT INTO users(username, password_bcrypt) VALUES ($1,$2)`, username, hash)
}

func (s *Store) Authenticate(ctx context.Context, username, password string) (int64, error) {
	var id int64
	var hash string
	err := s.db.QueryRow(ctx, `SELECT id, password_bcrypt FROM users WHERE username=$1`, username).Scan(&id, &hash)
	if err != nil {
		return 0, db.WrapNotFound(err)
	}
	if !CheckPassword(hash, password) {
		return 0, errors.New("invalid credentials")
	}
	return id, nil
}

type Session struct {
	UserID int64
}

func (s *Store) SetSession(w http.ResponseWriter, r *http.Request, userID int64) error {
	encoded, err := s.sc.Encode(cookieName, Session{UserID: userID})
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    encoded,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   r.TLS != nil,
		MaxAge:   int((14 * 24 * time.Hour).Seconds()),
	})
	return nil
}

func (s *Store) ClearSession(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
}

func (s *Store) GetSession(r *http.Request) (Session, bool) {
	c, err := r.Cookie(cookieName)
	if err != nil {
		return Session{}, false
	}
	var sess Session
	if err := s.sc.Decode(cookieName, c.Value, &sess); err != nil || sess.UserID <= 0 {
		return Session{}, false
	}
	return sess, true
}

func (s *Store) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, ok := s.GetSession(r)
		if !ok {
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}
		ctx := context.WithValue(r.Context(), userIDKey, sess.UserID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func UserIDFromContext(ctx context.Context) (int64, bool) {
	uid, ok := ctx.Value(userIDKey).(int64)
	return uid, ok
}
