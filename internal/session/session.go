package session

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/nacl/secretbox"

	"cinestream/internal/movieapi"
)

// CookieName is the cookie holding the signed session.
const CookieName = "mr-token"

var (
	ErrNoCredential = errors.New("session: no credential")
	errSealed       = errors.New("session: credential cannot be opened")
)

// Claims identify one signed-in browser: SessionID keys its server-side view
// state, Credential is the backend token.
type Claims struct {
	SessionID  string
	Credential movieapi.Credential
}

type jwtClaims struct {
	SessionID string `json:"sid"`
	Sealed    string `json:"cred"`
	jwt.RegisteredClaims
}

type Manager struct {
	secret []byte
	key    [32]byte
	secure bool
	now    func() time.Time
}

func NewManager(secret string, secure bool) *Manager {
	return &Manager{
		secret: []byte(secret),
		key:    sha256.Sum256([]byte("cinestream/credential:" + secret)),
		secure: secure,
		now:    time.Now,
	}
}

// Encode seals the credential and signs the result.
func (m *Manager) Encode(c Claims) (string, error) {
	sealed, err := m.seal([]byte(c.Credential))
	if err != nil {
		return "", err
	}
	claims := jwtClaims{
		SessionID: c.SessionID,
		Sealed:    sealed,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(m.now()),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

func (m *Manager) Decode(raw string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(raw, &jwtClaims{}, func(token *jwt.Token) (interface{}, error) {
		return m.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	c, ok := token.Claims.(*jwtClaims)
	if !ok {
		return nil, errors.New("invalid claims")
	}
	cred, err := m.open(c.Sealed)
	if err != nil {
		return nil, err
	}
	return &Claims{SessionID: c.SessionID, Credential: movieapi.Credential(cred)}, nil
}

// CredentialFromRequest reads and verifies the session cookie.
func (m *Manager) CredentialFromRequest(r *http.Request) (*Claims, error) {
	ck, err := r.Cookie(CookieName)
	if err != nil || ck.Value == "" {
		return nil, ErrNoCredential
	}
	claims, err := m.Decode(ck.Value)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoCredential, err)
	}
	if claims.Credential.IsZero() {
		return nil, ErrNoCredential
	}
	return claims, nil
}

// Store starts a new session for cred and sets the cookie.
func (m *Manager) Store(w http.ResponseWriter, cred movieapi.Credential) (*Claims, error) {
	claims := &Claims{SessionID: uuid.NewString(), Credential: cred}
	value, err := m.Encode(*claims)
	if err != nil {
		return nil, err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return claims, nil
}

// Clear expires the cookie.
func (m *Manager) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ResponseStore adapts a Manager and a response into a credential store for
// the auth view.
type ResponseStore struct {
	Manager *Manager
	Writer  http.ResponseWriter
	Claims  *Claims
}

func (s *ResponseStore) Store(cred movieapi.Credential) error {
	claims, err := s.Manager.Store(s.Writer, cred)
	if err != nil {
		return err
	}
	s.Claims = claims
	return nil
}

func (m *Manager) seal(plain []byte) (string, error) {
	var nonce [24]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return "", err
	}
	box := secretbox.Seal(nonce[:], plain, &nonce, &m.key)
	return base64.RawURLEncoding.EncodeToString(box), nil
}

func (m *Manager) open(sealed string) ([]byte, error) {
	box, err := base64.RawURLEncoding.DecodeString(sealed)
	if err != nil || len(box) < 24 {
		return nil, errSealed
	}
	var nonce [24]byte
	copy(nonce[:], box[:24])
	plain, ok := secretbox.Open(nil, box[24:], &nonce, &m.key)
	if !ok {
		return nil, errSealed
	}
	return plain, nil
}
