// Package cookie reads and writes plain, signed, encrypted and flash cookies.
//
// Every configured secret yields two keys through HKDF-SHA256, one for HMAC
// signing and one for AES-GCM encryption. Writes always use the first secret;
// reads try every secret in order so secrets can be rotated without logging
// users out.
package cookie

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"slices"
	"strings"
	"time"

	"golang.org/x/crypto/hkdf"
)

const (
	minSecretLength = 32
	flashPrefix     = "_flash_"
)

type keyPair struct {
	sign []byte
	enc  cipher.AEAD
}

// Manager holds the derived keys and the default cookie attributes.
type Manager struct {
	keys     []keyPair
	defaults Options
}

// New creates a Manager. At least one non-empty secret of 32 or more
// characters is required.
func New(secrets []string, opts ...Option) (*Manager, error) {
	secrets = slices.DeleteFunc(slices.Clone(secrets), func(s string) bool { return s == "" })
	if len(secrets) == 0 {
		return nil, ErrNoSecret
	}

	keys := make([]keyPair, 0, len(secrets))
	for i, s := range secrets {
		if len(s) < minSecretLength {
			return nil, fmt.Errorf("%w: secret %d has %d chars", ErrSecretTooShort, i, len(s))
		}
		kp, err := deriveKeys(s)
		if err != nil {
			return nil, err
		}
		keys = append(keys, kp)
	}

	return &Manager{
		keys: keys,
		defaults: applyOptions(Options{
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		}, opts),
	}, nil
}

// NewFromConfig creates a Manager from environment configuration.
func NewFromConfig(cfg Config, opts ...Option) (*Manager, error) {
	base := []Option{
		WithPath(cfg.Path),
		WithDomain(cfg.Domain),
		WithSecure(cfg.Secure),
	}
	return New(cfg.secrets(), append(base, opts...)...)
}

func deriveKeys(secret string) (keyPair, error) {
	sign := make([]byte, 32)
	if _, err := io.ReadFull(hkdf.New(sha256.New, []byte(secret), nil, []byte("cookie-sign")), sign); err != nil {
		return keyPair{}, err
	}
	encKey := make([]byte, 32)
	if _, err := io.ReadFull(hkdf.New(sha256.New, []byte(secret), nil, []byte("cookie-encrypt")), encKey); err != nil {
		return keyPair{}, err
	}
	block, err := aes.NewCipher(encKey)
	if err != nil {
		return keyPair{}, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return keyPair{}, err
	}
	return keyPair{sign: sign, enc: gcm}, nil
}

// Set writes a plain cookie.
func (m *Manager) Set(w http.ResponseWriter, name, value string, opts ...Option) {
	o := applyOptions(m.defaults, opts)
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     o.Path,
		Domain:   o.Domain,
		MaxAge:   o.MaxAge,
		Secure:   o.Secure,
		HttpOnly: o.HttpOnly,
		SameSite: o.SameSite,
	})
}

// Get reads a plain cookie.
func (m *Manager) Get(r *http.Request, name string) (string, error) {
	c, err := r.Cookie(name)
	if err != nil {
		if errors.Is(err, http.ErrNoCookie) {
			return "", ErrNotFound
		}
		return "", err
	}
	return c.Value, nil
}

// Delete expires a cookie.
func (m *Manager) Delete(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Path:     m.defaults.Path,
		Domain:   m.defaults.Domain,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		Secure:   m.defaults.Secure,
		HttpOnly: m.defaults.HttpOnly,
		SameSite: m.defaults.SameSite,
	})
}

// SetSigned writes value with an HMAC-SHA256 signature appended.
func (m *Manager) SetSigned(w http.ResponseWriter, name, value string, opts ...Option) {
	m.Set(w, name, m.sign(m.keys[0].sign, value), opts...)
}

// GetSigned reads and verifies a signed cookie.
func (m *Manager) GetSigned(r *http.Request, name string) (string, error) {
	raw, err := m.Get(r, name)
	if err != nil {
		return "", err
	}
	encoded, _, ok := strings.Cut(raw, ".")
	if !ok {
		return "", ErrInvalidFormat
	}
	value, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return "", ErrInvalidFormat
	}
	for _, kp := range m.keys {
		if hmac.Equal([]byte(raw), []byte(m.sign(kp.sign, string(value)))) {
			return string(value), nil
		}
	}
	return "", ErrInvalidSignature
}

// SetEncrypted writes value sealed with AES-GCM.
func (m *Manager) SetEncrypted(w http.ResponseWriter, name, value string, opts ...Option) error {
	gcm := m.keys[0].enc
	nonce := make([]byte, gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return err
	}
	sealed := gcm.Seal(nonce, nonce, []byte(value), []byte(name))
	m.Set(w, name, base64.RawURLEncoding.EncodeToString(sealed), opts...)
	return nil
}

// GetEncrypted reads and opens an encrypted cookie. The cookie name is bound
// as additional data, so a value cannot be replayed under another name.
func (m *Manager) GetEncrypted(r *http.Request, name string) (string, error) {
	raw, err := m.Get(r, name)
	if err != nil {
		return "", err
	}
	sealed, err := base64.RawURLEncoding.DecodeString(raw)
	if err != nil {
		return "", ErrInvalidFormat
	}
	for _, kp := range m.keys {
		ns := kp.enc.NonceSize()
		if len(sealed) < ns {
			return "", ErrInvalidFormat
		}
		plain, err := kp.enc.Open(nil, sealed[:ns], sealed[ns:], []byte(name))
		if err == nil {
			return string(plain), nil
		}
	}
	return "", ErrDecryptionFailed
}

// SetFlash stores a one-time value read back by GetFlash on the next request.
func (m *Manager) SetFlash(w http.ResponseWriter, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cookie: marshal flash: %w", err)
	}
	return m.SetEncrypted(w, flashPrefix+key, string(data))
}

// GetFlash reads a flash value into dest and deletes the cookie.
func (m *Manager) GetFlash(w http.ResponseWriter, r *http.Request, key string, dest any) error {
	name := flashPrefix + key
	data, err := m.GetEncrypted(r, name)
	if err != nil {
		return err
	}
	m.Delete(w, name)
	if err := json.Unmarshal([]byte(data), dest); err != nil {
		return fmt.Errorf("cookie: unmarshal flash: %w", err)
	}
	return nil
}

func (m *Manager) sign(key []byte, value string) string {
	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(value))
	return base64.RawURLEncoding.EncodeToString([]byte(value)) + "." +
		base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
