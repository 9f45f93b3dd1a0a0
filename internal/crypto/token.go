package crypto

import (
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"
)

const (
	argon2Time    = 1
	argon2Memory  = 64 * 1024 // 64 MB
	argon2Threads = 4
	saltLength    = 16
)

// TokenCipher шифрует токены доступа платформы перед записью в
// хранилище. Ключ выводится из серверного секрета через Argon2id,
// соль генерируется на каждое шифрование и хранится вместе с
// шифротекстом.
type TokenCipher struct {
	secret []byte
}

// NewTokenCipher создает шифратор токенов
func NewTokenCipher(secret string) (*TokenCipher, error) {
	if secret == "" {
		return nil, fmt.Errorf("secret is empty")
	}
	return &TokenCipher{secret: []byte(secret)}, nil
}

// Encrypt шифрует токен и возвращает base64-строку вида
// base64(salt | nonce | ciphertext)
func (c *TokenCipher) Encrypt(token string) (string, error) {
	salt := make([]byte, saltLength)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return "", fmt.Errorf("ошибка генерации соли: %w", err)
	}

	aead, err := c.aead(salt)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("ошибка генерации nonce: %w", err)
	}

	sealed := aead.Seal(nil, nonce, []byte(token), nil)

	out := make([]byte, 0, len(salt)+len(nonce)+len(sealed))
	out = append(out, salt...)
	out = append(out, nonce...)
	out = append(out, sealed...)
	return base64.StdEncoding.EncodeToString(out), nil
}

// Decrypt расшифровывает строку, полученную из Encrypt
func (c *TokenCipher) Decrypt(encoded string) (string, error) {
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("ошибка декодирования: %w", err)
	}
	if len(data) < saltLength+chacha20poly1305.NonceSizeX {
		return "", fmt.Errorf("шифротекст слишком короткий")
	}

	salt := data[:saltLength]
	nonce := data[saltLength : saltLength+chacha20poly1305.NonceSizeX]
	sealed := data[saltLength+chacha20poly1305.NonceSizeX:]

	aead, err := c.aead(salt)
	if err != nil {
		return "", err
	}

	plain, err := aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", fmt.Errorf("ошибка расшифровки: %w", err)
	}
	return string(plain), nil
}

func (c *TokenCipher) aead(salt []byte) (cipher.AEAD, error) {
	key := argon2.IDKey(c.secret, salt, argon2Time, argon2Memory, argon2Threads, chacha20poly1305.KeySize)
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания cipher: %w", err)
	}
	return aead, nil
}
