// Package token 提供了用于签发和验证表单会话令牌 (JWT) 的功能。
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// JWTManager 负责管理会话 JWT 的生成和验证。
type JWTManager struct {
	secretKey []byte        // secretKey 用于签名和验证 token 的密钥
	ttl       time.Duration // ttl 定义了会话 token 的有效期
}

// SessionClaims 是匿名表单会话的声明，只携带会话 ID，不包含任何用户身份。
type SessionClaims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// NewJWTManager 创建一个新的 JWTManager 实例。
func NewJWTManager(secret string, expireMinutes int) *JWTManager {
	if expireMinutes <= 0 {
		expireMinutes = 30
	}
	return &JWTManager{
		secretKey: []byte(secret),
		ttl:       time.Duration(expireMinutes) * time.Minute,
	}
}

// GenerateSessionToken 为一个新的表单会话签发 token，返回 token 与会话 ID。
func (m *JWTManager) GenerateSessionToken() (string, string, error) {
	sessionID := uuid.NewString()
	now := time.Now()
	claims := SessionClaims{
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        sessionID,
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
	// 使用 HS256 签名
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secretKey)
	if err != nil {
		return "", "", err
	}
	return signed, sessionID, nil
}

// VerifyToken 验证给定的 token 字符串，有效时返回 SessionClaims。
func (m *JWTManager) VerifyToken(tokenString string) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		// 检查签名方法是否为 HMAC
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.secretKey, nil
	})
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*SessionClaims); ok && token.Valid && claims.SessionID != "" {
		return claims, nil
	}
	return nil, errors.New("invalid token")
}

// TTL 返回会话 token 的有效期。
func (m *JWTManager) TTL() time.Duration { return m.ttl }
