package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	// VisitorCookie 访客令牌 Cookie 名
	VisitorCookie = "visitor"
	visitorKey    = "visitor_id"
)

// VisitorClaims 访客令牌声明，Subject 为访客 ID
type VisitorClaims struct {
	jwt.RegisteredClaims
}

// Visitor 识别访客：优先 Cookie，其次 Authorization Header；没有或无效时签发新令牌
func Visitor(secret string, expiry time.Duration, secure bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := extractClaims(c, secret)
		if err != nil {
			visitorID := uuid.NewString()
			token, err := GenerateVisitorToken(visitorID, secret, expiry)
			if err == nil {
				c.SetCookie(VisitorCookie, token, int(expiry.Seconds()), "/", "", secure, true)
				c.Header("X-Visitor-Token", token)
			}
			c.Set(visitorKey, visitorID)
			c.Next()
			return
		}

		c.Set(visitorKey, claims.Subject)

		// 滑动续期逻辑：如果 Token 过期时间消耗超过一半，则刷新
		if shouldRefresh(claims) {
			lifetime := claims.ExpiresAt.Sub(claims.IssuedAt.Time)
			if newToken, err := GenerateVisitorToken(claims.Subject, secret, lifetime); err == nil {
				c.SetCookie(VisitorCookie, newToken, int(lifetime.Seconds()), "/", "", secure, true)
				c.Header("X-Visitor-Token", newToken)
			}
		}

		c.Next()
	}
}

// GetVisitorID 从上下文获取访客 ID（未经过中间件时返回空串）
func GetVisitorID(c *gin.Context) string {
	return c.GetString(visitorKey)
}

// GenerateVisitorToken 生成访客令牌
func GenerateVisitorToken(visitorID, secret string, expiry time.Duration) (string, error) {
	now := time.Now()
	claims := &VisitorClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   visitorID,
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// extractClaims 从 Cookie 或 Header 中提取访客令牌
func extractClaims(c *gin.Context, secret string) (*VisitorClaims, error) {
	var tokenString string

	// 优先从 Cookie 获取
	if cookie, err := c.Cookie(VisitorCookie); err == nil && cookie != "" {
		tokenString = cookie
	} else {
		// 从 Authorization Header 获取
		authHeader := c.GetHeader("Authorization")
		if strings.HasPrefix(authHeader, "Bearer ") {
			tokenString = strings.TrimPrefix(authHeader, "Bearer ")
		}
	}

	if tokenString == "" {
		return nil, jwt.ErrTokenMalformed
	}

	token, err := jwt.ParseWithClaims(tokenString, &VisitorClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*VisitorClaims)
	if !ok || !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	if _, err := uuid.Parse(claims.Subject); err != nil {
		return nil, jwt.ErrTokenInvalidSubject
	}
	return claims, nil
}

// shouldRefresh 已经消耗了总有效期的 50% 以上则刷新
func shouldRefresh(claims *VisitorClaims) bool {
	if claims.ExpiresAt == nil || claims.IssuedAt == nil {
		return false
	}

	totalDuration := claims.ExpiresAt.Sub(claims.IssuedAt.Time)
	elapsedDuration := time.Since(claims.IssuedAt.Time)

	return elapsedDuration > totalDuration/2
}
