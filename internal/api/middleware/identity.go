package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/d60-Lab/feedgraph/pkg/response"
)

const viewerKey = "viewer"

// Identity 从 Bearer token 解出请求者身份；没有 token 即匿名（只看
// public）。身份层只负责"是谁"，凭证校验在上游完成。
func Identity(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		if auth == "" {
			c.Set(viewerKey, "")
			c.Next()
			return
		}
		raw := strings.TrimPrefix(auth, "Bearer ")
		token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Response{
				Code: http.StatusUnauthorized, Message: "invalid token",
			})
			return
		}
		sub, _ := token.Claims.GetSubject()
		c.Set(viewerKey, sub)
		c.Next()
	}
}

// Viewer 当前请求者的用户 id；匿名为空串
func Viewer(c *gin.Context) string {
	return c.GetString(viewerKey)
}
