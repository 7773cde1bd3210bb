package settings

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

// AdminRequired 校验 Authorization: Bearer <key> 与 bcrypt 哈希是否匹配。
// hash 为空时不做校验。
func AdminRequired(hash []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		if len(hash) == 0 {
			c.Next()
			return
		}
		h := c.GetHeader("Authorization")
		key, ok := strings.CutPrefix(h, "Bearer ")
		if !ok || key == "" || bcrypt.CompareHashAndPassword(hash, []byte(key)) != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.Next()
	}
}
