package handler

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// ActorHeader carries the caller identity set by the upstream gateway.
const ActorHeader = "X-Actor-ID"

func actorFromContext(c *gin.Context) string {
	return strings.TrimSpace(c.GetHeader(ActorHeader))
}
