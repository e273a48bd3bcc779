package server

import (
	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/tracesphere/campusasset/internal/actorctx"
)

func snowflakeString(id int64) string {
	return snowflake.ID(id).String()
}

// WebAuthRequired resolves the session cookie and attaches the actor to
// the request context. Handlers downstream read the actor from context
// only; there is no current-user global.
func (s *Server) WebAuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := s.sessions.ReadToken(c)
		if !ok {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		user, _, err := s.authsvc.Authenticate(c.Request.Context(), token)
		if err != nil {
			AbortWithError(c, err)
			return
		}

		ctx := actorctx.WithActor(c.Request.Context(), actorctx.Actor{
			UserID:      int64(user.ID),
			Email:       user.Email,
			DisplayName: user.DisplayName,
			Role:        user.Role,
		})
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func (s *Server) authorizeAction(object, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := actorctx.FromContext(c.Request.Context())
		if !ok {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		subject := "user:" + snowflakeString(actor.UserID)
		if err := s.authzSvc.Authorize(c.Request.Context(), subject, object, action); err != nil {
			AbortWithError(c, err)
			return
		}
		c.Next()
	}
}
