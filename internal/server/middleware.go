package server

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sitekhata/sitekhata/internal/actorctx"
	obsmiddleware "github.com/sitekhata/sitekhata/internal/observability/logger"
	"go.uber.org/zap"
)

const (
	HeaderActorID   = "X-Actor-Id"
	HeaderActorName = "X-Actor-Name"
	HeaderActorRole = "X-Actor-Role"
)

// ActorContext trusts the identity headers set by the authenticating proxy
// and makes the actor available to the service layer. Requests without an
// actor are rejected before any handler runs.
func ActorContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		actorID, ok := actorctx.ParseActorID(c.GetHeader(HeaderActorID))
		if !ok {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		role := strings.ToLower(strings.TrimSpace(c.GetHeader(HeaderActorRole)))
		if role == "" {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		ctx := actorctx.WithActor(c.Request.Context(), actorctx.Actor{
			ID:   actorID,
			Name: strings.TrimSpace(c.GetHeader(HeaderActorName)),
			Role: role,
		})
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// AttendanceMarkRateLimit throttles marking per actor. The limiter fails
// open: with redis down or unconfigured the request proceeds.
func (s *Server) AttendanceMarkRateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.markLimiter == nil || !s.markLimiter.Enabled() {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		actor, ok := actorctx.ActorFromContext(ctx)
		if !ok {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		allowed, err := s.markLimiter.AllowActor(ctx, actor.ID.String())
		if err != nil {
			obsmiddleware.FromContext(ctx).Warn("attendance rate limit check failed", zap.Error(err))
			c.Next()
			return
		}
		if !allowed {
			s.metrics.IncRateLimitDenied()
			AbortWithError(c, ErrTooManyRequests)
			return
		}
		c.Next()
	}
}
