package server

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/aquabill/aquabill/internal/ratelimit"
)

const HeaderCompany = "X-Company-ID"

// companyID resolves the acting company from the X-Company-ID header, the
// company_id query parameter, or the configured single-tenant default, in
// that order.
func (s *Server) companyID(c *gin.Context) string {
	if id := strings.TrimSpace(c.GetHeader(HeaderCompany)); id != "" {
		return id
	}
	if id := strings.TrimSpace(c.Query("company_id")); id != "" {
		return id
	}
	if s.cfg.DefaultCompanyID != 0 {
		return strconv.FormatInt(s.cfg.DefaultCompanyID, 10)
	}
	return ""
}

// rateLimit throttles an ingest endpoint per company. A broken limiter
// backend fails open: billing keeps working without redis.
func (s *Server) rateLimit(allow func(context.Context, string) (*ratelimit.Result, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		res, err := allow(c.Request.Context(), s.companyID(c))
		if err != nil {
			s.log.Warn("rate limiter unavailable", zap.Error(err))
			c.Next()
			return
		}
		if !res.Allowed {
			if res.RetryAfter > 0 {
				c.Header("Retry-After", strconv.Itoa(int(math.Ceil(res.RetryAfter.Seconds()))))
			}
			c.AbortWithStatusJSON(http.StatusTooManyRequests, errorResponse{Error: errorPayload{
				Type:    "rate_limited",
				Message: "too many requests",
			}})
			return
		}
		c.Next()
	}
}
