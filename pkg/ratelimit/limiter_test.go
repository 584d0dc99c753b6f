package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestNew_InvalidArgs(t *testing.T) {
	assert.Nil(t, New(0, 1, 0))
	assert.Nil(t, New(1, 0, 0))

	var l *MapLimiter
	assert.True(t, l.Allow("10.0.0.1", time.Now()))
	assert.Zero(t, l.Len())
}

func TestAllow_Burst(t *testing.T) {
	l := New(1, 2, time.Minute)
	now := time.Unix(1_700_000_000, 0)

	assert.True(t, l.Allow("a", now))
	assert.True(t, l.Allow("a", now))
	assert.False(t, l.Allow("a", now))

	// other clients have their own bucket
	assert.True(t, l.Allow("b", now))

	// one token refills after a second
	assert.True(t, l.Allow("a", now.Add(time.Second)))
}

func TestAllow_EmptyKey(t *testing.T) {
	l := New(1, 1, time.Minute)
	now := time.Now()
	for i := 0; i < 5; i++ {
		assert.True(t, l.Allow("  ", now))
	}
	assert.Zero(t, l.Len())
}

func TestAllow_EvictsIdle(t *testing.T) {
	l := New(1000, 1000, time.Minute)
	start := time.Unix(1_700_000_000, 0)
	l.Allow("idle", start)

	later := start.Add(time.Hour)
	for i := 0; i < 512; i++ {
		l.Allow("busy", later)
	}
	assert.Equal(t, 1, l.Len())
}

func TestMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Middleware(New(0.001, 1, time.Minute), func(c *gin.Context) {
		c.String(http.StatusTooManyRequests, "slow down")
	}))
	r.POST("/transfer", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	do := func() *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/transfer", nil)
		req.RemoteAddr = "192.0.2.1:1234"
		r.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusOK, do().Code)
	w := do()
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "slow down", w.Body.String())
}
