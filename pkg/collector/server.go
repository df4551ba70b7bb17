package collector

import (
	"encoding/csv"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/handlers"
	"github.com/itohio/envmon/pkg/sample"
	"go.uber.org/zap"
)

// Server exposes the collector over HTTP.
type Server struct {
	svc          *Service
	log          *zap.Logger
	historyLimit int
	router       *gin.Engine
}

// NewServer builds the collector routes. metrics is mounted on /metrics when not nil.
func NewServer(svc *Service, historyLimit int, metrics http.Handler, log *zap.Logger) *Server {
	if log == nil {
		log = zap.L()
	}
	if historyLimit <= 0 {
		historyLimit = 50
	}

	s := &Server{
		svc:          svc,
		log:          log.Named("http"),
		historyLimit: historyLimit,
		router:       gin.New(),
	}

	s.router.Use(requestLogger(s.log), gin.Recovery())

	api := s.router.Group("/api")
	api.POST("/readings", s.postReading)
	api.GET("/latest/:id", s.getLatest)
	api.GET("/history/:id", s.getHistory)
	api.GET("/export/:id", s.getExport)
	api.GET("/profiles", s.getProfiles)
	api.POST("/device/:id/set_profile", s.postProfile)
	api.POST("/device/:id/toggle", s.postToggle)

	if metrics != nil {
		s.router.GET("/metrics", gin.WrapH(metrics))
	}
	return s
}

// Handler returns the root handler with CORS and response compression.
func (s *Server) Handler() http.Handler {
	cors := handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type"}),
	)
	return cors(handlers.CompressHandler(s.router))
}

func requestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Debug("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client", c.ClientIP()),
		)
	}
}

func (s *Server) postReading(c *gin.Context) {
	var req IngestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON: " + err.Error()})
		return
	}

	resp, err := s.svc.Ingest(c.Request.Context(), req)
	switch {
	case errors.Is(err, ErrInvalidReading):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	case errors.Is(err, ErrRateLimited):
		c.JSON(http.StatusTooManyRequests, gin.H{"error": err.Error()})
		return
	case err != nil:
		s.internal(c, err)
		return
	}

	code := http.StatusOK
	if resp.Stored {
		code = http.StatusCreated
	}
	c.JSON(code, resp)
}

func (s *Server) getLatest(c *gin.Context) {
	r, err := s.svc.Store().Latest(c.Request.Context(), c.Param("id"))
	if errors.Is(err, ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{})
		return
	}
	if err != nil {
		s.internal(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

func (s *Server) getHistory(c *gin.Context) {
	limit, err := queryInt(c, "limit", s.historyLimit)
	if err != nil || limit <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
		return
	}
	maxPoints, err := queryInt(c, "max", 0)
	if err != nil || maxPoints < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "max must be a non-negative integer"})
		return
	}

	rs, err := s.svc.Store().History(c.Request.Context(), c.Param("id"), limit)
	if err != nil {
		s.internal(c, err)
		return
	}
	out := sample.Downsample(make([]Reading, 0, len(rs)), rs, maxPoints)
	c.JSON(http.StatusOK, out)
}

func (s *Server) getExport(c *gin.Context) {
	id := c.Param("id")
	rs, err := s.svc.Store().Readings(c.Request.Context(), id)
	if err != nil {
		s.internal(c, err)
		return
	}

	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", id+".csv"))
	c.Status(http.StatusOK)

	w := csv.NewWriter(c.Writer)
	_ = w.Write([]string{"timestamp", "food_name", "mq135", "temp", "humidity", "r", "g", "b", "fqi", "status", "estimated_life"})
	for _, r := range rs {
		_ = w.Write([]string{
			r.Timestamp.UTC().Format(time.RFC3339),
			r.FoodName,
			strconv.FormatFloat(r.Gas, 'f', -1, 64),
			strconv.FormatFloat(r.Temperature, 'f', -1, 64),
			strconv.FormatFloat(r.Humidity, 'f', -1, 64),
			strconv.Itoa(r.Red),
			strconv.Itoa(r.Green),
			strconv.Itoa(r.Blue),
			strconv.Itoa(r.FQI),
			r.Status,
			r.EstimatedLife,
		})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		s.log.Warn("csv export failed", zap.String("device_id", id), zap.Error(err))
	}
}

func (s *Server) getProfiles(c *gin.Context) {
	ps, err := s.svc.Store().Profiles(c.Request.Context())
	if err != nil {
		s.internal(c, err)
		return
	}
	c.JSON(http.StatusOK, ps)
}

func (s *Server) postProfile(c *gin.Context) {
	var body struct {
		ProfileID int64 `json:"profile_id"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || body.ProfileID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "profile_id is required"})
		return
	}

	id := c.Param("id")
	err := s.svc.Store().SetProfile(c.Request.Context(), id, body.ProfileID)
	if errors.Is(err, ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		s.internal(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"device_id": id, "profile_id": body.ProfileID})
}

func (s *Server) postToggle(c *gin.Context) {
	id := c.Param("id")
	active, err := s.svc.Store().Toggle(c.Request.Context(), id)
	if errors.Is(err, ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		s.internal(c, err)
		return
	}
	s.log.Info("device toggled", zap.String("device_id", id), zap.Bool("active", active))
	c.JSON(http.StatusOK, gin.H{"device_id": id, "is_active": active})
}

func (s *Server) internal(c *gin.Context, err error) {
	s.log.Error("request failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}

func queryInt(c *gin.Context, key string, def int) (int, error) {
	v, ok := c.GetQuery(key)
	if !ok {
		return def, nil
	}
	return strconv.Atoi(v)
}
