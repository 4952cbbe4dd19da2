package mhttp

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type CorsConfig struct {
	Enable       bool     `json:"enable" yaml:"enable"`
	AllowOrigins []string `json:"allow_origins" yaml:"allow_origins"`
}

func Cors(c CorsConfig) gin.HandlerFunc {
	cfg := cors.Config{
		AllowOrigins:  c.AllowOrigins,
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", RequestIDHeader},
		ExposeHeaders: []string{"Content-Length", "Content-Type", RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	if len(c.AllowOrigins) == 0 {
		cfg.AllowOrigins = nil
		cfg.AllowAllOrigins = true
	}
	return cors.New(cfg)
}
