package logic

import (
	"go-friendship/internal/common/errcode"
	"go-friendship/internal/common/response"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// NoRoute serves files from staticDir for unmatched paths outside apiPrefix.
// Unknown API paths, or everything when staticDir is empty, get a coded 404.
func NoRoute(apiPrefix, staticDir string) gin.HandlerFunc {
	var files http.Handler
	if staticDir != "" {
		files = http.FileServer(http.Dir(staticDir))
	}
	return func(c *gin.Context) {
		if files == nil || strings.HasPrefix(c.Request.URL.Path, apiPrefix) {
			response.Error(c, errcode.ErrRouteNotFound)
			return
		}
		files.ServeHTTP(c.Writer, c.Request)
	}
}
