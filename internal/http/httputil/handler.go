package httputil

import "github.com/gin-gonic/gin"

// IHttpHandler is implemented by each route group mounted on the API
// server. Root is the path prefix; SetRoutes attaches endpoints to the
// public, private and admin groups as appropriate.
type IHttpHandler interface {
	Root() string
	SetRoutes(pub *gin.RouterGroup, private *gin.RouterGroup, admin *gin.RouterGroup)
}
