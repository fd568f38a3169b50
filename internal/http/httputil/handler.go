// Package httputil carries what every HTTP handler shares: the handler
// registration contract and the response envelope with its error mapping.
package httputil

import "github.com/gin-gonic/gin"

// IHttpHandler is one mounted API resource. Root names the path segment the
// handler owns; SetRoutes attaches its endpoints to the public, private and
// admin route groups. The quote and price handlers register public routes
// only and leave the other groups empty.
type IHttpHandler interface {
	Root() string
	SetRoutes(pub *gin.RouterGroup, private *gin.RouterGroup, admin *gin.RouterGroup)
}
