package server

import (
	"github.com/gin-gonic/gin"
	"google.golang.org/grpc"
)

// Registrar mounts a gRPC service on the shared server.
type Registrar interface {
	Register(s *grpc.Server)
}

// HTTPRegistrar mounts a feature's routes on the versioned API group.
type HTTPRegistrar interface {
	Register(rg *gin.RouterGroup)
}

// InternalRegistrar is implemented by registrars that also expose
// machine-to-machine routes (cron). Those routes are mounted on /api/v1
// before token authentication and must guard themselves.
type InternalRegistrar interface {
	RegisterInternal(rg *gin.RouterGroup)
}
