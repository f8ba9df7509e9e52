// Package api is the thin HTTP surface over the media pipeline: request
// binding, field validation, and mapping the pipeline's typed failures to
// status codes.
package api

import (
	"context"

	"github.com/gin-gonic/gin"

	"minutemind/catalog"
	"minutemind/config"
	"minutemind/publish"
	"minutemind/storage"
	"minutemind/types"
)

// The pipeline surfaces the controllers drive. Tests substitute failing
// implementations to exercise the status mapping.
type scriptGenerator interface {
	Generate(ctx context.Context, req types.ScriptRequest) (*types.Script, error)
}

type voiceSynthesizer interface {
	Synthesize(ctx context.Context, script *types.Script) ([]types.SceneAudio, error)
}

type imageGenerator interface {
	GenerateForScript(ctx context.Context, script *types.Script) (map[string]string, error)
}

type videoRenderer interface {
	Render(ctx context.Context, resp types.ScriptResponse) (*types.VideoMetadata, error)
}

// Server wires the pipeline components behind the HTTP routes.
type Server struct {
	settings   config.Settings
	store      *storage.Store
	scripts    scriptGenerator
	voices     voiceSynthesizer
	imageGen   imageGenerator
	compositor videoRenderer
	catalog    *catalog.Catalog
	publisher  *publish.Publisher // nil when publishing is not configured
}

// NewServer builds the HTTP server over already-constructed components.
func NewServer(
	settings config.Settings,
	store *storage.Store,
	scripts scriptGenerator,
	voices voiceSynthesizer,
	imageGen imageGenerator,
	compositor videoRenderer,
	cat *catalog.Catalog,
	publisher *publish.Publisher,
) *Server {
	return &Server{
		settings:   settings,
		store:      store,
		scripts:    scripts,
		voices:     voices,
		imageGen:   imageGen,
		compositor: compositor,
		catalog:    cat,
		publisher:  publisher,
	}
}

// Router constructs the Gin engine with registered routes.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/health", handleHealth)

	// Generated audio and images always live on the local backend and must
	// be reachable over HTTP for the compositor's re-ingestion step.
	r.Static("/media", s.settings.MediaRoot)

	r.POST("/scripts/generate", s.handleGenerateScript)

	r.POST("/videos/render", s.handleRenderVideo)
	r.GET("/videos/", s.handleListVideos)
	r.DELETE("/videos/:video_id", s.handleDeleteVideo)
	r.POST("/videos/:video_id/publish", s.handlePublishVideo)

	return r
}

func handleHealth(c *gin.Context) {
	c.JSON(200, gin.H{"status": "healthy"})
}
