package api

import (
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"minutemind/types"
)

// handleRenderVideo composites a generated script response into one video.
// POST /videos/render
func (s *Server) handleRenderVideo(c *gin.Context) {
	var resp types.ScriptResponse
	if err := c.ShouldBindJSON(&resp); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if resp.Script.ScriptID == "" || len(resp.Script.Scenes) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "script with at least one scene is required"})
		return
	}
	if len(resp.Audio) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "scene audio is required"})
		return
	}

	meta, err := s.compositor.Render(c.Request.Context(), resp)
	if err != nil {
		// Render failures are server-side (500), distinct from the 502s
		// the generation path produces, so callers can tell bad input
		// from a failed encode.
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, meta)
}

// handleListVideos returns all render records, newest first.
// GET /videos/
func (s *Server) handleListVideos(c *gin.Context) {
	records, err := s.catalog.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, records)
}

// handleDeleteVideo removes one render and its metadata.
// DELETE /videos/:video_id
func (s *Server) handleDeleteVideo(c *gin.Context) {
	if err := s.catalog.Delete(c.Request.Context(), c.Param("video_id")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Video deleted successfully"})
}

// handlePublishVideo uploads a locally stored render to YouTube.
// POST /videos/:video_id/publish
func (s *Server) handlePublishVideo(c *gin.Context) {
	if s.publisher == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "publishing is not configured"})
		return
	}

	videoID := c.Param("video_id")
	records, err := s.catalog.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	var meta *types.VideoMetadata
	for i := range records {
		if records[i].VideoID == videoID {
			meta = &records[i]
			break
		}
	}
	if meta == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "video not found"})
		return
	}
	if s.store.CloudEnabled() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cloud-stored renders have no local payload to publish"})
		return
	}

	path := s.store.ResolveURL(meta.StoragePath)
	if _, err := os.Stat(path); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "video payload missing"})
		return
	}

	youtubeID, err := s.publisher.Publish(path, *meta)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"youtube_id": youtubeID})
}
