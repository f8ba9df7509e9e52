package api

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"minutemind/script"
	"minutemind/types"
	"minutemind/voice"
)

// handleGenerateScript runs the generation half of the pipeline: script,
// narration, and illustrations for every scene.
// POST /scripts/generate
func (s *Server) handleGenerateScript(c *gin.Context) {
	var req types.ScriptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	generated, err := s.scripts.Generate(c.Request.Context(), req)
	if err != nil {
		var genErr *script.GenerationError
		if errors.As(err, &genErr) {
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	audio, err := s.voices.Synthesize(c.Request.Context(), generated)
	if err != nil {
		var synthErr *voice.SynthesisError
		if errors.As(err, &synthErr) {
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	// Illustration degradation is invisible: on failure the response just
	// carries fewer (or no) images, never null.
	sceneImages := []types.SceneImage{}
	imageURLs, err := s.imageGen.GenerateForScript(c.Request.Context(), generated)
	if err != nil {
		log.Printf("[api] image generation failed for script %s: %v", generated.ScriptID, err)
	} else {
		for _, scene := range generated.Scenes {
			if url, ok := imageURLs[scene.SceneID]; ok {
				sceneImages = append(sceneImages, types.SceneImage{SceneID: scene.SceneID, ImageURL: url})
			}
		}
	}

	c.JSON(http.StatusOK, types.ScriptResponse{
		Script: *generated,
		Audio:  audio,
		Images: sceneImages,
	})
}
