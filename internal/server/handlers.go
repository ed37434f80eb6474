package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/alkime/sonaris/internal/apperr"
	"github.com/alkime/sonaris/internal/audio"
	"github.com/gin-gonic/gin"
)

func (s *Server) handleChords(c *gin.Context) {
	chords, err := s.deps.Catalog.Chords(c.Request.Context())
	if err != nil {
		respondError(c, err)

		return
	}

	c.JSON(http.StatusOK, gin.H{"chords": chords})
}

func (s *Server) handleStyles(c *gin.Context) {
	styles, err := s.deps.Catalog.Styles(c.Request.Context())
	if err != nil {
		respondError(c, err)

		return
	}

	c.JSON(http.StatusOK, gin.H{"styles": styles})
}

func (s *Server) handleWorkflow(c *gin.Context) {
	c.JSON(http.StatusOK, s.deps.Workflow.Snapshot())
}

// handleWorkflowEvents streams workflow snapshots as server-sent events.
func (s *Server) handleWorkflowEvents(c *gin.Context) {
	updates, cancel := s.deps.Workflow.Subscribe(16)
	defer cancel()

	c.SSEvent("state", s.deps.Workflow.Snapshot())
	c.Writer.Flush()

	c.Stream(func(io.Writer) bool {
		select {
		case state, ok := <-updates:
			if !ok {
				return false
			}
			c.SSEvent("state", state)

			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}

type keyRequest struct {
	Key string `json:"key" binding:"required"`
}

func (s *Server) handleConfirmKey(c *gin.Context) {
	var req keyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error(), "kind": "request"})

		return
	}

	if err := s.deps.Workflow.ConfirmKey(req.Key); err != nil {
		respondError(c, err)

		return
	}

	c.JSON(http.StatusOK, s.deps.Workflow.Snapshot())
}

type submitRequest struct {
	Style string `json:"style" binding:"required"`
}

func (s *Server) handleSubmit(c *gin.Context) {
	var req submitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error(), "kind": "request"})

		return
	}

	if err := s.deps.Workflow.Submit(c.Request.Context(), req.Style); err != nil {
		respondError(c, err)

		return
	}

	c.JSON(http.StatusOK, s.deps.Workflow.Snapshot())
}

func (s *Server) handleRemoveKeyword(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "index must be an integer", "kind": "request"})

		return
	}

	if err := s.deps.Workflow.RemoveKeyword(index); err != nil {
		respondError(c, err)

		return
	}

	c.JSON(http.StatusOK, s.deps.Workflow.Snapshot())
}

func (s *Server) handleReset(c *gin.Context) {
	s.deps.Workflow.ChangeKey()
	c.JSON(http.StatusOK, s.deps.Workflow.Snapshot())
}

func (s *Server) handleRecordingStatus(c *gin.Context) {
	session := s.deps.Session
	c.JSON(http.StatusOK, gin.H{
		"status":    session.Status(),
		"bytes":     session.BytesCaptured(),
		"level":     session.Level(),
		"elapsedMs": session.Elapsed().Milliseconds(),
	})
}

func (s *Server) handleRecordingStart(c *gin.Context) {
	// the capture outlives this request
	if err := s.deps.Session.Start(context.WithoutCancel(c.Request.Context())); err != nil {
		respondError(c, err)

		return
	}

	c.JSON(http.StatusOK, gin.H{"status": s.deps.Session.Status()})
}

type stopRequest struct {
	Name string `json:"name"`
}

func (s *Server) handleRecordingStop(c *gin.Context) {
	var req stopRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error(), "kind": "request"})

			return
		}
	}

	blob, err := s.deps.Session.Stop(c.Request.Context())
	if errors.Is(err, apperr.ErrState) {
		if expired, ok := s.deps.Session.TakeExpired(); ok {
			blob, err = expired, nil
		}
	}
	if err != nil {
		respondError(c, err)

		return
	}

	resp := gin.H{
		"bytes":    len(blob.Data),
		"mimeType": blob.MIMEType,
	}

	if req.Name != "" {
		// a failed save leaves the blob on the session for /recording/save
		if _, err := s.deps.Recordings.Save(blob, req.Name); err != nil {
			respondError(c, err)

			return
		}

		name := audio.SanitizeName(req.Name)
		resp["name"] = name
		resp["url"] = recordingURL(name)
	}

	c.JSON(http.StatusOK, resp)
}

type saveRequest struct {
	Name string `json:"name" binding:"required"`
}

// handleRecordingSave stores the blob of the last stopped recording.
func (s *Server) handleRecordingSave(c *gin.Context) {
	var req saveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error(), "kind": "request"})

		return
	}

	blob, err := s.deps.Session.Blob()
	if err != nil {
		respondError(c, err)

		return
	}

	if _, err := s.deps.Recordings.Save(blob, req.Name); err != nil {
		respondError(c, err)

		return
	}

	name := audio.SanitizeName(req.Name)
	c.JSON(http.StatusOK, gin.H{
		"bytes": len(blob.Data),
		"name":  name,
		"url":   recordingURL(name),
	})
}

func recordingURL(name string) string {
	return fmt.Sprintf("/recordings/%s%s", name, audio.Extension)
}

func (s *Server) handleListRecordings(c *gin.Context) {
	recordings, err := s.deps.Recordings.List()
	if err != nil {
		respondError(c, err)

		return
	}

	c.JSON(http.StatusOK, gin.H{"recordings": recordings})
}

// handleRecordingMP3 serves a stored recording encoded as MP3.
func (s *Server) handleRecordingMP3(c *gin.Context) {
	var buf bytes.Buffer
	if err := s.deps.Recordings.Export(c.Param("name"), &buf, s.sampleRate()); err != nil {
		respondError(c, err)

		return
	}

	c.Data(http.StatusOK, "audio/mpeg", buf.Bytes())
}

func (s *Server) sampleRate() int {
	if s.config.SampleRate > 0 {
		return s.config.SampleRate
	}

	return audio.DefaultSampleRate
}

func (s *Server) handlePlay(c *gin.Context) {
	name := c.Param("name")

	// playback continues after the response is written
	if _, err := s.deps.Recordings.Play(context.WithoutCancel(c.Request.Context()), name); err != nil {
		respondError(c, err)

		return
	}

	c.JSON(http.StatusAccepted, gin.H{"playing": audio.SanitizeName(name)})
}
