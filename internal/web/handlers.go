// SPDX-License-Identifier: AGPL-3.0-or-later

package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bartekus/policycomposer/internal/uischema"
)

func (s *Server) handleSchema(c *gin.Context) {
	c.JSON(http.StatusOK, s.schema)
}

func (s *Server) handleGetConfig(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c.JSON(http.StatusOK, s.cfg)
}

func (s *Server) handlePutConfig(c *gin.Context) {
	var body map[string]any
	if err := json.NewDecoder(c.Request.Body).Decode(&body); err != nil || body == nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "request body must be a JSON object",
		})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.schema.BackfillIDs(body, s.newID)
	prev := s.cfg
	s.cfg = body
	if err := s.save(); err != nil {
		s.cfg = prev
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, s.cfg)
}

func (s *Server) handleAddItem(c *gin.Context) {
	key := c.Param("key")

	s.mu.Lock()
	defer s.mu.Unlock()

	item, err := s.schema.AddItem(s.cfg, key, s.newID())
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
		})
		return
	}
	if err := s.save(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, item)
}

func (s *Server) handleDeleteItem(c *gin.Context) {
	key, id := c.Param("key"), c.Param("id")

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := uischema.DeleteItem(s.cfg, key, id); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, uischema.ErrItemNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{
			"error": err.Error(),
		})
		return
	}
	if err := s.save(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": err.Error(),
		})
		return
	}

	c.Status(http.StatusNoContent)
}
