// SPDX-License-Identifier: AGPL-3.0-or-later

/*
PolicyComposer - PolicyComposer renders versioned compliance and policy documents from a shared YAML configuration, policy templates and Git history.

Copyright (C) 2025  Bartek Kus

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.

*/

// Package web serves the JSON API behind the config editor.
package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/bartekus/policycomposer/internal/config"
	"github.com/bartekus/policycomposer/internal/uischema"
)

// Server edits one config file according to a UI schema. Requests are
// handled one at a time.
type Server struct {
	configPath string
	schema     *uischema.Schema
	log        logrus.FieldLogger
	newID      func() string

	mu  sync.Mutex
	doc *config.Document
	cfg map[string]any

	router *gin.Engine
}

// Option customizes a Server.
type Option func(*Server)

// WithIDGenerator replaces uuid v4 item identifiers.
func WithIDGenerator(f func() string) Option {
	return func(s *Server) { s.newID = f }
}

// NewServer loads the config file and backfills list item identifiers.
func NewServer(configPath string, schema *uischema.Schema, log logrus.FieldLogger, opts ...Option) (*Server, error) {
	doc, err := config.LoadDocument(configPath)
	if err != nil {
		return nil, err
	}
	cfg, err := doc.Map()
	if err != nil {
		return nil, err
	}

	s := &Server{
		configPath: configPath,
		schema:     schema,
		log:        log,
		newID:      func() string { return uuid.NewString() },
		doc:        doc,
		cfg:        cfg,
	}
	for _, opt := range opts {
		opt(s)
	}

	if n := schema.BackfillIDs(s.cfg, s.newID); n > 0 {
		log.WithField("items", n).Debug("assigned item ids")
	}

	router := gin.New()
	router.Use(gin.Recovery(), s.logRequests)

	api := router.Group("/api")
	{
		api.GET("/schema", s.handleSchema)
		api.GET("/config", s.handleGetConfig)
		api.PUT("/config", s.handlePutConfig)
		api.POST("/config/items/:key", s.handleAddItem)
		api.DELETE("/config/items/:key/:id", s.handleDeleteItem)
	}
	s.router = router

	return s, nil
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler { return s.router }

// Run serves on addr until ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	s.log.WithField("addr", addr).Info("config editor API listening")

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serving %s: %w", addr, err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) logRequests(c *gin.Context) {
	start := time.Now()
	c.Next()
	s.log.WithFields(logrus.Fields{
		"method":   c.Request.Method,
		"path":     c.Request.URL.Path,
		"status":   c.Writer.Status(),
		"duration": time.Since(start),
	}).Debug("request")
}

// save writes the in-memory config back to disk. Callers hold s.mu.
func (s *Server) save() error {
	if err := s.doc.Replace(s.cfg); err != nil {
		return err
	}
	if err := s.doc.Save(s.configPath); err != nil {
		return err
	}
	s.log.WithField("path", s.configPath).Info("configuration saved")
	return nil
}
