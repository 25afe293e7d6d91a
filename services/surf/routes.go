// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package surf

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers all surf routes with the router.
//
// Description:
//
//	Registers all /v1/surf/* endpoints with the given Gin router group.
//	The router group should already have any required middleware applied.
//
// Inputs:
//
//	rg - Gin router group (typically /v1)
//	handlers - The handlers instance
//
// Endpoints:
//
//	POST   /v1/surf/sessions - Open a navigation session
//	GET    /v1/surf/sessions/:id - Get session state
//	DELETE /v1/surf/sessions/:id - Close a session
//	POST   /v1/surf/sessions/:id/move - Apply a movement operator
//	POST   /v1/surf/sessions/:id/mode - Set named/unnamed mode
//	POST   /v1/surf/sessions/:id/swap - Swap current node with a sibling
//	GET    /v1/surf/health - Health check
//	GET    /v1/surf/ready - Readiness check
//
// Example:
//
//	service := surf.NewService(surf.DefaultServiceConfig())
//	handlers := surf.NewHandlers(service)
//
//	v1 := router.Group("/v1")
//	surf.RegisterRoutes(v1, handlers)
func RegisterRoutes(rg *gin.RouterGroup, handlers *Handlers) {
	surf := rg.Group("/surf")
	{
		// Session lifecycle
		surf.POST("/sessions", handlers.HandleOpenSession)
		surf.GET("/sessions/:id", handlers.HandleGetSession)
		surf.DELETE("/sessions/:id", handlers.HandleCloseSession)

		// Navigation
		surf.POST("/sessions/:id/move", handlers.HandleMove)
		surf.POST("/sessions/:id/mode", handlers.HandleSetMode)

		// Restructuring
		surf.POST("/sessions/:id/swap", handlers.HandleSwap)

		// Health checks
		surf.GET("/health", handlers.HandleHealth)
		surf.GET("/ready", handlers.HandleReady)
	}
}
