package server

// @title leimap API
// @version 1.0
// @description Resolve company names to Legal Entity Identifiers and build complete ownership hierarchies.
// @description
// @description Features:
// @description - Ranked name search, single and bulk
// @description - Full ownership trees with ultimate-children reconciliation
// @description - Saved target/match pairings
// @description - Real-time hierarchy events via WebSocket and Server-Sent Events
//
// @contact.name leimap Project
// @contact.url https://github.com/agentstation/leimap
//
// @license.name MIT
//
// @host localhost:8080
// @BasePath /api/v1
//
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key
// @description API key for authentication (optional, configurable)
