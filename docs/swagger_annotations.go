// Package docs provides Swagger API documentation
// This file contains the top-level Swagger annotations for the WealthPulse API
package docs

// @title WealthPulse API
// @version 1.0
// @description Personal-finance dashboard backend: portfolio proxy, market snapshots, streamed AI summaries and reports
// @termsOfService http://swagger.io/terms/

// @contact.name API Support

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /

// @securityDefinitions.apikey SessionCookie
// @in cookie
// @name appSession
// @description Signed session cookie set by /api/auth/callback.

// @tag.name auth
// @tag.description Identity provider login, callback, logout and session read

// @tag.name portfolio
// @tag.description Per-user portfolio items and the aggregated dashboard

// @tag.name ai
// @tag.description Streamed chat, fund summaries and reports

// @tag.name market
// @tag.description Instrument snapshots, search and fund comparison

// @tag.name education
// @tag.description Educational video search

// @tag.name health
// @tag.description Health check and monitoring endpoints
