package handler

// APIV1Prefix is the base path of the public REST API.
const APIV1Prefix = "/api/v1"

// Resource groups mounted under APIV1Prefix.
const (
	PlayersPath = "/players"
	TeamsPath   = "/teams"
	MatchesPath = "/matches"
	HealthPath  = "/health"
)

// Member routes shared by every resource group. Full and partial updates live under /update/:id.
const (
	byIDRoute   = "/:id"
	updateRoute = "/update/:id"
)
