package auth

import "slices"

// ============================================================================
// DOMAIN-SPECIFIC SCOPES - Job board
// ============================================================================

const (
	ScopeAll = "*"

	// Job scopes
	ScopeJobsAll     = "jobs:*"
	ScopeJobsWrite   = "jobs:write"
	ScopeJobsDelete  = "jobs:delete"
	ScopeJobsPublish = "jobs:publish" // Publish/unpublish listings

	// Company scopes
	ScopeCompaniesAll   = "companies:*"
	ScopeCompaniesWrite = "companies:write"

	// Application scopes
	ScopeApplicationsAll  = "applications:*"
	ScopeApplicationsRead = "applications:read" // View applications to own listings
)

// Roles issued by the hosted auth module
const (
	RoleAuthenticated = "authenticated"
	RoleAdmin         = "admin"
	RoleService       = "service_role"
)

// RoleScopes grants scopes per session role. Every signed-in user may act as
// an employer; ownership of the company is checked separately.
var RoleScopes = map[string][]string{
	RoleAuthenticated: {
		ScopeJobsWrite,
		ScopeJobsDelete,
		ScopeJobsPublish,
		ScopeCompaniesWrite,
		ScopeApplicationsRead,
	},
	RoleAdmin:   {ScopeAll},
	RoleService: {ScopeAll},
}

// wildcardFor returns the "<resource>:*" scope covering scope
func wildcardFor(scope string) string {
	for i := 0; i < len(scope); i++ {
		if scope[i] == ':' {
			return scope[:i] + ":*"
		}
	}
	return ""
}

// grants reports whether the granted list covers scope directly or through a wildcard
func grants(granted []string, scope string) bool {
	if slices.Contains(granted, ScopeAll) || slices.Contains(granted, scope) {
		return true
	}
	w := wildcardFor(scope)
	return w != "" && slices.Contains(granted, w)
}
