package auth

import (
	"fmt"
	"garage-site/internal/logger"

	"github.com/casbin/casbin/v2"
)

const (
	read      = "(GET)|(HEAD)"
	readWrite = "(GET)|(HEAD)|(POST)"
	all       = "(GET)|(HEAD)|(POST)|(PUT)|(PATCH)|(DELETE)"
)

// DefaultPolicies are the rules every start seeds. Anonymous visitors may read
// the public site and the public API and may submit the contact form; admin
// inherits that and may do everything else.
var DefaultPolicies = [][]string{
	// Public pages.
	{Anonymous, "/", read},
	{Anonymous, "/about", read},
	{Anonymous, "/services", read},
	{Anonymous, "/blog", read},
	{Anonymous, "/blog/:id", read},
	{Anonymous, "/gallery", read},
	{Anonymous, "/contact", readWrite},
	{Anonymous, "/robots.txt", read},
	{Anonymous, "/sitemap.xml", read},
	{Anonymous, "/static/*", read},
	{Anonymous, "/media/*", read},
	{Anonymous, "/admin/login", readWrite},

	// Public API reads.
	{Anonymous, "/api/blog", read},
	{Anonymous, "/api/services", read},
	{Anonymous, "/api/gallery", read},
	{Anonymous, "/api/slider", read},
	{Anonymous, "/api/categories", read},
	{Anonymous, "/api/categories/:type", read},
	{Anonymous, "/api/messages", "POST"},

	// Administration.
	{Admin, "/admin", read},
	{Admin, "/admin/*", readWrite},
	{Admin, "/api/*", all},
}

// SeedDefaultPolicies ensures that the application has a baseline set of authorization rules.
// It checks if each default policy exists before adding it, making the operation idempotent
// and safe to run on every application start.
func SeedDefaultPolicies(e casbin.IEnforcer, log logger.Logger) {
	log.Info("Seeding default authorization policies...")

	for _, p := range DefaultPolicies {
		if has, _ := e.HasPolicy(p); !has {
			if _, err := e.AddPolicy(p); err != nil {
				log.Error(err, fmt.Sprintf("Failed to add policy %v", p))
			}
		}
	}

	// Granting the 'admin' role all permissions of the 'anonymous' role.
	if has, _ := e.HasRoleForUser(Admin, Anonymous); !has {
		if _, err := e.AddRoleForUser(Admin, Anonymous); err != nil {
			log.Error(err, "Failed to add role 'admin' -> 'anonymous'")
		}
	}
	log.Info("Policy seeding complete.")
}
