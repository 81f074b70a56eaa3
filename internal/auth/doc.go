// Package auth provides authentication and authorization for the dashboard.
//
// It supports two authentication modes:
//   - "none": no login, every request acts as the administrator (default)
//   - "local": local user database with session cookies for the web UI and
//     Bearer tokens for the API
//
// # Configuration
//
//	AUTH_MODE=none   # Default, single operator
//	AUTH_MODE=local  # Requires user creation and login
//
// For local mode, additional configuration:
//
//	AUTH_SESSION_SECRET=<hex-32-bytes>  # Auto-generated if empty
//	AUTH_SESSION_LIFETIME=24h           # Session duration
//	AUTH_TOKEN_EXPIRY=720h              # API token expiry
//	AUTH_BCRYPT_COST=12                 # bcrypt cost factor
//	AUTH_SECURE_COOKIES=true            # HTTPS-only cookies
//
// # Capabilities
//
// Routes are guarded by capability rather than by role. Administrators hold
// CapabilityManageOptions, which is required to pick the documentation video
// and to manage media. Every role holds CapabilityRead.
//
//	api.PUT("/documentation/video", mw.RequireCapability(auth.CapabilityManageOptions), h.UpdateVideo)
//
// Templates ask the same question with HasCapability(c, cap).
package auth
