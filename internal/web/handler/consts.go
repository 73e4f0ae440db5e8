package handler

const (
	// RootPath is the root path the route group.
	RootPath = "/"

	// RouterRootPath is the path of the group root inside app.Route.
	RouterRootPath = ""

	// APIPrefix is the prefix of every JSON API route.
	APIPrefix = "/api"

	// ErrNilDepsMsg is used if app or a required dependency is nil.
	ErrNilDepsMsg = "app or a required dependency is nil"
)
