package views

// Route is the screen the kiosk UI should present
type Route string

const (
	// RouteLoading is shown until the session view has loaded
	RouteLoading Route = "loading"
	// RouteNewSession is the session-free start screen
	RouteNewSession Route = "new-session"
	// RouteHome is the session screen
	RouteHome Route = "home"
	// RouteView is the read-only display screen; it never navigates away
	RouteView Route = "view"
)

// routeFor picks the screen for the given session state
func routeFor(pinned bool, started bool) Route {
	if pinned {
		return RouteView
	}
	if started {
		return RouteHome
	}
	return RouteNewSession
}
