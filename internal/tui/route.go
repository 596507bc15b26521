package tui

import (
	"fmt"
	"strings"
)

// Route is a page path, in the same form the web portal used.
type Route string

const (
	RouteHome        Route = "/"
	RouteLogin       Route = "/login"
	RouteRegister    Route = "/register"
	RouteDashboard   Route = "/dashboard"
	RouteWeather     Route = "/weather"
	RouteMarketplace Route = "/marketplace"
	RoutePrices      Route = "/prices"
	RouteChat        Route = "/chat"
)

// Routes lists every page in navigation order.
var Routes = []Route{
	RouteHome, RouteLogin, RouteRegister, RouteDashboard,
	RouteWeather, RouteMarketplace, RoutePrices, RouteChat,
}

// navRoutes are the pages reachable with the number keys.
var navRoutes = []Route{
	RouteHome, RouteDashboard, RouteWeather, RouteMarketplace, RoutePrices, RouteChat,
}

func (r Route) Title() string {
	switch r {
	case RouteHome:
		return "Home"
	case RouteLogin:
		return "Login"
	case RouteRegister:
		return "Register"
	case RouteDashboard:
		return "Dashboard"
	case RouteWeather:
		return "Weather"
	case RouteMarketplace:
		return "Marketplace"
	case RoutePrices:
		return "Prices"
	case RouteChat:
		return "Assistant"
	}
	return string(r)
}

// ParseRoute accepts a path with or without its leading slash.
func ParseRoute(s string) (Route, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return RouteHome, nil
	}
	if !strings.HasPrefix(s, "/") {
		s = "/" + s
	}
	s = strings.TrimRight(s, "/")
	if s == "" {
		return RouteHome, nil
	}
	for _, r := range Routes {
		if string(r) == s {
			return r, nil
		}
	}
	return "", fmt.Errorf("unknown page %q", s)
}
