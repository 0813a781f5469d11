package stubbackend

// Route path constants, relative to the API prefix.
const (
	RouteAuthRegister = "/auth/register/"
	RouteAuthLogin    = "/auth/login/"
	RouteAuthRefresh  = "/auth/refresh/"
	RouteProfile      = "/profile/"

	RouteGroups        = "/groups/"
	RouteMyGroups      = "/groups/my-groups/"
	RouteMyAdminGroups = "/groups/my-admin-groups/"
	RouteGroupJoin     = "/groups/{id}/join/"
	RouteGroupLeave    = "/groups/{id}/leave/"

	RouteSessions      = "/sessions/"
	RouteSessionDetail = "/sessions/{id}/"
)
